// Package callgen turns Channel Event Log (CEL) records produced by the
// telephony switch into durable call log records. It groups CELs by
// linked-id, dispatches each group to an interpretor that classifies the
// call shape, enriches the result against the directory service, and
// finalizes it into a persistable CallLog.
package callgen

import "strings"

// EventType enumerates the CEL event kinds the interpretors reason about.
// The switch emits others we don't classify on; unknown values are kept
// verbatim on the CEL and simply ignored by every interpretor.
type EventType string

const (
	EventChanStart   EventType = "CHAN_START"
	EventChanEnd     EventType = "CHAN_END"
	EventAnswer      EventType = "ANSWER"
	EventAppStart    EventType = "APP_START"
	EventBridgeEnter EventType = "BRIDGE_ENTER"
	EventBridgeExit  EventType = "BRIDGE_EXIT"
	EventHangup      EventType = "HANGUP"
	EventLinkedIDEnd EventType = "LINKEDID_END"
	EventXivoIncall  EventType = "XIVO_INCALL"
	EventXivoOutcall EventType = "XIVO_OUTCALL"
	EventXivoUserFwd EventType = "XIVO_USER_FWD"
)

// CEL is one immutable event from the telephony switch's channel event log.
type CEL struct {
	ID          int64
	EventType   EventType
	EventTime   int64 // microsecond timestamp
	ChannelName string
	UniqueID    string
	LinkedID    string
	CidName     string
	CidNum      string
	Exten       string
	Context     string
	AppData     string
	UserField   string
	CallLogID   *int64 // non-nil if this CEL was attributed to a call log that must be superseded
}

// ProtocolInterface returns the "protocol/interface" prefix of a channel
// name, dropping the trailing instance suffix asterisk assigns on channel
// creation (e.g. "PJSIP/abcd1234-0000001f" -> "PJSIP/abcd1234"). Two
// channel names sharing this prefix are re-forks of the same line.
func ProtocolInterface(channelName string) string {
	idx := strings.LastIndex(channelName, "-")
	if idx < 0 {
		return channelName
	}
	return channelName[:idx]
}
