package callgen

import "time"

// CallLog is the emitted, persistent record produced by one FromCel group.
// It carries the same semantic fields as RawCallLog minus the interpretor
// working state (raw channel maps, cel ids), plus nothing surrogate-id
// related — the store assigns that on insert.
type CallLog struct {
	Date       time.Time
	DateAnswer *time.Time
	DateEnd    *time.Time

	SourceName          string
	SourceExten         string
	SourceLine          string
	SourceUserUUID      string
	DestinationName     string
	DestinationExten    string
	DestinationLine     string
	DestinationUserUUID string
	RequestedName       string
	RequestedExten      string
	RequestedContext    string

	SourceInternalExten        string
	SourceInternalContext      string
	DestinationInternalExten   string
	DestinationInternalContext string
	RequestedInternalExten     string
	RequestedInternalContext   string

	Direction  Direction
	TenantUUID string

	Participants []CallLogParticipant
	Recordings   []Recording
}

// CallLogsCreation is the result of one FromCel invocation: the newly
// minted call logs (possibly empty) and the set of prior call-log ids
// superseded by this regeneration.
type CallLogsCreation struct {
	NewCallLogs       []*CallLog
	CallLogIDsToDelete map[int64]struct{}
}
