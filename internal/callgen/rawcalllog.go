package callgen

import "time"

// Role identifies which side of a call a participant or raw channel played.
type Role string

const (
	RoleSource      Role = "source"
	RoleDestination Role = "destination"
)

// Direction classifies where a call originated relative to the switch.
type Direction string

const (
	DirectionInternal Direction = "internal"
	DirectionInbound  Direction = "inbound"
	DirectionOutbound Direction = "outbound"
)

// Extension pairs an extension number with the dialplan context it was
// dialed in, as reported by the directory service for a participant's
// main line.
type Extension struct {
	Exten   string
	Context string
}

// RawParticipant is the attribute bag an interpretor and the
// ParticipantsProcessor accumulate for one channel, keyed by channel name
// in RawCallLog.RawParticipants.
type RawParticipant struct {
	Role          Role
	Answered      bool
	AnsweredSet   bool // true once an interpretor has explicitly set Answered
	TenantUUID    string
	MainExtension *Extension
	LineID        int
	Tags          []string
}

// ParticipantInfoSeed is a participant the interpretor identified without a
// channel (e.g. the forwarding target named in a XIVO_USER_FWD payload).
// Kept distinct from RawParticipants; the ParticipantsProcessor reconciles
// both into the final Participants slice.
type ParticipantInfoSeed struct {
	UserUUID string
	Role     Role
	Answered bool
}

// Recording is a MixMonitor start/stop pair observed during interpretation.
// Entries missing either endpoint are pruned by removeIncompleteRecordings.
type Recording struct {
	StartTime *time.Time
	EndTime   *time.Time
	Path      string
}

// CallLogParticipant is a reconciled, directory-enriched participant on the
// finished call, keyed by user UUID rather than channel name.
type CallLogParticipant struct {
	UserUUID string
	LineID   int
	Role     Role
	Tags     []string
	Answered bool
}

// RawCallLog is the mutable accumulator an interpretor and the finalizer
// passes build up for one linked-id group. It is never shared across
// groups and is converted exactly once into a CallLog via ToCallLog.
type RawCallLog struct {
	LinkedID string
	CelIDs   []int64

	Date       *time.Time
	DateAnswer *time.Time
	DateEnd    *time.Time

	SourceName         string
	SourceExten        string
	SourceLine         string
	SourceUserUUID     string
	DestinationName    string
	DestinationExten   string
	DestinationLine    string
	DestinationUserUUID string
	RequestedName      string
	RequestedExten     string
	RequestedContext   string

	SourceInternalExten        string
	SourceInternalContext      string
	DestinationInternalExten   string
	DestinationInternalContext string
	RequestedInternalExten     string
	RequestedInternalContext   string

	Direction  Direction
	TenantUUID string

	RawParticipants map[string]*RawParticipant
	ParticipantsInfo []ParticipantInfoSeed
	Participants     []*CallLogParticipant

	Recordings []Recording
}

// NewRawCallLog returns an empty accumulator ready for interpretation.
func NewRawCallLog() *RawCallLog {
	return &RawCallLog{
		RawParticipants: make(map[string]*RawParticipant),
	}
}

// SetTenantUUID sets the call's tenant. Every call overwrites the previous
// value (last writer wins), including when the new tenant differs from
// the old one; no contradiction is detected here. ensureTenantUuid
// detects contradictions itself by collecting the distinct participant
// tenants before logging at warn.
func (r *RawCallLog) SetTenantUUID(tenantUUID string) {
	r.TenantUUID = tenantUUID
}

// ToCallLog converts the accumulator into a persistable CallLog, or
// returns InvalidCallLogError if a mandatory field is missing.
func (r *RawCallLog) ToCallLog() (*CallLog, error) {
	if r.Date == nil {
		return nil, &InvalidCallLogError{Reason: "date is not set"}
	}
	if r.SourceExten == "" && r.SourceName == "" {
		return nil, &InvalidCallLogError{Reason: "both source_exten and source_name are empty"}
	}
	if r.TenantUUID == "" {
		return nil, &InvalidCallLogError{Reason: "tenant_uuid is not set"}
	}

	participants := make([]CallLogParticipant, 0, len(r.Participants))
	for _, p := range r.Participants {
		participants = append(participants, *p)
	}

	return &CallLog{
		Date:                       *r.Date,
		DateAnswer:                 r.DateAnswer,
		DateEnd:                    r.DateEnd,
		SourceName:                 r.SourceName,
		SourceExten:                r.SourceExten,
		SourceLine:                 r.SourceLine,
		SourceUserUUID:             r.SourceUserUUID,
		DestinationName:            r.DestinationName,
		DestinationExten:           r.DestinationExten,
		DestinationLine:            r.DestinationLine,
		DestinationUserUUID:        r.DestinationUserUUID,
		RequestedName:              r.RequestedName,
		RequestedExten:             r.RequestedExten,
		RequestedContext:           r.RequestedContext,
		SourceInternalExten:        r.SourceInternalExten,
		SourceInternalContext:      r.SourceInternalContext,
		DestinationInternalExten:   r.DestinationInternalExten,
		DestinationInternalContext: r.DestinationInternalContext,
		RequestedInternalExten:     r.RequestedInternalExten,
		RequestedInternalContext:   r.RequestedInternalContext,
		Direction:                  r.Direction,
		TenantUUID:                 r.TenantUUID,
		Participants:               participants,
		Recordings:                 r.Recordings,
	}, nil
}
