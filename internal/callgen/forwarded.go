package callgen

// forwardedInterpretor classifies calls that were redirected to a user by
// a forwarding rule before any channel for that user existed. The switch
// emits an XIVO_USER_FWD CEL naming the forwarding target's user uuid in
// UserField; that target is recorded in ParticipantsInfo rather than
// RawParticipants since there may be no channel for it at all (e.g. the
// forward was unconditional and fired before the destination ever rang).
// Runs before the incoming/outgoing/internal interpretors since a forward
// can co-occur with either marker and still needs this special handling.
type forwardedInterpretor struct{}

func (i *forwardedInterpretor) Name() string { return "forwarded" }

func (i *forwardedInterpretor) CanInterpret(cels []CEL) bool {
	return hasEventType(cels, EventXivoUserFwd)
}

func (i *forwardedInterpretor) Interpret(cels []CEL, raw *RawCallLog) *RawCallLog {
	raw.Direction = direction(cels)

	start, hasStart := firstWithEventType(cels, EventChanStart)
	var sourceUniqueID string
	if hasStart {
		sourceUniqueID = start.UniqueID
		raw.SourceName = start.CidName
		raw.SourceExten = start.CidNum
	}
	if incall, ok := lastWithEventType(cels, EventXivoIncall); ok && incall.CidNum != "" {
		raw.SourceExten = incall.CidNum
	}

	if exten, context, ok := appStartExten(cels); ok {
		raw.DestinationExten = exten
		raw.RequestedExten = exten
		raw.RequestedContext = context
	}

	answerTimes := populateParticipants(cels, raw, sourceUniqueID)
	populateDates(cels, raw, answerTimes)
	raw.Recordings = extractRecordings(cels)

	answered := hasEventType(cels, EventBridgeEnter)
	for _, fwd := range cels {
		if fwd.EventType != EventXivoUserFwd || fwd.UserField == "" {
			continue
		}
		raw.ParticipantsInfo = append(raw.ParticipantsInfo, ParticipantInfoSeed{
			UserUUID: fwd.UserField,
			Role:     RoleDestination,
			Answered: answered,
		})
	}

	return raw
}
