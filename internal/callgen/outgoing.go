package callgen

// outgoingInterpretor classifies calls placed out to the PSTN, recognized
// by the presence of an XIVO_OUTCALL marker CEL.
type outgoingInterpretor struct{}

func (i *outgoingInterpretor) Name() string { return "outgoing" }

func (i *outgoingInterpretor) CanInterpret(cels []CEL) bool {
	return hasEventType(cels, EventXivoOutcall)
}

func (i *outgoingInterpretor) Interpret(cels []CEL, raw *RawCallLog) *RawCallLog {
	raw.Direction = DirectionOutbound

	start, hasStart := firstWithEventType(cels, EventChanStart)
	var sourceUniqueID string
	if hasStart {
		sourceUniqueID = start.UniqueID
		raw.SourceName = start.CidName
		raw.SourceExten = start.CidNum
	}

	if exten, context, ok := appStartExten(cels); ok {
		raw.DestinationExten = exten
		raw.RequestedExten = exten
		raw.RequestedContext = context
	}

	// A later XIVO_OUTCALL may carry a normalized dialed number, symmetric
	// to the incoming interpretor's cid_num rewrite.
	if outcall, ok := lastWithEventType(cels, EventXivoOutcall); ok && outcall.CidNum != "" {
		raw.DestinationExten = outcall.CidNum
	}

	answerTimes := populateParticipants(cels, raw, sourceUniqueID)
	populateDates(cels, raw, answerTimes)
	raw.Recordings = extractRecordings(cels)

	return raw
}
