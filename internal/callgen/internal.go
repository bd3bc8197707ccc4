package callgen

// internalInterpretor classifies calls between two channels on the same
// switch: neither XIVO_INCALL nor XIVO_OUTCALL present. It is the
// catch-all at the end of DefaultInterpretors — any group containing at
// least one CHAN_START is accepted.
type internalInterpretor struct{}

func (i *internalInterpretor) Name() string { return "internal" }

func (i *internalInterpretor) CanInterpret(cels []CEL) bool {
	return hasEventType(cels, EventChanStart)
}

func (i *internalInterpretor) Interpret(cels []CEL, raw *RawCallLog) *RawCallLog {
	raw.Direction = DirectionInternal

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

	answerTimes := populateParticipants(cels, raw, sourceUniqueID)
	populateDates(cels, raw, answerTimes)
	raw.Recordings = extractRecordings(cels)

	return raw
}
