package callgen

import "time"

// MixMonitor marker events. Asterisk doesn't carry these as standard CEL
// event types; the switch integration emits them as implementation-defined
// extensions with the recording's file path carried in UserField.
const (
	EventMixmonitorStart EventType = "MIXMONITOR_START"
	EventMixmonitorEnd   EventType = "MIXMONITOR_END"
)

func microToTime(us int64) time.Time {
	return time.UnixMicro(us)
}

// populateDates sets raw.Date, raw.DateEnd and (from the earliest of
// bridgedAnswerTimes) raw.DateAnswer, per spec §4.2.
func populateDates(cels []CEL, raw *RawCallLog, bridgedAnswerTimes []time.Time) {
	if start, ok := firstWithEventType(cels, EventChanStart); ok {
		t := microToTime(start.EventTime)
		raw.Date = &t
	} else if len(cels) > 0 {
		t := microToTime(cels[0].EventTime)
		raw.Date = &t
	}

	if end, ok := lastWithEventType(cels, EventLinkedIDEnd); ok {
		t := microToTime(end.EventTime)
		raw.DateEnd = &t
	} else if end, ok := lastWithEventType(cels, EventChanEnd); ok {
		t := microToTime(end.EventTime)
		raw.DateEnd = &t
	}

	var earliest *time.Time
	for _, t := range bridgedAnswerTimes {
		t := t
		if earliest == nil || t.Before(*earliest) {
			earliest = &t
		}
	}
	raw.DateAnswer = earliest
}

// bridgedPartner describes one channel that shared a bridge window with
// the originating channel.
type bridgedPartner struct {
	uniqueID  string
	enterTime time.Time
	answered  bool
}

// bridgePartnersOf returns the channels that were bridged together with
// sourceUniqueID at some point, ordered by ascending BRIDGE_ENTER time —
// this is the tie-break spec §4.2 describes ("the one with the earliest
// BRIDGE_ENTER paired with the originating channel is chosen").
func bridgePartnersOf(cels []CEL, sourceUniqueID string) []bridgedPartner {
	type window struct{ enter, exit time.Time }

	sourceWindows := []window{}
	var openEnter *time.Time
	answeredAt := map[string]time.Time{}

	for _, c := range cels {
		switch c.EventType {
		case EventAnswer:
			if _, seen := answeredAt[c.UniqueID]; !seen {
				answeredAt[c.UniqueID] = microToTime(c.EventTime)
			}
		case EventBridgeEnter:
			if c.UniqueID == sourceUniqueID {
				t := microToTime(c.EventTime)
				openEnter = &t
			}
		case EventBridgeExit:
			if c.UniqueID == sourceUniqueID && openEnter != nil {
				sourceWindows = append(sourceWindows, window{enter: *openEnter, exit: microToTime(c.EventTime)})
				openEnter = nil
			}
		}
	}
	if openEnter != nil {
		// Bridge never closed (e.g. truncated trace) — treat as open-ended.
		sourceWindows = append(sourceWindows, window{enter: *openEnter, exit: time.Unix(1<<62, 0)})
	}

	inWindow := func(t time.Time) bool {
		for _, w := range sourceWindows {
			if !t.Before(w.enter) && !t.After(w.exit) {
				return true
			}
		}
		return false
	}

	seen := map[string]bool{sourceUniqueID: true}
	var partners []bridgedPartner
	for _, c := range cels {
		if c.EventType != EventBridgeEnter || c.UniqueID == sourceUniqueID {
			continue
		}
		if seen[c.UniqueID] {
			continue
		}
		t := microToTime(c.EventTime)
		if !inWindow(t) {
			continue
		}
		seen[c.UniqueID] = true
		answered := false
		if at, ok := answeredAt[c.UniqueID]; ok && !at.After(t) {
			answered = true
		}
		partners = append(partners, bridgedPartner{uniqueID: c.UniqueID, enterTime: t, answered: answered})
	}

	for i := 0; i < len(partners); i++ {
		for j := i + 1; j < len(partners); j++ {
			if partners[j].enterTime.Before(partners[i].enterTime) {
				partners[i], partners[j] = partners[j], partners[i]
			}
		}
	}
	return partners
}

func channelNameFor(cels []CEL, uniqueID string) string {
	for _, c := range cels {
		if c.UniqueID == uniqueID && c.ChannelName != "" {
			return c.ChannelName
		}
	}
	return ""
}

// populateParticipants fills raw.RawParticipants for the originating
// channel (role=source) and every bridge partner (role=destination), and
// returns the bridged partners' ANSWER times for populateDates.
func populateParticipants(cels []CEL, raw *RawCallLog, sourceUniqueID string) []time.Time {
	sourceChannel := channelNameFor(cels, sourceUniqueID)
	sourceAnswered := hasAnswerFor(cels, sourceUniqueID)
	if sourceChannel != "" {
		raw.RawParticipants[sourceChannel] = &RawParticipant{
			Role:        RoleSource,
			Answered:    sourceAnswered,
			AnsweredSet: true,
		}
	}

	partners := bridgePartnersOf(cels, sourceUniqueID)
	var answerTimes []time.Time
	for _, p := range partners {
		name := channelNameFor(cels, p.uniqueID)
		if name == "" {
			continue
		}
		raw.RawParticipants[name] = &RawParticipant{
			Role:        RoleDestination,
			Answered:    p.answered,
			AnsweredSet: true,
		}
		if p.answered {
			for _, c := range cels {
				if c.EventType == EventAnswer && c.UniqueID == p.uniqueID {
					answerTimes = append(answerTimes, microToTime(c.EventTime))
					break
				}
			}
		}
	}
	return answerTimes
}

func hasAnswerFor(cels []CEL, uniqueID string) bool {
	for _, c := range cels {
		if c.EventType == EventAnswer && c.UniqueID == uniqueID {
			return true
		}
	}
	return false
}

// extractRecordings pairs MIXMONITOR_START/END markers by the recording
// path carried in UserField. Unpaired entries come out with a nil
// endpoint and are pruned later by removeIncompleteRecordings.
func extractRecordings(cels []CEL) []Recording {
	byPath := map[string]*Recording{}
	var order []string

	for _, c := range cels {
		switch c.EventType {
		case EventMixmonitorStart:
			rec, ok := byPath[c.UserField]
			if !ok {
				rec = &Recording{Path: c.UserField}
				byPath[c.UserField] = rec
				order = append(order, c.UserField)
			}
			t := microToTime(c.EventTime)
			rec.StartTime = &t
		case EventMixmonitorEnd:
			rec, ok := byPath[c.UserField]
			if !ok {
				rec = &Recording{Path: c.UserField}
				byPath[c.UserField] = rec
				order = append(order, c.UserField)
			}
			t := microToTime(c.EventTime)
			rec.EndTime = &t
		}
	}

	recordings := make([]Recording, 0, len(order))
	for _, path := range order {
		recordings = append(recordings, *byPath[path])
	}
	return recordings
}

// direction applies spec §4.2's rule: XIVO_INCALL present -> inbound,
// XIVO_OUTCALL present -> outbound, else internal.
func direction(cels []CEL) Direction {
	if hasEventType(cels, EventXivoIncall) {
		return DirectionInbound
	}
	if hasEventType(cels, EventXivoOutcall) {
		return DirectionOutbound
	}
	return DirectionInternal
}

// appStartExten returns the exten/context dialed, from the first
// APP_START CEL, used for destination/requested extension population.
func appStartExten(cels []CEL) (exten, context string, ok bool) {
	c, found := firstWithEventType(cels, EventAppStart)
	if !found {
		return "", "", false
	}
	return c.Exten, c.Context, true
}
