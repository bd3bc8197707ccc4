package callgen

import "testing"

func TestBridgePartnersOfPicksEarliestEnterWithinWindow(t *testing.T) {
	cels := []CEL{
		{EventType: EventChanStart, EventTime: 0, UniqueID: "src"},
		{EventType: EventBridgeEnter, EventTime: 10, UniqueID: "src"},
		{EventType: EventAnswer, EventTime: 5, UniqueID: "late"},
		{EventType: EventBridgeEnter, EventTime: 20, UniqueID: "late"},
		{EventType: EventAnswer, EventTime: 8, UniqueID: "early"},
		{EventType: EventBridgeEnter, EventTime: 12, UniqueID: "early"},
		{EventType: EventBridgeExit, EventTime: 30, UniqueID: "src"},
	}

	partners := bridgePartnersOf(cels, "src")
	if len(partners) != 2 {
		t.Fatalf("got %d partners, want 2", len(partners))
	}
	if partners[0].uniqueID != "early" {
		t.Errorf("partners[0] = %q, want earliest enter (early)", partners[0].uniqueID)
	}
	if partners[1].uniqueID != "late" {
		t.Errorf("partners[1] = %q, want late", partners[1].uniqueID)
	}
	if !partners[0].answered {
		t.Error("early partner should be marked answered (ANSWER precedes its BRIDGE_ENTER)")
	}
}

func TestBridgePartnersOfExcludesOutsideWindow(t *testing.T) {
	cels := []CEL{
		{EventType: EventBridgeEnter, EventTime: 10, UniqueID: "src"},
		{EventType: EventBridgeExit, EventTime: 20, UniqueID: "src"},
		{EventType: EventBridgeEnter, EventTime: 50, UniqueID: "unrelated"},
	}
	partners := bridgePartnersOf(cels, "src")
	if len(partners) != 0 {
		t.Fatalf("got %d partners, want 0 (unrelated bridge falls outside source's window)", len(partners))
	}
}

func TestExtractRecordingsPairsByUserField(t *testing.T) {
	cels := []CEL{
		{EventType: EventMixmonitorStart, EventTime: 1, UserField: "/var/rec/a.wav"},
		{EventType: EventMixmonitorStart, EventTime: 2, UserField: "/var/rec/b.wav"},
		{EventType: EventMixmonitorEnd, EventTime: 3, UserField: "/var/rec/a.wav"},
	}
	recordings := extractRecordings(cels)
	if len(recordings) != 2 {
		t.Fatalf("got %d recordings, want 2", len(recordings))
	}
	if recordings[0].Path != "/var/rec/a.wav" || recordings[0].StartTime == nil || recordings[0].EndTime == nil {
		t.Errorf("recordings[0] = %+v, want complete a.wav pair", recordings[0])
	}
	if recordings[1].Path != "/var/rec/b.wav" || recordings[1].EndTime != nil {
		t.Errorf("recordings[1] = %+v, want incomplete b.wav (no end)", recordings[1])
	}
}

func TestPopulateDatesUsesLinkedIdEndOverChanEnd(t *testing.T) {
	cels := []CEL{
		{EventType: EventChanStart, EventTime: 1_000_000},
		{EventType: EventChanEnd, EventTime: 2_000_000},
		{EventType: EventLinkedIDEnd, EventTime: 3_000_000},
	}
	raw := NewRawCallLog()
	populateDates(cels, raw, nil)

	if raw.Date == nil || raw.Date.UnixMicro() != 1_000_000 {
		t.Errorf("Date = %v, want 1_000_000us", raw.Date)
	}
	if raw.DateEnd == nil || raw.DateEnd.UnixMicro() != 3_000_000 {
		t.Errorf("DateEnd = %v, want LINKEDID_END time 3_000_000us", raw.DateEnd)
	}
}

func TestProtocolInterface(t *testing.T) {
	cases := map[string]string{
		"PJSIP/abcd1234-0000001f": "PJSIP/abcd1234",
		"Local/1001@default-0001": "Local/1001@default",
		"nosuffix":                "nosuffix", // no dash at all: returned unchanged
	}
	for in, want := range cases {
		if got := ProtocolInterface(in); got != want {
			t.Errorf("ProtocolInterface(%q) = %q, want %q", in, got, want)
		}
	}
}
