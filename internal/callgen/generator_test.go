package callgen

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
)

type countingMetrics struct {
	generated     int
	invalid       int
	noInterpretor int
}

func (m *countingMetrics) CallLogGenerated()     { m.generated++ }
func (m *countingMetrics) CallLogInvalid()       { m.invalid++ }
func (m *countingMetrics) NoInterpretorMatched() { m.noInterpretor++ }

func TestGeneratorFromCelProducesInternalCallLog(t *testing.T) {
	directory := newMapDirectory()
	directory.byChannel["PJSIP/a-1"] = &ParticipantInfo{UUID: "uuid-a", TenantUUID: "tenant-1"}
	directory.byChannel["PJSIP/b-1"] = &ParticipantInfo{UUID: "uuid-b", TenantUUID: "tenant-1"}

	cels := []CEL{
		{ID: 1, EventType: EventChanStart, EventTime: 1_000_000, UniqueID: "1", ChannelName: "PJSIP/a-1", CidNum: "1001", LinkedID: "linked-1"},
		{ID: 2, EventType: EventAppStart, EventTime: 1_100_000, UniqueID: "1", Exten: "1002", Context: "default", LinkedID: "linked-1"},
		{ID: 3, EventType: EventAnswer, EventTime: 1_200_000, UniqueID: "2", LinkedID: "linked-1"},
		{ID: 4, EventType: EventBridgeEnter, EventTime: 1_300_000, UniqueID: "1", LinkedID: "linked-1"},
		{ID: 5, EventType: EventBridgeEnter, EventTime: 1_300_000, UniqueID: "2", ChannelName: "PJSIP/b-1", LinkedID: "linked-1"},
		{ID: 6, EventType: EventBridgeExit, EventTime: 1_400_000, UniqueID: "1", LinkedID: "linked-1"},
		{ID: 7, EventType: EventLinkedIDEnd, EventTime: 1_500_000, UniqueID: "1", LinkedID: "linked-1"},
	}

	metrics := &countingMetrics{}
	gen := NewGenerator(directory, "tenant-service", metrics, zerolog.Nop())
	result, err := gen.FromCel(context.Background(), cels)
	if err != nil {
		t.Fatalf("FromCel returned error: %v", err)
	}
	if len(result.NewCallLogs) != 1 {
		t.Fatalf("got %d call logs, want 1", len(result.NewCallLogs))
	}

	cl := result.NewCallLogs[0]
	if cl.Direction != DirectionInternal {
		t.Errorf("Direction = %q, want internal", cl.Direction)
	}
	if cl.TenantUUID != "tenant-1" {
		t.Errorf("TenantUUID = %q, want tenant-1", cl.TenantUUID)
	}
	if len(cl.Participants) != 2 {
		t.Fatalf("got %d participants, want 2", len(cl.Participants))
	}
	if metrics.generated != 1 {
		t.Errorf("metrics.generated = %d, want 1", metrics.generated)
	}
}

func TestGeneratorFromCelCollectsCallLogIdsToDelete(t *testing.T) {
	directory := newMapDirectory()
	priorID := int64(42)
	cels := []CEL{
		{ID: 1, EventType: EventChanStart, EventTime: 1, UniqueID: "1", ChannelName: "PJSIP/a-1", CallLogID: &priorID, LinkedID: "linked-1"},
		{ID: 2, EventType: EventChanEnd, EventTime: 2, UniqueID: "1", ChannelName: "PJSIP/a-1", LinkedID: "linked-1"},
	}

	gen := NewGenerator(directory, "tenant-service", nil, zerolog.Nop())
	result, err := gen.FromCel(context.Background(), cels)
	if err != nil {
		t.Fatalf("FromCel returned error: %v", err)
	}
	if _, ok := result.CallLogIDsToDelete[42]; !ok {
		t.Errorf("CallLogIDsToDelete = %v, want it to contain 42", result.CallLogIDsToDelete)
	}
}

func TestGeneratorFromCelSkipsInvalidGroupButContinues(t *testing.T) {
	directory := newMapDirectory()
	cels := []CEL{
		// linked-a: no CHAN_START at all and no xivo marker -> matches no interpretor -> fatal.
		// Use a group that matches internalInterpretor but fails ToCallLog validation instead,
		// since a no-match group must abort the whole batch (tested separately).
		{ID: 1, EventType: EventChanStart, EventTime: 1, UniqueID: "1", ChannelName: "PJSIP/a-1", LinkedID: "linked-invalid"},

		{ID: 2, EventType: EventChanStart, EventTime: 1, UniqueID: "2", ChannelName: "PJSIP/b-1", CidNum: "2001", LinkedID: "linked-valid"},
		{ID: 3, EventType: EventChanEnd, EventTime: 2, UniqueID: "2", ChannelName: "PJSIP/b-1", LinkedID: "linked-valid"},
	}

	metrics := &countingMetrics{}
	gen := NewGenerator(directory, "tenant-service", metrics, zerolog.Nop())
	result, err := gen.FromCel(context.Background(), cels)
	if err != nil {
		t.Fatalf("FromCel returned error: %v", err)
	}
	if len(result.NewCallLogs) != 1 {
		t.Fatalf("got %d call logs, want 1 (invalid group skipped, valid group kept)", len(result.NewCallLogs))
	}
	if metrics.invalid != 1 {
		t.Errorf("metrics.invalid = %d, want 1", metrics.invalid)
	}
}

func TestGeneratorFromCelAbortsOnNoInterpretorMatch(t *testing.T) {
	directory := newMapDirectory()
	// A group with neither CHAN_START nor any xivo marker matches nothing.
	cels := []CEL{
		{ID: 1, EventType: EventHangup, EventTime: 1, UniqueID: "1", LinkedID: "linked-unmatched"},
	}

	gen := NewGenerator(directory, "tenant-service", nil, zerolog.Nop())
	_, err := gen.FromCel(context.Background(), cels)
	if err == nil {
		t.Fatal("expected NoInterpretorMatchedError, got nil")
	}
	if _, ok := err.(*NoInterpretorMatchedError); !ok {
		t.Errorf("got error %T, want *NoInterpretorMatchedError", err)
	}
}
