package callgen

import (
	"context"
	"errors"
	"sort"

	"github.com/rs/zerolog"
)

// Metrics is the narrow set of counters the Generator updates. Supplied
// by the caller so callgen stays free of any particular metrics backend.
type Metrics interface {
	CallLogGenerated()
	CallLogInvalid()
	NoInterpretorMatched()
}

type noopMetrics struct{}

func (noopMetrics) CallLogGenerated()     {}
func (noopMetrics) CallLogInvalid()       {}
func (noopMetrics) NoInterpretorMatched() {}

// Generator turns a batch of CELs into CallLogsCreation. One Generator is
// built at startup and reused for every batch; serviceTenantUUID is fixed
// at construction and never mutated afterward, so concurrent FromCel
// calls are safe as long as the supplied DirectoryClient is.
type Generator struct {
	directory         DirectoryClient
	participants      *ParticipantsProcessor
	interpretors      []Interpretor
	serviceTenantUUID string
	metrics           Metrics
	log               zerolog.Logger
}

func NewGenerator(directory DirectoryClient, serviceTenantUUID string, metrics Metrics, log zerolog.Logger) *Generator {
	if metrics == nil {
		metrics = noopMetrics{}
	}
	return &Generator{
		directory:         directory,
		participants:      NewParticipantsProcessor(directory, log),
		interpretors:      DefaultInterpretors(),
		serviceTenantUUID: serviceTenantUUID,
		metrics:           metrics,
		log:               log,
	}
}

// FromCel groups cels by linked-id and produces one CallLog per group,
// per spec §4.1. A group an interpretor can't classify aborts the whole
// batch with NoInterpretorMatchedError — every CEL the switch emits must
// be classifiable by construction, so this signals a programming defect
// rather than bad input. A group that classifies but fails validation
// (InvalidCallLogError) is logged and skipped; the rest of the batch
// still completes.
func (g *Generator) FromCel(ctx context.Context, cels []CEL) (*CallLogsCreation, error) {
	order := make([]string, 0)
	groups := make(map[string][]CEL)
	for _, c := range cels {
		if _, ok := groups[c.LinkedID]; !ok {
			order = append(order, c.LinkedID)
		}
		groups[c.LinkedID] = append(groups[c.LinkedID], c)
	}

	deleteIDs := make(map[int64]struct{})
	for _, c := range cels {
		if c.CallLogID != nil {
			deleteIDs[*c.CallLogID] = struct{}{}
		}
	}

	var newCallLogs []*CallLog
	for _, linkedID := range order {
		group := groups[linkedID]
		sort.SliceStable(group, func(i, j int) bool { return group[i].EventTime < group[j].EventTime })

		interp := g.selectInterpretor(group)
		if interp == nil {
			g.metrics.NoInterpretorMatched()
			return nil, &NoInterpretorMatchedError{LinkedID: linkedID}
		}

		raw := NewRawCallLog()
		raw.LinkedID = linkedID
		for _, c := range group {
			raw.CelIDs = append(raw.CelIDs, c.ID)
		}
		raw = interp.Interpret(group, raw)

		removeDuplicateParticipants(raw)
		g.participants.Process(ctx, raw)
		ensureTenantUuid(ctx, raw, g.directory, g.serviceTenantUUID, g.log)
		fillExtensionsFromParticipants(raw)
		removeIncompleteRecordings(raw, g.log)

		callLog, err := raw.ToCallLog()
		if err != nil {
			var invalid *InvalidCallLogError
			if errors.As(err, &invalid) {
				g.metrics.CallLogInvalid()
				g.log.Warn().Err(err).Str("linked_id", linkedID).Msg("skipping invalid call log")
				continue
			}
			return nil, err
		}

		g.metrics.CallLogGenerated()
		newCallLogs = append(newCallLogs, callLog)
	}

	return &CallLogsCreation{NewCallLogs: newCallLogs, CallLogIDsToDelete: deleteIDs}, nil
}

func (g *Generator) selectInterpretor(cels []CEL) Interpretor {
	for _, interp := range g.interpretors {
		if interp.CanInterpret(cels) {
			return interp
		}
	}
	return nil
}
