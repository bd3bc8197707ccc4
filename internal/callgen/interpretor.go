package callgen

// Interpretor is a deterministic classifier over one linked-id's CEL
// group. CanInterpret is queried in registration order; the first match
// wins and Interpret is invoked exactly once on that group.
type Interpretor interface {
	Name() string
	CanInterpret(cels []CEL) bool
	Interpret(cels []CEL, raw *RawCallLog) *RawCallLog
}

// DefaultInterpretors returns the ordered interpretor set used in
// production: forwarded calls and incoming/outgoing calls are identified
// by an unambiguous marker CEL first, and the internal interpretor is the
// catch-all for any group that at least started a channel. An empty or
// malformed group that matches nothing is a NoInterpretorMatchedError —
// a coding defect, not a data error.
func DefaultInterpretors() []Interpretor {
	return []Interpretor{
		&forwardedInterpretor{},
		&incomingInterpretor{},
		&outgoingInterpretor{},
		&internalInterpretor{},
	}
}

func hasEventType(cels []CEL, t EventType) bool {
	for _, c := range cels {
		if c.EventType == t {
			return true
		}
	}
	return false
}

func firstWithEventType(cels []CEL, t EventType) (CEL, bool) {
	for _, c := range cels {
		if c.EventType == t {
			return c, true
		}
	}
	return CEL{}, false
}

func lastWithEventType(cels []CEL, t EventType) (CEL, bool) {
	var found CEL
	ok := false
	for _, c := range cels {
		if c.EventType == t {
			found = c
			ok = true
		}
	}
	return found, ok
}
