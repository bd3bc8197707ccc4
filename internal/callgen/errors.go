package callgen

import "fmt"

// InvalidCallLogError means a RawCallLog failed finalization validation.
// The generator logs and skips the group; it never aborts the batch.
type InvalidCallLogError struct {
	Reason string
}

func (e *InvalidCallLogError) Error() string {
	return fmt.Sprintf("invalid call log: %s", e.Reason)
}

// NoInterpretorMatchedError means no interpretor in the ordered set
// accepted a CEL group. This indicates a coding defect (the interpretor
// set should always have a catch-all) and is fatal to the batch.
type NoInterpretorMatchedError struct {
	LinkedID string
}

func (e *NoInterpretorMatchedError) Error() string {
	return fmt.Sprintf("no interpretor could handle linked-id %s", e.LinkedID)
}
