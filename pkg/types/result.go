package types

import "fmt"

// PhaseStatus is the outcome of one step of a multi-step operation.
type PhaseStatus string

const (
	PhaseSkipped PhaseStatus = "skipped"
	PhaseOK      PhaseStatus = "ok"
	PhaseFailed  PhaseStatus = "failed"
)

// Phase records one step's outcome and, when it failed, why.
type Phase struct {
	Status PhaseStatus `json:"status"`
	Err    error       `json:"-"`
}

// Done returns a successful phase.
func Done() Phase { return Phase{Status: PhaseOK} }

// Failed returns a failed phase carrying err.
func Failed(err error) Phase { return Phase{Status: PhaseFailed, Err: err} }

// Skipped returns a phase that was not attempted.
func Skipped() Phase { return Phase{Status: PhaseSkipped} }

// TwoPhaseResult is the outcome of a comment-then-transition operation.
// The phases are not atomic: a failed Transition after an OK Comment leaves
// the comment in place.
type TwoPhaseResult struct {
	Comment    Phase `json:"comment"`
	Transition Phase `json:"transition"`
}

// OK reports whether every attempted phase succeeded.
func (r TwoPhaseResult) OK() bool {
	return r.Comment.Status != PhaseFailed && r.Transition.Status == PhaseOK
}

// Partial reports whether the comment landed but the transition did not.
func (r TwoPhaseResult) Partial() bool {
	return r.Comment.Status == PhaseOK && r.Transition.Status == PhaseFailed
}

// Err returns the first failure, annotated with the phase it happened in.
func (r TwoPhaseResult) Err() error {
	if r.Comment.Status == PhaseFailed {
		return fmt.Errorf("comment failed: %w", r.Comment.Err)
	}
	if r.Transition.Status == PhaseFailed {
		if r.Comment.Status == PhaseOK {
			return fmt.Errorf("comment added but transition failed: %w", r.Transition.Err)
		}
		return fmt.Errorf("transition failed: %w", r.Transition.Err)
	}
	return nil
}
