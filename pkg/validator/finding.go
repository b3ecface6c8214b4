package validator

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Kind names a class of validation finding.
type Kind string

const (
	UnreachableNode             Kind = "UnreachableNode"
	UnexecutedNode              Kind = "UnexecutedNode"
	SerialConvergenceMismatch   Kind = "SerialConvergenceMismatch"
	UncompletedParallelBranches Kind = "UncompletedParallelBranches"

	// Structural conditions that stop validation before any token is
	// simulated.
	MultipleStartNodes    Kind = "MultipleStartNodes"
	NoStartNode           Kind = "NoStartNode"
	NoFinishTransition    Kind = "NoFinishTransition"
	InconsistentStructure Kind = "InconsistentStructure"
)

// Hard reports whether the kind short-circuits validation.
func (k Kind) Hard() bool {
	switch k {
	case MultipleStartNodes, NoStartNode, NoFinishTransition, InconsistentStructure:
		return true
	}
	return false
}

// Finding is one validation failure. Findings are values, collected after a
// full pass; they are never raised.
type Finding struct {
	Kind      Kind      `json:"kind"`
	Narrative string    `json:"narrative"`
	Chart     string    `json:"chart"`
	Node      string    `json:"node,omitempty"`
	NodeID    uuid.UUID `json:"node_id,omitzero"`
}

func (f Finding) Error() string {
	if f.Node == "" {
		return fmt.Sprintf("%s: %s: %s", f.Chart, f.Kind, f.Narrative)
	}
	return fmt.Sprintf("%s: %s at %s: %s", f.Chart, f.Kind, f.Node, f.Narrative)
}

// Report is the outcome of one validation call.
type Report struct {
	Chart    string        `json:"chart"`
	Valid    bool          `json:"valid"`
	Findings []Finding     `json:"findings"`
	Reduced  int           `json:"reduced"` // nodes removed from the private clone
	Elapsed  time.Duration `json:"elapsed"`
}

// Err returns nil for a valid chart, otherwise an *Error listing every
// finding.
func (r *Report) Err() error {
	if r.Valid {
		return nil
	}
	errs := make([]error, len(r.Findings))
	for i, f := range r.Findings {
		errs[i] = f
	}
	return &Error{Chart: r.Chart, Errors: errs}
}

// Count returns how many findings of kind k the report holds.
func (r *Report) Count(k Kind) int {
	n := 0
	for _, f := range r.Findings {
		if f.Kind == k {
			n++
		}
	}
	return n
}

// Error aggregates the findings of an invalid chart.
type Error struct {
	Chart  string
	Errors []error
}

func (e *Error) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	msg := fmt.Sprintf("%s: %d validation findings:\n", e.Chart, len(e.Errors))
	for i, err := range e.Errors {
		msg += fmt.Sprintf("  %d. %s\n", i+1, err.Error())
	}
	return msg
}

// Unwrap exposes the individual findings to errors.As.
func (e *Error) Unwrap() []error {
	return e.Errors
}
