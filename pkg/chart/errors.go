package chart

import (
	"errors"
	"fmt"
)

var (
	// ErrNameConflict is returned when a name is already registered in scope.
	ErrNameConflict = errors.New("chart: name already in use")
	// ErrEndpointOccupied is returned when a link end already holds a different node.
	ErrEndpointOccupied = errors.New("chart: link endpoint already bound to another node")
	// ErrAlternation is returned when a link would join two nodes of the same kind.
	ErrAlternation = errors.New("chart: link must join a step and a transition")
	// ErrEmptyNodeSet is returned by the synchronization family for empty inputs.
	ErrEmptyNodeSet = errors.New("chart: node set is empty")
	// ErrHeterogeneousNodes is returned when a node set mixes steps and transitions.
	ErrHeterogeneousNodes = errors.New("chart: node set mixes steps and transitions")
	// ErrForeignNode is returned when a node or link belongs to another chart.
	ErrForeignNode = errors.New("chart: element does not belong to this chart")
	// ErrNotAStep is returned when a step-only operation targets a transition.
	ErrNotAStep = errors.New("chart: operation requires a step")
	// ErrNotATransition is returned when a transition-only operation targets a step.
	ErrNotATransition = errors.New("chart: operation requires a transition")
	// ErrMultipleActions is returned by Flatten for steps carrying more than one action.
	ErrMultipleActions = errors.New("chart: flatten supports exactly one action per step")
	// ErrRecursiveAction is returned when a step would hold its own chart, or
	// a chart enclosing it, as an action.
	ErrRecursiveAction = errors.New("chart: action chart encloses the step")
	// ErrUnbalancedResume is returned when ResumeNodeSorting has no matching suspend.
	ErrUnbalancedResume = errors.New("chart: resume without matching suspend")
	// ErrInconsistentStructure is returned by Audit for alternation breaks and
	// links whose aggregate type cannot be classified.
	ErrInconsistentStructure = errors.New("chart: inconsistent structure")
	// ErrInvalidRecord is returned by Restore for records that cannot be rebuilt.
	ErrInvalidRecord = errors.New("chart: invalid record")
)

// NameConflictError reports the name that collided in a naming scope.
type NameConflictError struct {
	Name string
}

func (e *NameConflictError) Error() string {
	return fmt.Sprintf("chart: name %q already in use", e.Name)
}

func (e *NameConflictError) Is(target error) bool {
	return target == ErrNameConflict
}
