package schema

import "fmt"

// ValidationError represents a single record that failed validation.
type ValidationError struct {
	Path   string // chart name, optionally followed by nested action names
	Key    string // element id or name
	Reason string // human-readable reason for failure
}

func (e *ValidationError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("record %q: %s", e.Key, e.Reason)
	}
	return fmt.Sprintf("%s: record %q: %s", e.Path, e.Key, e.Reason)
}

// AggregateError represents multiple validation failures.
type AggregateError struct {
	Errors []error
}

func (e *AggregateError) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	msg := fmt.Sprintf("%d validation errors:\n", len(e.Errors))
	for i, err := range e.Errors {
		msg += fmt.Sprintf("  %d. %s\n", i+1, err.Error())
	}
	return msg
}

// Unwrap exposes the individual failures to errors.Is and errors.As.
func (e *AggregateError) Unwrap() []error {
	return e.Errors
}

// ValidationErrors returns all validation errors if err is an AggregateError.
// Otherwise returns nil.
func ValidationErrors(err error) []error {
	if aggr, ok := err.(*AggregateError); ok {
		return aggr.Errors
	}
	return nil
}
