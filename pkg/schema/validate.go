package schema

import (
	"github.com/google/uuid"
)

// Validate checks a record set for the properties a loader relies on: every
// id parses and is unique, names are present and unique, and every link end
// refers to a node of the same record set. Nested action charts are checked
// recursively. All failures are returned together as an *AggregateError.
func Validate(c *Chart) error {
	var errs []error
	validateChart(c, c.Name, &errs)
	if len(errs) > 0 {
		return &AggregateError{Errors: errs}
	}
	return nil
}

func validateChart(c *Chart, path string, errs *[]error) {
	fail := func(key, reason string) {
		*errs = append(*errs, &ValidationError{Path: path, Key: key, Reason: reason})
	}

	ids := make(map[string]string)
	names := make(map[string]bool)
	check := func(id, name string) {
		if _, err := uuid.Parse(id); err != nil {
			fail(name, "invalid id")
		}
		if _, dup := ids[id]; dup {
			fail(name, "duplicate id "+id)
		}
		ids[id] = name
		if name == "" {
			fail(id, "missing name")
			return
		}
		if names[name] {
			fail(name, "duplicate name")
		}
		names[name] = true
	}

	if c.ID != "" {
		if _, err := uuid.Parse(c.ID); err != nil {
			fail(c.Name, "invalid chart id")
		}
	}

	nodes := make(map[string]bool)
	for _, s := range c.Steps {
		check(s.ID, s.Name)
		nodes[s.ID] = true
		for _, a := range s.Actions {
			if a.Name == "" {
				fail(s.Name, "action without name")
			}
			validateChart(&a.Chart, path+"/"+s.Name+"/"+a.Name, errs)
		}
	}
	for _, t := range c.Transitions {
		check(t.ID, t.Name)
		nodes[t.ID] = true
	}
	for _, l := range c.Links {
		check(l.ID, l.Name)
		if !nodes[l.Predecessor] {
			fail(l.Name, "unknown predecessor "+l.Predecessor)
		}
		if !nodes[l.Successor] {
			fail(l.Name, "unknown successor "+l.Successor)
		}
	}
}
