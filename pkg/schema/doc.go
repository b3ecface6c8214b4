// Package schema defines the persisted form of a chart: a record set of
// steps, transitions and links keyed by stable identifiers, plus the codecs
// that read and write it.
//
// Element order inside a record set carries no meaning; cross references are
// made exclusively through ids. Ordinals and link priorities are persisted so
// that a reload reproduces the same structure.
//
// Basic usage:
//
//	rec := c.Snapshot()
//	data, err := schema.YAML.Encode(rec)
//	...
//	var back schema.Chart
//	err = schema.YAML.Decode(data, &back)
//	if err := schema.Validate(&back); err != nil {
//	    // Handle dangling references
//	}
//
// The package has no dependency on the chart model itself, so stores and
// transports can move records without loading a graph.
package schema
