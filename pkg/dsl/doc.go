/*
Package dsl provides a Go DSL (Domain Specific Language) for programmatically constructing charts.

It allows developers to define procedure function charts using a type-safe, fluent builder pattern
instead of assembling nodes and links by hand. This is particularly useful for unit tests, demos
and generated recipes.

Example usage:

	package main

	import (
		"github.com/aretw0/pfc/pkg/dsl"
	)

	func main() {
		b := dsl.New("batch")

		b.Step("S_fill").Unit("R-101").Go("T_full")
		b.Transition("T_full").When("level > 80").Go("S_heat")
		b.Step("S_heat").Go("T_done")
		b.Transition("T_done")

		c, err := b.Build()
		// ... validate c with the validator package
	}

Edges are bound with chart.Bind, so an edge between two nodes of the same kind gets a shim of the
opposite kind. Steps are marked as keepers (non-null) unless Null is called, so reduction leaves
the declared structure alone.
*/
package dsl
