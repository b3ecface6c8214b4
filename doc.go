/*
Package pfc models and validates Procedure Function Charts: bipartite graphs of
alternating steps and transitions, joined by links, that describe batch
recipes and other sequential control procedures.

# Concept

A chart is built and edited through the chart package, which keeps the graph
alternating and topologically sorted while nodes are bound, unbound,
synchronized, reduced and flattened. The validator package proves that a
chart is executable by simulating token flow: every node runs, every parallel
branch closes and serial branches converge consistently.

The Engine in this package ties both to a ports.ChartStore so that charts can
be loaded, validated, reduced and flattened by name. Stores are provided for
memory, files, Redis, SQLite and PostgreSQL.

# Usage

	package main

	import (
		"context"
		"log"

		"github.com/aretw0/pfc"
		"github.com/aretw0/pfc/pkg/adapters/file"
		"github.com/aretw0/pfc/pkg/dsl"
	)

	func main() {
		ctx := context.Background()
		eng := pfc.New(pfc.WithStore(file.New("./charts")))

		b := dsl.New("batch")
		b.Step("S_fill").Go("T_full")
		b.Transition("T_full").When("level > 80").Go("S_heat")
		b.Step("S_heat").Go("T_done")
		b.Transition("T_done")

		if err := eng.Save(ctx, b.MustBuild()); err != nil {
			log.Fatal(err)
		}

		report, err := eng.Validate(ctx, "batch")
		if err != nil {
			log.Fatal(err)
		}
		if err := report.Err(); err != nil {
			log.Fatal(err)
		}
	}
*/
package pfc
