package pfc_test

import (
	"context"
	"fmt"
	"log"

	"github.com/aretw0/pfc"
	"github.com/aretw0/pfc/pkg/dsl"
)

// ExampleEngine_Validate shows how a parallel branch that never reaches the
// convergence is reported at the divergence that opened it.
func ExampleEngine_Validate() {
	ctx := context.Background()
	eng := pfc.New()

	b := dsl.New("dead-end")
	b.Step("S_start").Go("T_split")
	b.Transition("T_split").Go("S_a", "S_b")
	b.Step("S_a").Go("T_join")
	b.Step("S_b")
	b.Transition("T_join").Go("S_end")
	b.Step("S_end").Go("T_fin")
	b.Transition("T_fin")

	if err := eng.Save(ctx, b.MustBuild()); err != nil {
		log.Fatal(err)
	}

	report, err := eng.Validate(ctx, "dead-end")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println("valid:", report.Valid)
	for _, f := range report.Findings {
		fmt.Println(f.Kind, f.Node)
	}
	// Output:
	// valid: false
	// UncompletedParallelBranches T_split
}

// ExampleEngine_Reduce removes a null step together with the transition in
// front of it and persists the smaller chart.
func ExampleEngine_Reduce() {
	ctx := context.Background()
	eng := pfc.New()

	b := dsl.New("padded")
	b.Step("S_start").Go("T_1")
	b.Transition("T_1").Go("S_mid")
	b.Step("S_mid").Null().Go("T_2")
	b.Transition("T_2").Go("S_end")
	b.Step("S_end").Go("T_fin")
	b.Transition("T_fin")

	if err := eng.Save(ctx, b.MustBuild()); err != nil {
		log.Fatal(err)
	}

	removed, err := eng.Reduce(ctx, "padded")
	if err != nil {
		log.Fatal(err)
	}
	c, err := eng.Load(ctx, "padded")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println("removed:", removed)
	for _, n := range c.Nodes() {
		fmt.Println(n.Name())
	}
	// Output:
	// removed: 2
	// S_start
	// T_2
	// S_end
	// T_fin
}
