// Package chart implements the Procedure Function Chart model: a bipartite
// graph of steps and transitions joined by links.
//
// A Chart owns every node and link it creates. Elements are addressed by
// stable uuids and named through a Factory that hands out canonical names
// (S_001, T_001, L_001). The mutation API keeps the graph alternating:
//
//	c := chart.New("fill")
//	start, _ := c.CreateStep("Start")
//	done, _ := c.CreateStep("Done")
//	_ = c.Bind(start, done) // inserts a transition shim between the steps
//
// After every structural change (or at the outermost ResumeNodeSorting when
// sorting is suspended) the chart re-runs UpdateStructure: orphans are
// pruned, outgoing links sorted by priority, loopback links marked and graph
// ordinals assigned.
//
// Reduce removes null nodes that carry no behaviour; Flatten splices nested
// action charts into their parent. Neither is reversible, so callers that
// need the original graph work on a Clone.
//
// Snapshot and Restore convert to and from the record set in package schema.
package chart
