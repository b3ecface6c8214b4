// Package validator proves that a chart is structurally executable.
//
// Validation never touches the caller's chart. It clones it, reduces the
// clone, refreshes its structure and then simulates the flow of control
// with tokens:
//
//   - a step with several successors is a serial divergence: the token
//     continues down every branch and counts one more open path per extra
//     branch;
//   - a transition with several successors is a parallel divergence: every
//     branch gets a child token;
//   - a transition with several forward predecessors is a parallel
//     convergence: it runs once all branches have arrived and hands control
//     back to the token of the divergence that closes over it;
//   - a node that already ran closes the path of any later arrival.
//
// A chart is valid when every node was reached and executed, every token
// closed all of its paths and the predecessors of every joining step agree
// on the token they carried.
//
//	v := validator.New(validator.WithLogger(logger))
//	report := v.Validate(ctx, c)
//	if err := report.Err(); err != nil {
//	    // report.Findings lists the problems
//	}
//
// A chart without exactly one start node, without a terminal transition or
// with links that break alternation is rejected with a single finding
// before any token is simulated.
package validator
