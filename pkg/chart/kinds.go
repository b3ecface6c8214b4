package chart

// Kind discriminates the two node variants of a chart.
type Kind int

const (
	// KindStep is a node that performs work (actions, sub-charts).
	KindStep Kind = iota
	// KindTransition is a node that gates flow with a guard expression.
	KindTransition
)

func (k Kind) String() string {
	switch k {
	case KindStep:
		return "step"
	case KindTransition:
		return "transition"
	default:
		return "unknown"
	}
}

// Opposite returns the kind a link from a node of kind k must reach.
func (k Kind) Opposite() Kind {
	if k == KindStep {
		return KindTransition
	}
	return KindStep
}

// ElementType identifies what the factory is naming.
type ElementType int

const (
	ElementStep ElementType = iota
	ElementTransition
	ElementLink

	elementTypeCount
)

func (t ElementType) String() string {
	switch t {
	case ElementStep:
		return "step"
	case ElementTransition:
		return "transition"
	case ElementLink:
		return "link"
	default:
		return "unknown"
	}
}

func elementTypeOf(k Kind) ElementType {
	if k == KindStep {
		return ElementStep
	}
	return ElementTransition
}

// AggregateLinkType is the topological classification of a link. It is derived
// from the fan-in/fan-out of the link's endpoints and never stored.
type AggregateLinkType int

const (
	LinkUnknown AggregateLinkType = iota
	LinkSimple
	LinkSeriesDivergent
	LinkParallelDivergent
	LinkSeriesConvergent
	LinkParallelConvergent
)

func (t AggregateLinkType) String() string {
	switch t {
	case LinkSimple:
		return "Simple"
	case LinkSeriesDivergent:
		return "SeriesDivergent"
	case LinkParallelDivergent:
		return "ParallelDivergent"
	case LinkSeriesConvergent:
		return "SeriesConvergent"
	case LinkParallelConvergent:
		return "ParallelConvergent"
	default:
		return "Unknown"
	}
}

// Color is the transient mark used by the loopback detection traversal.
type Color int

const (
	White Color = iota // unvisited
	Gray               // on the active DFS path
	Black              // fully processed
)

// Unassigned is the ordinal of a node that has not been reached by the last
// structure update.
const Unassigned = -1
