package chart

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/google/uuid"
)

// Default canonical name prefixes.
const (
	DefaultStepPrefix       = "S_"
	DefaultTransitionPrefix = "T_"
	DefaultLinkPrefix       = "L_"
)

// Element is anything the factory names: nodes and links.
type Element interface {
	ID() uuid.UUID
	Name() string
	ElementType() ElementType
}

// Factory hands out canonical names, identifiers and creation sequence numbers
// for the elements of a chart.
type Factory struct {
	prefixes [elementTypeCount]string
	patterns [elementTypeCount]*regexp.Regexp
	cursors  [elementTypeCount]int
	seq      uint64
	ids      IDGenerator
}

// FactoryOption configures a Factory.
type FactoryOption func(*Factory)

// WithPrefixes overrides the canonical name prefixes.
func WithPrefixes(step, transition, link string) FactoryOption {
	return func(f *Factory) {
		f.prefixes[ElementStep] = step
		f.prefixes[ElementTransition] = transition
		f.prefixes[ElementLink] = link
	}
}

// WithIDGenerator installs a custom identifier generator.
func WithIDGenerator(g IDGenerator) FactoryOption {
	return func(f *Factory) {
		f.ids = g
	}
}

// WithRepeatableIDs makes identifier generation deterministic from seed.
func WithRepeatableIDs(seed uint64) FactoryOption {
	return func(f *Factory) {
		f.ids = NewRepeatableIDs(seed)
	}
}

// NewFactory creates a factory with canonical prefixes and random identifiers.
func NewFactory(opts ...FactoryOption) *Factory {
	f := &Factory{
		prefixes: [elementTypeCount]string{DefaultStepPrefix, DefaultTransitionPrefix, DefaultLinkPrefix},
		ids:      RandomIDs(),
	}
	for _, opt := range opts {
		opt(f)
	}
	for i := range f.cursors {
		f.cursors[i] = 1
		f.patterns[i] = regexp.MustCompile(`^` + regexp.QuoteMeta(f.prefixes[i]) + `(\d{3,})$`)
	}
	return f
}

// Prefix returns the canonical prefix for t.
func (f *Factory) Prefix(t ElementType) string {
	return f.prefixes[t]
}

// Cursor returns the next sequence number that will be tried for t.
func (f *Factory) Cursor(t ElementType) int {
	return f.cursors[t]
}

// NewID draws an identifier from the configured generator.
func (f *Factory) NewID() uuid.UUID {
	return f.ids.NewID()
}

// NextSeq returns a fresh creation sequence number. Sequence numbers give a
// deterministic total order among otherwise equal elements.
func (f *Factory) NextSeq() uint64 {
	f.seq++
	return f.seq
}

// Seq returns the last sequence number handed out.
func (f *Factory) Seq() uint64 {
	return f.seq
}

// CanonicalName formats n with the prefix of t. The padding grows at the
// 1,000, 10,000 and 100,000 thresholds.
func (f *Factory) CanonicalName(t ElementType, n int) string {
	return fmt.Sprintf("%s%0*d", f.prefixes[t], padWidth(n), n)
}

func padWidth(n int) int {
	switch {
	case n < 1000:
		return 3
	case n < 10000:
		return 4
	case n < 100000:
		return 5
	default:
		return 6
	}
}

// nextName returns the first canonical name at or after the cursor that taken
// does not reject, and advances the cursor past it.
func (f *Factory) nextName(t ElementType, taken func(string) bool) string {
	for {
		name := f.CanonicalName(t, f.cursors[t])
		f.cursors[t]++
		if taken == nil || !taken(name) {
			return name
		}
	}
}

// IsCanonicallyNamed reports whether e carries a generated name of its kind.
func (f *Factory) IsCanonicallyNamed(e Element) bool {
	_, ok := f.canonicalNumber(e.ElementType(), e.Name())
	return ok
}

func (f *Factory) canonicalNumber(t ElementType, name string) (int, bool) {
	m := f.patterns[t].FindStringSubmatch(name)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// Retract rolls every cursor back to one past the highest canonical name in
// use in c, so regeneration after manual edits does not skip numbers.
func (f *Factory) Retract(c *Chart) {
	var highest [elementTypeCount]int
	note := func(e Element) {
		t := e.ElementType()
		if n, ok := f.canonicalNumber(t, e.Name()); ok && n > highest[t] {
			highest[t] = n
		}
	}
	for _, n := range c.nodeOrder {
		note(n)
	}
	for _, l := range c.linkOrder {
		note(l)
	}
	for t := range f.cursors {
		f.cursors[t] = highest[t] + 1
	}
}

// SetState restores cursors and the sequence counter, e.g. after loading a record.
func (f *Factory) SetState(steps, transitions, links int, seq uint64) {
	f.cursors[ElementStep] = max(steps, 1)
	f.cursors[ElementTransition] = max(transitions, 1)
	f.cursors[ElementLink] = max(links, 1)
	if seq > f.seq {
		f.seq = seq
	}
}

func (f *Factory) clone() *Factory {
	cp := *f
	cp.ids = f.ids.Fork()
	return &cp
}
