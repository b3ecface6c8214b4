// Package expression provides the default guard expressions attached to
// transitions. Guards are Starlark expressions; the package parses them only
// to learn which names they reference and never evaluates them.
package expression

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/aretw0/pfc/pkg/chart"
	"go.starlark.net/syntax"
)

// ErrSyntax is returned when guard text is not a valid expression.
var ErrSyntax = errors.New("expression: invalid guard")

var constants = map[string]bool{"True": true, "False": true, "None": true}

// reference is one occurrence of a name, as rune offsets into the text.
type reference struct {
	name       string
	start, end int
}

// Guard is an immutable parsed guard expression.
type Guard struct {
	text string
	refs []reference
}

var _ chart.Expression = (*Guard)(nil)

// Parse parses text as a guard. Dotted chains such as tank.level are
// reported as a single reference.
func Parse(text string) (*Guard, error) {
	expr, err := (&syntax.FileOptions{}).ParseExpr("guard", text, 0)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSyntax, err)
	}
	lines := lineOffsets(text)
	g := &Guard{text: text}
	collect(expr, func(name string, from, to syntax.Position) {
		g.refs = append(g.refs, reference{
			name:  name,
			start: offset(lines, from),
			end:   offset(lines, to),
		})
	})
	slices.SortFunc(g.refs, func(a, b reference) int { return a.start - b.start })
	return g, nil
}

// MustParse is like Parse but panics on error. Intended for fixtures.
func MustParse(text string) *Guard {
	g, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return g
}

// Parser adapts Parse to chart.ExpressionParser.
func Parser(text string) (chart.Expression, error) {
	g, err := Parse(text)
	if err != nil {
		return nil, err
	}
	return g, nil
}

func (g *Guard) String() string { return g.text }

// References returns every referenced name once, in order of first use.
func (g *Guard) References() []string {
	var names []string
	for _, r := range g.refs {
		if !slices.Contains(names, r.name) {
			names = append(names, r.name)
		}
	}
	return names
}

// Relocate returns a guard with every reference found in renames replaced.
// The receiver is left untouched; a guard with nothing to rename is
// returned as is.
func (g *Guard) Relocate(renames map[string]string) chart.Expression {
	hit := slices.ContainsFunc(g.refs, func(r reference) bool {
		_, ok := renames[r.name]
		return ok
	})
	if !hit {
		return g
	}

	src := []rune(g.text)
	var b strings.Builder
	out := &Guard{refs: make([]reference, 0, len(g.refs))}
	cursor, shift := 0, 0
	for _, r := range g.refs {
		b.WriteString(string(src[cursor:r.start]))
		name := r.name
		if to, ok := renames[name]; ok {
			name = to
		}
		b.WriteString(name)
		width := len([]rune(name))
		out.refs = append(out.refs, reference{name: name, start: r.start + shift, end: r.start + shift + width})
		shift += width - (r.end - r.start)
		cursor = r.end
	}
	b.WriteString(string(src[cursor:]))
	out.text = b.String()
	return out
}

// collect walks expr and reports each name reference with its span.
// Keyword argument names and attribute names behind a non-name receiver
// are not references.
func collect(expr syntax.Expr, emit func(name string, from, to syntax.Position)) {
	var visit func(n syntax.Node) bool
	visit = func(n syntax.Node) bool {
		switch e := n.(type) {
		case *syntax.Ident:
			if !constants[e.Name] {
				from, to := e.Span()
				emit(e.Name, from, to)
			}
			return false
		case *syntax.DotExpr:
			if name, ok := dotted(e); ok {
				from, to := e.Span()
				emit(name, from, to)
				return false
			}
			syntax.Walk(e.X, visit)
			return false
		case *syntax.CallExpr:
			syntax.Walk(e.Fn, visit)
			for _, arg := range e.Args {
				if kw, ok := arg.(*syntax.BinaryExpr); ok && kw.Op == syntax.EQ {
					if _, named := kw.X.(*syntax.Ident); named {
						syntax.Walk(kw.Y, visit)
						continue
					}
				}
				syntax.Walk(arg, visit)
			}
			return false
		}
		return true
	}
	syntax.Walk(expr, visit)
}

// dotted flattens a.b.c into its text when every receiver is a name.
func dotted(e *syntax.DotExpr) (string, bool) {
	switch x := e.X.(type) {
	case *syntax.Ident:
		return x.Name + "." + e.Name.Name, true
	case *syntax.DotExpr:
		head, ok := dotted(x)
		if !ok {
			return "", false
		}
		return head + "." + e.Name.Name, true
	}
	return "", false
}

// lineOffsets returns the rune offset at which each line starts.
func lineOffsets(text string) []int {
	starts := []int{0}
	for i, r := range []rune(text) {
		if r == '\n' {
			starts = append(starts, i+1)
		}
	}
	return starts
}

// offset converts a 1-based line and column position to a rune offset.
func offset(lines []int, p syntax.Position) int {
	line := int(p.Line) - 1
	if line < 0 {
		line = 0
	}
	if line >= len(lines) {
		line = len(lines) - 1
	}
	return lines[line] + int(p.Col) - 1
}
