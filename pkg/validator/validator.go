package validator

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aretw0/pfc/internal/logging"
	"github.com/aretw0/pfc/pkg/chart"
)

// Hooks are optional callbacks invoked during validation.
type Hooks struct {
	OnFinding  func(context.Context, Finding)
	OnComplete func(context.Context, *Report)
}

// Validator proves the execution structure of charts by simulating token
// flow over a private, reduced clone. A Validator holds no per-call state
// and may be shared between goroutines as long as each chart it is given
// is not being mutated at the same time.
type Validator struct {
	logger *slog.Logger
	hooks  Hooks
	nested bool
}

// Option configures a Validator.
type Option func(*Validator)

// WithLogger sets the logger used for verdicts and simulation traces.
func WithLogger(logger *slog.Logger) Option {
	return func(v *Validator) {
		if logger != nil {
			v.logger = logger
		}
	}
}

// WithHooks registers observability callbacks.
func WithHooks(h Hooks) Option {
	return func(v *Validator) {
		v.hooks = h
	}
}

// WithNested controls whether nested action charts are validated too.
// Enabled by default.
func WithNested(enabled bool) Option {
	return func(v *Validator) {
		v.nested = enabled
	}
}

// New creates a Validator.
func New(opts ...Option) *Validator {
	v := &Validator{
		logger: logging.NewNop(),
		nested: true,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Validate reports whether c is structurally executable, together with the
// findings that explain a negative verdict.
func Validate(c *chart.Chart, opts ...Option) (bool, []Finding) {
	r := New(opts...).Validate(context.Background(), c)
	return r.Valid, r.Findings
}

// Validate runs a full validation of c. The caller's chart is never
// modified. The context is only handed to hooks; validation itself always
// runs to completion.
func (v *Validator) Validate(ctx context.Context, c *chart.Chart) *Report {
	began := time.Now()
	work := c.Clone()
	report := &Report{Chart: c.Name(), Findings: []Finding{}}
	report.Reduced = work.Reduce()
	work.Refresh()

	if err := work.Audit(); err != nil {
		v.halt(report, Finding{
			Kind:      InconsistentStructure,
			Narrative: err.Error(),
			Chart:     c.Name(),
		})
	} else {
		v.validateTree(report, work, c.Name())
	}

	report.Valid = len(report.Findings) == 0
	report.Elapsed = time.Since(began)
	for _, f := range report.Findings {
		if v.hooks.OnFinding != nil {
			v.hooks.OnFinding(ctx, f)
		}
	}
	if v.hooks.OnComplete != nil {
		v.hooks.OnComplete(ctx, report)
	}
	v.logger.Info("chart validated",
		"chart", report.Chart,
		"valid", report.Valid,
		"findings", len(report.Findings),
		"reduced", report.Reduced,
		"elapsed", report.Elapsed)
	return report
}

// validateTree validates c and, depth-first, its nested action charts. It
// returns false once a hard condition has replaced the findings.
func (v *Validator) validateTree(report *Report, c *chart.Chart, path string) bool {
	if f, hard := v.preflight(c, path); hard {
		v.halt(report, f)
		return false
	}
	report.Findings = append(report.Findings, v.simulate(c, path)...)
	if !v.nested {
		return true
	}
	for _, n := range c.Steps() {
		for _, name := range n.Actions() {
			sub, _ := n.Action(name)
			if len(sub.Nodes()) == 0 {
				continue
			}
			if !v.validateTree(report, sub, path+chart.PathSeparator+n.Name()+chart.PathSeparator+name) {
				return false
			}
		}
	}
	return true
}

// halt replaces every collected finding with the single hard finding f.
func (v *Validator) halt(report *Report, f Finding) {
	v.logger.Debug("validation halted", "chart", f.Chart, "kind", f.Kind)
	report.Findings = []Finding{f}
}

// preflight checks the conditions without which no token can be simulated.
func (v *Validator) preflight(c *chart.Chart, path string) (Finding, bool) {
	starts := c.StartNodes()
	switch len(starts) {
	case 0:
		return Finding{
			Kind:      NoStartNode,
			Narrative: "chart has no node without predecessors",
			Chart:     path,
		}, true
	case 1:
	default:
		names := make([]string, len(starts))
		for i, n := range starts {
			names[i] = n.Name()
		}
		return Finding{
			Kind:      MultipleStartNodes,
			Narrative: fmt.Sprintf("chart has %d start nodes: %s", len(starts), strings.Join(names, ", ")),
			Chart:     path,
			Node:      starts[1].Name(),
			NodeID:    starts[1].ID(),
		}, true
	}

	for _, n := range c.FinishNodes() {
		if n.IsTransition() {
			return Finding{}, false
		}
	}
	return Finding{
		Kind:      NoFinishTransition,
		Narrative: "no transition without successors terminates the chart",
		Chart:     path,
	}, true
}
