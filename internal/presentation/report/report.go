package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/pfc/pkg/chart"
	"github.com/aretw0/pfc/pkg/validator"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/muesli/termenv"
)

// Printer writes reports in one of the supported formats: "text" (default),
// "json" or "markdown".
type Printer struct {
	w       io.Writer
	format  string
	profile termenv.Profile
	render  func(string) (string, error)
}

// NewPrinter creates a Printer. Colour and markdown rendering are only
// enabled when w is a terminal.
func NewPrinter(w io.Writer, format string) *Printer {
	p := &Printer{w: w, format: strings.ToLower(format), profile: termenv.Ascii}
	if f, ok := w.(interface{ Fd() uintptr }); ok && isTerminalFd(f.Fd()) {
		p.profile = termenv.ColorProfile()
		p.render = NewRenderer()
	}
	return p
}

// Verdict returns a one-line, coloured summary of r.
func Verdict(p termenv.Profile, r *validator.Report) string {
	if r.Valid {
		return p.String("✔ " + r.Chart + " is valid").Foreground(p.Color("#22c55e")).String()
	}
	msg := fmt.Sprintf("✘ %s is invalid (%d finding(s))", r.Chart, len(r.Findings))
	return p.String(msg).Foreground(p.Color("#ef4444")).Bold().String()
}

// Markdown summarizes r as a markdown document.
func Markdown(r *validator.Report) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", r.Chart)
	if r.Valid {
		fmt.Fprintf(&sb, "**Valid.** %d null node(s) reduced, checked in %s.\n", r.Reduced, r.Elapsed)
		return sb.String()
	}
	fmt.Fprintf(&sb, "**Invalid.** %d finding(s):\n\n", len(r.Findings))
	sb.WriteString("| Kind | Chart | Node | Narrative |\n|---|---|---|---|\n")
	for _, f := range r.Findings {
		node := f.Node
		if node == "" {
			node = "-"
		}
		fmt.Fprintf(&sb, "| %s | %s | %s | %s |\n", f.Kind, f.Chart, node, strings.ReplaceAll(f.Narrative, "|", "\\|"))
	}
	return sb.String()
}

// PrintReports writes every report in the configured format.
func (p *Printer) PrintReports(reports ...*validator.Report) error {
	switch p.format {
	case "json":
		enc := json.NewEncoder(p.w)
		enc.SetIndent("", "  ")
		return enc.Encode(reports)
	case "md", "markdown":
		for _, r := range reports {
			if err := p.markdown(Markdown(r)); err != nil {
				return err
			}
		}
		return nil
	}

	for _, r := range reports {
		fmt.Fprintln(p.w, Verdict(p.profile, r))
		if r.Valid {
			continue
		}
		t := table.NewWriter()
		t.SetOutputMirror(p.w)
		t.SetStyle(table.StyleLight)
		t.AppendHeader(table.Row{"Kind", "Chart", "Node", "Narrative"})
		for _, f := range r.Findings {
			t.AppendRow(table.Row{f.Kind, f.Chart, f.Node, f.Narrative})
		}
		t.Render()
	}
	return nil
}

func (p *Printer) markdown(doc string) error {
	if p.render != nil {
		out, err := p.render(doc)
		if err != nil {
			return err
		}
		doc = out
	}
	_, err := io.WriteString(p.w, doc)
	return err
}

// PrintNodes writes the node inventory of c in structure order, followed
// by the nodes of each nested action chart.
func (p *Printer) PrintNodes(c *chart.Chart) error {
	rows := inventory(c, "")
	if p.format == "json" {
		enc := json.NewEncoder(p.w)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	}

	t := table.NewWriter()
	t.SetOutputMirror(p.w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"#", "Path", "Kind", "In", "Out", "Null", "Unit", "Guard"})
	for _, r := range rows {
		ordinal := "-"
		if r.Ordinal != chart.Unassigned {
			ordinal = fmt.Sprint(r.Ordinal)
		}
		t.AppendRow(table.Row{ordinal, r.Path, r.Kind, r.In, r.Out, r.Null, r.Unit, r.Guard})
	}
	if p.format == "md" || p.format == "markdown" {
		t.RenderMarkdown()
	} else {
		t.Render()
	}
	_, err := fmt.Fprintf(p.w, "(%d nodes)\n", len(rows))
	return err
}

// NodeRow is one line of a node inventory.
type NodeRow struct {
	Path    string `json:"path"`
	Kind    string `json:"kind"`
	Ordinal int    `json:"ordinal"`
	In      int    `json:"in"`
	Out     int    `json:"out"`
	Null    bool   `json:"null"`
	Unit    string `json:"unit,omitempty"`
	Guard   string `json:"guard,omitempty"`
}

func inventory(c *chart.Chart, prefix string) []NodeRow {
	var rows []NodeRow
	for _, n := range c.Nodes() {
		r := NodeRow{
			Path:    prefix + n.Name(),
			Kind:    n.Kind().String(),
			Ordinal: n.Ordinal(),
			In:      n.PredecessorCount(),
			Out:     n.SuccessorCount(),
			Null:    n.IsNullNode(),
			Unit:    n.Unit(),
		}
		if e := n.Expression(); e != nil {
			r.Guard = e.String()
		}
		rows = append(rows, r)
	}
	for _, n := range c.Steps() {
		for _, name := range n.Actions() {
			sub, _ := n.Action(name)
			rows = append(rows, inventory(sub, prefix+n.Name()+chart.PathSeparator+name+chart.PathSeparator)...)
		}
	}
	return rows
}
