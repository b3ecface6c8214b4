package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/pfc/pkg/chart"
	"github.com/aretw0/pfc/pkg/validator"
)

// GraphOverlay contains validation results to visualize on the graph.
// Entries are node paths as accepted by chart.FindNode.
type GraphOverlay struct {
	Flagged []string
}

// GenerateMermaid produces a Mermaid flowchart for c and its nested action
// charts. It applies semantic styling:
// - Start step: (["Stadium"])
// - Step: ["Rectangle"]
// - Transition: a bar carrying its guard
// - Loopback links are dashed
// Nested charts are drawn as subgraphs under their step.
func GenerateMermaid(c *chart.Chart, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")
	writeChart(&sb, c, "", "    ")

	sb.WriteString("\n    classDef transition fill:#000,stroke:#000,color:#fff;\n")
	if overlay != nil && len(overlay.Flagged) > 0 {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme (Light/Dark)
		sb.WriteString("    classDef flagged fill:#ffcdd2,stroke:#b71c1c,stroke-width:3px,color:#000;\n")
		seen := make(map[string]bool)
		for _, p := range overlay.Flagged {
			id := sanitizeMermaidID(p)
			if id == "" || seen[id] {
				continue
			}
			seen[id] = true
			fmt.Fprintf(&sb, "    class %s flagged;\n", id)
		}
	}
	return sb.String()
}

func writeChart(sb *strings.Builder, c *chart.Chart, prefix, indent string) {
	id := func(n *chart.Node) string {
		return sanitizeMermaidID(prefix + n.Name())
	}

	for _, n := range c.Nodes() {
		label := escapeLabel(n.Name())
		switch {
		case n.IsTransition():
			if e := n.Expression(); e != nil {
				label += "<br/>" + escapeLabel(e.String())
			}
			fmt.Fprintf(sb, "%s%s[\"%s\"]:::transition\n", indent, id(n), label)
		case n.IsStart():
			fmt.Fprintf(sb, "%s%s([\"%s\"])\n", indent, id(n), label)
		default:
			if n.Unit() != "" {
				label += "<br/>" + escapeLabel(n.Unit())
			}
			fmt.Fprintf(sb, "%s%s[\"%s\"]\n", indent, id(n), label)
		}
	}

	for _, l := range c.Links() {
		from, to := l.Predecessor(), l.Successor()
		if from == nil || to == nil {
			continue
		}
		arrow := "-->"
		if l.IsLoopback() {
			arrow = "-.->"
		}
		if l.Priority() != 0 {
			arrow = fmt.Sprintf("-- \"%d\" -->", l.Priority())
			if l.IsLoopback() {
				arrow = fmt.Sprintf("-. \"%d\" .->", l.Priority())
			}
		}
		fmt.Fprintf(sb, "%s%s %s %s\n", indent, id(from), arrow, id(to))
	}

	for _, n := range c.Steps() {
		for _, name := range n.Actions() {
			sub, _ := n.Action(name)
			path := prefix + n.Name() + chart.PathSeparator + name
			fmt.Fprintf(sb, "%ssubgraph %s [\"%s\"]\n", indent, sanitizeMermaidID(path), escapeLabel(path))
			writeChart(sb, sub, path+chart.PathSeparator, indent+"    ")
			fmt.Fprintf(sb, "%send\n", indent)
			fmt.Fprintf(sb, "%s%s -.- %s\n", indent, id(n), sanitizeMermaidID(path))
		}
	}
}

func escapeLabel(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}

// OverlayFromReport flags every node named by a finding of r. Findings of
// nested charts are mapped to their path below the root chart.
func OverlayFromReport(r *validator.Report) *GraphOverlay {
	overlay := &GraphOverlay{}
	for _, f := range r.Findings {
		if f.Node == "" {
			continue
		}
		rel := strings.TrimPrefix(strings.TrimPrefix(f.Chart, r.Chart), chart.PathSeparator)
		if rel != "" {
			rel += chart.PathSeparator
		}
		overlay.Flagged = append(overlay.Flagged, rel+f.Node)
	}
	return overlay
}
