package report

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the PFC banner in a teal-to-blue gradient.
func PrintBanner(w io.Writer, p termenv.Profile) {
	lines := []struct {
		text  string
		color string
	}{
		{"  ____  _____ ____ ", "#2dd4bf"},
		{" |  _ \\|  ___/ ___|", "#22d3ee"},
		{" | |_) | |_ | |    ", "#38bdf8"},
		{" |  __/|  _|| |___ ", "#60a5fa"},
		{" |_|   |_|   \\____|", "#818cf8"},
	}
	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, p.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w)
}
