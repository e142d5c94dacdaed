package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the launchtree ASCII banner to w.
func PrintBanner(w io.Writer, p termenv.Profile) {
	lines := []struct {
		text  string
		color string
	}{
		{" _                        _     _                 ", "#34d399"},
		{"| | __ _ _   _ _ __   ___| |__ | |_ _ __ ___  ___ ", "#2dd4bf"},
		{"| |/ _` | | | | '_ \\ / __| '_ \\| __| '__/ _ \\/ _ \\", "#22d3ee"},
		{"| | (_| | |_| | | | | (__| | | | |_| | |  __/  __/", "#38bdf8"},
		{"|_|\\__,_|\\__,_|_| |_|\\___|_| |_|\\__|_|  \\___|\\___|", "#60a5fa"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, p.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w)
}
