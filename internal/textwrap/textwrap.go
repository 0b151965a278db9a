// Package textwrap breaks comment text into lines no wider than a limit.
package textwrap

import (
	"strings"
)

// Wrap splits text on newlines and word-wraps every line to width runes.
// Words longer than width are kept whole. A width <= 0 only splits on
// newlines.
func Wrap(text string, width int) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		if width <= 0 {
			out = append(out, line)
			continue
		}
		out = append(out, wrapLine(line, width)...)
	}
	return out
}

func wrapLine(line string, width int) []string {
	words := strings.Fields(line)
	if len(words) == 0 {
		return []string{""}
	}
	var (
		lines []string
		cur   strings.Builder
		n     int
	)
	for _, w := range words {
		wl := len([]rune(w))
		if n > 0 && n+1+wl > width {
			lines = append(lines, cur.String())
			cur.Reset()
			n = 0
		}
		if n > 0 {
			cur.WriteByte(' ')
			n++
		}
		cur.WriteString(w)
		n += wl
	}
	return append(lines, cur.String())
}
