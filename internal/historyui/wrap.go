package historyui

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// wrapText word-wraps plain text to the given display width. Words longer
// than the width are broken mid-word.
func wrapText(text string, width int) string {
	if width <= 0 {
		return text
	}
	var out strings.Builder
	lineWidth := 0
	for i, word := range strings.Fields(text) {
		wordWidth := runewidth.StringWidth(word)
		if lineWidth > 0 && lineWidth+1+wordWidth > width {
			out.WriteByte('\n')
			lineWidth = 0
		} else if i > 0 {
			out.WriteByte(' ')
			lineWidth++
		}
		for wordWidth > width {
			head := runewidth.Truncate(word, width, "")
			out.WriteString(head)
			out.WriteByte('\n')
			word = strings.TrimPrefix(word, head)
			wordWidth = runewidth.StringWidth(word)
			lineWidth = 0
		}
		out.WriteString(word)
		lineWidth += wordWidth
	}
	return out.String()
}
