package render

import (
	"strings"

	"golang.org/x/image/font"
)

// textWidth returns the advance width of s in pixels for the given face.
func textWidth(f font.Face, s string) float64 {
	return float64(font.MeasureString(f, s)) / 64
}

// truncateMinRunes is the floor below which truncation stops shortening.
const truncateMinRunes = 8

// truncateToWidth shortens s until it (plus an ellipsis) fits maxWidth,
// dropping four runes per step. The rune floor guarantees termination even
// for budgets no string can satisfy.
func truncateToWidth(f font.Face, s string, maxWidth float64) string {
	if textWidth(f, s) <= maxWidth {
		return s
	}
	r := []rune(s)
	for len(r) > truncateMinRunes {
		if len(r) <= 4 {
			break
		}
		r = r[:len(r)-4]
		candidate := string(r) + "..."
		if textWidth(f, candidate) <= maxWidth {
			return candidate
		}
	}
	if len(r) > truncateMinRunes {
		r = r[:truncateMinRunes]
	}
	return string(r) + "..."
}

// wrapChars wraps text against a pixel budget one rune at a time. The
// dominant display script carries no inter-word spaces, so breaking on
// word boundaries would be wrong; a rune that would overflow the budget
// starts the next line instead. Explicit newlines split paragraphs first
// and empty paragraphs survive as empty entries (rendered as spacing).
// A single rune wider than the budget is emitted as its own line rather
// than split.
func wrapChars(f font.Face, text string, maxWidth float64) []string {
	var lines []string
	for _, paragraph := range strings.Split(text, "\n") {
		if paragraph == "" {
			lines = append(lines, "")
			continue
		}

		var current strings.Builder
		currentW := 0.0
		for _, r := range paragraph {
			rw := textWidth(f, string(r))
			if current.Len() > 0 && currentW+rw > maxWidth {
				lines = append(lines, current.String())
				current.Reset()
				currentW = 0
			}
			current.WriteRune(r)
			currentW += rw
		}
		if current.Len() > 0 {
			lines = append(lines, current.String())
		}
	}
	return lines
}
