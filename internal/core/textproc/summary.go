package textproc

import "strings"

const (
	summarySentences = 3
	maxSummaryLen    = 500
)

// Summarize returns the first three ". "-separated sentences, cut to 500 runes
// plus an ellipsis when longer.
func Summarize(text string) string {
	parts := strings.SplitN(text, ". ", summarySentences+1)
	if len(parts) > summarySentences {
		parts = parts[:summarySentences]
	}
	summary := strings.Join(parts, ". ")
	if cut := truncateRunes(summary, maxSummaryLen); cut != summary {
		return cut + "..."
	}
	return summary
}
