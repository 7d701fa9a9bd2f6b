// Package textproc holds the pure text stages of the pipeline: normalization,
// title inference, metadata derivation and the summary excerpt.
package textproc

import (
	"regexp"
	"strings"
	"unicode"
)

var newlineRuns = regexp.MustCompile(`\n+`)

// Clean normalizes extracted text. It never fails and Clean(Clean(s)) == Clean(s).
//
// Whitespace runs collapse to a single space before anything else, so paragraph
// breaks in the input do not survive; the newline collapse afterwards is kept for
// compatibility with stored documents.
func Clean(text string) string {
	text = collapseSpace(text)
	text = strings.Map(keepRune, text)
	text = newlineRuns.ReplaceAllString(text, "\n")
	// Removed characters can leave two spaces side by side.
	text = collapseSpace(text)
	return strings.TrimSpace(text)
}

func collapseSpace(text string) string {
	var sb strings.Builder
	sb.Grow(len(text))
	inSpace := false
	for _, r := range text {
		if isSpace(r) {
			if !inSpace {
				sb.WriteByte(' ')
				inSpace = true
			}
			continue
		}
		sb.WriteRune(r)
		inSpace = false
	}
	return sb.String()
}

// isSpace also counts the ASCII information separators U+001C..U+001F as whitespace.
func isSpace(r rune) bool {
	return unicode.IsSpace(r) || (r >= 0x1c && r <= 0x1f)
}

// keepRune keeps word characters, whitespace and basic punctuation; -1 drops the rune.
func keepRune(r rune) rune {
	if unicode.IsLetter(r) || unicode.IsNumber(r) || r == '_' || isSpace(r) {
		return r
	}
	switch r {
	case '.', ',', '!', '?', ';', ':', '-', '(', ')', '[', ']', '{', '}', '"', '\'':
		return r
	}
	return -1
}
