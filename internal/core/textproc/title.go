package textproc

import (
	"regexp"
	"strings"
	"unicode"
)

const (
	maxTitleLen  = 100
	titleScanLen = 500
	titleScanMax = 5
)

var (
	separatorRuns = regexp.MustCompile(`[_\-]+`)
	genericTitles = map[string]bool{"document": true, "file": true, "text": true}
)

// InferTitle derives a title from the filename, falling back to the first
// title-like line of text when the filename is too short or generic.
// The result is at most 100 runes.
func InferTitle(filename, text string) string {
	title := filename
	if i := strings.LastIndexByte(title, '.'); i >= 0 {
		title = title[:i]
	}
	title = separatorRuns.ReplaceAllString(title, " ")
	title = titleCase(title)

	if len([]rune(title)) < 3 || genericTitles[strings.ToLower(title)] {
		if line, ok := titleFromText(text); ok {
			title = line
		}
	}
	return truncateRunes(title, maxTitleLen)
}

func titleFromText(text string) (string, bool) {
	lines := strings.Split(truncateRunes(text, titleScanLen), "\n")
	if len(lines) > titleScanMax {
		lines = lines[:titleScanMax]
	}
	for _, line := range lines {
		line = strings.TrimSpace(line)
		n := len([]rune(line))
		if n > 5 && n < maxTitleLen {
			first := []rune(line)[0]
			if unicode.IsUpper(first) {
				return line, true
			}
		}
	}
	return "", false
}

// titleCase title-cases a cased letter that follows an uncased rune and lower-cases
// the rest, so "ML-basics 2024" becomes "Ml-Basics 2024". Uncased letters such as
// CJK ideographs pass through and start a new word.
func titleCase(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	prevCased := false
	for _, r := range s {
		if !isCased(r) {
			sb.WriteRune(r)
			prevCased = false
			continue
		}
		if prevCased {
			sb.WriteRune(unicode.ToLower(r))
		} else {
			sb.WriteRune(unicode.ToTitle(r))
		}
		prevCased = true
	}
	return sb.String()
}

func isCased(r rune) bool {
	return unicode.IsUpper(r) || unicode.IsLower(r) || unicode.IsTitle(r)
}

func truncateRunes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
