package textproc

import (
	"strings"
	"unicode/utf8"

	"github.com/markdave123-py/content-processor/internal/models"
)

// WordsPerMinute is the reading speed behind EstimatedReadingTime.
const WordsPerMinute = 200

var (
	englishWords = []string{"the", "and", "is", "in", "to", "of", "a", "that", "it", "with"}
	italianWords = []string{"il", "di", "che", "e", "la", "per", "in", "un", "è", "con"}
)

// BuildMetadata derives counts, reading time and language from cleaned text.
func BuildMetadata(text, fileType string, fileSize int64) models.DocumentMetadata {
	words := len(strings.Fields(text))
	return models.DocumentMetadata{
		FileType:             fileType,
		FileSize:             fileSize,
		WordCount:            words,
		CharacterCount:       utf8.RuneCountInString(text),
		EstimatedReadingTime: max(1, words/WordsPerMinute),
		Language:             DetectLanguage(text),
	}
}

// DetectLanguage is a function-word heuristic choosing between English and Italian.
// A word counts once when it appears surrounded by single spaces, so words at the
// very start or end of the text are not seen.
func DetectLanguage(text string) string {
	lower := strings.ToLower(text)
	en := countPresent(lower, englishWords)
	it := countPresent(lower, italianWords)
	switch {
	case en > it:
		return models.LanguageEnglish
	case it > en:
		return models.LanguageItalian
	default:
		return models.LanguageUnknown
	}
}

func countPresent(text string, words []string) int {
	n := 0
	for _, w := range words {
		if strings.Contains(text, " "+w+" ") {
			n++
		}
	}
	return n
}
