package extraction

import (
	"html"
	"regexp"
	"strings"
)

// Pre-compiled regular expressions for HTML stripping.
var (
	scriptBlock = regexp.MustCompile(`(?is)<script.*?</script>`)
	styleBlock  = regexp.MustCompile(`(?is)<style.*?</style>`)
	anyTag      = regexp.MustCompile(`<[^>]+>`)
	spaceRuns   = regexp.MustCompile(`[\s\v\x{85}\p{Z}]+`)
)

// StripHTML reduces an HTML fragment to plain text: script and style blocks are
// dropped, remaining tags removed, entities decoded and whitespace collapsed.
// It never fails; unexpected input yields "".
func StripHTML(fragment string) (text string) {
	defer func() {
		if r := recover(); r != nil {
			text = ""
		}
	}()

	fragment = scriptBlock.ReplaceAllString(fragment, "")
	fragment = styleBlock.ReplaceAllString(fragment, "")
	text = anyTag.ReplaceAllString(fragment, "")
	text = html.UnescapeString(text)
	text = spaceRuns.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}
