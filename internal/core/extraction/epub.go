package extraction

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/markdave123-py/content-processor/internal/core"
)

var errInvalidUTF8 = errors.New("entry is not valid UTF-8")

// contentSuffixes select the EPUB entries carrying readable text. Matching is case-sensitive.
var contentSuffixes = []string{".html", ".xhtml", ".htm"}

// EPUBExtractor reads every HTML entry of an EPUB archive in archive order.
type EPUBExtractor struct {
	logger *slog.Logger
}

func NewEPUBExtractor(logger *slog.Logger) *EPUBExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &EPUBExtractor{logger: logger}
}

func (e *EPUBExtractor) Extract(ctx context.Context, data []byte, filename string) (*core.ExtractedText, error) {
	zr, err := openZip(data)
	if err != nil {
		return nil, err
	}

	var entries []*zip.File
	for _, f := range zr.File {
		if isContentEntry(f.Name) {
			entries = append(entries, f)
		}
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: no content files found", core.ErrNoExtractableText)
	}

	fold := newUnitFold("epub", e.logger.With("filename", filename))
	for _, f := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		text, err := guard(func() (string, error) { return entryText(f) })
		fold.add(f.Name, text, err)
	}

	res, err := fold.result()
	if err != nil {
		return nil, err
	}
	res.Author = epubAuthor(zr)
	return res, nil
}

func isContentEntry(name string) bool {
	for _, s := range contentSuffixes {
		if strings.HasSuffix(name, s) {
			return true
		}
	}
	return false
}

func entryText(f *zip.File) (string, error) {
	raw, err := readEntry(f)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(raw) {
		return "", errInvalidUTF8
	}
	return StripHTML(string(raw)), nil
}

// epubAuthor reads dc:creator from the first package document (.opf).
func epubAuthor(zr *zip.Reader) string {
	for _, f := range zr.File {
		if !strings.HasSuffix(strings.ToLower(f.Name), ".opf") {
			continue
		}
		raw, err := readEntry(f)
		if err != nil {
			return ""
		}
		return firstElementText(bytes.NewReader(raw), "creator")
	}
	return ""
}
