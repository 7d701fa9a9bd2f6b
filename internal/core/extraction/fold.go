package extraction

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/markdave123-py/content-processor/internal/core"
)

// unitSeparator joins the text of consecutive pages or entries.
const unitSeparator = "\n\n"

// unitFold accumulates the text of independently extracted units (pages, archive
// entries). A failed unit is logged and recorded, never fatal on its own.
type unitFold struct {
	format  string
	logger  *slog.Logger
	parts   []string
	skipped []core.UnitError
}

func newUnitFold(format string, logger *slog.Logger) *unitFold {
	return &unitFold{format: format, logger: logger}
}

func (f *unitFold) add(unit, text string, err error) {
	if err != nil {
		f.logger.Warn("skipping unreadable unit", "format", f.format, "unit", unit, "error", err)
		f.skipped = append(f.skipped, core.UnitError{Unit: unit, Err: err})
		return
	}
	if text == "" {
		return
	}
	f.parts = append(f.parts, text)
}

func (f *unitFold) result() (*core.ExtractedText, error) {
	if len(f.parts) == 0 {
		return nil, fmt.Errorf("%w: no readable text found in %s (%d units skipped)",
			core.ErrNoExtractableText, f.format, len(f.skipped))
	}
	return &core.ExtractedText{
		Text:    strings.Join(f.parts, unitSeparator),
		Skipped: f.skipped,
	}, nil
}

// guard runs fn and turns a panic into an error, so a single malformed unit cannot
// take the whole extraction down.
func guard(fn func() (string, error)) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("panic: %v", r)
		}
	}()
	return fn()
}
