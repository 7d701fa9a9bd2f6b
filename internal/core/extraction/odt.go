package extraction

import (
	"bytes"
	"context"
	"strings"

	"code.sajari.com/docconv"

	"github.com/markdave123-py/content-processor/internal/core"
)

// DocconvExtractor delegates conversion of one MIME type to docconv.
type DocconvExtractor struct {
	mimeType       string
	useReadability bool
}

func NewDocconvExtractor(mimeType string, useReadability bool) *DocconvExtractor {
	return &DocconvExtractor{mimeType: mimeType, useReadability: useReadability}
}

func (e *DocconvExtractor) Extract(ctx context.Context, data []byte, _ string) (*core.ExtractedText, error) {
	res, err := docconv.Convert(bytes.NewReader(data), e.mimeType, e.useReadability)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(res.Body) == "" {
		return nil, core.ErrNoExtractableText
	}
	return &core.ExtractedText{
		Text:   res.Body,
		Author: res.Meta["Author"],
	}, nil
}
