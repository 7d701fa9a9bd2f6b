package extraction

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/markdave123-py/content-processor/internal/core"
)

const (
	docxBody     = "word/document.xml"
	docxCoreProp = "docProps/core.xml"
)

// DocxExtractor reads the main document part of a DOCX package: body paragraphs first,
// then the cells of body-level tables in row-major order.
type DocxExtractor struct{}

func NewDocxExtractor() *DocxExtractor { return &DocxExtractor{} }

func (e *DocxExtractor) Extract(_ context.Context, data []byte, _ string) (*core.ExtractedText, error) {
	zr, err := openZip(data)
	if err != nil {
		return nil, err
	}

	body := findEntry(zr, docxBody)
	if body == nil {
		return nil, fmt.Errorf("%s not found in archive", docxBody)
	}
	raw, err := readEntry(body)
	if err != nil {
		return nil, err
	}

	paragraphs, cells, err := parseDocxBody(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", docxBody, err)
	}

	parts := make([]string, 0, len(paragraphs)+len(cells))
	parts = append(parts, paragraphs...)
	parts = append(parts, cells...)
	if len(parts) == 0 {
		return nil, core.ErrNoExtractableText
	}

	res := &core.ExtractedText{Text: strings.Join(parts, unitSeparator)}
	if cp := findEntry(zr, docxCoreProp); cp != nil {
		if raw, err := readEntry(cp); err == nil {
			res.Author = firstElementText(bytes.NewReader(raw), "creator")
		}
	}
	return res, nil
}

// parseDocxBody walks word/document.xml. It returns the non-blank paragraphs that are
// direct children of w:body and the non-blank cells of tables that are direct children
// of w:body. A cell's text is its own paragraphs joined by newlines.
func parseDocxBody(r io.Reader) (paragraphs, cells []string, err error) {
	dec := xml.NewDecoder(r)

	var (
		stack     []string
		para      *strings.Builder
		paraDepth int
		inCell    bool
		cellParas []string
	)

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			name := t.Name.Local
			switch {
			case name == "p" && para == nil && (atPath(stack, "body") || (inCell && atPath(stack, "body", "tbl", "tr", "tc"))):
				para = &strings.Builder{}
				paraDepth = len(stack)
			case name == "tc" && atPath(stack, "body", "tbl", "tr"):
				inCell = true
				cellParas = cellParas[:0]
			case para != nil && name == "tab":
				para.WriteByte('\t')
			case para != nil && (name == "br" || name == "cr"):
				para.WriteByte('\n')
			}
			stack = append(stack, name)

		case xml.CharData:
			if para != nil && len(stack) > 0 && stack[len(stack)-1] == "t" {
				para.Write(t)
			}

		case xml.EndElement:
			stack = stack[:len(stack)-1]
			switch {
			case t.Name.Local == "p" && para != nil && len(stack) == paraDepth:
				text := para.String()
				para = nil
				if inCell {
					cellParas = append(cellParas, text)
				} else if strings.TrimSpace(text) != "" {
					paragraphs = append(paragraphs, text)
				}
			case t.Name.Local == "tc" && inCell && atPath(stack, "body", "tbl", "tr"):
				inCell = false
				if cell := strings.Join(cellParas, "\n"); strings.TrimSpace(cell) != "" {
					cells = append(cells, cell)
				}
			}
		}
	}
	return paragraphs, cells, nil
}

// atPath reports whether the open elements below the document root are exactly path.
func atPath(stack []string, path ...string) bool {
	if len(stack) != len(path)+1 {
		return false
	}
	for i, name := range path {
		if stack[i+1] != name {
			return false
		}
	}
	return true
}
