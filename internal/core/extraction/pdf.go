package extraction

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/markdave123-py/content-processor/internal/core"
)

// pageSource yields the text of a document page by page (1-based).
type pageSource interface {
	PageCount() int
	PageText(pageNr int) (string, error)
}

// PDFExtractor extracts text page by page; unreadable pages are skipped.
type PDFExtractor struct {
	open   func(data []byte) (pageSource, error)
	logger *slog.Logger
}

// NewPDFExtractor creates a pdfcpu-backed PDF extractor.
func NewPDFExtractor(logger *slog.Logger) *PDFExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &PDFExtractor{open: openPDFCPU, logger: logger}
}

func (e *PDFExtractor) Extract(ctx context.Context, data []byte, filename string) (*core.ExtractedText, error) {
	src, err := e.open(data)
	if err != nil {
		return nil, fmt.Errorf("read pdf: %w", err)
	}

	fold := newUnitFold("pdf", e.logger.With("filename", filename))
	pages := src.PageCount()
	for nr := 1; nr <= pages; nr++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		text, err := guard(func() (string, error) { return src.PageText(nr) })
		fold.add("page "+strconv.Itoa(nr), text, err)
	}

	res, err := fold.result()
	if err != nil {
		return nil, err
	}
	res.Pages = pages
	return res, nil
}

// pdfcpuPages reads page content streams from a parsed pdfcpu context.
type pdfcpuPages struct {
	ctx *model.Context
}

func openPDFCPU(data []byte) (src pageSource, err error) {
	defer func() {
		if r := recover(); r != nil {
			src, err = nil, fmt.Errorf("pdfcpu read: panic: %v", r)
		}
	}()
	conf := model.NewDefaultConfiguration()
	ctx, rerr := api.ReadValidateAndOptimize(bytes.NewReader(data), conf)
	if rerr != nil {
		return nil, fmt.Errorf("pdfcpu read: %w", rerr)
	}
	return &pdfcpuPages{ctx: ctx}, nil
}

func (p *pdfcpuPages) PageCount() int { return p.ctx.PageCount }

func (p *pdfcpuPages) PageText(pageNr int) (string, error) {
	r, err := pdfcpu.ExtractPageContent(p.ctx, pageNr)
	if err != nil {
		return "", err
	}
	if r == nil {
		return "", nil
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read content stream: %w", err)
	}
	return decodeContentStream(data), nil
}
