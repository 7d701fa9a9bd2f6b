package extraction

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markdave123-py/content-processor/internal/core"
)

type fakePages struct {
	pages []string
	errs  map[int]error
	panic int
}

func (f *fakePages) PageCount() int { return len(f.pages) }

func (f *fakePages) PageText(nr int) (string, error) {
	if nr == f.panic {
		panic("corrupt xref")
	}
	if err := f.errs[nr]; err != nil {
		return "", err
	}
	return f.pages[nr-1], nil
}

func fakePDF(src *fakePages) *PDFExtractor {
	e := NewPDFExtractor(discardLogger())
	e.open = func([]byte) (pageSource, error) { return src, nil }
	return e
}

func TestPDFExtractor_JoinsPages(t *testing.T) {
	e := fakePDF(&fakePages{pages: []string{"Page one.", "", "Page three."}})

	res, err := e.Extract(context.Background(), nil, "doc.pdf")
	require.NoError(t, err)
	assert.Equal(t, "Page one.\n\nPage three.", res.Text)
	assert.Equal(t, 3, res.Pages)
	assert.Empty(t, res.Skipped)
}

func TestPDFExtractor_PartialFailure(t *testing.T) {
	e := fakePDF(&fakePages{
		pages: []string{"Intro.", "", "Outro."},
		errs:  map[int]error{2: errors.New("bad font")},
		panic: 3,
	})

	res, err := e.Extract(context.Background(), nil, "doc.pdf")
	require.NoError(t, err)
	assert.Equal(t, "Intro.", res.Text)
	require.Len(t, res.Skipped, 2)
	assert.Equal(t, "page 2", res.Skipped[0].Unit)
	assert.Equal(t, "page 3", res.Skipped[1].Unit)
}

func TestPDFExtractor_AllPagesFail(t *testing.T) {
	e := fakePDF(&fakePages{
		pages: []string{"", ""},
		errs:  map[int]error{1: errors.New("x"), 2: errors.New("y")},
	})

	_, err := e.Extract(context.Background(), nil, "doc.pdf")
	assert.ErrorIs(t, err, core.ErrNoExtractableText)
}

func TestPDFExtractor_OpenError(t *testing.T) {
	e := NewPDFExtractor(discardLogger())
	e.open = func([]byte) (pageSource, error) { return nil, errors.New("encrypted") }

	_, err := e.Extract(context.Background(), nil, "doc.pdf")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "encrypted")
}

func TestPDFExtractor_Canceled(t *testing.T) {
	e := fakePDF(&fakePages{pages: []string{"a"}})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.Extract(ctx, nil, "doc.pdf")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDecodeContentStream(t *testing.T) {
	tests := []struct {
		name   string
		stream string
		want   string
	}{
		{
			name:   "tj and line moves",
			stream: "BT /F1 12 Tf 72 712 Td (Hello) Tj 0 -14 Td [(Wor) -50 (ld) -300 (again)] TJ ET",
			want:   "Hello\nWorld again",
		},
		{
			name:   "escapes and nesting",
			stream: `BT (a \(b\) \101) Tj T* (c (d) e) Tj ET`,
			want:   "a (b) A\nc (d) e",
		},
		{
			name:   "hex strings",
			stream: "BT <48656C6C6F> Tj ET",
			want:   "Hello",
		},
		{
			name:   "utf-16 hex string",
			stream: "BT <FEFF00E8> Tj ET",
			want:   "è",
		},
		{
			name:   "quote operator",
			stream: "BT (one) Tj (two) ' ET",
			want:   "one\ntwo",
		},
		{
			name:   "graphics only",
			stream: "q 1 0 0 1 0 0 cm 0 0 m 10 10 l S Q",
			want:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, decodeContentStream([]byte(tt.stream)))
		})
	}
}
