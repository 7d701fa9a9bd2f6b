package extraction

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markdave123-py/content-processor/internal/core"
)

// buildPDF writes a minimal uncompressed PDF with one Helvetica text page per
// content stream, with a correct cross-reference table.
func buildPDF(t *testing.T, pages ...string) []byte {
	t.Helper()
	n := len(pages)
	fontObj := 3 + 2*n

	var objs []string
	objs = append(objs, "<< /Type /Catalog /Pages 2 0 R >>")
	kids := ""
	for i := range pages {
		kids += fmt.Sprintf("%d 0 R ", 3+i)
	}
	objs = append(objs, fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", kids, n))
	for i := range pages {
		objs = append(objs, fmt.Sprintf(
			"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 %d 0 R >> >> /Contents %d 0 R >>",
			fontObj, 3+n+i))
	}
	for _, content := range pages {
		objs = append(objs, fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content))
	}
	objs = append(objs, "<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>")

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objs))
	for i, body := range objs {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, body)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(objs)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objs)+1, xref)
	return buf.Bytes()
}

func TestRegistry_ExtractPDF(t *testing.T) {
	data := buildPDF(t,
		"BT /F1 12 Tf 72 720 Td (Hello first page.) Tj ET",
		"BT /F1 12 Tf 72 720 Td (Second page text.) Tj ET",
	)

	res, err := NewRegistry(nil).Extract(context.Background(), data, "two.pdf", MIMEPDF)
	require.NoError(t, err)
	assert.Equal(t, "Hello first page.\n\nSecond page text.", res.Text)
	assert.Equal(t, 2, res.Pages)
	assert.Empty(t, res.Skipped)
}

func TestRegistry_ExtractPDFWithoutText(t *testing.T) {
	data := buildPDF(t, "0 0 m 100 100 l S")

	_, err := NewRegistry(nil).Extract(context.Background(), data, "drawing.pdf", MIMEPDF)
	assert.ErrorIs(t, err, core.ErrNoExtractableText)
}
