package extraction

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markdave123-py/content-processor/internal/core"
)

const docxDocument = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>First paragraph.</w:t></w:r></w:p>
    <w:tbl>
      <w:tr>
        <w:tc><w:p><w:r><w:t>A1</w:t></w:r></w:p><w:p><w:r><w:t>A1 second line</w:t></w:r></w:p></w:tc>
        <w:tc><w:p><w:r><w:t>B1</w:t></w:r></w:p></w:tc>
      </w:tr>
      <w:tr>
        <w:tc><w:p/></w:tc>
        <w:tc><w:p><w:r><w:t>B2</w:t></w:r></w:p></w:tc>
      </w:tr>
    </w:tbl>
    <w:p><w:r><w:t xml:space="preserve">   </w:t></w:r></w:p>
    <w:p><w:r><w:t>Name</w:t><w:tab/><w:t>Value</w:t><w:br/><w:t>Next</w:t></w:r></w:p>
    <w:sectPr/>
  </w:body>
</w:document>`

const docxCore = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<cp:coreProperties xmlns:cp="http://schemas.openxmlformats.org/package/2006/metadata/core-properties" xmlns:dc="http://purl.org/dc/elements/1.1/">
  <dc:title>Report</dc:title>
  <dc:creator>Grace Hopper</dc:creator>
</cp:coreProperties>`

func TestDocxExtractor_ParagraphsThenCells(t *testing.T) {
	data := buildZip(t,
		zipEntry{"[Content_Types].xml", "<Types/>"},
		zipEntry{"word/document.xml", docxDocument},
		zipEntry{"docProps/core.xml", docxCore},
	)

	res, err := NewDocxExtractor().Extract(context.Background(), data, "report.docx")
	require.NoError(t, err)

	want := "First paragraph.\n\n" +
		"Name\tValue\nNext\n\n" +
		"A1\nA1 second line\n\n" +
		"B1\n\n" +
		"B2"
	assert.Equal(t, want, res.Text)
	assert.Equal(t, "Grace Hopper", res.Author)
}

func TestDocxExtractor_Empty(t *testing.T) {
	data := buildZip(t, zipEntry{"word/document.xml", `<w:document xmlns:w="x"><w:body><w:p/></w:body></w:document>`})

	_, err := NewDocxExtractor().Extract(context.Background(), data, "empty.docx")
	assert.ErrorIs(t, err, core.ErrNoExtractableText)
}

func TestDocxExtractor_MissingBody(t *testing.T) {
	data := buildZip(t, zipEntry{"docProps/core.xml", docxCore})

	_, err := NewDocxExtractor().Extract(context.Background(), data, "broken.docx")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "word/document.xml not found")
}
