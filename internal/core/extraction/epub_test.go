package extraction

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markdave123-py/content-processor/internal/core"
)

const opf = `<?xml version="1.0"?>
<package xmlns="http://www.idpf.org/2007/opf">
  <metadata xmlns:dc="http://purl.org/dc/elements/1.1/">
    <dc:title>Sample</dc:title>
    <dc:creator>Ada Lovelace</dc:creator>
  </metadata>
</package>`

func TestEPUBExtractor_Extract(t *testing.T) {
	data := buildZip(t,
		zipEntry{"mimetype", "application/epub+zip"},
		zipEntry{"OEBPS/content.opf", opf},
		zipEntry{"OEBPS/ch1.xhtml", "<html><head><script>var x = 1;</script></head><body><h1>Chapter One</h1>\n<p>It begins.</p></body></html>"},
		zipEntry{"OEBPS/ch2.html", "<p>It continues.</p>"},
	)

	res, err := NewEPUBExtractor(discardLogger()).Extract(context.Background(), data, "book.epub")
	require.NoError(t, err)
	assert.Equal(t, "Chapter One It begins.\n\nIt continues.", res.Text)
	assert.Equal(t, "Ada Lovelace", res.Author)
	assert.Empty(t, res.Skipped)
}

func TestEPUBExtractor_NoContentFiles(t *testing.T) {
	data := buildZip(t,
		zipEntry{"META-INF/container.xml", "<container/>"},
		zipEntry{"styles.css", "body {}"},
		zipEntry{"OEBPS/CH1.XHTML", "<p>upper-case suffix is ignored</p>"},
	)

	_, err := NewEPUBExtractor(discardLogger()).Extract(context.Background(), data, "book.epub")
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrNoExtractableText)
	assert.Contains(t, err.Error(), "no content files found")
}

func TestEPUBExtractor_SkipsInvalidEntries(t *testing.T) {
	data := buildZip(t,
		zipEntry{"a.html", "<p>Good text.</p>"},
		zipEntry{"b.html", string([]byte{'<', 'p', '>', 0xFF, 0xFE, '<', '/', 'p', '>'})},
		zipEntry{"c.htm", "<p></p>"},
	)

	res, err := NewEPUBExtractor(discardLogger()).Extract(context.Background(), data, "book.epub")
	require.NoError(t, err)
	assert.Equal(t, "Good text.", res.Text)
	require.Len(t, res.Skipped, 1)
	assert.Equal(t, "b.html", res.Skipped[0].Unit)
	assert.ErrorIs(t, res.Skipped[0].Err, errInvalidUTF8)
}

func TestEPUBExtractor_AllEntriesUnusable(t *testing.T) {
	data := buildZip(t,
		zipEntry{"a.html", "<script>only()</script>"},
		zipEntry{"b.xhtml", string([]byte{0xC3, 0x28})},
	)

	_, err := NewEPUBExtractor(discardLogger()).Extract(context.Background(), data, "book.epub")
	assert.ErrorIs(t, err, core.ErrNoExtractableText)
}
