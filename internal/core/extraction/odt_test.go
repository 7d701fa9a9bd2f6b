package extraction

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markdave123-py/content-processor/internal/core"
)

const odtNamespaces = `xmlns:office="urn:oasis:names:tc:opendocument:xmlns:office:1.0" ` +
	`xmlns:text="urn:oasis:names:tc:opendocument:xmlns:text:1.0" ` +
	`xmlns:dc="http://purl.org/dc/elements/1.1/"`

func buildODT(t *testing.T, body string) []byte {
	t.Helper()
	return buildZip(t,
		zipEntry{"mimetype", MIMEODT},
		zipEntry{"meta.xml", `<?xml version="1.0" encoding="UTF-8"?>` +
			`<office:document-meta ` + odtNamespaces + `><office:meta><dc:creator>Ada Lovelace</dc:creator></office:meta></office:document-meta>`},
		zipEntry{"content.xml", `<?xml version="1.0" encoding="UTF-8"?>` +
			`<office:document-content ` + odtNamespaces + `><office:body><office:text>` + body +
			`</office:text></office:body></office:document-content>`},
	)
}

func TestRegistry_ExtractODT(t *testing.T) {
	data := buildODT(t, `<text:h>Notes</text:h><text:p>First paragraph.</text:p><text:p>Second<text:tab/>part.</text:p>`)

	res, err := NewRegistry(discardLogger()).Extract(context.Background(), data, "notes.odt", MIMEODT)
	require.NoError(t, err)
	assert.Equal(t, "Notes\nFirst paragraph.\nSecond\npart.", res.Text)
	assert.Equal(t, "Ada Lovelace", res.Author)
}

func TestRegistry_ExtractODTEmptyBody(t *testing.T) {
	data := buildODT(t, `<text:p></text:p><text:p>   </text:p>`)

	_, err := NewRegistry(discardLogger()).Extract(context.Background(), data, "empty.odt", MIMEODT)
	assert.ErrorIs(t, err, core.ErrNoExtractableText)
}

func TestRegistry_ExtractODTNotZip(t *testing.T) {
	_, err := NewRegistry(discardLogger()).Extract(context.Background(), []byte("plain bytes"), "bad.odt", MIMEODT)
	assert.ErrorIs(t, err, core.ErrProcessingFailed)
}
