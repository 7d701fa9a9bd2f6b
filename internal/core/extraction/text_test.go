package extraction

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markdave123-py/content-processor/internal/core"
)

func TestDecodeText(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		want     string
		encoding string
	}{
		{"utf-8", []byte("caffè e più"), "caffè e più", "utf-8"},
		{"utf-16 little endian", []byte{0xFF, 0xFE, 'H', 0, 'i', 0}, "Hi", "utf-16"},
		{"utf-16 big endian", []byte{0xFE, 0xFF, 0, 'H', 0, 'i'}, "Hi", "utf-16"},
		{"latin-1", []byte{'c', 'a', 'f', 0xE8}, "cafè", "latin-1"},
		{"odd length with bom falls back", []byte{0xFF, 0xFE, 'H'}, "ÿþH", "latin-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, enc, err := DecodeText(tt.data)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.encoding, enc)
		})
	}
}

func TestDecodeText_AllDecodersFail(t *testing.T) {
	saved := textDecoders
	t.Cleanup(func() { textDecoders = saved })
	textDecoders = []textDecoder{{"utf-8", decodeUTF8}}

	_, _, err := DecodeText([]byte{0xC3, 0x28})
	assert.ErrorIs(t, err, core.ErrUndecodableEncoding)
}

func TestTextExtractor_Extract(t *testing.T) {
	res, err := NewTextExtractor().Extract(context.Background(), []byte("# Title\n\nBody."), "notes.md")
	require.NoError(t, err)
	assert.Equal(t, "# Title\n\nBody.", res.Text)
	assert.Zero(t, res.Pages)
}
