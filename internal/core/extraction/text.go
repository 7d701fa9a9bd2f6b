package extraction

import (
	"bytes"
	"context"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"

	"github.com/markdave123-py/content-processor/internal/core"
)

// textDecoder tries one encoding; ok is false when the bytes are not valid in it.
type textDecoder struct {
	name   string
	decode func([]byte) (string, bool)
}

// textDecoders are tried in order; the first success wins.
var textDecoders = []textDecoder{
	{"utf-8", decodeUTF8},
	{"utf-16", decodeUTF16},
	{"latin-1", charmapDecoder(charmap.ISO8859_1)},
	{"cp1252", charmapDecoder(charmap.Windows1252)},
}

// TextExtractor decodes plain text and Markdown files.
type TextExtractor struct{}

// NewTextExtractor creates a plain text extractor.
func NewTextExtractor() *TextExtractor {
	return &TextExtractor{}
}

func (e *TextExtractor) Extract(_ context.Context, data []byte, _ string) (*core.ExtractedText, error) {
	text, _, err := DecodeText(data)
	if err != nil {
		return nil, err
	}
	return &core.ExtractedText{Text: text}, nil
}

// DecodeText decodes data with the first encoding that accepts it and reports which one.
func DecodeText(data []byte) (text, encodingName string, err error) {
	for _, d := range textDecoders {
		if s, ok := d.decode(data); ok {
			return s, d.name, nil
		}
	}
	return "", "", core.ErrUndecodableEncoding
}

func decodeUTF8(data []byte) (string, bool) {
	if !utf8.Valid(data) {
		return "", false
	}
	return string(data), true
}

// decodeUTF16 only accepts input that starts with a byte order mark. Without one,
// almost any even-length byte sequence would decode to nonsense.
func decodeUTF16(data []byte) (string, bool) {
	if len(data)%2 != 0 {
		return "", false
	}
	if !bytes.HasPrefix(data, []byte{0xFF, 0xFE}) && !bytes.HasPrefix(data, []byte{0xFE, 0xFF}) {
		return "", false
	}
	out, err := unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM).NewDecoder().Bytes(data)
	if err != nil || bytes.ContainsRune(out, utf8.RuneError) {
		return "", false
	}
	return string(out), true
}

func charmapDecoder(cm *charmap.Charmap) func([]byte) (string, bool) {
	var enc encoding.Encoding = cm
	return func(data []byte) (string, bool) {
		out, err := enc.NewDecoder().Bytes(data)
		if err != nil {
			return "", false
		}
		return string(out), true
	}
}
