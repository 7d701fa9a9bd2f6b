package extraction

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// maxEntrySize bounds how much of a single archive entry is read into memory.
const maxEntrySize = 64 << 20

func openZip(data []byte) (*zip.Reader, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open zip: %w", err)
	}
	return zr, nil
}

func findEntry(zr *zip.Reader, name string) *zip.File {
	for _, f := range zr.File {
		if f.Name == name {
			return f
		}
	}
	return nil
}

func readEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", f.Name, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, maxEntrySize+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", f.Name, err)
	}
	if len(data) > maxEntrySize {
		return nil, fmt.Errorf("read %s: entry exceeds %d bytes", f.Name, maxEntrySize)
	}
	return data, nil
}

// firstElementText returns the trimmed character data of the first element named
// local (any namespace), or "" when absent or unparsable.
func firstElementText(r io.Reader, local string) string {
	dec := xml.NewDecoder(r)
	inside := false
	var sb strings.Builder
	for {
		tok, err := dec.Token()
		if err != nil {
			return ""
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == local {
				inside = true
			}
		case xml.CharData:
			if inside {
				sb.Write(t)
			}
		case xml.EndElement:
			if inside && t.Name.Local == local {
				return strings.TrimSpace(sb.String())
			}
		}
	}
}
