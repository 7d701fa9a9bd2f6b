package services

import (
	"bytes"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/markdave123-py/content-processor/internal/core"
	"github.com/markdave123-py/content-processor/internal/core/extraction"
)

const (
	maxFilenameLen  = 255
	defaultFilename = "document.txt"
)

// ValidationError rejects an upload before any processing happens.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func invalid(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

var (
	executableSignatures = [][]byte{
		{0x4D, 0x5A},             // Windows PE
		{0x7F, 0x45, 0x4C, 0x46}, // ELF
		{0xCA, 0xFE, 0xBA, 0xBE}, // Java class
		{0xFE, 0xED, 0xFA, 0xCE}, // Mach-O
	}

	// Container signatures expected per extension.
	fileSignatures = map[string][]byte{
		".pdf":  []byte("%PDF-"),
		".epub": []byte("PK"),
		".docx": []byte("PK"),
		".odt":  []byte("PK"),
	}

	unsafeFilenameChars = regexp.MustCompile(`[<>:"/\\|?*]`)
)

// UploadValidator checks an upload's name, size, declared type and leading bytes.
type UploadValidator struct {
	maxSize   int64
	extractor core.DocumentExtractor
}

func NewUploadValidator(maxSize int64, extractor core.DocumentExtractor) *UploadValidator {
	return &UploadValidator{maxSize: maxSize, extractor: extractor}
}

// ResolveContentType returns the declared type, or the type implied by the
// extension when the client sent none or a generic one.
func ResolveContentType(filename, declared string) string {
	declared = strings.TrimSpace(declared)
	if declared == "" || strings.HasPrefix(declared, "application/octet-stream") {
		if mt, ok := extraction.MIMEForExtension(filename); ok {
			return mt
		}
	}
	return declared
}

// Validate returns the sanitized filename, or a *ValidationError.
func (v *UploadValidator) Validate(filename, contentType string, data []byte) (string, error) {
	if strings.TrimSpace(filename) == "" {
		return "", invalid("filename is required")
	}
	if int64(len(data)) > v.maxSize {
		return "", invalid("file size (%.1fMB) exceeds maximum allowed size (%.1fMB)",
			float64(len(data))/(1<<20), float64(v.maxSize)/(1<<20))
	}
	if len(data) == 0 {
		return "", invalid("file is empty")
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		return "", invalid("file must have an extension")
	}
	if _, ok := extraction.MIMEForExtension(filename); !ok {
		return "", invalid("file extension %q not allowed, allowed extensions: %s",
			ext, strings.Join(extraction.Extensions(), ", "))
	}

	if contentType == "" {
		return "", invalid("content type is required")
	}
	if !v.extractor.IsSupported(contentType) {
		return "", fmt.Errorf("%w: content type %q not allowed, allowed types: %s",
			core.ErrUnsupportedFormat, contentType, strings.Join(v.extractor.SupportedTypes(), ", "))
	}

	for _, sig := range executableSignatures {
		if bytes.HasPrefix(data, sig) {
			return "", invalid("file appears to be an executable, which is not allowed")
		}
	}
	if sig, ok := fileSignatures[ext]; ok && !bytes.HasPrefix(data, sig) {
		return "", invalid("file does not appear to be a valid %s", strings.ToUpper(strings.TrimPrefix(ext, ".")))
	}

	return SanitizeFilename(filename), nil
}

// SanitizeFilename drops any directory part, strips reserved and control characters, caps the
// length at 255 bytes keeping the extension, and falls back to "document.txt".
func SanitizeFilename(filename string) string {
	s := filename
	if i := strings.LastIndexAny(s, `/\`); i >= 0 {
		s = s[i+1:]
	}
	s = unsafeFilenameChars.ReplaceAllString(s, "")
	s = strings.Map(func(r rune) rune {
		if r < 0x20 || (r >= 0x7f && r <= 0x9f) {
			return -1
		}
		return r
	}, s)

	if len(s) > maxFilenameLen {
		ext := filepath.Ext(s)
		name := strings.ToValidUTF8(s[:maxFilenameLen-len(ext)], "")
		s = name + ext
	}
	if strings.TrimSpace(s) == "" {
		return defaultFilename
	}
	return s
}
