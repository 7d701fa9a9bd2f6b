package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markdave123-py/content-processor/internal/config"
)

func testOptions() *rootOptions {
	return &rootOptions{
		cfg: &config.Config{
			MaxFileSize:  config.MinMaxFileSize,
			ChunkSize:    1000,
			ChunkOverlap: 100,
			MinChunkSize: 100,
		},
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	return p
}

func TestProcessFiles(t *testing.T) {
	dir := t.TempDir()
	body := "Harbor Log\n\n" + strings.Repeat("The boats came in late and the harbor was quiet again. ", 30)
	good := writeFile(t, dir, "harbor_log.md", body)
	blank := writeFile(t, dir, "blank.txt", "   \n")
	odd := writeFile(t, dir, "image.png", "not really")

	svc, err := newService(testOptions(), nil)
	require.NoError(t, err)

	results := processFiles(context.Background(), svc, []string{good, blank, odd, filepath.Join(dir, "missing.txt")}, nil, 2, false)
	require.Len(t, results, 4)

	require.Empty(t, results[0].Error)
	require.NotNil(t, results[0].Document)
	assert.Equal(t, "Harbor Log", results[0].Document.Title)
	assert.Equal(t, "text/markdown", results[0].Document.Metadata.FileType)

	assert.Contains(t, results[1].Error, "no text content")
	assert.Contains(t, results[2].Error, "not allowed")
	assert.NotEmpty(t, results[3].Error)
	for _, r := range results[1:] {
		assert.Nil(t, r.Document)
	}
}

func TestProcessCommand_JSONOutput(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "notes.txt", strings.Repeat("A plain line of notes about the garden and the weather. ", 20))
	t.Setenv("DATABASE_URL", "")

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{"process", "--no-content", path})
	require.NoError(t, cmd.Execute())

	var results []processResult
	require.NoError(t, json.Unmarshal(out.Bytes(), &results))
	require.Len(t, results, 1)
	require.NotNil(t, results[0].Document)
	assert.Empty(t, results[0].Document.Content)
	assert.NotEmpty(t, results[0].Document.Chunks)
}

func TestFormatsCommand(t *testing.T) {
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"formats"})
	require.NoError(t, cmd.Execute())

	assert.Contains(t, out.String(), ".pdf")
	assert.Contains(t, out.String(), "application/epub+zip")
	assert.Len(t, strings.Split(strings.TrimSpace(out.String()), "\n"), 6)
}
