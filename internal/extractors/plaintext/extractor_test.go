package plaintext

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evidentia-labs/evidentia/internal/core/domain"
)

func TestSupportedExtensions(t *testing.T) {
	exts := New().SupportedExtensions()
	assert.Contains(t, exts, ".txt")
	assert.Contains(t, exts, ".md")
}

func TestExtract_WholeFileIsOnePage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("line one\nline two\n"), 0600))

	pages, err := New().Extract(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, pages, 1)

	assert.Equal(t, 1, pages[0].Number)
	assert.Equal(t, "line one\nline two\n", pages[0].Text)
}

func TestExtract_MissingFile(t *testing.T) {
	_, err := New().Extract(context.Background(), filepath.Join(t.TempDir(), "absent.txt"))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrExtractionFailed)
}
