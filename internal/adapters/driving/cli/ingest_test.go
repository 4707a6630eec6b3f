package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docrag/internal/core/domain"
)

func writeTree(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"README.md":          "# Readme",
		"src/loader.py":      "def load(): pass",
		"src/logo.bmp":       "BM",
		".git/config":        "[core]",
		"docs/.draft.md":     "# Draft",
		"docs/guide/deep.md": "# Deep",
	}
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	}
	return dir
}

func TestIngestCmd_Use(t *testing.T) {
	assert.Equal(t, "ingest [path...]", ingestCmd.Use)
	assert.NotNil(t, ingestCmd.Flags().Lookup("dry-run"))
	assert.NotNil(t, ingestCmd.Flags().Lookup("watch"))
}

func TestIngestCmd_RequiresArgs(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, err := executeCommand("ingest")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires at least 1 arg(s)")
}

func TestIngestCmd_IngestsDirectory(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	dir := writeTree(t)

	out, err := executeCommand("ingest", dir)
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"README.md", "loader.py", "deep.md"}, ts.ingest.ingested)
	assert.Contains(t, out, "1 segments, plain_text, heading")
	assert.NotContains(t, out, "Intro")
}

func TestIngestCmd_DryRunPreviews(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	dir := writeTree(t)

	out, err := executeCommand("ingest", "--dry-run", filepath.Join(dir, "README.md"))
	require.NoError(t, err)

	assert.Empty(t, ts.ingest.ingested)
	assert.Equal(t, []string{"README.md"}, ts.ingest.previewed)
	assert.Contains(t, out, "[0] 26 chars Intro: Introduction to the loader")
}

func TestIngestCmd_ReportsFailures(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.ingest.err = domain.ErrUnsupportedType
	dir := writeTree(t)

	out, err := executeCommand("ingest", filepath.Join(dir, "src", "logo.bmp"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 1 files failed")
	assert.Contains(t, out, "unsupported type")
}

func TestIngestCmd_MissingPath(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, err := executeCommand("ingest", filepath.Join(t.TempDir(), "absent.md"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestIngestCmd_JSON(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()
	dir := writeTree(t)

	out, err := executeCommand("ingest", "--json", filepath.Join(dir, "README.md"))
	require.NoError(t, err)
	assert.Contains(t, out, `"DocumentID": "doc-README.md"`)
}

func TestIngestCmd_WatchFlagValidation(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()
	dir := writeTree(t)

	_, err := executeCommand("ingest", "--watch", "--dry-run", dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--dry-run")

	_, err = executeCommand("ingest", "--watch", dir, dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exactly one directory")
}

func TestCollectFiles(t *testing.T) {
	dir := writeTree(t)

	files, err := collectFiles([]string{dir, filepath.Join(dir, "src", "logo.bmp")})
	require.NoError(t, err)

	rel := make([]string, len(files))
	for i, f := range files {
		r, err := filepath.Rel(dir, f)
		require.NoError(t, err)
		rel[i] = filepath.ToSlash(r)
	}
	assert.ElementsMatch(t, []string{"README.md", "docs/guide/deep.md", "src/loader.py", "src/logo.bmp"}, rel)
}

func TestSnippet(t *testing.T) {
	assert.Equal(t, "a b c", snippet("a\n  b\tc", 10))
	assert.Equal(t, "héllo...", snippet("héllo world", 5))
}
