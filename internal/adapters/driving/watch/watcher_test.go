package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docrag/internal/core/domain"
)

// mockIngestService records ingested and deleted documents.
type mockIngestService struct {
	mu      sync.Mutex
	count   int
	names   []string
	deleted []string
	err     error
}

func (m *mockIngestService) Ingest(_ context.Context, fileName string, _ []byte) (*domain.IngestResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	m.count++
	m.names = append(m.names, fileName)
	return &domain.IngestResult{DocumentID: fmt.Sprintf("doc-%d", m.count), FileName: fileName}, nil
}

func (m *mockIngestService) Preview(context.Context, string, []byte) (*domain.IngestResult, error) {
	return nil, nil
}

func (m *mockIngestService) ListDocuments(context.Context) ([]domain.IndexedDocument, error) {
	return nil, nil
}

func (m *mockIngestService) DeleteDocument(_ context.Context, documentID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, documentID)
	return nil
}

func (m *mockIngestService) Stats(context.Context) (*domain.IndexStats, error) {
	return nil, nil
}

func (m *mockIngestService) deletedIDs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.deleted...)
}

func waitResult(t *testing.T, results <-chan Result) Result {
	t.Helper()
	select {
	case r, ok := <-results:
		require.True(t, ok, "results channel closed")
		return r
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for watch result")
		return Result{}
	}
}

func TestWatcher_IngestsNewFiles(t *testing.T) {
	dir := t.TempDir()
	ingest := &mockIngestService{}
	w := New(dir, ingest, WithDebounce(20*time.Millisecond))
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	results, err := w.Watch(ctx)
	require.NoError(t, err)

	path := filepath.Join(dir, "notes.md")
	require.NoError(t, os.WriteFile(path, []byte("# Notes\n\nfirst"), 0o600))

	r := waitResult(t, results)
	require.NoError(t, r.Err)
	assert.Equal(t, ActionIngested, r.Action)
	assert.Equal(t, path, r.Path)
	assert.Equal(t, "notes.md", r.Ingest.FileName)
}

func TestWatcher_ReplacesPreviousVersion(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "main.go")
	require.NoError(t, os.WriteFile(path, []byte("package main"), 0o600))

	ingest := &mockIngestService{}
	w := New(dir, ingest, WithDebounce(20*time.Millisecond))
	defer w.Close()
	w.Track(path, "doc-original")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	results, err := w.Watch(ctx)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("package main\n\nfunc main() {}"), 0o600))

	r := waitResult(t, results)
	require.NoError(t, r.Err)
	assert.Equal(t, []string{"doc-original"}, ingest.deletedIDs())

	require.NoError(t, os.Remove(path))

	r = waitResult(t, results)
	assert.Equal(t, ActionRemoved, r.Action)
	assert.NoError(t, r.Err)
	assert.Equal(t, []string{"doc-original", "doc-1"}, ingest.deletedIDs())
}

func TestWatcher_SkipsUnsupportedAndHidden(t *testing.T) {
	dir := t.TempDir()
	ingest := &mockIngestService{}
	w := New(dir, ingest, WithDebounce(20*time.Millisecond))
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	results, err := w.Watch(ctx)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "image.bmp"), []byte("BM"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".secret.txt"), []byte("hidden"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "visible.txt"), []byte("hello"), 0o600))

	r := waitResult(t, results)
	assert.Equal(t, "visible.txt", filepath.Base(r.Path))

	ingest.mu.Lock()
	defer ingest.mu.Unlock()
	assert.Equal(t, []string{"visible.txt"}, ingest.names)
}

func TestWatcher_WatchesNewDirectories(t *testing.T) {
	dir := t.TempDir()
	ingest := &mockIngestService{}
	w := New(dir, ingest, WithDebounce(20*time.Millisecond))
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	results, err := w.Watch(ctx)
	require.NoError(t, err)

	sub := filepath.Join(dir, "sub")
	require.NoError(t, os.Mkdir(sub, 0o755))
	// Give the watcher time to register the new directory.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(sub, "data.json"), []byte(`{"a":1}`), 0o600))

	r := waitResult(t, results)
	assert.Equal(t, filepath.Join(sub, "data.json"), r.Path)
}

func TestWatcher_Errors(t *testing.T) {
	t.Run("non-existent root", func(t *testing.T) {
		w := New("/non/existent/path", &mockIngestService{})
		results, err := w.Watch(context.Background())
		assert.Nil(t, results)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "root path error")
	})

	t.Run("root is a file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "file.txt")
		require.NoError(t, os.WriteFile(path, []byte("x"), 0o600))

		_, err := New(path, &mockIngestService{}).Watch(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not a directory")
	})

	t.Run("closed watcher", func(t *testing.T) {
		w := New(t.TempDir(), &mockIngestService{})
		require.NoError(t, w.Close())
		require.NoError(t, w.Close())

		_, err := w.Watch(context.Background())
		assert.ErrorIs(t, err, ErrClosed)
	})

	t.Run("channel closes on cancel", func(t *testing.T) {
		w := New(t.TempDir(), &mockIngestService{})
		defer w.Close()

		ctx, cancel := context.WithCancel(context.Background())
		results, err := w.Watch(ctx)
		require.NoError(t, err)
		cancel()

		select {
		case _, ok := <-results:
			assert.False(t, ok)
		case <-time.After(time.Second):
			t.Fatal("channel did not close after context cancellation")
		}
	})
}

func TestHandleFsEvent(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "doc.txt")
	require.NoError(t, os.WriteFile(file, []byte("content"), 0o600))
	unsupported := filepath.Join(dir, "photo.bmp")
	require.NoError(t, os.WriteFile(unsupported, []byte("BM"), 0o600))
	hidden := filepath.Join(dir, ".hidden.txt")
	require.NoError(t, os.WriteFile(hidden, []byte("x"), 0o600))
	subdir := filepath.Join(dir, "nested")
	require.NoError(t, os.Mkdir(subdir, 0o755))

	fsw, err := fsnotify.NewWatcher()
	require.NoError(t, err)
	defer fsw.Close()

	w := New(dir, &mockIngestService{})

	tests := []struct {
		name string
		path string
		op   fsnotify.Op
		want op
	}{
		{"create file", file, fsnotify.Create, opIngest},
		{"write file", file, fsnotify.Write, opIngest},
		{"write and chmod", file, fsnotify.Write | fsnotify.Chmod, opIngest},
		{"chmod only", file, fsnotify.Chmod, opNone},
		{"remove", filepath.Join(dir, "gone.txt"), fsnotify.Remove, opRemove},
		{"rename", filepath.Join(dir, "moved.txt"), fsnotify.Rename, opRemove},
		{"unsupported type", unsupported, fsnotify.Create, opNone},
		{"hidden file", hidden, fsnotify.Write, opNone},
		{"hidden remove", hidden, fsnotify.Remove, opNone},
		{"directory", subdir, fsnotify.Create, opNone},
		{"vanished before stat", filepath.Join(dir, "tmp.txt"), fsnotify.Create, opNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := w.handleFsEvent(fsw, fsnotify.Event{Name: tt.path, Op: tt.op})
			assert.Equal(t, tt.want, got)
		})
	}

	assert.Contains(t, fsw.WatchList(), subdir)
}

func TestIsHidden(t *testing.T) {
	tests := []struct {
		path     string
		expected bool
	}{
		{".hidden", true},
		{"path/to/.hidden", true},
		{"/path/.git/config", true},
		{".config/.cache/data", true},
		{"file.txt", false},
		{"path/to/file.txt", false},
		{".", false},
		{"..", false},
		{"path/../file", false},
		{"", false},
		{"file.hidden", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.expected, isHidden(tt.path))
		})
	}
}
