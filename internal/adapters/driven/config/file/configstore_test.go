package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigStore_Success(t *testing.T) {
	tmpDir := t.TempDir()

	store, err := NewConfigStore(tmpDir)

	require.NoError(t, err)
	require.NotNil(t, store)
	assert.Equal(t, filepath.Join(tmpDir, "config.toml"), store.Path())
}

func TestNewConfigStore_WithNestedDirectory(t *testing.T) {
	nestedPath := filepath.Join(t.TempDir(), "nested", "deep")

	store, err := NewConfigStore(nestedPath)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(nestedPath, "config.toml"), store.Path())

	info, err := os.Stat(nestedPath)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.Equal(t, os.FileMode(0700), info.Mode().Perm())
}

func TestNewConfigStore_MkdirAllError(t *testing.T) {
	store, err := NewConfigStore("/dev/null/cannot/create/dirs")

	assert.Error(t, err)
	assert.Nil(t, store)
}

func TestNewConfigStore_LoadCorruptedFile(t *testing.T) {
	tmpDir := t.TempDir()
	err := os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte("this is not valid TOML {{{[["), 0600)
	require.NoError(t, err)

	store, err := NewConfigStore(tmpDir)

	assert.Error(t, err)
	assert.Nil(t, store)
}

func TestConfigStore_TypedGetters(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("llm.provider", "ollama"))
	require.NoError(t, store.Set("segmentation.window_size", 1200))
	require.NoError(t, store.Set("retrieval.min_score", 0.3))
	require.NoError(t, store.Set("llm.stream", true))
	require.NoError(t, store.Set("ingest.exclude", []string{"*.log"}))

	assert.Equal(t, "ollama", store.GetString("llm.provider"))
	assert.Equal(t, 1200, store.GetInt("segmentation.window_size"))
	assert.Equal(t, 0.3, store.GetFloat("retrieval.min_score"))
	assert.Equal(t, 1200.0, store.GetFloat("segmentation.window_size"))
	assert.True(t, store.GetBool("llm.stream"))
	assert.Equal(t, []string{"*.log"}, store.GetStringSlice("ingest.exclude"))

	// Wrong types and missing keys return zero values.
	assert.Equal(t, "", store.GetString("segmentation.window_size"))
	assert.Equal(t, 0, store.GetInt("llm.provider"))
	assert.Equal(t, 0.0, store.GetFloat("llm.provider"))
	assert.False(t, store.GetBool("nonexistent"))
	assert.Nil(t, store.GetStringSlice("nonexistent"))
}

func TestConfigStore_PersistsNestedTables(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	require.NoError(t, store.Set("segmentation.window_size", 800))
	require.NoError(t, store.Set("segmentation.strategies.code.window_size", 600))
	require.NoError(t, store.Set("vector.backend", "qdrant"))

	data, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.Contains(t, string(data), "[segmentation]")
	assert.NotContains(t, string(data), `"segmentation.window_size"`)

	reloaded, err := NewConfigStore(tmpDir)
	require.NoError(t, err)
	assert.Equal(t, 800, reloaded.GetInt("segmentation.window_size"))
	assert.Equal(t, 600, reloaded.GetInt("segmentation.strategies.code.window_size"))
	assert.Equal(t, "qdrant", reloaded.GetString("vector.backend"))
}

func TestConfigStore_LoadsHandWrittenTOML(t *testing.T) {
	tmpDir := t.TempDir()
	content := `
[llm]
provider = "anthropic"
temperature = 0.2

[segmentation.strategies.structural]
max_tokens = 256
`
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte(content), 0600))

	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	assert.Equal(t, "anthropic", store.GetString("llm.provider"))
	assert.InDelta(t, 0.2, store.GetFloat("llm.temperature"), 1e-9)
	assert.Equal(t, 256, store.GetInt("segmentation.strategies.structural.max_tokens"))
}

func TestConfigStore_Keys(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("segmentation.strategies.code.window_size", 600))
	require.NoError(t, store.Set("segmentation.strategies.heading.overlap", 100))
	require.NoError(t, store.Set("segmentation.window_size", 1200))
	require.NoError(t, store.Set("segmentation.strategiesx", 1))

	assert.Equal(t, []string{
		"segmentation.strategies.code.window_size",
		"segmentation.strategies.heading.overlap",
	}, store.Keys("segmentation.strategies"))
	assert.Len(t, store.Keys(""), 4)
	assert.Empty(t, store.Keys("llm"))
}

func TestConfigStore_ConflictingKeys(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("llm", "ollama"))
	assert.Error(t, store.Set("llm.model", "llama3.2"))
}

func TestConfigStore_FilePermissions(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("test", "value"))

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestConfigStore_EmptyAndCommentOnlyFile(t *testing.T) {
	for _, content := range []string{"", "# Just a comment\n\n"} {
		tmpDir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte(content), 0600))

		store, err := NewConfigStore(tmpDir)
		require.NoError(t, err)

		val, ok := store.Get("any_key")
		assert.False(t, ok)
		assert.Nil(t, val)
	}
}

func TestConfigStore_Save_WriteFileError(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Set("test", "value"))

	// Replace the file with a directory to cause write error
	require.NoError(t, os.Remove(store.Path()))
	require.NoError(t, os.Mkdir(store.Path(), 0700))

	assert.Error(t, store.Set("another", "value"))
}

func TestConfigStore_SetWithUnmarshallableValue(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	assert.Error(t, store.Set("channel", make(chan int)))
}

func TestConfigStore_Concurrency(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	done := make(chan bool)
	for i := 0; i < 10; i++ {
		go func(id int) {
			key := "key" + string(rune('0'+id))
			_ = store.Set(key, id)
			_ = store.GetInt(key)
			_ = store.GetFloat(key)
			_ = store.Keys("")
			done <- true
		}(i)
	}

	for i := 0; i < 10; i++ {
		<-done
	}
}
