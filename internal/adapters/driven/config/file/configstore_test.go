package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigStore(t *testing.T) {
	t.Run("starts empty without a config file", func(t *testing.T) {
		store, err := NewConfigStore(t.TempDir())
		require.NoError(t, err)

		_, ok := store.Get("missing")
		assert.False(t, ok)
		assert.Empty(t, store.GetString("missing"))
		assert.Zero(t, store.GetInt("missing"))
		assert.False(t, store.GetBool("missing"))
	})

	t.Run("set persists immediately", func(t *testing.T) {
		dir := t.TempDir()
		store, err := NewConfigStore(dir)
		require.NoError(t, err)

		require.NoError(t, store.Set("generation.model", "llama3.2"))
		require.NoError(t, store.Set("ask.top_k", 5))
		require.NoError(t, store.Set("verbose", true))

		// A fresh store sees the persisted values.
		reopened, err := NewConfigStore(dir)
		require.NoError(t, err)
		assert.Equal(t, "llama3.2", reopened.GetString("generation.model"))
		assert.Equal(t, 5, reopened.GetInt("ask.top_k"))
		assert.True(t, reopened.GetBool("verbose"))
	})

	t.Run("nested toml flattens to dot notation", func(t *testing.T) {
		dir := t.TempDir()
		content := "[embedding]\nmodel = \"nomic-embed-text\"\nbase_url = \"http://localhost:11434\"\n"
		require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0600))

		store, err := NewConfigStore(dir)
		require.NoError(t, err)

		assert.Equal(t, "nomic-embed-text", store.GetString("embedding.model"))
		assert.Equal(t, "http://localhost:11434", store.GetString("embedding.base_url"))
	})

	t.Run("type mismatches return zero values", func(t *testing.T) {
		store, err := NewConfigStore(t.TempDir())
		require.NoError(t, err)
		require.NoError(t, store.Set("key", "a string"))

		assert.Zero(t, store.GetInt("key"))
		assert.False(t, store.GetBool("key"))
	})

	t.Run("path points into the config dir", func(t *testing.T) {
		dir := t.TempDir()
		store, err := NewConfigStore(dir)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, "config.toml"), store.Path())
	})
}
