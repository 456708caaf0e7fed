package conn

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	utils "github.com/makaohq/makao-client/internal"
)

func TestMemoryTokenStore(t *testing.T) {
	store := NewMemoryTokenStore()

	_, ok := store.Get(ReconnectTokenKey)
	assert.False(t, ok)

	utils.AssertNoError(t, store.Put(ReconnectTokenKey, "id-1"))
	utils.AssertNoError(t, store.Put(ReconnectTokenKey, "id-2"))

	got, ok := store.Get(ReconnectTokenKey)
	assert.True(t, ok)
	utils.AssertEqual(t, got, "id-2")
}

func TestFileTokenStore(t *testing.T) {
	t.Run("tokens survive a new store on the same file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "tokens.json")

		store := NewFileTokenStore(path)
		utils.AssertNoError(t, store.Put(ReconnectTokenKey, "id-9"))

		reopened := NewFileTokenStore(path)
		got, ok := reopened.Get(ReconnectTokenKey)
		assert.True(t, ok)
		utils.AssertEqual(t, got, "id-9")
	})

	t.Run("a missing file reads as empty", func(t *testing.T) {
		store := NewFileTokenStore(filepath.Join(t.TempDir(), "absent.json"))

		_, ok := store.Get(ReconnectTokenKey)
		assert.False(t, ok)
	})

	t.Run("a corrupt file reads as empty and is repaired by the next put", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "tokens.json")
		utils.AssertNoError(t, os.WriteFile(path, []byte("not json"), 0o600))

		store := NewFileTokenStore(path)
		_, ok := store.Get(ReconnectTokenKey)
		assert.False(t, ok)

		utils.AssertNoError(t, store.Put(ReconnectTokenKey, "id-5"))
		got, ok := store.Get(ReconnectTokenKey)
		assert.True(t, ok)
		utils.AssertEqual(t, got, "id-5")
	})
}
