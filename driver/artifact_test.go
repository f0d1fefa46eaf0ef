package driver_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/networkteam/pagecheck/driver"
)

func TestStore_SaveAndOverwrite(t *testing.T) {
	dir := t.TempDir()
	store, err := driver.NewStore(dir)
	require.NoError(t, err)

	path, err := store.Save("menu", []byte("first"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "menu.png"), path)

	// Saving again overwrites in place
	path2, err := store.Save("menu", []byte("second"))
	require.NoError(t, err)
	assert.Equal(t, path, path2)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))
}

func TestStore_SanitizesNames(t *testing.T) {
	dir := t.TempDir()
	store, err := driver.NewStore(dir)
	require.NoError(t, err)

	path, err := store.Save("dialogue intro/scene #2", []byte("x"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "dialogue_intro_scene__2.png"), path)
	assert.FileExists(t, path)
}

func TestNewStore_CreatesMissingDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "verification")
	store, err := driver.NewStore(dir)
	require.NoError(t, err)
	assert.DirExists(t, store.Dir())
}
