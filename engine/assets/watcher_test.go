package assets

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettingsWatcher_ReportsWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "screenfx.toml")
	require.NoError(t, os.WriteFile(path, []byte("[logging]\n"), 0o644))

	sw, err := NewSettingsWatcher(path)
	require.NoError(t, err)
	defer sw.Close()

	assert.False(t, sw.Pending())
	require.NoError(t, os.WriteFile(path, []byte("[logging]\nlevel = \"debug\"\n"), 0o644))

	require.Eventually(t, sw.Pending, 2*time.Second, 10*time.Millisecond)
}

func TestSettingsWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "screenfx.toml")
	require.NoError(t, os.WriteFile(path, []byte(""), 0o644))

	sw, err := NewSettingsWatcher(path)
	require.NoError(t, err)
	defer sw.Close()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.toml"), []byte("x"), 0o644))
	assert.Never(t, sw.Pending, 200*time.Millisecond, 10*time.Millisecond)
}

func TestSettingsWatcher_Close(t *testing.T) {
	path := filepath.Join(t.TempDir(), "screenfx.toml")
	sw, err := NewSettingsWatcher(path)
	require.NoError(t, err)

	abs, _ := filepath.Abs(path)
	assert.Equal(t, abs, sw.Path())
	assert.NoError(t, sw.Close())
	assert.NoError(t, sw.Close())
}

func TestSettingsWatcher_MissingDirectory(t *testing.T) {
	_, err := NewSettingsWatcher(filepath.Join(t.TempDir(), "nope", "screenfx.toml"))
	assert.Error(t, err)
}
