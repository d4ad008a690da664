package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "default", cfg.SortType)
	assert.Equal(t, "ascending", cfg.SortOrder)
	assert.Equal(t, DefaultQuietWindow, cfg.QuietWindow())
}

func TestQuietWindow(t *testing.T) {
	cfg := &Config{QuietWindowMs: 250}
	assert.Equal(t, 250*time.Millisecond, cfg.QuietWindow())

	cfg.QuietWindowMs = 0
	assert.Equal(t, DefaultQuietWindow, cfg.QuietWindow())

	cfg.QuietWindowMs = -5
	assert.Equal(t, DefaultQuietWindow, cfg.QuietWindow())
}

func TestValidate(t *testing.T) {
	cfg := Default()
	require.Error(t, cfg.Validate(), "root_dir is required")

	cfg.RootDir = "./notes"
	require.NoError(t, cfg.Validate())
	assert.True(t, filepath.IsAbs(cfg.RootDir))
	assert.True(t, filepath.IsAbs(cfg.DBPath))
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")

	cfg := Default()
	cfg.RootDir = "/notes"
	cfg.SortType = "custom"
	cfg.QuietWindowMs = 150
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/notes", loaded.RootDir)
	assert.Equal(t, "custom", loaded.SortType)
	assert.Equal(t, 150, loaded.QuietWindowMs)
	assert.Equal(t, path, loaded.Path)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	assert.Error(t, err)
}
