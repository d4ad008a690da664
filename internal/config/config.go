package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/filekit/treesync/internal/utils"
)

var (
	home, _           = os.UserHomeDir()
	DefaultConfigPath = filepath.Join(home, ".treesync", "config.json")
	DefaultDBPath     = filepath.Join(home, ".treesync", "orders.db")

	DefaultQuietWindow = 100 * time.Millisecond
)

// Config is the on-disk daemon configuration.
type Config struct {
	RootDir       string `json:"root_dir"`
	DBPath        string `json:"db_path"`
	SortType      string `json:"sort_type"`
	SortOrder     string `json:"sort_order"`
	QuietWindowMs int    `json:"quiet_window_ms"`
	IgnoreCase    bool   `json:"ignore_case"`
	Path          string `json:"-"`
}

// Default returns a config with platform defaults filled in. Case
// folding follows the conventional filesystem behavior of the platform.
func Default() *Config {
	return &Config{
		DBPath:        DefaultDBPath,
		SortType:      "default",
		SortOrder:     "ascending",
		QuietWindowMs: int(DefaultQuietWindow / time.Millisecond),
		IgnoreCase:    runtime.GOOS == "darwin" || runtime.GOOS == "windows",
	}
}

// QuietWindow returns the coalescing window as a duration.
func (c *Config) QuietWindow() time.Duration {
	if c.QuietWindowMs <= 0 {
		return DefaultQuietWindow
	}
	return time.Duration(c.QuietWindowMs) * time.Millisecond
}

func (c *Config) Validate() error {
	if c.RootDir == "" {
		return fmt.Errorf("root_dir is required")
	}
	resolved, err := utils.ResolvePath(c.RootDir)
	if err != nil {
		return fmt.Errorf("root_dir: %w", err)
	}
	c.RootDir = resolved

	if c.DBPath == "" {
		c.DBPath = DefaultDBPath
	}
	resolved, err = utils.ResolvePath(c.DBPath)
	if err != nil {
		return fmt.Errorf("db_path: %w", err)
	}
	c.DBPath = resolved
	return nil
}

func (c *Config) Save(path string) error {
	if err := utils.EnsureParent(path); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o644)
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	cfg.Path = path
	return cfg, nil
}
