package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/fatih/color"
	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/filekit/treesync/internal/config"
	"github.com/filekit/treesync/internal/treesync"
	"github.com/filekit/treesync/internal/utils"
	"github.com/filekit/treesync/internal/version"
)

var (
	home, _        = os.UserHomeDir()
	configFileName = "config"
)

var rootCmd = &cobra.Command{
	Use:     "treesync",
	Short:   "Watches a directory tree and drives explorer refreshes",
	Version: version.Detailed(),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return loadConfig(cmd)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Default()
		cfg.Path = viper.ConfigFileUsed()
		cfg.RootDir = viper.GetString("root_dir")
		cfg.DBPath = viper.GetString("db_path")
		cfg.SortType = viper.GetString("sort_type")
		cfg.SortOrder = viper.GetString("sort_order")
		if viper.IsSet("quiet_window_ms") {
			cfg.QuietWindowMs = viper.GetInt("quiet_window_ms")
		}
		if viper.IsSet("ignore_case") {
			cfg.IgnoreCase = viper.GetBool("ignore_case")
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		cmd.SilenceUsage = true
		color.New(color.FgHiCyan, color.Bold).Printf("%s\n", version.Detailed())

		return run(cmd.Context(), cfg)
	},
}

func run(ctx context.Context, cfg *config.Config) error {
	store := treesync.NewCustomOrderStore(cfg.DBPath, cfg.IgnoreCase)
	if err := store.Open(); err != nil {
		return err
	}
	defer store.Close()

	// Stands in for the UI tree; the daemon just reports the trigger.
	refresher := treesync.RefresherFunc(func() {
		slog.Info("tree refresh", "root", cfg.RootDir)
	})

	svc := treesync.NewTreeSyncService(
		treesync.NewNotifyWatchProvider(),
		refresher,
		store,
		viperGetter{},
		cfg.IgnoreCase,
		cfg.QuietWindow(),
	)

	if err := svc.Init(cfg.RootDir); err != nil {
		return err
	}
	defer svc.Close()

	sortType, sortOrder := svc.Sorter().State()
	slog.Info("treesync running",
		"root", cfg.RootDir,
		"db", cfg.DBPath,
		"sort", sortType,
		"order", sortOrder,
		"quiet_window", cfg.QuietWindow(),
		"ignore_case", cfg.IgnoreCase,
	)

	<-ctx.Done()
	return nil
}

func init() {
	rootCmd.Flags().SortFlags = false
	rootCmd.Flags().StringP("root", "r", "", "Directory tree to watch")
	rootCmd.Flags().StringP("db", "d", config.DefaultDBPath, "Custom-order database path")
	rootCmd.Flags().String("sort", "default", "Initial sort type (default|alphabetic|creation_time|modification_time|custom)")
	rootCmd.Flags().String("order", "ascending", "Initial sort order (ascending|descending)")
	rootCmd.PersistentFlags().StringP("config", "c", config.DefaultConfigPath, "Config file")
}

func main() {
	logHandler := tint.NewHandler(os.Stderr, &tint.Options{
		Level:      slog.LevelDebug,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
		NoColor:    !isatty.IsTerminal(os.Stderr.Fd()),
	})

	if logFile := os.Getenv("TREESYNC_LOG_FILE"); logFile != "" {
		file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open log file: %v\n", err)
			os.Exit(1)
		}
		defer file.Close()
		fileHandler := slog.NewTextHandler(file, &slog.HandlerOptions{Level: slog.LevelDebug})
		slog.SetDefault(slog.New(utils.NewFanoutLogHandler(logHandler, fileHandler)))
	} else {
		slog.SetDefault(slog.New(logHandler))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func loadConfig(cmd *cobra.Command) error {
	if cmd.Flag("config").Changed {
		configFilePath, _ := cmd.Flags().GetString("config")
		viper.SetConfigFile(configFilePath)
	} else {
		viper.AddConfigPath(filepath.Join(home, ".treesync"))
		viper.AddConfigPath(filepath.Join(home, ".config/treesync"))
		viper.SetConfigName(configFileName)
		viper.SetConfigType("json")
	}

	if err := viper.ReadInConfig(); err != nil {
		enoent := errors.Is(err, os.ErrNotExist)
		_, notFound := err.(viper.ConfigFileNotFoundError)
		if !enoent && !notFound {
			return fmt.Errorf("config read '%s': %w", viper.ConfigFileUsed(), err)
		}
	}

	viper.BindPFlag("root_dir", cmd.Flags().Lookup("root"))
	viper.BindPFlag("db_path", cmd.Flags().Lookup("db"))
	viper.BindPFlag("sort_type", cmd.Flags().Lookup("sort"))
	viper.BindPFlag("sort_order", cmd.Flags().Lookup("order"))

	viper.SetEnvPrefix("TREESYNC")
	viper.AutomaticEnv()

	return nil
}

// viperGetter adapts viper to the single configuration read the sync
// service performs at construction.
type viperGetter struct{}

func (viperGetter) Get(key, def string) string {
	if viper.IsSet(key) {
		return viper.GetString(key)
	}
	return def
}
