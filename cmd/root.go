package cmd

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/speechpath/speechpath/internal/catalog"
	"github.com/speechpath/speechpath/internal/config"
	"github.com/speechpath/speechpath/internal/logging"
	"github.com/speechpath/speechpath/internal/store"
	"github.com/speechpath/speechpath/internal/tracker"
)

var rootCmd = &cobra.Command{
	Use:   "speechpath",
	Short: "Speech therapy goal tracker",
	Long:  "SpeechPath tracks pediatric speech-therapy goals: children, sessions, streaks and unlocks.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd)
	},
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides SPEECHPATH_DB env var)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error (overrides SPEECHPATH_LOG_LEVEL)")

	rootCmd.AddCommand(tuiCmd)
	rootCmd.AddCommand(childCmd)
	rootCmd.AddCommand(catalogCmd)
	rootCmd.AddCommand(sessionCmd)
	rootCmd.AddCommand(progressCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig reads the environment and applies persistent flag overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		cfg.DBPath = p
	}
	if l, _ := cmd.Flags().GetString("log-level"); l != "" {
		cfg.Log.Level = l
	}
	return cfg, nil
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then SPEECHPATH_DB env var, then the default XDG path.
func resolveDBPath(cfg *config.Config) (string, error) {
	if cfg.DBPath != "" {
		return cfg.DBPath, store.EnsureDir(cfg.DBPath)
	}
	return store.DefaultDBPath()
}

// backend is everything a command needs to work with tracked data.
type backend struct {
	cfg     *config.Config
	dbPath  string
	log     *zap.Logger
	db      *store.Store
	tracker *tracker.Tracker
}

func (b *backend) Close() {
	if b.db != nil {
		b.db.Close()
	}
	_ = b.log.Sync()
}

// openBackend loads config, builds the logger and opens the tracker over
// the SQLite store. With logToFile the logger writes next to the database
// instead of stderr, so it never draws over the TUI.
func openBackend(cmd *cobra.Command, logToFile bool) (*backend, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	dbPath, err := resolveDBPath(cfg)
	if err != nil {
		return nil, fmt.Errorf("resolve DB path: %w", err)
	}

	logOut := ""
	if logToFile {
		logOut = cfg.Log.File
		if logOut == "" {
			logOut = filepath.Join(filepath.Dir(dbPath), "speechpath.log")
		}
	}
	log, err := logging.New(cfg.Log.Level, cfg.Log.Format, logOut)
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}

	st, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	cat, err := catalog.Default()
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	tr, err := tracker.Open(contextOf(cmd), tracker.Options{
		Catalog:    cat,
		Snapshots:  st.SnapshotRepo(),
		Events:     st.EventRepo(),
		Log:        log,
		LevelSize:  cfg.LevelSize,
		Activities: cfg.Activities,
	})
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("open tracker: %w", err)
	}
	log.Debug("backend ready", zap.String("db", dbPath))

	return &backend{cfg: cfg, dbPath: dbPath, log: log, db: st, tracker: tr}, nil
}

func contextOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
