package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/speechpath/speechpath/internal/app"
	"github.com/speechpath/speechpath/internal/auth"
	"github.com/speechpath/speechpath/internal/screens"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Start the interactive tracker (default)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd)
	},
}

// runApp opens the store, builds dependencies, and launches the TUI.
func runApp(cmd *cobra.Command) error {
	b, err := openBackend(cmd, true)
	if err != nil {
		return err
	}
	defer b.Close()

	gate, err := auth.NewGate(b.cfg.Auth.Username, b.cfg.Auth.PasswordHash)
	if err != nil {
		return fmt.Errorf("login gate: %w", err)
	}

	b.log.Info("starting tui", zap.String("db", b.dbPath))
	return app.Run(&screens.Env{
		Tracker: b.tracker,
		Gate:    gate,
		Log:     b.log,
	})
}
