package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/gallerytab/server/internal/config"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect or clear the viewed-artwork history",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the history, most recent first, as JSON lines",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(ctx context.Context, a *app) error {
			encoder := json.NewEncoder(os.Stdout)
			for _, entry := range a.history.Snapshot() {
				if err := encoder.Encode(entry); err != nil {
					return err
				}
			}
			return nil
		})
	},
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Empty the viewed-artwork history",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(ctx context.Context, a *app) error {
			if err := a.history.Clear(ctx); err != nil {
				return fmt.Errorf("clear history: %w", err)
			}
			fmt.Fprintln(os.Stdout, "history cleared")
			return nil
		})
	},
}

func init() {
	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyClearCmd)
}

// withApp builds the service graph for a one-shot command run.
func withApp(parent context.Context, fn func(context.Context, *app) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	logger := config.NewLogger(cfg.Logging)

	ctx, cancel := context.WithTimeout(parent, 30*time.Second)
	defer cancel()

	application, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer application.close()

	return fn(ctx, application)
}
