package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/gallerytab/server/internal/config"
)

var (
	fetchCount     int
	fetchNoHistory bool
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch random artwork and print it as JSON",
	Long: `Run the artwork pipeline outside the server and print each record
to stdout as a JSON line. Fetched artworks are recorded in the shared
history unless --no-history is set.

Examples:
  gallerytab fetch
  gallerytab fetch --count 5
  gallerytab fetch --no-history | jq .title`,
	RunE: runFetch,
}

func init() {
	fetchCmd.Flags().IntVar(&fetchCount, "count", 1, "number of artworks to fetch")
	fetchCmd.Flags().BoolVar(&fetchNoHistory, "no-history", false, "do not record fetched artworks in the history")
}

func runFetch(cmd *cobra.Command, args []string) error {
	if fetchCount < 1 {
		return fmt.Errorf("--count must be at least 1")
	}

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	logger := config.NewLogger(cfg.Logging)

	ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Minute)
	defer cancel()

	application, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer application.close()

	encoder := json.NewEncoder(os.Stdout)
	var mu sync.Mutex

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(4)
	for range fetchCount {
		group.Go(func() error {
			rec, err := application.fetcher.Fetch(groupCtx)
			if err != nil {
				return err
			}
			if !fetchNoHistory {
				application.history.Record(groupCtx, rec)
			}
			mu.Lock()
			defer mu.Unlock()
			return encoder.Encode(rec)
		})
	}
	return group.Wait()
}
