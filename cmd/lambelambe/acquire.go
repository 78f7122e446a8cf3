// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/lambelambe/internal/acquire"
	"github.com/pdiddy/lambelambe/internal/browser"
	"github.com/pdiddy/lambelambe/internal/httputil"
	"github.com/pdiddy/lambelambe/internal/ledger"
	"github.com/pdiddy/lambelambe/pkg/types"
)

const (
	defaultTimeout       = 10 * time.Second
	defaultDelay         = 500 * time.Millisecond
	defaultRenderTimeout = 20 * time.Second
	defaultSettleTimeout = 2 * time.Second
)

var acquireCmd = &cobra.Command{
	Use:   "acquire",
	Short: "Download profile photos into the image cache",
	Long: `Acquire reads the journalist CSV, renders each profile page, finds the
photo and saves it in the cache directory under the journalist's name.
Records without a profile URL or without a photo are reported and skipped;
a failed record never stops the batch. Re-running overwrites cached photos.`,
	RunE: runAcquire,
}

func init() {
	acquireCmd.Flags().String("cache-dir", defaultCacheDir, "directory photos are saved to")
	addAcquireFlags(acquireCmd)

	rootCmd.AddCommand(acquireCmd)
}

func runAcquire(cmd *cobra.Command, args []string) error {
	log := newLogger()
	recs, err := loadRecords(log)
	if err != nil {
		return err
	}

	result, err := acquireStage(cmd.Context(), acquisitionConfig(), viper.GetString("ledger"), recs, cmd.OutOrStdout(), log)
	if err != nil {
		return err
	}
	if result.HasFailures() {
		return fmt.Errorf("%d record(s) failed acquisition", result.Failed)
	}
	return nil
}

// acquireStage runs one acquisition batch with its own HTTP client, renderer
// and ledger connection, all released before it returns.
func acquireStage(ctx context.Context, cfg types.AcquisitionConfig, ledgerPath string, recs []types.Journalist, w io.Writer, log *slog.Logger) (acquire.BatchResult, error) {
	client := httputil.NewClient(&http.Client{Timeout: cfg.Timeout}, cfg.UserAgent, cfg.RequestInterval)
	defer client.Close()

	d := acquire.Deps{Client: client, Log: log}

	switch cfg.Render {
	case types.RenderStatic:
		d.Renderer = acquire.StaticRenderer{Client: client}
	case types.RenderBrowser, "":
		r, err := browser.New(browser.Options{
			Bin:           cfg.BrowserBin,
			AutoDownload:  cfg.AutoDownloadBrowser,
			UserAgent:     cfg.UserAgent,
			Selector:      cfg.Selector,
			RenderTimeout: cfg.RenderTimeout,
			SettleTimeout: cfg.SettleTimeout,
		})
		if err != nil {
			return acquire.BatchResult{}, fmt.Errorf("starting browser (use --render static to skip JavaScript): %w", err)
		}
		defer r.Close()
		d.Renderer = acquire.Paced(r, client)
	default:
		return acquire.BatchResult{}, fmt.Errorf("unknown render mode %q (want browser or static)", cfg.Render)
	}

	if ledgerPath != "" {
		store, err := ledger.Open(ledgerPath)
		if err != nil {
			return acquire.BatchResult{}, err
		}
		defer store.Close()
		d.Recorder = store
	}

	log.Info("acquisition started", "records", len(recs), "cache_dir", cfg.CacheDir, "render", cfg.Render)
	return acquire.AcquireBatch(ctx, d, recs, cfg, w), nil
}
