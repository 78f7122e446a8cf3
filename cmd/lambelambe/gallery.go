// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/lambelambe/internal/gallery"
	"github.com/pdiddy/lambelambe/internal/httputil"
	"github.com/pdiddy/lambelambe/pkg/types"
)

const defaultGalleryPage = "gigaza_org.html"

var galleryCmd = &cobra.Command{
	Use:   "gallery [html-file]",
	Short: "Harvest portraits from a saved memorial gallery page",
	Long: `Gallery reads a saved gallery page in which every portrait is followed by
a heading with the person's name, and downloads each portrait into the image
cache under that name. Names that already have a cached photo are skipped.

Gallery names may be spelled differently from the CSV; use assemble --match
to pair them.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runGallery,
}

func init() {
	galleryCmd.Flags().String("cache-dir", defaultCacheDir, "directory portraits are saved to")
	galleryCmd.Flags().String("base-url", "", "URL the page was saved from, for relative image links")
	galleryCmd.Flags().Duration("timeout", defaultTimeout, "HTTP request timeout")
	galleryCmd.Flags().Duration("delay", defaultDelay/5, "minimum delay between requests to the same host")
	galleryCmd.Flags().String("user-agent", defaultUserAgent, "User-Agent sent with requests")

	rootCmd.AddCommand(galleryCmd)
}

func runGallery(cmd *cobra.Command, args []string) error {
	log := newLogger()

	page := defaultGalleryPage
	if len(args) == 1 {
		page = args[0]
	}
	cfg := types.GalleryConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:         viper.GetDuration("timeout"),
			UserAgent:       viper.GetString("user-agent"),
			RequestInterval: viper.GetDuration("delay"),
		},
		CacheDir: viper.GetString("cache-dir"),
		BaseURL:  viper.GetString("base-url"),
	}

	f, err := os.Open(page)
	if err != nil {
		return fmt.Errorf("opening gallery page: %w", err)
	}
	entries, err := gallery.Parse(f, cfg.BaseURL)
	f.Close()
	if err != nil {
		return err
	}
	log.Info("gallery parsed", "page", page, "entries", len(entries))

	client := httputil.NewClient(&http.Client{Timeout: cfg.Timeout}, cfg.UserAgent, cfg.RequestInterval)
	defer client.Close()

	result, err := gallery.Harvest(cmd.Context(), client, entries, cfg, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	if result.Failed > 0 {
		return fmt.Errorf("%d portrait(s) failed to download", result.Failed)
	}
	return nil
}
