// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/lambelambe/internal/acquire"
	"github.com/pdiddy/lambelambe/internal/logger"
	"github.com/pdiddy/lambelambe/internal/records"
	"github.com/pdiddy/lambelambe/pkg/types"
)

const (
	defaultCSV       = "journalists.csv"
	defaultCacheDir  = "profile_pictures"
	defaultOutput    = "lambelambe.pdf"
	defaultCrossRef  = "cpj_gigaza_crossreference.csv"
	defaultLedger    = "lambelambe.db"
	defaultUserAgent = "Mozilla/5.0 (compatible; lambelambe/0.1)"
)

// bindFlags makes every flag of the running command readable through viper,
// so a flag set on the command line wins over the config file and
// LAMBELAMBE_* environment variables, which win over the flag default.
func bindFlags(cmd *cobra.Command) error {
	if err := viper.BindPFlags(cmd.InheritedFlags()); err != nil {
		return fmt.Errorf("binding flags: %w", err)
	}
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("binding flags: %w", err)
	}
	return nil
}

func newLogger() *slog.Logger {
	return logger.New(os.Stderr, viper.GetString("log-level"))
}

func columnConfig() types.ColumnConfig {
	cols := types.DefaultColumns()
	override := func(key string, dst *string) {
		if v := viper.GetString(key); v != "" {
			*dst = v
		}
	}
	override("columns.name", &cols.Name)
	override("columns.profile_url", &cols.ProfileURL)
	override("columns.date", &cols.Date)
	override("columns.affiliation", &cols.Affiliation)
	override("columns.location", &cols.Location)
	override("columns.circumstances", &cols.Circumstances)
	return cols
}

// loadRecords reads the configured CSV. Rejected rows are logged and left out.
func loadRecords(log *slog.Logger) ([]types.Journalist, error) {
	path := viper.GetString("csv")
	set, err := records.Load(path, columnConfig())
	if err != nil {
		return nil, err
	}
	for _, r := range set.Rejected {
		log.Warn("row skipped", "csv", path, "row", r.Row, "reason", r.Reason)
	}
	log.Info("records loaded", "csv", path, "records", set.Len(), "rejected", len(set.Rejected))
	return set.Records, nil
}

func addAcquireFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("render", string(types.RenderBrowser), "profile page rendering: browser (runs JavaScript) or static")
	f.String("selector", acquire.DefaultSelector, "CSS selector of the profile photo")
	f.Duration("timeout", defaultTimeout, "HTTP request timeout")
	f.Duration("delay", defaultDelay, "minimum delay between requests to the same host")
	f.Duration("render-timeout", defaultRenderTimeout, "time allowed to load one profile page")
	f.Duration("settle-timeout", defaultSettleTimeout, "time allowed for the photo to appear after load")
	f.String("user-agent", defaultUserAgent, "User-Agent sent with requests")
	f.String("browser-bin", "", "Chrome or Chromium binary (default: search PATH)")
	f.Bool("auto-download-browser", false, "download Chromium when no browser is installed")
	f.Bool("lead-image", false, "fall back to the page's lead image when the selector finds no photo")
	f.String("ledger", defaultLedger, "acquisition ledger database (empty to disable)")
}

func acquisitionConfig() types.AcquisitionConfig {
	return types.AcquisitionConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:         viper.GetDuration("timeout"),
			UserAgent:       viper.GetString("user-agent"),
			RequestInterval: viper.GetDuration("delay"),
		},
		CacheDir:            viper.GetString("cache-dir"),
		Selector:            viper.GetString("selector"),
		Render:              types.RenderMode(viper.GetString("render")),
		RenderTimeout:       viper.GetDuration("render-timeout"),
		SettleTimeout:       viper.GetDuration("settle-timeout"),
		BrowserBin:          viper.GetString("browser-bin"),
		AutoDownloadBrowser: viper.GetBool("auto-download-browser"),
		LeadImageFallback:   viper.GetBool("lead-image"),
	}
}

func addAssembleFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("output", defaultOutput, "PDF file to write")
	f.Float64("image-height", 7.5, "maximum photo height in inches; font sizes scale with it")
	f.String("font-file", "", "UTF-8 TrueType font for names outside Latin-1 (default: Helvetica)")
	f.Bool("verify", true, "re-read the PDF and check one page per record")
	f.Bool("match", false, "fuzzy match names to cached images when no exact file exists")
	f.Bool("confirm", false, "ask before accepting each fuzzy match")
	f.String("crossref", defaultCrossRef, "CSV of accepted and rejected fuzzy matches")
	f.Float64("threshold", 0.7, "minimum similarity for a fuzzy candidate")
	f.Float64("auto-accept", 0.85, "similarity accepted without asking")
}

func assemblyConfig() types.AssemblyConfig {
	return types.AssemblyConfig{
		CacheDir:    viper.GetString("cache-dir"),
		OutputPath:  viper.GetString("output"),
		ImageHeight: viper.GetFloat64("image-height"),
		FontFile:    viper.GetString("font-file"),
		Verify:      viper.GetBool("verify"),
		Match: types.MatchConfig{
			Enabled:      viper.GetBool("match"),
			Threshold:    viper.GetFloat64("threshold"),
			AutoAccept:   viper.GetFloat64("auto-accept"),
			CrossRefPath: viper.GetString("crossref"),
		},
	}
}

// prompt returns the reader fuzzy-match confirmations are read from, or nil
// when matches are accepted on score alone.
func prompt(in io.Reader) io.Reader {
	if !viper.GetBool("confirm") {
		return nil
	}
	return in
}
