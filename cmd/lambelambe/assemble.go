// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/lambelambe/internal/assemble"
	"github.com/pdiddy/lambelambe/internal/matcher"
	"github.com/pdiddy/lambelambe/pkg/types"
)

var assembleCmd = &cobra.Command{
	Use:   "assemble",
	Short: "Write the memorial PDF from the CSV and the image cache",
	Long: `Assemble writes one page per journalist, in CSV order: the cached photo
scaled to fit above the name, then the date, affiliation, location and
circumstances. A journalist without a usable photo gets a text-only page.
Assemble never touches the network.

With --match, names without an exact cache file are compared against every
cached image name; close matches are used and remembered in the
cross-reference file. Add --confirm to approve each match interactively.`,
	RunE: runAssemble,
}

func init() {
	assembleCmd.Flags().String("cache-dir", defaultCacheDir, "directory photos are read from")
	addAssembleFlags(assembleCmd)

	rootCmd.AddCommand(assembleCmd)
}

func runAssemble(cmd *cobra.Command, args []string) error {
	log := newLogger()
	recs, err := loadRecords(log)
	if err != nil {
		return err
	}
	_, err = assembleStage(cmd.Context(), assemblyConfig(), recs, prompt(cmd.InOrStdin()), cmd.OutOrStdout(), log)
	return err
}

// assembleStage writes the document. confirmIn is nil unless fuzzy matches
// are to be confirmed interactively.
func assembleStage(ctx context.Context, cfg types.AssemblyConfig, recs []types.Journalist, confirmIn io.Reader, w io.Writer, log *slog.Logger) (res assemble.Result, err error) {
	d := assemble.Deps{Log: log}

	if cfg.Match.Enabled {
		cross, err := matcher.LoadCrossRef(cfg.Match.CrossRefPath)
		if err != nil {
			return res, err
		}
		var confirm matcher.Confirmer
		if confirmIn != nil {
			confirm = matcher.NewPromptConfirmer(confirmIn, w)
		}
		resolver, err := matcher.NewResolver(cfg.CacheDir, cfg.Match, cross, confirm, log)
		if err != nil {
			return res, err
		}
		defer func() {
			err = errors.Join(err, resolver.Save())
		}()
		d.Finder = resolver
		log.Info("fuzzy matching enabled", "crossref", cfg.Match.CrossRefPath, "decisions", cross.Len())
	}

	if _, statErr := os.Stat(cfg.CacheDir); statErr != nil {
		log.Warn("image cache not found, every page will be text only", "cache_dir", cfg.CacheDir)
	}
	return assemble.Assemble(ctx, d, recs, cfg, w)
}
