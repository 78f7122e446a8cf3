// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var pipelineCmd = &cobra.Command{
	Use:   "pipeline",
	Short: "Run acquire and then assemble",
	Long: `Pipeline runs acquisition followed by assembly with the same CSV and cache
directory. Acquisition failures are reported but do not stop assembly; the
affected journalists get text-only pages.`,
	RunE: runPipeline,
}

func init() {
	pipelineCmd.Flags().String("cache-dir", defaultCacheDir, "image cache directory")
	addAcquireFlags(pipelineCmd)
	addAssembleFlags(pipelineCmd)

	rootCmd.AddCommand(pipelineCmd)
}

func runPipeline(cmd *cobra.Command, args []string) error {
	log := newLogger()
	recs, err := loadRecords(log)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if _, err := acquireStage(cmd.Context(), acquisitionConfig(), viper.GetString("ledger"), recs, out, log); err != nil {
		return err
	}
	if err := cmd.Context().Err(); err != nil {
		return err
	}
	_, err = assembleStage(cmd.Context(), assemblyConfig(), recs, prompt(cmd.InOrStdin()), out, log)
	return err
}
