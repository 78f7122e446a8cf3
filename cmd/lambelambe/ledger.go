// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/lambelambe/internal/ledger"
	"github.com/pdiddy/lambelambe/pkg/types"
)

const (
	nameColumnWidth   = 32
	detailColumnWidth = 60
)

var ledgerCmd = &cobra.Command{
	Use:   "ledger",
	Short: "Show the latest acquisition outcome per journalist",
	Long: `Ledger lists the most recent acquisition attempt for every journalist
recorded by acquire, followed by a count per status. Use --status to list
only, for example, failed records, and --export to write the list as YAML
or JSON (chosen by the file extension).`,
	RunE: runLedger,
}

func init() {
	ledgerCmd.Flags().String("ledger", defaultLedger, "acquisition ledger database")
	ledgerCmd.Flags().String("status", "", "only show records whose latest status is this (downloaded, no-image, no-source, failed)")
	ledgerCmd.Flags().String("export", "", "write the listing to a .yaml or .json file instead of printing it")

	rootCmd.AddCommand(ledgerCmd)
}

func runLedger(cmd *cobra.Command, args []string) error {
	path := viper.GetString("ledger")
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("no ledger at %s (run acquire first): %w", path, err)
	}
	store, err := ledger.Open(path)
	if err != nil {
		return err
	}
	defer store.Close()

	status := types.AcquireStatus(viper.GetString("status"))
	ctx := cmd.Context()

	if export := viper.GetString("export"); export != "" {
		f, err := os.Create(export)
		if err != nil {
			return fmt.Errorf("creating %s: %w", export, err)
		}
		switch strings.ToLower(filepath.Ext(export)) {
		case ".json":
			err = store.ExportJSON(ctx, f, status)
		case ".yaml", ".yml":
			err = store.ExportYAML(ctx, f, status)
		default:
			err = fmt.Errorf("unsupported export format %q (want .yaml or .json)", filepath.Ext(export))
		}
		if closeErr := f.Close(); err == nil {
			err = closeErr
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Exported to %s\n", export)
		return nil
	}

	attempts, err := store.Latest(ctx, status)
	if err != nil {
		return err
	}
	counts, err := store.Summary(ctx)
	if err != nil {
		return err
	}
	printAttempts(cmd.OutOrStdout(), attempts)
	printCounts(cmd.OutOrStdout(), counts)
	return nil
}

// printAttempts writes one aligned line per attempt. Widths are measured in
// terminal cells so names in wide scripts line up.
func printAttempts(w io.Writer, attempts []types.Attempt) {
	fmt.Fprintf(w, "%5s  %s  %-10s  %s\n", "ROW", runewidth.FillRight("NAME", nameColumnWidth), "STATUS", "DETAIL")
	for _, a := range attempts {
		detail := a.FilePath
		if a.Error != "" {
			detail = a.Error
		} else if detail == "" {
			detail = a.ProfileURL
		}
		name := runewidth.Truncate(a.Name, nameColumnWidth, "…")
		fmt.Fprintf(w, "%5d  %s  %-10s  %s\n",
			a.Row,
			runewidth.FillRight(name, nameColumnWidth),
			a.Status,
			runewidth.Truncate(detail, detailColumnWidth, "…"),
		)
	}
}

func printCounts(w io.Writer, counts map[types.AcquireStatus]int) {
	statuses := make([]string, 0, len(counts))
	total := 0
	for st, n := range counts {
		statuses = append(statuses, string(st))
		total += n
	}
	sort.Strings(statuses)

	fmt.Fprintf(w, "\n%d journalist(s):", total)
	for _, st := range statuses {
		fmt.Fprintf(w, " %s=%d", st, counts[types.AcquireStatus(st)])
	}
	fmt.Fprintln(w)
}
