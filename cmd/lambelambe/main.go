// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the lambelambe CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the lambelambe CLI.
var rootCmd = &cobra.Command{
	Use:   "lambelambe",
	Short: "Build a memorial PDF of journalists killed at work",
	Long: `lambelambe turns a CSV export of a journalist database into a memorial
document with one page per journalist.

The acquire stage visits each profile page, finds the photo and stores it in
the image cache. The assemble stage reads the same CSV and the cache and
writes the PDF. Run both with pipeline. gallery adds portraits from a saved
gallery page; ledger shows what acquisition did.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return bindFlags(cmd)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./lambelambe.yaml or ~/.config/lambelambe/lambelambe.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("csv", defaultCSV, "journalist CSV export")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("lambelambe")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "lambelambe"))
		}
	}

	viper.SetEnvPrefix("LAMBELAMBE")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
