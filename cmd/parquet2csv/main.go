// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the parquet2csv CLI.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/parquet2csv/internal/logging"
	"github.com/pdiddy/parquet2csv/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	// logger is replaced in PersistentPreRunE once flags and config are read.
	logger      = logging.Discard()
	closeLogger = func() {}
)

// rootCmd is the base command for the parquet2csv CLI.
var rootCmd = &cobra.Command{
	Use:   "parquet2csv",
	Short: "Convert Parquet files in a directory tree to CSV",
	Long: `parquet2csv walks a directory tree, reads every Parquet file it finds,
and writes the same table as a CSV file with a header row next to it
(articles.parquet -> articles.csv). One confirmation line is printed per
converted file.

An optional SQLite manifest records each conversion so later runs can skip
files that have not changed.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := types.LogConfig{
			Level:  viper.GetString("log.level"),
			Format: viper.GetString("log.format"),
			SeqURL: viper.GetString("log.seq_url"),
		}
		l, cleanup, err := logging.Setup(cfg, cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		logger, closeLogger = l, cleanup
		slog.SetDefault(l)
		if used := viper.ConfigFileUsed(); used != "" {
			logger.Info("using config file", "path", used)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default: ./parquet2csv.yaml or ~/.config/parquet2csv/config.yaml)")
	pf.String("log-level", "warn", "log level: debug, info, warn, or error")
	pf.String("log-format", "text", "log format: text or json")
	pf.String("seq-url", "", "also send logs to the Seq server at this URL")
	pf.String("manifest", "", "SQLite manifest recording conversions (disabled when empty)")

	mustBind("log.level", pf.Lookup("log-level"))
	mustBind("log.format", pf.Lookup("log-format"))
	mustBind("log.seq_url", pf.Lookup("seq-url"))
	mustBind("manifest.path", pf.Lookup("manifest"))
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("parquet2csv")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "parquet2csv"))
		}
	}

	viper.SetEnvPrefix("PARQUET2CSV")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			fmt.Fprintln(os.Stderr, "warning: reading config:", err)
		}
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	closeLogger()
	if err != nil {
		os.Exit(1)
	}
}
