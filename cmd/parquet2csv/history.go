// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/parquet2csv/internal/manifest"
	"github.com/pdiddy/parquet2csv/pkg/types"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List conversions recorded in the manifest",
	Long: `History reads the manifest written by "convert --manifest" and lists
the recorded conversions, as a table or exported as YAML or JSON.`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().String("format", "table", "output format: table, yaml, or json")
	historyCmd.Flags().String("prefix", "", "only show sources under this path")
	historyCmd.Flags().String("run", "", "only show conversions from this run ID")
	historyCmd.Flags().Int("limit", 0, "maximum entries to show (0 = all)")

	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	mcfg := types.ManifestConfig{Path: viper.GetString("manifest.path")}
	if !mcfg.Enabled() {
		return errors.New("no manifest configured: pass --manifest or set manifest.path")
	}

	store, err := manifest.Open(mcfg)
	if err != nil {
		return err
	}
	defer store.Close()

	format, _ := cmd.Flags().GetString("format")
	prefix, _ := cmd.Flags().GetString("prefix")
	runID, _ := cmd.Flags().GetString("run")
	limit, _ := cmd.Flags().GetInt("limit")
	filter := manifest.Filter{Prefix: prefix, RunID: runID, Limit: limit}

	out := cmd.OutOrStdout()
	switch format {
	case "yaml":
		return store.ExportYAML(cmd.Context(), out, filter)
	case "json":
		return store.ExportJSON(cmd.Context(), out, filter)
	case "table", "":
		entries, err := store.Entries(cmd.Context(), filter)
		if err != nil {
			return err
		}
		formatHistoryTable(out, entries)
		return nil
	default:
		return fmt.Errorf("unsupported format %q: use table, yaml, or json", format)
	}
}

func formatHistoryTable(w io.Writer, entries []types.ConversionRecord) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No conversions recorded.")
		return
	}

	fmt.Fprintf(w, "%-60s  %8s  %4s  %s\n", "Source", "Rows", "Cols", "Converted")
	fmt.Fprintln(w, strings.Repeat("-", 100))
	for _, e := range entries {
		source := e.Source
		if len(source) > 60 {
			source = "..." + source[len(source)-57:]
		}
		fmt.Fprintf(w, "%-60s  %8d  %4d  %s\n",
			source, e.Rows, e.Columns, e.ConvertedAt.Local().Format(time.DateTime))
	}
	fmt.Fprintf(w, "\n%d conversions\n", len(entries))
}
