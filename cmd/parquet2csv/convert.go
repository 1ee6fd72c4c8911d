// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/parquet2csv/internal/convert"
	"github.com/pdiddy/parquet2csv/internal/manifest"
	"github.com/pdiddy/parquet2csv/pkg/types"
)

var convertCmd = &cobra.Command{
	Use:   "convert [root]",
	Short: "Convert every Parquet file under root to CSV",
	Long: `Convert walks root recursively (default "ebnerd_demo"), reads each file
whose name ends in .parquet, and writes the table as a sibling .csv file with
a header row of column names. Existing CSV files are overwritten.

Only the trailing suffix is replaced: "a.parquet.parquet" becomes
"a.parquet.csv", and a name that merely contains ".parquet" elsewhere is
not converted.

The run stops at the first file that cannot be read or written. Use
--keep-going to convert everything possible and report failures at the end.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConvert,
}

func init() {
	f := convertCmd.Flags()
	f.String("suffix", types.DefaultInputSuffix, "convert files whose name ends with this suffix")
	f.String("out-suffix", types.DefaultOutputSuffix, "suffix that replaces --suffix on output files")
	f.String("delimiter", ",", `field delimiter: a single character, or "tab"`)
	f.String("null", "", "text written for null cells")
	f.Bool("no-header", false, "omit the header row")
	f.Bool("crlf", false, "terminate records with CRLF")
	f.Bool("skip-existing", false, "leave files whose output already exists untouched")
	f.Bool("keep-going", false, "continue past failed files and report them at the end")
	f.StringSlice("exclude", nil, "directory name glob patterns to skip (repeatable)")

	mustBind("convert.suffix", f.Lookup("suffix"))
	mustBind("convert.out_suffix", f.Lookup("out-suffix"))
	mustBind("convert.delimiter", f.Lookup("delimiter"))
	mustBind("convert.null", f.Lookup("null"))
	mustBind("convert.no_header", f.Lookup("no-header"))
	mustBind("convert.crlf", f.Lookup("crlf"))
	mustBind("convert.skip_existing", f.Lookup("skip-existing"))
	mustBind("convert.keep_going", f.Lookup("keep-going"))
	mustBind("convert.exclude", f.Lookup("exclude"))

	viper.SetDefault("convert.root", types.DefaultRoot)

	rootCmd.AddCommand(convertCmd)
}

// conversionConfig assembles the run configuration from flags, environment,
// and config file. A positional root argument wins over convert.root.
func conversionConfig(args []string) (types.ConversionConfig, error) {
	delim, err := parseDelimiter(viper.GetString("convert.delimiter"))
	if err != nil {
		return types.ConversionConfig{}, err
	}

	root := viper.GetString("convert.root")
	if len(args) > 0 {
		root = args[0]
	}

	cfg := types.ConversionConfig{
		CSV: types.CSVConfig{
			Delimiter: delim,
			NullValue: viper.GetString("convert.null"),
			NoHeader:  viper.GetBool("convert.no_header"),
			UseCRLF:   viper.GetBool("convert.crlf"),
		},
		Root:         root,
		InputSuffix:  viper.GetString("convert.suffix"),
		OutputSuffix: viper.GetString("convert.out_suffix"),
		Exclude:      viper.GetStringSlice("convert.exclude"),
		SkipExisting: viper.GetBool("convert.skip_existing"),
		KeepGoing:    viper.GetBool("convert.keep_going"),
	}
	return cfg.WithDefaults(), nil
}

func runConvert(cmd *cobra.Command, args []string) error {
	cfg, err := conversionConfig(args)
	if err != nil {
		return err
	}

	runner := &convert.Runner{
		Converter: convert.NewParquetConverter(cfg.CSV),
		Config:    cfg,
		Logger:    logger,
		RunID:     uuid.NewString(),
		Out:       cmd.OutOrStdout(),
	}

	mcfg := types.ManifestConfig{Path: viper.GetString("manifest.path")}
	if mcfg.Enabled() {
		store, err := manifest.Open(mcfg)
		if err != nil {
			return err
		}
		defer store.Close()
		runner.Ledger = store
	}

	result, err := runner.ConvertTree(cmd.Context())
	logger.Info("run finished",
		"run_id", runner.RunID,
		"converted", result.Converted,
		"skipped", result.Skipped,
		"unchanged", result.Unchanged,
		"failed", result.Failed,
	)
	return err
}
