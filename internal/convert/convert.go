// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert walks a directory tree and converts every Parquet file it
// finds into a sibling CSV file. Files are processed one at a time.
package convert

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/pdiddy/parquet2csv/pkg/types"
)

// Converter transforms one source file into an output file. The Parquet to
// CSV implementation is ParquetConverter; tests substitute fakes.
type Converter interface {
	// Convert reads srcPath, writes dstPath, and returns the number of data
	// rows and columns written.
	Convert(srcPath, dstPath string) (rows, columns int, err error)
}

// Ledger remembers completed conversions so unchanged sources can be
// skipped on later runs. manifest.Store implements it.
type Ledger interface {
	Lookup(ctx context.Context, source string) (types.ConversionRecord, bool, error)
	Record(ctx context.Context, rec types.ConversionRecord) error
}

// Runner converts files according to a configuration. Ledger, Logger, and
// RunID are optional.
type Runner struct {
	Converter Converter
	Config    types.ConversionConfig
	Ledger    Ledger
	Logger    *slog.Logger
	RunID     string

	// Out receives one human-readable line per file.
	Out io.Writer

	// now is replaced in tests.
	now func() time.Time
}

// BatchResult holds the outcome of a batch run.
type BatchResult struct {
	Converted int
	Skipped   int
	Unchanged int
	Failed    int
}

// Total returns the total number of files processed.
func (r BatchResult) Total() int {
	return r.Converted + r.Skipped + r.Unchanged + r.Failed
}

// HasFailures reports whether any file failed conversion.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

func (r *Runner) logger() *slog.Logger {
	if r.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return r.Logger
}

func (r *Runner) out() io.Writer {
	if r.Out == nil {
		return io.Discard
	}
	return r.Out
}

func (r *Runner) clock() time.Time {
	if r.now != nil {
		return r.now()
	}
	return time.Now()
}

// ConvertFile converts a single source file to its sibling output path.
// When SkipExisting is set and the output exists the file is skipped. When
// a ledger is configured and it holds an entry whose size and modification
// time match the source and whose CSV settings match the current ones, and
// the output still exists, the file is reported unchanged.
func (r *Runner) ConvertFile(ctx context.Context, src string) (types.ConversionStatus, error) {
	cfg := r.Config.WithDefaults()
	dst := OutputPath(src, cfg.InputSuffix, cfg.OutputSuffix)
	log := r.logger().With("source", src, "output", dst)

	info, err := os.Stat(src)
	if err != nil {
		return types.ConversionFailed, fmt.Errorf("stat %s: %w", src, err)
	}

	outExists := fileExists(dst)
	if cfg.SkipExisting && outExists {
		fmt.Fprintf(r.out(), "skipped: %s (%s already exists)\n", src, dst)
		log.Debug("output exists, skipping")
		return types.ConversionSkipped, nil
	}

	fingerprint := cfg.CSV.Fingerprint()
	if r.Ledger != nil && outExists {
		rec, found, err := r.Ledger.Lookup(ctx, src)
		if err != nil {
			return types.ConversionFailed, fmt.Errorf("checking manifest for %s: %w", src, err)
		}
		if found && rec.Size == info.Size() && rec.ModTime.Equal(info.ModTime()) && rec.CSVConfig == fingerprint {
			fmt.Fprintf(r.out(), "unchanged: %s\n", src)
			log.Debug("source unchanged since last conversion", "converted_at", rec.ConvertedAt)
			return types.ConversionUnchanged, nil
		}
	}

	start := r.clock()
	rows, columns, err := r.Converter.Convert(src, dst)
	if err != nil {
		return types.ConversionFailed, err
	}
	log.Info("converted", "rows", rows, "columns", columns, "elapsed", r.clock().Sub(start))

	if r.Ledger != nil {
		rec := types.ConversionRecord{
			Source:      src,
			Output:      dst,
			Size:        info.Size(),
			ModTime:     info.ModTime(),
			Rows:        rows,
			Columns:     columns,
			ConvertedAt: r.clock().UTC(),
			RunID:       r.RunID,
			CSVConfig:   fingerprint,
		}
		if err := r.Ledger.Record(ctx, rec); err != nil {
			return types.ConversionFailed, fmt.Errorf("recording %s in manifest: %w", src, err)
		}
	}

	fmt.Fprintf(r.out(), "Parquet file %s has been converted to CSV file %s.\n", src, dst)
	return types.ConversionDone, nil
}

// ConvertBatch converts paths in order. By default the first failure stops
// the batch and is returned. With KeepGoing set, failures are counted, the
// batch continues, and a summary line is printed; the returned error then
// reports how many files failed.
func (r *Runner) ConvertBatch(ctx context.Context, paths []string) (BatchResult, error) {
	var result BatchResult
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		status, err := r.ConvertFile(ctx, p)
		switch status {
		case types.ConversionDone:
			result.Converted++
		case types.ConversionSkipped:
			result.Skipped++
		case types.ConversionUnchanged:
			result.Unchanged++
		case types.ConversionFailed:
			result.Failed++
		}

		if err != nil {
			if !r.Config.KeepGoing {
				return result, err
			}
			fmt.Fprintf(r.out(), "failed: %s (%v)\n", p, err)
			r.logger().Error("conversion failed", "source", p, "error", err)
		}
	}

	if r.Config.KeepGoing {
		fmt.Fprintf(r.out(), "\nBatch summary: %d converted, %d skipped, %d unchanged, %d failed (total: %d)\n",
			result.Converted, result.Skipped, result.Unchanged, result.Failed, result.Total())
	}
	if result.HasFailures() {
		return result, fmt.Errorf("%d file(s) failed conversion", result.Failed)
	}
	return result, nil
}

// ConvertTree discovers every matching file under the configured root and
// converts them as a batch.
func (r *Runner) ConvertTree(ctx context.Context) (BatchResult, error) {
	cfg := r.Config.WithDefaults()
	paths, err := Discover(cfg.Root, cfg.InputSuffix, cfg.Exclude)
	if err != nil {
		return BatchResult{}, err
	}
	r.logger().Info("discovered files", "root", cfg.Root, "suffix", cfg.InputSuffix, "count", len(paths))
	return r.ConvertBatch(ctx, paths)
}

// OutputPath returns the sibling path of src with inSuffix replaced by
// outSuffix. A src without inSuffix gets outSuffix appended.
func OutputPath(src, inSuffix, outSuffix string) string {
	return strings.TrimSuffix(src, inSuffix) + outSuffix
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular()
}
