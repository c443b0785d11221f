package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/academy-desk/internal/observability"
	"github.com/jonathan/academy-desk/internal/types"
)

var batchCmd = &cobra.Command{
	Use:   "batch <file|dir>...",
	Short: "Extract records from many intake files concurrently",
	Long: `Extract every given file (directories contribute their .txt and .html
files) with a bounded worker pool. Each record is printed as one JSON line
with its source file, in input order.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runBatch,
}

var batchWorkers int

func init() {
	batchCmd.Flags().IntVarP(&batchWorkers, "workers", "w", 0, "Concurrent extractions (default: config workers, then GOMAXPROCS)")
	rootCmd.AddCommand(batchCmd)
}

type batchLine struct {
	File   string              `json:"file"`
	Record types.PartialRecord `json:"record"`
}

func runBatch(cmd *cobra.Command, args []string) error {
	files, err := collectInputFiles(args)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no input files found")
	}

	texts := make([]string, len(files))
	for i, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			return fmt.Errorf("failed to read input file: %w", err)
		}
		texts[i] = string(data)
	}

	assembler, err := loadAssembler()
	if err != nil {
		return err
	}

	workers := batchWorkers
	if workers <= 0 {
		workers = appConfig.Workers
	}

	start := time.Now()
	records, err := assembler.ExtractAll(cmd.Context(), texts, workers)
	if err != nil {
		return fmt.Errorf("batch extraction failed: %w", err)
	}
	logger.Info("batch extraction complete",
		zap.Int("files", len(files)),
		zap.Int("workers", workers),
		zap.Duration("elapsed", time.Since(start)),
	)

	w := bufio.NewWriter(cmd.OutOrStdout())
	for i, rec := range records {
		line, err := marshalLine(batchLine{File: files[i], Record: rec})
		if err != nil {
			return err
		}
		_, _ = w.Write(line)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if appConfig.Verbose {
		observability.NewPrinter(cmd.ErrOrStderr()).PrintBatchSummary(records, assembler.CategoryField)
	}
	return nil
}

// collectInputFiles expands directories into their .txt/.html files, sorted
// by name. Plain file arguments are kept in the order given.
func collectInputFiles(args []string) ([]string, error) {
	var files []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("failed to read input: %w", err)
		}
		if !info.IsDir() {
			files = append(files, arg)
			continue
		}

		entries, err := os.ReadDir(arg)
		if err != nil {
			return nil, fmt.Errorf("failed to read directory: %w", err)
		}
		var found []string
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			switch strings.ToLower(filepath.Ext(e.Name())) {
			case ".txt", ".html", ".htm":
				found = append(found, filepath.Join(arg, e.Name()))
			}
		}
		sort.Strings(found)
		files = append(files, found...)
	}
	return files, nil
}
