package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"rtscheck/internal/crawler"
	"rtscheck/internal/report"
	"rtscheck/internal/runner"
	"rtscheck/internal/watch"
)

var (
	validateEarly            bool
	validateVerbose          bool
	validateSectionCheckOnly bool
	validateReport           string
	validateStatusFile       string
	validateEngine           string
	validateWorkers          int
	validateWatch            bool
)

var validateCmd = &cobra.Command{
	Use:   "validate [path]",
	Short: "Parse every script and check its sections against the parse tree",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		code, err := runValidate(ctx, args)
		if err != nil {
			return err
		}
		if !validateWatch {
			if code != 0 {
				return exitCode(code)
			}
			return nil
		}
		return watchAndValidate(ctx, args)
	},
}

func init() {
	validateCmd.Flags().BoolVar(&validateEarly, "early", false, "Stop at the first file that fails to parse and localize the failure")
	validateCmd.Flags().BoolVarP(&validateVerbose, "verbose", "v", false, "Show the section analysis of every parsed file")
	validateCmd.Flags().BoolVar(&validateSectionCheckOnly, "section-check-only", false, "Do not fail the run for files that do not parse")
	validateCmd.Flags().StringVar(&validateReport, "report", "", "Write a JSON report to this path")
	validateCmd.Flags().StringVar(&validateStatusFile, "status-file", "", "Track pass/fail per sample in this JSON file")
	validateCmd.Flags().StringVar(&validateEngine, "engine", "", "Engine kind: command, fallback or auto")
	validateCmd.Flags().IntVarP(&validateWorkers, "workers", "j", 0, "Files validated in parallel")
	validateCmd.Flags().BoolVarP(&validateWatch, "watch", "w", false, "Re-run when samples or grammar files change")
}

func runValidate(ctx context.Context, args []string) (int, error) {
	paths, err := findSamples(args)
	if err != nil {
		return 0, err
	}
	eng, err := buildEngine(validateEngine)
	if err != nil {
		return 0, err
	}

	workers := cfg.Run.Workers
	if validateWorkers > 0 {
		workers = validateWorkers
	}

	p := newPrinter()
	p.Title("RealTest Script Validator")
	fmt.Printf("Engine: %s\n\nValidating %d files...\n%s\n", eng.Name(), len(paths), "--------------------------------------------------")

	r := runner.New(eng, runner.Options{
		Workers:   workers,
		Early:     validateEarly,
		Lookahead: cfg.Run.Lookahead,
		Logger:    logger,
		OnResult: func(i, total int, res runner.FileResult) {
			p.Progress(i, total, res)
			if validateVerbose && res.Tree != nil {
				p.SectionAnalysis(res)
			}
		},
	})

	batch, err := r.Run(ctx, paths)
	if err != nil {
		return 0, err
	}

	if validateEarly && batch.Summary.Unparsed > 0 {
		failed := batch.Results[len(batch.Results)-1]
		fmt.Println("\n--early flag set. Stopping at first error.")
		p.ErrorContext(failed)
		p.Boundary(failed.Boundary, failed.Text)
	}
	p.Summary(batch, validateEarly, validateSectionCheckOnly)

	if err := writeArtifacts(eng.Name(), paths, batch); err != nil {
		return 0, err
	}
	return batch.Summary.ExitCode(validateSectionCheckOnly), nil
}

func writeArtifacts(engineName string, paths []string, batch *runner.Batch) error {
	reportPath := validateReport
	if reportPath == "" {
		reportPath = cfg.Report.Path
	}
	if reportPath != "" {
		rep := report.New("validate", engineName)
		rep.AddBatch(batch)
		if err := rep.Save(reportPath); err != nil {
			return fmt.Errorf("failed to save report: %w", err)
		}
		logger.Info("report written", zap.String("path", reportPath), zap.String("run_id", rep.RunID))
	}

	statusPath := validateStatusFile
	if statusPath == "" {
		statusPath = cfg.Report.StatusFile
	}
	if statusPath != "" {
		st := report.LoadStatus(statusPath, statusFiles(paths), logger)
		for _, res := range batch.Results {
			st.Record(res.Path, res.Parsed())
		}
		if err := st.Save(statusPath); err != nil {
			return fmt.Errorf("failed to save status file: %w", err)
		}
	}
	return nil
}

// statusFiles lists every sample the status file may keep: the samples under
// the configured root plus the files of this run.
func statusFiles(paths []string) []string {
	all, err := crawler.NewCrawler(cfg.Samples.Pattern).Find(cfg.Samples.Root)
	if err != nil {
		logger.Debug("samples root not scanned for status", zap.String("root", cfg.Samples.Root), zap.Error(err))
	}
	return append(all, paths...)
}

func watchAndValidate(ctx context.Context, args []string) error {
	w, err := watch.New(watch.Config{Debounce: cfg.Watch.Debounce, Pattern: cfg.Samples.Pattern, Logger: logger})
	if err != nil {
		return err
	}

	root := cfg.Samples.Root
	if len(args) > 0 {
		root = args[0]
	}
	if err := w.Add(root); err != nil {
		return err
	}
	for _, g := range cfg.Engine.Grammar {
		if _, err := os.Stat(g); err != nil {
			logger.Debug("grammar path not watched", zap.String("path", g), zap.Error(err))
			continue
		}
		if err := w.Add(g); err != nil {
			return err
		}
	}

	fmt.Printf("\nWatching %s for changes (Ctrl+C to stop)...\n", root)
	err = w.Watch(ctx, func(ctx context.Context, changed []string) {
		logger.Info("change detected", zap.Strings("paths", changed))
		if _, err := runValidate(ctx, args); err != nil && ctx.Err() == nil {
			logger.Error("validation failed", zap.Error(err))
		}
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
