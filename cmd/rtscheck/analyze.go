package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"rtscheck/internal/engine"
	"rtscheck/internal/fallback"
	"rtscheck/internal/localize"
	"rtscheck/internal/runner"
	"rtscheck/internal/sections"
	"rtscheck/internal/source"
)

var analyzeEngine string

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>",
	Short: "Show both section inventories of one file and how to fix their differences",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := buildEngine(analyzeEngine)
		if err != nil {
			return err
		}
		r := runner.New(eng, runner.Options{Lookahead: cfg.Run.Lookahead, Logger: logger})
		res := r.ValidateFile(cmd.Context(), args[0])
		if errors.Is(res.Err, engine.ErrEngineUnavailable) {
			return res.Err
		}

		p := newPrinter()
		switch res.Status {
		case runner.StatusUnreadable, runner.StatusMalformed:
			return res.Err
		case runner.StatusUnparsed:
			p.ErrorContext(res)
			return exitCode(1)
		}

		p.SectionAnalysis(res)
		if res.Status == runner.StatusClean {
			fmt.Println("✓ Text and parse tree agree.")
			return nil
		}
		fmt.Printf("\nIssues (%d):\n", len(res.Comparison.Issues))
		p.Issues(res.Comparison.Issues)
		return exitCode(1)
	},
}

var (
	localizeEngine    string
	localizeLookahead int
)

var localizeCmd = &cobra.Command{
	Use:   "localize <file>",
	Short: "Find the longest prefix of a file that still parses",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", args[0], err)
		}
		eng, err := buildEngine(localizeEngine)
		if err != nil {
			return err
		}

		lookahead := cfg.Run.Lookahead
		if cmd.Flags().Changed("lookahead") {
			lookahead = localizeLookahead
		}
		r := runner.New(eng, runner.Options{Localize: true, Lookahead: lookahead, Logger: logger})
		res := r.ValidateText(cmd.Context(), args[0], string(raw))
		if errors.Is(res.Err, engine.ErrEngineUnavailable) {
			return res.Err
		}

		p := newPrinter()
		if res.Status != runner.StatusUnparsed {
			fmt.Printf("%s parses completely (%d lines).\n", args[0], len(source.Lines(res.Text)))
			return nil
		}
		p.ErrorContext(res)
		p.Boundary(res.Boundary, res.Text)
		return exitCode(1)
	},
}

var countEngine string

var countCmd = &cobra.Command{
	Use:   "count <section> [path]",
	Short: "Count one section name in text and parse trees across files",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := sections.Name(args[0])
		if !sections.Default.Known(name) {
			return fmt.Errorf("unknown section name: %s", name)
		}
		paths, err := findSamples(args[1:])
		if err != nil {
			return err
		}
		eng, err := buildEngine(countEngine)
		if err != nil {
			return err
		}

		r := runner.New(eng, runner.Options{Workers: cfg.Run.Workers, Logger: logger})
		rep, err := r.CountSection(cmd.Context(), paths, name)
		if err != nil {
			return err
		}
		newPrinter().CountTable(rep)
		if rep.Issue != nil {
			return exitCode(1)
		}
		return nil
	},
}

var checkCmd = &cobra.Command{
	Use:   "check <file>...",
	Short: "Run only the built-in line checker on files",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p := newPrinter()
		parser := fallback.New(sections.Default)
		failed := false
		for _, path := range args {
			raw, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", path, err)
			}
			res := parser.Check(string(raw))
			p.CheckResult(path, res)
			failed = failed || !res.OK()
		}
		if failed {
			return exitCode(1)
		}
		return nil
	},
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeEngine, "engine", "", "Engine kind: command, fallback or auto")
	localizeCmd.Flags().StringVar(&localizeEngine, "engine", "", "Engine kind: command, fallback or auto")
	localizeCmd.Flags().IntVar(&localizeLookahead, "lookahead", localize.DefaultLookahead, "Prefixes probed past the failure to detect non-monotonic parses")
	countCmd.Flags().StringVar(&countEngine, "engine", "", "Engine kind: command, fallback or auto")
}
