package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"rtscheck/internal/config"
	"rtscheck/internal/console"
	"rtscheck/internal/crawler"
	"rtscheck/internal/engine"
	"rtscheck/internal/sections"
)

var (
	rootCmd = &cobra.Command{
		Use:           "rtscheck",
		Short:         "Grammar conformance checks for RealTest strategy scripts",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.LoadConfig(configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if logLevel != "" {
				cfg.Log.Level = logLevel
			}
			logger, err = newLogger(cfg.Log.Level)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logger != nil {
				_ = logger.Sync()
			}
		},
	}

	configPath string
	logLevel   string

	cfg    *config.Config
	logger *zap.Logger
)

// exitCode ends the process with a status but prints nothing more.
type exitCode int

func (e exitCode) Error() string { return fmt.Sprintf("exit status %d", int(e)) }

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	var code exitCode
	switch {
	case err == nil:
	case errors.As(err, &code):
		os.Exit(int(code))
	default:
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultPath, "Path to the config file (.yaml or .toml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(localizeCmd)
	rootCmd.AddCommand(countCmd)
	rootCmd.AddCommand(checkCmd)
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		return nil, err
	}
	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(lvl)
	zc.Encoding = "console"
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zc.OutputPaths = []string{"stderr"}
	return zc.Build()
}

// buildEngine creates the configured engine. kind overrides the config when
// not empty.
func buildEngine(kind string) (engine.Engine, error) {
	if kind == "" {
		kind = cfg.Engine.Kind
	}
	e, err := engine.New(engine.Options{
		Kind:          kind,
		Command:       cfg.Engine.Command,
		Timeout:       cfg.Engine.Timeout,
		AppendNewline: cfg.Engine.AppendNewline,
		Table:         sections.Default,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}
	logger.Debug("engine ready", zap.String("engine", e.Name()))
	return e, nil
}

// findSamples resolves the optional path argument to script files.
func findSamples(args []string) ([]string, error) {
	root := cfg.Samples.Root
	if len(args) > 0 {
		root = args[0]
	}
	paths, err := crawler.NewCrawler(cfg.Samples.Pattern).Find(root)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no %s files found in %s", cfg.Samples.Pattern, root)
	}
	return paths, nil
}

func newPrinter() *console.Printer {
	return console.NewPrinter(os.Stdout)
}
