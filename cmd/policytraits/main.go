// Package main provides the policytraits binary entry point.
// policytraits resolves execution policy trait lists into fully specified
// policy descriptors, from the command line, from policy documents or over HTTP.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"github.com/c360studio/policytraits/config"
	"github.com/c360studio/policytraits/policy"
)

const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "policytraits"
)

func main() {
	// Add panic recovery
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// globalOptions holds the persistent flags shared by every command.
type globalOptions struct {
	configPaths []string
	logLevel    string
}

func rootCmd() *cobra.Command {
	opts := &globalOptions{}

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Execution policy trait resolver",
		Long: `policytraits resolves unordered lists of execution policy traits
(execution space, index type, schedule, launch bounds, ...) into a single,
fully specified policy. Categories that are not set explicitly receive
defaults; the default index type follows the chosen execution space.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringArrayVarP(&opts.configPaths, "config", "c", nil, "Policy document path (YAML, repeatable)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error)")

	cmd.AddCommand(
		initCmd(),
		categoriesCmd(opts),
		resolveCmd(opts),
		watchCmd(opts),
		serveCmd(opts),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s version %s (build: %s)\n", appName, Version, BuildTime)
			},
		},
	)

	return cmd
}

// newLogger builds the text logger used by every command.
func newLogger(w io.Writer, logLevel string) *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(logLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// environment is the configuration, logger and resolver a command runs with.
type environment struct {
	cfg      *config.Config
	logger   *slog.Logger
	resolver *policy.Resolver
}

// setup loads the layered configuration and builds the resolver. glob, when
// non-empty, selects policy documents in addition to --config.
func setup(cmd *cobra.Command, opts *globalOptions, glob string, resolverOpts ...policy.Option) (*environment, error) {
	bootstrap := newLogger(cmd.ErrOrStderr(), opts.logLevel)
	loader := config.NewLoader(bootstrap)

	var (
		cfg *config.Config
		err error
	)
	if glob != "" {
		cfg, err = loader.LoadGlob(glob)
		if err == nil && len(opts.configPaths) > 0 {
			extra, lerr := loader.Load(opts.configPaths...)
			if lerr != nil {
				return nil, fmt.Errorf("load config: %w", lerr)
			}
			cfg.Merge(extra)
			err = cfg.Validate()
		}
	} else {
		cfg, err = loader.Load(opts.configPaths...)
	}
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logLevel := opts.logLevel
	if logLevel == "" {
		logLevel = cfg.LogLevel
	}
	logger := newLogger(cmd.ErrOrStderr(), logLevel)
	slog.SetDefault(logger)

	reg, err := cfg.NewRegistry()
	if err != nil {
		return nil, fmt.Errorf("build registry: %w", err)
	}
	logger.Debug("Registry ready", "default_execution_space", reg.DefaultExecutionSpace().Name)

	resolverOpts = append([]policy.Option{policy.WithLogger(logger)}, resolverOpts...)
	return &environment{
		cfg:      cfg,
		logger:   logger,
		resolver: policy.NewResolver(reg, resolverOpts...),
	}, nil
}
