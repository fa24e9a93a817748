package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/c360studio/policytraits/config"
	"github.com/c360studio/policytraits/policy"
)

func watchCmd(opts *globalOptions) *cobra.Command {
	var (
		file     string
		debounce time.Duration
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-resolve a policy document every time it changes",
		RunE: func(cmd *cobra.Command, args []string) error {
			if file == "" {
				return errors.New("--file is required")
			}
			env, err := setup(cmd, opts, "")
			if err != nil {
				return err
			}

			w, err := config.NewWatcher(config.WatcherConfig{
				Path:          file,
				DebounceDelay: debounce,
				Logger:        env.logger,
			})
			if err != nil {
				return fmt.Errorf("watch %s: %w", file, err)
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			env.logger.Info("Watching policy document", "path", file)
			return w.Run(ctx, reloadHandler(env.logger, file, cmd.OutOrStdout()))
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Policy document to watch")
	cmd.Flags().DurationVar(&debounce, "debounce", 100*time.Millisecond, "Delay before reloading after a change")

	return cmd
}

// reloadHandler resolves every policy of each reloaded document against the
// registry that document describes, and writes the results to out.
func reloadHandler(logger *slog.Logger, path string, out io.Writer) config.ReloadFunc {
	return func(doc *config.Config, err error) {
		if err != nil {
			logger.Error("Policy document invalid", "path", path, "error", err)
			return
		}
		reg, err := doc.NewRegistry()
		if err != nil {
			logger.Error("Policy document registry invalid", "path", path, "error", err)
			return
		}
		resolver := policy.NewResolver(reg, policy.WithLogger(logger))

		results, err := resolvePolicies(resolver, doc, nil)
		if err != nil {
			logger.Warn("Some policies failed to resolve", "error", err)
		}
		if werr := writeJSON(out, results); werr != nil {
			logger.Error("Failed to write results", "error", werr)
		}
	}
}
