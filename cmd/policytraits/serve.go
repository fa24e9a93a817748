package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/c360studio/policytraits/metrics"
	"github.com/c360studio/policytraits/policy"
	"github.com/c360studio/policytraits/server"
)

func serveCmd(opts *globalOptions) *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve policy resolution and metrics over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			registry := prometheus.NewRegistry()
			registry.MustRegister(collectors.NewGoCollector())

			collector, err := metrics.NewCollector(registry)
			if err != nil {
				return fmt.Errorf("register metrics: %w", err)
			}

			env, err := setup(cmd, opts, "", policy.WithObserver(collector))
			if err != nil {
				return err
			}
			if listen == "" {
				listen = env.cfg.Server.Listen
			}

			srv := &http.Server{
				Addr:              listen,
				Handler:           newServeMux(env, registry),
				ReadHeaderTimeout: env.cfg.Server.ReadTimeout,
				ReadTimeout:       env.cfg.Server.ReadTimeout,
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			errCh := make(chan error, 1)
			go func() {
				env.logger.Info("Serving policy resolution", "listen", listen, "version", Version)
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-ctx.Done():
				env.logger.Info("Received shutdown signal")
			}

			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer shutdownCancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("shutdown: %w", err)
			}
			env.logger.Info("Server shutdown complete")
			return nil
		},
	}

	cmd.Flags().StringVar(&listen, "listen", "", "Listen address (default from config server.listen)")

	return cmd
}

// newServeMux wires the policy API and the metrics endpoint.
func newServeMux(env *environment, gatherer prometheus.Gatherer) *http.ServeMux {
	mux := http.NewServeMux()
	server.NewPolicyHTTPHandler(env.resolver, env.logger).RegisterHTTPHandlers("/", mux)
	mux.Handle("GET /metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return mux
}
