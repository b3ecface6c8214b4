package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/aretw0/pfc/internal/cli"
	"github.com/aretw0/pfc/internal/presentation/report"
	httpAdapter "github.com/aretw0/pfc/pkg/adapters/http"
	"github.com/muesli/termenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the chart HTTP server",
	Long:  `Serves the chart store over a JSON API with validation, graph rendering, report events and Prometheus metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

		s, err := open(cmd, withMetrics(reg))
		if err != nil {
			return err
		}
		defer s.Close()

		if report.IsTerminal(os.Stdout) {
			report.PrintBanner(cmd.OutOrStdout(), termenv.ColorProfile())
		}

		handler := httpAdapter.NewHandler(s.engine,
			httpAdapter.WithLogger(s.logger),
			httpAdapter.WithMetrics(reg),
		)
		srv := &http.Server{
			Addr:              s.cfg.HTTP.Addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		}

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)
		go func() {
			s.logger.Info("starting pfc server", "addr", srv.Addr, "store", s.cfg.Store.Backend)
			serverErrors <- srv.ListenAndServe()
		}()

		select {
		case err := <-serverErrors:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err

		case <-ctx.Done():
			s.logger.Info("shutting down", "signal", ctx.Signal())

			// Give outstanding requests a deadline for completion.
			sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(sctx); err != nil {
				s.logger.Warn("graceful shutdown did not complete", "timeout", shutdownTimeout, "error", err)
				return srv.Close()
			}
			s.logger.Info("pfc server stopped gracefully")
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", ":8080", "Address to listen on")
}
