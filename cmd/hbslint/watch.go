package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/dkoosis/hbslint/internal/metrics"
	"github.com/dkoosis/hbslint/internal/watch"
	"github.com/dkoosis/hbslint/pkg/stage"
)

func newWatchCmd(stdout, stderr io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Rerun the lint pass whenever a template changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			rec := metrics.NewRecorder()
			p, err := newPipeline(cfg, stdout, stderr, rec)
			if err != nil {
				return err
			}
			defer p.Close()

			ctx := cmd.Context()
			if cfg.MetricsAddr != "" {
				stop := serveMetrics(ctx, cfg.MetricsAddr, rec, p)
				defer stop()
			}

			// Lint errors never end a watch session.
			if err := p.build(ctx); err != nil && !isExitOnly(err) {
				p.log.Error("initial build failed", "error", err)
			}

			w, err := watch.New(cfg.Input, []string{stage.InputExtension}, watch.DefaultDebounce, p.log)
			if err != nil {
				return err
			}
			defer w.Close()

			p.log.Info("watching templates", "dir", cfg.Input)
			err = w.Run(ctx, func(ctx context.Context, _ []string) error {
				if err := p.build(ctx); err != nil && !isExitOnly(err) {
					return err
				}
				return nil
			})
			if isCanceled(err) {
				return nil
			}
			return err
		},
	}
	addStageFlags(cmd.Flags())
	cmd.Flags().String("metrics-addr", "", "serve Prometheus metrics on this address, e.g. :9464")
	return cmd
}

// isExitOnly reports whether err only carries the fail_on_error exit code.
func isExitOnly(err error) bool {
	var ee *exitError
	return errors.As(err, &ee) && ee.err == nil
}

// serveMetrics exposes rec on addr/metrics until the returned stop is
// called.
func serveMetrics(ctx context.Context, addr string, rec *metrics.Recorder, p *pipeline) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", rec.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		p.log.Info("serving metrics", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			p.log.Error("metrics server failed", "error", err)
		}
	}()

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}
}
