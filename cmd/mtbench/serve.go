package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"mtbench/internal/httpapi"
	"mtbench/internal/manager"
)

func newServeCmd(a *app) *cobra.Command {
	defaultAddr := ":8080"
	if v := os.Getenv("MTBENCH_ADDR"); v != "" {
		defaultAddr = v
	}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the translation HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a.applyServeFlags(cmd)
			return a.serve(cmd.Context())
		},
	}
	f := cmd.Flags()
	f.String("addr", defaultAddr, "HTTP listen address, e.g. :8080")
	f.String("default-model", "", "Default model id when a request omits model")
	f.String("default-task", "", "Default task when a request omits task")
	f.String("default-quantize", "", "Default precision: fp16, bf16, bb8, bb4 (empty = full)")
	f.Int("max-queue-depth", 0, "Queued requests per translator before 429 (0 = default)")
	f.Int("max-wait-sec", 0, "Seconds a request may wait for its turn (0 = default)")
	f.Int("max-instances", 0, "Maximum prepared translators kept at once (0 = unlimited)")
	f.Int64("max-body-bytes", 0, "Maximum JSON request body size (0 = 1MiB)")
	f.Int("translate-timeout-sec", 0, "Maximum duration of one /translate request (0 = none)")
	f.Int("drain-timeout-sec", 0, "Seconds an unload waits for queued work before releasing a translator (0 = 5)")
	f.Bool("cors-enabled", false, "Enable CORS middleware")
	f.String("cors-origins", "", "Comma-separated allowed CORS origins")
	return cmd
}

func (a *app) applyServeFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	str := func(name string, dst *string) {
		if f.Changed(name) || *dst == "" {
			*dst, _ = f.GetString(name)
		}
	}
	num := func(name string, dst *int) {
		if f.Changed(name) || *dst == 0 {
			*dst, _ = f.GetInt(name)
		}
	}
	str("addr", &a.cfg.Addr)
	str("default-model", &a.cfg.DefaultModel)
	str("default-task", &a.cfg.DefaultTask)
	str("default-quantize", &a.cfg.DefaultQuantize)
	num("max-queue-depth", &a.cfg.MaxQueueDepth)
	num("max-wait-sec", &a.cfg.MaxWaitSec)
	num("max-instances", &a.cfg.MaxInstances)
	num("translate-timeout-sec", &a.cfg.TranslateTimeoutSec)
	num("drain-timeout-sec", &a.cfg.DrainTimeoutSec)
	if f.Changed("max-body-bytes") || a.cfg.MaxBodyBytes == 0 {
		a.cfg.MaxBodyBytes, _ = f.GetInt64("max-body-bytes")
	}
	if f.Changed("cors-enabled") {
		a.cfg.CORSEnabled, _ = f.GetBool("cors-enabled")
	}
	if f.Changed("cors-origins") {
		v, _ := f.GetString("cors-origins")
		a.cfg.CORSOrigins = splitCSV(v)
	}
}

func (a *app) newManager(ctx context.Context) *manager.Manager {
	return manager.NewWithConfig(manager.ManagerConfig{
		BaseContext:     ctx,
		Catalog:         a.catalog,
		Backend:         newBackend(a),
		DefaultModel:    a.cfg.DefaultModel,
		DefaultTask:     a.cfg.DefaultTask,
		DefaultQuantize: a.cfg.DefaultQuantize,
		MaxQueueDepth:   a.cfg.MaxQueueDepth,
		MaxWait:         time.Duration(a.cfg.MaxWaitSec) * time.Second,
		MaxInstances:    a.cfg.MaxInstances,
		DrainTimeout:    time.Duration(a.cfg.DrainTimeoutSec) * time.Second,
		Logger:          &a.log,
	})
}

func (a *app) serve(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	mgr := a.newManager(ctx)
	if rep := mgr.SanityCheck(ctx); rep.Error != "" {
		a.log.Warn().Str("backend_url", a.cfg.BackendURL).Str("error", rep.Error).Msg("model backend not available; /translate will fail until it is")
	} else {
		a.log.Info().Bool("accelerator", rep.Accelerator).Msg("model backend reachable")
	}
	// With a default configured, /readyz stays 503 until it is prepared.
	go func() {
		if err := mgr.Warmup(ctx); err != nil {
			a.log.Error().Err(err).Msg("default translator warm-up failed")
		}
	}()

	httpapi.SetLogger(a.log)
	httpapi.SetBaseContext(ctx)
	httpapi.Configure(httpapi.Settings{
		MaxBodyBytes:     a.cfg.MaxBodyBytes,
		TranslateTimeout: time.Duration(a.cfg.TranslateTimeoutSec) * time.Second,
		CORSEnabled:      a.cfg.CORSEnabled,
		CORSOrigins:      a.cfg.CORSOrigins,
	})

	srv := &http.Server{
		Addr:              a.cfg.Addr,
		Handler:           httpapi.NewMux(mgr),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		a.log.Info().Str("addr", a.cfg.Addr).Int("models", len(a.catalog.Models())).Msg("mtbench listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}

	// Graceful shutdown (Ctrl+C / SIGTERM)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.log.Error().Err(err).Msg("graceful shutdown error")
	}
	mgr.UnloadAll()
	return nil
}
