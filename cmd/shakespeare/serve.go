/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"shakespeare/internal/api"
	"shakespeare/internal/config"
	"shakespeare/internal/storage"
	"shakespeare/internal/telemetry"
)

func newServeCmd(a *app) *cobra.Command {
	var addr string
	var debug bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the web form and JSON API",
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = a.cfg.Server.Addr
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx, addr, debug)
		},
	}
	cmd.Flags().StringVarP(&addr, "addr", "a", "", "listen address (default from config, :8501)")
	cmd.Flags().BoolVar(&debug, "debug", false, "run gin in debug mode")
	return cmd
}

func (a *app) serve(ctx context.Context, addr string, debug bool) error {
	l := a.log.With(slog.String("op", "serve"))

	store, err := storage.Open(ctx, a.cfg.Storage.DSN, a.cfg.Storage.DataDir)
	if err != nil {
		return fmt.Errorf("open history: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			l.Error("close history", slog.Any("err", err))
		}
	}()

	fonts, err := a.fonts()
	if err != nil {
		return fmt.Errorf("load fonts: %w", err)
	}

	tcfg := telemetry.FromEnv()
	tcfg.OptIn = tcfg.OptIn || a.cfg.General.TelemetryOptIn
	tel := telemetry.New(tcfg)
	telemetry.SetDefault(tel)
	defer func() {
		tel.Flush(context.Background())
		telemetry.SetDefault(nil)
	}()

	metrics := api.NewMetrics()
	pipe, err := a.pipeline(metrics.ObserveStep)
	if err != nil {
		return err
	}
	handler := api.New(api.Options{
		Acquirer:             pipe,
		History:              store,
		Fonts:                fonts,
		Metrics:              metrics,
		Telemetry:            tel,
		CredentialConfigured: a.secrets.GeminiAPIKey != "",
		Debug:                debug,
	}).Handler()

	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       config.Millis(a.cfg.Server.ReadTimeoutMs, 15*time.Second),
		WriteTimeout:      config.Millis(a.cfg.Server.WriteTimeoutMs, 2*time.Minute),
	}

	serverErrors := make(chan error, 1)
	go func() {
		l.Info("listening", slog.String("addr", addr), slog.String("history", store.Backend()))
		serverErrors <- srv.ListenAndServe()
	}()
	tel.Event(telemetry.EventServerStarted, map[string]any{"history": store.Backend()})

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server: %w", err)
	case <-ctx.Done():
		grace := config.Millis(a.cfg.Server.ShutdownTimeoutMs, 10*time.Second)
		l.Info("shutting down", slog.Duration("grace", grace))
		sctx, cancel := context.WithTimeout(context.Background(), grace)
		defer cancel()
		if err := srv.Shutdown(sctx); err != nil {
			l.Error("graceful shutdown did not complete", slog.Any("err", err))
			_ = srv.Close()
		}
		l.Info("stopped")
		return nil
	}
}
