package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/uutislabs/kieli/config"
	"github.com/uutislabs/kieli/httpapi"
)

func newServeCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the translation API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			logger := newLogger()

			translator, limiter, _, err := buildTranslator(cfg, logger)
			if err != nil {
				return err
			}

			reporter, err := buildReporter(cfg)
			if err != nil {
				return err
			}

			opts := []httpapi.ServerOption{
				httpapi.WithServerLogger(logger),
				httpapi.WithRateLimits(limiter, map[string]int{
					translator.FunctionName(): translator.DailyLimit(),
				}),
			}
			if reporter != nil {
				opts = append(opts, httpapi.WithQuotaReporter(reporter))
			}
			if cfg.AuthToken != "" {
				opts = append(opts, httpapi.WithAuthorizer(httpapi.NewStaticTokenAuthorizer(cfg.AuthToken, "api-client")))
			} else {
				logger.Warn("no auth token configured, API is open")
			}

			server := &http.Server{
				Addr:              cfg.ListenAddr,
				Handler:           httpapi.NewServer(translator, opts...).Router(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				logger.Info("listening", "addr", cfg.ListenAddr)
				errCh <- server.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if !errors.Is(err, http.ErrServerClosed) {
					return fmt.Errorf("server failed: %w", err)
				}
			case <-ctx.Done():
				logger.Info("shutting down")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				if err := server.Shutdown(shutdownCtx); err != nil {
					return fmt.Errorf("shutdown failed: %w", err)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to config file")
	return cmd
}
