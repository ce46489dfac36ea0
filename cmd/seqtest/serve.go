package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rigdev/seqtest/internal/config"
	"github.com/rigdev/seqtest/internal/notify"
	"github.com/rigdev/seqtest/internal/storage"
	"github.com/rigdev/seqtest/internal/suite"
	"github.com/rigdev/seqtest/internal/web"
	"github.com/rigdev/seqtest/internal/webhook"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the run history over HTTP and accept signed run triggers",
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")
		port, _ := cmd.Flags().GetInt("port")

		cfg, err := config.LoadConfig(configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if port > 0 {
			cfg.Server.Port = port
		}

		db, err := storage.Open(cfg.StoragePath())
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer db.Close()

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		var opts []web.Option
		if cfg.Server.Secret != "" {
			notifiers, err := notify.FromConfig(cfg.Notify)
			if err != nil {
				return err
			}
			engine := suite.NewEngine(cfg, newRunner(cfg), db, notifiers)
			names := make([]string, 0, len(cfg.Suites))
			for _, s := range cfg.Suites {
				names = append(names, s.Name)
			}
			hook := webhook.NewHandler(ctx, cfg.Server.Secret, names, func(ctx context.Context, names []string) error {
				_, err := engine.Run(ctx, names)
				return err
			})
			// Runs before the deferred db.Close, since triggered runs save to db.
			defer func() {
				log.Println("[web] waiting for triggered runs to finish...")
				hook.Wait()
			}()
			opts = append(opts, web.WithWebhook(hook))
		}

		srv := &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
			Handler:      web.NewHandler(db, cfg, opts...),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			log.Printf("[web] history API running at http://localhost:%d/api/runs", cfg.Server.Port)
			if len(opts) > 0 {
				log.Printf("[web] accepting triggers at http://localhost:%d/webhook", cfg.Server.Port)
			}
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				errCh <- fmt.Errorf("web server: %w", err)
			}
		}()

		select {
		case <-ctx.Done():
			log.Println("[web] shutting down...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		case err := <-errCh:
			return err
		}
	},
}
