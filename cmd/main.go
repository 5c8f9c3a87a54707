// Copyright (c) 2024, 0x0BSoD. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/0x0BSoD/articleKeeper/internal/api"
	"github.com/0x0BSoD/articleKeeper/internal/auth"
	"github.com/0x0BSoD/articleKeeper/internal/config"
	"github.com/0x0BSoD/articleKeeper/internal/model"
	"github.com/0x0BSoD/articleKeeper/internal/scheduler"
	"github.com/0x0BSoD/articleKeeper/internal/storage"
)

func main() {
	cfg := config.Get()

	if cfg.AdminUserID == "" || cfg.AdminPasswordHash == "" {
		log.Printf("[ERROR] admin_user_id and admin_password_hash are required")
		return
	}
	if cfg.TokenSigningKey == "" {
		log.Printf("[ERROR] token_signing_key is required")
		return
	}

	var (
		creds = auth.NewCredentials(model.AdminUser{
			UserID:       cfg.AdminUserID,
			PasswordHash: cfg.AdminPasswordHash,
		})
		tokens         = auth.NewTokenService(cfg.TokenSigningKey, cfg.TokenTTL)
		articleStorage = storage.NewArticleStorage(cfg.SnapshotPath)
		sweeper        = scheduler.New(articleStorage, cfg.SweepInterval)
	)

	if err := articleStorage.Load(); err != nil {
		log.Printf("[ERROR] failed to load article snapshot: %v", err)
		return
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	srv := api.New(articleStorage, creds, tokens, logger)

	httpServer := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      srv,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	go func(ctx context.Context) {
		if err := sweeper.Start(ctx); err != nil {
			if !errors.Is(err, context.Canceled) {
				log.Printf("[ERROR] failed to run scheduler: %v", err)
				return
			}

			log.Printf("[INFO] scheduler stopped")
		}
	}(ctx)

	go func() {
		log.Printf("[INFO] http server listening on %s", cfg.ListenAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("[ERROR] failed to run http server: %v", err)
			cancel()
		}
	}()

	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("[ERROR] http server shutdown: %v", err)
	}

	if err := articleStorage.SaveSnapshot(); err != nil {
		log.Printf("[ERROR] failed to save article snapshot: %v", err)
	}

	log.Printf("[INFO] stopped")
}
