// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package main is the entry point for the Nutra server: the recipe
// marketing site and the admin console API behind it. It loads
// configuration, connects to services, sets up routing, and starts the
// HTTP server with graceful shutdown support.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"nutra/internal/ai"
	"nutra/internal/bulk"
	"nutra/internal/cache"
	"nutra/internal/config"
	"nutra/internal/database"
	"nutra/internal/handlers"
	"nutra/internal/identity"
	"nutra/internal/middleware"
	"nutra/internal/photos"
	"nutra/internal/router"
	"nutra/internal/routes"
	"nutra/internal/session"
	"nutra/internal/storage"
	"nutra/internal/store"
)

func main() {
	// Structured logger — outputs JSON in production, text in development.
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
		"site_url", cfg.SiteURL,
	)

	// Connect to PostgreSQL.
	db, err := database.Connect(cfg.DSN())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Run pending migrations.
	if err := database.Migrate(db); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Seed development data (no-op if data already exists).
	if cfg.IsDev() {
		if err := database.Seed(db); err != nil {
			slog.Error("failed to seed database", "error", err)
			os.Exit(1)
		}
	}

	// Connect to Valkey (sessions + page cache).
	valkeyClient, err := cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
	if err != nil {
		slog.Error("failed to connect to valkey", "error", err)
		os.Exit(1)
	}
	defer valkeyClient.Close()

	// In non-development environments, mark cookies as Secure (HTTPS-only).
	secureCookies := !cfg.IsDev()
	sessionStore := session.NewStore(valkeyClient, secureCookies)

	// External identity service and the admin allow-list gate.
	idClient := identity.NewClient(cfg.IdentityURL, cfg.IdentityServiceKey)
	gate := identity.NewGate(idClient, cfg.AdminUserIDs)
	if len(cfg.AdminUserIDs) == 0 {
		slog.Warn("no admin user IDs configured — the admin console is unreachable")
	}

	// Data stores.
	recipeStore := store.NewRecipeStore(db)
	premiumStore := store.NewPremiumStore(db)
	waitlistStore := store.NewWaitlistStore(db)

	// S3-compatible object storage (optional — app works without it).
	storageClient, err := storage.New(
		cfg.S3Endpoint, cfg.S3Region, cfg.S3AccessKey, cfg.S3SecretKey,
		cfg.S3Bucket, cfg.S3PublicURL,
	)
	if err != nil {
		slog.Error("failed to initialize S3 storage", "error", err)
		os.Exit(1)
	}
	if storageClient != nil {
		slog.Info("s3 storage connected", "endpoint", cfg.S3Endpoint, "bucket", cfg.S3Bucket)
	} else {
		slog.Warn("s3 storage not configured — photo uploads disabled")
	}

	// AI provider registry: image generation + food moderation.
	aiRegistry := ai.NewRegistry(cfg.AIProvider, map[string]ai.ProviderConfig{
		"openai": {APIKey: cfg.OpenAIKey, Model: cfg.OpenAIModel, BaseURL: cfg.OpenAIBaseURL},
		"gemini": {APIKey: cfg.GeminiKey, Model: cfg.GeminiModel, BaseURL: cfg.GeminiBaseURL},
	})
	slog.Info("ai providers initialized",
		"active", aiRegistry.ActiveName(),
		"available", aiRegistry.Available(),
	)

	// Page cache (full-page HTML in Valkey).
	pageCache := cache.NewPageCache(valkeyClient, cache.DefaultPageTTL)

	// Photo ingestion pipeline, only when storage is configured.
	var pipeline *photos.Pipeline
	if storageClient != nil {
		pipeline = photos.NewPipeline(storageClient, aiRegistry, recipeStore)
	}

	// Bulk executor; the Attacher interface needs a typed nil when the
	// pipeline is absent, not an interface wrapping one.
	var attacher bulk.Attacher
	if pipeline != nil {
		attacher = pipeline
	}
	executor := bulk.NewExecutor(recipeStore, aiRegistry, attacher)

	resolver := routes.NewResolver(recipeStore)

	// Handler groups.
	authHandlers := handlers.NewAuth(sessionStore, idClient, gate)
	adminHandlers := handlers.NewAdmin(recipeStore, premiumStore, pageCache, pipeline, executor, aiRegistry)
	publicHandlers := handlers.NewPublic(resolver, recipeStore, waitlistStore, pageCache, cfg.SiteURL, cfg.DefaultLocale)
	wellKnown := handlers.NewWellKnown(cfg.AppleAppID, cfg.AndroidPackage, cfg.AndroidFingerprint)

	// Rate limiters: waitlist per config, login fixed at 10/min per IP.
	waitlistLimiter := middleware.NewRateLimiter(cfg.WaitlistRateLimit, time.Minute)
	defer waitlistLimiter.Stop()
	loginLimiter := middleware.NewRateLimiter(10, time.Minute)
	defer loginLimiter.Stop()

	r := router.New(router.Deps{
		Sessions:        sessionStore,
		Gate:            gate,
		Auth:            authHandlers,
		Admin:           adminHandlers,
		Public:          publicHandlers,
		WellKnown:       wellKnown,
		LoginLimiter:    loginLimiter,
		WaitlistLimiter: waitlistLimiter,
		SecureCookies:   secureCookies,
	})

	// WriteTimeout must accommodate the AI endpoints that wait on image
	// generation (typically 10-60s).
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start the server in a goroutine so we can listen for shutdown signals.
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig)

	// Give active requests up to 30 seconds to complete.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}
