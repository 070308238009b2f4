package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/spf13/cobra"

	"github.com/pkordes/bookmarks/internal/config"
	"github.com/pkordes/bookmarks/internal/handler"
	"github.com/pkordes/bookmarks/internal/metadata"
	"github.com/pkordes/bookmarks/internal/middleware"
	"github.com/pkordes/bookmarks/internal/repo"
	"github.com/pkordes/bookmarks/internal/service"
	"github.com/pkordes/bookmarks/templates"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, logger, err := setup()
		if err != nil {
			return err
		}
		return serve(cmd.Context(), cfg, logger)
	},
}

func serve(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Database ---------------------------------------------------------
	// pgxpool manages a pool of Postgres connections.
	// New() does not open connections immediately — the first query does.
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("create database pool: %w", err)
	}
	defer pool.Close()

	// Verify the DB is reachable before accepting traffic.
	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	slog.Info("database connection established")

	if cfg.MigrateOnStart {
		db := stdlib.OpenDBFromPool(pool)
		provider, err := newMigrationProvider(db)
		if err == nil {
			err = migrateUp(ctx, provider, logger)
		}
		db.Close()
		if err != nil {
			return err
		}
	}

	// --- Services ---------------------------------------------------------
	bookmarkRepo := repo.NewBookmarkRepo(pool)
	tagRepo := repo.NewTagRepo(pool)
	userRepo := repo.NewUserRepo(pool)

	var loader service.MetadataLoader = metadata.Nop{}
	if cfg.FetchMetadata {
		var opts []metadata.Option
		if cfg.MetadataAllowPrivate {
			opts = append(opts, metadata.WithPrivateNetworks())
		}
		loader = metadata.NewLoader(cfg.MetadataTimeout, opts...)
	}

	users := service.NewUserService(userRepo)
	views, err := handler.ParseViews(templates.FS)
	if err != nil {
		return err
	}
	srv := handler.NewServer(
		service.NewQueryService(bookmarkRepo, tagRepo),
		service.NewBookmarkService(repo.NewTransactor(pool), bookmarkRepo, loader, logger),
		service.NewExportService(bookmarkRepo),
		views,
		logger,
	)

	// --- Router -----------------------------------------------------------
	// Middleware is applied in order: RequestID → RealIP → Logger → Recoverer.
	// RequestID generates a unique trace ID per request.
	// RealIP sets r.RemoteAddr from X-Forwarded-For / X-Real-IP (safe behind a proxy).
	// SlogLogger writes one structured JSON log line per request.
	// Recoverer catches panics and returns HTTP 500 instead of crashing.
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewSlogLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Mount("/", handler.NewRouter(srv, handler.Middlewares{
		RequireUser:   middleware.NewRequireUser(users, cfg.AuthHeader, cfg.LoginURL, logger),
		CORS:          middleware.NewCORSHandler(cfg.CORSOrigins),
		MaxBodySize:   middleware.NewMaxBodySizeHandler(cfg.MaxBodyBytes),
		MaxFormMemory: cfg.MaxBodyBytes,
	}))

	// --- HTTP Server ------------------------------------------------------
	// Explicit timeouts prevent slowloris and resource exhaustion attacks.
	// WriteTimeout leaves room for a metadata fetch during a save.
	httpSrv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10*time.Second + cfg.MetadataTimeout,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", httpSrv.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Graceful shutdown: wait for a signal, then give in-flight requests
	// up to 15 seconds to complete before forcefully closing.
	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}
	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	slog.Info("server stopped")
	return nil
}
