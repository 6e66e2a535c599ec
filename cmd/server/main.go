package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/bittubunny/BLMS/internal/account"
	"github.com/bittubunny/BLMS/internal/announce"
	"github.com/bittubunny/BLMS/internal/api"
	"github.com/bittubunny/BLMS/internal/catalog"
	"github.com/bittubunny/BLMS/internal/platform/cache"
	"github.com/bittubunny/BLMS/internal/platform/config"
	"github.com/bittubunny/BLMS/internal/platform/database"
	"github.com/bittubunny/BLMS/internal/progress"
	"github.com/bittubunny/BLMS/internal/report"
)

func main() {
	// Missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	setupLogger(cfg.Log)
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	db, err := database.New(ctx, cfg.Database)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	deps, err := buildDeps(ctx, cfg, db)
	if err != nil {
		slog.Error("failed to initialize services", "error", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      api.NewRouter(deps),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
}

// buildDeps creates every store and service the router needs, initializing
// schemas on the way up.
func buildDeps(ctx context.Context, cfg *config.Config, db *database.DB) (api.Deps, error) {
	userStore, err := account.NewPostgresStore(db.Pool)
	if err != nil {
		return api.Deps{}, err
	}
	if err := userStore.InitSchema(ctx); err != nil {
		return api.Deps{}, err
	}

	progressStore, err := progress.NewPostgresStore(db.Pool)
	if err != nil {
		return api.Deps{}, err
	}
	if err := progressStore.InitSchema(ctx); err != nil {
		return api.Deps{}, err
	}

	events := progress.NewPostgresEventLogger(db.Pool)
	if err := events.InitSchema(ctx); err != nil {
		return api.Deps{}, err
	}

	announceStore, err := announce.NewPostgresStore(db.Pool)
	if err != nil {
		return api.Deps{}, err
	}
	if err := announceStore.InitSchema(ctx); err != nil {
		return api.Deps{}, err
	}

	pgCourses, err := catalog.NewPostgresStore(db.Pool)
	if err != nil {
		return api.Deps{}, err
	}
	if err := pgCourses.InitSchema(ctx); err != nil {
		return api.Deps{}, err
	}

	var courseStore catalog.Store = pgCourses
	if cfg.Cache.URL != "" {
		c, err := cache.New(ctx, cfg.Cache)
		if err != nil {
			return api.Deps{}, fmt.Errorf("connecting to cache: %w", err)
		}
		courseStore = catalog.NewCachedStore(pgCourses, c.Client, c.TTL)
		slog.Info("course cache enabled", "ttl", c.TTL)
	}

	tracker := progress.NewTracker(progressStore, catalog.New(courseStore, nil), events)
	courses := catalog.New(courseStore, tracker)

	if cfg.SeedPath != "" {
		if err := courses.Seed(ctx, cfg.SeedPath); err != nil {
			return api.Deps{}, fmt.Errorf("seeding catalog: %w", err)
		}
	}

	feed := announce.NewFeed()

	return api.Deps{
		Accounts:      account.NewService(userStore),
		Courses:       courses,
		Progress:      tracker,
		Announcements: announce.NewService(announceStore, feed),
		Feed:          feed,
		Reports:       report.NewBuilder(courses, tracker),
		Ready:         db.HealthCheck,
	}, nil
}

// setupLogger configures the default slog logger from config.
func setupLogger(cfg config.LogConfig) {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if strings.ToLower(cfg.Format) == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}
