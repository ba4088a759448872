// Package main starts the b-progress client: it opens the on-device
// store, resolves the remote configuration once, establishes the
// session and serves the dashboard data API.
package main

import (
	"cmp"
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	nethttp "net/http"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/bganesh/bprogress/internal/auth"
	"github.com/bganesh/bprogress/internal/config"
	"github.com/bganesh/bprogress/internal/db"
	"github.com/bganesh/bprogress/internal/insight"
	"github.com/bganesh/bprogress/internal/localstore"
	"github.com/bganesh/bprogress/internal/logger"
	"github.com/bganesh/bprogress/internal/repository"
	"github.com/bganesh/bprogress/internal/server/handler/http"
	"github.com/bganesh/bprogress/internal/service"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

func main() {
	// Load a .env file if present, then parse flags and environment.
	_ = godotenv.Load()
	options := config.Parse()

	// Print build metadata (or "N/A" if unset).
	fmt.Printf("Build version: %s\n", cmp.Or(version, "N/A"))
	fmt.Printf("Build date: %s\n", cmp.Or(buildDate, "N/A"))

	// Initialize structured logging.
	log := logger.New()
	defer func() { _ = log.Log.Sync() }()
	if err := log.Init("Info"); err != nil {
		log.Log.Fatal("failed to init logger", zap.Error(err))
	}
	zapLogger := log.Log

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// The local store is always available; it is the durable layer.
	store, err := localstore.Open(options.StorePath)
	if err != nil {
		zapLogger.Fatal("failed to open local store", zap.Error(err))
	}
	defer store.Close()

	// Remote configuration is resolved exactly once per process;
	// changing it requires a restart.
	remoteCfg := config.ResolveRemote(store)

	var (
		documents service.DocumentStore
		sessions  auth.Service
	)
	if remoteCfg.Enabled() {
		pg, err := db.InitPostgres(remoteCfg.DSN)
		if err != nil {
			// Remote unavailability degrades to local-only, never a
			// startup failure.
			zapLogger.Warn("remote store unavailable, running local-only", zap.Error(err))
		} else {
			defer pg.Close()
			documents = repository.NewPostgresDocumentRepository(pg)
			remoteSessions := auth.NewRemoteSessions(
				repository.NewPostgresAccountRepository(pg), store, remoteCfg.SigningKey, zapLogger)
			go remoteSessions.Watch(ctx, 30*time.Second)
			sessions = remoteSessions
		}
	}
	if sessions == nil {
		sessions = auth.NewLocalSessions(store)
	}

	orchestrator := service.New(store, documents, sessions, zapLogger)
	go orchestrator.Run(ctx)

	if user, err := orchestrator.ResolveSession(ctx); err != nil {
		zapLogger.Warn("session resolution failed", zap.Error(err))
	} else if user != nil {
		zapLogger.Info("session established",
			zap.String("user", user.ID), zap.String("role", string(user.Role)))
	}

	var completer insight.Completer
	if options.InsightAPIKey != "" {
		completer = insight.NewGeminiClient(options.InsightAPIKey)
	}
	insights := insight.NewService(completer, zapLogger)

	dashboard := &http.DashboardHandler{State: orchestrator, Insight: insights}
	router := http.NewRouter(dashboard, zapLogger)

	server := &nethttp.Server{Addr: options.Addr, Handler: router}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	zapLogger.Info("dashboard API listening", zap.String("addr", options.Addr))
	if err := server.ListenAndServe(); err != nil && err != nethttp.ErrServerClosed {
		zapLogger.Fatal("server failed", zap.Error(err))
	}
}
