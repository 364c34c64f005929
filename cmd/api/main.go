package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"

	"github.com/debateai/service-api-go/internal/config"
	"github.com/debateai/service-api-go/internal/debate"
	"github.com/debateai/service-api-go/internal/debate/gemini"
	"github.com/debateai/service-api-go/internal/router"
	"github.com/debateai/service-api-go/internal/speech"
	"github.com/debateai/service-api-go/internal/speech/tts"
	"github.com/debateai/service-api-go/internal/user"
	userrepo "github.com/debateai/service-api-go/internal/user/repo"
	"github.com/debateai/service-api-go/pkg/database"
	"github.com/debateai/service-api-go/pkg/utilities"
)

const providerTimeout = 30 * time.Second

func main() {
	// load .env file if present so os.Getenv picks values from it
	_ = godotenv.Load()

	lg, err := utilities.InitLogger(utilities.LogConfigFromEnv())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer lg.Sync()

	sugar := lg.Sugar()
	sugar.Info("starting debate api")

	cfg := config.FromEnv()
	if err := cfg.Validate(); err != nil {
		sugar.Fatalf("configuration: %v", err)
	}

	sqlDB, err := database.Connect(database.Config{DSN: cfg.DatabaseURL, MaxConns: 5, Timeout: 5 * time.Second})
	if err != nil {
		sugar.Fatalf("db connect: %v", err)
	}
	defer sqlDB.Close()
	sqlxDB := sqlx.NewDb(sqlDB, "postgres")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo := userrepo.NewUserRepo(sqlxDB)
	if err := repo.EnsureSchema(ctx); err != nil {
		sugar.Fatalf("ensure schema: %v", err)
	}

	userHandler := user.NewHandler(
		user.NewService(repo),
		[]byte(cfg.JWTSecret),
		cfg.JWTTTL,
		sugar,
	)

	generator := debate.NewGenerator(
		gemini.NewClient(cfg.GeminiAPIKey, cfg.GeminiModel, providerTimeout),
		sugar,
	)

	audioCache, err := speech.NewArtifactCache(
		cfg.AudioDir,
		cfg.AudioTTL,
		tts.NewClient(cfg.TTSBaseURL, providerTimeout),
		sugar,
	)
	if err != nil {
		sugar.Fatalf("audio cache: %v", err)
	}

	debateHandler := debate.NewHandler(generator, audioCache, cfg.BackendURL, sugar)

	handler := router.RegisterRoutes(sugar, cfg, sqlxDB, userHandler, debateHandler)
	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: handler,
	}

	go func() {
		sugar.Infow("http server listening", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			sugar.Fatalf("http server failed: %v", err)
		}
	}()

	<-ctx.Done()

	sugar.Info("shutting down")

	doneCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(doneCtx); err != nil {
		sugar.Warnf("http server shutdown failed: %v", err)
	}

	// final sweep of expired audio artifacts
	audioCache.Cleanup()

	sugar.Info("goodbye")
}
