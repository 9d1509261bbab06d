// Package main boots the chenguang companion HTTP service and wires application dependencies.
package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/Little-pure-light/language-Model/internal/agent"
	"github.com/Little-pure-light/language-Model/internal/config"
	"github.com/Little-pure-light/language-Model/internal/emotion"
	"github.com/Little-pure-light/language-Model/internal/handler"
	"github.com/Little-pure-light/language-Model/internal/memory"
	"github.com/Little-pure-light/language-Model/internal/metrics"
	"github.com/Little-pure-light/language-Model/internal/models"
	"github.com/Little-pure-light/language-Model/internal/persona"
	"github.com/Little-pure-light/language-Model/internal/prompt"
	"github.com/Little-pure-light/language-Model/internal/storage"
)

const serviceName = "chenguang"

func main() {
	cfg := config.Load()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))
	slog.SetDefault(logger)
	slog.Info("configuration loaded", "llm_provider", cfg.LLMProvider, "llm_model", cfg.LLMModel, "embedding_provider", cfg.EmbeddingProvider, "profile", cfg.ProfilePath)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := initTracing(cfg.TraceStdout)
	if err != nil {
		log.Fatalf("failed to set up tracing: %v", err)
	}
	defer shutdownTracing(context.Background())

	store, err := storage.NewStore(ctx, cfg.DatabaseURL, storage.Options{
		MemoriesTable:        cfg.MemoriesTable,
		EmotionalStatesTable: cfg.EmotionalStatesTable,
	})
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer store.Close()

	embedder, err := memory.NewEmbedder(ctx, cfg.EmbeddingProvider, cfg.EmbeddingModel, cfg.EmbeddingAPIKey())
	if err != nil {
		log.Fatalf("failed to create embedder: %v", err)
	}

	llm, err := models.NewLLM(ctx, cfg.LLMProvider, cfg.LLMModel, cfg.LLMAPIKey())
	if err != nil {
		log.Fatalf("failed to create llm: %v", err)
	}
	generator := models.NewGenerator(llm)

	profile, err := persona.Load(cfg.ProfilePath)
	if err != nil {
		log.Fatalf("failed to load persona profile: %v", err)
	}
	var rng *rand.Rand
	if cfg.PersonaSeed != 0 {
		rng = rand.New(rand.NewPCG(cfg.PersonaSeed, cfg.PersonaSeed))
	}
	composer := prompt.NewComposer(emotion.NewAnalyzer(), persona.NewRenderer(profile, rng))

	memoryService := memory.NewService(embedder, store.Memories, store.EmotionalStates, memory.Config{
		RecallLimit: cfg.RecallLimit,
		RecentLimit: cfg.RecentLimit,
		PersonaName: profile.Name,
		AIID:        cfg.AIID,
	})

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(registry)

	companion := agent.NewCompanion(memoryService, composer, generator, store.Memories, m, agent.Config{
		HistoryLimit: cfg.HistoryLimit,
		MaxTokens:    cfg.MaxTokens,
		Temperature:  &cfg.Temperature,
		AIID:         cfg.AIID,
	})

	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := handler.NewRouter(companion, handler.Options{
		ServiceName: serviceName,
		Gatherer:    registry,
		Metrics:     m,
		RateLimit:   cfg.RateLimitRPS,
		RateBurst:   cfg.RateLimitBurst,

		AllowedOrigins: cfg.CORSOrigins,
		HealthChecks:   healthChecks(cfg, store, composer),
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", server.Addr, "persona", profile.Name, "model", generator.Name())
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server failed: %v", err)
		}
	case <-ctx.Done():
		slog.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("graceful shutdown failed", "error", err)
	}
	slog.Info("server shutdown complete")
}

// healthChecks covers what the service needs at startup.
func healthChecks(cfg config.Config, store *storage.Store, composer *prompt.Composer) []handler.HealthCheck {
	return []handler.HealthCheck{
		{Name: "env", Check: func(ctx context.Context) error { return cfg.Validate() }},
		{Name: "database", Check: store.Ping},
		{Name: "pgvector", Check: func(ctx context.Context) error {
			ok, err := store.HasVectorExtension(ctx)
			if err != nil {
				return err
			}
			if !ok {
				return errors.New("pgvector extension not installed")
			}
			return nil
		}},
		{Name: "prompt_engine", Check: func(ctx context.Context) error {
			_, _, err := composer.Compose("健康檢查", "", "")
			return err
		}},
	}
}
