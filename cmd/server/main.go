package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"stock-research-agent/internal/conversation"
	"stock-research-agent/internal/corrector"
	"stock-research-agent/internal/interfaces"
	"stock-research-agent/internal/llm"
	"stock-research-agent/internal/llm/llmobs"
	"stock-research-agent/internal/logger"
	"stock-research-agent/internal/marketdata"
	"stock-research-agent/internal/news"
	"stock-research-agent/internal/orchestrator"
	"stock-research-agent/internal/research"
	"stock-research-agent/internal/research/researchobs"
	"stock-research-agent/internal/resolver"
	"stock-research-agent/internal/server"
	"stock-research-agent/internal/status"
	"stock-research-agent/internal/store"
	"stock-research-agent/internal/trace"

	"github.com/joho/godotenv"
)

func must(err error) {
	if err != nil {
		log.Fatal(err)
	}
}

func main() {
	_ = godotenv.Load()
	must(logger.Init())
	must(trace.Init())

	cfg, err := store.LoadConfig("config.yaml")
	must(err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	completer := llmobs.Wrap(newCompleter(cfg))

	market := marketdata.NewService()
	newsService := news.NewService(&news.ServiceConfig{
		MaxArticles:    cfg.News.MaxFetched,
		CacheDuration:  cfg.NewsCacheTTL(),
		ScraperTimeout: time.Duration(cfg.News.ScraperTimeout) * time.Second,
	})

	pipeline := researchobs.Wrap(research.New(market, newsService, completer, research.Config{
		HistoryDays:    cfg.Research.HistoryDays,
		NewsFetched:    cfg.News.MaxFetched,
		NewsTopSources: cfg.News.TopSources,
	}))

	conversations, closeConversations, err := newConversationStore(ctx, cfg)
	must(err)
	defer closeConversations()

	statuses := status.NewStore(cfg.StatusTTL())
	defer statuses.Close()

	orch := orchestrator.New(
		pipeline,
		corrector.New(completer),
		resolver.New(),
		conversations,
		statuses,
		orchestrator.Config{
			MaxIterations:  cfg.Research.MaxIterations,
			TimeoutSeconds: cfg.Research.TimeoutSeconds,
		},
	)

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: server.New(orch, statuses).Handler(),
	}

	go func() {
		logger.Info(ctx, "Server listening", "addr", srv.Addr, "llm_provider", cfg.LLM.Provider)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc

	logger.Info(ctx, "Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.ErrorWithErr(ctx, "Shutdown failed", err)
	}
	_ = trace.Shutdown(shutdownCtx)
	_ = logger.Shutdown(shutdownCtx)
}

func newCompleter(cfg *store.Config) interfaces.Completer {
	switch cfg.LLM.Provider {
	case "GEMINI":
		return llm.NewGeminiCompleter(cfg)
	case "OPENAI":
		return llm.NewOpenAICompleter(cfg)
	default:
		return llm.NewNoopCompleter()
	}
}

func newConversationStore(ctx context.Context, cfg *store.Config) (conversation.Store, func(), error) {
	if cfg.Conversation.Backend == "redis" {
		rs := conversation.NewRedisStore(os.Getenv("REDIS_ADDR"), cfg.ConversationTTL())
		if err := rs.Ping(ctx); err != nil {
			return nil, nil, fmt.Errorf("redis conversation store: %w", err)
		}
		return rs, func() { _ = rs.Close() }, nil
	}
	ms := conversation.NewMemoryStore(cfg.ConversationTTL())
	return ms, ms.Close, nil
}
