// cmd/chat-server/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"chatbot-backend/internal/ai"
	"chatbot-backend/internal/chat"
	"chatbot-backend/internal/common/config"
	"chatbot-backend/internal/common/database"
	stderrors "chatbot-backend/internal/common/errors"
	"chatbot-backend/internal/common/logger"
	"chatbot-backend/internal/common/observability"
	"chatbot-backend/internal/server"
	"chatbot-backend/internal/storage"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()

	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting chat server...",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	obs := observability.New("chat-server")
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")

	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(stderrors.NewDatabaseConnectionFailedError(err)))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	// --- Init Elasticsearch with retry ---
	var esClient *database.ElasticsearchClient
	err = retryWithBackoff(func() error {
		var err error
		esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			return err
		}
		return esClient.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "Elasticsearch connection")

	if err != nil {
		zapLog.Fatal("elasticsearch failed after retries", zap.Error(stderrors.NewDatabaseConnectionFailedError(err)))
	}
	zapLog.Info("Elasticsearch connected successfully")

	// --- Init Redis with retry ---
	var redis *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		redis, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return redis.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")

	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(stderrors.NewDatabaseConnectionFailedError(err)))
	}
	defer redis.Close()
	zapLog.Info("Redis connected successfully")

	// --- Wire the chat pipeline ---
	provider := buildProvider(cfg, log)
	zapLog.Info("AI provider configured", zap.String("provider", provider.Name()))

	messages := storage.NewMessageStore(pg)
	sessions := storage.NewSessionStore(redis, time.Duration(cfg.Chat.SessionTTLMinutes)*time.Minute)
	archive := storage.NewExchangeArchive(esClient)

	service := chat.NewService(cfg.Chat, provider, messages, sessions, archive, log)

	// --- Session cleanup ticker ---
	cleanupCtx, stopCleanup := context.WithCancel(ctx)
	defer stopCleanup()
	go func() {
		ticker := time.NewTicker(time.Duration(cfg.Chat.CleanupIntervalHours) * time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				service.CleanupSessions(cleanupCtx)
			case <-cleanupCtx.Done():
				return
			}
		}
	}()

	// --- HTTP Server ---
	srv := server.New(cfg.Server, service, obs, log)
	go func() {
		if err := srv.Start(); err != nil {
			zapLog.Fatal("http server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, draining requests...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.GetDuration(cfg.Server.ShutdownTimeout))
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error shutting down http server", zap.Error(err))
	}

	zapLog.Info("Chat server stopped gracefully")
}

// buildProvider selects the configured AI backend.
func buildProvider(cfg *config.Config, log logger.Logger) ai.Provider {
	adapter := &aiLoggerAdapter{log}

	switch cfg.AI.Provider {
	case "openai":
		return ai.NewOpenAIClient(providerConfig(cfg.AI.OpenAI), adapter)
	default:
		return ai.NewQwen3Client(providerConfig(cfg.AI.Qwen3), adapter)
	}
}

func providerConfig(p config.ProviderConfig) *ai.Config {
	return &ai.Config{
		BaseURL:     p.BaseURL,
		APIKey:      p.APIKey,
		Model:       p.Model,
		MaxTokens:   p.MaxTokens,
		Temperature: p.Temperature,
		Timeout:     config.GetDuration(p.Timeout),
		MaxRetries:  p.MaxRetries,
	}
}

// aiLoggerAdapter bridges the shared logger to the ai package's interface.
type aiLoggerAdapter struct {
	logger.Logger
}

func (a *aiLoggerAdapter) With(fields map[string]interface{}) ai.Logger {
	return &aiLoggerAdapter{a.Logger.With(fields)}
}
