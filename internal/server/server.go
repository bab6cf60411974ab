package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	mid "github.com/soumendrak/ragas/internal/server/middleware"
	"github.com/soumendrak/ragas/internal/util"
	"github.com/soumendrak/ragas/pkg/ai"
	oai "github.com/soumendrak/ragas/pkg/ai/ollama"
	gai "github.com/soumendrak/ragas/pkg/ai/openai"
	"github.com/soumendrak/ragas/pkg/logger"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// Init configures and runs the HTTP server until SIGINT/SIGTERM.
func Init() {
	e := echo.New()
	e.HideBanner = true

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	aiClient := NewAIClientFromEnv()

	app := &mid.App{
		AiClient: aiClient,
		Parallel: int(util.GetEnvNumeric("AI_PARALLEL_REQ", 8)),
		MaxTries: int(util.GetEnvNumeric("AI_MAX_TRIES", 3)),
	}

	e.Use(mid.AppContextMiddleware(app))
	e.Use(middleware.CORS())
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit("256M"))

	RegisterRoutes(e)

	go func() {
		port := util.GetEnv("PORT")
		if port == "" {
			port = "8080"
		}
		logger.Info("Starting server", "port", port)
		if err := e.Start(":" + port); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed shutting down server", "err", err)
		}
	}()

	<-ctx.Done()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		logger.Error("Failed to shutdown server", "err", err)
	}
}

// NewAIClientFromEnv builds the generation client selected by AI_ADAPTER
// (ollama or the OpenAI-compatible default).
func NewAIClientFromEnv() ai.Client {
	switch util.GetEnv("AI_ADAPTER") {
	case "ollama":
		client, err := oai.NewTestsetOllamaClient(oai.NewTestsetOllamaClientParams{
			GenerationModel: util.GetEnv("AI_CHAT_MODEL"),
			EmbeddingModel:  util.GetEnv("AI_EMBED_MODEL"),

			BaseURL: util.GetEnv("AI_CHAT_URL"),
			ApiKey:  util.GetEnv("AI_CHAT_KEY"),

			MaxConcurrentRequests: int64(util.GetEnvNumeric("AI_PARALLEL_REQ", 8)),
		})
		if err != nil {
			logger.Fatal("Failed to create Ollama client", "err", err)
		}
		return client
	default:
		return gai.NewTestsetOpenAIClient(gai.NewTestsetOpenAIClientParams{
			GenerationModel: util.GetEnv("AI_CHAT_MODEL"),
			EmbeddingModel:  util.GetEnv("AI_EMBED_MODEL"),

			ChatURL:      util.GetEnv("AI_CHAT_URL"),
			ChatKey:      util.GetEnv("AI_CHAT_KEY"),
			EmbeddingURL: util.GetEnv("AI_EMBED_URL"),
			EmbeddingKey: util.GetEnv("AI_EMBED_KEY"),
		})
	}
}
