package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"timemirror/internal/http/handlers"
	httpapi "timemirror/internal/http/httpapi"
	"timemirror/internal/infra"
	"timemirror/internal/providers/genai"
	imageprovider "timemirror/internal/providers/image"
	"timemirror/internal/storage"
	"timemirror/internal/stream"
	"timemirror/internal/timeline"
	"timemirror/internal/web"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	geminiClient, err := genai.NewClient(genai.Options{
		APIKey:     cfg.GeminiAPIKey,
		BaseURL:    cfg.GeminiBaseURL,
		Model:      cfg.GeminiModel,
		HTTPClient: &http.Client{Timeout: cfg.GenerateTimeout},
		Logger:     &logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure gemini client")
	}

	store := storage.NewMemStore()
	hub := stream.NewHub(0)
	orch := timeline.NewOrchestrator(timeline.Options{
		Generator: imageprovider.NewGeminiGenerator(geminiClient),
		Store:     store,
		Hub:       hub,
		Logger:    logger,
		Timeout:   cfg.GenerateTimeout,
	})

	page, err := web.Handler(web.PageData{Years: timeline.Years})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to render page")
	}

	app := handlers.NewApp(cfg, logger, orch, hub, store)
	router := httpapi.NewRouter(app, page)
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Str("model", geminiClient.Model()).Msgf("TimeMirror listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
