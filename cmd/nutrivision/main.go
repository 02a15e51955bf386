package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/vbonduro/nutrivision/internal/config"
	"github.com/vbonduro/nutrivision/internal/logging"
	"github.com/vbonduro/nutrivision/internal/service"
	"github.com/vbonduro/nutrivision/internal/vision"
	claudevision "github.com/vbonduro/nutrivision/internal/vision/claude"
	geminivision "github.com/vbonduro/nutrivision/internal/vision/gemini"
	ollamavision "github.com/vbonduro/nutrivision/internal/vision/ollama"
	"github.com/vbonduro/nutrivision/internal/web"
	"github.com/vbonduro/nutrivision/internal/web/templates"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, cleanup, err := logging.New(cfg.LogLevel, cfg.LogFormat, cfg.LogFile)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	gateway := vision.NewGateway(newVisionModel(ctx, cfg, logger), logger)
	nutritionService := service.NewNutritionService(gateway, logger)
	server := web.NewServer(nutritionService, templates.FS, cfg.MaxUploadBytes(), logger)

	err = server.Run(ctx, cfg.ListenAddr)
	stop()
	if err != nil {
		logger.Error("server error", "error", err)
		cleanup()
		os.Exit(1)
	}
	cleanup()
}

func newVisionModel(ctx context.Context, cfg *config.Config, logger *slog.Logger) vision.Model {
	switch cfg.VisionBackend {
	case "claude":
		if cfg.ClaudeAPIKey == "" {
			logger.Warn("CLAUDE_API_KEY is not set; requests will fail")
		}
		logger.Info("using Claude vision backend", "model", cfg.ClaudeModel)
		return claudevision.NewClaudeAnalyzer(cfg.ClaudeAPIKey, cfg.ClaudeModel)
	case "ollama":
		logger.Info("using Ollama vision backend", "model", cfg.OllamaModel)
		return ollamavision.NewOllamaAnalyzer(cfg.OllamaHost, cfg.OllamaModel)
	default:
		if cfg.VisionBackend != "gemini" {
			logger.Warn("unknown VISION_BACKEND, falling back to gemini", "backend", cfg.VisionBackend)
		}
		if cfg.GoogleAPIKey == "" {
			logger.Warn("GOOGLE_API_KEY is not set; requests will fail")
		}
		logger.Info("using Gemini vision backend", "model", cfg.GeminiModel)
		return geminivision.NewGeminiAnalyzer(ctx, cfg.GoogleAPIKey, cfg.GeminiModel)
	}
}
