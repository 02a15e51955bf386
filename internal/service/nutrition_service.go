package service

import (
	"context"
	"log/slog"

	"github.com/vbonduro/nutrivision/internal/domain"
	"github.com/vbonduro/nutrivision/internal/vision"
)

// gateway is the subset of vision.Gateway that NutritionService requires.
type gateway interface {
	Generate(ctx context.Context, bundle *domain.PromptBundle) vision.Answer
	ListModels(ctx context.Context) ([]domain.ModelInfo, error)
}

type NutritionService struct {
	gateway gateway
	logger  *slog.Logger
}

func NewNutritionService(gw gateway, logger *slog.Logger) *NutritionService {
	return &NutritionService{gateway: gw, logger: logger}
}

// Analyze sends the uploaded photo and optional note to the model and returns
// its answer. It returns vision.ErrMissingInput without contacting the model
// when no image was uploaded; every other outcome, including remote faults,
// is reported through the returned Answer.
func (s *NutritionService) Analyze(ctx context.Context, upload *domain.UploadedImage, note string) (vision.Answer, error) {
	if upload == nil || len(upload.Data) == 0 {
		s.logger.Info("analysis requested without an image")
		return nil, vision.ErrMissingInput
	}

	bundle, err := vision.NewPromptBundle(upload, note)
	if err != nil {
		return nil, err
	}

	s.logger.Info("analysis started", "mime_type", upload.MimeType, "bytes", len(upload.Data))
	answer := s.gateway.Generate(ctx, bundle)
	if _, ok := answer.(vision.Success); ok {
		s.logger.Info("analysis complete")
	}
	return answer, nil
}

// ListModels returns the provider's model catalog. It is diagnostic only.
func (s *NutritionService) ListModels(ctx context.Context) ([]domain.ModelInfo, error) {
	models, err := s.gateway.ListModels(ctx)
	if err != nil {
		return nil, err
	}
	s.logger.Info("listed models", "count", len(models))
	return models, nil
}
