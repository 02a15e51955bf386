package service

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vbonduro/nutrivision/internal/domain"
	"github.com/vbonduro/nutrivision/internal/vision"
)

// stubGateway records calls and returns a pre-configured answer.
type stubGateway struct {
	answer  vision.Answer
	models  []domain.ModelInfo
	listErr error
	calls   []*domain.PromptBundle
}

func (s *stubGateway) Generate(_ context.Context, bundle *domain.PromptBundle) vision.Answer {
	s.calls = append(s.calls, bundle)
	return s.answer
}

func (s *stubGateway) ListModels(_ context.Context) ([]domain.ModelInfo, error) {
	return s.models, s.listErr
}

func TestAnalyzeSandwich(t *testing.T) {
	gw := &stubGateway{answer: vision.Success{Text: "1. Sandwich - 420 calories\nTotal: 420 calories"}}
	svc := NewNutritionService(gw, slog.Default())

	jpeg := []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10}
	answer, err := svc.Analyze(context.Background(), &domain.UploadedImage{MimeType: "image/jpeg", Data: jpeg}, "")
	require.NoError(t, err)

	require.Len(t, gw.calls, 1)
	assert.Equal(t, &domain.PromptBundle{
		SystemPrompt: vision.NutritionPrompt,
		Image:        domain.ImagePart{MimeType: "image/jpeg", Data: jpeg},
		UserNote:     "",
	}, gw.calls[0])
	assert.Equal(t, "1. Sandwich - 420 calories\nTotal: 420 calories", answer.String())
}

func TestAnalyzeWithoutImageNeverCallsGateway(t *testing.T) {
	tests := []struct {
		name   string
		upload *domain.UploadedImage
	}{
		{name: "nil upload", upload: nil},
		{name: "empty upload", upload: &domain.UploadedImage{MimeType: "image/png"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := &stubGateway{answer: vision.Success{Text: "unused"}}
			svc := NewNutritionService(gw, slog.Default())

			answer, err := svc.Analyze(context.Background(), tt.upload, "a note")
			assert.ErrorIs(t, err, vision.ErrMissingInput)
			assert.Nil(t, answer)
			assert.Empty(t, gw.calls)
		})
	}
}

func TestAnalyzeFailureIsReturnedAsAnswer(t *testing.T) {
	gw := &stubGateway{answer: vision.Failure{Kind: vision.KindAuth, Message: "API key not valid"}}
	svc := NewNutritionService(gw, slog.Default())

	answer, err := svc.Analyze(context.Background(), &domain.UploadedImage{MimeType: "image/png", Data: []byte{1}}, "")
	require.NoError(t, err)

	f, ok := answer.(vision.Failure)
	require.True(t, ok)
	assert.Equal(t, vision.KindAuth, f.Kind)
	assert.Equal(t, "Error: API key not valid", answer.String())
}

func TestListModels(t *testing.T) {
	want := []domain.ModelInfo{{ID: "models/gemini-1.5-flash", DisplayName: "Gemini 1.5 Flash"}}
	svc := NewNutritionService(&stubGateway{models: want}, slog.Default())

	got, err := svc.ListModels(context.Background())
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestListModelsError(t *testing.T) {
	svc := NewNutritionService(&stubGateway{listErr: errors.New("permission denied")}, slog.Default())

	got, err := svc.ListModels(context.Background())
	assert.Error(t, err)
	assert.Nil(t, got)
}
