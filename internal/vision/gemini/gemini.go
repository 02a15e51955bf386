package gemini

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/vbonduro/nutrivision/internal/domain"
	"github.com/vbonduro/nutrivision/internal/vision"
	"google.golang.org/genai"
)

type GeminiAnalyzer struct {
	client *genai.Client
	// initErr is kept so a missing or rejected key surfaces on the first call
	// instead of at startup.
	initErr error
	model   string
}

func NewGeminiAnalyzer(ctx context.Context, apiKey, model string) *GeminiAnalyzer {
	return newGeminiAnalyzer(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}, model)
}

func newGeminiAnalyzer(ctx context.Context, cc *genai.ClientConfig, model string) *GeminiAnalyzer {
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return &GeminiAnalyzer{initErr: err, model: model}
	}
	return &GeminiAnalyzer{client: client, model: model}
}

// buildContents lays out one user turn: instructions, the inline image, then
// the optional note.
func buildContents(bundle *domain.PromptBundle) []*genai.Content {
	parts := []*genai.Part{
		{Text: bundle.SystemPrompt},
		{InlineData: &genai.Blob{MIMEType: bundle.Image.MimeType, Data: bundle.Image.Data}},
	}
	if bundle.UserNote != "" {
		parts = append(parts, &genai.Part{Text: bundle.UserNote})
	}
	return []*genai.Content{{Role: "user", Parts: parts}}
}

func (a *GeminiAnalyzer) Generate(ctx context.Context, bundle *domain.PromptBundle) (string, error) {
	if a.initErr != nil {
		return "", vision.NewRemoteError(vision.KindAuth, fmt.Errorf("gemini client unavailable: %w", a.initErr))
	}

	resp, err := a.client.Models.GenerateContent(ctx, a.model, buildContents(bundle), nil)
	if err != nil {
		return "", classify(fmt.Errorf("failed to call gemini: %w", err))
	}

	text := responseText(resp)
	if text == "" {
		return "", vision.NewRemoteError(vision.KindEmptyResponse, errors.New("gemini returned no text"))
	}
	return text, nil
}

func (a *GeminiAnalyzer) ListModels(ctx context.Context) ([]domain.ModelInfo, error) {
	if a.initErr != nil {
		return nil, vision.NewRemoteError(vision.KindAuth, fmt.Errorf("gemini client unavailable: %w", a.initErr))
	}

	var models []domain.ModelInfo
	for m, err := range a.client.Models.All(ctx) {
		if err != nil {
			return nil, classify(fmt.Errorf("failed to list gemini models: %w", err))
		}
		models = append(models, domain.ModelInfo{
			ID:          m.Name,
			DisplayName: m.DisplayName,
			Description: m.Description,
		})
	}
	return models, nil
}

// responseText joins the text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if p != nil {
			sb.WriteString(p.Text)
		}
	}
	return sb.String()
}

func classify(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return vision.NewRemoteError(vision.KindForStatus(apiErr.Code), err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) || errors.Is(err, context.DeadlineExceeded) {
		return vision.NewRemoteError(vision.KindUnavailable, err)
	}
	return vision.NewRemoteError(vision.KindUnknown, err)
}
