package ollama

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/vbonduro/nutrivision/internal/domain"
	"github.com/vbonduro/nutrivision/internal/vision"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type OllamaAnalyzer struct {
	host   string
	model  string
	client *http.Client
}

func NewOllamaAnalyzer(host, model string) *OllamaAnalyzer {
	return &OllamaAnalyzer{
		host:   strings.TrimRight(host, "/"),
		model:  model,
		client: &http.Client{},
	}
}

type generateRequest struct {
	Model  string   `json:"model"`
	Prompt string   `json:"prompt"`
	Images []string `json:"images"`
	Stream bool     `json:"stream"`
}

// buildPrompt folds the optional note into the prompt text, since the
// generate endpoint takes a single prompt string.
func buildPrompt(bundle *domain.PromptBundle) string {
	if bundle.UserNote == "" {
		return bundle.SystemPrompt
	}
	return bundle.SystemPrompt + "\n\n" + bundle.UserNote
}

func (a *OllamaAnalyzer) Generate(ctx context.Context, bundle *domain.PromptBundle) (string, error) {
	payload, err := json.Marshal(generateRequest{
		Model:  a.model,
		Prompt: buildPrompt(bundle),
		Images: []string{base64.StdEncoding.EncodeToString(bundle.Image.Data)},
		Stream: false,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	var respBody struct {
		Response string `json:"response"`
	}
	if err := a.do(ctx, http.MethodPost, "/api/generate", payload, &respBody); err != nil {
		return "", err
	}
	if respBody.Response == "" {
		return "", vision.NewRemoteError(vision.KindEmptyResponse, errors.New("ollama returned no text"))
	}
	return respBody.Response, nil
}

func (a *OllamaAnalyzer) ListModels(ctx context.Context) ([]domain.ModelInfo, error) {
	var respBody struct {
		Models []struct {
			Name    string `json:"name"`
			Model   string `json:"model"`
			Details struct {
				Family        string `json:"family"`
				ParameterSize string `json:"parameter_size"`
			} `json:"details"`
		} `json:"models"`
	}
	if err := a.do(ctx, http.MethodGet, "/api/tags", nil, &respBody); err != nil {
		return nil, err
	}

	models := make([]domain.ModelInfo, 0, len(respBody.Models))
	for _, m := range respBody.Models {
		id := m.Model
		if id == "" {
			id = m.Name
		}
		models = append(models, domain.ModelInfo{
			ID:          id,
			DisplayName: m.Name,
			Description: strings.TrimSpace(m.Details.Family + " " + m.Details.ParameterSize),
		})
	}
	return models, nil
}

// do sends a request to the Ollama API and decodes a 200 response into out.
func (a *OllamaAnalyzer) do(ctx context.Context, method, path string, payload []byte, out any) error {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, a.host+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := a.client.Do(req)
	if err != nil {
		var netErr net.Error
		if errors.As(err, &netErr) {
			return vision.NewRemoteError(vision.KindUnavailable, fmt.Errorf("failed to call ollama: %w", err))
		}
		return vision.NewRemoteError(vision.KindUnknown, fmt.Errorf("failed to call ollama: %w", err))
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			slog.Error("failed to close ollama response body", "error", err)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		errBody, _ := io.ReadAll(resp.Body)
		return vision.NewRemoteError(vision.KindForStatus(resp.StatusCode),
			fmt.Errorf("ollama returned status %d: %s", resp.StatusCode, bytes.TrimSpace(errBody)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return vision.NewRemoteError(vision.KindUnknown, fmt.Errorf("failed to decode response: %w", err))
	}
	return nil
}
