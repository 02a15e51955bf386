package claude

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/liushuangls/go-anthropic/v2"
	"github.com/vbonduro/nutrivision/internal/domain"
	"github.com/vbonduro/nutrivision/internal/vision"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const defaultBaseURL = "https://api.anthropic.com/v1"

// anthropicVersion is the Anthropic API version header value.
const anthropicVersion = "2023-06-01"

// maxTokens leaves room for a per-item breakdown of a full plate plus a total.
const maxTokens = 1024

type ClaudeAnalyzer struct {
	apiKey     string
	model      string
	client     *anthropic.Client
	httpClient *http.Client
	baseURL    string
}

func NewClaudeAnalyzer(apiKey, model string) *ClaudeAnalyzer {
	return newClaudeAnalyzer(apiKey, model, defaultBaseURL)
}

func newClaudeAnalyzer(apiKey, model, baseURL string) *ClaudeAnalyzer {
	return &ClaudeAnalyzer{
		apiKey:     apiKey,
		model:      model,
		client:     anthropic.NewClient(apiKey, anthropic.WithBaseURL(baseURL)),
		httpClient: &http.Client{},
		baseURL:    baseURL,
	}
}

// buildMessages constructs a single user turn: instructions, the image, then
// the optional note.
func buildMessages(bundle *domain.PromptBundle) []anthropic.Message {
	content := []anthropic.MessageContent{
		anthropic.NewTextMessageContent(bundle.SystemPrompt),
		anthropic.NewImageMessageContent(anthropic.NewMessageContentSource(
			anthropic.MessagesContentSourceTypeBase64,
			bundle.Image.MimeType,
			base64.StdEncoding.EncodeToString(bundle.Image.Data),
		)),
	}
	if bundle.UserNote != "" {
		content = append(content, anthropic.NewTextMessageContent(bundle.UserNote))
	}
	return []anthropic.Message{{Role: anthropic.RoleUser, Content: content}}
}

func (a *ClaudeAnalyzer) Generate(ctx context.Context, bundle *domain.PromptBundle) (string, error) {
	resp, err := a.client.CreateMessages(ctx, anthropic.MessagesRequest{
		Model:     anthropic.Model(a.model),
		MaxTokens: maxTokens,
		Messages:  buildMessages(bundle),
	})
	if err != nil {
		return "", classify(fmt.Errorf("failed to call claude: %w", err))
	}

	var sb strings.Builder
	for _, c := range resp.Content {
		if c.Type == anthropic.MessagesContentTypeText {
			sb.WriteString(c.GetText())
		}
	}
	if sb.Len() == 0 {
		return "", vision.NewRemoteError(vision.KindEmptyResponse, errors.New("claude returned no text"))
	}
	return sb.String(), nil
}

type modelPage struct {
	Data []struct {
		ID          string `json:"id"`
		DisplayName string `json:"display_name"`
		CreatedAt   string `json:"created_at"`
	} `json:"data"`
	HasMore bool   `json:"has_more"`
	LastID  string `json:"last_id"`
}

// ListModels pages through the Models API.
func (a *ClaudeAnalyzer) ListModels(ctx context.Context) ([]domain.ModelInfo, error) {
	var models []domain.ModelInfo
	afterID := ""
	for {
		page, err := a.fetchModelPage(ctx, afterID)
		if err != nil {
			return nil, err
		}
		for _, m := range page.Data {
			info := domain.ModelInfo{ID: m.ID, DisplayName: m.DisplayName}
			if len(m.CreatedAt) >= len("2006-01-02") {
				info.Description = "Released " + m.CreatedAt[:len("2006-01-02")]
			}
			models = append(models, info)
		}
		if !page.HasMore || page.LastID == "" {
			return models, nil
		}
		afterID = page.LastID
	}
}

func (a *ClaudeAnalyzer) fetchModelPage(ctx context.Context, afterID string) (*modelPage, error) {
	q := url.Values{"limit": {"100"}}
	if afterID != "" {
		q.Set("after_id", afterID)
	}
	req, err := a.newHTTPRequest(ctx, http.MethodGet, "/models?"+q.Encode())
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, classify(fmt.Errorf("failed to list claude models: %w", err))
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			slog.Error("failed to close claude response body", "error", err)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		errBody, _ := io.ReadAll(resp.Body)
		return nil, vision.NewRemoteError(vision.KindForStatus(resp.StatusCode),
			fmt.Errorf("claude returned status %d: %s", resp.StatusCode, errBody))
	}

	var page modelPage
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, vision.NewRemoteError(vision.KindUnknown, fmt.Errorf("failed to decode response: %w", err))
	}
	return &page, nil
}

// newHTTPRequest creates an authenticated request to the Anthropic API.
func (a *ClaudeAnalyzer) newHTTPRequest(ctx context.Context, method, path string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("x-api-key", a.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)
	return req, nil
}

func classify(err error) error {
	var apiErr *anthropic.APIError
	if errors.As(err, &apiErr) {
		return vision.NewRemoteError(kindForErrorType(string(apiErr.Type)), err)
	}
	var reqErr *anthropic.RequestError
	if errors.As(err, &reqErr) {
		return vision.NewRemoteError(vision.KindForStatus(reqErr.StatusCode), err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) || errors.Is(err, context.DeadlineExceeded) {
		return vision.NewRemoteError(vision.KindUnavailable, err)
	}
	return vision.NewRemoteError(vision.KindUnknown, err)
}

// kindForErrorType maps the "error.type" field of an Anthropic error body.
func kindForErrorType(t string) vision.Kind {
	switch t {
	case "authentication_error", "permission_error":
		return vision.KindAuth
	case "rate_limit_error":
		return vision.KindQuota
	case "invalid_request_error", "not_found_error", "request_too_large":
		return vision.KindInvalidRequest
	case "api_error", "overloaded_error":
		return vision.KindUnavailable
	default:
		return vision.KindUnknown
	}
}
