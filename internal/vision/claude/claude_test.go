package claude

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vbonduro/nutrivision/internal/domain"
	"github.com/vbonduro/nutrivision/internal/vision"
)

type wireMessage struct {
	Model    string `json:"model"`
	Messages []struct {
		Role    string `json:"role"`
		Content []struct {
			Type   string `json:"type"`
			Text   string `json:"text"`
			Source *struct {
				Type      string `json:"type"`
				MediaType string `json:"media_type"`
				Data      string `json:"data"`
			} `json:"source"`
		} `json:"content"`
	} `json:"messages"`
}

func testBundle(note string) *domain.PromptBundle {
	return &domain.PromptBundle{
		SystemPrompt: vision.NutritionPrompt,
		Image:        domain.ImagePart{MimeType: "image/png", Data: []byte{0x89, 0x50, 0x4E, 0x47}},
		UserNote:     note,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestClaudeGenerate(t *testing.T) {
	var got wireMessage
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/messages" {
			http.NotFound(w, r)
			return
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		writeJSON(w, http.StatusOK, map[string]any{
			"id":          "msg_01",
			"type":        "message",
			"role":        "assistant",
			"model":       got.Model,
			"stop_reason": "end_turn",
			"content": []map[string]any{
				{"type": "text", "text": "1. Salad - 120 calories"},
			},
			"usage": map[string]any{"input_tokens": 100, "output_tokens": 12},
		})
	}))
	defer server.Close()

	analyzer := newClaudeAnalyzer("sk-test", "claude-sonnet-4-5", server.URL+"/v1")

	text, err := analyzer.Generate(context.Background(), testBundle("dressing on the side"))
	require.NoError(t, err)
	assert.Equal(t, "1. Salad - 120 calories", text)

	assert.Equal(t, "claude-sonnet-4-5", got.Model)
	require.Len(t, got.Messages, 1)
	content := got.Messages[0].Content
	require.Len(t, content, 3)
	assert.Equal(t, "text", content[0].Type)
	assert.Equal(t, vision.NutritionPrompt, content[0].Text)
	assert.Equal(t, "image", content[1].Type)
	require.NotNil(t, content[1].Source)
	assert.Equal(t, "image/png", content[1].Source.MediaType)
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte{0x89, 0x50, 0x4E, 0x47}), content[1].Source.Data)
	assert.Equal(t, "dressing on the side", content[2].Text)
}

func TestClaudeGenerateRateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusTooManyRequests, map[string]any{
			"type":  "error",
			"error": map[string]any{"type": "rate_limit_error", "message": "Number of requests has exceeded your rate limit"},
		})
	}))
	defer server.Close()

	analyzer := newClaudeAnalyzer("sk-test", "claude-sonnet-4-5", server.URL+"/v1")

	_, err := analyzer.Generate(context.Background(), testBundle(""))
	require.Error(t, err)
	assert.Equal(t, vision.KindQuota, vision.KindOf(err))
}

func TestClaudeGenerateNetworkError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	baseURL := server.URL
	server.Close()

	analyzer := newClaudeAnalyzer("sk-test", "claude-sonnet-4-5", baseURL+"/v1")

	_, err := analyzer.Generate(context.Background(), testBundle(""))
	require.Error(t, err)
	assert.Equal(t, vision.KindUnavailable, vision.KindOf(err))
}

func TestClaudeListModels(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/models", r.URL.Path)
		assert.Equal(t, "sk-test", r.Header.Get("x-api-key"))
		assert.Equal(t, anthropicVersion, r.Header.Get("anthropic-version"))
		calls++
		if r.URL.Query().Get("after_id") == "" {
			writeJSON(w, http.StatusOK, map[string]any{
				"data": []map[string]any{
					{"id": "claude-sonnet-4-5", "display_name": "Claude Sonnet 4.5", "created_at": "2025-09-29T00:00:00Z"},
				},
				"has_more": true,
				"last_id":  "claude-sonnet-4-5",
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"data": []map[string]any{
				{"id": "claude-3-5-haiku-20241022", "display_name": "Claude Haiku 3.5", "created_at": "2024-10-22T00:00:00Z"},
			},
			"has_more": false,
		})
	}))
	defer server.Close()

	analyzer := newClaudeAnalyzer("sk-test", "claude-sonnet-4-5", server.URL+"/v1")

	models, err := analyzer.ListModels(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Equal(t, []domain.ModelInfo{
		{ID: "claude-sonnet-4-5", DisplayName: "Claude Sonnet 4.5", Description: "Released 2025-09-29"},
		{ID: "claude-3-5-haiku-20241022", DisplayName: "Claude Haiku 3.5", Description: "Released 2024-10-22"},
	}, models)
}

func TestClaudeListModelsUnauthorized(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"type":"error","error":{"type":"authentication_error","message":"invalid x-api-key"}}`, http.StatusUnauthorized)
	}))
	defer server.Close()

	analyzer := newClaudeAnalyzer("bad-key", "claude-sonnet-4-5", server.URL+"/v1")

	models, err := analyzer.ListModels(context.Background())
	require.Error(t, err)
	assert.Nil(t, models)
	assert.Equal(t, vision.KindAuth, vision.KindOf(err))
}

func TestKindForErrorType(t *testing.T) {
	assert.Equal(t, vision.KindAuth, kindForErrorType("authentication_error"))
	assert.Equal(t, vision.KindQuota, kindForErrorType("rate_limit_error"))
	assert.Equal(t, vision.KindInvalidRequest, kindForErrorType("invalid_request_error"))
	assert.Equal(t, vision.KindUnavailable, kindForErrorType("overloaded_error"))
	assert.Equal(t, vision.KindUnknown, kindForErrorType("something_new"))
}
