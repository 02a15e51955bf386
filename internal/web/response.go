package web

import (
	"net/http"

	jsoniter "github.com/json-iterator/go"
	"github.com/vbonduro/nutrivision/internal/domain"
	"github.com/vbonduro/nutrivision/internal/vision"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type errorBody struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

type analyzeResponse struct {
	Text    string     `json:"text,omitempty"`
	Error   *errorBody `json:"error,omitempty"`
	Warning string     `json:"warning,omitempty"`
}

type modelJSON struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Description string `json:"description"`
}

type modelsResponse struct {
	Models []modelJSON `json:"models,omitempty"`
	Error  *errorBody  `json:"error,omitempty"`
}

func failureBody(f vision.Failure) *errorBody {
	return &errorBody{Kind: f.Kind.String(), Message: f.Message}
}

func toModelJSON(models []domain.ModelInfo) []modelJSON {
	out := make([]modelJSON, 0, len(models))
	for _, m := range models {
		out = append(out, modelJSON{ID: m.ID, DisplayName: m.DisplayName, Description: m.Description})
	}
	return out
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("write json response failed", "error", err)
	}
}
