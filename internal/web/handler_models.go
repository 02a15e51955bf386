package web

import (
	"net/http"

	"github.com/vbonduro/nutrivision/internal/domain"
	"github.com/vbonduro/nutrivision/internal/vision"
)

type modelsView struct {
	Error  string
	Models []domain.ModelInfo
}

func (s *Server) listModels(r *http.Request) *modelsView {
	models, err := s.service.ListModels(r.Context())
	if err != nil {
		s.logger.Warn("list models failed", "request_id", requestIDFrom(r.Context()), "error", err)
		return &modelsView{Error: "Error listing models: " + err.Error()}
	}
	return &modelsView{Models: models}
}

func (s *Server) handleListModels(w http.ResponseWriter, r *http.Request) {
	view := s.listModels(r)

	if isHTMX(r) {
		if err := s.renderPartial(w, "partials/models.html", view); err != nil {
			s.logger.Error("render partial failed", "error", err)
		}
		return
	}
	if err := s.renderPage(w, pageView{Models: view},
		"base.html", "pages/index.html", "partials/result.html", "partials/models.html",
	); err != nil {
		s.logger.Error("render page failed", "error", err)
	}
}

func (s *Server) handleAPIModels(w http.ResponseWriter, r *http.Request) {
	models, err := s.service.ListModels(r.Context())
	if err != nil {
		s.logger.Warn("list models failed", "request_id", requestIDFrom(r.Context()), "error", err)
		s.writeJSON(w, http.StatusBadGateway, modelsResponse{
			Error: &errorBody{Kind: vision.KindOf(err).String(), Message: err.Error()},
		})
		return
	}
	s.writeJSON(w, http.StatusOK, modelsResponse{Models: toModelJSON(models)})
}
