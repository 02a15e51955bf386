package web

import (
	"encoding/base64"
	"errors"
	"html/template"
	"io"
	"log/slog"
	"mime"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/vbonduro/nutrivision/internal/domain"
	"github.com/vbonduro/nutrivision/internal/vision"
)

const (
	warnMissingImage     = "Please upload an image first."
	warnUnsupportedImage = "Only JPEG and PNG images are supported."
	warnImageTooLarge    = "The image is too large."
	warnBadForm          = "The upload could not be read."
)

// allowedImageTypes mirrors the file picker: JPEG and PNG only.
var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
}

// resultView is what the result panel renders. Exactly one of Warning,
// Error and Text is set.
type resultView struct {
	Warning  string
	Error    string
	Text     string
	ImageURI template.URL
}

type pageView struct {
	Result *resultView
	Models *modelsView
}

// analysis is the outcome of one analyze action, shared by the HTML and JSON
// handlers.
type analysis struct {
	status  int
	warning string
	upload  *domain.UploadedImage
	answer  vision.Answer
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if err := s.renderPage(w, pageView{},
		"base.html", "pages/index.html", "partials/result.html", "partials/models.html",
	); err != nil {
		s.logger.Error("render page failed", "error", err)
	}
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	res := s.analyze(w, r)
	view := &resultView{Warning: res.warning}
	switch a := res.answer.(type) {
	case vision.Success:
		view.Text = a.Text
		view.ImageURI = dataURI(res.upload)
	case vision.Failure:
		view.Error = a.String()
	}

	// Warnings and failures are rendered inline with 200 so HTMX swaps them in.
	if isHTMX(r) {
		if err := s.renderPartial(w, "partials/result.html", view); err != nil {
			s.logger.Error("render partial failed", "error", err)
		}
		return
	}
	if err := s.renderPage(w, pageView{Result: view},
		"base.html", "pages/index.html", "partials/result.html", "partials/models.html",
	); err != nil {
		s.logger.Error("render page failed", "error", err)
	}
}

func (s *Server) handleAPIAnalyze(w http.ResponseWriter, r *http.Request) {
	res := s.analyze(w, r)
	switch a := res.answer.(type) {
	case vision.Success:
		s.writeJSON(w, http.StatusOK, analyzeResponse{Text: a.Text})
	case vision.Failure:
		s.writeJSON(w, http.StatusBadGateway, analyzeResponse{Error: failureBody(a)})
	default:
		s.writeJSON(w, res.status, analyzeResponse{Warning: res.warning})
	}
}

// analyze reads the multipart form and runs the analysis. Warnings never
// reach the model.
func (s *Server) analyze(w http.ResponseWriter, r *http.Request) analysis {
	logger := s.logger.With("request_id", requestIDFrom(r.Context()))

	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	upload, err := readUpload(r, s.maxUploadBytes, logger)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return analysis{status: http.StatusRequestEntityTooLarge, warning: warnImageTooLarge}
		}
		logger.Warn("read upload failed", "error", err)
		return analysis{status: http.StatusBadRequest, warning: warnBadForm}
	}
	if upload != nil && !allowedImageTypes[upload.MimeType] {
		logger.Info("rejected upload", "mime_type", upload.MimeType)
		return analysis{status: http.StatusUnsupportedMediaType, warning: warnUnsupportedImage}
	}

	note := strings.TrimSpace(r.FormValue("note"))
	answer, err := s.service.Analyze(r.Context(), upload, note)
	if errors.Is(err, vision.ErrMissingInput) {
		return analysis{status: http.StatusBadRequest, warning: warnMissingImage}
	}
	if err != nil {
		logger.Error("analysis failed", "error", err)
		return analysis{
			status: http.StatusInternalServerError,
			answer: vision.FailureFrom(err),
		}
	}
	return analysis{status: http.StatusOK, upload: upload, answer: answer}
}

// readUpload returns the "image" file of a multipart form, or nil when the
// form carries no file or an empty one.
func readUpload(r *http.Request, maxBytes int64, logger *slog.Logger) (*domain.UploadedImage, error) {
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		if errors.Is(err, http.ErrNotMultipart) {
			return nil, nil
		}
		return nil, err
	}

	file, header, err := r.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer closeWithLog(file, "upload file", logger)

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, nil
	}
	return &domain.UploadedImage{MimeType: declaredMIME(header, data), Data: data}, nil
}

// declaredMIME returns the part's declared media type, sniffing the content
// only when the client declared nothing useful.
func declaredMIME(header *multipart.FileHeader, data []byte) string {
	if mt, _, err := mime.ParseMediaType(header.Header.Get("Content-Type")); err == nil && mt != "application/octet-stream" {
		return mt
	}
	mt, _, _ := mime.ParseMediaType(mimetype.Detect(data).String())
	return mt
}

func dataURI(upload *domain.UploadedImage) template.URL {
	if upload == nil {
		return ""
	}
	// The MIME type has already been checked against allowedImageTypes.
	return template.URL("data:" + upload.MimeType + ";base64," + base64.StdEncoding.EncodeToString(upload.Data))
}

// closeWithLog closes c and logs any error, using label to identify the resource.
func closeWithLog(c io.Closer, label string, logger *slog.Logger) {
	if err := c.Close(); err != nil {
		logger.Error("failed to close resource", "label", label, "error", err)
	}
}
