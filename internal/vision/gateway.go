package vision

import (
	"context"
	"log/slog"
	"time"

	"github.com/vbonduro/nutrivision/internal/domain"
)

// Gateway is the single point through which the app talks to a model. It
// never lets a backend fault escape: generation faults come back as a
// Failure and listing faults as a *RemoteError.
type Gateway struct {
	model  Model
	logger *slog.Logger
}

func NewGateway(model Model, logger *slog.Logger) *Gateway {
	return &Gateway{model: model, logger: logger}
}

func (g *Gateway) Generate(ctx context.Context, bundle *domain.PromptBundle) (answer Answer) {
	start := time.Now()
	defer func() {
		if v := recover(); v != nil {
			answer = FailureFrom(panicError(v))
		}
		if f, ok := answer.(Failure); ok {
			g.logger.Warn("generation failed", "kind", f.Kind.String(), "error", f.Message,
				"duration_ms", time.Since(start).Milliseconds())
			return
		}
		g.logger.Info("generation complete", "duration_ms", time.Since(start).Milliseconds())
	}()

	g.logger.Info("generation started",
		"mime_type", bundle.Image.MimeType,
		"bytes", len(bundle.Image.Data),
		"has_note", bundle.UserNote != "",
	)
	text, err := g.model.Generate(ctx, bundle)
	if err != nil {
		return FailureFrom(err)
	}
	return Success{Text: text}
}

func (g *Gateway) ListModels(ctx context.Context) (models []domain.ModelInfo, err error) {
	defer func() {
		if v := recover(); v != nil {
			models, err = nil, panicError(v)
		}
		if err != nil {
			if _, ok := err.(*RemoteError); !ok {
				err = NewRemoteError(KindOf(err), err)
			}
			g.logger.Warn("list models failed", "kind", KindOf(err).String(), "error", err)
		}
	}()
	return g.model.ListModels(ctx)
}
