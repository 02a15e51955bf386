package vision

import (
	"errors"

	"github.com/vbonduro/nutrivision/internal/domain"
)

// ErrMissingInput is returned when analysis is requested without an image.
var ErrMissingInput = errors.New("no image uploaded")

// ImageParts converts an upload into the inline payload a model expects. It
// always yields exactly one entry carrying the upload's MIME type and bytes
// unchanged.
func ImageParts(upload *domain.UploadedImage) ([]domain.ImagePart, error) {
	if upload == nil || len(upload.Data) == 0 {
		return nil, ErrMissingInput
	}
	return []domain.ImagePart{{MimeType: upload.MimeType, Data: upload.Data}}, nil
}

// NewPromptBundle assembles the request for one analysis.
func NewPromptBundle(upload *domain.UploadedImage, note string) (*domain.PromptBundle, error) {
	parts, err := ImageParts(upload)
	if err != nil {
		return nil, err
	}
	return &domain.PromptBundle{
		SystemPrompt: NutritionPrompt,
		Image:        parts[0],
		UserNote:     note,
	}, nil
}
