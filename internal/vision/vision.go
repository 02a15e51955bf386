package vision

import (
	"context"

	"github.com/vbonduro/nutrivision/internal/domain"
)

// NutritionPrompt is the fixed instruction sent ahead of every food photo.
const NutritionPrompt = `You are an expert nutritionist. Look at the food items in the image and
calculate the total calories. Also provide the details of every food item
in the format below:

1. Item 1 - no. of calories
2. Item 2 - no. of calories
----
----`

// Model is a remote multimodal model backend.
type Model interface {
	// Generate sends bundle in a single blocking round trip and returns the
	// model's full text answer.
	Generate(ctx context.Context, bundle *domain.PromptBundle) (string, error)
	// ListModels returns the provider's model catalog.
	ListModels(ctx context.Context) ([]domain.ModelInfo, error)
}
