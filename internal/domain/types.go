package domain

// UploadedImage is a photo as received from the user, before any adaptation.
type UploadedImage struct {
	MimeType string
	Data     []byte
}

// ImagePart is the inline image entry sent to a model.
type ImagePart struct {
	MimeType string
	Data     []byte
}

// PromptBundle is everything sent to the model in one generation call.
type PromptBundle struct {
	SystemPrompt string
	Image        ImagePart
	UserNote     string
}

// ModelInfo is one entry of a provider's model catalog.
type ModelInfo struct {
	ID          string
	DisplayName string
	Description string
}
