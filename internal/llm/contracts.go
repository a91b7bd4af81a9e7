package llm

import "context"

// Message is one chat message. Content is used for plain text; Parts for
// multimodal (vision) messages.
type Message struct {
	Role    string
	Content string
	Parts   []ContentPart
}

// ContentPart is either text or an image in a vision message.
type ContentPart struct {
	Type     string    // "text" or "image_url"
	Text     string    `json:"text,omitempty"`
	ImageURL *ImageURL `json:"image_url,omitempty"`
}

// ImageURL carries a base64 data URL or remote reference to an image.
type ImageURL struct {
	URL string `json:"url"`
}

// ChatRequest is a chat completion request.
type ChatRequest struct {
	Model          string
	Messages       []Message
	Temperature    float32
	ResponseFormat string // "json_object" to force JSON mode
	MaxTokens      int
}

// ChatResponse is the model's reply plus token accounting.
type ChatResponse struct {
	Content          string
	Model            string
	PromptTokens     int
	CompletionTokens int
}

// ChatClient is the capability the extractors depend on. Constructor-injected
// so both can be tested against a fake without network access.
type ChatClient interface {
	Complete(ctx context.Context, req ChatRequest) (*ChatResponse, error)
}
