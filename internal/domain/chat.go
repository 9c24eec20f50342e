package domain

import "time"

// ChatRole identifies the author of a chat message
type ChatRole string

const (
	ChatRoleUser  ChatRole = "user"
	ChatRoleModel ChatRole = "model"
)

// ChatMessage is one entry in an assistant conversation
type ChatMessage struct {
	Role                  ChatRole  `json:"role"`
	Text                  string    `json:"text"`
	RecommendedProductIDs []string  `json:"recommendedProductIds,omitempty"`
	GeneratedImage        string    `json:"generatedImage,omitempty"` // data URL
	CreatedAt             time.Time `json:"createdAt"`
}

// Conversation is the message log for one session
type Conversation struct {
	SessionID string        `json:"sessionId"`
	Messages  []ChatMessage `json:"messages"`
}

// SendMessageRequest represents a new user turn
type SendMessageRequest struct {
	Text string `json:"text" binding:"required"`
}

// AssistantTurn is the result of one assistant exchange
type AssistantTurn struct {
	Message             ChatMessage `json:"message"`
	RecommendedProducts []Product   `json:"recommendedProducts"`
}

// AssistantReply is the constrained JSON shape requested from the LLM
type AssistantReply struct {
	Text                  string   `json:"text"`
	RecommendedProductIDs []string `json:"recommendedProductIds,omitempty"`
	ImageGenerationPrompt string   `json:"imageGenerationPrompt,omitempty"`
}

// ChatContent is a single role-tagged entry sent to the text model
type ChatContent struct {
	Role string
	Text string
}

// ChatCompletionRequest carries everything the text model needs for one turn
type ChatCompletionRequest struct {
	SystemInstruction string
	History           []ChatContent
	Message           string
	Temperature       float64
	ResponseSchema    map[string]interface{}
}

// GeneratedImage is an inline image returned by the image model
type GeneratedImage struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"` // base64
}

// DataURL renders the image as a data URL suitable for an <img> src
func (g *GeneratedImage) DataURL() string {
	return "data:" + g.MimeType + ";base64," + g.Data
}
