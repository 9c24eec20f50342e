package gemini

import (
	"strings"

	"github.com/pawradise/backend/internal/domain"
)

const (
	jsonMimeType     = "application/json"
	imageAspectRatio = "1:1"
)

// buildChatRequest converts a domain chat request into the REST payload.
// History entries keep their role; the new message is appended as a user turn.
func buildChatRequest(req *domain.ChatCompletionRequest) *generateContentRequest {
	contents := make([]content, 0, len(req.History)+1)
	for _, h := range req.History {
		if strings.TrimSpace(h.Text) == "" {
			continue
		}
		contents = append(contents, content{
			Role:  normalizeRole(h.Role),
			Parts: []part{{Text: h.Text}},
		})
	}
	contents = append(contents, content{
		Role:  string(domain.ChatRoleUser),
		Parts: []part{{Text: req.Message}},
	})

	temperature := req.Temperature
	out := &generateContentRequest{
		Contents: contents,
		GenerationConfig: &generationConfig{
			Temperature:      &temperature,
			ResponseMimeType: jsonMimeType,
			ResponseSchema:   req.ResponseSchema,
		},
	}
	if req.SystemInstruction != "" {
		out.SystemInstruction = &content{Parts: []part{{Text: req.SystemInstruction}}}
	}
	return out
}

// buildImageRequest creates a single-turn image generation payload
func buildImageRequest(prompt string) *generateContentRequest {
	return &generateContentRequest{
		Contents: []content{{
			Role:  string(domain.ChatRoleUser),
			Parts: []part{{Text: prompt}},
		}},
		GenerationConfig: &generationConfig{
			ResponseModalities: []string{"TEXT", "IMAGE"},
			ImageConfig:        &imageConfig{AspectRatio: imageAspectRatio},
		},
	}
}

// normalizeRole maps any non-user role onto the API's "model" role
func normalizeRole(role string) string {
	if role == string(domain.ChatRoleUser) {
		return role
	}
	return string(domain.ChatRoleModel)
}

// responseText concatenates the text parts of the first candidate
func responseText(resp *generateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}

	var sb strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	return sb.String()
}

// firstInlineImage returns the first inline-data part of the first candidate
func firstInlineImage(resp *generateContentResponse) *domain.GeneratedImage {
	if resp == nil || len(resp.Candidates) == 0 {
		return nil
	}

	for _, p := range resp.Candidates[0].Content.Parts {
		if p.InlineData != nil && p.InlineData.Data != "" {
			return &domain.GeneratedImage{
				MimeType: p.InlineData.MimeType,
				Data:     p.InlineData.Data,
			}
		}
	}
	return nil
}
