package usecase

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/pawradise/backend/internal/domain"
	"go.uber.org/zap"
)

// ReplyParser turns raw model text into an AssistantReply
type ReplyParser struct {
	enableDebugLogging bool
}

// Compiled patterns for reply cleanup
var (
	// Markdown fences the model sometimes wraps JSON in, despite JSON mode
	leadingJSONFencePattern = regexp.MustCompile("^```json\\s*")
	leadingFencePattern     = regexp.MustCompile("^```\\s*")
	trailingFencePattern    = regexp.MustCompile("```$")

	nonAlphanumericPattern = regexp.MustCompile(`[^a-z0-9\s]`)
	multiSpacePattern      = regexp.MustCompile(`\s+`)
)

// NewReplyParser creates a new reply parser
func NewReplyParser(enableDebugLogging bool) *ReplyParser {
	return &ReplyParser{
		enableDebugLogging: enableDebugLogging,
	}
}

// Parse extracts the JSON object from raw model output and decodes it.
// Any leading or trailing chatter around the object is discarded.
func (p *ReplyParser) Parse(raw string) (*domain.AssistantReply, error) {
	payload := extractJSONObject(raw)

	var reply domain.AssistantReply
	if err := json.Unmarshal([]byte(payload), &reply); err != nil {
		if p.enableDebugLogging {
			zap.S().Debugf("[REPLY] unparseable model output %q: %v", raw, err)
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedReply, err)
	}

	reply.Text = strings.TrimSpace(reply.Text)
	if reply.Text == "" {
		return nil, fmt.Errorf("%w: missing text", domain.ErrMalformedReply)
	}
	reply.RecommendedProductIDs = cleanProductIDs(reply.RecommendedProductIDs)
	reply.ImageGenerationPrompt = strings.TrimSpace(reply.ImageGenerationPrompt)

	if p.enableDebugLogging {
		zap.S().Debugf("[REPLY] text=%d chars ids=%v imagePrompt=%q",
			len(reply.Text), reply.RecommendedProductIDs, reply.ImageGenerationPrompt)
	}

	return &reply, nil
}

// extractJSONObject returns the span from the first '{' to the last '}'.
// Without both braces it falls back to stripping markdown code fences.
func extractJSONObject(raw string) string {
	first := strings.Index(raw, "{")
	last := strings.LastIndex(raw, "}")
	if first != -1 && last > first {
		return raw[first : last+1]
	}

	cleaned := strings.TrimSpace(raw)
	cleaned = leadingJSONFencePattern.ReplaceAllString(cleaned, "")
	cleaned = leadingFencePattern.ReplaceAllString(cleaned, "")
	cleaned = trailingFencePattern.ReplaceAllString(cleaned, "")
	return strings.TrimSpace(cleaned)
}

// cleanProductIDs trims ids and drops blanks and duplicates, keeping order
func cleanProductIDs(ids []string) []string {
	if len(ids) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// normalizeForCacheKey normalizes a string for use as cache key component.
// Converts to lowercase, removes special characters, and trims whitespace.
func normalizeForCacheKey(s string) string {
	if s == "" {
		return ""
	}
	result := strings.ToLower(s)
	result = nonAlphanumericPattern.ReplaceAllString(result, "")
	result = multiSpacePattern.ReplaceAllString(result, " ")
	return strings.TrimSpace(result)
}
