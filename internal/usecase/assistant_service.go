package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/pawradise/backend/internal/domain"
	"go.uber.org/zap"
)

// Canned assistant texts
const (
	GreetingText      = "Woof! 🐾 I'm Paw. I can help you find products or even paint pictures! Try asking: \"I need cute images of cats and dogs\"."
	FallbackReplyText = "I'm having a little trouble sniffing out the answer right now. Could you try asking again?"
	NoImageSuffix     = "\n\n(I tried to paint that for you, but I ran out of virtual ink! 🎨❌)"
	ImageFailedSuffix = "\n\n(Image generation failed temporarily.)"
)

const (
	defaultMaxHistory    = 50
	defaultSessionTTL    = 24 * time.Hour
	defaultImageCacheTTL = 720 * time.Hour // 30 days
)

// AssistantServiceConfig holds configuration for the assistant service
type AssistantServiceConfig struct {
	Temperature   float64
	MaxHistory    int
	SessionTTL    time.Duration
	ImageCacheTTL time.Duration
	EnableImages  bool
	Debug         bool
}

// storedMessage is the cached form of a chat message. Generated images are
// kept once under their image cache key and referenced from the log.
type storedMessage struct {
	domain.ChatMessage
	ImageKey string `json:"imageKey,omitempty"`
}

// AssistantService runs chat turns against the hosted models and keeps the
// per-session conversation log in the cache
type AssistantService struct {
	client            domain.GenerativeClient
	cache             domain.CacheRepository
	catalog           *CatalogService
	parser            *ReplyParser
	systemInstruction string
	responseSchema    map[string]interface{}

	temperature   float64
	maxHistory    int
	sessionTTL    time.Duration
	imageCacheTTL time.Duration
	enableImages  bool

	mu       sync.Mutex
	inFlight map[string]struct{}
	now      func() time.Time
}

// NewAssistantService creates a new assistant service with dependencies
func NewAssistantService(
	client domain.GenerativeClient,
	cache domain.CacheRepository,
	catalog *CatalogService,
	config AssistantServiceConfig,
) *AssistantService {
	temperature := config.Temperature
	if temperature == 0 {
		temperature = DefaultTemperature
	}
	maxHistory := config.MaxHistory
	if maxHistory <= 0 {
		maxHistory = defaultMaxHistory
	}
	sessionTTL := config.SessionTTL
	if sessionTTL <= 0 {
		sessionTTL = defaultSessionTTL
	}
	imageCacheTTL := config.ImageCacheTTL
	if imageCacheTTL <= 0 {
		imageCacheTTL = defaultImageCacheTTL
	}

	return &AssistantService{
		client:            client,
		cache:             cache,
		catalog:           catalog,
		parser:            NewReplyParser(config.Debug),
		systemInstruction: BuildSystemInstruction(catalog.List()),
		responseSchema:    ReplyResponseSchema(),
		temperature:       temperature,
		maxHistory:        maxHistory,
		sessionTTL:        sessionTTL,
		imageCacheTTL:     imageCacheTTL,
		enableImages:      config.EnableImages,
		inFlight:          make(map[string]struct{}),
		now:               time.Now,
	}
}

// Conversation returns the session's message log, starting with the greeting
func (s *AssistantService) Conversation(ctx context.Context, sessionID string) (*domain.Conversation, error) {
	if err := validateSession(sessionID); err != nil {
		return nil, err
	}

	stored := s.loadMessages(ctx, sessionID)
	messages := make([]domain.ChatMessage, 0, len(stored))
	for _, m := range stored {
		messages = append(messages, s.resolveImage(ctx, m))
	}
	return &domain.Conversation{
		SessionID: sessionID,
		Messages:  messages,
	}, nil
}

// Reset discards the session's conversation. It fails with
// ErrRequestInFlight while a send for the session is still running.
func (s *AssistantService) Reset(ctx context.Context, sessionID string) error {
	if err := validateSession(sessionID); err != nil {
		return err
	}

	if !s.acquire(sessionID) {
		return domain.ErrRequestInFlight
	}
	defer s.release(sessionID)

	return s.cache.Delete(ctx, conversationKey(sessionID))
}

// SendMessage runs one assistant turn.
// Flow: append user text -> chat model -> parse -> optional image -> append reply.
// Model failures degrade to canned texts; only invalid input or a concurrent
// send for the same session is reported as an error.
func (s *AssistantService) SendMessage(ctx context.Context, sessionID, text string) (*domain.AssistantTurn, error) {
	if err := validateSession(sessionID); err != nil {
		return nil, err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: message text is empty", domain.ErrInvalidRequest)
	}

	if !s.acquire(sessionID) {
		return nil, domain.ErrRequestInFlight
	}
	defer s.release(sessionID)

	messages := s.loadMessages(ctx, sessionID)
	history := toChatHistory(messages)

	messages = append(messages, storedMessage{ChatMessage: domain.ChatMessage{
		Role:      domain.ChatRoleUser,
		Text:      text,
		CreatedAt: s.now(),
	}})
	s.saveMessages(ctx, sessionID, messages)

	reply := s.generateReply(ctx, history, text)

	message := domain.ChatMessage{
		Role:                  domain.ChatRoleModel,
		Text:                  reply.Text,
		RecommendedProductIDs: reply.RecommendedProductIDs,
	}
	var imageRef string
	if reply.ImageGenerationPrompt != "" && s.enableImages {
		imageRef = s.attachImage(ctx, &message, reply.ImageGenerationPrompt)
	}
	message.CreatedAt = s.now()

	stored := storedMessage{ChatMessage: message, ImageKey: imageRef}
	if imageRef != "" {
		stored.GeneratedImage = ""
	}
	messages = append(messages, stored)
	s.saveMessages(ctx, sessionID, messages)

	return &domain.AssistantTurn{
		Message:             message,
		RecommendedProducts: s.catalog.ResolveIDs(message.RecommendedProductIDs),
	}, nil
}

// generateReply asks the text model for a reply, falling back to the canned
// apology on any failure
func (s *AssistantService) generateReply(ctx context.Context, history []domain.ChatContent, text string) *domain.AssistantReply {
	raw, err := s.client.GenerateChat(ctx, &domain.ChatCompletionRequest{
		SystemInstruction: s.systemInstruction,
		History:           history,
		Message:           text,
		Temperature:       s.temperature,
		ResponseSchema:    s.responseSchema,
	})
	if err != nil {
		if errors.Is(err, domain.ErrAssistantNotConfigured) {
			zap.S().Warn("[Assistant] no API key configured, answering with fallback")
		} else {
			zap.S().Errorf("[Assistant] chat generation failed: %v", err)
		}
		return fallbackReply()
	}

	reply, err := s.parser.Parse(raw)
	if err != nil {
		zap.S().Errorf("[Assistant] %v", err)
		return fallbackReply()
	}
	return reply
}

// attachImage generates (or reuses) the image for prompt. Failures only
// change the message text. The returned key is set when the image can be
// read back from the cache.
func (s *AssistantService) attachImage(ctx context.Context, message *domain.ChatMessage, prompt string) string {
	key := imageKey(prompt)
	if key != "" {
		var cached string
		if err := s.cache.Get(ctx, key, &cached); err == nil && cached != "" {
			message.GeneratedImage = cached
			return key
		}
	}

	image, err := s.client.GenerateImage(ctx, prompt)
	switch {
	case err == nil:
		message.GeneratedImage = image.DataURL()
		if key == "" {
			return ""
		}
		if err := s.cache.Set(ctx, key, message.GeneratedImage, s.imageCacheTTL); err != nil {
			zap.S().Warnf("[Assistant] failed to cache image: %v", err)
			return ""
		}
		return key
	case errors.Is(err, domain.ErrNoImage):
		message.Text += NoImageSuffix
	default:
		zap.S().Errorf("[Assistant] image generation failed: %v", err)
		message.Text += ImageFailedSuffix
	}
	return ""
}

// resolveImage fills in a referenced image. An expired image is dropped.
func (s *AssistantService) resolveImage(ctx context.Context, m storedMessage) domain.ChatMessage {
	if m.ImageKey == "" {
		return m.ChatMessage
	}
	var image string
	if err := s.cache.Get(ctx, m.ImageKey, &image); err != nil {
		zap.S().Debugf("[Assistant] image %s no longer cached: %v", m.ImageKey, err)
		return m.ChatMessage
	}
	message := m.ChatMessage
	message.GeneratedImage = image
	return message
}

// loadMessages returns the stored log or a fresh one seeded with the greeting
func (s *AssistantService) loadMessages(ctx context.Context, sessionID string) []storedMessage {
	var messages []storedMessage
	err := s.cache.Get(ctx, conversationKey(sessionID), &messages)
	if err == nil && len(messages) > 0 {
		return messages
	}
	if err != nil && !errors.Is(err, domain.ErrCacheMiss) {
		zap.S().Warnf("[Assistant] discarding unreadable conversation %s: %v", sessionID, err)
	}
	return []storedMessage{{ChatMessage: s.greeting()}}
}

func (s *AssistantService) saveMessages(ctx context.Context, sessionID string, messages []storedMessage) {
	messages = trimHistory(messages, s.maxHistory)
	if err := s.cache.Set(ctx, conversationKey(sessionID), messages, s.sessionTTL); err != nil {
		zap.S().Warnf("[Assistant] failed to save conversation %s: %v", sessionID, err)
	}
}

func (s *AssistantService) greeting() domain.ChatMessage {
	return domain.ChatMessage{
		Role:      domain.ChatRoleModel,
		Text:      GreetingText,
		CreatedAt: s.now(),
	}
}

func (s *AssistantService) acquire(sessionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inFlight[sessionID]; busy {
		return false
	}
	s.inFlight[sessionID] = struct{}{}
	return true
}

func (s *AssistantService) release(sessionID string) {
	s.mu.Lock()
	delete(s.inFlight, sessionID)
	s.mu.Unlock()
}

// trimHistory keeps the greeting plus the newest max messages
func trimHistory[T any](messages []T, max int) []T {
	if max <= 0 || len(messages) <= max+1 {
		return messages
	}
	trimmed := make([]T, 0, max+1)
	trimmed = append(trimmed, messages[0])
	return append(trimmed, messages[len(messages)-max:]...)
}

// toChatHistory strips messages down to role and text for the model
func toChatHistory(messages []storedMessage) []domain.ChatContent {
	history := make([]domain.ChatContent, 0, len(messages))
	for _, m := range messages {
		history = append(history, domain.ChatContent{
			Role: string(m.Role),
			Text: m.Text,
		})
	}
	return history
}

func fallbackReply() *domain.AssistantReply {
	return &domain.AssistantReply{Text: FallbackReplyText}
}

func conversationKey(sessionID string) string {
	return "chat:" + sessionID
}

// imageKey hashes the normalized prompt. It is empty when the prompt
// normalizes to nothing.
func imageKey(prompt string) string {
	normalized := normalizeForCacheKey(prompt)
	if normalized == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(normalized))
	return "image:" + hex.EncodeToString(sum[:])
}
