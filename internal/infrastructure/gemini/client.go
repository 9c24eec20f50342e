package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pawradise/backend/internal/domain"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	defaultBaseURL    = "https://generativelanguage.googleapis.com"
	defaultChatModel  = "gemini-2.5-flash"
	defaultImageModel = "gemini-2.5-flash-image"
	defaultTimeout    = 60 * time.Second

	// maxResponseBytes bounds how much of a response body is read; inline
	// images are base64 so this has to leave room for a few megabytes.
	maxResponseBytes = 20 << 20
	maxLoggedBytes   = 512
)

// ClientConfig holds the settings for a Gemini API client
type ClientConfig struct {
	APIKey            string
	BaseURL           string
	ChatModel         string
	ImageModel        string
	Timeout           time.Duration
	RequestsPerMinute int
}

// Client handles communication with the Gemini generateContent API.
// Calls are made once: failures are reported to the caller, never retried.
type Client struct {
	httpClient  *http.Client
	apiKey      string
	baseURL     string
	chatModel   string
	imageModel  string
	rateLimiter *rate.Limiter
	debug       bool
}

// NewClient creates a new Gemini API client
func NewClient(cfg ClientConfig) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.ChatModel == "" {
		cfg.ChatModel = defaultChatModel
	}
	if cfg.ImageModel == "" {
		cfg.ImageModel = defaultImageModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	limit := rate.Inf
	burst := 1
	if cfg.RequestsPerMinute > 0 {
		limit = rate.Limit(float64(cfg.RequestsPerMinute) / 60.0)
		burst = cfg.RequestsPerMinute / 10
		if burst < 1 {
			burst = 1
		}
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		apiKey:      cfg.APIKey,
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		chatModel:   cfg.ChatModel,
		imageModel:  cfg.ImageModel,
		rateLimiter: rate.NewLimiter(limit, burst),
	}
}

// SetDebug toggles logging of request and response bodies
func (c *Client) SetDebug(debug bool) {
	c.debug = debug
}

func (c *Client) debugLog(format string, args ...interface{}) {
	if c.debug {
		zap.S().Debugf("[Gemini] "+format, args...)
	}
}

// GenerateChat sends one conversational turn to the text model and returns the raw model text
func (c *Client) GenerateChat(ctx context.Context, req *domain.ChatCompletionRequest) (string, error) {
	if req == nil || strings.TrimSpace(req.Message) == "" {
		return "", domain.ErrInvalidRequest
	}

	resp, err := c.generateContent(ctx, c.chatModel, buildChatRequest(req))
	if err != nil {
		return "", err
	}

	text := responseText(resp)
	if strings.TrimSpace(text) == "" {
		if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
			return "", errors.Wrapf(domain.ErrEmptyResponse, "prompt blocked: %s", resp.PromptFeedback.BlockReason)
		}
		return "", domain.ErrEmptyResponse
	}

	return text, nil
}

// GenerateImage asks the image model for a single 1:1 image
func (c *Client) GenerateImage(ctx context.Context, prompt string) (*domain.GeneratedImage, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, domain.ErrInvalidRequest
	}

	resp, err := c.generateContent(ctx, c.imageModel, buildImageRequest(prompt))
	if err != nil {
		return nil, err
	}

	image := firstInlineImage(resp)
	if image == nil {
		return nil, domain.ErrNoImage
	}
	return image, nil
}

// generateContent performs a single generateContent call against model
func (c *Client) generateContent(ctx context.Context, model string, payload *generateContentRequest) (*generateContentResponse, error) {
	if c.apiKey == "" {
		return nil, domain.ErrAssistantNotConfigured
	}

	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, errors.Wrap(err, "rate limiter error")
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode request")
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.baseURL, url.PathEscape(model))
	c.debugLog("POST %s body=%s", endpoint, truncate(body, maxLoggedBytes))

	resp, err := c.doRequest(ctx, endpoint, body)
	if err != nil {
		zap.S().Warnf("[Gemini] request to %s failed: %v", model, err)
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := readLimitedBody(resp.Body, maxResponseBytes)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", domain.ErrGeminiAPIFailure, err)
	}
	c.debugLog("%s status=%d body=%s", model, resp.StatusCode, truncate(respBody, maxLoggedBytes))

	if resp.StatusCode != http.StatusOK {
		zap.S().Warnf("[Gemini] %s returned status %d: %s", model, resp.StatusCode, apiErrorMessage(respBody))
		if resp.StatusCode == http.StatusTooManyRequests {
			return nil, fmt.Errorf("%w: %w", domain.ErrGeminiAPIFailure, domain.ErrRateLimited)
		}
		return nil, fmt.Errorf("%w: status %d: %s", domain.ErrGeminiAPIFailure, resp.StatusCode, apiErrorMessage(respBody))
	}

	var out generateContentResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, errors.Wrap(err, "failed to decode response")
	}
	return &out, nil
}

// doRequest executes an HTTP POST request with proper headers and error handling
func (c *Client) doRequest(ctx context.Context, endpoint string, body []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "Pawradise/1.0")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrGeminiAPIFailure, err)
	}

	return resp, nil
}

// readLimitedBody reads at most limit bytes from r
func readLimitedBody(r io.Reader, limit int64) ([]byte, error) {
	return io.ReadAll(io.LimitReader(r, limit))
}

// apiErrorMessage extracts the message from a Gemini error envelope, falling
// back to the (truncated) raw body
func apiErrorMessage(body []byte) string {
	var apiErr apiErrorResponse
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error.Message != "" {
		return apiErr.Error.Message
	}
	return truncate(body, maxLoggedBytes)
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
