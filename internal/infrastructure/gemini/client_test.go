package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/pawradise/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(baseURL string) *Client {
	return NewClient(ClientConfig{
		APIKey:  "test-api-key",
		BaseURL: baseURL,
	})
}

func chatRequest(message string) *domain.ChatCompletionRequest {
	return &domain.ChatCompletionRequest{
		SystemInstruction: "be helpful",
		History: []domain.ChatContent{
			{Role: "model", Text: "Woof!"},
			{Role: "user", Text: "hello"},
		},
		Message:     message,
		Temperature: 0.7,
		ResponseSchema: map[string]interface{}{
			"type": "OBJECT",
		},
	}
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func TestNewClient(t *testing.T) {
	t.Run("applies defaults", func(t *testing.T) {
		client := NewClient(ClientConfig{APIKey: "k"})

		assert.Equal(t, "k", client.apiKey)
		assert.Equal(t, defaultBaseURL, client.baseURL)
		assert.Equal(t, defaultChatModel, client.chatModel)
		assert.Equal(t, defaultImageModel, client.imageModel)
		assert.Equal(t, defaultTimeout, client.httpClient.Timeout)
		assert.NotNil(t, client.rateLimiter)
		assert.False(t, client.debug)
	})

	t.Run("keeps custom values and trims trailing slash", func(t *testing.T) {
		client := NewClient(ClientConfig{
			APIKey:            "k",
			BaseURL:           "https://api.example.com/",
			ChatModel:         "chat-x",
			ImageModel:        "image-x",
			Timeout:           5 * time.Second,
			RequestsPerMinute: 60,
		})

		assert.Equal(t, "https://api.example.com", client.baseURL)
		assert.Equal(t, "chat-x", client.chatModel)
		assert.Equal(t, "image-x", client.imageModel)
		assert.Equal(t, 5*time.Second, client.httpClient.Timeout)
		assert.InDelta(t, 1.0, float64(client.rateLimiter.Limit()), 0.0001)
		assert.Equal(t, 6, client.rateLimiter.Burst())
	})
}

func TestSetDebug(t *testing.T) {
	client := newTestClient("https://api.example.com")

	client.SetDebug(true)
	assert.True(t, client.debug)
	client.debugLog("test message %s", "arg")

	client.SetDebug(false)
	assert.False(t, client.debug)
}

func TestGenerateChat_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1beta/models/gemini-2.5-flash:generateContent", r.URL.Path)
		assert.Equal(t, "test-api-key", r.Header.Get("x-goog-api-key"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var payload generateContentRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		require.Len(t, payload.Contents, 3)
		assert.Equal(t, "model", payload.Contents[0].Role)
		assert.Equal(t, "user", payload.Contents[2].Role)
		assert.Equal(t, "dog toys?", payload.Contents[2].Parts[0].Text)
		require.NotNil(t, payload.SystemInstruction)
		assert.Equal(t, "be helpful", payload.SystemInstruction.Parts[0].Text)
		assert.Equal(t, "application/json", payload.GenerationConfig.ResponseMimeType)
		assert.Equal(t, 0.7, *payload.GenerationConfig.Temperature)
		assert.Equal(t, "OBJECT", payload.GenerationConfig.ResponseSchema["type"])

		writeJSON(w, generateContentResponse{
			Candidates: []candidate{{
				Content: content{Role: "model", Parts: []part{{Text: `{"text":"`}, {Text: `Woof"}`}}},
			}},
		})
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	text, err := client.GenerateChat(context.Background(), chatRequest("dog toys?"))

	require.NoError(t, err)
	assert.Equal(t, `{"text":"Woof"}`, text)
}

func TestGenerateChat_MissingAPIKey(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	client := NewClient(ClientConfig{BaseURL: server.URL})
	_, err := client.GenerateChat(context.Background(), chatRequest("hi"))

	assert.ErrorIs(t, err, domain.ErrAssistantNotConfigured)
	assert.False(t, called)
}

func TestGenerateChat_InvalidRequest(t *testing.T) {
	client := newTestClient("https://api.example.com")

	_, err := client.GenerateChat(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)

	_, err = client.GenerateChat(context.Background(), chatRequest("   "))
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)
}

func TestGenerateChat_EmptyCandidates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, generateContentResponse{})
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).GenerateChat(context.Background(), chatRequest("hi"))

	assert.ErrorIs(t, err, domain.ErrEmptyResponse)
}

func TestGenerateChat_Blocked(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, generateContentResponse{PromptFeedback: &promptFeedback{BlockReason: "SAFETY"}})
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).GenerateChat(context.Background(), chatRequest("hi"))

	assert.ErrorIs(t, err, domain.ErrEmptyResponse)
	assert.Contains(t, err.Error(), "SAFETY")
}

func TestGenerateChat_ServerError_NoRetry(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":{"code":500,"message":"backend exploded","status":"INTERNAL"}}`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).GenerateChat(context.Background(), chatRequest("hi"))

	assert.ErrorIs(t, err, domain.ErrGeminiAPIFailure)
	assert.Contains(t, err.Error(), "backend exploded")
	assert.Equal(t, 1, attempts)
}

func TestGenerateChat_TooManyRequests(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).GenerateChat(context.Background(), chatRequest("hi"))

	assert.ErrorIs(t, err, domain.ErrGeminiAPIFailure)
	assert.ErrorIs(t, err, domain.ErrRateLimited)
}

func TestGenerateChat_InvalidJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte("invalid json"))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).GenerateChat(context.Background(), chatRequest("hi"))

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode response")
}

func TestGenerateChat_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(2 * time.Second)
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	_, err := newTestClient(server.URL).GenerateChat(ctx, chatRequest("hi"))

	assert.ErrorIs(t, err, domain.ErrGeminiAPIFailure)
}

func TestGenerateChat_RequestCreationError(t *testing.T) {
	client := newTestClient("://invalid-url")

	_, err := client.GenerateChat(context.Background(), chatRequest("hi"))

	assert.Error(t, err)
}

func TestGenerateImage_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1beta/models/gemini-2.5-flash-image:generateContent", r.URL.Path)

		var payload generateContentRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "a dog and a cat", payload.Contents[0].Parts[0].Text)
		require.NotNil(t, payload.GenerationConfig.ImageConfig)
		assert.Equal(t, "1:1", payload.GenerationConfig.ImageConfig.AspectRatio)

		writeJSON(w, generateContentResponse{
			Candidates: []candidate{{
				Content: content{Parts: []part{
					{Text: "Here you go"},
					{InlineData: &inlineData{MimeType: "image/png", Data: "iVBORw0KGgo="}},
				}},
			}},
		})
	}))
	defer server.Close()

	image, err := newTestClient(server.URL).GenerateImage(context.Background(), "a dog and a cat")

	require.NoError(t, err)
	assert.Equal(t, "image/png", image.MimeType)
	assert.Equal(t, "data:image/png;base64,iVBORw0KGgo=", image.DataURL())
}

func TestGenerateImage_NoInlineData(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, generateContentResponse{
			Candidates: []candidate{{Content: content{Parts: []part{{Text: "I cannot draw"}}}}},
		})
	}))
	defer server.Close()

	image, err := newTestClient(server.URL).GenerateImage(context.Background(), "a cat")

	assert.Nil(t, image)
	assert.ErrorIs(t, err, domain.ErrNoImage)
}

func TestGenerateImage_EmptyPrompt(t *testing.T) {
	_, err := newTestClient("https://api.example.com").GenerateImage(context.Background(), " ")
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)
}

func TestGenerateImage_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("Service Unavailable"))
	}))
	defer server.Close()

	image, err := newTestClient(server.URL).GenerateImage(context.Background(), "a cat")

	assert.Nil(t, image)
	assert.ErrorIs(t, err, domain.ErrGeminiAPIFailure)
	assert.Contains(t, err.Error(), "Service Unavailable")
}

func TestReadLimitedBody(t *testing.T) {
	t.Run("reads within limit", func(t *testing.T) {
		body, err := readLimitedBody(strings.NewReader("short content"), 1000)
		require.NoError(t, err)
		assert.Equal(t, "short content", string(body))
	})

	t.Run("truncates beyond limit", func(t *testing.T) {
		long := make([]byte, 1000)
		body, err := readLimitedBody(bytes.NewReader(long), 100)
		require.NoError(t, err)
		assert.Len(t, body, 100)
	})
}

func TestAPIErrorMessage(t *testing.T) {
	assert.Equal(t, "quota", apiErrorMessage([]byte(`{"error":{"message":"quota"}}`)))
	assert.Equal(t, "plain text", apiErrorMessage([]byte("plain text")))
}
