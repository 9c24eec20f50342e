package domain

import "errors"

var (
	// ErrProductNotFound is returned when a product id is not in the catalog
	ErrProductNotFound = errors.New("product not found")

	// ErrCartItemNotFound is returned when a cart has no line for the product
	ErrCartItemNotFound = errors.New("item not in cart")

	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrRequestInFlight is returned when a conversation already has an outstanding send
	ErrRequestInFlight = errors.New("a message is already being processed for this session")

	// ErrRateLimited is returned when rate limit is exceeded
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrCorruptData is returned when a stored value cannot be decoded
	ErrCorruptData = errors.New("stored data is corrupt")

	// ErrAssistantNotConfigured is returned when no API key is configured
	ErrAssistantNotConfigured = errors.New("assistant API key not configured")

	// ErrGeminiAPIFailure is returned when a Gemini API request fails
	ErrGeminiAPIFailure = errors.New("Gemini API request failed")

	// ErrEmptyResponse is returned when the model produced no usable text
	ErrEmptyResponse = errors.New("no response from model")

	// ErrMalformedReply is returned when the model text is not the requested JSON shape
	ErrMalformedReply = errors.New("malformed assistant reply")

	// ErrNoImage is returned when the image model returned no inline image
	ErrNoImage = errors.New("no image in response")

	// ErrCheckoutNotImplemented is returned by the checkout stub
	ErrCheckoutNotImplemented = errors.New("checkout not implemented in demo")
)
