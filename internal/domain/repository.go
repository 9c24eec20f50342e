package domain

import (
	"context"
	"time"
)

// CacheRepository defines the interface for caching operations
type CacheRepository interface {
	Get(ctx context.Context, key string, dst interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// CatalogRepository provides read access to the product dataset
type CatalogRepository interface {
	All() []Product
	FindByID(id string) (Product, bool)
}

// CartRepository persists cart lines per session
type CartRepository interface {
	Load(ctx context.Context, sessionID string) ([]CartItem, error)
	Save(ctx context.Context, sessionID string, items []CartItem) error
	Delete(ctx context.Context, sessionID string) error
}

// GenerativeClient defines the interface for the hosted text and image models
type GenerativeClient interface {
	GenerateChat(ctx context.Context, req *ChatCompletionRequest) (string, error)
	GenerateImage(ctx context.Context, prompt string) (*GeneratedImage, error)
}
