package domain

import "time"

// CartItem is a product line in a cart. Quantity is never below 1.
type CartItem struct {
	Product
	Quantity int `json:"quantity"`
}

// Cart is the per-session shopping cart
type Cart struct {
	SessionID  string     `json:"sessionId"`
	Items      []CartItem `json:"items"`
	TotalItems int        `json:"totalItems"`
	Subtotal   float64    `json:"subtotal"`
	UpdatedAt  time.Time  `json:"updatedAt,omitempty"`
}

// AddToCartRequest represents a request to add one unit of a product
type AddToCartRequest struct {
	ProductID string `json:"productId" binding:"required"`
}

// UpdateQuantityRequest represents a relative quantity change for a cart line
type UpdateQuantityRequest struct {
	Delta int `json:"delta"`
}
