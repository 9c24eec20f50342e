package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pawradise/backend/internal/domain"
	"go.uber.org/zap"
)

// CatalogUsecase is the product catalog behavior the handlers need
type CatalogUsecase interface {
	Get(id string) (domain.Product, error)
	Categories() []domain.Category
	Filter(filter domain.ProductFilter) ([]domain.Product, error)
	Featured() domain.FeaturedProducts
}

// CartUsecase is the cart behavior the handlers need
type CartUsecase interface {
	Get(ctx context.Context, sessionID string) (*domain.Cart, error)
	Add(ctx context.Context, sessionID, productID string) (*domain.Cart, error)
	UpdateQuantity(ctx context.Context, sessionID, productID string, delta int) (*domain.Cart, error)
	Remove(ctx context.Context, sessionID, productID string) (*domain.Cart, error)
	Clear(ctx context.Context, sessionID string) (*domain.Cart, error)
	Checkout(ctx context.Context, sessionID string) (*domain.Cart, error)
}

// AssistantUsecase is the chat assistant behavior the handlers need
type AssistantUsecase interface {
	Conversation(ctx context.Context, sessionID string) (*domain.Conversation, error)
	SendMessage(ctx context.Context, sessionID, text string) (*domain.AssistantTurn, error)
	Reset(ctx context.Context, sessionID string) error
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	catalog   CatalogUsecase
	cart      CartUsecase
	assistant AssistantUsecase
}

// NewHandler creates a new HTTP handler. Any dependency may be nil, in
// which case its endpoints answer 501.
func NewHandler(catalog CatalogUsecase, cart CartUsecase, assistant AssistantUsecase) *Handler {
	return &Handler{
		catalog:   catalog,
		cart:      cart,
		assistant: assistant,
	}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "pawradise-backend",
		"version": "1.0.0",
	})
}

// ListProducts handles GET /products with optional category and price filters
func (h *Handler) ListProducts(c *gin.Context) {
	if !h.requireCatalog(c) {
		return
	}

	var filter domain.ProductFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "invalid query parameters: " + err.Error(),
		})
		return
	}

	products, err := h.catalog.Filter(filter)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"products": products,
		"total":    len(products),
	})
}

// GetFeaturedProducts handles GET /products/featured
func (h *Handler) GetFeaturedProducts(c *gin.Context) {
	if !h.requireCatalog(c) {
		return
	}
	c.JSON(http.StatusOK, h.catalog.Featured())
}

// GetProduct handles GET /products/:id
func (h *Handler) GetProduct(c *gin.Context) {
	if !h.requireCatalog(c) {
		return
	}

	product, err := h.catalog.Get(c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

// ListCategories handles GET /categories
func (h *Handler) ListCategories(c *gin.Context) {
	if !h.requireCatalog(c) {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"categories": h.catalog.Categories(),
	})
}

// GetCart handles GET /cart
func (h *Handler) GetCart(c *gin.Context) {
	if !h.requireCart(c) {
		return
	}
	h.respondCart(c, http.StatusOK)(h.cart.Get(c.Request.Context(), sessionID(c)))
}

// AddCartItem handles POST /cart/items
func (h *Handler) AddCartItem(c *gin.Context) {
	if !h.requireCart(c) {
		return
	}

	var req domain.AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "invalid request body: " + err.Error(),
		})
		return
	}

	h.respondCart(c, http.StatusOK)(h.cart.Add(c.Request.Context(), sessionID(c), req.ProductID))
}

// UpdateCartItem handles PATCH /cart/items/:id with a relative quantity change
func (h *Handler) UpdateCartItem(c *gin.Context) {
	if !h.requireCart(c) {
		return
	}

	var req domain.UpdateQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "invalid request body: " + err.Error(),
		})
		return
	}

	h.respondCart(c, http.StatusOK)(h.cart.UpdateQuantity(c.Request.Context(), sessionID(c), c.Param("id"), req.Delta))
}

// RemoveCartItem handles DELETE /cart/items/:id
func (h *Handler) RemoveCartItem(c *gin.Context) {
	if !h.requireCart(c) {
		return
	}
	h.respondCart(c, http.StatusOK)(h.cart.Remove(c.Request.Context(), sessionID(c), c.Param("id")))
}

// ClearCart handles DELETE /cart
func (h *Handler) ClearCart(c *gin.Context) {
	if !h.requireCart(c) {
		return
	}
	h.respondCart(c, http.StatusOK)(h.cart.Clear(c.Request.Context(), sessionID(c)))
}

// Checkout handles POST /cart/checkout. Payment is not part of the demo.
func (h *Handler) Checkout(c *gin.Context) {
	if !h.requireCart(c) {
		return
	}
	_, err := h.cart.Checkout(c.Request.Context(), sessionID(c))
	h.writeError(c, err)
}

// GetMessages handles GET /assistant/messages
func (h *Handler) GetMessages(c *gin.Context) {
	if !h.requireAssistant(c) {
		return
	}

	conv, err := h.assistant.Conversation(c.Request.Context(), sessionID(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, conv)
}

// SendMessage handles POST /assistant/messages
func (h *Handler) SendMessage(c *gin.Context) {
	if !h.requireAssistant(c) {
		return
	}

	var req domain.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "invalid request body: " + err.Error(),
		})
		return
	}

	turn, err := h.assistant.SendMessage(c.Request.Context(), sessionID(c), req.Text)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, turn)
}

// ResetConversation handles DELETE /assistant/messages
func (h *Handler) ResetConversation(c *gin.Context) {
	if !h.requireAssistant(c) {
		return
	}

	if err := h.assistant.Reset(c.Request.Context(), sessionID(c)); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// respondCart writes a cart result or maps its error
func (h *Handler) respondCart(c *gin.Context, status int) func(*domain.Cart, error) {
	return func(cart *domain.Cart, err error) {
		if err != nil {
			h.writeError(c, err)
			return
		}
		c.JSON(status, cart)
	}
}

// writeError maps domain errors to HTTP status codes
func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case err == nil:
		c.Status(http.StatusNoContent)
	case errors.Is(err, domain.ErrInvalidRequest):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrProductNotFound), errors.Is(err, domain.ErrCartItemNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrRequestInFlight):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrRateLimited):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrCheckoutNotImplemented):
		c.JSON(http.StatusNotImplemented, gin.H{"error": "Checkout not implemented in demo"})
	default:
		zap.S().Errorf("[HTTP] %s %s failed: %v", c.Request.Method, c.Request.URL.Path, err)
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func (h *Handler) requireCatalog(c *gin.Context) bool {
	return requireService(c, h.catalog != nil, "catalog")
}

func (h *Handler) requireCart(c *gin.Context) bool {
	return requireService(c, h.cart != nil, "cart")
}

func (h *Handler) requireAssistant(c *gin.Context) bool {
	return requireService(c, h.assistant != nil, "assistant")
}

func requireService(c *gin.Context, ok bool, name string) bool {
	if !ok {
		c.JSON(http.StatusNotImplemented, gin.H{
			"error": name + " service not configured",
		})
	}
	return ok
}
