package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront_miniapp/internal/shop/service"
	"storefront_miniapp/internal/shop/transport"
	"storefront_miniapp/platform/httpkit"
	"storefront_miniapp/platform/validator"
)

// Handler handles HTTP requests for the shop context.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

// New creates a new shop handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// GetProducts returns the public catalog.
// GET /api/products
func (h *Handler) GetProducts(c *gin.Context) {
	result, err := h.svc.Catalog(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// GetOrders returns the caller's order history, most recent first.
// GET /api/orders?user_id=...
func (h *Handler) GetOrders(c *gin.Context) {
	var req transport.UserScopedQuery
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Fail(c, http.StatusBadRequest, msgInvalidRequest)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Fail(c, http.StatusBadRequest, msgValidationFailed)
		return
	}

	orders, err := h.svc.Orders(c.Request.Context(), req.UserID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.OrdersResponse{Success: true, Orders: orders})
}

// GetProfile returns the caller's purchase aggregates.
// GET /api/profile?user_id=...
func (h *Handler) GetProfile(c *gin.Context) {
	var req transport.UserScopedQuery
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Fail(c, http.StatusBadRequest, msgInvalidRequest)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Fail(c, http.StatusBadRequest, msgValidationFailed)
		return
	}

	profile, err := h.svc.Profile(c.Request.Context(), req.UserID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.ProfileResponse{Success: true, Profile: profile})
}

// CreateOrder places an order.
// POST /api/order
func (h *Handler) CreateOrder(c *gin.Context) {
	var req transport.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Fail(c, http.StatusBadRequest, msgInvalidRequest)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Fail(c, http.StatusBadRequest, msgValidationFailed)
		return
	}

	result, err := h.svc.CreateOrder(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}
