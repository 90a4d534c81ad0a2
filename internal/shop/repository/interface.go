package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Product is a catalog row. Stock is nil for unlimited items.
type Product struct {
	ID          uuid.UUID
	Name        string
	Description string
	PriceCents  int64
	Category    string
	Stock       *int
	ImageURL    string
	Position    int
}

// Order is a persisted order row. ID is the human-readable order number
// (WEB<n>), not a surrogate key.
type Order struct {
	ID          string
	UserID      string
	ProductID   uuid.UUID
	ProductName string
	PriceCents  int64
	Status      string
	CreatedAt   time.Time
}

// UserStats aggregates a user's purchase history.
type UserStats struct {
	TotalOrders     int
	TotalSpentCents int64
}

// CreateOrderParams carries the inputs for order creation.
type CreateOrderParams struct {
	UserID    string
	ProductID uuid.UUID
}

// CreateOrderResult is the outcome of a successful order creation.
// StockRemaining is nil for unlimited products, otherwise the count left
// after the decrement.
type CreateOrderResult struct {
	Order          Order
	StockRemaining *int
}

// Repository is the persistence boundary of the shop context.
type Repository interface {
	// ListProducts returns the whole catalog in display order, including
	// out-of-stock rows. Visibility filtering is the service's concern.
	ListProducts(ctx context.Context) ([]Product, error)

	// GetProductByID returns a single product or apperr.NotFound.
	GetProductByID(ctx context.Context, id uuid.UUID) (Product, error)

	// CreateOrder atomically checks stock, allocates the order number,
	// snapshots the product and decrements finite stock. Returns
	// apperr.Rejected when the product is out of stock and apperr.NotFound
	// when it does not exist.
	CreateOrder(ctx context.Context, params CreateOrderParams) (CreateOrderResult, error)

	// ListOrdersByUser returns the user's orders, most recent first.
	ListOrdersByUser(ctx context.Context, userID string) ([]Order, error)

	// GetUserStats returns the user's purchase aggregates.
	GetUserStats(ctx context.Context, userID string) (UserStats, error)
}
