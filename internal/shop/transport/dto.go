// Package transport defines the wire DTOs of the shop API. Every response
// carries the uniform success envelope so clients can treat failures the same
// way on every endpoint.
package transport

import "time"

// ProductDTO is a catalog product as served to storefront clients.
type ProductDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Price       int64  `json:"price"`
	Category    string `json:"category"`
	// Stock is null for unlimited items, otherwise the remaining count.
	Stock *int   `json:"stock"`
	Image string `json:"image,omitempty"`
}

// CatalogResponse is the /api/products payload. Categories is derived from
// the visible products, in first-seen order.
type CatalogResponse struct {
	Success    bool         `json:"success"`
	Products   []ProductDTO `json:"products"`
	Categories []string     `json:"categories"`
}

// OrderDTO is a past order. ProductName and Price are snapshots taken at
// order time.
type OrderDTO struct {
	ID          string    `json:"id"`
	ProductName string    `json:"product_name"`
	Price       int64     `json:"price"`
	Status      string    `json:"status"`
	Date        time.Time `json:"date"`
}

// OrdersResponse is the /api/orders payload, most recent order first.
type OrdersResponse struct {
	Success bool       `json:"success"`
	Orders  []OrderDTO `json:"orders"`
}

// ProfileDTO holds the purchase aggregates for one user.
type ProfileDTO struct {
	TotalOrders int   `json:"total_orders"`
	TotalSpent  int64 `json:"total_spent"`
}

// ProfileResponse is the /api/profile payload.
type ProfileResponse struct {
	Success bool       `json:"success"`
	Profile ProfileDTO `json:"profile"`
}

// UserScopedQuery binds the user_id query parameter of the read endpoints.
type UserScopedQuery struct {
	UserID string `form:"user_id" validate:"required"`
}

// CreateOrderRequest is the /api/order body. InitData is the opaque platform
// credential forwarded by the client.
type CreateOrderRequest struct {
	UserID    string `json:"user_id" validate:"required"`
	ProductID string `json:"product_id" validate:"required,uuid"`
	InitData  string `json:"init_data" validate:"required"`
}

// CreateOrderResponse confirms an accepted order.
type CreateOrderResponse struct {
	Success bool   `json:"success"`
	OrderID string `json:"order_id"`
	Status  string `json:"status"`
}
