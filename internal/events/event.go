// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"storefront_miniapp/platform/events"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// =============================================================================
// Shop Domain Events
// =============================================================================

// OrderCreated is published when a storefront order is accepted and persisted.
type OrderCreated struct {
	BaseEvent
	OrderID     string    `json:"orderId"`
	UserID      string    `json:"userId"`
	ProductID   uuid.UUID `json:"productId"`
	ProductName string    `json:"productName"`
	PriceCents  int64     `json:"priceCents"`
}

func (e OrderCreated) EventName() string { return "shop.order.created" }

// StockDepleted is published when an order consumes the last unit of a
// finite-stock product. The product disappears from the public catalog until
// restocked.
type StockDepleted struct {
	BaseEvent
	ProductID   uuid.UUID `json:"productId"`
	ProductName string    `json:"productName"`
}

func (e StockDepleted) EventName() string { return "shop.stock.depleted" }
