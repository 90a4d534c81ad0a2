// Package notify is the seam between the webapp core and the rendering
// layer: a hub that publishes immutable state snapshots on four topics over
// the platform event bus. It owns no UI and no state of its own.
package notify

import (
	"context"

	"storefront_miniapp/internal/webapp/gateway"
	"storefront_miniapp/internal/webapp/history"
	"storefront_miniapp/internal/webapp/order"
	"storefront_miniapp/platform/events"
)

// Topic names for the four notification channels.
const (
	TopicCatalog  = "webapp.catalog"
	TopicOrders   = "webapp.orders"
	TopicProfile  = "webapp.profile"
	TopicWorkflow = "webapp.workflow"
)

// CatalogChanged carries the catalog snapshot: the full collection, the
// category list ("all" first), and the currently visible filtered subset.
// Err is set when a refresh failed and the snapshot is stale-but-retained.
type CatalogChanged struct {
	events.BaseEvent
	Products   []gateway.Product
	Categories []string
	Visible    []gateway.Product
	Err        error
}

// EventName identifies the catalog topic.
func (CatalogChanged) EventName() string { return TopicCatalog }

// OrdersChanged carries the order-history snapshot, most recent first.
type OrdersChanged struct {
	events.BaseEvent
	Orders []gateway.Order
	Err    error
}

// EventName identifies the orders topic.
func (OrdersChanged) EventName() string { return TopicOrders }

// ProfileChanged carries the merged profile snapshot.
type ProfileChanged struct {
	events.BaseEvent
	Profile history.Profile
	Err     error
}

// EventName identifies the profile topic.
func (ProfileChanged) EventName() string { return TopicProfile }

// WorkflowChanged carries an order workflow transition.
type WorkflowChanged struct {
	events.BaseEvent
	Transition order.Transition
}

// EventName identifies the workflow topic.
func (WorkflowChanged) EventName() string { return TopicWorkflow }

// Hub publishes snapshots synchronously so delivery within a topic is FIFO
// relative to mutation order and never races ahead of the state it
// describes.
type Hub struct {
	bus events.Bus
}

// NewHub creates a notification hub over the given bus.
func NewHub(bus events.Bus) *Hub {
	return &Hub{bus: bus}
}

// CatalogChanged publishes a catalog-topic snapshot.
func (h *Hub) CatalogChanged(products []gateway.Product, categories []string, visible []gateway.Product, err error) {
	_ = h.bus.PublishSync(context.Background(), CatalogChanged{
		BaseEvent:  events.NewBaseEvent(),
		Products:   products,
		Categories: categories,
		Visible:    visible,
		Err:        err,
	})
}

// OrdersChanged publishes an orders-topic snapshot.
func (h *Hub) OrdersChanged(orders []gateway.Order, err error) {
	_ = h.bus.PublishSync(context.Background(), OrdersChanged{
		BaseEvent: events.NewBaseEvent(),
		Orders:    orders,
		Err:       err,
	})
}

// ProfileChanged publishes a profile-topic snapshot.
func (h *Hub) ProfileChanged(p history.Profile, err error) {
	_ = h.bus.PublishSync(context.Background(), ProfileChanged{
		BaseEvent: events.NewBaseEvent(),
		Profile:   p,
		Err:       err,
	})
}

// WorkflowChanged publishes a workflow-topic transition.
func (h *Hub) WorkflowChanged(t order.Transition) {
	_ = h.bus.PublishSync(context.Background(), WorkflowChanged{
		BaseEvent:  events.NewBaseEvent(),
		Transition: t,
	})
}

// OnCatalog registers a catalog-topic listener.
func (h *Hub) OnCatalog(fn func(CatalogChanged)) {
	h.bus.Subscribe(TopicCatalog, events.HandlerFunc(func(_ context.Context, e events.Event) error {
		if evt, ok := e.(CatalogChanged); ok {
			fn(evt)
		}
		return nil
	}))
}

// OnOrders registers an orders-topic listener.
func (h *Hub) OnOrders(fn func(OrdersChanged)) {
	h.bus.Subscribe(TopicOrders, events.HandlerFunc(func(_ context.Context, e events.Event) error {
		if evt, ok := e.(OrdersChanged); ok {
			fn(evt)
		}
		return nil
	}))
}

// OnProfile registers a profile-topic listener.
func (h *Hub) OnProfile(fn func(ProfileChanged)) {
	h.bus.Subscribe(TopicProfile, events.HandlerFunc(func(_ context.Context, e events.Event) error {
		if evt, ok := e.(ProfileChanged); ok {
			fn(evt)
		}
		return nil
	}))
}

// OnWorkflow registers a workflow-topic listener.
func (h *Hub) OnWorkflow(fn func(WorkflowChanged)) {
	h.bus.Subscribe(TopicWorkflow, events.HandlerFunc(func(_ context.Context, e events.Event) error {
		if evt, ok := e.(WorkflowChanged); ok {
			fn(evt)
		}
		return nil
	}))
}
