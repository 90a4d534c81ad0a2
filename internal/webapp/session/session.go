// Package session composes the webapp core components for one user session:
// catalog store, filter engine, order workflow, history/profile view and the
// notification hub. It is the single thread of control: every mutation goes
// through a session method, and every notification is published after the
// state it describes has been applied.
package session

import (
	"context"
	"time"

	"storefront_miniapp/internal/webapp/catalog"
	"storefront_miniapp/internal/webapp/filter"
	"storefront_miniapp/internal/webapp/gateway"
	"storefront_miniapp/internal/webapp/history"
	"storefront_miniapp/internal/webapp/notify"
	"storefront_miniapp/internal/webapp/order"
	"storefront_miniapp/platform/apperr"
	"storefront_miniapp/platform/logger"

	"golang.org/x/sync/errgroup"
)

// Gateway is the full backend surface the session needs.
type Gateway interface {
	catalog.Fetcher
	history.OrdersFetcher
	history.ProfileFetcher
	order.Submitter
}

// Identity is the platform-supplied user identity, handed over at startup.
type Identity struct {
	UserID   string
	Name     string
	Username string
}

// Config configures a session.
type Config struct {
	Identity Identity
	// AuthToken is the opaque platform credential forwarded on order
	// submission. The session never interprets it.
	AuthToken string
	// DebounceWindow is the search quiescence window (default 300ms).
	DebounceWindow time.Duration
}

// Session owns the component lifecycles from construction to Close.
type Session struct {
	log      *logger.Logger
	hub      *notify.Hub
	store    *catalog.Store
	engine   *filter.Engine
	view     *history.View
	workflow *order.Workflow
	identity Identity
}

// New builds and wires a session. Nothing is fetched until Start.
func New(gw Gateway, hub *notify.Hub, log *logger.Logger, cfg Config) *Session {
	s := &Session{
		log:      log.WithUserID(cfg.Identity.UserID),
		hub:      hub,
		identity: cfg.Identity,
	}

	s.store = catalog.NewStore(gw, cfg.Identity.UserID)
	s.engine = filter.NewEngine(s.store.Products, cfg.DebounceWindow, func(visible []gateway.Product) {
		hub.CatalogChanged(s.store.Products(), s.store.Categories(), visible, nil)
	})
	s.view = history.NewView(gw, gw, hub, cfg.Identity.UserID, history.Identity{
		Name:     cfg.Identity.Name,
		Username: cfg.Identity.Username,
	})
	s.workflow = order.New(gw, hub, cfg.Identity.UserID, cfg.AuthToken, func(ctx context.Context) {
		// A successful order may have changed stock, added an order and
		// moved the aggregates; reconcile all three projections.
		s.RefreshCatalog(ctx)
		s.RefreshOrders(ctx)
		s.RefreshProfile(ctx)
	})

	return s
}

// Start issues the three initial fetches concurrently. The fetches are
// independent: a failure in one is surfaced through its topic and does not
// block or roll back the others, so Start itself never fails.
func (s *Session) Start(ctx context.Context) {
	var g errgroup.Group

	g.Go(func() error {
		s.RefreshCatalog(ctx)
		return nil
	})
	g.Go(func() error {
		s.RefreshOrders(ctx)
		return nil
	})
	g.Go(func() error {
		s.RefreshProfile(ctx)
		return nil
	})

	_ = g.Wait()
}

// RefreshCatalog re-fetches the catalog and publishes a catalog snapshot.
// On failure the stale catalog is retained and published with the error.
func (s *Session) RefreshCatalog(ctx context.Context) {
	err := s.store.Refresh(ctx)
	if err != nil {
		s.log.GatewayError("fetch catalog", err)
	}
	s.hub.CatalogChanged(s.store.Products(), s.store.Categories(), s.engine.Invalidate(), err)
}

// RefreshOrders re-fetches the order history; failures are absorbed after
// being surfaced on the orders topic.
func (s *Session) RefreshOrders(ctx context.Context) {
	if err := s.view.RefreshOrders(ctx); err != nil {
		s.log.GatewayError("fetch orders", err)
	}
}

// RefreshProfile re-fetches the profile aggregates; failures are absorbed
// after being surfaced on the profile topic.
func (s *Session) RefreshProfile(ctx context.Context) {
	if err := s.view.RefreshProfile(ctx); err != nil {
		s.log.GatewayError("fetch profile", err)
	}
}

// SetCategory applies a category selection immediately.
func (s *Session) SetCategory(category string) {
	s.engine.SetCategory(category)
}

// SetSearch records a search keystroke; recomputation is debounced.
func (s *Session) SetSearch(text string) {
	s.engine.SetSearch(text)
}

// SelectProduct starts the order workflow for a product in the current
// catalog.
func (s *Session) SelectProduct(productID string) error {
	p, ok := s.store.Product(productID)
	if !ok {
		return apperr.NotFound("product not found")
	}
	return s.workflow.Select(p)
}

// Confirm confirms the pending order and submits it.
func (s *Session) Confirm(ctx context.Context) error {
	return s.workflow.Confirm(ctx)
}

// Decline cancels the pending confirmation.
func (s *Session) Decline() {
	s.workflow.Decline()
}

// Workflow exposes the workflow state for read-only inspection.
func (s *Session) Workflow() *order.Workflow {
	return s.workflow
}

// Catalog exposes the catalog store for read-only inspection.
func (s *Session) Catalog() *catalog.Store {
	return s.store
}

// History exposes the order/profile projections for read-only inspection.
func (s *Session) History() *history.View {
	return s.view
}

// Close tears the session down: the debounce timer is cancelled and the
// workflow detaches so an in-flight submission still settles the stores but
// no longer notifies a listener that went away.
func (s *Session) Close() {
	s.engine.Close()
	s.workflow.Detach()
}
