package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"storefront_miniapp/internal/webapp/gateway"
	"storefront_miniapp/internal/webapp/notify"
	"storefront_miniapp/internal/webapp/order"
	"storefront_miniapp/platform/apperr"
	"storefront_miniapp/platform/events"
	"storefront_miniapp/platform/logger"
)

func stock(n int) *int { return &n }

// fakeGateway simulates the shop backend: a successful order appends to the
// history, bumps the aggregates and removes a depleted product from the
// catalog, exactly as the real backend would on the next fetch.
type fakeGateway struct {
	mu        sync.Mutex
	catalog   gateway.Catalog
	orders    []gateway.Order
	profile   gateway.Profile
	submitErr error
	submits   int
}

func (f *fakeGateway) FetchCatalog(context.Context, string) (gateway.Catalog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	products := make([]gateway.Product, len(f.catalog.Products))
	copy(products, f.catalog.Products)
	return gateway.Catalog{Products: products, Categories: f.catalog.Categories}, nil
}

func (f *fakeGateway) FetchOrders(context.Context, string) ([]gateway.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]gateway.Order, len(f.orders))
	copy(out, f.orders)
	return out, nil
}

func (f *fakeGateway) FetchProfile(context.Context, string) (gateway.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.profile, nil
}

func (f *fakeGateway) SubmitOrder(_ context.Context, _, productID, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.submits++
	if f.submitErr != nil {
		return f.submitErr
	}

	kept := f.catalog.Products[:0]
	for _, p := range f.catalog.Products {
		if p.ID == productID {
			f.orders = append(f.orders, gateway.Order{
				ID:          "WEB1",
				ProductName: p.Name,
				Price:       p.Price,
				Status:      "pending",
				Date:        time.Now(),
			})
			f.profile.TotalOrders++
			f.profile.TotalSpent += p.Price
			if p.Stock != nil {
				left := *p.Stock - 1
				p.Stock = &left
				if left <= 0 {
					continue
				}
			}
		}
		kept = append(kept, p)
	}
	f.catalog.Products = kept
	return nil
}

type collector struct {
	mu        sync.Mutex
	catalogs  []notify.CatalogChanged
	orders    []notify.OrdersChanged
	profiles  []notify.ProfileChanged
	workflows []order.State
}

func (c *collector) attach(hub *notify.Hub) {
	hub.OnCatalog(func(e notify.CatalogChanged) {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.catalogs = append(c.catalogs, e)
	})
	hub.OnOrders(func(e notify.OrdersChanged) {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.orders = append(c.orders, e)
	})
	hub.OnProfile(func(e notify.ProfileChanged) {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.profiles = append(c.profiles, e)
	})
	hub.OnWorkflow(func(e notify.WorkflowChanged) {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.workflows = append(c.workflows, e.Transition.State)
	})
}

func (c *collector) lastCatalog(t *testing.T) notify.CatalogChanged {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.catalogs) == 0 {
		t.Fatal("no catalog notifications")
	}
	return c.catalogs[len(c.catalogs)-1]
}

func (c *collector) workflowStates() []order.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]order.State, len(c.workflows))
	copy(out, c.workflows)
	return out
}

func newTestSession(gw *fakeGateway) (*Session, *collector) {
	log := logger.New("development")
	hub := notify.NewHub(events.NewInMemoryBus(log))

	col := &collector{}
	col.attach(hub)

	s := New(gw, hub, log, Config{
		Identity:       Identity{UserID: "u1", Name: "Ada", Username: "ada"},
		AuthToken:      "signed-init-data",
		DebounceWindow: 20 * time.Millisecond,
	})
	return s, col
}

func seededGateway() *fakeGateway {
	return &fakeGateway{
		catalog: gateway.Catalog{
			Products: []gateway.Product{
				{ID: "p1", Name: "Espresso", Price: 250, Category: "drinks", Stock: stock(1)},
				{ID: "p2", Name: "Croissant", Price: 320, Category: "food"},
			},
			Categories: []string{"drinks", "food"},
		},
	}
}

func TestStartLoadsAllThreeProjections(t *testing.T) {
	gw := seededGateway()
	s, col := newTestSession(gw)
	defer s.Close()

	s.Start(context.Background())

	if got := s.Catalog().Products(); len(got) != 2 {
		t.Fatalf("catalog products = %d, want 2", len(got))
	}
	col.mu.Lock()
	defer col.mu.Unlock()
	if len(col.catalogs) != 1 || len(col.orders) != 1 || len(col.profiles) != 1 {
		t.Fatalf("notifications = %d/%d/%d, want 1 each",
			len(col.catalogs), len(col.orders), len(col.profiles))
	}
}

func TestSuccessfulOrderRefreshesEverything(t *testing.T) {
	gw := seededGateway()
	s, col := newTestSession(gw)
	defer s.Close()

	s.Start(context.Background())

	if err := s.SelectProduct("p1"); err != nil {
		t.Fatalf("SelectProduct: %v", err)
	}
	if err := s.Confirm(context.Background()); err != nil {
		t.Fatalf("Confirm: %v", err)
	}

	if gw.submits != 1 {
		t.Fatalf("submits = %d, want 1", gw.submits)
	}

	// The last unit of p1 was sold; the refreshed catalog no longer lists it.
	if _, ok := s.Catalog().Product("p1"); ok {
		t.Fatal("depleted product still present after settle refresh")
	}
	if got := s.History().Orders(); len(got) != 1 || got[0].ID != "WEB1" {
		t.Fatalf("orders after settle = %+v", got)
	}
	if got := s.History().Profile(); got.TotalOrders != 1 || got.TotalSpent != 250 {
		t.Fatalf("profile after settle = %+v", got)
	}
	if got := s.History().Profile(); got.Name != "Ada" || got.Username != "ada" {
		t.Fatalf("identity lost in profile: %+v", got)
	}

	want := []order.State{order.AwaitingConfirmation, order.Submitting, order.Succeeded, order.Idle}
	got := col.workflowStates()
	if len(got) != len(want) {
		t.Fatalf("workflow transitions = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("workflow transitions = %v, want %v", got, want)
		}
	}
}

func TestFailedOrderRefreshesNothing(t *testing.T) {
	gw := seededGateway()
	gw.submitErr = apperr.Rejected("out of stock")
	s, col := newTestSession(gw)
	defer s.Close()

	s.Start(context.Background())
	col.mu.Lock()
	catalogsBefore := len(col.catalogs)
	ordersBefore := len(col.orders)
	col.mu.Unlock()

	if err := s.SelectProduct("p1"); err != nil {
		t.Fatalf("SelectProduct: %v", err)
	}
	if err := s.Confirm(context.Background()); !apperr.Is(err, apperr.KindRejected) {
		t.Fatalf("Confirm: got %v, want rejected", err)
	}

	col.mu.Lock()
	defer col.mu.Unlock()
	if len(col.catalogs) != catalogsBefore || len(col.orders) != ordersBefore {
		t.Fatal("failed order triggered data refresh")
	}
}

func TestFilterNotificationsCarryVisibleSubset(t *testing.T) {
	gw := seededGateway()
	s, col := newTestSession(gw)
	defer s.Close()

	s.Start(context.Background())
	s.SetCategory("food")

	last := col.lastCatalog(t)
	if len(last.Visible) != 1 || last.Visible[0].ID != "p2" {
		t.Fatalf("visible = %+v, want [p2]", last.Visible)
	}
	if len(last.Products) != 2 {
		t.Fatalf("full collection = %d products, want 2", len(last.Products))
	}

	s.SetSearch("espresso")
	time.Sleep(100 * time.Millisecond)

	last = col.lastCatalog(t)
	if len(last.Visible) != 0 {
		t.Fatalf("visible = %+v, want empty (espresso is not food)", last.Visible)
	}
}

func TestSelectUnknownProductFails(t *testing.T) {
	s, _ := newTestSession(seededGateway())
	defer s.Close()

	s.Start(context.Background())

	if err := s.SelectProduct("missing"); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("got %v, want not found", err)
	}
}

func TestCloseStopsDebouncedNotifications(t *testing.T) {
	s, col := newTestSession(seededGateway())

	s.Start(context.Background())
	col.mu.Lock()
	before := len(col.catalogs)
	col.mu.Unlock()

	s.SetSearch("espresso")
	s.Close()
	time.Sleep(100 * time.Millisecond)

	col.mu.Lock()
	defer col.mu.Unlock()
	if len(col.catalogs) != before {
		t.Fatal("closed session still published catalog notifications")
	}
}
