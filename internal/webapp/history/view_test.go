package history

import (
	"context"
	"testing"
	"time"

	"storefront_miniapp/internal/webapp/gateway"
	"storefront_miniapp/platform/apperr"
)

type fakeOrders struct {
	orders []gateway.Order
	err    error
}

func (f *fakeOrders) FetchOrders(context.Context, string) ([]gateway.Order, error) {
	return f.orders, f.err
}

type fakeProfiles struct {
	profile gateway.Profile
	err     error
}

func (f *fakeProfiles) FetchProfile(context.Context, string) (gateway.Profile, error) {
	return f.profile, f.err
}

type captureNotifier struct {
	orderCalls   int
	lastOrders   []gateway.Order
	lastOrderErr error

	profileCalls   int
	lastProfile    Profile
	lastProfileErr error
}

func (c *captureNotifier) OrdersChanged(orders []gateway.Order, err error) {
	c.orderCalls++
	c.lastOrders = orders
	c.lastOrderErr = err
}

func (c *captureNotifier) ProfileChanged(p Profile, err error) {
	c.profileCalls++
	c.lastProfile = p
	c.lastProfileErr = err
}

func date(day int) time.Time {
	return time.Date(2026, 8, day, 12, 0, 0, 0, time.UTC)
}

func TestRefreshOrdersSortsNewestFirst(t *testing.T) {
	orders := &fakeOrders{orders: []gateway.Order{
		{ID: "WEB1", ProductName: "Espresso", Date: date(1)},
		{ID: "WEB3", ProductName: "Latte", Date: date(3)},
		{ID: "WEB2", ProductName: "Croissant", Date: date(2)},
	}}
	notifier := &captureNotifier{}
	view := NewView(orders, &fakeProfiles{}, notifier, "u1", Identity{})

	if err := view.RefreshOrders(context.Background()); err != nil {
		t.Fatalf("RefreshOrders: %v", err)
	}

	got := view.Orders()
	if len(got) != 3 || got[0].ID != "WEB3" || got[1].ID != "WEB2" || got[2].ID != "WEB1" {
		t.Fatalf("order list = %+v", got)
	}
	if notifier.orderCalls != 1 || notifier.lastOrderErr != nil {
		t.Fatalf("notifications = %d, err = %v", notifier.orderCalls, notifier.lastOrderErr)
	}
}

func TestRefreshOrdersFailureRetainsAndNotifies(t *testing.T) {
	orders := &fakeOrders{orders: []gateway.Order{{ID: "WEB1", Date: date(1)}}}
	notifier := &captureNotifier{}
	view := NewView(orders, &fakeProfiles{}, notifier, "u1", Identity{})

	if err := view.RefreshOrders(context.Background()); err != nil {
		t.Fatalf("first RefreshOrders: %v", err)
	}

	orders.err = apperr.Timeout("request timed out", nil)
	if err := view.RefreshOrders(context.Background()); !apperr.Is(err, apperr.KindTimeout) {
		t.Fatalf("second RefreshOrders: got %v", err)
	}

	if got := view.Orders(); len(got) != 1 || got[0].ID != "WEB1" {
		t.Fatalf("stale orders lost: %+v", got)
	}
	if notifier.orderCalls != 2 {
		t.Fatalf("notifications = %d, want 2", notifier.orderCalls)
	}
	if !apperr.Is(notifier.lastOrderErr, apperr.KindTimeout) {
		t.Fatalf("failure notification err = %v", notifier.lastOrderErr)
	}
	if len(notifier.lastOrders) != 1 {
		t.Fatalf("failure notification carried %d orders, want stale 1", len(notifier.lastOrders))
	}
}

func TestRefreshProfileMergesIdentityWithAggregates(t *testing.T) {
	profiles := &fakeProfiles{profile: gateway.Profile{TotalOrders: 4, TotalSpent: 1280}}
	notifier := &captureNotifier{}
	view := NewView(&fakeOrders{}, profiles, notifier, "u1", Identity{Name: "Ada", Username: "ada"})

	if err := view.RefreshProfile(context.Background()); err != nil {
		t.Fatalf("RefreshProfile: %v", err)
	}

	got := view.Profile()
	want := Profile{Name: "Ada", Username: "ada", TotalOrders: 4, TotalSpent: 1280}
	if got != want {
		t.Fatalf("profile = %+v, want %+v", got, want)
	}
	if notifier.profileCalls != 1 || notifier.lastProfile != want {
		t.Fatalf("notification = %+v (%d calls)", notifier.lastProfile, notifier.profileCalls)
	}
}

func TestRefreshProfileFailureRetainsAggregates(t *testing.T) {
	profiles := &fakeProfiles{profile: gateway.Profile{TotalOrders: 2, TotalSpent: 500}}
	notifier := &captureNotifier{}
	view := NewView(&fakeOrders{}, profiles, notifier, "u1", Identity{Name: "Ada"})

	if err := view.RefreshProfile(context.Background()); err != nil {
		t.Fatalf("first RefreshProfile: %v", err)
	}

	profiles.err = apperr.Network("backend unreachable", nil)
	if err := view.RefreshProfile(context.Background()); !apperr.Is(err, apperr.KindNetwork) {
		t.Fatalf("second RefreshProfile: got %v", err)
	}

	if got := view.Profile(); got.TotalOrders != 2 || got.TotalSpent != 500 {
		t.Fatalf("stale aggregates lost: %+v", got)
	}
	if !apperr.Is(notifier.lastProfileErr, apperr.KindNetwork) {
		t.Fatalf("failure notification err = %v", notifier.lastProfileErr)
	}
}
