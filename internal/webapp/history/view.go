// Package history holds the read-mostly projections of remote order and
// profile data for one user session.
package history

import (
	"context"
	"sort"
	"sync"

	"storefront_miniapp/internal/webapp/gateway"
)

// Identity is the platform-supplied display identity, merged into the
// profile projection (the backend only returns aggregates).
type Identity struct {
	Name     string
	Username string
}

// Profile is the merged profile snapshot exposed to listeners.
type Profile struct {
	Name        string
	Username    string
	TotalOrders int
	TotalSpent  int64
}

// OrdersFetcher retrieves the order history from the shop backend.
type OrdersFetcher interface {
	FetchOrders(ctx context.Context, userID string) ([]gateway.Order, error)
}

// ProfileFetcher retrieves the profile aggregates from the shop backend.
type ProfileFetcher interface {
	FetchProfile(ctx context.Context, userID string) (gateway.Profile, error)
}

// Notifier receives order-history and profile snapshots after each refresh,
// including failed ones (which carry the retained stale data and the error).
type Notifier interface {
	OrdersChanged(orders []gateway.Order, err error)
	ProfileChanged(p Profile, err error)
}

// View projects the remote order history and profile. Both lists refresh
// only on explicit request; a failed refresh keeps the previous data.
type View struct {
	mu       sync.RWMutex
	orders   OrdersFetcher
	profiles ProfileFetcher
	notifier Notifier
	userID   string
	identity Identity

	orderList []gateway.Order
	aggregate gateway.Profile
}

// NewView creates an empty projection for the given user.
func NewView(orders OrdersFetcher, profiles ProfileFetcher, notifier Notifier, userID string, identity Identity) *View {
	return &View{
		orders:   orders,
		profiles: profiles,
		notifier: notifier,
		userID:   userID,
		identity: identity,
	}
}

// RefreshOrders re-fetches the order history. The stored list is kept
// newest-first regardless of backend ordering. On failure the previous list
// is retained and the failure is delivered alongside it.
func (v *View) RefreshOrders(ctx context.Context) error {
	fetched, err := v.orders.FetchOrders(ctx, v.userID)
	if err != nil {
		v.notify(v.Orders(), err)
		return err
	}

	sort.SliceStable(fetched, func(i, j int) bool {
		return fetched[i].Date.After(fetched[j].Date)
	})

	v.mu.Lock()
	v.orderList = fetched
	v.mu.Unlock()

	v.notify(v.Orders(), nil)
	return nil
}

// RefreshProfile re-fetches the profile aggregates. On failure the previous
// aggregates are retained and the failure is delivered alongside them.
func (v *View) RefreshProfile(ctx context.Context) error {
	fetched, err := v.profiles.FetchProfile(ctx, v.userID)
	if err != nil {
		v.notifyProfile(v.Profile(), err)
		return err
	}

	v.mu.Lock()
	v.aggregate = fetched
	v.mu.Unlock()

	v.notifyProfile(v.Profile(), nil)
	return nil
}

// Orders returns a copy of the order list, most recent first.
func (v *View) Orders() []gateway.Order {
	v.mu.RLock()
	defer v.mu.RUnlock()
	out := make([]gateway.Order, len(v.orderList))
	copy(out, v.orderList)
	return out
}

// Profile returns the merged profile snapshot.
func (v *View) Profile() Profile {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return Profile{
		Name:        v.identity.Name,
		Username:    v.identity.Username,
		TotalOrders: v.aggregate.TotalOrders,
		TotalSpent:  v.aggregate.TotalSpent,
	}
}

func (v *View) notify(orders []gateway.Order, err error) {
	if v.notifier != nil {
		v.notifier.OrdersChanged(orders, err)
	}
}

func (v *View) notifyProfile(p Profile, err error) {
	if v.notifier != nil {
		v.notifier.ProfileChanged(p, err)
	}
}
