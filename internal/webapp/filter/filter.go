// Package filter combines the active category and a debounced free-text
// query into one deterministic subset of the catalog.
package filter

import (
	"strings"
	"sync"
	"time"

	"storefront_miniapp/internal/webapp/catalog"
	"storefront_miniapp/internal/webapp/gateway"
)

// Apply returns the products matching the category and query, preserving the
// input order. Category matching is exact, with catalog.CategoryAll passing
// everything through; the query is a case-insensitive substring test against
// name or description (a missing description never matches a non-empty
// query). Apply is pure: identical inputs yield identical outputs.
func Apply(products []gateway.Product, category, query string) []gateway.Product {
	needle := strings.ToLower(strings.TrimSpace(query))

	out := make([]gateway.Product, 0, len(products))
	for _, p := range products {
		if category != catalog.CategoryAll && p.Category != category {
			continue
		}
		if needle != "" && !matchesQuery(p, needle) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func matchesQuery(p gateway.Product, needle string) bool {
	if strings.Contains(strings.ToLower(p.Name), needle) {
		return true
	}
	return p.Description != "" && strings.Contains(strings.ToLower(p.Description), needle)
}

// Engine owns the session's filter state. A category change recomputes
// immediately with the last applied search text; a search change only takes
// effect once the debounce window has quiesced, and the recomputation that
// fires then uses whatever category is active at fire time.
type Engine struct {
	mu       sync.Mutex
	source   func() []gateway.Product
	onChange func([]gateway.Product)
	window   time.Duration

	category string
	search   string
	// pending holds search text typed but not yet applied by the debounce.
	pending *string
	timer   *time.Timer
	closed  bool
}

// NewEngine creates a filter engine reading products from source and
// reporting every recomputation through onChange.
func NewEngine(source func() []gateway.Product, window time.Duration, onChange func([]gateway.Product)) *Engine {
	if window <= 0 {
		window = 300 * time.Millisecond
	}
	return &Engine{
		source:   source,
		onChange: onChange,
		window:   window,
		category: catalog.CategoryAll,
	}
}

// SetCategory applies the category immediately and recomputes. A pending
// debounce timer is left armed: when it fires it applies the delayed search
// text against this (latest) category.
func (e *Engine) SetCategory(category string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.category = category
	e.recomputeLocked()
}

// SetSearch records the search text and re-arms the debounce timer. The text
// is applied only when the window quiesces, so a burst of keystrokes yields
// exactly one recomputation using the final text.
func (e *Engine) SetSearch(text string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}

	e.pending = &text
	if e.timer != nil {
		e.timer.Stop()
	}
	e.timer = time.AfterFunc(e.window, e.fire)
}

func (e *Engine) fire() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed || e.pending == nil {
		return
	}
	e.search = *e.pending
	e.pending = nil
	e.recomputeLocked()
}

// Invalidate recomputes against the current catalog without emitting a
// change notification; the caller decides how to publish the result.
// Used after a catalog refresh.
func (e *Engine) Invalidate() []gateway.Product {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Apply(e.source(), e.category, e.search)
}

// Category returns the active category.
func (e *Engine) Category() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.category
}

// Search returns the last applied search text.
func (e *Engine) Search() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.search
}

// Close cancels any pending debounce timer and stops further recomputation.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
}

// recomputeLocked runs the filter and notifies while holding the mutex, so
// listeners observe recomputations in mutation order.
func (e *Engine) recomputeLocked() {
	result := Apply(e.source(), e.category, e.search)
	if e.onChange != nil {
		e.onChange(result)
	}
}
