// Package gateway provides the typed HTTP client for the shop backend's four
// endpoints. It carries no business logic: every call returns either decoded
// data or a typed failure, and retries are left to the caller (fetches are
// idempotent, order submission is not).
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"storefront_miniapp/platform/apperr"
)

// Product is a purchasable item as served by the catalog endpoint.
// It is immutable from the client's perspective and replaced wholesale on
// each catalog fetch.
type Product struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Price       int64  `json:"price"`
	Category    string `json:"category"`
	// Stock is nil for unlimited items, otherwise the remaining count.
	Stock *int   `json:"stock"`
	Image string `json:"image,omitempty"`
}

// InStock reports whether the product can still be ordered.
func (p Product) InStock() bool {
	return p.Stock == nil || *p.Stock > 0
}

// Catalog is the full product collection plus the backend's category list.
type Catalog struct {
	Products   []Product
	Categories []string
}

// Order is a past purchase. ProductName and Price are snapshots taken at
// order time, not live product state.
type Order struct {
	ID          string    `json:"id"`
	ProductName string    `json:"product_name"`
	Price       int64     `json:"price"`
	Status      string    `json:"status"`
	Date        time.Time `json:"date"`
}

// Profile holds the server-derived purchase aggregates.
type Profile struct {
	TotalOrders int   `json:"total_orders"`
	TotalSpent  int64 `json:"total_spent"`
}

// Config configures the gateway client.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client performs requests against the shop backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a gateway client. Every request is bounded by the
// configured timeout; a timeout surfaces as an apperr.KindTimeout failure.
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

type catalogResponse struct {
	Success    bool      `json:"success"`
	Error      string    `json:"error"`
	Products   []Product `json:"products"`
	Categories []string  `json:"categories"`
}

type ordersResponse struct {
	Success bool    `json:"success"`
	Error   string  `json:"error"`
	Orders  []Order `json:"orders"`
}

type profileResponse struct {
	Success bool    `json:"success"`
	Error   string  `json:"error"`
	Profile Profile `json:"profile"`
}

type submitOrderRequest struct {
	UserID    string `json:"user_id"`
	ProductID string `json:"product_id"`
	InitData  string `json:"init_data"`
}

type submitOrderResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// FetchCatalog retrieves the product catalog. Idempotent.
func (c *Client) FetchCatalog(ctx context.Context, userID string) (Catalog, error) {
	var resp catalogResponse
	if err := c.get(ctx, "fetch catalog", "/api/products", userID, &resp); err != nil {
		return Catalog{}, err
	}
	if !resp.Success {
		return Catalog{}, rejected("fetch catalog", resp.Error)
	}
	return Catalog{Products: resp.Products, Categories: resp.Categories}, nil
}

// FetchOrders retrieves the user's order history. Idempotent.
func (c *Client) FetchOrders(ctx context.Context, userID string) ([]Order, error) {
	var resp ordersResponse
	if err := c.get(ctx, "fetch orders", "/api/orders", userID, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, rejected("fetch orders", resp.Error)
	}
	return resp.Orders, nil
}

// FetchProfile retrieves the user's purchase aggregates. Idempotent.
func (c *Client) FetchProfile(ctx context.Context, userID string) (Profile, error) {
	var resp profileResponse
	if err := c.get(ctx, "fetch profile", "/api/profile", userID, &resp); err != nil {
		return Profile{}, err
	}
	if !resp.Success {
		return Profile{}, rejected("fetch profile", resp.Error)
	}
	return resp.Profile, nil
}

// SubmitOrder places an order. NOT idempotent: the order workflow guarantees
// at most one call per user confirmation. initData is the opaque platform
// auth token, forwarded verbatim for server-side verification.
func (c *Client) SubmitOrder(ctx context.Context, userID, productID, initData string) error {
	const op = "submit order"

	bodyBytes, err := json.Marshal(submitOrderRequest{
		UserID:    userID,
		ProductID: productID,
		InitData:  initData,
	})
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "failed to encode order request", err).WithOp(op)
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/order", bytes.NewReader(bodyBytes))
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "failed to create order request", err).WithOp(op)
	}
	request.Header.Set("Content-Type", "application/json")

	var resp submitOrderResponse
	if err := c.do(op, request, &resp); err != nil {
		return err
	}
	if !resp.Success {
		return rejected(op, resp.Error)
	}
	return nil
}

func (c *Client) get(ctx context.Context, op, path, userID string, out interface{}) error {
	target := fmt.Sprintf("%s%s?user_id=%s", c.baseURL, path, url.QueryEscape(userID))
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "failed to create request", err).WithOp(op)
	}
	request.Header.Set("Accept", "application/json")

	return c.do(op, request, out)
}

// do executes the request and decodes the uniform response envelope. The
// backend reports failures as success:false in the body, so the body is
// decoded regardless of status code.
func (c *Client) do(op string, request *http.Request, out interface{}) error {
	resp, err := c.httpClient.Do(request)
	if err != nil {
		return classify(op, err)
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apperr.Network("unexpected response from backend", err).WithOp(op)
	}
	return nil
}

func classify(op string, err error) error {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return apperr.Timeout("request timed out", err).WithOp(op)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return apperr.Timeout("request timed out", err).WithOp(op)
	}
	return apperr.Network("request failed", err).WithOp(op)
}

func rejected(op, message string) error {
	if message == "" {
		message = "request rejected"
	}
	return apperr.Rejected(message).WithOp(op)
}
