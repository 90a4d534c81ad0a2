package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"storefront_miniapp/platform/apperr"
)

const productNotFoundMessage = "product not found"

// Repo implements the shop repository on postgres.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new shop repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

// ListProducts returns the catalog in display order.
func (r *Repo) ListProducts(ctx context.Context) ([]Product, error) {
	query := `
		SELECT id, name, description, price_cents, category, stock, image_url, position
		FROM shop_products
		ORDER BY position, name`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(
			&p.ID, &p.Name, &p.Description, &p.PriceCents, &p.Category, &p.Stock, &p.ImageURL, &p.Position,
		); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

// GetProductByID returns a single product.
func (r *Repo) GetProductByID(ctx context.Context, id uuid.UUID) (Product, error) {
	query := `
		SELECT id, name, description, price_cents, category, stock, image_url, position
		FROM shop_products
		WHERE id = $1`

	var p Product
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.Name, &p.Description, &p.PriceCents, &p.Category, &p.Stock, &p.ImageURL, &p.Position,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Product{}, apperr.NotFound(productNotFoundMessage)
		}
		return Product{}, fmt.Errorf("get product by id: %w", err)
	}
	return p, nil
}

// CreateOrder runs the whole order mutation in one transaction: the product
// row is locked so concurrent orders for the last unit cannot both succeed.
func (r *Repo) CreateOrder(ctx context.Context, params CreateOrderParams) (CreateOrderResult, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return CreateOrderResult{}, fmt.Errorf("begin create order: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var p Product
	err = tx.QueryRow(ctx, `
		SELECT id, name, price_cents, stock
		FROM shop_products
		WHERE id = $1
		FOR UPDATE`, params.ProductID,
	).Scan(&p.ID, &p.Name, &p.PriceCents, &p.Stock)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return CreateOrderResult{}, apperr.NotFound(productNotFoundMessage)
		}
		return CreateOrderResult{}, fmt.Errorf("lock product: %w", err)
	}

	if p.Stock != nil && *p.Stock <= 0 {
		return CreateOrderResult{}, apperr.Rejected("out of stock")
	}

	var order Order
	err = tx.QueryRow(ctx, `
		INSERT INTO shop_orders (id, user_id, product_id, product_name, price_cents, status)
		VALUES ('WEB' || nextval('shop_order_seq'), $1, $2, $3, $4, 'pending')
		RETURNING id, user_id, product_id, product_name, price_cents, status, created_at`,
		params.UserID, p.ID, p.Name, p.PriceCents,
	).Scan(&order.ID, &order.UserID, &order.ProductID, &order.ProductName, &order.PriceCents, &order.Status, &order.CreatedAt)
	if err != nil {
		return CreateOrderResult{}, fmt.Errorf("insert order: %w", err)
	}

	var remaining *int
	if p.Stock != nil {
		var left int
		err = tx.QueryRow(ctx, `
			UPDATE shop_products
			SET stock = stock - 1, updated_at = now()
			WHERE id = $1
			RETURNING stock`, p.ID,
		).Scan(&left)
		if err != nil {
			return CreateOrderResult{}, fmt.Errorf("decrement stock: %w", err)
		}
		remaining = &left
	}

	if err := tx.Commit(ctx); err != nil {
		return CreateOrderResult{}, fmt.Errorf("commit create order: %w", err)
	}

	return CreateOrderResult{Order: order, StockRemaining: remaining}, nil
}

// ListOrdersByUser returns the user's orders, most recent first.
func (r *Repo) ListOrdersByUser(ctx context.Context, userID string) ([]Order, error) {
	query := `
		SELECT id, user_id, product_id, product_name, price_cents, status, created_at
		FROM shop_orders
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var orders []Order
	for rows.Next() {
		var o Order
		if err := rows.Scan(
			&o.ID, &o.UserID, &o.ProductID, &o.ProductName, &o.PriceCents, &o.Status, &o.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

// GetUserStats returns the user's purchase aggregates.
func (r *Repo) GetUserStats(ctx context.Context, userID string) (UserStats, error) {
	query := `
		SELECT COUNT(*), COALESCE(SUM(price_cents), 0)
		FROM shop_orders
		WHERE user_id = $1`

	var stats UserStats
	if err := r.pool.QueryRow(ctx, query, userID).Scan(&stats.TotalOrders, &stats.TotalSpentCents); err != nil {
		return UserStats{}, fmt.Errorf("get user stats: %w", err)
	}
	return stats, nil
}
