package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"storefront_miniapp/internal/events"
	"storefront_miniapp/internal/scheduler"
	"storefront_miniapp/internal/shop/repository"
	"storefront_miniapp/internal/shop/transport"
	"storefront_miniapp/platform/apperr"
	"storefront_miniapp/platform/logger"
)

// Service provides the business logic of the shop context.
type Service struct {
	repo     repository.Repository
	cache    *catalogCache
	bus      events.Bus
	notifier scheduler.OrderNotifier
	botToken string
	log      *logger.Logger
}

// Options carries the optional collaborators of the service. Every field may
// be zero: a missing cache or notifier disables that behavior.
type Options struct {
	RedisClient *redis.Client
	CacheTTL    time.Duration
	Notifier    scheduler.OrderNotifier
	// BotToken enables init data verification on order submission.
	BotToken string
}

// New creates a new shop service.
func New(repo repository.Repository, bus events.Bus, log *logger.Logger, opts Options) *Service {
	return &Service{
		repo:     repo,
		cache:    newCatalogCache(opts.RedisClient, opts.CacheTTL, log),
		bus:      bus,
		notifier: opts.Notifier,
		botToken: opts.BotToken,
		log:      log,
	}
}

// Catalog returns the public catalog. Finite-stock products with zero stock
// are hidden; the category list is derived from the visible products in
// first-seen order.
func (s *Service) Catalog(ctx context.Context) (transport.CatalogResponse, error) {
	if cached, ok := s.cache.Get(ctx); ok {
		return cached, nil
	}

	products, err := s.repo.ListProducts(ctx)
	if err != nil {
		return transport.CatalogResponse{}, err
	}

	visible := make([]transport.ProductDTO, 0, len(products))
	categories := make([]string, 0)
	seen := make(map[string]bool)
	for _, p := range products {
		if p.Stock != nil && *p.Stock <= 0 {
			continue
		}
		visible = append(visible, toProductDTO(p))
		if !seen[p.Category] {
			seen[p.Category] = true
			categories = append(categories, p.Category)
		}
	}

	resp := transport.CatalogResponse{
		Success:    true,
		Products:   visible,
		Categories: categories,
	}
	s.cache.Set(ctx, resp)
	return resp, nil
}

// Orders returns the user's order history, most recent first.
func (s *Service) Orders(ctx context.Context, userID string) ([]transport.OrderDTO, error) {
	orders, err := s.repo.ListOrdersByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := make([]transport.OrderDTO, 0, len(orders))
	for _, o := range orders {
		out = append(out, transport.OrderDTO{
			ID:          o.ID,
			ProductName: o.ProductName,
			Price:       o.PriceCents,
			Status:      o.Status,
			Date:        o.CreatedAt,
		})
	}
	return out, nil
}

// Profile returns the user's purchase aggregates.
func (s *Service) Profile(ctx context.Context, userID string) (transport.ProfileDTO, error) {
	stats, err := s.repo.GetUserStats(ctx, userID)
	if err != nil {
		return transport.ProfileDTO{}, err
	}
	return transport.ProfileDTO{
		TotalOrders: stats.TotalOrders,
		TotalSpent:  stats.TotalSpentCents,
	}, nil
}

// CreateOrder places an order: it verifies the platform credential, runs the
// transactional stock check, invalidates the catalog cache and fans out the
// created event plus the admin notification.
func (s *Service) CreateOrder(ctx context.Context, req transport.CreateOrderRequest) (transport.CreateOrderResponse, error) {
	if s.botToken != "" {
		if err := verifyInitData(s.botToken, req.InitData); err != nil {
			return transport.CreateOrderResponse{}, err
		}
	}

	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		return transport.CreateOrderResponse{}, apperr.Validation("invalid product id")
	}

	result, err := s.repo.CreateOrder(ctx, repository.CreateOrderParams{
		UserID:    req.UserID,
		ProductID: productID,
	})
	if err != nil {
		return transport.CreateOrderResponse{}, err
	}
	order := result.Order

	// Stock changed; the next catalog read must see it.
	s.cache.Invalidate(ctx)

	s.log.WithUserID(req.UserID).Info("order created",
		"orderId", order.ID, "product", order.ProductName, "priceCents", order.PriceCents)

	if s.bus != nil {
		s.bus.Publish(ctx, events.OrderCreated{
			BaseEvent:   events.NewBaseEvent(),
			OrderID:     order.ID,
			UserID:      order.UserID,
			ProductID:   order.ProductID,
			ProductName: order.ProductName,
			PriceCents:  order.PriceCents,
		})
		if result.StockRemaining != nil && *result.StockRemaining == 0 {
			s.bus.Publish(ctx, events.StockDepleted{
				BaseEvent:   events.NewBaseEvent(),
				ProductID:   order.ProductID,
				ProductName: order.ProductName,
			})
		}
	}

	if s.notifier != nil {
		err := s.notifier.EnqueueOrderNotification(ctx, scheduler.OrderNotificationPayload{
			OrderID:     order.ID,
			UserID:      order.UserID,
			ProductName: order.ProductName,
			PriceCents:  order.PriceCents,
		})
		if err != nil {
			// The order is already committed; notification delivery is
			// best effort.
			s.log.Warn("failed to enqueue order notification", "orderId", order.ID, "error", err)
		}
	}

	return transport.CreateOrderResponse{
		Success: true,
		OrderID: order.ID,
		Status:  order.Status,
	}, nil
}

func toProductDTO(p repository.Product) transport.ProductDTO {
	return transport.ProductDTO{
		ID:          p.ID.String(),
		Name:        p.Name,
		Description: p.Description,
		Price:       p.PriceCents,
		Category:    p.Category,
		Stock:       p.Stock,
		Image:       p.ImageURL,
	}
}
