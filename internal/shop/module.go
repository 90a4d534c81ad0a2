// Package shop provides the storefront bounded context module: catalog,
// orders and profile aggregates behind the public /api surface.
package shop

import (
	"storefront_miniapp/internal/events"
	apphttp "storefront_miniapp/internal/http"
	"storefront_miniapp/internal/shop/handler"
	"storefront_miniapp/internal/shop/repository"
	"storefront_miniapp/internal/shop/service"
	"storefront_miniapp/platform/logger"
	"storefront_miniapp/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the shop bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	repo    repository.Repository
}

// NewModule creates and initializes the shop module.
func NewModule(pool *pgxpool.Pool, bus events.Bus, val *validator.Validator, log *logger.Logger, opts service.Options) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, bus, log, opts)
	h := handler.New(svc, val)

	return &Module{
		handler: h,
		service: svc,
		repo:    repo,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "shop"
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// Repository returns the repository for direct access if needed.
func (m *Module) Repository() repository.Repository {
	return m.repo
}

// RegisterRoutes mounts shop routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.API.GET("/products", m.handler.GetProducts)
	ctx.API.GET("/orders", m.handler.GetOrders)
	ctx.API.GET("/profile", m.handler.GetProfile)
	ctx.API.POST("/order", ctx.OrderRateLimiter.RateLimit(), m.handler.CreateOrder)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
