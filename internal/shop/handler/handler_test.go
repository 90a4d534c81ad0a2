package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"storefront_miniapp/internal/shop/repository"
	"storefront_miniapp/internal/shop/service"
	"storefront_miniapp/platform/apperr"
	"storefront_miniapp/platform/logger"
	"storefront_miniapp/platform/validator"
)

var productID = uuid.MustParse("11111111-1111-1111-1111-111111111111")

type stubRepo struct {
	orderErr error
}

func (s *stubRepo) ListProducts(context.Context) ([]repository.Product, error) {
	return []repository.Product{
		{ID: productID, Name: "Espresso", PriceCents: 250, Category: "drinks"},
	}, nil
}

func (s *stubRepo) GetProductByID(context.Context, uuid.UUID) (repository.Product, error) {
	return repository.Product{}, apperr.NotFound("product not found")
}

func (s *stubRepo) CreateOrder(context.Context, repository.CreateOrderParams) (repository.CreateOrderResult, error) {
	if s.orderErr != nil {
		return repository.CreateOrderResult{}, s.orderErr
	}
	return repository.CreateOrderResult{Order: repository.Order{
		ID: "WEB1", ProductName: "Espresso", PriceCents: 250, Status: "pending", CreatedAt: time.Now(),
	}}, nil
}

func (s *stubRepo) ListOrdersByUser(context.Context, string) ([]repository.Order, error) {
	return nil, nil
}

func (s *stubRepo) GetUserStats(context.Context, string) (repository.UserStats, error) {
	return repository.UserStats{TotalOrders: 2, TotalSpentCents: 500}, nil
}

func newTestRouter(repo *stubRepo) *gin.Engine {
	gin.SetMode(gin.TestMode)
	log := logger.New("development")

	svc := service.New(repo, nil, log, service.Options{})
	h := New(svc, validator.New())

	r := gin.New()
	r.GET("/api/products", h.GetProducts)
	r.GET("/api/orders", h.GetOrders)
	r.GET("/api/profile", h.GetProfile)
	r.POST("/api/order", h.CreateOrder)
	return r
}

func doRequest(t *testing.T, r *gin.Engine, method, target, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	var reader *strings.Reader
	if body != "" {
		reader = strings.NewReader(body)
	} else {
		reader = strings.NewReader("")
	}

	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	var decoded map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &decoded); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return rec, decoded
}

func TestGetProductsReturnsSuccessEnvelope(t *testing.T) {
	rec, body := doRequest(t, newTestRouter(&stubRepo{}), http.MethodGet, "/api/products", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if body["success"] != true {
		t.Fatalf("body = %v", body)
	}
	if products, ok := body["products"].([]interface{}); !ok || len(products) != 1 {
		t.Fatalf("products = %v", body["products"])
	}
}

func TestGetOrdersRequiresUserID(t *testing.T) {
	rec, body := doRequest(t, newTestRouter(&stubRepo{}), http.MethodGet, "/api/orders", "")

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if body["success"] != false || body["error"] == "" {
		t.Fatalf("failure envelope = %v", body)
	}
}

func TestGetProfileReturnsAggregates(t *testing.T) {
	rec, body := doRequest(t, newTestRouter(&stubRepo{}), http.MethodGet, "/api/profile?user_id=u1", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	profile, ok := body["profile"].(map[string]interface{})
	if !ok {
		t.Fatalf("profile = %v", body["profile"])
	}
	if profile["total_orders"] != float64(2) || profile["total_spent"] != float64(500) {
		t.Fatalf("profile = %v", profile)
	}
}

func TestCreateOrderRejectsInvalidBody(t *testing.T) {
	rec, body := doRequest(t, newTestRouter(&stubRepo{}), http.MethodPost, "/api/order",
		`{"user_id": "u1"}`)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if body["success"] != false {
		t.Fatalf("failure envelope = %v", body)
	}
}

func TestCreateOrderOutOfStockUsesFailureEnvelope(t *testing.T) {
	repo := &stubRepo{orderErr: apperr.Rejected("out of stock")}
	rec, body := doRequest(t, newTestRouter(repo), http.MethodPost, "/api/order",
		`{"user_id": "u1", "product_id": "`+productID.String()+`", "init_data": "init"}`)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if body["success"] != false || body["error"] != "out of stock" {
		t.Fatalf("failure envelope = %v", body)
	}
}

func TestCreateOrderSuccess(t *testing.T) {
	rec, body := doRequest(t, newTestRouter(&stubRepo{}), http.MethodPost, "/api/order",
		`{"user_id": "u1", "product_id": "`+productID.String()+`", "init_data": "init"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if body["success"] != true || body["order_id"] != "WEB1" || body["status"] != "pending" {
		t.Fatalf("body = %v", body)
	}
}
