package salesserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	salesmemory "github.com/Apurer/go-gin-sales-server/internal/domains/sales/adapters/memory"
	salesapp "github.com/Apurer/go-gin-sales-server/internal/domains/sales/application"
	"github.com/Apurer/go-gin-sales-server/internal/domains/sales/domain"
	salesports "github.com/Apurer/go-gin-sales-server/internal/domains/sales/ports"
	apierrors "github.com/Apurer/go-gin-sales-server/internal/shared/errors"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubInventory struct {
	mu       sync.Mutex
	products map[string]domain.InventorySnapshot
	down     bool
}

func (s *stubInventory) CheckAndReserve(_ context.Context, _ string, reqs []domain.StockRequest) ([]domain.InventorySnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.down {
		return nil, errors.New("connection refused")
	}
	out := make([]domain.InventorySnapshot, 0, len(reqs))
	for _, req := range reqs {
		if snap, ok := s.products[req.Barcode]; ok {
			out = append(out, snap)
		}
	}
	return out, nil
}

func (s *stubInventory) Adjust(context.Context, string, []domain.StockAdjustment) error { return nil }

type counterNumbers struct {
	mu sync.Mutex
	n  int
}

func (c *counterNumbers) NextSaleNumber(context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.n++
	return fmt.Sprintf("sale%04d", c.n), nil
}

type noopRestock struct{}

func (noopRestock) Dispatch(context.Context, salesports.RestockCommand) {}

var saleTime = time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)

func newTestRouter(t *testing.T) (*gin.Engine, *stubInventory) {
	t.Helper()
	inv := &stubInventory{products: map[string]domain.InventorySnapshot{
		"A": {Barcode: "A", SKU: "SKU-A", Name: "Milk", Quantity: 10, InStock: true, UnitPrice: decimal.NewFromInt(30)},
		"X": {Barcode: "X", Name: "Bread", InStock: false, UnitPrice: decimal.NewFromInt(5)},
	}}
	service := salesapp.NewService(
		salesmemory.NewRepository(),
		inv,
		&counterNumbers{},
		noopRestock{},
		salesapp.WithIdempotencyStore(salesmemory.NewIdempotencyStore()),
		salesapp.WithClock(func() time.Time { return saleTime }),
	)
	router := NewRouterWithGinEngine(gin.New(), ApiHandleFunctions{SalesAPI: NewSalesAPI(service, nil)})
	return router, inv
}

func do(router *gin.Engine, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeProblem(t *testing.T, rec *httptest.ResponseRecorder) apierrors.ProblemDetail {
	t.Helper()
	assert.Equal(t, apierrors.ContentTypeProblemJSON, rec.Header().Get("Content-Type"))
	var problem apierrors.ProblemDetail
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	return problem
}

const cashSale = `{"createdBy":"clerk","paymentType":"n","money":100,"items":[{"barcode":"A","quantity":2}]}`

func TestCreateSale_Commits(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := do(router, http.MethodPost, "/api/sales", cashSale, nil)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "sale0001", body["saleNumber"])
	assert.Equal(t, 60.0, body["totalPrice"])
	assert.Equal(t, 40.0, body["change"])
	assert.Equal(t, "cash", body["paymentType"])
}

func TestCreateSale_ProblemResponses(t *testing.T) {
	cases := []struct {
		name   string
		body   string
		status int
		typ    string
	}{
		{"insufficient balance", `{"paymentType":"n","money":10,"items":[{"barcode":"A","quantity":2}]}`, http.StatusPaymentRequired, TypeInsufficientBalance},
		{"no money", `{"paymentType":"n","items":[{"barcode":"A","quantity":2}]}`, http.StatusBadRequest, TypeNoMoneyEntered},
		{"invalid payment", `{"paymentType":"x","money":100,"items":[{"barcode":"A","quantity":1}]}`, http.StatusBadRequest, TypeInvalidPaymentType},
		{"out of stock", `{"paymentType":"k","items":[{"barcode":"X","quantity":1}]}`, http.StatusConflict, TypeProductUnavailable},
		{"unknown product", `{"paymentType":"k","items":[{"barcode":"Q","quantity":1}]}`, http.StatusServiceUnavailable, TypeInventoryUnavailable},
		{"empty items", `{"paymentType":"k","items":[]}`, http.StatusBadRequest, apierrors.TypeValidation},
		{"zero quantity", `{"paymentType":"k","items":[{"barcode":"A","quantity":0}]}`, http.StatusBadRequest, apierrors.TypeValidation},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			router, _ := newTestRouter(t)
			rec := do(router, http.MethodPost, "/api/sales", tc.body, nil)
			require.Equal(t, tc.status, rec.Code, rec.Body.String())
			problem := decodeProblem(t, rec)
			assert.Equal(t, tc.typ, problem.Type)
			assert.Equal(t, "/api/sales", problem.Instance)
		})
	}
}

func TestCreateSale_BindingErrorsListFields(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := do(router, http.MethodPost, "/api/sales", `{"paymentType":"k","items":[{"barcode":"A","quantity":0}]}`, nil)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	problem := decodeProblem(t, rec)
	fields, ok := problem.Extensions["fields"].(map[string]any)
	require.True(t, ok, rec.Body.String())
	assert.Equal(t, "required", fields["CreateSaleRequest.Items[0].Quantity"])
}

func TestCreateSale_InventoryDown(t *testing.T) {
	router, inv := newTestRouter(t)
	inv.down = true

	rec := do(router, http.MethodPost, "/api/sales", cashSale, nil)

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, TypeInventoryUnavailable, decodeProblem(t, rec).Type)
}

func TestCreateSale_IdempotencyKeyReplaysAndConflicts(t *testing.T) {
	router, _ := newTestRouter(t)
	headers := map[string]string{IdempotencyKeyHeader: "register-7-0001"}

	first := do(router, http.MethodPost, "/api/sales", cashSale, headers)
	require.Equal(t, http.StatusCreated, first.Code)
	second := do(router, http.MethodPost, "/api/sales", cashSale, headers)
	require.Equal(t, http.StatusCreated, second.Code)
	assert.JSONEq(t, first.Body.String(), second.Body.String())

	changed := `{"createdBy":"clerk","paymentType":"n","money":200,"items":[{"barcode":"A","quantity":2}]}`
	conflict := do(router, http.MethodPost, "/api/sales", changed, headers)
	require.Equal(t, http.StatusConflict, conflict.Code)
	assert.Equal(t, apierrors.TypeConflict, decodeProblem(t, conflict).Type)
}

func TestReturnItem_And_Batch(t *testing.T) {
	router, _ := newTestRouter(t)
	require.Equal(t, http.StatusCreated, do(router, http.MethodPost, "/api/sales", cashSale, nil).Code)

	rec := do(router, http.MethodPost, "/api/sales/returns", `{"saleNumber":"sale0001","barcode":"A","quantity":1}`, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var result map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, true, result["item"].(map[string]any)["deleted"])

	again := do(router, http.MethodPost, "/api/sales/returns", `{"saleNumber":"sale0001","barcode":"A","quantity":1}`, nil)
	require.Equal(t, http.StatusNotFound, again.Code)
	assert.Equal(t, TypeLineItemNotFound, decodeProblem(t, again).Type)

	missing := do(router, http.MethodPost, "/api/sales/returns/batch", `[{"saleNumber":"nope","barcode":"A","quantity":1}]`, nil)
	require.Equal(t, http.StatusNotFound, missing.Code)
	problem := decodeProblem(t, missing)
	assert.Equal(t, TypeSaleNotFound, problem.Type)
	assert.Contains(t, problem.Extensions, "completed")
}

func TestReturnItem_ExpiredWindow(t *testing.T) {
	router, _ := newTestRouter(t)
	require.Equal(t, http.StatusCreated, do(router, http.MethodPost, "/api/sales", cashSale, nil).Code)

	body := `{"saleNumber":"sale0001","barcode":"A","quantity":1,"returnedAt":"2024-01-20T10:00:00Z"}`
	rec := do(router, http.MethodPost, "/api/sales/returns", body, nil)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, TypeReturnPeriodExpired, decodeProblem(t, rec).Type)
}

func TestGetListAndDeleteSale(t *testing.T) {
	router, _ := newTestRouter(t)
	for i := 0; i < 4; i++ {
		require.Equal(t, http.StatusCreated, do(router, http.MethodPost, "/api/sales", cashSale, nil).Code)
	}

	get := do(router, http.MethodGet, "/api/sales/sale0002", "", nil)
	require.Equal(t, http.StatusOK, get.Code)

	list := do(router, http.MethodGet, "/api/sales", "", nil)
	require.Equal(t, http.StatusOK, list.Code)
	var page map[string]any
	require.NoError(t, json.Unmarshal(list.Body.Bytes(), &page))
	assert.Equal(t, 4.0, page["totalElements"])
	assert.Equal(t, 3.0, page["size"])
	assert.Len(t, page["content"], 3)

	require.Equal(t, http.StatusNoContent, do(router, http.MethodDelete, "/api/sales/sale0002", "", nil).Code)
	list = do(router, http.MethodGet, "/api/sales?size=10&sort=id,desc", "", nil)
	require.NoError(t, json.Unmarshal(list.Body.Bytes(), &page))
	assert.Equal(t, 3.0, page["totalElements"])

	bad := do(router, http.MethodGet, "/api/sales?sort=colour,asc", "", nil)
	require.Equal(t, http.StatusBadRequest, bad.Code)
	assert.Equal(t, apierrors.TypeValidation, decodeProblem(t, bad).Type)

	notFound := do(router, http.MethodGet, "/api/sales/unknown", "", nil)
	require.Equal(t, http.StatusNotFound, notFound.Code)
	assert.Equal(t, TypeSaleNotFound, decodeProblem(t, notFound).Type)
}

func TestHealthz(t *testing.T) {
	router, _ := newTestRouter(t)
	rec := do(router, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
