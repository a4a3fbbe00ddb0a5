//go:build integration

package router

// End-to-end tests against real Postgres + Redis via testcontainers.
// Run with: go test -tags integration ./internal/router/... -v

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/namnv1120/SEP490-FA25-G127-sub000/internal/config"
	"github.com/namnv1120/SEP490-FA25-G127-sub000/internal/dto"
	"github.com/namnv1120/SEP490-FA25-G127-sub000/internal/infra"
	"github.com/namnv1120/SEP490-FA25-G127-sub000/internal/middleware"
	"github.com/namnv1120/SEP490-FA25-G127-sub000/internal/model"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	tcRedis "github.com/testcontainers/testcontainers-go/modules/redis"
	"gorm.io/gorm"
)

const e2eSecret = "e2e-secret"

// ── Helpers ──────────────────────────────────────────────────────────────────

func do(t *testing.T, srv *httptest.Server, method, path string, body any, token string) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, srv.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response, dest any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dest))
}

func tokenFor(t *testing.T, accountID uuid.UUID, perms ...string) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, middleware.JWTClaims{
		AccountID:   accountID.String(),
		Username:    accountID.String()[:8],
		Permissions: perms,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	s, err := tok.SignedString([]byte(e2eSecret))
	require.NoError(t, err)
	return s
}

// ── Test Suite Setup ─────────────────────────────────────────────────────────

type testEnv struct {
	server   *httptest.Server
	db       *gorm.DB
	clerk    string // manage + sell + inventory
	approver string
	supplier uuid.UUID
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	pgC, err := tcPostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcPostgres.WithDatabase("retail_test"),
		tcPostgres.WithUsername("retail"),
		tcPostgres.WithPassword("retail"),
		tcPostgres.BasicWaitStrategies(),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgC.Terminate(ctx) })

	pgURL, err := pgC.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	rdC, err := tcRedis.RunContainer(ctx, testcontainers.WithImage("redis:7-alpine"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdC.Terminate(ctx) })

	rdURL, err := rdC.ConnectionString(ctx)
	require.NoError(t, err)

	cfg := &config.Config{
		Env:               "test",
		JWTSecret:         e2eSecret,
		DatabaseURL:       pgURL,
		RedisURL:          rdURL,
		LoyaltyPointUnit:  500,
		PromotionCacheTTL: time.Minute,
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	require.NoError(t, err)
	rdb, err := infra.NewRedis(cfg.RedisURL)
	require.NoError(t, err)

	paymentCB := infra.NewCircuitBreaker(infra.DefaultCBConfig("momo"))
	momo := infra.NewMomoClient(cfg, paymentCB)
	srv := httptest.NewServer(New(cfg, db, rdb, NewServices(cfg, db, rdb, momo), momo, paymentCB))
	t.Cleanup(srv.Close)

	clerkID, approverID := uuid.New(), uuid.New()
	require.NoError(t, db.Create(&[]model.Account{
		{ID: clerkID, Username: "clerk", FullName: "Store Clerk", Role: "staff", Active: true,
			Permissions: []model.AccountPermission{{Permission: model.PermPurchaseOrderManage}, {Permission: model.PermOrderSell}}},
		{ID: approverID, Username: "manager", FullName: "Store Manager", Role: "manager", Active: true,
			Permissions: []model.AccountPermission{{Permission: model.PermPurchaseOrderApprove}}},
	}).Error)

	supplier := model.Supplier{ID: uuid.New(), Name: "Fresh Farms", Active: true}
	require.NoError(t, db.Create(&supplier).Error)

	return &testEnv{
		server: srv,
		db:     db,
		clerk: tokenFor(t, clerkID, model.PermPurchaseOrderManage, model.PermOrderSell,
			model.PermOrderCancel, model.PermInventoryManage),
		approver: tokenFor(t, approverID, model.PermPurchaseOrderApprove),
		supplier: supplier.ID,
	}
}

// seedProduct creates a priced product with no inventory row.
func (env *testEnv) seedProduct(t *testing.T, code string, unitPrice, costPrice int64) uuid.UUID {
	t.Helper()
	p := model.Product{ID: uuid.New(), Code: code, Name: "Product " + code, Unit: "unit", SupplierID: &env.supplier, Active: true}
	require.NoError(t, env.db.Create(&p).Error)
	require.NoError(t, env.db.Create(&model.ProductPrice{
		ProductID: p.ID,
		UnitPrice: decimal.NewFromInt(unitPrice),
		CostPrice: decimal.NewFromInt(costPrice),
		ValidFrom: time.Now().Add(-24 * time.Hour),
	}).Error)
	return p.ID
}

func (env *testEnv) stockOf(t *testing.T, productID uuid.UUID) int {
	t.Helper()
	resp := do(t, env.server, http.MethodGet, "/v1/inventory/stock/"+productID.String(), nil, env.clerk)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var inv dto.InventoryResponse
	decodeJSON(t, resp, &inv)
	return inv.QuantityInStock
}

func (env *testEnv) assertReconciled(t *testing.T, productID uuid.UUID) {
	t.Helper()
	resp := do(t, env.server, http.MethodGet, "/v1/inventory/reconcile/"+productID.String(), nil, env.clerk)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var rec dto.ReconcileResponse
	decodeJSON(t, resp, &rec)
	assert.True(t, rec.Consistent, "counter %d, ledger %d", rec.QuantityInStock, rec.LedgerSum)
}

// receive runs a purchase order through create, approve and receive.
func (env *testEnv) receive(t *testing.T, productID uuid.UUID, qty int) dto.PurchaseOrderResponse {
	t.Helper()
	resp := do(t, env.server, http.MethodPost, "/v1/purchase-orders", map[string]any{
		"supplier_id": env.supplier,
		"tax_percent": "10",
		"lines":       []map[string]any{{"product_id": productID, "quantity": qty}},
	}, env.clerk)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var po dto.PurchaseOrderResponse
	decodeJSON(t, resp, &po)

	resp = do(t, env.server, http.MethodPost, "/v1/purchase-orders/"+po.ID+"/approve", nil, env.approver)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = do(t, env.server, http.MethodPost, "/v1/purchase-orders/"+po.ID+"/receive", map[string]any{
		"lines": []map[string]any{{"detail_id": po.Details[0].ID, "received_quantity": qty}},
	}, env.clerk)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeJSON(t, resp, &po)
	return po
}

// ── Tests ────────────────────────────────────────────────────────────────────

func TestE2E_HealthAndAuth(t *testing.T) {
	env := setupTestEnv(t)

	resp := do(t, env.server, http.MethodGet, "/health", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var health map[string]any
	decodeJSON(t, resp, &health)
	assert.Equal(t, "closed", health["payment_gateway"])

	resp = do(t, env.server, http.MethodGet, "/v1/inventory/low-stock", nil, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	resp = do(t, env.server, http.MethodGet, "/v1/inventory/low-stock", nil, env.approver)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()
}

func TestE2E_PurchaseOrderReceiptFeedsStock(t *testing.T) {
	env := setupTestEnv(t)
	productID := env.seedProduct(t, "RICE-5", 1500, 1000)

	po := env.receive(t, productID, 10)
	assert.Equal(t, model.POReceived, po.Status)
	assert.Equal(t, "10000", po.Subtotal.String())
	assert.Equal(t, "11000", po.TotalAmount.String())
	assert.Equal(t, 10, env.stockOf(t, productID))
	env.assertReconciled(t, productID)

	resp := do(t, env.server, http.MethodPost, "/v1/purchase-orders/"+po.ID+"/receive", nil, env.clerk)
	assert.Equal(t, http.StatusConflict, resp.StatusCode, "a received order cannot be received twice")
	resp.Body.Close()

	resp = do(t, env.server, http.MethodGet, "/v1/inventory/transactions?reference_id="+po.ID, nil, env.clerk)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list dto.StockTransactionListResponse
	decodeJSON(t, resp, &list)
	require.Len(t, list.Data, 1)
	assert.Equal(t, model.StockImport, list.Data[0].Type)
	assert.Equal(t, 10, list.Data[0].QuantityChange)
}

func TestE2E_SaleLifecycleKeepsLedgerConsistent(t *testing.T) {
	env := setupTestEnv(t)
	productID := env.seedProduct(t, "SOAP-1", 200, 120)
	env.receive(t, productID, 10)

	resp := do(t, env.server, http.MethodPost, "/v1/orders", map[string]any{
		"items":          []map[string]any{{"product_id": productID, "quantity": 3}},
		"payment_method": "cash",
	}, env.clerk)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var order dto.OrderResponse
	decodeJSON(t, resp, &order)
	assert.Equal(t, model.OrderAwaitingConfirmation, order.Status)
	assert.Equal(t, "600", order.TotalAmount.String())
	assert.Equal(t, 7, env.stockOf(t, productID), "stock is reserved at order time")

	resp = do(t, env.server, http.MethodPost, "/v1/orders/"+order.ID+"/finalize", nil, env.clerk)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeJSON(t, resp, &order)
	assert.Equal(t, model.PaymentPaid, order.PaymentStatus)
	assert.Equal(t, 7, env.stockOf(t, productID))

	resp = do(t, env.server, http.MethodPost, "/v1/orders/"+order.ID+"/cancel", nil, env.clerk)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeJSON(t, resp, &order)
	assert.Equal(t, model.OrderCancelled, order.Status)
	assert.Equal(t, model.PaymentRefunded, order.PaymentStatus)
	assert.Equal(t, 10, env.stockOf(t, productID))
	env.assertReconciled(t, productID)
}

func TestE2E_ConcurrentOrdersNeverOversell(t *testing.T) {
	env := setupTestEnv(t)
	productID := env.seedProduct(t, "MILK-1", 300, 200)
	env.receive(t, productID, 5)

	body, err := json.Marshal(map[string]any{
		"items":          []map[string]any{{"product_id": productID, "quantity": 1}},
		"payment_method": "cash",
	})
	require.NoError(t, err)

	const buyers = 12
	var wg sync.WaitGroup
	statuses := make([]int, buyers)
	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			req, _ := http.NewRequest(http.MethodPost, env.server.URL+"/v1/orders", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("Authorization", "Bearer "+env.clerk)
			resp, err := env.server.Client().Do(req)
			if err != nil {
				return
			}
			statuses[i] = resp.StatusCode
			resp.Body.Close()
		}(i)
	}
	wg.Wait()

	created, rejected := 0, 0
	for _, s := range statuses {
		switch s {
		case http.StatusCreated:
			created++
		case http.StatusConflict:
			rejected++
		}
	}
	assert.Equal(t, 5, created)
	assert.Equal(t, buyers-5, rejected)
	assert.Zero(t, env.stockOf(t, productID))
	env.assertReconciled(t, productID)
}

func TestE2E_ManualAdjustment(t *testing.T) {
	env := setupTestEnv(t)
	productID := env.seedProduct(t, "EGG-12", 400, 250)

	resp := do(t, env.server, http.MethodPost, "/v1/inventory/adjustments", map[string]any{
		"product_id": productID, "delta": 4, "type": "adjustment", "note": "opening count",
	}, env.clerk)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = do(t, env.server, http.MethodPost, "/v1/inventory/adjustments", map[string]any{
		"product_id": productID, "delta": -6, "type": "write_off", "note": "broken",
	}, env.clerk)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()

	assert.Equal(t, 4, env.stockOf(t, productID))
	env.assertReconciled(t, productID)
}
