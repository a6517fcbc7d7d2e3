package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/tableside-api/internal/application/service"
	"github.com/sangkips/tableside-api/internal/config"
	"github.com/sangkips/tableside-api/internal/domain/entity"
	"github.com/sangkips/tableside-api/internal/domain/enum"
	"github.com/sangkips/tableside-api/internal/domain/event"
	"github.com/sangkips/tableside-api/internal/infrastructure/memory"
	"github.com/sangkips/tableside-api/internal/presentation/http/handler"
	"github.com/sangkips/tableside-api/internal/presentation/http/middleware"
	"github.com/sangkips/tableside-api/pkg/payment"
	"github.com/sangkips/tableside-api/pkg/printer"
	"github.com/sangkips/tableside-api/pkg/utils"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	outletSlug    = "harbor-grill"
	webhookSecret = "whsec_test"
)

type apiResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Kind    string          `json:"kind"`
	Data    json.RawMessage `json:"data"`
	Details json.RawMessage `json:"details"`
}

type testServer struct {
	router  *gin.Engine
	jwt     *utils.JWTManager
	outlet  *entity.Outlet
	table   entity.Table
	sandbox *payment.Sandbox
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := memory.NewStore()
	outlet := &entity.Outlet{Name: "Harbor Grill", Slug: outletSlug}
	require.NoError(t, store.Outlets().Create(context.Background(), outlet))
	table := store.PutTable(entity.Table{OutletID: outlet.ID, Label: "T1", Capacity: 4, Status: enum.TableStatusOccupied})

	cfg := &config.Config{
		App:       config.AppConfig{Name: "tableside-api"},
		Storage:   config.StorageConfig{Driver: "memory"},
		RateLimit: config.RateLimitConfig{Requests: 1000, Duration: 1},
		Billing:   config.BillingConfig{Currency: "USD", IdempotencyTTL: time.Hour},
	}
	log := zap.NewNop()
	sandbox := payment.NewSandbox()
	events := event.Nop{}

	payments := service.NewPaymentService(store.Orders(), sandbox, events, "USD", log)
	orders := service.NewOrderService(store.Orders(), store.Tables(), payments, nil, events, log)
	bills := service.NewBillService(store, store.Bills(), store.Orders(), store.Customers(), store.Outlets(), events, decimal.Zero, log)
	ledger := service.NewLedgerService(store, store.Customers(), store.DuePayments(), store.Bills(), events, log)
	printing := service.NewPrinterService(printer.NewBuffer(), store.Bills(), store.Outlets(), printer.TypeNone, printer.Width58mm, log)
	reports := service.NewReportService(store.Bills(), store.Outlets(), printing, log)

	rateLimiter := middleware.NewOutletRateLimiter(middleware.RateLimiterConfigFor(1000, time.Second))
	t.Cleanup(rateLimiter.Close)

	jwtManager := utils.NewJWTManager("test-secret", "tableside-auth")
	router := Setup(&Handlers{
		Order:    handler.NewOrderHandler(orders),
		Table:    handler.NewTableHandler(service.NewTableService(store.Tables(), store.Orders())),
		Bill:     handler.NewBillHandler(bills),
		Customer: handler.NewCustomerHandler(ledger),
		Payment:  handler.NewPaymentHandler(payments, webhookSecret),
		Printer:  handler.NewPrinterHandler(printing),
		Report:   handler.NewReportHandler(reports),
		Settings: handler.NewSettingsHandler(service.NewSettingsService(store.Outlets(), log)),
	}, &Deps{
		JWTManager:      jwtManager,
		Cfg:             cfg,
		Logger:          log,
		OutletRepo:      store.Outlets(),
		IdempotencyRepo: store.Idempotency(),
		RateLimiter:     rateLimiter,
	})

	return &testServer{router: router, jwt: jwtManager, outlet: outlet, table: table, sandbox: sandbox}
}

func (s *testServer) token(t *testing.T, permissions ...string) string {
	t.Helper()
	token, err := s.jwt.GenerateAccessToken(utils.JWTClaims{
		UserID:      uuid.New(),
		Email:       "staff@example.com",
		Permissions: permissions,
	}, time.Hour)
	require.NoError(t, err)
	return token
}

type requestOption func(*http.Request)

func withHeader(key, value string) requestOption {
	return func(r *http.Request) { r.Header.Set(key, value) }
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}, opts ...requestOption) (*httptest.ResponseRecorder, apiResponse) {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case []byte:
		reader = bytes.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middleware.OutletSlugHeader, outletSlug)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for _, opt := range opts {
		opt(req)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var resp apiResponse
	if json.Valid(w.Body.Bytes()) {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	}
	return w, resp
}

func decode(t *testing.T, raw json.RawMessage, into interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(raw, into))
}

func (s *testServer) placeTableOrder(t *testing.T, token string) uuid.UUID {
	t.Helper()
	w, resp := s.do(t, http.MethodPost, "/api/v1/orders", token, gin.H{
		"channel":  "table",
		"table_id": s.table.ID,
		"lines": []gin.H{
			{"name": "Steak", "unit_price": "10.00", "quantity": 2},
			{"name": "Salad", "unit_price": 5, "quantity": 1},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var result struct {
		Order struct {
			ID uuid.UUID `json:"id"`
		} `json:"order"`
	}
	decode(t, resp.Data, &result)
	return result.Order.ID
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	w, _ := s.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"storage":"memory"`)
}

func TestAuth(t *testing.T) {
	s := newTestServer(t)

	w, _ := s.do(t, http.MethodGet, "/api/v1/bills", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = s.do(t, http.MethodGet, "/api/v1/bills", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = s.do(t, http.MethodGet, "/api/v1/bills", s.token(t, middleware.PermTakeOrders), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, _ = s.do(t, http.MethodGet, "/api/v1/bills", s.token(t, middleware.PermManageBills), nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestOutletResolution(t *testing.T) {
	s := newTestServer(t)
	token := s.token(t, middleware.PermManageBills)

	w, _ := s.do(t, http.MethodGet, "/api/v1/bills", token, nil, withHeader(middleware.OutletSlugHeader, ""))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = s.do(t, http.MethodGet, "/api/v1/bills", token, nil, withHeader(middleware.OutletSlugHeader, "nowhere"))
	assert.Equal(t, http.StatusNotFound, w.Code)

	other := uuid.New()
	bound, err := s.jwt.GenerateAccessToken(utils.JWTClaims{
		UserID:      uuid.New(),
		OutletID:    &other,
		Permissions: []string{middleware.PermManageBills},
	}, time.Hour)
	require.NoError(t, err)
	w, _ = s.do(t, http.MethodGet, "/api/v1/bills", bound, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestOrderFlowAndBilling(t *testing.T) {
	s := newTestServer(t)
	staff := s.token(t, middleware.PermTakeOrders, middleware.PermManageBills)

	orderID := s.placeTableOrder(t, staff)

	w, resp := s.do(t, http.MethodPatch, "/api/v1/orders/"+orderID.String()+"/status", staff, gin.H{"status": "preparing"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var order struct {
		Status string `json:"status"`
	}
	decode(t, resp.Data, &order)
	assert.Equal(t, "preparing", order.Status)

	w, resp = s.do(t, http.MethodPatch, "/api/v1/orders/"+orderID.String()+"/status", staff, gin.H{"status": "completed"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "InvalidTransition", resp.Kind)

	w, resp = s.do(t, http.MethodGet, "/api/v1/tables/"+s.table.ID.String()+"/orders/summary", staff, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var summary struct {
		PendingCount      int     `json:"pending_count"`
		OutstandingAmount float64 `json:"outstanding_amount"`
	}
	decode(t, resp.Data, &summary)
	assert.Equal(t, 1, summary.PendingCount)
	assert.InDelta(t, 25.0, summary.OutstandingAmount, 0.001)

	billReq := gin.H{
		"order_ids":      []uuid.UUID{orderID},
		"discount_type":  "percentage",
		"discount_value": 10,
		"tax_percent":    8,
		"amount_paid":    30,
		"payment_method": "cash",
	}
	w, resp = s.do(t, http.MethodPost, "/api/v1/bills", staff, billReq)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var bill struct {
		ID     uuid.UUID `json:"id"`
		Total  float64   `json:"total"`
		Change float64   `json:"change"`
		Unpaid float64   `json:"unpaid"`
	}
	decode(t, resp.Data, &bill)
	assert.InDelta(t, 24.30, bill.Total, 0.001)
	assert.InDelta(t, 5.70, bill.Change, 0.001)
	assert.Zero(t, bill.Unpaid)

	w, resp = s.do(t, http.MethodPost, "/api/v1/bills", staff, billReq)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "StaleOrderState", resp.Kind)
	assert.Contains(t, string(resp.Details), orderID.String())

	w, resp = s.do(t, http.MethodGet, "/api/v1/bills/"+bill.ID.String()+"/receipt", staff, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var receipt struct {
		Total string `json:"total"`
	}
	decode(t, resp.Data, &receipt)
	assert.Equal(t, "24.30", receipt.Total)

	w, resp = s.do(t, http.MethodPost, "/api/v1/bills/"+bill.ID.String()+"/print", staff, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var printed struct {
		Printed bool `json:"printed"`
	}
	decode(t, resp.Data, &printed)
	assert.True(t, printed.Printed)

	w, _ = s.do(t, http.MethodGet, "/api/v1/bills/"+bill.ID.String()+"/pdf", staff, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF")))
}

func TestOrderValidation(t *testing.T) {
	s := newTestServer(t)
	staff := s.token(t, middleware.PermTakeOrders)

	w, resp := s.do(t, http.MethodPost, "/api/v1/orders", staff, gin.H{"channel": "table", "table_id": s.table.ID})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "EmptyOrder", resp.Kind)

	w, _ = s.do(t, http.MethodPost, "/api/v1/orders", staff, []byte(`{"channel":`))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = s.do(t, http.MethodGet, "/api/v1/orders/not-a-uuid", staff, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, resp = s.do(t, http.MethodPatch, "/api/v1/orders/"+uuid.NewString()+"/status", staff, gin.H{"status": "eaten"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "ValidationError", resp.Kind)
}

func TestOutletSettings(t *testing.T) {
	s := newTestServer(t)
	cashier := s.token(t, middleware.PermManageBills)
	manager := s.token(t, middleware.PermManageOutlet)

	w, _ := s.do(t, http.MethodPut, "/api/v1/settings", cashier, gin.H{"default_tax_percent": 8})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, resp := s.do(t, http.MethodPut, "/api/v1/settings", manager, gin.H{"default_tax_percent": 120})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "ValidationError", resp.Kind)

	w, resp = s.do(t, http.MethodPut, "/api/v1/settings", manager, gin.H{
		"currency":            "usd",
		"default_tax_percent": 8,
		"receipt_footer":      "Thank you",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var outlet struct {
		Slug     string `json:"slug"`
		Settings struct {
			Currency      string `json:"currency"`
			ReceiptFooter string `json:"receipt_footer"`
		} `json:"settings"`
	}
	decode(t, resp.Data, &outlet)
	assert.Equal(t, outletSlug, outlet.Slug)
	assert.Equal(t, "USD", outlet.Settings.Currency)
	assert.Equal(t, "Thank you", outlet.Settings.ReceiptFooter)

	w, resp = s.do(t, http.MethodPost, "/api/v1/bills/preview", cashier, gin.H{
		"lines": []gin.H{{"name": "Tea", "unit_price": "10.00", "quantity": 1}},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var preview struct {
		Total float64 `json:"total"`
	}
	decode(t, resp.Data, &preview)
	assert.InDelta(t, 10.80, preview.Total, 0.001)
}

func TestBillIdempotency(t *testing.T) {
	s := newTestServer(t)
	staff := s.token(t, middleware.PermManageBills)
	body := gin.H{
		"lines":          []gin.H{{"name": "Coffee", "unit_price": "3.00", "quantity": 2}},
		"amount_paid":    6,
		"payment_method": "cash",
	}
	key := withHeader(middleware.IdempotencyKeyHeader, "till-1-0001")

	first, firstResp := s.do(t, http.MethodPost, "/api/v1/bills", staff, body, key)
	require.Equal(t, http.StatusCreated, first.Code, first.Body.String())

	second, secondResp := s.do(t, http.MethodPost, "/api/v1/bills", staff, body, key)
	require.Equal(t, http.StatusCreated, second.Code)
	assert.Equal(t, "true", second.Header().Get("X-Idempotency-Replayed"))
	assert.JSONEq(t, string(firstResp.Data), string(secondResp.Data))

	body["amount_paid"] = 10
	third, resp := s.do(t, http.MethodPost, "/api/v1/bills", staff, body, key)
	assert.Equal(t, http.StatusConflict, third.Code)
	assert.Equal(t, "Conflict", resp.Kind)

	_, list := s.do(t, http.MethodGet, "/api/v1/bills", staff, nil)
	var page struct {
		Items []json.RawMessage `json:"items"`
	}
	decode(t, list.Data, &page)
	assert.Len(t, page.Items, 1)
}

func TestCustomerLedger(t *testing.T) {
	s := newTestServer(t)
	staff := s.token(t, middleware.PermManageBills, middleware.PermManageCustomers)

	w, resp := s.do(t, http.MethodPost, "/api/v1/bills", staff, gin.H{
		"lines": []gin.H{
			{"name": "Steak", "unit_price": "10.00", "quantity": 2},
			{"name": "Salad", "unit_price": "5.00", "quantity": 1},
		},
		"customer":       gin.H{"name": "Amina", "phone": "0700123456"},
		"discount_type":  "percentage",
		"discount_value": 10,
		"tax_percent":    8,
		"amount_paid":    20,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var bill struct {
		CustomerID uuid.UUID `json:"customer_id"`
		Unpaid     float64   `json:"unpaid"`
	}
	decode(t, resp.Data, &bill)
	assert.InDelta(t, 4.30, bill.Unpaid, 0.001)

	w, resp = s.do(t, http.MethodGet, "/api/v1/customers?phone=0700123456", staff, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var customer struct {
		ID        uuid.UUID `json:"id"`
		DueAmount float64   `json:"due_amount"`
	}
	decode(t, resp.Data, &customer)
	assert.Equal(t, bill.CustomerID, customer.ID)
	assert.InDelta(t, 4.30, customer.DueAmount, 0.001)

	duePath := "/api/v1/customers/" + customer.ID.String() + "/due-payments"
	w, resp = s.do(t, http.MethodPost, duePath, staff, gin.H{"amount": 5})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "OverpaymentRejected", resp.Kind)
	var details struct {
		DueAmount float64 `json:"due_amount"`
	}
	decode(t, resp.Details, &details)
	assert.InDelta(t, 4.30, details.DueAmount, 0.001)

	w, resp = s.do(t, http.MethodPost, duePath, staff, gin.H{"amount": 0})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "InvalidAmount", resp.Kind)

	w, _ = s.do(t, http.MethodPost, duePath, staff, gin.H{"amount": "4.30", "method": "cash"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w, resp = s.do(t, http.MethodGet, "/api/v1/customers/"+customer.ID.String(), staff, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var ledger struct {
		Customer struct {
			DueAmount float64 `json:"due_amount"`
		} `json:"customer"`
		UnpaidBills []json.RawMessage `json:"unpaid_bills"`
	}
	decode(t, resp.Data, &ledger)
	assert.Zero(t, ledger.Customer.DueAmount)
	assert.Empty(t, ledger.UnpaidBills)

	w, _ = s.do(t, http.MethodGet, "/api/v1/customers?phone=0799999999", staff, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestOnlineCheckout(t *testing.T) {
	s := newTestServer(t)

	w, resp := s.do(t, http.MethodPost, "/api/v1/public/outlets/"+outletSlug+"/orders", "", gin.H{
		"channel":        "pickup",
		"payment_method": "online",
		"customer_phone": "0700111222",
		"lines":          []gin.H{{"name": "Burger", "unit_price": "12.50", "quantity": 2}},
	}, withHeader(middleware.OutletSlugHeader, ""))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var result struct {
		Order struct {
			ID               uuid.UUID `json:"id"`
			PaymentIntentRef string    `json:"payment_intent_ref"`
		} `json:"order"`
		ClientSecret string `json:"client_secret"`
	}
	decode(t, resp.Data, &result)
	require.NotEmpty(t, result.ClientSecret)
	require.NotEmpty(t, result.Order.PaymentIntentRef)

	paymentPath := "/api/v1/public/orders/" + result.Order.ID.String() + "/payment"
	w, resp = s.do(t, http.MethodGet, paymentPath, "", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var outcome struct {
		Status string `json:"status"`
	}
	decode(t, resp.Data, &outcome)
	assert.Equal(t, string(service.OutcomePending), outcome.Status)

	require.NoError(t, s.sandbox.Settle(result.Order.PaymentIntentRef, payment.StatusSucceeded))
	ev, err := json.Marshal(payment.Event{ID: "evt_1", IntentRef: result.Order.PaymentIntentRef, Status: payment.StatusSucceeded})
	require.NoError(t, err)

	w, _ = s.do(t, http.MethodPost, "/api/v1/public/payments/webhook", "", ev,
		withHeader(handler.SignatureHeader, "forged"))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, resp = s.do(t, http.MethodPost, "/api/v1/public/payments/webhook", "", ev,
		withHeader(handler.SignatureHeader, payment.Sign(webhookSecret, ev)),
		withHeader(middleware.OutletSlugHeader, ""))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	decode(t, resp.Data, &outcome)
	assert.Equal(t, string(service.OutcomePaid), outcome.Status)

	w, resp = s.do(t, http.MethodGet, paymentPath, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, resp.Data, &outcome)
	assert.Equal(t, string(service.OutcomePaid), outcome.Status)
}

func TestSalesExport(t *testing.T) {
	s := newTestServer(t)
	staff := s.token(t, middleware.PermManageBills)

	w, _ := s.do(t, http.MethodPost, "/api/v1/bills", staff, gin.H{
		"lines":       []gin.H{{"name": "Tea", "unit_price": "2.00", "quantity": 1}},
		"amount_paid": 2,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w, _ = s.do(t, http.MethodGet, "/api/v1/reports/bills.xlsx", staff, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	reports := s.token(t, middleware.PermViewReports)
	w, _ = s.do(t, http.MethodGet, "/api/v1/reports/bills.xlsx?from=2000-01-01", reports, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "spreadsheetml")
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("PK")))
}
