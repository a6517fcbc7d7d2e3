package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/tableside-api/internal/domain/entity"
	"github.com/sangkips/tableside-api/internal/domain/enum"
	"github.com/sangkips/tableside-api/internal/domain/event"
	"github.com/sangkips/tableside-api/internal/domain/repository"
	"github.com/sangkips/tableside-api/internal/infrastructure/memory"
	"github.com/sangkips/tableside-api/pkg/payment"
	"github.com/sangkips/tableside-api/pkg/printer"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fixture struct {
	store    *memory.Store
	ctx      context.Context
	outlet   *entity.Outlet
	table    entity.Table
	sandbox  *payment.Sandbox
	events   *event.Recorder
	receipts *printer.Buffer

	orders   *OrderService
	payments *PaymentService
	poller   *PaymentPoller
	bills    *BillService
	ledger   *LedgerService
	tables   *TableService
	printing *PrinterService
	reports  *ReportService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := memory.NewStore()
	outlet := &entity.Outlet{Name: "Harbor Grill", Slug: "harbor-" + uuid.NewString()[:8]}
	require.NoError(t, store.Outlets().Create(context.Background(), outlet))
	table := store.PutTable(entity.Table{
		OutletID: outlet.ID,
		Label:    "T1",
		Capacity: 4,
		Status:   enum.TableStatusOccupied,
	})

	log := zap.NewNop()
	f := &fixture{
		store:    store,
		ctx:      repository.WithOutlet(context.Background(), outlet.ID),
		outlet:   outlet,
		table:    table,
		sandbox:  payment.NewSandbox(),
		events:   &event.Recorder{},
		receipts: printer.NewBuffer(),
	}

	f.payments = NewPaymentService(store.Orders(), f.sandbox, f.events, "USD", log)
	f.poller = NewPaymentPoller(context.Background(), f.payments, time.Millisecond, 5, log)
	f.orders = NewOrderService(store.Orders(), store.Tables(), f.payments, nil, f.events, log)
	f.bills = NewBillService(store, store.Bills(), store.Orders(), store.Customers(), store.Outlets(), f.events, decimal.Zero, log)
	f.ledger = NewLedgerService(store, store.Customers(), store.DuePayments(), store.Bills(), f.events, log)
	f.tables = NewTableService(store.Tables(), store.Orders())
	f.printing = NewPrinterService(f.receipts, store.Bills(), store.Outlets(), printer.TypeNone, printer.Width58mm, log)
	f.reports = NewReportService(store.Bills(), store.Outlets(), f.printing, log)
	return f
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func strPtr(s string) *string {
	return &s
}

// tableOrder places a table order on the fixture table
func (f *fixture) tableOrder(t *testing.T, lines ...OrderLineInput) *entity.Order {
	t.Helper()
	res, err := f.orders.CreateOrder(f.ctx, &CreateOrderInput{
		Channel: enum.ChannelTable,
		TableID: &f.table.ID,
		Lines:   lines,
	})
	require.NoError(t, err)
	return res.Order
}

// onlinePickup places a pickup order paid online and returns it with the intent ref
func (f *fixture) onlinePickup(t *testing.T) *entity.Order {
	t.Helper()
	res, err := f.orders.CreateOrder(f.ctx, &CreateOrderInput{
		Channel:       enum.ChannelPickup,
		PaymentMethod: enum.PaymentMethodOnline,
		CustomerPhone: strPtr("0700111222"),
		Lines:         []OrderLineInput{{Name: "Burger", UnitPrice: dec("12.50"), Quantity: 2}},
	})
	require.NoError(t, err)
	require.NotEmpty(t, res.ClientSecret)
	require.NotNil(t, res.Order.PaymentIntentRef)
	return res.Order
}

func line(name, price string, qty int) OrderLineInput {
	return OrderLineInput{Name: name, UnitPrice: dec(price), Quantity: qty}
}
