package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/sangkips/tableside-api/internal/domain/entity"
	"github.com/sangkips/tableside-api/internal/domain/enum"
	"github.com/sangkips/tableside-api/internal/domain/event"
	"github.com/sangkips/tableside-api/internal/domain/repository"
	"github.com/sangkips/tableside-api/pkg/apperror"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func exampleBill(paid string) *CreateBillInput {
	tax := dec("8")
	return &CreateBillInput{
		Lines: []BillLineInput{
			{Name: "Steak", UnitPrice: dec("10.00"), Quantity: 2},
			{Name: "Salad", UnitPrice: dec("5.00"), Quantity: 1},
		},
		DiscountType:  enum.DiscountTypePercentage,
		DiscountValue: dec("10"),
		TaxPercent:    &tax,
		AmountPaid:    dec(paid),
		PaymentMethod: enum.PaymentMethodCash,
		CreatedBy:     uuid.New(),
	}
}

func TestCreateBill_WorkedExample(t *testing.T) {
	f := newFixture(t)

	bill, err := f.bills.CreateBill(f.ctx, exampleBill("30.00"))
	require.NoError(t, err)

	assert.Equal(t, int64(1), bill.BillNumber)
	assert.Equal(t, "25.00", bill.Subtotal.StringFixed(2))
	assert.Equal(t, "2.50", bill.DiscountAmount.StringFixed(2))
	assert.Equal(t, "1.80", bill.TaxAmount.StringFixed(2))
	assert.Equal(t, "24.30", bill.Total.StringFixed(2))
	assert.Equal(t, "5.70", bill.ChangeGiven.StringFixed(2))
	assert.True(t, bill.Unpaid.IsZero())
	assert.Equal(t, []event.Type{event.BillCreated}, f.events.Types())
}

func TestCreateBill_ConsolidatesTableOrders(t *testing.T) {
	f := newFixture(t)
	first := f.tableOrder(t, line("Tea", "2.00", 2))
	second := f.tableOrder(t, line("Tea", "2.00", 1), line("Cake", "4.50", 1))
	_, err := f.orders.TransitionOrder(f.ctx, second.ID, enum.OrderStatusPreparing)
	require.NoError(t, err)

	bill, err := f.bills.CreateBill(f.ctx, &CreateBillInput{
		OrderIDs:   []uuid.UUID{first.ID, second.ID, first.ID},
		AmountPaid: dec("10.50"),
		CreatedBy:  uuid.New(),
	})
	require.NoError(t, err)

	require.Len(t, bill.Lines, 2)
	assert.Equal(t, "Tea", bill.Lines[0].Name)
	assert.Equal(t, 3, bill.Lines[0].Quantity)
	assert.Equal(t, "10.50", bill.Total.StringFixed(2))
	assert.Equal(t, []uuid.UUID{first.ID, second.ID}, bill.SourceOrderIDs)

	for _, id := range []uuid.UUID{first.ID, second.ID} {
		o, err := f.orders.GetOrder(f.ctx, id)
		require.NoError(t, err)
		assert.Equal(t, enum.OrderStatusCompleted, o.Status)
		require.NotNil(t, o.BillID)
		assert.Equal(t, bill.ID, *o.BillID)
	}

	summary, err := f.tables.Summary(f.ctx, f.table.ID)
	require.NoError(t, err)
	assert.Zero(t, summary.PendingCount)
}

func TestCreateBill_SecondAttemptIsStale(t *testing.T) {
	f := newFixture(t)
	order := f.tableOrder(t, line("Tea", "2.00", 1))
	input := &CreateBillInput{OrderIDs: []uuid.UUID{order.ID}, CreatedBy: uuid.New()}

	_, err := f.bills.CreateBill(f.ctx, input)
	require.NoError(t, err)

	_, err = f.bills.CreateBill(f.ctx, input)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperror.ErrStaleOrderState))

	details, ok := apperror.GetAppError(err).Details.(StaleDetails)
	require.True(t, ok)
	assert.Equal(t, []uuid.UUID{order.ID}, details.OrderIDs)
}

func TestCreateBill_ConcurrentDoubleBilling(t *testing.T) {
	f := newFixture(t)
	order := f.tableOrder(t, line("Tea", "2.00", 1))

	const attempts = 8
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.bills.CreateBill(f.ctx, &CreateBillInput{OrderIDs: []uuid.UUID{order.ID}, CreatedBy: uuid.New()})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.Equal(t, apperror.KindStaleOrderState, apperror.KindOf(err))
	}
	assert.Equal(t, 1, succeeded)

	bills, err := f.bills.ListBills(f.ctx, &repository.BillFilterParams{})
	require.NoError(t, err)
	require.Len(t, bills.Items, 1)
	assert.Equal(t, []uuid.UUID{order.ID}, bills.Items[0].SourceOrderIDs)
}

func TestCreateBill_CancelledOrderIsStale(t *testing.T) {
	f := newFixture(t)
	order := f.tableOrder(t, line("Tea", "2.00", 1))
	_, err := f.orders.TransitionOrder(f.ctx, order.ID, enum.OrderStatusCancelled)
	require.NoError(t, err)

	_, err = f.bills.CreateBill(f.ctx, &CreateBillInput{OrderIDs: []uuid.UUID{order.ID}, CreatedBy: uuid.New()})
	assert.Equal(t, apperror.KindStaleOrderState, apperror.KindOf(err))
}

func TestCreateBill_Rejections(t *testing.T) {
	f := newFixture(t)
	pickup, err := f.orders.CreateOrder(f.ctx, &CreateOrderInput{
		Channel:       enum.ChannelPickup,
		PaymentMethod: enum.PaymentMethodCash,
		CustomerPhone: strPtr("0700"),
		Lines:         []OrderLineInput{line("Wrap", "6.00", 1)},
	})
	require.NoError(t, err)

	_, err = f.bills.CreateBill(f.ctx, &CreateBillInput{OrderIDs: []uuid.UUID{pickup.Order.ID}})
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))

	_, err = f.bills.CreateBill(f.ctx, &CreateBillInput{OrderIDs: []uuid.UUID{uuid.New()}})
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))

	_, err = f.bills.CreateBill(f.ctx, &CreateBillInput{})
	assert.Equal(t, apperror.KindEmptyOrder, apperror.KindOf(err))

	bad := exampleBill("-1")
	_, err = f.bills.CreateBill(f.ctx, bad)
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
}

func TestCreateBill_DiscountClampedToSubtotal(t *testing.T) {
	f := newFixture(t)
	input := exampleBill("0")
	input.DiscountType = enum.DiscountTypeFixed
	input.DiscountValue = dec("100")

	bill, err := f.bills.CreateBill(f.ctx, input)
	require.NoError(t, err)
	assert.Equal(t, "25.00", bill.DiscountAmount.StringFixed(2))
	assert.True(t, bill.Total.IsZero())
	assert.True(t, bill.Unpaid.IsZero())
}

func TestCreateBill_TaxDefaultsToOutletSetting(t *testing.T) {
	f := newFixture(t)
	tax := dec("16")
	outlet := &entity.Outlet{Name: "Uptown", Slug: "uptown", Settings: entity.OutletSettings{DefaultTaxPercent: &tax}}
	require.NoError(t, f.store.Outlets().Create(context.Background(), outlet))
	ctx := repository.WithOutlet(context.Background(), outlet.ID)

	bill, err := f.bills.CreateBill(ctx, &CreateBillInput{
		Lines:     []BillLineInput{{Name: "Wine", UnitPrice: dec("25.00"), Quantity: 1}},
		CreatedBy: uuid.New(),
	})
	require.NoError(t, err)
	assert.Equal(t, "16", bill.TaxPercent.String())
	assert.Equal(t, "4.00", bill.TaxAmount.StringFixed(2))
	assert.Equal(t, "29.00", bill.Unpaid.StringFixed(2))
}

func TestCreateBill_UnpaidWithoutCustomer(t *testing.T) {
	f := newFixture(t)

	bill, err := f.bills.CreateBill(f.ctx, exampleBill("20.00"))
	require.NoError(t, err)
	assert.Equal(t, "4.30", bill.Unpaid.StringFixed(2))
	assert.Nil(t, bill.CustomerID)
}

func TestPreviewBill_DoesNotPersist(t *testing.T) {
	f := newFixture(t)
	order := f.tableOrder(t, line("Tea", "2.00", 1))

	preview, err := f.bills.PreviewBill(f.ctx, &CreateBillInput{OrderIDs: []uuid.UUID{order.ID}})
	require.NoError(t, err)
	assert.Equal(t, "2.00", preview.Total.StringFixed(2))
	assert.Zero(t, preview.BillNumber)

	stored, err := f.orders.GetOrder(f.ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, enum.OrderStatusPending, stored.Status)

	bills, err := f.bills.ListBills(f.ctx, &repository.BillFilterParams{})
	require.NoError(t, err)
	assert.Empty(t, bills.Items)
}

type unavailableLedger struct {
	repository.CustomerRepository
}

func (unavailableLedger) IncrementDue(context.Context, uuid.UUID, decimal.Decimal) error {
	return errors.New("ledger unavailable")
}

func TestCreateBill_PartialSagaFailure(t *testing.T) {
	f := newFixture(t)
	bills := NewBillService(f.store, f.store.Bills(), f.store.Orders(), unavailableLedger{f.store.Customers()},
		f.store.Outlets(), f.events, decimal.Zero, zap.NewNop())

	order := f.tableOrder(t, line("Tea", "2.00", 5))
	input := &CreateBillInput{
		OrderIDs:  []uuid.UUID{order.ID},
		Customer:  &BillCustomerInput{Name: "Ama", Phone: "0711000000"},
		CreatedBy: uuid.New(),
	}

	bill, err := bills.CreateBill(f.ctx, input)
	require.Error(t, err)
	assert.Equal(t, apperror.KindPartialSagaFailure, apperror.KindOf(err))
	require.NotNil(t, bill)

	details, ok := apperror.GetAppError(err).Details.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, bill, details["bill"])

	stored, err := f.bills.GetBill(f.ctx, bill.ID)
	require.NoError(t, err)
	assert.Equal(t, "10.00", stored.Unpaid.StringFixed(2))

	completed, err := f.orders.GetOrder(f.ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, enum.OrderStatusCompleted, completed.Status)

	assert.Contains(t, f.events.Types(), event.LedgerSyncFailed)
	assert.NotContains(t, f.events.Types(), event.BillCreated)
}

func TestBillNumbers_AreSequential(t *testing.T) {
	f := newFixture(t)

	for want := int64(1); want <= 3; want++ {
		bill, err := f.bills.CreateBill(f.ctx, exampleBill("30.00"))
		require.NoError(t, err)
		assert.Equal(t, want, bill.BillNumber)
	}

	list, err := f.bills.ListBills(f.ctx, &repository.BillFilterParams{})
	require.NoError(t, err)
	require.Len(t, list.Items, 3)
	assert.Equal(t, int64(3), list.Items[0].BillNumber)
}

// vanishedCustomer forwards due increments to the store for a customer id that no longer exists
type vanishedCustomer struct {
	repository.CustomerRepository
}

func (v vanishedCustomer) IncrementDue(ctx context.Context, _ uuid.UUID, amount decimal.Decimal) error {
	return v.CustomerRepository.IncrementDue(ctx, uuid.New(), amount)
}

func TestCreateBill_MissingCustomerIsPartialSagaFailure(t *testing.T) {
	f := newFixture(t)
	bills := NewBillService(f.store, f.store.Bills(), f.store.Orders(), vanishedCustomer{f.store.Customers()},
		f.store.Outlets(), f.events, decimal.Zero, zap.NewNop())

	order := f.tableOrder(t, line("Tea", "2.00", 5))
	bill, err := bills.CreateBill(f.ctx, &CreateBillInput{
		OrderIDs:  []uuid.UUID{order.ID},
		Customer:  &BillCustomerInput{Name: "Ama", Phone: "0711000000"},
		CreatedBy: uuid.New(),
	})
	require.Error(t, err)
	assert.Equal(t, apperror.KindPartialSagaFailure, apperror.KindOf(err))
	assert.ErrorIs(t, err, repository.ErrCustomerNotFound)
	require.NotNil(t, bill)
	assert.Contains(t, f.events.Types(), event.LedgerSyncFailed)
}
