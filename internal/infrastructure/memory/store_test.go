package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/tableside-api/internal/domain/entity"
	"github.com/sangkips/tableside-api/internal/domain/enum"
	domainRepo "github.com/sangkips/tableside-api/internal/domain/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tableOrder(outletID, tableID uuid.UUID) *entity.Order {
	return &entity.Order{
		OutletID: outletID,
		TableID:  &tableID,
		Channel:  enum.ChannelTable,
		Status:   enum.OrderStatusPending,
		Lines: []entity.OrderLine{
			{Name: "Soup", UnitPrice: decimal.NewFromInt(5), Quantity: 2},
		},
	}
}

func TestTransactionRollsBackOnError(t *testing.T) {
	s := NewStore()
	outletID := uuid.New()
	ctx := domainRepo.WithOutlet(context.Background(), outletID)

	order := tableOrder(outletID, uuid.New())
	require.NoError(t, s.Orders().Create(ctx, order))

	boom := errors.New("boom")
	err := s.WithinTransaction(ctx, func(ctx context.Context) error {
		n, err := s.Orders().CompleteForBill(ctx, []uuid.UUID{order.ID}, uuid.New())
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := s.Orders().GetByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, enum.OrderStatusPending, got.Status)
	assert.Nil(t, got.BillID)
}

func TestBillNumbersSurviveRollback(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	_ = s.WithinTransaction(ctx, func(ctx context.Context) error {
		n, err := s.Bills().NextBillNumber(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
		return errors.New("abort")
	})

	n, err := s.Bills().NextBillNumber(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestOutletScope(t *testing.T) {
	s := NewStore()
	outletA, outletB := uuid.New(), uuid.New()
	ctxA := domainRepo.WithOutlet(context.Background(), outletA)
	ctxB := domainRepo.WithOutlet(context.Background(), outletB)

	order := tableOrder(outletA, uuid.New())
	require.NoError(t, s.Orders().Create(ctxA, order))

	got, err := s.Orders().GetByID(ctxB, order.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = s.Orders().GetByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Nil(t, got, "missing outlet must match nothing")

	got, err = s.Orders().GetByID(domainRepo.WithSkipOutletScope(context.Background(), true), order.ID)
	require.NoError(t, err)
	assert.NotNil(t, got)
}

func TestConditionalWrites(t *testing.T) {
	s := NewStore()
	outletID := uuid.New()
	ctx := domainRepo.WithOutlet(context.Background(), outletID)

	order := tableOrder(outletID, uuid.New())
	require.NoError(t, s.Orders().Create(ctx, order))

	ok, err := s.Orders().ApplyTransition(ctx, order.ID, enum.OrderStatusPending, 1, domainRepo.OrderChange{To: enum.OrderStatusPreparing})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.Orders().ApplyTransition(ctx, order.ID, enum.OrderStatusPending, 1, domainRepo.OrderChange{To: enum.OrderStatusCancelled})
	require.NoError(t, err)
	assert.False(t, ok, "stale from-state must not match")

	c, err := s.Customers().FindOrCreateByPhone(ctx, "Ana", "555-0100")
	require.NoError(t, err)
	require.NoError(t, s.Customers().IncrementDue(ctx, c.ID, decimal.NewFromInt(10)))
	assert.ErrorIs(t, s.Customers().IncrementDue(ctx, uuid.New(), decimal.NewFromInt(10)), domainRepo.ErrCustomerNotFound)

	ok, err = s.Customers().DecrementDue(ctx, c.ID, decimal.NewFromInt(11))
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = s.Customers().DecrementDue(ctx, c.ID, decimal.NewFromInt(10))
	require.NoError(t, err)
	assert.True(t, ok)

	again, err := s.Customers().FindOrCreateByPhone(ctx, "Someone Else", "555-0100")
	require.NoError(t, err)
	assert.Equal(t, c.ID, again.ID)
	assert.True(t, again.DueAmount.IsZero())
}

func TestIdempotency_CreateOnceAndPurge(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	outletID := uuid.New()

	live := &entity.IdempotencyKey{OutletID: outletID, ActorID: "user-1", Key: "k1", ExpiresAt: time.Now().Add(time.Hour)}
	stored, err := s.Idempotency().Create(ctx, live)
	require.NoError(t, err)
	assert.True(t, stored)

	stored, err = s.Idempotency().Create(ctx, &entity.IdempotencyKey{OutletID: outletID, ActorID: "user-1", Key: "k1", ExpiresAt: time.Now().Add(time.Hour)})
	require.NoError(t, err)
	assert.False(t, stored)

	stale := &entity.IdempotencyKey{OutletID: outletID, ActorID: "user-1", Key: "k2", ExpiresAt: time.Now().Add(-time.Minute)}
	_, err = s.Idempotency().Create(ctx, stale)
	require.NoError(t, err)

	n, err := s.Idempotency().DeleteExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	got, err := s.Idempotency().GetByKey(ctx, outletID, "user-1", "k1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, live.ID, got.ID)
}
