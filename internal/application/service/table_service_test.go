package service

import (
	"testing"

	"github.com/google/uuid"
	"github.com/sangkips/tableside-api/internal/domain/enum"
	"github.com/sangkips/tableside-api/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTableSummary(t *testing.T) {
	f := newFixture(t)
	f.tableOrder(t, line("Tea", "2.00", 2), line("Bread", "1.50", 1))
	second := f.tableOrder(t, line("Tea", "2.00", 1))
	cancelled := f.tableOrder(t, line("Cake", "4.00", 1))
	_, err := f.orders.TransitionOrder(f.ctx, second.ID, enum.OrderStatusPreparing)
	require.NoError(t, err)
	_, err = f.orders.TransitionOrder(f.ctx, cancelled.ID, enum.OrderStatusCancelled)
	require.NoError(t, err)

	summary, err := f.tables.Summary(f.ctx, f.table.ID)
	require.NoError(t, err)

	assert.Equal(t, 2, summary.PendingCount)
	assert.Equal(t, "7.50", summary.OutstandingAmount.StringFixed(2))
	require.Len(t, summary.Lines, 2)
	assert.Equal(t, "Tea", summary.Lines[0].Name)
	assert.Equal(t, 3, summary.Lines[0].Quantity)
	assert.Equal(t, "6.00", summary.Lines[0].Total.StringFixed(2))

	active, err := f.tables.ListActiveOrders(f.ctx, f.table.ID)
	require.NoError(t, err)
	assert.Len(t, active, 2)

	again, err := f.tables.Summary(f.ctx, f.table.ID)
	require.NoError(t, err)
	assert.Equal(t, summary.OutstandingAmount.String(), again.OutstandingAmount.String())
}

func TestTableSummary_UnknownTable(t *testing.T) {
	f := newFixture(t)

	_, err := f.tables.Summary(f.ctx, uuid.New())
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
}
