package service

import (
	"context"
	"testing"

	"github.com/sangkips/tableside-api/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSettingsService_UpdateSettings(t *testing.T) {
	f := newFixture(t)
	settings := NewSettingsService(f.store.Outlets(), zap.NewNop())

	pct := dec("16")
	outlet, err := settings.UpdateSettings(f.ctx, &UpdateSettingsInput{
		Currency:          " kes ",
		DefaultTaxPercent: &pct,
		TaxLabel:          "VAT",
		ReceiptFooter:     "Karibu tena",
	})
	require.NoError(t, err)
	assert.Equal(t, "KES", outlet.Settings.Currency)

	stored, err := settings.GetSettings(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, "VAT", stored.Settings.TaxLabel)
	assert.True(t, stored.Settings.TaxPercent(dec("0")).Equal(pct))

	bill, err := f.bills.PreviewBill(f.ctx, &CreateBillInput{
		Lines: []BillLineInput{{Name: "Chai", UnitPrice: dec("100"), Quantity: 1}},
	})
	require.NoError(t, err)
	assert.True(t, bill.Total.Equal(dec("116")), bill.Total.String())
}

func TestSettingsService_Validation(t *testing.T) {
	f := newFixture(t)
	settings := NewSettingsService(f.store.Outlets(), zap.NewNop())

	negative := dec("-1")
	_, err := settings.UpdateSettings(f.ctx, &UpdateSettingsInput{Currency: "shilling", DefaultTaxPercent: &negative})
	require.Error(t, err)
	appErr := apperror.GetAppError(err)
	assert.Equal(t, apperror.KindValidation, appErr.Kind)
	assert.Len(t, appErr.Errors, 2)

	_, err = settings.GetSettings(context.Background())
	assert.Equal(t, apperror.KindBadRequest, apperror.KindOf(err))
}
