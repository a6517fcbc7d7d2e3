package service

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestPrintBill(t *testing.T) {
	f := newFixture(t)
	input := exampleBill("20.00")
	input.Customer = &BillCustomerInput{Name: "Kofi", Phone: phone}
	bill, err := f.bills.CreateBill(f.ctx, input)
	require.NoError(t, err)

	receipt, err := f.printing.PrintBill(f.ctx, bill.ID)
	require.NoError(t, err)

	assert.Equal(t, "Harbor Grill", receipt.Header.StoreName)
	assert.Equal(t, "1", receipt.BillNo)
	assert.Equal(t, "Kofi", receipt.Customer)
	assert.Equal(t, "Tax 8%", receipt.TaxLabel)
	assert.Equal(t, "24.30", receipt.Total)
	assert.Equal(t, "4.30", receipt.Due)
	require.Len(t, receipt.Items, 2)

	jobs := f.receipts.Jobs()
	require.Len(t, jobs, 1)
	assert.True(t, bytes.Contains(jobs[0], []byte("Harbor Grill")))
	assert.True(t, bytes.Contains(jobs[0], []byte("24.30")))
	assert.False(t, f.printing.GetStatus().Configured)
}

func TestBillPDF(t *testing.T) {
	f := newFixture(t)
	bill, err := f.bills.CreateBill(f.ctx, exampleBill("30.00"))
	require.NoError(t, err)

	pdf, err := f.reports.BillPDF(f.ctx, bill.ID)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF")))
}

func TestSalesWorkbook(t *testing.T) {
	f := newFixture(t)
	for i := 0; i < 2; i++ {
		_, err := f.bills.CreateBill(f.ctx, exampleBill("20.00"))
		require.NoError(t, err)
	}

	data, err := f.reports.SalesWorkbook(f.ctx, nil, nil)
	require.NoError(t, err)

	wb, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer wb.Close()

	rows, err := wb.GetRows(salesSheet)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, "Bill No", rows[0][0])
	assert.Equal(t, "Total", rows[3][0])
}
