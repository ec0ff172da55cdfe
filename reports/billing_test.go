package reports

import (
	"testing"
	"time"

	"clinicore-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func billedInvoice(number, status string, total, paid string, items ...models.LineItem) models.Invoice {
	t := d(total)
	p := d(paid)
	return models.Invoice{
		InvoiceNumber: number,
		Status:        status,
		Total:         t,
		PaidTotal:     p,
		Balance:       t.Sub(p),
		Items:         items,
	}
}

func TestSummary(t *testing.T) {
	invoices := []models.Invoice{
		billedInvoice("INV2026000001", models.InvoicePaid, "195.00", "195.00",
			models.LineItem{Type: models.ItemConsultation, NetAmount: d("100.00")},
			models.LineItem{Type: models.ItemLaboratory, NetAmount: d("95.00")},
		),
		billedInvoice("INV2026000002", models.InvoicePartial, "80.00", "30.00",
			models.LineItem{Type: models.ItemPharmacy, NetAmount: d("80.00")},
		),
		billedInvoice("INV2026000003", models.InvoicePartial, "120.00", "60.00",
			models.LineItem{Type: models.ItemConsultation, NetAmount: d("120.00")},
		),
	}

	sum := Summary(invoices)

	assert.Equal(t, 3, sum.InvoiceCount)
	assert.Equal(t, "395.00", sum.TotalBilled.StringFixed(2))
	assert.Equal(t, "285.00", sum.TotalPaid.StringFixed(2))

	partial := sum.ByStatus[models.InvoicePartial]
	assert.Equal(t, 2, partial.Count)
	assert.Equal(t, "200.00", partial.TotalAmount.StringFixed(2))
	assert.Equal(t, "110.00", partial.Balance.StringFixed(2))

	assert.Equal(t, "220.00", sum.RevenueByType[models.ItemConsultation].StringFixed(2))
	assert.Equal(t, "95.00", sum.RevenueByType[models.ItemLaboratory].StringFixed(2))
	assert.Equal(t, "80.00", sum.RevenueByType[models.ItemPharmacy].StringFixed(2))
}

func TestSummaryEmpty(t *testing.T) {
	sum := Summary(nil)
	assert.Equal(t, 0, sum.InvoiceCount)
	assert.True(t, sum.TotalBilled.IsZero())
	assert.Empty(t, sum.ByStatus)
}

func TestDetailed(t *testing.T) {
	due := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	inv := billedInvoice("INV2026000004", models.InvoiceSent, "50.00", "0.00")
	inv.PatientID = 9
	inv.DueDate = due

	rows := Detailed([]models.Invoice{inv})
	require.Len(t, rows, 1)
	assert.Equal(t, "INV2026000004", rows[0].InvoiceNumber)
	assert.Equal(t, uint(9), rows[0].PatientID)
	assert.Equal(t, "50.00", rows[0].Balance.StringFixed(2))
	assert.Equal(t, due, rows[0].DueDate)
}
