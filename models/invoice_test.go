package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestLineItemComputeAmounts(t *testing.T) {
	tests := []struct {
		name         string
		item         LineItem
		wantDiscount string
		wantTax      string
		wantNet      string
	}{
		{
			name:         "plain quantity times price",
			item:         LineItem{Quantity: 3, UnitPrice: d("45.00")},
			wantDiscount: "0.00",
			wantTax:      "0.00",
			wantNet:      "135.00",
		},
		{
			name:         "discount applied before tax",
			item:         LineItem{Quantity: 2, UnitPrice: d("100.00"), DiscountPct: d("10"), TaxPct: d("20")},
			wantDiscount: "20.00",
			wantTax:      "36.00",
			wantNet:      "216.00",
		},
		{
			name:         "fractional prices round to cents",
			item:         LineItem{Quantity: 3, UnitPrice: d("33.33"), TaxPct: d("7.5")},
			wantDiscount: "0.00",
			wantTax:      "7.50",
			wantNet:      "107.49",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.item.ComputeAmounts()
			assert.Equal(t, tt.wantDiscount, tt.item.DiscountAmount.StringFixed(2))
			assert.Equal(t, tt.wantTax, tt.item.TaxAmount.StringFixed(2))
			assert.Equal(t, tt.wantNet, tt.item.NetAmount.StringFixed(2))
		})
	}
}

func TestDeriveInvoiceStatus(t *testing.T) {
	tests := []struct {
		name    string
		current string
		paid    string
		total   string
		want    string
	}{
		{"nothing paid keeps draft", InvoiceDraft, "0", "195.00", InvoiceDraft},
		{"nothing paid keeps sent", InvoiceSent, "0", "195.00", InvoiceSent},
		{"partial payment", InvoiceSent, "100.00", "195.00", InvoicePartial},
		{"exact payment", InvoiceSent, "195.00", "195.00", InvoicePaid},
		{"already partial stays partial", InvoicePartial, "150.00", "195.00", InvoicePartial},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DeriveInvoiceStatus(tt.current, d(tt.paid), d(tt.total))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRecomputeSubtotalMatchesItemSum(t *testing.T) {
	items := []LineItem{
		{Quantity: 1, UnitPrice: d("100.00")},
		{Quantity: 2, UnitPrice: d("30.00"), TaxPct: d("5")},
		{Quantity: 1, UnitPrice: d("33.25"), DiscountPct: d("10")},
	}
	sum := decimal.Zero
	for i := range items {
		items[i].ComputeAmounts()
		sum = sum.Add(items[i].NetAmount)
	}

	inv := Invoice{Status: InvoiceSent, Items: items}
	inv.Recompute(time.Now())

	assert.True(t, inv.Subtotal.Equal(sum), "subtotal %s != item sum %s", inv.Subtotal, sum)
	assert.True(t, inv.Total.Equal(inv.Subtotal))
	assert.True(t, inv.Balance.Equal(inv.Total.Sub(inv.PaidTotal)))
}

func TestRecomputePaymentScenario(t *testing.T) {
	// Invoice of 195.00, paid with 100.00 then 95.00.
	item := LineItem{Quantity: 1, UnitPrice: d("195.00")}
	item.ComputeAmounts()
	inv := Invoice{Status: InvoiceSent, Items: []LineItem{item}}
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	inv.Recompute(now)
	require.Equal(t, "195.00", inv.Total.StringFixed(2))

	inv.Payments = append(inv.Payments, Payment{Amount: d("100.00"), PaidAt: now})
	inv.Recompute(now)
	assert.Equal(t, InvoicePartial, inv.Status)
	assert.Equal(t, "95.00", inv.Balance.StringFixed(2))
	assert.Nil(t, inv.PaidAt)

	later := now.Add(time.Hour)
	inv.Payments = append(inv.Payments, Payment{Amount: d("95.00"), PaidAt: later})
	inv.Recompute(later)
	assert.Equal(t, InvoicePaid, inv.Status)
	assert.Equal(t, "0.00", inv.Balance.StringFixed(2))
	require.NotNil(t, inv.PaidAt)
	assert.Equal(t, later, *inv.PaidAt)
	assert.True(t, inv.Balance.GreaterThanOrEqual(decimal.Zero))
}

func TestRecomputeCancelledKeepsStatus(t *testing.T) {
	item := LineItem{Quantity: 1, UnitPrice: d("50.00")}
	item.ComputeAmounts()
	inv := Invoice{Status: InvoiceCancelled, Items: []LineItem{item}}
	inv.Recompute(time.Now())
	assert.Equal(t, InvoiceCancelled, inv.Status)
}
