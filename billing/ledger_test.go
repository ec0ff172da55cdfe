package billing

import (
	"testing"
	"time"

	"clinicore-backend/apperr"
	"clinicore-backend/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ledgerInvoice(t *testing.T) *models.Invoice {
	t.Helper()
	inv := &models.Invoice{
		InvoiceNumber: "INV2026000042",
		Status:        models.InvoiceSent,
		Items: []models.LineItem{{
			Type: models.ItemConsultation, Description: "Consultation",
			Quantity: 1, UnitPrice: d("195.00"),
		}},
	}
	inv.Items[0].ComputeAmounts()
	inv.Recompute(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	require.Equal(t, "195.00", inv.Total.StringFixed(2))
	return inv
}

func TestApplyPayment(t *testing.T) {
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

	t.Run("partial then final", func(t *testing.T) {
		inv := ledgerInvoice(t)

		p1, err := applyPayment(inv, PaymentInput{Method: "cash", Amount: d("100.00")}, "cashier", now)
		require.NoError(t, err)
		assert.Equal(t, "100.00", p1.Amount.StringFixed(2))
		assert.Equal(t, models.InvoicePartial, inv.Status)
		assert.Equal(t, "95.00", inv.Balance.StringFixed(2))

		_, err = applyPayment(inv, PaymentInput{Method: "card", Amount: d("95.00")}, "cashier", now)
		require.NoError(t, err)
		assert.Equal(t, models.InvoicePaid, inv.Status)
		assert.True(t, inv.Balance.IsZero())
		require.NotNil(t, inv.PaidAt)
	})

	t.Run("overpayment leaves invoice untouched", func(t *testing.T) {
		inv := ledgerInvoice(t)
		_, err := applyPayment(inv, PaymentInput{Method: "cash", Amount: d("200.00")}, "cashier", now)
		require.Error(t, err)
		assert.True(t, apperr.IsKind(err, apperr.KindOverpayment))
		assert.Equal(t, models.InvoiceSent, inv.Status)
		assert.True(t, inv.PaidTotal.IsZero())
		assert.Len(t, inv.Payments, 0)
	})

	t.Run("overpayment after partial", func(t *testing.T) {
		inv := ledgerInvoice(t)
		_, err := applyPayment(inv, PaymentInput{Method: "cash", Amount: d("100.00")}, "cashier", now)
		require.NoError(t, err)

		_, err = applyPayment(inv, PaymentInput{Method: "cash", Amount: d("95.01")}, "cashier", now)
		require.Error(t, err)
		assert.True(t, apperr.IsKind(err, apperr.KindOverpayment))
		assert.Equal(t, "95.00", inv.Balance.StringFixed(2))
	})

	t.Run("non-positive amount rejected", func(t *testing.T) {
		inv := ledgerInvoice(t)
		for _, amt := range []decimal.Decimal{decimal.Zero, d("-10.00")} {
			_, err := applyPayment(inv, PaymentInput{Method: "cash", Amount: amt}, "cashier", now)
			require.Error(t, err)
			assert.True(t, apperr.IsKind(err, apperr.KindValidation))
		}
	})

	t.Run("cancelled invoice rejects payment", func(t *testing.T) {
		inv := ledgerInvoice(t)
		inv.Status = models.InvoiceCancelled
		_, err := applyPayment(inv, PaymentInput{Method: "cash", Amount: d("50.00")}, "cashier", now)
		require.Error(t, err)
		assert.True(t, apperr.IsKind(err, apperr.KindStateConflict))
	})
}

func TestMarkCancelled(t *testing.T) {
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

	t.Run("unpaid invoice cancels and stays cancelled", func(t *testing.T) {
		inv := ledgerInvoice(t)
		require.NoError(t, markCancelled(inv))
		assert.Equal(t, models.InvoiceCancelled, inv.Status)

		inv.Recompute(now)
		assert.Equal(t, models.InvoiceCancelled, inv.Status)
	})

	t.Run("recorded payment blocks cancellation", func(t *testing.T) {
		inv := ledgerInvoice(t)
		_, err := applyPayment(inv, PaymentInput{Method: "cash", Amount: d("100.00")}, "cashier", now)
		require.NoError(t, err)

		err = markCancelled(inv)
		require.Error(t, err)
		assert.True(t, apperr.IsKind(err, apperr.KindStateConflict))
		assert.Equal(t, models.InvoicePartial, inv.Status)
	})

	t.Run("paid and cancelled invoices reject it", func(t *testing.T) {
		for _, status := range []string{models.InvoicePaid, models.InvoiceCancelled} {
			inv := ledgerInvoice(t)
			inv.Status = status
			err := markCancelled(inv)
			require.Error(t, err, status)
			assert.True(t, apperr.IsKind(err, apperr.KindStateConflict), status)
		}
	})
}
