package billing

import (
	"errors"
	"fmt"
	"time"

	"clinicore-backend/apperr"
	"clinicore-backend/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PaymentInput is one payment to apply against an invoice.
type PaymentInput struct {
	Method    string          `json:"method" validate:"required"`
	Amount    decimal.Decimal `json:"amount"`
	Reference string          `json:"reference"`
	Note      string          `json:"note"`
}

// loadInvoice fetches an invoice with its items and payments.
func loadInvoice(tx *gorm.DB, id uint) (*models.Invoice, error) {
	var inv models.Invoice
	err := tx.Preload("Items").Preload("Payments").First(&inv, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("invoice %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("load invoice: %w", err)
	}
	return &inv, nil
}

// applyPayment validates and applies one payment against the in-memory
// invoice, returning the appended payment. On error the invoice is left
// untouched.
func applyPayment(inv *models.Invoice, in PaymentInput, processedBy string, now time.Time) (models.Payment, error) {
	if !in.Amount.IsPositive() {
		return models.Payment{}, apperr.Validation("payment amount must be positive")
	}
	if inv.Status == models.InvoiceCancelled {
		return models.Payment{}, apperr.StateConflict("invoice %s is cancelled", inv.InvoiceNumber)
	}
	if inv.PaidTotal.Add(in.Amount).GreaterThan(inv.Total) {
		return models.Payment{}, apperr.Overpayment("payment of %s exceeds outstanding balance %s",
			in.Amount.StringFixed(2), inv.Balance.StringFixed(2))
	}

	payment := models.Payment{
		InvoiceID:   inv.ID,
		Amount:      in.Amount.Round(2),
		Method:      in.Method,
		Reference:   in.Reference,
		ProcessedBy: processedBy,
		Note:        in.Note,
		PaidAt:      now,
	}
	inv.Payments = append(inv.Payments, payment)
	inv.Recompute(now)
	return payment, nil
}

// RecordPayment appends an immutable payment and recomputes the invoice's
// paid total, balance and status in the same transaction. The invoice row is
// updated under a version guard so racing payments cannot lose updates; a
// failed guard surfaces as a state conflict and the caller retries.
func RecordPayment(tx *gorm.DB, invoiceID uint, in PaymentInput, processedBy string, now time.Time) (*models.Invoice, error) {
	inv, err := loadInvoice(tx, invoiceID)
	if err != nil {
		return nil, err
	}

	payment, err := applyPayment(inv, in, processedBy, now)
	if err != nil {
		return nil, err
	}
	if err := tx.Create(&payment).Error; err != nil {
		return nil, fmt.Errorf("persist payment: %w", err)
	}

	if err := casUpdateInvoice(tx, inv, "paid_total", "balance", "status", "paid_at"); err != nil {
		return nil, err
	}
	return inv, nil
}

// markCancelled validates and applies cancellation in memory. Only invoices
// with no recorded payments can be voided; Recompute keeps the status sticky
// afterwards.
func markCancelled(inv *models.Invoice) error {
	switch inv.Status {
	case models.InvoiceCancelled:
		return apperr.StateConflict("invoice %s is already cancelled", inv.InvoiceNumber)
	case models.InvoicePaid:
		return apperr.StateConflict("invoice %s is paid and cannot be cancelled", inv.InvoiceNumber)
	}
	if inv.PaidTotal.IsPositive() {
		return apperr.StateConflict("invoice %s has recorded payments and cannot be cancelled", inv.InvoiceNumber)
	}
	inv.Status = models.InvoiceCancelled
	return nil
}

// CancelInvoice voids an unpaid invoice under the version guard.
func CancelInvoice(tx *gorm.DB, invoiceID uint) (*models.Invoice, error) {
	inv, err := loadInvoice(tx, invoiceID)
	if err != nil {
		return nil, err
	}
	if err := markCancelled(inv); err != nil {
		return nil, err
	}
	if err := casUpdateInvoice(tx, inv, "status"); err != nil {
		return nil, err
	}
	return inv, nil
}

// SubmitInsurance marks the invoice-embedded insurance block submitted. This
// lightweight trail is deliberately decoupled from the InsuranceClaim entity;
// callers using both keep them consistent by convention.
func SubmitInsurance(tx *gorm.DB, invoiceID uint, now time.Time) (*models.Invoice, error) {
	inv, err := loadInvoice(tx, invoiceID)
	if err != nil {
		return nil, err
	}
	if inv.Insurance == nil {
		return nil, apperr.Validation("invoice %s carries no insurance information", inv.InvoiceNumber)
	}
	if inv.Insurance.ClaimStatus != models.InvoiceClaimNotSubmitted {
		return nil, apperr.Validation("insurance for invoice %s already submitted", inv.InvoiceNumber)
	}

	inv.Insurance.ClaimStatus = models.InvoiceClaimSubmitted
	ts := now
	inv.Insurance.SubmittedAt = &ts

	if err := casUpdateInvoice(tx, inv, "insurance"); err != nil {
		return nil, err
	}
	return inv, nil
}

// UpdateInsuranceStatus advances the embedded insurance block's simplified
// status (submitted -> approved/rejected -> paid).
func UpdateInsuranceStatus(tx *gorm.DB, invoiceID uint, status string) (*models.Invoice, error) {
	allowed := map[string][]string{
		models.InvoiceClaimSubmitted: {models.InvoiceClaimApproved, models.InvoiceClaimRejected},
		models.InvoiceClaimApproved:  {models.InvoiceClaimPaid},
	}

	inv, err := loadInvoice(tx, invoiceID)
	if err != nil {
		return nil, err
	}
	if inv.Insurance == nil {
		return nil, apperr.Validation("invoice %s carries no insurance information", inv.InvoiceNumber)
	}
	ok := false
	for _, next := range allowed[inv.Insurance.ClaimStatus] {
		if next == status {
			ok = true
			break
		}
	}
	if !ok {
		return nil, apperr.StateConflict("insurance status cannot move from %s to %s",
			inv.Insurance.ClaimStatus, status)
	}

	inv.Insurance.ClaimStatus = status
	if err := casUpdateInvoice(tx, inv, "insurance"); err != nil {
		return nil, err
	}
	return inv, nil
}

// casUpdateInvoice writes the named fields guarded by the version the
// invoice was read at, bumping it on success. Zero rows affected means a
// concurrent writer got there first; the enclosing request TX rolls back and
// the invoice is left unchanged.
func casUpdateInvoice(tx *gorm.DB, inv *models.Invoice, fields ...string) error {
	prev := inv.Version
	inv.Version = prev + 1
	res := tx.Model(&models.Invoice{}).
		Where("id = ? AND version = ?", inv.ID, prev).
		Select(append(fields, "version")).
		Updates(inv)
	if res.Error != nil {
		inv.Version = prev
		return fmt.Errorf("update invoice: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		inv.Version = prev
		return apperr.StateConflict("invoice %s was modified concurrently, retry", inv.InvoiceNumber)
	}
	return nil
}
