package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Invoice statuses. Cancelled is a status, never a row deletion.
const (
	InvoiceDraft     = "draft"
	InvoiceSent      = "sent"
	InvoicePartial   = "partial"
	InvoicePaid      = "paid"
	InvoiceCancelled = "cancelled"
)

// Line item types.
const (
	ItemConsultation = "consultation"
	ItemLaboratory   = "laboratory"
	ItemPharmacy     = "pharmacy"
	ItemProcedure    = "procedure"
	ItemOther        = "other"
)

// Invoice is the current/live state of a patient billing document.
// Balance and Status are derived; Recompute keeps them consistent with the
// triggering write inside the same transaction.
type Invoice struct {
	ID            uint    `json:"id" gorm:"primaryKey"`
	InvoiceNumber string  `json:"invoice_number" gorm:"unique;not null"`
	PatientID     uint    `json:"patient_id" gorm:"not null;index"`
	Patient       Patient `json:"patient" gorm:"foreignKey:PatientID"`

	// Source references (scheduling/encounter modules own these).
	EncounterRef   string `json:"encounter_ref,omitempty"`
	AppointmentRef string `json:"appointment_ref,omitempty"`

	Items []LineItem `json:"items" gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE"`

	Subtotal      decimal.Decimal `json:"subtotal" gorm:"type:numeric(12,2)"`
	DiscountTotal decimal.Decimal `json:"discount_total" gorm:"type:numeric(12,2)"`
	TaxTotal      decimal.Decimal `json:"tax_total" gorm:"type:numeric(12,2)"`
	Total         decimal.Decimal `json:"total" gorm:"type:numeric(12,2)"`

	// Insurance is the invoice-embedded split. Absent means the patient had
	// no active primary policy at build time. Deliberately decoupled from the
	// full InsuranceClaim entity.
	Insurance *InvoiceInsurance `json:"insurance,omitempty" gorm:"type:jsonb;serializer:json"`

	Payments  []Payment       `json:"payments" gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE"`
	PaidTotal decimal.Decimal `json:"paid_total" gorm:"type:numeric(12,2)"`
	Balance   decimal.Decimal `json:"balance" gorm:"type:numeric(12,2)"`

	Status  string     `json:"status" gorm:"not null;index"`
	DueDate time.Time  `json:"due_date"`
	PaidAt  *time.Time `json:"paid_at"`

	// Version guards concurrent read-modify-write cycles.
	Version   int       `json:"-" gorm:"not null;default:1"`
	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type LineItem struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	InvoiceID   uint   `json:"-" gorm:"index"`
	Type        string `json:"type" gorm:"not null;index"`
	ServiceCode string `json:"service_code"`
	Description string `json:"description"`

	Quantity       int             `json:"quantity" gorm:"not null"`
	UnitPrice      decimal.Decimal `json:"unit_price" gorm:"type:numeric(12,2)"`
	DiscountPct    decimal.Decimal `json:"discount_pct" gorm:"type:numeric(5,2)"`
	DiscountAmount decimal.Decimal `json:"discount_amount" gorm:"type:numeric(12,2)"`
	TaxPct         decimal.Decimal `json:"tax_pct" gorm:"type:numeric(5,2)"`
	TaxAmount      decimal.Decimal `json:"tax_amount" gorm:"type:numeric(12,2)"`
	NetAmount      decimal.Decimal `json:"net_amount" gorm:"type:numeric(12,2)"`
}

// ComputeAmounts fills the derived money fields from quantity, unit price and
// the percentage rates. netAmount = qty*unitPrice - discount + tax.
func (li *LineItem) ComputeAmounts() {
	gross := li.UnitPrice.Mul(decimal.NewFromInt(int64(li.Quantity)))
	li.DiscountAmount = gross.Mul(li.DiscountPct).Div(decimal.NewFromInt(100)).Round(2)
	taxable := gross.Sub(li.DiscountAmount)
	li.TaxAmount = taxable.Mul(li.TaxPct).Div(decimal.NewFromInt(100)).Round(2)
	li.NetAmount = gross.Sub(li.DiscountAmount).Add(li.TaxAmount).Round(2)
}

// Payment is append-only; rows are never mutated after creation.
type Payment struct {
	ID          uint            `json:"id" gorm:"primaryKey"`
	InvoiceID   uint            `json:"invoice_id" gorm:"index:idx_payments_invoice_paid_at,priority:1"`
	Amount      decimal.Decimal `json:"amount" gorm:"type:numeric(12,2)"`
	Method      string          `json:"method" gorm:"not null"`
	Reference   string          `json:"reference"`
	ProcessedBy string          `json:"processed_by"`
	Note        string          `json:"note"`
	PaidAt      time.Time       `json:"paid_at" gorm:"index:idx_payments_invoice_paid_at,priority:2"`
	CreatedAt   time.Time       `json:"created_at"`
}

// Invoice-embedded claim states (simplified, distinct from the full
// InsuranceClaim lifecycle).
const (
	InvoiceClaimNotSubmitted = "not_submitted"
	InvoiceClaimSubmitted    = "submitted"
	InvoiceClaimApproved     = "approved"
	InvoiceClaimRejected     = "rejected"
	InvoiceClaimPaid         = "paid"
)

// InvoiceInsurance is the lightweight coverage split carried on the invoice
// itself, stored as jsonb.
type InvoiceInsurance struct {
	ProviderID            uint            `json:"provider_id"`
	ProviderName          string          `json:"provider_name"`
	PolicyNumber          string          `json:"policy_number"`
	CoveragePct           decimal.Decimal `json:"coverage_pct"`
	CoverageAmount        decimal.Decimal `json:"coverage_amount"`
	PatientResponsibility decimal.Decimal `json:"patient_responsibility"`
	ClaimStatus           string          `json:"claim_status"`
	SubmittedAt           *time.Time      `json:"submitted_at,omitempty"`
}

// DeriveInvoiceStatus is the pure status function of (paidTotal, total).
// A zero paid total keeps the current draft/sent state.
func DeriveInvoiceStatus(current string, paidTotal, total decimal.Decimal) string {
	switch {
	case paidTotal.IsZero():
		return current
	case paidTotal.LessThan(total):
		return InvoicePartial
	default:
		return InvoicePaid
	}
}

// Recompute rebuilds subtotal, totals, balance and status from the line
// items and payments. now stamps PaidAt on the transition to paid.
func (inv *Invoice) Recompute(now time.Time) {
	subtotal := decimal.Zero
	discount := decimal.Zero
	tax := decimal.Zero
	for _, it := range inv.Items {
		subtotal = subtotal.Add(it.NetAmount)
		discount = discount.Add(it.DiscountAmount)
		tax = tax.Add(it.TaxAmount)
	}
	inv.Subtotal = subtotal.Round(2)
	inv.DiscountTotal = discount.Round(2)
	inv.TaxTotal = tax.Round(2)
	inv.Total = inv.Subtotal

	paid := decimal.Zero
	for _, p := range inv.Payments {
		paid = paid.Add(p.Amount)
	}
	inv.PaidTotal = paid.Round(2)
	inv.Balance = inv.Total.Sub(inv.PaidTotal).Round(2)

	if inv.Status == InvoiceCancelled {
		return
	}
	next := DeriveInvoiceStatus(inv.Status, inv.PaidTotal, inv.Total)
	if next == InvoicePaid && inv.Status != InvoicePaid {
		ts := now
		inv.PaidAt = &ts
	}
	inv.Status = next
}
