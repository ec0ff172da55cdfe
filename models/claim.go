package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Insurance claim statuses.
const (
	ClaimDraft             = "draft"
	ClaimSubmitted         = "submitted"
	ClaimUnderReview       = "under_review"
	ClaimApproved          = "approved"
	ClaimPartiallyApproved = "partially_approved"
	ClaimDenied            = "denied"
	ClaimPaid              = "paid"
	ClaimRejected          = "rejected"
	ClaimAppealSubmitted   = "appeal_submitted"
	ClaimAppealApproved    = "appeal_approved"
	ClaimAppealDenied      = "appeal_denied"
	ClaimClosed            = "closed"
	ClaimCancelled         = "cancelled"
)

// InsuranceClaim tracks submission of invoiced charges to a payer. It links
// to an invoice but has its own lifecycle; the two are reconciled by business
// convention, not a shared transaction.
type InsuranceClaim struct {
	ID          uint            `json:"id" gorm:"primaryKey"`
	ClaimNumber string          `json:"claim_number" gorm:"unique;not null"`
	PatientID   uint            `json:"patient_id" gorm:"not null;index"`
	PolicyID    uint            `json:"policy_id" gorm:"not null"`
	Policy      InsurancePolicy `json:"policy" gorm:"foreignKey:PolicyID"`
	InvoiceID   uint            `json:"invoice_id" gorm:"not null;index"`

	// ProviderUserID is the submitting clinician's account id.
	ProviderUserID string    `json:"provider_user_id" gorm:"index"`
	ServiceDate    time.Time `json:"service_date"`

	DiagnosisCodes datatypes.JSONSlice[string] `json:"diagnosis_codes" gorm:"type:jsonb"`
	ProcedureCodes datatypes.JSONSlice[string] `json:"procedure_codes" gorm:"type:jsonb"`

	TotalAmount    decimal.Decimal `json:"total_amount" gorm:"type:numeric(12,2)"`
	ApprovedAmount decimal.Decimal `json:"approved_amount" gorm:"type:numeric(12,2)"`
	PaidAmount     decimal.Decimal `json:"paid_amount" gorm:"type:numeric(12,2)"`

	// Patient responsibility breakdown, fixed at creation from the policy and
	// provider contract, then reduced as payer money posts.
	Copay                   decimal.Decimal `json:"copay" gorm:"type:numeric(12,2)"`
	Deductible              decimal.Decimal `json:"deductible" gorm:"type:numeric(12,2)"`
	Coinsurance             decimal.Decimal `json:"coinsurance" gorm:"type:numeric(12,2)"`
	RemainingResponsibility decimal.Decimal `json:"remaining_responsibility" gorm:"type:numeric(12,2)"`

	Status string `json:"status" gorm:"not null;index"`

	// Response is the payer's decision block; absent until the payer answers.
	Response *InsuranceResponse `json:"response,omitempty" gorm:"type:jsonb;serializer:json"`

	History  []ClaimStatusChange `json:"history" gorm:"foreignKey:ClaimID;constraint:OnDelete:CASCADE"`
	Payments []ClaimPayment      `json:"claim_payments" gorm:"foreignKey:ClaimID;constraint:OnDelete:CASCADE"`

	SubmittedAt   *time.Time `json:"submitted_at"`
	LastUpdatedBy string     `json:"last_updated_by"`

	Version   int       `json:"-" gorm:"not null;default:1"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// InsuranceResponse is the payer's explanation of benefits, stored as jsonb.
type InsuranceResponse struct {
	ResponseDate time.Time       `json:"response_date"`
	Explanation  string          `json:"explanation,omitempty"`
	DenialReason string          `json:"denial_reason,omitempty"`
	RateApplied  decimal.Decimal `json:"rate_applied"`
}

// ClaimStatusChange is one append-only audit row. The claim's status always
// equals the NewStatus of its latest row.
type ClaimStatusChange struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	ClaimID        uint      `json:"-" gorm:"index:idx_claim_history_claim_created,priority:1"`
	PreviousStatus string    `json:"previous_status"`
	NewStatus      string    `json:"new_status"`
	Reason         string    `json:"reason"`
	UpdatedBy      string    `json:"updated_by"`
	Notes          string    `json:"notes"`
	CreatedAt      time.Time `json:"timestamp" gorm:"index:idx_claim_history_claim_created,priority:2"`
}

// ClaimPayment is the claim's financial trail; append-only like invoice
// payments.
type ClaimPayment struct {
	ID        uint            `json:"id" gorm:"primaryKey"`
	ClaimID   uint            `json:"claim_id" gorm:"index"`
	Amount    decimal.Decimal `json:"amount" gorm:"type:numeric(12,2)"`
	Reference string          `json:"reference"`
	PostedBy  string          `json:"posted_by"`
	CreatedAt time.Time       `json:"created_at"`
}
