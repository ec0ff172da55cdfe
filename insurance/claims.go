package insurance

import (
	"errors"
	"fmt"
	"time"

	"clinicore-backend/apperr"
	"clinicore-backend/database"
	"clinicore-backend/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CreateClaimRequest opens a claim in Draft against an existing invoice.
type CreateClaimRequest struct {
	PatientID      uint       `json:"patient_id" validate:"required"`
	PolicyID       uint       `json:"policy_id" validate:"required"`
	InvoiceID      uint       `json:"invoice_id" validate:"required"`
	ServiceDate    *time.Time `json:"service_date"`
	DiagnosisCodes []string   `json:"diagnosis_codes" validate:"required,min=1"`
	ProcedureCodes []string   `json:"procedure_codes"`

	// TotalAmount defaults to the invoice total when omitted.
	TotalAmount decimal.Decimal `json:"total_amount"`
}

// ClaimEdit updates a claim's mutable fields while the lifecycle allows it.
type ClaimEdit struct {
	DiagnosisCodes []string         `json:"diagnosis_codes"`
	ProcedureCodes []string         `json:"procedure_codes"`
	TotalAmount    *decimal.Decimal `json:"total_amount"`
	ServiceDate    *time.Time       `json:"service_date"`
}

// Decision carries the payer-side data for a status transition.
type Decision struct {
	Reason         string           `json:"reason"`
	Notes          string           `json:"notes"`
	ApprovedAmount *decimal.Decimal `json:"approved_amount"`
	PaymentAmount  *decimal.Decimal `json:"payment_amount"`
	Explanation    string           `json:"explanation"`
	DenialReason   string           `json:"denial_reason"`
}

// CreateClaim validates the policy and invoice, computes the patient
// responsibility breakdown from the policy's provider contract, and persists
// the claim in Draft with an atomically minted number.
func CreateClaim(tx *gorm.DB, req CreateClaimRequest, providerUserID string, defaultRate decimal.Decimal, now time.Time) (*models.InsuranceClaim, error) {
	var policy models.InsurancePolicy
	if err := tx.Preload("Provider").First(&policy, req.PolicyID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Validation("policy %d not found", req.PolicyID)
		}
		return nil, fmt.Errorf("load policy: %w", err)
	}
	if policy.PatientID != req.PatientID {
		return nil, apperr.Validation("policy %d does not belong to patient %d", req.PolicyID, req.PatientID)
	}
	if !policy.Active {
		return nil, apperr.Validation("policy %s is inactive", policy.PolicyNumber)
	}

	var invoice models.Invoice
	if err := tx.First(&invoice, req.InvoiceID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Validation("invoice %d not found", req.InvoiceID)
		}
		return nil, fmt.Errorf("load invoice: %w", err)
	}
	if invoice.PatientID != req.PatientID {
		return nil, apperr.Validation("invoice %s does not belong to patient %d", invoice.InvoiceNumber, req.PatientID)
	}

	total := req.TotalAmount
	if total.IsZero() {
		total = invoice.Total
	}
	if !total.IsPositive() {
		return nil, apperr.Validation("claim amount must be positive")
	}

	number, err := database.NextClaimNumber(tx, now)
	if err != nil {
		return nil, err
	}

	rate := policy.Provider.EffectiveReimbursementRate(defaultRate)
	serviceDate := now
	if req.ServiceDate != nil {
		serviceDate = *req.ServiceDate
	}

	claim := &models.InsuranceClaim{
		ClaimNumber:    number,
		PatientID:      req.PatientID,
		PolicyID:       policy.ID,
		InvoiceID:      invoice.ID,
		ProviderUserID: providerUserID,
		ServiceDate:    serviceDate,
		DiagnosisCodes: req.DiagnosisCodes,
		ProcedureCodes: req.ProcedureCodes,
		TotalAmount:    total.Round(2),
		Copay:          policy.Copay,
		Deductible:     policy.Deductible,
		Coinsurance:    Coinsurance(total, rate),
		Status:         models.ClaimDraft,
		LastUpdatedBy:  providerUserID,
	}
	claim.RemainingResponsibility = PatientResponsibility(total, rate, policy.Deductible, policy.Copay)

	if err := tx.Create(claim).Error; err != nil {
		return nil, fmt.Errorf("persist claim: %w", err)
	}
	return claim, nil
}

// recomputeRemaining keeps the responsibility breakdown consistent across
// total changes: before any payer money posts the creation formula
// (deductible + copay + coinsurance) applies; once payments exist the
// remaining share is what is left of the total.
func recomputeRemaining(total, rate, deductible, copay, paid decimal.Decimal) decimal.Decimal {
	if paid.IsZero() {
		return PatientResponsibility(total, rate, deductible, copay)
	}
	return RemainingResponsibility(total, paid)
}

// loadClaim fetches a claim without its history; transitions append rows,
// they never rewrite them.
func loadClaim(tx *gorm.DB, id uint) (*models.InsuranceClaim, error) {
	var claim models.InsuranceClaim
	err := tx.Preload("Policy.Provider").First(&claim, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("claim %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("load claim: %w", err)
	}
	return &claim, nil
}

// EditClaim updates mutable claim fields. Frozen once Paid or Closed.
func EditClaim(tx *gorm.DB, id uint, edit ClaimEdit, actorID string, defaultRate decimal.Decimal) (*models.InsuranceClaim, error) {
	claim, err := loadClaim(tx, id)
	if err != nil {
		return nil, err
	}
	if !Editable(claim.Status) {
		return nil, apperr.Validation("claim %s is %s and can no longer be edited", claim.ClaimNumber, claim.Status)
	}

	fields := []string{"last_updated_by"}
	if edit.DiagnosisCodes != nil {
		claim.DiagnosisCodes = edit.DiagnosisCodes
		fields = append(fields, "diagnosis_codes")
	}
	if edit.ProcedureCodes != nil {
		claim.ProcedureCodes = edit.ProcedureCodes
		fields = append(fields, "procedure_codes")
	}
	if edit.ServiceDate != nil {
		claim.ServiceDate = *edit.ServiceDate
		fields = append(fields, "service_date")
	}
	if edit.TotalAmount != nil {
		if !edit.TotalAmount.IsPositive() {
			return nil, apperr.Validation("claim amount must be positive")
		}
		rate := claim.Policy.Provider.EffectiveReimbursementRate(defaultRate)
		claim.TotalAmount = edit.TotalAmount.Round(2)
		claim.Coinsurance = Coinsurance(claim.TotalAmount, rate)
		claim.RemainingResponsibility = recomputeRemaining(claim.TotalAmount, rate,
			claim.Deductible, claim.Copay, claim.PaidAmount)
		fields = append(fields, "total_amount", "coinsurance", "remaining_responsibility")
	}
	claim.LastUpdatedBy = actorID

	if err := casUpdateClaim(tx, claim, fields...); err != nil {
		return nil, err
	}
	return claim, nil
}

// Transition drives one lifecycle step: history row appended, status updated
// under the version guard, decision side effects applied (approved amount,
// payer response block, payment posting on Paid).
func Transition(tx *gorm.DB, id uint, newStatus string, d Decision, actorID string, defaultRate decimal.Decimal, now time.Time) (*models.InsuranceClaim, error) {
	claim, err := loadClaim(tx, id)
	if err != nil {
		return nil, err
	}
	if err := UpdateStatus(claim, newStatus, d.Reason, actorID, d.Notes, now); err != nil {
		return nil, err
	}

	fields := []string{"status", "last_updated_by", "submitted_at"}

	switch newStatus {
	case models.ClaimApproved, models.ClaimPartiallyApproved, models.ClaimAppealApproved:
		approved := claim.TotalAmount
		if d.ApprovedAmount != nil {
			approved = d.ApprovedAmount.Round(2)
		}
		if approved.GreaterThan(claim.TotalAmount) {
			return nil, apperr.Validation("approved amount exceeds claim total")
		}
		claim.ApprovedAmount = approved
		claim.Response = &models.InsuranceResponse{
			ResponseDate: now,
			Explanation:  d.Explanation,
			RateApplied:  claim.Policy.Provider.EffectiveReimbursementRate(defaultRate),
		}
		fields = append(fields, "approved_amount", "response")

	case models.ClaimDenied, models.ClaimRejected, models.ClaimAppealDenied:
		claim.Response = &models.InsuranceResponse{
			ResponseDate: now,
			Explanation:  d.Explanation,
			DenialReason: d.DenialReason,
			RateApplied:  claim.Policy.Provider.EffectiveReimbursementRate(defaultRate),
		}
		fields = append(fields, "response")

	case models.ClaimPaid:
		amount := claim.ApprovedAmount.Sub(claim.PaidAmount)
		if d.PaymentAmount != nil {
			amount = d.PaymentAmount.Round(2)
		}
		if !amount.IsPositive() {
			return nil, apperr.Validation("claim payment amount must be positive")
		}
		payment := models.ClaimPayment{
			ClaimID:  claim.ID,
			Amount:   amount,
			PostedBy: actorID,
		}
		if err := tx.Create(&payment).Error; err != nil {
			return nil, fmt.Errorf("persist claim payment: %w", err)
		}
		claim.PaidAmount = claim.PaidAmount.Add(amount).Round(2)
		claim.RemainingResponsibility = RemainingResponsibility(claim.TotalAmount, claim.PaidAmount)
		fields = append(fields, "paid_amount", "remaining_responsibility")
	}

	// Append the audit row minted by UpdateStatus.
	hist := claim.History[len(claim.History)-1]
	if err := tx.Create(&hist).Error; err != nil {
		return nil, fmt.Errorf("persist claim history: %w", err)
	}

	if err := casUpdateClaim(tx, claim, fields...); err != nil {
		return nil, err
	}
	return claim, nil
}

// casUpdateClaim mirrors the invoice version guard for claims.
func casUpdateClaim(tx *gorm.DB, claim *models.InsuranceClaim, fields ...string) error {
	prev := claim.Version
	claim.Version = prev + 1
	res := tx.Model(&models.InsuranceClaim{}).
		Where("id = ? AND version = ?", claim.ID, prev).
		Select(append(fields, "version")).
		Updates(claim)
	if res.Error != nil {
		claim.Version = prev
		return fmt.Errorf("update claim: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		claim.Version = prev
		return apperr.StateConflict("claim %s was modified concurrently, retry", claim.ClaimNumber)
	}
	return nil
}
