package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"clinicore-backend/apperr"
	"clinicore-backend/config"
	"clinicore-backend/database"
	"clinicore-backend/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ConsultationSource bills the encounter's consultation fee. Fee is the
// caller-supplied fallback used when the catalog has no Consultation entry.
type ConsultationSource struct {
	Fee decimal.Decimal `json:"fee"`
}

// AdHocItem is a caller-priced procedure or free-form additional item.
type AdHocItem struct {
	Code        string          `json:"code"`
	Description string          `json:"description" validate:"required"`
	Quantity    int             `json:"quantity" validate:"required"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	DiscountPct decimal.Decimal `json:"discount_pct"`
	TaxPct      decimal.Decimal `json:"tax_pct"`
}

// BuildRequest names the billable sources for one invoice.
type BuildRequest struct {
	PatientID      uint   `json:"patient_id" validate:"required"`
	EncounterRef   string `json:"encounter_ref"`
	AppointmentRef string `json:"appointment_ref"`
	MarkDraft      bool   `json:"mark_draft"`

	Consultation    *ConsultationSource `json:"consultation"`
	LabOrderIDs     []uint              `json:"lab_order_ids"`
	PrescriptionIDs []uint              `json:"prescription_ids"`
	Procedures      []AdHocItem         `json:"procedures"`
	AdditionalItems []AdHocItem         `json:"additional_items"`
}

// Builder assembles invoices from heterogeneous billable sources.
type Builder struct {
	resolver PriceResolver
	cfg      config.Billing
	now      func() time.Time
}

func NewBuilder(resolver PriceResolver, cfg config.Billing) *Builder {
	return &Builder{resolver: resolver, cfg: cfg, now: time.Now}
}

// Sources are the resolved clinical records a build expands. Resolution from
// IDs is strict: a dangling lab order or prescription reference rejects the
// build before anything is persisted.
type Sources struct {
	Consultation    *ConsultationSource
	LabOrders       []models.LabOrder
	Prescriptions   []models.Prescription
	Procedures      []AdHocItem
	AdditionalItems []AdHocItem
}

// AssembleItems expands the sources into priced line items. Catalog misses
// degrade to the configured default price table; they never fail the build.
func (b *Builder) AssembleItems(ctx context.Context, src Sources) ([]models.LineItem, error) {
	var items []models.LineItem

	if src.Consultation != nil {
		item := models.LineItem{
			Type:        models.ItemConsultation,
			Description: "Consultation",
			Quantity:    1,
		}
		if q, ok := b.resolver.Resolve(ctx, DeptConsultation, "Consultation"); ok {
			item.ServiceCode = q.Code
			item.Description = q.Name
			item.UnitPrice = q.Price
		} else if src.Consultation.Fee.IsPositive() {
			item.UnitPrice = src.Consultation.Fee
		} else {
			item.UnitPrice = b.cfg.DefaultConsultationPrice
		}
		item.ComputeAmounts()
		items = append(items, item)
	}

	// One line item per contained test; duplicate test names across orders
	// are distinct tests and each bill.
	for _, order := range src.LabOrders {
		for _, test := range order.Tests {
			item := models.LineItem{
				Type:        models.ItemLaboratory,
				Description: test,
				Quantity:    1,
			}
			if q, ok := b.resolver.Resolve(ctx, DeptLaboratory, test); ok {
				item.ServiceCode = q.Code
				item.UnitPrice = q.Price
			} else {
				item.UnitPrice = b.cfg.DefaultLabTestPrice
			}
			item.ComputeAmounts()
			items = append(items, item)
		}
	}

	for _, rx := range src.Prescriptions {
		for _, med := range rx.Medications {
			qty := med.Quantity
			if qty < 1 {
				qty = 1
			}
			item := models.LineItem{
				Type:        models.ItemPharmacy,
				Description: med.Name,
				Quantity:    qty,
			}
			if q, ok := b.resolver.Resolve(ctx, DeptPharmacy, med.Name); ok {
				item.ServiceCode = q.Code
				item.UnitPrice = q.Price
			} else {
				item.UnitPrice = b.cfg.DefaultMedicationPrice
			}
			item.ComputeAmounts()
			items = append(items, item)
		}
	}

	for i, p := range src.Procedures {
		item, err := adHocLineItem(p, models.ItemProcedure, "procedure", i)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	for i, a := range src.AdditionalItems {
		item, err := adHocLineItem(a, models.ItemOther, "additional item", i)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	if len(items) == 0 {
		return nil, apperr.Validation("invoice has no billable items")
	}
	return items, nil
}

func adHocLineItem(src AdHocItem, itemType, label string, idx int) (models.LineItem, error) {
	if src.Quantity <= 0 {
		return models.LineItem{}, apperr.Validation("invalid quantity on %s %d", label, idx)
	}
	if !src.UnitPrice.IsPositive() {
		return models.LineItem{}, apperr.Validation("invalid unit price on %s %d", label, idx)
	}
	item := models.LineItem{
		Type:        itemType,
		ServiceCode: src.Code,
		Description: src.Description,
		Quantity:    src.Quantity,
		UnitPrice:   src.UnitPrice,
		DiscountPct: src.DiscountPct,
		TaxPct:      src.TaxPct,
	}
	item.ComputeAmounts()
	return item, nil
}

// ComputeInsurance derives the invoice-embedded coverage split from the
// patient's active primary policy. A nil policy yields nil: no insurance
// block is attached and the patient owes the full subtotal.
func ComputeInsurance(subtotal decimal.Decimal, policy *models.InsurancePolicy, defaultRate decimal.Decimal) *models.InvoiceInsurance {
	if policy == nil {
		return nil
	}
	pct := policy.Provider.EffectiveReimbursementRate(defaultRate)
	coverage := subtotal.Mul(pct).Div(decimal.NewFromInt(100)).Round(2)
	responsibility := subtotal.Sub(coverage).Add(policy.Deductible).Round(2)
	return &models.InvoiceInsurance{
		ProviderID:            policy.ProviderID,
		ProviderName:          policy.Provider.Name,
		PolicyNumber:          policy.PolicyNumber,
		CoveragePct:           pct,
		CoverageAmount:        coverage,
		PatientResponsibility: responsibility,
		ClaimStatus:           models.InvoiceClaimNotSubmitted,
	}
}

// Build resolves the request's references, assembles and prices the line
// items, and persists the invoice with an atomically minted number.
func (b *Builder) Build(ctx context.Context, tx *gorm.DB, req BuildRequest, createdBy string) (*models.Invoice, error) {
	var patient models.Patient
	if err := tx.First(&patient, req.PatientID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("patient %d not found", req.PatientID)
		}
		return nil, fmt.Errorf("load patient: %w", err)
	}

	src := Sources{
		Consultation:    req.Consultation,
		Procedures:      req.Procedures,
		AdditionalItems: req.AdditionalItems,
	}
	for _, id := range req.LabOrderIDs {
		var order models.LabOrder
		if err := tx.First(&order, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperr.Validation("lab order %d not found", id)
			}
			return nil, fmt.Errorf("load lab order: %w", err)
		}
		src.LabOrders = append(src.LabOrders, order)
	}
	for _, id := range req.PrescriptionIDs {
		var rx models.Prescription
		if err := tx.First(&rx, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperr.Validation("prescription %d not found", id)
			}
			return nil, fmt.Errorf("load prescription: %w", err)
		}
		src.Prescriptions = append(src.Prescriptions, rx)
	}

	items, err := b.AssembleItems(ctx, src)
	if err != nil {
		return nil, err
	}

	now := b.now()
	number, err := database.NextInvoiceNumber(tx, now)
	if err != nil {
		return nil, err
	}

	status := models.InvoiceSent
	if req.MarkDraft {
		status = models.InvoiceDraft
	}
	invoice := &models.Invoice{
		InvoiceNumber:  number,
		PatientID:      patient.ID,
		EncounterRef:   req.EncounterRef,
		AppointmentRef: req.AppointmentRef,
		Items:          items,
		Status:         status,
		DueDate:        now.AddDate(0, 0, b.cfg.InvoiceDueDays),
		CreatedBy:      createdBy,
	}
	invoice.Recompute(now)

	policy, err := activePrimaryPolicy(tx, patient.ID)
	if err != nil {
		return nil, err
	}
	invoice.Insurance = ComputeInsurance(invoice.Subtotal, policy, b.cfg.DefaultReimbursementRate)

	if err := tx.Create(invoice).Error; err != nil {
		return nil, fmt.Errorf("persist invoice: %w", err)
	}
	return invoice, nil
}

func activePrimaryPolicy(tx *gorm.DB, patientID uint) (*models.InsurancePolicy, error) {
	var policy models.InsurancePolicy
	err := tx.Preload("Provider").
		Where(`patient_id = ? AND "primary" AND active`, patientID).
		First(&policy).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load policy: %w", err)
	}
	return &policy, nil
}
