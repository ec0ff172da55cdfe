package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// ServiceCatalogEntry maps a billable service or medication to a price.
// Read-only to the billing core; maintained by catalog administration.
type ServiceCatalogEntry struct {
	ID         uint            `json:"id" gorm:"primaryKey"`
	Code       string          `json:"code" gorm:"not null;unique"`
	Name       string          `json:"name" gorm:"not null;index"`
	Department string          `json:"department" gorm:"not null;index"`
	UnitPrice  decimal.Decimal `json:"unit_price" gorm:"type:numeric(12,2)"`
	Active     bool            `json:"active" gorm:"default:true"`
}

// LabOrder groups the tests ordered during one encounter. The billing core
// only reads these; creation belongs to the clinical modules.
type LabOrder struct {
	ID        uint                        `json:"id" gorm:"primaryKey"`
	PatientID uint                        `json:"patient_id" gorm:"not null;index"`
	OrderedBy string                      `json:"ordered_by"`
	Tests     datatypes.JSONSlice[string] `json:"tests" gorm:"type:jsonb"`
	CreatedAt time.Time                   `json:"created_at"`
}

// MedicationLine is one prescribed medication. Quantity below 1 is treated
// as 1 at billing time.
type MedicationLine struct {
	Name     string `json:"name"`
	Dosage   string `json:"dosage,omitempty"`
	Quantity int    `json:"quantity,omitempty"`
}

type Prescription struct {
	ID           uint                                `json:"id" gorm:"primaryKey"`
	PatientID    uint                                `json:"patient_id" gorm:"not null;index"`
	PrescribedBy string                              `json:"prescribed_by"`
	Medications  datatypes.JSONSlice[MedicationLine] `json:"medications" gorm:"type:jsonb"`
	CreatedAt    time.Time                           `json:"created_at"`
}
