package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Patient struct {
	ID        uint       `json:"id" gorm:"primaryKey"`
	FirstName string     `json:"first_name" gorm:"not null"`
	LastName  string     `json:"last_name" gorm:"not null"`
	BirthDate *time.Time `json:"birth_date"`
	Phone     string     `json:"phone"`
	Email     string     `json:"email"`

	Policies []InsurancePolicy `json:"policies,omitempty" gorm:"foreignKey:PatientID"`

	CreatedAt time.Time `json:"created_at"`
}

// InsuranceProvider is the payer. ReimbursementRate is the contracted
// percentage of billed amount the payer covers; zero means "not contracted",
// which callers resolve to the configured default (80).
type InsuranceProvider struct {
	ID                uint            `json:"id" gorm:"primaryKey"`
	Name              string          `json:"name" gorm:"not null;unique"`
	Code              string          `json:"code" gorm:"not null;unique"`
	ReimbursementRate decimal.Decimal `json:"reimbursement_rate" gorm:"type:numeric(5,2)"`
	Active            bool            `json:"active" gorm:"default:true"`
}

// EffectiveReimbursementRate resolves an unset contracted rate to def.
func (p InsuranceProvider) EffectiveReimbursementRate(def decimal.Decimal) decimal.Decimal {
	if p.ReimbursementRate.IsZero() {
		return def
	}
	return p.ReimbursementRate
}

type InsurancePolicy struct {
	ID           uint              `json:"id" gorm:"primaryKey"`
	PatientID    uint              `json:"patient_id" gorm:"not null;index"`
	ProviderID   uint              `json:"provider_id" gorm:"not null"`
	Provider     InsuranceProvider `json:"provider" gorm:"foreignKey:ProviderID"`
	PolicyNumber string            `json:"policy_number" gorm:"not null"`
	GroupNumber  string            `json:"group_number"`
	Deductible   decimal.Decimal   `json:"deductible" gorm:"type:numeric(12,2)"`
	Copay        decimal.Decimal   `json:"copay" gorm:"type:numeric(12,2)"`
	Primary      bool              `json:"primary"`
	Active       bool              `json:"active" gorm:"default:true"`
	CreatedAt    time.Time         `json:"created_at"`
}
