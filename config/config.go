package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// EnvInt reads an int env var with a default fallback.
func EnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

// EnvStr reads a string env var with a default fallback.
func EnvStr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func envDecimal(key string, def string) decimal.Decimal {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if d, err := decimal.NewFromString(v); err == nil {
			return d
		}
	}
	return decimal.RequireFromString(def)
}

// Billing holds the billing-engine policy knobs. Fallback prices are business
// policy, so they stay overridable via env rather than buried as literals.
type Billing struct {
	// CatalogTimeout bounds a single service-catalog price lookup.
	CatalogTimeout time.Duration

	// DefaultConsultationPrice prices a consultation when the catalog has no
	// entry for the department and the caller supplied no fee.
	DefaultConsultationPrice decimal.Decimal

	// DefaultMedicationPrice prices a prescription medication with no
	// Pharmacy catalog match.
	DefaultMedicationPrice decimal.Decimal

	// DefaultLabTestPrice prices a lab test with no catalog match.
	DefaultLabTestPrice decimal.Decimal

	// DefaultReimbursementRate applies when an insurance provider carries no
	// contracted rate.
	DefaultReimbursementRate decimal.Decimal

	// InvoiceDueDays is added to the creation time to produce the due date.
	InvoiceDueDays int
}

// LoadBilling reads billing policy from the environment.
func LoadBilling() Billing {
	return Billing{
		CatalogTimeout:           time.Duration(EnvInt("CATALOG_TIMEOUT_MS", 500)) * time.Millisecond,
		DefaultConsultationPrice: envDecimal("DEFAULT_CONSULTATION_PRICE", "100.00"),
		DefaultMedicationPrice:   envDecimal("DEFAULT_MEDICATION_PRICE", "10.00"),
		DefaultLabTestPrice:      envDecimal("DEFAULT_LAB_TEST_PRICE", "25.00"),
		DefaultReimbursementRate: envDecimal("DEFAULT_REIMBURSEMENT_RATE", "80"),
		InvoiceDueDays:           EnvInt("INVOICE_DUE_DAYS", 30),
	}
}
