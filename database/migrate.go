package database

import (
	"fmt"

	"clinicore-backend/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// Migrate applies (idempotent) schema migrations:
// - AutoMigrate (tables/columns/index tags)
// - Money column types (NUMERIC(12,2))
// - Composite indexes for payments and claim history
// - Basic CHECK constraints on money columns
// - Service catalog seed rows
func Migrate() error {
	return DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.AutoMigrate(
			&models.User{},
			&models.Patient{},
			&models.InsuranceProvider{},
			&models.InsurancePolicy{},
			&models.ServiceCatalogEntry{},
			&models.LabOrder{},
			&models.Prescription{},
			&models.Invoice{},
			&models.LineItem{},
			&models.Payment{},
			&models.InsuranceClaim{},
			&models.ClaimStatusChange{},
			&models.ClaimPayment{},
			&models.Sequence{},
			&models.IdempotencyKey{},
		); err != nil {
			return fmt.Errorf("automigrate failed: %w", err)
		}

		// --- Enforce money columns as NUMERIC(12,2) (idempotent ALTERs) ---
		alters := []string{
			`ALTER TABLE service_catalog_entries ALTER COLUMN unit_price TYPE numeric(12,2)`,
			`ALTER TABLE invoices        ALTER COLUMN subtotal       TYPE numeric(12,2)`,
			`ALTER TABLE invoices        ALTER COLUMN discount_total TYPE numeric(12,2)`,
			`ALTER TABLE invoices        ALTER COLUMN tax_total      TYPE numeric(12,2)`,
			`ALTER TABLE invoices        ALTER COLUMN total          TYPE numeric(12,2)`,
			`ALTER TABLE invoices        ALTER COLUMN paid_total     TYPE numeric(12,2)`,
			`ALTER TABLE invoices        ALTER COLUMN balance        TYPE numeric(12,2)`,
			`ALTER TABLE line_items      ALTER COLUMN unit_price      TYPE numeric(12,2)`,
			`ALTER TABLE line_items      ALTER COLUMN discount_amount TYPE numeric(12,2)`,
			`ALTER TABLE line_items      ALTER COLUMN tax_amount      TYPE numeric(12,2)`,
			`ALTER TABLE line_items      ALTER COLUMN net_amount      TYPE numeric(12,2)`,
			`ALTER TABLE payments        ALTER COLUMN amount TYPE numeric(12,2)`,
			`ALTER TABLE insurance_claims ALTER COLUMN total_amount    TYPE numeric(12,2)`,
			`ALTER TABLE insurance_claims ALTER COLUMN approved_amount TYPE numeric(12,2)`,
			`ALTER TABLE insurance_claims ALTER COLUMN paid_amount     TYPE numeric(12,2)`,
			`ALTER TABLE claim_payments  ALTER COLUMN amount TYPE numeric(12,2)`,
		}
		for _, stmt := range alters {
			if err := tx.Exec(stmt).Error; err != nil {
				return fmt.Errorf("money type migration failed on: %s - %w", stmt, err)
			}
		}

		// --- Composite / helpful indexes (idempotent) ---
		indexes := []string{
			`CREATE INDEX IF NOT EXISTS idx_payments_invoice_paid_at ON payments (invoice_id, paid_at)`,
			`CREATE INDEX IF NOT EXISTS idx_line_items_invoice ON line_items (invoice_id)`,
			`CREATE INDEX IF NOT EXISTS idx_claim_history_claim_created ON claim_status_changes (claim_id, created_at)`,
			`CREATE INDEX IF NOT EXISTS idx_invoices_created_at ON invoices (created_at)`,
			`CREATE INDEX IF NOT EXISTS idx_claims_created_at ON insurance_claims (created_at)`,
			`CREATE UNIQUE INDEX IF NOT EXISTS idx_idempotency_keys_key ON idempotency_keys (key)`,
			// One active primary policy per patient.
			`CREATE UNIQUE INDEX IF NOT EXISTS idx_policies_one_active_primary
			 ON insurance_policies (patient_id) WHERE "primary" AND active`,
		}
		for _, stmt := range indexes {
			if err := tx.Exec(stmt).Error; err != nil {
				return fmt.Errorf("index migration failed on: %s - %w", stmt, err)
			}
		}

		// --- Basic CHECK constraints (idempotent) ---
		checks := []string{
			`DO $$
			BEGIN
				IF NOT EXISTS (
					SELECT 1 FROM pg_constraint
					WHERE conrelid = 'payments'::regclass
					  AND conname  = 'chk_payments_amount_positive'
				) THEN
					ALTER TABLE payments
					ADD CONSTRAINT chk_payments_amount_positive
					CHECK (amount > 0);
				END IF;
			END $$;`,
			`DO $$
			BEGIN
				IF NOT EXISTS (
					SELECT 1 FROM pg_constraint
					WHERE conrelid = 'invoices'::regclass
					  AND conname  = 'chk_invoices_balance_nonneg'
				) THEN
					ALTER TABLE invoices
					ADD CONSTRAINT chk_invoices_balance_nonneg
					CHECK (balance >= 0);
				END IF;
			END $$;`,
			`DO $$
			BEGIN
				IF NOT EXISTS (
					SELECT 1 FROM pg_constraint
					WHERE conrelid = 'line_items'::regclass
					  AND conname  = 'chk_line_items_quantity_positive'
				) THEN
					ALTER TABLE line_items
					ADD CONSTRAINT chk_line_items_quantity_positive
					CHECK (quantity > 0);
				END IF;
			END $$;`,
		}
		for _, stmt := range checks {
			if err := tx.Exec(stmt).Error; err != nil {
				return fmt.Errorf("check constraint migration failed: %w", err)
			}
		}

		return seedCatalog(tx)
	})
}

// seedCatalog installs the baseline service catalog so a fresh deployment can
// price consultations and common labs out of the box.
func seedCatalog(tx *gorm.DB) error {
	seeds := []models.ServiceCatalogEntry{
		{Code: "CONS-GEN", Name: "General Consultation", Department: "Consultation", UnitPrice: dec("100.00"), Active: true},
		{Code: "LAB-CBC", Name: "Complete Blood Count", Department: "Laboratory", UnitPrice: dec("45.00"), Active: true},
		{Code: "LAB-BMP", Name: "Basic Metabolic Panel", Department: "Laboratory", UnitPrice: dec("55.00"), Active: true},
		{Code: "LAB-LIPID", Name: "Lipid Panel", Department: "Laboratory", UnitPrice: dec("60.00"), Active: true},
		{Code: "LAB-URIN", Name: "Urinalysis", Department: "Laboratory", UnitPrice: dec("25.00"), Active: true},
	}
	for _, s := range seeds {
		if err := tx.Where(models.ServiceCatalogEntry{Code: s.Code}).
			FirstOrCreate(&s).Error; err != nil {
			return fmt.Errorf("catalog seed failed for %s: %w", s.Code, err)
		}
	}
	return nil
}
