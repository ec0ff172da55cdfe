package database

import (
	"fmt"
	"time"

	"clinicore-backend/models"

	"gorm.io/gorm"
)

// nextValue bumps the named per-year counter atomically inside tx. The
// UPDATE ... RETURNING round trip is the whole point: counting existing rows
// to derive the next number races under concurrent writers. Should a mint
// ever duplicate anyway, the unique constraints on invoice_number and
// claim_number fail the enclosing transaction rather than persist a copy.
func nextValue(tx *gorm.DB, name string, year int) (int64, error) {
	if err := tx.Exec(
		`INSERT INTO sequences (name, year, value) VALUES (?, ?, 0) ON CONFLICT (name, year) DO NOTHING`,
		name, year,
	).Error; err != nil {
		return 0, fmt.Errorf("sequence init failed for %s/%d: %w", name, year, err)
	}

	var value int64
	if err := tx.Raw(
		`UPDATE sequences SET value = value + 1 WHERE name = ? AND year = ? RETURNING value`,
		name, year,
	).Scan(&value).Error; err != nil {
		return 0, fmt.Errorf("sequence bump failed for %s/%d: %w", name, year, err)
	}
	return value, nil
}

// NextInvoiceNumber mints the next INV<year><6-digit seq> number.
func NextInvoiceNumber(tx *gorm.DB, now time.Time) (string, error) {
	v, err := nextValue(tx, models.SeqInvoice, now.Year())
	if err != nil {
		return "", err
	}
	return FormatInvoiceNumber(now.Year(), v), nil
}

// NextClaimNumber mints the next CLM-<year>-<6-digit seq> number.
func NextClaimNumber(tx *gorm.DB, now time.Time) (string, error) {
	v, err := nextValue(tx, models.SeqClaim, now.Year())
	if err != nil {
		return "", err
	}
	return FormatClaimNumber(now.Year(), v), nil
}

func FormatInvoiceNumber(year int, seq int64) string {
	return fmt.Sprintf("INV%d%06d", year, seq)
}

func FormatClaimNumber(year int, seq int64) string {
	return fmt.Sprintf("CLM-%d-%06d", year, seq)
}
