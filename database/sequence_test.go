package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatInvoiceNumber(t *testing.T) {
	assert.Equal(t, "INV2026000001", FormatInvoiceNumber(2026, 1))
	assert.Equal(t, "INV2026000457", FormatInvoiceNumber(2026, 457))
	assert.Equal(t, "INV20271000000", FormatInvoiceNumber(2027, 1000000), "overflow widens, never truncates")
}

func TestFormatClaimNumber(t *testing.T) {
	assert.Equal(t, "CLM-2026-000001", FormatClaimNumber(2026, 1))
	assert.Equal(t, "CLM-2026-012345", FormatClaimNumber(2026, 12345))
}
