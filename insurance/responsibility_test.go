package insurance

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestCoinsurance(t *testing.T) {
	cases := []struct {
		total, rate, want string
	}{
		{"195.00", "80", "39.00"},
		{"100.00", "100", "0.00"},
		{"100.00", "0", "100.00"},
		{"33.33", "75", "8.33"}, // 33.33 - 24.9975, rounded
	}
	for _, tc := range cases {
		got := Coinsurance(d(tc.total), d(tc.rate))
		assert.Equal(t, tc.want, got.StringFixed(2), "total %s rate %s", tc.total, tc.rate)
	}
}

func TestPatientResponsibility(t *testing.T) {
	got := PatientResponsibility(d("195.00"), d("80"), d("20.00"), d("15.00"))
	// 20 deductible + 15 copay + 39 coinsurance
	assert.Equal(t, "74.00", got.StringFixed(2))

	full := PatientResponsibility(d("500.00"), d("0"), d("0"), d("0"))
	assert.Equal(t, "500.00", full.StringFixed(2))
}

func TestRemainingResponsibility(t *testing.T) {
	assert.Equal(t, "45.00", RemainingResponsibility(d("195.00"), d("150.00")).StringFixed(2))
	assert.Equal(t, "0.00", RemainingResponsibility(d("195.00"), d("195.00")).StringFixed(2))
	assert.True(t, RemainingResponsibility(d("195.00"), d("200.00")).IsZero(),
		"payer overpayment clamps to zero")
}
