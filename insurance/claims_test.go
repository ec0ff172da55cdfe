package insurance

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecomputeRemaining(t *testing.T) {
	t.Run("no payments keeps the creation formula", func(t *testing.T) {
		// Resubmitting the same total must not change the remaining share.
		created := PatientResponsibility(d("195.00"), d("80"), d("20.00"), d("0"))
		edited := recomputeRemaining(d("195.00"), d("80"), d("20.00"), d("0"), d("0"))
		assert.Equal(t, "59.00", created.StringFixed(2))
		assert.True(t, edited.Equal(created))
	})

	t.Run("total change before payments re-derives the breakdown", func(t *testing.T) {
		got := recomputeRemaining(d("300.00"), d("80"), d("20.00"), d("15.00"), d("0"))
		// 20 deductible + 15 copay + 60 coinsurance
		assert.Equal(t, "95.00", got.StringFixed(2))
	})

	t.Run("posted payer money switches to total minus paid", func(t *testing.T) {
		got := recomputeRemaining(d("195.00"), d("80"), d("20.00"), d("0"), d("150.00"))
		assert.Equal(t, "45.00", got.StringFixed(2))
	})
}
