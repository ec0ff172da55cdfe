package billing

import (
	"context"
	"strings"
	"testing"

	"clinicore-backend/apperr"
	"clinicore-backend/config"
	"clinicore-backend/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// fakeResolver serves quotes from a map keyed by department|lowercase(name).
type fakeResolver struct {
	quotes map[string]Quote
}

func (f *fakeResolver) Resolve(_ context.Context, department, nameOrCode string) (Quote, bool) {
	q, ok := f.quotes[department+"|"+strings.ToLower(nameOrCode)]
	return q, ok
}

func testConfig() config.Billing {
	return config.Billing{
		DefaultConsultationPrice: d("100.00"),
		DefaultMedicationPrice:   d("10.00"),
		DefaultLabTestPrice:      d("25.00"),
		DefaultReimbursementRate: d("80"),
		InvoiceDueDays:           30,
	}
}

func newTestBuilder(quotes map[string]Quote) *Builder {
	return NewBuilder(&fakeResolver{quotes: quotes}, testConfig())
}

func TestAssembleConsultation(t *testing.T) {
	t.Run("catalog hit wins over caller fee", func(t *testing.T) {
		b := newTestBuilder(map[string]Quote{
			"Consultation|consultation": {Code: "CONS-GEN", Name: "General Consultation", Price: d("120.00")},
		})
		items, err := b.AssembleItems(context.Background(), Sources{
			Consultation: &ConsultationSource{Fee: d("80.00")},
		})
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, models.ItemConsultation, items[0].Type)
		assert.Equal(t, "CONS-GEN", items[0].ServiceCode)
		assert.Equal(t, "120.00", items[0].NetAmount.StringFixed(2))
	})

	t.Run("catalog miss falls back to caller fee", func(t *testing.T) {
		b := newTestBuilder(nil)
		items, err := b.AssembleItems(context.Background(), Sources{
			Consultation: &ConsultationSource{Fee: d("85.00")},
		})
		require.NoError(t, err)
		assert.Equal(t, "85.00", items[0].NetAmount.StringFixed(2))
	})

	t.Run("no fee at all uses configured default", func(t *testing.T) {
		b := newTestBuilder(nil)
		items, err := b.AssembleItems(context.Background(), Sources{
			Consultation: &ConsultationSource{},
		})
		require.NoError(t, err)
		assert.Equal(t, "100.00", items[0].NetAmount.StringFixed(2))
	})
}

func TestAssembleLabOrders(t *testing.T) {
	b := newTestBuilder(map[string]Quote{
		"Laboratory|complete blood count": {Code: "LAB-CBC", Price: d("45.00")},
	})

	orders := []models.LabOrder{
		{Tests: []string{"Complete Blood Count", "Mystery Assay"}},
		{Tests: []string{"Complete Blood Count"}},
	}
	items, err := b.AssembleItems(context.Background(), Sources{LabOrders: orders})
	require.NoError(t, err)
	require.Len(t, items, 3, "one line item per contained test, duplicates billed")

	assert.Equal(t, "45.00", items[0].UnitPrice.StringFixed(2))
	assert.Equal(t, "25.00", items[1].UnitPrice.StringFixed(2), "unknown test priced from fallback table")
	assert.Equal(t, "45.00", items[2].UnitPrice.StringFixed(2))
	for _, it := range items {
		assert.Equal(t, models.ItemLaboratory, it.Type)
	}
}

func TestAssemblePrescriptions(t *testing.T) {
	b := newTestBuilder(map[string]Quote{
		"Pharmacy|amoxicillin": {Code: "RX-AMOX", Price: d("12.50")},
	})

	rx := models.Prescription{Medications: []models.MedicationLine{
		{Name: "AMOXICILLIN", Quantity: 2}, // case-insensitive match
		{Name: "Obscurol"},                 // no match, no quantity
	}}
	items, err := b.AssembleItems(context.Background(), Sources{Prescriptions: []models.Prescription{rx}})
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, "RX-AMOX", items[0].ServiceCode)
	assert.Equal(t, 2, items[0].Quantity)
	assert.Equal(t, "25.00", items[0].NetAmount.StringFixed(2))

	assert.Equal(t, 1, items[1].Quantity, "quantity defaults to 1")
	assert.Equal(t, "10.00", items[1].NetAmount.StringFixed(2), "fallback medication price")
}

func TestAssembleAdHocValidation(t *testing.T) {
	b := newTestBuilder(nil)

	t.Run("zero quantity rejected", func(t *testing.T) {
		_, err := b.AssembleItems(context.Background(), Sources{
			Procedures: []AdHocItem{{Description: "Suture", Quantity: 0, UnitPrice: d("50.00")}},
		})
		require.Error(t, err)
		assert.True(t, apperr.IsKind(err, apperr.KindValidation))
	})

	t.Run("non-positive unit price rejected", func(t *testing.T) {
		_, err := b.AssembleItems(context.Background(), Sources{
			AdditionalItems: []AdHocItem{{Description: "Dressing kit", Quantity: 1, UnitPrice: d("-5.00")}},
		})
		require.Error(t, err)
		assert.True(t, apperr.IsKind(err, apperr.KindValidation))
	})

	t.Run("empty build rejected", func(t *testing.T) {
		_, err := b.AssembleItems(context.Background(), Sources{})
		require.Error(t, err)
		assert.True(t, apperr.IsKind(err, apperr.KindValidation))
	})

	t.Run("valid procedure computes net with discount and tax", func(t *testing.T) {
		items, err := b.AssembleItems(context.Background(), Sources{
			Procedures: []AdHocItem{{
				Code: "PROC-XR", Description: "X-Ray", Quantity: 1,
				UnitPrice: d("200.00"), DiscountPct: d("10"), TaxPct: d("5"),
			}},
		})
		require.NoError(t, err)
		// 200 - 20 + 9 = 189
		assert.Equal(t, "189.00", items[0].NetAmount.StringFixed(2))
	})
}

func TestComputeInsurance(t *testing.T) {
	t.Run("no policy means no insurance block", func(t *testing.T) {
		assert.Nil(t, ComputeInsurance(d("195.00"), nil, d("80")))
	})

	t.Run("coverage math", func(t *testing.T) {
		policy := &models.InsurancePolicy{
			ProviderID:   7,
			PolicyNumber: "POL-1",
			Deductible:   d("20.00"),
			Provider:     models.InsuranceProvider{Name: "Acme Health", ReimbursementRate: d("80")},
		}
		ins := ComputeInsurance(d("195.00"), policy, d("80"))
		require.NotNil(t, ins)
		assert.Equal(t, "156.00", ins.CoverageAmount.StringFixed(2))
		assert.Equal(t, "59.00", ins.PatientResponsibility.StringFixed(2))
		assert.Equal(t, models.InvoiceClaimNotSubmitted, ins.ClaimStatus)
	})

	t.Run("unset provider rate uses default", func(t *testing.T) {
		policy := &models.InsurancePolicy{Provider: models.InsuranceProvider{Name: "NoRate"}}
		ins := ComputeInsurance(d("100.00"), policy, d("80"))
		require.NotNil(t, ins)
		assert.Equal(t, "80.00", ins.CoverageAmount.StringFixed(2))
	})
}
