package insurance

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Coinsurance is the policyholder's share after the payer's percentage:
// total - total*rate/100.
func Coinsurance(total, reimbursementRate decimal.Decimal) decimal.Decimal {
	covered := total.Mul(reimbursementRate).Div(hundred)
	return total.Sub(covered).Round(2)
}

// PatientResponsibility is deductible + copay + coinsurance for a claim of
// the given total under the provider's reimbursement rate.
func PatientResponsibility(total, reimbursementRate, deductible, copay decimal.Decimal) decimal.Decimal {
	return deductible.Add(copay).Add(Coinsurance(total, reimbursementRate)).Round(2)
}

// RemainingResponsibility is what the patient still owes once payer money
// has posted: max(0, total - paid).
func RemainingResponsibility(total, paid decimal.Decimal) decimal.Decimal {
	rem := total.Sub(paid)
	if rem.IsNegative() {
		return decimal.Zero
	}
	return rem.Round(2)
}
