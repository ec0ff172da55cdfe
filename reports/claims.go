package reports

import (
	"sort"
	"time"

	"clinicore-backend/models"

	"github.com/shopspring/decimal"
)

// ClaimsFinancial is the money rollup of a claims statistics run.
type ClaimsFinancial struct {
	TotalClaimed      decimal.Decimal `json:"total_claimed"`
	TotalApproved     decimal.Decimal `json:"total_approved"`
	TotalPaid         decimal.Decimal `json:"total_paid"`
	AverageClaim      decimal.Decimal `json:"average_claim"`
	AvgProcessingDays float64         `json:"avg_processing_days"`
}

// MonthBucket is one month of the trailing trend.
type MonthBucket struct {
	Month  string          `json:"month"` // YYYY-MM
	Count  int             `json:"count"`
	Amount decimal.Decimal `json:"amount"`
}

// CodeCount ranks a diagnosis or procedure code by frequency with the
// revenue attributed to claims carrying it.
type CodeCount struct {
	Code    string          `json:"code"`
	Count   int             `json:"count"`
	Revenue decimal.Decimal `json:"revenue"`
}

// ClaimsStats is the full statistics payload.
type ClaimsStats struct {
	TotalClaims        int             `json:"total_claims"`
	StatusDistribution map[string]int  `json:"status_distribution"`
	Financial          ClaimsFinancial `json:"financial"`
	MonthlyTrend       []MonthBucket   `json:"monthly_trend"`
	TopDiagnosisCodes  []CodeCount     `json:"top_diagnosis_codes"`
	TopProcedureCodes  []CodeCount     `json:"top_procedure_codes"`
	ApprovalRate       int             `json:"approval_rate"`
}

// approvedStatuses count toward the approval rate.
var approvedStatuses = map[string]bool{
	models.ClaimApproved:          true,
	models.ClaimPartiallyApproved: true,
	models.ClaimPaid:              true,
}

// ApprovalRate is round(100 * approved / total); zero claims yields zero.
func ApprovalRate(claims []models.InsuranceClaim) int {
	if len(claims) == 0 {
		return 0
	}
	approved := 0
	for _, c := range claims {
		if approvedStatuses[c.Status] {
			approved++
		}
	}
	rate := decimal.NewFromInt(int64(approved * 100)).
		Div(decimal.NewFromInt(int64(len(claims)))).
		Round(0)
	return int(rate.IntPart())
}

// Claims aggregates role-filtered claims into statistics. now anchors the
// trailing 12-month trend.
func Claims(claims []models.InsuranceClaim, now time.Time) ClaimsStats {
	out := ClaimsStats{
		StatusDistribution: map[string]int{},
		Financial: ClaimsFinancial{
			TotalClaimed:  decimal.Zero,
			TotalApproved: decimal.Zero,
			TotalPaid:     decimal.Zero,
			AverageClaim:  decimal.Zero,
		},
	}

	buckets := make(map[string]*MonthBucket, 12)
	anchor := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	for i := 11; i >= 0; i-- {
		m := anchor.AddDate(0, -i, 0)
		key := m.Format("2006-01")
		b := &MonthBucket{Month: key, Amount: decimal.Zero}
		buckets[key] = b
		out.MonthlyTrend = append(out.MonthlyTrend, *b)
	}

	diag := map[string]*CodeCount{}
	proc := map[string]*CodeCount{}
	var processingDays float64
	var processed int

	for _, c := range claims {
		out.TotalClaims++
		out.StatusDistribution[c.Status]++
		out.Financial.TotalClaimed = out.Financial.TotalClaimed.Add(c.TotalAmount)
		out.Financial.TotalApproved = out.Financial.TotalApproved.Add(c.ApprovedAmount)
		out.Financial.TotalPaid = out.Financial.TotalPaid.Add(c.PaidAmount)

		if c.SubmittedAt != nil && c.UpdatedAt.After(*c.SubmittedAt) {
			processingDays += c.UpdatedAt.Sub(*c.SubmittedAt).Hours() / 24
			processed++
		}

		key := c.CreatedAt.UTC().Format("2006-01")
		if b, ok := buckets[key]; ok {
			b.Count++
			b.Amount = b.Amount.Add(c.TotalAmount)
		}

		for _, code := range c.DiagnosisCodes {
			addCode(diag, code, c.TotalAmount)
		}
		for _, code := range c.ProcedureCodes {
			addCode(proc, code, c.TotalAmount)
		}
	}

	if out.TotalClaims > 0 {
		out.Financial.AverageClaim = out.Financial.TotalClaimed.
			Div(decimal.NewFromInt(int64(out.TotalClaims))).Round(2)
	}
	if processed > 0 {
		out.Financial.AvgProcessingDays = processingDays / float64(processed)
	}

	for i := range out.MonthlyTrend {
		out.MonthlyTrend[i] = *buckets[out.MonthlyTrend[i].Month]
	}
	out.TopDiagnosisCodes = topCodes(diag, 10)
	out.TopProcedureCodes = topCodes(proc, 10)
	out.ApprovalRate = ApprovalRate(claims)
	return out
}

func addCode(m map[string]*CodeCount, code string, amount decimal.Decimal) {
	cc, ok := m[code]
	if !ok {
		cc = &CodeCount{Code: code, Revenue: decimal.Zero}
		m[code] = cc
	}
	cc.Count++
	cc.Revenue = cc.Revenue.Add(amount)
}

func topCodes(m map[string]*CodeCount, n int) []CodeCount {
	out := make([]CodeCount, 0, len(m))
	for _, cc := range m {
		out = append(out, *cc)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Code < out[j].Code
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}
