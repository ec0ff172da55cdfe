package reports

import (
	"time"

	"clinicore-backend/models"

	"github.com/shopspring/decimal"
)

// StatusBucket is one invoice-status group in the summary.
type StatusBucket struct {
	Count       int             `json:"count"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	TotalPaid   decimal.Decimal `json:"total_paid"`
	Balance     decimal.Decimal `json:"balance"`
}

// BillingSummary groups invoices by status and revenue by line-item type.
type BillingSummary struct {
	InvoiceCount  int                        `json:"invoice_count"`
	TotalBilled   decimal.Decimal            `json:"total_billed"`
	TotalPaid     decimal.Decimal            `json:"total_paid"`
	ByStatus      map[string]StatusBucket    `json:"by_status"`
	RevenueByType map[string]decimal.Decimal `json:"revenue_by_type"`
}

// Summary aggregates invoices (with items loaded) into a BillingSummary.
// Pure and order-independent; callers supply the date-range-filtered slice.
func Summary(invoices []models.Invoice) BillingSummary {
	out := BillingSummary{
		TotalBilled:   decimal.Zero,
		TotalPaid:     decimal.Zero,
		ByStatus:      map[string]StatusBucket{},
		RevenueByType: map[string]decimal.Decimal{},
	}
	for _, inv := range invoices {
		out.InvoiceCount++
		out.TotalBilled = out.TotalBilled.Add(inv.Total)
		out.TotalPaid = out.TotalPaid.Add(inv.PaidTotal)

		b := out.ByStatus[inv.Status]
		if b.Count == 0 {
			b = StatusBucket{TotalAmount: decimal.Zero, TotalPaid: decimal.Zero, Balance: decimal.Zero}
		}
		b.Count++
		b.TotalAmount = b.TotalAmount.Add(inv.Total)
		b.TotalPaid = b.TotalPaid.Add(inv.PaidTotal)
		b.Balance = b.Balance.Add(inv.Balance)
		out.ByStatus[inv.Status] = b

		for _, it := range inv.Items {
			cur, ok := out.RevenueByType[it.Type]
			if !ok {
				cur = decimal.Zero
			}
			out.RevenueByType[it.Type] = cur.Add(it.NetAmount)
		}
	}
	return out
}

// InvoiceRow is one line of the detailed billing report.
type InvoiceRow struct {
	InvoiceNumber string          `json:"invoice_number"`
	PatientID     uint            `json:"patient_id"`
	Status        string          `json:"status"`
	Total         decimal.Decimal `json:"total"`
	PaidTotal     decimal.Decimal `json:"paid_total"`
	Balance       decimal.Decimal `json:"balance"`
	DueDate       time.Time       `json:"due_date"`
	CreatedAt     time.Time       `json:"created_at"`
}

// Detailed flattens invoices into report rows.
func Detailed(invoices []models.Invoice) []InvoiceRow {
	rows := make([]InvoiceRow, 0, len(invoices))
	for _, inv := range invoices {
		rows = append(rows, InvoiceRow{
			InvoiceNumber: inv.InvoiceNumber,
			PatientID:     inv.PatientID,
			Status:        inv.Status,
			Total:         inv.Total,
			PaidTotal:     inv.PaidTotal,
			Balance:       inv.Balance,
			DueDate:       inv.DueDate,
			CreatedAt:     inv.CreatedAt,
		})
	}
	return rows
}
