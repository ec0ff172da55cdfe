package models

// Sequence backs document numbering (invoices, claims). Rows are bumped with
// a single atomic UPDATE ... RETURNING, never read-then-insert, so concurrent
// creations cannot mint duplicate numbers.
type Sequence struct {
	Name  string `gorm:"primaryKey;size:32"`
	Year  int    `gorm:"primaryKey"`
	Value int64  `gorm:"not null;default:0"`
}

// Sequence names.
const (
	SeqInvoice = "invoice"
	SeqClaim   = "claim"
)
