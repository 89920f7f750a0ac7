package shared

import (
	"fmt"
	"time"
)

// Sequence scopes for human-readable document numbers
const (
	SeqInvoice        = "invoice"
	SeqPurchaseOrder  = "purchase_order"
	SeqPurchaseReturn = "purchase_return"
	SeqSaleReturn     = "sale_return"
	SeqSupplierBill   = "supplier_bill"
	SeqDuePayment     = "due_payment"
)

// FormatDocumentNumber renders the YYMMDDSEQ format, the sequence zero-padded to 3 digits
func FormatDocumentNumber(prefix string, day time.Time, seq int64) string {
	return fmt.Sprintf("%s%s%03d", prefix, day.Format("060102"), seq)
}

// FormatSaleReturnNumber renders SR + YYYYMMDD + 4-digit sequence
func FormatSaleReturnNumber(day time.Time, seq int64) string {
	return fmt.Sprintf("SR%s%04d", day.Format("20060102"), seq)
}

// DateOf truncates t to midnight in its own location
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// DayKey returns the calendar day of t as YYYY-MM-DD
func DayKey(t time.Time) string {
	return t.Format("2006-01-02")
}
