package shared

import (
	"context"
	"fmt"
	"time"

	"github.com/shopman/backend/internal/domain/shared"
)

// SequenceRepository hands out per-day document sequences.
// Next must be called inside a transaction; the counter row stays locked until commit.
type SequenceRepository interface {
	Next(ctx context.Context, scope string, day time.Time) (int64, error)
}

// Document number prefixes
const (
	PrefixInvoice        = ""
	PrefixPurchaseOrder  = "PO"
	PrefixPurchaseReturn = "RET"
	PrefixSupplierBill   = "BILL"
	PrefixDuePayment     = "DP"
)

var prefixes = map[string]string{
	shared.SeqInvoice:        PrefixInvoice,
	shared.SeqPurchaseOrder:  PrefixPurchaseOrder,
	shared.SeqPurchaseReturn: PrefixPurchaseReturn,
	shared.SeqSupplierBill:   PrefixSupplierBill,
	shared.SeqDuePayment:     PrefixDuePayment,
}

// NextDocumentNumber allocates the next number of the given scope for the day of now
func NextDocumentNumber(ctx context.Context, repos Repositories, scope string, now time.Time) (string, error) {
	day := shared.DateOf(now)
	seq, err := repos.Sequences().Next(ctx, scope, day)
	if err != nil {
		return "", fmt.Errorf("allocate %s sequence: %w", scope, err)
	}
	if scope == shared.SeqSaleReturn {
		return shared.FormatSaleReturnNumber(day, seq), nil
	}
	prefix, ok := prefixes[scope]
	if !ok {
		return "", fmt.Errorf("unknown sequence scope %q", scope)
	}
	return shared.FormatDocumentNumber(prefix, day, seq), nil
}
