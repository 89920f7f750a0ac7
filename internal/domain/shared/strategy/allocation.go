package strategy

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OpenSale is a credit sale that still carries a due amount
type OpenSale struct {
	SaleID        uuid.UUID
	InvoiceNumber string
	SoldAt        time.Time
	Due           decimal.Decimal
}

// DueApplication is the part of a payment applied to one open sale
type DueApplication struct {
	Sale      OpenSale
	Applied   decimal.Decimal
	DueBefore decimal.Decimal
	DueAfter  decimal.Decimal
}

// PaymentContext describes the customer payment being spread
type PaymentContext struct {
	CustomerID uuid.UUID
	Amount     decimal.Decimal
	PaidAt     time.Time
}

// PaymentPlan is how a payment splits across open sales.
// Advance is the part no open sale could absorb.
type PaymentPlan struct {
	Applications []DueApplication
	Applied      decimal.Decimal
	Advance      decimal.Decimal
}

// PaymentAllocationStrategy decides which open sales a payment settles
type PaymentAllocationStrategy interface {
	Strategy
	Allocate(ctx context.Context, payment PaymentContext, open []OpenSale) (PaymentPlan, error)
}
