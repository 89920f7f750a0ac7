package finance

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDuePayment(t *testing.T) {
	now := time.Now()
	s1, s2 := uuid.New(), uuid.New()
	lines := []AllocationLine{
		{InvoiceNumber: "260101001", SaleID: &s1, DueAmount: dec(100), AllocatedAmount: dec(100), RemainingDueAfter: decimal.Zero},
		{InvoiceNumber: "260102001", SaleID: &s2, DueAmount: dec(50), AllocatedAmount: dec(50), RemainingDueAfter: decimal.Zero},
		NewAdvanceLine(dec(30), now),
	}

	p, err := NewDuePayment("DP260103001", uuid.New(), dec(180), "", "", "", lines, now)
	require.NoError(t, err)
	assert.Equal(t, PaymentMethodCash, p.Method)
	assert.True(t, p.AppliedAmount().Equal(dec(150)))
	assert.True(t, p.AdvanceAmount().Equal(dec(30)))
	assert.True(t, lines[2].IsAdvance())
	assert.Equal(t, "Advance payment for future purchases", lines[2].Notes)

	events := p.GetDomainEvents()
	require.Len(t, events, 1)
	evt, ok := events[0].(*DuePaymentAllocatedEvent)
	require.True(t, ok)
	assert.Equal(t, 2, evt.InvoicesPaid)
}

func TestNewDuePayment_Validation(t *testing.T) {
	now := time.Now()
	_, err := NewDuePayment("DP", uuid.Nil, dec(10), PaymentMethodCash, "", "", nil, now)
	assert.Error(t, err)

	_, err = NewDuePayment("DP", uuid.New(), dec(0), PaymentMethodCash, "", "", nil, now)
	assert.Error(t, err)

	_, err = NewDuePayment("DP", uuid.New(), dec(10), "barter", "", "", nil, now)
	assert.Error(t, err)

	over := []AllocationLine{{InvoiceNumber: "X", AllocatedAmount: dec(11)}}
	_, err = NewDuePayment("DP", uuid.New(), dec(10), PaymentMethodCash, "", "", over, now)
	assert.Error(t, err)
}
