package partner

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCustomer(t *testing.T) {
	t.Run("applies default credit limit", func(t *testing.T) {
		c, err := NewCustomer("Rahim", "+880 1711-000000")
		require.NoError(t, err)
		assert.True(t, c.CreditLimit.Equal(decimal.NewFromInt(10000)))
		assert.True(t, c.TotalDue.IsZero())
		assert.True(t, c.IsActive)
	})

	t.Run("requires a phone", func(t *testing.T) {
		_, err := NewCustomer("Rahim", "")
		require.Error(t, err)
	})

	t.Run("rejects letters in phone", func(t *testing.T) {
		_, err := NewCustomer("Rahim", "01711abc")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Invalid phone")
	})
}

func TestCustomer_Credit(t *testing.T) {
	c, err := NewCustomer("Karim", "01711000001")
	require.NoError(t, err)
	require.NoError(t, c.SetCreditLimit(decimal.NewFromInt(5000)))

	c.ApplyDueRecompute(decimal.NewFromInt(4800))
	assert.True(t, c.CanMakeCreditSale())
	assert.True(t, c.AvailableCredit().Equal(decimal.NewFromInt(200)))

	c.ApplyDueRecompute(decimal.NewFromInt(5100))
	assert.False(t, c.CanMakeCreditSale())
	assert.True(t, c.AvailableCredit().IsZero())

	c.ApplyDueRecompute(decimal.NewFromInt(-3))
	assert.True(t, c.TotalDue.IsZero())

	assert.Error(t, c.SetCreditLimit(decimal.NewFromInt(-1)))
}

func TestIsRegistrableName(t *testing.T) {
	assert.False(t, IsRegistrableName(""))
	assert.False(t, IsRegistrableName("Walk-in Customer"))
	assert.False(t, IsRegistrableName("walk-in customer"))
	assert.True(t, IsRegistrableName("Nadia"))
}

func TestNewSupplier(t *testing.T) {
	s, err := NewSupplier("Acme Pharma", "Mr. Hasan", "0171")
	require.NoError(t, err)
	assert.Equal(t, "Acme Pharma", s.Name)

	_, err = NewSupplier("", "", "")
	require.Error(t, err)
}
