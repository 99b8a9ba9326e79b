package valueobject

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMoney(t *testing.T) {
	t.Run("creates money with valid inputs", func(t *testing.T) {
		m, err := NewMoney(decimal.NewFromFloat(12.34), USD)
		require.NoError(t, err)
		assert.Equal(t, USD, m.Currency())
		assert.True(t, m.Amount().Equal(decimal.NewFromFloat(12.34)))
	})

	t.Run("rejects empty currency", func(t *testing.T) {
		_, err := NewMoney(decimal.NewFromInt(1), "")
		assert.Error(t, err)
	})
}

func TestNewMoneyFromString(t *testing.T) {
	m, err := NewMoneyFromString("100.50", EUR)
	require.NoError(t, err)
	assert.Equal(t, "100.50", m.StringFixed(2))

	_, err = NewMoneyFromString("not-a-number", EUR)
	assert.Error(t, err)
}

func TestCurrency_IsValid(t *testing.T) {
	assert.True(t, USD.IsValid())
	assert.True(t, JPY.IsValid())
	assert.False(t, Currency("XXX").IsValid())
	assert.False(t, Currency("").IsValid())
}

func TestMoney_Add(t *testing.T) {
	a := MustNewMoney(decimal.NewFromFloat(10.10), USD)
	b := MustNewMoney(decimal.NewFromFloat(0.90), USD)

	sum, err := a.Add(b)
	require.NoError(t, err)
	assert.Equal(t, "11.00", sum.StringFixed(2))

	_, err = a.Add(MustNewMoney(decimal.NewFromInt(1), EUR))
	assert.Error(t, err)
}

func TestMoney_Subtract(t *testing.T) {
	a := MustNewMoney(decimal.NewFromInt(5), USD)
	b := MustNewMoney(decimal.NewFromInt(7), USD)

	diff, err := a.Subtract(b)
	require.NoError(t, err)
	assert.True(t, diff.IsNegative())

	_, err = a.Subtract(MustNewMoney(decimal.NewFromInt(1), GBP))
	assert.Error(t, err)
}

func TestMoney_MultiplyAndNegate(t *testing.T) {
	m := MustNewMoney(decimal.NewFromFloat(2.5), USD)
	assert.Equal(t, "7.50", m.Multiply(decimal.NewFromInt(3)).StringFixed(2))
	assert.Equal(t, "-2.50", m.Negate().StringFixed(2))
}

func TestMoney_Comparisons(t *testing.T) {
	small := MustNewMoney(decimal.NewFromInt(1), USD)
	big := MustNewMoney(decimal.NewFromInt(2), USD)

	lt, err := small.LessThan(big)
	require.NoError(t, err)
	assert.True(t, lt)

	gt, err := big.GreaterThan(small)
	require.NoError(t, err)
	assert.True(t, gt)

	assert.True(t, small.Equals(MustNewMoney(decimal.NewFromInt(1), USD)))
	assert.False(t, small.Equals(MustNewMoney(decimal.NewFromInt(1), EUR)))

	_, err = small.LessThan(MustNewMoney(decimal.NewFromInt(1), EUR))
	assert.Error(t, err)
}

func TestMoney_JSONRoundTrip(t *testing.T) {
	m := MustNewMoney(decimal.NewFromFloat(99.99), CHF)

	data, err := json.Marshal(m)
	require.NoError(t, err)

	var decoded Money
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, m.Equals(decoded))
}

func TestMoney_String(t *testing.T) {
	m := MustNewMoney(decimal.NewFromFloat(3.456), USD)
	assert.Equal(t, "3.46 USD", m.String())
}
