package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuantity_Conversions(t *testing.T) {
	q := NewQuantityFromFloat64(2.5)
	assert.Equal(t, int64(25000), q.Int64Scaled())
	assert.Equal(t, 2.5, q.Float64())
	assert.Equal(t, "2.5000", q.String())

	assert.Equal(t, "-0.2500", NewQuantityFromFloat64(-0.25).String())
	assert.Equal(t, "0.0000", Quantity(0).String())
	assert.True(t, Quantity(0).IsZero())
	assert.True(t, NewQuantityFromFloat64(1).IsPositive())
	assert.True(t, NewQuantityFromFloat64(-1).IsNegative())
	assert.Equal(t, NewQuantityFromFloat64(3), NewQuantityFromFloat64(-3).Abs())
	assert.Equal(t, NewQuantityFromFloat64(-3), NewQuantityFromFloat64(3).Neg())
}

func TestQuantity_Decimal(t *testing.T) {
	q := NewQuantityFromFloat64(2.5)
	cost := MustMoney("4.00")
	assert.True(t, q.Decimal().Mul(cost).Equal(MustMoney("10.00")))
}

func TestQuantity_JSONRoundTrip(t *testing.T) {
	q := NewQuantityFromFloat64(12.3456)

	data, err := json.Marshal(q)
	require.NoError(t, err)
	// Encoded as a plain JSON number with 4 fractional digits.
	assert.Equal(t, "12.3456", string(data))

	var back Quantity
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, q, back)
}

func TestQuantity_UnmarshalForms(t *testing.T) {
	tests := []struct {
		in   string
		want Quantity
	}{
		{`2.5`, Quantity(25000)},
		{`"2.5"`, Quantity(25000)},
		{`-1.25`, Quantity(-12500)},
		{`10`, Quantity(100000)},
		{`".5"`, Quantity(5000)},
		{`null`, Quantity(0)},
		// Extra fractional digits are truncated, not rounded.
		{`0.99999`, Quantity(9999)},
	}

	for _, tt := range tests {
		var q Quantity
		require.NoError(t, json.Unmarshal([]byte(tt.in), &q), "input %s", tt.in)
		assert.Equal(t, tt.want, q, "input %s", tt.in)
	}

	var q Quantity
	require.Error(t, json.Unmarshal([]byte(`"abc"`), &q))
}

func TestRoundMoney(t *testing.T) {
	assert.Equal(t, "1.01", RoundMoney(MustMoney("1.005")).StringFixed(2))
	assert.Equal(t, "1.00", RoundMoney(MustMoney("1.0049")).StringFixed(2))
	assert.Equal(t, "-1.01", RoundMoney(MustMoney("-1.005")).StringFixed(2))
}

func TestMaxMoney(t *testing.T) {
	a := MustMoney("1.00")
	b := MustMoney("2.00")
	assert.True(t, MaxMoney(a, b).Equal(b))
	assert.True(t, MaxMoney(b, a).Equal(b))
	assert.True(t, MaxMoney(Zero(), MustMoney("-5")).IsZero())
}
