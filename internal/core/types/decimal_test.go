package types

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuantityConversions(t *testing.T) {
	tests := []struct {
		in     float64
		scaled int64
		str    string
	}{
		{0, 0, "0.0000"},
		{1, 10000, "1.0000"},
		{2.5, 25000, "2.5000"},
		{-3.25, -32500, "-3.2500"},
		{0.0001, 1, "0.0001"},
		{123456.789, 1234567890, "123456.7890"},
	}

	for _, tt := range tests {
		q := NewQuantityFromFloat64(tt.in)
		assert.Equal(t, tt.scaled, q.Int64Scaled())
		assert.Equal(t, tt.str, q.String())
		assert.Equal(t, tt.in, q.Float64())
	}
}

func TestQuantityDecimal(t *testing.T) {
	q := NewQuantityFromFloat64(2.5)
	assert.True(t, q.Decimal().Equal(decimal.NewFromFloat(2.5)))

	// Division via Decimal keeps exact fixed-point semantics.
	total := NewMoney(200)
	avg := total.Div(NewQuantityFromFloat64(80).Decimal())
	assert.True(t, avg.Equal(NewMoney(2.5)), "got %s", avg)
}

func TestQuantitySignHelpers(t *testing.T) {
	assert.True(t, NewQuantityFromFloat64(1).IsPositive())
	assert.True(t, NewQuantityFromFloat64(-1).IsNegative())
	assert.True(t, Quantity(0).IsZero())
	assert.Equal(t, NewQuantityFromFloat64(4), NewQuantityFromFloat64(-4).Abs())
	assert.Equal(t, NewQuantityFromFloat64(-4), NewQuantityFromFloat64(4).Neg())
}

func TestQuantityJSON(t *testing.T) {
	type payload struct {
		Qty Quantity `json:"qty"`
	}

	out, err := json.Marshal(payload{Qty: NewQuantityFromFloat64(12.34)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"qty":12.3400}`, string(out))

	var in payload
	require.NoError(t, json.Unmarshal([]byte(`{"qty":12.34}`), &in))
	assert.Equal(t, NewQuantityFromFloat64(12.34), in.Qty)

	// String form is accepted too.
	require.NoError(t, json.Unmarshal([]byte(`{"qty":"-7.5"}`), &in))
	assert.Equal(t, NewQuantityFromFloat64(-7.5), in.Qty)
}

func TestQuantityJSONExtraPrecisionTruncated(t *testing.T) {
	var q Quantity
	require.NoError(t, json.Unmarshal([]byte(`0.00019`), &q))
	assert.Equal(t, Quantity(1), q)
}

func TestMoneyFromString(t *testing.T) {
	m, err := NewMoneyFromString("19.99")
	require.NoError(t, err)
	assert.Equal(t, "19.99", m.String())

	_, err = NewMoneyFromString("not-a-number")
	assert.Error(t, err)

	assert.True(t, Zero().IsZero())
}
