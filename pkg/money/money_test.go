package money

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestRound2HalfUp(t *testing.T) {
	assert.True(t, Round2(decimal.RequireFromString("250.8325")).Equal(decimal.RequireFromString("250.83")))
	assert.True(t, Round2(decimal.RequireFromString("0.005")).Equal(decimal.RequireFromString("0.01")))
	assert.True(t, Round2(decimal.RequireFromString("2.675")).Equal(decimal.RequireFromString("2.68")))
	assert.True(t, Round2(decimal.RequireFromString("-1.005")).Equal(decimal.RequireFromString("-1.01")))
}

func TestFromFloatGuardsNonFinite(t *testing.T) {
	assert.True(t, FromFloat(math.NaN()).IsZero())
	assert.True(t, FromFloat(math.Inf(1)).IsZero())
	assert.True(t, FromFloat(math.Inf(-1)).IsZero())
	assert.True(t, FromFloat(100.333).Equal(decimal.RequireFromString("100.333")))
}

func TestClampPercent(t *testing.T) {
	assert.True(t, ClampPercent(decimal.NewFromInt(-5)).IsZero())
	assert.True(t, ClampPercent(decimal.NewFromInt(150)).Equal(decimal.NewFromInt(100)))
	assert.True(t, ClampPercent(decimal.NewFromInt(15)).Equal(decimal.NewFromInt(15)))
}

func TestPercentAndFromPtr(t *testing.T) {
	assert.True(t, Percent(decimal.NewFromInt(500), decimal.NewFromInt(10)).Equal(decimal.NewFromInt(50)))
	assert.True(t, FromPtr(nil).IsZero())
	v := decimal.NewFromInt(3)
	assert.True(t, FromPtr(&v).Equal(v))
}
