package core

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

// -----------------------------------------------------------------------------

func TestComputeOHLC(t *testing.T) {
	ohlc := ComputeOHLC([]float64{10, 12, 9, 15})
	assert.Equal(t, 10.0, ohlc.Open)
	assert.Equal(t, 15.0, ohlc.Close)
	assert.Equal(t, 15.0, ohlc.High)
	assert.Equal(t, 9.0, ohlc.Low)

	assert.Equal(t, OHLC{}, ComputeOHLC(nil))
}

// -----------------------------------------------------------------------------

func TestChangePercent(t *testing.T) {
	assert.Equal(t, 50.0, ChangePercent(150, 100))
	assert.Equal(t, -25.0, ChangePercent(75, 100))
	assert.Equal(t, 0.0, ChangePercent(10, 0))
}

// -----------------------------------------------------------------------------

func TestIsValidPrice(t *testing.T) {
	assert.True(t, IsValidPrice(0.01))
	assert.False(t, IsValidPrice(0))
	assert.False(t, IsValidPrice(-1))
	assert.False(t, IsValidPrice(math.NaN()))
	assert.False(t, IsValidPrice(math.Inf(1)))
	assert.False(t, IsValidPrice(math.Inf(-1)))
}

// -----------------------------------------------------------------------------

func TestRound2(t *testing.T) {
	assert.Equal(t, 1.23, Round2(1.234))
	assert.Equal(t, 1.24, Round2(1.236))
	assert.Equal(t, -1.23, Round2(-1.2349))
}
