package analysis

import (
	"testing"
	"time"

	"azt-exchange/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -----------------------------------------------------------------------------

func TestSynthesizeOHLCInvariants(t *testing.T) {
	base := time.Date(2025, 3, 10, 14, 0, 0, 0, time.UTC)
	samples := []models.MSample{
		sampleAt(base, 100, 10),
		sampleAt(base.Add(time.Minute), 102.5, 20),
		sampleAt(base.Add(2*time.Minute), 98.37, 30),
	}

	candles := SynthesizeOHLC(samples)
	require.Len(t, candles, len(samples))

	for i, c := range candles {
		assert.Equal(t, samples[i].Price, c.Close, "close always equals the raw price")
		assert.LessOrEqual(t, c.Low, c.Open)
		assert.LessOrEqual(t, c.Low, c.Close)
		assert.GreaterOrEqual(t, c.High, c.Open)
		assert.GreaterOrEqual(t, c.High, c.Close)
		assert.Equal(t, samples[i].Volume, c.Volume)
	}
}

// -----------------------------------------------------------------------------

func TestSynthesizeOHLCIsDeterministic(t *testing.T) {
	base := time.Date(2025, 3, 10, 14, 0, 0, 0, time.UTC)
	samples := []models.MSample{
		sampleAt(base, 42.42, 1),
		sampleAt(base.Add(time.Minute), 43.1, 1),
	}

	assert.Equal(t, SynthesizeOHLC(samples), SynthesizeOHLC(samples))
}

// -----------------------------------------------------------------------------

func TestSynthesizeOHLCEnvelopeBound(t *testing.T) {
	base := time.Date(2025, 3, 10, 14, 0, 0, 0, time.UTC)
	samples := []models.MSample{sampleAt(base, 200, 1)}

	c := SynthesizeOHLC(samples)[0]

	// High/low stay within the 2% volatility envelope of the price
	assert.LessOrEqual(t, c.High, 200*1.02+0.01)
	assert.GreaterOrEqual(t, c.Low, 200*0.98-0.01)
}
