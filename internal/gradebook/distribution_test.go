package gradebook

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScaleClassifyBoundariesAreInclusive(t *testing.T) {
	scale := DefaultScale()
	cases := map[float64]Band{
		20:    BandExcellent,
		16:    BandExcellent,
		15.99: BandGood,
		14:    BandGood,
		13.99: BandFair,
		12:    BandFair,
		11.99: BandPassable,
		10:    BandPassable,
		9.99:  BandInsufficient,
		0:     BandInsufficient,
		-3:    BandInsufficient,
	}
	for value, expected := range cases {
		assert.Equal(t, expected, scale.Classify(value), "value %v", value)
	}
}

func TestScaleClassifyCustomCeiling(t *testing.T) {
	scale := Scale{Max: 100, Cutoffs: DefaultCutoffs}
	assert.Equal(t, BandExcellent, scale.Classify(80))
	assert.Equal(t, BandGood, scale.Classify(79.9))
	assert.Equal(t, BandPassable, scale.Classify(50))
	assert.Equal(t, BandInsufficient, scale.Classify(49))
}

func TestScaleValidate(t *testing.T) {
	require.NoError(t, DefaultScale().Validate())
	assert.ErrorIs(t, Scale{Max: 0, Cutoffs: DefaultCutoffs}.Validate(), ErrInvalidScale)
	assert.ErrorIs(t, Scale{Max: 20, Cutoffs: Cutoffs{Excellent: 0.6, Good: 0.7, Fair: 0.5, Passable: 0.4}}.Validate(), ErrInvalidScale)
	assert.ErrorIs(t, Scale{Max: 20, Cutoffs: Cutoffs{Excellent: 1.2, Good: 0.7, Fair: 0.6, Passable: 0.5}}.Validate(), ErrInvalidScale)
}

func TestDistributeScenario(t *testing.T) {
	scores := []float64{12, 14, 16, 9, 20}
	dist := Distribute(scores, DefaultScale())

	assert.Equal(t, 5, dist.Total)
	assert.Equal(t, 2, bandCount(dist, BandExcellent))
	assert.Equal(t, 1, bandCount(dist, BandGood))
	assert.Equal(t, 1, bandCount(dist, BandFair))
	assert.Equal(t, 0, bandCount(dist, BandPassable))
	assert.Equal(t, 1, bandCount(dist, BandInsufficient))

	require.Len(t, dist.Bands, 5)
	assert.Equal(t, BandExcellent, dist.Bands[0].Band)
	assert.Equal(t, 16.0, dist.Bands[0].Min)
	assert.Equal(t, "Insufficient", dist.Bands[4].Label)

	summary, err := Summarize(scores)
	require.NoError(t, err)
	assert.Equal(t, 5, summary.Count)
	assert.InDelta(t, 14.2, summary.Mean, 1e-9)
	assert.Equal(t, 9.0, summary.Min)
	assert.Equal(t, 20.0, summary.Max)
	assert.Equal(t, 14.0, summary.Median)
	assert.InDelta(t, math.Sqrt(13.76), summary.StdDev, 1e-9)

	rates := PassRates(scores, []float64{10})
	require.Len(t, rates, 1)
	assert.Equal(t, 4, rates[0].Passed)
	assert.InDelta(t, 80.0, rates[0].Rate, 1e-9)
}

func TestDistributeBandsAreExhaustive(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	scale := DefaultScale()
	for i := 0; i < 200; i++ {
		values := make([]float64, rng.Intn(40))
		for j := range values {
			values[j] = rng.Float64()*26 - 3
		}
		dist := Distribute(values, scale)
		sum := 0
		for _, band := range dist.Bands {
			sum += band.Count
		}
		assert.Equal(t, len(values), sum)
	}
}

func TestPassRatesMonotonic(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	thresholds := []float64{0, 5, 8, 10, 12, 14, 16, 18, 20, 25}
	for i := 0; i < 100; i++ {
		values := make([]float64, 1+rng.Intn(30))
		for j := range values {
			values[j] = rng.Float64() * 20
		}
		rates := PassRates(values, thresholds)
		for k := 1; k < len(rates); k++ {
			assert.LessOrEqual(t, rates[k].Rate, rates[k-1].Rate)
		}
	}
}

func TestPassRatesEmptyIsZero(t *testing.T) {
	rates := PassRates(nil, []float64{10, 12, 14, 16})
	require.Len(t, rates, 4)
	for _, r := range rates {
		assert.Equal(t, 0.0, r.Rate)
		assert.False(t, math.IsNaN(r.Rate))
	}
}

func TestSummarizeEmptyIsNoData(t *testing.T) {
	_, err := Summarize([]float64{})
	assert.ErrorIs(t, err, ErrNoData)
}

func TestSummarizeEvenMedianAndZeroSpread(t *testing.T) {
	summary, err := Summarize([]float64{11, 11, 11, 11})
	require.NoError(t, err)
	assert.Equal(t, 0.0, summary.StdDev)
	assert.Equal(t, 11.0, summary.Median)

	summary, err = Summarize([]float64{4, 10, 8, 2})
	require.NoError(t, err)
	assert.Equal(t, 6.0, summary.Median)
}

func TestDefaultThresholds(t *testing.T) {
	assert.Equal(t, []float64{10, 12, 14, 16}, DefaultScale().DefaultThresholds())
}

func bandCount(d Distribution, b Band) int {
	for _, bc := range d.Bands {
		if bc.Band == b {
			return bc.Count
		}
	}
	return 0
}
