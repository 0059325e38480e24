package gradebook

import (
	"fmt"
	"math"
)

// Band is a qualitative range of scores. Bands are ordered from best to worst.
type Band string

const (
	BandExcellent    Band = "excellent"
	BandGood         Band = "good"
	BandFair         Band = "fair"
	BandPassable     Band = "passable"
	BandInsufficient Band = "insufficient"
)

// Bands lists every band from the highest to the lowest.
var Bands = []Band{BandExcellent, BandGood, BandFair, BandPassable, BandInsufficient}

var bandLabels = map[Band]string{
	BandExcellent:    "Excellent",
	BandGood:         "Good",
	BandFair:         "Fair",
	BandPassable:     "Passable",
	BandInsufficient: "Insufficient",
}

// Label is the appreciation shown to users for the band.
func (b Band) Label() string {
	if label, ok := bandLabels[b]; ok {
		return label
	}
	return string(b)
}

// DefaultScaleMax is the ceiling of the default 0-20 grading scale.
const DefaultScaleMax = 20.0

// Cutoffs are the lower bounds of each band expressed as fractions of the scale ceiling.
type Cutoffs struct {
	Excellent float64
	Good      float64
	Fair      float64
	Passable  float64
}

// DefaultCutoffs yields >=16, >=14, >=12 and >=10 on a 0-20 scale.
var DefaultCutoffs = Cutoffs{Excellent: 0.8, Good: 0.7, Fair: 0.6, Passable: 0.5}

// Scale bounds the grading range and holds the band cut points.
type Scale struct {
	Max     float64
	Cutoffs Cutoffs
}

// DefaultScale returns the 0-20 scale with the default cutoffs.
func DefaultScale() Scale {
	return Scale{Max: DefaultScaleMax, Cutoffs: DefaultCutoffs}
}

// Validate checks the ceiling is positive and the cutoffs are strictly decreasing within (0, 1].
func (s Scale) Validate() error {
	if !(s.Max > 0) || math.IsInf(s.Max, 0) {
		return fmt.Errorf("%w: max %v", ErrInvalidScale, s.Max)
	}
	c := s.Cutoffs
	if !(c.Excellent <= 1 && c.Excellent > c.Good && c.Good > c.Fair && c.Fair > c.Passable && c.Passable > 0) {
		return fmt.Errorf("%w: cutoffs %+v", ErrInvalidScale, c)
	}
	return nil
}

// Threshold returns the absolute lower bound of a band. Insufficient has no lower bound.
func (s Scale) Threshold(b Band) float64 {
	switch b {
	case BandExcellent:
		return s.Cutoffs.Excellent * s.Max
	case BandGood:
		return s.Cutoffs.Good * s.Max
	case BandFair:
		return s.Cutoffs.Fair * s.Max
	case BandPassable:
		return s.Cutoffs.Passable * s.Max
	default:
		return math.Inf(-1)
	}
}

// Classify maps a score to its band. Lower bounds are inclusive.
func (s Scale) Classify(value float64) Band {
	switch {
	case value >= s.Threshold(BandExcellent):
		return BandExcellent
	case value >= s.Threshold(BandGood):
		return BandGood
	case value >= s.Threshold(BandFair):
		return BandFair
	case value >= s.Threshold(BandPassable):
		return BandPassable
	default:
		return BandInsufficient
	}
}

// BandCount is the number of scores falling into a band.
type BandCount struct {
	Band  Band
	Label string
	Min   float64
	Count int
}

// Distribution holds band counts ordered from excellent to insufficient.
type Distribution struct {
	Bands []BandCount
	Total int
}

// Distribute partitions values into the five bands of the scale.
func Distribute(values []float64, scale Scale) Distribution {
	counts := make(map[Band]int, len(Bands))
	for _, v := range values {
		counts[scale.Classify(v)]++
	}
	dist := Distribution{Bands: make([]BandCount, 0, len(Bands)), Total: len(values)}
	for _, b := range Bands {
		floor := scale.Threshold(b)
		if math.IsInf(floor, -1) {
			floor = 0
		}
		dist.Bands = append(dist.Bands, BandCount{Band: b, Label: b.Label(), Min: floor, Count: counts[b]})
	}
	return dist
}

// PassRate is the percentage (0-100) of scores at or above a threshold.
type PassRate struct {
	Threshold float64
	Passed    int
	Rate      float64
}

// PassRates computes the pass rate for every threshold, in the order given.
// An empty score list yields 0% for every threshold.
func PassRates(values []float64, thresholds []float64) []PassRate {
	rates := make([]PassRate, 0, len(thresholds))
	for _, t := range thresholds {
		passed := 0
		for _, v := range values {
			if v >= t {
				passed++
			}
		}
		rate := 0.0
		if len(values) > 0 {
			rate = 100 * float64(passed) / float64(len(values))
		}
		rates = append(rates, PassRate{Threshold: t, Passed: passed, Rate: rate})
	}
	return rates
}

// DefaultThresholds returns the pass thresholds at each band cut point of the scale, ascending.
func (s Scale) DefaultThresholds() []float64 {
	return []float64{
		s.Threshold(BandPassable),
		s.Threshold(BandFair),
		s.Threshold(BandGood),
		s.Threshold(BandExcellent),
	}
}

// Summary holds unweighted descriptive statistics over raw scores.
type Summary struct {
	Count  int
	Min    float64
	Max    float64
	Mean   float64
	Median float64
	StdDev float64
}

// Summarize computes count, min, max, mean, median and population standard deviation.
// It returns ErrNoData for an empty input.
func Summarize(values []float64) (Summary, error) {
	if len(values) == 0 {
		return Summary{}, ErrNoData
	}
	sorted := sortedCopy(values)
	var sum float64
	for _, v := range sorted {
		sum += v
	}
	n := float64(len(sorted))
	mean := sum / n
	var squares float64
	for _, v := range sorted {
		d := v - mean
		squares += d * d
	}
	median := sorted[len(sorted)/2]
	if len(sorted)%2 == 0 {
		median = (sorted[len(sorted)/2-1] + sorted[len(sorted)/2]) / 2
	}
	return Summary{
		Count:  len(sorted),
		Min:    sorted[0],
		Max:    sorted[len(sorted)-1],
		Mean:   mean,
		Median: median,
		StdDev: math.Sqrt(squares / n),
	}, nil
}
