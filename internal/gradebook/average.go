package gradebook

import "math"

// WeightedValue is a score paired with its coefficient.
type WeightedValue struct {
	Value  float64
	Weight float64
}

// WeightedAverage returns sum(value*weight)/sum(weight).
// It returns ErrNoData for an empty input and ErrInvalidWeight when any weight is not positive.
// The result is never rounded; rounding is a presentation concern.
func WeightedAverage(values []WeightedValue) (float64, error) {
	if len(values) == 0 {
		return 0, ErrNoData
	}
	var sum, totalWeight float64
	for _, v := range values {
		if !(v.Weight > 0) || math.IsInf(v.Weight, 0) {
			return 0, ErrInvalidWeight
		}
		sum += v.Value * v.Weight
		totalWeight += v.Weight
	}
	if len(values) == 1 {
		return values[0].Value, nil
	}
	return sum / totalWeight, nil
}

// RecordsAverage resolves each record's weight against the evaluation specs and averages them.
func RecordsAverage(records []ScoreRecord, specs []EvaluationSpec) (float64, error) {
	idx := newSpecIndex(specs)
	values := make([]WeightedValue, 0, len(records))
	for _, record := range records {
		values = append(values, WeightedValue{Value: record.Value, Weight: idx.weight(record)})
	}
	return WeightedAverage(values)
}
