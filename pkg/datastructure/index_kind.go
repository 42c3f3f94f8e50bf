package datastructure

import (
	"fmt"
	"strings"
)

// Algorithm tags which query structure an index image carries.
type Algorithm uint8

const (
	AlgorithmCH Algorithm = iota + 1
	AlgorithmMLD
)

func (a Algorithm) String() string {
	switch a {
	case AlgorithmCH:
		return "CH"
	case AlgorithmMLD:
		return "MLD"
	}
	return fmt.Sprintf("Algorithm(%d)", uint8(a))
}

func ParseAlgorithm(s string) (Algorithm, error) {
	switch strings.ToLower(s) {
	case "ch":
		return AlgorithmCH, nil
	case "mld":
		return AlgorithmMLD, nil
	}
	return 0, fmt.Errorf("unknown algorithm %q, want ch or mld", s)
}

// WeightMetric is the metric an index was built (contracted or customized) for.
type WeightMetric uint8

const (
	MetricDuration WeightMetric = iota + 1
	MetricDistance
)

func (m WeightMetric) String() string {
	switch m {
	case MetricDuration:
		return "duration"
	case MetricDistance:
		return "distance"
	}
	return fmt.Sprintf("WeightMetric(%d)", uint8(m))
}

func ParseWeightMetric(s string) (WeightMetric, error) {
	switch strings.ToLower(s) {
	case "duration":
		return MetricDuration, nil
	case "distance":
		return MetricDistance, nil
	}
	return 0, fmt.Errorf("unknown metric %q, want duration or distance", s)
}

func (m WeightMetric) WeightOf(duration, distance float64) float64 {
	if m == MetricDistance {
		return distance
	}
	return duration
}
