package table

import (
	"fmt"
	"strings"
)

// Annotation selects which matrices a table query returns.
type Annotation uint8

const (
	AnnotationDuration Annotation = 1 << iota
	AnnotationDistance
)

func (a Annotation) Has(o Annotation) bool {
	return a&o != 0
}

// ParseAnnotations reads a comma separated list such as "duration,distance".
func ParseAnnotations(s string) (Annotation, error) {
	if strings.TrimSpace(s) == "" {
		return AnnotationDuration, nil
	}
	var a Annotation
	for _, part := range strings.Split(s, ",") {
		switch strings.ToLower(strings.TrimSpace(part)) {
		case "duration":
			a |= AnnotationDuration
		case "distance":
			a |= AnnotationDistance
		default:
			return 0, fmt.Errorf("unknown annotation %q", part)
		}
	}
	return a, nil
}

// UnsnappablePolicy decides what happens to a coordinate that no segment
// could be found for.
type UnsnappablePolicy uint8

const (
	// PolicyReject fails the whole query with NoRoute.
	PolicyReject UnsnappablePolicy = iota
	// PolicyUnreachable keeps the query and fills the coordinate's row or
	// column with the unreachable sentinel.
	PolicyUnreachable
)

func ParseUnsnappablePolicy(s string) (UnsnappablePolicy, error) {
	switch strings.ToLower(s) {
	case "", "reject":
		return PolicyReject, nil
	case "unreachable":
		return PolicyUnreachable, nil
	}
	return 0, fmt.Errorf("unknown unsnappable policy %q, want reject or unreachable", s)
}

func (p UnsnappablePolicy) String() string {
	if p == PolicyUnreachable {
		return "unreachable"
	}
	return "reject"
}

// Params is one table request. nil Sources or Destinations means every
// coordinate. MaxMatrixSize overrides the engine default when > 0.
type Params struct {
	Sources       []int
	Destinations  []int
	Annotations   Annotation
	MaxMatrixSize int
	ScaleFactor   float64
}
