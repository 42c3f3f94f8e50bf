package datastructure

import "math"

type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

func NewCoordinate(lat, lon float64) Coordinate {
	return Coordinate{
		Lat: lat,
		Lon: lon,
	}
}

// Cost is the triple carried along every search: the optimised weight plus
// the duration (second) and distance (meter) of the path that realises it.
type Cost struct {
	Weight   float64
	Duration float64
	Distance float64
}

var InfCost = Cost{Weight: math.Inf(1), Duration: math.Inf(1), Distance: math.Inf(1)}

func NewCost(weight, duration, distance float64) Cost {
	return Cost{
		Weight:   weight,
		Duration: duration,
		Distance: distance,
	}
}

func (c Cost) Add(o Cost) Cost {
	return Cost{
		Weight:   c.Weight + o.Weight,
		Duration: c.Duration + o.Duration,
		Distance: c.Distance + o.Distance,
	}
}

func (c Cost) Sub(o Cost) Cost {
	return Cost{
		Weight:   c.Weight - o.Weight,
		Duration: c.Duration - o.Duration,
		Distance: c.Distance - o.Distance,
	}
}

func (c Cost) Scale(ratio float64) Cost {
	return Cost{
		Weight:   c.Weight * ratio,
		Duration: c.Duration * ratio,
		Distance: c.Distance * ratio,
	}
}

func (c Cost) IsInf() bool {
	return math.IsInf(c.Weight, 1)
}
