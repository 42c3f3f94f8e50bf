package geo

import (
	"github.com/golang/geo/s2"
	"github.com/lintang-b-s/navigatorx-table/pkg/datastructure"
)

func toS2Point(c datastructure.Coordinate) s2.Point {
	return s2.PointFromLatLng(s2.LatLngFromDegrees(c.Lat, c.Lon))
}

// Projection is the closest point of a segment to a query point.
type Projection struct {
	Location datastructure.Coordinate
	Ratio    float64 // 0 at the segment start, 1 at its end
	Distance float64 // meter, query point to Location
}

// ProjectPointToSegment projects p onto the great circle segment a-b.
func ProjectPointToSegment(a, b, p datastructure.Coordinate) Projection {
	pa, pb, pp := toS2Point(a), toS2Point(b), toS2Point(p)

	segLen := pa.Distance(pb).Radians()
	if segLen == 0 {
		return Projection{
			Location: a,
			Ratio:    0,
			Distance: pp.Distance(pa).Radians() * earthRadiusM,
		}
	}

	proj := s2.Project(pp, pa, pb)
	ll := s2.LatLngFromPoint(proj)

	ratio := pa.Distance(proj).Radians() / segLen
	if ratio > 1 {
		ratio = 1
	}
	return Projection{
		Location: datastructure.NewCoordinate(ll.Lat.Degrees(), ll.Lng.Degrees()),
		Ratio:    ratio,
		Distance: pp.Distance(proj).Radians() * earthRadiusM,
	}
}
