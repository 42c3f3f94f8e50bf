package geo

import (
	"testing"

	"github.com/lintang-b-s/navigatorx-table/pkg/datastructure"
	"github.com/stretchr/testify/assert"
)

func TestProjectPointToSegment(t *testing.T) {
	a := datastructure.NewCoordinate(47.667324, -122.118989)
	b := datastructure.NewCoordinate(47.667338, -122.121784)

	cases := []struct {
		name      string
		query     datastructure.Coordinate
		wantRatio float64
		maxDist   float64
	}{
		{"on the segment start", a, 0, 0.01},
		{"on the segment end", b, 1, 0.01},
		{"beside the middle", datastructure.NewCoordinate(47.667347, -122.120561), 0.56, 5},
		{"before the start clamps", datastructure.NewCoordinate(47.667320, -122.117000), 0, 200},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			proj := ProjectPointToSegment(a, b, c.query)
			assert.InDelta(t, c.wantRatio, proj.Ratio, 0.02)
			assert.LessOrEqual(t, proj.Distance, c.maxDist)
		})
	}
}

func TestHaversineAndBoundingBox(t *testing.T) {
	a := datastructure.NewCoordinate(-7.565837, 110.831586)
	b := datastructure.NewCoordinate(-7.566406, 110.833232)
	assert.InDelta(t, 192, HaversineMeters(a, b), 5)

	lo, hi := BoundingBox(a, 1000)
	assert.InDelta(t, 1000, HaversineMeters(a, datastructure.NewCoordinate(hi.Lat, a.Lon)), 1)
	assert.InDelta(t, 1000, HaversineMeters(a, datastructure.NewCoordinate(a.Lat, lo.Lon)), 1)
}
