package rest

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/lintang-b-s/navigatorx-table/pkg/datastructure"
	"github.com/twpayne/go-polyline"
)

// parseCoordinates reads the OSRM path segment: "lon,lat;lon,lat" or
// "polyline(<encoded>)" with precision 5.
func parseCoordinates(raw string) ([]datastructure.Coordinate, error) {
	s, err := url.PathUnescape(raw)
	if err != nil {
		return nil, fmt.Errorf("bad coordinate encoding: %w", err)
	}
	if s == "" {
		return nil, fmt.Errorf("coordinates must not be empty")
	}

	if strings.HasPrefix(s, "polyline(") && strings.HasSuffix(s, ")") {
		encoded := strings.TrimSuffix(strings.TrimPrefix(s, "polyline("), ")")
		decoded, _, err := polyline.DecodeCoords([]byte(encoded))
		if err != nil {
			return nil, fmt.Errorf("bad polyline: %w", err)
		}
		coords := make([]datastructure.Coordinate, len(decoded))
		for i, c := range decoded {
			coords[i] = datastructure.NewCoordinate(c[0], c[1])
		}
		return coords, validateCoordinates(coords)
	}

	parts := strings.Split(s, ";")
	coords := make([]datastructure.Coordinate, 0, len(parts))
	for i, p := range parts {
		lonLat := strings.Split(p, ",")
		if len(lonLat) != 2 {
			return nil, fmt.Errorf("coordinate %d: want lon,lat, got %q", i, p)
		}
		lon, err := strconv.ParseFloat(lonLat[0], 64)
		if err != nil {
			return nil, fmt.Errorf("coordinate %d: bad longitude: %w", i, err)
		}
		lat, err := strconv.ParseFloat(lonLat[1], 64)
		if err != nil {
			return nil, fmt.Errorf("coordinate %d: bad latitude: %w", i, err)
		}
		coords = append(coords, datastructure.NewCoordinate(lat, lon))
	}
	return coords, validateCoordinates(coords)
}

func validateCoordinates(coords []datastructure.Coordinate) error {
	for i, c := range coords {
		if c.Lat < -90 || c.Lat > 90 || c.Lon < -180 || c.Lon > 180 {
			return fmt.Errorf("coordinate %d out of range: %v,%v", i, c.Lon, c.Lat)
		}
	}
	return nil
}

// osrmQuery splits the raw query on '&' only. url.ParseQuery drops pairs that
// contain ';', which OSRM uses inside sources and destinations.
func osrmQuery(raw string) (url.Values, error) {
	q := url.Values{}
	for _, pair := range strings.Split(raw, "&") {
		if pair == "" {
			continue
		}
		k, v, _ := strings.Cut(pair, "=")
		key, err := url.QueryUnescape(k)
		if err != nil {
			return nil, fmt.Errorf("bad query key %q: %w", k, err)
		}
		val, err := url.QueryUnescape(v)
		if err != nil {
			return nil, fmt.Errorf("bad query value for %s: %w", key, err)
		}
		q.Add(key, val)
	}
	return q, nil
}
