package osmparser

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/lintang-b-s/navigatorx-table/pkg/datastructure"
	"github.com/lintang-b-s/navigatorx-table/pkg/geo"
	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"
	"go.uber.org/zap"
)

const defaultSpeed = 35.0 // km/h

var (
	skipHighway = map[string]struct{}{
		"footway":                {},
		"construction":           {},
		"cycleway":               {},
		"path":                   {},
		"pedestrian":             {},
		"busway":                 {},
		"steps":                  {},
		"bridleway":              {},
		"corridor":               {},
		"street_lamp":            {},
		"bus_stop":               {},
		"crossing":               {},
		"cyclist_waiting_aid":    {},
		"elevator":               {},
		"emergency_bay":          {},
		"emergency_access_point": {},
		"give_way":               {},
		"phone":                  {},
		"ladder":                 {},
		"milestone":              {},
		"passing_place":          {},
		"platform":               {},
		"proposed":               {},
		"speed_camera":           {},
		"track":                  {},
		"bus_guideway":           {},
		"speed_display":          {},
		"stop":                   {},
		"toll_gantry":            {},
		"traffic_mirror":         {},
		"traffic_signals":        {},
		"trailhead":              {},
	}
)

// OsmParser turns the drivable ways of an OSM pbf into the base graph. Every
// way node becomes a graph node so edges stay straight segments.
type OsmParser struct {
	wayNodes  map[osm.NodeID]struct{}
	coords    map[osm.NodeID]datastructure.Coordinate
	nodeIDMap map[osm.NodeID]int32
	nodes     []datastructure.Coordinate
	edges     []datastructure.Edge
	logger    *zap.Logger
}

func NewOSMParser(logger *zap.Logger) *OsmParser {
	return &OsmParser{
		wayNodes:  make(map[osm.NodeID]struct{}),
		coords:    make(map[osm.NodeID]datastructure.Coordinate),
		nodeIDMap: make(map[osm.NodeID]int32),
		logger:    logger,
	}
}

func (p *OsmParser) Parse(ctx context.Context, mapFile string) (*datastructure.Graph, error) {
	f, err := os.Open(mapFile)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return p.ParseReader(ctx, f)
}

// ParseReader needs two passes: the first collects the nodes referenced by
// accepted ways, the second stores their coordinates (nodes come before ways
// in a pbf) and emits the edges.
func (p *OsmParser) ParseReader(ctx context.Context, r io.ReadSeeker) (*datastructure.Graph, error) {
	scanner := osmpbf.New(ctx, r, 0)
	countWays := 0
	for scanner.Scan() {
		way, ok := scanner.Object().(*osm.Way)
		if !ok || len(way.Nodes) < 2 || !acceptOsmWay(way) {
			continue
		}
		countWays++
		if countWays%50000 == 0 {
			p.logger.Info("reading openstreetmap ways", zap.Int("ways", countWays))
		}
		for _, n := range way.Nodes {
			p.wayNodes[n.ID] = struct{}{}
		}
	}
	if err := scanner.Err(); err != nil {
		scanner.Close()
		return nil, fmt.Errorf("scan ways: %w", err)
	}
	scanner.Close()

	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}

	scanner = osmpbf.New(ctx, r, 0)
	defer scanner.Close()
	for scanner.Scan() {
		switch o := scanner.Object().(type) {
		case *osm.Node:
			if _, ok := p.wayNodes[o.ID]; ok {
				p.coords[o.ID] = datastructure.NewCoordinate(o.Lat, o.Lon)
			}
		case *osm.Way:
			if len(o.Nodes) < 2 || !acceptOsmWay(o) {
				continue
			}
			if err := p.processWay(o); err != nil {
				p.logger.Debug("skipping way", zap.Int64("way", int64(o.ID)), zap.Error(err))
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan nodes and ways: %w", err)
	}

	p.logger.Info("osm parsed",
		zap.Int("ways", countWays),
		zap.Int("nodes", len(p.nodes)),
		zap.Int("edges", len(p.edges)))
	return datastructure.NewGraph(p.nodes, p.edges), nil
}

func (p *OsmParser) nodeID(id osm.NodeID) int32 {
	if idx, ok := p.nodeIDMap[id]; ok {
		return idx
	}
	idx := int32(len(p.nodes))
	p.nodeIDMap[id] = idx
	p.nodes = append(p.nodes, p.coords[id])
	return idx
}

// processWay adds one edge per pair of consecutive way nodes, in the allowed
// directions. Duration is in second, distance in meter.
func (p *OsmParser) processWay(way *osm.Way) error {
	speed, err := waySpeed(way)
	if err != nil {
		return err
	}
	forward, backward := wayDirections(way)
	if !forward && !backward {
		return nil
	}

	for i := 1; i < len(way.Nodes); i++ {
		a, okA := p.coords[way.Nodes[i-1].ID]
		b, okB := p.coords[way.Nodes[i].ID]
		if !okA || !okB {
			continue
		}
		if way.Nodes[i-1].ID == way.Nodes[i].ID {
			continue
		}
		from := p.nodeID(way.Nodes[i-1].ID)
		to := p.nodeID(way.Nodes[i].ID)

		distance := geo.HaversineMeters(a, b)
		duration := distance / (speed / 3.6)
		if forward {
			p.edges = append(p.edges, datastructure.NewEdge(from, to, duration, duration, distance))
		}
		if backward {
			p.edges = append(p.edges, datastructure.NewEdge(to, from, duration, duration, distance))
		}
	}
	return nil
}

func isRestricted(value string) bool {
	switch value {
	case "no", "restricted", "military", "emergency", "private", "permit":
		return true
	}
	return false
}

// wayDirections returns whether the way may be driven along and against its
// node order.
func wayDirections(way *osm.Way) (bool, bool) {
	if isRestricted(way.Tags.Find("access")) || isRestricted(way.Tags.Find("motor_vehicle")) {
		return false, false
	}

	forward, backward := true, true
	switch way.Tags.Find("oneway") {
	case "yes", "true", "1":
		backward = false
	case "-1", "reverse":
		forward = false
	case "no", "false", "0":
	default:
		junction := way.Tags.Find("junction")
		if junction == "roundabout" || junction == "circular" || way.Tags.Find("highway") == "motorway" {
			backward = false
		}
	}

	if isRestricted(way.Tags.Find("vehicle:forward")) || isRestricted(way.Tags.Find("motor_vehicle:forward")) {
		forward = false
	}
	if isRestricted(way.Tags.Find("vehicle:backward")) || isRestricted(way.Tags.Find("motor_vehicle:backward")) {
		backward = false
	}
	return forward, backward
}

// waySpeed is the maxspeed tag in km/h, falling back to the highway type.
func waySpeed(way *osm.Way) (float64, error) {
	if v := way.Tags.Find("maxspeed"); v != "" {
		speed, err := parseMaxSpeed(v)
		if err != nil {
			return 0, err
		}
		if speed > 0 {
			return speed, nil
		}
	}
	if highway := way.Tags.Find("highway"); highway != "" {
		return RoadTypeMaxSpeed(highway), nil
	}
	return defaultSpeed, nil
}

func parseMaxSpeed(v string) (float64, error) {
	v = strings.TrimSpace(v)
	factor := 1.0
	switch {
	case strings.HasSuffix(v, "mph"):
		v = strings.TrimSpace(strings.TrimSuffix(v, "mph"))
		factor = 1.60934
	case strings.HasSuffix(v, "km/h"):
		v = strings.TrimSpace(strings.TrimSuffix(v, "km/h"))
	case strings.HasSuffix(v, "knots"):
		v = strings.TrimSpace(strings.TrimSuffix(v, "knots"))
		factor = 1.852
	case v == "none" || v == "signals" || v == "variable" || strings.Contains(v, ":"):
		// country defaults like "ID:urban" fall back to the road type
		return 0, nil
	}
	speed, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("bad maxspeed %q: %w", v, err)
	}
	return speed * factor, nil
}

func RoadTypeMaxSpeed(roadType string) float64 {
	switch roadType {
	case "motorway":
		return 100
	case "trunk":
		return 70
	case "primary":
		return 65
	case "secondary":
		return 60
	case "tertiary":
		return 50
	case "unclassified":
		return 30
	case "residential":
		return 30
	case "service":
		return 20
	case "motorway_link":
		return 70
	case "trunk_link":
		return 65
	case "primary_link":
		return 60
	case "secondary_link":
		return 50
	case "tertiary_link":
		return 40
	case "living_street":
		return 10
	case "road":
		return 20
	default:
		return 40
	}
}

func acceptOsmWay(way *osm.Way) bool {
	highway := way.Tags.Find("highway")
	junction := way.Tags.Find("junction")
	if highway != "" {
		if _, ok := skipHighway[highway]; !ok {
			return true
		}
	} else if way.Tags.Find("route") == "road" {
		return true
	} else if junction != "" {
		return true
	}
	return false
}
