package datastructure

// PhantomSegment is one traversable direction of the edge a query point was
// projected onto. Offset is the cost from Tail to the projected point, Total
// the cost of the whole edge.
type PhantomSegment struct {
	EdgeID int32 `json:"edge_id"`
	Tail   int32 `json:"tail"`
	Head   int32 `json:"head"`
	Offset Cost  `json:"offset"`
	Total  Cost  `json:"total"`
}

var invalidSegment = PhantomSegment{EdgeID: -1, Tail: -1, Head: -1}

func (s PhantomSegment) IsValid() bool {
	return s.EdgeID >= 0
}

// Remaining is the cost from the projected point to Head.
func (s PhantomSegment) Remaining() Cost {
	return s.Total.Sub(s.Offset)
}

// PhantomNode is a query endpoint lying on an edge instead of on a graph node.
// Forward covers the edge u->v the point was projected onto, Reverse its twin
// v->u when that one exists.
type PhantomNode struct {
	Forward       PhantomSegment `json:"forward"`
	Reverse       PhantomSegment `json:"reverse"`
	Location      Coordinate     `json:"location"`
	InputLocation Coordinate     `json:"input_location"`
	SnapDistance  float64        `json:"snap_distance"` // meter
	ComponentID   int32          `json:"component_id"`
}

// NewInvalidPhantomNode marks an input coordinate that could not be snapped.
func NewInvalidPhantomNode(input Coordinate) PhantomNode {
	return PhantomNode{
		Forward:       invalidSegment,
		Reverse:       invalidSegment,
		InputLocation: input,
		ComponentID:   -1,
	}
}

// NewPhantomNode projects a point at ratio (0 at the tail, 1 at the head) of
// the edge. The reverse segment is filled from the edge's twin when it has one.
func NewPhantomNode(g *Graph, edgeID int32, ratio float64, location, input Coordinate, snapDist float64) PhantomNode {
	if ratio < 0 {
		ratio = 0
	} else if ratio > 1 {
		ratio = 1
	}
	e := g.GetEdge(edgeID)
	pn := PhantomNode{
		Forward: PhantomSegment{
			EdgeID: e.ID,
			Tail:   e.From,
			Head:   e.To,
			Offset: e.Cost().Scale(ratio),
			Total:  e.Cost(),
		},
		Reverse:       invalidSegment,
		Location:      location,
		InputLocation: input,
		SnapDistance:  snapDist,
		ComponentID:   g.WeakComponent[e.From],
	}

	if twin := g.Twin[edgeID]; twin >= 0 {
		r := g.GetEdge(twin)
		pn.Reverse = PhantomSegment{
			EdgeID: r.ID,
			Tail:   r.From,
			Head:   r.To,
			Offset: r.Cost().Scale(1 - ratio),
			Total:  r.Cost(),
		}
	}
	return pn
}

func (p PhantomNode) IsValid() bool {
	return p.Forward.IsValid() || p.Reverse.IsValid()
}

func (p PhantomNode) Segments() []PhantomSegment {
	segs := make([]PhantomSegment, 0, 2)
	if p.Forward.IsValid() {
		segs = append(segs, p.Forward)
	}
	if p.Reverse.IsValid() {
		segs = append(segs, p.Reverse)
	}
	return segs
}

// DirectCost returns the cost of walking from source to target along a
// segment they share, when target does not lie behind source.
func DirectCost(source, target PhantomNode) (Cost, bool) {
	best := InfCost
	found := false
	for _, s := range source.Segments() {
		for _, t := range target.Segments() {
			if s.EdgeID != t.EdgeID || t.Offset.Weight < s.Offset.Weight {
				continue
			}
			c := t.Offset.Sub(s.Offset)
			if c.Weight < best.Weight {
				best = c
				found = true
			}
		}
	}
	return best, found
}
