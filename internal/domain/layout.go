package domain

import "github.com/paulmach/orb"

// NodePlacement is the schematic position of a topology node
type NodePlacement struct {
	Node  int
	ID    string
	Kind  NodeKind
	Point orb.Point
}

// EdgePath is the polyline drawn for a track segment
type EdgePath struct {
	Edge    int
	TrackID string
	Line    orb.LineString
}

// ObjectPlacement is a symbol projected onto its segment
type ObjectPlacement struct {
	ObjectID string
	Kind     ObjectKind
	Point    orb.Point
	// Tangent is the unit direction of the segment at the symbol
	Tangent orb.Point
}

// Layout is a regenerable schematic view of the graph
type Layout struct {
	Nodes   []NodePlacement
	Edges   []EdgePath
	Objects []ObjectPlacement
	Bounds  orb.Bound
}

// Empty reports whether nothing was placed
func (l *Layout) Empty() bool {
	return l == nil || len(l.Nodes) == 0
}
