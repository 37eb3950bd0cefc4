package domain

// NodeKind classifies topology nodes
type NodeKind string

const (
	NodeBufferStop   NodeKind = "bufferStop"
	NodeOpenEnd      NodeKind = "openEnd"
	NodeMacroscopic  NodeKind = "macroscopicNode"
	NodeSwitch       NodeKind = "switch"
	NodeCrossing     NodeKind = "crossing"
	NodeContinuation NodeKind = "continuation"
)

// IsJunction reports whether the node is a switch or crossing
func (k NodeKind) IsJunction() bool {
	return k == NodeSwitch || k == NodeCrossing
}

// IsTerminal reports whether the node ends a track without linking it
func (k NodeKind) IsTerminal() bool {
	return k == NodeBufferStop || k == NodeOpenEnd || k == NodeMacroscopic
}

// Port is the side of a node an edge or track end is attached to
type Port string

const (
	PortTrunk   Port = "trunk"
	PortLeft    Port = "left"
	PortRight   Port = "right"
	PortSingle  Port = "single"
	PortContA   Port = "contA"
	PortContB   Port = "contB"
	PortCrossA0 Port = "crossA0"
	PortCrossB0 Port = "crossB0"
	PortCrossA1 Port = "crossA1"
	PortCrossB1 Port = "crossB1"
)

// Offset is the vertical displacement a branch leaving through this port takes in a schematic
func (p Port) Offset() float64 {
	switch p {
	case PortLeft, PortCrossA1:
		return 2
	case PortRight, PortCrossB1:
		return -2
	}
	return 0
}

// Attachment is a place on a track that touches a node
type Attachment struct {
	TrackID string
	Pos     float64
	// End is set when a track end is attached, empty for the host track of a junction
	End  EndSide
	Port Port
}

// Node is a merged junction point or a track end
type Node struct {
	Index int
	ID    string
	Kind  NodeKind

	// host track and position for junctions, owning track for terminals
	TrackID string
	Pos     float64

	// DeviatingSide is "left" or "right" for switches
	DeviatingSide string
	MacroID       string
	GeoCoord      *GeoCoord

	// ConnectionIDs keeps the identity of every connection merged into this node
	ConnectionIDs []string
	Attachments   []Attachment
}

// Edge is a track segment between two nodes
type Edge struct {
	Index    int
	TrackID  string
	From     int
	To       int
	FromPort Port
	ToPort   Port
	Start    float64
	End      float64
}

// Length is the track-local length of the segment
func (e Edge) Length() float64 {
	return e.End - e.Start
}

// Relation records which node a declared connection was resolved into
type Relation struct {
	ConnectionID string
	Ref          string
	Owner        string
	TrackID      string
	Node         int
}

// MacroNode aggregates terminal nodes sharing a macroscopic node id.
// Name is empty when the members declare conflicting names.
type MacroNode struct {
	ID     string
	Name   string
	OCPRef string
	Names  []string
	Nodes  []int
}

// Graph is the resolved topology, an arena of nodes and edges addressed by index
type Graph struct {
	Nodes     []Node
	Edges     []Edge
	Relations []Relation
	Macros    []MacroNode

	// Declared is the number of connection declarations the graph was built from
	Declared int
}

// Unresolved is the number of declared connections without a relation
func (g *Graph) Unresolved() int {
	return g.Declared - len(g.Relations)
}

// Junctions returns switch and crossing nodes
func (g *Graph) Junctions() []Node {
	var out []Node
	for _, n := range g.Nodes {
		if n.Kind.IsJunction() {
			out = append(out, n)
		}
	}
	return out
}

// CountByKind counts nodes per kind
func (g *Graph) CountByKind() map[NodeKind]int {
	counts := make(map[NodeKind]int)
	for _, n := range g.Nodes {
		counts[n.Kind]++
	}
	return counts
}

// EdgesAt returns the indices of edges touching node n
func (g *Graph) EdgesAt(n int) []int {
	var out []int
	for _, e := range g.Edges {
		if e.From == n || e.To == n {
			out = append(out, e.Index)
		}
	}
	return out
}

// NodeByID finds a node by its id
func (g *Graph) NodeByID(id string) (Node, bool) {
	for _, n := range g.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// TrackEdges returns the edges of one track in position order
func (g *Graph) TrackEdges(trackID string) []Edge {
	var out []Edge
	for _, e := range g.Edges {
		if e.TrackID == trackID {
			out = append(out, e)
		}
	}
	return out
}
