// Package schematic derives a planar drawing of the topology graph.
//
// Nodes are placed at their mileage along x and at a BFS level along y, where
// every edge leaving a switch branch shifts the level by the port offset.
// Edges become axis-aligned polylines and objects are projected onto the
// edge of their track that covers their position. The result depends only on
// the input, so the same model always yields the same layout.
package schematic

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"railio/internal/application"
	"railio/internal/domain"
)

// Options tunes the solver
type Options struct {
	// PreferGeo places nodes at their geoCoord when every node has one
	PreferGeo bool
}

const (
	componentGap = 4.0
	spread       = 1.0
)

type neighbour struct {
	node  int
	shift float64
}

type solver struct {
	graph      *domain.Graph
	assignment *domain.Assignment
	warnings   []application.Warning

	bounds map[string][2]float64
	points []orb.Point
}

// Solve lays out graph. It never fails; degenerate input yields warnings and
// a best-effort layout that is non-empty whenever the graph has nodes.
func Solve(graph *domain.Graph, assignment *domain.Assignment, objects []domain.Object, opts Options) (*domain.Layout, []application.Warning) {
	if graph == nil || len(graph.Nodes) == 0 {
		return &domain.Layout{}, []application.Warning{&DegenerateWarning{Reason: reasonEmptyGraph}}
	}

	s := &solver{
		graph:      graph,
		assignment: assignment,
		bounds:     trackBounds(graph),
		points:     make([]orb.Point, len(graph.Nodes)),
	}

	if !opts.PreferGeo || !s.placeGeo() {
		s.placeX()
		s.placeY()
	}
	s.separate()

	layout := &domain.Layout{}
	for i, n := range graph.Nodes {
		layout.Nodes = append(layout.Nodes, domain.NodePlacement{Node: i, ID: n.ID, Kind: n.Kind, Point: s.points[i]})
		if len(graph.EdgesAt(i)) == 0 {
			s.warn(n.ID, reasonIsolated)
		}
	}
	for _, e := range graph.Edges {
		if e.Length() <= 0 {
			s.warn(fmt.Sprintf("%s[%d]", e.TrackID, e.Index), reasonEmptyEdge)
		}
		layout.Edges = append(layout.Edges, domain.EdgePath{
			Edge:    e.Index,
			TrackID: e.TrackID,
			Line:    s.route(e),
		})
	}
	layout.Objects = s.project(objects, layout.Edges)
	layout.Bounds = boundsOf(layout)
	return layout, s.warnings
}

func (s *solver) warn(id, reason string) {
	s.warnings = append(s.warnings, &DegenerateWarning{ID: id, Reason: reason})
}

// trackBounds collects the first and last position of every track from its segments
func trackBounds(g *domain.Graph) map[string][2]float64 {
	out := make(map[string][2]float64)
	for _, e := range g.Edges {
		b, ok := out[e.TrackID]
		if !ok {
			out[e.TrackID] = [2]float64{e.Start, e.End}
			continue
		}
		b[0] = math.Min(b[0], e.Start)
		b[1] = math.Max(b[1], e.End)
		out[e.TrackID] = b
	}
	return out
}

// placeGeo uses geo coordinates when every node carries a readable one
func (s *solver) placeGeo() bool {
	pts := make([]orb.Point, len(s.graph.Nodes))
	for i, n := range s.graph.Nodes {
		p, ok := n.GeoCoord.Point()
		if !ok {
			return false
		}
		pts[i] = p
	}
	copy(s.points, pts)
	return true
}

func (s *solver) placeX() {
	for i, n := range s.graph.Nodes {
		m, ok := s.mileageOf(n)
		if !ok || !finite(m) {
			s.warn(n.ID, reasonMissingMileage)
			m = n.Pos
		}
		if !finite(m) {
			m = 0
		}
		s.points[i][0] = m
	}
}

// mileageOf reads a node's mileage from the first attached track that has one
func (s *solver) mileageOf(n domain.Node) (float64, bool) {
	if s.assignment == nil {
		return 0, false
	}
	for _, a := range n.Attachments {
		tm, ok := s.assignment.Tracks[a.TrackID]
		if !ok {
			continue
		}
		switch a.End {
		case domain.SideBegin:
			return tm.Start, true
		case domain.SideEnd:
			return tm.End, true
		}
		if p, ok := tm.Point(n.ID); ok {
			return p.Mileage, true
		}
		if b, ok := s.bounds[a.TrackID]; ok {
			return tm.At(a.Pos, b[0], b[1]), true
		}
	}
	return 0, false
}

// placeY assigns BFS levels per connected component and stacks components
func (s *solver) placeY() {
	adj := make([][]neighbour, len(s.graph.Nodes))
	for _, e := range s.graph.Edges {
		if e.From == e.To {
			continue
		}
		shift := e.FromPort.Offset() - e.ToPort.Offset()
		adj[e.From] = append(adj[e.From], neighbour{node: e.To, shift: shift})
		adj[e.To] = append(adj[e.To], neighbour{node: e.From, shift: -shift})
	}

	visited := make([]bool, len(s.graph.Nodes))
	base := 0.0
	for start := range s.graph.Nodes {
		if visited[start] {
			continue
		}
		visited[start] = true
		s.points[start][1] = 0
		component := []int{start}
		for q := 0; q < len(component); q++ {
			n := component[q]
			for _, nb := range adj[n] {
				if visited[nb.node] {
					continue
				}
				visited[nb.node] = true
				s.points[nb.node][1] = s.points[n][1] + nb.shift
				component = append(component, nb.node)
			}
		}

		lo, hi := math.Inf(1), math.Inf(-1)
		for _, n := range component {
			lo = math.Min(lo, s.points[n][1])
			hi = math.Max(hi, s.points[n][1])
		}
		for _, n := range component {
			s.points[n][1] += base - lo
		}
		base += hi - lo + componentGap
	}
}

// separate moves nodes that share a point upwards, in index order, until every node is distinct.
// Coordinates too large for a spread step to move them stay shared.
func (s *solver) separate() {
	taken := make(map[orb.Point]bool, len(s.points))
	key := func(p orb.Point) orb.Point {
		return orb.Point{math.Round(p[0]*1e6) / 1e6, math.Round(p[1]*1e6) / 1e6}
	}
	for i := range s.points {
		for taken[key(s.points[i])] {
			next := s.points[i][1] + spread
			if next == s.points[i][1] {
				break
			}
			s.points[i][1] = next
		}
		taken[key(s.points[i])] = true
	}
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// route draws an edge as an L: the vertical leg sits at the end whose port deviates
func (s *solver) route(e domain.Edge) orb.LineString {
	a, b := s.points[e.From], s.points[e.To]
	if a[1] == b[1] || a[0] == b[0] {
		return orb.LineString{a, b}
	}
	if e.FromPort.Offset() != 0 || e.ToPort.Offset() == 0 {
		return orb.LineString{a, {a[0], b[1]}, b}
	}
	return orb.LineString{a, {b[0], a[1]}, b}
}

// project places every positioned object on the segment of its track covering its position
func (s *solver) project(objects []domain.Object, paths []domain.EdgePath) []domain.ObjectPlacement {
	var out []domain.ObjectPlacement
	for _, o := range objects {
		if !o.Positioned {
			continue
		}
		e, ok := s.edgeFor(o.TrackID, o.Pos)
		if !ok {
			s.warn(o.ID, reasonOffGraph)
			continue
		}
		frac := 0.0
		if e.Length() > 0 {
			frac = (o.Pos - e.Start) / e.Length()
		}
		p, tangent := along(paths[e.Index].Line, frac)
		out = append(out, domain.ObjectPlacement{ObjectID: o.ID, Kind: o.Kind, Point: p, Tangent: tangent})
	}
	return out
}

func (s *solver) edgeFor(trackID string, pos float64) (domain.Edge, bool) {
	for _, e := range s.graph.TrackEdges(trackID) {
		if pos >= e.Start && pos <= e.End {
			return e, true
		}
	}
	return domain.Edge{}, false
}

// along returns the point at fraction frac of the line's planar length and the unit direction there
func along(ls orb.LineString, frac float64) (orb.Point, orb.Point) {
	if len(ls) == 0 {
		return orb.Point{}, orb.Point{1, 0}
	}
	total := planar.Length(ls)
	if total == 0 {
		return ls[0], orb.Point{1, 0}
	}
	target := math.Max(0, math.Min(1, frac)) * total
	for i := 0; i+1 < len(ls); i++ {
		a, b := ls[i], ls[i+1]
		d := planar.Distance(a, b)
		if d == 0 {
			continue
		}
		if target <= d || i+2 == len(ls) {
			t := math.Min(target/d, 1)
			p := orb.Point{a[0] + (b[0]-a[0])*t, a[1] + (b[1]-a[1])*t}
			return p, orb.Point{(b[0] - a[0]) / d, (b[1] - a[1]) / d}
		}
		target -= d
	}
	return ls[len(ls)-1], orb.Point{1, 0}
}

func boundsOf(l *domain.Layout) orb.Bound {
	var mp orb.MultiPoint
	for _, n := range l.Nodes {
		mp = append(mp, n.Point)
	}
	b := mp.Bound()
	for _, e := range l.Edges {
		b = b.Union(e.Line.Bound())
	}
	return b
}
