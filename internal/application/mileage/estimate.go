package mileage

import (
	"math"
	"sort"

	"railio/internal/domain"
)

// estimator places pending tracks by walking the graph outwards from tracks
// whose mileage is already known
type estimator struct {
	tracks     []domain.Track
	byID       map[string]int
	graph      *domain.Graph
	assignment *domain.Assignment
	nodesOf    map[string][]int
	pending    map[string]bool
}

func newEstimator(tracks []domain.Track, graph *domain.Graph, a *domain.Assignment) *estimator {
	e := &estimator{
		tracks:     tracks,
		byID:       make(map[string]int, len(tracks)),
		graph:      graph,
		assignment: a,
		nodesOf:    make(map[string][]int),
		pending:    make(map[string]bool),
	}
	for i, t := range tracks {
		e.byID[t.ID] = i
	}
	if graph != nil {
		for _, n := range graph.Nodes {
			seen := make(map[string]bool)
			for _, att := range n.Attachments {
				if !seen[att.TrackID] {
					e.nodesOf[att.TrackID] = append(e.nodesOf[att.TrackID], n.Index)
					seen[att.TrackID] = true
				}
			}
		}
	}
	return e
}

func (e *estimator) run(pending []int) {
	if len(pending) == 0 {
		return
	}
	for _, i := range pending {
		e.pending[e.tracks[i].ID] = true
	}

	var queue []string
	for _, t := range e.tracks {
		if _, ok := e.assignment.Tracks[t.ID]; ok {
			queue = append(queue, t.ID)
		}
	}
	e.propagate(queue)

	for _, i := range pending {
		t := e.tracks[i]
		if !e.pending[t.ID] {
			continue
		}
		start := 0.0
		if len(e.assignment.Tracks) > 0 {
			start = e.maxMileage() + componentGap
		}
		e.place(t, start)
		e.propagate([]string{t.ID})
	}
}

// propagate is a breadth-first walk from the given resolved tracks
func (e *estimator) propagate(queue []string) {
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		known := e.assignment.Tracks[id]

		for _, ni := range e.nodesOf[id] {
			node := e.graph.Nodes[ni]
			m, ok := e.mileageAt(known, node)
			if !ok {
				continue
			}
			for _, att := range node.Attachments {
				if att.TrackID == id || !e.pending[att.TrackID] {
					continue
				}
				t := e.tracks[e.byID[att.TrackID]]
				e.place(t, e.startFrom(t, att, node, m))
				queue = append(queue, t.ID)
			}
		}
	}
}

// place estimates a track from its start mileage, offsetting each point by its pos
func (e *estimator) place(t domain.Track, start float64) {
	length, points, offsets := shape(t)
	tm := domain.TrackMileage{
		TrackID: t.ID,
		Method:  domain.MethodEstimated,
		Start:   start,
		End:     start + length,
		Points:  make([]domain.MileagePoint, len(points)),
	}
	for i, p := range points {
		tm.Points[i] = domain.MileagePoint{ElementID: p.ElementID, Kind: p.Kind, Pos: p.Pos, Mileage: start + offsets[i]}
	}
	e.assignment.Tracks[t.ID] = tm
	delete(e.pending, t.ID)
}

// shape returns the estimated length of a track, its points ordered by pos
// (declared order for ties) and the offset of each point from the start.
// Without a usable length, distinct positions are spaced evenly.
func shape(t domain.Track) (float64, []domain.TrackPoint, []float64) {
	points := append([]domain.TrackPoint(nil), t.Points...)
	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Pos < points[j].Pos
	})
	offsets := make([]float64, len(points))

	if length := t.Length(); length > 0 {
		for i, p := range points {
			offsets[i] = min(max(p.Pos-t.Begin.Pos, 0), length)
		}
		return length, points, offsets
	}

	if len(points) == 0 {
		return defaultSpacing, points, offsets
	}
	rank := 0
	for i, p := range points {
		if i > 0 && p.Pos > points[i-1].Pos {
			rank++
		}
		offsets[i] = defaultSpacing * float64(rank+1)
	}
	return defaultSpacing * float64(rank+2), points, offsets
}

// mileageAt returns the mileage of a node as seen from one of the tracks attached to it
func (e *estimator) mileageAt(tm domain.TrackMileage, node domain.Node) (float64, bool) {
	for _, att := range node.Attachments {
		if att.TrackID != tm.TrackID {
			continue
		}
		switch att.End {
		case domain.SideBegin:
			return tm.Start, true
		case domain.SideEnd:
			return tm.End, true
		}
		if p, ok := tm.Point(node.ID); ok {
			return p.Mileage, true
		}
		t := e.tracks[e.byID[tm.TrackID]]
		if l := t.Length(); l > 0 {
			return tm.Start + (tm.End-tm.Start)*(att.Pos-t.Begin.Pos)/l, true
		}
		return tm.Start, true
	}
	return 0, false
}

// startFrom derives the start mileage of t given the mileage m at the node it is attached to
func (e *estimator) startFrom(t domain.Track, att domain.Attachment, node domain.Node, m float64) float64 {
	length, points, offsets := shape(t)
	switch att.End {
	case domain.SideBegin:
		return m
	case domain.SideEnd:
		return m - length
	}
	for i, p := range points {
		if p.ElementID == node.ID {
			return m - offsets[i]
		}
	}
	if t.Length() > 0 {
		return m - min(max(att.Pos-t.Begin.Pos, 0), length)
	}
	return m
}

func (e *estimator) maxMileage() float64 {
	highest := math.Inf(-1)
	for _, tm := range e.assignment.Tracks {
		highest = math.Max(highest, math.Max(tm.Start, tm.End))
	}
	return highest
}
