// Package topology merges the connection declarations of a set of tracks
// into one topology graph of junction, continuation and terminal nodes.
package topology

import (
	"fmt"
	"sort"
	"strings"

	"railio/internal/application"
	"railio/internal/domain"
)

type slotKind int

const (
	slotBegin slotKind = iota
	slotEnd
	slotJunction
)

// slot is a mergeable endpoint: a track begin, a track end or a junction
type slot struct {
	kind     slotKind
	track    int
	junction int
}

// declaration is one connection as written in the source, owned by a slot
type declaration struct {
	id       string
	ref      string
	slot     int
	owner    string
	trackID  string
	junction bool
}

type macroGroup struct {
	id      string
	nodes   []int
	nodeIDs []string
	names   []string
	ocpRefs []string
}

type resolver struct {
	tracks        []domain.Track
	slots         []slot
	junctionSlots [][]int
	decls         []declaration
	byID          map[string]int
	partner       map[int]int
	issues        []Issue
	warnings      []application.Warning

	nodeOf     []int
	endPort    []domain.Port
	hostBefore map[int]domain.Port
	hostAfter  map[int]domain.Port
	macros     []*macroGroup
	macroByID  map[string]*macroGroup
}

// Resolve merges the connection declarations of tracks into one graph.
// Every problem is collected and returned together as a *TopologyError.
func Resolve(tracks []domain.Track) (*domain.Graph, []application.Warning, error) {
	r := &resolver{
		tracks:     tracks,
		byID:       make(map[string]int),
		partner:    make(map[int]int),
		hostBefore: make(map[int]domain.Port),
		hostAfter:  make(map[int]domain.Port),
		macroByID:  make(map[string]*macroGroup),
	}
	r.collect()
	r.match()
	if len(r.issues) > 0 {
		return nil, nil, &TopologyError{Issues: r.issues}
	}
	return r.build(), r.warnings, nil
}

func (r *resolver) issue(kind IssueKind, trackID string, ids []string, format string, args ...any) {
	r.issues = append(r.issues, Issue{
		Kind:          kind,
		TrackID:       trackID,
		ConnectionIDs: ids,
		Message:       fmt.Sprintf(format, args...),
	})
}

func (r *resolver) collect() {
	seen := make(map[string]bool, len(r.tracks))
	for i, t := range r.tracks {
		if seen[t.ID] {
			r.issue(IssueDuplicateTrack, t.ID, nil, "track id %s is declared more than once", t.ID)
		}
		seen[t.ID] = true
		r.slots = append(r.slots, slot{kind: slotBegin, track: i}, slot{kind: slotEnd, track: i})
	}

	r.junctionSlots = make([][]int, len(r.tracks))
	for i, t := range r.tracks {
		r.junctionSlots[i] = make([]int, len(t.Junctions))
		for j := range t.Junctions {
			r.junctionSlots[i][j] = len(r.slots)
			r.slots = append(r.slots, slot{kind: slotJunction, track: i, junction: j})
		}
	}

	for i, t := range r.tracks {
		r.declareEnd(t, t.Begin, 2*i, domain.SideBegin)
		r.declareEnd(t, t.End, 2*i+1, domain.SideEnd)
		for j, jn := range t.Junctions {
			if len(jn.Connections) == 0 {
				r.issue(IssueSwitchWithoutConnection, t.ID, nil, "%s %s on track %s declares no connection", jn.Kind, jn.ID, t.ID)
				continue
			}
			for _, c := range jn.Connections {
				r.declare(declaration{
					id:       c.ID,
					ref:      c.Ref,
					slot:     r.junctionSlots[i][j],
					owner:    jn.ID,
					trackID:  t.ID,
					junction: true,
				})
			}
		}
	}
}

func (r *resolver) declareEnd(t domain.Track, end domain.TrackEnd, s int, side domain.EndSide) {
	switch end.Kind {
	case domain.EndConnection:
		r.declare(declaration{
			id:      end.ConnectionID,
			ref:     end.Ref,
			slot:    s,
			owner:   endID(t, end, side),
			trackID: t.ID,
		})
	case domain.EndBufferStop, domain.EndOpenEnd, domain.EndMacroscopic:
	default:
		r.issue(IssueMissingEnd, t.ID, nil, "track %s has no connection or termination at its %s", t.ID, side)
	}
}

func (r *resolver) declare(d declaration) {
	if d.id == "" || d.ref == "" {
		r.issue(IssueUnresolved, d.trackID, []string{d.id}, "connection on %s lacks id or ref", d.owner)
		return
	}
	if prev, ok := r.byID[d.id]; ok {
		r.issue(IssueDuplicateID, d.trackID, []string{d.id},
			"connection id %s is declared by both %s and %s", d.id, r.decls[prev].owner, d.owner)
		return
	}
	r.byID[d.id] = len(r.decls)
	r.decls = append(r.decls, d)
}

func (r *resolver) match() {
	claims := make(map[string][]int)
	for i, d := range r.decls {
		claims[d.ref] = append(claims[d.ref], i)
	}

	conflicted := make(map[int]bool)
	reported := make(map[string]bool)
	for _, d := range r.decls {
		claimers := claims[d.ref]
		if len(claimers) < 2 || reported[d.ref] {
			continue
		}
		reported[d.ref] = true
		ids := make([]string, len(claimers))
		for k, c := range claimers {
			ids[k] = r.decls[c].id
			conflicted[c] = true
		}
		r.issue(IssueConflict, d.trackID, ids, "connections %s all claim endpoint %s",
			strings.Join(ids, ", "), d.ref)
	}

	for i, d := range r.decls {
		if conflicted[i] {
			continue
		}
		if d.ref == d.id {
			r.issue(IssueSelfReference, d.trackID, []string{d.id}, "connection %s refers to itself", d.id)
			continue
		}
		j, ok := r.byID[d.ref]
		if !ok {
			r.issue(IssueUnresolved, d.trackID, []string{d.id},
				"connection %s on %s refers to unknown connection %s", d.id, d.owner, d.ref)
			continue
		}
		if conflicted[j] {
			continue
		}
		target := r.decls[j]
		if target.ref != d.id {
			r.issue(IssueNotReciprocal, d.trackID, []string{d.id, target.id},
				"connection %s refers to %s, which refers to %s", d.id, target.id, target.ref)
			continue
		}
		if d.junction && target.junction {
			if i < j {
				r.issue(IssueJunctionToJunction, d.trackID, []string{d.id, target.id},
					"connections %s and %s link two junctions directly", d.id, target.id)
			}
			continue
		}
		r.partner[i] = j
	}
}

func (r *resolver) build() *domain.Graph {
	sets := newDisjointSet(len(r.slots))
	for i, j := range r.partner {
		sets.union(r.decls[i].slot, r.decls[j].slot)
	}

	members := make(map[int][]int)
	var roots []int
	visit := func(s int) {
		root := sets.find(s)
		if _, ok := members[root]; !ok {
			roots = append(roots, root)
		}
		members[root] = append(members[root], s)
	}
	for i, t := range r.tracks {
		visit(2 * i)
		for _, j := range sortedJunctions(t) {
			visit(r.junctionSlots[i][j])
		}
		visit(2*i + 1)
	}

	g := &domain.Graph{Declared: len(r.decls)}
	r.nodeOf = make([]int, len(r.slots))
	r.endPort = make([]domain.Port, len(r.slots))
	for _, root := range roots {
		idx := len(g.Nodes)
		for _, s := range members[root] {
			r.nodeOf[s] = idx
		}
		g.Nodes = append(g.Nodes, r.makeNode(idx, members[root]))
	}

	g.Edges = r.edges()

	for _, d := range r.decls {
		g.Relations = append(g.Relations, domain.Relation{
			ConnectionID: d.id,
			Ref:          d.ref,
			Owner:        d.owner,
			TrackID:      d.trackID,
			Node:         r.nodeOf[d.slot],
		})
	}

	g.Macros = r.aggregateMacros()
	return g
}

func (r *resolver) makeNode(idx int, slots []int) domain.Node {
	junction := -1
	var ends []int
	for _, s := range slots {
		if r.slots[s].kind == slotJunction {
			junction = s
		} else {
			ends = append(ends, s)
		}
	}
	switch {
	case junction >= 0:
		return r.junctionNode(idx, junction)
	case len(ends) == 2:
		return r.continuationNode(idx, ends[0], ends[1])
	default:
		return r.terminalNode(idx, ends[0])
	}
}

func (r *resolver) junctionNode(idx, s int) domain.Node {
	host := r.tracks[r.slots[s].track]
	jn := host.Junctions[r.slots[s].junction]

	node := domain.Node{
		Index:    idx,
		ID:       jn.ID,
		TrackID:  host.ID,
		Pos:      jn.Pos,
		GeoCoord: jn.GeoCoord,
	}

	var branchPorts []domain.Port
	if jn.Kind == domain.JunctionCrossing {
		node.Kind = domain.NodeCrossing
		r.hostBefore[s], r.hostAfter[s] = domain.PortCrossA0, domain.PortCrossB0
		for _, c := range jn.Connections {
			if c.Orientation == "incoming" {
				branchPorts = append(branchPorts, domain.PortCrossA1)
			} else {
				branchPorts = append(branchPorts, domain.PortCrossB1)
			}
		}
	} else {
		node.Kind = domain.NodeSwitch
		side, outgoing := r.switchGeometry(jn)
		node.DeviatingSide = string(side)
		straight := domain.PortLeft
		if side == domain.PortLeft {
			straight = domain.PortRight
		}
		if outgoing {
			r.hostBefore[s], r.hostAfter[s] = domain.PortTrunk, straight
		} else {
			r.hostBefore[s], r.hostAfter[s] = straight, domain.PortTrunk
		}
		for k, c := range jn.Connections {
			switch {
			case k == 0:
				branchPorts = append(branchPorts, side)
			case c.Course == "left":
				branchPorts = append(branchPorts, domain.PortLeft)
			case c.Course == "right":
				branchPorts = append(branchPorts, domain.PortRight)
			default:
				branchPorts = append(branchPorts, domain.Port(fmt.Sprintf("branch%d", k)))
			}
		}
	}

	node.Attachments = append(node.Attachments, domain.Attachment{
		TrackID: host.ID,
		Pos:     jn.Pos,
		Port:    r.hostBefore[s],
	})
	for k, c := range jn.Connections {
		node.ConnectionIDs = append(node.ConnectionIDs, c.ID)
		d := r.byID[c.ID]
		peer := r.decls[r.partner[d]]
		node.ConnectionIDs = append(node.ConnectionIDs, peer.id)

		r.endPort[peer.slot] = branchPorts[k]
		t, end, side := r.endOf(peer.slot)
		node.Attachments = append(node.Attachments, domain.Attachment{
			TrackID: t.ID,
			Pos:     end.Pos,
			End:     side,
			Port:    branchPorts[k],
		})
	}
	return node
}

// switchGeometry decides the deviating side and direction of a switch.
// Unknown values fall back to a right-hand outgoing switch with a warning.
func (r *resolver) switchGeometry(jn domain.Junction) (domain.Port, bool) {
	first := jn.Connections[0]

	var side domain.Port
	switch first.Course {
	case "left":
		side = domain.PortLeft
	case "right":
		side = domain.PortRight
	}
	if side == "" {
		switch jn.ContinueCourse {
		case "left":
			side = domain.PortRight
		case "right":
			side = domain.PortLeft
		}
	}
	if side == "" {
		side = domain.PortRight
		r.warnings = append(r.warnings, &SwitchGeometryWarning{
			JunctionID: jn.ID,
			Detail:     "branch course unknown, assuming right",
		})
	}

	outgoing := true
	switch first.Orientation {
	case "outgoing":
	case "incoming":
		outgoing = false
	default:
		r.warnings = append(r.warnings, &SwitchGeometryWarning{
			JunctionID: jn.ID,
			Detail:     fmt.Sprintf("orientation %q is neither incoming nor outgoing, assuming outgoing", first.Orientation),
		})
	}
	return side, outgoing
}

func (r *resolver) continuationNode(idx, a, b int) domain.Node {
	ta, ea, sa := r.endOf(a)
	tb, eb, sb := r.endOf(b)
	r.endPort[a], r.endPort[b] = domain.PortContA, domain.PortContB

	geo := ea.GeoCoord
	if geo == nil {
		geo = eb.GeoCoord
	}
	return domain.Node{
		Index:         idx,
		ID:            endID(ta, ea, sa),
		Kind:          domain.NodeContinuation,
		TrackID:       ta.ID,
		Pos:           ea.Pos,
		GeoCoord:      geo,
		ConnectionIDs: []string{ea.ConnectionID, eb.ConnectionID},
		Attachments: []domain.Attachment{
			{TrackID: ta.ID, Pos: ea.Pos, End: sa, Port: domain.PortContA},
			{TrackID: tb.ID, Pos: eb.Pos, End: sb, Port: domain.PortContB},
		},
	}
}

func (r *resolver) terminalNode(idx, s int) domain.Node {
	t, end, side := r.endOf(s)
	r.endPort[s] = domain.PortSingle

	node := domain.Node{
		Index:    idx,
		ID:       endID(t, end, side),
		TrackID:  t.ID,
		Pos:      end.Pos,
		GeoCoord: end.GeoCoord,
		Attachments: []domain.Attachment{
			{TrackID: t.ID, Pos: end.Pos, End: side, Port: domain.PortSingle},
		},
	}
	switch end.Kind {
	case domain.EndBufferStop:
		node.Kind = domain.NodeBufferStop
	case domain.EndOpenEnd:
		node.Kind = domain.NodeOpenEnd
	default:
		node.Kind = domain.NodeMacroscopic
		node.MacroID = end.MacroID
		r.joinMacro(end, node)
	}
	return node
}

func (r *resolver) joinMacro(end domain.TrackEnd, node domain.Node) {
	if end.MacroID == "" {
		return
	}
	m, ok := r.macroByID[end.MacroID]
	if !ok {
		m = &macroGroup{id: end.MacroID}
		r.macroByID[end.MacroID] = m
		r.macros = append(r.macros, m)
	}
	m.nodes = append(m.nodes, node.Index)
	m.nodeIDs = append(m.nodeIDs, node.ID)
	m.names = appendDistinct(m.names, end.MacroName)
	m.ocpRefs = appendDistinct(m.ocpRefs, end.OCPRef)
}

func (r *resolver) aggregateMacros() []domain.MacroNode {
	out := make([]domain.MacroNode, 0, len(r.macros))
	for _, m := range r.macros {
		agg := domain.MacroNode{ID: m.id, Names: m.names, Nodes: m.nodes}
		if len(m.names) > 1 || len(m.ocpRefs) > 1 {
			r.warnings = append(r.warnings, &MacroscopicConflictWarning{
				MacroID: m.id,
				NodeIDs: m.nodeIDs,
				Names:   m.names,
				OCPRefs: m.ocpRefs,
			})
		} else {
			if len(m.names) == 1 {
				agg.Name = m.names[0]
			}
			if len(m.ocpRefs) == 1 {
				agg.OCPRef = m.ocpRefs[0]
			}
		}
		out = append(out, agg)
	}
	return out
}

type waypoint struct {
	node int
	pos  float64
	in   domain.Port
	out  domain.Port
}

func (r *resolver) edges() []domain.Edge {
	var edges []domain.Edge
	for i, t := range r.tracks {
		begin, end := 2*i, 2*i+1
		wps := []waypoint{{node: r.nodeOf[begin], pos: t.Begin.Pos, out: r.endPort[begin]}}
		for _, j := range sortedJunctions(t) {
			s := r.junctionSlots[i][j]
			wps = append(wps, waypoint{
				node: r.nodeOf[s],
				pos:  t.Junctions[j].Pos,
				in:   r.hostBefore[s],
				out:  r.hostAfter[s],
			})
		}
		wps = append(wps, waypoint{node: r.nodeOf[end], pos: t.End.Pos, in: r.endPort[end]})

		for k := 0; k+1 < len(wps); k++ {
			edges = append(edges, domain.Edge{
				Index:    len(edges),
				TrackID:  t.ID,
				From:     wps[k].node,
				FromPort: wps[k].out,
				To:       wps[k+1].node,
				ToPort:   wps[k+1].in,
				Start:    wps[k].pos,
				End:      wps[k+1].pos,
			})
		}
	}
	return edges
}

func (r *resolver) endOf(s int) (domain.Track, domain.TrackEnd, domain.EndSide) {
	t := r.tracks[r.slots[s].track]
	if r.slots[s].kind == slotBegin {
		return t, t.Begin, domain.SideBegin
	}
	return t, t.End, domain.SideEnd
}

func endID(t domain.Track, end domain.TrackEnd, side domain.EndSide) string {
	if end.ID != "" {
		return end.ID
	}
	return t.ID + "." + string(side)
}

// sortedJunctions returns junction indices ordered by position, declared order on ties
func sortedJunctions(t domain.Track) []int {
	idx := make([]int, len(t.Junctions))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return t.Junctions[idx[a]].Pos < t.Junctions[idx[b]].Pos
	})
	return idx
}

func appendDistinct(list []string, v string) []string {
	if v == "" {
		return list
	}
	for _, existing := range list {
		if existing == v {
			return list
		}
	}
	return append(list, v)
}
