package export

import (
	"fmt"

	"railio/internal/railml"
)

// RenumberIDs replaces track, track node and track end connection ids with
// generated ones (tr1, tr1tb, tr1te, tr1c1, tr1c2, ...) and rewrites every
// reference to them. It returns the mapping from old to new id.
func RenumberIDs(doc *railml.Document) map[string]string {
	renamed := make(map[string]string)
	if doc == nil || doc.Infrastructure == nil {
		return renamed
	}
	inf := doc.Infrastructure

	rename := func(old, id string) string {
		if old != "" && old != id {
			renamed[old] = id
		}
		return id
	}
	for i := range inf.Tracks {
		t := &inf.Tracks[i]
		t.ID = rename(t.ID, fmt.Sprintf("tr%d", i+1))
		t.Begin.ID = rename(t.Begin.ID, t.ID+"tb")
		t.End.ID = rename(t.End.ID, t.ID+"te")
		for k, n := range []*railml.TrackNode{&t.Begin, &t.End} {
			if n.Conn.Kind == railml.EndKindConnection {
				n.Conn.ID = rename(n.Conn.ID, fmt.Sprintf("%sc%d", t.ID, k+1))
			}
		}
	}

	ref := func(id string) string {
		if v, ok := renamed[id]; ok {
			return v
		}
		return id
	}
	for i := range inf.Tracks {
		t := &inf.Tracks[i]
		t.Begin.Conn.Ref = ref(t.Begin.Conn.Ref)
		t.End.Conn.Ref = ref(t.End.Conn.Ref)
		for j := range t.Junctions {
			for k := range t.Junctions[j].Connections {
				c := &t.Junctions[j].Connections[k]
				c.Ref = ref(c.Ref)
			}
		}
	}
	for i := range inf.TrackGroups {
		for j := range inf.TrackGroups[i].TrackRefs {
			r := &inf.TrackGroups[i].TrackRefs[j]
			r.Ref = ref(r.Ref)
		}
	}
	for i := range inf.OCPs {
		if eq := inf.OCPs[i].PropEquipment; eq != nil {
			for j := range eq.TrackRefs {
				eq.TrackRefs[j] = ref(eq.TrackRefs[j])
			}
		}
	}
	return renamed
}
