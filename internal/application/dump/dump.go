// Package dump serializes a resolved railway model into indented, sorted
// JSON so two imports can be compared byte for byte.
package dump

import (
	"encoding/json"
	"fmt"
	"sort"

	"railio/internal/domain"
)

// Dump is the diffable view of a model: topology, mileage and objects
type Dump struct {
	Source  string         `json:"source"`
	Version string         `json:"version"`
	Counts  map[string]int `json:"counts"`
	Tracks  []Track        `json:"tracks"`
	Nodes   []Node         `json:"nodes"`
	Edges   []Edge         `json:"edges"`
	Macros  []Macro        `json:"macros,omitempty"`
	Objects []Object       `json:"objects"`
}

type Track struct {
	ID      string                `json:"id"`
	Name    string                `json:"name,omitempty"`
	Begin   float64               `json:"begin"`
	End     float64               `json:"end"`
	Method  string                `json:"method,omitempty"`
	Start   float64               `json:"mileageStart"`
	Finish  float64               `json:"mileageEnd"`
	Mileage []domain.MileagePoint `json:"mileage,omitempty"`
}

type Node struct {
	ID          string   `json:"id"`
	Kind        string   `json:"kind"`
	Track       string   `json:"track"`
	Pos         float64  `json:"pos"`
	Side        string   `json:"deviatingSide,omitempty"`
	Macro       string   `json:"macro,omitempty"`
	Connections []string `json:"connections,omitempty"`
	Ports       []string `json:"ports"`
}

type Edge struct {
	Track    string  `json:"track"`
	From     string  `json:"from"`
	To       string  `json:"to"`
	FromPort string  `json:"fromPort"`
	ToPort   string  `json:"toPort"`
	Start    float64 `json:"start"`
	End      float64 `json:"end"`
}

type Macro struct {
	ID     string   `json:"id"`
	Name   string   `json:"name,omitempty"`
	OCPRef string   `json:"ocpRef,omitempty"`
	Nodes  []string `json:"nodes"`
}

type Object struct {
	ID      string   `json:"id"`
	Source  string   `json:"sourceId"`
	Kind    string   `json:"kind"`
	Track   string   `json:"track"`
	Pos     *float64 `json:"pos,omitempty"`
	AbsPos  *float64 `json:"absPos,omitempty"`
	Mileage *float64 `json:"mileage,omitempty"`
	Dir     string   `json:"dir,omitempty"`
	Name    string   `json:"name,omitempty"`
	Payload any      `json:"payload"`
}

// unmapped leaves out the source line so dumps of the same content written differently compare equal
type unmapped struct {
	Section   string         `json:"section"`
	Container string         `json:"container"`
	Element   domain.RawNode `json:"element"`
}

// Build collects the dump of model; graph and mileage are taken from the model's caches
func Build(model *domain.RailwayModel) *Dump {
	d := &Dump{
		Source:  model.Source,
		Version: model.Version,
		Counts:  make(map[string]int),
	}

	for _, t := range model.Tracks {
		td := Track{ID: t.ID, Name: t.Name, Begin: t.Begin.Pos, End: t.End.Pos}
		if model.Mileage != nil {
			if tm, ok := model.Mileage.Tracks[t.ID]; ok {
				td.Method = string(tm.Method)
				td.Start = tm.Start
				td.Finish = tm.End
				td.Mileage = append([]domain.MileagePoint(nil), tm.Points...)
				sort.SliceStable(td.Mileage, func(i, j int) bool {
					return td.Mileage[i].Pos < td.Mileage[j].Pos
				})
			}
		}
		d.Tracks = append(d.Tracks, td)
	}
	sort.SliceStable(d.Tracks, func(i, j int) bool { return d.Tracks[i].ID < d.Tracks[j].ID })
	d.Counts["tracks"] = len(d.Tracks)

	if g := model.Graph; g != nil {
		d.addGraph(g)
	}

	for _, o := range model.Objects {
		od := Object{
			ID:      o.ID,
			Source:  o.SourceID,
			Kind:    string(o.Kind),
			Track:   o.TrackID,
			AbsPos:  o.AbsPos,
			Dir:     o.Dir,
			Name:    o.Name,
			Payload: o.Payload,
		}
		if o.Positioned {
			pos, m := o.Pos, o.Mileage
			od.Pos, od.Mileage = &pos, &m
		}
		if p, ok := o.Payload.(domain.UnmappedPayload); ok {
			od.Payload = unmapped{Section: p.Section, Container: p.Container, Element: p.Element}
		}
		d.Objects = append(d.Objects, od)
		d.Counts["objects."+string(o.Kind)]++
	}
	sort.SliceStable(d.Objects, func(i, j int) bool {
		if d.Objects[i].Track != d.Objects[j].Track {
			return d.Objects[i].Track < d.Objects[j].Track
		}
		return d.Objects[i].ID < d.Objects[j].ID
	})
	d.Counts["objects"] = len(d.Objects)
	return d
}

func (d *Dump) addGraph(g *domain.Graph) {
	for _, n := range g.Nodes {
		nd := Node{
			ID:          n.ID,
			Kind:        string(n.Kind),
			Track:       n.TrackID,
			Pos:         n.Pos,
			Side:        n.DeviatingSide,
			Macro:       n.MacroID,
			Connections: append([]string(nil), n.ConnectionIDs...),
		}
		for _, a := range n.Attachments {
			nd.Ports = append(nd.Ports, fmt.Sprintf("%s@%s:%s", a.TrackID, formatPos(a.Pos), a.Port))
		}
		sort.Strings(nd.Ports)
		d.Nodes = append(d.Nodes, nd)
		d.Counts["nodes."+string(n.Kind)]++
	}
	// ids may repeat in broken sources; ties fall back to content, then graph order
	sort.SliceStable(d.Nodes, func(i, j int) bool {
		a, b := d.Nodes[i], d.Nodes[j]
		if a.ID != b.ID {
			return a.ID < b.ID
		}
		if a.Track != b.Track {
			return a.Track < b.Track
		}
		if a.Pos != b.Pos {
			return a.Pos < b.Pos
		}
		return a.Kind < b.Kind
	})
	d.Counts["nodes"] = len(d.Nodes)

	for _, e := range g.Edges {
		d.Edges = append(d.Edges, Edge{
			Track:    e.TrackID,
			From:     g.Nodes[e.From].ID,
			To:       g.Nodes[e.To].ID,
			FromPort: string(e.FromPort),
			ToPort:   string(e.ToPort),
			Start:    e.Start,
			End:      e.End,
		})
	}
	sort.SliceStable(d.Edges, func(i, j int) bool {
		a, b := d.Edges[i], d.Edges[j]
		if a.Track != b.Track {
			return a.Track < b.Track
		}
		if a.Start != b.Start {
			return a.Start < b.Start
		}
		if a.From != b.From {
			return a.From < b.From
		}
		return a.To < b.To
	})
	d.Counts["edges"] = len(d.Edges)
	d.Counts["relations"] = len(g.Relations)
	d.Counts["unresolved"] = g.Unresolved()

	for _, m := range g.Macros {
		md := Macro{ID: m.ID, Name: m.Name, OCPRef: m.OCPRef}
		for _, n := range m.Nodes {
			md.Nodes = append(md.Nodes, g.Nodes[n].ID)
		}
		sort.Strings(md.Nodes)
		d.Macros = append(d.Macros, md)
	}
	sort.SliceStable(d.Macros, func(i, j int) bool { return d.Macros[i].ID < d.Macros[j].ID })
}

func formatPos(v float64) string {
	return fmt.Sprintf("%g", v)
}

// Encode returns the indented JSON dump of model, ending in a newline
func Encode(model *domain.RailwayModel) ([]byte, error) {
	if model == nil {
		return nil, fmt.Errorf("failed to encode dump: no model")
	}
	data, err := json.MarshalIndent(Build(model), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode dump: %w", err)
	}
	return append(data, '\n'), nil
}

// Decode reads a dump produced by Encode
func Decode(data []byte) (*Dump, error) {
	var d Dump
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("failed to decode dump: %w", err)
	}
	return &d, nil
}
