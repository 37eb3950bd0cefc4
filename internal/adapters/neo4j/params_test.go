package neo4j

import (
	"context"
	"testing"

	"railio/internal/application/mileage"
	"railio/internal/application/pipeline"
	"railio/internal/domain"
	"railio/internal/railml/railmltest"
)

func stationModel(t *testing.T) *domain.RailwayModel {
	t.Helper()

	p := pipeline.New(pipeline.WithPolicy(mileage.Policy{Mode: mileage.Estimated}))
	res, err := p.Import(context.Background(), "station.xml", railmltest.Station("2.5"))
	if err != nil {
		t.Fatalf("failed to import: %v", err)
	}
	return res.Model
}

func TestParams(t *testing.T) {
	model := stationModel(t)
	params := Params(model)

	if params["source"] != "station.xml" {
		t.Errorf("unexpected source %v", params["source"])
	}
	nodes := params["nodes"].([]map[string]any)
	edges := params["edges"].([]map[string]any)
	objects := params["objects"].([]map[string]any)
	if len(nodes) != len(model.Graph.Nodes) || len(edges) != len(model.Graph.Edges) || len(objects) != len(model.Objects) {
		t.Fatalf("row counts %d/%d/%d do not match the model", len(nodes), len(edges), len(objects))
	}

	ids := make(map[string]bool)
	for _, n := range nodes {
		ids[n["id"].(string)] = true
	}
	for _, e := range edges {
		if !ids[e["from"].(string)] || !ids[e["to"].(string)] {
			t.Errorf("edge %v references an unknown node", e)
		}
		if e["length"].(float64) < 0 {
			t.Errorf("edge %v has negative length", e)
		}
	}

	anchored := 0
	for _, o := range objects {
		at := o["at"].(string)
		if at == "" {
			continue
		}
		anchored++
		if !ids[at] {
			t.Errorf("object %v anchored at unknown node", o["id"])
		}
		if o["offset"].(float64) < 0 {
			t.Errorf("object %v has negative offset", o["id"])
		}
	}
	if anchored == 0 {
		t.Error("expected positioned objects to be anchored")
	}
}

func TestSegmentOf(t *testing.T) {
	g := &domain.Graph{Edges: []domain.Edge{
		{Index: 0, TrackID: "t1", From: 0, To: 1, Start: 0, End: 200},
		{Index: 1, TrackID: "t1", From: 1, To: 2, Start: 200, End: 500},
		{Index: 2, TrackID: "t2", From: 1, To: 3, Start: 0, End: 100},
	}}

	tests := []struct {
		name  string
		track string
		pos   float64
		want  int
		found bool
	}{
		{name: "first segment", track: "t1", pos: 50, want: 0, found: true},
		{name: "on the boundary", track: "t1", pos: 200, want: 0, found: true},
		{name: "second segment", track: "t1", pos: 350, want: 1, found: true},
		{name: "other track", track: "t2", pos: 10, want: 2, found: true},
		{name: "beyond the end", track: "t1", pos: 600, found: false},
		{name: "unknown track", track: "t9", pos: 10, found: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, ok := segmentOf(g, tt.track, tt.pos)
			if ok != tt.found {
				t.Fatalf("found = %v, want %v", ok, tt.found)
			}
			if ok && e.Index != tt.want {
				t.Errorf("segment %d, want %d", e.Index, tt.want)
			}
		})
	}
}
