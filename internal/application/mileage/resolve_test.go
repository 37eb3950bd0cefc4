package mileage

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"railio/internal/application"
	"railio/internal/application/topology"
	"railio/internal/domain"
)

func ptr(v float64) *float64 { return &v }

func point(id string, pos float64, abs *float64) domain.TrackPoint {
	return domain.TrackPoint{ElementID: id, Kind: "signal", Pos: pos, AbsPos: abs}
}

func bufferStop(id string, pos float64) domain.TrackEnd {
	return domain.TrackEnd{ID: id, Pos: pos, Kind: domain.EndBufferStop}
}

func TestResolve_FromFileRegressionNamesPair(t *testing.T) {
	model := &domain.RailwayModel{Tracks: []domain.Track{{
		ID:    "t1",
		Begin: bufferStop("t1b", 0),
		End:   bufferStop("t1e", 200),
		Points: []domain.TrackPoint{
			point("e1", 10, ptr(0)),
			point("e2", 20, ptr(50)),
			point("e3", 30, ptr(120)),
			point("e4", 40, ptr(80)),
		},
	}}}

	_, _, err := Resolve(model, nil, Policy{Mode: FromFile, Fallback: FallbackMissing})
	if err == nil {
		t.Fatal("expected inconsistency error, got nil")
	}
	if !errors.Is(err, application.ErrMileage) {
		t.Errorf("expected ErrMileage, got %v", err)
	}
	var inc *InconsistencyError
	if !errors.As(err, &inc) {
		t.Fatalf("expected *InconsistencyError, got %T", err)
	}
	if inc.TrackID != "t1" {
		t.Errorf("expected track t1, got %s", inc.TrackID)
	}
	if inc.First.Mileage != 120 || inc.Second.Mileage != 80 {
		t.Errorf("expected pair (120, 80), got (%g, %g)", inc.First.Mileage, inc.Second.Mileage)
	}
	if inc.First.ElementID != "e3" || inc.Second.ElementID != "e4" {
		t.Errorf("expected pair e3/e4, got %s/%s", inc.First.ElementID, inc.Second.ElementID)
	}
}

func TestResolve_FromFile(t *testing.T) {
	tests := []struct {
		name      string
		track     domain.Track
		wantStart float64
		wantEnd   float64
		want      map[string]float64
		wantErr   bool
		errMsg    string
	}{
		{
			name: "offset from begin",
			track: domain.Track{
				ID:     "t",
				Begin:  domain.TrackEnd{ID: "b", Pos: 0, AbsPos: ptr(1000), Kind: domain.EndBufferStop},
				End:    bufferStop("e", 500),
				Points: []domain.TrackPoint{point("s1", 100, nil), point("s2", 300, ptr(1310))},
			},
			wantStart: 1000,
			wantEnd:   1500,
			want:      map[string]float64{"s1": 1100, "s2": 1310},
		},
		{
			name: "offset from first element",
			track: domain.Track{
				ID:     "t",
				Begin:  bufferStop("b", 0),
				End:    bufferStop("e", 100),
				Points: []domain.TrackPoint{point("s1", 50, nil), point("s2", 20, ptr(220))},
			},
			wantStart: 200,
			wantEnd:   300,
			want:      map[string]float64{"s1": 250, "s2": 220},
		},
		{
			name: "descending direction",
			track: domain.Track{
				ID:     "t",
				Begin:  domain.TrackEnd{ID: "b", Pos: 0, AbsPos: ptr(900), Kind: domain.EndBufferStop},
				End:    domain.TrackEnd{ID: "e", Pos: 100, AbsPos: ptr(800), Kind: domain.EndBufferStop},
				Points: []domain.TrackPoint{point("s1", 40, ptr(860)), point("s2", 70, ptr(830))},
			},
			wantStart: 900,
			wantEnd:   800,
			want:      map[string]float64{"s1": 860, "s2": 830},
		},
		{
			name: "element beyond track end",
			track: domain.Track{
				ID:     "t",
				Begin:  domain.TrackEnd{ID: "b", Pos: 0, AbsPos: ptr(0), Kind: domain.EndBufferStop},
				End:    domain.TrackEnd{ID: "e", Pos: 100, AbsPos: ptr(100), Kind: domain.EndBufferStop},
				Points: []domain.TrackPoint{point("s1", 90, ptr(150))},
			},
			wantErr: true,
			errMsg:  "outside track bounds",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model := &domain.RailwayModel{Tracks: []domain.Track{tt.track}}
			a, _, err := Resolve(model, nil, DefaultPolicy())
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error containing %q, got nil", tt.errMsg)
				}
				if !strings.Contains(err.Error(), tt.errMsg) {
					t.Errorf("expected error containing %q, got %q", tt.errMsg, err.Error())
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			tm := a.Tracks["t"]
			if tm.Method != domain.MethodFromFile {
				t.Errorf("expected fromFile method, got %s", tm.Method)
			}
			if tm.Start != tt.wantStart || tm.End != tt.wantEnd {
				t.Errorf("expected span [%g, %g], got [%g, %g]", tt.wantStart, tt.wantEnd, tm.Start, tm.End)
			}
			for id, want := range tt.want {
				if got, ok := a.Lookup("t", id); !ok || got != want {
					t.Errorf("%s: expected %g, got %g (found %v)", id, want, got, ok)
				}
			}
		})
	}
}

// lineWithJunctions is a track with two switches and a crossing and no absolute positions
func lineWithJunctions() []domain.Track {
	conn := func(id string, pos float64, c, ref string) domain.TrackEnd {
		return domain.TrackEnd{ID: id, Pos: pos, Kind: domain.EndConnection, ConnectionID: c, Ref: ref}
	}
	return []domain.Track{
		{
			ID:    "t1",
			Begin: bufferStop("t1b", 0),
			End:   bufferStop("t1e", 1000),
			Junctions: []domain.Junction{
				{ID: "sw1", Kind: domain.JunctionSwitch, Pos: 200, Connections: []domain.JunctionConnection{{ID: "a", Ref: "t2c", Orientation: "outgoing", Course: "left"}}},
				{ID: "sw2", Kind: domain.JunctionSwitch, Pos: 500, Connections: []domain.JunctionConnection{{ID: "b", Ref: "t3c", Orientation: "outgoing", Course: "right"}}},
				{ID: "cr1", Kind: domain.JunctionCrossing, Pos: 700, Connections: []domain.JunctionConnection{{ID: "c", Ref: "t4c", Orientation: "outgoing"}}},
			},
			Points: []domain.TrackPoint{
				{ElementID: "sw1", Kind: "switch", Pos: 200},
				{ElementID: "sw2", Kind: "switch", Pos: 500},
				{ElementID: "cr1", Kind: "crossing", Pos: 700},
			},
		},
		{ID: "t2", Begin: conn("t2b", 0, "t2c", "a"), End: bufferStop("t2e", 300)},
		{ID: "t3", Begin: conn("t3b", 0, "t3c", "b"), End: bufferStop("t3e", 300)},
		{ID: "t4", Begin: conn("t4b", 0, "t4c", "c"), End: bufferStop("t4e", 300)},
	}
}

func TestResolve_EstimatedAlongGraph(t *testing.T) {
	tracks := lineWithJunctions()
	graph, _, err := topology.Resolve(tracks)
	if err != nil {
		t.Fatalf("topology failed: %v", err)
	}
	model := &domain.RailwayModel{Tracks: tracks}

	a, warnings, err := Resolve(model, graph, Policy{Mode: Estimated})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("explicit Estimated mode should not warn, got %d", len(warnings))
	}

	tm := a.Tracks["t1"]
	if len(tm.Points) != 3 {
		t.Fatalf("expected 3 points, got %d", len(tm.Points))
	}
	prev := tm.Start
	for _, p := range tm.Points {
		if p.Mileage <= prev {
			t.Errorf("mileage not strictly increasing at %s: %g after %g", p.ElementID, p.Mileage, prev)
		}
		prev = p.Mileage
	}
	if tm.End <= prev {
		t.Errorf("track end %g does not follow last point %g", tm.End, prev)
	}

	// each branch starts where its switch sits on the main track
	for branch, junction := range map[string]string{"t2": "sw1", "t3": "sw2", "t4": "cr1"} {
		want, _ := a.Lookup("t1", junction)
		if got := a.Tracks[branch].Start; got != want {
			t.Errorf("%s starts at %g, want %g", branch, got, want)
		}
	}
}

func TestResolve_EstimatedFollowsPos(t *testing.T) {
	tests := []struct {
		name      string
		end       float64
		points    []domain.TrackPoint
		wantOrder []string
		want      map[string]float64
		wantEnd   float64
	}{
		{
			name:      "offset by pos",
			end:       400,
			points:    []domain.TrackPoint{point("p1", 390, nil), point("p2", 10, nil), point("p3", 200, nil)},
			wantOrder: []string{"p2", "p3", "p1"},
			want:      map[string]float64{"p1": 390, "p2": 10, "p3": 200},
			wantEnd:   400,
		},
		{
			name:      "pos outside track is clamped",
			end:       100,
			points:    []domain.TrackPoint{point("far", 150, nil), point("near", 40, nil)},
			wantOrder: []string{"near", "far"},
			want:      map[string]float64{"near": 40, "far": 100},
			wantEnd:   100,
		},
		{
			name:      "no length spaces distinct positions",
			end:       0,
			points:    []domain.TrackPoint{point("b", 5, nil), point("c", 5, nil), point("a", 1, nil)},
			wantOrder: []string{"a", "b", "c"},
			want:      map[string]float64{"a": 100, "b": 200, "c": 200},
			wantEnd:   300,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model := &domain.RailwayModel{Tracks: []domain.Track{{
				ID:     "t",
				Begin:  bufferStop("b0", 0),
				End:    bufferStop("e0", tt.end),
				Points: tt.points,
			}}}
			a, _, err := Resolve(model, nil, Policy{Mode: Estimated})
			if err != nil {
				t.Fatalf("Resolve failed: %v", err)
			}
			tm := a.Tracks["t"]
			var order []string
			for _, p := range tm.Points {
				order = append(order, p.ElementID)
			}
			if diff := cmp.Diff(tt.wantOrder, order); diff != "" {
				t.Errorf("point order mismatch (-want +got):\n%s", diff)
			}
			for id, m := range tt.want {
				if got, _ := a.Lookup("t", id); got != m {
					t.Errorf("%s: expected %g, got %g", id, m, got)
				}
			}
			if tm.End != tt.wantEnd {
				t.Errorf("expected end %g, got %g", tt.wantEnd, tm.End)
			}
		})
	}
}

func TestResolve_SeparateComponentsAreSpaced(t *testing.T) {
	model := &domain.RailwayModel{Tracks: []domain.Track{
		{ID: "a", Begin: bufferStop("ab", 0), End: bufferStop("ae", 100)},
		{ID: "b", Begin: bufferStop("bb", 0), End: bufferStop("be", 50)},
	}}
	graph, _, err := topology.Resolve(model.Tracks)
	if err != nil {
		t.Fatalf("topology failed: %v", err)
	}
	a, _, err := Resolve(model, graph, Policy{Mode: Estimated})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if a.Tracks["a"].Start != 0 || a.Tracks["a"].End != 100 {
		t.Errorf("unexpected span for a: %+v", a.Tracks["a"])
	}
	if a.Tracks["b"].Start != 200 {
		t.Errorf("expected b to start after a gap at 200, got %g", a.Tracks["b"].Start)
	}
}

func TestResolve_Fallback(t *testing.T) {
	missing := domain.Track{ID: "plain", Begin: bufferStop("pb", 0), End: bufferStop("pe", 100), Points: []domain.TrackPoint{point("s", 30, nil)}}
	broken := domain.Track{
		ID:     "broken",
		Begin:  domain.TrackEnd{ID: "bb", AbsPos: ptr(0), Kind: domain.EndBufferStop},
		End:    domain.TrackEnd{ID: "be", Pos: 100, AbsPos: ptr(100), Kind: domain.EndBufferStop},
		Points: []domain.TrackPoint{point("x", 10, ptr(60)), point("y", 20, ptr(40))},
	}

	tests := []struct {
		name         string
		tracks       []domain.Track
		fallback     Fallback
		wantMethod   map[string]domain.MileageMethod
		wantWarnings int
		wantErr      bool
	}{
		{
			name:         "missing data estimated by default",
			tracks:       []domain.Track{missing},
			fallback:     FallbackMissing,
			wantMethod:   map[string]domain.MileageMethod{"plain": domain.MethodEstimated},
			wantWarnings: 1,
		},
		{
			name:       "no fallback uses pos",
			tracks:     []domain.Track{missing},
			fallback:   FallbackNone,
			wantMethod: map[string]domain.MileageMethod{"plain": domain.MethodFromFile},
		},
		{
			name:     "inconsistent data is fatal without permission",
			tracks:   []domain.Track{broken},
			fallback: FallbackMissing,
			wantErr:  true,
		},
		{
			name:         "inconsistent data estimated when permitted",
			tracks:       []domain.Track{broken},
			fallback:     FallbackInconsistent,
			wantMethod:   map[string]domain.MileageMethod{"broken": domain.MethodEstimated},
			wantWarnings: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model := &domain.RailwayModel{Tracks: tt.tracks}
			a, warnings, err := Resolve(model, nil, Policy{Mode: FromFile, Fallback: tt.fallback})
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			for id, method := range tt.wantMethod {
				if got := a.Tracks[id].Method; got != method {
					t.Errorf("%s: expected method %s, got %s", id, method, got)
				}
			}
			if len(warnings) != tt.wantWarnings {
				t.Errorf("expected %d warnings, got %d", tt.wantWarnings, len(warnings))
			}
			for _, w := range warnings {
				if w.Code() != "estimated-fallback" {
					t.Errorf("unexpected warning code %s", w.Code())
				}
			}
		})
	}
}

func TestParsePolicy(t *testing.T) {
	tests := []struct {
		input   string
		want    Mode
		wantErr bool
	}{
		{input: "", want: FromFile},
		{input: "FromFile", want: FromFile},
		{input: "estimated", want: Estimated},
		{input: "guess", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseMode(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseMode(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseMode(%q) = %s, want %s", tt.input, got, tt.want)
			}
		})
	}

	if _, err := ParseFallback("sometimes"); err == nil {
		t.Error("expected error for unknown fallback")
	}
	if err := (Policy{Mode: "bogus", Fallback: FallbackNone}).Validate(); err == nil {
		t.Error("expected validation error for unknown mode")
	}
}
