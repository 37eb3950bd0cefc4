package mapper

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"railio/internal/domain"
	"railio/internal/railml"
	"railio/internal/railml/railmltest"
)

func parseStation(t *testing.T, version string) *railml.Document {
	t.Helper()

	doc, err := railml.Parse(railmltest.Station(version))
	if err != nil {
		t.Fatalf("failed to parse station %s: %v", version, err)
	}
	return doc
}

func TestBuildModel(t *testing.T) {
	doc := parseStation(t, "2.5")
	m := BuildModel(doc, "station.xml")

	if m.Version != "2.5" || m.Source != "station.xml" {
		t.Errorf("unexpected header: version %q source %q", m.Version, m.Source)
	}
	if m.InfrastructureID != "inf1" {
		t.Errorf("expected infrastructure inf1, got %q", m.InfrastructureID)
	}
	if len(m.Tracks) != 5 {
		t.Fatalf("expected 5 tracks, got %d", len(m.Tracks))
	}

	t1 := m.Tracks[0]
	if len(t1.Junctions) != 3 {
		t.Fatalf("expected 3 junctions on t1, got %d", len(t1.Junctions))
	}
	sw1 := t1.Junctions[0]
	if sw1.ContinueCourse != "right" || sw1.Connections[0].Course != "left" || *sw1.Connections[0].Radius != 300 {
		t.Errorf("switch geometry not carried over: %+v", sw1)
	}
	if t1.Junctions[2].Kind != domain.JunctionCrossing {
		t.Errorf("expected cr1 to be a crossing, got %s", t1.Junctions[2].Kind)
	}

	// junctions in declared order, then every positioned element
	var ids []string
	for _, p := range t1.Points {
		ids = append(ids, p.ElementID)
	}
	want := []string{"sw1", "sw2", "cr1", "cs1", "sc1", "pe1", "br1", "sig1", "td1", "td2", "bl1"}
	if diff := cmp.Diff(want, ids); diff != "" {
		t.Errorf("points mismatch (-want +got):\n%s", diff)
	}

	t4 := m.Tracks[3]
	if t4.Begin.Kind != domain.EndMacroscopic || t4.Begin.MacroID != "mn1" || t4.Begin.OCPRef != "ocp1" {
		t.Errorf("macroscopic begin not mapped: %+v", t4.Begin)
	}
	if t4.End.Kind != domain.EndConnection || t4.End.ConnectionID != "t4ec" || t4.End.Ref != "cr1a" {
		t.Errorf("connection end not mapped: %+v", t4.End)
	}

	if len(m.OCPs) != 1 || m.OCPs[0].Register != "DB640" || !m.OCPs[0].Equipment.HasSummary {
		t.Errorf("ocp not mapped: %+v", m.OCPs)
	}
	if len(m.Lines) != 1 || len(m.Lines[0].TrackRefs) != 2 {
		t.Errorf("line not mapped: %+v", m.Lines)
	}
	if m.Metadata == nil || len(m.Metadata.Managers) != 1 {
		t.Errorf("metadata not mapped: %+v", m.Metadata)
	}
	if len(m.States) != 1 || len(m.Vehicles) != 1 {
		t.Errorf("expected one state and one vehicle, got %d/%d", len(m.States), len(m.Vehicles))
	}
}

func TestMap_ObjectsByKind(t *testing.T) {
	doc := parseStation(t, "2.5")
	objects, warnings := Map(Tracks(doc), nil)

	counts := make(map[domain.ObjectKind]int)
	for _, o := range objects {
		counts[o.Kind]++
		if o.SourceID == "" || o.TrackID == "" {
			t.Errorf("object %s lacks back-reference: %+v", o.ID, o)
		}
	}
	want := map[domain.ObjectKind]int{
		domain.KindCrossSection:  1,
		domain.KindSpeedChange:   1,
		domain.KindPlatformEdge:  1,
		domain.KindUnmapped:      1,
		domain.KindSignal:        1,
		domain.KindTrainDetector: 2,
		domain.KindBalise:        1,
	}
	if diff := cmp.Diff(want, counts); diff != "" {
		t.Errorf("object counts mismatch (-want +got):\n%s", diff)
	}

	if len(warnings) != 1 || warnings[0].Code() != "unmapped-element" || warnings[0].Subject() != "br1" {
		t.Errorf("expected one unmapped warning for br1, got %v", warnings)
	}
}

func TestMap_SignalPayload(t *testing.T) {
	doc := parseStation(t, "2.3")
	objects, _ := Map(Tracks(doc), nil)

	var sig domain.Object
	for _, o := range objects {
		if o.Kind == domain.KindSignal {
			sig = o
		}
	}
	p, ok := sig.Payload.(domain.SignalPayload)
	if !ok {
		t.Fatalf("expected signal payload, got %T", sig.Payload)
	}
	if p.Function != "home" || !p.IsMain() {
		t.Errorf("unexpected signal function/type: %+v", p)
	}
	if len(p.Speeds) != 1 || p.Speeds[0].SpeedChangeRef != "sc1" {
		t.Errorf("speed not mapped: %+v", p.Speeds)
	}
	if p.ETCS == nil || p.ETCS.Level1 == nil || !*p.ETCS.Level1 {
		t.Errorf("etcs level 1 not mapped: %+v", p.ETCS)
	}
	if sig.Dir != "up" || sig.Name != "A" {
		t.Errorf("unexpected dir/name %q/%q", sig.Dir, sig.Name)
	}
}

func TestMap_UnmappedKeepsElementVerbatim(t *testing.T) {
	doc := parseStation(t, "2.4")
	objects, _ := Map(Tracks(doc), nil)

	var raw domain.Object
	for _, o := range objects {
		if o.Kind == domain.KindUnmapped {
			raw = o
		}
	}
	if !raw.Positioned || raw.Pos != 600 || raw.Name != "Old Bridge" {
		t.Errorf("unexpected unmapped object %+v", raw)
	}
	p := raw.Payload.(domain.UnmappedPayload)
	if p.Section != "trackElements" || p.Container != "bridges" || p.Element.Name != "bridge" {
		t.Errorf("unexpected unmapped payload %+v", p)
	}
	if v, _ := p.Element.Attr("length"); v != "40.0" {
		t.Errorf("expected length attribute kept verbatim, got %q", v)
	}
	if len(p.Element.Children) != 1 || p.Element.Children[0].Text != "steel" {
		t.Errorf("expected note child kept, got %+v", p.Element.Children)
	}
	if p.Line == 0 {
		t.Error("expected source line to be recorded")
	}
}

func TestMap_AppliesMileage(t *testing.T) {
	doc := parseStation(t, "2.5")
	a := &domain.Assignment{Tracks: map[string]domain.TrackMileage{
		"t1": {TrackID: "t1", Points: []domain.MileagePoint{{ElementID: "td1", Mileage: 4120}}},
	}}
	objects, _ := Map(Tracks(doc), a)
	for _, o := range objects {
		if o.ID == "td1" && o.Mileage != 4120 {
			t.Errorf("expected td1 at 4120, got %g", o.Mileage)
		}
	}
}

func TestMap_CrossVersionParity(t *testing.T) {
	normalize := func(objects []domain.Object) []domain.Object {
		for i := range objects {
			if objects[i].GeoCoord != nil {
				g := *objects[i].GeoCoord
				g.EPSG = ""
				objects[i].GeoCoord = &g
			}
			if p, ok := objects[i].Payload.(domain.UnmappedPayload); ok {
				p.Line = 0
				objects[i].Payload = p
			}
		}
		return objects
	}

	base, _ := Map(Tracks(parseStation(t, "2.3")), nil)
	base = normalize(base)
	for _, version := range []string{"2.4", "2.5"} {
		t.Run(version, func(t *testing.T) {
			got, _ := Map(Tracks(parseStation(t, version)), nil)
			if diff := cmp.Diff(base, normalize(got)); diff != "" {
				t.Errorf("objects differ from 2.3 (-2.3 +%s):\n%s", version, diff)
			}
		})
	}
}
