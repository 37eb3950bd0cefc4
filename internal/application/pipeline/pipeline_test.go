package pipeline

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"railio/internal/application"
	"railio/internal/application/mileage"
	"railio/internal/application/schematic"
	"railio/internal/application/topology"
	"railio/internal/domain"
	"railio/internal/railml"
	"railio/internal/railml/railmltest"
)

func estimated() *Pipeline {
	return New(WithPolicy(mileage.Policy{Mode: mileage.Estimated}))
}

func TestImport_EstimatedStation(t *testing.T) {
	res, err := estimated().Import(context.Background(), "station.xml", railmltest.Station("2.5"))
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	m := res.Model

	if got := len(m.Graph.Junctions()); got != 3 {
		t.Errorf("expected 3 junction nodes, got %d", got)
	}

	t1, ok := m.Track("t1")
	if !ok {
		t.Fatal("track t1 missing")
	}
	tm := m.Mileage.Tracks["t1"]
	if len(tm.Points) != len(t1.Points) {
		t.Fatalf("expected %d mileage points, got %d", len(t1.Points), len(tm.Points))
	}
	for i, p := range tm.Points {
		if p.Mileage < tm.Start || p.Mileage > tm.End {
			t.Errorf("%s at %g lies outside the track span [%g, %g]", p.ElementID, p.Mileage, tm.Start, tm.End)
		}
		if i == 0 {
			continue
		}
		prev := tm.Points[i-1]
		if p.Pos < prev.Pos {
			t.Errorf("points not ordered by pos: %s (%g) after %s (%g)", p.ElementID, p.Pos, prev.ElementID, prev.Pos)
		}
		if (p.Pos > prev.Pos) != (p.Mileage > prev.Mileage) {
			t.Errorf("mileage order disagrees with pos: %s pos=%g mileage=%g, %s pos=%g mileage=%g",
				prev.ElementID, prev.Pos, prev.Mileage, p.ElementID, p.Pos, p.Mileage)
		}
	}

	if res.Report.Version != "2.5" || res.Report.Source != "station.xml" {
		t.Errorf("unexpected report header %+v", res.Report)
	}
	if res.Report.Counts["junctions"] != 3 {
		t.Errorf("expected junction count 3 in report, got %d", res.Report.Counts["junctions"])
	}
	if res.Report.Counts["objects"] != len(m.Objects) {
		t.Errorf("report object count %d, model has %d", res.Report.Counts["objects"], len(m.Objects))
	}
	if got := res.Report.Warnings.ByCode()["unmapped-element"]; got != 1 {
		t.Errorf("expected 1 unmapped-element warning, got %d", got)
	}
	if len(res.Report.Diagnostics) != 1 {
		t.Errorf("expected 1 parser diagnostic, got %v", res.Report.Diagnostics)
	}
	if res.Report.Clean() {
		t.Error("report with warnings should not be clean")
	}
}

func TestImport_FromFileRegression(t *testing.T) {
	_, err := New().Import(context.Background(), "mileage.xml", railmltest.InconsistentMileage())
	if !errors.Is(err, application.ErrMileage) {
		t.Fatalf("expected ErrMileage, got %v", err)
	}
	var se *application.StageError
	if !errors.As(err, &se) || se.Stage != StageMileage {
		t.Fatalf("expected mileage stage error, got %v", err)
	}
	var inc *mileage.InconsistencyError
	if !errors.As(err, &inc) {
		t.Fatalf("expected *mileage.InconsistencyError, got %T", err)
	}
	if inc.First.Mileage != 120 || inc.Second.Mileage != 80 {
		t.Errorf("expected pair (120, 80), got (%g, %g)", inc.First.Mileage, inc.Second.Mileage)
	}
}

func TestImport_ConflictingClaim(t *testing.T) {
	_, err := New().Import(context.Background(), "claim.xml", railmltest.ConflictingClaim())
	if !errors.Is(err, application.ErrTopology) {
		t.Fatalf("expected ErrTopology, got %v", err)
	}
	var topoErr *topology.TopologyError
	if !errors.As(err, &topoErr) {
		t.Fatalf("expected *topology.TopologyError, got %T", err)
	}
	conflicts := topoErr.ByKind(topology.IssueConflict)
	if len(conflicts) != 1 {
		t.Fatalf("expected one conflict, got %v", topoErr.Issues)
	}
	if diff := cmp.Diff([]string{"c1", "c3"}, conflicts[0].ConnectionIDs); diff != "" {
		t.Errorf("conflict ids mismatch (-want +got):\n%s", diff)
	}
}

func TestImport_StageErrors(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		stage   string
		wantErr error
	}{
		{
			name:    "not xml",
			data:    []byte("not xml at all"),
			stage:   StageParse,
			wantErr: application.ErrParse,
		},
		{
			name:    "missing topology",
			data:    railmltest.MissingTopology(),
			stage:   StageParse,
			wantErr: application.ErrParse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New().Import(context.Background(), "bad.xml", tt.data)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			var se *application.StageError
			if !errors.As(err, &se) {
				t.Fatalf("expected *StageError, got %T", err)
			}
			if se.Stage != tt.stage || se.Source != "bad.xml" {
				t.Errorf("unexpected stage error %+v", se)
			}
		})
	}
}

func TestImport_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New().Import(ctx, "station.xml", railmltest.Station("2.4"))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestImport_Logs(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	p := New(WithLogger(logger), WithPolicy(mileage.Policy{Mode: mileage.Estimated}))
	if _, err := p.Import(context.Background(), "station.xml", railmltest.Station("2.3")); err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	out := buf.String()
	for _, want := range []string{"stage=parse", "stage=objects", "import complete", "source=station.xml"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}

func TestRoundTrip_KeepsObjectCounts(t *testing.T) {
	rt, err := New().RoundTrip(context.Background(), "platform.xml", railmltest.PlatformTrack(), railml.Version25)
	if err != nil {
		t.Fatalf("RoundTrip() error = %v", err)
	}

	want := map[domain.ObjectKind]int{
		domain.KindPlatformEdge:  1,
		domain.KindTrainDetector: 2,
		domain.KindBalise:        1,
	}
	if diff := cmp.Diff(want, rt.First.Model.CountByKind()); diff != "" {
		t.Errorf("source counts mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(want, rt.Second.Model.CountByKind()); diff != "" {
		t.Errorf("round trip counts mismatch (-want +got):\n%s", diff)
	}
	if !rt.Lossless() {
		t.Errorf("expected lossless round trip, got:\n%s", strings.Join(rt.Differences, "\n"))
	}
	if rt.Second.Report.Version != "2.5" {
		t.Errorf("expected reimport as 2.5, got %s", rt.Second.Report.Version)
	}
}

func TestRoundTrip_AllVersionPairs(t *testing.T) {
	p := estimated()
	for _, from := range railmltest.StationVersions {
		for _, to := range railml.SupportedVersions {
			t.Run(from+"->"+to.String(), func(t *testing.T) {
				rt, err := p.RoundTrip(context.Background(), "station.xml", railmltest.Station(from), to)
				if err != nil {
					t.Fatalf("RoundTrip() error = %v", err)
				}
				if !rt.Lossless() {
					t.Errorf("round trip lost content:\n%s", strings.Join(rt.Differences, "\n"))
				}
			})
		}
	}
}

func TestExport_UnsupportedVersion(t *testing.T) {
	p := New()
	res, err := p.Import(context.Background(), "platform.xml", railmltest.PlatformTrack())
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	_, err = p.Export(context.Background(), res.Model, "3.1")
	if !errors.Is(err, application.ErrExport) {
		t.Fatalf("expected ErrExport, got %v", err)
	}
	var se *application.StageError
	if !errors.As(err, &se) || se.Stage != StageExport {
		t.Errorf("expected export stage error, got %v", err)
	}
}

func TestLayout(t *testing.T) {
	p := estimated()
	res, err := p.Import(context.Background(), "station.xml", railmltest.Station("2.4"))
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	layout, err := p.Layout(context.Background(), res, schematic.Options{})
	if err != nil {
		t.Fatalf("Layout() error = %v", err)
	}
	if len(layout.Nodes) != len(res.Model.Graph.Nodes) {
		t.Errorf("expected %d placed nodes, got %d", len(res.Model.Graph.Nodes), len(layout.Nodes))
	}

	if _, err := p.Layout(context.Background(), nil, schematic.Options{}); !errors.Is(err, application.ErrInvalidOperation) {
		t.Errorf("expected ErrInvalidOperation without import, got %v", err)
	}
}

func TestReport_Summary(t *testing.T) {
	res, err := estimated().Import(context.Background(), "station.xml", railmltest.Station("2.5"))
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	s := res.Report.Summary()
	for _, want := range []string{"source:   station.xml", "version:  2.5", "junctions", "warnings (", "diagnostics (1)"} {
		if !strings.Contains(s, want) {
			t.Errorf("summary missing %q:\n%s", want, s)
		}
	}
}
