package commands

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"railio/internal/application"
	"railio/internal/application/dump"
	"railio/internal/application/mileage"
	"railio/internal/application/pipeline"
	"railio/internal/domain"
	"railio/internal/railml"
	"railio/internal/railml/railmltest"
)

func fixtures() *memSources {
	return newMemSources(map[string][]byte{
		"in/station.xml":  railmltest.Station("2.4"),
		"in/platform.xml": railmltest.PlatformTrack(),
		"bad/claim.xml":   railmltest.ConflictingClaim(),
		"bad/mileage.xml": railmltest.InconsistentMileage(),
	})
}

func estimated() *pipeline.Pipeline {
	return pipeline.New(pipeline.WithPolicy(mileage.Policy{Mode: mileage.Estimated}))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cmd     interface{ Validate() error }
		wantErr bool
		errMsg  string
	}{
		{
			name:    "import without path",
			cmd:     &ImportCommand{},
			wantErr: true,
			errMsg:  "source path is required",
		},
		{
			name: "import",
			cmd:  &ImportCommand{Path: "a.xml"},
		},
		{
			name:    "export unsupported version",
			cmd:     &ExportCommand{Path: "a.xml", Version: "2.2"},
			wantErr: true,
			errMsg:  "unsupported railML version",
		},
		{
			name:    "export over source",
			cmd:     &ExportCommand{Path: "a.xml", Output: "a.xml", Version: railml.Version25},
			wantErr: true,
			errMsg:  "output must differ",
		},
		{
			name:    "round trip without version",
			cmd:     &RoundTripCommand{Path: "a.xml"},
			wantErr: true,
			errMsg:  "unsupported railML version",
		},
		{
			name:    "batch without dir",
			cmd:     &BatchCommand{Workers: 1},
			wantErr: true,
			errMsg:  "directory is required",
		},
		{
			name:    "batch without workers",
			cmd:     &BatchCommand{Dir: "in"},
			wantErr: true,
			errMsg:  "at least 1",
		},
		{
			name:    "batch bad round trip version",
			cmd:     &BatchCommand{Dir: "in", Workers: 2, RoundTrip: "9.9"},
			wantErr: true,
			errMsg:  "unsupported railML version",
		},
		{
			name:    "layout too narrow",
			cmd:     &LayoutCommand{Path: "a.xml", Width: 3},
			wantErr: true,
			errMsg:  "width must be at least 10",
		},
		{
			name:    "diff needs two runs",
			cmd:     &DiffRunsCommand{FromID: "r1"},
			wantErr: true,
			errMsg:  "two run IDs are required",
		},
		{
			name:    "publish without store",
			cmd:     &PublishCommand{Path: "a.xml"},
			wantErr: true,
			errMsg:  "no graph store configured",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cmd.Validate()
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error containing %q, got nil", tt.errMsg)
					return
				}
				if !strings.Contains(err.Error(), tt.errMsg) {
					t.Errorf("expected error containing %q, got %q", tt.errMsg, err.Error())
				}
			} else if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestImportCommand_RecordsRun(t *testing.T) {
	index := &memIndex{}
	cmd := NewImportCommand(fixtures(), estimated(), index, "in/station.xml")
	cmd.now = func() time.Time { return time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC) }

	res, err := cmd.Execute(context.Background())
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if res.Run == nil {
		t.Fatal("expected a recorded run")
	}
	if len(index.runs) != 1 {
		t.Fatalf("expected 1 stored run, got %d", len(index.runs))
	}

	run := index.runs[0]
	if run.Source != "in/station.xml" || run.Version != "2.4" || run.Policy != "estimated" {
		t.Errorf("unexpected run header %+v", run)
	}
	if run.Objects != len(res.Import.Model.Objects) || run.Nodes != len(res.Import.Model.Graph.Nodes) {
		t.Errorf("run counts do not match the model")
	}
	if diff := cmp.Diff(res.Import.Model.CountByKind(), run.Counts); diff != "" {
		t.Errorf("per-kind counts mismatch (-model +run):\n%s", diff)
	}
	want, err := dump.Encode(res.Import.Model)
	if err != nil {
		t.Fatalf("failed to encode: %v", err)
	}
	if string(want) != string(run.Dump) {
		t.Error("stored dump differs from the model dump")
	}
	if !strings.Contains(res.Message, run.ID) {
		t.Errorf("message should name the run: %s", res.Message)
	}
}

func TestImportCommand_Errors(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		wantErr error
	}{
		{name: "missing file", path: "in/nope.xml", wantErr: application.ErrNotFound},
		{name: "conflicting connections", path: "bad/claim.xml", wantErr: application.ErrTopology},
		{name: "mileage regression", path: "bad/mileage.xml", wantErr: application.ErrMileage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			index := &memIndex{}
			_, err := NewImportCommand(fixtures(), pipeline.New(), index, tt.path).Execute(context.Background())
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			if len(index.runs) != 0 {
				t.Errorf("failed import should not record a run")
			}
		})
	}
}

func TestDumpCommand(t *testing.T) {
	res, err := NewDumpCommand(fixtures(), estimated(), "in/station.xml").Execute(context.Background())
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	d, err := dump.Decode(res.Data)
	if err != nil {
		t.Fatalf("dump is not valid: %v", err)
	}
	if d.Counts["objects"] == 0 || d.Counts["nodes"] == 0 {
		t.Errorf("unexpected dump counts %v", d.Counts)
	}
}

func TestExportCommand(t *testing.T) {
	sources := fixtures()
	cmd := NewExportCommand(sources, pipeline.New(), "in/platform.xml", "out/platform-25.xml", railml.Version25)

	res, err := cmd.Execute(context.Background())
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	written, err := sources.Read("out/platform-25.xml")
	if err != nil {
		t.Fatalf("export not written: %v", err)
	}
	if string(written) != string(res.Data) {
		t.Error("written data differs from result")
	}
	doc, err := railml.Parse(written)
	if err != nil {
		t.Fatalf("exported file does not parse: %v", err)
	}
	if doc.Version != railml.Version25 {
		t.Errorf("expected 2.5 output, got %s", doc.Version)
	}
}

func TestExportCommand_Renumber(t *testing.T) {
	cmd := NewExportCommand(fixtures(), estimated(), "in/station.xml", "", railml.Version24)
	cmd.Renumber = true

	res, err := cmd.Execute(context.Background())
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if res.Renamed["t1"] != "tr1" {
		t.Errorf("expected t1 renamed to tr1, got %q", res.Renamed["t1"])
	}
	if !strings.Contains(string(res.Data), `id="tr1"`) {
		t.Error("output should carry generated ids")
	}
}

func TestRoundTripCommand(t *testing.T) {
	res, err := NewRoundTripCommand(fixtures(), pipeline.New(), "in/platform.xml", railml.Version23).Execute(context.Background())
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	want := map[domain.ObjectKind]int{
		domain.KindPlatformEdge:  1,
		domain.KindTrainDetector: 2,
		domain.KindBalise:        1,
	}
	if diff := cmp.Diff(want, res.After); diff != "" {
		t.Errorf("counts after round trip (-want +got):\n%s", diff)
	}
	if !res.Lossless() {
		t.Errorf("expected lossless round trip: %v", res.RoundTrip.Differences)
	}
}

func TestBatchCommand(t *testing.T) {
	tests := []struct {
		name       string
		dir        string
		roundTrip  railml.Version
		wantFailed int
		wantItems  int
	}{
		{name: "imports", dir: "in", wantItems: 2},
		{name: "round trips", dir: "in", roundTrip: railml.Version25, wantItems: 2},
		{name: "failures are per file", dir: "bad", wantItems: 2, wantFailed: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := NewBatchCommand(fixtures(), pipeline.New(), tt.dir, 3)
			cmd.RoundTrip = tt.roundTrip

			res, err := cmd.Execute(context.Background())
			if err != nil {
				t.Fatalf("Execute() error = %v", err)
			}
			if len(res.Items) != tt.wantItems {
				t.Fatalf("expected %d items, got %d", tt.wantItems, len(res.Items))
			}
			if res.Failed != tt.wantFailed {
				t.Errorf("expected %d failures, got %d", tt.wantFailed, res.Failed)
			}
			for i := 1; i < len(res.Items); i++ {
				if res.Items[i-1].Path > res.Items[i].Path {
					t.Errorf("items not in path order")
				}
			}
		})
	}

	if _, err := NewBatchCommand(fixtures(), estimated(), "empty", 1).Execute(context.Background()); !errors.Is(err, application.ErrNotFound) {
		t.Errorf("expected ErrNotFound for empty dir, got %v", err)
	}
}

func TestBatchCommand_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewBatchCommand(fixtures(), estimated(), "in", 1).Execute(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestLayoutCommand(t *testing.T) {
	res, err := NewLayoutCommand(fixtures(), estimated(), "in/station.xml", 60).Execute(context.Background())
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if res.Layout.Empty() {
		t.Fatal("expected a non-empty layout")
	}
	if !strings.Contains(res.Text, "Y") {
		t.Errorf("rendering should show switches:\n%s", res.Text)
	}
}

func TestRunsCommands(t *testing.T) {
	index := &memIndex{}
	sources := fixtures()

	first, err := NewImportCommand(sources, estimated(), index, "in/station.xml").Execute(context.Background())
	if err != nil {
		t.Fatalf("first import: %v", err)
	}
	// same file, different mileage policy
	second, err := NewImportCommand(sources, pipeline.New(), index, "in/station.xml").Execute(context.Background())
	if err != nil {
		t.Fatalf("second import: %v", err)
	}

	runs, err := NewListRunsCommand(index, "in/station.xml", 0).Execute(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(runs) != 2 || runs[0].ID != second.Run.ID {
		t.Fatalf("expected 2 runs newest first, got %v", runs)
	}

	same, err := NewDiffRunsCommand(index, first.Run.ID, first.Run.ID).Execute(context.Background())
	if err != nil {
		t.Fatalf("diff: %v", err)
	}
	if len(same.Differences) != 0 || len(same.CountChanges) != 0 {
		t.Errorf("a run should not differ from itself: %v", same.Differences)
	}

	if _, err := NewDiffRunsCommand(index, first.Run.ID, "missing").Execute(context.Background()); !errors.Is(err, application.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, err := NewListRunsCommand(nil, "", 0).Execute(context.Background()); !errors.Is(err, application.ErrInvalidOperation) {
		t.Errorf("expected ErrInvalidOperation without index, got %v", err)
	}
}

func TestPublishCommand(t *testing.T) {
	pub := &recordingPublisher{}
	res, err := NewPublishCommand(fixtures(), estimated(), pub, "in/station.xml").Execute(context.Background())
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if pub.model == nil || res.Stats.Nodes != len(pub.model.Graph.Nodes) {
		t.Errorf("publisher did not receive the model")
	}

	pub.err = errors.New("connection refused")
	if _, err := NewPublishCommand(fixtures(), estimated(), pub, "in/station.xml").Execute(context.Background()); err == nil {
		t.Error("expected publish error")
	}
}
