package cmd

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"railio/internal/railml/railmltest"
)

func run(t *testing.T, args ...string) error {
	t.Helper()

	dir := t.TempDir()
	base := []string{"--config", filepath.Join(dir, "none.yaml"), "--db", filepath.Join(dir, "runs.db"), "--log-level", "error"}
	rootCmd.SetArgs(append(base, args...))
	return rootCmd.ExecuteContext(context.Background())
}

func TestCommands(t *testing.T) {
	dir := t.TempDir()
	station := railmltest.Write(t, dir, "station.xml", railmltest.Station("2.4"))
	platform := railmltest.Write(t, dir, "platform.xml", railmltest.PlatformTrack())
	out := filepath.Join(dir, "platform-23.xml")

	tests := []struct {
		name    string
		args    []string
		wantErr bool
		errMsg  string
	}{
		{name: "layout", args: []string{"layout", "-m", "estimated", station}},
		{name: "find", args: []string{"find", "-m", "estimated", station, "t1"}},
		{name: "export", args: []string{"export", platform, "--to", "2.3", "-o", out}},
		{name: "roundtrip", args: []string{"roundtrip", platform, "--via", "2.4"}},
		{name: "import without recording", args: []string{"import", "--no-record", platform}},
		{name: "bad version", args: []string{"export", platform, "--to", "3.0"}, wantErr: true, errMsg: "unsupported railML version"},
		{name: "export onto source", args: []string{"export", platform, "--to", "2.5", "-o", platform}, wantErr: true, errMsg: "output"},
		// flag values persist between executions, so this one runs last
		{name: "bad mileage policy", args: []string{"dump", "-m", "guess", platform}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := run(t, tt.args...)
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.errMsg != "" && !strings.Contains(err.Error(), tt.errMsg) {
				t.Errorf("error %q does not mention %q", err, tt.errMsg)
			}
		})
	}

	if _, err := os.Stat(out); err != nil {
		t.Errorf("export did not write %s: %v", out, err)
	}
}
