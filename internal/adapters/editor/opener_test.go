package editor

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestLineArgs(t *testing.T) {
	tests := []struct {
		name   string
		editor string
		line   int
		want   []string
	}{
		{name: "no line", editor: "vim", line: 0, want: []string{"a.xml"}},
		{name: "vim", editor: "/usr/bin/vim", line: 12, want: []string{"+12", "a.xml"}},
		{name: "nano", editor: "nano", line: 3, want: []string{"+3", "a.xml"}},
		{name: "vscode", editor: "code", line: 7, want: []string{"--goto", "a.xml:7"}},
		{name: "sublime", editor: "subl", line: 7, want: []string{"a.xml:7"}},
		{name: "helix", editor: "hx", line: 9, want: []string{"a.xml:9"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := lineArgs(tt.editor, "a.xml", tt.line)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("lineArgs() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCommand(t *testing.T) {
	env := map[string]string{"EDITOR": "code -w"}
	o := &Opener{lookupEnv: func(k string) string { return env[k] }}

	cmd, err := o.Command("/tmp/station.xml", 40)
	if err != nil {
		t.Fatalf("Command() error = %v", err)
	}
	want := []string{"code", "-w", "--goto", "/tmp/station.xml:40"}
	if diff := cmp.Diff(want, cmd.Args); diff != "" {
		t.Errorf("args mismatch (-want +got):\n%s", diff)
	}

	env = map[string]string{"VISUAL": "nvim"}
	cmd, err = o.Command("/tmp/station.xml", 0)
	if err != nil {
		t.Fatalf("Command() error = %v", err)
	}
	if diff := cmp.Diff([]string{"nvim", "/tmp/station.xml"}, cmd.Args); diff != "" {
		t.Errorf("args mismatch (-want +got):\n%s", diff)
	}
}
