package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"railio/internal/application/mileage"
	"railio/internal/railml"
)

func env(vars map[string]string) func(string) string {
	return func(k string) string { return vars[k] }
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoadFrom(t *testing.T) {
	file := writeConfig(t, `
db: /var/lib/railio/runs.db
mileage: estimated
export_version: "2.4"
workers: 8
neo4j:
  uri: bolt://graph:7687
  password: secret
`)

	tests := []struct {
		name    string
		path    string
		env     map[string]string
		want    Config
		wantErr bool
		errMsg  string
	}{
		{
			name: "defaults without file",
			path: filepath.Join(t.TempDir(), "missing.yaml"),
			want: Default(),
		},
		{
			name: "file values",
			path: file,
			want: Config{
				DB:            "/var/lib/railio/runs.db",
				Mileage:       "estimated",
				Fallback:      "missing",
				ExportVersion: "2.4",
				Workers:       8,
				LogLevel:      "info",
				Neo4j:         Neo4j{URI: "bolt://graph:7687", User: "neo4j", Password: "secret"},
			},
		},
		{
			name: "environment overrides file",
			path: file,
			env: map[string]string{
				"RAILIO_MILEAGE":        "fromFile",
				"RAILIO_FALLBACK":       "inconsistent",
				"RAILIO_WORKERS":        "2",
				"RAILIO_LOG_LEVEL":      "debug",
				"RAILIO_NEO4J_PASSWORD": "other",
			},
			want: Config{
				DB:            "/var/lib/railio/runs.db",
				Mileage:       "fromFile",
				Fallback:      "inconsistent",
				ExportVersion: "2.4",
				Workers:       2,
				LogLevel:      "debug",
				Neo4j:         Neo4j{URI: "bolt://graph:7687", User: "neo4j", Password: "other"},
			},
		},
		{
			name:    "workers not a number",
			env:     map[string]string{"RAILIO_WORKERS": "many"},
			wantErr: true,
			errMsg:  "not a number",
		},
		{
			name:    "unknown mileage policy",
			env:     map[string]string{"RAILIO_MILEAGE": "guess"},
			wantErr: true,
			errMsg:  "unknown mileage policy",
		},
		{
			name:    "unsupported export version",
			env:     map[string]string{"RAILIO_EXPORT_VERSION": "3.0"},
			wantErr: true,
			errMsg:  "unsupported railML version",
		},
		{
			name:    "zero workers",
			env:     map[string]string{"RAILIO_WORKERS": "0"},
			wantErr: true,
			errMsg:  "at least 1",
		},
		{
			name:    "unknown log level",
			env:     map[string]string{"RAILIO_LOG_LEVEL": "loud"},
			wantErr: true,
			errMsg:  "unknown level",
		},
		{
			name:    "malformed file",
			path:    writeConfig(t, "workers: [1"),
			wantErr: true,
			errMsg:  "failed to parse config",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := LoadFrom(tt.path, env(tt.env))
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error containing %q, got nil", tt.errMsg)
					return
				}
				if !strings.Contains(err.Error(), tt.errMsg) {
					t.Errorf("expected error containing %q, got %q", tt.errMsg, err.Error())
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("LoadFrom() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestConfig_Derived(t *testing.T) {
	cfg := Default()
	cfg.Mileage = "Estimated"
	cfg.ExportVersion = "2.3"
	cfg.LogLevel = "warn"

	policy, err := cfg.Policy()
	if err != nil {
		t.Fatalf("Policy() error = %v", err)
	}
	if policy.Mode != mileage.Estimated {
		t.Errorf("expected estimated mode, got %s", policy.Mode)
	}
	if cfg.Version() != railml.Version23 {
		t.Errorf("expected version 2.3, got %s", cfg.Version())
	}
	level, err := cfg.Level()
	if err != nil || level != slog.LevelWarn {
		t.Errorf("expected warn level, got %v (%v)", level, err)
	}
}

func TestConfig_Redacted(t *testing.T) {
	cfg := Default()
	cfg.Neo4j.Password = "hunter2"

	s := cfg.Redacted()
	if strings.Contains(s, "hunter2") {
		t.Errorf("password leaked: %s", s)
	}
	if !strings.Contains(s, "password=[REDACTED]") {
		t.Errorf("expected redacted marker: %s", s)
	}
}

func TestPath(t *testing.T) {
	t.Setenv("RAILIO_CONFIG", "/etc/railio.yaml")
	if got := Path(); got != "/etc/railio.yaml" {
		t.Errorf("expected RAILIO_CONFIG path, got %s", got)
	}
}
