package application

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateRequired(t *testing.T) {
	tests := []struct {
		name      string
		fieldName string
		value     string
		wantErr   bool
	}{
		{
			name:      "valid value",
			fieldName: "sourcePath",
			value:     "fixtures/station.xml",
			wantErr:   false,
		},
		{
			name:      "empty string",
			fieldName: "sourcePath",
			value:     "",
			wantErr:   true,
		},
		{
			name:      "whitespace only",
			fieldName: "outputPath",
			value:     "   ",
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRequired(tt.fieldName, tt.value)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateRequired() error = %v, wantErr %v", err, tt.wantErr)
			}

			if err != nil {
				var valErr *ValidationError
				if !errors.As(err, &valErr) {
					t.Fatalf("expected ValidationError, got %T", err)
				}
				if valErr.Field != tt.fieldName {
					t.Errorf("expected field %s, got %s", tt.fieldName, valErr.Field)
				}
			}
		})
	}
}

func TestValidateOneOf(t *testing.T) {
	allowed := []string{"2.3", "2.4", "2.5"}
	tests := []struct {
		name    string
		value   string
		wantErr bool
		errMsg  string
	}{
		{name: "supported version", value: "2.4", wantErr: false},
		{name: "unsupported version", value: "3.1", wantErr: true, errMsg: "target version must be one of 2.3, 2.4, 2.5"},
		{name: "empty", value: "", wantErr: true, errMsg: `got: ""`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateOneOf("targetVersion", tt.value, allowed)
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
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestValidatePositive(t *testing.T) {
	if err := ValidatePositive("workers", 4); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	err := ValidatePositive("workers", 0)
	if err == nil {
		t.Fatal("expected error for zero workers")
	}
	if !strings.Contains(err.Error(), "workers must be at least 1") {
		t.Errorf("unexpected message: %q", err.Error())
	}
}

type testWarning struct {
	code, subject string
}

func (w testWarning) Code() string    { return w.code }
func (w testWarning) Subject() string { return w.subject }
func (w testWarning) Warning() string { return w.code + ":" + w.subject }

func TestWarnings(t *testing.T) {
	var ws Warnings
	ws.Add(testWarning{"b", "x"}, nil, testWarning{"a", "z"}, testWarning{"a", "y"})

	if len(ws) != 3 {
		t.Fatalf("expected 3 warnings, got %d", len(ws))
	}
	if got := ws.ByCode()["a"]; got != 2 {
		t.Errorf("expected 2 warnings with code a, got %d", got)
	}
	msgs := ws.Messages()
	want := []string{"a:y", "a:z", "b:x"}
	for i := range want {
		if msgs[i] != want[i] {
			t.Errorf("message %d: expected %q, got %q", i, want[i], msgs[i])
		}
	}
}
