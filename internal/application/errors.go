package application

import (
	"errors"
	"fmt"
)

// Sentinel errors for the failure classes of the import/export pipeline
var (
	ErrParse            = errors.New("parse error")
	ErrTopology         = errors.New("topology error")
	ErrMileage          = errors.New("mileage inconsistency")
	ErrExport           = errors.New("export inconsistency")
	ErrNotFound         = errors.New("not found")
	ErrInvalidOperation = errors.New("invalid operation")
)

// ValidationError represents a validation failure with details
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// StageError records which pipeline stage failed for a source
type StageError struct {
	Stage  string
	Source string
	Err    error
}

func (e *StageError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("%s failed: %v", e.Stage, e.Err)
	}
	return fmt.Sprintf("%s failed for %s: %v", e.Stage, e.Source, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}
