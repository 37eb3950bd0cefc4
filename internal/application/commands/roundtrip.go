package commands

import (
	"context"
	"fmt"

	"railio/internal/application"
	"railio/internal/application/pipeline"
	"railio/internal/domain"
	"railio/internal/ports"
	"railio/internal/railml"
)

// RoundTripResult contains the comparison of a file with its re-import
type RoundTripResult struct {
	RoundTrip *pipeline.RoundTrip
	Before    map[domain.ObjectKind]int
	After     map[domain.ObjectKind]int
	Message   string
}

// Lossless reports whether counts and dumps matched
func (r *RoundTripResult) Lossless() bool {
	if !r.RoundTrip.Lossless() || len(r.Before) != len(r.After) {
		return false
	}
	for kind, n := range r.Before {
		if r.After[kind] != n {
			return false
		}
	}
	return true
}

// RoundTripCommand imports, exports and re-imports a file
type RoundTripCommand struct {
	loader
	Path    string
	Version railml.Version
}

// NewRoundTripCommand creates a new RoundTripCommand
func NewRoundTripCommand(sources ports.SourceRepository, p *pipeline.Pipeline, path string, version railml.Version) *RoundTripCommand {
	return &RoundTripCommand{
		loader:  loader{sources: sources, pipeline: p},
		Path:    path,
		Version: version,
	}
}

// Validate checks if the round trip operation is valid
func (c *RoundTripCommand) Validate() error {
	if err := application.ValidateRequired("sourcePath", c.Path); err != nil {
		return err
	}
	if !c.Version.Valid() {
		return &application.ValidationError{
			Field:   "version",
			Message: fmt.Sprintf("unsupported railML version %q", c.Version),
		}
	}
	return nil
}

// Execute runs the round trip command
func (c *RoundTripCommand) Execute(ctx context.Context) (*RoundTripResult, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	data, err := c.sources.Read(c.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read source: %w", err)
	}
	rt, err := c.pipeline.RoundTrip(ctx, c.Path, data, c.Version)
	if err != nil {
		return nil, err
	}

	result := &RoundTripResult{
		RoundTrip: rt,
		Before:    rt.First.Model.CountByKind(),
		After:     rt.Second.Model.CountByKind(),
	}
	if result.Lossless() {
		result.Message = fmt.Sprintf("Round trip of %s via railML %s is lossless", c.Path, c.Version)
	} else {
		result.Message = fmt.Sprintf("Round trip of %s via railML %s changed %d dump lines", c.Path, c.Version, len(rt.Differences))
	}
	return result, nil
}
