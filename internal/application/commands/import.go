package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"railio/internal/application"
	"railio/internal/application/dump"
	"railio/internal/application/pipeline"
	"railio/internal/domain"
	"railio/internal/ports"
)

// ImportResult contains the result of importing a railML file
type ImportResult struct {
	Import *pipeline.Import
	// Run is the recorded run, nil when no index is configured
	Run     *domain.Run
	Message string
}

// ImportCommand imports a railML file and records the run in the index
type ImportCommand struct {
	loader
	index ports.RunIndex
	Path  string
	now   func() time.Time
}

// NewImportCommand creates a new ImportCommand; index may be nil
func NewImportCommand(sources ports.SourceRepository, p *pipeline.Pipeline, index ports.RunIndex, path string) *ImportCommand {
	return &ImportCommand{
		loader: loader{sources: sources, pipeline: p},
		index:  index,
		Path:   path,
		now:    time.Now,
	}
}

// Validate checks if the import operation is valid
func (c *ImportCommand) Validate() error {
	return application.ValidateRequired("sourcePath", c.Path)
}

// Execute runs the import command
func (c *ImportCommand) Execute(ctx context.Context) (*ImportResult, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	imp, err := c.load(ctx, c.Path)
	if err != nil {
		return nil, err
	}

	result := &ImportResult{
		Import: imp,
		Message: fmt.Sprintf("Imported %s (railML %s): %d tracks, %d objects, %d warnings",
			c.Path, imp.Report.Version, len(imp.Model.Tracks), len(imp.Model.Objects), len(imp.Report.Warnings)),
	}
	if c.index == nil {
		return result, nil
	}

	run, err := RecordRun(c.index, imp, c.now())
	if err != nil {
		return nil, err
	}
	result.Run = run
	result.Message += fmt.Sprintf(" (run %s)", run.ID)
	return result, nil
}

// RecordRun stores an import with its dump and per-kind counts in one transaction
func RecordRun(index ports.RunIndex, imp *pipeline.Import, at time.Time) (*domain.Run, error) {
	data, err := dump.Encode(imp.Model)
	if err != nil {
		return nil, err
	}

	run := &domain.Run{
		ID:        uuid.NewString(),
		Source:    imp.Report.Source,
		Version:   imp.Report.Version,
		Policy:    imp.Report.Policy,
		CreatedAt: at.UTC(),
		Tracks:    len(imp.Model.Tracks),
		Objects:   len(imp.Model.Objects),
		Warnings:  len(imp.Report.Warnings),
		Counts:    imp.Model.CountByKind(),
		Dump:      data,
	}
	if g := imp.Model.Graph; g != nil {
		run.Nodes = len(g.Nodes)
		run.Edges = len(g.Edges)
	}

	tx, err := index.BeginTx()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := tx.InsertRun(run); err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to record run: %w", err)
	}
	if err := tx.InsertCounts(run.ID, run.Counts); err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to record counts: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit run: %w", err)
	}
	return run, nil
}
