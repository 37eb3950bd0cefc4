package commands

import (
	"context"

	"railio/internal/application"
	"railio/internal/application/dump"
	"railio/internal/application/pipeline"
	"railio/internal/ports"
)

// DumpResult contains the JSON dump of an imported model
type DumpResult struct {
	Data   []byte
	Report pipeline.Report
}

// DumpCommand imports a file and returns its diffable JSON dump
type DumpCommand struct {
	loader
	Path string
}

// NewDumpCommand creates a new DumpCommand
func NewDumpCommand(sources ports.SourceRepository, p *pipeline.Pipeline, path string) *DumpCommand {
	return &DumpCommand{
		loader: loader{sources: sources, pipeline: p},
		Path:   path,
	}
}

// Validate checks if the dump operation is valid
func (c *DumpCommand) Validate() error {
	return application.ValidateRequired("sourcePath", c.Path)
}

// Execute runs the dump command
func (c *DumpCommand) Execute(ctx context.Context) (*DumpResult, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	imp, err := c.load(ctx, c.Path)
	if err != nil {
		return nil, err
	}
	data, err := dump.Encode(imp.Model)
	if err != nil {
		return nil, err
	}
	return &DumpResult{Data: data, Report: imp.Report}, nil
}
