package commands

import (
	"context"
	"fmt"

	"railio/internal/application"
	"railio/internal/application/pipeline"
	"railio/internal/application/schematic"
	"railio/internal/domain"
	"railio/internal/ports"
)

const DefaultLayoutWidth = 100

// LayoutResult contains the solved schematic and its text rendering
type LayoutResult struct {
	Layout *domain.Layout
	Text   string
	Report pipeline.Report
}

// LayoutCommand imports a file and solves its schematic layout
type LayoutCommand struct {
	loader
	Path      string
	Width     int
	PreferGeo bool
}

// NewLayoutCommand creates a new LayoutCommand
func NewLayoutCommand(sources ports.SourceRepository, p *pipeline.Pipeline, path string, width int) *LayoutCommand {
	return &LayoutCommand{
		loader: loader{sources: sources, pipeline: p},
		Path:   path,
		Width:  width,
	}
}

// Validate checks if the layout operation is valid
func (c *LayoutCommand) Validate() error {
	if err := application.ValidateRequired("sourcePath", c.Path); err != nil {
		return err
	}
	if c.Width < 10 {
		return &application.ValidationError{
			Field:   "width",
			Message: fmt.Sprintf("width must be at least 10, got %d", c.Width),
		}
	}
	return nil
}

// Execute runs the layout command
func (c *LayoutCommand) Execute(ctx context.Context) (*LayoutResult, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	imp, err := c.load(ctx, c.Path)
	if err != nil {
		return nil, err
	}
	layout, err := c.pipeline.Layout(ctx, imp, schematic.Options{PreferGeo: c.PreferGeo})
	if err != nil {
		return nil, err
	}
	return &LayoutResult{
		Layout: layout,
		Text:   schematic.Render(layout, c.Width),
		Report: imp.Report,
	}, nil
}
