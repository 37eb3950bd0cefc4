package commands

import (
	"context"
	"fmt"

	"railio/internal/application"
	"railio/internal/application/pipeline"
	"railio/internal/domain"
	"railio/internal/ports"
)

// PublishResult contains the result of publishing a topology
type PublishResult struct {
	Stats   *domain.PublishStats
	Message string
}

// PublishCommand imports a file and pushes its topology to a graph store
type PublishCommand struct {
	loader
	publisher ports.GraphPublisher
	Path      string
}

// NewPublishCommand creates a new PublishCommand
func NewPublishCommand(sources ports.SourceRepository, p *pipeline.Pipeline, publisher ports.GraphPublisher, path string) *PublishCommand {
	return &PublishCommand{
		loader:    loader{sources: sources, pipeline: p},
		publisher: publisher,
		Path:      path,
	}
}

// Validate checks if the publish operation is valid
func (c *PublishCommand) Validate() error {
	if err := application.ValidateRequired("sourcePath", c.Path); err != nil {
		return err
	}
	if c.publisher == nil {
		return fmt.Errorf("%w: no graph store configured", application.ErrInvalidOperation)
	}
	return nil
}

// Execute runs the publish command
func (c *PublishCommand) Execute(ctx context.Context) (*PublishResult, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	imp, err := c.load(ctx, c.Path)
	if err != nil {
		return nil, err
	}
	stats, err := c.publisher.Publish(ctx, imp.Model)
	if err != nil {
		return nil, fmt.Errorf("failed to publish topology: %w", err)
	}
	return &PublishResult{
		Stats:   stats,
		Message: fmt.Sprintf("Published %s: %d nodes, %d edges, %d objects", c.Path, stats.Nodes, stats.Edges, stats.Objects),
	}, nil
}
