package commands

import (
	"context"
	"fmt"

	"railio/internal/application/pipeline"
	"railio/internal/ports"
)

// loader reads a source file and runs the import pipeline on it
type loader struct {
	sources  ports.SourceRepository
	pipeline *pipeline.Pipeline
}

func (l loader) load(ctx context.Context, path string) (*pipeline.Import, error) {
	data, err := l.sources.Read(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read source: %w", err)
	}
	return l.pipeline.Import(ctx, path, data)
}
