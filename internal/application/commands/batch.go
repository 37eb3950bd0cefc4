package commands

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"railio/internal/application"
	"railio/internal/application/pipeline"
	"railio/internal/ports"
	"railio/internal/railml"
)

// BatchItem is the outcome for one file of a batch
type BatchItem struct {
	Path   string
	Report pipeline.Report
	// Lossless is only meaningful when the batch ran round trips
	Lossless    bool
	Differences int
	Err         error
}

// BatchResult contains one item per file in path order
type BatchResult struct {
	Items   []BatchItem
	Failed  int
	Message string
}

// BatchCommand imports every railML file below a directory in parallel
type BatchCommand struct {
	loader
	Dir     string
	Workers int
	// RoundTrip, when set, exports each file as this version and compares the re-import
	RoundTrip railml.Version
}

// NewBatchCommand creates a new BatchCommand
func NewBatchCommand(sources ports.SourceRepository, p *pipeline.Pipeline, dir string, workers int) *BatchCommand {
	return &BatchCommand{
		loader:  loader{sources: sources, pipeline: p},
		Dir:     dir,
		Workers: workers,
	}
}

// Validate checks if the batch operation is valid
func (c *BatchCommand) Validate() error {
	if err := application.ValidateRequired("dir", c.Dir); err != nil {
		return err
	}
	if err := application.ValidatePositive("workers", c.Workers); err != nil {
		return err
	}
	if c.RoundTrip != "" && !c.RoundTrip.Valid() {
		return &application.ValidationError{
			Field:   "version",
			Message: fmt.Sprintf("unsupported railML version %q", c.RoundTrip),
		}
	}
	return nil
}

// Execute runs the batch command. Failures of single files are reported per
// item; only listing errors and cancellation fail the batch.
func (c *BatchCommand) Execute(ctx context.Context) (*BatchResult, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	paths, err := c.sources.List(c.Dir)
	if err != nil {
		return nil, err
	}

	items := make([]BatchItem, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(c.Workers)
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			items[i] = c.process(ctx, path)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := &BatchResult{Items: items}
	for _, it := range items {
		if it.Err != nil || (c.RoundTrip != "" && !it.Lossless) {
			result.Failed++
		}
	}
	result.Message = fmt.Sprintf("Processed %d files, %d failed", len(items), result.Failed)
	return result, nil
}

func (c *BatchCommand) process(ctx context.Context, path string) BatchItem {
	item := BatchItem{Path: path}
	if c.RoundTrip == "" {
		imp, err := c.load(ctx, path)
		if err != nil {
			item.Err = err
			return item
		}
		item.Report = imp.Report
		return item
	}

	data, err := c.sources.Read(path)
	if err != nil {
		item.Err = err
		return item
	}
	rt, err := c.pipeline.RoundTrip(ctx, path, data, c.RoundTrip)
	if err != nil {
		item.Err = err
		return item
	}
	item.Report = rt.First.Report
	item.Lossless = rt.Lossless()
	item.Differences = len(rt.Differences)
	return item
}
