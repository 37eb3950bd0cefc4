package commands

import (
	"context"
	"fmt"

	"railio/internal/application"
	"railio/internal/application/dump"
	"railio/internal/domain"
	"railio/internal/ports"
)

// ListRunsCommand lists recorded runs, newest first
type ListRunsCommand struct {
	index  ports.RunIndex
	Source string
	Limit  int
}

// NewListRunsCommand creates a new ListRunsCommand; an empty source lists all sources
func NewListRunsCommand(index ports.RunIndex, source string, limit int) *ListRunsCommand {
	return &ListRunsCommand{
		index:  index,
		Source: source,
		Limit:  limit,
	}
}

// Execute runs the list command
func (c *ListRunsCommand) Execute(ctx context.Context) ([]domain.Run, error) {
	if c.index == nil {
		return nil, fmt.Errorf("%w: no run index configured", application.ErrInvalidOperation)
	}
	runs, err := c.index.ListRuns(c.Source, c.Limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	return runs, nil
}

// DiffRunsResult contains the differences between two runs
type DiffRunsResult struct {
	From        *domain.Run
	To          *domain.Run
	Differences []string
	// CountChanges maps object kinds whose count changed to {from, to}
	CountChanges map[domain.ObjectKind][2]int
	Message      string
}

// DiffRunsCommand compares the dumps of two recorded runs
type DiffRunsCommand struct {
	index  ports.RunIndex
	FromID string
	ToID   string
}

// NewDiffRunsCommand creates a new DiffRunsCommand
func NewDiffRunsCommand(index ports.RunIndex, fromID, toID string) *DiffRunsCommand {
	return &DiffRunsCommand{
		index:  index,
		FromID: fromID,
		ToID:   toID,
	}
}

// Validate checks if the diff operation is valid
func (c *DiffRunsCommand) Validate() error {
	if c.FromID == "" || c.ToID == "" {
		return &application.ValidationError{
			Field:   "runs",
			Message: "two run IDs are required",
		}
	}
	if c.index == nil {
		return fmt.Errorf("%w: no run index configured", application.ErrInvalidOperation)
	}
	return nil
}

// Execute runs the diff command
func (c *DiffRunsCommand) Execute(ctx context.Context) (*DiffRunsResult, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	from, err := c.index.GetRun(c.FromID)
	if err != nil {
		return nil, err
	}
	to, err := c.index.GetRun(c.ToID)
	if err != nil {
		return nil, err
	}

	result := &DiffRunsResult{
		From:         from,
		To:           to,
		Differences:  dump.Diff(from.Dump, to.Dump),
		CountChanges: make(map[domain.ObjectKind][2]int),
	}
	for kind, n := range from.Counts {
		if to.Counts[kind] != n {
			result.CountChanges[kind] = [2]int{n, to.Counts[kind]}
		}
	}
	for kind, n := range to.Counts {
		if _, ok := from.Counts[kind]; !ok {
			result.CountChanges[kind] = [2]int{0, n}
		}
	}

	if len(result.Differences) == 0 {
		result.Message = fmt.Sprintf("Runs %s and %s are identical", from.ID, to.ID)
	} else {
		result.Message = fmt.Sprintf("Runs %s and %s differ in %d dump lines", from.ID, to.ID, len(result.Differences))
	}
	return result, nil
}
