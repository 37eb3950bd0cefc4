package ports

import "railio/internal/domain"

// RunIndex records imports so later runs of the same source can be compared
type RunIndex interface {
	// Lifecycle
	Open(dbPath string) error
	Close() error

	// Queries
	GetRun(id string) (*domain.Run, error)
	LatestRun(source string) (*domain.Run, error)
	ListRuns(source string, limit int) ([]domain.Run, error)

	// Batch updates
	BeginTx() (RunTx, error)
}

// RunTx represents a transaction for atomic run updates
type RunTx interface {
	InsertRun(run *domain.Run) error
	InsertCounts(runID string, counts map[domain.ObjectKind]int) error
	DeleteRun(id string) error

	// Transaction control
	Commit() error
	Rollback() error
}
