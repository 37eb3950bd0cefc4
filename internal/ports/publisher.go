package ports

import (
	"context"

	"railio/internal/domain"
)

// GraphPublisher pushes a resolved topology to an external graph store
type GraphPublisher interface {
	// Publish replaces the stored graph of model.Source with the model's topology and objects
	Publish(ctx context.Context, model *domain.RailwayModel) (*domain.PublishStats, error)

	Close(ctx context.Context) error
}
