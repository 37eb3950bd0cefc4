package mileage

import (
	"fmt"

	"railio/internal/application"
	"railio/internal/domain"
)

// InconsistencyError names the first pair of positions that breaks monotonicity on a track
type InconsistencyError struct {
	TrackID string
	First   domain.MileagePoint
	Second  domain.MileagePoint
	Reason  string
}

func (e *InconsistencyError) Error() string {
	return fmt.Sprintf("track %s: %s between %s (%s) and %s (%s)",
		e.TrackID, e.Reason,
		e.First.ElementID, formatMileage(e.First.Mileage),
		e.Second.ElementID, formatMileage(e.Second.Mileage))
}

func (e *InconsistencyError) Is(target error) bool {
	return target == application.ErrMileage
}

// EstimatedFallbackWarning records a FromFile track whose mileage was estimated
type EstimatedFallbackWarning struct {
	TrackID string
	Reason  string
}

func (w *EstimatedFallbackWarning) Code() string    { return "estimated-fallback" }
func (w *EstimatedFallbackWarning) Subject() string { return w.TrackID }
func (w *EstimatedFallbackWarning) Warning() string {
	return fmt.Sprintf("track %s: mileage estimated (%s)", w.TrackID, w.Reason)
}

func formatMileage(v float64) string {
	return fmt.Sprintf("%g", v)
}
