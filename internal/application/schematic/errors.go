package schematic

import "fmt"

// DegenerateWarning reports input the solver could only lay out on a best-effort basis
type DegenerateWarning struct {
	// ID names the node, edge track or object concerned
	ID     string
	Reason string
}

func (w *DegenerateWarning) Code() string    { return "solver-degenerate" }
func (w *DegenerateWarning) Subject() string { return w.ID }
func (w *DegenerateWarning) Warning() string {
	if w.ID == "" {
		return fmt.Sprintf("schematic: %s", w.Reason)
	}
	return fmt.Sprintf("schematic: %s: %s", w.ID, w.Reason)
}

const (
	reasonEmptyGraph     = "empty graph"
	reasonIsolated       = "isolated node"
	reasonMissingMileage = "no mileage, track position used"
	reasonEmptyEdge      = "zero-length segment"
	reasonOffGraph       = "object lies on no segment of its track"
)
