package domain

// MileageMethod says how a track's mileage was derived
type MileageMethod string

const (
	MethodFromFile  MileageMethod = "fromFile"
	MethodEstimated MileageMethod = "estimated"
)

// MileagePoint is the absolute position of one position of interest
type MileagePoint struct {
	ElementID string
	Kind      string
	Pos       float64
	Mileage   float64
}

// TrackMileage maps a track's local offsets to absolute positions
type TrackMileage struct {
	TrackID string
	Method  MileageMethod
	Start   float64
	End     float64
	Points  []MileagePoint
}

// At returns the mileage of a track-local offset by linear interpolation between known points
func (tm TrackMileage) At(pos float64, begin, end float64) float64 {
	if end == begin {
		return tm.Start
	}
	return tm.Start + (tm.End-tm.Start)*(pos-begin)/(end-begin)
}

// Point returns the mileage point of an element
func (tm TrackMileage) Point(elementID string) (MileagePoint, bool) {
	for _, p := range tm.Points {
		if p.ElementID == elementID {
			return p, true
		}
	}
	return MileagePoint{}, false
}

// Assignment holds the mileage of every track
type Assignment struct {
	Mode   string
	Tracks map[string]TrackMileage
}

// Lookup returns the mileage of an element on a track
func (a *Assignment) Lookup(trackID, elementID string) (float64, bool) {
	if a == nil {
		return 0, false
	}
	tm, ok := a.Tracks[trackID]
	if !ok {
		return 0, false
	}
	p, ok := tm.Point(elementID)
	return p.Mileage, ok
}
