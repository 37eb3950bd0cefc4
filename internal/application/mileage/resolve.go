package mileage

import (
	"errors"
	"sort"

	"railio/internal/application"
	"railio/internal/domain"
)

const (
	// defaultSpacing is the distance between estimated points on a track without usable length
	defaultSpacing = 100.0
	// componentGap separates estimated components that share no connection
	componentGap = 100.0
)

// Resolve computes the mileage of every track of the model. The method is
// chosen once per track from the policy; FromFile tracks that cannot be
// used are estimated only when the fallback permits it.
func Resolve(model *domain.RailwayModel, graph *domain.Graph, policy Policy) (*domain.Assignment, []application.Warning, error) {
	if policy.Mode == "" {
		policy.Mode = FromFile
	}
	if policy.Fallback == "" {
		policy.Fallback = FallbackMissing
	}
	if err := policy.Validate(); err != nil {
		return nil, nil, err
	}

	a := &domain.Assignment{Mode: policy.String(), Tracks: make(map[string]domain.TrackMileage, len(model.Tracks))}
	var (
		warnings []application.Warning
		errs     []error
		pending  []int
	)

	for i, t := range model.Tracks {
		if policy.Mode == Estimated {
			pending = append(pending, i)
			continue
		}
		if !t.HasAbsolute() && policy.Fallback != FallbackNone {
			pending = append(pending, i)
			warnings = append(warnings, &EstimatedFallbackWarning{TrackID: t.ID, Reason: "no absolute positions in file"})
			continue
		}
		tm, err := fromFile(t)
		if err != nil {
			var inc *InconsistencyError
			if policy.Fallback == FallbackInconsistent && errors.As(err, &inc) {
				pending = append(pending, i)
				warnings = append(warnings, &EstimatedFallbackWarning{TrackID: t.ID, Reason: err.Error()})
				continue
			}
			errs = append(errs, err)
			continue
		}
		a.Tracks[t.ID] = tm
	}
	if len(errs) > 0 {
		return nil, nil, errors.Join(errs...)
	}

	newEstimator(model.Tracks, graph, a).run(pending)
	return a, warnings, nil
}

// fromFile orders the points of a track by pos and validates their absolute
// values along the track direction
func fromFile(t domain.Track) (domain.TrackMileage, error) {
	offset := inferOffset(t)
	abs := func(pos float64, absPos *float64) float64 {
		if absPos != nil {
			return *absPos
		}
		return offset + pos
	}

	begin := domain.MileagePoint{ElementID: endID(t, domain.SideBegin), Kind: "trackBegin", Pos: t.Begin.Pos, Mileage: abs(t.Begin.Pos, t.Begin.AbsPos)}
	end := domain.MileagePoint{ElementID: endID(t, domain.SideEnd), Kind: "trackEnd", Pos: t.End.Pos, Mileage: abs(t.End.Pos, t.End.AbsPos)}

	ordered := append([]domain.TrackPoint(nil), t.Points...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Pos < ordered[j].Pos
	})

	tm := domain.TrackMileage{TrackID: t.ID, Method: domain.MethodFromFile, Start: begin.Mileage, End: end.Mileage}
	seq := make([]domain.MileagePoint, 0, len(ordered)+2)
	seq = append(seq, begin)
	for _, p := range ordered {
		mp := domain.MileagePoint{ElementID: p.ElementID, Kind: p.Kind, Pos: p.Pos, Mileage: abs(p.Pos, p.AbsPos)}
		tm.Points = append(tm.Points, mp)
		seq = append(seq, mp)
	}
	seq = append(seq, end)

	ascending := ascendingDirection(seq)
	for k := 1; k < len(seq); k++ {
		prev, cur := seq[k-1], seq[k]
		if (ascending && cur.Mileage < prev.Mileage) || (!ascending && cur.Mileage > prev.Mileage) {
			reason := "mileage regresses"
			if k == 1 || k == len(seq)-1 {
				reason = "position outside track bounds"
			}
			return domain.TrackMileage{}, &InconsistencyError{TrackID: t.ID, First: prev, Second: cur, Reason: reason}
		}
	}
	return tm, nil
}

// inferOffset derives absPos - pos from the begin, the end or the first element carrying both
func inferOffset(t domain.Track) float64 {
	if t.Begin.AbsPos != nil {
		return *t.Begin.AbsPos - t.Begin.Pos
	}
	if t.End.AbsPos != nil {
		return *t.End.AbsPos - t.End.Pos
	}
	for _, p := range t.Points {
		if p.AbsPos != nil {
			return *p.AbsPos - p.Pos
		}
	}
	return 0
}

// ascendingDirection uses the track ends when they differ, else the first unequal pair
func ascendingDirection(seq []domain.MileagePoint) bool {
	first, last := seq[0].Mileage, seq[len(seq)-1].Mileage
	if first != last {
		return last > first
	}
	for k := 1; k < len(seq); k++ {
		if seq[k].Mileage != seq[k-1].Mileage {
			return seq[k].Mileage > seq[k-1].Mileage
		}
	}
	return true
}

func endID(t domain.Track, side domain.EndSide) string {
	end := t.Begin
	if side == domain.SideEnd {
		end = t.End
	}
	if end.ID != "" {
		return end.ID
	}
	return t.ID + "." + string(side)
}
