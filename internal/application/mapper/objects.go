package mapper

import (
	"fmt"
	"strconv"

	"railio/internal/application"
	"railio/internal/domain"
	"railio/internal/railml"
)

const (
	sectionTrackElements = "trackElements"
	sectionOCSElements   = "ocsElements"
)

// UnmappedElementWarning reports an element kept verbatim because no rule maps it
type UnmappedElementWarning struct {
	TrackID   string
	ElementID string
	Container string
	Element   string
	Line      int
}

func (w *UnmappedElementWarning) Code() string    { return "unmapped-element" }
func (w *UnmappedElementWarning) Subject() string { return w.ElementID }
func (w *UnmappedElementWarning) Warning() string {
	msg := fmt.Sprintf("track %s: %s/%s %s kept unmapped", w.TrackID, w.Container, w.Element, w.ElementID)
	if w.Line > 0 {
		msg += fmt.Sprintf(" (line %d)", w.Line)
	}
	return msg
}

// Map converts the elements of every track into domain objects and applies
// the mileage of the assignment. Unknown elements become unmapped objects.
func Map(tracks []railml.Track, assignment *domain.Assignment) ([]domain.Object, []application.Warning) {
	var (
		objects  []domain.Object
		warnings []application.Warning
	)
	for _, t := range tracks {
		for _, o := range objectsOf(t) {
			if m, ok := assignment.Lookup(o.TrackID, o.ID); ok {
				o.Mileage = m
			}
			if p, ok := o.Payload.(domain.UnmappedPayload); ok {
				warnings = append(warnings, &UnmappedElementWarning{
					TrackID:   o.TrackID,
					ElementID: o.ID,
					Container: p.Container,
					Element:   p.Element.Name,
					Line:      p.Line,
				})
			}
			objects = append(objects, o)
		}
	}
	return objects, warnings
}

// objectsOf maps the elements of one track in a fixed order: cross sections,
// track elements, then OCS elements, unknown elements last in each section
func objectsOf(t railml.Track) []domain.Object {
	var out []domain.Object
	add := func(id string, kind domain.ObjectKind, pos railml.Position, dir railml.Direction, name string, payload domain.Payload) {
		out = append(out, domain.Object{
			ID:         id,
			SourceID:   id,
			Kind:       kind,
			TrackID:    t.ID,
			Positioned: true,
			Pos:        pos.Pos,
			AbsPos:     pos.AbsPos,
			GeoCoord:   convertGeo(pos.GeoCoord),
			Dir:        string(dir),
			Name:       name,
			Payload:    payload,
		})
	}

	for _, c := range t.CrossSections {
		add(c.ID, domain.KindCrossSection, c.Position, "", c.Name, domain.CrossSectionPayload{OCPRef: c.OCPRef, Type: c.Type})
	}

	te := t.Elements
	for _, s := range te.SpeedChanges {
		add(s.ID, domain.KindSpeedChange, s.Position, s.Dir, "", domain.SpeedChangePayload{VMax: s.VMax, Signalised: s.Signalised})
	}
	for _, l := range te.LevelCrossings {
		add(l.ID, domain.KindLevelCrossing, l.Position, "", "", domain.LevelCrossingPayload{Protection: l.Protection, Angle: l.Angle})
	}
	for _, p := range te.PlatformEdges {
		add(p.ID, domain.KindPlatformEdge, p.Position, p.Dir, p.Name, domain.PlatformEdgePayload{Side: p.Side, Height: p.Height, Length: p.Length})
	}
	for _, g := range te.GeoMappings {
		add(g.ID, domain.KindGeoMapping, g.Position, "", g.Name, domain.GeoMappingPayload{Code: g.Code, Description: g.Description})
	}
	for i, r := range te.Raw {
		out = append(out, unmapped(t.ID, sectionTrackElements, i, r))
	}

	ocs := t.OCS
	for _, s := range ocs.Signals {
		add(s.ID, domain.KindSignal, s.Position, s.Dir, s.Name, signalPayload(s))
	}
	for _, d := range ocs.TrainDetectors {
		add(d.ID, domain.KindTrainDetector, d.Position, "", "", domain.TrainDetectorPayload{
			AxleCounting:       d.AxleCounting,
			DirectionDetection: d.DirectionDetection,
			Medium:             d.Medium,
		})
	}
	for _, b := range ocs.TrackCircuitBorders {
		add(b.ID, domain.KindTrackCircuitBorder, b.Position, "", "", domain.TrackCircuitBorderPayload{InsulatedRail: b.InsulatedRail})
	}
	for _, b := range ocs.Balises {
		add(b.ID, domain.KindBalise, b.Position, "", b.Name, domain.BalisePayload{})
	}
	for _, p := range ocs.TrainProtectionElements {
		add(p.ID, domain.KindTrainProtectionElement, p.Position, p.Dir, "", domain.TrainProtectionPayload{Medium: p.Medium, System: p.System})
	}
	for _, g := range ocs.TrainProtectionElementGroups {
		out = append(out, domain.Object{
			ID:       g.ID,
			SourceID: g.ID,
			Kind:     domain.KindTrainProtectionGroup,
			TrackID:  t.ID,
			Payload:  domain.TrainProtectionGroupPayload{ElementRefs: append([]string(nil), g.ElementRefs...)},
		})
	}
	for _, d := range ocs.Derailers {
		add(d.ID, domain.KindDerailer, d.Position, d.Dir, "", domain.DerailerPayload{DerailSide: d.DerailSide, Code: d.Code})
	}
	for i, r := range ocs.Raw {
		out = append(out, unmapped(t.ID, sectionOCSElements, i, r))
	}
	return out
}

func signalPayload(s railml.Signal) domain.SignalPayload {
	p := domain.SignalPayload{
		Type:          string(s.Type),
		Function:      string(s.Function),
		Code:          s.Code,
		Sight:         s.Sight,
		Switchable:    s.Switchable,
		OCPStationRef: s.OCPStationRef,
	}
	for _, sp := range s.Speeds {
		p.Speeds = append(p.Speeds, domain.SignalSpeed{
			Kind:           sp.Kind,
			TrainRelation:  sp.TrainRelation,
			Switchable:     sp.Switchable,
			SpeedChangeRef: sp.SpeedChangeRef,
		})
	}
	if s.ETCS != nil {
		p.ETCS = &domain.ETCSLevels{Level1: s.ETCS.Level1, Level2: s.ETCS.Level2, Level3: s.ETCS.Level3}
	}
	return p
}

// unmapped keeps an unknown element verbatim; its position is taken from pos/absPos when they parse
func unmapped(trackID, section string, index int, r railml.RawElement) domain.Object {
	id, ok := r.Attr("id")
	if !ok || id == "" {
		id = fmt.Sprintf("%s.%s.%s%d", trackID, section, r.Name, index)
	}
	o := domain.Object{
		ID:       id,
		SourceID: id,
		Kind:     domain.KindUnmapped,
		TrackID:  trackID,
		Payload: domain.UnmappedPayload{
			Section:   section,
			Container: r.Container,
			Element:   rawNode(r),
			Line:      r.Line,
		},
	}
	if v, ok := r.Attr("name"); ok {
		o.Name = v
	}
	if v, ok := r.Attr("dir"); ok {
		o.Dir = v
	}
	if v, ok := r.Attr("pos"); ok {
		if pos, err := strconv.ParseFloat(v, 64); err == nil {
			o.Positioned = true
			o.Pos = pos
		}
	}
	if v, ok := r.Attr("absPos"); ok {
		if abs, err := strconv.ParseFloat(v, 64); err == nil {
			o.AbsPos = &abs
		}
	}
	return o
}

func rawNode(r railml.RawElement) domain.RawNode {
	n := domain.RawNode{Name: r.Name, Text: r.Text}
	for _, a := range r.Attrs {
		n.Attrs = append(n.Attrs, domain.RawAttr{Name: a.Name, Value: a.Value})
	}
	for _, c := range r.Children {
		n.Children = append(n.Children, rawNode(c))
	}
	return n
}
