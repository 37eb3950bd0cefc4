// Package export rebuilds a railML document from a railway model so it can
// be written at any supported version.
package export

import (
	"strconv"

	"railio/internal/domain"
	"railio/internal/railml"
)

// Document converts model back into a railML document for version.
// Every construct that cannot be written is reported as *railml.ExportInconsistencyError.
func Document(model *domain.RailwayModel, version railml.Version) (*railml.Document, error) {
	if model == nil {
		return nil, &railml.ExportInconsistencyError{Construct: "model", Reason: "nothing to export"}
	}

	doc := &railml.Document{Version: version, Namespace: version.Namespace()}
	if model.Metadata != nil {
		doc.Metadata = metadata(model.Metadata)
	}

	if hasInfrastructure(model) {
		inf := &railml.Infrastructure{ID: model.InfrastructureID, Name: model.InfrastructureName}
		index := make(map[string]int, len(model.Tracks))
		for _, t := range model.Tracks {
			index[t.ID] = len(inf.Tracks)
			inf.Tracks = append(inf.Tracks, track(t))
		}
		for _, o := range model.Objects {
			i, ok := index[o.TrackID]
			if !ok {
				return nil, &railml.ExportInconsistencyError{Construct: string(o.Kind), ID: o.ID, Reason: "references unknown track " + o.TrackID}
			}
			if err := place(&inf.Tracks[i], o); err != nil {
				return nil, err
			}
		}
		for _, l := range model.Lines {
			inf.TrackGroups = append(inf.TrackGroups, line(l))
		}
		for _, o := range model.OCPs {
			inf.OCPs = append(inf.OCPs, ocp(o))
		}
		for _, s := range model.States {
			inf.States = append(inf.States, railml.State{ID: s.ID, Disabled: s.Disabled, Status: s.Status})
		}
		doc.Infrastructure = inf
	}

	if len(model.Vehicles) > 0 {
		rs := &railml.Rollingstock{}
		for _, v := range model.Vehicles {
			rs.Vehicles = append(rs.Vehicles, railml.Vehicle{
				ID:          v.ID,
				Name:        v.Name,
				Description: v.Description,
				Length:      v.Length,
				Speed:       v.Speed,
			})
		}
		doc.Rollingstock = rs
	}

	if err := railml.CheckExportable(doc, version); err != nil {
		return nil, err
	}
	return doc, nil
}

func hasInfrastructure(m *domain.RailwayModel) bool {
	return m.InfrastructureID != "" || m.InfrastructureName != "" ||
		len(m.Tracks)+len(m.OCPs)+len(m.Lines)+len(m.States) > 0
}

func metadata(md *domain.Metadata) *railml.Metadata {
	out := &railml.Metadata{
		Title:       md.Title,
		Creator:     md.Creator,
		Source:      md.Source,
		Identifier:  md.Identifier,
		Format:      md.Format,
		Language:    md.Language,
		Description: md.Description,
		Rights:      md.Rights,
	}
	for _, m := range md.Managers {
		out.OrganizationalUnits = append(out.OrganizationalUnits, railml.OrganizationalUnit{
			ID:      m.ID,
			Code:    m.Code,
			Name:    m.Name,
			Contact: m.Contact,
		})
	}
	return out
}

func geo(g *domain.GeoCoord) *railml.GeoCoord {
	if g == nil {
		return nil
	}
	return &railml.GeoCoord{Coord: g.Coord, EPSGCode: g.EPSG}
}

func position(o domain.Object) railml.Position {
	return railml.Position{Pos: o.Pos, AbsPos: o.AbsPos, GeoCoord: geo(o.GeoCoord)}
}

func track(t domain.Track) railml.Track {
	out := railml.Track{
		ID:          t.ID,
		Code:        t.Code,
		Name:        t.Name,
		Description: t.Description,
		Type:        t.Type,
		MainDir:     t.MainDir,
		Begin:       trackNode(t.Begin),
		End:         trackNode(t.End),
	}
	for _, j := range t.Junctions {
		rj := railml.Junction{
			Kind:                railml.JunctionSwitch,
			ID:                  j.ID,
			Position:            railml.Position{Pos: j.Pos, AbsPos: j.AbsPos, GeoCoord: geo(j.GeoCoord)},
			Name:                j.Name,
			Description:         j.Description,
			Length:              j.Length,
			TrackContinueCourse: railml.Course(j.ContinueCourse),
			TrackContinueRadius: j.ContinueRadius,
			NormalPosition:      railml.Course(j.NormalPosition),
		}
		if j.Kind == domain.JunctionCrossing {
			rj.Kind = railml.JunctionCrossing
		}
		for _, c := range j.Connections {
			rj.Connections = append(rj.Connections, railml.SwitchConnection{
				ID:          c.ID,
				Ref:         c.Ref,
				Orientation: railml.Orientation(c.Orientation),
				Course:      railml.Course(c.Course),
				Radius:      c.Radius,
				MaxSpeed:    c.MaxSpeed,
				Passable:    c.Passable,
			})
		}
		out.Junctions = append(out.Junctions, rj)
	}
	return out
}

func trackNode(e domain.TrackEnd) railml.TrackNode {
	n := railml.TrackNode{
		ID:       e.ID,
		Position: railml.Position{Pos: e.Pos, AbsPos: e.AbsPos, GeoCoord: geo(e.GeoCoord)},
		Conn:     railml.EndConnection{ElementID: e.ElementID},
	}
	switch e.Kind {
	case domain.EndConnection:
		n.Conn.Kind = railml.EndKindConnection
		n.Conn.ID = e.ConnectionID
		n.Conn.Ref = e.Ref
	case domain.EndBufferStop:
		n.Conn.Kind = railml.EndKindBufferStop
	case domain.EndOpenEnd:
		n.Conn.Kind = railml.EndKindOpenEnd
	case domain.EndMacroscopic:
		n.Conn.Kind = railml.EndKindMacroscopicNode
		n.Conn.MacroID = e.MacroID
		n.Conn.MacroName = e.MacroName
		n.Conn.OCPRef = e.OCPRef
	}
	return n
}

// place appends the element an object was mapped from to its track
func place(t *railml.Track, o domain.Object) error {
	pos := position(o)
	dir := railml.Direction(o.Dir)
	te, ocs := &t.Elements, &t.OCS

	switch p := o.Payload.(type) {
	case domain.CrossSectionPayload:
		t.CrossSections = append(t.CrossSections, railml.CrossSection{ID: o.ID, Name: o.Name, OCPRef: p.OCPRef, Position: pos, Type: p.Type})
	case domain.SpeedChangePayload:
		te.SpeedChanges = append(te.SpeedChanges, railml.SpeedChange{ID: o.ID, Position: pos, Dir: dir, VMax: p.VMax, Signalised: p.Signalised})
	case domain.LevelCrossingPayload:
		te.LevelCrossings = append(te.LevelCrossings, railml.LevelCrossing{ID: o.ID, Position: pos, Protection: p.Protection, Angle: p.Angle})
	case domain.PlatformEdgePayload:
		te.PlatformEdges = append(te.PlatformEdges, railml.PlatformEdge{
			ID:       o.ID,
			Name:     o.Name,
			Position: pos,
			Dir:      dir,
			Side:     p.Side,
			Height:   p.Height,
			Length:   p.Length,
		})
	case domain.GeoMappingPayload:
		te.GeoMappings = append(te.GeoMappings, railml.GeoMapping{ID: o.ID, Position: pos, Name: o.Name, Code: p.Code, Description: p.Description})
	case domain.SignalPayload:
		ocs.Signals = append(ocs.Signals, signal(o, p))
	case domain.TrainDetectorPayload:
		ocs.TrainDetectors = append(ocs.TrainDetectors, railml.TrainDetector{
			ID:                 o.ID,
			Position:           pos,
			AxleCounting:       p.AxleCounting,
			DirectionDetection: p.DirectionDetection,
			Medium:             p.Medium,
		})
	case domain.TrackCircuitBorderPayload:
		ocs.TrackCircuitBorders = append(ocs.TrackCircuitBorders, railml.TrackCircuitBorder{ID: o.ID, Position: pos, InsulatedRail: p.InsulatedRail})
	case domain.BalisePayload:
		ocs.Balises = append(ocs.Balises, railml.Balise{ID: o.ID, Position: pos, Name: o.Name})
	case domain.TrainProtectionPayload:
		ocs.TrainProtectionElements = append(ocs.TrainProtectionElements, railml.TrainProtectionElement{
			ID:       o.ID,
			Position: pos,
			Dir:      dir,
			Medium:   p.Medium,
			System:   p.System,
		})
	case domain.TrainProtectionGroupPayload:
		ocs.TrainProtectionElementGroups = append(ocs.TrainProtectionElementGroups, railml.TrainProtectionElementGroup{
			ID:          o.ID,
			ElementRefs: append([]string(nil), p.ElementRefs...),
		})
	case domain.DerailerPayload:
		ocs.Derailers = append(ocs.Derailers, railml.Derailer{ID: o.ID, Position: pos, Dir: dir, DerailSide: p.DerailSide, Code: p.Code})
	case domain.UnmappedPayload:
		if p.Element.Name == "" || p.Container == "" {
			return &railml.ExportInconsistencyError{Construct: "unmapped object", ID: o.ID, Reason: "original element or container name unknown"}
		}
		raw := rawElement(p.Element, p.Container)
		raw.Line = p.Line
		syncPosition(&raw, o)
		if p.Section == "ocsElements" {
			ocs.Raw = append(ocs.Raw, raw)
		} else {
			te.Raw = append(te.Raw, raw)
		}
	default:
		return &railml.ExportInconsistencyError{Construct: string(o.Kind), ID: o.ID, Reason: "no element mapping for this object"}
	}
	return nil
}

func signal(o domain.Object, p domain.SignalPayload) railml.Signal {
	s := railml.Signal{
		ID:            o.ID,
		Position:      position(o),
		Name:          o.Name,
		Dir:           railml.Direction(o.Dir),
		Sight:         p.Sight,
		Type:          railml.SignalType(p.Type),
		Function:      railml.SignalFunction(p.Function),
		Code:          p.Code,
		Switchable:    p.Switchable,
		OCPStationRef: p.OCPStationRef,
	}
	for _, sp := range p.Speeds {
		s.Speeds = append(s.Speeds, railml.SignalSpeed{
			Kind:           sp.Kind,
			TrainRelation:  sp.TrainRelation,
			Switchable:     sp.Switchable,
			SpeedChangeRef: sp.SpeedChangeRef,
		})
	}
	if p.ETCS != nil {
		s.ETCS = &railml.ETCS{Level1: p.ETCS.Level1, Level2: p.ETCS.Level2, Level3: p.ETCS.Level3}
	}
	return s
}

func rawElement(n domain.RawNode, container string) railml.RawElement {
	r := railml.RawElement{Container: container, Name: n.Name, Text: n.Text}
	for _, a := range n.Attrs {
		r.Attrs = append(r.Attrs, railml.Attr{Name: a.Name, Value: a.Value})
	}
	for _, c := range n.Children {
		r.Children = append(r.Children, rawElement(c, ""))
	}
	return r
}

// syncPosition rewrites the pos attribute of a moved unmapped object, leaving untouched values verbatim
func syncPosition(r *railml.RawElement, o domain.Object) {
	if !o.Positioned {
		return
	}
	for i, a := range r.Attrs {
		if a.Name != "pos" {
			continue
		}
		if v, err := strconv.ParseFloat(a.Value, 64); err != nil || v != o.Pos {
			r.Attrs[i].Value = railml.FormatFloat(o.Pos)
		}
		return
	}
}

func names(in []domain.AdditionalName) []railml.AdditionalName {
	var out []railml.AdditionalName
	for _, n := range in {
		out = append(out, railml.AdditionalName{Name: n.Name, Lang: n.Lang, Type: n.Type})
	}
	return out
}

func line(l domain.Line) railml.Line {
	out := railml.Line{
		ID:                       l.ID,
		Code:                     l.Code,
		Name:                     l.Name,
		InfrastructureManagerRef: l.InfrastructureManagerRef,
		LineCategory:             l.LineCategory,
		Type:                     l.Type,
		AdditionalNames:          names(l.AdditionalNames),
	}
	for _, r := range l.TrackRefs {
		out.TrackRefs = append(out.TrackRefs, railml.TrackRef{Ref: r.Ref, Sequence: r.Sequence})
	}
	return out
}

func ocp(o domain.OCP) railml.OCP {
	out := railml.OCP{
		ID:              o.ID,
		Name:            o.Name,
		Lang:            o.Lang,
		Type:            o.Type,
		GeoCoord:        geo(o.GeoCoord),
		AdditionalNames: names(o.AdditionalNames),
	}
	if p := o.Operational; p != nil {
		out.PropOperational = &railml.PropOperational{
			EnsuresTrainSequence: p.EnsuresTrainSequence,
			OrderChangeable:      p.OrderChangeable,
			OperationalType:      p.OperationalType,
			TrafficType:          p.TrafficType,
		}
	}
	if p := o.Service; p != nil {
		out.PropService = &railml.PropService{Passenger: p.Passenger, Service: p.Service, GoodsSiding: p.GoodsSiding}
	}
	if p := o.Equipment; p != nil {
		eq := &railml.PropEquipment{TrackRefs: append([]string(nil), p.TrackRefs...)}
		if p.HasSummary {
			eq.Summary = &railml.EquipmentSummary{
				HasHomeSignals:    p.HasHomeSignals,
				HasStarterSignals: p.HasStarterSignals,
				HasSwitches:       p.HasSwitches,
				SignalBox:         p.SignalBox,
			}
		}
		out.PropEquipment = eq
	}
	if o.Register != "" || o.RegisterEntry != "" {
		out.Designator = &railml.Designator{Register: o.Register, Entry: o.RegisterEntry}
	}
	return out
}
