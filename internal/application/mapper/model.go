// Package mapper turns a parsed railML document into the railway model:
// tracks with their topology declarations, organisational records and
// typed domain objects.
package mapper

import (
	"railio/internal/domain"
	"railio/internal/railml"
)

// BuildModel converts everything but the objects of a document into a railway model
func BuildModel(doc *railml.Document, source string) *domain.RailwayModel {
	m := &domain.RailwayModel{
		Source:  source,
		Version: doc.Version.String(),
	}
	if doc.Metadata != nil {
		m.Metadata = convertMetadata(doc.Metadata)
	}
	if inf := doc.Infrastructure; inf != nil {
		m.InfrastructureID = inf.ID
		m.InfrastructureName = inf.Name
		for _, t := range inf.Tracks {
			m.Tracks = append(m.Tracks, convertTrack(t))
		}
		for _, o := range inf.OCPs {
			m.OCPs = append(m.OCPs, convertOCP(o))
		}
		for _, l := range inf.TrackGroups {
			m.Lines = append(m.Lines, convertLine(l))
		}
		for _, s := range inf.States {
			m.States = append(m.States, domain.State{ID: s.ID, Disabled: s.Disabled, Status: s.Status})
		}
	}
	if doc.Rollingstock != nil {
		for _, v := range doc.Rollingstock.Vehicles {
			m.Vehicles = append(m.Vehicles, domain.Vehicle{
				ID:          v.ID,
				Name:        v.Name,
				Description: v.Description,
				Length:      v.Length,
				Speed:       v.Speed,
			})
		}
	}
	return m
}

// Tracks returns the tracks of a document, empty when it has no infrastructure
func Tracks(doc *railml.Document) []railml.Track {
	if doc == nil || doc.Infrastructure == nil {
		return nil
	}
	return doc.Infrastructure.Tracks
}

func convertMetadata(md *railml.Metadata) *domain.Metadata {
	out := &domain.Metadata{
		Title:       md.Title,
		Creator:     md.Creator,
		Source:      md.Source,
		Identifier:  md.Identifier,
		Format:      md.Format,
		Language:    md.Language,
		Description: md.Description,
		Rights:      md.Rights,
	}
	for _, u := range md.OrganizationalUnits {
		out.Managers = append(out.Managers, domain.Manager{ID: u.ID, Code: u.Code, Name: u.Name, Contact: u.Contact})
	}
	return out
}

func convertGeo(g *railml.GeoCoord) *domain.GeoCoord {
	if g == nil {
		return nil
	}
	return &domain.GeoCoord{Coord: g.Coord, EPSG: g.EPSGCode}
}

func convertTrack(t railml.Track) domain.Track {
	out := domain.Track{
		ID:          t.ID,
		Code:        t.Code,
		Name:        t.Name,
		Description: t.Description,
		Type:        t.Type,
		MainDir:     t.MainDir,
		Begin:       convertEnd(t.Begin),
		End:         convertEnd(t.End),
	}
	for _, j := range t.Junctions {
		dj := domain.Junction{
			ID:             j.ID,
			Kind:           domain.JunctionSwitch,
			Name:           j.Name,
			Description:    j.Description,
			Pos:            j.Position.Pos,
			AbsPos:         j.Position.AbsPos,
			GeoCoord:       convertGeo(j.Position.GeoCoord),
			Length:         j.Length,
			ContinueCourse: string(j.TrackContinueCourse),
			ContinueRadius: j.TrackContinueRadius,
			NormalPosition: string(j.NormalPosition),
		}
		if j.Kind == railml.JunctionCrossing {
			dj.Kind = domain.JunctionCrossing
		}
		for _, c := range j.Connections {
			dj.Connections = append(dj.Connections, domain.JunctionConnection{
				ID:          c.ID,
				Ref:         c.Ref,
				Orientation: string(c.Orientation),
				Course:      string(c.Course),
				Radius:      c.Radius,
				MaxSpeed:    c.MaxSpeed,
				Passable:    c.Passable,
			})
		}
		out.Junctions = append(out.Junctions, dj)
		out.Points = append(out.Points, domain.TrackPoint{
			ElementID: j.ID,
			Kind:      string(dj.Kind),
			Pos:       j.Position.Pos,
			AbsPos:    j.Position.AbsPos,
		})
	}
	for _, o := range objectsOf(t) {
		if !o.Positioned {
			continue
		}
		out.Points = append(out.Points, domain.TrackPoint{
			ElementID: o.ID,
			Kind:      string(o.Kind),
			Pos:       o.Pos,
			AbsPos:    o.AbsPos,
		})
	}
	return out
}

func convertEnd(n railml.TrackNode) domain.TrackEnd {
	end := domain.TrackEnd{
		ID:        n.ID,
		Pos:       n.Position.Pos,
		AbsPos:    n.Position.AbsPos,
		GeoCoord:  convertGeo(n.Position.GeoCoord),
		ElementID: n.Conn.ElementID,
	}
	switch n.Conn.Kind {
	case railml.EndKindConnection:
		end.Kind = domain.EndConnection
		end.ConnectionID = n.Conn.ID
		end.Ref = n.Conn.Ref
	case railml.EndKindBufferStop:
		end.Kind = domain.EndBufferStop
	case railml.EndKindOpenEnd:
		end.Kind = domain.EndOpenEnd
	case railml.EndKindMacroscopicNode:
		end.Kind = domain.EndMacroscopic
		end.MacroID = n.Conn.MacroID
		end.MacroName = n.Conn.MacroName
		end.OCPRef = n.Conn.OCPRef
	}
	return end
}

func convertNames(names []railml.AdditionalName) []domain.AdditionalName {
	var out []domain.AdditionalName
	for _, n := range names {
		out = append(out, domain.AdditionalName{Name: n.Name, Lang: n.Lang, Type: n.Type})
	}
	return out
}

func convertOCP(o railml.OCP) domain.OCP {
	out := domain.OCP{
		ID:              o.ID,
		Name:            o.Name,
		Lang:            o.Lang,
		Type:            o.Type,
		GeoCoord:        convertGeo(o.GeoCoord),
		AdditionalNames: convertNames(o.AdditionalNames),
	}
	if p := o.PropOperational; p != nil {
		out.Operational = &domain.OCPOperational{
			EnsuresTrainSequence: p.EnsuresTrainSequence,
			OrderChangeable:      p.OrderChangeable,
			OperationalType:      p.OperationalType,
			TrafficType:          p.TrafficType,
		}
	}
	if p := o.PropService; p != nil {
		out.Service = &domain.OCPService{Passenger: p.Passenger, Service: p.Service, GoodsSiding: p.GoodsSiding}
	}
	if p := o.PropEquipment; p != nil {
		eq := &domain.OCPEquipment{TrackRefs: append([]string(nil), p.TrackRefs...)}
		if s := p.Summary; s != nil {
			eq.HasSummary = true
			eq.HasHomeSignals = s.HasHomeSignals
			eq.HasStarterSignals = s.HasStarterSignals
			eq.HasSwitches = s.HasSwitches
			eq.SignalBox = s.SignalBox
		}
		out.Equipment = eq
	}
	if d := o.Designator; d != nil {
		out.Register = d.Register
		out.RegisterEntry = d.Entry
	}
	return out
}

func convertLine(l railml.Line) domain.Line {
	out := domain.Line{
		ID:                       l.ID,
		Code:                     l.Code,
		Name:                     l.Name,
		InfrastructureManagerRef: l.InfrastructureManagerRef,
		LineCategory:             l.LineCategory,
		Type:                     l.Type,
		AdditionalNames:          convertNames(l.AdditionalNames),
	}
	for _, r := range l.TrackRefs {
		out.TrackRefs = append(out.TrackRefs, domain.LineTrackRef{Ref: r.Ref, Sequence: r.Sequence})
	}
	return out
}
