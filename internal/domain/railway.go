package domain

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
)

// RailwayModel is the aggregate root built by one import.
// Graph and Mileage are derived from Tracks and are invalidated together.
type RailwayModel struct {
	Source  string
	Version string

	InfrastructureID   string
	InfrastructureName string

	Metadata *Metadata
	Tracks   []Track
	Objects  []Object
	OCPs     []OCP
	Lines    []Line
	States   []State
	Vehicles []Vehicle

	Graph   *Graph
	Mileage *Assignment
}

// Invalidate drops the derived topology and mileage caches
func (m *RailwayModel) Invalidate() {
	m.Graph = nil
	m.Mileage = nil
}

// Track returns the track with the given id
func (m *RailwayModel) Track(id string) (*Track, bool) {
	for i := range m.Tracks {
		if m.Tracks[i].ID == id {
			return &m.Tracks[i], true
		}
	}
	return nil, false
}

// ObjectsOnTrack returns the objects anchored on a track, ordered by position
func (m *RailwayModel) ObjectsOnTrack(trackID string) []Object {
	var out []Object
	for _, o := range m.Objects {
		if o.TrackID == trackID {
			out = append(out, o)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Pos < out[j].Pos
	})
	return out
}

// CountByKind counts objects per kind
func (m *RailwayModel) CountByKind() map[ObjectKind]int {
	counts := make(map[ObjectKind]int)
	for _, o := range m.Objects {
		counts[o.Kind]++
	}
	return counts
}

// Metadata is the descriptive header of the source file
type Metadata struct {
	Title       string
	Creator     string
	Source      string
	Identifier  string
	Format      string
	Language    string
	Description string
	Rights      string
	Managers    []Manager
}

// Manager is an infrastructure manager
type Manager struct {
	ID      string
	Code    string
	Name    string
	Contact string
}

// EndKind is how a track end is terminated or linked
type EndKind string

const (
	EndUnknownKind EndKind = ""
	EndConnection  EndKind = "connection"
	EndBufferStop  EndKind = "bufferStop"
	EndOpenEnd     EndKind = "openEnd"
	EndMacroscopic EndKind = "macroscopicNode"
)

// EndSide names which end of a track is meant
type EndSide string

const (
	SideBegin EndSide = "begin"
	SideEnd   EndSide = "end"
)

// GeoCoord is a coordinate as written in the source, with its reference system
type GeoCoord struct {
	Coord string
	EPSG  string
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Point parses the first two finite numbers of the coordinate
func (g *GeoCoord) Point() (orb.Point, bool) {
	if g == nil {
		return orb.Point{}, false
	}
	fields := strings.FieldsFunc(g.Coord, func(r rune) bool {
		return r == ' ' || r == ',' || r == ';' || r == '\t'
	})
	if len(fields) < 2 {
		return orb.Point{}, false
	}
	x, errX := strconv.ParseFloat(fields[0], 64)
	y, errY := strconv.ParseFloat(fields[1], 64)
	if errX != nil || errY != nil || !finite(x) || !finite(y) {
		return orb.Point{}, false
	}
	return orb.Point{x, y}, true
}

// Track is a physical track with its ends and junctions
type Track struct {
	ID          string
	Code        string
	Name        string
	Description string
	Type        string
	MainDir     string

	Begin     TrackEnd
	End       TrackEnd
	Junctions []Junction

	// Points lists every position of interest on the track in declared order
	Points []TrackPoint
}

// TrackPoint is a located element on a track as read from the source
type TrackPoint struct {
	ElementID string
	Kind      string
	Pos       float64
	AbsPos    *float64
}

// HasAbsolute reports whether any end, junction or element carries an absolute position
func (t Track) HasAbsolute() bool {
	if t.Begin.AbsPos != nil || t.End.AbsPos != nil {
		return true
	}
	for _, p := range t.Points {
		if p.AbsPos != nil {
			return true
		}
	}
	return false
}

// Length is the track-local distance between the two ends
func (t Track) Length() float64 {
	return t.End.Pos - t.Begin.Pos
}

// SortedJunctions returns the junctions ordered by position, keeping declared order for ties
func (t Track) SortedJunctions() []Junction {
	js := append([]Junction(nil), t.Junctions...)
	sort.SliceStable(js, func(i, j int) bool {
		return js[i].Pos < js[j].Pos
	})
	return js
}

// TrackEnd is the begin or end of a track
type TrackEnd struct {
	ID       string
	Pos      float64
	AbsPos   *float64
	GeoCoord *GeoCoord

	Kind         EndKind
	ConnectionID string
	Ref          string
	ElementID    string
	MacroID      string
	MacroName    string
	OCPRef       string
}

// JunctionKind distinguishes switches from crossings
type JunctionKind string

const (
	JunctionSwitch   JunctionKind = "switch"
	JunctionCrossing JunctionKind = "crossing"
)

// Junction is a switch or crossing located on its host track
type Junction struct {
	ID          string
	Kind        JunctionKind
	Name        string
	Description string
	Pos         float64
	AbsPos      *float64
	GeoCoord    *GeoCoord
	Length      *float64

	ContinueCourse string
	ContinueRadius *float64
	NormalPosition string

	Connections []JunctionConnection
}

// JunctionConnection is one branch declared by a junction
type JunctionConnection struct {
	ID          string
	Ref         string
	Orientation string
	Course      string
	Radius      *float64
	MaxSpeed    *float64
	Passable    *bool
}

// OCP is an operational control point
type OCP struct {
	ID              string
	Name            string
	Lang            string
	Type            string
	GeoCoord        *GeoCoord
	AdditionalNames []AdditionalName
	Operational     *OCPOperational
	Service         *OCPService
	Equipment       *OCPEquipment
	Register        string
	RegisterEntry   string
}

type AdditionalName struct {
	Name string
	Lang string
	Type string
}

type OCPOperational struct {
	EnsuresTrainSequence *bool
	OrderChangeable      *bool
	OperationalType      string
	TrafficType          string
}

type OCPService struct {
	Passenger   *bool
	Service     *bool
	GoodsSiding *bool
}

type OCPEquipment struct {
	HasSummary        bool
	HasHomeSignals    *bool
	HasStarterSignals *bool
	HasSwitches       *bool
	SignalBox         string
	TrackRefs         []string
}

// Line groups tracks into an operational line
type Line struct {
	ID                       string
	Code                     string
	Name                     string
	InfrastructureManagerRef string
	LineCategory             string
	Type                     string
	TrackRefs                []LineTrackRef
	AdditionalNames          []AdditionalName
}

type LineTrackRef struct {
	Ref      string
	Sequence *int
}

type State struct {
	ID       string
	Disabled *bool
	Status   string
}

type Vehicle struct {
	ID          string
	Name        string
	Description string
	Length      *float64
	Speed       *float64
}
