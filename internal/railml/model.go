// Package railml holds the version-tolerant railML 2.x schema model together
// with its parser and writer.
package railml

// Document is one parsed railML file
type Document struct {
	Version        Version
	Namespace      string
	Metadata       *Metadata
	Infrastructure *Infrastructure
	Rollingstock   *Rollingstock

	// Diagnostics lists elements that were skipped or kept opaque
	Diagnostics []Diagnostic
}

// Metadata carries the Dublin Core header of a document
type Metadata struct {
	Title               string
	Creator             string
	Source              string
	Identifier          string
	Format              string
	Language            string
	Description         string
	Rights              string
	OrganizationalUnits []OrganizationalUnit
}

// OrganizationalUnit is an infrastructure manager declared in the metadata
type OrganizationalUnit struct {
	ID      string
	Code    string
	Name    string
	Contact string
}

// Infrastructure is the infrastructure subtree of a document
type Infrastructure struct {
	ID          string
	Name        string
	Tracks      []Track
	TrackGroups []Line
	OCPs        []OCP
	States      []State
}

// Line is a trackGroups/line entry
type Line struct {
	ID                       string
	Code                     string
	Name                     string
	InfrastructureManagerRef string
	LineCategory             string
	Type                     string
	TrackRefs                []TrackRef
	AdditionalNames          []AdditionalName
}

// TrackRef points from a line or OCP to a track
type TrackRef struct {
	Ref      string
	Sequence *int
}

// AdditionalName is a localized alternative name
type AdditionalName struct {
	Name string
	Lang string
	Type string
}

// OCP is an operational control point
type OCP struct {
	ID              string
	Name            string
	Lang            string
	Type            string
	GeoCoord        *GeoCoord
	AdditionalNames []AdditionalName
	PropOperational *PropOperational
	PropService     *PropService
	PropEquipment   *PropEquipment
	Designator      *Designator
}

// GeoCoord is a coordinate string with its reference system
type GeoCoord struct {
	Coord    string
	EPSGCode string
}

type PropOperational struct {
	EnsuresTrainSequence *bool
	OrderChangeable      *bool
	OperationalType      string
	TrafficType          string
}

type PropService struct {
	Passenger   *bool
	Service     *bool
	GoodsSiding *bool
}

type PropEquipment struct {
	Summary   *EquipmentSummary
	TrackRefs []string
}

type EquipmentSummary struct {
	HasHomeSignals    *bool
	HasStarterSignals *bool
	HasSwitches       *bool
	SignalBox         string
}

// Designator is an entry in an external register
type Designator struct {
	Register string
	Entry    string
}

// State is an infrastructure state entry
type State struct {
	ID       string
	Disabled *bool
	Status   string
}

// Track is a railML track with its topology and elements
type Track struct {
	ID          string
	Code        string
	Name        string
	Description string
	Type        string
	MainDir     string

	Begin         TrackNode
	End           TrackNode
	Junctions     []Junction
	CrossSections []CrossSection

	Elements TrackElements
	OCS      OCSElements
}

// TrackNode is a trackBegin or trackEnd
type TrackNode struct {
	ID       string
	Position Position
	Conn     EndConnection
}

// EndKind is the kind of termination or link at a track end
type EndKind int

const (
	EndKindUnknown EndKind = iota
	EndKindConnection
	EndKindBufferStop
	EndKindOpenEnd
	EndKindMacroscopicNode
)

func (k EndKind) String() string {
	switch k {
	case EndKindConnection:
		return "connection"
	case EndKindBufferStop:
		return "bufferStop"
	case EndKindOpenEnd:
		return "openEnd"
	case EndKindMacroscopicNode:
		return "macroscopicNode"
	default:
		return "unknown"
	}
}

// EndConnection describes what is attached to a track end
type EndConnection struct {
	Kind EndKind

	// set for EndKindConnection
	ID  string
	Ref string

	// set for EndKindMacroscopicNode
	MacroID   string
	MacroName string
	OCPRef    string

	// element id of bufferStop/openEnd when present
	ElementID string
}

// JunctionKind distinguishes switches from crossings
type JunctionKind int

const (
	JunctionSwitch JunctionKind = iota
	JunctionCrossing
)

func (k JunctionKind) String() string {
	if k == JunctionCrossing {
		return "crossing"
	}
	return "switch"
}

// Junction is a switch or crossing placed on a track
type Junction struct {
	Kind                JunctionKind
	ID                  string
	Position            Position
	Name                string
	Description         string
	Length              *float64
	TrackContinueCourse Course
	TrackContinueRadius *float64
	NormalPosition      Course
	Connections         []SwitchConnection
}

// Course is the geometric course of a switch branch
type Course string

const (
	CourseNone     Course = ""
	CourseStraight Course = "straight"
	CourseLeft     Course = "left"
	CourseRight    Course = "right"
)

// Opposite returns the mirrored course; straight has none
func (c Course) Opposite() Course {
	switch c {
	case CourseLeft:
		return CourseRight
	case CourseRight:
		return CourseLeft
	default:
		return CourseNone
	}
}

// Orientation is the declared direction of a switch connection
type Orientation string

const (
	OrientationIncoming    Orientation = "incoming"
	OrientationOutgoing    Orientation = "outgoing"
	OrientationRightAngled Orientation = "rightAngled"
	OrientationUnknown     Orientation = "unknown"
	OrientationOther       Orientation = "other"
)

// SwitchConnection is a connection declared inside a switch or crossing
type SwitchConnection struct {
	ID          string
	Ref         string
	Orientation Orientation
	Course      Course
	Radius      *float64
	MaxSpeed    *float64
	Passable    *bool
}

// Position locates an element on its track
type Position struct {
	Pos      float64
	AbsPos   *float64
	GeoCoord *GeoCoord
}

// Rollingstock holds vehicle definitions
type Rollingstock struct {
	Vehicles []Vehicle
}

type Vehicle struct {
	ID          string
	Name        string
	Description string
	Length      *float64
	Speed       *float64
}
