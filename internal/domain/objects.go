package domain

// ObjectKind tags the type of a domain object
type ObjectKind string

const (
	KindSignal                 ObjectKind = "signal"
	KindBalise                 ObjectKind = "balise"
	KindTrainDetector          ObjectKind = "trainDetector"
	KindTrackCircuitBorder     ObjectKind = "trackCircuitBorder"
	KindDerailer               ObjectKind = "derailer"
	KindTrainProtectionElement ObjectKind = "trainProtectionElement"
	KindTrainProtectionGroup   ObjectKind = "trainProtectionElementGroup"
	KindPlatformEdge           ObjectKind = "platformEdge"
	KindSpeedChange            ObjectKind = "speedChange"
	KindLevelCrossing          ObjectKind = "levelCrossing"
	KindCrossSection           ObjectKind = "crossSection"
	KindGeoMapping             ObjectKind = "geoMapping"
	KindUnmapped               ObjectKind = "unmapped"
)

// AllKinds lists every object kind in a stable order
var AllKinds = []ObjectKind{
	KindSignal,
	KindBalise,
	KindTrainDetector,
	KindTrackCircuitBorder,
	KindDerailer,
	KindTrainProtectionElement,
	KindTrainProtectionGroup,
	KindPlatformEdge,
	KindSpeedChange,
	KindLevelCrossing,
	KindCrossSection,
	KindGeoMapping,
	KindUnmapped,
}

// Object is a typed, position-anchored element of the railway model.
// SourceID always names the element it was mapped from.
type Object struct {
	ID       string
	SourceID string
	Kind     ObjectKind
	TrackID  string

	// Positioned is false for objects without a location, e.g. element groups
	Positioned bool
	Pos        float64
	AbsPos     *float64
	Mileage    float64
	GeoCoord   *GeoCoord

	Dir  string
	Name string

	Payload Payload
}

// Payload carries the type-specific attributes of an object
type Payload interface {
	Kind() ObjectKind
}

type SignalPayload struct {
	Type          string
	Function      string
	Code          string
	Sight         *float64
	Switchable    *bool
	OCPStationRef string
	Speeds        []SignalSpeed
	ETCS          *ETCSLevels
}

func (SignalPayload) Kind() ObjectKind { return KindSignal }

// IsMain reports whether the signal shows main aspects
func (p SignalPayload) IsMain() bool {
	return p.Type == "" || p.Type == "main" || p.Type == "combined"
}

type SignalSpeed struct {
	Kind           string
	TrainRelation  string
	Switchable     *bool
	SpeedChangeRef string
}

type ETCSLevels struct {
	Level1 *bool
	Level2 *bool
	Level3 *bool
}

type BalisePayload struct{}

func (BalisePayload) Kind() ObjectKind { return KindBalise }

type TrainDetectorPayload struct {
	AxleCounting       *bool
	DirectionDetection *bool
	Medium             string
}

func (TrainDetectorPayload) Kind() ObjectKind { return KindTrainDetector }

type TrackCircuitBorderPayload struct {
	InsulatedRail string
}

func (TrackCircuitBorderPayload) Kind() ObjectKind { return KindTrackCircuitBorder }

type DerailerPayload struct {
	DerailSide string
	Code       string
}

func (DerailerPayload) Kind() ObjectKind { return KindDerailer }

type TrainProtectionPayload struct {
	Medium string
	System string
}

func (TrainProtectionPayload) Kind() ObjectKind { return KindTrainProtectionElement }

type TrainProtectionGroupPayload struct {
	ElementRefs []string
}

func (TrainProtectionGroupPayload) Kind() ObjectKind { return KindTrainProtectionGroup }

type PlatformEdgePayload struct {
	Side   string
	Height *float64
	Length *float64
}

func (PlatformEdgePayload) Kind() ObjectKind { return KindPlatformEdge }

type SpeedChangePayload struct {
	VMax       string
	Signalised *bool
}

func (SpeedChangePayload) Kind() ObjectKind { return KindSpeedChange }

type LevelCrossingPayload struct {
	Protection string
	Angle      *float64
}

func (LevelCrossingPayload) Kind() ObjectKind { return KindLevelCrossing }

type CrossSectionPayload struct {
	OCPRef string
	Type   string
}

func (CrossSectionPayload) Kind() ObjectKind { return KindCrossSection }

type GeoMappingPayload struct {
	Code        string
	Description string
}

func (GeoMappingPayload) Kind() ObjectKind { return KindGeoMapping }

// UnmappedPayload keeps an element the mapper has no rule for, attribute for attribute
type UnmappedPayload struct {
	Section   string // trackElements or ocsElements
	Container string
	Element   RawNode
	// Line is the source line of the element, 0 when unknown
	Line int
}

func (UnmappedPayload) Kind() ObjectKind { return KindUnmapped }

// RawNode is an opaque element subtree
type RawNode struct {
	Name     string
	Attrs    []RawAttr
	Children []RawNode
	Text     string
}

type RawAttr struct {
	Name  string
	Value string
}

// Attr returns the value of the named attribute
func (n RawNode) Attr(name string) (string, bool) {
	for _, a := range n.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}
