package railml

// Direction is the validity direction of an element relative to its track
type Direction string

const (
	DirNone    Direction = ""
	DirUp      Direction = "up"
	DirDown    Direction = "down"
	DirBoth    Direction = "both"
	DirUnknown Direction = "unknown"
)

// TrackElements groups the trackElements children the model understands
type TrackElements struct {
	PlatformEdges  []PlatformEdge
	SpeedChanges   []SpeedChange
	LevelCrossings []LevelCrossing
	GeoMappings    []GeoMapping

	// Raw keeps unknown trackElements children verbatim
	Raw []RawElement
}

type PlatformEdge struct {
	ID       string
	Name     string
	Position Position
	Dir      Direction
	Side     string
	Height   *float64
	Length   *float64
}

type SpeedChange struct {
	ID         string
	Position   Position
	Dir        Direction
	VMax       string
	Signalised *bool
}

type LevelCrossing struct {
	ID         string
	Position   Position
	Protection string
	Angle      *float64
}

type GeoMapping struct {
	ID          string
	Position    Position
	Name        string
	Code        string
	Description string
}

// CrossSection lives under trackTopology/crossSections
type CrossSection struct {
	ID       string
	Name     string
	OCPRef   string
	Position Position
	Type     string
}

// OCSElements groups the ocsElements children the model understands
type OCSElements struct {
	Signals                      []Signal
	Balises                      []Balise
	TrainDetectors               []TrainDetector
	TrackCircuitBorders          []TrackCircuitBorder
	Derailers                    []Derailer
	TrainProtectionElements      []TrainProtectionElement
	TrainProtectionElementGroups []TrainProtectionElementGroup

	// Raw keeps unknown ocsElements children verbatim
	Raw []RawElement
}

// SignalType defaults to main when absent
type SignalType string

const (
	SignalMain     SignalType = "main"
	SignalDistant  SignalType = "distant"
	SignalRepeater SignalType = "repeater"
	SignalCombined SignalType = "combined"
	SignalShunting SignalType = "shunting"
)

type SignalFunction string

const (
	FunctionNone         SignalFunction = ""
	FunctionExit         SignalFunction = "exit"
	FunctionHome         SignalFunction = "home"
	FunctionBlocking     SignalFunction = "blocking"
	FunctionIntermediate SignalFunction = "intermediate"
	FunctionOther        SignalFunction = "other"
)

type Signal struct {
	ID            string
	Position      Position
	Name          string
	Dir           Direction
	Sight         *float64
	Type          SignalType
	Function      SignalFunction
	Code          string
	Switchable    *bool
	OCPStationRef string
	Speeds        []SignalSpeed
	ETCS          *ETCS
}

type SignalSpeed struct {
	Kind           string
	TrainRelation  string
	Switchable     *bool
	SpeedChangeRef string
}

// ETCS lists the ETCS levels a signal is equipped for
type ETCS struct {
	Level1 *bool
	Level2 *bool
	Level3 *bool
}

type Balise struct {
	ID       string
	Position Position
	Name     string
}

type TrainDetector struct {
	ID                 string
	Position           Position
	AxleCounting       *bool
	DirectionDetection *bool
	Medium             string
}

type TrackCircuitBorder struct {
	ID            string
	Position      Position
	InsulatedRail string
}

type Derailer struct {
	ID         string
	Position   Position
	Dir        Direction
	DerailSide string
	Code       string
}

type TrainProtectionElement struct {
	ID       string
	Position Position
	Dir      Direction
	Medium   string
	System   string
}

type TrainProtectionElementGroup struct {
	ID          string
	ElementRefs []string
}

// Attr is a single attribute kept in document order
type Attr struct {
	Name  string
	Value string
}

// RawElement is an element the model does not understand, preserved as written
type RawElement struct {
	// Container is the group element it was found in, e.g. "bridges" under ocsElements
	Container string
	Name      string
	Attrs     []Attr
	Children  []RawElement
	Text      string
	Line      int
}

// Attr returns the value of the named attribute
func (r RawElement) Attr(name string) (string, bool) {
	for _, a := range r.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}
