package railml

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var errNotFinite = errors.New("not a finite number")

type parseConfig struct {
	declared Version
}

// ParseOption configures Parse
type ParseOption func(*parseConfig)

// WithVersion declares the schema version for files that do not state one
func WithVersion(v Version) ParseOption {
	return func(c *parseConfig) {
		c.declared = v
	}
}

// parser accumulates diagnostics while walking the element tree
type parser struct {
	doc *Document
}

// Parse converts railML markup into a Document.
// Structural problems that break topology are returned as *ParseError;
// elements the model does not know are recorded in Document.Diagnostics.
func Parse(data []byte, opts ...ParseOption) (*Document, error) {
	cfg := &parseConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	root, err := decodeTree(data)
	if err != nil {
		return nil, err
	}
	if root.local() != "railml" {
		return nil, errorAt(root, "railml root element", nil)
	}

	version, err := detectVersion(root, cfg.declared)
	if err != nil {
		return nil, err
	}

	p := &parser{doc: &Document{Version: version, Namespace: root.name.Space}}
	for _, c := range root.children {
		switch c.local() {
		case "metadata":
			p.doc.Metadata = p.parseMetadata(c)
		case "infrastructure":
			inf, err := p.parseInfrastructure(c)
			if err != nil {
				return nil, err
			}
			p.doc.Infrastructure = inf
		case "rollingstock":
			rs, err := p.parseRollingstock(c)
			if err != nil {
				return nil, err
			}
			p.doc.Rollingstock = rs
		default:
			p.skip(c, "not part of the infrastructure model")
		}
	}
	return p.doc, nil
}

func detectVersion(root *element, declared Version) (Version, error) {
	if raw, ok := root.attr("version"); ok {
		v, err := ParseVersion(raw)
		if err != nil {
			return "", errorAt(root, "version 2.3, 2.4 or 2.5", err)
		}
		return v, nil
	}
	if v, ok := versionFromNamespace(root.name.Space); ok {
		return v, nil
	}
	if declared.Valid() {
		return declared, nil
	}
	return "", errorAt(root, "version attribute or railML 2.x namespace", nil)
}

func errorAt(el *element, expected string, err error) *ParseError {
	return &ParseError{
		Element:  el.local(),
		Path:     el.path(),
		Line:     el.line,
		Column:   el.col,
		Expected: expected,
		Err:      err,
	}
}

func (p *parser) skip(el *element, msg string) {
	p.doc.Diagnostics = append(p.doc.Diagnostics, Diagnostic{
		Code:    DiagSkipped,
		Path:    el.path(),
		Element: el.local(),
		ID:      el.str("id"),
		Line:    el.line,
		Column:  el.col,
		Message: msg,
	})
}

func (p *parser) unmodeled(el *element) {
	p.doc.Diagnostics = append(p.doc.Diagnostics, Diagnostic{
		Code:    DiagUnmodeled,
		Path:    el.path(),
		Element: el.local(),
		ID:      el.str("id"),
		Line:    el.line,
		Column:  el.col,
		Message: "kept verbatim",
	})
}

func (p *parser) invalid(el *element, attr, value string) {
	p.doc.Diagnostics = append(p.doc.Diagnostics, Diagnostic{
		Code:    DiagInvalidValue,
		Path:    el.path(),
		Element: el.local(),
		ID:      el.str("id"),
		Line:    el.line,
		Column:  el.col,
		Message: fmt.Sprintf("ignored %s=%q", attr, value),
	})
}

func requireAttr(el *element, name string) (string, error) {
	v, ok := el.attr(name)
	if !ok || strings.TrimSpace(v) == "" {
		return "", errorAt(el, fmt.Sprintf("attribute %q", name), nil)
	}
	return v, nil
}

func requireChild(el *element, name string) (*element, error) {
	c := el.child(name)
	if c == nil {
		return nil, errorAt(el, fmt.Sprintf("child element <%s>", name), nil)
	}
	return c, nil
}

// parseNumber parses a decimal, rejecting NaN and infinities
func parseNumber(v string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, errNotFinite
	}
	return f, nil
}

// strictFloat parses an optional number that must be valid when present
func strictFloat(el *element, name string) (*float64, error) {
	v, ok := el.attr(name)
	if !ok {
		return nil, nil
	}
	f, err := parseNumber(v)
	if err != nil {
		return nil, errorAt(el, fmt.Sprintf("number in attribute %q", name), err)
	}
	return &f, nil
}

// lenientFloat parses an optional number, ignoring invalid values with a diagnostic
func (p *parser) lenientFloat(el *element, name string) *float64 {
	v, ok := el.attr(name)
	if !ok {
		return nil
	}
	f, err := parseNumber(v)
	if err != nil {
		p.invalid(el, name, v)
		return nil
	}
	return &f
}

func parseBool(v string) (bool, bool) {
	switch strings.TrimSpace(v) {
	case "true", "1":
		return true, true
	case "false", "0":
		return false, true
	}
	return false, false
}

func strictBool(el *element, name string) (*bool, error) {
	v, ok := el.attr(name)
	if !ok {
		return nil, nil
	}
	b, ok := parseBool(v)
	if !ok {
		return nil, errorAt(el, fmt.Sprintf("boolean in attribute %q", name), nil)
	}
	return &b, nil
}

func (p *parser) lenientBool(el *element, name string) *bool {
	v, ok := el.attr(name)
	if !ok {
		return nil
	}
	b, ok := parseBool(v)
	if !ok {
		p.invalid(el, name, v)
		return nil
	}
	return &b
}

func (p *parser) lenientInt(el *element, name string) *int {
	v, ok := el.attr(name)
	if !ok {
		return nil
	}
	i, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		p.invalid(el, name, v)
		return nil
	}
	return &i
}

func parsePosition(el *element) (Position, error) {
	raw, err := requireAttr(el, "pos")
	if err != nil {
		return Position{}, err
	}
	pos, err := parseNumber(raw)
	if err != nil {
		return Position{}, errorAt(el, `number in attribute "pos"`, err)
	}
	abs, err := strictFloat(el, "absPos")
	if err != nil {
		return Position{}, err
	}
	return Position{Pos: pos, AbsPos: abs, GeoCoord: parseGeoCoord(el)}, nil
}

// parseGeoCoord accepts a geoCoord child element or a geoCoord attribute
func parseGeoCoord(el *element) *GeoCoord {
	if g := el.child("geoCoord"); g != nil {
		if coord, ok := g.attr("coord"); ok {
			return &GeoCoord{Coord: coord, EPSGCode: g.str("epsgCode")}
		}
	}
	if coord, ok := el.attr("geoCoord"); ok {
		return &GeoCoord{Coord: coord}
	}
	return nil
}

func parseDirection(el *element, name string) (Direction, error) {
	v, ok := el.attr(name)
	if !ok {
		return DirNone, nil
	}
	switch Direction(v) {
	case DirUp, DirDown, DirBoth, DirUnknown:
		return Direction(v), nil
	case "none":
		return DirNone, nil
	}
	return DirNone, errorAt(el, fmt.Sprintf("one of up, down, both, unknown in attribute %q", name), nil)
}

func parseCourse(el *element, name string) (Course, error) {
	v, ok := el.attr(name)
	if !ok {
		return CourseNone, nil
	}
	switch Course(v) {
	case CourseLeft, CourseRight, CourseStraight:
		return Course(v), nil
	}
	return CourseNone, errorAt(el, fmt.Sprintf("one of left, right, straight in attribute %q", name), nil)
}

func parseOrientation(el *element) (Orientation, error) {
	v, err := requireAttr(el, "orientation")
	if err != nil {
		return "", err
	}
	switch Orientation(v) {
	case OrientationIncoming, OrientationOutgoing, OrientationRightAngled, OrientationUnknown, OrientationOther:
		return Orientation(v), nil
	}
	return "", errorAt(el, "one of incoming, outgoing, rightAngled, unknown, other in attribute \"orientation\"", nil)
}

func (p *parser) parseMetadata(el *element) *Metadata {
	md := &Metadata{}
	for _, c := range el.children {
		switch c.local() {
		case "title":
			md.Title = c.trimmedText()
		case "creator":
			md.Creator = c.trimmedText()
		case "source":
			md.Source = c.trimmedText()
		case "identifier":
			md.Identifier = c.trimmedText()
		case "format":
			md.Format = c.trimmedText()
		case "language":
			md.Language = c.trimmedText()
		case "description":
			md.Description = c.trimmedText()
		case "rights":
			md.Rights = c.trimmedText()
		case "organizationalUnits":
			for _, u := range c.children {
				if u.local() != "infrastructureManager" {
					p.skip(u, "organizational unit kind not modeled")
					continue
				}
				md.OrganizationalUnits = append(md.OrganizationalUnits, OrganizationalUnit{
					ID:      u.str("id"),
					Code:    u.str("code"),
					Name:    u.str("name"),
					Contact: u.str("contact"),
				})
			}
		default:
			p.skip(c, "metadata field not modeled")
		}
	}
	return md
}

func (p *parser) parseInfrastructure(el *element) (*Infrastructure, error) {
	inf := &Infrastructure{ID: el.str("id"), Name: el.str("name")}
	for _, c := range el.children {
		switch c.local() {
		case "tracks":
			for _, t := range c.children {
				if t.local() != "track" {
					p.skip(t, "expected track")
					continue
				}
				track, err := p.parseTrack(t)
				if err != nil {
					return nil, err
				}
				inf.Tracks = append(inf.Tracks, track)
			}
		case "trackGroups":
			for _, l := range c.children {
				if l.local() != "line" {
					p.skip(l, "track group kind not modeled")
					continue
				}
				line, err := p.parseLine(l)
				if err != nil {
					return nil, err
				}
				inf.TrackGroups = append(inf.TrackGroups, line)
			}
		case "operationControlPoints":
			for _, o := range c.childrenNamed("ocp") {
				ocp, err := p.parseOCP(o)
				if err != nil {
					return nil, err
				}
				inf.OCPs = append(inf.OCPs, ocp)
			}
		case "states":
			for _, s := range c.childrenNamed("state") {
				id, err := requireAttr(s, "id")
				if err != nil {
					return nil, err
				}
				inf.States = append(inf.States, State{
					ID:       id,
					Disabled: p.lenientBool(s, "disabled"),
					Status:   s.str("status"),
				})
			}
		default:
			p.skip(c, "infrastructure section not modeled")
		}
	}
	return inf, nil
}

func (p *parser) additionalNames(el *element) []AdditionalName {
	var names []AdditionalName
	for _, an := range el.childrenNamed("additionalName") {
		name, ok := an.attr("name")
		if !ok {
			continue
		}
		names = append(names, AdditionalName{
			Name: name,
			Lang: an.str("lang"),
			Type: an.str("type"),
		})
	}
	return names
}

func (p *parser) parseLine(el *element) (Line, error) {
	id, err := requireAttr(el, "id")
	if err != nil {
		return Line{}, err
	}
	line := Line{
		ID:                       id,
		Code:                     el.str("code"),
		Name:                     el.str("name"),
		InfrastructureManagerRef: el.str("infrastructureManagerRef"),
		LineCategory:             el.str("lineCategory"),
		Type:                     el.str("type"),
		AdditionalNames:          p.additionalNames(el),
	}
	for _, tr := range el.childrenNamed("trackRef") {
		ref, err := requireAttr(tr, "ref")
		if err != nil {
			return Line{}, err
		}
		line.TrackRefs = append(line.TrackRefs, TrackRef{Ref: ref, Sequence: p.lenientInt(tr, "sequence")})
	}
	return line, nil
}

func (p *parser) parseOCP(el *element) (OCP, error) {
	id, err := requireAttr(el, "id")
	if err != nil {
		return OCP{}, err
	}
	ocp := OCP{
		ID:              id,
		Name:            el.str("name"),
		Lang:            el.str("lang"),
		Type:            el.str("type"),
		GeoCoord:        parseGeoCoord(el),
		AdditionalNames: p.additionalNames(el),
	}
	if po := el.child("propOperational"); po != nil {
		ocp.PropOperational = &PropOperational{
			EnsuresTrainSequence: p.lenientBool(po, "ensuresTrainSequence"),
			OrderChangeable:      p.lenientBool(po, "orderChangeable"),
			OperationalType:      po.str("operationalType"),
			TrafficType:          po.str("trafficType"),
		}
	}
	if ps := el.child("propService"); ps != nil {
		ocp.PropService = &PropService{
			Passenger:   p.lenientBool(ps, "passenger"),
			Service:     p.lenientBool(ps, "service"),
			GoodsSiding: p.lenientBool(ps, "goodsSiding"),
		}
	}
	if pe := el.child("propEquipment"); pe != nil {
		eq := &PropEquipment{}
		if s := pe.child("summary"); s != nil {
			eq.Summary = &EquipmentSummary{
				HasHomeSignals:    p.lenientBool(s, "hasHomeSignals"),
				HasStarterSignals: p.lenientBool(s, "hasStarterSignals"),
				HasSwitches:       p.lenientBool(s, "hasSwitches"),
				SignalBox:         s.str("signalBox"),
			}
		}
		for _, tr := range pe.childrenNamed("trackRef") {
			if ref, ok := tr.attr("ref"); ok {
				eq.TrackRefs = append(eq.TrackRefs, ref)
			}
		}
		ocp.PropEquipment = eq
	}
	if d := el.child("designator"); d != nil {
		ocp.Designator = &Designator{Register: d.str("register"), Entry: d.str("entry")}
	}
	return ocp, nil
}

func (p *parser) parseRollingstock(el *element) (*Rollingstock, error) {
	rs := &Rollingstock{}
	for _, c := range el.children {
		if c.local() != "vehicles" {
			p.skip(c, "rollingstock section not modeled")
			continue
		}
		for _, v := range c.childrenNamed("vehicle") {
			id, err := requireAttr(v, "id")
			if err != nil {
				return nil, err
			}
			rs.Vehicles = append(rs.Vehicles, Vehicle{
				ID:          id,
				Name:        v.str("name"),
				Description: v.str("description"),
				Length:      p.lenientFloat(v, "length"),
				Speed:       p.lenientFloat(v, "speed"),
			})
		}
	}
	return rs, nil
}
