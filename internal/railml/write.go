package railml

import (
	"bufio"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// Marshal renders doc as railML markup of the given version
func Marshal(doc *Document, version Version) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, doc, version); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write serializes doc as railML of the given version.
// Constructs that cannot be represented are reported as *ExportInconsistencyError
// before anything is written.
func Write(w io.Writer, doc *Document, version Version) error {
	if err := CheckExportable(doc, version); err != nil {
		return err
	}

	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(xml.Header); err != nil {
		return err
	}
	e := &emitter{enc: xml.NewEncoder(bw), version: version}
	e.enc.Indent("", "  ")
	e.document(doc, version)
	if e.err != nil {
		return fmt.Errorf("failed to write railML: %w", e.err)
	}
	if err := e.enc.Flush(); err != nil {
		return err
	}
	if _, err := bw.WriteString("\n"); err != nil {
		return err
	}
	return bw.Flush()
}

// CheckExportable reports the first construct of doc that cannot be written
func CheckExportable(doc *Document, version Version) error {
	if !version.Valid() {
		return &ExportInconsistencyError{Construct: "version", ID: string(version), Reason: "target version must be 2.3, 2.4 or 2.5"}
	}
	if doc == nil {
		return &ExportInconsistencyError{Construct: "document", Reason: "nothing to export"}
	}
	if doc.Infrastructure == nil {
		return nil
	}

	seen := map[string]string{}
	claim := func(construct, id string) error {
		if id == "" {
			return &ExportInconsistencyError{Construct: construct, Reason: "missing id"}
		}
		if prev, ok := seen[id]; ok {
			return &ExportInconsistencyError{Construct: construct, ID: id, Reason: "id already used by " + prev}
		}
		seen[id] = construct
		return nil
	}

	for _, t := range doc.Infrastructure.Tracks {
		if err := claim("track", t.ID); err != nil {
			return err
		}
		for _, n := range []TrackNode{t.Begin, t.End} {
			if err := claim("track node", n.ID); err != nil {
				return err
			}
			if !finitePosition(n.Position) {
				return &ExportInconsistencyError{Construct: "track node", ID: n.ID, Reason: "position is not a finite number"}
			}
			switch n.Conn.Kind {
			case EndKindConnection:
				if n.Conn.ID == "" || n.Conn.Ref == "" {
					return &ExportInconsistencyError{Construct: "track node", ID: n.ID, Reason: "connection without id or ref"}
				}
				if err := claim("connection", n.Conn.ID); err != nil {
					return err
				}
			case EndKindMacroscopicNode:
				if n.Conn.MacroID == "" {
					return &ExportInconsistencyError{Construct: "track node", ID: n.ID, Reason: "macroscopic node without id"}
				}
			case EndKindBufferStop, EndKindOpenEnd:
			default:
				return &ExportInconsistencyError{Construct: "track node", ID: n.ID, Reason: "end is neither connected nor terminated"}
			}
		}
		for _, j := range t.Junctions {
			if err := claim(j.Kind.String(), j.ID); err != nil {
				return err
			}
			if !finitePosition(j.Position) {
				return &ExportInconsistencyError{Construct: j.Kind.String(), ID: j.ID, Reason: "position is not a finite number"}
			}
			if len(j.Connections) == 0 {
				return &ExportInconsistencyError{Construct: j.Kind.String(), ID: j.ID, Reason: "no connection declared"}
			}
			for _, c := range j.Connections {
				if err := claim("connection", c.ID); err != nil {
					return err
				}
				if c.Ref == "" || c.Orientation == "" {
					return &ExportInconsistencyError{Construct: "connection", ID: c.ID, Reason: "missing ref or orientation"}
				}
			}
		}
		for _, raw := range append(append([]RawElement(nil), t.Elements.Raw...), t.OCS.Raw...) {
			if raw.Name == "" || raw.Container == "" {
				id, _ := raw.Attr("id")
				return &ExportInconsistencyError{Construct: "unmodeled element", ID: id, Reason: "element or container name unknown"}
			}
		}
	}
	return nil
}

func finitePosition(p Position) bool {
	if math.IsNaN(p.Pos) || math.IsInf(p.Pos, 0) {
		return false
	}
	return p.AbsPos == nil || !(math.IsNaN(*p.AbsPos) || math.IsInf(*p.AbsPos, 0))
}

// attrs collects attributes, dropping empty optional values
type attrs []xml.Attr

func (a *attrs) str(name, value string) {
	if value != "" {
		*a = append(*a, xml.Attr{Name: xml.Name{Local: name}, Value: value})
	}
}

func (a *attrs) float(name string, v *float64) {
	if v != nil {
		a.str(name, FormatFloat(*v))
	}
}

func (a *attrs) bool(name string, v *bool) {
	if v != nil {
		a.str(name, strconv.FormatBool(*v))
	}
}

func (a *attrs) int(name string, v *int) {
	if v != nil {
		a.str(name, strconv.Itoa(*v))
	}
}

func (a *attrs) position(p Position) {
	a.str("pos", FormatFloat(p.Pos))
	a.float("absPos", p.AbsPos)
}

// FormatFloat prints integers with a trailing ".0" and other values in shortest form
func FormatFloat(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return s
	}
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// emitter writes one document; version selects the attribute spellings
type emitter struct {
	enc     *xml.Encoder
	version Version
	err     error
}

func (e *emitter) start(name string, a attrs) {
	if e.err == nil {
		e.err = e.enc.EncodeToken(xml.StartElement{Name: xml.Name{Local: name}, Attr: a})
	}
}

func (e *emitter) end(name string) {
	if e.err == nil {
		e.err = e.enc.EncodeToken(xml.EndElement{Name: xml.Name{Local: name}})
	}
}

func (e *emitter) leaf(name string, a attrs) {
	e.start(name, a)
	e.end(name)
}

func (e *emitter) text(name, value string) {
	if value == "" {
		return
	}
	e.start(name, nil)
	if e.err == nil {
		e.err = e.enc.EncodeToken(xml.CharData(value))
	}
	e.end(name)
}

// geoCoord writes the coordinate child element of versions after 2.3
func (e *emitter) geoCoord(g *GeoCoord) {
	if g == nil || e.version.legacySpelling() {
		return
	}
	var a attrs
	a.str("coord", g.Coord)
	a.str("epsgCode", g.EPSGCode)
	e.leaf("geoCoord", a)
}

// geoAttr adds the 2.3 geoCoord attribute, which holds the coordinate without its reference system
func (e *emitter) geoAttr(a *attrs, g *GeoCoord) {
	if g != nil && e.version.legacySpelling() {
		a.str("geoCoord", g.Coord)
	}
}

func (e *emitter) lang(a *attrs, value string) {
	if value == "" {
		return
	}
	name := "xml:lang"
	if e.version.legacySpelling() {
		name = "lang"
	}
	*a = append(*a, xml.Attr{Name: xml.Name{Local: name}, Value: value})
}

func (e *emitter) etcsLevel(a *attrs, n int, v *bool) {
	name := fmt.Sprintf("level_%d", n)
	if e.version.legacySpelling() {
		name = fmt.Sprintf("level%d", n)
	}
	a.bool(name, v)
}

// withPosition writes an element whose only possible child is its geoCoord
func (e *emitter) withPosition(name string, a attrs, p Position) {
	e.geoAttr(&a, p.GeoCoord)
	e.start(name, a)
	e.geoCoord(p.GeoCoord)
	e.end(name)
}

func (e *emitter) document(doc *Document, version Version) {
	var root attrs
	root.str("xmlns", version.Namespace())
	root.str("xmlns:dc", dcNamespace)
	root.str("xmlns:xsi", xsiNamespace)
	root.str("xsi:schemaLocation", version.SchemaLocation())
	root.str("version", string(version))
	e.start("railml", root)

	if doc.Metadata != nil {
		e.metadata(doc.Metadata)
	}
	if doc.Infrastructure != nil {
		e.infrastructure(doc.Infrastructure)
	}
	if doc.Rollingstock != nil && len(doc.Rollingstock.Vehicles) > 0 {
		e.start("rollingstock", nil)
		e.start("vehicles", nil)
		for _, v := range doc.Rollingstock.Vehicles {
			var a attrs
			a.str("id", v.ID)
			a.str("name", v.Name)
			a.str("description", v.Description)
			a.float("length", v.Length)
			a.float("speed", v.Speed)
			e.leaf("vehicle", a)
		}
		e.end("vehicles")
		e.end("rollingstock")
	}
	e.end("railml")
}

func (e *emitter) metadata(md *Metadata) {
	e.start("metadata", nil)
	e.text("dc:format", md.Format)
	e.text("dc:identifier", md.Identifier)
	e.text("dc:source", md.Source)
	e.text("dc:title", md.Title)
	e.text("dc:language", md.Language)
	e.text("dc:creator", md.Creator)
	e.text("dc:description", md.Description)
	e.text("dc:rights", md.Rights)
	if len(md.OrganizationalUnits) > 0 {
		e.start("organizationalUnits", nil)
		for _, u := range md.OrganizationalUnits {
			var a attrs
			a.str("id", u.ID)
			a.str("code", u.Code)
			a.str("name", u.Name)
			a.str("contact", u.Contact)
			e.leaf("infrastructureManager", a)
		}
		e.end("organizationalUnits")
	}
	e.end("metadata")
}

func (e *emitter) infrastructure(inf *Infrastructure) {
	var a attrs
	a.str("id", inf.ID)
	a.str("name", inf.Name)
	e.start("infrastructure", a)

	if len(inf.Tracks) > 0 {
		e.start("tracks", nil)
		for _, t := range inf.Tracks {
			e.track(t)
		}
		e.end("tracks")
	}
	if len(inf.TrackGroups) > 0 {
		e.start("trackGroups", nil)
		for _, l := range inf.TrackGroups {
			e.line(l)
		}
		e.end("trackGroups")
	}
	if len(inf.OCPs) > 0 {
		e.start("operationControlPoints", nil)
		for _, o := range inf.OCPs {
			e.ocp(o)
		}
		e.end("operationControlPoints")
	}
	if len(inf.States) > 0 {
		e.start("states", nil)
		for _, s := range inf.States {
			var sa attrs
			sa.str("id", s.ID)
			sa.bool("disabled", s.Disabled)
			sa.str("status", s.Status)
			e.leaf("state", sa)
		}
		e.end("states")
	}
	e.end("infrastructure")
}

func (e *emitter) additionalNames(names []AdditionalName) {
	for _, n := range names {
		var a attrs
		a.str("name", n.Name)
		e.lang(&a, n.Lang)
		a.str("type", n.Type)
		e.leaf("additionalName", a)
	}
}

func (e *emitter) line(l Line) {
	var a attrs
	a.str("id", l.ID)
	a.str("code", l.Code)
	a.str("name", l.Name)
	a.str("type", l.Type)
	a.str("lineCategory", l.LineCategory)
	a.str("infrastructureManagerRef", l.InfrastructureManagerRef)
	e.start("line", a)
	e.additionalNames(l.AdditionalNames)
	for _, tr := range l.TrackRefs {
		var ta attrs
		ta.str("ref", tr.Ref)
		ta.int("sequence", tr.Sequence)
		e.leaf("trackRef", ta)
	}
	e.end("line")
}

func (e *emitter) ocp(o OCP) {
	var a attrs
	a.str("id", o.ID)
	a.str("name", o.Name)
	e.lang(&a, o.Lang)
	a.str("type", o.Type)
	e.geoAttr(&a, o.GeoCoord)
	e.start("ocp", a)
	e.additionalNames(o.AdditionalNames)
	if po := o.PropOperational; po != nil {
		var pa attrs
		pa.bool("ensuresTrainSequence", po.EnsuresTrainSequence)
		pa.bool("orderChangeable", po.OrderChangeable)
		pa.str("operationalType", po.OperationalType)
		pa.str("trafficType", po.TrafficType)
		e.leaf("propOperational", pa)
	}
	if ps := o.PropService; ps != nil {
		var pa attrs
		pa.bool("passenger", ps.Passenger)
		pa.bool("service", ps.Service)
		pa.bool("goodsSiding", ps.GoodsSiding)
		e.leaf("propService", pa)
	}
	if pe := o.PropEquipment; pe != nil {
		e.start("propEquipment", nil)
		if s := pe.Summary; s != nil {
			var sa attrs
			sa.bool("hasHomeSignals", s.HasHomeSignals)
			sa.bool("hasStarterSignals", s.HasStarterSignals)
			sa.bool("hasSwitches", s.HasSwitches)
			sa.str("signalBox", s.SignalBox)
			e.leaf("summary", sa)
		}
		for _, ref := range pe.TrackRefs {
			var ta attrs
			ta.str("ref", ref)
			e.leaf("trackRef", ta)
		}
		e.end("propEquipment")
	}
	e.geoCoord(o.GeoCoord)
	if d := o.Designator; d != nil {
		var da attrs
		da.str("register", d.Register)
		da.str("entry", d.Entry)
		e.leaf("designator", da)
	}
	e.end("ocp")
}

func (e *emitter) track(t Track) {
	var a attrs
	a.str("id", t.ID)
	a.str("code", t.Code)
	a.str("name", t.Name)
	a.str("description", t.Description)
	a.str("type", t.Type)
	a.str("mainDir", t.MainDir)
	e.start("track", a)

	e.start("trackTopology", nil)
	e.trackNode("trackBegin", t.Begin)
	e.trackNode("trackEnd", t.End)
	if len(t.Junctions) > 0 {
		e.start("connections", nil)
		for _, j := range t.Junctions {
			e.junction(j)
		}
		e.end("connections")
	}
	if len(t.CrossSections) > 0 {
		e.start("crossSections", nil)
		for _, cs := range t.CrossSections {
			var ca attrs
			ca.str("id", cs.ID)
			ca.str("name", cs.Name)
			ca.str("ocpRef", cs.OCPRef)
			ca.position(cs.Position)
			ca.str("type", cs.Type)
			e.withPosition("crossSection", ca, cs.Position)
		}
		e.end("crossSections")
	}
	e.end("trackTopology")

	e.trackElements(t.Elements)
	e.ocsElements(t.OCS)
	e.end("track")
}

func (e *emitter) trackNode(name string, n TrackNode) {
	var a attrs
	a.str("id", n.ID)
	a.position(n.Position)
	e.geoAttr(&a, n.Position.GeoCoord)
	e.start(name, a)
	e.geoCoord(n.Position.GeoCoord)

	var ca attrs
	switch n.Conn.Kind {
	case EndKindConnection:
		ca.str("id", n.Conn.ID)
		ca.str("ref", n.Conn.Ref)
		e.leaf("connection", ca)
	case EndKindBufferStop:
		ca.str("id", n.Conn.ElementID)
		e.leaf("bufferStop", ca)
	case EndKindOpenEnd:
		ca.str("id", n.Conn.ElementID)
		e.leaf("openEnd", ca)
	case EndKindMacroscopicNode:
		ca.str("id", n.Conn.MacroID)
		ca.str("name", n.Conn.MacroName)
		ca.str("ocpRef", n.Conn.OCPRef)
		e.leaf("macroscopicNode", ca)
	}
	e.end(name)
}

func (e *emitter) junction(j Junction) {
	name := j.Kind.String()
	var a attrs
	a.str("id", j.ID)
	a.position(j.Position)
	a.str("name", j.Name)
	a.str("description", j.Description)
	a.float("length", j.Length)
	a.str("trackContinueCourse", string(j.TrackContinueCourse))
	a.float("trackContinueRadius", j.TrackContinueRadius)
	a.str("normalPosition", string(j.NormalPosition))
	e.geoAttr(&a, j.Position.GeoCoord)
	e.start(name, a)
	e.geoCoord(j.Position.GeoCoord)
	for _, c := range j.Connections {
		var ca attrs
		ca.str("id", c.ID)
		ca.str("ref", c.Ref)
		ca.str("orientation", string(c.Orientation))
		ca.str("course", string(c.Course))
		ca.float("radius", c.Radius)
		ca.float("maxSpeed", c.MaxSpeed)
		ca.bool("passable", c.Passable)
		e.leaf("connection", ca)
	}
	e.end(name)
}

// rawGroups buckets raw elements by container, keeping first-seen order
func rawGroups(raws []RawElement) ([]string, map[string][]RawElement) {
	var order []string
	groups := map[string][]RawElement{}
	for _, r := range raws {
		if _, ok := groups[r.Container]; !ok {
			order = append(order, r.Container)
		}
		groups[r.Container] = append(groups[r.Container], r)
	}
	return order, groups
}

func (e *emitter) raw(r RawElement) {
	var a attrs
	for _, at := range r.Attrs {
		a = append(a, xml.Attr{Name: xml.Name{Local: at.Name}, Value: at.Value})
	}
	e.start(r.Name, a)
	if r.Text != "" && e.err == nil {
		e.err = e.enc.EncodeToken(xml.CharData(r.Text))
	}
	for _, c := range r.Children {
		e.raw(c)
	}
	e.end(r.Name)
}

// group opens container only when it has content, then appends raw leftovers for it
func (e *emitter) group(container string, n int, raws map[string][]RawElement, body func()) {
	extra := raws[container]
	if n == 0 && len(extra) == 0 {
		return
	}
	e.start(container, nil)
	body()
	for _, r := range extra {
		e.raw(r)
	}
	e.end(container)
	delete(raws, container)
}

func (e *emitter) trackElements(te TrackElements) {
	n := len(te.SpeedChanges) + len(te.LevelCrossings) + len(te.PlatformEdges) + len(te.GeoMappings) + len(te.Raw)
	if n == 0 {
		return
	}
	order, raws := rawGroups(te.Raw)
	e.start("trackElements", nil)

	e.group("speedChanges", len(te.SpeedChanges), raws, func() {
		for _, s := range te.SpeedChanges {
			var a attrs
			a.str("id", s.ID)
			a.position(s.Position)
			a.str("dir", string(s.Dir))
			a.str("vMax", s.VMax)
			a.bool("signalised", s.Signalised)
			e.withPosition("speedChange", a, s.Position)
		}
	})
	e.group("levelCrossings", len(te.LevelCrossings), raws, func() {
		for _, l := range te.LevelCrossings {
			var a attrs
			a.str("id", l.ID)
			a.position(l.Position)
			a.str("protection", l.Protection)
			a.float("angle", l.Angle)
			e.withPosition("levelCrossing", a, l.Position)
		}
	})
	e.group("platformEdges", len(te.PlatformEdges), raws, func() {
		for _, p := range te.PlatformEdges {
			var a attrs
			a.str("id", p.ID)
			a.str("name", p.Name)
			a.position(p.Position)
			a.str("dir", string(p.Dir))
			a.str("side", p.Side)
			a.float("height", p.Height)
			a.float("length", p.Length)
			e.withPosition("platformEdge", a, p.Position)
		}
	})
	e.group("geoMappings", len(te.GeoMappings), raws, func() {
		for _, g := range te.GeoMappings {
			var a attrs
			a.str("id", g.ID)
			a.position(g.Position)
			a.str("name", g.Name)
			a.str("code", g.Code)
			a.str("description", g.Description)
			e.withPosition("geoMapping", a, g.Position)
		}
	})
	for _, container := range order {
		e.group(container, 0, raws, func() {})
	}
	e.end("trackElements")
}

func (e *emitter) ocsElements(ocs OCSElements) {
	n := len(ocs.Signals) + len(ocs.TrainDetectors) + len(ocs.TrackCircuitBorders) + len(ocs.Balises) +
		len(ocs.TrainProtectionElements) + len(ocs.TrainProtectionElementGroups) + len(ocs.Derailers) + len(ocs.Raw)
	if n == 0 {
		return
	}
	order, raws := rawGroups(ocs.Raw)
	e.start("ocsElements", nil)

	e.group("signals", len(ocs.Signals), raws, func() {
		for _, s := range ocs.Signals {
			e.signal(s)
		}
	})
	e.group("trainDetectionElements", len(ocs.TrainDetectors)+len(ocs.TrackCircuitBorders), raws, func() {
		for _, d := range ocs.TrainDetectors {
			var a attrs
			a.str("id", d.ID)
			a.position(d.Position)
			a.bool("axleCounting", d.AxleCounting)
			a.bool("directionDetection", d.DirectionDetection)
			a.str("medium", d.Medium)
			e.withPosition("trainDetector", a, d.Position)
		}
		for _, b := range ocs.TrackCircuitBorders {
			var a attrs
			a.str("id", b.ID)
			a.position(b.Position)
			a.str("insulatedRail", b.InsulatedRail)
			e.withPosition("trackCircuitBorder", a, b.Position)
		}
	})
	e.group("balises", len(ocs.Balises), raws, func() {
		for _, b := range ocs.Balises {
			var a attrs
			a.str("id", b.ID)
			a.position(b.Position)
			a.str("name", b.Name)
			e.withPosition("balise", a, b.Position)
		}
	})
	e.group("trainProtectionElements", len(ocs.TrainProtectionElements)+len(ocs.TrainProtectionElementGroups), raws, func() {
		for _, t := range ocs.TrainProtectionElements {
			var a attrs
			a.str("id", t.ID)
			a.position(t.Position)
			a.str("dir", string(t.Dir))
			a.str("medium", t.Medium)
			a.str("trainProtectionSystem", t.System)
			e.withPosition("trainProtectionElement", a, t.Position)
		}
		for _, g := range ocs.TrainProtectionElementGroups {
			var a attrs
			a.str("id", g.ID)
			e.start("trainProtectionElementGroup", a)
			for _, ref := range g.ElementRefs {
				var ra attrs
				ra.str("ref", ref)
				e.leaf("trainProtectionElementRef", ra)
			}
			e.end("trainProtectionElementGroup")
		}
	})
	e.group("derailers", len(ocs.Derailers), raws, func() {
		for _, d := range ocs.Derailers {
			var a attrs
			a.str("id", d.ID)
			a.position(d.Position)
			a.str("dir", string(d.Dir))
			a.str("derailSide", d.DerailSide)
			a.str("code", d.Code)
			e.withPosition("derailer", a, d.Position)
		}
	})
	for _, container := range order {
		e.group(container, 0, raws, func() {})
	}
	e.end("ocsElements")
}

func (e *emitter) signal(s Signal) {
	var a attrs
	a.str("id", s.ID)
	a.position(s.Position)
	a.str("name", s.Name)
	a.str("dir", string(s.Dir))
	a.float("sight", s.Sight)
	a.str("type", string(s.Type))
	a.str("function", string(s.Function))
	a.str("code", s.Code)
	a.bool("switchable", s.Switchable)
	a.str("ocpStationRef", s.OCPStationRef)
	e.geoAttr(&a, s.Position.GeoCoord)
	e.start("signal", a)
	e.geoCoord(s.Position.GeoCoord)
	for _, sp := range s.Speeds {
		var sa attrs
		sa.str("kind", sp.Kind)
		sa.str("trainRelation", sp.TrainRelation)
		sa.bool("switchable", sp.Switchable)
		e.start("speed", sa)
		if sp.SpeedChangeRef != "" {
			var ra attrs
			ra.str("ref", sp.SpeedChangeRef)
			e.leaf("speedChangeRef", ra)
		}
		e.end("speed")
	}
	if s.ETCS != nil {
		var ea attrs
		e.etcsLevel(&ea, 1, s.ETCS.Level1)
		e.etcsLevel(&ea, 2, s.ETCS.Level2)
		e.etcsLevel(&ea, 3, s.ETCS.Level3)
		e.leaf("etcs", ea)
	}
	e.end("signal")
}
