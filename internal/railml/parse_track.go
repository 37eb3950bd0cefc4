package railml

func (p *parser) parseTrack(el *element) (Track, error) {
	id, err := requireAttr(el, "id")
	if err != nil {
		return Track{}, err
	}
	track := Track{
		ID:          id,
		Code:        el.str("code"),
		Name:        el.str("name"),
		Description: el.str("description"),
		Type:        el.str("type"),
		MainDir:     el.str("mainDir"),
	}

	topo, err := requireChild(el, "trackTopology")
	if err != nil {
		return Track{}, err
	}
	if err := p.parseTopology(topo, &track); err != nil {
		return Track{}, err
	}

	for _, c := range el.children {
		switch c.local() {
		case "trackTopology":
		case "trackElements":
			if err := p.parseTrackElements(c, &track.Elements); err != nil {
				return Track{}, err
			}
		case "ocsElements":
			if err := p.parseOCSElements(c, &track.OCS); err != nil {
				return Track{}, err
			}
		default:
			p.skip(c, "track child not modeled")
		}
	}
	return track, nil
}

func (p *parser) parseTopology(topo *element, track *Track) error {
	begin, err := requireChild(topo, "trackBegin")
	if err != nil {
		return err
	}
	end, err := requireChild(topo, "trackEnd")
	if err != nil {
		return err
	}
	if track.Begin, err = parseTrackNode(begin); err != nil {
		return err
	}
	if track.End, err = parseTrackNode(end); err != nil {
		return err
	}

	for _, c := range topo.children {
		switch c.local() {
		case "trackBegin", "trackEnd":
		case "connections":
			for _, j := range c.children {
				var junction Junction
				switch j.local() {
				case "switch":
					junction, err = parseJunction(j, JunctionSwitch)
				case "crossing":
					junction, err = parseJunction(j, JunctionCrossing)
				default:
					return errorAt(j, "switch or crossing", nil)
				}
				if err != nil {
					return err
				}
				track.Junctions = append(track.Junctions, junction)
			}
		case "crossSections":
			for _, cs := range c.childrenNamed("crossSection") {
				id, err := requireAttr(cs, "id")
				if err != nil {
					return err
				}
				pos, err := parsePosition(cs)
				if err != nil {
					return err
				}
				track.CrossSections = append(track.CrossSections, CrossSection{
					ID:       id,
					Name:     cs.str("name"),
					OCPRef:   cs.str("ocpRef"),
					Position: pos,
					Type:     cs.str("type"),
				})
			}
		default:
			p.skip(c, "topology child not modeled")
		}
	}
	return nil
}

func parseTrackNode(el *element) (TrackNode, error) {
	id, err := requireAttr(el, "id")
	if err != nil {
		return TrackNode{}, err
	}
	pos, err := parsePosition(el)
	if err != nil {
		return TrackNode{}, err
	}
	conn, err := parseEndConnection(el)
	if err != nil {
		return TrackNode{}, err
	}
	return TrackNode{ID: id, Position: pos, Conn: conn}, nil
}

func parseEndConnection(el *element) (EndConnection, error) {
	if c := el.child("connection"); c != nil {
		id, err := requireAttr(c, "id")
		if err != nil {
			return EndConnection{}, err
		}
		ref, err := requireAttr(c, "ref")
		if err != nil {
			return EndConnection{}, err
		}
		return EndConnection{Kind: EndKindConnection, ID: id, Ref: ref}, nil
	}
	if c := el.child("bufferStop"); c != nil {
		return EndConnection{Kind: EndKindBufferStop, ElementID: c.str("id")}, nil
	}
	if c := el.child("openEnd"); c != nil {
		return EndConnection{Kind: EndKindOpenEnd, ElementID: c.str("id")}, nil
	}
	if c := el.child("macroscopicNode"); c != nil {
		id, err := requireAttr(c, "id")
		if err != nil {
			return EndConnection{}, err
		}
		return EndConnection{
			Kind:      EndKindMacroscopicNode,
			MacroID:   id,
			MacroName: c.str("name"),
			OCPRef:    c.str("ocpRef"),
		}, nil
	}
	return EndConnection{}, errorAt(el, "connection, bufferStop, openEnd or macroscopicNode", nil)
}

func parseJunction(el *element, kind JunctionKind) (Junction, error) {
	id, err := requireAttr(el, "id")
	if err != nil {
		return Junction{}, err
	}
	pos, err := parsePosition(el)
	if err != nil {
		return Junction{}, err
	}
	j := Junction{
		Kind:        kind,
		ID:          id,
		Position:    pos,
		Name:        el.str("name"),
		Description: el.str("description"),
	}
	if j.Length, err = strictFloat(el, "length"); err != nil {
		return Junction{}, err
	}
	if j.TrackContinueCourse, err = parseCourse(el, "trackContinueCourse"); err != nil {
		return Junction{}, err
	}
	if j.TrackContinueRadius, err = strictFloat(el, "trackContinueRadius"); err != nil {
		return Junction{}, err
	}
	if j.NormalPosition, err = parseCourse(el, "normalPosition"); err != nil {
		return Junction{}, err
	}
	for _, c := range el.childrenNamed("connection") {
		sc, err := parseSwitchConnection(c)
		if err != nil {
			return Junction{}, err
		}
		j.Connections = append(j.Connections, sc)
	}
	return j, nil
}

func parseSwitchConnection(el *element) (SwitchConnection, error) {
	id, err := requireAttr(el, "id")
	if err != nil {
		return SwitchConnection{}, err
	}
	ref, err := requireAttr(el, "ref")
	if err != nil {
		return SwitchConnection{}, err
	}
	sc := SwitchConnection{ID: id, Ref: ref}
	if sc.Orientation, err = parseOrientation(el); err != nil {
		return SwitchConnection{}, err
	}
	if sc.Course, err = parseCourse(el, "course"); err != nil {
		return SwitchConnection{}, err
	}
	if sc.Radius, err = strictFloat(el, "radius"); err != nil {
		return SwitchConnection{}, err
	}
	if sc.MaxSpeed, err = strictFloat(el, "maxSpeed"); err != nil {
		return SwitchConnection{}, err
	}
	if sc.Passable, err = strictBool(el, "passable"); err != nil {
		return SwitchConnection{}, err
	}
	return sc, nil
}
