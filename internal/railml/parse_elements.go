package railml

// parseTrackElements fills te from a trackElements subtree; unknown groups are kept raw
func (p *parser) parseTrackElements(el *element, te *TrackElements) error {
	for _, group := range el.children {
		for _, c := range group.children {
			var err error
			switch group.local() + "/" + c.local() {
			case "platformEdges/platformEdge":
				err = p.platformEdge(c, te)
			case "speedChanges/speedChange":
				err = p.speedChange(c, te)
			case "levelCrossings/levelCrossing":
				err = p.levelCrossing(c, te)
			case "geoMappings/geoMapping":
				err = p.geoMapping(c, te)
			default:
				p.unmodeled(c)
				te.Raw = append(te.Raw, c.raw(group.local()))
			}
			if err != nil {
				return err
			}
		}
		if len(group.children) == 0 {
			p.skip(group, "empty group")
		}
	}
	return nil
}

func (p *parser) platformEdge(el *element, te *TrackElements) error {
	id, pos, err := identity(el)
	if err != nil {
		return err
	}
	dir, err := parseDirection(el, "dir")
	if err != nil {
		return err
	}
	te.PlatformEdges = append(te.PlatformEdges, PlatformEdge{
		ID:       id,
		Name:     el.str("name"),
		Position: pos,
		Dir:      dir,
		Side:     el.str("side"),
		Height:   p.lenientFloat(el, "height"),
		Length:   p.lenientFloat(el, "length"),
	})
	return nil
}

func (p *parser) speedChange(el *element, te *TrackElements) error {
	id, pos, err := identity(el)
	if err != nil {
		return err
	}
	dir, err := parseDirection(el, "dir")
	if err != nil {
		return err
	}
	te.SpeedChanges = append(te.SpeedChanges, SpeedChange{
		ID:         id,
		Position:   pos,
		Dir:        dir,
		VMax:       el.str("vMax"),
		Signalised: p.lenientBool(el, "signalised"),
	})
	return nil
}

func (p *parser) levelCrossing(el *element, te *TrackElements) error {
	id, pos, err := identity(el)
	if err != nil {
		return err
	}
	te.LevelCrossings = append(te.LevelCrossings, LevelCrossing{
		ID:         id,
		Position:   pos,
		Protection: el.str("protection"),
		Angle:      p.lenientFloat(el, "angle"),
	})
	return nil
}

func (p *parser) geoMapping(el *element, te *TrackElements) error {
	id, pos, err := identity(el)
	if err != nil {
		return err
	}
	te.GeoMappings = append(te.GeoMappings, GeoMapping{
		ID:          id,
		Position:    pos,
		Name:        el.str("name"),
		Code:        el.str("code"),
		Description: el.str("description"),
	})
	return nil
}

// parseOCSElements fills ocs from an ocsElements subtree; unknown groups are kept raw
func (p *parser) parseOCSElements(el *element, ocs *OCSElements) error {
	for _, group := range el.children {
		for _, c := range group.children {
			var err error
			switch group.local() + "/" + c.local() {
			case "signals/signal":
				err = p.signal(c, ocs)
			case "balises/balise":
				err = p.balise(c, ocs)
			case "trainDetectionElements/trainDetector":
				err = p.trainDetector(c, ocs)
			case "trainDetectionElements/trackCircuitBorder":
				err = p.trackCircuitBorder(c, ocs)
			case "derailers/derailer":
				err = p.derailer(c, ocs)
			case "trainProtectionElements/trainProtectionElement":
				err = p.trainProtectionElement(c, ocs)
			case "trainProtectionElements/trainProtectionElementGroup":
				err = p.trainProtectionGroup(c, ocs)
			default:
				p.unmodeled(c)
				ocs.Raw = append(ocs.Raw, c.raw(group.local()))
			}
			if err != nil {
				return err
			}
		}
		if len(group.children) == 0 {
			p.skip(group, "empty group")
		}
	}
	return nil
}

func identity(el *element) (string, Position, error) {
	id, err := requireAttr(el, "id")
	if err != nil {
		return "", Position{}, err
	}
	pos, err := parsePosition(el)
	if err != nil {
		return "", Position{}, err
	}
	return id, pos, nil
}

func (p *parser) signal(el *element, ocs *OCSElements) error {
	id, pos, err := identity(el)
	if err != nil {
		return err
	}
	dir, err := parseDirection(el, "dir")
	if err != nil {
		return err
	}
	sig := Signal{
		ID:            id,
		Position:      pos,
		Name:          el.str("name"),
		Dir:           dir,
		Sight:         p.lenientFloat(el, "sight"),
		Type:          SignalMain,
		Code:          el.str("code"),
		Switchable:    p.lenientBool(el, "switchable"),
		OCPStationRef: el.str("ocpStationRef"),
	}
	switch t := SignalType(el.str("type")); t {
	case SignalDistant, SignalRepeater, SignalCombined, SignalShunting:
		sig.Type = t
	}
	if f, ok := el.attr("function"); ok {
		switch fn := SignalFunction(f); fn {
		case FunctionExit, FunctionHome, FunctionBlocking, FunctionIntermediate:
			sig.Function = fn
		default:
			sig.Function = FunctionOther
		}
	}
	for _, sp := range el.childrenNamed("speed") {
		speed := SignalSpeed{
			Kind:          sp.str("kind"),
			TrainRelation: sp.str("trainRelation"),
			Switchable:    p.lenientBool(sp, "switchable"),
		}
		if ref := sp.child("speedChangeRef"); ref != nil {
			speed.SpeedChangeRef = ref.str("ref")
		}
		sig.Speeds = append(sig.Speeds, speed)
	}
	if e := el.child("etcs"); e != nil {
		sig.ETCS = &ETCS{
			Level1: p.etcsLevel(e, "level_1", "level1"),
			Level2: p.etcsLevel(e, "level_2", "level2"),
			Level3: p.etcsLevel(e, "level_3", "level3"),
		}
	}
	ocs.Signals = append(ocs.Signals, sig)
	return nil
}

func (p *parser) etcsLevel(el *element, names ...string) *bool {
	for _, n := range names {
		if _, ok := el.attr(n); ok {
			return p.lenientBool(el, n)
		}
	}
	return nil
}

func (p *parser) balise(el *element, ocs *OCSElements) error {
	id, pos, err := identity(el)
	if err != nil {
		return err
	}
	ocs.Balises = append(ocs.Balises, Balise{ID: id, Position: pos, Name: el.str("name")})
	return nil
}

func (p *parser) trainDetector(el *element, ocs *OCSElements) error {
	id, pos, err := identity(el)
	if err != nil {
		return err
	}
	ocs.TrainDetectors = append(ocs.TrainDetectors, TrainDetector{
		ID:                 id,
		Position:           pos,
		AxleCounting:       p.lenientBool(el, "axleCounting"),
		DirectionDetection: p.lenientBool(el, "directionDetection"),
		Medium:             el.str("medium"),
	})
	return nil
}

func (p *parser) trackCircuitBorder(el *element, ocs *OCSElements) error {
	id, pos, err := identity(el)
	if err != nil {
		return err
	}
	ocs.TrackCircuitBorders = append(ocs.TrackCircuitBorders, TrackCircuitBorder{
		ID:            id,
		Position:      pos,
		InsulatedRail: el.str("insulatedRail"),
	})
	return nil
}

func (p *parser) derailer(el *element, ocs *OCSElements) error {
	id, pos, err := identity(el)
	if err != nil {
		return err
	}
	dir, err := parseDirection(el, "dir")
	if err != nil {
		return err
	}
	ocs.Derailers = append(ocs.Derailers, Derailer{
		ID:         id,
		Position:   pos,
		Dir:        dir,
		DerailSide: el.str("derailSide"),
		Code:       el.str("code"),
	})
	return nil
}

func (p *parser) trainProtectionElement(el *element, ocs *OCSElements) error {
	id, pos, err := identity(el)
	if err != nil {
		return err
	}
	dir, err := parseDirection(el, "dir")
	if err != nil {
		return err
	}
	ocs.TrainProtectionElements = append(ocs.TrainProtectionElements, TrainProtectionElement{
		ID:       id,
		Position: pos,
		Dir:      dir,
		Medium:   el.str("medium"),
		System:   el.str("trainProtectionSystem"),
	})
	return nil
}

func (p *parser) trainProtectionGroup(el *element, ocs *OCSElements) error {
	id, err := requireAttr(el, "id")
	if err != nil {
		return err
	}
	grp := TrainProtectionElementGroup{ID: id}
	for _, r := range el.childrenNamed("trainProtectionElementRef") {
		if ref, ok := r.attr("ref"); ok {
			grp.ElementRefs = append(grp.ElementRefs, ref)
		}
	}
	ocs.TrainProtectionElementGroups = append(ocs.TrainProtectionElementGroups, grp)
	return nil
}
