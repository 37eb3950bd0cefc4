// Package railmltest provides railML documents shared by the tests of the
// parser, the pipeline stages and the commands.
package railmltest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// Station is a small station in the given version ("2.3", "2.4" or "2.5").
//
// Track t1 runs from 0 to 1000 with switches sw1 (200) and sw2 (500) and
// crossing cr1 (700). Tracks t2 to t5 hang off those junctions. t1 carries
// one platform edge, two train detectors, one balise, a signal, a speed
// change, a cross section and an unmodeled bridge. No element has absPos.
// The three versions describe the same infrastructure with the attribute
// spellings of their schema.
func Station(version string) []byte {
	v := stationVariants[version]
	if v.namespace == "" {
		panic(fmt.Sprintf("railmltest: no station fixture for version %q", version))
	}
	r := strings.NewReplacer(
		"{ROOT}", v.root,
		"{LANG}", v.lang,
		"{SIGGEO}", v.signalGeo,
		"{OCPGEO}", v.ocpGeo,
		"{ETCS}", v.etcs,
	)
	return []byte(r.Replace(stationTemplate))
}

type variant struct {
	namespace string
	root      string
	lang      string
	signalGeo string
	ocpGeo    string
	etcs      string
}

var stationVariants = map[string]variant{
	"2.3": {
		namespace: "http://www.railml.org/schemas/2016",
		root:      `xmlns="http://www.railml.org/schemas/2016" xmlns:dc="http://purl.org/dc/elements/1.1/" version="2.3"`,
		lang:      `lang="de"`,
		signalGeo: ` geoCoord="150.0 2.0"`,
		ocpGeo:    ``,
		etcs:      `<etcs level1="true" level2="false"/>`,
	},
	"2.4": {
		namespace: "https://www.railml.org/schemas/2019",
		root:      `xmlns="https://www.railml.org/schemas/2019" xmlns:dc="http://purl.org/dc/elements/1.1/"`,
		lang:      `xml:lang="de"`,
		signalGeo: `><geoCoord coord="150.0 2.0"/`,
		ocpGeo:    `<geoCoord coord="300.0 0.0"/>`,
		etcs:      `<etcs level_1="true" level_2="false"/>`,
	},
	"2.5": {
		namespace: "https://www.railml.org/schemas/2021",
		root:      `xmlns="https://www.railml.org/schemas/2021" xmlns:dc="http://purl.org/dc/elements/1.1/" version="2.5"`,
		lang:      `xml:lang="de"`,
		signalGeo: `><geoCoord coord="150.0 2.0" epsgCode="EPSG:4326"/`,
		ocpGeo:    `<geoCoord coord="300.0 0.0" epsgCode="EPSG:4326"/>`,
		etcs:      `<etcs level_1="true" level_2="false"/>`,
	},
}

// the signal's geoCoord is spliced into its start tag: either as an attribute
// or by closing the tag early and opening a child, which the template closes
const stationTemplate = `<?xml version="1.0" encoding="UTF-8"?>
<railml {ROOT}>
  <metadata>
    <dc:title>Testville</dc:title>
    <dc:creator>railio</dc:creator>
    <organizationalUnits>
      <infrastructureManager id="im1" code="IM" name="Infra Manager"/>
    </organizationalUnits>
  </metadata>
  <infrastructure id="inf1" name="Testville">
    <tracks>
      <track id="t1" name="Main" type="mainTrack" mainDir="up">
        <trackTopology>
          <trackBegin id="t1b" pos="0.0"><bufferStop id="t1bs"/></trackBegin>
          <trackEnd id="t1e" pos="1000.0"><openEnd id="t1oe"/></trackEnd>
          <connections>
            <switch id="sw1" pos="200.0" trackContinueCourse="right" normalPosition="straight">
              <connection id="sw1c" ref="t2bc" orientation="outgoing" course="left" radius="300.0" maxSpeed="60.0" passable="true"/>
            </switch>
            <switch id="sw2" pos="500.0">
              <connection id="sw2c" ref="t3ec" orientation="incoming" course="right"/>
            </switch>
            <crossing id="cr1" pos="700.0">
              <connection id="cr1a" ref="t4ec" orientation="incoming"/>
              <connection id="cr1b" ref="t5bc" orientation="outgoing"/>
            </crossing>
          </connections>
          <crossSections>
            <crossSection id="cs1" name="Platform 1" ocpRef="ocp1" pos="300.0" type="station"/>
          </crossSections>
        </trackTopology>
        <trackElements>
          <speedChanges>
            <speedChange id="sc1" pos="100.0" dir="up" vMax="80" signalised="true"/>
          </speedChanges>
          <platformEdges>
            <platformEdge id="pe1" name="1" pos="300.0" dir="up" side="right" height="550.0" length="200.0"/>
          </platformEdges>
          <bridges>
            <bridge id="br1" pos="600.0" length="40.0" name="Old Bridge"><note>steel</note></bridge>
          </bridges>
        </trackElements>
        <ocsElements>
          <signals>
            <signal id="sig1" pos="150.0" name="A" dir="up" type="main" function="home"{SIGGEO}>
              <speed kind="execution" trainRelation="headOfTrain"><speedChangeRef ref="sc1"/></speed>
              {ETCS}
            </signal>
          </signals>
          <trainDetectionElements>
            <trainDetector id="td1" pos="120.0" axleCounting="true"/>
            <trainDetector id="td2" pos="480.0" axleCounting="true" directionDetection="false"/>
          </trainDetectionElements>
          <balises>
            <balise id="bl1" pos="160.0" name="B1"/>
          </balises>
        </ocsElements>
      </track>
      <track id="t2" name="Siding">
        <trackTopology>
          <trackBegin id="t2b" pos="0.0"><connection id="t2bc" ref="sw1c"/></trackBegin>
          <trackEnd id="t2e" pos="300.0"><bufferStop id="t2bs"/></trackEnd>
        </trackTopology>
      </track>
      <track id="t3" name="Loop">
        <trackTopology>
          <trackBegin id="t3b" pos="0.0"><bufferStop id="t3bs"/></trackBegin>
          <trackEnd id="t3e" pos="250.0"><connection id="t3ec" ref="sw2c"/></trackEnd>
        </trackTopology>
      </track>
      <track id="t4" name="Cross West">
        <trackTopology>
          <trackBegin id="t4b" pos="0.0"><macroscopicNode id="mn1" name="West" ocpRef="ocp1"/></trackBegin>
          <trackEnd id="t4e" pos="100.0"><connection id="t4ec" ref="cr1a"/></trackEnd>
        </trackTopology>
      </track>
      <track id="t5" name="Cross East">
        <trackTopology>
          <trackBegin id="t5b" pos="0.0"><connection id="t5bc" ref="cr1b"/></trackBegin>
          <trackEnd id="t5e" pos="100.0"><openEnd id="t5oe"/></trackEnd>
        </trackTopology>
      </track>
    </tracks>
    <trackGroups>
      <line id="l1" name="Main line" infrastructureManagerRef="im1">
        <trackRef ref="t1" sequence="1"/>
        <trackRef ref="t2" sequence="2"/>
      </line>
    </trackGroups>
    <operationControlPoints>
      <ocp id="ocp1" name="Testville" {LANG} type="station">
        <additionalName name="Prüfstadt" {LANG}/>
        <propOperational operationalType="station" trafficType="passenger"/>
        <propService passenger="true"/>
        <propEquipment>
          <summary hasHomeSignals="true" signalBox="TV"/>
          <trackRef ref="t1"/>
        </propEquipment>
        {OCPGEO}
        <designator register="DB640" entry="TV"/>
      </ocp>
    </operationControlPoints>
    <states>
      <state id="st1" disabled="false" status="operational"/>
    </states>
  </infrastructure>
  <rollingstock>
    <vehicles>
      <vehicle id="v1" name="Railcar" length="25.0" speed="120.0"/>
    </vehicles>
  </rollingstock>
</railml>
`

// StationVersions lists the versions Station is available in
var StationVersions = []string{"2.3", "2.4", "2.5"}

// InconsistentMileage is one track whose elements carry absPos 0, 50, 120, 80 in pos order
func InconsistentMileage() []byte {
	return []byte(`<?xml version="1.0" encoding="UTF-8"?>
<railml xmlns="https://www.railml.org/schemas/2021" version="2.5">
  <infrastructure id="inf2">
    <tracks>
      <track id="m1">
        <trackTopology>
          <trackBegin id="m1b" pos="0.0"><bufferStop/></trackBegin>
          <trackEnd id="m1e" pos="200.0"><bufferStop/></trackEnd>
        </trackTopology>
        <ocsElements>
          <signals>
            <signal id="s1" pos="10.0" absPos="0.0"/>
            <signal id="s2" pos="20.0" absPos="50.0"/>
            <signal id="s3" pos="30.0" absPos="120.0"/>
            <signal id="s4" pos="40.0" absPos="80.0"/>
          </signals>
        </ocsElements>
      </track>
    </tracks>
  </infrastructure>
</railml>
`)
}

// ConflictingClaim has connections c1 and c3 both referring to the track begin connection c2
func ConflictingClaim() []byte {
	return []byte(`<?xml version="1.0" encoding="UTF-8"?>
<railml xmlns="https://www.railml.org/schemas/2019" version="2.4">
  <infrastructure id="inf3">
    <tracks>
      <track id="a">
        <trackTopology>
          <trackBegin id="ab" pos="0.0"><bufferStop/></trackBegin>
          <trackEnd id="ae" pos="100.0"><connection id="c1" ref="c2"/></trackEnd>
        </trackTopology>
      </track>
      <track id="b">
        <trackTopology>
          <trackBegin id="bb" pos="0.0"><connection id="c2" ref="c1"/></trackBegin>
          <trackEnd id="be" pos="100.0"><bufferStop/></trackEnd>
        </trackTopology>
      </track>
      <track id="c">
        <trackTopology>
          <trackBegin id="cb" pos="0.0"><bufferStop/></trackBegin>
          <trackEnd id="ce" pos="100.0"><connection id="c3" ref="c2"/></trackEnd>
        </trackTopology>
      </track>
    </tracks>
  </infrastructure>
</railml>
`)
}

// PlatformTrack is a single track with one platform edge, two detectors and one balise, all with absPos
func PlatformTrack() []byte {
	return []byte(`<?xml version="1.0" encoding="UTF-8"?>
<railml xmlns="http://www.railml.org/schemas/2016" version="2.3">
  <infrastructure id="inf4">
    <tracks>
      <track id="p1">
        <trackTopology>
          <trackBegin id="p1b" pos="0.0" absPos="1200.0"><bufferStop/></trackBegin>
          <trackEnd id="p1e" pos="400.0" absPos="1600.0"><bufferStop/></trackEnd>
        </trackTopology>
        <trackElements>
          <platformEdges>
            <platformEdge id="pe1" pos="100.0" absPos="1300.0" length="150.0"/>
          </platformEdges>
        </trackElements>
        <ocsElements>
          <trainDetectionElements>
            <trainDetector id="td1" pos="50.0" absPos="1250.0"/>
            <trainDetector id="td2" pos="350.0" absPos="1550.0"/>
          </trainDetectionElements>
          <balises>
            <balise id="bl1" pos="80.0" absPos="1280.0"/>
          </balises>
        </ocsElements>
      </track>
    </tracks>
  </infrastructure>
</railml>
`)
}

// MissingTopology lacks the trackTopology required to place track t
func MissingTopology() []byte {
	return []byte(`<?xml version="1.0" encoding="UTF-8"?>
<railml xmlns="https://www.railml.org/schemas/2021" version="2.5">
  <infrastructure>
    <tracks>
      <track id="t"/>
    </tracks>
  </infrastructure>
</railml>
`)
}

// Write stores data under dir and returns the path
func Write(t *testing.T, dir, name string, data []byte) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("failed to write fixture %s: %v", name, err)
	}
	return path
}
