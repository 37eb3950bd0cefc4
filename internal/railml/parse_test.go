package railml

import (
	"errors"
	"strings"
	"testing"

	"railio/internal/application"
	"railio/internal/railml/railmltest"
)

func TestParse_StationVersions(t *testing.T) {
	for _, v := range railmltest.StationVersions {
		t.Run(v, func(t *testing.T) {
			doc, err := Parse(railmltest.Station(v))
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if doc.Version.String() != v {
				t.Errorf("expected version %s, got %s", v, doc.Version)
			}
			if doc.Infrastructure == nil || len(doc.Infrastructure.Tracks) != 5 {
				t.Fatalf("expected 5 tracks, got %+v", doc.Infrastructure)
			}

			t1 := doc.Infrastructure.Tracks[0]
			if len(t1.Junctions) != 3 || len(t1.CrossSections) != 1 {
				t.Errorf("expected 3 junctions and 1 cross section, got %d/%d", len(t1.Junctions), len(t1.CrossSections))
			}
			if t1.Begin.Conn.Kind != EndKindBufferStop || t1.End.Conn.Kind != EndKindOpenEnd {
				t.Errorf("unexpected end kinds %s/%s", t1.Begin.Conn.Kind, t1.End.Conn.Kind)
			}
			if len(t1.OCS.TrainDetectors) != 2 || len(t1.OCS.Balises) != 1 || len(t1.Elements.PlatformEdges) != 1 {
				t.Errorf("unexpected element counts: %+v", t1.OCS)
			}

			sig := t1.OCS.Signals[0]
			if sig.Position.GeoCoord == nil || sig.Position.GeoCoord.Coord != "150.0 2.0" {
				t.Errorf("signal geoCoord not parsed: %+v", sig.Position.GeoCoord)
			}
			if sig.ETCS == nil || sig.ETCS.Level1 == nil || !*sig.ETCS.Level1 {
				t.Errorf("etcs level not parsed: %+v", sig.ETCS)
			}

			ocp := doc.Infrastructure.OCPs[0]
			if ocp.Lang != "de" || len(ocp.AdditionalNames) != 1 || ocp.AdditionalNames[0].Name != "Prüfstadt" {
				t.Errorf("ocp names not parsed: %+v", ocp)
			}
			if doc.Metadata == nil || doc.Metadata.Title != "Testville" {
				t.Errorf("metadata not parsed: %+v", doc.Metadata)
			}

			if len(doc.Diagnostics) != 1 {
				t.Fatalf("expected one diagnostic, got %v", doc.Diagnostics)
			}
			d := doc.Diagnostics[0]
			if d.Code != DiagUnmodeled || d.Element != "bridge" || d.ID != "br1" || d.Line == 0 {
				t.Errorf("unexpected diagnostic %+v", d)
			}
			if !strings.HasSuffix(d.Path, "/trackElements/bridges/bridge[br1]") {
				t.Errorf("unexpected diagnostic path %s", d.Path)
			}
		})
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		opts     []ParseOption
		expected string
	}{
		{
			name:     "malformed markup",
			input:    `<railml version="2.5"><infrastructure></railml>`,
			expected: "",
		},
		{
			name:     "empty input",
			input:    ``,
			expected: "root element",
		},
		{
			name:     "wrong root",
			input:    `<network version="2.5"/>`,
			expected: "railml root element",
		},
		{
			name:     "unsupported version",
			input:    `<railml version="3.1"/>`,
			expected: "version 2.3, 2.4 or 2.5",
		},
		{
			name:     "no version anywhere",
			input:    `<railml/>`,
			expected: "version attribute or railML 2.x namespace",
		},
		{
			name:     "missing track topology",
			input:    string(railmltest.MissingTopology()),
			expected: "child element <trackTopology>",
		},
		{
			name: "unterminated track end",
			input: `<railml version="2.5"><infrastructure><tracks><track id="t"><trackTopology>
				<trackBegin id="b" pos="0"><bufferStop/></trackBegin><trackEnd id="e" pos="10"/>
				</trackTopology></track></tracks></infrastructure></railml>`,
			expected: "connection, bufferStop, openEnd or macroscopicNode",
		},
		{
			name: "position is not a number",
			input: `<railml version="2.5"><infrastructure><tracks><track id="t"><trackTopology>
				<trackBegin id="b" pos="north"><bufferStop/></trackBegin><trackEnd id="e" pos="10"><bufferStop/></trackEnd>
				</trackTopology></track></tracks></infrastructure></railml>`,
			expected: `number in attribute "pos"`,
		},
		{
			name: "position is not finite",
			input: `<railml version="2.5"><infrastructure><tracks><track id="t"><trackTopology>
				<trackBegin id="b" pos="NaN"><bufferStop/></trackBegin><trackEnd id="e" pos="10"><bufferStop/></trackEnd>
				</trackTopology></track></tracks></infrastructure></railml>`,
			expected: `number in attribute "pos"`,
		},
		{
			name: "absolute position is infinite",
			input: `<railml version="2.5"><infrastructure><tracks><track id="t"><trackTopology>
				<trackBegin id="b" pos="0" absPos="+Inf"><bufferStop/></trackBegin><trackEnd id="e" pos="10"><bufferStop/></trackEnd>
				</trackTopology></track></tracks></infrastructure></railml>`,
			expected: `number in attribute "absPos"`,
		},
		{
			name:     "second root element",
			input:    `<railml version="2.5"><infrastructure/></railml><railml version="2.5"/>`,
			expected: "end of document",
		},
		{
			name: "unknown orientation",
			input: `<railml version="2.5"><infrastructure><tracks><track id="t"><trackTopology>
				<trackBegin id="b" pos="0"><bufferStop/></trackBegin><trackEnd id="e" pos="10"><bufferStop/></trackEnd>
				<connections><switch id="s" pos="5"><connection id="c" ref="x" orientation="sideways"/></switch></connections>
				</trackTopology></track></tracks></infrastructure></railml>`,
			expected: "orientation",
		},
		{
			name: "unknown junction kind",
			input: `<railml version="2.5"><infrastructure><tracks><track id="t"><trackTopology>
				<trackBegin id="b" pos="0"><bufferStop/></trackBegin><trackEnd id="e" pos="10"><bufferStop/></trackEnd>
				<connections><turntable id="tt" pos="5"/></connections>
				</trackTopology></track></tracks></infrastructure></railml>`,
			expected: "switch or crossing",
		},
		{
			name: "signal without id",
			input: `<railml version="2.5"><infrastructure><tracks><track id="t"><trackTopology>
				<trackBegin id="b" pos="0"><bufferStop/></trackBegin><trackEnd id="e" pos="10"><bufferStop/></trackEnd>
				</trackTopology><ocsElements><signals><signal pos="2"/></signals></ocsElements></track></tracks></infrastructure></railml>`,
			expected: `attribute "id"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.input), tt.opts...)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !errors.Is(err, application.ErrParse) {
				t.Errorf("expected ErrParse, got %v", err)
			}
			var pe *ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("expected *ParseError, got %T", err)
			}
			if tt.expected != "" && !strings.Contains(pe.Expected, tt.expected) {
				t.Errorf("expected %q in %q", tt.expected, pe.Expected)
			}
		})
	}
}

func TestParse_ErrorLocatesElement(t *testing.T) {
	_, err := Parse(railmltest.MissingTopology())

	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected *ParseError, got %v", err)
	}
	if pe.Path != "/railml/infrastructure/tracks/track[t]" {
		t.Errorf("unexpected path %s", pe.Path)
	}
	if pe.Line != 5 {
		t.Errorf("expected line 5, got %d", pe.Line)
	}
}

func TestParse_VersionDetection(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		opts    []ParseOption
		want    Version
		wantErr bool
	}{
		{
			name:  "attribute wins",
			input: `<railml xmlns="http://www.railml.org/schemas/2016" version="2.4.1"/>`,
			want:  Version24,
		},
		{
			name:  "namespace",
			input: `<railml xmlns="https://www.railml.org/schemas/2021"/>`,
			want:  Version25,
		},
		{
			name:  "namespace with other scheme",
			input: `<railml xmlns="https://www.railml.org/schemas/2016"/>`,
			want:  Version23,
		},
		{
			name:  "declared fallback",
			input: `<railml/>`,
			opts:  []ParseOption{WithVersion(Version24)},
			want:  Version24,
		},
		{
			name:    "invalid declared fallback",
			input:   `<railml/>`,
			opts:    []ParseOption{WithVersion("2.9")},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Parse([]byte(tt.input), tt.opts...)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Parse() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && doc.Version != tt.want {
				t.Errorf("expected %s, got %s", tt.want, doc.Version)
			}
		})
	}
}

func TestParseVersion(t *testing.T) {
	tests := []struct {
		input   string
		want    Version
		wantErr bool
	}{
		{input: "2.3", want: Version23},
		{input: "2.4.1", want: Version24},
		{input: "v2.5", want: Version25},
		{input: " 2.5 ", want: Version25},
		{input: "2.6", wantErr: true},
		{input: "3", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseVersion(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseVersion() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestParse_LenientAttributes(t *testing.T) {
	input := `<railml version="2.5"><infrastructure><tracks><track id="t"><trackTopology>
		<trackBegin id="b" pos="0"><bufferStop/></trackBegin><trackEnd id="e" pos="10"><bufferStop/></trackEnd>
		</trackTopology><trackElements><platformEdges>
		<platformEdge id="pe" pos="3" height="tall" length="120"/>
		</platformEdges></trackElements></track></tracks></infrastructure></railml>`

	doc, err := Parse([]byte(input))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	pe := doc.Infrastructure.Tracks[0].Elements.PlatformEdges[0]
	if pe.Height != nil {
		t.Errorf("expected invalid height to be dropped, got %v", *pe.Height)
	}
	if pe.Length == nil || *pe.Length != 120 {
		t.Errorf("expected length 120, got %v", pe.Length)
	}
	if len(doc.Diagnostics) != 1 || doc.Diagnostics[0].Code != DiagInvalidValue {
		t.Errorf("expected one invalid-value diagnostic, got %v", doc.Diagnostics)
	}
}

func TestParse_SkipsUnmodeledSections(t *testing.T) {
	input := `<railml version="2.3"><timetable/><infrastructure><infraAttrGroups/><tracks/></infrastructure></railml>`

	doc, err := Parse([]byte(input))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	var skipped []string
	for _, d := range doc.Diagnostics {
		if d.Code == DiagSkipped {
			skipped = append(skipped, d.Element)
		}
	}
	if strings.Join(skipped, ",") != "timetable,infraAttrGroups" {
		t.Errorf("unexpected skipped elements %v", skipped)
	}
}

func TestParse_Latin1(t *testing.T) {
	input := "<?xml version=\"1.0\" encoding=\"ISO-8859-1\"?>\n" +
		"<railml version=\"2.5\"><infrastructure id=\"i\" name=\"Pr\xfcfstadt\"/></railml>"

	doc, err := Parse([]byte(input))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if doc.Infrastructure.Name != "Prüfstadt" {
		t.Errorf("expected decoded name, got %q", doc.Infrastructure.Name)
	}
}

func TestParse_UnknownCharset(t *testing.T) {
	input := "<?xml version=\"1.0\" encoding=\"EBCDIC\"?>\n<railml version=\"2.5\"/>"

	if _, err := Parse([]byte(input)); !errors.Is(err, application.ErrParse) {
		t.Errorf("expected ErrParse, got %v", err)
	}
}
