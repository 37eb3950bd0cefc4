package railml

import (
	"fmt"
	"strings"
)

// Version is a supported railML schema version
type Version string

const (
	Version23 Version = "2.3"
	Version24 Version = "2.4"
	Version25 Version = "2.5"
)

// SupportedVersions lists the versions the parser and writer handle
var SupportedVersions = []Version{Version23, Version24, Version25}

var namespaces = map[Version]string{
	Version23: "http://www.railml.org/schemas/2016",
	Version24: "https://www.railml.org/schemas/2019",
	Version25: "https://www.railml.org/schemas/2021",
}

const (
	dcNamespace  = "http://purl.org/dc/elements/1.1/"
	xsiNamespace = "http://www.w3.org/2001/XMLSchema-instance"
)

// Namespace returns the default namespace of the version
func (v Version) Namespace() string {
	return namespaces[v]
}

// SchemaLocation returns the xsi:schemaLocation value for the version
func (v Version) SchemaLocation() string {
	return fmt.Sprintf("%s https://www.railml.org/schemas/%s/railML-%s/railML.xsd", v.Namespace(), yearOf(v), v)
}

// Valid reports whether v is one of the supported versions
func (v Version) Valid() bool {
	_, ok := namespaces[v]
	return ok
}

// legacySpelling reports whether v writes lang without the xml prefix,
// ETCS levels as level1 to level3 and geoCoord as an attribute
func (v Version) legacySpelling() bool {
	return v == Version23
}

func (v Version) String() string {
	return string(v)
}

func yearOf(v Version) string {
	ns := v.Namespace()
	return ns[strings.LastIndex(ns, "/")+1:]
}

// ParseVersion normalizes "2.4", "2.4.1" or "v2.4" to a supported version
func ParseVersion(s string) (Version, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "v")
	parts := strings.Split(s, ".")
	if len(parts) >= 2 {
		v := Version(parts[0] + "." + parts[1])
		if v.Valid() {
			return v, nil
		}
	}
	return "", fmt.Errorf("unsupported railML version %q", s)
}

// versionFromNamespace maps a namespace URI to a version, ignoring scheme differences
func versionFromNamespace(ns string) (Version, bool) {
	trimmed := strings.TrimPrefix(strings.TrimPrefix(ns, "https://"), "http://")
	for v, candidate := range namespaces {
		c := strings.TrimPrefix(strings.TrimPrefix(candidate, "https://"), "http://")
		if c == trimmed {
			return v, true
		}
	}
	return "", false
}
