// Package mileage assigns absolute positions to every point of interest of
// every track, either from the positions written in the file or estimated
// along the topology graph.
package mileage

import (
	"fmt"
	"strings"

	"railio/internal/application"
)

// Mode selects how absolute positions are derived
type Mode string

const (
	FromFile  Mode = "fromFile"
	Estimated Mode = "estimated"
)

// Fallback says when a FromFile track may be estimated instead
type Fallback string

const (
	// FallbackNone never estimates; tracks without absolute data use pos as mileage
	FallbackNone Fallback = "none"
	// FallbackMissing estimates tracks with no absolute data at all
	FallbackMissing Fallback = "missing"
	// FallbackInconsistent also estimates tracks whose data is contradictory
	FallbackInconsistent Fallback = "inconsistent"
)

// Policy is the mileage configuration of one import
type Policy struct {
	Mode     Mode
	Fallback Fallback
}

// DefaultPolicy reads positions from the file and estimates only where they are missing
func DefaultPolicy() Policy {
	return Policy{Mode: FromFile, Fallback: FallbackMissing}
}

func (p Policy) String() string {
	if p.Mode == Estimated {
		return string(Estimated)
	}
	return fmt.Sprintf("%s/%s", p.Mode, p.Fallback)
}

// Validate checks that mode and fallback are known values
func (p Policy) Validate() error {
	if err := application.ValidateOneOf("mileagePolicy", string(p.Mode), []string{string(FromFile), string(Estimated)}); err != nil {
		return err
	}
	return application.ValidateOneOf("fallback", string(p.Fallback),
		[]string{string(FallbackNone), string(FallbackMissing), string(FallbackInconsistent)})
}

// ParseMode accepts the mode names case-insensitively, e.g. "estimated" or "FromFile"
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "fromfile", "from-file", "file":
		return FromFile, nil
	case "estimated", "estimate":
		return Estimated, nil
	}
	return "", &application.ValidationError{Field: "mileagePolicy", Message: fmt.Sprintf("unknown mileage policy %q", s)}
}

// ParseFallback accepts none, missing or inconsistent
func ParseFallback(s string) (Fallback, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "missing":
		return FallbackMissing, nil
	case "none", "off":
		return FallbackNone, nil
	case "inconsistent", "all":
		return FallbackInconsistent, nil
	}
	return "", &application.ValidationError{Field: "fallback", Message: fmt.Sprintf("unknown fallback %q", s)}
}
