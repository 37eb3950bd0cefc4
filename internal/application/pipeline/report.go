package pipeline

import (
	"fmt"
	"sort"
	"strings"

	"railio/internal/application"
	"railio/internal/domain"
	"railio/internal/railml"
)

// Report collects what an import noticed without failing
type Report struct {
	Source      string
	Version     string
	Policy      string
	Diagnostics []railml.Diagnostic
	Warnings    application.Warnings
	Counts      map[string]int
}

func (r *Report) count(m *domain.RailwayModel) {
	r.Counts = map[string]int{
		"tracks":   len(m.Tracks),
		"objects":  len(m.Objects),
		"ocps":     len(m.OCPs),
		"lines":    len(m.Lines),
		"vehicles": len(m.Vehicles),
	}
	if g := m.Graph; g != nil {
		r.Counts["nodes"] = len(g.Nodes)
		r.Counts["edges"] = len(g.Edges)
		r.Counts["junctions"] = len(g.Junctions())
		r.Counts["macros"] = len(g.Macros)
	}
	for kind, n := range m.CountByKind() {
		r.Counts["objects."+string(kind)] = n
	}
}

// Clean reports whether the import raised neither warnings nor diagnostics
func (r Report) Clean() bool {
	return len(r.Warnings) == 0 && len(r.Diagnostics) == 0
}

// Summary renders the report as plain text lines
func (r Report) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "source:   %s\n", r.Source)
	fmt.Fprintf(&b, "version:  %s\n", r.Version)
	fmt.Fprintf(&b, "mileage:  %s\n", r.Policy)

	keys := make([]string, 0, len(r.Counts))
	for k := range r.Counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, "  %-24s %d\n", k, r.Counts[k])
	}

	if len(r.Diagnostics) > 0 {
		fmt.Fprintf(&b, "diagnostics (%d):\n", len(r.Diagnostics))
		for _, d := range r.Diagnostics {
			fmt.Fprintf(&b, "  %s\n", d)
		}
	}
	if len(r.Warnings) > 0 {
		fmt.Fprintf(&b, "warnings (%d):\n", len(r.Warnings))
		for _, msg := range r.Warnings.Messages() {
			fmt.Fprintf(&b, "  %s\n", msg)
		}
	}
	return b.String()
}
