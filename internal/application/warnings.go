package application

import "sort"

// Warning is a non-fatal diagnostic returned alongside a usable model
type Warning interface {
	// Code identifies the warning class, e.g. "unmapped-element"
	Code() string
	// Subject is the id of the element, track or node the warning is about
	Subject() string
	Warning() string
}

// Warnings is an accumulated list of non-fatal diagnostics
type Warnings []Warning

// Add appends warnings, ignoring nil entries
func (ws *Warnings) Add(more ...Warning) {
	for _, w := range more {
		if w != nil {
			*ws = append(*ws, w)
		}
	}
}

// ByCode counts warnings per code
func (ws Warnings) ByCode() map[string]int {
	counts := make(map[string]int)
	for _, w := range ws {
		counts[w.Code()]++
	}
	return counts
}

// Messages returns the warning texts sorted by code then subject
func (ws Warnings) Messages() []string {
	sorted := append(Warnings(nil), ws...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Code() != sorted[j].Code() {
			return sorted[i].Code() < sorted[j].Code()
		}
		return sorted[i].Subject() < sorted[j].Subject()
	})
	out := make([]string, len(sorted))
	for i, w := range sorted {
		out[i] = w.Warning()
	}
	return out
}
