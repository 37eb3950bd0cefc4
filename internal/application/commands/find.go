package commands

import (
	"sort"
	"strings"

	"railio/internal/domain"
)

// Match is a model element found by Find
type Match struct {
	ID      string
	Name    string
	Type    string // "track", "node", "ocp" or an object kind
	TrackID string
	Score   int
}

// Find searches track, node, OCP and object ids and names of a model with fuzzy matching
func Find(model *domain.RailwayModel, query string) []Match {
	if model == nil || len(query) < 2 {
		return nil
	}

	var candidates []Match
	for _, t := range model.Tracks {
		candidates = append(candidates, Match{ID: t.ID, Name: t.Name, Type: "track", TrackID: t.ID})
	}
	if g := model.Graph; g != nil {
		for _, n := range g.Nodes {
			candidates = append(candidates, Match{ID: n.ID, Type: "node." + string(n.Kind), TrackID: n.TrackID})
		}
	}
	for _, o := range model.OCPs {
		candidates = append(candidates, Match{ID: o.ID, Name: o.Name, Type: "ocp"})
	}
	for _, o := range model.Objects {
		candidates = append(candidates, Match{ID: o.ID, Name: o.Name, Type: string(o.Kind), TrackID: o.TrackID})
	}

	return FuzzySort(candidates, query)
}

// FuzzyScore calculates a relevance score for how well target matches query
func FuzzyScore(target, query string) int {
	target = strings.ToLower(target)
	query = strings.ToLower(query)

	if len(query) == 0 {
		return 0
	}

	// Check for exact substring match first (highest priority)
	if strings.Contains(target, query) {
		score := 100
		// Bonus if it starts with query
		if strings.HasPrefix(target, query) {
			score += 50
		}
		return score
	}

	// Fuzzy match: check if chars appear in order
	score := 0
	queryIdx := 0
	prevMatchIdx := -1

	for i := 0; i < len(target) && queryIdx < len(query); i++ {
		if target[i] == query[queryIdx] {
			if prevMatchIdx == i-1 {
				score += 10 // consecutive chars
			}
			if i == 0 {
				score += 15 // start of string
			}
			if i > 0 && (target[i-1] == ' ' || target[i-1] == '_' || target[i-1] == '-') {
				score += 10 // after separator
			}
			score += 1
			prevMatchIdx = i
			queryIdx++
		}
	}

	if queryIdx == len(query) {
		return score
	}
	return 0
}

// FuzzySort scores candidates by id and name, dropping non-matches, best first
func FuzzySort(candidates []Match, query string) []Match {
	scored := make([]Match, 0, len(candidates))

	for _, m := range candidates {
		best := max(FuzzyScore(m.ID, query), FuzzyScore(m.Name, query))
		if best > 0 {
			m.Score = best
			scored = append(scored, m)
		}
	}

	// Sort by score descending, then id for stable output
	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].ID < scored[j].ID
	})

	return scored
}
