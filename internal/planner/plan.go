package planner

import (
	"github.com/hackguide/advisor/internal/catalog"
	"github.com/hackguide/advisor/internal/intent"
)

const (
	// RankDepth is how many ranked catalog entries the planner considers.
	RankDepth       = 40
	maxAddLater     = 2
	maxAlternatives = 2
)

// Plan is the tool selection for one stack-advice turn.
type Plan struct {
	PrimaryTools     []*catalog.Entry `json:"primaryTools"`
	AddLaterTools    []*catalog.Entry `json:"addLaterTools"`
	AlternativeTools []*catalog.Entry `json:"alternativeTools"`
}

// IDs returns the ids of entries, in order.
func IDs(entries []*catalog.Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.ID
	}
	return out
}

// Names returns the display names of entries, in order.
func Names(entries []*catalog.Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Name
	}
	return out
}

// Sections returns the distinct section titles of entries, first-seen order.
func Sections(entries []*catalog.Entry) []string {
	seen := map[string]bool{}
	var out []string
	for _, e := range entries {
		if !seen[e.Section] {
			seen[e.Section] = true
			out = append(out, e.Section)
		}
	}
	return out
}

type selector struct {
	idx    *catalog.Index
	ranked []*catalog.Entry
	used   map[string]bool
}

// top returns the best unused tool of a category: first from the ranking,
// then from the catalog. It marks the result as used.
func (s *selector) top(c catalog.Category) *catalog.Entry {
	for _, e := range s.ranked {
		if e.Category == c && !s.used[e.ID] {
			s.used[e.ID] = true
			return e
		}
	}
	for _, e := range s.idx.ByCategory(c) {
		if !s.used[e.ID] {
			s.used[e.ID] = true
			return e
		}
	}
	return nil
}

// Build selects primary, add-later and alternative tools for the intent.
//
// One development tool is seated first, then one tool per required
// capability in the order AI API, database, auth, deployment. Ambiguous auth
// and database, and deployment for non-simple scope when not required, are
// deferred to add-later. Primary overflow beyond MaxPrimaryTools moves to the
// front of add-later, most recently added first.
func Build(idx *catalog.Index, in intent.StackIntent, latest string) Plan {
	s := &selector{
		idx:    idx,
		ranked: idx.Rank(latest, RankDepth),
		used:   map[string]bool{},
	}

	var primary, later []*catalog.Entry

	if dev := s.top(catalog.CategoryDevelopment); dev != nil {
		primary = append(primary, dev)
	}

	var required []catalog.Category
	if in.Requires.AIAPI {
		required = append(required, catalog.CategoryAPI)
	}
	if in.Requires.Database {
		required = append(required, catalog.CategoryDatabase)
	}
	if in.Requires.Auth {
		required = append(required, catalog.CategoryAuth)
	}
	if in.Requires.Deployment {
		required = append(required, catalog.CategoryDeployment)
	}
	for _, c := range required {
		if e := s.top(c); e != nil {
			primary = append(primary, e)
		}
	}

	if in.Ambiguous.Auth {
		if e := s.top(catalog.CategoryAuth); e != nil {
			later = append(later, e)
		}
	}
	if in.Ambiguous.Database {
		if e := s.top(catalog.CategoryDatabase); e != nil {
			later = append(later, e)
		}
	}
	if !in.Requires.Deployment && in.Complexity != intent.ComplexitySimple {
		if e := s.top(catalog.CategoryDeployment); e != nil {
			later = append(later, e)
		}
	}

	for len(primary) > in.MaxPrimaryTools && len(primary) > 0 {
		overflow := primary[len(primary)-1]
		primary = primary[:len(primary)-1]
		later = append([]*catalog.Entry{overflow}, later...)
	}

	taken := map[string]bool{}
	for _, e := range primary {
		taken[e.ID] = true
	}
	for _, e := range later {
		taken[e.ID] = true
	}
	var alternatives []*catalog.Entry
	for _, c := range []catalog.Category{catalog.CategoryDevelopment, catalog.CategoryDeployment} {
		for _, e := range s.ranked {
			if e.Category == c && !taken[e.ID] {
				alternatives = append(alternatives, e)
				break
			}
		}
	}

	return Plan{
		PrimaryTools:     dedupe(primary, 0),
		AddLaterTools:    dedupe(later, maxAddLater),
		AlternativeTools: dedupe(alternatives, maxAlternatives),
	}
}

// dedupe drops repeated ids and truncates to limit when limit > 0.
func dedupe(entries []*catalog.Entry, limit int) []*catalog.Entry {
	seen := map[string]bool{}
	out := make([]*catalog.Entry, 0, len(entries))
	for _, e := range entries {
		if seen[e.ID] {
			continue
		}
		seen[e.ID] = true
		out = append(out, e)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}
