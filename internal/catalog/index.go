package catalog

import (
	"errors"
	"regexp"
	"sort"
	"strings"
)

// ErrToolNotFound is returned by Lookup for unknown tool ids.
var ErrToolNotFound = errors.New("tool not found")

// DefaultRankLimit is used by Rank when the caller passes limit <= 0.
const DefaultRankLimit = 20

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// Normalize lower-cases s and collapses every run of non-alphanumeric
// characters into a single space.
func Normalize(s string) string {
	return strings.TrimSpace(nonAlnum.ReplaceAllString(strings.ToLower(s), " "))
}

// Tokenize returns the normalized words of s that are at least 3 characters long.
func Tokenize(s string) []string {
	var tokens []string
	for _, tok := range strings.Split(Normalize(s), " ") {
		if len(tok) >= 3 {
			tokens = append(tokens, tok)
		}
	}
	return tokens
}

// curatedAliases lists extra names the assistant may use for a tool, keyed by tool id.
var curatedAliases = map[string][]string{
	"openai":      {"openai", "openai api"},
	"nextauth":    {"nextauth", "next auth", "authjs", "auth js"},
	"claude-code": {"claude", "claude code"},
}

func aliasesFor(id, name string) []string {
	aliases := []string{name}
	seen := map[string]bool{name: true}
	for _, a := range curatedAliases[id] {
		if !seen[a] {
			seen[a] = true
			aliases = append(aliases, a)
		}
	}
	return aliases
}

// Index is an immutable, flattened view of the tool catalog. It is safe for
// concurrent use.
type Index struct {
	sections []Section
	entries  []*Entry
	byID     map[string]*Entry
	byName   map[string]*Entry
}

// Build flattens sections into an Index, preserving catalog order.
func Build(sections []Section) *Index {
	idx := &Index{
		sections: sections,
		byID:     make(map[string]*Entry),
		byName:   make(map[string]*Entry),
	}
	for _, s := range sections {
		category := SectionCategory(s.Title)
		for _, t := range s.Tools {
			parts := append([]string{t.Name, t.Tagline, t.Description}, t.Bullets...)
			parts = append(parts, s.Title)
			e := &Entry{
				ID:             t.ID,
				Name:           t.Name,
				URL:            t.URL,
				Tagline:        t.Tagline,
				Description:    t.Description,
				Bullets:        t.Bullets,
				Section:        s.Title,
				Category:       category,
				NormalizedName: Normalize(t.Name),
				SearchText:     Normalize(strings.Join(parts, " ")),
				Aliases:        aliasesFor(t.ID, t.Name),
			}
			idx.entries = append(idx.entries, e)
			if _, dup := idx.byID[e.ID]; !dup {
				idx.byID[e.ID] = e
			}
			if _, dup := idx.byName[e.Name]; !dup {
				idx.byName[e.Name] = e
			}
		}
	}
	return idx
}

// Len returns the number of tools in the index.
func (x *Index) Len() int { return len(x.entries) }

// Entries returns every tool in catalog order.
func (x *Index) Entries() []*Entry {
	out := make([]*Entry, len(x.entries))
	copy(out, x.entries)
	return out
}

// Sections returns the source sections the index was built from.
func (x *Index) Sections() []Section {
	out := make([]Section, len(x.sections))
	copy(out, x.sections)
	return out
}

// ByID returns the tool with the given id.
func (x *Index) ByID(id string) (*Entry, bool) {
	e, ok := x.byID[id]
	return e, ok
}

// Lookup is ByID with an error for the HTTP layer.
func (x *Index) Lookup(id string) (*Entry, error) {
	if e, ok := x.byID[id]; ok {
		return e, nil
	}
	return nil, ErrToolNotFound
}

// ByName returns the tool with the given display name.
func (x *Index) ByName(name string) (*Entry, bool) {
	e, ok := x.byName[name]
	return e, ok
}

// ByCategory returns the tools of one category in catalog order.
func (x *Index) ByCategory(c Category) []*Entry {
	var out []*Entry
	for _, e := range x.entries {
		if e.Category == c {
			out = append(out, e)
		}
	}
	return out
}

// Rank orders tools by relevance to query and returns at most limit of them.
//
// Scoring per tool:
//   - +10 if the normalized query contains the tool's normalized name
//   - per query token: +3 if the name contains it, +1 if the search text contains it
//
// Ties keep catalog order. When nothing scores, the catalog is returned in order.
func (x *Index) Rank(query string, limit int) []*Entry {
	if limit <= 0 {
		limit = DefaultRankLimit
	}
	normalized := Normalize(query)
	tokens := Tokenize(query)

	type scored struct {
		entry *Entry
		score int
	}
	ranked := make([]scored, len(x.entries))
	anyScore := false
	for i, e := range x.entries {
		score := 0
		if e.NormalizedName != "" && strings.Contains(normalized, e.NormalizedName) {
			score += 10
		}
		for _, tok := range tokens {
			if strings.Contains(e.NormalizedName, tok) {
				score += 3
			}
			if strings.Contains(e.SearchText, tok) {
				score += 1
			}
		}
		if score > 0 {
			anyScore = true
		}
		ranked[i] = scored{entry: e, score: score}
	}

	if !anyScore {
		return truncate(x.Entries(), limit)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})
	out := make([]*Entry, 0, len(ranked))
	for _, r := range ranked {
		out = append(out, r.entry)
	}
	return truncate(out, limit)
}

func truncate(entries []*Entry, limit int) []*Entry {
	if len(entries) > limit {
		return entries[:limit]
	}
	return entries
}

// Mentioned returns the names of tools whose name or alias appears in content
// as a standalone normalized phrase, in catalog order.
func (x *Index) Mentioned(content string) []string {
	haystack := " " + Normalize(content) + " "
	var names []string
	for _, e := range x.entries {
		for _, alias := range e.Aliases {
			if containsPhrase(haystack, alias) {
				names = append(names, e.Name)
				break
			}
		}
	}
	return names
}

func containsPhrase(haystack, phrase string) bool {
	p := Normalize(phrase)
	if p == "" {
		return false
	}
	return strings.Contains(haystack, " "+p+" ")
}
