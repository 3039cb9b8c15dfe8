package catalog

import (
	"reflect"
	"testing"
)

func ids(entries []*Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.ID
	}
	return out
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Claude Code", "claude code"},
		{"  Next.js & React!! ", "next js react"},
		{"Auth0-style login", "auth0 style login"},
		{"---", ""},
		{"Anthropic's coding assistant", "anthropic s coding assistant"},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTokenize_DropsShortWords(t *testing.T) {
	got := Tokenize("An AI app to do my todo list")
	want := []string{"app", "todo", "list"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Tokenize = %v, want %v", got, want)
	}
}

func TestSectionCategory(t *testing.T) {
	tests := []struct {
		title string
		want  Category
	}{
		{"Development tools", CategoryDevelopment},
		{"Databases", CategoryDatabase},
		{"Auth", CategoryAuth},
		{"Deployment", CategoryDeployment},
		{"Terminal", CategoryTerminal},
		{"APIs", CategoryAPI},
		{"Design", CategoryOther},
		{"", CategoryOther},
	}
	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			if got := SectionCategory(tt.title); got != tt.want {
				t.Errorf("SectionCategory(%q) = %s, want %s", tt.title, got, tt.want)
			}
		})
	}
}

func TestBuild_DefaultCatalog(t *testing.T) {
	idx := Default()
	if idx.Len() != 14 {
		t.Fatalf("expected 14 tools, got %d", idx.Len())
	}
	if Default() != idx {
		t.Error("Default should return the same index on every call")
	}

	cc, ok := idx.ByID("claude-code")
	if !ok {
		t.Fatal("claude-code not found")
	}
	if cc.Category != CategoryDevelopment {
		t.Errorf("claude-code category = %s", cc.Category)
	}
	if cc.NormalizedName != "claude code" {
		t.Errorf("normalized name = %q", cc.NormalizedName)
	}
	if !reflect.DeepEqual(cc.Aliases, []string{"Claude Code", "claude", "claude code"}) {
		t.Errorf("aliases = %v", cc.Aliases)
	}

	replit, _ := idx.ByID("replit")
	wantSearch := "replit browser based ide run full stack apps in the cloud with zero setup collaborate in real time cloud development real time collaboration deploy instantly development tools"
	if replit.SearchText != wantSearch {
		t.Errorf("search text = %q", replit.SearchText)
	}

	cursor, _ := idx.ByID("cursor")
	if !reflect.DeepEqual(cursor.Aliases, []string{"Cursor"}) {
		t.Errorf("tools without curated aliases should only alias their name, got %v", cursor.Aliases)
	}
}

func TestBuild_UnknownSectionIsOther(t *testing.T) {
	idx := Build([]Section{{ID: "x", Title: "Design", Tools: []Tool{{ID: "figma", Name: "Figma"}}}})
	e, ok := idx.ByName("Figma")
	if !ok {
		t.Fatal("Figma not found")
	}
	if e.Category != CategoryOther {
		t.Errorf("expected other, got %s", e.Category)
	}
}

func TestRank_PunctuationOnlyNameDoesNotMatchEverything(t *testing.T) {
	idx := Build([]Section{{Title: "Development tools", Tools: []Tool{
		{ID: "dots", Name: "..."},
		{ID: "cursor", Name: "Cursor", Tagline: "AI-first code editor"},
	}}})
	got := ids(idx.Rank("code editor", 1))
	if !reflect.DeepEqual(got, []string{"cursor"}) {
		t.Errorf("Rank = %v, want [cursor]", got)
	}
	if got := idx.Mentioned("... anything ..."); len(got) != 0 {
		t.Errorf("Mentioned = %v, want none", got)
	}
}

func TestCategory_TextRoundTrip(t *testing.T) {
	for c := CategoryOther; c <= CategoryAPI; c++ {
		text, err := c.MarshalText()
		if err != nil {
			t.Fatalf("MarshalText(%d): %v", c, err)
		}
		var got Category
		if err := got.UnmarshalText(text); err != nil {
			t.Fatalf("UnmarshalText(%q): %v", text, err)
		}
		if got != c {
			t.Errorf("round trip of %s = %s", c, got)
		}
	}
	var c Category = CategoryAuth
	if err := c.UnmarshalText([]byte("design")); err != nil || c != CategoryOther {
		t.Errorf("unknown name = %s, %v; want other", c, err)
	}
}

func TestLookup(t *testing.T) {
	idx := Default()
	if _, err := idx.Lookup("vercel"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if _, err := idx.Lookup("nope"); err != ErrToolNotFound {
		t.Errorf("expected ErrToolNotFound, got %v", err)
	}
}

func TestByCategory(t *testing.T) {
	got := ids(Default().ByCategory(CategoryAuth))
	want := []string{"clerk", "auth0", "nextauth"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ByCategory(auth) = %v, want %v", got, want)
	}
}

func TestRank(t *testing.T) {
	idx := Default()
	tests := []struct {
		name  string
		query string
		limit int
		want  []string
	}{
		{"name match ties keep catalog order", "cursor vs replit", 5, []string{"cursor", "replit", "codex", "claude-code", "lovable"}},
		{"multi word name", "claude code for refactoring", 5, []string{"claude-code", "codex", "lovable", "cursor", "clerk"}},
		{"category words", "supabase auth", 5, []string{"supabase", "auth0", "nextauth", "clerk", "cursor"}},
		{"deploy words", "deploy my nextjs app", 5, []string{"replit", "railway", "codex", "lovable", "clerk"}},
		{"no score falls back to catalog order", "hello", 3, []string{"cursor", "codex", "replit"}},
		{"empty query", "", 2, []string{"cursor", "codex"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ids(idx.Rank(tt.query, tt.limit))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Rank(%q) = %v, want %v", tt.query, got, tt.want)
			}
		})
	}
}

func TestRank_DefaultLimit(t *testing.T) {
	got := Default().Rank("anything", 0)
	if len(got) != 14 {
		t.Errorf("expected whole catalog (14 <= default limit), got %d", len(got))
	}
}

func TestMentioned(t *testing.T) {
	idx := Default()
	tests := []struct {
		name    string
		content string
		want    []string
	}{
		{"aliases", "Start with **Claude** and add next auth, openai api. Supabase", []string{"Claude Code", "Supabase", "NextAuth", "OpenAI API"}},
		{"hyphenated", "Use Auth0-style login with authjs", []string{"Auth0", "NextAuth"}},
		{"no partial words", "Cursors and replitted things", nil},
		{"empty", "", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := idx.Mentioned(tt.content)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Mentioned = %v, want %v", got, tt.want)
			}
		})
	}
}

func BenchmarkRank(b *testing.B) {
	idx := Default()
	for i := 0; i < b.N; i++ {
		idx.Rank("A team marketplace where users create profiles and browse listings", 40)
	}
}
