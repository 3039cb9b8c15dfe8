package store

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/hackguide/advisor/internal/catalog"
)

func TestAssemble(t *testing.T) {
	sections := []SectionRow{
		{ID: "dev", Title: "Development tools", Position: 1},
		{ID: "db", Title: "Databases", Position: 2},
		{ID: "empty", Title: "Terminal", Position: 3},
	}
	tools := []ToolRow{
		{ID: "supabase", SectionID: "db", Name: "Supabase", Bullets: []string{"Postgres"}},
		{ID: "cursor", SectionID: "dev", Name: "Cursor", Tagline: "AI-first code editor"},
		{ID: "replit", SectionID: "dev", Name: "Replit"},
	}

	got, err := Assemble(sections, tools)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	want := []catalog.Section{
		{ID: "dev", Title: "Development tools", Tools: []catalog.Tool{
			{ID: "cursor", Name: "Cursor", Tagline: "AI-first code editor"},
			{ID: "replit", Name: "Replit"},
		}},
		{ID: "db", Title: "Databases", Tools: []catalog.Tool{
			{ID: "supabase", Name: "Supabase", Bullets: []string{"Postgres"}},
		}},
		{ID: "empty", Title: "Terminal"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Assemble mismatch (-want +got):\n%s", diff)
	}

	idx := catalog.Build(got)
	if idx.Len() != 3 {
		t.Errorf("index has %d tools", idx.Len())
	}
}

func TestAssemble_UnknownSection(t *testing.T) {
	_, err := Assemble(
		[]SectionRow{{ID: "dev", Title: "Development tools"}},
		[]ToolRow{{ID: "clerk", SectionID: "auth"}},
	)
	if err == nil {
		t.Fatal("expected error for tool with unknown section")
	}
}
