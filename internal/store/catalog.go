package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hackguide/advisor/internal/catalog"
	"golang.org/x/sync/errgroup"
)

// SectionRow is a row in the catalog_sections table.
type SectionRow struct {
	ID       string
	Title    string
	Position int
}

// ToolRow is a row in the catalog_tools table.
type ToolRow struct {
	ID          string
	SectionID   string
	Name        string
	URL         string
	Tagline     string
	Description string
	Bullets     []string
	Position    int
}

// LoadSections reads sections and tools concurrently and assembles them in
// position order.
func (s *Store) LoadSections(ctx context.Context) ([]catalog.Section, error) {
	var (
		sections []SectionRow
		tools    []ToolRow
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		sections, err = s.listSections(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		tools, err = s.listTools(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("LoadSections: %w", err)
	}

	out, err := Assemble(sections, tools)
	if err != nil {
		return nil, fmt.Errorf("LoadSections: %w", err)
	}
	return out, nil
}

func (s *Store) listSections(ctx context.Context) ([]SectionRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, position
		FROM catalog_sections
		ORDER BY position, id`)
	if err != nil {
		return nil, fmt.Errorf("listSections: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []SectionRow
	for rows.Next() {
		var r SectionRow
		if err := rows.Scan(&r.ID, &r.Title, &r.Position); err != nil {
			return nil, fmt.Errorf("listSections: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) listTools(ctx context.Context) ([]ToolRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, section_id, name, url, tagline, description, bullets, position
		FROM catalog_tools
		ORDER BY section_id, position, id`)
	if err != nil {
		return nil, fmt.Errorf("listTools: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []ToolRow
	for rows.Next() {
		var (
			r       ToolRow
			bullets []byte
		)
		if err := rows.Scan(&r.ID, &r.SectionID, &r.Name, &r.URL, &r.Tagline, &r.Description, &bullets, &r.Position); err != nil {
			return nil, fmt.Errorf("listTools: %w", err)
		}
		if len(bullets) > 0 {
			if err := json.Unmarshal(bullets, &r.Bullets); err != nil {
				return nil, fmt.Errorf("listTools: tool %s bullets: %w", r.ID, err)
			}
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Assemble groups tool rows under their sections. Rows must already be in
// position order. A tool whose section does not exist is an error; sections
// without tools are kept.
func Assemble(sections []SectionRow, tools []ToolRow) ([]catalog.Section, error) {
	out := make([]catalog.Section, len(sections))
	pos := make(map[string]int, len(sections))
	for i, s := range sections {
		out[i] = catalog.Section{ID: s.ID, Title: s.Title}
		pos[s.ID] = i
	}
	for _, t := range tools {
		i, ok := pos[t.SectionID]
		if !ok {
			return nil, fmt.Errorf("tool %s references unknown section %s", t.ID, t.SectionID)
		}
		out[i].Tools = append(out[i].Tools, catalog.Tool{
			ID:          t.ID,
			Name:        t.Name,
			URL:         t.URL,
			Tagline:     t.Tagline,
			Description: t.Description,
			Bullets:     t.Bullets,
		})
	}
	return out, nil
}
