package api

import "github.com/hackguide/advisor/internal/catalog"

// ErrorResp is the body of every non-2xx response.
type ErrorResp struct {
	Error string `json:"error"`
}

// ToolListResp is the body of GET /api/tools.
type ToolListResp struct {
	Query string           `json:"query,omitempty"`
	Count int              `json:"count"`
	Tools []*catalog.Entry `json:"tools"`
}

// SectionListResp is the body of GET /api/sections.
type SectionListResp struct {
	Sections []catalog.Section `json:"sections"`
}
