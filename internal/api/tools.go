package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/hackguide/advisor/internal/catalog"
)

const maxToolLimit = 40

// handleListTools handles GET /api/tools?q=&limit=.
// With q the catalog is ranked; without it every tool is listed in order.
func (d *Dependencies) handleListTools(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeJSON(w, http.StatusBadRequest, ErrorResp{Error: "limit must be a positive integer"})
			return
		}
		limit = min(n, maxToolLimit)
	}

	var tools []*catalog.Entry
	if query != "" {
		tools = d.Catalog.Rank(query, limit)
	} else {
		tools = d.Catalog.Entries()
		if limit > 0 && len(tools) > limit {
			tools = tools[:limit]
		}
	}

	writeJSON(w, http.StatusOK, ToolListResp{Query: query, Count: len(tools), Tools: tools})
}

// handleGetTool handles GET /api/tools/{tool_id}.
func (d *Dependencies) handleGetTool(w http.ResponseWriter, r *http.Request) {
	tool, err := d.Catalog.Lookup(r.PathValue("tool_id"))
	if errors.Is(err, catalog.ErrToolNotFound) {
		writeJSON(w, http.StatusNotFound, ErrorResp{Error: "tool not found"})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, ErrorResp{Error: "Internal server error"})
		return
	}
	writeJSON(w, http.StatusOK, tool)
}

// handleListSections handles GET /api/sections.
func (d *Dependencies) handleListSections(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, SectionListResp{Sections: d.Catalog.Sections()})
}
