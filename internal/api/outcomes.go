package api

import (
	"net/http"
	"strconv"

	"github.com/hackguide/advisor/internal/chread"
	"go.uber.org/zap"
)

// handleGetOutcomes handles GET /api/advice/outcomes?days=N.
func (d *Dependencies) handleGetOutcomes(w http.ResponseWriter, r *http.Request) {
	days := chread.DefaultDays
	if raw := r.URL.Query().Get("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, ErrorResp{Error: "days must be an integer"})
			return
		}
		days = n
	}

	report, err := d.Reader.GetOutcomes(r.Context(), days)
	if err != nil {
		d.Logger.Error("outcomes query failed",
			zap.String("request_id", requestIDFromContext(r.Context())),
			zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, ErrorResp{Error: "Internal server error"})
		return
	}
	writeJSON(w, http.StatusOK, report)
}
