package handlers

import (
	"net/http"

	"studyquest/internal/service"
)

// StatsHandler exposes the Stats aggregate and the sync signal.
type StatsHandler struct {
	household *service.Household
}

// NewStatsHandler creates a new stats handler
func NewStatsHandler(household *service.Household) *StatsHandler {
	return &StatsHandler{household: household}
}

// Show returns the current Stats aggregate.
func (h *StatsHandler) Show(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.household.StatsSnapshot())
}

// SyncStatus returns the connectivity signal for the status indicator.
func (h *StatsHandler) SyncStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": string(h.household.SyncStatus())})
}
