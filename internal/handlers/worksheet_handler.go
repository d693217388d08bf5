package handlers

import (
	"errors"
	"net/http"

	"studyquest/internal/models"
	"studyquest/internal/service"
)

// WorksheetHandler manages the parent's worksheet library.
type WorksheetHandler struct {
	worksheetService *service.WorksheetService
}

// NewWorksheetHandler creates a new worksheet handler
func NewWorksheetHandler(worksheetService *service.WorksheetService) *WorksheetHandler {
	return &WorksheetHandler{worksheetService: worksheetService}
}

// List returns the worksheet library with recency-lock flags. An optional
// ?subject= filter narrows it; "all" matches everything.
func (h *WorksheetHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := models.Subject(r.URL.Query().Get("subject"))
	if filter != "" && !filter.Valid() {
		respondWithError(w, http.StatusBadRequest, "Unknown subject", "", nil)
		return
	}

	listings := h.worksheetService.List(filter)
	if listings == nil {
		listings = []service.WorksheetListing{}
	}
	writeJSON(w, http.StatusOK, listings)
}

// Create imports a worksheet from photographed pages.
func (h *WorksheetHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Subject models.Subject `json:"subject"`
		Name    string         `json:"name"`
		Images  []string       `json:"images"`
		Date    string         `json:"date"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", "", err)
		return
	}

	worksheet, err := h.worksheetService.Add(req.Subject, req.Name, req.Images, req.Date)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error(), "", nil)
		return
	}
	writeJSON(w, http.StatusCreated, worksheet)
}

// Delete removes a worksheet.
func (h *WorksheetHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.worksheetService.Delete(r.PathValue("id")); err != nil {
		if errors.Is(err, service.ErrWorksheetNotFound) {
			respondWithError(w, http.StatusNotFound, "Worksheet not found", "", nil)
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Failed to delete worksheet", "Error deleting worksheet", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
