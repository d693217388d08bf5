package handlers

import (
	"errors"
	"net/http"

	"studyquest/internal/codec"
	"studyquest/internal/service"
)

// BackupHandler exposes manual export/import of the household aggregates.
type BackupHandler struct {
	backupService *service.BackupService
	parentEmail   string
}

// NewBackupHandler creates a new backup handler
func NewBackupHandler(backupService *service.BackupService, parentEmail string) *BackupHandler {
	return &BackupHandler{backupService: backupService, parentEmail: parentEmail}
}

// Export returns the portable backup blob.
func (h *BackupHandler) Export(w http.ResponseWriter, r *http.Request) {
	blob, err := h.backupService.Export()
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Export failed", "Error exporting backup", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"blob": blob})
}

// Import restores aggregates from a blob. A malformed blob is rejected
// before any state changes.
func (h *BackupHandler) Import(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Blob string `json:"blob"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", "", err)
		return
	}

	if err := h.backupService.Import(req.Blob); err != nil {
		if errors.Is(err, codec.ErrInvalidImportPayload) {
			respondWithError(w, http.StatusBadRequest, "That backup text is not valid", "", err)
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Import failed", "Error importing backup", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Email sends the backup blob to the configured parent address.
func (h *BackupHandler) Email(w http.ResponseWriter, r *http.Request) {
	if h.parentEmail == "" {
		respondWithError(w, http.StatusBadRequest, "No parent email configured", "", nil)
		return
	}

	if err := h.backupService.EmailBackup(r.Context(), h.parentEmail); err != nil {
		if errors.Is(err, service.ErrEmailDisabled) {
			respondWithError(w, http.StatusBadRequest, "Email is not configured", "", nil)
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Failed to email backup", "Error emailing backup", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
