package handlers

import (
	"errors"
	"net/http"

	"studyquest/internal/genai"
	"studyquest/internal/service"
	"studyquest/internal/session"
)

// SessionHandler drives the exercise session over HTTP.
type SessionHandler struct {
	sessionService   *service.SessionService
	worksheetService *service.WorksheetService
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(sessionService *service.SessionService, worksheetService *service.WorksheetService) *SessionHandler {
	return &SessionHandler{
		sessionService:   sessionService,
		worksheetService: worksheetService,
	}
}

// StartFromWorksheet generates questions for a worksheet and starts a
// session over them. Generation failures are retryable, never fatal.
func (h *SessionHandler) StartFromWorksheet(w http.ResponseWriter, r *http.Request) {
	worksheetID := r.PathValue("id")

	worksheet, questions, err := h.worksheetService.Generate(r.Context(), worksheetID)
	if err != nil {
		if errors.Is(err, genai.ErrGenerationFailed) {
			respondWithError(w, http.StatusBadGateway, "Could not read the worksheet, please try again", "Question generation failed", err)
			return
		}
		if errors.Is(err, service.ErrWorksheetNotFound) {
			respondWithError(w, http.StatusNotFound, "Worksheet not found", "", nil)
			return
		}
		respondWithError(w, http.StatusConflict, err.Error(), "", nil)
		return
	}

	view, err := h.sessionService.Start(questions, worksheet.Images, worksheet.ID, worksheet.Subject)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to start session", "Error starting session", err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Resume rebuilds a suspended session from its mirrored snapshot.
func (h *SessionHandler) Resume(w http.ResponseWriter, r *http.Request) {
	view, err := h.sessionService.Resume()
	if err != nil {
		if errors.Is(err, service.ErrNoActiveSession) {
			respondWithError(w, http.StatusNotFound, "No session to resume", "", nil)
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Failed to resume session", "Error resuming session", err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Show returns the current session state.
func (h *SessionHandler) Show(w http.ResponseWriter, r *http.Request) {
	view, err := h.sessionService.View()
	if err != nil {
		respondWithError(w, http.StatusNotFound, "No active session", "", nil)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// SubmitAnswer grades an answer for the current question.
func (h *SessionHandler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Kind   string `json:"type"`
		Option string `json:"option,omitempty"`
		Text   string `json:"text,omitempty"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", "", err)
		return
	}

	var resp session.Response
	switch req.Kind {
	case "multiple-choice":
		resp = session.ChoiceResponse{Option: req.Option}
	case "text":
		resp = session.TextResponse{Text: req.Text}
	case "word-ordering":
		resp = session.OrderingResponse{}
	default:
		respondWithError(w, http.StatusBadRequest, "Unknown answer type", "", nil)
		return
	}

	view, err := h.sessionService.Submit(resp)
	if err != nil {
		h.respondSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Advance moves to the next question or completes the session.
func (h *SessionHandler) Advance(w http.ResponseWriter, r *http.Request) {
	view, completion, err := h.sessionService.Advance()
	if err != nil {
		h.respondSessionError(w, err)
		return
	}
	if completion != nil {
		writeJSON(w, http.StatusOK, completion)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// ToggleToken places or removes a word-ordering token.
func (h *SessionHandler) ToggleToken(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Position int `json:"position"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", "", err)
		return
	}

	view, err := h.sessionService.ToggleToken(req.Position)
	if err != nil {
		h.respondSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// ResetPlacement clears the word-ordering placement.
func (h *SessionHandler) ResetPlacement(w http.ResponseWriter, r *http.Request) {
	view, err := h.sessionService.ResetPlacement()
	if err != nil {
		h.respondSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Exit abandons the session and destroys its mirrored state.
func (h *SessionHandler) Exit(w http.ResponseWriter, r *http.Request) {
	if err := h.sessionService.Exit(); err != nil {
		h.respondSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *SessionHandler) respondSessionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrNoActiveSession):
		respondWithError(w, http.StatusNotFound, "No active session", "", nil)
	case errors.Is(err, session.ErrInvalidResponseKind):
		respondWithError(w, http.StatusBadRequest, "Answer does not match the question", "", nil)
	case errors.Is(err, session.ErrNotAnswered),
		errors.Is(err, session.ErrNotAwaitingAnswer),
		errors.Is(err, session.ErrSessionComplete):
		respondWithError(w, http.StatusConflict, err.Error(), "", nil)
	default:
		respondWithError(w, http.StatusInternalServerError, "Session operation failed", "Session error", err)
	}
}
