package handlers

import (
	"errors"
	"net/http"

	"studyquest/internal/service"
)

// PrizeHandler manages the prize shop and purchases.
type PrizeHandler struct {
	rewardsService *service.RewardsService
	household      *service.Household
}

// NewPrizeHandler creates a new prize handler
func NewPrizeHandler(rewardsService *service.RewardsService, household *service.Household) *PrizeHandler {
	return &PrizeHandler{rewardsService: rewardsService, household: household}
}

// List returns the configured prizes.
func (h *PrizeHandler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.household.PrizesSnapshot())
}

// Create registers a parent-configured prize.
func (h *PrizeHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name  string  `json:"name"`
		Cost  float64 `json:"cost"`
		Image string  `json:"image"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", "", err)
		return
	}
	if req.Name == "" || req.Cost < 0 {
		respondWithError(w, http.StatusBadRequest, "Prize needs a name and a non-negative cost", "", nil)
		return
	}

	prize, err := h.rewardsService.AddPrize(req.Name, req.Cost, req.Image)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to create prize", "Error creating prize", err)
		return
	}
	writeJSON(w, http.StatusCreated, prize)
}

// Delete removes a prize from the shop.
func (h *PrizeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.rewardsService.DeletePrize(r.PathValue("id")); err != nil {
		if errors.Is(err, service.ErrPrizeUnavailable) {
			respondWithError(w, http.StatusNotFound, "Prize not found", "", nil)
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Failed to delete prize", "Error deleting prize", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Purchase redeems credits for a prize.
func (h *PrizeHandler) Purchase(w http.ResponseWriter, r *http.Request) {
	won, err := h.rewardsService.Purchase(r.PathValue("id"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInsufficientCredits):
			respondWithError(w, http.StatusConflict, "Not enough credits yet, keep studying!", "", nil)
		case errors.Is(err, service.ErrPrizeUnavailable):
			respondWithError(w, http.StatusConflict, "That prize is not available", "", nil)
		default:
			respondWithError(w, http.StatusInternalServerError, "Purchase failed", "Error purchasing prize", err)
		}
		return
	}
	writeJSON(w, http.StatusOK, won)
}

// SetDoubleCreditDays configures the double-credit weekdays.
func (h *PrizeHandler) SetDoubleCreditDays(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Days []int `json:"days"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", "", err)
		return
	}

	if err := h.rewardsService.SetDoubleCreditDays(req.Days); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error(), "", nil)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
