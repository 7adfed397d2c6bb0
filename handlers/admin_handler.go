package handlers

import (
	"net/http"

	"github.com/pdralston/puttingLeague/services"
)

// AdminHandler covers the corrective operations that touch settled results.
type AdminHandler struct {
	standingsService services.StandingsService
}

func NewAdminHandler(standingsService services.StandingsService) *AdminHandler {
	return &AdminHandler{standingsService: standingsService}
}

type overridePlaceInput struct {
	Place int `json:"place"`
}

func (h *AdminHandler) OverridePlace(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := idParam(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	teamID, err := idParam(r, "teamID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	var input overridePlaceInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.standingsService.OverridePlace(r.Context(), tournamentID, teamID, input.Place); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"message": "place updated"}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *AdminHandler) RecalculateStats(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := idParam(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if err := h.standingsService.RecalculateStats(r.Context(), tournamentID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"message": "stats recalculated"}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
