package handlers

import (
	"net/http"

	"github.com/pdralston/puttingLeague/services"
)

type MatchHandler struct {
	matchService services.MatchService
}

func NewMatchHandler(matchService services.MatchService) *MatchHandler {
	return &MatchHandler{matchService: matchService}
}

func (h *MatchHandler) matchIDs(r *http.Request) (tournamentID, matchID int, err error) {
	if tournamentID, err = idParam(r, "tournamentID"); err != nil {
		return 0, 0, err
	}
	if matchID, err = idParam(r, "matchID"); err != nil {
		return 0, 0, err
	}
	return tournamentID, matchID, nil
}

func (h *MatchHandler) Start(w http.ResponseWriter, r *http.Request) {
	tournamentID, matchID, err := h.matchIDs(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	match, err := h.matchService.StartMatch(r.Context(), tournamentID, matchID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

type scoreInput struct {
	Team1Score int `json:"team1_score"`
	Team2Score int `json:"team2_score"`
}

// Score handles both the normal submission and the administrative correction
// of an already completed match; the result flags which one happened.
func (h *MatchHandler) Score(w http.ResponseWriter, r *http.Request) {
	tournamentID, matchID, err := h.matchIDs(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	var input scoreInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	result, err := h.matchService.ScoreMatch(r.Context(), tournamentID, matchID, input.Team1Score, input.Team2Score)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, result, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *MatchHandler) AdvanceBye(w http.ResponseWriter, r *http.Request) {
	tournamentID, matchID, err := h.matchIDs(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	result, err := h.matchService.AdvanceBye(r.Context(), tournamentID, matchID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, result, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *MatchHandler) CreateChampionship(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := idParam(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	match, err := h.matchService.CreateChampionship(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusCreated, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *MatchHandler) Recalculate(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := idParam(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	matches, err := h.matchService.Recalculate(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"matches": matches}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
