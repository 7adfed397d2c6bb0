package handlers

import (
	"net/http"

	"github.com/pdralston/puttingLeague/services"
)

type AcePotHandler struct {
	acePotService services.AcePotService
}

func NewAcePotHandler(acePotService services.AcePotService) *AcePotHandler {
	return &AcePotHandler{acePotService: acePotService}
}

func (h *AcePotHandler) Ledger(w http.ResponseWriter, r *http.Request) {
	ledger, err := h.acePotService.Ledger(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, ledger, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
