package handlers

import (
	"net/http"

	"github.com/soccerhub/league-manager/services"
)

type PlayoffHandler struct {
	playoffService services.PlayoffService
}

func NewPlayoffHandler(ps services.PlayoffService) *PlayoffHandler {
	return &PlayoffHandler{playoffService: ps}
}

func (h *PlayoffHandler) GeneratePlayoffs(w http.ResponseWriter, r *http.Request) {
	divisionID, err := idParam(r, "divisionID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	actor, ok := principalFromRequest(w, r)
	if !ok {
		return
	}

	bracket, err := h.playoffService.GeneratePlayoffs(r.Context(), divisionID, actor)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"bracket": bracket}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *PlayoffHandler) GetBracket(w http.ResponseWriter, r *http.Request) {
	divisionID, err := idParam(r, "divisionID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	bracket, err := h.playoffService.GetBracket(r.Context(), divisionID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"bracket": bracket}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *PlayoffHandler) ClearPlayoffs(w http.ResponseWriter, r *http.Request) {
	divisionID, err := idParam(r, "divisionID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	actor, ok := principalFromRequest(w, r)
	if !ok {
		return
	}

	if err := h.playoffService.ClearPlayoffs(r.Context(), divisionID, actor); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
