package handlers

import (
	"net/http"
	"strconv"

	"github.com/soccerhub/league-manager/services"
)

type DivisionHandler struct {
	divisionService  services.DivisionService
	standingsService services.StandingsService
}

func NewDivisionHandler(ds services.DivisionService, ss services.StandingsService) *DivisionHandler {
	return &DivisionHandler{divisionService: ds, standingsService: ss}
}

func (h *DivisionHandler) CreateDivision(w http.ResponseWriter, r *http.Request) {
	var input services.CreateDivisionInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	actor, ok := principalFromRequest(w, r)
	if !ok {
		return
	}

	division, err := h.divisionService.CreateDivision(r.Context(), input, actor)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"division": division}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *DivisionHandler) GetDivision(w http.ResponseWriter, r *http.Request) {
	divisionID, err := idParam(r, "divisionID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	division, err := h.divisionService.GetDivision(r.Context(), divisionID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"division": division}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *DivisionHandler) ListDivisions(w http.ResponseWriter, r *http.Request) {
	var tournamentID *int
	if raw := r.URL.Query().Get("tournament_id"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil || id < 1 {
			badRequestResponse(w, r, errInvalidQueryParam("tournament_id", raw))
			return
		}
		tournamentID = &id
	}

	divisions, err := h.divisionService.ListDivisions(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"divisions": divisions}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *DivisionHandler) UpdateDivision(w http.ResponseWriter, r *http.Request) {
	divisionID, err := idParam(r, "divisionID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.UpdateDivisionInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	actor, ok := principalFromRequest(w, r)
	if !ok {
		return
	}

	division, err := h.divisionService.UpdateDivision(r.Context(), divisionID, input, actor)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"division": division}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *DivisionHandler) DeleteDivision(w http.ResponseWriter, r *http.Request) {
	divisionID, err := idParam(r, "divisionID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	actor, ok := principalFromRequest(w, r)
	if !ok {
		return
	}

	if err := h.divisionService.DeleteDivision(r.Context(), divisionID, actor); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *DivisionHandler) GetStandings(w http.ResponseWriter, r *http.Request) {
	divisionID, err := idParam(r, "divisionID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	rows, err := h.standingsService.GetStandings(r.Context(), divisionID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"standings": rows}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *DivisionHandler) GenerateSchedule(w http.ResponseWriter, r *http.Request) {
	divisionID, err := idParam(r, "divisionID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	actor, ok := principalFromRequest(w, r)
	if !ok {
		return
	}

	matches, err := h.divisionService.GenerateSchedule(r.Context(), divisionID, actor)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"matches": matches}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
