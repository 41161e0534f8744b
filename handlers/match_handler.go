package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/soccerhub/league-manager/models"
	"github.com/soccerhub/league-manager/repositories"
	"github.com/soccerhub/league-manager/services"
)

type MatchHandler struct {
	matchService services.MatchService
}

func NewMatchHandler(ms services.MatchService) *MatchHandler {
	return &MatchHandler{matchService: ms}
}

func (h *MatchHandler) CreateMatch(w http.ResponseWriter, r *http.Request) {
	var input services.CreateMatchInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	actor, ok := principalFromRequest(w, r)
	if !ok {
		return
	}

	match, err := h.matchService.CreateMatch(r.Context(), input, actor)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *MatchHandler) GetMatch(w http.ResponseWriter, r *http.Request) {
	matchID, err := idParam(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.matchService.GetMatchByID(r.Context(), matchID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *MatchHandler) ListMatches(w http.ResponseWriter, r *http.Request) {
	filter, err := matchFilterFromQuery(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	matches, err := h.matchService.ListMatches(r.Context(), filter)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"matches": matches}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *MatchHandler) UpdateMatch(w http.ResponseWriter, r *http.Request) {
	matchID, err := idParam(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.UpdateMatchInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	actor, ok := principalFromRequest(w, r)
	if !ok {
		return
	}

	match, err := h.matchService.UpdateMatch(r.Context(), matchID, input, actor)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

type recordResultInput struct {
	HomeScore int `json:"home_score"`
	AwayScore int `json:"away_score"`
}

func (h *MatchHandler) RecordResult(w http.ResponseWriter, r *http.Request) {
	matchID, err := idParam(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input recordResultInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	actor, ok := principalFromRequest(w, r)
	if !ok {
		return
	}

	match, err := h.matchService.RecordResult(r.Context(), matchID, input.HomeScore, input.AwayScore, actor)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *MatchHandler) DeleteMatch(w http.ResponseWriter, r *http.Request) {
	matchID, err := idParam(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	actor, ok := principalFromRequest(w, r)
	if !ok {
		return
	}

	if err := h.matchService.DeleteMatch(r.Context(), matchID, actor); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func matchFilterFromQuery(r *http.Request) (repositories.MatchFilter, error) {
	var filter repositories.MatchFilter
	query := r.URL.Query()

	for _, param := range []struct {
		name string
		dst  **int
	}{
		{"division_id", &filter.DivisionID},
		{"team_id", &filter.TeamID},
	} {
		if raw := query.Get(param.name); raw != "" {
			id, err := strconv.Atoi(raw)
			if err != nil || id < 1 {
				return filter, errInvalidQueryParam(param.name, raw)
			}
			*param.dst = &id
		}
	}

	if raw := query.Get("status"); raw != "" {
		status := models.MatchStatus(raw)
		if !status.Valid() {
			return filter, errInvalidQueryParam("status", raw)
		}
		filter.Status = &status
	}

	switch query.Get("stage") {
	case "":
	case "league":
		filter.LeagueOnly = true
	case "playoff":
		filter.PlayoffOnly = true
	default:
		return filter, fmt.Errorf("stage query parameter must be league or playoff")
	}

	return filter, nil
}
