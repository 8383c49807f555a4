package handlers

import (
	"net/http"

	"github.com/matchforge/arena/services"
)

type AdminHandler struct {
	resultService services.ResultService
}

func NewAdminHandler(resultService services.ResultService) *AdminHandler {
	return &AdminHandler{resultService: resultService}
}

type forceResultInput struct {
	WinningTeamID int `json:"winning_team_id"`
}

// ForceResultHandler — административное назначение исхода: оба результата
// записываются атомарно, без ожидания подач от сторон. Уже обработанный
// матч повторно не открывается (409).
func (h *AdminHandler) ForceResultHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input forceResultInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.resultService.ForceResult(r.Context(), services.ForceResultInput{
		TournamentID:  tournamentID,
		MatchID:       matchID,
		WinningTeamID: input.WinningTeamID,
	})
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
