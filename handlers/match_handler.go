package handlers

import (
	"net/http"

	"github.com/matchforge/arena/middleware"
	"github.com/matchforge/arena/models"
	"github.com/matchforge/arena/services"
)

type MatchHandler struct {
	matchmakingService services.MatchmakingService
	resultService      services.ResultService
	matchService       services.MatchService
}

func NewMatchHandler(
	matchmakingService services.MatchmakingService,
	resultService services.ResultService,
	matchService services.MatchService,
) *MatchHandler {
	return &MatchHandler{
		matchmakingService: matchmakingService,
		resultService:      resultService,
		matchService:       matchService,
	}
}

type requestMatchInput struct {
	TeamID      int `json:"team_id"`
	RulesetID   int `json:"ruleset_id"`
	PlayerCount int `json:"player_count"`
}

// RequestMatchHandler — заявка на ладдерный матч: либо присоединяет команду
// к подходящему открытому матчу, либо создаёт новый со свободным слотом.
func (h *MatchHandler) RequestMatchHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		errorResponse(w, r, http.StatusUnauthorized, err.Error())
		return
	}

	var input requestMatchInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.matchmakingService.RequestMatch(r.Context(), services.RequestMatchInput{
		TournamentID: tournamentID,
		TeamID:       input.TeamID,
		RulesetID:    input.RulesetID,
		PlayerCount:  input.PlayerCount,
		UserID:       userID,
	})
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	status := http.StatusCreated
	if match.TeamTwo != nil {
		// Команда заняла существующий открытый матч.
		status = http.StatusOK
	}
	if err := writeJSON(w, status, jsonResponse{"match": models.NewMatchView(match)}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

type submitResultInput struct {
	TeamID int                    `json:"team_id"`
	Result models.SubmittedResult `json:"result"`
}

// SubmitResultHandler принимает результат от одной из сторон матча.
// Спор — валидный исход, а не ошибка: запрос всё равно завершается 200.
func (h *MatchHandler) SubmitResultHandler(w http.ResponseWriter, r *http.Request) {
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

	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		errorResponse(w, r, http.StatusUnauthorized, err.Error())
		return
	}

	var input submitResultInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.resultService.SubmitResult(r.Context(), services.SubmitResultInput{
		TournamentID: tournamentID,
		MatchID:      matchID,
		TeamID:       input.TeamID,
		UserID:       userID,
		Result:       input.Result,
	})
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// CancelMatchHandler удаляет ещё не принятый матч.
func (h *MatchHandler) CancelMatchHandler(w http.ResponseWriter, r *http.Request) {
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

	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		errorResponse(w, r, http.StatusUnauthorized, err.Error())
		return
	}

	if err := h.matchmakingService.CancelMatch(r.Context(), tournamentID, matchID, userID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *MatchHandler) ListMatchesHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	matches, err := h.matchService.ListByTournament(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"matches": matches}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *MatchHandler) GetMatchHandler(w http.ResponseWriter, r *http.Request) {
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

	match, err := h.matchService.GetByID(r.Context(), tournamentID, matchID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
