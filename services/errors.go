package services

import "errors"

// Общие ошибки сервисного слоя и маппинга HTTP.
var (
	// Ресурсы
	ErrTournamentNotFound = errors.New("tournament not found")
	ErrTeamNotFound       = errors.New("team not found")
	ErrMatchNotFound      = errors.New("match not found")
	ErrRulesetNotFound    = errors.New("ruleset not found")

	// Валидация и бизнес-правила
	ErrTeamNotInTournament = errors.New("team does not belong to this tournament")
	ErrTeamNotInMatch      = errors.New("this team isn't in this match")
	ErrInvalidResult       = errors.New("result must be one of WIN, LOSS, TIE")
	ErrInvalidPlayerCount  = errors.New("player count is outside the ruleset limits")
	ErrMatchNotAccepted    = errors.New("match has no opponent yet")

	// Конфликты
	ErrOngoingMatchExists     = errors.New("team already has an ongoing match in this tournament")
	ErrResultAlreadySubmitted = errors.New("this side already submitted a result")
	ErrMatchAlreadyResolved   = errors.New("match is already resolved")
	ErrMatchAlreadyAccepted   = errors.New("match has already been accepted")

	// Авторизация
	ErrLeaderActionForbidden = errors.New("only the team leader can perform this action")
)
