package models

import "time"

// SubmittedResult — результат, заявленный одной из сторон матча.
type SubmittedResult string

const (
	ResultWin  SubmittedResult = "WIN"
	ResultLoss SubmittedResult = "LOSS"
	ResultTie  SubmittedResult = "TIE"
)

// ValidSubmittedResult проверяет значение, пришедшее от клиента.
func ValidSubmittedResult(r SubmittedResult) bool {
	switch r {
	case ResultWin, ResultLoss, ResultTie:
		return true
	}
	return false
}

// MatchStatus — производный статус матча. Он никогда не хранится в БД,
// а каждый раз вычисляется из двух независимо заявленных результатов.
type MatchStatus string

const (
	MatchStatusPending MatchStatus = "PENDING"
	MatchStatusTie     MatchStatus = "TIE"
	MatchStatusTeamOne MatchStatus = "TEAM_ONE"
	MatchStatusTeamTwo MatchStatus = "TEAM_TWO"
	MatchStatusDispute MatchStatus = "DISPUTE"
)

// Match представляет матч ладдера. TeamTwo == nil означает открытый слот,
// ожидающий соперника. Каждое из полей *Result записывается своей стороной
// ровно один раз; сбросить их может только административный путь, и тот
// пишет оба поля атомарно.
type Match struct {
	ID            int              `json:"id" db:"id"`
	TournamentID  int              `json:"tournament_id" db:"tournament_id"`
	RulesetID     int              `json:"ruleset_id" db:"ruleset_id"`
	PlayerCount   int              `json:"player_count" db:"player_count"`
	TeamOne       int              `json:"team_one" db:"team_one"`
	TeamTwo       *int             `json:"team_two,omitempty" db:"team_two"`
	TeamOneResult *SubmittedResult `json:"team_one_result,omitempty" db:"team_one_result"`
	TeamTwoResult *SubmittedResult `json:"team_two_result,omitempty" db:"team_two_result"`
	Maps          []string         `json:"maps" db:"maps"`
	CreatedAt     time.Time        `json:"created_at" db:"created_at"`
	AcceptedAt    *time.Time       `json:"accepted_at,omitempty" db:"accepted_at"`
	ResolvedAt    *time.Time       `json:"resolved_at,omitempty" db:"resolved_at"`
}

// Status выводит статус матча из заявленных результатов.
// Порядок проверок существенный: ничья проверяется раньше общего равенства,
// потому что "обе стороны TIE" — согласие, а "обе стороны WIN" — спор.
func (m *Match) Status() MatchStatus {
	if m.TeamTwo == nil || m.TeamOneResult == nil || m.TeamTwoResult == nil {
		return MatchStatusPending
	}
	one, two := *m.TeamOneResult, *m.TeamTwoResult
	switch {
	case one == ResultTie && two == ResultTie:
		return MatchStatusTie
	case one == two:
		return MatchStatusDispute
	case one == ResultWin:
		return MatchStatusTeamOne
	default:
		return MatchStatusTeamTwo
	}
}

// HasTeam сообщает, участвует ли команда в матче.
func (m *Match) HasTeam(teamID int) bool {
	return m.TeamOne == teamID || (m.TeamTwo != nil && *m.TeamTwo == teamID)
}

// MatchSide указывает, с какой стороны матча стоит команда.
type MatchSide int

const (
	SideOne MatchSide = iota + 1
	SideTwo
)

// SideOf возвращает сторону команды в матче, если она в нём участвует.
func (m *Match) SideOf(teamID int) (MatchSide, bool) {
	if m.TeamOne == teamID {
		return SideOne, true
	}
	if m.TeamTwo != nil && *m.TeamTwo == teamID {
		return SideTwo, true
	}
	return 0, false
}

// MatchView — матч с прикреплённым производным статусом, как его видит API.
type MatchView struct {
	*Match
	Status MatchStatus `json:"status"`
}

func NewMatchView(m *Match) *MatchView {
	return &MatchView{Match: m, Status: m.Status()}
}
