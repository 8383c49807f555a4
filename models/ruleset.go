package models

// Ruleset описывает правила, по которым играются матчи: пул карт,
// формат серии (best of N) и допустимый размер состава.
type Ruleset struct {
	ID         int      `json:"id" db:"id"`
	Name       string   `json:"name" db:"name"`
	BestOf     int      `json:"best_of" db:"best_of"`
	Maps       []string `json:"maps" db:"maps"`
	MinPlayers int      `json:"min_players" db:"min_players"`
	MaxPlayers int      `json:"max_players" db:"max_players"`
}

// AllowsPlayerCount проверяет, что заявленный размер состава попадает в рамки правил.
func (r *Ruleset) AllowsPlayerCount(playerCount int) bool {
	return playerCount >= r.MinPlayers && playerCount <= r.MaxPlayers
}
