package models

import "time"

// TournamentFormat соответствует ENUM tournament_format в БД.
type TournamentFormat string

const (
	FormatLeague  TournamentFormat = "LEAGUE"
	FormatLadder  TournamentFormat = "LADDER"
	FormatBracket TournamentFormat = "BRACKET"
)

// Tournament представляет турнир. Каталожные поля (имя, расписание)
// управляются снаружи; здесь они только читаются.
type Tournament struct {
	ID        int              `json:"id" db:"id"`
	Name      string           `json:"name" db:"name"`
	Format    TournamentFormat `json:"format" db:"format"`
	StartsOn  time.Time        `json:"starts_on" db:"starts_on"`
	EndsOn    time.Time        `json:"ends_on" db:"ends_on"`
	RulesetID int              `json:"ruleset_id" db:"ruleset_id"`
	Open      bool             `json:"open" db:"open"`
	CreatedAt time.Time        `json:"created_at" db:"created_at"`

	Ruleset *Ruleset `json:"ruleset,omitempty" db:"-"`
}
