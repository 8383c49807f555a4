package models

import "time"

// TeamRole соответствует ENUM team_role в БД.
type TeamRole string

const (
	TeamRoleLeader TeamRole = "LEADER"
	TeamRoleMember TeamRole = "MEMBER"
)

type TeamMember struct {
	TeamID   int       `json:"-" db:"team_id"`
	UserID   int       `json:"user_id" db:"user_id"`
	Role     TeamRole  `json:"role" db:"role"`
	JoinedAt time.Time `json:"joined_at" db:"joined_at"`
}

// Team представляет команду внутри турнира. Ровно одно из полей
// Rating/Points заполнено в зависимости от формата турнира:
// rating для LADDER, points для LEAGUE/BRACKET.
type Team struct {
	ID           int       `json:"id" db:"id"`
	TournamentID int       `json:"tournament_id" db:"tournament_id"`
	Name         string    `json:"name" db:"name"`
	Rating       *int      `json:"rating,omitempty" db:"rating"`
	Points       *int      `json:"points,omitempty" db:"points"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`

	Members []TeamMember `json:"members,omitempty" db:"-"`
}

// IsLeader сообщает, является ли пользователь лидером команды.
func (t *Team) IsLeader(userID int) bool {
	for _, m := range t.Members {
		if m.UserID == userID && m.Role == TeamRoleLeader {
			return true
		}
	}
	return false
}

// TeamRecord — команда с посчитанными W/L/T. Счётчики не хранятся в БД,
// а каждый раз выводятся из разрешённых матчей турнира.
type TeamRecord struct {
	*Team
	Wins   int `json:"wins"`
	Losses int `json:"losses"`
	Ties   int `json:"ties"`
}
