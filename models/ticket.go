package models

import "time"

type TicketCategory string

type TicketStatus string

const (
	TicketCategoryDispute TicketCategory = "DISPUTE"

	TicketStatusNew TicketStatus = "NEW"
)

// DisputeTicketDefaultSubject — тема тикета, который открывается автоматически,
// когда стороны заявили противоречащие результаты.
const DisputeTicketDefaultSubject = "Match result dispute"

// Ticket — запись о споре, передаваемая внешнему процессу разбора.
// Ядро не читает содержимое тикета после создания.
type Ticket struct {
	ID           int            `json:"id" db:"id"`
	TournamentID int            `json:"tournament_id" db:"tournament_id"`
	MatchID      int            `json:"match_id" db:"match_id"`
	TeamOne      int            `json:"team_one" db:"team_one"`
	TeamTwo      int            `json:"team_two" db:"team_two"`
	Category     TicketCategory `json:"category" db:"category"`
	Status       TicketStatus   `json:"status" db:"status"`
	Subject      string         `json:"subject" db:"subject"`
	CreatedAt    time.Time      `json:"created_at" db:"created_at"`
}
