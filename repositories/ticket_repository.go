package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/matchforge/arena/models"
)

var ErrTicketNotFound = errors.New("ticket not found")

// TicketRepository — узкий контракт с системой тикетов: ядро умеет только
// открыть спор по матчу. Дальнейший разбор тикета живёт снаружи.
type TicketRepository interface {
	OpenDispute(ctx context.Context, ticket *models.Ticket) error
	GetByID(ctx context.Context, id int) (*models.Ticket, error)
}

type postgresTicketRepository struct {
	db *sql.DB
}

func NewPostgresTicketRepository(db *sql.DB) TicketRepository {
	return &postgresTicketRepository{db: db}
}

// OpenDispute создаёт тикет спора. На matches ровно один тикет:
// повторная попытка (две гонящиеся подачи результата) молча схлопывается
// в уже существующий тикет через ON CONFLICT DO NOTHING.
func (r *postgresTicketRepository) OpenDispute(ctx context.Context, ticket *models.Ticket) error {
	query := `
		INSERT INTO tickets (tournament_id, match_id, team_one, team_two, category, status, subject)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (match_id) DO NOTHING
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		ticket.TournamentID,
		ticket.MatchID,
		ticket.TeamOne,
		ticket.TeamTwo,
		ticket.Category,
		ticket.Status,
		ticket.Subject,
	).Scan(&ticket.ID, &ticket.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		// Спор по этому матчу уже открыт кем-то другим.
		return nil
	}
	return err
}

func (r *postgresTicketRepository) GetByID(ctx context.Context, id int) (*models.Ticket, error) {
	query := `
		SELECT id, tournament_id, match_id, team_one, team_two, category, status, subject, created_at
		FROM tickets
		WHERE id = $1`

	ticket := &models.Ticket{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&ticket.ID,
		&ticket.TournamentID,
		&ticket.MatchID,
		&ticket.TeamOne,
		&ticket.TeamTwo,
		&ticket.Category,
		&ticket.Status,
		&ticket.Subject,
		&ticket.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTicketNotFound
		}
		return nil, err
	}
	return ticket, nil
}
