package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"
	"github.com/matchforge/arena/models"
)

var (
	ErrTeamNotFound     = errors.New("team not found")
	ErrTeamNameConflict = errors.New("team name already taken in this tournament")
)

type TeamRepository interface {
	Create(ctx context.Context, team *models.Team) error
	GetByID(ctx context.Context, id int) (*models.Team, error)
	ListByTournament(ctx context.Context, tournamentID int) ([]*models.Team, error)
	UpdateRating(ctx context.Context, teamID, rating int) error
	UpdatePoints(ctx context.Context, teamID, points int) error
}

type postgresTeamRepository struct {
	db *sql.DB
}

func NewPostgresTeamRepository(db *sql.DB) TeamRepository {
	return &postgresTeamRepository{db: db}
}

func (r *postgresTeamRepository) Create(ctx context.Context, team *models.Team) error {
	query := `
		INSERT INTO teams (tournament_id, name, rating, points)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		team.TournamentID,
		team.Name,
		team.Rating,
		team.Points,
	).Scan(&team.ID, &team.CreatedAt)
	if err != nil {
		return r.handleTeamError(err)
	}

	for i := range team.Members {
		member := &team.Members[i]
		member.TeamID = team.ID
		memberQuery := `
			INSERT INTO team_members (team_id, user_id, role)
			VALUES ($1, $2, $3)
			RETURNING joined_at`
		if err := r.db.QueryRowContext(ctx, memberQuery,
			member.TeamID,
			member.UserID,
			member.Role,
		).Scan(&member.JoinedAt); err != nil {
			return err
		}
	}
	return nil
}

func (r *postgresTeamRepository) GetByID(ctx context.Context, id int) (*models.Team, error) {
	query := `
		SELECT id, tournament_id, name, rating, points, created_at
		FROM teams
		WHERE id = $1`

	team := &models.Team{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&team.ID,
		&team.TournamentID,
		&team.Name,
		&team.Rating,
		&team.Points,
		&team.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTeamNotFound
		}
		return nil, err
	}

	members, err := r.listMembers(ctx, team.ID)
	if err != nil {
		return nil, err
	}
	team.Members = members
	return team, nil
}

func (r *postgresTeamRepository) ListByTournament(ctx context.Context, tournamentID int) ([]*models.Team, error) {
	query := `
		SELECT id, tournament_id, name, rating, points, created_at
		FROM teams
		WHERE tournament_id = $1
		ORDER BY name ASC`

	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	teams := make([]*models.Team, 0)
	for rows.Next() {
		var team models.Team
		if scanErr := rows.Scan(
			&team.ID,
			&team.TournamentID,
			&team.Name,
			&team.Rating,
			&team.Points,
			&team.CreatedAt,
		); scanErr != nil {
			return nil, scanErr
		}
		teams = append(teams, &team)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	return teams, nil
}

// UpdateRating перезаписывает рейтинг команды. Вызывается только шагом
// применения исхода матча; никакие другие поля команды не трогаются.
func (r *postgresTeamRepository) UpdateRating(ctx context.Context, teamID, rating int) error {
	result, err := r.db.ExecContext(ctx, `UPDATE teams SET rating = $1 WHERE id = $2`, rating, teamID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrTeamNotFound)
}

func (r *postgresTeamRepository) UpdatePoints(ctx context.Context, teamID, points int) error {
	result, err := r.db.ExecContext(ctx, `UPDATE teams SET points = $1 WHERE id = $2`, points, teamID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrTeamNotFound)
}

func (r *postgresTeamRepository) listMembers(ctx context.Context, teamID int) ([]models.TeamMember, error) {
	query := `
		SELECT team_id, user_id, role, joined_at
		FROM team_members
		WHERE team_id = $1
		ORDER BY joined_at ASC`

	rows, err := r.db.QueryContext(ctx, query, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	members := make([]models.TeamMember, 0)
	for rows.Next() {
		var member models.TeamMember
		if scanErr := rows.Scan(&member.TeamID, &member.UserID, &member.Role, &member.JoinedAt); scanErr != nil {
			return nil, scanErr
		}
		members = append(members, member)
	}
	return members, rows.Err()
}

func (r *postgresTeamRepository) handleTeamError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		if pqErr.Code == "23505" && pqErr.Constraint == "teams_tournament_id_name_key" {
			return ErrTeamNameConflict
		}
	}
	return err
}
