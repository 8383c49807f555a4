package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"
	"github.com/matchforge/arena/models"
)

var (
	ErrMatchNotFound = errors.New("match not found")

	// ErrNoOpenMatch — подходящего открытого матча нет (или его успели занять).
	ErrNoOpenMatch = errors.New("no open match to claim")

	// ErrClaimConflict — проигранная гонка на уровне хранилища при захвате слота.
	ErrClaimConflict = errors.New("open match claim lost a storage race")

	// ErrResultAlreadySet — сторона уже записала свой результат (поле write-once).
	ErrResultAlreadySet = errors.New("result already set for this side")

	// ErrMatchAlreadyResolved — матч уже обработан (рейтинг применён или спор открыт).
	ErrMatchAlreadyResolved = errors.New("match already resolved")

	// ErrMatchAlreadyAccepted — у матча уже есть второй участник.
	ErrMatchAlreadyAccepted = errors.New("match already accepted")
)

// ClaimOpenParams описывает условный захват открытого слота: матч того же
// турнира, той же дисциплины и размера состава, с незанятым team_two и
// чужой командой в team_one.
type ClaimOpenParams struct {
	TournamentID int
	RulesetID    int
	PlayerCount  int
	TeamID       int
	AcceptedAt   time.Time
	Maps         []string
}

type MatchRepository interface {
	Create(ctx context.Context, match *models.Match) error
	GetByID(ctx context.Context, id int) (*models.Match, error)
	ListByTournament(ctx context.Context, tournamentID int) ([]*models.Match, error)
	HasPending(ctx context.Context, tournamentID, teamID int) (bool, error)
	ClaimOpen(ctx context.Context, params ClaimOpenParams) (*models.Match, error)
	SetTeamResult(ctx context.Context, matchID int, side models.MatchSide, result models.SubmittedResult) error
	SetBothResults(ctx context.Context, matchID int, teamOneResult, teamTwoResult models.SubmittedResult) error
	MarkResolved(ctx context.Context, matchID int, resolvedAt time.Time) error
	DeleteOpen(ctx context.Context, matchID int) error
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

const matchColumns = `id, tournament_id, ruleset_id, player_count, team_one, team_two,
		team_one_result, team_two_result, maps, created_at, accepted_at, resolved_at`

func (r *postgresMatchRepository) Create(ctx context.Context, match *models.Match) error {
	query := `
		INSERT INTO matches (tournament_id, ruleset_id, player_count, team_one, team_two, maps, accepted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`

	return r.db.QueryRowContext(ctx, query,
		match.TournamentID,
		match.RulesetID,
		match.PlayerCount,
		match.TeamOne,
		match.TeamTwo,
		pq.Array(match.Maps),
		match.AcceptedAt,
	).Scan(&match.ID, &match.CreatedAt)
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, id int) (*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE id = $1`

	match, err := scanMatch(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	return match, nil
}

func (r *postgresMatchRepository) ListByTournament(ctx context.Context, tournamentID int) ([]*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE tournament_id = $1 ORDER BY created_at ASC`

	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	matches := make([]*models.Match, 0)
	for rows.Next() {
		match, scanErr := scanMatch(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		matches = append(matches, match)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	return matches, nil
}

// HasPending проверяет, есть ли у команды незавершённый матч в турнире.
// PENDING значит: слот соперника свободен либо хотя бы один результат не подан.
// Спорный матч (оба результата поданы) под это определение не попадает.
func (r *postgresMatchRepository) HasPending(ctx context.Context, tournamentID, teamID int) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM matches
			WHERE tournament_id = $1
			  AND (team_one = $2 OR team_two = $2)
			  AND (team_two IS NULL OR team_one_result IS NULL OR team_two_result IS NULL)
		)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, tournamentID, teamID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// ClaimOpen — атомарный "найти открытый матч и занять его": поиск и запись
// team_two выполняются одним UPDATE, так что два одновременных претендента
// не могут захватить один слот. SKIP LOCKED отводит второго претендента
// от строки, которую уже забирает первый.
func (r *postgresMatchRepository) ClaimOpen(ctx context.Context, params ClaimOpenParams) (*models.Match, error) {
	query := `
		UPDATE matches
		SET team_two = $1, accepted_at = $2, maps = $3
		WHERE id = (
			SELECT id FROM matches
			WHERE tournament_id = $4
			  AND ruleset_id = $5
			  AND player_count = $6
			  AND team_two IS NULL
			  AND team_one <> $1
			ORDER BY created_at ASC
			LIMIT 1
			FOR UPDATE SKIP LOCKED
		)
		AND team_two IS NULL
		RETURNING ` + matchColumns

	match, err := scanMatch(r.db.QueryRowContext(ctx, query,
		params.TeamID,
		params.AcceptedAt,
		pq.Array(params.Maps),
		params.TournamentID,
		params.RulesetID,
		params.PlayerCount,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoOpenMatch
		}
		if isSerializationError(err) {
			return nil, ErrClaimConflict
		}
		return nil, err
	}
	return match, nil
}

// SetTeamResult записывает результат одной стороны, только если поле ещё
// пусто. Нулевое число затронутых строк разбирается на "матча нет" и
// "результат уже подан".
func (r *postgresMatchRepository) SetTeamResult(ctx context.Context, matchID int, side models.MatchSide, result models.SubmittedResult) error {
	var query string
	switch side {
	case models.SideOne:
		query = `UPDATE matches SET team_one_result = $1 WHERE id = $2 AND team_one_result IS NULL`
	case models.SideTwo:
		query = `UPDATE matches SET team_two_result = $1 WHERE id = $2 AND team_two_result IS NULL`
	default:
		return errors.New("invalid match side")
	}

	res, err := r.db.ExecContext(ctx, query, result, matchID)
	if err != nil {
		return err
	}
	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		if _, getErr := r.GetByID(ctx, matchID); getErr != nil {
			return getErr
		}
		return ErrResultAlreadySet
	}
	return nil
}

// SetBothResults — административная запись обоих результатов одним UPDATE.
// Защита от повторной обработки: пишем только пока resolved_at не выставлен.
func (r *postgresMatchRepository) SetBothResults(ctx context.Context, matchID int, teamOneResult, teamTwoResult models.SubmittedResult) error {
	query := `
		UPDATE matches
		SET team_one_result = $1, team_two_result = $2
		WHERE id = $3 AND resolved_at IS NULL`

	res, err := r.db.ExecContext(ctx, query, teamOneResult, teamTwoResult, matchID)
	if err != nil {
		return err
	}
	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		if _, getErr := r.GetByID(ctx, matchID); getErr != nil {
			return getErr
		}
		return ErrMatchAlreadyResolved
	}
	return nil
}

// MarkResolved — compare-and-set на resolved_at. Ровно один вызывающий
// выигрывает право применить рейтинг/очки к завершённому матчу.
func (r *postgresMatchRepository) MarkResolved(ctx context.Context, matchID int, resolvedAt time.Time) error {
	query := `UPDATE matches SET resolved_at = $1 WHERE id = $2 AND resolved_at IS NULL`

	res, err := r.db.ExecContext(ctx, query, resolvedAt, matchID)
	if err != nil {
		return err
	}
	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		if _, getErr := r.GetByID(ctx, matchID); getErr != nil {
			return getErr
		}
		return ErrMatchAlreadyResolved
	}
	return nil
}

// DeleteOpen удаляет матч, пока слот соперника свободен. Условие в WHERE
// не даёт удалению обогнать успешный захват слота.
func (r *postgresMatchRepository) DeleteOpen(ctx context.Context, matchID int) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM matches WHERE id = $1 AND team_two IS NULL`, matchID)
	if err != nil {
		return err
	}
	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		if _, getErr := r.GetByID(ctx, matchID); getErr != nil {
			return getErr
		}
		return ErrMatchAlreadyAccepted
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanMatch(row rowScanner) (*models.Match, error) {
	match := &models.Match{}
	err := row.Scan(
		&match.ID,
		&match.TournamentID,
		&match.RulesetID,
		&match.PlayerCount,
		&match.TeamOne,
		&match.TeamTwo,
		&match.TeamOneResult,
		&match.TeamTwoResult,
		pq.Array(&match.Maps),
		&match.CreatedAt,
		&match.AcceptedAt,
		&match.ResolvedAt,
	)
	if err != nil {
		return nil, err
	}
	return match, nil
}
