package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"
	"github.com/matchforge/arena/models"
)

var ErrRulesetNotFound = errors.New("ruleset not found")

type RulesetRepository interface {
	Create(ctx context.Context, ruleset *models.Ruleset) error
	GetByID(ctx context.Context, id int) (*models.Ruleset, error)
}

type postgresRulesetRepository struct {
	db *sql.DB
}

func NewPostgresRulesetRepository(db *sql.DB) RulesetRepository {
	return &postgresRulesetRepository{db: db}
}

func (r *postgresRulesetRepository) Create(ctx context.Context, ruleset *models.Ruleset) error {
	query := `
		INSERT INTO rulesets (name, best_of, maps, min_players, max_players)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	return r.db.QueryRowContext(ctx, query,
		ruleset.Name,
		ruleset.BestOf,
		pq.Array(ruleset.Maps),
		ruleset.MinPlayers,
		ruleset.MaxPlayers,
	).Scan(&ruleset.ID)
}

func (r *postgresRulesetRepository) GetByID(ctx context.Context, id int) (*models.Ruleset, error) {
	query := `
		SELECT id, name, best_of, maps, min_players, max_players
		FROM rulesets
		WHERE id = $1`

	ruleset := &models.Ruleset{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&ruleset.ID,
		&ruleset.Name,
		&ruleset.BestOf,
		pq.Array(&ruleset.Maps),
		&ruleset.MinPlayers,
		&ruleset.MaxPlayers,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRulesetNotFound
		}
		return nil, err
	}
	return ruleset, nil
}
