package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/matchforge/arena/models"
	"github.com/matchforge/arena/repositories"
)

// MatchService отдаёт матчи с уже посчитанным производным статусом.
type MatchService interface {
	ListByTournament(ctx context.Context, tournamentID int) ([]*models.MatchView, error)
	GetByID(ctx context.Context, tournamentID, matchID int) (*models.MatchView, error)
}

type matchService struct {
	tournamentRepo repositories.TournamentRepository
	matchRepo      repositories.MatchRepository
}

func NewMatchService(
	tournamentRepo repositories.TournamentRepository,
	matchRepo repositories.MatchRepository,
) MatchService {
	return &matchService{
		tournamentRepo: tournamentRepo,
		matchRepo:      matchRepo,
	}
}

func (s *matchService) ListByTournament(ctx context.Context, tournamentID int) ([]*models.MatchView, error) {
	if _, err := s.tournamentRepo.GetByID(ctx, tournamentID); err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to load tournament %d: %w", tournamentID, err)
	}

	matches, err := s.matchRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches for tournament %d: %w", tournamentID, err)
	}

	views := make([]*models.MatchView, 0, len(matches))
	for _, match := range matches {
		views = append(views, models.NewMatchView(match))
	}
	return views, nil
}

func (s *matchService) GetByID(ctx context.Context, tournamentID, matchID int) (*models.MatchView, error) {
	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to load match %d: %w", matchID, err)
	}
	if match.TournamentID != tournamentID {
		return nil, ErrMatchNotFound
	}
	return models.NewMatchView(match), nil
}
