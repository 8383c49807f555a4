package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/matchforge/arena/events"
	"github.com/matchforge/arena/models"
	"github.com/matchforge/arena/repositories"
)

// RequestMatchInput — заявка команды на ладдерный матч.
type RequestMatchInput struct {
	TournamentID int
	TeamID       int
	RulesetID    int
	PlayerCount  int
	UserID       int
}

type MatchmakingService interface {
	RequestMatch(ctx context.Context, input RequestMatchInput) (*models.Match, error)
	CancelMatch(ctx context.Context, tournamentID, matchID, userID int) error
}

type matchmakingService struct {
	tournamentRepo repositories.TournamentRepository
	teamRepo       repositories.TeamRepository
	rulesetRepo    repositories.RulesetRepository
	matchRepo      repositories.MatchRepository
	hub            EventBroadcaster
	logger         *slog.Logger
}

func NewMatchmakingService(
	tournamentRepo repositories.TournamentRepository,
	teamRepo repositories.TeamRepository,
	rulesetRepo repositories.RulesetRepository,
	matchRepo repositories.MatchRepository,
	hub EventBroadcaster,
	logger *slog.Logger,
) MatchmakingService {
	return &matchmakingService{
		tournamentRepo: tournamentRepo,
		teamRepo:       teamRepo,
		rulesetRepo:    rulesetRepo,
		matchRepo:      matchRepo,
		hub:            hub,
		logger:         logger,
	}
}

// RequestMatch либо занимает подходящий открытый матч, либо создаёт новый
// со свободным слотом. Поиск-и-захват выполняются одной условной операцией
// в хранилище: два одновременных претендента не получат один слот.
func (s *matchmakingService) RequestMatch(ctx context.Context, input RequestMatchInput) (*models.Match, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, input.TournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to load tournament %d: %w", input.TournamentID, err)
	}

	team, err := s.teamRepo.GetByID(ctx, input.TeamID)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to load team %d: %w", input.TeamID, err)
	}
	if team.TournamentID != tournament.ID {
		return nil, ErrTeamNotInTournament
	}
	if !team.IsLeader(input.UserID) {
		return nil, ErrLeaderActionForbidden
	}

	ruleset, err := s.rulesetRepo.GetByID(ctx, input.RulesetID)
	if err != nil {
		if errors.Is(err, repositories.ErrRulesetNotFound) {
			return nil, ErrRulesetNotFound
		}
		return nil, fmt.Errorf("failed to load ruleset %d: %w", input.RulesetID, err)
	}
	if !ruleset.AllowsPlayerCount(input.PlayerCount) {
		return nil, ErrInvalidPlayerCount
	}

	hasPending, err := s.matchRepo.HasPending(ctx, tournament.ID, team.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check ongoing matches for team %d: %w", team.ID, err)
	}
	if hasPending {
		return nil, ErrOngoingMatchExists
	}

	// Карты разыгрываются в момент принятия матча и больше не меняются.
	maps := drawMaps(ruleset.Maps, ruleset.BestOf)
	claim := repositories.ClaimOpenParams{
		TournamentID: tournament.ID,
		RulesetID:    ruleset.ID,
		PlayerCount:  input.PlayerCount,
		TeamID:       team.ID,
		AcceptedAt:   time.Now().UTC(),
		Maps:         maps,
	}

	// Проигранная гонка за слот — не ошибка: одна повторная попытка поиска,
	// дальше просто создаём свой открытый матч.
	for attempt := 0; attempt < 2; attempt++ {
		match, claimErr := s.matchRepo.ClaimOpen(ctx, claim)
		if claimErr == nil {
			s.logger.Info("open match claimed",
				slog.Int("match_id", match.ID),
				slog.Int("tournament_id", tournament.ID),
				slog.Int("team_id", team.ID),
			)
			s.hub.BroadcastToRoom(events.RoomForTournament(tournament.ID), events.Message{
				Type:    events.EventMatchAccepted,
				Payload: models.NewMatchView(match),
				RoomID:  events.RoomForTournament(tournament.ID),
			})
			return match, nil
		}
		if errors.Is(claimErr, repositories.ErrNoOpenMatch) {
			break
		}
		if errors.Is(claimErr, repositories.ErrClaimConflict) {
			continue
		}
		return nil, fmt.Errorf("failed to claim open match: %w", claimErr)
	}

	match := &models.Match{
		TournamentID: tournament.ID,
		RulesetID:    ruleset.ID,
		PlayerCount:  input.PlayerCount,
		TeamOne:      team.ID,
	}
	if err := s.matchRepo.Create(ctx, match); err != nil {
		return nil, fmt.Errorf("failed to create match: %w", err)
	}

	s.logger.Info("open match created",
		slog.Int("match_id", match.ID),
		slog.Int("tournament_id", tournament.ID),
		slog.Int("team_id", team.ID),
	)
	s.hub.BroadcastToRoom(events.RoomForTournament(tournament.ID), events.Message{
		Type:    events.EventMatchCreated,
		Payload: models.NewMatchView(match),
		RoomID:  events.RoomForTournament(tournament.ID),
	})
	return match, nil
}

// CancelMatch удаляет ещё не принятый матч. Разрешено только лидеру команды,
// которая его создала; удаление условное и не может обогнать захват слота.
func (s *matchmakingService) CancelMatch(ctx context.Context, tournamentID, matchID, userID int) error {
	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return ErrMatchNotFound
		}
		return fmt.Errorf("failed to load match %d: %w", matchID, err)
	}
	if match.TournamentID != tournamentID {
		return ErrMatchNotFound
	}

	team, err := s.teamRepo.GetByID(ctx, match.TeamOne)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return ErrTeamNotFound
		}
		return fmt.Errorf("failed to load team %d: %w", match.TeamOne, err)
	}
	if !team.IsLeader(userID) {
		return ErrLeaderActionForbidden
	}

	if err := s.matchRepo.DeleteOpen(ctx, matchID); err != nil {
		switch {
		case errors.Is(err, repositories.ErrMatchAlreadyAccepted):
			return ErrMatchAlreadyAccepted
		case errors.Is(err, repositories.ErrMatchNotFound):
			return ErrMatchNotFound
		}
		return fmt.Errorf("failed to delete match %d: %w", matchID, err)
	}
	return nil
}
