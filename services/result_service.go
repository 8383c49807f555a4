package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/matchforge/arena/events"
	"github.com/matchforge/arena/models"
	"github.com/matchforge/arena/rating"
	"github.com/matchforge/arena/repositories"
)

// SubmitResultInput — результат, заявленный одной из сторон матча.
type SubmitResultInput struct {
	TournamentID int
	MatchID      int
	TeamID       int
	UserID       int
	Result       models.SubmittedResult
}

// ForceResultInput — административное назначение исхода матча.
type ForceResultInput struct {
	TournamentID  int
	MatchID       int
	WinningTeamID int
}

type ResultService interface {
	SubmitResult(ctx context.Context, input SubmitResultInput) (*models.MatchView, error)
	ForceResult(ctx context.Context, input ForceResultInput) (*models.MatchView, error)
}

type resultService struct {
	tournamentRepo repositories.TournamentRepository
	teamRepo       repositories.TeamRepository
	matchRepo      repositories.MatchRepository
	ticketRepo     repositories.TicketRepository
	ratingCfg      rating.Config
	hub            EventBroadcaster
	logger         *slog.Logger
}

func NewResultService(
	tournamentRepo repositories.TournamentRepository,
	teamRepo repositories.TeamRepository,
	matchRepo repositories.MatchRepository,
	ticketRepo repositories.TicketRepository,
	ratingCfg rating.Config,
	hub EventBroadcaster,
	logger *slog.Logger,
) ResultService {
	return &resultService{
		tournamentRepo: tournamentRepo,
		teamRepo:       teamRepo,
		matchRepo:      matchRepo,
		ticketRepo:     ticketRepo,
		ratingCfg:      ratingCfg,
		hub:            hub,
		logger:         logger,
	}
}

// SubmitResult записывает результат стороны (write-once) и, если после этого
// заявлены обе стороны, разрешает матч: применяет рейтинг/очки либо
// открывает спор. Спор — не ошибка, вызов всё равно завершается успехом.
func (s *resultService) SubmitResult(ctx context.Context, input SubmitResultInput) (*models.MatchView, error) {
	if !models.ValidSubmittedResult(input.Result) {
		return nil, ErrInvalidResult
	}

	tournament, err := s.tournamentRepo.GetByID(ctx, input.TournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to load tournament %d: %w", input.TournamentID, err)
	}

	match, err := s.matchRepo.GetByID(ctx, input.MatchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to load match %d: %w", input.MatchID, err)
	}
	if match.TournamentID != tournament.ID {
		return nil, ErrMatchNotFound
	}

	side, ok := match.SideOf(input.TeamID)
	if !ok {
		return nil, ErrTeamNotInMatch
	}

	team, err := s.teamRepo.GetByID(ctx, input.TeamID)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to load team %d: %w", input.TeamID, err)
	}
	if !team.IsLeader(input.UserID) {
		return nil, ErrLeaderActionForbidden
	}

	// Условная запись: успех только если поле стороны ещё пусто.
	if err := s.matchRepo.SetTeamResult(ctx, match.ID, side, input.Result); err != nil {
		switch {
		case errors.Is(err, repositories.ErrResultAlreadySet):
			return nil, ErrResultAlreadySubmitted
		case errors.Is(err, repositories.ErrMatchNotFound):
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to record result for match %d: %w", match.ID, err)
	}

	// Перечитываем свежайшее состояние после собственной записи: вторая
	// сторона могла успеть подать результат параллельно.
	fresh, err := s.matchRepo.GetByID(ctx, match.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload match %d: %w", match.ID, err)
	}

	status := fresh.Status()
	if status == models.MatchStatusPending {
		return models.NewMatchView(fresh), nil
	}

	if err := s.finalize(ctx, tournament, fresh, status); err != nil {
		return nil, err
	}
	return models.NewMatchView(fresh), nil
}

// ForceResult записывает оба результата одним атомарным обновлением и дальше
// идёт обычным путём разрешения. Уже обработанный матч повторно не
// открывается: вызов отклоняется с ErrMatchAlreadyResolved. Спорный матч
// обработанным не считается (рейтинг по нему не применялся), поэтому
// администратор может его доразрешить.
func (s *resultService) ForceResult(ctx context.Context, input ForceResultInput) (*models.MatchView, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, input.TournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to load tournament %d: %w", input.TournamentID, err)
	}

	match, err := s.matchRepo.GetByID(ctx, input.MatchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to load match %d: %w", input.MatchID, err)
	}
	if match.TournamentID != tournament.ID {
		return nil, ErrMatchNotFound
	}
	if !match.HasTeam(input.WinningTeamID) {
		return nil, ErrTeamNotInMatch
	}
	if match.TeamTwo == nil {
		return nil, ErrMatchNotAccepted
	}

	teamOneWon := match.TeamOne == input.WinningTeamID
	teamOneResult, teamTwoResult := models.ResultWin, models.ResultLoss
	if !teamOneWon {
		teamOneResult, teamTwoResult = models.ResultLoss, models.ResultWin
	}

	if err := s.matchRepo.SetBothResults(ctx, match.ID, teamOneResult, teamTwoResult); err != nil {
		switch {
		case errors.Is(err, repositories.ErrMatchAlreadyResolved):
			return nil, ErrMatchAlreadyResolved
		case errors.Is(err, repositories.ErrMatchNotFound):
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to force result for match %d: %w", match.ID, err)
	}

	fresh, err := s.matchRepo.GetByID(ctx, match.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload match %d: %w", match.ID, err)
	}

	if err := s.finalize(ctx, tournament, fresh, fresh.Status()); err != nil {
		return nil, err
	}

	s.logger.Info("match result forced",
		slog.Int("match_id", fresh.ID),
		slog.Int("winning_team_id", input.WinningTeamID),
	)
	return models.NewMatchView(fresh), nil
}

// finalize завершает матч с уже заявленными обеими сторонами.
// Право на завершение берётся через compare-and-set на resolved_at: из двух
// гонящихся вызовов рейтинг применяет ровно один. Спор флаг resolved_at не
// ставит — такой матч остаётся на ручном разборе и административном пути.
func (s *resultService) finalize(ctx context.Context, tournament *models.Tournament, match *models.Match, status models.MatchStatus) error {
	if status == models.MatchStatusDispute {
		return s.openDispute(ctx, tournament, match)
	}

	if err := s.matchRepo.MarkResolved(ctx, match.ID, time.Now().UTC()); err != nil {
		if errors.Is(err, repositories.ErrMatchAlreadyResolved) {
			// Параллельный вызов уже применил исход.
			return nil
		}
		return fmt.Errorf("failed to mark match %d resolved: %w", match.ID, err)
	}

	teamOne, err := s.teamRepo.GetByID(ctx, match.TeamOne)
	if err != nil {
		return fmt.Errorf("failed to load team %d: %w", match.TeamOne, err)
	}
	teamTwo, err := s.teamRepo.GetByID(ctx, *match.TeamTwo)
	if err != nil {
		return fmt.Errorf("failed to load team %d: %w", *match.TeamTwo, err)
	}

	outcome := s.ratingCfg.ApplyOutcome(tournament.Format, teamOne, teamTwo, status)
	if outcome.TeamOneRating != nil {
		if err := s.teamRepo.UpdateRating(ctx, teamOne.ID, *outcome.TeamOneRating); err != nil {
			return fmt.Errorf("failed to update rating for team %d: %w", teamOne.ID, err)
		}
	}
	if outcome.TeamTwoRating != nil {
		if err := s.teamRepo.UpdateRating(ctx, teamTwo.ID, *outcome.TeamTwoRating); err != nil {
			return fmt.Errorf("failed to update rating for team %d: %w", teamTwo.ID, err)
		}
	}
	if outcome.TeamOnePoints != nil {
		if err := s.teamRepo.UpdatePoints(ctx, teamOne.ID, *outcome.TeamOnePoints); err != nil {
			return fmt.Errorf("failed to update points for team %d: %w", teamOne.ID, err)
		}
	}
	if outcome.TeamTwoPoints != nil {
		if err := s.teamRepo.UpdatePoints(ctx, teamTwo.ID, *outcome.TeamTwoPoints); err != nil {
			return fmt.Errorf("failed to update points for team %d: %w", teamTwo.ID, err)
		}
	}

	s.logger.Info("match resolved",
		slog.Int("match_id", match.ID),
		slog.String("status", string(status)),
	)
	s.hub.BroadcastToRoom(events.RoomForTournament(tournament.ID), events.Message{
		Type:    events.EventMatchResolved,
		Payload: models.NewMatchView(match),
		RoomID:  events.RoomForTournament(tournament.ID),
	})
	return nil
}

func (s *resultService) openDispute(ctx context.Context, tournament *models.Tournament, match *models.Match) error {
	ticket := &models.Ticket{
		TournamentID: tournament.ID,
		MatchID:      match.ID,
		TeamOne:      match.TeamOne,
		TeamTwo:      *match.TeamTwo,
		Category:     models.TicketCategoryDispute,
		Status:       models.TicketStatusNew,
		Subject:      models.DisputeTicketDefaultSubject,
	}
	if err := s.ticketRepo.OpenDispute(ctx, ticket); err != nil {
		return fmt.Errorf("failed to open dispute for match %d: %w", match.ID, err)
	}

	s.logger.Info("match disputed",
		slog.Int("match_id", match.ID),
		slog.Int("ticket_id", ticket.ID),
	)
	s.hub.BroadcastToRoom(events.RoomForTournament(tournament.ID), events.Message{
		Type:    events.EventMatchDisputed,
		Payload: models.NewMatchView(match),
		RoomID:  events.RoomForTournament(tournament.ID),
	})
	return nil
}
