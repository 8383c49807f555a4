package services

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/matchforge/arena/models"
	"github.com/matchforge/arena/repositories"
	"golang.org/x/sync/errgroup"
)

type StandingsService interface {
	TournamentStandings(ctx context.Context, tournamentID int) ([]*models.TeamRecord, error)
	TeamRecord(ctx context.Context, tournamentID, teamID int) (*models.TeamRecord, error)
}

type standingsService struct {
	tournamentRepo repositories.TournamentRepository
	teamRepo       repositories.TeamRepository
	matchRepo      repositories.MatchRepository
}

func NewStandingsService(
	tournamentRepo repositories.TournamentRepository,
	teamRepo repositories.TeamRepository,
	matchRepo repositories.MatchRepository,
) StandingsService {
	return &standingsService{
		tournamentRepo: tournamentRepo,
		teamRepo:       teamRepo,
		matchRepo:      matchRepo,
	}
}

// TournamentStandings пересчитывает W/L/T всех команд турнира по текущим
// матчам. Ничего не кэшируется: счётчики каждый раз выводятся заново.
func (s *standingsService) TournamentStandings(ctx context.Context, tournamentID int) ([]*models.TeamRecord, error) {
	if _, err := s.tournamentRepo.GetByID(ctx, tournamentID); err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to load tournament %d: %w", tournamentID, err)
	}

	matches, teams, err := s.loadTournamentData(ctx, tournamentID)
	if err != nil {
		return nil, err
	}

	records := aggregateRecords(matches, teams)
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Wins > records[j].Wins
	})
	return records, nil
}

func (s *standingsService) TeamRecord(ctx context.Context, tournamentID, teamID int) (*models.TeamRecord, error) {
	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to load team %d: %w", teamID, err)
	}
	if team.TournamentID != tournamentID {
		return nil, ErrTeamNotFound
	}

	matches, err := s.matchRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches for tournament %d: %w", tournamentID, err)
	}

	records := aggregateRecords(matches, []*models.Team{team})
	return records[0], nil
}

func (s *standingsService) loadTournamentData(ctx context.Context, tournamentID int) ([]*models.Match, []*models.Team, error) {
	var (
		matches []*models.Match
		teams   []*models.Team
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		matches, err = s.matchRepo.ListByTournament(gCtx, tournamentID)
		if err != nil {
			return fmt.Errorf("failed to list matches for tournament %d: %w", tournamentID, err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		teams, err = s.teamRepo.ListByTournament(gCtx, tournamentID)
		if err != nil {
			return fmt.Errorf("failed to list teams for tournament %d: %w", tournamentID, err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return matches, teams, nil
}

// aggregateRecords — чистая свёртка матчей в счётчики W/L/T.
// PENDING и DISPUTE не увеличивают ни один счётчик.
func aggregateRecords(matches []*models.Match, teams []*models.Team) []*models.TeamRecord {
	records := make([]*models.TeamRecord, 0, len(teams))
	for _, team := range teams {
		record := &models.TeamRecord{Team: team}
		for _, match := range matches {
			side, ok := match.SideOf(team.ID)
			if !ok {
				continue
			}
			switch match.Status() {
			case models.MatchStatusTie:
				record.Ties++
			case models.MatchStatusTeamOne:
				if side == models.SideOne {
					record.Wins++
				} else {
					record.Losses++
				}
			case models.MatchStatusTeamTwo:
				if side == models.SideTwo {
					record.Wins++
				} else {
					record.Losses++
				}
			}
		}
		records = append(records, record)
	}
	return records
}
