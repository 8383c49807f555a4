package services

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/matchforge/arena/models"
	"github.com/matchforge/arena/repositories"
)

// In-memory реализации репозиториев с той же семантикой условных
// обновлений, что и у postgres-версий.

type fakeTournamentRepo struct {
	mu          sync.Mutex
	tournaments map[int]*models.Tournament
	nextID      int
}

func newFakeTournamentRepo() *fakeTournamentRepo {
	return &fakeTournamentRepo{tournaments: make(map[int]*models.Tournament), nextID: 1}
}

func (r *fakeTournamentRepo) Create(_ context.Context, tournament *models.Tournament) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	tournament.ID = r.nextID
	r.nextID++
	tournament.CreatedAt = time.Now()
	r.tournaments[tournament.ID] = tournament
	return nil
}

func (r *fakeTournamentRepo) GetByID(_ context.Context, id int) (*models.Tournament, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	tournament, ok := r.tournaments[id]
	if !ok {
		return nil, repositories.ErrTournamentNotFound
	}
	copied := *tournament
	return &copied, nil
}

type fakeTeamRepo struct {
	mu     sync.Mutex
	teams  map[int]*models.Team
	nextID int
}

func newFakeTeamRepo() *fakeTeamRepo {
	return &fakeTeamRepo{teams: make(map[int]*models.Team), nextID: 1}
}

func (r *fakeTeamRepo) Create(_ context.Context, team *models.Team) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	team.ID = r.nextID
	r.nextID++
	team.CreatedAt = time.Now()
	r.teams[team.ID] = team
	return nil
}

func (r *fakeTeamRepo) GetByID(_ context.Context, id int) (*models.Team, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	team, ok := r.teams[id]
	if !ok {
		return nil, repositories.ErrTeamNotFound
	}
	copied := *team
	copied.Members = append([]models.TeamMember(nil), team.Members...)
	return &copied, nil
}

func (r *fakeTeamRepo) ListByTournament(_ context.Context, tournamentID int) ([]*models.Team, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	teams := make([]*models.Team, 0)
	for _, team := range r.teams {
		if team.TournamentID == tournamentID {
			copied := *team
			teams = append(teams, &copied)
		}
	}
	sort.Slice(teams, func(i, j int) bool { return teams[i].ID < teams[j].ID })
	return teams, nil
}

func (r *fakeTeamRepo) UpdateRating(_ context.Context, teamID, rating int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	team, ok := r.teams[teamID]
	if !ok {
		return repositories.ErrTeamNotFound
	}
	team.Rating = &rating
	return nil
}

func (r *fakeTeamRepo) UpdatePoints(_ context.Context, teamID, points int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	team, ok := r.teams[teamID]
	if !ok {
		return repositories.ErrTeamNotFound
	}
	team.Points = &points
	return nil
}

type fakeRulesetRepo struct {
	mu       sync.Mutex
	rulesets map[int]*models.Ruleset
	nextID   int
}

func newFakeRulesetRepo() *fakeRulesetRepo {
	return &fakeRulesetRepo{rulesets: make(map[int]*models.Ruleset), nextID: 1}
}

func (r *fakeRulesetRepo) Create(_ context.Context, ruleset *models.Ruleset) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	ruleset.ID = r.nextID
	r.nextID++
	r.rulesets[ruleset.ID] = ruleset
	return nil
}

func (r *fakeRulesetRepo) GetByID(_ context.Context, id int) (*models.Ruleset, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ruleset, ok := r.rulesets[id]
	if !ok {
		return nil, repositories.ErrRulesetNotFound
	}
	copied := *ruleset
	copied.Maps = append([]string(nil), ruleset.Maps...)
	return &copied, nil
}

type fakeMatchRepo struct {
	mu      sync.Mutex
	matches map[int]*models.Match
	nextID  int
}

func newFakeMatchRepo() *fakeMatchRepo {
	return &fakeMatchRepo{matches: make(map[int]*models.Match), nextID: 1}
}

func copyMatch(m *models.Match) *models.Match {
	copied := *m
	copied.Maps = append([]string(nil), m.Maps...)
	if m.TeamTwo != nil {
		v := *m.TeamTwo
		copied.TeamTwo = &v
	}
	if m.TeamOneResult != nil {
		v := *m.TeamOneResult
		copied.TeamOneResult = &v
	}
	if m.TeamTwoResult != nil {
		v := *m.TeamTwoResult
		copied.TeamTwoResult = &v
	}
	if m.AcceptedAt != nil {
		v := *m.AcceptedAt
		copied.AcceptedAt = &v
	}
	if m.ResolvedAt != nil {
		v := *m.ResolvedAt
		copied.ResolvedAt = &v
	}
	return &copied
}

func (r *fakeMatchRepo) Create(_ context.Context, match *models.Match) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	match.ID = r.nextID
	r.nextID++
	match.CreatedAt = time.Now()
	r.matches[match.ID] = copyMatch(match)
	return nil
}

func (r *fakeMatchRepo) GetByID(_ context.Context, id int) (*models.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	match, ok := r.matches[id]
	if !ok {
		return nil, repositories.ErrMatchNotFound
	}
	return copyMatch(match), nil
}

func (r *fakeMatchRepo) ListByTournament(_ context.Context, tournamentID int) ([]*models.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	matches := make([]*models.Match, 0)
	for _, match := range r.matches {
		if match.TournamentID == tournamentID {
			matches = append(matches, copyMatch(match))
		}
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].ID < matches[j].ID })
	return matches, nil
}

func (r *fakeMatchRepo) HasPending(_ context.Context, tournamentID, teamID int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, match := range r.matches {
		if match.TournamentID != tournamentID || !match.HasTeam(teamID) {
			continue
		}
		if match.TeamTwo == nil || match.TeamOneResult == nil || match.TeamTwoResult == nil {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeMatchRepo) ClaimOpen(_ context.Context, params repositories.ClaimOpenParams) (*models.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids := make([]int, 0, len(r.matches))
	for id := range r.matches {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	for _, id := range ids {
		match := r.matches[id]
		if match.TournamentID != params.TournamentID ||
			match.RulesetID != params.RulesetID ||
			match.PlayerCount != params.PlayerCount ||
			match.TeamTwo != nil ||
			match.TeamOne == params.TeamID {
			continue
		}
		teamTwo := params.TeamID
		acceptedAt := params.AcceptedAt
		match.TeamTwo = &teamTwo
		match.AcceptedAt = &acceptedAt
		match.Maps = append([]string(nil), params.Maps...)
		return copyMatch(match), nil
	}
	return nil, repositories.ErrNoOpenMatch
}

func (r *fakeMatchRepo) SetTeamResult(_ context.Context, matchID int, side models.MatchSide, result models.SubmittedResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	match, ok := r.matches[matchID]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	switch side {
	case models.SideOne:
		if match.TeamOneResult != nil {
			return repositories.ErrResultAlreadySet
		}
		match.TeamOneResult = &result
	case models.SideTwo:
		if match.TeamTwoResult != nil {
			return repositories.ErrResultAlreadySet
		}
		match.TeamTwoResult = &result
	}
	return nil
}

func (r *fakeMatchRepo) SetBothResults(_ context.Context, matchID int, teamOneResult, teamTwoResult models.SubmittedResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	match, ok := r.matches[matchID]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	if match.ResolvedAt != nil {
		return repositories.ErrMatchAlreadyResolved
	}
	match.TeamOneResult = &teamOneResult
	match.TeamTwoResult = &teamTwoResult
	return nil
}

func (r *fakeMatchRepo) MarkResolved(_ context.Context, matchID int, resolvedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	match, ok := r.matches[matchID]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	if match.ResolvedAt != nil {
		return repositories.ErrMatchAlreadyResolved
	}
	match.ResolvedAt = &resolvedAt
	return nil
}

func (r *fakeMatchRepo) DeleteOpen(_ context.Context, matchID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	match, ok := r.matches[matchID]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	if match.TeamTwo != nil {
		return repositories.ErrMatchAlreadyAccepted
	}
	delete(r.matches, matchID)
	return nil
}

type fakeTicketRepo struct {
	mu      sync.Mutex
	tickets []*models.Ticket
	nextID  int
}

func newFakeTicketRepo() *fakeTicketRepo {
	return &fakeTicketRepo{nextID: 1}
}

func (r *fakeTicketRepo) OpenDispute(_ context.Context, ticket *models.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.tickets {
		if existing.MatchID == ticket.MatchID {
			// Уникальный индекс по match_id: повторное открытие схлопывается.
			return nil
		}
	}
	ticket.ID = r.nextID
	r.nextID++
	ticket.CreatedAt = time.Now()
	r.tickets = append(r.tickets, ticket)
	return nil
}

func (r *fakeTicketRepo) GetByID(_ context.Context, id int) (*models.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ticket := range r.tickets {
		if ticket.ID == id {
			return ticket, nil
		}
	}
	return nil, repositories.ErrTicketNotFound
}

func (r *fakeTicketRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.tickets)
}

type recordingBroadcaster struct {
	mu       sync.Mutex
	messages []interface{}
}

func (b *recordingBroadcaster) BroadcastToRoom(_ string, message interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.messages = append(b.messages, message)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
