package services

import (
	"context"
	"errors"
	"testing"

	"github.com/matchforge/arena/events"
	"github.com/matchforge/arena/models"
)

// acceptedMatch сводит две команды в принятый матч через обычный
// матчмейкинг: одна открывает слот, вторая его занимает.
func acceptedMatch(t *testing.T, env *testEnv, teamA, teamB *models.Team, leaderA, leaderB int) *models.Match {
	t.Helper()
	if _, err := env.request(teamA, leaderA); err != nil {
		t.Fatalf("open match: %v", err)
	}
	match, err := env.request(teamB, leaderB)
	if err != nil {
		t.Fatalf("claim match: %v", err)
	}
	return match
}

func (env *testEnv) submit(matchID, teamID, leaderID int, result models.SubmittedResult) (*models.MatchView, error) {
	return env.results.SubmitResult(context.Background(), SubmitResultInput{
		TournamentID: env.tournament.ID,
		MatchID:      matchID,
		TeamID:       teamID,
		UserID:       leaderID,
		Result:       result,
	})
}

func (env *testEnv) teamRating(t *testing.T, teamID int) int {
	t.Helper()
	team, err := env.teams.GetByID(context.Background(), teamID)
	if err != nil {
		t.Fatalf("load team %d: %v", teamID, err)
	}
	if team.Rating == nil {
		t.Fatalf("team %d has no rating", teamID)
	}
	return *team.Rating
}

func (env *testEnv) teamPoints(t *testing.T, teamID int) int {
	t.Helper()
	team, err := env.teams.GetByID(context.Background(), teamID)
	if err != nil {
		t.Fatalf("load team %d: %v", teamID, err)
	}
	if team.Points == nil {
		t.Fatalf("team %d has no points", teamID)
	}
	return *team.Points
}

func TestSubmitResultFirstSideStaysPending(t *testing.T) {
	env := newTestEnv(t, models.FormatLadder)
	teamA := env.addTeam(t, "alpha", 10)
	teamB := env.addTeam(t, "bravo", 20)
	match := acceptedMatch(t, env, teamA, teamB, 10, 20)

	view, err := env.submit(match.ID, teamA.ID, 10, models.ResultWin)
	if err != nil {
		t.Fatalf("SubmitResult: %v", err)
	}
	if view.Status != models.MatchStatusPending {
		t.Errorf("status = %s, want PENDING", view.Status)
	}
	if view.ResolvedAt != nil {
		t.Error("ResolvedAt set after single submission")
	}
	if got := env.teamRating(t, teamA.ID); got != 1500 {
		t.Errorf("rating changed to %d before both sides submitted", got)
	}
}

func TestSubmitResultWriteOnce(t *testing.T) {
	env := newTestEnv(t, models.FormatLadder)
	teamA := env.addTeam(t, "alpha", 10)
	teamB := env.addTeam(t, "bravo", 20)
	match := acceptedMatch(t, env, teamA, teamB, 10, 20)

	if _, err := env.submit(match.ID, teamA.ID, 10, models.ResultWin); err != nil {
		t.Fatalf("first submit: %v", err)
	}

	// Попытка перезаписать собственный результат отклоняется,
	// сохранённое значение не меняется.
	_, err := env.submit(match.ID, teamA.ID, 10, models.ResultLoss)
	if !errors.Is(err, ErrResultAlreadySubmitted) {
		t.Fatalf("second submit err = %v, want ErrResultAlreadySubmitted", err)
	}

	stored, err := env.matches.GetByID(context.Background(), match.ID)
	if err != nil {
		t.Fatalf("reload match: %v", err)
	}
	if stored.TeamOneResult == nil || *stored.TeamOneResult != models.ResultWin {
		t.Errorf("TeamOneResult = %v, want WIN preserved", stored.TeamOneResult)
	}
}

func TestSubmitResultResolvesLadderMatch(t *testing.T) {
	env := newTestEnv(t, models.FormatLadder)
	teamA := env.addTeam(t, "alpha", 10)
	teamB := env.addTeam(t, "bravo", 20)
	match := acceptedMatch(t, env, teamA, teamB, 10, 20)

	if _, err := env.submit(match.ID, teamA.ID, 10, models.ResultWin); err != nil {
		t.Fatalf("submit team one: %v", err)
	}
	view, err := env.submit(match.ID, teamB.ID, 20, models.ResultLoss)
	if err != nil {
		t.Fatalf("submit team two: %v", err)
	}

	if view.Status != models.MatchStatusTeamOne {
		t.Errorf("status = %s, want TEAM_ONE", view.Status)
	}
	if got := env.teamRating(t, teamA.ID); got != 1516 {
		t.Errorf("winner rating = %d, want 1516", got)
	}
	if got := env.teamRating(t, teamB.ID); got != 1484 {
		t.Errorf("loser rating = %d, want 1484", got)
	}

	stored, err := env.matches.GetByID(context.Background(), match.ID)
	if err != nil {
		t.Fatalf("reload match: %v", err)
	}
	if stored.ResolvedAt == nil {
		t.Error("ResolvedAt not set after resolution")
	}
}

func TestSubmitResultTieKeepsLadderRatings(t *testing.T) {
	env := newTestEnv(t, models.FormatLadder)
	teamA := env.addTeam(t, "alpha", 10)
	teamB := env.addTeam(t, "bravo", 20)
	match := acceptedMatch(t, env, teamA, teamB, 10, 20)

	if _, err := env.submit(match.ID, teamA.ID, 10, models.ResultTie); err != nil {
		t.Fatalf("submit team one: %v", err)
	}
	view, err := env.submit(match.ID, teamB.ID, 20, models.ResultTie)
	if err != nil {
		t.Fatalf("submit team two: %v", err)
	}

	if view.Status != models.MatchStatusTie {
		t.Errorf("status = %s, want TIE", view.Status)
	}
	if got := env.teamRating(t, teamA.ID); got != 1500 {
		t.Errorf("rating = %d, want unchanged 1500", got)
	}
	stored, err := env.matches.GetByID(context.Background(), match.ID)
	if err != nil {
		t.Fatalf("reload match: %v", err)
	}
	if stored.ResolvedAt == nil {
		t.Error("tie is a resolution, ResolvedAt must be set")
	}
}

func TestSubmitResultAwardsLeaguePoints(t *testing.T) {
	env := newTestEnv(t, models.FormatLeague)
	teamA := env.addTeam(t, "alpha", 10)
	teamB := env.addTeam(t, "bravo", 20)
	match := acceptedMatch(t, env, teamA, teamB, 10, 20)

	if _, err := env.submit(match.ID, teamA.ID, 10, models.ResultLoss); err != nil {
		t.Fatalf("submit team one: %v", err)
	}
	if _, err := env.submit(match.ID, teamB.ID, 20, models.ResultWin); err != nil {
		t.Fatalf("submit team two: %v", err)
	}

	if got := env.teamPoints(t, teamA.ID); got != 0 {
		t.Errorf("loser points = %d, want 0", got)
	}
	if got := env.teamPoints(t, teamB.ID); got != 3 {
		t.Errorf("winner points = %d, want 3", got)
	}
}

func TestSubmitResultDisputeOpensTicket(t *testing.T) {
	env := newTestEnv(t, models.FormatLadder)
	teamA := env.addTeam(t, "alpha", 10)
	teamB := env.addTeam(t, "bravo", 20)
	match := acceptedMatch(t, env, teamA, teamB, 10, 20)

	if _, err := env.submit(match.ID, teamA.ID, 10, models.ResultWin); err != nil {
		t.Fatalf("submit team one: %v", err)
	}
	view, err := env.submit(match.ID, teamB.ID, 20, models.ResultWin)
	if err != nil {
		t.Fatalf("conflicting submit must not fail: %v", err)
	}
	if view.Status != models.MatchStatusDispute {
		t.Errorf("status = %s, want DISPUTE", view.Status)
	}

	if got := env.tickets.count(); got != 1 {
		t.Errorf("tickets = %d, want 1", got)
	}
	if got := env.teamRating(t, teamA.ID); got != 1500 {
		t.Errorf("rating = %d, disputed match must not move ratings", got)
	}
	stored, err := env.matches.GetByID(context.Background(), match.ID)
	if err != nil {
		t.Fatalf("reload match: %v", err)
	}
	if stored.ResolvedAt != nil {
		t.Error("disputed match marked resolved")
	}

	types := env.eventTypes()
	if len(types) == 0 || types[len(types)-1] != events.EventMatchDisputed {
		t.Errorf("events = %v, want MATCH_DISPUTED last", types)
	}
}

func TestSubmitResultRejectsOutsider(t *testing.T) {
	env := newTestEnv(t, models.FormatLadder)
	teamA := env.addTeam(t, "alpha", 10)
	teamB := env.addTeam(t, "bravo", 20)
	teamC := env.addTeam(t, "charlie", 30)
	match := acceptedMatch(t, env, teamA, teamB, 10, 20)

	if _, err := env.submit(match.ID, teamC.ID, 30, models.ResultWin); !errors.Is(err, ErrTeamNotInMatch) {
		t.Fatalf("err = %v, want ErrTeamNotInMatch", err)
	}
}

func TestSubmitResultValidatesValue(t *testing.T) {
	env := newTestEnv(t, models.FormatLadder)
	teamA := env.addTeam(t, "alpha", 10)
	teamB := env.addTeam(t, "bravo", 20)
	match := acceptedMatch(t, env, teamA, teamB, 10, 20)

	if _, err := env.submit(match.ID, teamA.ID, 10, "VICTORY"); !errors.Is(err, ErrInvalidResult) {
		t.Fatalf("err = %v, want ErrInvalidResult", err)
	}
}

func TestForceResultMirrorsBothSides(t *testing.T) {
	env := newTestEnv(t, models.FormatLadder)
	teamA := env.addTeam(t, "alpha", 10)
	teamB := env.addTeam(t, "bravo", 20)
	match := acceptedMatch(t, env, teamA, teamB, 10, 20)

	view, err := env.results.ForceResult(context.Background(), ForceResultInput{
		TournamentID:  env.tournament.ID,
		MatchID:       match.ID,
		WinningTeamID: teamB.ID,
	})
	if err != nil {
		t.Fatalf("ForceResult: %v", err)
	}
	if view.Status != models.MatchStatusTeamTwo {
		t.Errorf("status = %s, want TEAM_TWO", view.Status)
	}

	stored, err := env.matches.GetByID(context.Background(), match.ID)
	if err != nil {
		t.Fatalf("reload match: %v", err)
	}
	if stored.TeamOneResult == nil || *stored.TeamOneResult != models.ResultLoss {
		t.Errorf("TeamOneResult = %v, want LOSS", stored.TeamOneResult)
	}
	if stored.TeamTwoResult == nil || *stored.TeamTwoResult != models.ResultWin {
		t.Errorf("TeamTwoResult = %v, want WIN", stored.TeamTwoResult)
	}
	if got := env.teamRating(t, teamB.ID); got != 1516 {
		t.Errorf("winner rating = %d, want 1516", got)
	}
	if got := env.teamRating(t, teamA.ID); got != 1484 {
		t.Errorf("loser rating = %d, want 1484", got)
	}
}

func TestForceResultRejectsResolvedMatch(t *testing.T) {
	env := newTestEnv(t, models.FormatLadder)
	teamA := env.addTeam(t, "alpha", 10)
	teamB := env.addTeam(t, "bravo", 20)
	match := acceptedMatch(t, env, teamA, teamB, 10, 20)

	if _, err := env.submit(match.ID, teamA.ID, 10, models.ResultWin); err != nil {
		t.Fatalf("submit team one: %v", err)
	}
	if _, err := env.submit(match.ID, teamB.ID, 20, models.ResultLoss); err != nil {
		t.Fatalf("submit team two: %v", err)
	}

	_, err := env.results.ForceResult(context.Background(), ForceResultInput{
		TournamentID:  env.tournament.ID,
		MatchID:       match.ID,
		WinningTeamID: teamB.ID,
	})
	if !errors.Is(err, ErrMatchAlreadyResolved) {
		t.Fatalf("err = %v, want ErrMatchAlreadyResolved", err)
	}
	// Рейтинг от первого разрешения не пересчитан.
	if got := env.teamRating(t, teamA.ID); got != 1516 {
		t.Errorf("rating = %d, want 1516 from the original resolution", got)
	}
}

func TestForceResultSettlesDispute(t *testing.T) {
	env := newTestEnv(t, models.FormatLadder)
	teamA := env.addTeam(t, "alpha", 10)
	teamB := env.addTeam(t, "bravo", 20)
	match := acceptedMatch(t, env, teamA, teamB, 10, 20)

	if _, err := env.submit(match.ID, teamA.ID, 10, models.ResultWin); err != nil {
		t.Fatalf("submit team one: %v", err)
	}
	if _, err := env.submit(match.ID, teamB.ID, 20, models.ResultWin); err != nil {
		t.Fatalf("submit team two: %v", err)
	}

	view, err := env.results.ForceResult(context.Background(), ForceResultInput{
		TournamentID:  env.tournament.ID,
		MatchID:       match.ID,
		WinningTeamID: teamA.ID,
	})
	if err != nil {
		t.Fatalf("ForceResult on disputed match: %v", err)
	}
	if view.Status != models.MatchStatusTeamOne {
		t.Errorf("status = %s, want TEAM_ONE", view.Status)
	}
	if got := env.teamRating(t, teamA.ID); got != 1516 {
		t.Errorf("winner rating = %d, want 1516", got)
	}
	stored, err := env.matches.GetByID(context.Background(), match.ID)
	if err != nil {
		t.Fatalf("reload match: %v", err)
	}
	if stored.ResolvedAt == nil {
		t.Error("settled dispute must be marked resolved")
	}
}

func TestForceResultRejectsOpenMatch(t *testing.T) {
	env := newTestEnv(t, models.FormatLadder)
	teamA := env.addTeam(t, "alpha", 10)

	match, err := env.request(teamA, 10)
	if err != nil {
		t.Fatalf("open match: %v", err)
	}

	_, err = env.results.ForceResult(context.Background(), ForceResultInput{
		TournamentID:  env.tournament.ID,
		MatchID:       match.ID,
		WinningTeamID: teamA.ID,
	})
	if !errors.Is(err, ErrMatchNotAccepted) {
		t.Fatalf("err = %v, want ErrMatchNotAccepted", err)
	}
}

func TestForceResultRejectsOutsiderWinner(t *testing.T) {
	env := newTestEnv(t, models.FormatLadder)
	teamA := env.addTeam(t, "alpha", 10)
	teamB := env.addTeam(t, "bravo", 20)
	teamC := env.addTeam(t, "charlie", 30)
	match := acceptedMatch(t, env, teamA, teamB, 10, 20)

	_, err := env.results.ForceResult(context.Background(), ForceResultInput{
		TournamentID:  env.tournament.ID,
		MatchID:       match.ID,
		WinningTeamID: teamC.ID,
	})
	if !errors.Is(err, ErrTeamNotInMatch) {
		t.Fatalf("err = %v, want ErrTeamNotInMatch", err)
	}
}
