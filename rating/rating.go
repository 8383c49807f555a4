// Package rating содержит чистую математику обновления рейтинга и очков.
// Никаких обращений к БД: сервисы передают сюда текущие значения и
// сохраняют то, что вернулось.
package rating

import (
	"math"

	"github.com/matchforge/arena/models"
)

// Config задаёт константы турнирных правил. Значения по умолчанию
// совпадают с поведением продакшена (K=32, старт 1500, очки 3/1/0),
// но вынесены в конфигурацию, чтобы движок можно было тестировать
// против альтернативных правил.
type Config struct {
	K              int
	StartingRating int
	WinPoints      int
	TiePoints      int
}

func DefaultConfig() Config {
	return Config{
		K:              32,
		StartingRating: 1500,
		WinPoints:      3,
		TiePoints:      1,
	}
}

// ExpectedScore — ожидаемый счёт стороны A против стороны B по Эло.
func (c Config) ExpectedScore(ratingA, ratingB int) float64 {
	return 1 / (1 + math.Pow(10, float64(ratingB-ratingA)/400))
}

// UpdateRating возвращает новый рейтинг после матча.
// Дельта округляется до ближайшего целого, рейтинги остаются целыми.
func (c Config) UpdateRating(rating int, actual, expected float64) int {
	return rating + int(math.Round(float64(c.K)*(actual-expected)))
}

// UpdateElo считает новые рейтинги обеих сторон для решённого матча.
// Статус обязан быть TEAM_ONE или TEAM_TWO: ничья в ладдере рейтинг
// не меняет, и вызывающий код не должен сюда с ней приходить.
func (c Config) UpdateElo(ratingOne, ratingTwo int, status models.MatchStatus) (int, int) {
	expectedOne := c.ExpectedScore(ratingOne, ratingTwo)
	expectedTwo := c.ExpectedScore(ratingTwo, ratingOne)

	scoreOne, scoreTwo := 0.0, 1.0
	if status == models.MatchStatusTeamOne {
		scoreOne, scoreTwo = 1.0, 0.0
	}

	newOne := c.UpdateRating(ratingOne, scoreOne, expectedOne)
	newTwo := c.UpdateRating(ratingTwo, scoreTwo, expectedTwo)
	return newOne, newTwo
}

// AwardPoints начисляет очки по таблице: победителю WinPoints,
// обоим по TiePoints при ничьей, проигравшему ничего.
func (c Config) AwardPoints(pointsOne, pointsTwo int, status models.MatchStatus) (int, int) {
	switch status {
	case models.MatchStatusTie:
		return pointsOne + c.TiePoints, pointsTwo + c.TiePoints
	case models.MatchStatusTeamOne:
		return pointsOne + c.WinPoints, pointsTwo
	case models.MatchStatusTeamTwo:
		return pointsOne, pointsTwo + c.WinPoints
	}
	return pointsOne, pointsTwo
}

// Outcome — новые значения standing для обеих команд.
type Outcome struct {
	TeamOneRating *int
	TeamTwoRating *int
	TeamOnePoints *int
	TeamTwoPoints *int
}

// ApplyOutcome выбирает между Эло и таблицей очков по формату турнира.
// LADDER + ничья намеренно ничего не меняет — рейтинг при ничьей не двигается.
func (c Config) ApplyOutcome(format models.TournamentFormat, teamOne, teamTwo *models.Team, status models.MatchStatus) Outcome {
	if format == models.FormatLadder {
		if status == models.MatchStatusTie {
			return Outcome{}
		}
		one, two := c.teamRating(teamOne), c.teamRating(teamTwo)
		newOne, newTwo := c.UpdateElo(one, two, status)
		return Outcome{TeamOneRating: &newOne, TeamTwoRating: &newTwo}
	}

	one, two := teamPoints(teamOne), teamPoints(teamTwo)
	newOne, newTwo := c.AwardPoints(one, two, status)
	return Outcome{TeamOnePoints: &newOne, TeamTwoPoints: &newTwo}
}

func (c Config) teamRating(t *models.Team) int {
	if t.Rating == nil {
		return c.StartingRating
	}
	return *t.Rating
}

func teamPoints(t *models.Team) int {
	if t.Points == nil {
		return 0
	}
	return *t.Points
}
