package services

import (
	"context"
	"encoding/json"

	"github.com/upb/quiz-client/models"
	"golang.org/x/sync/errgroup"
)

// DashboardService assembles the user dashboard from subjects and attempts
type DashboardService struct {
	api API
}

func NewDashboardService(api API) *DashboardService {
	return &DashboardService{api: api}
}

// UserDashboard fetches subjects and attempts concurrently and keeps the
// best score per quiz. Either request failing fails the whole call.
func (s *DashboardService) UserDashboard(ctx context.Context) (*models.UserDashboard, error) {
	var (
		subjects models.SubjectList
		attempts models.AttemptList
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.api.Get(gctx, "/subjects/", nil, &subjects)
	})
	g.Go(func() error {
		return s.api.Get(gctx, "/attempts/", nil, &attempts)
	})
	if err := g.Wait(); err != nil {
		return nil, FromHTTPError(err)
	}

	if subjects.Subjects == nil {
		subjects.Subjects = []json.RawMessage{}
	}
	return &models.UserDashboard{
		Subjects:   subjects.Subjects,
		HighScores: HighScores(attempts.Attempts),
	}, nil
}

// HighScores keeps the highest-scoring attempt for each quiz. Ties keep the
// earlier attempt.
func HighScores(attempts []models.Attempt) map[int]models.HighScore {
	scores := make(map[int]models.HighScore)
	for _, att := range attempts {
		best, ok := scores[att.QuizID]
		if !ok || att.Score > best.Score {
			scores[att.QuizID] = models.HighScore{Score: att.Score, Total: att.TotalQuestions}
		}
	}
	return scores
}
