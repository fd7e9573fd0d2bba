package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/upb/quiz-client/models"
	"github.com/upb/quiz-client/utils"
)

// UserService covers the quiz-taking endpoints of a signed-in user.
// Payloads the client does not interpret are returned as raw JSON.
type UserService struct {
	api API
}

func NewUserService(api API) *UserService {
	return &UserService{api: api}
}

func (s *UserService) DashboardData(ctx context.Context) (json.RawMessage, error) {
	return s.get(ctx, "/user/dashboard-data")
}

func (s *UserService) SummaryData(ctx context.Context) (json.RawMessage, error) {
	return s.get(ctx, "/user/summary-data")
}

func (s *UserService) StartQuiz(ctx context.Context, quizID int) (json.RawMessage, error) {
	return s.post(ctx, fmt.Sprintf("/user/quizzes/%d/start", quizID), nil)
}

func (s *UserService) QuizForAttempt(ctx context.Context, attemptID int) (json.RawMessage, error) {
	return s.get(ctx, fmt.Sprintf("/user/attempts/%d", attemptID))
}

// SubmitAttempt posts the chosen answers as {"answers": ...}
func (s *UserService) SubmitAttempt(ctx context.Context, attemptID int, answers json.RawMessage) (json.RawMessage, error) {
	body := struct {
		Answers json.RawMessage `json:"answers"`
	}{Answers: answers}
	return s.post(ctx, fmt.Sprintf("/user/attempts/%d", attemptID), body)
}

func (s *UserService) CheckAnswer(ctx context.Context, attemptID int, check models.AnswerCheck) (json.RawMessage, error) {
	if err := utils.ValidateStruct(check); err != nil {
		return nil, WrapValidation(err)
	}
	return s.post(ctx, fmt.Sprintf("/user/attempts/%d/check", attemptID), check)
}

// StartCSVExport queues an export of the user's attempts
func (s *UserService) StartCSVExport(ctx context.Context) (*models.ExportTask, error) {
	var task models.ExportTask
	if err := s.api.Post(ctx, "/user/export-attempts", nil, &task); err != nil {
		return nil, FromHTTPError(err)
	}
	return &task, nil
}

func (s *UserService) ExportStatus(ctx context.Context, taskID string) (json.RawMessage, error) {
	return s.get(ctx, "/tasks/"+url.PathEscape(taskID)+"/status")
}

func (s *UserService) get(ctx context.Context, path string) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := s.api.Get(ctx, path, nil, &raw); err != nil {
		return nil, FromHTTPError(err)
	}
	return raw, nil
}

func (s *UserService) post(ctx context.Context, path string, body interface{}) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := s.api.Post(ctx, path, body, &raw); err != nil {
		return nil, FromHTTPError(err)
	}
	return raw, nil
}
