package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
)

// AdminService wraps the content-management endpoints used by admin views
type AdminService struct {
	api API
}

func NewAdminService(api API) *AdminService {
	return &AdminService{api: api}
}

// Resource names accepted by the CRUD helpers
const (
	ResourceSubjects  = "subjects"
	ResourceChapters  = "chapters"
	ResourceQuizzes   = "quizzes"
	ResourceQuestions = "questions"
)

// List fetches a collection. parentKey/parentID narrow chapters by
// subject_id and quizzes by chapter_id; a zero parentID lists everything.
func (s *AdminService) List(ctx context.Context, resource, parentKey string, parentID int) (json.RawMessage, error) {
	var query url.Values
	if parentKey != "" && parentID != 0 {
		query = url.Values{parentKey: {strconv.Itoa(parentID)}}
	}
	return s.get(ctx, "/"+resource+"/", query)
}

func (s *AdminService) Get(ctx context.Context, resource string, id int) (json.RawMessage, error) {
	return s.get(ctx, fmt.Sprintf("/%s/%d", resource, id), nil)
}

func (s *AdminService) Create(ctx context.Context, resource string, body interface{}) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := s.api.Post(ctx, "/"+resource+"/", body, &raw); err != nil {
		return nil, FromHTTPError(err)
	}
	return raw, nil
}

func (s *AdminService) Update(ctx context.Context, resource string, id int, body interface{}) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := s.api.Put(ctx, fmt.Sprintf("/%s/%d", resource, id), body, &raw); err != nil {
		return nil, FromHTTPError(err)
	}
	return raw, nil
}

func (s *AdminService) Remove(ctx context.Context, resource string, id int) error {
	if err := s.api.Delete(ctx, fmt.Sprintf("/%s/%d", resource, id), nil); err != nil {
		return FromHTTPError(err)
	}
	return nil
}

// QuestionsForQuiz lists a quiz's questions with their options
func (s *AdminService) QuestionsForQuiz(ctx context.Context, quizID int) (json.RawMessage, error) {
	return s.get(ctx, fmt.Sprintf("/quizzes/%d/questions", quizID), nil)
}

// AddQuestion creates a question with its options under a quiz
func (s *AdminService) AddQuestion(ctx context.Context, quizID int, body interface{}) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := s.api.Post(ctx, fmt.Sprintf("/quizzes/%d/questions", quizID), body, &raw); err != nil {
		return nil, FromHTTPError(err)
	}
	return raw, nil
}

func (s *AdminService) Users(ctx context.Context) (json.RawMessage, error) {
	return s.get(ctx, "/users/", nil)
}

// Attempts lists attempts, optionally for a single user
func (s *AdminService) Attempts(ctx context.Context, userID int) (json.RawMessage, error) {
	var query url.Values
	if userID != 0 {
		query = url.Values{"user_id": {strconv.Itoa(userID)}}
	}
	return s.get(ctx, "/attempts/", query)
}

func (s *AdminService) Summary(ctx context.Context) (json.RawMessage, error) {
	return s.get(ctx, "/summary/", nil)
}

func (s *AdminService) UserActivity(ctx context.Context, userID int) (json.RawMessage, error) {
	return s.get(ctx, fmt.Sprintf("/admin/users/%d/activity", userID), nil)
}

func (s *AdminService) Search(ctx context.Context, q string) (json.RawMessage, error) {
	return s.get(ctx, "/search/", url.Values{"q": {q}})
}

func (s *AdminService) get(ctx context.Context, path string, query url.Values) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := s.api.Get(ctx, path, query, &raw); err != nil {
		return nil, FromHTTPError(err)
	}
	return raw, nil
}
