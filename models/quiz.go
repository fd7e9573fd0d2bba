package models

import "encoding/json"

// Attempt is the subset of a quiz attempt the dashboard aggregates
type Attempt struct {
	ID             int     `json:"id"`
	QuizID         int     `json:"quiz_id"`
	Score          float64 `json:"score"`
	TotalQuestions int     `json:"total_questions"`
}

// AttemptList is the body of GET /attempts/
type AttemptList struct {
	Attempts []Attempt `json:"attempts"`
}

// SubjectList is the body of GET /subjects/. Subjects stay opaque to the
// client core.
type SubjectList struct {
	Subjects []json.RawMessage `json:"subjects"`
}

// HighScore is the best attempt recorded for one quiz
type HighScore struct {
	Score float64 `json:"score"`
	Total int     `json:"total"`
}

// UserDashboard combines subjects with per-quiz high scores
type UserDashboard struct {
	Subjects   []json.RawMessage `json:"subjects"`
	HighScores map[int]HighScore `json:"high_scores"`
}

// AnswerCheck is the payload of POST /user/attempts/{id}/check
type AnswerCheck struct {
	QuestionID       int `json:"question_id" validate:"required,gt=0"`
	SelectedOptionID int `json:"selected_option_id" validate:"required,gt=0"`
}

// ExportTask is returned when a CSV export is queued
type ExportTask struct {
	TaskID string `json:"task_id"`
	Status string `json:"status,omitempty"`
}
