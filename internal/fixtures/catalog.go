// Package fixtures holds the quiz content served by the development API.
package fixtures

import (
	"sort"
	"sync"

	"github.com/upb/quiz-client/models"
)

// Quiz is an active quiz inside a chapter
type Quiz struct {
	ID              int    `json:"id"`
	Title           string `json:"title"`
	DurationMinutes int    `json:"duration_minutes"`
}

// Chapter groups quizzes
type Chapter struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Quizzes []Quiz `json:"quizzes"`
}

// Subject is the top of the content tree
type Subject struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Chapters    []Chapter `json:"chapters"`
}

// Attempt is a recorded quiz attempt
type Attempt struct {
	models.Attempt
	Username string `json:"username"`
}

// SubjectCount is one bar of the admin summary charts
type SubjectCount struct {
	Subject string `json:"subject"`
	Count   int    `json:"count"`
}

// Summary is the admin overview
type Summary struct {
	Users        int            `json:"users"`
	Attempts     int            `json:"attempts"`
	QuizCount    []SubjectCount `json:"quiz_count"`
	AttemptCount []SubjectCount `json:"attempt_count"`
}

// Catalog is the in-memory quiz content and attempt log
type Catalog struct {
	mu       sync.RWMutex
	subjects []Subject
	attempts []Attempt
}

// NewCatalog creates a catalog with sample content
func NewCatalog() *Catalog {
	return &Catalog{
		subjects: []Subject{
			{
				ID: 1, Name: "Mathematics", Description: "Numbers and structure",
				Chapters: []Chapter{
					{ID: 1, Name: "Algebra", Quizzes: []Quiz{{ID: 1, Title: "Linear equations", DurationMinutes: 10}}},
					{ID: 2, Name: "Geometry", Quizzes: []Quiz{{ID: 2, Title: "Triangles", DurationMinutes: 15}}},
				},
			},
			{
				ID: 2, Name: "Programming", Description: "Writing software",
				Chapters: []Chapter{
					{ID: 3, Name: "Go basics", Quizzes: []Quiz{
						{ID: 3, Title: "Slices and maps", DurationMinutes: 20},
						{ID: 4, Title: "Goroutines", DurationMinutes: 20},
					}},
				},
			},
		},
	}
}

// Subjects returns the content tree
func (c *Catalog) Subjects() []Subject {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Subject, len(c.subjects))
	copy(out, c.subjects)
	return out
}

// Record appends an attempt and assigns its id
func (c *Catalog) Record(username string, quizID int, score float64, total int) Attempt {
	c.mu.Lock()
	defer c.mu.Unlock()
	att := Attempt{
		Attempt: models.Attempt{
			ID:             len(c.attempts) + 1,
			QuizID:         quizID,
			Score:          score,
			TotalQuestions: total,
		},
		Username: username,
	}
	c.attempts = append(c.attempts, att)
	return att
}

// Attempts returns the attempts of one user, or all of them when username
// is empty, in recording order.
func (c *Catalog) Attempts(username string) []models.Attempt {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]models.Attempt, 0, len(c.attempts))
	for _, a := range c.attempts {
		if username == "" || a.Username == username {
			out = append(out, a.Attempt)
		}
	}
	return out
}

// Summary aggregates quiz and attempt counts per subject
func (c *Catalog) Summary(users int) Summary {
	c.mu.RLock()
	defer c.mu.RUnlock()

	subjectOf := make(map[int]string)
	quizCount := make(map[string]int)
	for _, s := range c.subjects {
		for _, ch := range s.Chapters {
			for _, q := range ch.Quizzes {
				subjectOf[q.ID] = s.Name
				quizCount[s.Name]++
			}
		}
	}
	attemptCount := make(map[string]int)
	for _, a := range c.attempts {
		attemptCount[subjectOf[a.QuizID]]++
	}

	return Summary{
		Users:        users,
		Attempts:     len(c.attempts),
		QuizCount:    sortedCounts(quizCount),
		AttemptCount: sortedCounts(attemptCount),
	}
}

// sortedCounts orders by count descending, then name
func sortedCounts(m map[string]int) []SubjectCount {
	out := make([]SubjectCount, 0, len(m))
	for name, n := range m {
		out = append(out, SubjectCount{Subject: name, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Subject < out[j].Subject
	})
	return out
}
