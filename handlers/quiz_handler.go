package handlers

import (
	"net/http"
	"strconv"

	"github.com/upb/quiz-client/internal/fixtures"
	"github.com/upb/quiz-client/middleware"
	"github.com/upb/quiz-client/models"
	"github.com/upb/quiz-client/services"
	"github.com/upb/quiz-client/utils"
	"go.uber.org/zap"
)

// AccountCounter reports how many accounts exist
type AccountCounter interface {
	Len() int
}

// QuizHandler serves quiz content and attempt history
type QuizHandler struct {
	catalog  *fixtures.Catalog
	accounts AccountCounter
	logger   *zap.Logger
}

// NewQuizHandler creates a new QuizHandler
func NewQuizHandler(catalog *fixtures.Catalog, accounts AccountCounter, logger *zap.Logger) *QuizHandler {
	return &QuizHandler{
		catalog:  catalog,
		accounts: accounts,
		logger:   logger,
	}
}

// HandleSubjects handles GET /subjects/
func (h *QuizHandler) HandleSubjects(w http.ResponseWriter, r *http.Request) {
	_ = utils.WriteOK(w, map[string]interface{}{"subjects": h.catalog.Subjects()})
}

// HandleAttempts handles GET /attempts/
// Admins see every attempt, optionally filtered by ?user=; users see their own.
func (h *QuizHandler) HandleAttempts(w http.ResponseWriter, r *http.Request) {
	c := middleware.GetClaimsFromContext(r.Context())
	if c == nil {
		_ = utils.WriteUnauthorized(w, "")
		return
	}

	username := c.Username
	if c.Roles.Has(models.RoleAdmin) {
		username = r.URL.Query().Get("user")
	}

	_ = utils.WriteOK(w, models.AttemptList{Attempts: h.catalog.Attempts(username)})
}

// HandleDashboardData handles GET /user/dashboard-data
func (h *QuizHandler) HandleDashboardData(w http.ResponseWriter, r *http.Request) {
	c := middleware.GetClaimsFromContext(r.Context())
	if c == nil {
		_ = utils.WriteUnauthorized(w, "")
		return
	}

	scores := services.HighScores(h.catalog.Attempts(c.Username))
	// JSON object keys must be strings
	highScores := make(map[string]models.HighScore, len(scores))
	for quizID, s := range scores {
		highScores[strconv.Itoa(quizID)] = s
	}

	_ = utils.WriteOK(w, map[string]interface{}{
		"subjects":    h.catalog.Subjects(),
		"high_scores": highScores,
	})
}

// HandleSummaryData handles GET /user/summary-data
func (h *QuizHandler) HandleSummaryData(w http.ResponseWriter, r *http.Request) {
	c := middleware.GetClaimsFromContext(r.Context())
	if c == nil {
		_ = utils.WriteUnauthorized(w, "")
		return
	}

	_ = utils.WriteOK(w, models.AttemptList{Attempts: h.catalog.Attempts(c.Username)})
}

// HandleAdminSummary handles GET /summary/
func (h *QuizHandler) HandleAdminSummary(w http.ResponseWriter, r *http.Request) {
	summary := h.catalog.Summary(h.accounts.Len())
	h.logger.Debug("admin summary served",
		zap.String("request_id", middleware.GetRequestIDFromContext(r.Context())),
		zap.Int("attempts", summary.Attempts))
	_ = utils.WriteOK(w, summary)
}
