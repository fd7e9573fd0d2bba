package router

import (
	"context"

	"github.com/upb/quiz-client/models"
)

// Route names of the quiz application
const (
	Home                 = "Home"
	Login                = "Login"
	UserDashboard        = "UserDashboard"
	UserSummary          = "UserSummary"
	AttendQuiz           = "AttendQuiz"
	AdminDashboard       = "AdminDashboard"
	AdminSummary         = "AdminSummary"
	AdminAllQuizzes      = "AdminAllQuizzes"
	AdminAddQuiz         = "AdminAddQuiz"
	AdminUserActivity    = "AdminUserActivity"
	AdminSearch          = "AdminSearch"
	AdminEditQuiz        = "AdminEditQuiz"
	AdminEditSubject     = "AdminEditSubject"
	AdminEditChapter     = "AdminEditChapter"
	AdminManageQuestions = "AdminManageQuestions"
	AdminEditQuestion    = "AdminEditQuestion"
	NotFound             = "NotFound"
)

// RedirectQueryKey carries the originally requested path to the login route
const RedirectQueryKey = "redirect"

// Requirement is the access metadata attached to a route. Roles only apply
// together with RequiresAuth.
type Requirement struct {
	RequiresAuth  bool
	RequiresGuest bool
	Roles         models.RoleSet
}

// Route is one entry of the route table. Paths are chi patterns. A route
// with Redirect set is never rendered; the transition continues at the
// route name it returns.
type Route struct {
	Name     string
	Path     string
	Meta     Requirement
	Redirect func(ctx context.Context) string
}

// TokenProbe reports whether durable storage holds a credential
type TokenProbe interface {
	HasToken(ctx context.Context) bool
}

var (
	authOnly  = Requirement{RequiresAuth: true}
	adminOnly = Requirement{RequiresAuth: true, Roles: models.NewRoleSet(models.RoleAdmin)}
)

// DefaultRoutes returns the quiz application's route table
func DefaultRoutes(tokens TokenProbe) []Route {
	return []Route{
		{
			Name: Home,
			Path: "/",
			Redirect: func(ctx context.Context) string {
				// the guard still checks the token and roles afterwards
				if tokens.HasToken(ctx) {
					return UserDashboard
				}
				return Login
			},
		},
		{Name: AdminAddQuiz, Path: "/admin/quizzes/add", Meta: adminOnly},
		{Name: Login, Path: "/login", Meta: Requirement{RequiresGuest: true}},
		{Name: UserDashboard, Path: "/dashboard", Meta: authOnly},
		{Name: UserSummary, Path: "/summary", Meta: authOnly},
		{Name: AttendQuiz, Path: "/attempt/{attemptId}", Meta: authOnly},
		{Name: AdminDashboard, Path: "/admin/dashboard", Meta: adminOnly},
		{Name: AdminSummary, Path: "/admin/summary", Meta: adminOnly},
		{Name: AdminAllQuizzes, Path: "/admin/quizzes", Meta: adminOnly},
		{Name: AdminUserActivity, Path: "/admin/users/{userId}/activity", Meta: adminOnly},
		{Name: AdminSearch, Path: "/admin/search", Meta: adminOnly},
		{Name: AdminEditQuiz, Path: "/admin/quizzes/{quizId}/edit", Meta: adminOnly},
		{Name: AdminEditSubject, Path: "/admin/subjects/{subjectId}/edit", Meta: adminOnly},
		{Name: AdminEditChapter, Path: "/admin/chapters/{chapterId}/edit", Meta: adminOnly},
		{Name: AdminManageQuestions, Path: "/admin/quizzes/{quizId}/questions", Meta: adminOnly},
		{Name: AdminEditQuestion, Path: "/admin/questions/{questionId}/edit", Meta: adminOnly},
		{Name: NotFound, Path: "/*"},
	}
}
