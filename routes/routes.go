package routes

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/upb/quiz-client/app"
	"github.com/upb/quiz-client/handlers"
	"github.com/upb/quiz-client/models"
	"github.com/upb/quiz-client/utils"
)

// SetupRoutes configures the development API routes and middleware
func SetupRoutes(deps *app.MockAPI) http.Handler {
	r := chi.NewRouter()

	// Core middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// CORS middleware
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.Config.MockAPI.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	health := handlers.NewHealthHandler(map[string]handlers.Check{
		"accounts": func(context.Context) error {
			if deps.Directory.Len() == 0 {
				return errors.New("no accounts")
			}
			return nil
		},
	}, deps.Logger)
	r.Get("/healthz", health.HandleHealth)
	r.Get("/readyz", health.HandleReadiness)

	quiz := handlers.NewQuizHandler(deps.Catalog, deps.Directory, deps.Logger)
	authHandler := deps.AuthHandler()

	r.Route("/api", func(r chi.Router) {
		// Public auth endpoints
		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", authHandler.HandleLogin)
			r.Post("/register", authHandler.HandleRegister)
			r.Get("/secret-questions", authHandler.HandleSecretQuestions)
			r.Post("/forgot-password/get-question", authHandler.HandleGetQuestion)
			r.Post("/forgot-password/reset", authHandler.HandleResetPassword)
		})

		// Authenticated endpoints
		r.Group(func(r chi.Router) {
			r.Use(deps.AuthMiddleware.RequireAuth)

			r.Get("/subjects/", quiz.HandleSubjects)
			r.Get("/attempts/", quiz.HandleAttempts)
			r.Get("/user/dashboard-data", quiz.HandleDashboardData)
			r.Get("/user/summary-data", quiz.HandleSummaryData)

			// Admin endpoints
			r.Group(func(r chi.Router) {
				r.Use(deps.AuthMiddleware.RequireRole(models.RoleAdmin))
				r.Get("/summary/", quiz.HandleAdminSummary)
			})
		})
	})

	// 404 handler
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		_ = utils.WriteNotFound(w, "endpoint not found")
	})

	return r
}
