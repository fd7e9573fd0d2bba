package app

import (
	"fmt"

	"github.com/upb/quiz-client/auth"
	"github.com/upb/quiz-client/config"
	"github.com/upb/quiz-client/internal/fixtures"
	"github.com/upb/quiz-client/middleware"
	"go.uber.org/zap"
)

// MockAPI holds the components of the local development API
type MockAPI struct {
	Config *config.Config
	Logger *zap.Logger

	Directory *auth.Directory
	Issuer    *auth.Issuer
	Catalog   *fixtures.Catalog

	authHandler    *auth.Handler
	AuthMiddleware *middleware.AuthMiddleware
}

// AuthHandler returns the auth handler for route wiring
func (m *MockAPI) AuthHandler() *auth.Handler {
	return m.authHandler
}

// NewMockAPI seeds the account directory and wires the dev API.
// bcryptCost of zero selects the bcrypt default.
func NewMockAPI(cfg *config.Config, bcryptCost int, logger *zap.Logger) (*MockAPI, error) {
	issuer, err := auth.NewIssuer(cfg.MockAPI.SigningKey, cfg.MockAPI.TokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token issuer: %w", err)
	}

	dir := auth.NewDirectory(bcryptCost)
	if err := auth.SeedDefaults(dir); err != nil {
		return nil, fmt.Errorf("failed to seed accounts: %w", err)
	}

	catalog := fixtures.NewCatalog()
	catalog.Record(auth.DefaultUser.Username, 1, 3, 5)
	catalog.Record(auth.DefaultUser.Username, 1, 4, 5)
	catalog.Record(auth.DefaultUser.Username, 3, 2, 4)

	m := &MockAPI{
		Config:         cfg,
		Logger:         logger,
		Directory:      dir,
		Issuer:         issuer,
		Catalog:        catalog,
		authHandler:    auth.NewHandler(dir, issuer, logger.Named("auth")),
		AuthMiddleware: middleware.NewAuthMiddleware(issuer, logger.Named("middleware")),
	}

	logger.Info("mock api initialized",
		zap.Int("accounts", dir.Len()),
		zap.Duration("token_ttl", cfg.MockAPI.TokenTTL))
	return m, nil
}
