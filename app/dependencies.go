package app

import (
	"context"
	"fmt"
	"io"

	"github.com/upb/quiz-client/apiclient"
	"github.com/upb/quiz-client/config"
	"github.com/upb/quiz-client/router"
	"github.com/upb/quiz-client/services"
	"github.com/upb/quiz-client/session"
	"github.com/upb/quiz-client/store"
	"go.uber.org/zap"
)

// Dependencies holds the client's wired components.
// This is the central wiring point for dependency injection.
type Dependencies struct {
	// Infrastructure
	Config *config.Config
	Logger *zap.Logger

	// Persistence
	Storage store.Storage
	Store   *store.Store
	closer  io.Closer

	// Request pipeline
	API *apiclient.Client

	// Services
	Auth      *services.AuthService
	User      *services.UserService
	Admin     *services.AdminService
	Dashboard *services.DashboardService

	// Session and navigation
	Session *session.Controller
	Router  *router.Router
}

// NewDependencies creates and wires up the client
func NewDependencies(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Dependencies, error) {
	storage, closer, err := store.Open(ctx, cfg.Storage, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	deps, err := NewWithStorage(cfg, storage, logger)
	if err != nil {
		_ = closer.Close()
		return nil, err
	}
	deps.closer = closer

	logger.Debug("all dependencies initialized successfully",
		zap.String("storage", cfg.Storage.Backend),
		zap.String("api", deps.API.BaseURL()))
	return deps, nil
}

// NewWithStorage wires the client over an already opened storage backend.
// The pipeline, session controller and router reference each other; the
// cycle is closed with Bind and SetNavigator once all three exist.
func NewWithStorage(cfg *config.Config, storage store.Storage, logger *zap.Logger) (*Dependencies, error) {
	d := &Dependencies{
		Config:  cfg,
		Logger:  logger,
		Storage: storage,
		Store:   store.New(storage, logger.Named("store")),
	}

	state := session.NewState()

	api, err := apiclient.New(cfg.API, state, d.Store, logger.Named("api"))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize api client: %w", err)
	}
	d.API = api

	d.Auth = services.NewAuthService(api)
	d.User = services.NewUserService(api)
	d.Admin = services.NewAdminService(api)
	d.Dashboard = services.NewDashboardService(api)

	d.Session = session.NewController(state, d.Auth, d.Store, api, logger.Named("session"))

	table, err := router.NewTable(router.DefaultRoutes(d.Store))
	if err != nil {
		return nil, fmt.Errorf("failed to build route table: %w", err)
	}
	guard := router.NewGuard(d.Session, d.Store, logger.Named("guard"))
	d.Router = router.New(table, guard, logger.Named("router"))

	api.Bind(d.Session, d.Router)
	d.Session.SetNavigator(d.Router)

	return d, nil
}

// Close releases the storage backend
func (d *Dependencies) Close(ctx context.Context) error {
	d.Logger.Debug("shutting down dependencies")

	var errs []error

	if d.closer != nil {
		if err := d.closer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close storage: %w", err))
		}
	}

	if d.Logger != nil {
		_ = d.Logger.Sync()
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors during shutdown: %v", errs)
	}

	return nil
}
