// Package session owns the authentication state of the client. Controller
// is its only writer: it logs in and out, restores a stored session and
// drops the session when the API rejects the credential.
package session

import (
	"context"
	"sync"

	"github.com/upb/quiz-client/claims"
	"github.com/upb/quiz-client/models"
	"github.com/upb/quiz-client/router"
	"github.com/upb/quiz-client/services"
	"github.com/upb/quiz-client/store"
	"go.uber.org/zap"
)

const authorizationHeader = "Authorization"

// AuthAPI is the server side of authentication
type AuthAPI interface {
	Login(ctx context.Context, creds models.Credentials) (string, error)
	Register(ctx context.Context, req models.RegisterRequest) (*models.RegisterResponse, error)
	SecretQuestions(ctx context.Context) ([]models.SecretQuestion, error)
	GetSecretQuestion(ctx context.Context, email string) (*models.SecretQuestionPrompt, error)
	ResetPassword(ctx context.Context, req models.ResetPasswordRequest) (*models.MessageResponse, error)
}

// CredentialStore persists the credential between runs
type CredentialStore interface {
	Save(ctx context.Context, token string, identity models.Identity)
	Load(ctx context.Context) store.Result
	Clear(ctx context.Context)
}

// HeaderConfigurer manages the request pipeline's default headers
type HeaderConfigurer interface {
	SetDefaultHeader(key, value string)
	DeleteDefaultHeader(key string)
}

// Navigator moves the application to a named route
type Navigator interface {
	Navigate(ctx context.Context, name string) error
}

// Controller is the sole writer of State
type Controller struct {
	state   *State
	auth    AuthAPI
	store   CredentialStore
	headers HeaderConfigurer
	logger  *zap.Logger

	// mu serializes mutations. It may be held across credential storage
	// I/O but never across an API call or a navigation, both of which can
	// call back into the controller.
	mu  sync.Mutex
	nav Navigator
}

// NewController creates a controller over state
func NewController(state *State, auth AuthAPI, creds CredentialStore, headers HeaderConfigurer, logger *zap.Logger) *Controller {
	return &Controller{
		state:   state,
		auth:    auth,
		store:   creds,
		headers: headers,
		logger:  logger,
	}
}

// SetNavigator binds the router once it exists
func (c *Controller) SetNavigator(nav Navigator) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nav = nav
}

// State returns the read side of the session
func (c *Controller) State() *State {
	return c.state
}

func (c *Controller) Token() string             { return c.state.Token() }
func (c *Controller) Identity() models.Identity { return c.state.Identity() }
func (c *Controller) IsAuthenticated() bool     { return c.state.IsAuthenticated() }
func (c *Controller) IsAdmin() bool             { return c.state.IsAdmin() }
func (c *Controller) Username() string          { return c.state.Username() }

// Login authenticates against the API and commits the session, then
// navigates to the admin or user dashboard. On any error the session is
// left exactly as it was.
func (c *Controller) Login(ctx context.Context, creds models.Credentials) (models.Identity, error) {
	token, err := c.auth.Login(ctx, creds)
	if err != nil {
		return models.Identity{}, err
	}

	identity, err := claims.DecodeIdentity(token)
	if err != nil {
		return models.Identity{}, services.WrapError(services.ErrorTypeUnauthorized, services.ErrInvalidToken.Message, err)
	}

	c.mu.Lock()
	c.state.set(token, identity)
	c.store.Save(ctx, token, identity)
	c.headers.SetDefaultHeader(authorizationHeader, "Bearer "+token)
	nav := c.nav
	c.mu.Unlock()

	c.logger.Info("logged in",
		zap.String("username", identity.Username),
		zap.Strings("roles", identity.Roles.Strings()))

	target := router.UserDashboard
	if identity.IsAdmin() {
		target = router.AdminDashboard
	}
	c.navigate(ctx, nav, target)

	return identity, nil
}

// Register creates an account and returns the server payload. It never
// signs the new user in.
func (c *Controller) Register(ctx context.Context, req models.RegisterRequest) (*models.RegisterResponse, error) {
	return c.auth.Register(ctx, req)
}

// Logout drops the session everywhere and navigates to login. It makes no
// network call and is safe to repeat.
func (c *Controller) Logout(ctx context.Context) {
	c.mu.Lock()
	had := c.state.clear()
	c.store.Clear(ctx)
	c.headers.DeleteDefaultHeader(authorizationHeader)
	nav := c.nav
	c.mu.Unlock()

	if had {
		c.logger.Info("logged out")
	}
	c.navigate(ctx, nav, router.Login)
}

// Invalidate drops the in-memory session after the API rejected the
// credential. Clearing storage and navigating stay with the caller.
func (c *Controller) Invalidate(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.clear() {
		c.logger.Warn("session invalidated by the API")
	}
	c.headers.DeleteDefaultHeader(authorizationHeader)
}

// Rehydrate restores the session from storage when memory holds none.
// It reports whether a session was restored.
func (c *Controller) Rehydrate(ctx context.Context) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.IsAuthenticated() {
		return false
	}

	res := c.store.Load(ctx)
	if !res.Present() {
		if res.Status == store.StatusCorrupt {
			c.logger.Debug("stored session not restored", zap.Error(res.Err))
		}
		return false
	}

	c.state.set(res.Token, res.Identity)
	c.headers.SetDefaultHeader(authorizationHeader, "Bearer "+res.Token)
	c.logger.Debug("session rehydrated", zap.String("username", res.Identity.Username))
	return true
}

// SecretQuestions lists the recovery questions for the registration form
func (c *Controller) SecretQuestions(ctx context.Context) ([]models.SecretQuestion, error) {
	return c.auth.SecretQuestions(ctx)
}

// GetSecretQuestion starts password recovery for an email
func (c *Controller) GetSecretQuestion(ctx context.Context, email string) (*models.SecretQuestionPrompt, error) {
	return c.auth.GetSecretQuestion(ctx, email)
}

// ResetPassword completes password recovery
func (c *Controller) ResetPassword(ctx context.Context, req models.ResetPasswordRequest) (*models.MessageResponse, error) {
	return c.auth.ResetPassword(ctx, req)
}

func (c *Controller) navigate(ctx context.Context, nav Navigator, name string) {
	if nav == nil {
		return
	}
	if err := nav.Navigate(ctx, name); err != nil {
		c.logger.Warn("navigation failed", zap.String("route", name), zap.Error(err))
	}
}
