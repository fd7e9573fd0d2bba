package router

import (
	"context"
	"net/url"

	"github.com/upb/quiz-client/models"
	"go.uber.org/zap"
)

// SessionView is what the guard needs from the session
type SessionView interface {
	IsAuthenticated() bool
	IsAdmin() bool
	Identity() models.Identity
	Rehydrate(ctx context.Context) bool
}

// Outcome of a guard decision
type Outcome int

const (
	Proceed Outcome = iota
	Redirect
)

func (o Outcome) String() string {
	if o == Redirect {
		return "redirect"
	}
	return "proceed"
}

// Target names a route to navigate to
type Target struct {
	Name   string
	Params map[string]string
	Query  url.Values
}

// Decision is the guard's verdict on one transition
type Decision struct {
	Outcome Outcome
	Target  Target
	Reason  string
}

// Proceeds reports whether the transition may complete
func (d Decision) Proceeds() bool {
	return d.Outcome == Proceed
}

// Guard decides every route transition from session state and the
// target's requirement.
type Guard struct {
	session SessionView
	tokens  TokenProbe
	logger  *zap.Logger
}

// NewGuard creates a navigation guard
func NewGuard(session SessionView, tokens TokenProbe, logger *zap.Logger) *Guard {
	return &Guard{
		session: session,
		tokens:  tokens,
		logger:  logger,
	}
}

// Decide applies the rules in order; the first match wins:
//  1. rehydrate when memory is empty but storage holds a token
//  2. auth required, not authenticated: login with a return-to path
//  3. guest only, authenticated: the admin or user dashboard
//  4. auth required with roles, no role in common: the user dashboard
//  5. proceed
func (g *Guard) Decide(ctx context.Context, to Location) Decision {
	if !g.session.IsAuthenticated() && g.tokens.HasToken(ctx) {
		g.logger.Debug("rehydrating session from storage")
		g.session.Rehydrate(ctx)
	}

	meta := to.Requirement()
	authenticated := g.session.IsAuthenticated()

	g.logger.Debug("guard evaluating transition",
		zap.String("path", to.Path),
		zap.String("route", to.Name),
		zap.Bool("requires_auth", meta.RequiresAuth),
		zap.Bool("requires_guest", meta.RequiresGuest),
		zap.Bool("authenticated", authenticated))

	switch {
	case meta.RequiresAuth && !authenticated:
		return Decision{
			Outcome: Redirect,
			Target: Target{
				Name:  Login,
				Query: url.Values{RedirectQueryKey: {to.FullPath()}},
			},
			Reason: "authentication required",
		}

	case meta.RequiresGuest && authenticated:
		target := UserDashboard
		if g.session.IsAdmin() {
			target = AdminDashboard
		}
		return Decision{Outcome: Redirect, Target: Target{Name: target}, Reason: "guest only"}

	case meta.RequiresAuth && !meta.Roles.Empty() && !g.session.Identity().HasAnyRole(meta.Roles):
		g.logger.Info("insufficient roles for route",
			zap.String("path", to.Path),
			zap.Strings("required", meta.Roles.Strings()),
			zap.Strings("has", g.session.Identity().Roles.Strings()))
		return Decision{Outcome: Redirect, Target: Target{Name: UserDashboard}, Reason: "insufficient roles"}
	}

	return Decision{Outcome: Proceed}
}
