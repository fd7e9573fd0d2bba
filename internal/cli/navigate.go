package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/upb/quiz-client/apiclient"
	"github.com/upb/quiz-client/app"
	"github.com/upb/quiz-client/internal/output"
	"github.com/upb/quiz-client/models"
	"github.com/upb/quiz-client/router"
)

func newVisitCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "visit <path>",
		Short: "Navigate to an application path and show the screen",
		Long: `Navigate to an application path through the navigation guard. The
command reports where the guard let the session land and prints the data
behind dashboard and summary screens.`,
		Example: `  quiz-client visit /
  quiz-client visit /admin/summary
  quiz-client visit /attempt/42`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			requested := args[0]

			return o.withClient(cmd, func(ctx context.Context, deps *app.Dependencies) error {
				if err := deps.Router.Push(ctx, requested); err != nil {
					return fmt.Errorf("navigating to %s: %w", requested, err)
				}

				loc := deps.Router.Current()
				o.printer.Field("screen", describe(loc))
				if target, err := deps.Router.Table().Resolve(requested); err == nil && target.Path != loc.Path {
					o.printer.Field("from", target.Path)
				}
				if ret := deps.Router.ReturnTo(); ret != "" {
					o.printer.Info("sign in to continue to %s", ret)
				}

				err := renderScreen(ctx, o.printer, deps, loc)
				if apiclient.StatusCode(err) == http.StatusUnauthorized {
					o.printer.Warning("the API rejected the stored session, signed out")
					o.printer.Field("screen", describe(deps.Router.Current()))
				}
				return err
			})
		},
	}
}

// screenSubject is the part of a subject the dashboard renders
type screenSubject struct {
	Name     string `json:"name"`
	Chapters []struct {
		Name    string `json:"name"`
		Quizzes []struct {
			ID    int    `json:"id"`
			Title string `json:"title"`
		} `json:"quizzes"`
	} `json:"chapters"`
}

type adminSummary struct {
	Users    int `json:"users"`
	Attempts int `json:"attempts"`
}

func renderScreen(ctx context.Context, p *output.Printer, deps *app.Dependencies, loc router.Location) error {
	switch loc.Name {
	case router.UserDashboard:
		dash, err := deps.Dashboard.UserDashboard(ctx)
		if err != nil {
			return err
		}
		return renderDashboard(p, dash)

	case router.UserSummary:
		raw, err := deps.User.SummaryData(ctx)
		if err != nil {
			return err
		}
		var list models.AttemptList
		if err := json.Unmarshal(raw, &list); err != nil {
			return fmt.Errorf("decoding summary: %w", err)
		}
		p.Header("Attempts")
		table := output.NewTable(p.Out(), "ATTEMPT", "QUIZ", "SCORE")
		for _, a := range list.Attempts {
			table.AddRow(strconv.Itoa(a.ID), strconv.Itoa(a.QuizID), score(a.Score, a.TotalQuestions))
		}
		return table.Render()

	case router.AdminDashboard, router.AdminSummary:
		raw, err := deps.Admin.Summary(ctx)
		if err != nil {
			return err
		}
		var summary adminSummary
		if err := json.Unmarshal(raw, &summary); err != nil {
			return fmt.Errorf("decoding summary: %w", err)
		}
		p.Header("Platform")
		p.Field("users", summary.Users)
		p.Field("attempts", summary.Attempts)
	}
	return nil
}

func renderDashboard(p *output.Printer, dash *models.UserDashboard) error {
	p.Header("Quizzes")
	table := output.NewTable(p.Out(), "ID", "SUBJECT", "CHAPTER", "QUIZ", "BEST")
	for _, raw := range dash.Subjects {
		var s screenSubject
		if err := json.Unmarshal(raw, &s); err != nil {
			return fmt.Errorf("decoding subject: %w", err)
		}
		for _, ch := range s.Chapters {
			for _, q := range ch.Quizzes {
				best := "-"
				if hs, ok := dash.HighScores[q.ID]; ok {
					best = score(hs.Score, hs.Total)
				}
				table.AddRow(strconv.Itoa(q.ID), s.Name, ch.Name, q.Title, best)
			}
		}
	}
	return table.Render()
}

func score(value float64, total int) string {
	return strconv.FormatFloat(value, 'f', -1, 64) + "/" + strconv.Itoa(total)
}

func newRoutesCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "routes",
		Short: "List the application routes and their access rules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.withClient(cmd, func(ctx context.Context, deps *app.Dependencies) error {
				routes := deps.Router.Table().Routes()
				sort.SliceStable(routes, func(i, j int) bool { return routes[i].Path < routes[j].Path })

				table := output.NewTable(o.printer.Out(), "NAME", "PATH", "ACCESS")
				for _, r := range routes {
					table.AddRow(r.Name, r.Path, access(r))
				}
				return table.Render()
			})
		},
	}
}

// access summarizes a route's requirement
func access(r router.Route) string {
	switch {
	case r.Redirect != nil:
		return "redirect"
	case r.Meta.RequiresAuth && !r.Meta.Roles.Empty():
		return "auth, roles " + strings.Join(r.Meta.Roles.Strings(), "|")
	case r.Meta.RequiresAuth:
		return "auth"
	case r.Meta.RequiresGuest:
		return "guest"
	default:
		return "public"
	}
}
