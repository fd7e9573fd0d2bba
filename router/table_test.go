package router

import (
	"context"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/upb/quiz-client/models"
)

type staticProbe bool

func (p staticProbe) HasToken(context.Context) bool { return bool(p) }

func TestTable_Resolve(t *testing.T) {
	table := MustTable(DefaultRoutes(staticProbe(false)))

	tests := []struct {
		name       string
		raw        string
		wantName   string
		wantPath   string
		wantParams map[string]string
		wantQuery  url.Values
	}{
		{name: "root", raw: "/", wantName: Home, wantPath: "/"},
		{name: "static route", raw: "/dashboard", wantName: UserDashboard, wantPath: "/dashboard"},
		{name: "trailing slash", raw: "/admin/summary/", wantName: AdminSummary, wantPath: "/admin/summary"},
		{name: "relative path", raw: "login", wantName: Login, wantPath: "/login"},
		{
			name:       "param route",
			raw:        "/attempt/42",
			wantName:   AttendQuiz,
			wantPath:   "/attempt/42",
			wantParams: map[string]string{"attemptId": "42"},
		},
		{
			name:       "static beats param",
			raw:        "/admin/quizzes/add",
			wantName:   AdminAddQuiz,
			wantPath:   "/admin/quizzes/add",
			wantParams: nil,
		},
		{
			name:       "nested params",
			raw:        "/admin/users/7/activity",
			wantName:   AdminUserActivity,
			wantPath:   "/admin/users/7/activity",
			wantParams: map[string]string{"userId": "7"},
		},
		{
			name:      "query kept",
			raw:       "/admin/search?q=go&page=2",
			wantName:  AdminSearch,
			wantPath:  "/admin/search",
			wantQuery: url.Values{"q": {"go"}, "page": {"2"}},
		},
		{
			name:       "catch-all",
			raw:        "/no/such/page",
			wantName:   NotFound,
			wantPath:   "/no/such/page",
			wantParams: map[string]string{"*": "no/such/page"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loc, err := table.Resolve(tt.raw)
			require.NoError(t, err)

			assert.True(t, loc.Matched())
			assert.Equal(t, tt.wantName, loc.Name)
			assert.Equal(t, tt.wantPath, loc.Path)
			assert.Equal(t, tt.wantParams, loc.Params)
			assert.Equal(t, tt.wantQuery, loc.Query)
		})
	}
}

func TestTable_ResolveRejectsForeignURLs(t *testing.T) {
	table := MustTable(DefaultRoutes(staticProbe(false)))

	for _, raw := range []string{"https://evil.example/login", "//evil.example/x", "%zz"} {
		_, err := table.Resolve(raw)
		assert.ErrorIs(t, err, ErrInvalidPath, raw)
	}
}

func TestTable_UnmatchedPathIsPublic(t *testing.T) {
	table := MustTable([]Route{
		{Name: UserDashboard, Path: "/dashboard", Meta: authOnly},
	})

	loc, err := table.Resolve("/about")
	require.NoError(t, err)

	assert.False(t, loc.Matched())
	assert.Empty(t, loc.Name)
	assert.Equal(t, Requirement{}, loc.Requirement())
}

func TestTable_PathFor(t *testing.T) {
	table := MustTable(DefaultRoutes(staticProbe(false)))

	path, err := table.PathFor(AdminManageQuestions, map[string]string{"quizId": "9"})
	require.NoError(t, err)
	assert.Equal(t, "/admin/quizzes/9/questions", path)

	path, err = table.PathFor(AttendQuiz, map[string]string{"attemptId": "a b"})
	require.NoError(t, err)
	assert.Equal(t, "/attempt/a%20b", path)

	path, err = table.PathFor(Login, nil)
	require.NoError(t, err)
	assert.Equal(t, "/login", path)

	_, err = table.PathFor(AttendQuiz, nil)
	assert.ErrorIs(t, err, ErrMissingParam)

	_, err = table.PathFor("Nope", nil)
	assert.ErrorIs(t, err, ErrUnknownRoute)
}

func TestTable_LocationCarriesQuery(t *testing.T) {
	table := MustTable(DefaultRoutes(staticProbe(false)))

	loc, err := table.Location(Login, nil, url.Values{RedirectQueryKey: {"/admin/summary"}})
	require.NoError(t, err)

	assert.Equal(t, Login, loc.Name)
	assert.Equal(t, "/login?redirect=%2Fadmin%2Fsummary", loc.FullPath())
	assert.True(t, loc.Requirement().RequiresGuest)
}

func TestNewTable_Errors(t *testing.T) {
	tests := []struct {
		name   string
		routes []Route
		want   string
	}{
		{
			name:   "duplicate name",
			routes: []Route{{Name: Login, Path: "/login"}, {Name: Login, Path: "/signin"}},
			want:   "duplicate route name",
		},
		{
			name:   "duplicate path",
			routes: []Route{{Name: Login, Path: "/login"}, {Name: "Other", Path: "/login"}},
			want:   "duplicate route path",
		},
		{
			name:   "missing name",
			routes: []Route{{Path: "/login"}},
			want:   "has no name",
		},
		{
			name:   "malformed pattern",
			routes: []Route{{Name: "Bad", Path: "no-leading-slash"}},
			want:   "invalid route table",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := NewTable(tt.routes)
			require.Error(t, err)
			assert.Nil(t, table)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestDefaultRoutes_Requirements(t *testing.T) {
	table := MustTable(DefaultRoutes(staticProbe(false)))

	for _, r := range table.Routes() {
		switch r.Name {
		case Home, NotFound:
			assert.False(t, r.Meta.RequiresAuth, r.Name)
		case Login:
			assert.True(t, r.Meta.RequiresGuest)
			assert.False(t, r.Meta.RequiresAuth)
		case UserDashboard, UserSummary, AttendQuiz:
			assert.True(t, r.Meta.RequiresAuth, r.Name)
			assert.True(t, r.Meta.Roles.Empty(), r.Name)
		default:
			assert.True(t, r.Meta.RequiresAuth, r.Name)
			assert.Equal(t, models.NewRoleSet(models.RoleAdmin), r.Meta.Roles, r.Name)
		}
	}
}
