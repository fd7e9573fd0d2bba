package router

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
)

var (
	ErrUnknownRoute  = errors.New("unknown route")
	ErrMissingParam  = errors.New("missing route parameter")
	ErrInvalidPath   = errors.New("invalid path")
	ErrDuplicateName = errors.New("duplicate route name")
)

// Location is a resolved navigation target. Route is nil when no table
// entry matched the path; such locations are public.
type Location struct {
	Name   string
	Path   string
	Query  url.Values
	Params map[string]string
	Route  *Route
}

// FullPath returns the path with its query string
func (l Location) FullPath() string {
	if len(l.Query) == 0 {
		return l.Path
	}
	return l.Path + "?" + l.Query.Encode()
}

// Requirement returns the access metadata of the matched route. Unmatched
// locations have no requirement.
func (l Location) Requirement() Requirement {
	if l.Route == nil {
		return Requirement{}
	}
	return l.Route.Meta
}

// Matched reports whether the path matched a table entry
func (l Location) Matched() bool {
	return l.Route != nil
}

// Table matches paths against the route table using chi's radix tree
type Table struct {
	mux       *chi.Mux
	routes    []Route
	byPattern map[string]*Route
	byName    map[string]*Route
}

// NewTable builds a table. Names and patterns must be unique.
func NewTable(routes []Route) (t *Table, err error) {
	t = &Table{
		mux:       chi.NewRouter(),
		routes:    make([]Route, len(routes)),
		byPattern: make(map[string]*Route, len(routes)),
		byName:    make(map[string]*Route, len(routes)),
	}
	copy(t.routes, routes)

	// chi panics on malformed patterns
	defer func() {
		if r := recover(); r != nil {
			t, err = nil, fmt.Errorf("invalid route table: %v", r)
		}
	}()

	noop := func(http.ResponseWriter, *http.Request) {}
	for i := range t.routes {
		r := &t.routes[i]
		if r.Name == "" {
			return nil, fmt.Errorf("route %q has no name", r.Path)
		}
		if _, ok := t.byName[r.Name]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateName, r.Name)
		}
		if _, ok := t.byPattern[r.Path]; ok {
			return nil, fmt.Errorf("duplicate route path %q", r.Path)
		}
		t.mux.Get(r.Path, noop)
		t.byName[r.Name] = r
		t.byPattern[r.Path] = r
	}
	return t, nil
}

// MustTable is NewTable for static tables
func MustTable(routes []Route) *Table {
	t, err := NewTable(routes)
	if err != nil {
		panic(err)
	}
	return t
}

// Routes returns the table entries in declaration order
func (t *Table) Routes() []Route {
	out := make([]Route, len(t.routes))
	copy(out, t.routes)
	return out
}

// Lookup finds a route by name
func (t *Table) Lookup(name string) (*Route, bool) {
	r, ok := t.byName[name]
	return r, ok
}

// Resolve parses a raw path such as "/attempt/3?x=1" and matches it
func (t *Table) Resolve(raw string) (Location, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return Location{}, fmt.Errorf("%w: %v", ErrInvalidPath, err)
	}
	if u.IsAbs() || u.Host != "" {
		return Location{}, fmt.Errorf("%w: %q is not an application path", ErrInvalidPath, raw)
	}

	path := u.Path
	if path == "" || path[0] != '/' {
		path = "/" + path
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
	}

	loc := Location{
		Path:  path,
		Query: u.Query(),
	}
	if len(loc.Query) == 0 {
		loc.Query = nil
	}

	rctx := chi.NewRouteContext()
	if !t.mux.Match(rctx, http.MethodGet, path) || len(rctx.RoutePatterns) == 0 {
		return loc, nil
	}

	route := t.byPattern[rctx.RoutePatterns[len(rctx.RoutePatterns)-1]]
	if route == nil {
		return loc, nil
	}
	loc.Route = route
	loc.Name = route.Name

	if n := len(rctx.URLParams.Keys); n > 0 {
		loc.Params = make(map[string]string, n)
		for i, key := range rctx.URLParams.Keys {
			loc.Params[key] = rctx.URLParams.Values[i]
		}
	}
	return loc, nil
}

// Location builds the location of a named route
func (t *Table) Location(name string, params map[string]string, query url.Values) (Location, error) {
	path, err := t.PathFor(name, params)
	if err != nil {
		return Location{}, err
	}
	loc, err := t.Resolve(path)
	if err != nil {
		return Location{}, err
	}
	if len(query) > 0 {
		loc.Query = query
	}
	return loc, nil
}

// PathFor fills a named route's pattern with params
func (t *Table) PathFor(name string, params map[string]string) (string, error) {
	route, ok := t.byName[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownRoute, name)
	}

	segments := strings.Split(route.Path, "/")
	for i, seg := range segments {
		var key string
		switch {
		case seg == "*":
			key = "*"
		case strings.HasPrefix(seg, "{") && strings.HasSuffix(seg, "}"):
			key = strings.SplitN(seg[1:len(seg)-1], ":", 2)[0]
		default:
			continue
		}

		value, ok := params[key]
		if !ok || value == "" {
			if key == "*" {
				segments[i] = ""
				continue
			}
			return "", fmt.Errorf("%w: %s needs %s", ErrMissingParam, name, key)
		}
		if key == "*" {
			segments[i] = strings.TrimLeft(value, "/")
		} else {
			segments[i] = url.PathEscape(value)
		}
	}

	path := strings.Join(segments, "/")
	if path == "" {
		path = "/"
	}
	return path, nil
}
