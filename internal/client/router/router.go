// Package router decides which screens are reachable for a session state.
//
// Build is a pure function of a services.State snapshot. The returned Table
// resolves user-entered paths to screens, following redirects for paths
// that do not match any route.
package router

import (
	"net/http"
	"path"
	"strings"

	"github.com/dmitrijs2005/syllabify/internal/client/services"
	"github.com/go-chi/chi/v5"
)

type Screen string

const (
	ScreenLoading       Screen = "loading"
	ScreenLogin         Screen = "login"
	ScreenSecuritySetup Screen = "security-setup"
	ScreenDashboard     Screen = "dashboard"
	ScreenUpload        Screen = "upload"
	ScreenSchedule      Screen = "schedule"
	ScreenPreferences   Screen = "preferences"
)

const (
	RootPath          = "/"
	LoginPath         = "/login"
	SecuritySetupPath = "/security-setup"
)

// Route is one reachable path. Routes with InLayout render inside the
// application layout.
type Route struct {
	Path     string
	Screen   Screen
	InLayout bool
}

// Resolution is the outcome of resolving a path against a Table.
type Resolution struct {
	Route
	// Requested is the normalized path that was asked for.
	Requested  string
	Redirected bool
}

var publicRoutes = []Route{
	{Path: LoginPath, Screen: ScreenLogin},
	{Path: SecuritySetupPath, Screen: ScreenSecuritySetup},
}

// The authenticated tree is exposed as is; the server enforces access.
var layoutRoutes = []Route{
	{Path: RootPath, Screen: ScreenDashboard, InLayout: true},
	{Path: "/upload", Screen: ScreenUpload, InLayout: true},
	{Path: "/schedule", Screen: ScreenSchedule, InLayout: true},
	{Path: "/preferences", Screen: ScreenPreferences, InLayout: true},
}

type Table struct {
	loading bool
	mux     *chi.Mux
	byPath  map[string]Route
	routes  []Route
}

func noop(http.ResponseWriter, *http.Request) {}

// Build returns the route table for st. While st.IsLoading the table holds
// no routes and every path resolves to the loading screen.
func Build(st services.State) Table {
	if st.IsLoading {
		return Table{loading: true}
	}

	t := Table{
		mux:    chi.NewRouter(),
		byPath: make(map[string]Route),
	}
	for _, group := range [][]Route{publicRoutes, layoutRoutes} {
		for _, r := range group {
			t.mux.Get(r.Path, noop)
			t.byPath[r.Path] = r
			t.routes = append(t.routes, r)
		}
	}
	return t
}

// Loading reports whether the table is the loading placeholder.
func (t Table) Loading() bool {
	return t.loading
}

// Routes lists reachable routes in declaration order.
func (t Table) Routes() []Route {
	out := make([]Route, len(t.routes))
	copy(out, t.routes)
	return out
}

// Resolve maps p to a screen. Unknown paths redirect to the root route.
func (t Table) Resolve(p string) Resolution {
	p = Normalize(p)

	if t.loading {
		return Resolution{Route: Route{Path: p, Screen: ScreenLoading}, Requested: p}
	}

	rctx := chi.NewRouteContext()
	if t.mux.Match(rctx, http.MethodGet, p) {
		if r, ok := t.byPath[rctx.RoutePattern()]; ok {
			return Resolution{Route: r, Requested: p}
		}
	}

	return Resolution{Route: t.byPath[RootPath], Requested: p, Redirected: true}
}

// Normalize cleans a user-entered path: a leading slash is added, duplicate
// and trailing slashes are removed, and case is folded.
func Normalize(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return RootPath
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return strings.ToLower(path.Clean(p))
}
