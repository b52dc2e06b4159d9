package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/syllabify/internal/client/router"
	"github.com/dmitrijs2005/syllabify/internal/client/views"
)

var navItems = []views.NavItem{
	{Label: "Dashboard", Path: "/"},
	{Label: "Upload", Path: "/upload"},
	{Label: "Schedule", Path: "/schedule"},
	{Label: "Preferences", Path: "/preferences"},
}

func (a *App) resolve(path string) router.Resolution {
	return router.Build(a.auth.State()).Resolve(path)
}

// navigate resolves path against the current route table and renders the
// screen it lands on.
func (a *App) navigate(ctx context.Context, path string) {
	res := a.resolve(path)
	if res.Redirected {
		a.log.Debug(ctx, "unknown path, redirecting", "path", res.Requested, "to", res.Path)
	}
	a.path = res.Path
	a.render(ctx, res)
}

func (a *App) render(_ context.Context, res router.Resolution) {
	if res.InLayout {
		username := ""
		if u := a.auth.State().User; u != nil {
			username = u.Username
		}
		nav := make([]views.NavItem, len(navItems))
		copy(nav, navItems)
		for i := range nav {
			nav[i].Active = nav[i].Path == res.Path
		}
		views.Layout(a.out, username, nav)
	}

	switch res.Screen {
	case router.ScreenLoading:
		views.Loading(a.out)
	case router.ScreenLogin:
		views.Login(a.out)
	case router.ScreenSecuritySetup:
		views.SecuritySetup(a.out, securityQuestionCount)
	case router.ScreenDashboard:
		views.Dashboard(a.out, a.courses)
	case router.ScreenUpload:
		views.Upload(a.out)
	case router.ScreenSchedule:
		views.Schedule(a.out)
	case router.ScreenPreferences:
		views.Preferences(a.out)
	}
}

// Go navigates to path.
func (a *App) Go(ctx context.Context, path string) error {
	a.navigate(ctx, path)
	return nil
}

// Routes prints the reachable routes.
func (a *App) Routes(_ context.Context) error {
	for _, r := range router.Build(a.auth.State()).Routes() {
		_, _ = fmt.Fprintf(a.out, "  %-16s %s\n", r.Path, r.Screen)
	}
	return nil
}
