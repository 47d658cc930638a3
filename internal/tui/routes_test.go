package tui

import (
	"testing"

	"github.com/naveenspark/tavola/internal/guard"
	"github.com/naveenspark/tavola/internal/store"
	"github.com/naveenspark/tavola/pkg/domain"
)

func TestResolvePath(t *testing.T) {
	tests := []struct {
		in   string
		want location
	}{
		{"/", at(routeHome)},
		{"", at(routeHome)},
		{"/login", at(routeLogin)},
		{"login", at(routeLogin)},
		{" /menu/ ", at(routeMenu)},
		{"/menu/42", location{route: routeMenuItem, id: "42"}},
		{"/admin/menu/new", at(routeMenuNew)},
		{"/admin/menu/42/edit", location{route: routeMenuEdit, id: "42"}},
		{"/book", at(routeBook)},
		{"/bookings", at(routeMyBookings)},
		{"/admin/bookings", at(routeAdminBookings)},
		{"/admin/users/u7/bookings", location{route: routeUserBookings, id: "u7"}},
		{"/verify-otp", at(routeVerifyOTP)},
		{"/logout", at(routeLogout)},
		{"/profile", at(routeProfile)},
		{"/unauthorized", at(routeUnauthorized)},
		{"/kitchen", location{route: routeNotFound, id: "/kitchen"}},
		{"/menu/42/extra", location{route: routeNotFound, id: "/menu/42/extra"}},
		{"/admin/users/u7", location{route: routeNotFound, id: "/admin/users/u7"}},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			if got := resolvePath(tc.in); got != tc.want {
				t.Errorf("resolvePath(%q) = %+v, want %+v", tc.in, got, tc.want)
			}
		})
	}
}

func TestPathRoundTrip(t *testing.T) {
	for r := range routes {
		if r == routeNotFound {
			continue
		}
		loc := location{route: r}
		switch r {
		case routeMenuItem, routeMenuEdit, routeUserBookings:
			loc.id = "x1"
		}
		if got := resolvePath(loc.path()); got != loc {
			t.Errorf("resolvePath(%q) = %+v, want %+v", loc.path(), got, loc)
		}
	}
}

func TestEveryRouteHasRules(t *testing.T) {
	for r := routeHome; r <= routeNotFound; r++ {
		spec, ok := routes[r]
		if !ok {
			t.Errorf("route %d has no entry", r)
			continue
		}
		if spec.title == "" {
			t.Errorf("route %d has no title", r)
		}
	}
}

func TestRouteRulesPerRole(t *testing.T) {
	user := signedInSession(domain.RoleUser)
	admin := signedInSession(domain.RoleAdmin)

	tests := []struct {
		route route
		user  guard.Outcome
		admin guard.Outcome
	}{
		{routeMenu, guard.Render, guard.Render},
		{routeBook, guard.Render, guard.RedirectUnauthorized},
		{routeMyBookings, guard.Render, guard.Render},
		{routeAdminBookings, guard.RedirectUnauthorized, guard.Render},
		{routeMenuNew, guard.RedirectUnauthorized, guard.Render},
		{routeUserBookings, guard.RedirectUnauthorized, guard.Render},
		{routeProfile, guard.Render, guard.Render},
	}
	for _, tc := range tests {
		rules := routes[tc.route].rules
		if got := guard.Decide(user, rules...); got != tc.user {
			t.Errorf("%s as user = %v, want %v", routes[tc.route].title, got, tc.user)
		}
		if got := guard.Decide(admin, rules...); got != tc.admin {
			t.Errorf("%s as admin = %v, want %v", routes[tc.route].title, got, tc.admin)
		}
	}
}

func TestTabsRouteToKnownPages(t *testing.T) {
	roles := []struct {
		role     domain.Role
		signedIn bool
		first    string
		count    int
	}{
		{0, false, "Home", 4},
		{domain.RoleUser, true, "Home", 6},
		{domain.RoleAdmin, true, "Home", 6},
	}
	for _, tc := range roles {
		tabs := tabsFor(tc.role, tc.signedIn)
		if len(tabs) != tc.count || tabs[0].name != tc.first {
			t.Errorf("tabsFor(%q) = %+v", tc.role, tabs)
		}
		for _, tb := range tabs {
			if _, ok := routes[tb.to]; !ok {
				t.Errorf("tab %q points at an unknown route", tb.name)
			}
		}
	}
}

func signedInSession(role domain.Role) store.Session {
	s := store.NewSession()
	m := s.Begin(store.OpCheckSession)
	s = s.Reduce(store.SessionAction{Meta: m})
	return s.Reduce(store.SessionAction{Meta: m.Fulfill(""), User: &domain.User{ID: "u", Name: "U", Role: role, IsVerified: true}})
}
