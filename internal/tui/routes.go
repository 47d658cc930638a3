package tui

import (
	"strings"

	"github.com/naveenspark/tavola/internal/guard"
	"github.com/naveenspark/tavola/pkg/domain"
)

type route int

const (
	routeHome route = iota
	routeLogin
	routeRegister
	routeVerifyOTP
	routeLogout
	routeMenu
	routeMenuItem
	routeMenuNew
	routeMenuEdit
	routeBook
	routeMyBookings
	routeAdminBookings
	routeUserBookings
	routeProfile
	routeUnauthorized
	routeNotFound
)

type routeSpec struct {
	title string
	// rules are evaluated outermost first.
	rules []guard.Rule
}

var adminOnly = []guard.Rule{guard.Authenticated(), guard.Require(domain.RoleAdmin)}

var routes = map[route]routeSpec{
	routeHome:          {"Home", guard.Public},
	routeLogin:         {"Sign in", guard.Public},
	routeRegister:      {"Register", guard.Public},
	routeVerifyOTP:     {"Verify email", guard.Public},
	routeLogout:        {"Sign out", guard.Public},
	routeMenu:          {"Menu", guard.Public},
	routeMenuItem:      {"Dish", guard.Public},
	routeMenuNew:       {"New dish", adminOnly},
	routeMenuEdit:      {"Edit dish", adminOnly},
	routeBook:          {"Book a table", []guard.Rule{guard.Require(domain.RoleUser)}},
	routeMyBookings:    {"My bookings", []guard.Rule{guard.Require(domain.RoleUser, domain.RoleAdmin)}},
	routeAdminBookings: {"All bookings", adminOnly},
	routeUserBookings:  {"User bookings", adminOnly},
	routeProfile:       {"Profile", []guard.Rule{guard.Authenticated()}},
	routeUnauthorized:  {"Unauthorized", guard.Public},
	routeNotFound:      {"Not found", guard.Public},
}

// location is a route plus the id it is about, if any.
type location struct {
	route route
	id    string
}

func at(r route) location { return location{route: r} }

// path renders the location the way the go-to prompt accepts it.
func (l location) path() string {
	switch l.route {
	case routeHome:
		return "/"
	case routeLogin:
		return "/login"
	case routeRegister:
		return "/register"
	case routeVerifyOTP:
		return "/verify-otp"
	case routeLogout:
		return "/logout"
	case routeMenu:
		return "/menu"
	case routeMenuItem:
		return "/menu/" + l.id
	case routeMenuNew:
		return "/admin/menu/new"
	case routeMenuEdit:
		return "/admin/menu/" + l.id + "/edit"
	case routeBook:
		return "/book"
	case routeMyBookings:
		return "/bookings"
	case routeAdminBookings:
		return "/admin/bookings"
	case routeUserBookings:
		return "/admin/users/" + l.id + "/bookings"
	case routeProfile:
		return "/profile"
	case routeUnauthorized:
		return "/unauthorized"
	}
	return "/404"
}

// resolvePath maps a typed path to a location. Unknown paths resolve to the
// not-found route carrying the path.
func resolvePath(p string) location {
	p = strings.TrimSpace(p)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if len(p) > 1 {
		p = strings.TrimRight(p, "/")
	}
	switch p {
	case "/":
		return at(routeHome)
	case "/login":
		return at(routeLogin)
	case "/register":
		return at(routeRegister)
	case "/verify-otp":
		return at(routeVerifyOTP)
	case "/logout":
		return at(routeLogout)
	case "/menu":
		return at(routeMenu)
	case "/admin/menu/new":
		return at(routeMenuNew)
	case "/book":
		return at(routeBook)
	case "/bookings":
		return at(routeMyBookings)
	case "/admin/bookings":
		return at(routeAdminBookings)
	case "/profile":
		return at(routeProfile)
	case "/unauthorized":
		return at(routeUnauthorized)
	}

	parts := strings.Split(strings.TrimPrefix(p, "/"), "/")
	switch {
	case len(parts) == 2 && parts[0] == "menu":
		return location{route: routeMenuItem, id: parts[1]}
	case len(parts) == 4 && parts[0] == "admin" && parts[1] == "menu" && parts[3] == "edit":
		return location{route: routeMenuEdit, id: parts[2]}
	case len(parts) == 4 && parts[0] == "admin" && parts[1] == "users" && parts[3] == "bookings":
		return location{route: routeUserBookings, id: parts[2]}
	}
	return location{route: routeNotFound, id: p}
}

// tab is an entry of the tab bar.
type tab struct {
	name string
	to   route
}

// tabsFor lists the tabs offered to a role. Guests get the public tabs.
func tabsFor(role domain.Role, signedIn bool) []tab {
	if !signedIn {
		return []tab{
			{"Home", routeHome},
			{"Menu", routeMenu},
			{"Sign in", routeLogin},
			{"Register", routeRegister},
		}
	}
	switch role {
	case domain.RoleUser:
		return []tab{
			{"Home", routeHome},
			{"Menu", routeMenu},
			{"Book", routeBook},
			{"Bookings", routeMyBookings},
			{"Profile", routeProfile},
			{"Sign out", routeLogout},
		}
	case domain.RoleAdmin:
		return []tab{
			{"Home", routeHome},
			{"Menu", routeMenu},
			{"All bookings", routeAdminBookings},
			{"My bookings", routeMyBookings},
			{"Profile", routeProfile},
			{"Sign out", routeLogout},
		}
	}
	return []tab{{"Home", routeHome}, {"Sign out", routeLogout}}
}
