// Package guard decides whether the current session may see a route.
package guard

import (
	"slices"

	"github.com/naveenspark/tavola/internal/store"
	"github.com/naveenspark/tavola/pkg/domain"
)

// Outcome is the result of evaluating a route's rules.
type Outcome uint8

const (
	// Render shows the requested route.
	Render Outcome = iota
	// Wait defers the decision until the start-up session check settles.
	Wait
	// RedirectLogin sends a guest to the login route.
	RedirectLogin
	// RedirectUnauthorized sends a signed-in user without the role to the
	// unauthorized route.
	RedirectUnauthorized
)

func (o Outcome) String() string {
	switch o {
	case Render:
		return "render"
	case Wait:
		return "wait"
	case RedirectLogin:
		return "redirect-login"
	case RedirectUnauthorized:
		return "redirect-unauthorized"
	}
	return "unknown"
}

// Rule requires a signed-in user holding one of Roles. An empty Roles admits
// any signed-in user.
type Rule struct {
	Roles []domain.Role
}

// Public is the rule set of an unguarded route.
var Public []Rule

// Authenticated admits any signed-in user.
func Authenticated() Rule {
	return Rule{}
}

// Require admits signed-in users holding one of roles.
func Require(roles ...domain.Role) Rule {
	return Rule{Roles: roles}
}

func (r Rule) admits(role domain.Role) bool {
	return len(r.Roles) == 0 || slices.Contains(r.Roles, role)
}

// Decide evaluates nested rules outermost first against the current session.
// A rule is only consulted once every rule before it has passed.
func Decide(s store.Session, rules ...Rule) Outcome {
	if len(rules) == 0 {
		return Render
	}
	if !s.Probed {
		return Wait
	}
	role, ok := s.Role()
	if !ok {
		return RedirectLogin
	}
	for _, r := range rules {
		if !r.admits(role) {
			return RedirectUnauthorized
		}
	}
	return Render
}
