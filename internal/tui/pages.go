package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/naveenspark/tavola/internal/store"
)

func homeView(s store.Session) string {
	var b strings.Builder
	b.WriteString("\n")
	if s.IsAuthenticated && s.User != nil {
		fmt.Fprintf(&b, " %s %s\n\n", dimStyle.Render("Welcome back,"), selectedStyle.Render(s.User.Name))
		b.WriteString(" " + normalStyle.Render("Browse the menu or reserve a table from the tabs above.") + "\n")
		return b.String()
	}
	b.WriteString(" " + selectedStyle.Render("Good food, a table waiting.") + "\n\n")
	b.WriteString(" " + normalStyle.Render("Browse the menu, or sign in to book a table.") + "\n")
	if s.PendingVerification {
		fmt.Fprintf(&b, "\n %s %s %s\n", goldStyle.Render("!"),
			dimStyle.Render("Your account "+s.PendingEmail+" still needs its code:"),
			helpEntry(":", "/verify-otp"))
	}
	return b.String()
}

func profileView(s store.Session, now time.Time) string {
	u := s.User
	if u == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString("\n " + sectionHeaderStyle.Render("Profile") + "\n\n")
	row := func(label, value string) {
		if value == "" {
			return
		}
		fmt.Fprintf(&b, " %s  %s\n", metaStyle.Render(fmt.Sprintf("%-8s", label)), normalStyle.Render(value))
	}
	row("name", u.Name)
	row("email", u.Email)
	row("phone", u.Phone)
	row("role", u.Role.String())
	if s.IsVerified {
		row("status", "verified")
	}
	if u.ProfileImage != "" {
		row("photo", u.ProfileImage)
	}
	if !s.ExpiresAt.IsZero() {
		row("session", "expires in "+formatRemaining(s.ExpiresAt, now))
	}
	return b.String()
}

func unauthorizedView(denied string) string {
	var b strings.Builder
	b.WriteString("\n " + rejectStyle.Render("Unauthorized") + "\n\n")
	if denied != "" {
		fmt.Fprintf(&b, " %s %s\n", dimStyle.Render("Your account cannot open"), selectedStyle.Render(denied))
	} else {
		b.WriteString(" " + dimStyle.Render("Your account cannot open this page.") + "\n")
	}
	return b.String()
}

func notFoundView(path string) string {
	return fmt.Sprintf("\n %s\n\n %s %s\n", rejectStyle.Render("Not found"),
		dimStyle.Render("Nothing lives at"), selectedStyle.Render(path))
}
