package tui

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/naveenspark/tavola/internal/store"
	"github.com/naveenspark/tavola/pkg/domain"
)

type bookingFormModel struct {
	form formModel
}

func newBookingFormModel(u *domain.User) bookingFormModel {
	m := bookingFormModel{form: newForm(
		formField{key: "name", label: "Name"},
		formField{key: "phone", label: "Phone"},
		formField{key: "date", label: "Date", placeholder: "YYYY-MM-DD"},
		formField{key: "time", label: "Time", placeholder: "HH:MM"},
		formField{key: "totalPersons", label: "Guests", placeholder: "1-12"},
	)}
	if u != nil {
		m.form = m.form.set("name", u.Name).set("phone", u.Phone)
	}
	return m
}

func (m bookingFormModel) Update(msg tea.KeyMsg) (bookingFormModel, tea.Cmd) {
	if msg.String() == "esc" {
		return m, navigateTo(at(routeMenu))
	}
	var submit bool
	m.form, submit = m.form.update(msg)
	if !submit {
		return m, nil
	}
	persons, err := strconv.Atoi(m.form.trimmed("totalPersons"))
	if err != nil {
		m.form = m.form.withError(&domain.FormError{Fields: map[string]string{"totalPersons": "Total persons must be a number"}})
		return m, nil
	}
	form := domain.BookingForm{
		Name:         m.form.trimmed("name"),
		Phone:        m.form.trimmed("phone"),
		Date:         m.form.trimmed("date"),
		Time:         m.form.trimmed("time"),
		TotalPersons: persons,
	}
	if err := domain.Validate(form); err != nil {
		m.form = m.form.withError(err)
		return m, nil
	}
	m.form = m.form.clearErrors()
	return m, emit(bookMsg{form: form})
}

func (m bookingFormModel) View(b store.Bookings, frame int) string {
	var sb strings.Builder
	sb.WriteString("\n " + sectionHeaderStyle.Render("Book a table") + "\n\n")
	sb.WriteString(m.form.View())
	if b.InFlight(store.OpBookingCreate) {
		sb.WriteString("\n " + spinner(frame) + dimStyle.Render(" booking..."))
	}
	return sb.String()
}

// bookingsModel lists bookings for one scope: the signed-in user's, every
// user's, or a single user's.
type bookingsModel struct {
	scope  store.ListScope
	userID string
	cursor int
	// confirm holds the id awaiting a second cancel or delete key.
	confirm string
}

func newBookingsModel(scope store.ListScope, userID string) bookingsModel {
	return bookingsModel{scope: scope, userID: userID}
}

func (m bookingsModel) clamp(n int) bookingsModel {
	if m.cursor >= n {
		m.cursor = max(n-1, 0)
	}
	return m
}

// items returns the listing when it belongs to this page.
func (m bookingsModel) items(b store.Bookings) []domain.Booking {
	if b.Scope != m.scope || b.UserID != m.userID {
		return nil
	}
	return b.Items
}

func (m bookingsModel) admin() bool {
	return m.scope != store.ScopeMine
}

func (m bookingsModel) Update(msg tea.KeyMsg, b store.Bookings) (bookingsModel, tea.Cmd) {
	items := m.items(b)
	key := msg.String()
	if key != "x" && key != "d" {
		m.confirm = ""
	}

	var sel *domain.Booking
	if m.cursor >= 0 && m.cursor < len(items) {
		sel = &items[m.cursor]
	}

	switch key {
	case "j", "down":
		if m.cursor < len(items)-1 {
			m.cursor++
		}
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
	case "r":
		return m, emit(bookingListMsg{scope: m.scope, userID: m.userID})
	case "enter":
		if sel != nil {
			return m, emit(bookingGetMsg{id: sel.ID})
		}
	case "y":
		if sel != nil {
			return m, emit(copyMsg{text: sel.ID})
		}
	case "esc":
		if m.scope == store.ScopeUser {
			return m, navigateTo(at(routeAdminBookings))
		}
	case "x":
		if sel == nil || m.admin() || sel.Status == domain.BookingCancelled {
			return m, nil
		}
		if m.confirm != sel.ID {
			m.confirm = sel.ID
			return m, nil
		}
		m.confirm = ""
		return m, emit(bookingCancelMsg{id: sel.ID})
	case "s":
		if sel != nil && m.admin() {
			return m, emit(bookingStatusMsg{id: sel.ID, status: domain.NextStatus(sel.Status)})
		}
	case "d":
		if sel == nil || !m.admin() {
			return m, nil
		}
		if m.confirm != sel.ID {
			m.confirm = sel.ID
			return m, nil
		}
		m.confirm = ""
		return m, emit(bookingDeleteMsg{id: sel.ID})
	case "u":
		if sel != nil && sel.User != nil && m.scope == store.ScopeAll {
			return m, navigateTo(location{route: routeUserBookings, id: sel.User.ID})
		}
	}
	return m, nil
}

func (m bookingsModel) View(b store.Bookings, width, frame int) string {
	var sb strings.Builder
	title := "My bookings"
	switch m.scope {
	case store.ScopeAll:
		title = "All bookings"
	case store.ScopeUser:
		title = "Bookings of " + m.userID
	}
	sb.WriteString("\n " + sectionHeaderStyle.Render(title))
	if b.InFlight(store.OpBookingList) {
		sb.WriteString("  " + spinner(frame))
	}
	sb.WriteString("\n\n")

	items := m.items(b)
	if len(items) == 0 {
		if !b.InFlight(store.OpBookingList) {
			sb.WriteString(" " + dimStyle.Render("No bookings yet.") + "\n")
		}
		return sb.String()
	}

	nameWidth := max(width-56, 12)
	for i, bk := range items {
		who := bk.Name
		if m.admin() && bk.User != nil && bk.User.Email != "" {
			who = bk.User.Email
		}
		who = fmt.Sprintf("%-*s", nameWidth, truncStr(cleanLine(who), nameWidth))
		when := fmt.Sprintf("%s %s", bk.Date, bk.Time)
		guests := fmt.Sprintf("%2d guests", bk.TotalPersons)
		line := fmt.Sprintf(" %s  %s  %s  %s", when, guests, who, StatusBadge(bk.Status))
		if i == m.cursor {
			line = selectedRowBg.Render(fmt.Sprintf(" %s  %s  %s", selectedStyle.Render(when), selectedStyle.Render(guests), selectedStyle.Render(who))) + "  " + StatusBadge(bk.Status)
			switch {
			case m.confirm == bk.ID && m.admin():
				line += " " + rejectStyle.Render("press d again to delete")
			case m.confirm == bk.ID:
				line += " " + rejectStyle.Render("press x again to cancel")
			}
		} else {
			line = normalStyle.Render(line)
		}
		sb.WriteString(line + "\n")
	}

	if cur := b.Current; cur != nil {
		sb.WriteString("\n " + sectionHeaderStyle.Render("Booking "+cur.ID) + "\n")
		fmt.Fprintf(&sb, " %s %s  %s %s\n", metaStyle.Render("name"), normalStyle.Render(cur.Name), metaStyle.Render("phone"), normalStyle.Render(cur.Phone))
		fmt.Fprintf(&sb, " %s %s %s  %s %d  %s\n", metaStyle.Render("when"), cur.Date, cur.Time, metaStyle.Render("guests"), cur.TotalPersons, StatusBadge(cur.Status))
		if ago := formatTime(cur.CreatedAt); ago != "" {
			fmt.Fprintf(&sb, " %s %s\n", metaStyle.Render("booked"), dimStyle.Render(ago))
		}
	}
	return sb.String()
}

func (m bookingsModel) helpKeys() string {
	switch m.scope {
	case store.ScopeAll:
		return helpBar("j/k", "nav", "enter", "details", "s", "status", "d", "delete", "u", "user", "y", "copy id", "r", "refresh")
	case store.ScopeUser:
		return helpBar("j/k", "nav", "enter", "details", "s", "status", "d", "delete", "y", "copy id", "esc", "back")
	}
	return helpBar("j/k", "nav", "enter", "details", "x", "cancel", "y", "copy id", "r", "refresh", "?", "help")
}
