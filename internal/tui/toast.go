package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// Toast lifetimes.
const (
	errorTTL   = 5 * time.Second
	messageTTL = 3 * time.Second
	maxToasts  = 3
)

type toastKind uint8

const (
	toastInfo toastKind = iota
	toastError
)

type toast struct {
	kind    toastKind
	text    string
	expires time.Time
}

// clockTickMsg drives toast expiry and the OTP resend countdown.
type clockTickMsg time.Time

func clockTickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return clockTickMsg(t)
	})
}

func (a App) pushToast(kind toastKind, text string) App {
	if text == "" {
		return a
	}
	ttl := messageTTL
	if kind == toastError {
		ttl = errorTTL
	}
	toasts := append(a.toasts[:len(a.toasts):len(a.toasts)], toast{kind: kind, text: cleanLine(text), expires: a.now().Add(ttl)})
	if len(toasts) > maxToasts {
		toasts = toasts[len(toasts)-maxToasts:]
	}
	a.toasts = toasts
	return a
}

// collectToasts moves every store's error, message and notification into
// toasts. Each is shown once: the stores are cleared as they are read.
func (a App) collectToasts() App {
	if e := a.session.Error; e != "" {
		a = a.pushToast(toastError, e)
		a.session = a.session.ClearError()
	}
	if m := a.session.Message; m != "" {
		a = a.pushToast(toastInfo, m)
		a.session = a.session.ClearMessage()
	}
	if e := a.menu.Error; e != "" {
		a = a.pushToast(toastError, e)
		a.menu = a.menu.ClearError()
	}
	if m := a.menu.Message; m != "" {
		a = a.pushToast(toastInfo, m)
		a.menu = a.menu.ClearMessage()
	}
	if e := a.bookings.Error; e != "" {
		a = a.pushToast(toastError, e)
		a.bookings = a.bookings.ClearError()
	}
	if m := a.bookings.Message; m != "" {
		a = a.pushToast(toastInfo, m)
		a.bookings = a.bookings.ClearMessage()
	}
	if n := a.bookings.Notification; n != "" {
		a = a.pushToast(toastInfo, n)
		a.bookings = a.bookings.ClearNotification()
	}
	return a
}

// expireToasts drops the toasts whose time is up.
func (a App) expireToasts(now time.Time) App {
	kept := make([]toast, 0, len(a.toasts))
	for _, t := range a.toasts {
		if now.Before(t.expires) {
			kept = append(kept, t)
		}
	}
	a.toasts = kept
	return a
}

// toastLine renders the newest toast.
func (a App) toastLine() string {
	if len(a.toasts) == 0 {
		return ""
	}
	t := a.toasts[len(a.toasts)-1]
	text := truncStr(t.text, max(a.width-4, 20))
	if t.kind == toastError {
		return " " + rejectStyle.Render("✗ "+text)
	}
	return " " + successStyle.Render("✓ "+text)
}
