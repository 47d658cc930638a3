package tui

import (
	"context"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/naveenspark/tavola/internal/store"
	"github.com/naveenspark/tavola/pkg/domain"
)

// Intents emitted by pages. The App turns each into a store operation.
type (
	navigateMsg struct{ to location }

	loginMsg    struct{ form domain.LoginForm }
	registerMsg struct{ form domain.RegisterForm }
	verifyMsg   struct{ form domain.OTPForm }
	resendMsg   struct{ email string }

	menuListMsg   struct{ filter domain.MenuFilter }
	menuGetMsg    struct{ id string }
	menuDeleteMsg struct{ id string }

	// menuSaveMsg creates a dish when id is empty and updates it otherwise.
	menuSaveMsg struct {
		id   string
		form domain.MenuItemForm
	}

	bookMsg          struct{ form domain.BookingForm }
	bookingGetMsg    struct{ id string }
	bookingCancelMsg struct{ id string }
	bookingDeleteMsg struct{ id string }

	bookingListMsg struct {
		scope  store.ListScope
		userID string
	}

	bookingStatusMsg struct {
		id     string
		status domain.BookingStatus
	}

	copyMsg   struct{ text string }
	copiedMsg struct{ err error }
)

// Settled actions coming back from the runners.
type (
	sessionMsg struct{ action store.SessionAction }
	menuMsg    struct{ action store.MenuAction }
	bookingMsg struct{ action store.BookingAction }
)

func emit(msg tea.Msg) tea.Cmd {
	return func() tea.Msg { return msg }
}

func navigateTo(to location) tea.Cmd {
	return emit(navigateMsg{to: to})
}

func (a App) dispatch(msg tea.Msg) (App, tea.Cmd) {
	ctx := context.Background()
	switch msg := msg.(type) {
	case loginMsg:
		if a.session.InFlight(store.OpLogin) {
			return a, nil
		}
		return a.runSession(store.OpLogin, func(m store.Meta) store.SessionAction {
			return a.sessionRun.Login(ctx, m, msg.form)
		})
	case registerMsg:
		if a.session.InFlight(store.OpRegister) {
			return a, nil
		}
		return a.runSession(store.OpRegister, func(m store.Meta) store.SessionAction {
			return a.sessionRun.Register(ctx, m, msg.form)
		})
	case verifyMsg:
		if a.session.InFlight(store.OpVerifyOTP) {
			return a, nil
		}
		return a.runSession(store.OpVerifyOTP, func(m store.Meta) store.SessionAction {
			return a.sessionRun.VerifyOTP(ctx, m, msg.form)
		})
	case resendMsg:
		return a.runSession(store.OpResendOTP, func(m store.Meta) store.SessionAction {
			return a.sessionRun.ResendOTP(ctx, m, msg.email)
		})

	case menuListMsg:
		m := a.menu.Begin(store.OpMenuList)
		return a.runMenu(store.MenuAction{Meta: m, Filter: msg.filter}, func() store.MenuAction {
			return a.menuRun.List(ctx, m, msg.filter)
		})
	case menuGetMsg:
		m := a.menu.Begin(store.OpMenuGet)
		return a.runMenu(store.MenuAction{Meta: m, ID: msg.id}, func() store.MenuAction {
			return a.menuRun.Get(ctx, m, msg.id)
		})
	case menuSaveMsg:
		if msg.id == "" {
			m := a.menu.BeginUnfenced(store.OpMenuCreate)
			return a.runMenu(store.MenuAction{Meta: m}, func() store.MenuAction {
				return a.menuRun.Create(ctx, m, msg.form)
			})
		}
		m := a.menu.Begin(store.OpMenuUpdate, msg.id)
		return a.runMenu(store.MenuAction{Meta: m, ID: msg.id}, func() store.MenuAction {
			return a.menuRun.Update(ctx, m, msg.id, msg.form)
		})
	case menuDeleteMsg:
		m := a.menu.Begin(store.OpMenuDelete, msg.id)
		return a.runMenu(store.MenuAction{Meta: m, ID: msg.id}, func() store.MenuAction {
			return a.menuRun.Delete(ctx, m, msg.id)
		})

	case bookMsg:
		if a.bookings.InFlight(store.OpBookingCreate) {
			return a, nil
		}
		m := a.bookings.BeginUnfenced(store.OpBookingCreate)
		return a.runBooking(store.BookingAction{Meta: m}, func() store.BookingAction {
			return a.bookingRun.Create(ctx, m, msg.form)
		})
	case bookingListMsg:
		m := a.bookings.Begin(store.OpBookingList)
		return a.runBooking(store.BookingAction{Meta: m, Scope: msg.scope, UserID: msg.userID}, func() store.BookingAction {
			return a.bookingRun.List(ctx, m, msg.scope, msg.userID)
		})
	case bookingGetMsg:
		m := a.bookings.Begin(store.OpBookingGet)
		return a.runBooking(store.BookingAction{Meta: m, ID: msg.id}, func() store.BookingAction {
			return a.bookingRun.Get(ctx, m, msg.id)
		})
	case bookingCancelMsg:
		m := a.bookings.Begin(store.OpBookingCancel, msg.id)
		return a.runBooking(store.BookingAction{Meta: m, ID: msg.id}, func() store.BookingAction {
			return a.bookingRun.Cancel(ctx, m, msg.id, domain.BookingCancelled)
		})
	case bookingStatusMsg:
		m := a.bookings.Begin(store.OpBookingUpdateStatus, msg.id)
		return a.runBooking(store.BookingAction{Meta: m, ID: msg.id}, func() store.BookingAction {
			return a.bookingRun.UpdateStatus(ctx, m, msg.id, msg.status)
		})
	case bookingDeleteMsg:
		m := a.bookings.Begin(store.OpBookingDelete, msg.id)
		return a.runBooking(store.BookingAction{Meta: m, ID: msg.id}, func() store.BookingAction {
			return a.bookingRun.Delete(ctx, m, msg.id)
		})

	case copyMsg:
		text := msg.text
		return a, func() tea.Msg {
			return copiedMsg{err: clipboard.WriteAll(text)}
		}
	}
	return a, nil
}

// runSession reduces the pending action and returns the request.
func (a App) runSession(op store.Op, run func(store.Meta) store.SessionAction) (App, tea.Cmd) {
	m := a.session.Begin(op)
	a.session = a.session.Reduce(store.SessionAction{Meta: m})
	a.log.Debug("request", zap.String("op", string(op)), zap.Uint64("gen", m.Gen))
	return a, func() tea.Msg { return sessionMsg{action: run(m)} }
}

func (a App) runMenu(pending store.MenuAction, run func() store.MenuAction) (App, tea.Cmd) {
	a.menu = a.menu.Reduce(pending)
	a.log.Debug("request", zap.String("op", string(pending.Op)), zap.String("fence", pending.Fence), zap.Uint64("gen", pending.Gen))
	return a, func() tea.Msg { return menuMsg{action: run()} }
}

func (a App) runBooking(pending store.BookingAction, run func() store.BookingAction) (App, tea.Cmd) {
	a.bookings = a.bookings.Reduce(pending)
	a.log.Debug("request", zap.String("op", string(pending.Op)), zap.String("fence", pending.Fence), zap.Uint64("gen", pending.Gen))
	return a, func() tea.Msg { return bookingMsg{action: run()} }
}

// settleSession reduces a settled session action and follows up on it.
func (a App) settleSession(act store.SessionAction) (App, tea.Cmd) {
	wasSignedIn := a.session.IsAuthenticated
	a.session = a.session.Reduce(act)
	a = a.collectToasts()
	a.logSettled(act.Meta)

	switch act.Op {
	case store.OpCheckSession:
		if a.deciding {
			return a.navigate(a.loc)
		}
	case store.OpLogin, store.OpVerifyOTP:
		if a.session.IsAuthenticated && !wasSignedIn {
			return a.afterSignIn()
		}
		if act.Op == store.OpLogin && act.Unverified && a.session.PendingVerification && a.loc.route == routeLogin {
			return a.navigate(at(routeVerifyOTP))
		}
	case store.OpRegister:
		if act.Phase == store.Fulfilled && a.session.PendingVerification && a.loc.route == routeRegister {
			return a.navigate(at(routeVerifyOTP))
		}
	case store.OpLogout:
		a.bookings = a.bookings.Reset()
		a.returnTo = nil
		if a.loc.route == routeLogout {
			return a.navigate(at(routeHome))
		}
	}
	return a, nil
}

// afterSignIn leaves the sign-in pages for the route that sent the user
// there, or home.
func (a App) afterSignIn() (App, tea.Cmd) {
	if a.loc.route != routeLogin && a.loc.route != routeVerifyOTP {
		return a, nil
	}
	to := at(routeHome)
	if a.returnTo != nil {
		to = *a.returnTo
		a.returnTo = nil
	}
	return a.navigate(to)
}

func (a App) settleMenu(act store.MenuAction) (App, tea.Cmd) {
	a.menu = a.menu.Reduce(act)
	a = a.collectToasts()
	a.logSettled(act.Meta)
	a.menuPage = a.menuPage.clamp(len(a.menu.Filtered))
	if act.Phase != store.Fulfilled {
		return a, nil
	}

	switch act.Op {
	case store.OpMenuCreate, store.OpMenuUpdate:
		if a.loc.route == routeMenuNew || a.loc.route == routeMenuEdit {
			return a.navigate(at(routeMenu))
		}
	case store.OpMenuDelete:
		if a.loc.route == routeMenuItem && a.loc.id == act.ID {
			return a.navigate(at(routeMenu))
		}
	case store.OpMenuGet:
		if a.loc.route == routeMenuEdit && !a.editor.loaded && a.menu.Current != nil && a.menu.Current.ID == a.loc.id {
			a.editor = newEditorModel(a.loc.id, a.menu.Current)
		}
	}
	return a, nil
}

func (a App) settleBooking(act store.BookingAction) (App, tea.Cmd) {
	a.bookings = a.bookings.Reduce(act)
	a = a.collectToasts()
	a.logSettled(act.Meta)
	a.list = a.list.clamp(len(a.bookings.Items))
	if act.Phase == store.Fulfilled && act.Op == store.OpBookingCreate && a.loc.route == routeBook {
		return a.navigate(at(routeMyBookings))
	}
	return a, nil
}

func (a App) logSettled(m store.Meta) {
	if m.Phase == store.Rejected {
		a.log.Info("request failed", zap.String("op", string(m.Op)), zap.String("error", m.Error))
		return
	}
	a.log.Debug("request done", zap.String("op", string(m.Op)), zap.Uint64("gen", m.Gen))
}
