package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/naveenspark/tavola/internal/guard"
	"github.com/naveenspark/tavola/internal/store"
	"github.com/naveenspark/tavola/pkg/client"
	"github.com/naveenspark/tavola/pkg/domain"
)

// App is the root Bubbletea model. It owns the three stores and routes every
// request through them.
type App struct {
	sessionRun *store.SessionRunner
	menuRun    *store.MenuRunner
	bookingRun *store.BookingRunner
	log        *zap.Logger
	now        func() time.Time

	session  store.Session
	menu     store.Menu
	bookings store.Bookings
	// probe is the start-up session check issued by Init.
	probe store.Meta

	loc location
	// deciding is set while loc waits for the session check.
	deciding bool
	returnTo *location
	denied   string

	login    loginModel
	register registerModel
	verify   verifyModel
	menuPage menuModel
	editor   editorModel
	booking  bookingFormModel
	list     bookingsModel

	toasts     []toast
	prompt     bool
	promptText string
	helpOpen   bool
	width      int
	height     int
	frame      int
}

// NewApp creates the TUI. The session check runs when the program starts.
func NewApp(c *client.Client, log *zap.Logger) App {
	if log == nil {
		log = zap.NewNop()
	}
	a := App{
		sessionRun: store.NewSessionRunner(c),
		menuRun:    store.NewMenuRunner(c),
		bookingRun: store.NewBookingRunner(c),
		log:        log,
		now:        time.Now,
		session:    store.NewSession(),
		menuPage:   newMenuModel(),
	}
	a.probe = a.session.Begin(store.OpCheckSession)
	a.session = a.session.Reduce(store.SessionAction{Meta: a.probe})
	return a
}

func (a App) Init() tea.Cmd {
	return tea.Batch(a.checkSession(), shimmerTickCmd(), clockTickCmd())
}

func (a App) checkSession() tea.Cmd {
	run, m := a.sessionRun, a.probe
	return func() tea.Msg {
		return sessionMsg{action: run.CheckSession(context.Background(), m)}
	}
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, nil

	case shimmerTickMsg:
		a.frame++
		return a, shimmerTickCmd()

	case clockTickMsg:
		a = a.expireToasts(time.Time(msg))
		a.verify = a.verify.tick()
		return a, clockTickCmd()

	case sessionMsg:
		return a.settleSession(msg.action)
	case menuMsg:
		return a.settleMenu(msg.action)
	case bookingMsg:
		return a.settleBooking(msg.action)

	case navigateMsg:
		return a.navigate(msg.to)

	case copiedMsg:
		if msg.err != nil {
			a.log.Warn("clipboard", zap.Error(msg.err))
			return a.pushToast(toastError, "Could not copy to the clipboard"), nil
		}
		return a.pushToast(toastInfo, "Copied to clipboard"), nil

	case tea.KeyMsg:
		return a.handleKey(msg)
	}
	return a.dispatch(msg)
}

func (a App) handleKey(msg tea.KeyMsg) (App, tea.Cmd) {
	key := msg.String()
	if key == "ctrl+c" {
		return a, tea.Quit
	}

	if a.helpOpen {
		switch key {
		case "?", "esc":
			a.helpOpen = false
		case "q":
			return a, tea.Quit
		}
		return a, nil
	}

	if a.prompt {
		switch msg.Type {
		case tea.KeyEnter:
			a.prompt = false
			return a.navigate(resolvePath(a.promptText))
		case tea.KeyEsc:
			a.prompt = false
		case tea.KeyBackspace:
			a.promptText = editRune(a.promptText, "backspace")
		case tea.KeyRunes:
			for _, r := range msg.Runes {
				a.promptText = editRune(a.promptText, string(r))
			}
		}
		return a, nil
	}

	if !a.isEditing() {
		switch key {
		case "q":
			return a, tea.Quit
		case "?":
			a.helpOpen = true
			return a, nil
		case ":":
			a.prompt = true
			a.promptText = ""
			return a, nil
		case "1", "2", "3", "4", "5", "6", "7", "8", "9":
			role, ok := a.session.Role()
			tabs := tabsFor(role, ok)
			idx := int(key[0] - '1')
			if idx < len(tabs) {
				return a.navigate(at(tabs[idx].to))
			}
			return a, nil
		}
	}

	if a.deciding {
		return a, nil
	}

	admin := a.session.User.IsAdmin() && a.session.IsAuthenticated
	var cmd tea.Cmd
	switch a.loc.route {
	case routeLogin:
		a.login, cmd = a.login.Update(msg)
	case routeRegister:
		a.register, cmd = a.register.Update(msg)
	case routeVerifyOTP:
		a.verify, cmd = a.verify.Update(msg, a.session)
	case routeMenu:
		a.menuPage, cmd = a.menuPage.Update(msg, a.menu, admin)
	case routeMenuItem:
		a.menuPage, cmd = a.menuPage.dishKeys(msg, a.loc.id, admin)
	case routeMenuNew, routeMenuEdit:
		a.editor, cmd = a.editor.Update(msg)
	case routeBook:
		a.booking, cmd = a.booking.Update(msg)
	case routeMyBookings, routeAdminBookings, routeUserBookings:
		a.list, cmd = a.list.Update(msg, a.bookings)
	}
	return a, cmd
}

// isEditing reports whether keys go to a text input rather than the global
// shortcuts.
func (a App) isEditing() bool {
	if a.deciding {
		return false
	}
	switch a.loc.route {
	case routeLogin, routeRegister, routeVerifyOTP, routeMenuNew, routeMenuEdit, routeBook:
		return true
	case routeMenu:
		return a.menuPage.searching
	}
	return false
}

// navigate evaluates the route's guard and enters the route it allows.
func (a App) navigate(to location) (App, tea.Cmd) {
	spec, ok := routes[to.route]
	if !ok {
		to = location{route: routeNotFound, id: to.path()}
		spec = routes[routeNotFound]
	}

	a.deciding = false
	outcome := guard.Decide(a.session, spec.rules...)
	switch outcome {
	case guard.Wait:
		a.loc = to
		a.deciding = true
		return a, nil
	case guard.RedirectLogin:
		target := to
		a.returnTo = &target
		to = at(routeLogin)
	case guard.RedirectUnauthorized:
		a.denied = to.path()
		to = at(routeUnauthorized)
	}
	a.log.Debug("navigate", zap.String("path", to.path()), zap.Stringer("guard", outcome))
	a.loc = to
	return a.enter()
}

// enter prepares the page at a.loc and starts the requests it needs.
func (a App) enter() (App, tea.Cmd) {
	switch a.loc.route {
	case routeLogin:
		a.login = newLoginModel()
	case routeRegister:
		a.register = newRegisterModel()
	case routeVerifyOTP:
		if !a.session.PendingVerification {
			return a.navigate(at(routeRegister))
		}
		a.verify = newVerifyModel()
	case routeLogout:
		return a.logout()
	case routeMenu:
		a.menuPage.confirm = ""
		return a.dispatch(menuListMsg{filter: a.menuPage.filter()})
	case routeMenuItem:
		a.menuPage.confirm = ""
		return a.dispatch(menuGetMsg{id: a.loc.id})
	case routeMenuNew:
		a.editor = newEditorModel("", nil)
	case routeMenuEdit:
		if it := a.findDish(a.loc.id); it != nil {
			a.editor = newEditorModel(a.loc.id, it)
			return a, nil
		}
		a.editor = newEditorModel(a.loc.id, nil)
		return a.dispatch(menuGetMsg{id: a.loc.id})
	case routeBook:
		a.booking = newBookingFormModel(a.session.User)
	case routeMyBookings:
		return a.openList(store.ScopeMine, "")
	case routeAdminBookings:
		return a.openList(store.ScopeAll, "")
	case routeUserBookings:
		return a.openList(store.ScopeUser, a.loc.id)
	}
	return a, nil
}

func (a App) openList(scope store.ListScope, userID string) (App, tea.Cmd) {
	a.list = newBookingsModel(scope, userID)
	return a.dispatch(bookingListMsg{scope: scope, userID: userID})
}

func (a App) logout() (App, tea.Cmd) {
	if a.session.InFlight(store.OpLogout) {
		return a, nil
	}
	return a.runSession(store.OpLogout, func(m store.Meta) store.SessionAction {
		return a.sessionRun.Logout(context.Background(), m)
	})
}

func (a App) findDish(id string) *domain.MenuItem {
	if cur := a.menu.Current; cur != nil && cur.ID == id {
		return cur
	}
	for i := range a.menu.Items {
		if a.menu.Items[i].ID == id {
			return &a.menu.Items[i]
		}
	}
	return nil
}

func (a App) View() string {
	logo := renderShimmerLogo(a.frame)
	header := centered(logo, a.width) + "\n" + centered(a.sessionLine(), a.width)

	role, signedIn := a.session.Role()
	tabs := tabsFor(role, signedIn)
	colWidth := a.width / max(len(tabs), 1)
	var tabBar strings.Builder
	for i, t := range tabs {
		key := fmt.Sprintf("%d", i+1)
		var label string
		if t.to == a.loc.route && !a.deciding {
			label = accentStyle.Render(key) + " " + selectedStyle.Underline(true).Render(t.name)
		} else {
			label = metaStyle.Render(key) + " " + dimStyle.Render(t.name)
		}
		labelWidth := lipgloss.Width(label)
		leftPad := max((colWidth-labelWidth)/2, 0)
		rightPad := max(colWidth-labelWidth-leftPad, 0)
		tabBar.WriteString(strings.Repeat(" ", leftPad) + label + strings.Repeat(" ", rightPad))
	}

	body, help := a.page()
	if a.helpOpen {
		body = helpView()
		help = helpBar("?", "close", "q", "quit")
	}

	status := a.toastLine()
	if a.prompt {
		status = " " + inputPromptStyle.Render(": ") + renderInput(a.promptText, "/menu", true, false)
		help = helpBar("enter", "go", "esc", "cancel")
	}

	// Chrome: header(2) + tabs(1) + status(1) + help(1) = 5 lines
	chrome := 5
	body = strings.TrimRight(truncateToHeight(body, a.height-chrome), "\n")

	return fmt.Sprintf("%s\n%s\n%s\n%s\n%s", header, tabBar.String(), body, status, help)
}

// page renders the body and help bar of the current route.
func (a App) page() (string, string) {
	if a.deciding {
		return "\n " + spinner(a.frame) + dimStyle.Render(" checking your session..."), helpBar("q", "quit")
	}
	admin := a.session.User.IsAdmin() && a.session.IsAuthenticated
	nav := helpBar("1-6", "tabs", ":", "go to", "?", "help", "q", "quit")
	form := helpBar("tab", "next", "enter", "submit", "esc", "back")

	switch a.loc.route {
	case routeHome:
		return homeView(a.session), nav
	case routeLogin:
		return a.login.View(a.session, a.frame), form + "  " + helpEntry("ctrl+r", "register")
	case routeRegister:
		return a.register.View(a.session, a.frame), form
	case routeVerifyOTP:
		return a.verify.View(a.session, a.frame), helpBar("enter", "verify", "ctrl+r", "resend", "esc", "back")
	case routeLogout:
		return logoutView(a.session, a.frame), nav
	case routeMenu:
		return a.menuPage.View(a.menu, a.width, a.frame), a.menuPage.helpKeys(admin)
	case routeMenuItem:
		if admin {
			return a.menuPage.dishView(a.menu, a.loc.id, a.frame), helpBar("e", "edit", "d", "delete", "esc", "back")
		}
		return a.menuPage.dishView(a.menu, a.loc.id, a.frame), helpBar("b", "book", "esc", "back")
	case routeMenuNew, routeMenuEdit:
		return a.editor.View(a.menu, a.frame), helpBar("tab", "next", "←/→", "category", "ctrl+s", "save", "esc", "cancel")
	case routeBook:
		return a.booking.View(a.bookings, a.frame), form
	case routeMyBookings, routeAdminBookings, routeUserBookings:
		return a.list.View(a.bookings, a.width, a.frame), a.list.helpKeys()
	case routeProfile:
		return profileView(a.session, a.now()), nav
	case routeUnauthorized:
		return unauthorizedView(a.denied), nav
	case routeNotFound:
		return notFoundView(a.loc.id), nav
	}
	return "", nav
}

// sessionLine summarizes who is signed in.
func (a App) sessionLine() string {
	switch a.session.State() {
	case store.CheckingSession:
		return spinner(a.frame) + metaStyle.Render(" checking session")
	case store.Authenticating:
		return spinner(a.frame) + metaStyle.Render(" signing in")
	case store.LoggingOut:
		return spinner(a.frame) + metaStyle.Render(" signing out")
	case store.Authenticated:
		return metaStyle.Render(a.session.User.Name + " · " + a.session.User.Role.String())
	case store.PendingVerification:
		return goldStyle.Render("verify " + a.session.PendingEmail)
	}
	return metaStyle.Render("guest")
}

func centered(s string, width int) string {
	pad := max((width-lipgloss.Width(s))/2, 0)
	return strings.Repeat(" ", pad) + s
}
