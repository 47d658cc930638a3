package store

import (
	"context"

	"github.com/naveenspark/tavola/pkg/client"
	"github.com/naveenspark/tavola/pkg/domain"
)

// AuthAPI is the part of *client.Client the session runner needs.
type AuthAPI interface {
	CurrentUser(ctx context.Context) (*domain.User, error)
	Login(ctx context.Context, form domain.LoginForm) (*domain.User, string, error)
	Register(ctx context.Context, form domain.RegisterForm) (*domain.User, string, error)
	VerifyOTP(ctx context.Context, form domain.OTPForm) (*client.VerifyResult, error)
	ResendOTP(ctx context.Context, email string) (string, error)
	Logout(ctx context.Context) (string, error)
}

// MenuAPI is the part of *client.Client the menu runner needs.
type MenuAPI interface {
	ListMenuItems(ctx context.Context, filter domain.MenuFilter) ([]domain.MenuItem, string, error)
	GetMenuItem(ctx context.Context, id string) (*domain.MenuItem, string, error)
	CreateMenuItem(ctx context.Context, form domain.MenuItemForm) (*domain.MenuItem, string, error)
	UpdateMenuItem(ctx context.Context, id string, form domain.MenuItemForm) (*domain.MenuItem, string, error)
	DeleteMenuItem(ctx context.Context, id string) (string, error)
}

// BookingAPI is the part of *client.Client the booking runner needs.
type BookingAPI interface {
	CreateBooking(ctx context.Context, form domain.BookingForm) (*domain.Booking, string, error)
	ListMyBookings(ctx context.Context) ([]domain.Booking, string, error)
	GetBooking(ctx context.Context, id string) (*domain.Booking, string, error)
	CancelBooking(ctx context.Context, id string, status domain.BookingStatus) (*domain.Booking, string, error)
	ListAllBookings(ctx context.Context) ([]domain.Booking, string, error)
	ListUserBookings(ctx context.Context, userID string) ([]domain.Booking, string, error)
	UpdateBookingStatus(ctx context.Context, id string, status domain.BookingStatus) (*client.StatusUpdate, error)
	DeleteBooking(ctx context.Context, id string) (string, error)
}

var (
	_ AuthAPI    = (*client.Client)(nil)
	_ MenuAPI    = (*client.Client)(nil)
	_ BookingAPI = (*client.Client)(nil)
)

// Messages shown when a request fails without a server message.
const (
	msgLoginFailed        = "Login failed"
	msgRegisterFailed     = "Registration failed"
	msgVerifyFailed       = "OTP verification failed"
	msgResendFailed       = "OTP resend failed"
	msgLogoutFailed       = "Logout failed"
	msgLoggedOut          = "Logged out successfully"
	msgListMenuFailed     = "Failed to get menu items"
	msgGetMenuFailed      = "Failed to get menu item by id"
	msgCreateMenuFailed   = "Failed to create menu item"
	msgUpdateMenuFailed   = "Failed to update menu item"
	msgDeleteMenuFailed   = "Failed to delete menu item"
	msgCreateBookingFail  = "Failed to create booking"
	msgListMineFailed     = "Failed to get user's bookings"
	msgGetBookingFailed   = "Failed to get booking by id"
	msgCancelFailed       = "Failed to cancel booking"
	msgListAllFailed      = "Failed to get users' bookings"
	msgUpdateStatusFailed = "Failed to update booking status"
	msgDeleteBookingFail  = "Failed to delete booking"
)

// SessionRunner performs session requests. Each method takes the Meta of the
// pending action and returns the settled action; it never fails.
type SessionRunner struct {
	api AuthAPI
}

// NewSessionRunner creates a SessionRunner.
func NewSessionRunner(api AuthAPI) *SessionRunner {
	return &SessionRunner{api: api}
}

// CheckSession asks the server who owns the session cookie. Failures are
// silent.
func (r *SessionRunner) CheckSession(ctx context.Context, m Meta) SessionAction {
	user, err := r.api.CurrentUser(ctx)
	if err != nil {
		return SessionAction{Meta: m.Reject("")}
	}
	return SessionAction{Meta: m.Fulfill(""), User: user}
}

func (r *SessionRunner) Login(ctx context.Context, m Meta, form domain.LoginForm) SessionAction {
	user, msg, err := r.api.Login(ctx, form)
	if err != nil {
		a := SessionAction{Meta: m.Reject(client.Message(err, msgLoginFailed))}
		if _, ok := client.UnverifiedEmail(err); ok {
			a.Unverified = true
			a.Email = form.Email
		}
		return a
	}
	if user == nil {
		return SessionAction{Meta: m.Reject(msgLoginFailed)}
	}
	return SessionAction{Meta: m.Fulfill(msg), User: user}
}

// Register creates the account. The pending email is the one the server
// echoes back, falling back to the submitted one if the server sent none.
func (r *SessionRunner) Register(ctx context.Context, m Meta, form domain.RegisterForm) SessionAction {
	user, msg, err := r.api.Register(ctx, form)
	if err != nil {
		return SessionAction{Meta: m.Reject(client.Message(err, msgRegisterFailed))}
	}
	email := form.Email
	if user != nil && user.Email != "" {
		email = user.Email
	}
	return SessionAction{Meta: m.Fulfill(msg), Email: email}
}

// VerifyOTP confirms the account. Servers that answer without a user are
// asked for it with a session probe.
func (r *SessionRunner) VerifyOTP(ctx context.Context, m Meta, form domain.OTPForm) SessionAction {
	res, err := r.api.VerifyOTP(ctx, form)
	if err != nil {
		return SessionAction{Meta: m.Reject(client.Message(err, msgVerifyFailed))}
	}
	user := res.User
	if user == nil {
		if user, err = r.api.CurrentUser(ctx); err != nil {
			return SessionAction{Meta: m.Reject(client.Message(err, msgVerifyFailed))}
		}
	}
	exp, _ := client.TokenExpiry(res.Token)
	return SessionAction{Meta: m.Fulfill(res.Message), User: user, ExpiresAt: exp}
}

func (r *SessionRunner) ResendOTP(ctx context.Context, m Meta, email string) SessionAction {
	msg, err := r.api.ResendOTP(ctx, email)
	if err != nil {
		return SessionAction{Meta: m.Reject(client.Message(err, msgResendFailed))}
	}
	return SessionAction{Meta: m.Fulfill(msg)}
}

func (r *SessionRunner) Logout(ctx context.Context, m Meta) SessionAction {
	msg, err := r.api.Logout(ctx)
	if err != nil {
		return SessionAction{Meta: m.Reject(client.Message(err, msgLogoutFailed))}
	}
	if msg == "" {
		msg = msgLoggedOut
	}
	return SessionAction{Meta: m.Fulfill(msg)}
}

// MenuRunner performs menu requests.
type MenuRunner struct {
	api MenuAPI
}

// NewMenuRunner creates a MenuRunner.
func NewMenuRunner(api MenuAPI) *MenuRunner {
	return &MenuRunner{api: api}
}

func (r *MenuRunner) List(ctx context.Context, m Meta, filter domain.MenuFilter) MenuAction {
	items, msg, err := r.api.ListMenuItems(ctx, filter)
	if err != nil {
		return MenuAction{Meta: m.Reject(client.Message(err, msgListMenuFailed)), Filter: filter}
	}
	return MenuAction{Meta: m.Fulfill(msg), Items: items, Filter: filter}
}

func (r *MenuRunner) Get(ctx context.Context, m Meta, id string) MenuAction {
	item, msg, err := r.api.GetMenuItem(ctx, id)
	if err != nil {
		return MenuAction{Meta: m.Reject(client.Message(err, msgGetMenuFailed)), ID: id}
	}
	return MenuAction{Meta: m.Fulfill(msg), Item: item, ID: id}
}

func (r *MenuRunner) Create(ctx context.Context, m Meta, form domain.MenuItemForm) MenuAction {
	item, msg, err := r.api.CreateMenuItem(ctx, form)
	if err != nil {
		return MenuAction{Meta: m.Reject(client.Message(err, msgCreateMenuFailed))}
	}
	return MenuAction{Meta: m.Fulfill(msg), Item: item}
}

func (r *MenuRunner) Update(ctx context.Context, m Meta, id string, form domain.MenuItemForm) MenuAction {
	item, msg, err := r.api.UpdateMenuItem(ctx, id, form)
	if err != nil {
		return MenuAction{Meta: m.Reject(client.Message(err, msgUpdateMenuFailed)), ID: id}
	}
	return MenuAction{Meta: m.Fulfill(msg), Item: item, ID: id}
}

// Delete removes the item. The id comes from the request, not the response.
func (r *MenuRunner) Delete(ctx context.Context, m Meta, id string) MenuAction {
	msg, err := r.api.DeleteMenuItem(ctx, id)
	if err != nil {
		return MenuAction{Meta: m.Reject(client.Message(err, msgDeleteMenuFailed)), ID: id}
	}
	return MenuAction{Meta: m.Fulfill(msg), ID: id}
}

// BookingRunner performs booking requests.
type BookingRunner struct {
	api BookingAPI
}

// NewBookingRunner creates a BookingRunner.
func NewBookingRunner(api BookingAPI) *BookingRunner {
	return &BookingRunner{api: api}
}

func (r *BookingRunner) Create(ctx context.Context, m Meta, form domain.BookingForm) BookingAction {
	item, msg, err := r.api.CreateBooking(ctx, form)
	if err != nil {
		return BookingAction{Meta: m.Reject(client.Message(err, msgCreateBookingFail))}
	}
	return BookingAction{Meta: m.Fulfill(msg), Item: item}
}

// List fetches the listing for scope; userID is only read for ScopeUser.
func (r *BookingRunner) List(ctx context.Context, m Meta, scope ListScope, userID string) BookingAction {
	var (
		items    []domain.Booking
		msg      string
		err      error
		fallback string
	)
	switch scope {
	case ScopeAll:
		items, msg, err = r.api.ListAllBookings(ctx)
		fallback = msgListAllFailed
	case ScopeUser:
		items, msg, err = r.api.ListUserBookings(ctx, userID)
		fallback = msgListAllFailed
	default:
		items, msg, err = r.api.ListMyBookings(ctx)
		fallback = msgListMineFailed
	}
	if err != nil {
		return BookingAction{Meta: m.Reject(client.Message(err, fallback)), Scope: scope, UserID: userID}
	}
	return BookingAction{Meta: m.Fulfill(msg), Items: items, Scope: scope, UserID: userID}
}

func (r *BookingRunner) Get(ctx context.Context, m Meta, id string) BookingAction {
	item, msg, err := r.api.GetBooking(ctx, id)
	if err != nil {
		return BookingAction{Meta: m.Reject(client.Message(err, msgGetBookingFailed)), ID: id}
	}
	return BookingAction{Meta: m.Fulfill(msg), Item: item, ID: id}
}

// Cancel sets a booking's status on behalf of its owner.
func (r *BookingRunner) Cancel(ctx context.Context, m Meta, id string, status domain.BookingStatus) BookingAction {
	item, msg, err := r.api.CancelBooking(ctx, id, status)
	if err != nil {
		return BookingAction{Meta: m.Reject(client.Message(err, msgCancelFailed)), ID: id}
	}
	return BookingAction{Meta: m.Fulfill(msg), Item: item, ID: id}
}

func (r *BookingRunner) UpdateStatus(ctx context.Context, m Meta, id string, status domain.BookingStatus) BookingAction {
	res, err := r.api.UpdateBookingStatus(ctx, id, status)
	if err != nil {
		return BookingAction{Meta: m.Reject(client.Message(err, msgUpdateStatusFailed)), ID: id}
	}
	return BookingAction{Meta: m.Fulfill(res.Message), Item: res.Booking, ID: id, Notification: string(res.Notification)}
}

func (r *BookingRunner) Delete(ctx context.Context, m Meta, id string) BookingAction {
	msg, err := r.api.DeleteBooking(ctx, id)
	if err != nil {
		return BookingAction{Meta: m.Reject(client.Message(err, msgDeleteBookingFail)), ID: id}
	}
	return BookingAction{Meta: m.Fulfill(msg), ID: id}
}
