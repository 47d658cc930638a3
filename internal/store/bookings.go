package store

import "github.com/naveenspark/tavola/pkg/domain"

// Booking operations. The three listings share OpBookingList, so the most
// recently requested listing wins whichever scope it has.
const (
	OpBookingCreate       Op = "bookings/create"
	OpBookingList         Op = "bookings/list"
	OpBookingGet          Op = "bookings/get"
	OpBookingCancel       Op = "bookings/cancel"
	OpBookingUpdateStatus Op = "bookings/update-status"
	OpBookingDelete       Op = "bookings/delete"
)

// ListScope says whose bookings a listing holds.
type ListScope uint8

const (
	ScopeMine ListScope = iota
	ScopeAll
	ScopeUser
)

func (s ListScope) String() string {
	switch s {
	case ScopeMine:
		return "mine"
	case ScopeAll:
		return "all"
	case ScopeUser:
		return "user"
	}
	return "unknown"
}

// Bookings holds table reservations.
type Bookings struct {
	Lifecycle

	Items   []domain.Booking
	Current *domain.Booking
	// Scope and UserID describe the listing in Items.
	Scope  ListScope
	UserID string
	// Notification is the text the server attached to the last status
	// change, shown once like Message.
	Notification string
}

// BookingAction is a pending or settled booking operation.
type BookingAction struct {
	Meta

	Scope        ListScope
	UserID       string
	Items        []domain.Booking
	Item         *domain.Booking
	ID           string
	Notification string
}

// Reduce applies a to b.
func (b Bookings) Reduce(a BookingAction) Bookings {
	lc, current := b.apply(a.Meta)
	b.Lifecycle = lc
	if !current || a.Phase != Fulfilled {
		return b
	}

	switch a.Op {
	case OpBookingList:
		b.Items = replaceAll(a.Items)
		b.Scope = a.Scope
		b.UserID = a.UserID
	case OpBookingGet:
		b.Current = cloneBooking(a.Item)
	case OpBookingCreate:
		if a.Item != nil {
			b.Items = appendItem(b.Items, *a.Item)
		}
	case OpBookingCancel, OpBookingUpdateStatus:
		if a.Item != nil {
			b.Items = replaceByID(b.Items, *a.Item)
			if b.Current != nil && b.Current.ID == a.Item.ID {
				b.Current = cloneBooking(a.Item)
			}
		}
		if a.Op == OpBookingUpdateStatus {
			b.Notification = a.Notification
		}
	case OpBookingDelete:
		b.Items = removeByID(b.Items, a.ID)
		if b.Current != nil && b.Current.ID == a.ID {
			b.Current = nil
		}
	}
	return b
}

func cloneBooking(bk *domain.Booking) *domain.Booking {
	if bk == nil {
		return nil
	}
	c := *bk
	if bk.User != nil {
		u := *bk.User
		c.User = &u
	}
	return &c
}

// ClearError consumes the error.
func (b Bookings) ClearError() Bookings {
	b.Error = ""
	return b
}

// ClearMessage consumes the message.
func (b Bookings) ClearMessage() Bookings {
	b.Message = ""
	return b
}

// ClearNotification consumes the status-change notification.
func (b Bookings) ClearNotification() Bookings {
	b.Notification = ""
	return b
}

// Reset empties the store.
func (b Bookings) Reset() Bookings {
	return Bookings{Lifecycle: b.reset()}
}
