package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// BookingStatus is defined by the server; the client passes it through.
type BookingStatus string

// Statuses the admin screens offer. The server may send others.
const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
	BookingCompleted BookingStatus = "completed"
)

// BookingStatuses is the cycle order used by the admin status picker.
var BookingStatuses = []BookingStatus{BookingPending, BookingConfirmed, BookingCancelled, BookingCompleted}

// NextStatus returns the status after s in BookingStatuses, wrapping around.
// Unknown statuses advance to the first entry.
func NextStatus(s BookingStatus) BookingStatus {
	for i, v := range BookingStatuses {
		if v == s {
			return BookingStatuses[(i+1)%len(BookingStatuses)]
		}
	}
	return BookingStatuses[0]
}

// Booking is a table reservation.
type Booking struct {
	ID           string        `json:"_id"`
	User         *UserRef      `json:"user,omitempty"`
	Name         string        `json:"name"`
	Phone        string        `json:"phone"`
	Date         string        `json:"date"`
	Time         string        `json:"time"`
	TotalPersons int           `json:"totalPersons"`
	Status       BookingStatus `json:"bookingStatus"`
	CreatedAt    time.Time     `json:"createdAt,omitzero"`
}

// EntityID returns the server-assigned id.
func (b Booking) EntityID() string { return b.ID }

// Notice is the notification the server attaches to an admin status change.
// It arrives either as plain text or as an object with a message field.
type Notice string

func (n *Notice) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*n = Notice(s)
		return nil
	}
	var obj struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("domain: notice: %w", err)
	}
	*n = Notice(obj.Message)
	return nil
}
