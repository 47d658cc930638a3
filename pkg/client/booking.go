package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/naveenspark/tavola/pkg/domain"
)

type bookingResponse struct {
	Booking *domain.Booking `json:"booking"`
	Message string          `json:"message"`
}

type bookingsResponse struct {
	Bookings []domain.Booking `json:"bookings"`
	Message  string           `json:"message"`
}

type statusRequest struct {
	BookingStatus domain.BookingStatus `json:"bookingStatus"`
}

// StatusUpdate is the response of an admin status change.
type StatusUpdate struct {
	Booking      *domain.Booking
	Message      string
	Notification domain.Notice
}

// CreateBooking reserves a table for the signed-in user.
func (c *Client) CreateBooking(ctx context.Context, form domain.BookingForm) (*domain.Booking, string, error) {
	var resp bookingResponse
	if err := c.post(ctx, "/bookings", form, &resp); err != nil {
		return nil, "", fmt.Errorf("client.CreateBooking: %w", err)
	}
	return resp.Booking, resp.Message, nil
}

// ListMyBookings returns the signed-in user's bookings.
func (c *Client) ListMyBookings(ctx context.Context) ([]domain.Booking, string, error) {
	var resp bookingsResponse
	if err := c.get(ctx, "/bookings", &resp); err != nil {
		return nil, "", fmt.Errorf("client.ListMyBookings: %w", err)
	}
	return resp.Bookings, resp.Message, nil
}

// GetBooking fetches one of the user's bookings by ID.
func (c *Client) GetBooking(ctx context.Context, id string) (*domain.Booking, string, error) {
	var resp bookingResponse
	if err := c.get(ctx, "/bookings/"+url.PathEscape(id), &resp); err != nil {
		return nil, "", fmt.Errorf("client.GetBooking: %w", err)
	}
	return resp.Booking, resp.Message, nil
}

// CancelBooking sets the status of one of the user's bookings. Cancelling is a
// status change, not a removal.
func (c *Client) CancelBooking(ctx context.Context, id string, status domain.BookingStatus) (*domain.Booking, string, error) {
	var resp bookingResponse
	if err := c.doRequest(ctx, http.MethodPatch, "/bookings/"+url.PathEscape(id), statusRequest{BookingStatus: status}, &resp); err != nil {
		return nil, "", fmt.Errorf("client.CancelBooking: %w", err)
	}
	return resp.Booking, resp.Message, nil
}

// --- Admin ---

// ListAllBookings returns every user's bookings (admin).
func (c *Client) ListAllBookings(ctx context.Context) ([]domain.Booking, string, error) {
	var resp bookingsResponse
	if err := c.get(ctx, "/admin/bookings", &resp); err != nil {
		return nil, "", fmt.Errorf("client.ListAllBookings: %w", err)
	}
	return resp.Bookings, resp.Message, nil
}

// ListUserBookings returns one user's bookings (admin).
func (c *Client) ListUserBookings(ctx context.Context, userID string) ([]domain.Booking, string, error) {
	var resp bookingsResponse
	if err := c.get(ctx, "/admin/users/"+url.PathEscape(userID)+"/bookings", &resp); err != nil {
		return nil, "", fmt.Errorf("client.ListUserBookings: %w", err)
	}
	return resp.Bookings, resp.Message, nil
}

// UpdateBookingStatus changes any booking's status (admin).
func (c *Client) UpdateBookingStatus(ctx context.Context, id string, status domain.BookingStatus) (*StatusUpdate, error) {
	var resp struct {
		Booking      *domain.Booking `json:"booking"`
		Message      string          `json:"message"`
		Notification domain.Notice   `json:"notification"`
	}
	if err := c.doRequest(ctx, http.MethodPatch, "/admin/bookings/"+url.PathEscape(id), statusRequest{BookingStatus: status}, &resp); err != nil {
		return nil, fmt.Errorf("client.UpdateBookingStatus: %w", err)
	}
	return &StatusUpdate{Booking: resp.Booking, Message: resp.Message, Notification: resp.Notification}, nil
}

// DeleteBooking removes a booking (admin).
func (c *Client) DeleteBooking(ctx context.Context, id string) (string, error) {
	var resp messageResponse
	if err := c.doRequest(ctx, http.MethodDelete, "/admin/bookings/"+url.PathEscape(id), nil, &resp); err != nil {
		return "", fmt.Errorf("client.DeleteBooking: %w", err)
	}
	return resp.Message, nil
}
