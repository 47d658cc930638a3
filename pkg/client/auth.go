package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/naveenspark/tavola/pkg/domain"
)

type userResponse struct {
	User    *domain.User `json:"user"`
	Message string       `json:"message"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// VerifyResult is the response of a successful OTP verification.
type VerifyResult struct {
	User    *domain.User
	Message string
	// Token is returned for reference only; the session itself rides on cookies.
	Token string
}

// CurrentUser asks the server who owns the session cookie. Servers that only
// expose /auth/me are handled transparently.
func (c *Client) CurrentUser(ctx context.Context) (*domain.User, error) {
	var resp userResponse
	err := c.get(ctx, "/auth/current-user", &resp)
	if IsStatus(err, http.StatusNotFound) {
		err = c.get(ctx, "/auth/me", &resp)
	}
	if err != nil {
		return nil, fmt.Errorf("client.CurrentUser: %w", err)
	}
	if resp.User == nil {
		return nil, fmt.Errorf("client.CurrentUser: response has no user")
	}
	return resp.User, nil
}

// Login signs in with email and password.
func (c *Client) Login(ctx context.Context, form domain.LoginForm) (*domain.User, string, error) {
	var resp userResponse
	if err := c.post(ctx, "/auth/login", form, &resp); err != nil {
		return nil, "", fmt.Errorf("client.Login: %w", err)
	}
	return resp.User, resp.Message, nil
}

// Register creates an unverified account. The profile image, when present,
// forces a multipart request.
func (c *Client) Register(ctx context.Context, form domain.RegisterForm) (*domain.User, string, error) {
	var body any = form
	if form.ProfileImage != nil {
		fd := &formData{}
		fd.set("name", form.Name)
		fd.set("email", form.Email)
		if form.Phone != "" {
			fd.set("phone", form.Phone)
		}
		fd.set("password", form.Password)
		fd.attach("profile_image", form.ProfileImage)
		body = fd
	}
	var resp userResponse
	if err := c.post(ctx, "/auth/register", body, &resp); err != nil {
		return nil, "", fmt.Errorf("client.Register: %w", err)
	}
	return resp.User, resp.Message, nil
}

// VerifyOTP confirms an account with the emailed one-time code.
func (c *Client) VerifyOTP(ctx context.Context, form domain.OTPForm) (*VerifyResult, error) {
	var resp struct {
		User    *domain.User `json:"user"`
		Message string       `json:"message"`
		Token   string       `json:"token"`
	}
	if err := c.post(ctx, "/auth/verify-otp", form, &resp); err != nil {
		return nil, fmt.Errorf("client.VerifyOTP: %w", err)
	}
	return &VerifyResult{User: resp.User, Message: resp.Message, Token: resp.Token}, nil
}

// ResendOTP asks the server to email a fresh code.
func (c *Client) ResendOTP(ctx context.Context, email string) (string, error) {
	var resp messageResponse
	if err := c.post(ctx, "/auth/resend-otp", map[string]string{"email": email}, &resp); err != nil {
		return "", fmt.Errorf("client.ResendOTP: %w", err)
	}
	return resp.Message, nil
}

// Logout ends the server session.
func (c *Client) Logout(ctx context.Context) (string, error) {
	var resp struct {
		Message   string `json:"message"`
		LoggedOut bool   `json:"loggedOut"`
	}
	if err := c.post(ctx, "/auth/logout", nil, &resp); err != nil {
		return "", fmt.Errorf("client.Logout: %w", err)
	}
	return resp.Message, nil
}
