package store

import (
	"time"

	"github.com/naveenspark/tavola/pkg/domain"
)

// Session operations.
const (
	OpCheckSession Op = "session/check"
	OpLogin        Op = "session/login"
	OpRegister     Op = "session/register"
	OpVerifyOTP    Op = "session/verify-otp"
	OpResendOTP    Op = "session/resend-otp"
	OpLogout       Op = "session/logout"
)

// SessionState is the state-machine view of the session flags.
type SessionState uint8

const (
	Unauthenticated SessionState = iota
	CheckingSession
	PendingVerification
	Authenticating
	Authenticated
	LoggingOut
)

func (s SessionState) String() string {
	switch s {
	case Unauthenticated:
		return "unauthenticated"
	case CheckingSession:
		return "checking session"
	case PendingVerification:
		return "pending verification"
	case Authenticating:
		return "authenticating"
	case Authenticated:
		return "authenticated"
	case LoggingOut:
		return "logging out"
	}
	return "unknown"
}

// Session is the signed-in state of this client.
//
// IsAuthenticated and User are always set together, and PendingEmail is
// non-empty exactly when PendingVerification is true.
type Session struct {
	Lifecycle

	User                *domain.User
	IsAuthenticated     bool
	IsLoggedOut         bool
	PendingVerification bool
	PendingEmail        string
	IsVerified          bool

	// Probed is set once the start-up session check has settled. Until then
	// protected routes cannot be decided.
	Probed bool
	// ExpiresAt is read from the token issued on OTP verification. Zero when
	// unknown.
	ExpiresAt time.Time
}

// NewSession returns the logged-out initial session.
func NewSession() Session {
	return Session{IsLoggedOut: true}
}

// SessionAction is a pending or settled session operation.
type SessionAction struct {
	Meta

	User *domain.User
	// Email is the address awaiting verification: the one echoed by the
	// server on register, or the submitted one on an unverified login.
	Email string
	// Unverified marks a rejected login for an account that still needs its
	// OTP.
	Unverified bool
	ExpiresAt  time.Time
}

// identityFence is shared by the operations that decide who is signed in.
// Only the latest of them applies, whatever order they settle in.
const identityFence = "session/identity"

// Begin starts a run of op. The session check, login, verification and
// logout supersede each other.
func (s Session) Begin(op Op) Meta {
	switch op {
	case OpCheckSession, OpLogin, OpVerifyOTP, OpLogout:
		return s.beginIn(op, identityFence)
	}
	return s.Lifecycle.Begin(op)
}

// State derives the state-machine state from the flags.
func (s Session) State() SessionState {
	switch {
	case s.InFlight(OpLogout):
		return LoggingOut
	case s.InFlight(OpCheckSession):
		return CheckingSession
	case s.InFlight(OpLogin), s.InFlight(OpVerifyOTP):
		return Authenticating
	case s.IsAuthenticated:
		return Authenticated
	case s.PendingVerification:
		return PendingVerification
	}
	return Unauthenticated
}

// Role returns the signed-in user's role and false for a guest.
func (s Session) Role() (domain.Role, bool) {
	if !s.IsAuthenticated || s.User == nil {
		return 0, false
	}
	return s.User.Role, true
}

// Reduce applies a to s.
func (s Session) Reduce(a SessionAction) Session {
	lc, current := s.apply(a.Meta)
	s.Lifecycle = lc
	if a.Op == OpCheckSession && a.Phase != Pending {
		s.Probed = true
	}
	if !current {
		return s
	}
	if a.Op == OpCheckSession {
		// The probe never reports anything to the user.
		s.Error, s.Message = "", ""
	}

	switch a.Phase {
	case Fulfilled:
		switch a.Op {
		case OpCheckSession, OpLogin:
			s = s.authenticate(a.User)
		case OpVerifyOTP:
			s = s.authenticate(a.User)
			s.ExpiresAt = a.ExpiresAt
		case OpRegister:
			s = s.awaitVerification(a.Email)
		case OpLogout:
			msg := s.Message
			s = s.loggedOut()
			s.Message = msg
		}
	case Rejected:
		switch a.Op {
		case OpCheckSession:
			s.User = nil
			s.IsAuthenticated = false
			s.IsLoggedOut = true
		case OpLogin:
			if a.Unverified {
				s = s.awaitVerification(a.Email)
			}
		case OpLogout:
			// The session is over locally even when the server disagrees.
			errMsg := s.Error
			s = s.loggedOut()
			s.Error = errMsg
		}
	}
	return s
}

func (s Session) authenticate(u *domain.User) Session {
	if u == nil {
		return s
	}
	user := *u
	s.User = &user
	s.IsAuthenticated = true
	s.IsLoggedOut = false
	s.IsVerified = true
	s.PendingVerification = false
	s.PendingEmail = ""
	return s
}

func (s Session) awaitVerification(email string) Session {
	if email == "" {
		return s
	}
	s.PendingVerification = true
	s.PendingEmail = email
	return s
}

// loggedOut clears everything but the lifecycle bookkeeping and the probe
// barrier.
func (s Session) loggedOut() Session {
	lc := s.Lifecycle
	lc.Error, lc.Message = "", ""
	return Session{Lifecycle: lc, IsLoggedOut: true, Probed: s.Probed}
}

// ClearError consumes the error.
func (s Session) ClearError() Session {
	s.Error = ""
	return s
}

// ClearMessage consumes the message.
func (s Session) ClearMessage() Session {
	s.Message = ""
	return s
}

// Reset returns the logged-out baseline and drops the results of requests
// still in flight.
func (s Session) Reset() Session {
	return Session{Lifecycle: s.reset(), IsLoggedOut: true, Probed: s.Probed}
}
