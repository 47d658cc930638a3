package store

import (
	"context"
	"math/rand/v2"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/naveenspark/tavola/internal/apitest"
	"github.com/naveenspark/tavola/pkg/client"
	"github.com/naveenspark/tavola/pkg/domain"
)

// runSession applies the pending action for op, runs the request and applies
// the settled action.
func runSession(s Session, op Op, run func(Meta) SessionAction) Session {
	m := s.Begin(op)
	s = s.Reduce(SessionAction{Meta: m})
	return s.Reduce(run(m))
}

// registered fakes a successful registration echoing email.
func registered(email string) func(Meta) SessionAction {
	return func(m Meta) SessionAction {
		return SessionAction{Meta: m.Fulfill("registered"), Email: email}
	}
}

func newSessionRunner(t *testing.T) (*apitest.Server, *SessionRunner) {
	t.Helper()
	srv := apitest.New(t)
	return srv, NewSessionRunner(client.New(srv.APIURL()))
}

func assertSessionInvariants(t *testing.T, s Session) {
	t.Helper()
	assert.Equal(t, s.IsAuthenticated, s.User != nil, "IsAuthenticated must track User")
	assert.Equal(t, s.PendingVerification, s.PendingEmail != "", "PendingVerification must track PendingEmail")
	assert.False(t, s.Error != "" && s.Message != "", "error and message both set")
	if s.IsAuthenticated {
		assert.False(t, s.IsLoggedOut)
	}
}

func TestNewSessionIsLoggedOut(t *testing.T) {
	s := NewSession()
	assert.True(t, s.IsLoggedOut)
	assert.False(t, s.IsAuthenticated)
	assert.False(t, s.Probed)
	assert.Equal(t, Unauthenticated, s.State())
}

func TestCheckSessionSuccess(t *testing.T) {
	srv, r := newSessionRunner(t)
	srv.AddUser("Ada", "ada@example.com", "secret1", domain.RoleUser, true)
	c := client.New(srv.APIURL())
	_, _, err := c.Login(context.Background(), domain.LoginForm{Email: "ada@example.com", Password: "secret1"})
	require.NoError(t, err)
	r = NewSessionRunner(c)

	s := NewSession()
	m := s.Begin(OpCheckSession)
	s = s.Reduce(SessionAction{Meta: m})
	assert.Equal(t, CheckingSession, s.State())
	assert.True(t, s.IsLoading)
	assert.False(t, s.Probed)

	s = s.Reduce(r.CheckSession(context.Background(), m))
	assert.True(t, s.Probed)
	assert.True(t, s.IsAuthenticated)
	assert.Equal(t, "ada@example.com", s.User.Email)
	assert.Equal(t, Authenticated, s.State())
	assert.Empty(t, s.Message)
	assertSessionInvariants(t, s)
}

func TestCheckSessionFailureIsSilent(t *testing.T) {
	_, r := newSessionRunner(t)
	s := runSession(NewSession(), OpCheckSession, func(m Meta) SessionAction {
		return r.CheckSession(context.Background(), m)
	})
	assert.True(t, s.Probed)
	assert.False(t, s.IsAuthenticated)
	assert.True(t, s.IsLoggedOut)
	assert.Empty(t, s.Error)
	assert.False(t, s.IsLoading)
	assert.Equal(t, Unauthenticated, s.State())
}

func TestLoginSuccess(t *testing.T) {
	srv, r := newSessionRunner(t)
	srv.AddUser("Ada", "ada@example.com", "secret1", domain.RoleAdmin, true)

	s := runSession(NewSession(), OpLogin, func(m Meta) SessionAction {
		return r.Login(context.Background(), m, domain.LoginForm{Email: "ada@example.com", Password: "secret1"})
	})
	assert.True(t, s.IsAuthenticated)
	assert.False(t, s.IsLoggedOut)
	assert.True(t, s.IsVerified)
	assert.Equal(t, "Login successful", s.Message)
	role, ok := s.Role()
	assert.True(t, ok)
	assert.Equal(t, domain.RoleAdmin, role)
	assertSessionInvariants(t, s)
}

func TestLoginUnverifiedAccount(t *testing.T) {
	srv, r := newSessionRunner(t)
	srv.AddUser("Ax", "a@x.com", "secret1", domain.RoleUser, false)

	s := runSession(NewSession(), OpLogin, func(m Meta) SessionAction {
		return r.Login(context.Background(), m, domain.LoginForm{Email: "a@x.com", Password: "secret1"})
	})
	assert.True(t, s.PendingVerification)
	assert.Equal(t, "a@x.com", s.PendingEmail)
	assert.Equal(t, "Please verify your email first", s.Error)
	assert.False(t, s.IsAuthenticated)
	assert.Equal(t, PendingVerification, s.State())
	assertSessionInvariants(t, s)
}

func TestLoginFailureKeepsState(t *testing.T) {
	srv, r := newSessionRunner(t)
	srv.AddUser("Ada", "ada@example.com", "secret1", domain.RoleUser, true)

	s := runSession(NewSession(), OpLogin, func(m Meta) SessionAction {
		return r.Login(context.Background(), m, domain.LoginForm{Email: "ada@example.com", Password: "bad"})
	})
	assert.Equal(t, "Invalid email or password", s.Error)
	assert.False(t, s.PendingVerification)
	assert.True(t, s.IsLoggedOut)
	assert.Equal(t, Unauthenticated, s.State())
}

func TestLoginFallbackMessage(t *testing.T) {
	srv, r := newSessionRunner(t)
	srv.Fail(http.MethodPost, "/auth/login", http.StatusInternalServerError, "")

	s := runSession(NewSession(), OpLogin, func(m Meta) SessionAction {
		return r.Login(context.Background(), m, domain.LoginForm{Email: "ada@example.com", Password: "x"})
	})
	assert.Equal(t, "Login failed", s.Error)
}

func TestRegisterThenVerifyRoundTrip(t *testing.T) {
	_, r := newSessionRunner(t)
	ctx := context.Background()

	s := runSession(NewSession(), OpRegister, func(m Meta) SessionAction {
		return r.Register(ctx, m, domain.RegisterForm{Name: "Ax", Email: "A@x.com", Password: "secret1"})
	})
	// The server lower-cases emails; the pending email is its echo.
	assert.True(t, s.PendingVerification)
	assert.Equal(t, "a@x.com", s.PendingEmail)
	assert.NotEmpty(t, s.Message)
	assertSessionInvariants(t, s)

	s = runSession(s, OpVerifyOTP, func(m Meta) SessionAction {
		return r.VerifyOTP(ctx, m, domain.OTPForm{Email: "a@x.com", OTP: "123456"})
	})
	assert.True(t, s.IsAuthenticated)
	assert.False(t, s.PendingVerification)
	assert.Empty(t, s.PendingEmail)
	assert.True(t, s.IsVerified)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), s.ExpiresAt, time.Minute)
	assertSessionInvariants(t, s)
}

func TestVerifyOTPFailureStaysPending(t *testing.T) {
	srv, r := newSessionRunner(t)
	srv.AddUser("Ax", "a@x.com", "secret1", domain.RoleUser, false)

	s := runSession(NewSession(), OpRegister, registered("a@x.com"))
	s = runSession(s, OpVerifyOTP, func(m Meta) SessionAction {
		return r.VerifyOTP(context.Background(), m, domain.OTPForm{Email: "a@x.com", OTP: "999999"})
	})
	assert.Equal(t, "Invalid or expired OTP", s.Error)
	assert.True(t, s.PendingVerification)
	assert.Equal(t, "a@x.com", s.PendingEmail)
	assert.Equal(t, PendingVerification, s.State())
}

func TestVerifyOTPWithoutUserProbesSession(t *testing.T) {
	srv, r := newSessionRunner(t)
	srv.OmitVerifiedUser = true
	srv.AddUser("Ax", "a@x.com", "secret1", domain.RoleUser, false)

	s := runSession(NewSession(), OpVerifyOTP, func(m Meta) SessionAction {
		return r.VerifyOTP(context.Background(), m, domain.OTPForm{Email: "a@x.com", OTP: apitest.DefaultOTP})
	})
	require.True(t, s.IsAuthenticated)
	assert.Equal(t, "a@x.com", s.User.Email)
}

func TestResendOTPOnlyTouchesMessages(t *testing.T) {
	srv, r := newSessionRunner(t)
	srv.AddUser("Ax", "a@x.com", "secret1", domain.RoleUser, false)

	before := runSession(NewSession(), OpRegister, registered("a@x.com"))
	after := runSession(before, OpResendOTP, func(m Meta) SessionAction {
		return r.ResendOTP(context.Background(), m, "a@x.com")
	})
	assert.Equal(t, "OTP sent to a@x.com", after.Message)
	assert.Equal(t, before.PendingEmail, after.PendingEmail)
	assert.Equal(t, before.PendingVerification, after.PendingVerification)
	assert.Equal(t, before.IsAuthenticated, after.IsAuthenticated)

	failed := runSession(after, OpResendOTP, func(m Meta) SessionAction {
		return r.ResendOTP(context.Background(), m, "nobody@x.com")
	})
	assert.Equal(t, "User not found", failed.Error)
	assert.Empty(t, failed.Message)
	assert.True(t, failed.PendingVerification)
}

func loggedIn(t *testing.T, srv *apitest.Server) (Session, *SessionRunner) {
	t.Helper()
	srv.AddUser("Ada", "ada@example.com", "secret1", domain.RoleUser, true)
	r := NewSessionRunner(client.New(srv.APIURL()))
	s := runSession(NewSession(), OpLogin, func(m Meta) SessionAction {
		return r.Login(context.Background(), m, domain.LoginForm{Email: "ada@example.com", Password: "secret1"})
	})
	require.True(t, s.IsAuthenticated)
	return s, r
}

func TestLogoutSuccess(t *testing.T) {
	srv := apitest.New(t)
	s, r := loggedIn(t, srv)

	m := s.Begin(OpLogout)
	s = s.Reduce(SessionAction{Meta: m})
	assert.Equal(t, LoggingOut, s.State())
	s = s.Reduce(r.Logout(context.Background(), m))

	assert.False(t, s.IsAuthenticated)
	assert.Nil(t, s.User)
	assert.True(t, s.IsLoggedOut)
	assert.False(t, s.IsVerified)
	assert.Equal(t, "Logged out successfully", s.Message)
	assert.Empty(t, s.Error)
	assert.False(t, s.IsLoading)
	assert.Equal(t, Unauthenticated, s.State())
}

func TestLogoutFailureStillEndsSession(t *testing.T) {
	srv := apitest.New(t)
	s, r := loggedIn(t, srv)
	srv.Fail(http.MethodPost, "/auth/logout", http.StatusServiceUnavailable, "")

	s = runSession(s, OpLogout, func(m Meta) SessionAction {
		return r.Logout(context.Background(), m)
	})
	assert.False(t, s.IsAuthenticated)
	assert.Nil(t, s.User)
	assert.True(t, s.IsLoggedOut)
	assert.Equal(t, "Logout failed", s.Error)
	assert.Empty(t, s.Message)
	assertSessionInvariants(t, s)
}

// Two logins race; the one issued last wins even if it resolves first.
func TestLoginLastIssuedWins(t *testing.T) {
	ada := &domain.User{ID: "1", Name: "Ada", Email: "ada@example.com", Role: domain.RoleUser}
	bob := &domain.User{ID: "2", Name: "Bob", Email: "bob@example.com", Role: domain.RoleAdmin}

	s := NewSession()
	first := s.Begin(OpLogin)
	s = s.Reduce(SessionAction{Meta: first})
	second := s.Begin(OpLogin)
	s = s.Reduce(SessionAction{Meta: second})

	s = s.Reduce(SessionAction{Meta: second.Fulfill("hi bob"), User: bob})
	s = s.Reduce(SessionAction{Meta: first.Fulfill("hi ada"), User: ada})

	require.True(t, s.IsAuthenticated)
	assert.Equal(t, "Bob", s.User.Name)
	assert.Equal(t, "hi bob", s.Message)
	assert.False(t, s.IsLoading)
}

// A start-up check that fails after the user has signed in must not sign
// them out.
func TestLoginSupersedesSlowCheck(t *testing.T) {
	ada := &domain.User{ID: "1", Name: "Ada", Email: "ada@example.com", Role: domain.RoleUser}

	s := NewSession()
	check := s.Begin(OpCheckSession)
	s = s.Reduce(SessionAction{Meta: check})
	login := s.Begin(OpLogin)
	s = s.Reduce(SessionAction{Meta: login})
	s = s.Reduce(SessionAction{Meta: login.Fulfill("Login successful"), User: ada})
	require.True(t, s.IsAuthenticated)

	s = s.Reduce(SessionAction{Meta: check.Reject("Not authenticated")})
	assert.True(t, s.IsAuthenticated)
	assert.Equal(t, "Ada", s.User.Name)
	assert.False(t, s.IsLoggedOut)
	assert.True(t, s.Probed, "a discarded check still settles the probe")
	assert.False(t, s.IsLoading)
	assert.Equal(t, Authenticated, s.State())
	assertSessionInvariants(t, s)
}

// A login still in flight when logout settles must not sign the user back in.
func TestLogoutDropsLateLogin(t *testing.T) {
	ada := &domain.User{ID: "1", Name: "Ada", Email: "ada@example.com", Role: domain.RoleUser}

	s := NewSession()
	login := s.Begin(OpLogin)
	s = s.Reduce(SessionAction{Meta: login})
	logout := s.Begin(OpLogout)
	s = s.Reduce(SessionAction{Meta: logout})
	s = s.Reduce(SessionAction{Meta: logout.Fulfill("Logged out successfully")})

	s = s.Reduce(SessionAction{Meta: login.Fulfill("Login successful"), User: ada})
	assert.False(t, s.IsAuthenticated)
	assert.Nil(t, s.User)
	assert.True(t, s.IsLoggedOut)
	assert.Equal(t, "Logged out successfully", s.Message)
	assert.False(t, s.IsLoading)
	assertSessionInvariants(t, s)
}

func TestRegisterDoesNotSupersedeLogin(t *testing.T) {
	ada := &domain.User{ID: "1", Name: "Ada", Email: "ada@example.com", Role: domain.RoleUser}

	s := NewSession()
	login := s.Begin(OpLogin)
	s = s.Reduce(SessionAction{Meta: login})
	reg := s.Begin(OpRegister)
	s = s.Reduce(SessionAction{Meta: reg})
	s = s.Reduce(registered("bea@example.com")(reg))

	s = s.Reduce(SessionAction{Meta: login.Fulfill("Login successful"), User: ada})
	assert.True(t, s.IsAuthenticated)
	assert.Equal(t, "Ada", s.User.Name)
}

func TestSessionResetIgnoresLateResponses(t *testing.T) {
	s := runSession(NewSession(), OpCheckSession, func(m Meta) SessionAction {
		return SessionAction{Meta: m.Reject("")}
	})
	login := s.Begin(OpLogin)
	s = s.Reduce(SessionAction{Meta: login})

	s = s.Reset()
	s = s.Reduce(SessionAction{Meta: login.Fulfill("late"), User: &domain.User{ID: "1", Role: domain.RoleUser}})
	assert.False(t, s.IsAuthenticated)
	assert.True(t, s.Probed)
	assert.False(t, s.IsLoading)
}

func TestSessionClearIdempotent(t *testing.T) {
	s := runSession(NewSession(), OpLogin, func(m Meta) SessionAction {
		return SessionAction{Meta: m.Reject("bad")}
	})
	require.Equal(t, "bad", s.Error)
	assert.Equal(t, s.ClearError(), s.ClearError().ClearError())
	assert.Equal(t, s.ClearMessage(), s.ClearMessage().ClearMessage())
}

// Random interleavings of every session operation keep the invariants.
func TestSessionInvariantsUnderRandomSequences(t *testing.T) {
	ops := []Op{OpCheckSession, OpLogin, OpRegister, OpVerifyOTP, OpResendOTP, OpLogout}
	user := &domain.User{ID: "u", Name: "U", Email: "a@x.com", Role: domain.RoleUser}
	rng := rand.New(rand.NewPCG(7, 11))

	for run := 0; run < 200; run++ {
		s := NewSession()
		var inFlight []Meta
		for step := 0; step < 30; step++ {
			if len(inFlight) == 0 || rng.IntN(2) == 0 {
				m := s.Begin(ops[rng.IntN(len(ops))])
				s = s.Reduce(SessionAction{Meta: m})
				inFlight = append(inFlight, m)
			} else {
				i := rng.IntN(len(inFlight))
				m := inFlight[i]
				inFlight = append(inFlight[:i], inFlight[i+1:]...)
				s = s.Reduce(randomOutcome(rng, m, user))
			}
			assertSessionInvariants(t, s)
			assert.Equal(t, len(inFlight) > 0, s.IsLoading, "run %d step %d", run, step)
		}
		for _, m := range inFlight {
			s = s.Reduce(randomOutcome(rng, m, user))
		}
		assert.False(t, s.IsLoading)
		assertSessionInvariants(t, s)
	}
}

func randomOutcome(rng *rand.Rand, m Meta, user *domain.User) SessionAction {
	if rng.IntN(2) == 0 {
		a := SessionAction{Meta: m.Reject("failed")}
		if m.Op == OpLogin && rng.IntN(2) == 0 {
			a.Unverified, a.Email = true, "a@x.com"
		}
		return a
	}
	a := SessionAction{Meta: m.Fulfill("ok")}
	switch m.Op {
	case OpCheckSession, OpLogin, OpVerifyOTP:
		a.User = user
	case OpRegister:
		a.Email = "a@x.com"
	}
	return a
}

func TestSessionStateString(t *testing.T) {
	for state, want := range map[SessionState]string{
		Unauthenticated:     "unauthenticated",
		CheckingSession:     "checking session",
		PendingVerification: "pending verification",
		Authenticating:      "authenticating",
		Authenticated:       "authenticated",
		LoggingOut:          "logging out",
	} {
		assert.Equal(t, want, state.String())
	}
}
