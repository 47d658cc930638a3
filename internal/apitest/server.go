// Package apitest runs an in-memory restaurant backend for tests. It speaks
// the same routes, cookies and payload shapes as the real server.
package apitest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/naveenspark/tavola/pkg/domain"
)

// SessionCookie is the name of the session cookie.
const SessionCookie = "token"

// DefaultOTP is the code issued to every new account unless a test overrides it.
const DefaultOTP = "123456"

const tokenSecret = "apitest-secret"

type account struct {
	user     domain.User
	password string
	otp      string
}

// Request is one request as seen by the server.
type Request struct {
	Method      string
	Path        string
	Query       string
	RequestID   string
	ContentType string
	HasCookie   bool
}

type failure struct {
	status  int
	message string
}

// Server is a fake backend. Its zero value is not usable; call New.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	accounts map[string]*account // by email
	sessions map[string]string   // cookie value -> email
	menu     []domain.MenuItem
	bookings []domain.Booking
	failures map[string]failure
	requests []Request

	// OnlyMe makes /auth/current-user answer 404 so clients must fall back
	// to /auth/me.
	OnlyMe bool
	// OmitVerifiedUser drops the user object from verify-otp responses.
	OmitVerifiedUser bool
	// NotificationAsText sends status-update notifications as plain strings.
	NotificationAsText bool
}

// New starts a server and closes it when the test ends.
func New(t testing.TB) *Server {
	t.Helper()
	s := &Server{
		accounts: map[string]*account{},
		sessions: map[string]string{},
		failures: map[string]failure{},
	}
	s.Server = httptest.NewServer(s.routes())
	t.Cleanup(s.Close)
	return s
}

// APIURL is the base URL clients should be configured with.
func (s *Server) APIURL() string {
	return s.URL + "/api"
}

func (s *Server) routes() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(s.record, s.inject)

	api := e.Group("/api")
	api.GET("/auth/current-user", s.currentUser)
	api.GET("/auth/me", s.me)
	api.POST("/auth/login", s.login)
	api.POST("/auth/register", s.register)
	api.POST("/auth/verify-otp", s.verifyOTP)
	api.POST("/auth/resend-otp", s.resendOTP)
	api.POST("/auth/logout", s.logout)

	api.GET("/menu/items", s.listMenu)
	api.GET("/menu/:id", s.getMenuItem)
	api.POST("/menu/item", s.createMenuItem, s.requireAdmin)
	api.PUT("/menu/items/:id", s.updateMenuItem, s.requireAdmin)
	api.DELETE("/menu/items/:id", s.deleteMenuItem, s.requireAdmin)

	api.POST("/bookings", s.createBooking, s.requireUser)
	api.GET("/bookings", s.listMyBookings, s.requireUser)
	api.GET("/bookings/:id", s.getBooking, s.requireUser)
	api.PATCH("/bookings/:id", s.cancelBooking, s.requireUser)

	api.GET("/admin/bookings", s.listAllBookings, s.requireAdmin)
	api.GET("/admin/users/:id/bookings", s.listUserBookings, s.requireAdmin)
	api.PATCH("/admin/bookings/:id", s.updateBookingStatus, s.requireAdmin)
	api.DELETE("/admin/bookings/:id", s.deleteBooking, s.requireAdmin)
	return e
}

// --- Test controls ---

// AddUser creates an account directly, bypassing registration.
func (s *Server) AddUser(name, email, password string, role domain.Role, verified bool) domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := domain.User{ID: uuid.NewString(), Name: name, Email: email, Role: role, IsVerified: verified}
	s.accounts[email] = &account{user: u, password: password, otp: DefaultOTP}
	return u
}

// AddMenuItem seeds the menu.
func (s *Server) AddMenuItem(title string, price string, category domain.Category) domain.MenuItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	item := domain.MenuItem{
		ID:          uuid.NewString(),
		Title:       title,
		Description: title + " from the kitchen",
		Price:       decimal.RequireFromString(price),
		Category:    category,
	}
	s.menu = append(s.menu, item)
	return item
}

// AddBooking seeds a booking owned by the user with the given email.
func (s *Server) AddBooking(email, date, clock string, persons int) domain.Booking {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc := s.accounts[email]
	b := domain.Booking{
		ID:           uuid.NewString(),
		User:         &domain.UserRef{ID: acc.user.ID, Name: acc.user.Name, Email: acc.user.Email},
		Name:         acc.user.Name,
		Phone:        "555-0100",
		Date:         date,
		Time:         clock,
		TotalPersons: persons,
		Status:       domain.BookingPending,
		CreatedAt:    time.Now().UTC().Truncate(time.Second),
	}
	s.bookings = append(s.bookings, b)
	return b
}

// SetOTP replaces the pending code of an account.
func (s *Server) SetOTP(email, otp string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if acc, ok := s.accounts[email]; ok {
		acc.otp = otp
	}
}

// Fail makes every request to method+path (path without the /api prefix)
// answer with status and message until Heal is called.
func (s *Server) Fail(method, path string, status int, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[method+" "+path] = failure{status: status, message: message}
}

// Heal removes all injected failures.
func (s *Server) Heal() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = map[string]failure{}
}

// Requests returns every request received so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// LastRequest returns the most recent request.
func (s *Server) LastRequest() Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.requests) == 0 {
		return Request{}
	}
	return s.requests[len(s.requests)-1]
}

// Bookings returns the server-side booking list.
func (s *Server) Bookings() []domain.Booking {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Booking(nil), s.bookings...)
}

// Menu returns the server-side menu.
func (s *Server) Menu() []domain.MenuItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.MenuItem(nil), s.menu...)
}

// --- Middleware ---

func (s *Server) record(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		r := c.Request()
		_, cookieErr := r.Cookie(SessionCookie)
		s.mu.Lock()
		s.requests = append(s.requests, Request{
			Method:      r.Method,
			Path:        r.URL.Path,
			Query:       r.URL.RawQuery,
			RequestID:   r.Header.Get("X-Request-ID"),
			ContentType: r.Header.Get("Content-Type"),
			HasCookie:   cookieErr == nil,
		})
		s.mu.Unlock()
		return next(c)
	}
}

func (s *Server) inject(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		key := c.Request().Method + " " + strings.TrimPrefix(c.Request().URL.Path, "/api")
		s.mu.Lock()
		f, ok := s.failures[key]
		s.mu.Unlock()
		if ok {
			return fail(c, f.status, f.message)
		}
		return next(c)
	}
}

func (s *Server) requireUser(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, ok := s.sessionUser(c); !ok {
			return fail(c, http.StatusUnauthorized, "Not authenticated")
		}
		return next(c)
	}
}

func (s *Server) requireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		u, ok := s.sessionUser(c)
		if !ok {
			return fail(c, http.StatusUnauthorized, "Not authenticated")
		}
		if u.Role != domain.RoleAdmin {
			return fail(c, http.StatusForbidden, "Access denied")
		}
		return next(c)
	}
}

// --- Helpers ---

func fail(c echo.Context, status int, message string) error {
	return c.JSON(status, echo.Map{"message": message})
}

func (s *Server) sessionUser(c echo.Context) (domain.User, bool) {
	cookie, err := c.Cookie(SessionCookie)
	if err != nil {
		return domain.User{}, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	email, ok := s.sessions[cookie.Value]
	if !ok {
		return domain.User{}, false
	}
	return s.accounts[email].user, true
}

func (s *Server) startSession(c echo.Context, email string) {
	sid := uuid.NewString()
	s.mu.Lock()
	s.sessions[sid] = email
	s.mu.Unlock()
	c.SetCookie(&http.Cookie{Name: SessionCookie, Value: sid, Path: "/", HttpOnly: true})
}

func signToken(userID string) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(tokenSecret))
}

// fields reads a JSON object or a multipart form into strings. Files are
// reported by field name with their size.
func fields(c echo.Context) (map[string]string, map[string]int64, error) {
	out := map[string]string{}
	files := map[string]int64{}
	if strings.HasPrefix(c.Request().Header.Get("Content-Type"), echo.MIMEMultipartForm) {
		form, err := c.MultipartForm()
		if err != nil {
			return nil, nil, err
		}
		for k, v := range form.Value {
			if len(v) > 0 {
				out[k] = v[0]
			}
		}
		for k, v := range form.File {
			if len(v) > 0 {
				files[k] = v[0].Size
			}
		}
		return out, files, nil
	}
	raw := map[string]any{}
	dec := json.NewDecoder(c.Request().Body)
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return nil, nil, err
	}
	for k, v := range raw {
		out[k] = fmt.Sprint(v)
	}
	return out, files, nil
}

// --- Auth ---

func (s *Server) currentUser(c echo.Context) error {
	if s.OnlyMe {
		return fail(c, http.StatusNotFound, "Not found")
	}
	return s.me(c)
}

func (s *Server) me(c echo.Context) error {
	u, ok := s.sessionUser(c)
	if !ok {
		return fail(c, http.StatusUnauthorized, "Not authenticated")
	}
	return c.JSON(http.StatusOK, echo.Map{"user": u})
}

func (s *Server) login(c echo.Context) error {
	in, _, err := fields(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request body")
	}
	s.mu.Lock()
	acc, ok := s.accounts[in["email"]]
	var u domain.User
	if ok && acc.password == in["password"] {
		u = acc.user
	}
	s.mu.Unlock()
	if u.ID == "" {
		return fail(c, http.StatusUnauthorized, "Invalid email or password")
	}
	if !u.IsVerified {
		return c.JSON(http.StatusForbidden, echo.Map{
			"message": "Please verify your email first",
			"email":   u.Email,
		})
	}
	s.startSession(c, u.Email)
	return c.JSON(http.StatusOK, echo.Map{"user": u, "message": "Login successful"})
}

func (s *Server) register(c echo.Context) error {
	in, files, err := fields(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request body")
	}
	email := strings.ToLower(strings.TrimSpace(in["email"]))
	if email == "" || in["name"] == "" || len(in["password"]) < 6 {
		return fail(c, http.StatusBadRequest, "Name, email and password are required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.accounts[email]; exists {
		return fail(c, http.StatusConflict, "User already exists")
	}
	u := domain.User{ID: uuid.NewString(), Name: in["name"], Email: email, Phone: in["phone"], Role: domain.RoleUser}
	if _, ok := files["profile_image"]; ok {
		u.ProfileImage = "/uploads/" + u.ID + ".png"
	}
	s.accounts[email] = &account{user: u, password: in["password"], otp: DefaultOTP}
	return c.JSON(http.StatusCreated, echo.Map{
		"user":    u,
		"message": "Registration successful. Check your email for the OTP",
	})
}

func (s *Server) verifyOTP(c echo.Context) error {
	in, _, err := fields(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request body")
	}
	s.mu.Lock()
	acc, ok := s.accounts[in["email"]]
	if !ok || acc.otp != in["otp"] {
		s.mu.Unlock()
		return fail(c, http.StatusBadRequest, "Invalid or expired OTP")
	}
	acc.user.IsVerified = true
	u := acc.user
	s.mu.Unlock()

	token, err := signToken(u.ID)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "Could not sign token")
	}
	s.startSession(c, u.Email)
	resp := echo.Map{"message": "Email verified successfully", "token": token}
	if !s.OmitVerifiedUser {
		resp["user"] = u
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) resendOTP(c echo.Context) error {
	in, _, err := fields(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request body")
	}
	s.mu.Lock()
	_, ok := s.accounts[in["email"]]
	s.mu.Unlock()
	if !ok {
		return fail(c, http.StatusNotFound, "User not found")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "OTP sent to " + in["email"]})
}

func (s *Server) logout(c echo.Context) error {
	if cookie, err := c.Cookie(SessionCookie); err == nil {
		s.mu.Lock()
		delete(s.sessions, cookie.Value)
		s.mu.Unlock()
	}
	c.SetCookie(&http.Cookie{Name: SessionCookie, Value: "", Path: "/", MaxAge: -1})
	return c.JSON(http.StatusOK, echo.Map{"message": "Logged out successfully", "loggedOut": true})
}

// --- Menu ---

func (s *Server) listMenu(c echo.Context) error {
	search := strings.ToLower(c.QueryParam("search"))
	category := domain.Category(c.QueryParam("category"))
	s.mu.Lock()
	defer s.mu.Unlock()
	items := []domain.MenuItem{}
	for _, m := range s.menu {
		if search != "" && !strings.Contains(strings.ToLower(m.Title), search) {
			continue
		}
		if category != "" && category != domain.CategoryAll && m.Category != category {
			continue
		}
		items = append(items, m)
	}
	return c.JSON(http.StatusOK, echo.Map{"menuItems": items})
}

func (s *Server) findMenuItem(id string) int {
	for i, m := range s.menu {
		if m.ID == id {
			return i
		}
	}
	return -1
}

func (s *Server) getMenuItem(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.findMenuItem(c.Param("id"))
	if i < 0 {
		return fail(c, http.StatusNotFound, "Menu item not found")
	}
	return c.JSON(http.StatusOK, echo.Map{"menuItem": s.menu[i]})
}

func menuItemFrom(in map[string]string, files map[string]int64) (domain.MenuItem, error) {
	price, err := decimal.NewFromString(in["price"])
	if err != nil {
		return domain.MenuItem{}, fmt.Errorf("invalid price")
	}
	item := domain.MenuItem{
		Title:       in["title"],
		Description: in["description"],
		Price:       price,
		Category:    domain.Category(in["category"]),
	}
	if _, ok := files["image"]; ok {
		item.Image = "/uploads/" + uuid.NewString() + ".png"
	}
	return item, nil
}

func (s *Server) createMenuItem(c echo.Context) error {
	in, files, err := fields(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request body")
	}
	item, err := menuItemFrom(in, files)
	if err != nil {
		return fail(c, http.StatusBadRequest, "Price must be a number")
	}
	item.ID = uuid.NewString()
	s.mu.Lock()
	s.menu = append(s.menu, item)
	s.mu.Unlock()
	return c.JSON(http.StatusCreated, echo.Map{"menuItem": item, "message": "Menu item created"})
}

func (s *Server) updateMenuItem(c echo.Context) error {
	in, files, err := fields(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request body")
	}
	item, err := menuItemFrom(in, files)
	if err != nil {
		return fail(c, http.StatusBadRequest, "Price must be a number")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.findMenuItem(c.Param("id"))
	if i < 0 {
		return fail(c, http.StatusNotFound, "Menu item not found")
	}
	item.ID = s.menu[i].ID
	if item.Image == "" {
		item.Image = s.menu[i].Image
	}
	s.menu[i] = item
	return c.JSON(http.StatusOK, echo.Map{"menuItem": item, "message": "Menu item updated"})
}

func (s *Server) deleteMenuItem(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.findMenuItem(c.Param("id"))
	if i < 0 {
		return fail(c, http.StatusNotFound, "Menu item not found")
	}
	s.menu = append(s.menu[:i], s.menu[i+1:]...)
	return c.JSON(http.StatusOK, echo.Map{"message": "Menu item deleted"})
}

// --- Bookings ---

func (s *Server) findBooking(id string) int {
	for i, b := range s.bookings {
		if b.ID == id {
			return i
		}
	}
	return -1
}

func (s *Server) createBooking(c echo.Context) error {
	u, _ := s.sessionUser(c)
	in, _, err := fields(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request body")
	}
	persons, err := strconv.Atoi(in["totalPersons"])
	if err != nil || persons < 1 {
		return fail(c, http.StatusBadRequest, "Total persons must be at least 1")
	}
	b := domain.Booking{
		ID:           uuid.NewString(),
		User:         &domain.UserRef{ID: u.ID, Name: u.Name, Email: u.Email},
		Name:         in["name"],
		Phone:        in["phone"],
		Date:         in["date"],
		Time:         in["time"],
		TotalPersons: persons,
		Status:       domain.BookingPending,
		CreatedAt:    time.Now().UTC().Truncate(time.Second),
	}
	s.mu.Lock()
	s.bookings = append(s.bookings, b)
	s.mu.Unlock()
	return c.JSON(http.StatusCreated, echo.Map{"booking": b, "message": "Booking created successfully"})
}

func (s *Server) bookingsOf(userID string) []domain.Booking {
	out := []domain.Booking{}
	for _, b := range s.bookings {
		if b.User != nil && b.User.ID == userID {
			out = append(out, b)
		}
	}
	return out
}

func (s *Server) listMyBookings(c echo.Context) error {
	u, _ := s.sessionUser(c)
	s.mu.Lock()
	defer s.mu.Unlock()
	return c.JSON(http.StatusOK, echo.Map{"bookings": s.bookingsOf(u.ID)})
}

// ownBooking returns the index of a booking the session user may touch.
func (s *Server) ownBooking(c echo.Context) (int, error) {
	u, _ := s.sessionUser(c)
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.findBooking(c.Param("id"))
	if i < 0 {
		return -1, fail(c, http.StatusNotFound, "Booking not found")
	}
	if s.bookings[i].User == nil || s.bookings[i].User.ID != u.ID {
		return -1, fail(c, http.StatusForbidden, "Not your booking")
	}
	return i, nil
}

func (s *Server) getBooking(c echo.Context) error {
	i, err := s.ownBooking(c)
	if i < 0 {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return c.JSON(http.StatusOK, echo.Map{"booking": s.bookings[i]})
}

func (s *Server) setStatus(c echo.Context, i int) (domain.Booking, error) {
	in, _, err := fields(c)
	if err != nil {
		return domain.Booking{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bookings[i].Status = domain.BookingStatus(in["bookingStatus"])
	return s.bookings[i], nil
}

func (s *Server) cancelBooking(c echo.Context) error {
	i, err := s.ownBooking(c)
	if i < 0 {
		return err
	}
	b, err := s.setStatus(c, i)
	if err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request body")
	}
	return c.JSON(http.StatusOK, echo.Map{"booking": b, "message": "Booking " + string(b.Status)})
}

func (s *Server) listAllBookings(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return c.JSON(http.StatusOK, echo.Map{"bookings": append([]domain.Booking{}, s.bookings...)})
}

func (s *Server) listUserBookings(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return c.JSON(http.StatusOK, echo.Map{"bookings": s.bookingsOf(c.Param("id"))})
}

func (s *Server) updateBookingStatus(c echo.Context) error {
	s.mu.Lock()
	i := s.findBooking(c.Param("id"))
	s.mu.Unlock()
	if i < 0 {
		return fail(c, http.StatusNotFound, "Booking not found")
	}
	b, err := s.setStatus(c, i)
	if err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request body")
	}
	text := fmt.Sprintf("Your booking on %s at %s is %s", b.Date, b.Time, b.Status)
	var notification any = echo.Map{"message": text, "read": false}
	if s.NotificationAsText {
		notification = text
	}
	return c.JSON(http.StatusOK, echo.Map{
		"booking":      b,
		"message":      "Booking status updated",
		"notification": notification,
	})
}

func (s *Server) deleteBooking(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.findBooking(c.Param("id"))
	if i < 0 {
		return fail(c, http.StatusNotFound, "Booking not found")
	}
	s.bookings = append(s.bookings[:i], s.bookings[i+1:]...)
	return c.JSON(http.StatusOK, echo.Map{"message": "Booking deleted"})
}
