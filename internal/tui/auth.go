package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/naveenspark/tavola/internal/store"
	"github.com/naveenspark/tavola/pkg/domain"
)

// resendCooldown is how many seconds the resend key stays disabled after an
// OTP is sent again.
const resendCooldown = 30

type loginModel struct {
	form formModel
}

func newLoginModel() loginModel {
	return loginModel{form: newForm(
		formField{key: "email", label: "Email", placeholder: "you@example.com"},
		formField{key: "password", label: "Password", kind: fieldSecret},
	)}
}

func (m loginModel) Update(msg tea.KeyMsg) (loginModel, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return m, navigateTo(at(routeHome))
	case "ctrl+r":
		return m, navigateTo(at(routeRegister))
	}
	var submit bool
	m.form, submit = m.form.update(msg)
	if !submit {
		return m, nil
	}
	form := domain.LoginForm{
		Email:    m.form.trimmed("email"),
		Password: m.form.value("password"),
	}
	if err := domain.Validate(form); err != nil {
		m.form = m.form.withError(err)
		return m, nil
	}
	m.form = m.form.clearErrors()
	return m, emit(loginMsg{form: form})
}

func (m loginModel) View(s store.Session, frame int) string {
	var b strings.Builder
	b.WriteString("\n " + sectionHeaderStyle.Render("Sign in") + "\n\n")
	b.WriteString(m.form.View())
	if s.InFlight(store.OpLogin) {
		b.WriteString("\n " + spinner(frame) + dimStyle.Render(" signing in..."))
	}
	return b.String()
}

type registerModel struct {
	form formModel
}

func newRegisterModel() registerModel {
	return registerModel{form: newForm(
		formField{key: "name", label: "Name"},
		formField{key: "email", label: "Email", placeholder: "you@example.com"},
		formField{key: "phone", label: "Phone", placeholder: "optional"},
		formField{key: "password", label: "Password", kind: fieldSecret, placeholder: "at least 6 characters"},
		formField{key: "profile_image", label: "Photo", placeholder: "path to a jpeg or png, optional"},
	)}
}

func (m registerModel) Update(msg tea.KeyMsg) (registerModel, tea.Cmd) {
	if msg.String() == "esc" {
		return m, navigateTo(at(routeHome))
	}
	var submit bool
	m.form, submit = m.form.update(msg)
	if !submit {
		return m, nil
	}
	img, err := readUpload(m.form.value("profile_image"))
	if err != nil {
		m.form = m.form.withError(err)
		return m, nil
	}
	form := domain.RegisterForm{
		Name:         m.form.trimmed("name"),
		Email:        m.form.trimmed("email"),
		Phone:        m.form.trimmed("phone"),
		Password:     m.form.value("password"),
		ProfileImage: img,
	}
	if err := domain.Validate(form); err != nil {
		m.form = m.form.withError(err)
		return m, nil
	}
	m.form = m.form.clearErrors()
	return m, emit(registerMsg{form: form})
}

func (m registerModel) View(s store.Session, frame int) string {
	var b strings.Builder
	b.WriteString("\n " + sectionHeaderStyle.Render("Create an account") + "\n\n")
	b.WriteString(m.form.View())
	if s.InFlight(store.OpRegister) {
		b.WriteString("\n " + spinner(frame) + dimStyle.Render(" creating your account..."))
	}
	return b.String()
}

type verifyModel struct {
	form formModel
	// cooldown counts down the seconds until the OTP may be resent.
	cooldown int
}

func newVerifyModel() verifyModel {
	return verifyModel{form: newForm(
		formField{key: "otp", label: "Code", placeholder: "6 digits"},
	)}
}

func (m verifyModel) tick() verifyModel {
	if m.cooldown > 0 {
		m.cooldown--
	}
	return m
}

func (m verifyModel) Update(msg tea.KeyMsg, s store.Session) (verifyModel, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return m, navigateTo(at(routeRegister))
	case "ctrl+r":
		if m.cooldown > 0 || s.InFlight(store.OpResendOTP) {
			return m, nil
		}
		m.cooldown = resendCooldown
		return m, emit(resendMsg{email: s.PendingEmail})
	}
	var submit bool
	m.form, submit = m.form.update(msg)
	if !submit {
		return m, nil
	}
	form := domain.OTPForm{Email: s.PendingEmail, OTP: m.form.trimmed("otp")}
	if err := domain.Validate(form); err != nil {
		m.form = m.form.withError(err)
		return m, nil
	}
	m.form = m.form.clearErrors()
	return m, emit(verifyMsg{form: form})
}

func (m verifyModel) View(s store.Session, frame int) string {
	var b strings.Builder
	b.WriteString("\n " + sectionHeaderStyle.Render("Verify your email") + "\n\n")
	fmt.Fprintf(&b, " %s %s\n\n", dimStyle.Render("We sent a code to"), selectedStyle.Render(s.PendingEmail))
	b.WriteString(m.form.View())
	b.WriteString("\n ")
	switch {
	case s.InFlight(store.OpVerifyOTP):
		b.WriteString(spinner(frame) + dimStyle.Render(" verifying..."))
	case s.InFlight(store.OpResendOTP):
		b.WriteString(spinner(frame) + dimStyle.Render(" resending..."))
	case m.cooldown > 0:
		b.WriteString(metaStyle.Render(fmt.Sprintf("Resend in %d seconds", m.cooldown)))
	default:
		b.WriteString(helpEntry("ctrl+r", "resend code"))
	}
	return b.String()
}

func logoutView(s store.Session, frame int) string {
	if s.InFlight(store.OpLogout) {
		return "\n " + spinner(frame) + dimStyle.Render(" signing out...")
	}
	return "\n " + dimStyle.Render("Signed out.")
}
