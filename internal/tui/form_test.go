package tui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/naveenspark/tavola/pkg/domain"
)

func testForm() formModel {
	return newForm(
		formField{key: "name", label: "Name"},
		formField{key: "password", label: "Password", kind: fieldSecret},
		formField{key: "size", label: "Size", kind: fieldChoice, choices: []string{"small", "large"}},
	)
}

func formKeys(t *testing.T, f formModel, keys ...string) (formModel, bool) {
	t.Helper()
	var submit bool
	for _, k := range keys {
		f, submit = f.update(key(k))
	}
	return f, submit
}

func TestFormChoiceDefaultsToFirst(t *testing.T) {
	if got := testForm().value("size"); got != "small" {
		t.Errorf("size = %q, want small", got)
	}
}

func TestFormFocusWraps(t *testing.T) {
	f, _ := formKeys(t, testForm(), "tab", "tab", "tab")
	if f.focus != 0 {
		t.Errorf("focus after three tabs = %d, want 0", f.focus)
	}
	f, _ = formKeys(t, f, "up")
	if f.focus != 2 {
		t.Errorf("focus after up = %d, want 2", f.focus)
	}
}

func TestFormTyping(t *testing.T) {
	f := testForm()
	for _, r := range "Ada L" {
		f, _ = f.update(key(string(r)))
	}
	f, _ = formKeys(t, f, "backspace", "backspace")
	if got := f.value("name"); got != "Ada" {
		t.Errorf("name = %q, want Ada", got)
	}
	if got := f.trimmed("name"); got != "Ada" {
		t.Errorf("trimmed = %q", got)
	}
}

func TestFormMasksSecret(t *testing.T) {
	f, _ := formKeys(t, testForm(), "tab")
	for _, r := range "hunter2" {
		f, _ = f.update(key(string(r)))
	}
	if f.value("password") != "hunter2" {
		t.Fatalf("password = %q", f.value("password"))
	}
	if strings.Contains(f.View(), "hunter2") {
		t.Error("the view shows the password")
	}
}

func TestFormChoiceCycles(t *testing.T) {
	f, _ := formKeys(t, testForm(), "tab", "tab", "right")
	if got := f.value("size"); got != "large" {
		t.Errorf("after right = %q, want large", got)
	}
	f, _ = formKeys(t, f, "right")
	if got := f.value("size"); got != "small" {
		t.Errorf("right should wrap, got %q", got)
	}
	f, _ = formKeys(t, f, "left")
	if got := f.value("size"); got != "large" {
		t.Errorf("left should wrap, got %q", got)
	}
	f, _ = formKeys(t, f, "x", "backspace")
	if got := f.value("size"); got != "large" {
		t.Errorf("typing changed a choice: %q", got)
	}
}

func TestFormSubmitKeys(t *testing.T) {
	f, submit := formKeys(t, testForm(), "enter")
	if submit || f.focus != 1 {
		t.Errorf("enter on the first field: submit=%v focus=%d", submit, f.focus)
	}
	_, submit = formKeys(t, f, "enter", "enter")
	if !submit {
		t.Error("enter on the last field should submit")
	}
	_, submit = formKeys(t, testForm(), "ctrl+s")
	if !submit {
		t.Error("ctrl+s should submit from any field")
	}
}

func TestFormUpdateDoesNotShareFields(t *testing.T) {
	base := testForm()
	edited, _ := base.update(key("z"))
	if base.value("name") != "" || edited.value("name") != "z" {
		t.Errorf("base=%q edited=%q", base.value("name"), edited.value("name"))
	}
	set := base.set("name", "Grace")
	if base.value("name") != "" || set.value("name") != "Grace" {
		t.Error("set should not modify the original form")
	}
}

func TestFormWithFieldErrors(t *testing.T) {
	f := testForm().withError(&domain.FormError{Fields: map[string]string{
		"size":     "Unknown size",
		"password": "Password is required",
	}})
	if f.focus != 1 {
		t.Errorf("focus = %d, want the first failing field", f.focus)
	}
	view := f.View()
	for _, want := range []string{"Unknown size", "Password is required"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}

	f = f.clearErrors()
	if strings.Contains(f.View(), "Unknown size") {
		t.Error("clearErrors left field errors")
	}
}

func TestFormWithPlainError(t *testing.T) {
	f := testForm().withError(errors.New("read image: no such file"))
	if f.errs != nil {
		t.Error("plain errors are not field errors")
	}
	if !strings.Contains(f.View(), "read image: no such file") {
		t.Error("expected the error in the view")
	}
}

func TestFormSpaceKey(t *testing.T) {
	f, _ := testForm().update(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	if f.value("name") != " " {
		t.Errorf("space = %q", f.value("name"))
	}
}
