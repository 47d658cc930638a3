package tui

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/naveenspark/tavola/pkg/domain"
)

type fieldKind uint8

const (
	fieldText fieldKind = iota
	fieldSecret
	// fieldChoice cycles through choices with left/right.
	fieldChoice
)

// formField is one input. key is the wire name used by domain.FormError.
type formField struct {
	key         string
	label       string
	kind        fieldKind
	value       string
	placeholder string
	choices     []string
}

// formModel is the input widget shared by every form page.
type formModel struct {
	fields []formField
	focus  int
	errs   *domain.FormError
	// status is a form-wide problem that belongs to no field.
	status string
}

func newForm(fields ...formField) formModel {
	for i, f := range fields {
		if f.kind == fieldChoice && f.value == "" && len(f.choices) > 0 {
			fields[i].value = f.choices[0]
		}
	}
	return formModel{fields: fields}
}

func (f formModel) value(key string) string {
	for _, fd := range f.fields {
		if fd.key == key {
			return fd.value
		}
	}
	return ""
}

func (f formModel) trimmed(key string) string {
	return strings.TrimSpace(f.value(key))
}

func (f formModel) set(key, value string) formModel {
	f.fields = slices.Clone(f.fields)
	for i := range f.fields {
		if f.fields[i].key == key {
			f.fields[i].value = value
		}
	}
	return f
}

// update applies a key. It reports true when the user asked to submit:
// ctrl+s anywhere, or enter on the last field.
func (f formModel) update(msg tea.KeyMsg) (formModel, bool) {
	n := len(f.fields)
	if n == 0 {
		return f, false
	}
	f.fields = slices.Clone(f.fields)
	field := &f.fields[f.focus]

	switch msg.String() {
	case "ctrl+s":
		return f, true
	case "tab", "down":
		f.focus = (f.focus + 1) % n
	case "shift+tab", "up":
		f.focus = (f.focus - 1 + n) % n
	case "enter":
		if f.focus == n-1 {
			return f, true
		}
		f.focus++
	case "left", "right":
		if field.kind == fieldChoice && len(field.choices) > 0 {
			idx := slices.Index(field.choices, field.value)
			if msg.String() == "right" {
				idx = (idx + 1) % len(field.choices)
			} else {
				idx = (idx - 1 + len(field.choices)) % len(field.choices)
			}
			field.value = field.choices[idx]
		}
	case "backspace":
		if field.kind != fieldChoice {
			field.value = editRune(field.value, "backspace")
		}
	default:
		if field.kind == fieldChoice {
			return f, false
		}
		switch msg.Type {
		case tea.KeySpace:
			field.value = editRune(field.value, " ")
		case tea.KeyRunes:
			for _, r := range msg.Runes {
				field.value = editRune(field.value, string(r))
			}
		}
	}
	return f, false
}

// withError records why a submit was refused.
func (f formModel) withError(err error) formModel {
	var fe *domain.FormError
	if errors.As(err, &fe) {
		f.errs = fe
		f.status = ""
		for i, fd := range f.fields {
			if fe.Field(fd.key) != "" {
				f.focus = i
				break
			}
		}
		return f
	}
	f.errs = nil
	f.status = err.Error()
	return f
}

func (f formModel) clearErrors() formModel {
	f.errs = nil
	f.status = ""
	return f
}

func (f formModel) View() string {
	width := 0
	for _, fd := range f.fields {
		width = max(width, len(fd.label))
	}

	var b strings.Builder
	for i, fd := range f.fields {
		focused := i == f.focus
		cursor := " "
		label := metaStyle.Render(fmt.Sprintf("%-*s", width, fd.label))
		if focused {
			cursor = accentStyle.Render(">")
			label = selectedStyle.Render(fmt.Sprintf("%-*s", width, fd.label))
		}

		var value string
		switch fd.kind {
		case fieldChoice:
			value = metaStyle.Render("‹ ") + selectedStyle.Render(fd.value) + metaStyle.Render(" ›")
		default:
			value = renderInput(fd.value, fd.placeholder, focused, fd.kind == fieldSecret)
		}
		fmt.Fprintf(&b, " %s %s  %s\n", cursor, label, value)

		if msg := f.errs.Field(fd.key); msg != "" {
			fmt.Fprintf(&b, "   %s  %s\n", strings.Repeat(" ", width), rejectStyle.Render(msg))
		}
	}
	if f.status != "" {
		b.WriteString("\n " + rejectStyle.Render(f.status) + "\n")
	}
	return b.String()
}
