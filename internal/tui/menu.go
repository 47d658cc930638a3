package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"

	"github.com/naveenspark/tavola/internal/store"
	"github.com/naveenspark/tavola/pkg/domain"
)

// menuCategories is the category cycle of the menu page, "all" first.
var menuCategories = append([]domain.Category{domain.CategoryAll}, domain.Categories...)

type menuModel struct {
	cursor    int
	searching bool
	search    string
	category  domain.Category
	// confirm holds the id of a dish awaiting a second delete key.
	confirm string
}

func newMenuModel() menuModel {
	return menuModel{category: domain.CategoryAll}
}

func (m menuModel) filter() domain.MenuFilter {
	return domain.MenuFilter{Search: strings.TrimSpace(m.search), Category: m.category}
}

func (m menuModel) clamp(n int) menuModel {
	if m.cursor >= n {
		m.cursor = max(n-1, 0)
	}
	return m
}

func (m menuModel) selected(items []domain.MenuItem) (domain.MenuItem, bool) {
	if m.cursor < 0 || m.cursor >= len(items) {
		return domain.MenuItem{}, false
	}
	return items[m.cursor], true
}

func (m menuModel) Update(msg tea.KeyMsg, menu store.Menu, admin bool) (menuModel, tea.Cmd) {
	items := menu.Filtered
	if m.searching {
		switch msg.Type {
		case tea.KeyEnter, tea.KeyEsc:
			m.searching = false
			return m, nil
		case tea.KeyBackspace:
			m.search = editRune(m.search, "backspace")
		case tea.KeySpace:
			m.search = editRune(m.search, " ")
		case tea.KeyRunes:
			for _, r := range msg.Runes {
				m.search = editRune(m.search, string(r))
			}
		default:
			return m, nil
		}
		m.cursor = 0
		return m, emit(menuListMsg{filter: m.filter()})
	}

	key := msg.String()
	if key != "d" {
		m.confirm = ""
	}
	switch key {
	case "j", "down":
		if m.cursor < len(items)-1 {
			m.cursor++
		}
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
	case "/":
		m.searching = true
	case "c":
		idx := 0
		for i, c := range menuCategories {
			if c == m.category {
				idx = i
			}
		}
		m.category = menuCategories[(idx+1)%len(menuCategories)]
		m.cursor = 0
		return m, emit(menuListMsg{filter: m.filter()})
	case "r":
		return m, emit(menuListMsg{filter: m.filter()})
	case "enter":
		if it, ok := m.selected(items); ok {
			return m, navigateTo(location{route: routeMenuItem, id: it.ID})
		}
	case "b":
		return m, navigateTo(at(routeBook))
	case "n":
		if admin {
			return m, navigateTo(at(routeMenuNew))
		}
	case "e":
		if it, ok := m.selected(items); ok && admin {
			return m, navigateTo(location{route: routeMenuEdit, id: it.ID})
		}
	case "d":
		it, ok := m.selected(items)
		if !ok || !admin {
			return m, nil
		}
		if m.confirm != it.ID {
			m.confirm = it.ID
			return m, nil
		}
		m.confirm = ""
		return m, emit(menuDeleteMsg{id: it.ID})
	}
	return m, nil
}

func (m menuModel) View(menu store.Menu, width, frame int) string {
	var b strings.Builder

	search := inputPlaceholderStyle.Render("/ to search")
	if m.searching || m.search != "" {
		search = searchStyle.Render("/ ") + renderInput(m.search, "search the menu", m.searching, false)
	}
	cat := CategoryStyle(m.category).Render(string(m.category))
	fmt.Fprintf(&b, "\n %s   %s %s", search, metaStyle.Render("category"), cat)
	if menu.InFlight(store.OpMenuList) {
		b.WriteString("  " + spinner(frame))
	}
	b.WriteString("\n\n")

	if len(menu.Filtered) == 0 {
		if !menu.InFlight(store.OpMenuList) {
			b.WriteString(" " + dimStyle.Render(emptyMenuText(menu.Filter)) + "\n")
		}
		return b.String()
	}

	titleWidth := max(width-40, 16)
	for i, it := range menu.Filtered {
		title := fmt.Sprintf("%-*s", titleWidth, truncStr(cleanLine(it.Title), titleWidth))
		price := fmt.Sprintf("%9s", formatPrice(it.Price))
		category := CategoryStyle(it.Category).Render(fmt.Sprintf("%-10s", it.Category))
		row := fmt.Sprintf(" %s %s %s", normalStyle.Render(title), goldStyle.Render(price), category)
		if i == m.cursor {
			row = selectedRowBg.Render(fmt.Sprintf(" %s %s %s", selectedStyle.Render(title), goldStyle.Render(price), category))
			if m.confirm == it.ID {
				row += " " + rejectStyle.Render("press d again to delete")
			}
		}
		b.WriteString(row + "\n")
	}
	return b.String()
}

// emptyMenuText names the filter that matched nothing.
func emptyMenuText(f domain.MenuFilter) string {
	switch {
	case f.Search != "" && f.HasCategory():
		return fmt.Sprintf("No %s dishes match %q.", f.Category, f.Search)
	case f.Search != "":
		return fmt.Sprintf("No dishes match %q.", f.Search)
	case f.HasCategory():
		return fmt.Sprintf("No %s dishes yet.", f.Category)
	}
	return "No dishes match."
}

func (m menuModel) helpKeys(admin bool) string {
	if m.searching {
		return helpBar("type", "search", "enter", "done")
	}
	if admin {
		return helpBar("j/k", "nav", "/", "search", "c", "category", "enter", "open", "n", "new", "e", "edit", "d", "delete", "?", "help")
	}
	return helpBar("j/k", "nav", "/", "search", "c", "category", "enter", "open", "b", "book", "?", "help")
}

// dishView renders the dish opened from the menu.
func (m menuModel) dishView(menu store.Menu, id string, frame int) string {
	it := menu.Current
	if it == nil || it.ID != id {
		if menu.InFlight(store.OpMenuGet) {
			return "\n " + spinner(frame) + dimStyle.Render(" loading dish...")
		}
		return "\n " + dimStyle.Render("This dish is no longer on the menu.")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "\n %s  %s\n", selectedStyle.Render(it.Title), goldStyle.Render(formatPrice(it.Price)))
	fmt.Fprintf(&b, " %s\n\n", CategoryStyle(it.Category).Render(string(it.Category)))
	for _, line := range strings.Split(it.Description, "\n") {
		b.WriteString(" " + normalStyle.Render(line) + "\n")
	}
	if it.Image != "" {
		fmt.Fprintf(&b, "\n %s %s\n", metaStyle.Render("image"), dimStyle.Render(it.Image))
	}
	if m.confirm == it.ID {
		b.WriteString("\n " + rejectStyle.Render("press d again to delete") + "\n")
	}
	return b.String()
}

// dishKeys handles the dish page. Deleting takes a second "d", as on the
// menu list.
func (m menuModel) dishKeys(msg tea.KeyMsg, id string, admin bool) (menuModel, tea.Cmd) {
	key := msg.String()
	if key != "d" {
		m.confirm = ""
	}
	switch key {
	case "esc":
		return m, navigateTo(at(routeMenu))
	case "b":
		return m, navigateTo(at(routeBook))
	case "e":
		if admin {
			return m, navigateTo(location{route: routeMenuEdit, id: id})
		}
	case "d":
		if !admin {
			return m, nil
		}
		if m.confirm != id {
			m.confirm = id
			return m, nil
		}
		m.confirm = ""
		return m, emit(menuDeleteMsg{id: id})
	}
	return m, nil
}

// editorModel creates a dish, or edits one when id is set. An edit opened
// before the dish is loaded is filled in once it arrives.
type editorModel struct {
	id     string
	form   formModel
	loaded bool
}

func newEditorModel(id string, it *domain.MenuItem) editorModel {
	cats := make([]string, len(domain.Categories))
	for i, c := range domain.Categories {
		cats[i] = string(c)
	}
	m := editorModel{id: id, form: newForm(
		formField{key: "title", label: "Title"},
		formField{key: "description", label: "Description"},
		formField{key: "price", label: "Price", placeholder: "12.50"},
		formField{key: "category", label: "Category", kind: fieldChoice, choices: cats},
		formField{key: "image", label: "Image", placeholder: "path to a jpeg or png, optional"},
	)}
	if it != nil {
		m.loaded = true
		m.form = m.form.
			set("title", it.Title).
			set("description", it.Description).
			set("price", it.Price.String())
		if domain.ValidCategory(it.Category) {
			m.form = m.form.set("category", string(it.Category))
		}
	}
	return m
}

func (m editorModel) Update(msg tea.KeyMsg) (editorModel, tea.Cmd) {
	if msg.String() == "esc" {
		return m, navigateTo(at(routeMenu))
	}
	var submit bool
	m.form, submit = m.form.update(msg)
	if !submit {
		return m, nil
	}

	price, err := decimal.NewFromString(m.form.trimmed("price"))
	if err != nil {
		m.form = m.form.withError(&domain.FormError{Fields: map[string]string{"price": "Price must be a number"}})
		return m, nil
	}
	img, err := readUpload(m.form.value("image"))
	if err != nil {
		m.form = m.form.withError(err)
		return m, nil
	}
	form := domain.MenuItemForm{
		Title:       m.form.trimmed("title"),
		Description: m.form.trimmed("description"),
		Price:       price,
		Category:    domain.Category(m.form.value("category")),
		Image:       img,
	}
	if err := domain.Validate(form); err != nil {
		m.form = m.form.withError(err)
		return m, nil
	}
	m.form = m.form.clearErrors()
	return m, emit(menuSaveMsg{id: m.id, form: form})
}

func (m editorModel) View(menu store.Menu, frame int) string {
	var b strings.Builder
	title := "New dish"
	if m.id != "" {
		title = "Edit dish"
	}
	b.WriteString("\n " + sectionHeaderStyle.Render(title) + "\n\n")
	b.WriteString(m.form.View())
	if menu.InFlight(store.OpMenuCreate) || menu.InFlight(store.OpMenuUpdate) {
		b.WriteString("\n " + spinner(frame) + dimStyle.Render(" saving..."))
	}
	return b.String()
}
