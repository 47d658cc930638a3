package store

import "github.com/naveenspark/tavola/pkg/domain"

// Menu operations.
const (
	OpMenuList   Op = "menu/list"
	OpMenuGet    Op = "menu/get"
	OpMenuCreate Op = "menu/create"
	OpMenuUpdate Op = "menu/update"
	OpMenuDelete Op = "menu/delete"
)

// Menu holds the menu items. Filtering happens on the server; Filtered
// mirrors the last listing and receives the same patches as Items.
type Menu struct {
	Lifecycle

	Items    []domain.MenuItem
	Filtered []domain.MenuItem
	Current  *domain.MenuItem
	// Filter is the filter Filtered was listed with.
	Filter domain.MenuFilter
}

// MenuAction is a pending or settled menu operation.
type MenuAction struct {
	Meta

	Items  []domain.MenuItem
	Item   *domain.MenuItem
	ID     string
	Filter domain.MenuFilter
}

// Reduce applies a to m.
func (m Menu) Reduce(a MenuAction) Menu {
	lc, current := m.apply(a.Meta)
	m.Lifecycle = lc
	if !current {
		return m
	}
	if a.Phase != Fulfilled {
		return m
	}

	switch a.Op {
	case OpMenuList:
		m.Items = replaceAll(a.Items)
		m.Filtered = replaceAll(a.Items)
		m.Filter = a.Filter
	case OpMenuGet:
		m.Current = cloneMenuItem(a.Item)
	case OpMenuCreate:
		if a.Item != nil {
			m.Items = appendItem(m.Items, *a.Item)
			m.Filtered = appendItem(m.Filtered, *a.Item)
		}
	case OpMenuUpdate:
		if a.Item != nil {
			m.Items = replaceByID(m.Items, *a.Item)
			m.Filtered = replaceByID(m.Filtered, *a.Item)
			if m.Current != nil && m.Current.ID == a.Item.ID {
				m.Current = cloneMenuItem(a.Item)
			}
		}
	case OpMenuDelete:
		m.Items = removeByID(m.Items, a.ID)
		m.Filtered = removeByID(m.Filtered, a.ID)
		if m.Current != nil && m.Current.ID == a.ID {
			m.Current = nil
		}
	}
	return m
}

func cloneMenuItem(it *domain.MenuItem) *domain.MenuItem {
	if it == nil {
		return nil
	}
	c := *it
	return &c
}

// ClearError consumes the error.
func (m Menu) ClearError() Menu {
	m.Error = ""
	return m
}

// ClearMessage consumes the message.
func (m Menu) ClearMessage() Menu {
	m.Message = ""
	return m
}

// Reset empties the store.
func (m Menu) Reset() Menu {
	return Menu{Lifecycle: m.reset()}
}
