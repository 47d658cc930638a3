package domain

import "github.com/shopspring/decimal"

// Category is a menu section.
type Category string

const (
	CategoryBreakfast Category = "breakfast"
	CategoryMainDish  Category = "main dish"
	CategoryDessert   Category = "dessert"
	CategoryDrink     Category = "drink"

	// CategoryAll disables category filtering when listing the menu.
	CategoryAll Category = "all"
)

// Categories lists the menu sections in display order.
var Categories = []Category{CategoryBreakfast, CategoryMainDish, CategoryDessert, CategoryDrink}

// ValidCategory reports whether c is one of Categories.
func ValidCategory(c Category) bool {
	for _, v := range Categories {
		if v == c {
			return true
		}
	}
	return false
}

// MenuItem is a dish or drink on the menu.
type MenuItem struct {
	ID          string          `json:"_id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Category    Category        `json:"category"`
	Image       string          `json:"image,omitempty"`
}

// EntityID returns the server-assigned id.
func (m MenuItem) EntityID() string { return m.ID }

// MenuFilter narrows a menu listing. Filtering happens on the server.
type MenuFilter struct {
	Search   string
	Category Category
}

// HasCategory reports whether the filter restricts the category.
func (f MenuFilter) HasCategory() bool {
	return f.Category != "" && f.Category != CategoryAll
}
