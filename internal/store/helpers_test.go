package store

import (
	"github.com/shopspring/decimal"

	"github.com/naveenspark/tavola/pkg/domain"
)

func item(id string) *domain.MenuItem {
	return &domain.MenuItem{
		ID:       id,
		Title:    "Item " + id,
		Price:    decimal.NewFromInt(5),
		Category: domain.CategoryBreakfast,
	}
}

func items(idList ...string) []domain.MenuItem {
	out := make([]domain.MenuItem, 0, len(idList))
	for _, id := range idList {
		out = append(out, *item(id))
	}
	return out
}

func booking(id string, status domain.BookingStatus) *domain.Booking {
	return &domain.Booking{ID: id, Name: "Guest " + id, Date: "2026-11-02", Time: "19:30", TotalPersons: 2, Status: status}
}

func bookingList(idList ...string) []domain.Booking {
	out := make([]domain.Booking, 0, len(idList))
	for _, id := range idList {
		out = append(out, *booking(id, domain.BookingPending))
	}
	return out
}

func ids[T Entity](list []T) []string {
	out := make([]string, 0, len(list))
	for _, e := range list {
		out = append(out, e.EntityID())
	}
	return out
}

func filterSearch(s string) domain.MenuFilter {
	return domain.MenuFilter{Search: s}
}
