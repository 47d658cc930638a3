package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/naveenspark/tavola/pkg/domain"
)

type menuItemResponse struct {
	MenuItem *domain.MenuItem `json:"menuItem"`
	Message  string           `json:"message"`
}

// createMenuItemRequest sends the price as a JSON number rather than the
// quoted string decimal.Decimal marshals to.
type createMenuItemRequest struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Price       json.Number     `json:"price"`
	Category    domain.Category `json:"category"`
}

// ListMenuItems fetches the menu with the filter applied server-side.
func (c *Client) ListMenuItems(ctx context.Context, filter domain.MenuFilter) ([]domain.MenuItem, string, error) {
	params := url.Values{}
	if filter.Search != "" {
		params.Set("search", filter.Search)
	}
	if filter.HasCategory() {
		params.Set("category", string(filter.Category))
	}
	path := "/menu/items"
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var resp struct {
		MenuItems []domain.MenuItem `json:"menuItems"`
		Message   string            `json:"message"`
	}
	if err := c.get(ctx, path, &resp); err != nil {
		return nil, "", fmt.Errorf("client.ListMenuItems: %w", err)
	}
	return resp.MenuItems, resp.Message, nil
}

// GetMenuItem fetches a single menu item by ID.
func (c *Client) GetMenuItem(ctx context.Context, id string) (*domain.MenuItem, string, error) {
	var resp menuItemResponse
	if err := c.get(ctx, "/menu/"+url.PathEscape(id), &resp); err != nil {
		return nil, "", fmt.Errorf("client.GetMenuItem: %w", err)
	}
	return resp.MenuItem, resp.Message, nil
}

// CreateMenuItem adds a menu item (admin).
func (c *Client) CreateMenuItem(ctx context.Context, form domain.MenuItemForm) (*domain.MenuItem, string, error) {
	var body any = createMenuItemRequest{
		Title:       form.Title,
		Description: form.Description,
		Price:       json.Number(form.Price.String()),
		Category:    form.Category,
	}
	if form.Image != nil {
		body = menuItemFormData(form)
	}
	var resp menuItemResponse
	if err := c.post(ctx, "/menu/item", body, &resp); err != nil {
		return nil, "", fmt.Errorf("client.CreateMenuItem: %w", err)
	}
	return resp.MenuItem, resp.Message, nil
}

// UpdateMenuItem replaces a menu item (admin). Always sent as multipart.
func (c *Client) UpdateMenuItem(ctx context.Context, id string, form domain.MenuItemForm) (*domain.MenuItem, string, error) {
	var resp menuItemResponse
	if err := c.doRequest(ctx, http.MethodPut, "/menu/items/"+url.PathEscape(id), menuItemFormData(form), &resp); err != nil {
		return nil, "", fmt.Errorf("client.UpdateMenuItem: %w", err)
	}
	return resp.MenuItem, resp.Message, nil
}

// DeleteMenuItem removes a menu item (admin).
func (c *Client) DeleteMenuItem(ctx context.Context, id string) (string, error) {
	var resp messageResponse
	if err := c.doRequest(ctx, http.MethodDelete, "/menu/items/"+url.PathEscape(id), nil, &resp); err != nil {
		return "", fmt.Errorf("client.DeleteMenuItem: %w", err)
	}
	return resp.Message, nil
}

func menuItemFormData(form domain.MenuItemForm) *formData {
	fd := &formData{}
	fd.set("title", form.Title)
	fd.set("description", form.Description)
	fd.set("price", form.Price.String())
	fd.set("category", string(form.Category))
	fd.attach("image", form.Image)
	return fd
}
