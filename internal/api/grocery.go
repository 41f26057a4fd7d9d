package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/tidwall/gjson"

	"fittrack-bot/internal/models"
)

// GroceryItems lists pantry items with the given status.
func (c *Client) GroceryItems(ctx context.Context, status models.PantryStatus) ([]models.PantryItem, error) {
	q := url.Values{"status": {string(status)}}
	body, err := c.do(ctx, "grocery_list", http.MethodGet, "/grocery", q, nil)
	if err != nil {
		return nil, err
	}
	return parsePantryItems(body), nil
}

func (c *Client) AddGroceryItem(ctx context.Context, name string, status models.PantryStatus) (models.PantryItem, error) {
	req := map[string]string{"name": name, "status": string(status)}
	body, err := c.do(ctx, "grocery_add", http.MethodPost, "/grocery", nil, req)
	if err != nil {
		return models.PantryItem{}, err
	}
	return parsePantryItem(gjson.ParseBytes(body)), nil
}

func (c *Client) UpdateGroceryStatus(ctx context.Context, id string, status models.PantryStatus) (models.PantryItem, error) {
	q := url.Values{"new_status": {string(status)}}
	body, err := c.do(ctx, "grocery_status", http.MethodPut, "/grocery/"+url.PathEscape(id)+"/status", q, map[string]any{})
	if err != nil {
		return models.PantryItem{}, err
	}
	return parsePantryItem(gjson.ParseBytes(body)), nil
}

func (c *Client) DeleteGroceryItem(ctx context.Context, id string) error {
	_, err := c.do(ctx, "grocery_delete", http.MethodDelete, "/grocery/"+url.PathEscape(id), nil, nil)
	return err
}
