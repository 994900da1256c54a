package repertoire

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/amaumene/repertoire/internal/models"
)

func entryPath(id int) string {
	return fmt.Sprintf("%s%d/", collectionPath, id)
}

// List retrieves the entries, filtered server side by query when non-empty
func (c *Client) List(ctx context.Context, query string) ([]models.Entry, error) {
	var params url.Values
	if q := strings.TrimSpace(query); q != "" {
		params = url.Values{"search": []string{q}}
	}

	var entries []models.Entry
	err := c.doRequest(ctx, request{
		op:     "list",
		method: http.MethodGet,
		path:   collectionPath,
		query:  params,
		want:   http.StatusOK,
		auth:   true,
	}, &entries)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}

	c.logger.WithField("count", len(entries)).Debug("Retrieved entries")
	return entries, nil
}

// Get retrieves a single entry
func (c *Client) Get(ctx context.Context, id int) (*models.Entry, error) {
	var entry models.Entry
	err := c.doRequest(ctx, request{
		op:     "get",
		method: http.MethodGet,
		path:   entryPath(id),
		want:   http.StatusOK,
		auth:   true,
	}, &entry)
	if err != nil {
		return nil, fmt.Errorf("failed to get entry %d: %w", id, err)
	}
	return &entry, nil
}

// Create submits a new entry. The form must pass ValidateCreate.
func (c *Client) Create(ctx context.Context, form *models.EntryForm) (*models.Entry, error) {
	body, err := form.Body()
	if err != nil {
		return nil, err
	}

	var entry models.Entry
	err = c.doRequest(ctx, request{
		op:     "create",
		method: http.MethodPost,
		path:   collectionPath,
		body:   body,
		want:   http.StatusCreated,
		auth:   true,
	}, &entry)
	if err != nil {
		return nil, fmt.Errorf("failed to create entry: %w", err)
	}

	c.logger.WithField("id", entry.ID).Info("Created entry")
	return &entry, nil
}

// Update patches the set fields of an entry
func (c *Client) Update(ctx context.Context, id int, form *models.EntryForm) (*models.Entry, error) {
	body, err := form.Body()
	if err != nil {
		return nil, err
	}

	var entry models.Entry
	err = c.doRequest(ctx, request{
		op:     "update",
		method: http.MethodPatch,
		path:   entryPath(id),
		body:   body,
		want:   http.StatusOK,
		auth:   true,
	}, &entry)
	if err != nil {
		return nil, fmt.Errorf("failed to update entry %d: %w", id, err)
	}

	c.logger.WithField("id", id).Info("Updated entry")
	return &entry, nil
}

// Delete removes an entry
func (c *Client) Delete(ctx context.Context, id int) error {
	err := c.doRequest(ctx, request{
		op:     "delete",
		method: http.MethodDelete,
		path:   entryPath(id),
		want:   http.StatusNoContent,
		auth:   true,
	}, nil)
	if err != nil {
		return fmt.Errorf("failed to delete entry %d: %w", id, err)
	}

	c.logger.WithField("id", id).Info("Deleted entry")
	return nil
}
