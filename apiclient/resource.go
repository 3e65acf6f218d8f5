package apiclient

import (
	"context"
	"fmt"
	"net/http"

	"restaurant-dashboard/models"
)

// attachment is implemented by entities that may carry an image upload
type attachment interface {
	Attachment() *models.Upload
}

// Resource is the CRUD surface of one REST collection such as /categories.
type Resource[T any] struct {
	c    *Client
	path string
	// soft resources deactivate on DELETE /:id and hard-delete on
	// DELETE /:id/permanent
	soft bool
}

func NewResource[T any](c *Client, path string) *Resource[T] {
	return &Resource[T]{c: c, path: path}
}

// NewSoftResource builds a resource whose plain DELETE only deactivates
func NewSoftResource[T any](c *Client, path string) *Resource[T] {
	return &Resource[T]{c: c, path: path, soft: true}
}

func (r *Resource[T]) itemPath(id uint) string {
	return fmt.Sprintf("%s/%d", r.path, id)
}

func (r *Resource[T]) List(ctx context.Context) ([]T, error) {
	var items []T
	if err := r.c.do(ctx, http.MethodGet, r.path, nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *Resource[T]) Get(ctx context.Context, id uint) (T, error) {
	var item T
	err := r.c.do(ctx, http.MethodGet, r.itemPath(id), nil, &item)
	return item, err
}

func (r *Resource[T]) Create(ctx context.Context, v T) (T, error) {
	var created T
	if up := uploadOf(v); up != nil {
		err := r.c.doMultipart(ctx, http.MethodPost, r.path, v, up, &created)
		return created, err
	}
	err := r.c.do(ctx, http.MethodPost, r.path, v, &created)
	return created, err
}

func (r *Resource[T]) Update(ctx context.Context, id uint, v T) (T, error) {
	var updated T
	if up := uploadOf(v); up != nil {
		err := r.c.doMultipart(ctx, http.MethodPut, r.itemPath(id), v, up, &updated)
		return updated, err
	}
	err := r.c.do(ctx, http.MethodPut, r.itemPath(id), v, &updated)
	return updated, err
}

// Remove deletes the record for good
func (r *Resource[T]) Remove(ctx context.Context, id uint) error {
	path := r.itemPath(id)
	if r.soft {
		path += "/permanent"
	}
	return r.c.do(ctx, http.MethodDelete, path, nil, nil)
}

// SetActive blocks or unblocks a soft resource through its dedicated endpoints
func (r *Resource[T]) SetActive(ctx context.Context, id uint, active bool) error {
	if !r.soft {
		return fmt.Errorf("%s has no activation endpoint", r.path)
	}
	if active {
		return r.c.do(ctx, http.MethodPost, r.itemPath(id)+"/activate", nil, nil)
	}
	return r.c.do(ctx, http.MethodDelete, r.itemPath(id), nil, nil)
}

func uploadOf(v interface{}) *models.Upload {
	if a, ok := v.(attachment); ok {
		return a.Attachment()
	}
	return nil
}
