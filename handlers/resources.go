package handlers

import (
	"net/http"
	"strings"

	"restaurant-dashboard/models"
	"restaurant-dashboard/views"
	"restaurant-dashboard/workspace"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
)

// ResourceHandlers serves one admin list/edit screen
type ResourceHandlers[T views.Entity] struct {
	h      *Handler
	view   func(*workspace.Workspace) *views.ListView[T]
	decode func(c *gin.Context, into *T) error
}

func (h *Handler) Categories() *ResourceHandlers[models.Category] {
	return &ResourceHandlers[models.Category]{
		h:      h,
		view:   func(ws *workspace.Workspace) *views.ListView[models.Category] { return ws.Categories },
		decode: decodeJSON[models.Category],
	}
}

func (h *Handler) Dishes() *ResourceHandlers[models.Dish] {
	return &ResourceHandlers[models.Dish]{
		h:      h,
		view:   func(ws *workspace.Workspace) *views.ListView[models.Dish] { return ws.Dishes },
		decode: decodeDish,
	}
}

func (h *Handler) Clients() *ResourceHandlers[models.Client] {
	return &ResourceHandlers[models.Client]{
		h:      h,
		view:   func(ws *workspace.Workspace) *views.ListView[models.Client] { return ws.Clients },
		decode: decodeJSON[models.Client],
	}
}

func (h *Handler) Users() *ResourceHandlers[models.User] {
	return &ResourceHandlers[models.User]{
		h:      h,
		view:   func(ws *workspace.Workspace) *views.ListView[models.User] { return ws.Users },
		decode: decodeJSON[models.User],
	}
}

func (r *ResourceHandlers[T]) listView(c *gin.Context) *views.ListView[T] {
	return r.view(r.h.workspace(c))
}

func (r *ResourceHandlers[T]) render(c *gin.Context, status int, v *views.ListView[T]) {
	c.JSON(status, v.Snapshot())
}

// List re-fetches the collection and renders the screen
func (r *ResourceHandlers[T]) List(c *gin.Context) {
	v := r.listView(c)
	if err := v.FetchAll(c.Request.Context()); err != nil {
		respondError(c, err, v.Snapshot())
		return
	}
	r.render(c, http.StatusOK, v)
}

// Create opens the creation form when called without a body, and submits
// the draft otherwise.
func (r *ResourceHandlers[T]) Create(c *gin.Context) {
	v := r.listView(c)
	if c.Request.ContentLength == 0 {
		v.StartCreate()
		r.render(c, http.StatusOK, v)
		return
	}

	var draft T
	if err := r.decode(c, &draft); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if _, err := v.Create(c.Request.Context(), draft); err != nil {
		respondError(c, err, v.Snapshot())
		return
	}
	r.render(c, http.StatusCreated, v)
}

// Save applies the submitted fields on top of the listed entry
func (r *ResourceHandlers[T]) Save(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	v := r.listView(c)
	patch, found := v.Find(id)
	if !found {
		respondError(c, views.ErrUnknownEntity, nil)
		return
	}
	if err := r.decode(c, &patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := v.Save(c.Request.Context(), id, patch); err != nil {
		respondError(c, err, v.Snapshot())
		return
	}
	r.render(c, http.StatusOK, v)
}

func (r *ResourceHandlers[T]) Edit(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	v := r.listView(c)
	if err := v.StartEdit(id); err != nil {
		respondError(c, err, v.Snapshot())
		return
	}
	r.render(c, http.StatusOK, v)
}

// Cancel leaves the edit or creation form without saving
func (r *ResourceHandlers[T]) Cancel(c *gin.Context) {
	v := r.listView(c)
	v.CancelEdit()
	v.CancelCreate()
	r.render(c, http.StatusOK, v)
}

func (r *ResourceHandlers[T]) RequestDelete(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	v := r.listView(c)
	if err := v.RequestDelete(id); err != nil {
		respondError(c, err, v.Snapshot())
		return
	}
	r.render(c, http.StatusOK, v)
}

func (r *ResourceHandlers[T]) ConfirmDelete(c *gin.Context) {
	v := r.listView(c)
	if err := v.ConfirmDelete(c.Request.Context()); err != nil {
		respondError(c, err, v.Snapshot())
		return
	}
	r.render(c, http.StatusOK, v)
}

func (r *ResourceHandlers[T]) CancelDelete(c *gin.Context) {
	v := r.listView(c)
	v.CancelDelete()
	r.render(c, http.StatusOK, v)
}

func (r *ResourceHandlers[T]) ToggleActive(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	v := r.listView(c)
	if err := v.ToggleActive(c.Request.Context(), id); err != nil {
		respondError(c, err, v.Snapshot())
		return
	}
	r.render(c, http.StatusOK, v)
}

// Dismiss closes the current notice
func (r *ResourceHandlers[T]) Dismiss(c *gin.Context) {
	v := r.listView(c)
	v.Dismiss()
	r.render(c, http.StatusOK, v)
}

func decodeJSON[T any](c *gin.Context, into *T) error {
	return json.NewDecoder(c.Request.Body).Decode(into)
}

// decodeDish accepts plain JSON, or a multipart form with the JSON in a
// "data" field and an optional "image" file.
func decodeDish(c *gin.Context, into *models.Dish) error {
	if !strings.HasPrefix(c.ContentType(), "multipart/") {
		return decodeJSON(c, into)
	}
	if data := c.PostForm("data"); data != "" {
		if err := json.Unmarshal([]byte(data), into); err != nil {
			return err
		}
	}
	fh, err := c.FormFile("image")
	if err != nil {
		if err == http.ErrMissingFile {
			return nil
		}
		return err
	}
	upload, err := readUpload(fh)
	if err != nil {
		return err
	}
	into.Upload = upload
	return nil
}
