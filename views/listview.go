// Package views holds the state of the admin list/edit screens. Each view
// owns one server collection, never merges mutations optimistically and
// re-fetches after every successful write so server-side rules stay visible.
package views

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"restaurant-dashboard/apiclient"
)

type State string

const (
	StateLoading State = "LOADING"
	StateReady   State = "READY"
	StateError   State = "ERROR"
)

type Mode string

const (
	ModeIdle          Mode = "IDLE"
	ModeEditing       Mode = "EDITING"
	ModeCreating      Mode = "CREATING"
	ModeConfirmDelete Mode = "CONFIRM_DELETE"
)

var (
	ErrUnknownEntity   = errors.New("no such entry in the list")
	ErrHasDependents   = errors.New("entry has dependent records; block it instead")
	ErrNoPendingDelete = errors.New("no deletion awaiting confirmation")
	ErrNotActivatable  = errors.New("entries of this list cannot be blocked")
)

type Entity interface {
	EntityID() uint
}

// Resource is the server collection behind a view
type Resource[T Entity] interface {
	List(ctx context.Context) ([]T, error)
	Create(ctx context.Context, v T) (T, error)
	Update(ctx context.Context, id uint, v T) (T, error)
	Remove(ctx context.Context, id uint) error
}

// Activator is implemented by resources with block/unblock endpoints
type Activator interface {
	SetActive(ctx context.Context, id uint, active bool) error
}

type activatable interface {
	IsActive() bool
}

type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Notice is a dismissible notification
type Notice struct {
	Level   Level  `json:"level"`
	Message string `json:"message"`
}

type Options[T Entity] struct {
	Name        string
	Placeholder string
	// DeleteGuard refuses deletion of entries that still have dependents
	DeleteGuard func(T) error
	// Enrich decorates a freshly fetched list, e.g. with per-entry stats
	Enrich func(ctx context.Context, items []T) ([]T, error)
}

// BlockDependents is a DeleteGuard for entities that count their dependents
func BlockDependents[T interface {
	Entity
	DependentCount() int
}](item T) error {
	if n := item.DependentCount(); n > 0 {
		return fmt.Errorf("%w (%d linked orders)", ErrHasDependents, n)
	}
	return nil
}

type ListView[T Entity] struct {
	mu     sync.Mutex
	res    Resource[T]
	opts   Options[T]
	state  State
	mode   Mode
	target uint
	items  []T
	notice *Notice
	gen    uint64
}

func NewListView[T Entity](res Resource[T], opts Options[T]) *ListView[T] {
	return &ListView[T]{
		res:   res,
		opts:  opts,
		state: StateLoading,
		mode:  ModeIdle,
	}
}

// Snapshot is what a page renders
type Snapshot[T Entity] struct {
	Name        string  `json:"name"`
	State       State   `json:"state"`
	Mode        Mode    `json:"mode"`
	Target      uint    `json:"target,omitempty"`
	Count       int     `json:"count"`
	Items       []T     `json:"items"`
	Placeholder string  `json:"placeholder,omitempty"`
	Notice      *Notice `json:"notice,omitempty"`
}

func (v *ListView[T]) Snapshot() Snapshot[T] {
	v.mu.Lock()
	defer v.mu.Unlock()

	items := make([]T, len(v.items))
	copy(items, v.items)
	snap := Snapshot[T]{
		Name:   v.opts.Name,
		State:  v.state,
		Mode:   v.mode,
		Target: v.target,
		Count:  len(items),
		Items:  items,
		Notice: v.notice,
	}
	if v.state == StateReady && len(items) == 0 {
		snap.Placeholder = v.opts.Placeholder
	}
	return snap
}

// FetchAll reloads the whole list. On failure the previous list is kept and
// an error notice is raised. A result arriving after its context was
// cancelled, or after a newer fetch started, is dropped.
func (v *ListView[T]) FetchAll(ctx context.Context) error {
	v.mu.Lock()
	prev := v.state
	v.state = StateLoading
	v.gen++
	gen := v.gen
	v.mu.Unlock()

	items, err := v.res.List(ctx)
	if err == nil && v.opts.Enrich != nil {
		items, err = v.opts.Enrich(ctx, items)
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if gen != v.gen {
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		v.state = prev
		return ctxErr
	}
	if err != nil {
		v.state = StateError
		v.notice = &Notice{Level: LevelError, Message: apiclient.UserMessage(err)}
		return err
	}
	v.items = items
	v.state = StateReady
	return nil
}

func (v *ListView[T]) Find(id uint) (T, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.find(id)
}

func (v *ListView[T]) find(id uint) (T, bool) {
	for _, it := range v.items {
		if it.EntityID() == id {
			return it, true
		}
	}
	var zero T
	return zero, false
}

func (v *ListView[T]) StartEdit(id uint) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if _, ok := v.find(id); !ok {
		return ErrUnknownEntity
	}
	v.mode, v.target = ModeEditing, id
	return nil
}

func (v *ListView[T]) CancelEdit() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.mode == ModeEditing {
		v.mode, v.target = ModeIdle, 0
	}
}

func (v *ListView[T]) StartCreate() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.mode, v.target = ModeCreating, 0
}

func (v *ListView[T]) CancelCreate() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.mode == ModeCreating {
		v.mode = ModeIdle
	}
}

// Dismiss clears the current notice
func (v *ListView[T]) Dismiss() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.notice = nil
}

func (v *ListView[T]) fail(mode Mode, target uint, err error) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.mode, v.target = mode, target
	v.notice = &Notice{Level: LevelError, Message: apiclient.UserMessage(err)}
	return err
}

// succeed resets the mode, re-fetches and reports success once the list is
// fresh again.
func (v *ListView[T]) succeed(ctx context.Context, message string) {
	v.mu.Lock()
	v.mode, v.target = ModeIdle, 0
	v.mu.Unlock()

	if err := v.FetchAll(ctx); err != nil {
		return
	}
	v.mu.Lock()
	v.notice = &Notice{Level: LevelSuccess, Message: message}
	v.mu.Unlock()
}

// Save validates the patch locally and, only if it passes, sends it as an
// update of entry id. The edit stays open when anything fails.
func (v *ListView[T]) Save(ctx context.Context, id uint, patch T) error {
	if err := Validate(patch); err != nil {
		return v.fail(ModeEditing, id, err)
	}
	if _, err := v.res.Update(ctx, id, patch); err != nil {
		return v.fail(ModeEditing, id, err)
	}
	v.succeed(ctx, "Changes saved")
	return nil
}

// Create validates and sends a new entry
func (v *ListView[T]) Create(ctx context.Context, draft T) (T, error) {
	if err := Validate(draft); err != nil {
		var zero T
		return zero, v.fail(ModeCreating, 0, err)
	}
	created, err := v.res.Create(ctx, draft)
	if err != nil {
		var zero T
		return zero, v.fail(ModeCreating, 0, err)
	}
	v.succeed(ctx, "Created")
	return created, nil
}

// RequestDelete asks for confirmation, unless the entry is protected by
// dependents.
func (v *ListView[T]) RequestDelete(id uint) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	item, ok := v.find(id)
	if !ok {
		return ErrUnknownEntity
	}
	if v.opts.DeleteGuard != nil {
		if err := v.opts.DeleteGuard(item); err != nil {
			v.notice = &Notice{Level: LevelError, Message: err.Error()}
			return err
		}
	}
	v.mode, v.target = ModeConfirmDelete, id
	return nil
}

func (v *ListView[T]) CancelDelete() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.mode == ModeConfirmDelete {
		v.mode, v.target = ModeIdle, 0
	}
}

// ConfirmDelete removes the entry awaiting confirmation
func (v *ListView[T]) ConfirmDelete(ctx context.Context) error {
	v.mu.Lock()
	if v.mode != ModeConfirmDelete {
		v.mu.Unlock()
		return ErrNoPendingDelete
	}
	id := v.target
	item, ok := v.find(id)
	v.mu.Unlock()

	if ok && v.opts.DeleteGuard != nil {
		if err := v.opts.DeleteGuard(item); err != nil {
			return v.fail(ModeIdle, 0, err)
		}
	}
	if err := v.res.Remove(ctx, id); err != nil {
		return v.fail(ModeIdle, 0, err)
	}

	v.mu.Lock()
	kept := v.items[:0:0]
	for _, it := range v.items {
		if it.EntityID() != id {
			kept = append(kept, it)
		}
	}
	v.items = kept
	v.mu.Unlock()

	v.succeed(ctx, "Deleted")
	return nil
}

// ToggleActive blocks an active entry or unblocks a blocked one
func (v *ListView[T]) ToggleActive(ctx context.Context, id uint) error {
	act, ok := v.res.(Activator)
	if !ok {
		return ErrNotActivatable
	}
	item, found := v.Find(id)
	if !found {
		return ErrUnknownEntity
	}
	flag, ok := any(item).(activatable)
	if !ok {
		return ErrNotActivatable
	}

	next := !flag.IsActive()
	if err := act.SetActive(ctx, id, next); err != nil {
		v.mu.Lock()
		mode, target := v.mode, v.target
		v.mu.Unlock()
		return v.fail(mode, target, err)
	}
	msg := "Blocked"
	if next {
		msg = "Unblocked"
	}
	v.succeed(ctx, msg)
	return nil
}
