// Package view implements the meetings list component. A view is mounted
// once per page, issues a single request for the collection and renders
// either an empty list or the populated one.
package view

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/navikt/meetingsview/internal/logger"
	"github.com/navikt/meetingsview/internal/models"
)

// State is the display state of a view
type State int

const (
	// StateEmpty is the state before the collection has been received
	StateEmpty State = iota
	// StatePopulated is the state after a successful fetch
	StatePopulated
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StatePopulated:
		return "populated"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Fetcher retrieves the meetings collection
type Fetcher interface {
	ListMeetings(ctx context.Context) ([]models.Meeting, error)
}

// Store persists view state between the fetch and the render
type Store interface {
	CreateView(ctx context.Context, id string) error
	SaveMeetings(ctx context.Context, id string, meetings []models.Meeting) error
	GetView(ctx context.Context, id string) (*models.ViewState, error)
	DeleteView(ctx context.Context, id string) error
}

// ErrUnmounted is returned when mounting a view that has already been unmounted
var ErrUnmounted = errors.New("view has been unmounted")

// MeetingsView is a single mounted instance of the meetings list
type MeetingsView struct {
	id      string
	fetcher Fetcher
	store   Store
	log     *slog.Logger

	mu          sync.Mutex
	mounted     bool
	unmounted   bool
	cancel      context.CancelFunc
	err         error
	onPopulated func(*MeetingsView)
	done        chan struct{}
}

// New creates an unmounted view
func New(id string, fetcher Fetcher, store Store, log *slog.Logger) *MeetingsView {
	if log == nil {
		log = logger.Discard()
	}
	return &MeetingsView{
		id:      id,
		fetcher: fetcher,
		store:   store,
		log:     log.With("view_id", id),
		done:    make(chan struct{}),
	}
}

// ID returns the view identifier
func (v *MeetingsView) ID() string {
	return v.id
}

// OnPopulated registers a function called after the collection has been stored.
// It must be set before Mount.
func (v *MeetingsView) OnPopulated(fn func(*MeetingsView)) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.onPopulated = fn
}

// Mount stores the empty view and starts the one request for the collection.
// The request lives until ctx is cancelled or the view is unmounted.
// Mounting twice is a no-op.
func (v *MeetingsView) Mount(ctx context.Context) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.unmounted {
		return ErrUnmounted
	}
	if v.mounted {
		return nil
	}

	if err := v.store.CreateView(ctx, v.id); err != nil {
		return fmt.Errorf("failed to create view: %w", err)
	}

	fetchCtx, cancel := context.WithCancel(ctx)
	v.mounted = true
	v.cancel = cancel

	go v.fetch(fetchCtx)
	return nil
}

func (v *MeetingsView) fetch(ctx context.Context) {
	defer close(v.done)

	meetings, err := v.fetcher.ListMeetings(ctx)

	v.mu.Lock()
	if v.unmounted {
		v.mu.Unlock()
		v.log.Debug("Discarding response for unmounted view")
		return
	}

	if err != nil {
		v.err = err
		v.mu.Unlock()
		if errors.Is(err, context.Canceled) {
			v.log.Debug("Meetings request cancelled")
		} else {
			v.log.Error("Failed to fetch meetings", "error", err)
		}
		return
	}

	// Saved while holding the lock so an Unmount cannot slip in between
	// the check above and the write
	if err := v.store.SaveMeetings(ctx, v.id, meetings); err != nil {
		v.err = fmt.Errorf("failed to store meetings: %w", err)
		v.mu.Unlock()
		v.log.Error("Failed to store meetings", "error", err)
		return
	}
	callback := v.onPopulated
	v.mu.Unlock()

	v.log.Info("View populated", "count", len(meetings))
	if callback != nil {
		callback(v)
	}
}

// Unmount cancels an outstanding request and discards the view state.
// Once unmounted the view never changes again. Unmounting twice is a no-op.
func (v *MeetingsView) Unmount(ctx context.Context) error {
	v.mu.Lock()
	if v.unmounted {
		v.mu.Unlock()
		return nil
	}
	v.unmounted = true
	mounted := v.mounted
	cancel := v.cancel
	v.mu.Unlock()

	if !mounted {
		close(v.done)
		return nil
	}

	cancel()
	if err := v.store.DeleteView(ctx, v.id); err != nil && !errors.Is(err, models.ErrViewNotFound) {
		return fmt.Errorf("failed to delete view: %w", err)
	}
	return nil
}

// Done is closed once the request has settled, or when the view is
// unmounted before it was ever mounted
func (v *MeetingsView) Done() <-chan struct{} {
	return v.done
}

// Wait blocks until the request has settled or ctx is done
func (v *MeetingsView) Wait(ctx context.Context) error {
	select {
	case <-v.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Err returns the error recorded by a failed request, if any.
// A failed request leaves the view empty.
func (v *MeetingsView) Err() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.err
}

// Snapshot returns the stored state of the view
func (v *MeetingsView) Snapshot(ctx context.Context) (*models.ViewState, error) {
	return v.store.GetView(ctx, v.id)
}

// State returns the current display state
func (v *MeetingsView) State(ctx context.Context) (State, error) {
	state, err := v.Snapshot(ctx)
	if err != nil {
		return StateEmpty, err
	}
	return StateOf(state), nil
}

// Meetings returns the collection currently held by the view
func (v *MeetingsView) Meetings(ctx context.Context) ([]models.Meeting, error) {
	state, err := v.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return state.Meetings, nil
}

// StateOf maps stored view state to a display state
func StateOf(state *models.ViewState) State {
	if state != nil && state.Populated {
		return StatePopulated
	}
	return StateEmpty
}
