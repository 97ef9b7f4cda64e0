// Package memory provides an in-memory implementation of the repository interface
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/navikt/meetingsview/internal/models"
)

// Repository implements the repository interface with in-memory storage
type Repository struct {
	views map[string]*models.ViewState
	mu    sync.RWMutex
}

// NewRepository creates a new in-memory repository
func NewRepository() *Repository {
	return &Repository{
		views: make(map[string]*models.ViewState),
	}
}

// CreateView registers an empty view, resetting any previous state under the same id
func (r *Repository) CreateView(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.views[id] = &models.ViewState{
		ID:        id,
		Meetings:  []models.Meeting{},
		MountedAt: time.Now(),
	}
	return nil
}

// SaveMeetings stores a copy of the collection and marks the view populated
func (r *Repository) SaveMeetings(ctx context.Context, id string, meetings []models.Meeting) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	state, ok := r.views[id]
	if !ok {
		return models.ErrViewNotFound
	}

	state.Meetings = copyMeetings(meetings)
	state.Populated = true
	return nil
}

// GetView returns a copy of the view state
func (r *Repository) GetView(ctx context.Context, id string) (*models.ViewState, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	state, ok := r.views[id]
	if !ok {
		return nil, models.ErrViewNotFound
	}

	return &models.ViewState{
		ID:        state.ID,
		Populated: state.Populated,
		Meetings:  copyMeetings(state.Meetings),
		MountedAt: state.MountedAt,
	}, nil
}

// DeleteView discards a view
func (r *Repository) DeleteView(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.views[id]; !ok {
		return models.ErrViewNotFound
	}
	delete(r.views, id)
	return nil
}

// CountViews returns the number of stored views
func (r *Repository) CountViews(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.views), nil
}

// Ping always succeeds for the in-memory store
func (r *Repository) Ping(ctx context.Context) error {
	return nil
}

// Close is a no-op
func (r *Repository) Close() error {
	return nil
}

func copyMeetings(meetings []models.Meeting) []models.Meeting {
	out := make([]models.Meeting, len(meetings))
	copy(out, meetings)
	return out
}
