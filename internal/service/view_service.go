package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/navikt/meetingsview/internal/logger"
	"github.com/navikt/meetingsview/internal/metrics"
	"github.com/navikt/meetingsview/internal/models"
	"github.com/navikt/meetingsview/internal/repository"
	"github.com/navikt/meetingsview/internal/view"
)

// PopulatedCallback is called with the id of a view whose collection has arrived
type PopulatedCallback func(viewID string)

// ViewService owns the mounted views of this process
type ViewService struct {
	fetcher view.Fetcher
	repo    repository.Repository
	log     *slog.Logger

	// lifetime of every view is bounded by the service
	baseCtx context.Context
	stop    context.CancelFunc

	mu        sync.RWMutex
	views     map[string]*view.MeetingsView
	callbacks []PopulatedCallback
}

// NewViewService creates a new ViewService
func NewViewService(fetcher view.Fetcher, repo repository.Repository, log *slog.Logger) *ViewService {
	if log == nil {
		log = logger.Discard()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &ViewService{
		fetcher: fetcher,
		repo:    repo,
		log:     log,
		baseCtx: ctx,
		stop:    cancel,
		views:   make(map[string]*view.MeetingsView),
	}
}

// RegisterPopulatedCallback registers a callback function to be called when a view is populated
func (s *ViewService) RegisterPopulatedCallback(callback PopulatedCallback) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.callbacks = append(s.callbacks, callback)
}

// notifyPopulated calls all registered callbacks with the populated view
func (s *ViewService) notifyPopulated(v *view.MeetingsView) {
	s.mu.RLock()
	callbacks := append([]PopulatedCallback(nil), s.callbacks...)
	s.mu.RUnlock()

	for _, callback := range callbacks {
		callback(v.ID())
	}
}

// Mount creates a view with a fresh id and starts its request. The request
// is not tied to ctx; it runs until the view is unmounted or the service
// shuts down.
func (s *ViewService) Mount(ctx context.Context) (*view.MeetingsView, error) {
	if err := s.baseCtx.Err(); err != nil {
		return nil, fmt.Errorf("view service is shut down: %w", err)
	}

	id := uuid.NewString()
	v := view.New(id, s.fetcher, s.repo, s.log)
	v.OnPopulated(s.notifyPopulated)

	s.mu.Lock()
	// Shutdown cancels baseCtx before it drains the map
	if err := s.baseCtx.Err(); err != nil {
		s.mu.Unlock()
		return nil, fmt.Errorf("view service is shut down: %w", err)
	}
	s.views[id] = v
	s.mu.Unlock()

	if err := v.Mount(s.baseCtx); err != nil {
		s.mu.Lock()
		delete(s.views, id)
		s.mu.Unlock()
		return nil, err
	}

	metrics.ViewMounted()
	s.log.Debug("View mounted", "view_id", id)
	return v, nil
}

// Get returns a view mounted by this process
func (s *ViewService) Get(id string) (*view.MeetingsView, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.views[id]
	return v, ok
}

// State returns the stored state of a view. Views mounted by other
// processes sharing the store are visible here too.
func (s *ViewService) State(ctx context.Context, id string) (*models.ViewState, error) {
	if id == "" {
		return nil, models.ErrViewNotFound
	}
	return s.repo.GetView(ctx, id)
}

// Unmount tears down a view mounted by this process
func (s *ViewService) Unmount(ctx context.Context, id string) error {
	s.mu.Lock()
	v, ok := s.views[id]
	delete(s.views, id)
	s.mu.Unlock()

	if !ok {
		return models.ErrViewNotFound
	}

	metrics.ViewUnmounted()
	s.log.Debug("View unmounted", "view_id", id)
	return v.Unmount(ctx)
}

// ActiveViews returns the number of views mounted by this process
func (s *ViewService) ActiveViews() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.views)
}

// Shutdown cancels all outstanding requests and unmounts every view
func (s *ViewService) Shutdown(ctx context.Context) {
	s.stop()

	s.mu.Lock()
	views := s.views
	s.views = make(map[string]*view.MeetingsView)
	s.mu.Unlock()

	for id, v := range views {
		metrics.ViewUnmounted()
		if err := v.Unmount(ctx); err != nil {
			s.log.Warn("Failed to unmount view", "view_id", id, "error", err)
		}
	}
	s.log.Info("View service stopped", "unmounted", len(views))
}
