// Package repository defines interfaces for view state storage
package repository

import (
	"context"

	"github.com/navikt/meetingsview/internal/models"
)

// Repository stores the collection held by each mounted view.
// Unknown ids yield models.ErrViewNotFound.
type Repository interface {
	// CreateView registers an empty view
	CreateView(ctx context.Context, id string) error
	// SaveMeetings populates an existing view, replacing its collection
	SaveMeetings(ctx context.Context, id string, meetings []models.Meeting) error
	GetView(ctx context.Context, id string) (*models.ViewState, error)
	DeleteView(ctx context.Context, id string) error
	CountViews(ctx context.Context) (int, error)

	// Ping reports whether the backing store is reachable
	Ping(ctx context.Context) error
	Close() error
}
