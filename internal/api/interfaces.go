package api

import (
	"context"

	"github.com/navikt/meetingsview/internal/models"
)

// ViewStore defines the store operations needed by API handlers
type ViewStore interface {
	Pinger
	GetView(ctx context.Context, id string) (*models.ViewState, error)
	CountViews(ctx context.Context) (int, error)
}

// ViewCounter reports the views mounted by this process
type ViewCounter interface {
	ActiveViews() int
}
