package web

import (
	"context"

	"github.com/navikt/meetingsview/internal/models"
	"github.com/navikt/meetingsview/internal/view"
)

// ViewServicer defines the contract for the view service used by web handlers
type ViewServicer interface {
	Mount(ctx context.Context) (*view.MeetingsView, error)
	State(ctx context.Context, id string) (*models.ViewState, error)
	Unmount(ctx context.Context, id string) error
}
