package models

import (
	"errors"
	"time"
)

// ErrViewNotFound is returned by view stores for unknown or unmounted views
var ErrViewNotFound = errors.New("view not found")

// ViewState is the single collection held by one mounted view
type ViewState struct {
	ID string `json:"id"`
	// Populated is set once the collection response has been stored
	Populated bool      `json:"populated"`
	Meetings  []Meeting `json:"meetings"`
	MountedAt time.Time `json:"mounted_at"`
}
