// Package redis provides a Redis/Valkey implementation of the repository interface
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/navikt/meetingsview/internal/config"
	"github.com/navikt/meetingsview/internal/models"
	"github.com/redis/go-redis/v9"
)

// Repository implements the repository interface with Redis storage.
// Each view is one JSON value that expires after the configured TTL.
type Repository struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

// NewRepository creates a new Redis repository
func NewRepository(cfg config.RedisConfig) (*Repository, error) {
	var client *redis.Client

	// Use URI if provided, otherwise build connection from individual parameters
	if cfg.URI != "" {
		opt, err := redis.ParseURL(cfg.URI)
		if err != nil {
			return nil, fmt.Errorf("failed to parse Redis URI: %w", err)
		}

		// Use DB from config if not specified in the URI
		if opt.DB == 0 {
			opt.DB = cfg.DB
		}
		if opt.Password == "" && cfg.Password != "" {
			opt.Password = cfg.Password
		}

		client = redis.NewClient(opt)
	} else {
		client = redis.NewClient(&redis.Options{
			Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
			Username: cfg.Username,
			Password: cfg.Password,
			DB:       cfg.DB,
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Repository{
		client:    client,
		keyPrefix: cfg.KeyPrefix,
		ttl:       cfg.ViewTTL,
	}, nil
}

// Close closes the Redis connection
func (r *Repository) Close() error {
	return r.client.Close()
}

// Ping checks the Redis connection
func (r *Repository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// viewKey returns the Redis key for a view
func (r *Repository) viewKey(id string) string {
	return fmt.Sprintf("%sviews:%s", r.keyPrefix, id)
}

// CreateView stores an empty view with TTL
func (r *Repository) CreateView(ctx context.Context, id string) error {
	state := models.ViewState{
		ID:        id,
		Meetings:  []models.Meeting{},
		MountedAt: time.Now().UTC(),
	}

	data, err := json.Marshal(&state)
	if err != nil {
		return fmt.Errorf("failed to marshal view: %w", err)
	}

	if err := r.client.Set(ctx, r.viewKey(id), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to create view: %w", err)
	}
	return nil
}

// SaveMeetings populates an existing view. The write only succeeds if the key
// still exists, so an unmounted view is never recreated.
func (r *Repository) SaveMeetings(ctx context.Context, id string, meetings []models.Meeting) error {
	state, err := r.GetView(ctx, id)
	if err != nil {
		return err
	}

	state.Populated = true
	state.Meetings = meetings
	if state.Meetings == nil {
		state.Meetings = []models.Meeting{}
	}

	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal view: %w", err)
	}

	err = r.client.SetArgs(ctx, r.viewKey(id), data, redis.SetArgs{
		Mode: "XX",
		TTL:  r.ttl,
	}).Err()
	if errors.Is(err, redis.Nil) {
		return models.ErrViewNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to save meetings: %w", err)
	}
	return nil
}

// GetView retrieves a view by ID
func (r *Repository) GetView(ctx context.Context, id string) (*models.ViewState, error) {
	data, err := r.client.Get(ctx, r.viewKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, models.ErrViewNotFound
		}
		return nil, fmt.Errorf("failed to get view: %w", err)
	}

	var state models.ViewState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal view: %w", err)
	}
	if state.Meetings == nil {
		state.Meetings = []models.Meeting{}
	}

	return &state, nil
}

// DeleteView removes a view by ID
func (r *Repository) DeleteView(ctx context.Context, id string) error {
	deleted, err := r.client.Del(ctx, r.viewKey(id)).Result()
	if err != nil {
		return fmt.Errorf("failed to delete view: %w", err)
	}
	if deleted == 0 {
		return models.ErrViewNotFound
	}
	return nil
}

// CountViews counts stored views
func (r *Repository) CountViews(ctx context.Context) (int, error) {
	keys, err := r.client.Keys(ctx, r.viewKey("*")).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to list views: %w", err)
	}
	return len(keys), nil
}
