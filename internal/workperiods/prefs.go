package workperiods

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

const pageSizeKey = "wpadmin:prefs:page-size"

// Preferences persists operator settings across sessions.
type Preferences struct {
	client *redis.Client
}

// NewPreferences wraps a Redis client. A nil client disables persistence.
func NewPreferences(client *redis.Client) *Preferences {
	return &Preferences{client: client}
}

// PageSize returns the stored page size, or DefaultPageSize when none is
// stored or the stored one is no longer allowed.
func (p *Preferences) PageSize(ctx context.Context) (int, error) {
	if p == nil || p.client == nil {
		return DefaultPageSize, nil
	}
	raw, err := p.client.Get(ctx, pageSizeKey).Result()
	if errors.Is(err, redis.Nil) {
		return DefaultPageSize, nil
	}
	if err != nil {
		return DefaultPageSize, fmt.Errorf("workperiods: load page size: %w", err)
	}
	size, err := strconv.Atoi(raw)
	if err != nil || !IsValidPageSize(size) {
		return DefaultPageSize, nil
	}
	return size, nil
}

// SetPageSize stores size if it is allowed.
func (p *Preferences) SetPageSize(ctx context.Context, size int) error {
	if p == nil || p.client == nil || !IsValidPageSize(size) {
		return nil
	}
	if err := p.client.Set(ctx, pageSizeKey, size, 0).Err(); err != nil {
		return fmt.Errorf("workperiods: save page size: %w", err)
	}
	return nil
}
