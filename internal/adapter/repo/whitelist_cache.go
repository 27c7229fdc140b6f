package repo

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"dailyitems/internal/domain"
)

const (
	whitelistCacheKey = "hashtag_whitelist:active"
	whitelistCacheTTL = 30 * time.Second
)

// CachedWhitelistRepository decorates a WhitelistRepository with a short-TTL
// Redis cache of the active snapshot. Validation reads the whitelist on every
// generation and editor keystroke; the snapshot semantics (spec: a snapshot,
// not a live subscription) make a briefly stale read acceptable.
type CachedWhitelistRepository struct {
	inner  domain.WhitelistRepository
	client *redis.Client
	logger zerolog.Logger
}

func NewCachedWhitelistRepository(inner domain.WhitelistRepository, client *redis.Client, logger zerolog.Logger) *CachedWhitelistRepository {
	return &CachedWhitelistRepository{inner: inner, client: client, logger: logger}
}

var _ domain.WhitelistRepository = (*CachedWhitelistRepository)(nil)

// ListActive serves from cache when possible. Cache failures fall through to
// the database; the cache is an accelerator, never an authority.
func (r *CachedWhitelistRepository) ListActive(ctx context.Context) ([]domain.WhitelistEntry, error) {
	if data, err := r.client.Get(ctx, whitelistCacheKey).Bytes(); err == nil {
		var entries []domain.WhitelistEntry
		if err := json.Unmarshal(data, &entries); err == nil {
			return entries, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		r.logger.Debug().Err(err).Msg("whitelist cache read failed")
	}

	entries, err := r.inner.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	if data, err := json.Marshal(entries); err == nil {
		if err := r.client.Set(ctx, whitelistCacheKey, data, whitelistCacheTTL).Err(); err != nil {
			r.logger.Debug().Err(err).Msg("whitelist cache write failed")
		}
	}
	return entries, nil
}

// List is an admin path; it always reads through.
func (r *CachedWhitelistRepository) List(ctx context.Context) ([]domain.WhitelistEntry, error) {
	return r.inner.List(ctx)
}

// Upsert writes through and invalidates the snapshot.
func (r *CachedWhitelistRepository) Upsert(ctx context.Context, entry domain.WhitelistEntry) error {
	if err := r.inner.Upsert(ctx, entry); err != nil {
		return err
	}
	if err := r.client.Del(ctx, whitelistCacheKey).Err(); err != nil {
		r.logger.Debug().Err(err).Msg("whitelist cache invalidation failed")
	}
	return nil
}
