// Package render turns stored parks into map payloads and map pages.
package render

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"parks-geojson/internal/logger"
	"parks-geojson/internal/metrics"
	"parks-geojson/internal/park"
)

// DefaultTTL is the payload cache lifetime.
const DefaultTTL = 24 * time.Hour

// Loader loads one stored park; (nil, nil) means it does not exist.
type Loader interface {
	Load(ctx context.Context, globalID string) (*park.Park, error)
}

// Options configures a Renderer.
type Options struct {
	// Cache is optional; nil disables payload caching.
	Cache *redis.Client
	TTL   time.Duration
	// MapsAPIKey enables the map script on rendered pages.
	MapsAPIKey string
}

// Renderer serves payloads and pages for stored parks.
type Renderer struct {
	repo Loader
	rc   *redis.Client
	ttl  time.Duration
	page *pageBuilder
}

func New(repo Loader, opts Options) (*Renderer, error) {
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	pb, err := newPageBuilder(opts.MapsAPIKey)
	if err != nil {
		return nil, err
	}
	return &Renderer{repo: repo, rc: opts.Cache, ttl: opts.TTL, page: pb}, nil
}

func cacheKey(globalID string) string { return "park:" + globalID }

// Payload returns the payload of a park, or (nil, nil) when it does not exist.
// Cache errors are logged and fall through to the repository.
func (r *Renderer) Payload(ctx context.Context, globalID string) (*Payload, error) {
	if r.rc != nil {
		s, err := r.rc.Get(ctx, cacheKey(globalID)).Result()
		switch {
		case err == nil:
			var pl Payload
			if json.Unmarshal([]byte(s), &pl) == nil {
				metrics.RedisHitsTotal.Inc()
				return &pl, nil
			}
			logger.L().Warn().Str("global_id", globalID).Msg("render_cache_corrupt")
			_ = r.rc.Del(ctx, cacheKey(globalID)).Err()
		case !errors.Is(err, redis.Nil):
			logger.L().Warn().Err(err).Str("global_id", globalID).Msg("render_cache_get_error")
		}
		metrics.RedisMissesTotal.Inc()
	}

	p, err := r.repo.Load(ctx, globalID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		metrics.RenderNotFoundTotal.Inc()
		return nil, nil
	}
	pl := NewPayload(*p)

	// SetNX: an entry written by Invalidate while this load was in flight is newer.
	if r.rc != nil {
		if b, err := json.Marshal(pl); err == nil {
			if err := r.rc.SetNX(ctx, cacheKey(globalID), b, r.ttl).Err(); err != nil {
				logger.L().Warn().Err(err).Str("global_id", globalID).Msg("render_cache_set_error")
			}
		}
	}
	return &pl, nil
}

// Invalidate replaces the cached payload of a park with one built from the current
// stored record, or drops it when the park no longer exists.
func (r *Renderer) Invalidate(ctx context.Context, globalID string) error {
	if r.rc == nil {
		return nil
	}
	p, err := r.repo.Load(ctx, globalID)
	if err != nil {
		return err
	}
	if p == nil {
		return r.rc.Del(ctx, cacheKey(globalID)).Err()
	}
	b, err := json.Marshal(NewPayload(*p))
	if err != nil {
		return err
	}
	return r.rc.Set(ctx, cacheKey(globalID), b, r.ttl).Err()
}

// Page renders the map page of a park. Unknown parks render the "No park found." page.
func (r *Renderer) Page(ctx context.Context, globalID string) ([]byte, bool, error) {
	pl, err := r.Payload(ctx, globalID)
	if err != nil {
		return nil, false, err
	}
	b, err := r.page.build(pl)
	return b, pl != nil, err
}
