package store

import (
	"context"
	"errors"
	"time"

	"github.com/aseptimu/shortlink/internal/app/cache"
	"github.com/aseptimu/shortlink/internal/app/service"
	"go.uber.org/zap"
)

// CachedStore - read-through кэш поверх любого service.Store.
// Ошибки кэша только логируются, запрос обслуживается из next.
type CachedStore struct {
	next   service.Store
	cache  cache.Cache
	keys   *cache.KeyBuilder
	ttl    time.Duration
	logger *zap.SugaredLogger
}

func NewCachedStore(next service.Store, c cache.Cache, keys *cache.KeyBuilder, ttl time.Duration, logger *zap.SugaredLogger) *CachedStore {
	return &CachedStore{next: next, cache: c, keys: keys, ttl: ttl, logger: logger}
}

func (s *CachedStore) Issue(ctx context.Context, candidate service.Link) (service.Outcome, error) {
	out, err := s.next.Issue(ctx, candidate)
	if err != nil {
		return out, err
	}
	if out.Kind == service.KindCreated {
		s.put(ctx, out.Link, candidate.CreatedAt)
	}
	return out, nil
}

// ClaimAlias убирает из кэша прежний код записи, чтобы он перестал резолвиться.
func (s *CachedStore) ClaimAlias(ctx context.Context, candidate service.Link) (service.Outcome, error) {
	out, err := s.next.ClaimAlias(ctx, candidate)
	if err != nil {
		return out, err
	}

	if out.PreviousCode != "" && out.PreviousCode != out.Link.ShortCode {
		if err := s.cache.Delete(ctx, s.keys.Link(out.PreviousCode)); err != nil {
			s.logger.Errorw("Failed to invalidate cached code", "code", out.PreviousCode, "error", err)
		}
	}
	s.put(ctx, out.Link, candidate.CreatedAt)
	return out, nil
}

func (s *CachedStore) Resolve(ctx context.Context, code string, now time.Time) (service.Link, error) {
	key := s.keys.Link(code)

	var cached service.Link
	err := s.cache.Get(ctx, key, &cached)
	switch {
	case err == nil && !cached.Expired(now):
		return cached, nil
	case err == nil:
		if err := s.cache.Delete(ctx, key); err != nil {
			s.logger.Errorw("Failed to drop expired cache entry", "code", code, "error", err)
		}
	case !errors.Is(err, cache.ErrCacheMiss):
		s.logger.Errorw("Cache error", "code", code, "error", err)
	}

	link, err := s.next.Resolve(ctx, code, now)
	if err != nil {
		return link, err
	}
	s.put(ctx, link, now)
	return link, nil
}

func (s *CachedStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	return s.next.DeleteExpired(ctx, now)
}

// put кэширует запись не дольше, чем она живёт.
func (s *CachedStore) put(ctx context.Context, link service.Link, now time.Time) {
	ttl := link.ExpiresAt.Sub(now)
	if s.ttl > 0 && s.ttl < ttl {
		ttl = s.ttl
	}
	if ttl <= 0 {
		return
	}

	if err := s.cache.SetWithTTL(ctx, s.keys.Link(link.ShortCode), link, ttl); err != nil {
		s.logger.Errorw("Failed to cache link", "code", link.ShortCode, "error", err)
	}
}
