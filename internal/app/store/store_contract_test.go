package store

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aseptimu/shortlink/internal/app/service"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var baseTime = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func candidate(url, code string, custom bool, now time.Time) service.Link {
	return service.Link{
		ID:            uuid.NewString(),
		OriginalURL:   url,
		ShortCode:     code,
		IsCustomAlias: custom,
		CreatedAt:     now,
		ExpiresAt:     now.Add(service.DefaultLinkTTL),
	}
}

// runStoreContract проверяет поведение, общее для всех реализаций service.Store.
func runStoreContract(t *testing.T, newStore func(t *testing.T) service.Store) {
	ctx := context.Background()

	t.Run("issue then existing", func(t *testing.T) {
		st := newStore(t)

		out, err := st.Issue(ctx, candidate("https://example.com", "abc123", false, baseTime))
		require.NoError(t, err)
		assert.Equal(t, service.KindCreated, out.Kind)
		assert.Equal(t, "abc123", out.Link.ShortCode)

		out, err = st.Issue(ctx, candidate("https://example.com", "zzz999", false, baseTime.Add(time.Minute)))
		require.NoError(t, err)
		assert.Equal(t, service.KindExisting, out.Kind)
		assert.Equal(t, "abc123", out.Link.ShortCode)
	})

	t.Run("issue collision", func(t *testing.T) {
		st := newStore(t)

		_, err := st.Issue(ctx, candidate("https://a.example", "abc123", false, baseTime))
		require.NoError(t, err)

		_, err = st.Issue(ctx, candidate("https://b.example", "abc123", false, baseTime))
		assert.ErrorIs(t, err, service.ErrCodeCollision)
	})

	t.Run("alias replaces generated code", func(t *testing.T) {
		st := newStore(t)

		_, err := st.Issue(ctx, candidate("https://example.com", "abc123", false, baseTime))
		require.NoError(t, err)

		out, err := st.ClaimAlias(ctx, candidate("https://example.com", "mysite", true, baseTime.Add(time.Hour)))
		require.NoError(t, err)
		assert.Equal(t, service.KindUpdatedExisting, out.Kind)
		assert.Equal(t, "abc123", out.PreviousCode)
		assert.Equal(t, "mysite", out.Link.ShortCode)
		assert.True(t, out.Link.IsCustomAlias)
		assert.True(t, baseTime.Equal(out.Link.CreatedAt), "created_at must not change")

		link, err := st.Resolve(ctx, "mysite", baseTime.Add(2*time.Hour))
		require.NoError(t, err)
		assert.Equal(t, "https://example.com", link.OriginalURL)

		_, err = st.Resolve(ctx, "abc123", baseTime.Add(2*time.Hour))
		assert.ErrorIs(t, err, service.ErrNotFound)
	})

	t.Run("alias for new url", func(t *testing.T) {
		st := newStore(t)

		out, err := st.ClaimAlias(ctx, candidate("https://example.com", "mysite", true, baseTime))
		require.NoError(t, err)
		assert.Equal(t, service.KindCreated, out.Kind)
		assert.Empty(t, out.PreviousCode)
	})

	t.Run("alias taken by another url", func(t *testing.T) {
		st := newStore(t)

		_, err := st.ClaimAlias(ctx, candidate("https://a.example", "mysite", true, baseTime))
		require.NoError(t, err)

		_, err = st.ClaimAlias(ctx, candidate("https://b.example", "mysite", true, baseTime))
		assert.ErrorIs(t, err, service.ErrAliasTaken)

		link, err := st.Resolve(ctx, "mysite", baseTime)
		require.NoError(t, err)
		assert.Equal(t, "https://a.example", link.OriginalURL)
	})

	t.Run("long alias", func(t *testing.T) {
		st := newStore(t)
		alias := strings.Repeat("a", 100)

		out, err := st.ClaimAlias(ctx, candidate("https://example.com", alias, true, baseTime))
		require.NoError(t, err)
		assert.Equal(t, service.KindCreated, out.Kind)

		link, err := st.Resolve(ctx, alias, baseTime)
		require.NoError(t, err)
		assert.Equal(t, "https://example.com", link.OriginalURL)
	})

	t.Run("alias replaces previous alias", func(t *testing.T) {
		st := newStore(t)

		_, err := st.ClaimAlias(ctx, candidate("https://example.com", "first", true, baseTime))
		require.NoError(t, err)

		out, err := st.ClaimAlias(ctx, candidate("https://example.com", "second", true, baseTime))
		require.NoError(t, err)
		assert.Equal(t, service.KindUpdatedExisting, out.Kind)
		assert.Equal(t, "first", out.PreviousCode)
	})

	t.Run("concurrent aliases for one url", func(t *testing.T) {
		st := newStore(t)
		const workers = 8

		var wg sync.WaitGroup
		outcomes := make([]service.Outcome, workers)
		errs := make([]error, workers)
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				outcomes[i], errs[i] = st.ClaimAlias(ctx, candidate("https://example.com", fmt.Sprintf("alias-%d", i), true, baseTime))
			}(i)
		}
		wg.Wait()

		created := 0
		for i := 0; i < workers; i++ {
			require.NoError(t, errs[i])
			if outcomes[i].Kind == service.KindCreated {
				created++
				continue
			}
			assert.Equal(t, service.KindUpdatedExisting, outcomes[i].Kind)
			assert.NotEmpty(t, outcomes[i].PreviousCode, "updated claim must report the code it replaced")
		}
		assert.Equal(t, 1, created)
	})

	t.Run("same alias twice is idempotent", func(t *testing.T) {
		st := newStore(t)

		_, err := st.ClaimAlias(ctx, candidate("https://example.com", "mysite", true, baseTime))
		require.NoError(t, err)

		out, err := st.ClaimAlias(ctx, candidate("https://example.com", "mysite", true, baseTime))
		require.NoError(t, err)
		assert.Equal(t, service.KindUpdatedExisting, out.Kind)
		assert.Equal(t, "mysite", out.Link.ShortCode)
	})

	t.Run("expired records are invisible and reusable", func(t *testing.T) {
		st := newStore(t)

		_, err := st.Issue(ctx, candidate("https://a.example", "abc123", false, baseTime))
		require.NoError(t, err)

		afterExpiry := baseTime.Add(service.DefaultLinkTTL)
		_, err = st.Resolve(ctx, "abc123", afterExpiry)
		assert.ErrorIs(t, err, service.ErrNotFound)

		out, err := st.Issue(ctx, candidate("https://b.example", "abc123", false, afterExpiry))
		require.NoError(t, err)
		assert.Equal(t, service.KindCreated, out.Kind)

		out, err = st.Issue(ctx, candidate("https://a.example", "def456", false, afterExpiry))
		require.NoError(t, err)
		assert.Equal(t, service.KindCreated, out.Kind, "expired URL must get a fresh record")
		assert.Equal(t, "def456", out.Link.ShortCode)
	})

	t.Run("delete expired", func(t *testing.T) {
		st := newStore(t)

		_, err := st.Issue(ctx, candidate("https://old.example", "old", false, baseTime))
		require.NoError(t, err)
		_, err = st.Issue(ctx, candidate("https://new.example", "new", false, baseTime.Add(24*time.Hour)))
		require.NoError(t, err)

		removed, err := st.DeleteExpired(ctx, baseTime.Add(service.DefaultLinkTTL))
		require.NoError(t, err)
		assert.EqualValues(t, 1, removed)

		_, err = st.Resolve(ctx, "new", baseTime.Add(service.DefaultLinkTTL))
		assert.NoError(t, err)
	})

	t.Run("concurrent alias claims", func(t *testing.T) {
		st := newStore(t)

		const workers = 8
		var (
			wg      sync.WaitGroup
			mu      sync.Mutex
			winners int
		)
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, err := st.ClaimAlias(ctx, candidate(fmt.Sprintf("https://%d.example", i), "contested", true, baseTime))
				if err == nil {
					mu.Lock()
					winners++
					mu.Unlock()
					return
				}
				assert.ErrorIs(t, err, service.ErrAliasTaken)
			}(i)
		}
		wg.Wait()
		assert.Equal(t, 1, winners)
	})
}
