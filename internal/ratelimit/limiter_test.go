package ratelimit

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aiohm/assistant/internal/core/domain"
)

func newTestLimiter(ceilings map[Endpoint]int) (*Limiter, *time.Time) {
	l := NewWithCeilings(ceilings)
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }
	return l, &now
}

func TestAllow(t *testing.T) {
	t.Run("allows up to ceiling then rejects", func(t *testing.T) {
		l, _ := newTestLimiter(map[Endpoint]int{EndpointUpload: 3})

		for i := 0; i < 3; i++ {
			require.NoError(t, l.Allow(EndpointUpload, 7, "10.0.0.1"))
		}

		err := l.Allow(EndpointUpload, 7, "10.0.0.1")
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrRateLimited)
	})

	t.Run("ip counter blocks a fresh user identity", func(t *testing.T) {
		l, _ := newTestLimiter(map[Endpoint]int{EndpointPrivateChat: 2})

		require.NoError(t, l.Allow(EndpointPrivateChat, 1, "10.0.0.1"))
		require.NoError(t, l.Allow(EndpointPrivateChat, 2, "10.0.0.1"))

		// Third user, same IP: logging in with a new account does not
		// reset the budget.
		err := l.Allow(EndpointPrivateChat, 3, "10.0.0.1")
		assert.ErrorIs(t, err, domain.ErrRateLimited)
	})

	t.Run("user counter blocks a fresh ip", func(t *testing.T) {
		l, _ := newTestLimiter(map[Endpoint]int{EndpointPrivateChat: 2})

		require.NoError(t, l.Allow(EndpointPrivateChat, 1, "10.0.0.1"))
		require.NoError(t, l.Allow(EndpointPrivateChat, 1, "10.0.0.2"))

		err := l.Allow(EndpointPrivateChat, 1, "10.0.0.3")
		assert.ErrorIs(t, err, domain.ErrRateLimited)
	})

	t.Run("rejected call does not consume budget", func(t *testing.T) {
		l, _ := newTestLimiter(map[Endpoint]int{EndpointUpload: 1})

		require.NoError(t, l.Allow(EndpointUpload, 1, "10.0.0.1"))
		require.Error(t, l.Allow(EndpointUpload, 2, "10.0.0.1"))

		// A different IP for user 2 is still within the user budget.
		require.NoError(t, l.Allow(EndpointUpload, 2, "10.0.0.2"))
	})

	t.Run("endpoints count independently", func(t *testing.T) {
		l, _ := newTestLimiter(map[Endpoint]int{EndpointUpload: 1, EndpointAPI: 1})

		require.NoError(t, l.Allow(EndpointUpload, 1, "10.0.0.1"))
		require.NoError(t, l.Allow(EndpointAPI, 1, "10.0.0.1"))
		require.Error(t, l.Allow(EndpointUpload, 1, "10.0.0.1"))
	})

	t.Run("window expiry resets the count", func(t *testing.T) {
		l, now := newTestLimiter(map[Endpoint]int{EndpointUpload: 1})

		require.NoError(t, l.Allow(EndpointUpload, 1, "10.0.0.1"))
		require.Error(t, l.Allow(EndpointUpload, 1, "10.0.0.1"))

		*now = now.Add(time.Hour + time.Minute)
		require.NoError(t, l.Allow(EndpointUpload, 1, "10.0.0.1"))
	})

	t.Run("unthrottled endpoint always passes", func(t *testing.T) {
		l, _ := newTestLimiter(map[Endpoint]int{})
		for i := 0; i < 500; i++ {
			require.NoError(t, l.Allow(EndpointAPI, 1, "10.0.0.1"))
		}
	})

	t.Run("anonymous call counts ip only", func(t *testing.T) {
		l, _ := newTestLimiter(map[Endpoint]int{EndpointPublicChat: 2})

		require.NoError(t, l.Allow(EndpointPublicChat, 0, "10.0.0.1"))
		require.NoError(t, l.Allow(EndpointPublicChat, 0, "10.0.0.1"))
		require.Error(t, l.Allow(EndpointPublicChat, 0, "10.0.0.1"))
		require.NoError(t, l.Allow(EndpointPublicChat, 0, "10.0.0.2"))
	})
}

func TestRemaining(t *testing.T) {
	l, _ := newTestLimiter(map[Endpoint]int{EndpointPrivateChat: 30})

	assert.Equal(t, 30, l.Remaining(EndpointPrivateChat, 1))

	require.NoError(t, l.Allow(EndpointPrivateChat, 1, "10.0.0.1"))
	assert.Equal(t, 29, l.Remaining(EndpointPrivateChat, 1))

	assert.Equal(t, -1, l.Remaining("unthrottled", 1))
}

func TestDefaultCeilings(t *testing.T) {
	ceilings := DefaultCeilings()
	assert.Equal(t, 100, ceilings[EndpointAPI])
	assert.Equal(t, 30, ceilings[EndpointPrivateChat])
	assert.Equal(t, 50, ceilings[EndpointPublicChat])
	assert.Equal(t, 20, ceilings[EndpointUpload])
}

func TestConcurrentAllow(t *testing.T) {
	l := New()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_ = l.Allow(EndpointAPI, int64(n%5), "10.0.0.1")
		}(i)
	}
	wg.Wait()
}
