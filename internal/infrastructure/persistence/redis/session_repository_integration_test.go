//go:build integration

package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/alchemorsel/nutriplan/internal/domain/onboarding"
	"github.com/alchemorsel/nutriplan/internal/infrastructure/config"
	redisrepo "github.com/alchemorsel/nutriplan/internal/infrastructure/persistence/redis"
	"github.com/alchemorsel/nutriplan/test/testutils"
)

func TestSessionRepository_Redis(t *testing.T) {
	ctx := context.Background()
	tr := testutils.SetupTestRedis(t)

	client, err := redisrepo.NewClient(ctx, config.RedisConfig{
		Host:        tr.Host,
		Port:        tr.Port,
		DialTimeout: 5 * time.Second,
	})
	require.NoError(t, err)
	defer client.Close()

	repo := redisrepo.NewSessionRepository(client, "nutriplan:test:", time.Minute, zaptest.NewLogger(t))

	t.Run("round trip", func(t *testing.T) {
		s := onboarding.NewSession()
		s.State = onboarding.StateGoal
		s.Messages = 2
		require.NoError(t, repo.Save(ctx, s))

		got, err := repo.Find(ctx, s.ID)
		require.NoError(t, err)
		assert.Equal(t, s.ID, got.ID)
		assert.Equal(t, onboarding.StateGoal, got.State)
		assert.Equal(t, 2, got.Messages)

		ttl, err := tr.Client.TTL(ctx, "nutriplan:test:session:"+s.ID).Result()
		require.NoError(t, err)
		assert.Greater(t, ttl, 50*time.Second)
	})

	t.Run("delete", func(t *testing.T) {
		s := onboarding.NewSession()
		require.NoError(t, repo.Save(ctx, s))
		require.NoError(t, repo.Delete(ctx, s.ID))

		_, err := repo.Find(ctx, s.ID)
		assert.ErrorIs(t, err, onboarding.ErrSessionNotFound)
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := repo.Find(ctx, "missing")
		assert.ErrorIs(t, err, onboarding.ErrSessionNotFound)
	})

	t.Run("expiry", func(t *testing.T) {
		short := redisrepo.NewSessionRepository(client, "nutriplan:short:", time.Second, nil)
		s := onboarding.NewSession()
		require.NoError(t, short.Save(ctx, s))

		assert.Eventually(t, func() bool {
			_, err := short.Find(ctx, s.ID)
			return err == onboarding.ErrSessionNotFound
		}, 5*time.Second, 100*time.Millisecond)
	})
}
