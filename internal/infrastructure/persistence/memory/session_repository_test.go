package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alchemorsel/nutriplan/internal/domain/nutrition"
	"github.com/alchemorsel/nutriplan/internal/domain/onboarding"
)

func TestSessionRepository_SaveFindDelete(t *testing.T) {
	ctx := context.Background()
	repo := NewSessionRepository(time.Hour)

	s := onboarding.NewSession()
	s.Draft.Restrictions = []nutrition.Restriction{nutrition.RestrictionNoDairy}
	require.NoError(t, repo.Save(ctx, s))

	// Mutating the caller's copy must not leak into the store.
	s.State = onboarding.StateReady
	s.Draft.Restrictions[0] = nutrition.RestrictionNoNuts

	found, err := repo.Find(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, onboarding.StateGreeting, found.State)
	assert.Equal(t, []nutrition.Restriction{nutrition.RestrictionNoDairy}, found.Draft.Restrictions)

	require.NoError(t, repo.Delete(ctx, s.ID))
	_, err = repo.Find(ctx, s.ID)
	assert.ErrorIs(t, err, onboarding.ErrSessionNotFound)
}

func TestSessionRepository_Expiry(t *testing.T) {
	ctx := context.Background()
	repo := NewSessionRepository(time.Minute)
	now := time.Now()
	repo.now = func() time.Time { return now }

	s := onboarding.NewSession()
	s.UpdatedAt = now.Add(-2 * time.Minute)
	require.NoError(t, repo.Save(ctx, s))

	fresh := onboarding.NewSession()
	fresh.UpdatedAt = now
	require.NoError(t, repo.Save(ctx, fresh))

	_, err := repo.Find(ctx, s.ID)
	assert.ErrorIs(t, err, onboarding.ErrSessionNotFound)

	assert.Equal(t, 1, repo.Sweep())
	assert.Equal(t, 1, repo.Len())

	_, err = repo.Find(ctx, fresh.ID)
	assert.NoError(t, err)
}

func TestSessionRepository_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	repo := NewSessionRepository(0)
	assert.ErrorIs(t, repo.Save(ctx, onboarding.NewSession()), context.Canceled)
}
