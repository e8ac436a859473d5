package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/todayscomfort/backend/internal/models"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	id := &Identity{UID: "u1", Email: "u1@example.com", Nickname: "달빛", SignedIn: time.Now()}
	profile := &models.UserProfile{UID: "u1", Nickname: "달빛", Email: "u1@example.com"}

	t.Run("missing entries report not found", func(t *testing.T) {
		_, err := store.Identity(ctx, "u1")
		assert.ErrorIs(t, err, ErrNotFound)
		_, err = store.Profile(ctx, "u1")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("save then read back", func(t *testing.T) {
		require.NoError(t, store.SaveIdentity(ctx, id))
		require.NoError(t, store.SaveProfile(ctx, profile))

		gotID, err := store.Identity(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, "u1@example.com", gotID.Email)

		gotProfile, err := store.Profile(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, "달빛", gotProfile.Nickname)
	})

	t.Run("clear removes both blobs", func(t *testing.T) {
		require.NoError(t, store.Clear(ctx, "u1"))

		_, err := store.Identity(ctx, "u1")
		assert.ErrorIs(t, err, ErrNotFound)
		_, err = store.Profile(ctx, "u1")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("clear only touches the given user", func(t *testing.T) {
		require.NoError(t, store.SaveIdentity(ctx, &Identity{UID: "a"}))
		require.NoError(t, store.SaveIdentity(ctx, &Identity{UID: "b"}))
		require.NoError(t, store.Clear(ctx, "a"))

		_, err := store.Identity(ctx, "b")
		assert.NoError(t, err)
	})
}
