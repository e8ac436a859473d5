package interaction

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/todayscomfort/backend/internal/apperrors"
	"github.com/todayscomfort/backend/internal/models"
)

type fakeProfiles struct {
	profiles map[string]*models.UserProfile
	err      error
}

func (f *fakeProfiles) GetProfile(_ context.Context, uid string) (*models.UserProfile, error) {
	if f.err != nil {
		return nil, f.err
	}
	p, ok := f.profiles[uid]
	if !ok {
		return nil, fmt.Errorf("user profile not found")
	}
	return p, nil
}

func TestPostComment(t *testing.T) {
	profiles := &fakeProfiles{profiles: map[string]*models.UserProfile{
		"viewer": {UID: "viewer", Nickname: "달빛"},
	}}

	t.Run("snapshots the author nickname", func(t *testing.T) {
		store := newFakeStore()
		c, err := PostComment(context.Background(), store, profiles, "item1", "viewer", "좋은 글이에요")
		require.NoError(t, err)
		require.NotNil(t, c)
		assert.Equal(t, "달빛", c.Author)
		assert.Equal(t, "달빛", c.AuthorName)
		assert.Equal(t, "viewer", c.UID)
		assert.Equal(t, "좋은 글이에요", c.Text)
	})

	t.Run("empty text is a silent no-op", func(t *testing.T) {
		store := newFakeStore()
		c, err := PostComment(context.Background(), store, profiles, "item1", "viewer", "   ")
		require.NoError(t, err)
		assert.Nil(t, c)
	})

	t.Run("requires a signed-in user", func(t *testing.T) {
		store := newFakeStore()
		_, err := PostComment(context.Background(), store, profiles, "item1", "", "text")
		require.Error(t, err)
		var ae *apperrors.AuthRequiredError
		assert.ErrorAs(t, err, &ae)
	})

	t.Run("falls back to anonymous when the profile read fails", func(t *testing.T) {
		store := newFakeStore()
		broken := &fakeProfiles{err: fmt.Errorf("unavailable")}
		c, err := PostComment(context.Background(), store, broken, "item1", "viewer", "text")
		require.NoError(t, err)
		assert.Equal(t, "익명", c.Author)
	})

	t.Run("store failure surfaces as a write error", func(t *testing.T) {
		store := newFakeStore()
		store.setFailWrites(true)
		_, err := PostComment(context.Background(), store, profiles, "item1", "viewer", "text")
		require.Error(t, err)
		var swe *apperrors.StoreWriteError
		assert.ErrorAs(t, err, &swe)
	})
}

func TestRemoveComment(t *testing.T) {
	item := &models.FeedItem{ID: "item1", AuthorUID: "owner"}

	seed := func(store *fakeStore) {
		store.comments()["c1"] = &models.Comment{ID: "c1", UID: "author", Text: "hi"}
	}

	t.Run("author may delete their own comment", func(t *testing.T) {
		store := newFakeStore()
		seed(store)
		require.NoError(t, RemoveComment(context.Background(), store, item, "c1", "author"))
		_, ok := store.comments()["c1"]
		assert.False(t, ok)
	})

	t.Run("item owner may delete any comment", func(t *testing.T) {
		store := newFakeStore()
		seed(store)
		require.NoError(t, RemoveComment(context.Background(), store, item, "c1", "owner"))
	})

	t.Run("anyone else is rejected", func(t *testing.T) {
		store := newFakeStore()
		seed(store)
		err := RemoveComment(context.Background(), store, item, "c1", "stranger")
		assert.ErrorIs(t, err, ErrNotAllowed)
		_, ok := store.comments()["c1"]
		assert.True(t, ok)
	})

	t.Run("requires a signed-in user", func(t *testing.T) {
		store := newFakeStore()
		seed(store)
		err := RemoveComment(context.Background(), store, item, "c1", "")
		var ae *apperrors.AuthRequiredError
		assert.ErrorAs(t, err, &ae)
	})

	t.Run("missing comment", func(t *testing.T) {
		store := newFakeStore()
		err := RemoveComment(context.Background(), store, item, "nope", "owner")
		require.Error(t, err)
		assert.Equal(t, "comment not found", err.Error())
	})
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	store := newFakeStore()
	item := testItem()

	s1, err := NewSession(context.Background(), store, item, "u1", Callbacks{})
	require.NoError(t, err)
	defer s1.Close()

	r.Put(item.ID, "u1", s1)
	assert.Same(t, s1, r.Get(item.ID, "u1"))

	// Sessions are scoped per viewer, not per item
	assert.Nil(t, r.Get(item.ID, "u2"))

	// A replacement mount wins; removing the stale session is a no-op
	s2, err := NewSession(context.Background(), store, item, "u1", Callbacks{})
	require.NoError(t, err)
	defer s2.Close()

	r.Put(item.ID, "u1", s2)
	r.Remove(item.ID, "u1", s1)
	assert.Same(t, s2, r.Get(item.ID, "u1"))

	r.Remove(item.ID, "u1", s2)
	assert.Nil(t, r.Get(item.ID, "u1"))
}
