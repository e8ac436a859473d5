package interaction

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/todayscomfort/backend/internal/apperrors"
	"github.com/todayscomfort/backend/internal/models"
)

// fakeStore implements Store in memory. Writes succeed unless failWrites is
// set; snapshots are delivered only when the test calls pushLikes or
// pushComments, so tests control exactly when confirmation arrives.
type fakeStore struct {
	mu         sync.Mutex
	likes          map[string]bool
	storedComments map[string]*models.Comment
	failWrites     bool
	writeErr       error

	likeCh    chan []models.LikeMark
	commentCh chan []models.Comment
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		likes:     make(map[string]bool),
		likeCh:    make(chan []models.LikeMark, 8),
		commentCh: make(chan []models.Comment, 8),
	}
}

func (f *fakeStore) SetLike(_ context.Context, _, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWrites {
		return f.err()
	}
	f.likes[userID] = true
	return nil
}

func (f *fakeStore) RemoveLike(_ context.Context, _, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWrites {
		return f.err()
	}
	delete(f.likes, userID)
	return nil
}

func (f *fakeStore) WatchLikes(ctx context.Context, _ string) (<-chan []models.LikeMark, error) {
	out := make(chan []models.LikeMark)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case marks, ok := <-f.likeCh:
				if !ok {
					return
				}
				select {
				case out <- marks:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

func (f *fakeStore) AddComment(_ context.Context, _ string, comment *models.Comment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWrites {
		return f.err()
	}
	comment.ID = "c1"
	return nil
}

func (f *fakeStore) GetComment(_ context.Context, _, commentID string) (*models.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.comments()[commentID]
	if !ok {
		return nil, fmt.Errorf("comment not found")
	}
	return c, nil
}

func (f *fakeStore) DeleteComment(_ context.Context, _, commentID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWrites {
		return f.err()
	}
	delete(f.storedComments, commentID)
	return nil
}

func (f *fakeStore) WatchComments(ctx context.Context, _ string) (<-chan []models.Comment, error) {
	out := make(chan []models.Comment)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case comments, ok := <-f.commentCh:
				if !ok {
					return
				}
				select {
				case out <- comments:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

var _ Store = (*fakeStore)(nil)

func (f *fakeStore) comments() map[string]*models.Comment {
	if f.storedComments == nil {
		f.storedComments = make(map[string]*models.Comment)
	}
	return f.storedComments
}

func (f *fakeStore) err() error {
	if f.writeErr != nil {
		return f.writeErr
	}
	return fmt.Errorf("write failed")
}

func (f *fakeStore) setFailWrites(v bool) {
	f.mu.Lock()
	f.failWrites = v
	f.mu.Unlock()
}

type likeRecorder struct {
	mu     sync.Mutex
	states []LikeState
}

func (r *likeRecorder) record(s LikeState) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = append(r.states, s)
}

func (r *likeRecorder) all() []LikeState {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]LikeState, len(r.states))
	copy(out, r.states)
	return out
}

func testItem() *models.FeedItem {
	return &models.FeedItem{ID: "item1", AuthorUID: "owner"}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestSession_ToggleLike_Optimistic(t *testing.T) {
	store := newFakeStore()
	rec := &likeRecorder{}

	sess, err := NewSession(context.Background(), store, testItem(), "viewer", Callbacks{OnLikes: rec.record})
	require.NoError(t, err)
	defer sess.Close()

	require.NoError(t, sess.ToggleLike(context.Background(), "viewer"))

	// The optimistic delta is visible before any snapshot arrives
	state, _ := sess.State()
	assert.True(t, state.Liked)
	assert.Equal(t, 1, state.Count)

	states := rec.all()
	require.NotEmpty(t, states)
	assert.Equal(t, LikeState{Count: 1, Liked: true}, states[len(states)-1])
}

func TestSession_ToggleLike_DoubleToggleIsNetNoop(t *testing.T) {
	store := newFakeStore()

	sess, err := NewSession(context.Background(), store, testItem(), "viewer", Callbacks{})
	require.NoError(t, err)
	defer sess.Close()

	require.NoError(t, sess.ToggleLike(context.Background(), "viewer"))
	require.NoError(t, sess.ToggleLike(context.Background(), "viewer"))

	state, _ := sess.State()
	assert.False(t, state.Liked)
	assert.Equal(t, 0, state.Count)

	store.mu.Lock()
	assert.Empty(t, store.likes)
	store.mu.Unlock()
}

func TestSession_ToggleLike_RollbackOnWriteFailure(t *testing.T) {
	store := newFakeStore()
	store.setFailWrites(true)

	sess, err := NewSession(context.Background(), store, testItem(), "viewer", Callbacks{})
	require.NoError(t, err)
	defer sess.Close()

	err = sess.ToggleLike(context.Background(), "viewer")
	require.Error(t, err)
	var swe *apperrors.StoreWriteError
	assert.ErrorAs(t, err, &swe)

	// The flip was reverted exactly
	state, _ := sess.State()
	assert.False(t, state.Liked)
	assert.Equal(t, 0, state.Count)
}

func TestSession_ToggleLike_FailureAfterSuccessRevertsOnlyTheFailure(t *testing.T) {
	store := newFakeStore()

	sess, err := NewSession(context.Background(), store, testItem(), "viewer", Callbacks{})
	require.NoError(t, err)
	defer sess.Close()

	require.NoError(t, sess.ToggleLike(context.Background(), "viewer"))

	store.setFailWrites(true)
	require.Error(t, sess.ToggleLike(context.Background(), "viewer"))

	// Still liked from the first, committed toggle
	state, _ := sess.State()
	assert.True(t, state.Liked)
	assert.Equal(t, 1, state.Count)
}

func TestSession_ToggleLike_RequiresAuth(t *testing.T) {
	store := newFakeStore()

	sess, err := NewSession(context.Background(), store, testItem(), "", Callbacks{})
	require.NoError(t, err)
	defer sess.Close()

	err = sess.ToggleLike(context.Background(), "")
	require.Error(t, err)
	var ae *apperrors.AuthRequiredError
	assert.ErrorAs(t, err, &ae)
}

func TestSession_SnapshotOverwritesOptimisticState(t *testing.T) {
	store := newFakeStore()
	rec := &likeRecorder{}

	sess, err := NewSession(context.Background(), store, testItem(), "viewer", Callbacks{OnLikes: rec.record})
	require.NoError(t, err)
	defer sess.Close()

	require.NoError(t, sess.ToggleLike(context.Background(), "viewer"))

	// The confirmed snapshot includes two other likers plus the viewer
	store.likeCh <- []models.LikeMark{{UID: "a"}, {UID: "b"}, {UID: "viewer"}}

	waitFor(t, func() bool {
		state, _ := sess.State()
		return state.Count == 3
	})
	state, _ := sess.State()
	assert.True(t, state.Liked)
	assert.Equal(t, 3, state.Count)
}

func TestSession_CommentSnapshotsAreOrdered(t *testing.T) {
	store := newFakeStore()

	var mu sync.Mutex
	var last []models.Comment
	sess, err := NewSession(context.Background(), store, testItem(), "viewer", Callbacks{
		OnComments: func(cs []models.Comment) {
			mu.Lock()
			last = cs
			mu.Unlock()
		},
	})
	require.NoError(t, err)
	defer sess.Close()

	t1 := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	t2 := time.Date(2026, 1, 1, 11, 0, 0, 0, time.UTC)

	// Delivered newest-first; the session must reorder ascending
	store.commentCh <- []models.Comment{
		{ID: "c2", Text: "second", CreatedAt: t2},
		{ID: "c1", Text: "first", CreatedAt: t1},
	}

	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(last) == 2
	})

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "c1", last[0].ID)
	assert.Equal(t, "c2", last[1].ID)
}

func TestSession_CloseStopsCallbacks(t *testing.T) {
	store := newFakeStore()
	rec := &likeRecorder{}

	sess, err := NewSession(context.Background(), store, testItem(), "viewer", Callbacks{OnLikes: rec.record})
	require.NoError(t, err)

	sess.Close()
	before := len(rec.all())

	// A snapshot arriving after Close must not reach the callback. The
	// watch channel may be closed already; sending is best-effort.
	select {
	case store.likeCh <- []models.LikeMark{{UID: "x"}}:
	default:
	}
	time.Sleep(50 * time.Millisecond)

	assert.Equal(t, before, len(rec.all()))
	assert.ErrorIs(t, sess.ToggleLike(context.Background(), "viewer"), ErrSessionClosed)
}

func TestSortComments(t *testing.T) {
	t1 := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	t2 := time.Date(2026, 1, 1, 11, 0, 0, 0, time.UTC)

	t.Run("ascending by creation time", func(t *testing.T) {
		cs := []models.Comment{{ID: "b", CreatedAt: t2}, {ID: "a", CreatedAt: t1}}
		SortComments(cs)
		assert.Equal(t, "a", cs[0].ID)
		assert.Equal(t, "b", cs[1].ID)
	})

	t.Run("zero timestamps keep their position", func(t *testing.T) {
		cs := []models.Comment{{ID: "pending1"}, {ID: "a", CreatedAt: t1}, {ID: "pending2"}}
		SortComments(cs)
		assert.Equal(t, "pending1", cs[0].ID)
		assert.Equal(t, "a", cs[1].ID)
		assert.Equal(t, "pending2", cs[2].ID)
	})
}

func TestCommitOptimistic(t *testing.T) {
	t.Run("success applies once", func(t *testing.T) {
		applied, reverted := 0, 0
		err := commitOptimistic(
			func() { applied++ },
			func() { reverted++ },
			func() error { return nil },
		)
		require.NoError(t, err)
		assert.Equal(t, 1, applied)
		assert.Equal(t, 0, reverted)
	})

	t.Run("failure reverts exactly once", func(t *testing.T) {
		applied, reverted := 0, 0
		err := commitOptimistic(
			func() { applied++ },
			func() { reverted++ },
			func() error { return fmt.Errorf("boom") },
		)
		require.Error(t, err)
		assert.Equal(t, 1, applied)
		assert.Equal(t, 1, reverted)
	})
}
