package interaction

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/todayscomfort/backend/internal/apperrors"
	"github.com/todayscomfort/backend/internal/models"
)

// ErrSessionClosed is returned by operations on a closed session
var ErrSessionClosed = fmt.Errorf("interaction session closed")

// LikeState is the derived like view for the session's viewer
type LikeState struct {
	Count int  `json:"count"`
	Liked bool `json:"liked"`
}

// Callbacks receive the session's derived state. Each delivery carries the
// full current state; consumers never see incremental diffs.
type Callbacks struct {
	OnLikes    func(LikeState)
	OnComments func([]models.Comment)
}

// Session maintains a live view of one feed item for one viewer: the like
// count, whether the viewer likes it, and the ordered comment list. Two
// independent subscriptions feed it; writes go through it so optimistic
// updates and rollbacks reach the viewer immediately.
type Session struct {
	store     Store
	item      *models.FeedItem
	viewerUID string
	cb        Callbacks

	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu        sync.Mutex
	likeCount int
	liked     bool
	comments  []models.Comment
	closed    bool

	// serializes toggles so at most one optimistic delta is ever outstanding
	toggleMu sync.Mutex
}

// NewSession mounts both live subscriptions for the item and starts delivering
// snapshots to the callbacks. Close detaches everything.
func NewSession(ctx context.Context, store Store, item *models.FeedItem, viewerUID string, cb Callbacks) (*Session, error) {
	sctx, cancel := context.WithCancel(ctx)

	likeCh, err := store.WatchLikes(sctx, item.ID)
	if err != nil {
		cancel()
		return nil, err
	}
	commentCh, err := store.WatchComments(sctx, item.ID)
	if err != nil {
		cancel()
		return nil, err
	}

	s := &Session{
		store:     store,
		item:      item,
		viewerUID: viewerUID,
		cb:        cb,
		cancel:    cancel,
	}

	s.wg.Add(2)
	go s.consumeLikes(likeCh)
	go s.consumeComments(commentCh)

	return s, nil
}

// Close detaches both subscriptions. When it returns, no further callback
// will be invoked.
func (s *Session) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	s.cancel()
	s.wg.Wait()
}

// State returns the current derived like state and comment list
func (s *Session) State() (LikeState, []models.Comment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	comments := make([]models.Comment, len(s.comments))
	copy(comments, s.comments)
	return LikeState{Count: s.likeCount, Liked: s.liked}, comments
}

// ToggleLike flips the viewer's like optimistically, then commits the
// create-or-delete of their LikeMark. On failure the flip is reverted exactly
// and a StoreWriteError is returned. Toggles are serialized, so the local view
// never drifts more than one pending toggle from the confirmed remote state.
func (s *Session) ToggleLike(ctx context.Context, userID string) error {
	if userID == "" {
		return apperrors.NewAuthRequired("로그인이 필요합니다.")
	}

	s.toggleMu.Lock()
	defer s.toggleMu.Unlock()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	prevLiked := s.liked
	s.mu.Unlock()

	delta := 1
	if prevLiked {
		delta = -1
	}

	err := commitOptimistic(
		func() { s.applyLikeDelta(!prevLiked, delta) },
		func() { s.applyLikeDelta(prevLiked, -delta) },
		func() error {
			if prevLiked {
				return s.store.RemoveLike(ctx, s.item.ID, userID)
			}
			return s.store.SetLike(ctx, s.item.ID, userID)
		},
	)
	if err != nil {
		return apperrors.NewStoreWrite("toggle like", err)
	}
	return nil
}

// AddComment posts a comment on the session's item; see PostComment
func (s *Session) AddComment(ctx context.Context, profiles ProfileReader, userID, text string) (*models.Comment, error) {
	return PostComment(ctx, s.store, profiles, s.item.ID, userID, text)
}

// DeleteComment removes a comment from the session's item; see RemoveComment
func (s *Session) DeleteComment(ctx context.Context, commentID, requesterUID string) error {
	return RemoveComment(ctx, s.store, s.item, commentID, requesterUID)
}

func (s *Session) applyLikeDelta(liked bool, delta int) {
	s.mu.Lock()
	s.liked = liked
	s.likeCount += delta
	state := LikeState{Count: s.likeCount, Liked: s.liked}
	closed := s.closed
	s.mu.Unlock()

	if !closed && s.cb.OnLikes != nil {
		s.cb.OnLikes(state)
	}
}

// consumeLikes recomputes the derived like view from each full snapshot. A
// snapshot is the confirmed remote state and overwrites any optimistic delta.
func (s *Session) consumeLikes(ch <-chan []models.LikeMark) {
	defer s.wg.Done()
	for marks := range ch {
		liked := false
		for _, m := range marks {
			if m.UID == s.viewerUID {
				liked = true
				break
			}
		}

		s.mu.Lock()
		s.likeCount = len(marks)
		s.liked = liked
		state := LikeState{Count: s.likeCount, Liked: s.liked}
		closed := s.closed
		s.mu.Unlock()

		if !closed && s.cb.OnLikes != nil {
			s.cb.OnLikes(state)
		}
	}
}

func (s *Session) consumeComments(ch <-chan []models.Comment) {
	defer s.wg.Done()
	for comments := range ch {
		SortComments(comments)

		s.mu.Lock()
		s.comments = comments
		closed := s.closed
		s.mu.Unlock()

		if !closed && s.cb.OnComments != nil {
			s.cb.OnComments(comments)
		}
	}
}

// SortComments orders comments by creation timestamp ascending. Comments
// without a timestamp yet (server timestamp not resolved) keep their relative
// position, so re-delivery never reshuffles the rendered list.
func SortComments(comments []models.Comment) {
	sort.SliceStable(comments, func(i, j int) bool {
		if comments[i].CreatedAt.IsZero() || comments[j].CreatedAt.IsZero() {
			return false
		}
		return comments[i].CreatedAt.Before(comments[j].CreatedAt)
	})
}
