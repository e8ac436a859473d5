package repositories

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/todayscomfort/backend/internal/models"
)

const writeTimeout = 10 * time.Second

// FeedRepository defines the interface for feed item, like and comment data
// operations, including the live subscriptions the interaction engine mounts.
type FeedRepository interface {
	CreateFeedItem(ctx context.Context, item *models.FeedItem) error
	GetFeedItem(ctx context.Context, id string) (*models.FeedItem, error)
	GetAllFeedItems(ctx context.Context, skip, limit int) ([]models.FeedItem, error)
	DeleteFeedItem(ctx context.Context, id string) error

	SetLike(ctx context.Context, itemID, userID string) error
	RemoveLike(ctx context.Context, itemID, userID string) error
	GetLikes(ctx context.Context, itemID string) ([]models.LikeMark, error)
	WatchLikes(ctx context.Context, itemID string) (<-chan []models.LikeMark, error)

	AddComment(ctx context.Context, itemID string, comment *models.Comment) error
	GetComment(ctx context.Context, itemID, commentID string) (*models.Comment, error)
	GetComments(ctx context.Context, itemID string) ([]models.Comment, error)
	DeleteComment(ctx context.Context, itemID, commentID string) error
	WatchComments(ctx context.Context, itemID string) (<-chan []models.Comment, error)
}

// FirestoreFeedRepository implements FeedRepository on the "feeds" collection
// with "likes" and "comments" subcollections per item
type FirestoreFeedRepository struct {
	client *firestore.Client
}

// NewFirestoreFeedRepository creates a new FirestoreFeedRepository
func NewFirestoreFeedRepository(client *firestore.Client) *FirestoreFeedRepository {
	return &FirestoreFeedRepository{client: client}
}

func (r *FirestoreFeedRepository) feeds() *firestore.CollectionRef {
	return r.client.Collection("feeds")
}

func (r *FirestoreFeedRepository) likes(itemID string) *firestore.CollectionRef {
	return r.feeds().Doc(itemID).Collection("likes")
}

func (r *FirestoreFeedRepository) comments(itemID string) *firestore.CollectionRef {
	return r.feeds().Doc(itemID).Collection("comments")
}

// CreateFeedItem creates a new feed document; the ID is assigned by the store
func (r *FirestoreFeedRepository) CreateFeedItem(ctx context.Context, item *models.FeedItem) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	ref, _, err := r.feeds().Add(ctx, item)
	if err != nil {
		return err
	}
	item.ID = ref.ID
	return nil
}

// GetFeedItem retrieves one feed document by ID
func (r *FirestoreFeedRepository) GetFeedItem(ctx context.Context, id string) (*models.FeedItem, error) {
	snap, err := r.feeds().Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("feed item not found")
		}
		return nil, err
	}
	var item models.FeedItem
	if err := snap.DataTo(&item); err != nil {
		return nil, err
	}
	item.ID = snap.Ref.ID
	return &item, nil
}

// GetAllFeedItems retrieves feed documents newest first
func (r *FirestoreFeedRepository) GetAllFeedItems(ctx context.Context, skip, limit int) ([]models.FeedItem, error) {
	q := r.feeds().OrderBy("createdAt", firestore.Desc).Offset(skip).Limit(limit)
	docs, err := q.Documents(ctx).GetAll()
	if err != nil {
		return nil, err
	}

	items := make([]models.FeedItem, 0, len(docs))
	for _, d := range docs {
		var item models.FeedItem
		if err := d.DataTo(&item); err != nil {
			continue
		}
		item.ID = d.Ref.ID
		items = append(items, item)
	}
	return items, nil
}

// DeleteFeedItem deletes one feed document
func (r *FirestoreFeedRepository) DeleteFeedItem(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	_, err := r.feeds().Doc(id).Delete(ctx)
	return err
}

// SetLike creates the caller's LikeMark. The document key is the user ID, so
// repeated sets are idempotent and duplicate likes cannot exist.
func (r *FirestoreFeedRepository) SetLike(ctx context.Context, itemID, userID string) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	_, err := r.likes(itemID).Doc(userID).Set(ctx, map[string]interface{}{
		"uid":       userID,
		"createdAt": firestore.ServerTimestamp,
	})
	return err
}

// RemoveLike deletes the caller's LikeMark
func (r *FirestoreFeedRepository) RemoveLike(ctx context.Context, itemID, userID string) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	_, err := r.likes(itemID).Doc(userID).Delete(ctx)
	return err
}

// GetLikes retrieves the full LikeMark set for an item
func (r *FirestoreFeedRepository) GetLikes(ctx context.Context, itemID string) ([]models.LikeMark, error) {
	docs, err := r.likes(itemID).Documents(ctx).GetAll()
	if err != nil {
		return nil, err
	}
	return likeMarks(docs), nil
}

// WatchLikes opens a live subscription over an item's LikeMark set. The full
// current snapshot is redelivered on every change. The channel closes when ctx
// is cancelled or the stream fails.
func (r *FirestoreFeedRepository) WatchLikes(ctx context.Context, itemID string) (<-chan []models.LikeMark, error) {
	it := r.likes(itemID).Snapshots(ctx)
	ch := make(chan []models.LikeMark)

	go func() {
		defer close(ch)
		defer it.Stop()
		for {
			snap, err := it.Next()
			if err != nil {
				return
			}
			docs, err := snap.Documents.GetAll()
			if err != nil {
				return
			}
			select {
			case ch <- likeMarks(docs):
			case <-ctx.Done():
				return
			}
		}
	}()

	return ch, nil
}

// AddComment appends a comment to an item; the comment ID is store-assigned
// and the timestamp server-assigned
func (r *FirestoreFeedRepository) AddComment(ctx context.Context, itemID string, comment *models.Comment) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	ref, _, err := r.comments(itemID).Add(ctx, comment)
	if err != nil {
		return err
	}
	comment.ID = ref.ID
	return nil
}

// GetComment retrieves one comment by ID
func (r *FirestoreFeedRepository) GetComment(ctx context.Context, itemID, commentID string) (*models.Comment, error) {
	snap, err := r.comments(itemID).Doc(commentID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("comment not found")
		}
		return nil, err
	}
	var c models.Comment
	if err := snap.DataTo(&c); err != nil {
		return nil, err
	}
	c.ID = snap.Ref.ID
	return &c, nil
}

// GetComments retrieves the full comment set for an item, unordered; callers
// sort by creation timestamp
func (r *FirestoreFeedRepository) GetComments(ctx context.Context, itemID string) ([]models.Comment, error) {
	docs, err := r.comments(itemID).Documents(ctx).GetAll()
	if err != nil {
		return nil, err
	}
	return commentList(docs), nil
}

// DeleteComment deletes one comment
func (r *FirestoreFeedRepository) DeleteComment(ctx context.Context, itemID, commentID string) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	_, err := r.comments(itemID).Doc(commentID).Delete(ctx)
	return err
}

// WatchComments opens a live subscription over an item's comment set,
// redelivering the full snapshot on every change
func (r *FirestoreFeedRepository) WatchComments(ctx context.Context, itemID string) (<-chan []models.Comment, error) {
	it := r.comments(itemID).Snapshots(ctx)
	ch := make(chan []models.Comment)

	go func() {
		defer close(ch)
		defer it.Stop()
		for {
			snap, err := it.Next()
			if err != nil {
				return
			}
			docs, err := snap.Documents.GetAll()
			if err != nil {
				return
			}
			select {
			case ch <- commentList(docs):
			case <-ctx.Done():
				return
			}
		}
	}()

	return ch, nil
}

func likeMarks(docs []*firestore.DocumentSnapshot) []models.LikeMark {
	marks := make([]models.LikeMark, 0, len(docs))
	for _, d := range docs {
		var m models.LikeMark
		if err := d.DataTo(&m); err != nil {
			continue
		}
		if m.UID == "" {
			m.UID = d.Ref.ID
		}
		marks = append(marks, m)
	}
	return marks
}

func commentList(docs []*firestore.DocumentSnapshot) []models.Comment {
	comments := make([]models.Comment, 0, len(docs))
	for _, d := range docs {
		var c models.Comment
		if err := d.DataTo(&c); err != nil {
			continue
		}
		c.ID = d.Ref.ID
		comments = append(comments, c)
	}
	return comments
}
