package interaction

import (
	"context"

	"github.com/todayscomfort/backend/internal/models"
)

// Store is the slice of the remote store the interaction engine needs for one
// feed item: like/comment writes plus the two live subscriptions. Implemented
// by the Firestore feed repository; tests use a fake.
type Store interface {
	SetLike(ctx context.Context, itemID, userID string) error
	RemoveLike(ctx context.Context, itemID, userID string) error
	WatchLikes(ctx context.Context, itemID string) (<-chan []models.LikeMark, error)

	AddComment(ctx context.Context, itemID string, comment *models.Comment) error
	GetComment(ctx context.Context, itemID, commentID string) (*models.Comment, error)
	DeleteComment(ctx context.Context, itemID, commentID string) error
	WatchComments(ctx context.Context, itemID string) (<-chan []models.Comment, error)
}

// ProfileReader resolves a user's display profile at comment-submission time
type ProfileReader interface {
	GetProfile(ctx context.Context, uid string) (*models.UserProfile, error)
}
