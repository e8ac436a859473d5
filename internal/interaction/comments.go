package interaction

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/todayscomfort/backend/internal/apperrors"
	"github.com/todayscomfort/backend/internal/models"
)

// ErrNotAllowed is returned when a requester may not delete a comment
var ErrNotAllowed = fmt.Errorf("not allowed to delete this comment")

const anonymousAuthor = "익명"

// PostComment appends a comment to an item. Empty trimmed text is a silent
// no-op (a UI guard, not an error) and returns (nil, nil). The author's
// display name is a snapshot of their profile nickname at submission time;
// if the profile cannot be read the comment is still posted as anonymous.
func PostComment(ctx context.Context, store Store, profiles ProfileReader, itemID, userID, text string) (*models.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}
	if userID == "" {
		return nil, apperrors.NewAuthRequired("로그인이 필요합니다.")
	}

	authorName := anonymousAuthor
	if profiles != nil {
		profile, err := profiles.GetProfile(ctx, userID)
		if err != nil {
			log.Printf("Failed to resolve comment author name for %s: %v\n", userID, err)
		} else if profile.Nickname != "" {
			authorName = profile.Nickname
		}
	}

	comment := &models.Comment{
		Text:       text,
		Author:     authorName,
		AuthorName: authorName,
		UID:        userID,
	}
	if err := store.AddComment(ctx, itemID, comment); err != nil {
		return nil, apperrors.NewStoreWrite("save comment", err)
	}
	return comment, nil
}

// RemoveComment deletes a comment if the requester is the comment's author or
// the feed item's owner. The item owner rule is deliberate moderation policy.
// No optimistic removal happens; the visible list changes only when the live
// subscription redelivers.
func RemoveComment(ctx context.Context, store Store, item *models.FeedItem, commentID, requesterUID string) error {
	if requesterUID == "" {
		return apperrors.NewAuthRequired("로그인이 필요합니다.")
	}

	comment, err := store.GetComment(ctx, item.ID, commentID)
	if err != nil {
		return err
	}

	if comment.UID != requesterUID && item.AuthorUID != requesterUID {
		return ErrNotAllowed
	}

	if err := store.DeleteComment(ctx, item.ID, commentID); err != nil {
		return apperrors.NewStoreWrite("delete comment", err)
	}
	return nil
}
