package models

import "time"

// Comment belongs to exactly one FeedItem and lives in its "comments"
// subcollection. AuthorName is a snapshot of the author's nickname at
// submission time; renaming later does not rewrite old comments.
type Comment struct {
	ID         string    `json:"id" firestore:"-"`
	Text       string    `json:"text" firestore:"text"`
	Author     string    `json:"author" firestore:"author"`
	AuthorName string    `json:"author_name" firestore:"authorName"`
	UID        string    `json:"uid" firestore:"uid"`
	CreatedAt  time.Time `json:"created_at,omitempty" firestore:"createdAt,serverTimestamp"`
}

// CreateCommentRequest defines the request body for commenting on a feed item
type CreateCommentRequest struct {
	Text string `json:"text" validate:"max=500"`
}
