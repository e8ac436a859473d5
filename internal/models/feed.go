package models

import "time"

// FeedItem represents one posted card in the shared "feeds" collection.
// Immutable once created; its like/comment aggregates live in subcollections.
type FeedItem struct {
	ID         string    `json:"id" firestore:"-"`
	Content    string    `json:"content" firestore:"content"`
	ImageURL   string    `json:"image_url,omitempty" firestore:"imageUrl,omitempty"`
	AuthorUID  string    `json:"author_uid" firestore:"authorUid"`
	AuthorName string    `json:"author_name" firestore:"authorName"`
	AuthorImg  string    `json:"author_img,omitempty" firestore:"authorImg,omitempty"`
	CreatedAt  time.Time `json:"created_at" firestore:"createdAt,serverTimestamp"`
}

// CreateFeedItemRequest defines the request body for posting a card to the feed
type CreateFeedItemRequest struct {
	Content  string `json:"content" validate:"required,min=1,max=1000"`
	ImageURL string `json:"image_url,omitempty" validate:"omitempty,url"`
}
