package models

import "time"

// LikeMark is a per-item, per-user presence record in the "likes" subcollection.
// The document key is the liker's UID, so one user can never hold two likes on
// the same item.
type LikeMark struct {
	UID       string    `json:"uid" firestore:"uid"`
	CreatedAt time.Time `json:"created_at" firestore:"createdAt,serverTimestamp"`
}
