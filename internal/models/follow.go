package models

import "time"

// Follow represents one user following another, keyed by Firebase UIDs
type Follow struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	FollowerUID  string    `json:"follower_uid" gorm:"index;uniqueIndex:idx_follower_following"`
	FollowingUID string    `json:"following_uid" gorm:"index;uniqueIndex:idx_follower_following"`
	CreatedAt    time.Time `json:"created_at"`
}
