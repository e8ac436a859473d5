package repositories

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/todayscomfort/backend/internal/models"
)

// FollowRepository defines the interface for follow data operations
type FollowRepository interface {
	CreateFollow(follow *models.Follow) error
	DeleteFollow(followerUID, followingUID string) error
	IsFollowing(followerUID, followingUID string) (bool, error)
	GetFollowingUIDs(followerUID string) ([]string, error)
	GetFollowersCount(uid string) (int64, error)
	GetFollowingCount(uid string) (int64, error)
}

// PostgresFollowRepository implements FollowRepository for PostgreSQL
type PostgresFollowRepository struct {
	db *gorm.DB
}

// NewPostgresFollowRepository creates a new PostgresFollowRepository
func NewPostgresFollowRepository(db *gorm.DB) *PostgresFollowRepository {
	return &PostgresFollowRepository{db: db}
}

func (r *PostgresFollowRepository) CreateFollow(follow *models.Follow) error {
	return r.db.Create(follow).Error
}

func (r *PostgresFollowRepository) DeleteFollow(followerUID, followingUID string) error {
	res := r.db.Where("follower_uid = ? AND following_uid = ?", followerUID, followingUID).Delete(&models.Follow{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("follow relationship not found")
	}
	return nil
}

func (r *PostgresFollowRepository) IsFollowing(followerUID, followingUID string) (bool, error) {
	var count int64
	if err := r.db.Model(&models.Follow{}).Where("follower_uid = ? AND following_uid = ?", followerUID, followingUID).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *PostgresFollowRepository) GetFollowingUIDs(followerUID string) ([]string, error) {
	var uids []string
	err := r.db.Model(&models.Follow{}).Where("follower_uid = ?", followerUID).Pluck("following_uid", &uids).Error
	return uids, err
}

func (r *PostgresFollowRepository) GetFollowersCount(uid string) (int64, error) {
	var count int64
	err := r.db.Model(&models.Follow{}).Where("following_uid = ?", uid).Count(&count).Error
	return count, err
}

func (r *PostgresFollowRepository) GetFollowingCount(uid string) (int64, error) {
	var count int64
	err := r.db.Model(&models.Follow{}).Where("follower_uid = ?", uid).Count(&count).Error
	return count, err
}
