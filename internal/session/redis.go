package session

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/todayscomfort/backend/internal/models"
)

const sessionTTL = 72 * time.Hour // matches the JWT lifetime

// RedisStore implements Store on Redis
type RedisStore struct {
	rdb *redis.Client
}

// NewRedisStore creates a new RedisStore
func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func identityKey(uid string) string { return "session:identity:" + uid }
func profileKey(uid string) string  { return "session:profile:" + uid }

func (s *RedisStore) SaveIdentity(ctx context.Context, id *Identity) error {
	b, err := json.Marshal(id)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, identityKey(id.UID), b, sessionTTL).Err()
}

func (s *RedisStore) Identity(ctx context.Context, uid string) (*Identity, error) {
	val, err := s.rdb.Get(ctx, identityKey(uid)).Result()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var id Identity
	if err := json.Unmarshal([]byte(val), &id); err != nil {
		return nil, err
	}
	return &id, nil
}

func (s *RedisStore) SaveProfile(ctx context.Context, profile *models.UserProfile) error {
	b, err := json.Marshal(profile)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, profileKey(profile.UID), b, sessionTTL).Err()
}

func (s *RedisStore) Profile(ctx context.Context, uid string) (*models.UserProfile, error) {
	val, err := s.rdb.Get(ctx, profileKey(uid)).Result()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var p models.UserProfile
	if err := json.Unmarshal([]byte(val), &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Clear removes both session blobs in one command, so a sign-out can never
// leave a stale half-cleared mirror behind.
func (s *RedisStore) Clear(ctx context.Context, uid string) error {
	return s.rdb.Del(ctx, identityKey(uid), profileKey(uid)).Err()
}
