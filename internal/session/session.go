package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/todayscomfort/backend/internal/models"
)

// ErrNotFound is returned when no session entry exists for a user
var ErrNotFound = errors.New("session not found")

// Identity is the session-identity blob written at sign-in and consulted by
// the session guard on every request.
type Identity struct {
	UID       string    `json:"uid"`
	Email     string    `json:"email"`
	Nickname  string    `json:"nickname"`
	SignedIn  time.Time `json:"signed_in"`
}

// Store is the server-side session mirror: an identity blob plus a cached
// display profile per user, both written at sign-in and cleared together at
// sign-out. A missing identity means signed-out.
type Store interface {
	SaveIdentity(ctx context.Context, id *Identity) error
	Identity(ctx context.Context, uid string) (*Identity, error)
	SaveProfile(ctx context.Context, profile *models.UserProfile) error
	Profile(ctx context.Context, uid string) (*models.UserProfile, error)
	Clear(ctx context.Context, uid string) error
}

// MemoryStore is an in-process Store used in tests
type MemoryStore struct {
	mu         sync.RWMutex
	identities map[string]*Identity
	profiles   map[string]*models.UserProfile
}

// NewMemoryStore creates an empty MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		identities: make(map[string]*Identity),
		profiles:   make(map[string]*models.UserProfile),
	}
}

func (s *MemoryStore) SaveIdentity(_ context.Context, id *Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.identities[id.UID] = id
	return nil
}

func (s *MemoryStore) Identity(_ context.Context, uid string) (*Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.identities[uid]
	if !ok {
		return nil, ErrNotFound
	}
	return id, nil
}

func (s *MemoryStore) SaveProfile(_ context.Context, profile *models.UserProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[profile.UID] = profile
	return nil
}

func (s *MemoryStore) Profile(_ context.Context, uid string) (*models.UserProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[uid]
	if !ok {
		return nil, ErrNotFound
	}
	return p, nil
}

func (s *MemoryStore) Clear(_ context.Context, uid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.identities, uid)
	delete(s.profiles, uid)
	return nil
}
