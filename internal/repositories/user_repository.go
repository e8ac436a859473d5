package repositories

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/todayscomfort/backend/internal/models"
)

// ErrNicknameTaken is returned when a nickname reservation loses to an
// existing profile
var ErrNicknameTaken = fmt.Errorf("nickname already taken")

// ErrProfileNotFound is returned when no profile document exists for a UID
var ErrProfileNotFound = fmt.Errorf("user profile not found")

// UserRepository defines the interface for user profile data operations
type UserRepository interface {
	CreateProfile(ctx context.Context, profile *models.UserProfile) error
	GetProfile(ctx context.Context, uid string) (*models.UserProfile, error)
	UpdateProfile(ctx context.Context, profile *models.UserProfile) error
	RenameNickname(ctx context.Context, uid, oldNickname, newNickname string) error
	NicknameAvailable(ctx context.Context, nickname string) (bool, error)
}

// FirestoreUserRepository implements UserRepository on the "users" collection.
// Nickname uniqueness is enforced through a "nicknames" lookup collection
// whose document key is the nickname itself, written in the same transaction
// as the profile, so two concurrent sign-ups cannot both claim one.
type FirestoreUserRepository struct {
	client *firestore.Client
}

// NewFirestoreUserRepository creates a new FirestoreUserRepository
func NewFirestoreUserRepository(client *firestore.Client) *FirestoreUserRepository {
	return &FirestoreUserRepository{client: client}
}

func (r *FirestoreUserRepository) users() *firestore.CollectionRef {
	return r.client.Collection("users")
}

func (r *FirestoreUserRepository) nicknames() *firestore.CollectionRef {
	return r.client.Collection("nicknames")
}

// CreateProfile creates the profile document and its nickname claim atomically
func (r *FirestoreUserRepository) CreateProfile(ctx context.Context, profile *models.UserProfile) error {
	userRef := r.users().Doc(profile.UID)
	nickRef := r.nicknames().Doc(profile.Nickname)

	return r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if _, err := tx.Get(nickRef); err == nil {
			return ErrNicknameTaken
		} else if status.Code(err) != codes.NotFound {
			return err
		}
		if err := tx.Create(nickRef, map[string]interface{}{"uid": profile.UID}); err != nil {
			return err
		}
		return tx.Create(userRef, profile)
	})
}

// GetProfile retrieves a profile by UID
func (r *FirestoreUserRepository) GetProfile(ctx context.Context, uid string) (*models.UserProfile, error) {
	snap, err := r.users().Doc(uid).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	var profile models.UserProfile
	if err := snap.DataTo(&profile); err != nil {
		return nil, err
	}
	profile.UID = snap.Ref.ID
	return &profile, nil
}

// UpdateProfile overwrites the profile document. Nickname changes must go
// through RenameNickname instead so the claim moves with them.
func (r *FirestoreUserRepository) UpdateProfile(ctx context.Context, profile *models.UserProfile) error {
	_, err := r.users().Doc(profile.UID).Set(ctx, profile)
	return err
}

// RenameNickname moves the nickname claim and updates the profile in one
// transaction. Old comments keep the display name they copied at write time.
func (r *FirestoreUserRepository) RenameNickname(ctx context.Context, uid, oldNickname, newNickname string) error {
	userRef := r.users().Doc(uid)
	oldRef := r.nicknames().Doc(oldNickname)
	newRef := r.nicknames().Doc(newNickname)

	return r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if _, err := tx.Get(newRef); err == nil {
			return ErrNicknameTaken
		} else if status.Code(err) != codes.NotFound {
			return err
		}
		if err := tx.Create(newRef, map[string]interface{}{"uid": uid}); err != nil {
			return err
		}
		if err := tx.Delete(oldRef); err != nil {
			return err
		}
		return tx.Update(userRef, []firestore.Update{{Path: "nickname", Value: newNickname}})
	})
}

// NicknameAvailable reports whether a nickname is unclaimed. Advisory only;
// CreateProfile and RenameNickname re-check inside their transactions.
func (r *FirestoreUserRepository) NicknameAvailable(ctx context.Context, nickname string) (bool, error) {
	_, err := r.nicknames().Doc(nickname).Get(ctx)
	if err == nil {
		return false, nil
	}
	if status.Code(err) == codes.NotFound {
		return true, nil
	}
	return false, err
}
