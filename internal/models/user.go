package models

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// UserProfile is the "users" document keyed by Firebase UID. Nickname is
// unique across all profiles, enforced by the nickname lookup collection.
type UserProfile struct {
	UID            string    `json:"uid" firestore:"uid"`
	Nickname       string    `json:"nickname" firestore:"nickname"`
	RealName       string    `json:"real_name" firestore:"realName"`
	BirthDate      string    `json:"birth_date" firestore:"birthDate"`
	ProfileMessage string    `json:"profile_message,omitempty" firestore:"profileMessage,omitempty"`
	ProfileImg     string    `json:"profile_img,omitempty" firestore:"profileImg,omitempty"`
	Email          string    `json:"email" firestore:"email"`
	CreatedAt      time.Time `json:"created_at" firestore:"createdAt,serverTimestamp"`
}

// PublicProfile is the view of a profile other users may see
type PublicProfile struct {
	UID            string `json:"uid"`
	Nickname       string `json:"nickname"`
	ProfileMessage string `json:"profile_message,omitempty"`
	ProfileImg     string `json:"profile_img,omitempty"`
}

// ToPublic strips the fields only the owner may see
func (p *UserProfile) ToPublic() PublicProfile {
	return PublicProfile{
		UID:            p.UID,
		Nickname:       p.Nickname,
		ProfileMessage: p.ProfileMessage,
		ProfileImg:     p.ProfileImg,
	}
}

type SignupRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=6"`
	RealName  string `json:"real_name" validate:"required,min=1,max=50"`
	BirthDate string `json:"birth_date" validate:"required,datetime=2006-01-02"`
	Nickname  string `json:"nickname" validate:"required,min=2,max=20"`
}

type SignInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type UpdateProfileRequest struct {
	RealName       string `json:"real_name,omitempty" validate:"omitempty,min=1,max=50"`
	BirthDate      string `json:"birth_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	ProfileMessage string `json:"profile_message,omitempty" validate:"omitempty,max=200"`
	ProfileImg     string `json:"profile_img,omitempty" validate:"omitempty,url"`
	Nickname       string `json:"nickname,omitempty" validate:"omitempty,min=2,max=20"`
}

// JwtCustomClaims are custom claims extending standard jwt.RegisteredClaims
type JwtCustomClaims struct {
	UID   string `json:"uid"`
	Email string `json:"email"`
	jwt.RegisteredClaims
}
