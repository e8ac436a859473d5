package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// GeneratedCard is the structured result of the card generation gateway
type GeneratedCard struct {
	Quote   string `json:"quote"`
	Author  string `json:"author"`
	Message string `json:"message"`
}

// Card is a user's private saved card (generated or hand-decorated, not
// necessarily posted to the feed), stored in MongoDB.
type Card struct {
	ID        primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	OwnerUID  string             `json:"owner_uid" bson:"owner_uid"`
	Text      string             `json:"text" bson:"text"`
	ImageURL  string             `json:"image_url,omitempty" bson:"image_url,omitempty"`
	Mode      string             `json:"mode" bson:"mode"` // "ai" or "retro"
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time          `json:"updated_at" bson:"updated_at"`
}

// GenerateCardRequest defines the request body for generating an AI card
type GenerateCardRequest struct {
	Mood string `json:"mood"`
}

// SaveCardRequest defines the request body for saving a card to the archive
type SaveCardRequest struct {
	Text     string `json:"text" validate:"required,min=1,max=1000"`
	ImageURL string `json:"image_url,omitempty" validate:"omitempty,url"`
	Mode     string `json:"mode" validate:"required,oneof=ai retro"`
}

// UpdateCardRequest defines the request body for editing a saved card
type UpdateCardRequest struct {
	Text     string `json:"text,omitempty" validate:"omitempty,min=1,max=1000"`
	ImageURL string `json:"image_url,omitempty" validate:"omitempty,url"`
}
