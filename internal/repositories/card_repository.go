package repositories

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/todayscomfort/backend/internal/models"
)

// CardRepository defines the interface for the private card archive
type CardRepository interface {
	CreateCard(ctx context.Context, card *models.Card) error
	GetCardByID(ctx context.Context, id string) (*models.Card, error)
	GetCardsByOwner(ctx context.Context, ownerUID string) ([]models.Card, error)
	UpdateCard(ctx context.Context, id string, card *models.Card) error
	DeleteCard(ctx context.Context, id string) error
}

// MongoCardRepository implements CardRepository for MongoDB
type MongoCardRepository struct {
	collection *mongo.Collection
}

// NewMongoCardRepository creates a new MongoCardRepository
func NewMongoCardRepository(db *mongo.Database) *MongoCardRepository {
	return &MongoCardRepository{collection: db.Collection("cards")}
}

// CreateCard saves a new card to the archive
func (r *MongoCardRepository) CreateCard(ctx context.Context, card *models.Card) error {
	card.ID = primitive.NewObjectID()
	card.CreatedAt = time.Now()
	card.UpdatedAt = time.Now()
	_, err := r.collection.InsertOne(ctx, card)
	return err
}

// GetCardByID retrieves a card by ID
func (r *MongoCardRepository) GetCardByID(ctx context.Context, id string) (*models.Card, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid card ID format: %w", err)
	}

	var card models.Card
	err = r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&card)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("card not found")
		}
		return nil, err
	}
	return &card, nil
}

// GetCardsByOwner retrieves a user's saved cards, newest first
func (r *MongoCardRepository) GetCardsByOwner(ctx context.Context, ownerUID string) ([]models.Card, error) {
	var cards []models.Card
	findOptions := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"owner_uid": ownerUID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &cards); err != nil {
		return nil, err
	}
	return cards, nil
}

// UpdateCard updates a saved card's text and background
func (r *MongoCardRepository) UpdateCard(ctx context.Context, id string, card *models.Card) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid card ID format: %w", err)
	}

	card.UpdatedAt = time.Now()
	update := bson.M{
		"$set": bson.M{
			"text":       card.Text,
			"image_url":  card.ImageURL,
			"updated_at": card.UpdatedAt,
		},
	}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": objID}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("card not found")
	}
	return nil
}

// DeleteCard deletes a card from the archive
func (r *MongoCardRepository) DeleteCard(ctx context.Context, id string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid card ID format: %w", err)
	}

	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": objID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("card not found")
	}
	return nil
}
