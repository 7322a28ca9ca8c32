package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/popcornsocial/popcorn/internal/domain/contract"
	"github.com/popcornsocial/popcorn/internal/domain/entity"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// SavedCollectionRepository is the MongoDB implementation of contract.ISavedCollectionRepository.
type SavedCollectionRepository struct {
	collection *mongo.Collection
	ids        contract.IUUIDGenerator
}

var _ contract.ISavedCollectionRepository = (*SavedCollectionRepository)(nil)

func NewSavedCollectionRepository(db *mongo.Database, ids contract.IUUIDGenerator) *SavedCollectionRepository {
	return &SavedCollectionRepository{collection: db.Collection("saved_collections"), ids: ids}
}

// EnsureIndexes creates the unique (user, collection) index backing idempotent saves.
func (r *SavedCollectionRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "collection_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create saved_collections index: %w", err)
	}
	return nil
}

// Save upserts the bookmark. Saving twice keeps the first record and its id.
func (r *SavedCollectionRepository) Save(ctx context.Context, saved *entity.SavedCollection) error {
	filter := bson.M{
		"user_id":       saved.UserID,
		"collection_id": saved.CollectionID,
	}
	update := bson.M{
		"$setOnInsert": bson.M{
			"_id":      r.ids.NewUUID(),
			"saved_at": time.Now().UTC(),
		},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	if err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(saved); err != nil {
		return fmt.Errorf("failed to save collection: %w", err)
	}
	return nil
}

func (r *SavedCollectionRepository) ListByUser(ctx context.Context, userID string) ([]entity.SavedCollection, error) {
	filter := bson.M{}
	if userID != "" {
		filter["user_id"] = userID
	}
	opts := options.Find().SetSort(bson.D{{Key: "saved_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list saved collections: %w", err)
	}
	out := []entity.SavedCollection{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("failed to decode saved collections: %w", err)
	}
	return out, nil
}

func (r *SavedCollectionRepository) GetByID(ctx context.Context, id string) (*entity.SavedCollection, error) {
	var saved entity.SavedCollection
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&saved); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, contract.ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to get saved collection: %w", err)
	}
	return &saved, nil
}

func (r *SavedCollectionRepository) Delete(ctx context.Context, id string) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete saved collection: %w", err)
	}
	if res.DeletedCount == 0 {
		return contract.ErrRecordNotFound
	}
	return nil
}
