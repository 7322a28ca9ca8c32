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

// CollectionRepository is the MongoDB implementation of contract.ICollectionRepository.
type CollectionRepository struct {
	collection *mongo.Collection
	ids        contract.IUUIDGenerator
}

var _ contract.ICollectionRepository = (*CollectionRepository)(nil)

func NewCollectionRepository(db *mongo.Database, ids contract.IUUIDGenerator) *CollectionRepository {
	return &CollectionRepository{collection: db.Collection("collections"), ids: ids}
}

func (r *CollectionRepository) List(ctx context.Context, createdBy string) ([]entity.Collection, error) {
	filter := bson.M{}
	if createdBy != "" {
		filter["created_by"] = createdBy
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list collections: %w", err)
	}
	out := []entity.Collection{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("failed to decode collections: %w", err)
	}
	return out, nil
}

func (r *CollectionRepository) GetByID(ctx context.Context, id string) (*entity.Collection, error) {
	var c entity.Collection
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, contract.ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to get collection: %w", err)
	}
	return &c, nil
}

func (r *CollectionRepository) Create(ctx context.Context, c *entity.Collection) error {
	if c.ID == "" {
		c.ID = r.ids.NewUUID()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	if c.Movies == nil {
		c.Movies = []string{}
	}
	c.MoviesCount = len(c.Movies)
	if _, err := r.collection.InsertOne(ctx, c); err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}
	return nil
}

func (r *CollectionRepository) SetLikes(ctx context.Context, id string, likes int64) (*entity.Collection, error) {
	update := bson.M{"$set": bson.M{"likes": entity.ClampCount(likes)}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var c entity.Collection
	if err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&c); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, contract.ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to update likes: %w", err)
	}
	return &c, nil
}

func (r *CollectionRepository) Delete(ctx context.Context, id string) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete collection: %w", err)
	}
	if res.DeletedCount == 0 {
		return contract.ErrRecordNotFound
	}
	return nil
}
