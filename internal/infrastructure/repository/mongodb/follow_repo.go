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

// FollowRepository stores follow edges in the followers collection.
type FollowRepository struct {
	collection *mongo.Collection
	ids        contract.IUUIDGenerator
}

var _ contract.IFollowRepository = (*FollowRepository)(nil)

func NewFollowRepository(db *mongo.Database, ids contract.IUUIDGenerator) *FollowRepository {
	return &FollowRepository{collection: db.Collection("followers"), ids: ids}
}

// EnsureIndexes creates the unique (follower, following) index.
func (r *FollowRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "follower_id", Value: 1}, {Key: "following_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create followers index: %w", err)
	}
	return nil
}

// Follow creates the edge if it does not exist yet and fills in the stored record.
func (r *FollowRepository) Follow(ctx context.Context, follow *entity.Follow) error {
	filter := bson.M{
		"follower_id":  follow.FollowerID,
		"following_id": follow.FollowingID,
	}
	update := bson.M{
		"$setOnInsert": bson.M{
			"_id":        r.ids.NewUUID(),
			"created_at": time.Now().UTC(),
		},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	if err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(follow); err != nil {
		return fmt.Errorf("failed to follow: %w", err)
	}
	return nil
}

// Unfollow removes the edge. A missing edge is reported as not found.
func (r *FollowRepository) Unfollow(ctx context.Context, followerID, followingID string) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"follower_id": followerID, "following_id": followingID})
	if err != nil {
		return fmt.Errorf("failed to unfollow: %w", err)
	}
	if res.DeletedCount == 0 {
		return contract.ErrRecordNotFound
	}
	return nil
}

func (r *FollowRepository) GetByID(ctx context.Context, id string) (*entity.Follow, error) {
	var follow entity.Follow
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&follow); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, contract.ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to get follow: %w", err)
	}
	return &follow, nil
}

// List returns edges matching the non-empty ids.
func (r *FollowRepository) List(ctx context.Context, followerID, followingID string) ([]entity.Follow, error) {
	filter := bson.M{}
	if followerID != "" {
		filter["follower_id"] = followerID
	}
	if followingID != "" {
		filter["following_id"] = followingID
	}
	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list follows: %w", err)
	}
	out := []entity.Follow{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("failed to decode follows: %w", err)
	}
	return out, nil
}
