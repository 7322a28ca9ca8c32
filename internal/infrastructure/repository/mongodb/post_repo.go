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

// PostRepository is the MongoDB implementation of contract.IPostRepository.
type PostRepository struct {
	collection *mongo.Collection
	ids        contract.IUUIDGenerator
}

var _ contract.IPostRepository = (*PostRepository)(nil)

func NewPostRepository(db *mongo.Database, ids contract.IUUIDGenerator) *PostRepository {
	return &PostRepository{collection: db.Collection("posts"), ids: ids}
}

// List returns posts newest first, optionally restricted to one author.
func (r *PostRepository) List(ctx context.Context, userID string) ([]entity.Post, error) {
	filter := bson.M{}
	if userID != "" {
		filter["user_id"] = userID
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	posts := []entity.Post{}
	if err := cursor.All(ctx, &posts); err != nil {
		return nil, fmt.Errorf("failed to decode posts: %w", err)
	}
	return posts, nil
}

func (r *PostRepository) GetByID(ctx context.Context, id string) (*entity.Post, error) {
	var post entity.Post
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&post); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, contract.ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to get post: %w", err)
	}
	return &post, nil
}

func (r *PostRepository) Create(ctx context.Context, post *entity.Post) error {
	if post.ID == "" {
		post.ID = r.ids.NewUUID()
	}
	if post.CreatedAt.IsZero() {
		post.CreatedAt = time.Now().UTC()
	}
	if _, err := r.collection.InsertOne(ctx, post); err != nil {
		return fmt.Errorf("failed to create post: %w", err)
	}
	return nil
}

// SetLikes overwrites the like counter, floored at zero, and returns the updated post.
func (r *PostRepository) SetLikes(ctx context.Context, id string, likes int64) (*entity.Post, error) {
	update := bson.M{"$set": bson.M{"likes": entity.ClampCount(likes)}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var post entity.Post
	if err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&post); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, contract.ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to update likes: %w", err)
	}
	return &post, nil
}

// IncrementComments moves the denormalized comment counter by delta without going below zero.
func (r *PostRepository) IncrementComments(ctx context.Context, id string, delta int64) error {
	update := mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			"comments": bson.M{"$max": bson.A{0, bson.M{"$add": bson.A{bson.M{"$ifNull": bson.A{"$comments", 0}}, delta}}}},
		}}},
	}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to update comment count: %w", err)
	}
	if res.MatchedCount == 0 {
		return contract.ErrRecordNotFound
	}
	return nil
}

func (r *PostRepository) Delete(ctx context.Context, id string) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}
	if res.DeletedCount == 0 {
		return contract.ErrRecordNotFound
	}
	return nil
}
