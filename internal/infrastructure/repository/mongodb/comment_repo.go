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

var ErrInvalidParent = errors.New("comment must reference exactly one post or collection")

// CommentRepository is the MongoDB implementation of contract.ICommentRepository.
type CommentRepository struct {
	collection *mongo.Collection
	ids        contract.IUUIDGenerator
}

var _ contract.ICommentRepository = (*CommentRepository)(nil)

func NewCommentRepository(db *mongo.Database, ids contract.IUUIDGenerator) *CommentRepository {
	return &CommentRepository{collection: db.Collection("comments"), ids: ids}
}

func parentFilter(parent entity.ParentRef) (bson.M, error) {
	switch parent.Kind {
	case entity.TargetKindPost:
		return bson.M{"post_id": parent.ID}, nil
	case entity.TargetKindCollection:
		return bson.M{"collection_id": parent.ID}, nil
	default:
		return nil, ErrInvalidParent
	}
}

// ListByParent returns the comments of a post or collection, oldest first.
func (r *CommentRepository) ListByParent(ctx context.Context, parent entity.ParentRef) ([]entity.Comment, error) {
	filter, err := parentFilter(parent)
	if err != nil {
		return nil, err
	}
	return r.find(ctx, filter)
}

// ListByUser returns every comment written by userID, oldest first.
func (r *CommentRepository) ListByUser(ctx context.Context, userID string) ([]entity.Comment, error) {
	return r.find(ctx, bson.M{"user_id": userID})
}

func (r *CommentRepository) find(ctx context.Context, filter bson.M) ([]entity.Comment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	comments := []entity.Comment{}
	if err := cursor.All(ctx, &comments); err != nil {
		return nil, fmt.Errorf("failed to decode comments: %w", err)
	}
	return comments, nil
}

func (r *CommentRepository) GetByID(ctx context.Context, id string) (*entity.Comment, error) {
	var comment entity.Comment
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&comment); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, contract.ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to get comment: %w", err)
	}
	return &comment, nil
}

// Create assigns the id and timestamp and inserts the comment.
func (r *CommentRepository) Create(ctx context.Context, comment *entity.Comment) error {
	if (comment.PostID == "") == (comment.CollectionID == "") {
		return ErrInvalidParent
	}
	comment.ID = r.ids.NewUUID()
	comment.CreatedAt = time.Now().UTC()

	if _, err := r.collection.InsertOne(ctx, comment); err != nil {
		return fmt.Errorf("failed to create comment: %w", err)
	}
	return nil
}

func (r *CommentRepository) Delete(ctx context.Context, id string) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}
	if res.DeletedCount == 0 {
		return contract.ErrRecordNotFound
	}
	return nil
}
