package mongodb

import (
	"context"
	"fmt"

	"github.com/popcornsocial/popcorn/internal/domain/contract"
	"github.com/popcornsocial/popcorn/internal/domain/entity"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// countable lists the collections and fields the profile page may count on.
var countable = map[string]map[string]bool{
	"posts":             {"user_id": true},
	"collections":       {"created_by": true},
	"comments":          {"user_id": true, "post_id": true, "collection_id": true},
	"saved_collections": {"user_id": true, "collection_id": true},
	"followers":         {"follower_id": true, "following_id": true},
}

// Counter answers exact document counts.
type Counter struct {
	db *mongo.Database
}

var _ contract.ICounter = (*Counter)(nil)

func NewCounter(db *mongo.Database) *Counter {
	return &Counter{db: db}
}

// Count runs CountDocuments for Field == Value on Resource. An empty Field counts everything.
func (c *Counter) Count(ctx context.Context, q entity.CountQuery) (int64, error) {
	if err := CheckCountable(q); err != nil {
		return 0, err
	}
	filter := bson.M{}
	if q.Field != "" {
		filter[q.Field] = q.Value
	}
	n, err := c.db.Collection(q.Resource).CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", q.Resource, err)
	}
	return n, nil
}

// CheckCountable rejects queries outside the whitelist.
func CheckCountable(q entity.CountQuery) error {
	fields, ok := countable[q.Resource]
	if !ok || (q.Field != "" && !fields[q.Field]) {
		return fmt.Errorf("%w: %s.%s", contract.ErrUnsupportedCount, q.Resource, q.Field)
	}
	return nil
}
