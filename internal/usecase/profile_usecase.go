package usecase

import (
	"context"
	"fmt"

	"github.com/popcornsocial/popcorn/internal/domain/contract"
	"github.com/popcornsocial/popcorn/internal/domain/entity"
	usecasecontract "github.com/popcornsocial/popcorn/internal/usecase/contract"
	"golang.org/x/sync/errgroup"
)

// ProfileBackend is what the profile page reads from.
type ProfileBackend interface {
	contract.IProfileBackend
	ListPostsByUser(ctx context.Context, userID string) ([]entity.Post, error)
}

// ProfileUsecase loads the aggregates of a profile page.
type ProfileUsecase struct {
	backend ProfileBackend
}

var _ usecasecontract.IProfileUseCase = (*ProfileUsecase)(nil)

// NewProfileUsecase creates a ProfileUsecase.
func NewProfileUsecase(backend ProfileBackend) *ProfileUsecase {
	return &ProfileUsecase{backend: backend}
}

// LoadStats fetches the profile counters of userID concurrently.
func (u *ProfileUsecase) LoadStats(ctx context.Context, userID string) (*entity.ProfileStats, error) {
	var stats entity.ProfileStats
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		posts, err := u.backend.ListPostsByUser(gctx, userID)
		if err != nil {
			return fmt.Errorf("posts: %w", err)
		}
		stats.Reviews = int64(len(posts))
		for _, p := range posts {
			stats.Likes += p.Likes
		}
		return nil
	})

	counts := []struct {
		dest  *int64
		query entity.CountQuery
	}{
		{&stats.Collections, entity.CountQuery{Resource: "collections", Field: "created_by", Value: userID}},
		{&stats.Saved, entity.CountQuery{Resource: "saved_collections", Field: "user_id", Value: userID}},
		{&stats.Comments, entity.CountQuery{Resource: "comments", Field: "user_id", Value: userID}},
		{&stats.Followers, entity.CountQuery{Resource: "followers", Field: "following_id", Value: userID}},
		{&stats.Following, entity.CountQuery{Resource: "followers", Field: "follower_id", Value: userID}},
	}
	for _, c := range counts {
		c := c
		g.Go(func() error {
			n, err := u.backend.Count(gctx, c.query)
			if err != nil {
				return fmt.Errorf("%s by %s: %w", c.query.Resource, c.query.Field, err)
			}
			*c.dest = n
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load profile stats for %s: %w", userID, err)
	}
	return &stats, nil
}

// FollowState reports whether the session user follows userID.
// It is false on one's own profile and when nobody is signed in.
func (u *ProfileUsecase) FollowState(ctx context.Context, userID string) (bool, error) {
	sess, ok := entity.SessionFromContext(ctx)
	if !ok || sess.UserID == "" || sess.UserID == userID {
		return false, nil
	}
	following, err := u.backend.IsFollowing(ctx, sess.UserID, userID)
	if err != nil {
		return false, fmt.Errorf("failed to read follow state: %w", err)
	}
	return following, nil
}
