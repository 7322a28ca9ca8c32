package usecasecontract

import (
	"context"

	"github.com/popcornsocial/popcorn/internal/domain/entity"
)

// IFeedUseCase holds the loaded feed and applies destructive actions to it.
type IFeedUseCase interface {
	LoadPosts(ctx context.Context) ([]entity.Post, error)
	LoadCollections(ctx context.Context) ([]entity.Collection, error)
	Posts() []entity.Post
	Collections() []entity.Collection
	SearchCollections(query string) []entity.Collection
	CreatePost(ctx context.Context, draft entity.PostDraft) (*entity.Post, error)
	CreateCollection(ctx context.Context, draft entity.CollectionDraft) (*entity.Collection, error)
	DeletePost(ctx context.Context, id string) error
	DeleteCollection(ctx context.Context, id string) error
}

// IProfileUseCase loads profile level aggregates.
type IProfileUseCase interface {
	LoadStats(ctx context.Context, userID string) (*entity.ProfileStats, error)
	FollowState(ctx context.Context, userID string) (bool, error)
}
