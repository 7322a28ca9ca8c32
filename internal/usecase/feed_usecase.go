package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/popcornsocial/popcorn/internal/domain/contract"
	"github.com/popcornsocial/popcorn/internal/domain/entity"
	usecasecontract "github.com/popcornsocial/popcorn/internal/usecase/contract"
)

// FeedUsecase holds the loaded posts and collections.
// Deletions are confirm-then-remove: an item leaves the local list only after the backend agreed.
type FeedUsecase struct {
	backend contract.IFeedBackend
	logger  usecasecontract.IAppLogger

	mu          sync.RWMutex
	posts       []entity.Post
	collections []entity.Collection
}

var _ usecasecontract.IFeedUseCase = (*FeedUsecase)(nil)

// NewFeedUsecase creates a FeedUsecase.
func NewFeedUsecase(backend contract.IFeedBackend, logger usecasecontract.IAppLogger) *FeedUsecase {
	return &FeedUsecase{backend: backend, logger: logger}
}

// LoadPosts fetches the post feed.
func (u *FeedUsecase) LoadPosts(ctx context.Context) ([]entity.Post, error) {
	posts, err := u.backend.ListPosts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load feed: %w", err)
	}
	u.mu.Lock()
	u.posts = posts
	u.mu.Unlock()
	return u.Posts(), nil
}

// LoadCollections fetches the visible collections.
func (u *FeedUsecase) LoadCollections(ctx context.Context) ([]entity.Collection, error) {
	collections, err := u.backend.ListCollections(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load collections: %w", err)
	}
	u.mu.Lock()
	u.collections = collections
	u.mu.Unlock()
	return u.Collections(), nil
}

// Posts returns a copy of the loaded posts.
func (u *FeedUsecase) Posts() []entity.Post {
	u.mu.RLock()
	defer u.mu.RUnlock()
	out := make([]entity.Post, len(u.posts))
	copy(out, u.posts)
	return out
}

// Collections returns a copy of the loaded collections.
func (u *FeedUsecase) Collections() []entity.Collection {
	u.mu.RLock()
	defer u.mu.RUnlock()
	out := make([]entity.Collection, len(u.collections))
	copy(out, u.collections)
	return out
}

// SearchCollections filters the loaded collections by a case-insensitive title match.
func (u *FeedUsecase) SearchCollections(query string) []entity.Collection {
	query = strings.ToLower(strings.TrimSpace(query))
	u.mu.RLock()
	defer u.mu.RUnlock()
	out := make([]entity.Collection, 0, len(u.collections))
	for _, c := range u.collections {
		if strings.Contains(strings.ToLower(c.Title), query) {
			out = append(out, c)
		}
	}
	return out
}

// CreatePost publishes a review and puts it at the top of the feed.
// Ratings are on a 0 to 5 star scale.
func (u *FeedUsecase) CreatePost(ctx context.Context, draft entity.PostDraft) (*entity.Post, error) {
	op := "create post"
	if _, err := entity.RequireSession(ctx, op); err != nil {
		return nil, err
	}
	draft.MovieTitle = strings.TrimSpace(draft.MovieTitle)
	draft.ReviewText = strings.TrimSpace(draft.ReviewText)
	switch {
	case draft.MovieTitle == "":
		return nil, fmt.Errorf("movie title is required")
	case draft.ReviewText == "":
		return nil, fmt.Errorf("review text is required")
	case draft.Rating < 0 || draft.Rating > 5:
		return nil, fmt.Errorf("rating must be between 0 and 5, got %d", draft.Rating)
	}

	post, err := u.backend.CreatePost(ctx, draft)
	if err != nil {
		return nil, entity.AsMutationError(op, err)
	}
	u.mu.Lock()
	u.posts = append([]entity.Post{*post}, u.posts...)
	u.mu.Unlock()
	return post, nil
}

// CreateCollection creates a collection and puts it at the top of the list.
func (u *FeedUsecase) CreateCollection(ctx context.Context, draft entity.CollectionDraft) (*entity.Collection, error) {
	op := "create collection"
	if _, err := entity.RequireSession(ctx, op); err != nil {
		return nil, err
	}
	draft.Title = strings.TrimSpace(draft.Title)
	if draft.Title == "" {
		return nil, fmt.Errorf("collection title is required")
	}

	col, err := u.backend.CreateCollection(ctx, draft)
	if err != nil {
		return nil, entity.AsMutationError(op, err)
	}
	u.mu.Lock()
	u.collections = append([]entity.Collection{*col}, u.collections...)
	u.mu.Unlock()
	return col, nil
}

// DeletePost deletes one of the session user's posts.
func (u *FeedUsecase) DeletePost(ctx context.Context, id string) error {
	op := "delete post " + id
	sess, err := entity.RequireSession(ctx, op)
	if err != nil {
		return err
	}

	u.mu.RLock()
	idx := u.postIndex(id)
	var owner string
	if idx >= 0 {
		owner = u.posts[idx].UserID
	}
	u.mu.RUnlock()
	if idx < 0 {
		return entity.NewMutationError(entity.ErrorKindNotFound, op, nil)
	}
	if owner != sess.UserID {
		return entity.NewMutationError(entity.ErrorKindPermissionDenied, op, fmt.Errorf("post belongs to %s", owner))
	}

	if err := u.backend.DeletePost(ctx, id); err != nil {
		u.logger.Warnf("%s failed, keeping it in the feed: %v", op, err)
		return entity.AsMutationError(op, err)
	}

	u.mu.Lock()
	if i := u.postIndex(id); i >= 0 {
		u.posts = append(u.posts[:i:i], u.posts[i+1:]...)
	}
	u.mu.Unlock()
	return nil
}

// DeleteCollection deletes one of the session user's collections.
func (u *FeedUsecase) DeleteCollection(ctx context.Context, id string) error {
	op := "delete collection " + id
	sess, err := entity.RequireSession(ctx, op)
	if err != nil {
		return err
	}

	u.mu.RLock()
	idx := u.collectionIndex(id)
	var owner string
	if idx >= 0 {
		owner = u.collections[idx].CreatedBy
	}
	u.mu.RUnlock()
	if idx < 0 {
		return entity.NewMutationError(entity.ErrorKindNotFound, op, nil)
	}
	if owner != sess.UserID {
		return entity.NewMutationError(entity.ErrorKindPermissionDenied, op, fmt.Errorf("collection belongs to %s", owner))
	}

	if err := u.backend.DeleteCollection(ctx, id); err != nil {
		u.logger.Warnf("%s failed, keeping it in the list: %v", op, err)
		return entity.AsMutationError(op, err)
	}

	u.mu.Lock()
	if i := u.collectionIndex(id); i >= 0 {
		u.collections = append(u.collections[:i:i], u.collections[i+1:]...)
	}
	u.mu.Unlock()
	return nil
}

func (u *FeedUsecase) postIndex(id string) int {
	for i, p := range u.posts {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func (u *FeedUsecase) collectionIndex(id string) int {
	for i, c := range u.collections {
		if c.ID == id {
			return i
		}
	}
	return -1
}
