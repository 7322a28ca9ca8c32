package contract

import (
	"context"
	"errors"

	"github.com/popcornsocial/popcorn/internal/domain/entity"
)

var (
	// ErrRecordNotFound is returned by repositories when no document matches.
	ErrRecordNotFound = errors.New("record not found")
	// ErrDuplicateEmail is returned when registering an email that is already taken.
	ErrDuplicateEmail = errors.New("email already registered")
	// ErrUnsupportedCount is returned for count queries outside the whitelist.
	ErrUnsupportedCount = errors.New("unsupported count query")
)

// IPostRepository persists posts for the mock REST backend.
type IPostRepository interface {
	List(ctx context.Context, userID string) ([]entity.Post, error)
	GetByID(ctx context.Context, id string) (*entity.Post, error)
	Create(ctx context.Context, post *entity.Post) error
	SetLikes(ctx context.Context, id string, likes int64) (*entity.Post, error)
	IncrementComments(ctx context.Context, id string, delta int64) error
	Delete(ctx context.Context, id string) error
}

// ICollectionRepository persists collections.
type ICollectionRepository interface {
	List(ctx context.Context, createdBy string) ([]entity.Collection, error)
	GetByID(ctx context.Context, id string) (*entity.Collection, error)
	Create(ctx context.Context, collection *entity.Collection) error
	SetLikes(ctx context.Context, id string, likes int64) (*entity.Collection, error)
	Delete(ctx context.Context, id string) error
}

// ICommentRepository persists comments.
type ICommentRepository interface {
	ListByParent(ctx context.Context, parent entity.ParentRef) ([]entity.Comment, error)
	ListByUser(ctx context.Context, userID string) ([]entity.Comment, error)
	GetByID(ctx context.Context, id string) (*entity.Comment, error)
	Create(ctx context.Context, comment *entity.Comment) error
	Delete(ctx context.Context, id string) error
}

// ISavedCollectionRepository persists saved collections. Save is idempotent per user and collection.
type ISavedCollectionRepository interface {
	Save(ctx context.Context, saved *entity.SavedCollection) error
	ListByUser(ctx context.Context, userID string) ([]entity.SavedCollection, error)
	GetByID(ctx context.Context, id string) (*entity.SavedCollection, error)
	Delete(ctx context.Context, id string) error
}

// IFollowRepository persists follow edges. Follow is idempotent per pair.
type IFollowRepository interface {
	Follow(ctx context.Context, follow *entity.Follow) error
	Unfollow(ctx context.Context, followerID, followingID string) error
	List(ctx context.Context, followerID, followingID string) ([]entity.Follow, error)
	GetByID(ctx context.Context, id string) (*entity.Follow, error)
}

// IUserRepository persists accounts of the mock backend.
type IUserRepository interface {
	CreateUser(ctx context.Context, user *entity.User) error
	GetUserByID(ctx context.Context, id string) (*entity.User, error)
	GetUserByEmail(ctx context.Context, email string) (*entity.User, error)
	// UpdateProfile applies the non-nil fields of update and returns the stored user.
	UpdateProfile(ctx context.Context, id string, update entity.ProfileUpdate) (*entity.User, error)
}

// ICounter answers exact counts for the whitelisted resources.
type ICounter interface {
	Count(ctx context.Context, q entity.CountQuery) (int64, error)
}
