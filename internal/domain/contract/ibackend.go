package contract

import (
	"context"

	"github.com/popcornsocial/popcorn/internal/domain/entity"
)

// ISocialBackend is the capability set behind the remote mutation client.
type ISocialBackend interface {
	// SetLikeCount stores newValue as the like counter and returns the value the backend kept.
	SetLikeCount(ctx context.Context, kind entity.TargetKind, id string, newValue int64) (int64, error)
	SetFollowing(ctx context.Context, followerID, targetUserID string, following bool) error
	// SetSaved returns the saved record id when saving, "" when unsaving.
	SetSaved(ctx context.Context, userID, collectionID string, saved bool) (string, error)
}

// ICommentBackend lists and mutates comment rows.
type ICommentBackend interface {
	ListComments(ctx context.Context, parent entity.ParentRef) ([]entity.Comment, error)
	AddComment(ctx context.Context, parent entity.ParentRef, text string) (*entity.Comment, error)
	DeleteComment(ctx context.Context, commentID string) error
}

// IFeedBackend reads and deletes the top level entities.
type IFeedBackend interface {
	GetLikeCount(ctx context.Context, kind entity.TargetKind, id string) (int64, error)
	ListPosts(ctx context.Context) ([]entity.Post, error)
	ListPostsByUser(ctx context.Context, userID string) ([]entity.Post, error)
	DeletePost(ctx context.Context, id string) error
	ListCollections(ctx context.Context) ([]entity.Collection, error)
	DeleteCollection(ctx context.Context, id string) error
	// CreatePost publishes a review authored by the session user.
	CreatePost(ctx context.Context, draft entity.PostDraft) (*entity.Post, error)
	// CreateCollection creates a collection owned by the session user with zero likes.
	CreateCollection(ctx context.Context, draft entity.CollectionDraft) (*entity.Collection, error)
}

// IProfileBackend answers the relationship and counting queries of a profile page.
type IProfileBackend interface {
	IsFollowing(ctx context.Context, followerID, targetUserID string) (bool, error)
	ListSavedCollections(ctx context.Context, userID string) ([]entity.SavedCollection, error)
	Count(ctx context.Context, q entity.CountQuery) (int64, error)
}

// IAuthBackend manages accounts: credentials, sign-up and the user's own profile row.
type IAuthBackend interface {
	SignIn(ctx context.Context, email, password string) (*entity.Session, error)
	// SignUp creates the account and its public profile row. It does not sign in.
	SignUp(ctx context.Context, reg entity.Registration) (*entity.User, error)
	// UpdateProfile edits the session user's own profile.
	UpdateProfile(ctx context.Context, update entity.ProfileUpdate) (*entity.User, error)
}

// IBackend is one concrete data source. Providers are picked by configuration.
type IBackend interface {
	ISocialBackend
	ICommentBackend
	IFeedBackend
	IProfileBackend
	IAuthBackend
	Name() string
}
