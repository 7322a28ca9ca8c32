package usecasecontract

import (
	"context"

	"github.com/popcornsocial/popcorn/internal/domain/entity"
)

// ICommentThread keeps a parent's comment list and displayed comment count in step with the backend.
type ICommentThread interface {
	Load(ctx context.Context) error
	Add(ctx context.Context, text string) error
	Delete(ctx context.Context, commentID string) error
	OnChildAdded()
	OnChildDeleted()
	Count() int64
	Comments() []entity.Comment
}
