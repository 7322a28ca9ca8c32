package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/popcornsocial/popcorn/internal/domain/contract"
	"github.com/popcornsocial/popcorn/internal/domain/entity"
	usecasecontract "github.com/popcornsocial/popcorn/internal/usecase/contract"
)

var (
	// ErrEmptyComment is returned when the comment text is blank.
	ErrEmptyComment = errors.New("comment text is required")
	// ErrReloadFailed is returned by Add when the comment was stored but the list could not be re-fetched.
	// The displayed list is stale, the count already includes the new comment.
	ErrReloadFailed = errors.New("comment added but the list could not be reloaded")
)

// CommentThread reconciles the comment list of one post or collection with the backend.
//
// The displayed count is cosmetic: it moves by one on add/delete without a round
// trip and is only corrected by the next full reload of the parent. The list
// itself is always re-fetched after an add, never patched with a local placeholder.
type CommentThread struct {
	backend contract.ICommentBackend
	logger  usecasecontract.IAppLogger
	parent  entity.ParentRef

	mu       sync.Mutex
	comments []entity.Comment
	count    int64
}

var _ usecasecontract.ICommentThread = (*CommentThread)(nil)

// NewCommentThread creates a thread for parent with the count shown on the parent card.
func NewCommentThread(backend contract.ICommentBackend, logger usecasecontract.IAppLogger, parent entity.ParentRef, initialCount int64) *CommentThread {
	return &CommentThread{
		backend: backend,
		logger:  logger,
		parent:  parent,
		count:   entity.ClampCount(initialCount),
	}
}

// Load replaces the local list with the backend's.
func (t *CommentThread) Load(ctx context.Context) error {
	comments, err := t.backend.ListComments(ctx, t.parent)
	if err != nil {
		return fmt.Errorf("failed to load comments for %s %s: %w", t.parent.Kind, t.parent.ID, err)
	}
	t.mu.Lock()
	t.comments = comments
	t.mu.Unlock()
	return nil
}

// Add posts a comment, re-fetches the list and bumps the displayed count.
func (t *CommentThread) Add(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyComment
	}
	created, err := t.backend.AddComment(ctx, t.parent, text)
	if err != nil {
		return fmt.Errorf("failed to add comment: %w", err)
	}
	t.OnChildAdded()
	t.logger.Debugf("comment %s added to %s %s", created.ID, t.parent.Kind, t.parent.ID)

	if err := t.Load(ctx); err != nil {
		t.logger.Warnf("comment %s added but reload failed: %v", created.ID, err)
		return fmt.Errorf("%w: %w", ErrReloadFailed, err)
	}
	return nil
}

// Delete removes a comment once the backend has confirmed the deletion.
// On failure the local list and count are left untouched.
func (t *CommentThread) Delete(ctx context.Context, commentID string) error {
	if err := t.backend.DeleteComment(ctx, commentID); err != nil {
		t.logger.Warnf("delete comment %s failed: %v", commentID, err)
		return fmt.Errorf("failed to delete comment: %w", err)
	}

	t.mu.Lock()
	for i, c := range t.comments {
		if c.ID == commentID {
			t.comments = append(t.comments[:i:i], t.comments[i+1:]...)
			break
		}
	}
	t.mu.Unlock()
	t.OnChildDeleted()
	return nil
}

// OnChildAdded increments the displayed count.
func (t *CommentThread) OnChildAdded() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.count++
}

// OnChildDeleted decrements the displayed count, floored at zero.
func (t *CommentThread) OnChildDeleted() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.count = entity.ClampCount(t.count - 1)
}

// SetCount replaces the displayed count with the one read from a fresh copy of the parent.
func (t *CommentThread) SetCount(n int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.count = entity.ClampCount(n)
}

// Count is the displayed comment count of the parent.
func (t *CommentThread) Count() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.count
}

// Comments returns a copy of the displayed list.
func (t *CommentThread) Comments() []entity.Comment {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]entity.Comment, len(t.comments))
	copy(out, t.comments)
	return out
}
