package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/popcornsocial/popcorn/internal/domain/contract"
	"github.com/popcornsocial/popcorn/internal/domain/entity"
	"github.com/popcornsocial/popcorn/internal/handler/http/dto"
	usecasecontract "github.com/popcornsocial/popcorn/internal/usecase/contract"
)

type CommentHandler struct {
	comments    contract.ICommentRepository
	posts       contract.IPostRepository
	collections contract.ICollectionRepository
	users       contract.IUserRepository
	cache       contract.IListCache
	logger      usecasecontract.IAppLogger
}

func NewCommentHandler(comments contract.ICommentRepository, posts contract.IPostRepository, collections contract.ICollectionRepository, users contract.IUserRepository, cache contract.IListCache, logger usecasecontract.IAppLogger) *CommentHandler {
	return &CommentHandler{
		comments:    comments,
		posts:       posts,
		collections: collections,
		users:       users,
		cache:       cache,
		logger:      logger,
	}
}

// ListComments serves GET /comments?postId=, ?collectionId= or ?userId=, oldest first.
func (h *CommentHandler) ListComments(c *gin.Context) {
	if userID := c.Query("userId"); userID != "" {
		comments, err := h.comments.ListByUser(c.Request.Context(), userID)
		if err != nil {
			RepoErrorHandler(c, err, "Comments")
			return
		}
		writeList(c, comments)
		return
	}
	var parent entity.ParentRef
	switch {
	case c.Query("postId") != "":
		parent = entity.ParentRef{Kind: entity.TargetKindPost, ID: c.Query("postId")}
	case c.Query("collectionId") != "":
		parent = entity.ParentRef{Kind: entity.TargetKindCollection, ID: c.Query("collectionId")}
	default:
		ErrorHandler(c, http.StatusBadRequest, "postId, collectionId or userId is required")
		return
	}
	comments, err := h.comments.ListByParent(c.Request.Context(), parent)
	if err != nil {
		RepoErrorHandler(c, err, "Comments")
		return
	}
	writeList(c, comments)
}

// CreateComment attaches a comment by the caller and bumps the post's comment counter.
func (h *CommentHandler) CreateComment(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	var req dto.CreateCommentRequest
	if err := BindAndValidate(c, &req); err != nil {
		return
	}
	ctx := c.Request.Context()

	if req.PostID != "" {
		if _, err := h.posts.GetByID(ctx, req.PostID); err != nil {
			RepoErrorHandler(c, err, "Post")
			return
		}
	} else if _, err := h.collections.GetByID(ctx, req.CollectionID); err != nil {
		RepoErrorHandler(c, err, "Collection")
		return
	}

	author, err := h.users.GetUserByID(ctx, userID)
	if err != nil {
		ErrorHandler(c, http.StatusUnauthorized, "User not found")
		return
	}
	comment := &entity.Comment{
		PostID:       req.PostID,
		CollectionID: req.CollectionID,
		UserID:       userID,
		AuthorName:   author.Name,
		AuthorHandle: author.Handle(),
		Text:         req.Text,
	}
	if err := h.comments.Create(ctx, comment); err != nil {
		RepoErrorHandler(c, err, "Comment")
		return
	}
	h.bumpPost(c, comment.PostID, 1)
	SuccessHandler(c, http.StatusCreated, comment)
}

// DeleteComment removes a comment. Only its author may do so.
func (h *CommentHandler) DeleteComment(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	comment, err := h.comments.GetByID(ctx, c.Param("id"))
	if err != nil {
		RepoErrorHandler(c, err, "Comment")
		return
	}
	if comment.UserID != userID {
		ErrorHandler(c, http.StatusForbidden, "Only the author can delete this comment")
		return
	}
	if err := h.comments.Delete(ctx, comment.ID); err != nil {
		RepoErrorHandler(c, err, "Comment")
		return
	}
	h.bumpPost(c, comment.PostID, -1)
	SuccessHandler(c, http.StatusOK, gin.H{})
}

// bumpPost keeps the denormalized counter in step. Failures are logged, the comment write stands.
func (h *CommentHandler) bumpPost(c *gin.Context, postID string, delta int64) {
	if postID == "" {
		return
	}
	ctx := c.Request.Context()
	if err := h.posts.IncrementComments(ctx, postID, delta); err != nil && !errors.Is(err, contract.ErrRecordNotFound) {
		h.logger.Warnf("failed to update comment count of post %s: %v", postID, err)
	}
	if err := h.cache.InvalidatePrefix(ctx, postsCachePrefix); err != nil {
		h.logger.Warnf("post list cache invalidation failed: %v", err)
	}
}
