package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/popcornsocial/popcorn/internal/domain/contract"
	"github.com/popcornsocial/popcorn/internal/domain/entity"
	"github.com/popcornsocial/popcorn/internal/handler/http/dto"
	usecasecontract "github.com/popcornsocial/popcorn/internal/usecase/contract"
)

const postsCachePrefix = "posts:list:"

type PostHandler struct {
	posts  contract.IPostRepository
	users  contract.IUserRepository
	cache  contract.IListCache
	logger usecasecontract.IAppLogger
}

func NewPostHandler(posts contract.IPostRepository, users contract.IUserRepository, cache contract.IListCache, logger usecasecontract.IAppLogger) *PostHandler {
	return &PostHandler{posts: posts, users: users, cache: cache, logger: logger}
}

// ListPosts serves GET /posts?userId=
func (h *PostHandler) ListPosts(c *gin.Context) {
	ctx := c.Request.Context()
	userID := c.Query("userId")
	key := postsCachePrefix + userID

	var posts []entity.Post
	if hit, err := h.cache.GetList(ctx, key, &posts); err != nil {
		h.logger.Warnf("post list cache read failed: %v", err)
	} else if hit {
		writeList(c, posts)
		return
	}

	posts, err := h.posts.List(ctx, userID)
	if err != nil {
		RepoErrorHandler(c, err, "Posts")
		return
	}
	if err := h.cache.SetList(ctx, key, posts); err != nil {
		h.logger.Warnf("post list cache write failed: %v", err)
	}
	writeList(c, posts)
}

func (h *PostHandler) GetPost(c *gin.Context) {
	post, err := h.posts.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		RepoErrorHandler(c, err, "Post")
		return
	}
	SuccessHandler(c, http.StatusOK, post)
}

// CreatePost publishes a review authored by the caller.
func (h *PostHandler) CreatePost(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	var req dto.CreatePostRequest
	if err := BindAndValidate(c, &req); err != nil {
		return
	}
	author, err := h.users.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		ErrorHandler(c, http.StatusUnauthorized, "User not found")
		return
	}
	post := &entity.Post{
		UserID:     userID,
		UserName:   author.Name,
		UserHandle: author.Handle(),
		UserImage:  author.ProfileImage,
		MovieTitle: req.MovieTitle,
		Year:       req.Year,
		ReviewText: req.ReviewText,
		Rating:     req.Rating,
		MovieImage: req.MovieImage,
	}
	if err := h.posts.Create(c.Request.Context(), post); err != nil {
		RepoErrorHandler(c, err, "Post")
		return
	}
	h.invalidate(c)
	SuccessHandler(c, http.StatusCreated, post)
}

// PatchPost sets the like counter. Any signed-in user may do this, the client computes the value.
func (h *PostHandler) PatchPost(c *gin.Context) {
	if _, ok := requireUserID(c); !ok {
		return
	}
	var req dto.PatchLikesRequest
	if err := BindAndValidate(c, &req); err != nil {
		return
	}
	post, err := h.posts.SetLikes(c.Request.Context(), c.Param("id"), *req.Likes)
	if err != nil {
		RepoErrorHandler(c, err, "Post")
		return
	}
	h.invalidate(c)
	SuccessHandler(c, http.StatusOK, post)
}

// DeletePost removes a post owned by the caller.
func (h *PostHandler) DeletePost(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	post, err := h.posts.GetByID(ctx, c.Param("id"))
	if err != nil {
		RepoErrorHandler(c, err, "Post")
		return
	}
	if post.UserID != userID {
		ErrorHandler(c, http.StatusForbidden, "Only the author can delete this post")
		return
	}
	if err := h.posts.Delete(ctx, post.ID); err != nil {
		RepoErrorHandler(c, err, "Post")
		return
	}
	h.invalidate(c)
	SuccessHandler(c, http.StatusOK, gin.H{})
}

func (h *PostHandler) invalidate(c *gin.Context) {
	if err := h.cache.InvalidatePrefix(c.Request.Context(), postsCachePrefix); err != nil {
		h.logger.Warnf("post list cache invalidation failed: %v", err)
	}
}
