package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/popcornsocial/popcorn/internal/domain/contract"
	"github.com/popcornsocial/popcorn/internal/domain/entity"
	"github.com/popcornsocial/popcorn/internal/handler/http/dto"
	usecasecontract "github.com/popcornsocial/popcorn/internal/usecase/contract"
)

const collectionsCachePrefix = "collections:list:"

type CollectionHandler struct {
	collections contract.ICollectionRepository
	users       contract.IUserRepository
	cache       contract.IListCache
	logger      usecasecontract.IAppLogger
}

func NewCollectionHandler(collections contract.ICollectionRepository, users contract.IUserRepository, cache contract.IListCache, logger usecasecontract.IAppLogger) *CollectionHandler {
	return &CollectionHandler{collections: collections, users: users, cache: cache, logger: logger}
}

// visible hides private collections from everyone but their owner.
func visible(all []entity.Collection, viewer string) []entity.Collection {
	out := make([]entity.Collection, 0, len(all))
	for _, col := range all {
		if col.IsPrivate && col.CreatedBy != viewer {
			continue
		}
		out = append(out, col)
	}
	return out
}

// ListCollections serves GET /collections?createdBy=
func (h *CollectionHandler) ListCollections(c *gin.Context) {
	ctx := c.Request.Context()
	viewer, _ := currentUserID(c)
	createdBy := c.Query("createdBy")
	key := collectionsCachePrefix + createdBy

	var all []entity.Collection
	hit, err := h.cache.GetList(ctx, key, &all)
	if err != nil {
		h.logger.Warnf("collection list cache read failed: %v", err)
	}
	if !hit {
		all, err = h.collections.List(ctx, createdBy)
		if err != nil {
			RepoErrorHandler(c, err, "Collections")
			return
		}
		if err := h.cache.SetList(ctx, key, all); err != nil {
			h.logger.Warnf("collection list cache write failed: %v", err)
		}
	}
	writeList(c, visible(all, viewer))
}

func (h *CollectionHandler) GetCollection(c *gin.Context) {
	col, err := h.collections.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		RepoErrorHandler(c, err, "Collection")
		return
	}
	if viewer, _ := currentUserID(c); col.IsPrivate && col.CreatedBy != viewer {
		ErrorHandler(c, http.StatusNotFound, "Collection not found")
		return
	}
	SuccessHandler(c, http.StatusOK, col)
}

func (h *CollectionHandler) CreateCollection(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	var req dto.CreateCollectionRequest
	if err := BindAndValidate(c, &req); err != nil {
		return
	}
	author, err := h.users.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		ErrorHandler(c, http.StatusUnauthorized, "User not found")
		return
	}
	col := &entity.Collection{
		Title:       req.Title,
		Author:      author.Name,
		Description: req.Description,
		Movies:      req.Movies,
		IsPrivate:   req.IsPrivate,
		CreatedBy:   userID,
	}
	if err := h.collections.Create(c.Request.Context(), col); err != nil {
		RepoErrorHandler(c, err, "Collection")
		return
	}
	h.invalidate(c)
	SuccessHandler(c, http.StatusCreated, col)
}

// PatchCollection sets the like counter.
func (h *CollectionHandler) PatchCollection(c *gin.Context) {
	if _, ok := requireUserID(c); !ok {
		return
	}
	var req dto.PatchLikesRequest
	if err := BindAndValidate(c, &req); err != nil {
		return
	}
	col, err := h.collections.SetLikes(c.Request.Context(), c.Param("id"), *req.Likes)
	if err != nil {
		RepoErrorHandler(c, err, "Collection")
		return
	}
	h.invalidate(c)
	SuccessHandler(c, http.StatusOK, col)
}

func (h *CollectionHandler) DeleteCollection(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	col, err := h.collections.GetByID(ctx, c.Param("id"))
	if err != nil {
		RepoErrorHandler(c, err, "Collection")
		return
	}
	if col.CreatedBy != userID {
		ErrorHandler(c, http.StatusForbidden, "Only the owner can delete this collection")
		return
	}
	if err := h.collections.Delete(ctx, col.ID); err != nil {
		RepoErrorHandler(c, err, "Collection")
		return
	}
	h.invalidate(c)
	SuccessHandler(c, http.StatusOK, gin.H{})
}

func (h *CollectionHandler) invalidate(c *gin.Context) {
	if err := h.cache.InvalidatePrefix(c.Request.Context(), collectionsCachePrefix); err != nil {
		h.logger.Warnf("collection list cache invalidation failed: %v", err)
	}
}
