package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/popcornsocial/popcorn/internal/domain/contract"
	"github.com/popcornsocial/popcorn/internal/domain/entity"
	"github.com/popcornsocial/popcorn/internal/handler/http/dto"
)

type SavedCollectionHandler struct {
	saved       contract.ISavedCollectionRepository
	collections contract.ICollectionRepository
}

func NewSavedCollectionHandler(saved contract.ISavedCollectionRepository, collections contract.ICollectionRepository) *SavedCollectionHandler {
	return &SavedCollectionHandler{saved: saved, collections: collections}
}

// ListSaved serves GET /savedCollections?userId=&collectionId=
// Without userId the list is scoped to the caller, anonymous callers must name a user.
func (h *SavedCollectionHandler) ListSaved(c *gin.Context) {
	userID := c.Query("userId")
	if userID == "" {
		viewer, ok := currentUserID(c)
		if !ok {
			ErrorHandler(c, http.StatusBadRequest, "userId is required")
			return
		}
		userID = viewer
	}
	saved, err := h.saved.ListByUser(c.Request.Context(), userID)
	if err != nil {
		RepoErrorHandler(c, err, "Saved collections")
		return
	}
	if collectionID := c.Query("collectionId"); collectionID != "" {
		filtered := saved[:0]
		for _, s := range saved {
			if s.CollectionID == collectionID {
				filtered = append(filtered, s)
			}
		}
		saved = filtered
	}
	writeList(c, saved)
}

// SaveCollection bookmarks a collection for the caller. Saving twice returns the first record.
func (h *SavedCollectionHandler) SaveCollection(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	var req dto.SaveCollectionRequest
	if err := BindAndValidate(c, &req); err != nil {
		return
	}
	ctx := c.Request.Context()
	if _, err := h.collections.GetByID(ctx, req.CollectionID); err != nil {
		RepoErrorHandler(c, err, "Collection")
		return
	}
	saved := &entity.SavedCollection{UserID: userID, CollectionID: req.CollectionID}
	if err := h.saved.Save(ctx, saved); err != nil {
		RepoErrorHandler(c, err, "Saved collection")
		return
	}
	SuccessHandler(c, http.StatusCreated, saved)
}

func (h *SavedCollectionHandler) DeleteSaved(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	saved, err := h.saved.GetByID(ctx, c.Param("id"))
	if err != nil {
		RepoErrorHandler(c, err, "Saved collection")
		return
	}
	if saved.UserID != userID {
		ErrorHandler(c, http.StatusForbidden, "Not your saved collection")
		return
	}
	if err := h.saved.Delete(ctx, saved.ID); err != nil {
		RepoErrorHandler(c, err, "Saved collection")
		return
	}
	SuccessHandler(c, http.StatusOK, gin.H{})
}
