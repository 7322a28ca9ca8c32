package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/popcornsocial/popcorn/internal/domain/contract"
	"github.com/popcornsocial/popcorn/internal/domain/entity"
	"github.com/popcornsocial/popcorn/internal/handler/http/dto"
)

type FollowerHandler struct {
	follows contract.IFollowRepository
	users   contract.IUserRepository
}

func NewFollowerHandler(follows contract.IFollowRepository, users contract.IUserRepository) *FollowerHandler {
	return &FollowerHandler{follows: follows, users: users}
}

// ListFollowers serves GET /followers?followerId=&followingId=
func (h *FollowerHandler) ListFollowers(c *gin.Context) {
	follows, err := h.follows.List(c.Request.Context(), c.Query("followerId"), c.Query("followingId"))
	if err != nil {
		RepoErrorHandler(c, err, "Followers")
		return
	}
	writeList(c, follows)
}

// Follow makes the caller follow another user. Following twice is a no-op.
func (h *FollowerHandler) Follow(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	var req dto.FollowRequest
	if err := BindAndValidate(c, &req); err != nil {
		return
	}
	if req.FollowingID == userID {
		ErrorHandler(c, http.StatusBadRequest, "You cannot follow yourself")
		return
	}
	ctx := c.Request.Context()
	if _, err := h.users.GetUserByID(ctx, req.FollowingID); err != nil {
		RepoErrorHandler(c, err, "User")
		return
	}
	follow := &entity.Follow{FollowerID: userID, FollowingID: req.FollowingID}
	if err := h.follows.Follow(ctx, follow); err != nil {
		RepoErrorHandler(c, err, "Follow")
		return
	}
	SuccessHandler(c, http.StatusCreated, follow)
}

// Unfollow serves DELETE /followers/:id. The id is the edge id, only the follower may remove it.
func (h *FollowerHandler) Unfollow(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	edge, err := h.follows.GetByID(ctx, c.Param("id"))
	if err != nil {
		RepoErrorHandler(c, err, "Follow")
		return
	}
	if edge.FollowerID != userID {
		ErrorHandler(c, http.StatusForbidden, "Only the follower can remove this follow")
		return
	}
	if err := h.follows.Unfollow(ctx, edge.FollowerID, edge.FollowingID); err != nil {
		RepoErrorHandler(c, err, "Follow")
		return
	}
	SuccessHandler(c, http.StatusOK, gin.H{})
}
