package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/popcornsocial/popcorn/internal/domain/contract"
	"github.com/popcornsocial/popcorn/internal/domain/entity"
	"github.com/popcornsocial/popcorn/internal/handler/http/dto"
)

type UserHandler struct {
	users contract.IUserRepository
}

func NewUserHandler(users contract.IUserRepository) *UserHandler {
	return &UserHandler{users: users}
}

// GetUser returns the public profile of a user.
func (h *UserHandler) GetUser(c *gin.Context) {
	user, err := h.users.GetUserByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		RepoErrorHandler(c, err, "User")
		return
	}
	SuccessHandler(c, http.StatusOK, dto.ToUserResponse(*user))
}

// UpdateUser serves PATCH /users/:id. Users can only edit themselves.
func (h *UserHandler) UpdateUser(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	if c.Param("id") != userID {
		ErrorHandler(c, http.StatusForbidden, "You can only edit your own profile")
		return
	}
	var req dto.UpdateProfileRequest
	if err := BindAndValidate(c, &req); err != nil {
		return
	}
	update := entity.ProfileUpdate{
		Name:         req.Name,
		Username:     req.Username,
		Email:        req.Email,
		Bio:          req.Bio,
		ProfileImage: req.ProfileImage,
	}
	if update.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*update.Email))
		update.Email = &email
	}
	if update.IsEmpty() {
		ErrorHandler(c, http.StatusBadRequest, "Nothing to update")
		return
	}
	user, err := h.users.UpdateProfile(c.Request.Context(), userID, update)
	if err != nil {
		RepoErrorHandler(c, err, "User")
		return
	}
	SuccessHandler(c, http.StatusOK, dto.ToUserResponse(*user))
}
