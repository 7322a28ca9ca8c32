package dto

import (
	"time"

	"github.com/popcornsocial/popcorn/internal/domain/entity"
)

// UserResponse is the public view of an account.
type UserResponse struct {
	ID           string  `json:"id"`
	Username     string  `json:"username"`
	Name         string  `json:"name"`
	Email        string  `json:"email"`
	Bio          *string `json:"bio"`
	ProfileImage *string `json:"profileImage"`
	CreatedAt    string  `json:"createdAt"`
}

// LoginResponse mirrors json-server-auth: an access token plus the user.
type LoginResponse struct {
	AccessToken string       `json:"accessToken"`
	ExpiresAt   time.Time    `json:"expiresAt"`
	User        UserResponse `json:"user"`
}

// converts an entity.User to a UserResponse DTO.
func ToUserResponse(user entity.User) UserResponse {
	return UserResponse{
		ID:           user.ID,
		Username:     user.Username,
		Name:         user.Name,
		Email:        user.Email,
		Bio:          user.Bio,
		ProfileImage: user.ProfileImage,
		CreatedAt:    user.CreatedAt.Format(time.RFC3339),
	}
}

// CountResponse carries an exact count.
type CountResponse struct {
	Count int64 `json:"count"`
}

// MessageResponse is a generic response for success/error messages.
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse is a response for errors.
type ErrorResponse struct {
	Error string `json:"error"`
}
