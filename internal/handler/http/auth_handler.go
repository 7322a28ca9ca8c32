package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/popcornsocial/popcorn/internal/domain/contract"
	"github.com/popcornsocial/popcorn/internal/domain/entity"
	"github.com/popcornsocial/popcorn/internal/handler/http/dto"
	usecasecontract "github.com/popcornsocial/popcorn/internal/usecase/contract"
)

type AuthHandler struct {
	users     contract.IUserRepository
	hasher    contract.IHasher
	tokens    contract.ITokenIssuer
	validator usecasecontract.IValidator
	logger    usecasecontract.IAppLogger
}

func NewAuthHandler(users contract.IUserRepository, hasher contract.IHasher, tokens contract.ITokenIssuer, validator usecasecontract.IValidator, logger usecasecontract.IAppLogger) *AuthHandler {
	return &AuthHandler{users: users, hasher: hasher, tokens: tokens, validator: validator, logger: logger}
}

// Register creates an account and signs it in.
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := BindAndValidate(c, &req); err != nil {
		return
	}
	if err := h.validator.ValidatePasswordStrength(req.Password); err != nil {
		ErrorHandler(c, http.StatusBadRequest, err.Error())
		return
	}
	hash, err := h.hasher.HashPassword(req.Password)
	if err != nil {
		ErrorHandler(c, http.StatusInternalServerError, "Failed to hash password")
		return
	}
	user := &entity.User{
		Username:     strings.ToLower(req.Username),
		Name:         strings.TrimSpace(req.Name),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: hash,
		ProfileImage: req.ProfileImage,
	}
	if err := h.users.CreateUser(c.Request.Context(), user); err != nil {
		RepoErrorHandler(c, err, "User")
		return
	}
	h.logger.Infof("registered user %s", user.ID)
	h.respondWithToken(c, http.StatusCreated, user)
}

// Login checks credentials and returns an access token.
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := BindAndValidate(c, &req); err != nil {
		return
	}
	user, err := h.users.GetUserByEmail(c.Request.Context(), strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, contract.ErrRecordNotFound) {
			ErrorHandler(c, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		ErrorHandler(c, http.StatusInternalServerError, err.Error())
		return
	}
	if err := h.hasher.ComparePasswordHash(req.Password, user.PasswordHash); err != nil {
		ErrorHandler(c, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	h.respondWithToken(c, http.StatusOK, user)
}

func (h *AuthHandler) respondWithToken(c *gin.Context, status int, user *entity.User) {
	token, expiresAt, err := h.tokens.GenerateAccessToken(user.ID, user.Username)
	if err != nil {
		ErrorHandler(c, http.StatusInternalServerError, "Failed to issue token")
		return
	}
	SuccessHandler(c, status, dto.LoginResponse{
		AccessToken: token,
		ExpiresAt:   expiresAt,
		User:        dto.ToUserResponse(*user),
	})
}
