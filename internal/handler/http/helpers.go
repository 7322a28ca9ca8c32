package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/popcornsocial/popcorn/internal/domain/contract"
	"github.com/popcornsocial/popcorn/internal/handler/http/dto"
	"github.com/popcornsocial/popcorn/internal/handler/http/middleware"
)

// ErrorHandler centralizes error handling for HTTP responses
func ErrorHandler(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, dto.ErrorResponse{Error: message})
}

// SuccessHandler centralizes success responses
func SuccessHandler(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, data)
}

// MessageHandler centralizes message responses
func MessageHandler(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, dto.MessageResponse{Message: message})
}

// BindAndValidate binds JSON request and validates it
func BindAndValidate(c *gin.Context, req interface{}) error {
	if err := c.ShouldBindJSON(req); err != nil {
		ErrorHandler(c, http.StatusBadRequest, err.Error())
		return err
	}
	return nil
}

// RepoErrorHandler maps repository errors to status codes.
func RepoErrorHandler(c *gin.Context, err error, what string) {
	switch {
	case errors.Is(err, contract.ErrRecordNotFound):
		ErrorHandler(c, http.StatusNotFound, what+" not found")
	case errors.Is(err, contract.ErrDuplicateEmail):
		ErrorHandler(c, http.StatusConflict, err.Error())
	case errors.Is(err, contract.ErrUnsupportedCount):
		ErrorHandler(c, http.StatusBadRequest, err.Error())
	default:
		ErrorHandler(c, http.StatusInternalServerError, err.Error())
	}
}

// currentUserID returns the caller set by the auth middleware.
func currentUserID(c *gin.Context) (string, bool) {
	userID := c.GetString(middleware.ContextUserID)
	return userID, userID != ""
}

// requireUserID writes a 401 when the caller is anonymous.
func requireUserID(c *gin.Context) (string, bool) {
	userID, ok := currentUserID(c)
	if !ok {
		ErrorHandler(c, http.StatusUnauthorized, "User not authenticated")
	}
	return userID, ok
}

// writeList answers a json-server style list: X-Total-Count carries the full size,
// _limit truncates the body.
func writeList[T any](c *gin.Context, items []T) {
	c.Header("X-Total-Count", strconv.Itoa(len(items)))
	if limit, err := strconv.Atoi(c.Query("_limit")); err == nil && limit >= 0 && limit < len(items) {
		items = items[:limit]
	}
	if items == nil {
		items = []T{}
	}
	c.JSON(http.StatusOK, items)
}
