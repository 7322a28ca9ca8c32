package http

import (
	"net/http"
	"strings"
	"unicode"

	"github.com/gin-gonic/gin"
	"github.com/popcornsocial/popcorn/internal/domain/contract"
	"github.com/popcornsocial/popcorn/internal/domain/entity"
	"github.com/popcornsocial/popcorn/internal/handler/http/dto"
)

type CountHandler struct {
	counter contract.ICounter
}

func NewCountHandler(counter contract.ICounter) *CountHandler {
	return &CountHandler{counter: counter}
}

// Count serves GET /count/:resource?field=&value= with exact counts.
// Route names are camelCase (savedCollections, userId), storage names are snake_case.
func (h *CountHandler) Count(c *gin.Context) {
	q := entity.CountQuery{
		Resource: snakeCase(c.Param("resource")),
		Field:    snakeCase(c.Query("field")),
		Value:    c.Query("value"),
	}
	n, err := h.counter.Count(c.Request.Context(), q)
	if err != nil {
		RepoErrorHandler(c, err, "Resource")
		return
	}
	SuccessHandler(c, http.StatusOK, dto.CountResponse{Count: n})
}

func snakeCase(s string) string {
	var b strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}
