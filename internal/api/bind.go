package api

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"gymhub/internal/apperror"
)

type Validatable interface {
	Validate() error
}

// BindJSON decodes the body into req and runs its Validate method. On failure
// the error response has already been written.
func BindJSON(c *gin.Context, req Validatable) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		RespondError(c, apperror.Invalid("Invalid request body"))
		return false
	}
	if err := req.Validate(); err != nil {
		RespondError(c, apperror.Invalid(err.Error()))
		return false
	}
	return true
}

func QueryInt64(c *gin.Context, name string) (int64, error) {
	raw := c.Query(name)
	if raw == "" {
		return 0, apperror.Invalid(name + " query param is required")
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, apperror.Invalid("invalid " + name)
	}
	return v, nil
}

func QueryID(c *gin.Context, name string) (int, error) {
	v, err := strconv.Atoi(c.Query(name))
	if err != nil || v <= 0 {
		return 0, apperror.Invalid("Invalid " + name)
	}
	return v, nil
}
