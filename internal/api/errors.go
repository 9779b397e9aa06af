package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"gymhub/internal/apperror"
	"gymhub/internal/logger"
)

var statusByKind = map[apperror.Kind]int{
	apperror.KindNotFound:     http.StatusNotFound,
	apperror.KindConflict:     http.StatusConflict,
	apperror.KindInvalid:      http.StatusBadRequest,
	apperror.KindUnauthorized: http.StatusUnauthorized,
	apperror.KindForbidden:    http.StatusForbidden,
	apperror.KindInternal:     http.StatusInternalServerError,
}

func StatusFor(kind apperror.Kind) int {
	if status, ok := statusByKind[kind]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// RespondError writes err as an ErrorResponse. Internal errors are logged and
// reported with a generic message.
func RespondError(c *gin.Context, err error) {
	kind := apperror.KindOf(err)
	if kind == apperror.KindInternal {
		logger.Error("request failed",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"error", err,
		)
	}
	c.AbortWithStatusJSON(StatusFor(kind), ErrorResponse{
		Error: apperror.Message(err),
		Code:  string(kind),
	})
}

// Abort writes message with the code matching status.
func Abort(c *gin.Context, status int, message string) {
	resp := ErrorResponse{Error: message}
	for kind, s := range statusByKind {
		if s == status {
			resp.Code = string(kind)
			break
		}
	}
	c.AbortWithStatusJSON(status, resp)
}

// ParseID reads a positive integer path parameter.
func ParseID(c *gin.Context, param string) (int, error) {
	id, err := strconv.Atoi(c.Param(param))
	if err != nil || id <= 0 {
		return 0, apperror.Invalid("Invalid " + param)
	}
	return id, nil
}

// ParseTimeRange reads RFC3339 "start" and "end" query parameters.
func ParseTimeRange(c *gin.Context) (time.Time, time.Time, error) {
	start, err := ParseTimeQuery(c, "start")
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := ParseTimeQuery(c, "end")
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, apperror.Invalid("end must not be before start")
	}
	return start, end, nil
}

func ParseTimeQuery(c *gin.Context, name string) (time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return time.Time{}, apperror.Invalid(name + " query param is required")
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, apperror.Invalid("invalid " + name + " format, use RFC3339")
	}
	return t, nil
}
