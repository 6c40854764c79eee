// internal/interfaces/http/handlers/response.go
package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-faster/errors"
	"github.com/your-org/storefront-backend/internal/interfaces/http/middleware"
	"github.com/your-org/storefront-backend/internal/pkg/apperror"
)

var statusByKind = map[apperror.Kind]int{
	apperror.KindInvalidArgument:    http.StatusBadRequest,
	apperror.KindNotFound:           http.StatusNotFound,
	apperror.KindFailedPrecondition: http.StatusBadRequest,
	apperror.KindUnauthenticated:    http.StatusUnauthorized,
	apperror.KindPermissionDenied:   http.StatusForbidden,
	apperror.KindConflict:           http.StatusConflict,
	apperror.KindInternal:           http.StatusInternalServerError,
}

// respond writes the success envelope
func respond(c *gin.Context, status int, message string, data any) {
	body := gin.H{"message": message}
	if data != nil {
		body["data"] = data
	}
	c.JSON(status, body)
}

// respondError renders err according to its kind. Uncategorised and internal
// errors are attached to the gin context, where the request logger picks them
// up, and shown to the client as a generic message. A request whose deadline
// ran out while a query was in flight answers 504, like middleware.Timeout.
func respondError(c *gin.Context, err error) {
	if errors.Is(err, context.DeadlineExceeded) {
		_ = c.Error(err)
		c.JSON(http.StatusGatewayTimeout, gin.H{
			"error": "request timeout",
			"code":  apperror.KindInternal,
		})
		return
	}

	appErr, ok := apperror.As(err)
	if !ok || appErr.Kind == apperror.KindInternal {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "internal server error",
			"code":  apperror.KindInternal,
		})
		return
	}

	status, ok := statusByKind[appErr.Kind]
	if !ok {
		status = http.StatusInternalServerError
	}

	body := gin.H{
		"error": appErr.Message,
		"code":  appErr.Kind,
	}
	if appErr.Reason != "" {
		body["reason"] = appErr.Reason
	}
	c.JSON(status, body)
}

// respondBindError reports a request that failed to decode or validate
func respondBindError(c *gin.Context, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{
			"error": "request body too large",
			"code":  apperror.KindInvalidArgument,
		})
		return
	}

	c.JSON(http.StatusBadRequest, gin.H{
		"error":   "Invalid request data",
		"code":    apperror.KindInvalidArgument,
		"details": err.Error(),
	})
}

// parseID reads a positive numeric path parameter, answering 400 when it is malformed
func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid " + name,
			"code":  apperror.KindInvalidArgument,
		})
		return 0, false
	}
	return uint(id), true
}

// requireUser returns the authenticated caller, answering 401 when there is none
func requireUser(c *gin.Context) (uint, bool) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "User not authenticated",
			"code":  apperror.KindUnauthenticated,
		})
		return 0, false
	}
	return userID, true
}

// optionalUser returns the caller when the request carried a valid token
func optionalUser(c *gin.Context) *uint {
	if userID, ok := middleware.GetUserIDFromContext(c); ok {
		return &userID
	}
	return nil
}
