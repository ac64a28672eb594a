package v1

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/wishwell/giftsync/internal/api/handler/v1/response"
	"github.com/wishwell/giftsync/internal/api/middleware"
)

var errNoAuthenticatedUser = errors.New("no authenticated user in context")

// getUserID pulls the authenticated user id set by the JWT middleware.
func getUserID(ctx *gin.Context) (uint, *response.Err) {
	v, ok := ctx.Get(middleware.ContextKeyUserID)
	if !ok {
		return 0, response.ErrUnauthorized(errNoAuthenticatedUser)
	}

	userID, ok := v.(uint)
	if !ok || userID == 0 {
		return 0, response.ErrUnauthorized(errNoAuthenticatedUser)
	}

	return userID, nil
}
