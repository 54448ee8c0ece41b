package middleware

import (
	"github.com/01moynul/storefront-fulfillment/internal/apperr"
	"github.com/01moynul/storefront-fulfillment/internal/models"
	"github.com/gin-gonic/gin"
)

// RequireRoles must run after AuthMiddleware. A caller outside roles gets a
// 403 body rather than an empty result, so clients can tell the two apart.
func RequireRoles(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := ActorFrom(c)
		if !ok {
			Abort(c, apperr.Unauthorized(apperr.MsgUnauthorized))
			return
		}
		if !actor.Role.In(roles...) {
			Abort(c, apperr.Forbidden(apperr.MsgForbidden))
			return
		}
		c.Next()
	}
}
