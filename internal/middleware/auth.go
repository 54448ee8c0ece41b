package middleware

import (
	"strings"

	"github.com/01moynul/storefront-fulfillment/internal/apperr"
	"github.com/01moynul/storefront-fulfillment/internal/auth"
	"github.com/01moynul/storefront-fulfillment/internal/models"
	"github.com/gin-gonic/gin"
)

const actorKey = "actor"

// AuthMiddleware is the security guard for every non-public route. It accepts
// the session cookie set at login or an "Authorization: Bearer" header.
func AuthMiddleware(tokens *auth.TokenManager, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. --- Find the token ---
		tokenString, err := c.Cookie(cookieName)
		if err != nil || tokenString == "" {
			authHeader := c.GetHeader("Authorization")
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				Abort(c, apperr.Unauthorized(apperr.MsgUnauthorized))
				return
			}
			tokenString = parts[1]
		}

		// 2. --- Validate it ---
		actor, err := tokens.Validate(tokenString)
		if err != nil {
			Abort(c, apperr.Unauthorized("Invalid or expired session"))
			return
		}

		// 3. --- Success ---
		c.Set(actorKey, actor)
		c.Next()
	}
}

// ActorFrom returns the actor AuthMiddleware stored on the context.
func ActorFrom(c *gin.Context) (models.Actor, bool) {
	v, ok := c.Get(actorKey)
	if !ok {
		return models.Actor{}, false
	}
	actor, ok := v.(models.Actor)
	return actor, ok
}

// Abort ends the request with the {status, message} body for err.
func Abort(c *gin.Context, err *apperr.Error) {
	status := err.Kind.HTTPStatus()
	c.AbortWithStatusJSON(status, gin.H{"status": status, "message": err.Message})
}
