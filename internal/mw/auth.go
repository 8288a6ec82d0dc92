package mw

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"silant-backend/internal/model"
)

const ctxKeyActor = "actor"

// Authenticator resolves a bearer token to an actor.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*model.User, error)
}

// Authenticate requires a valid token and stores the actor on the context.
// "Authorization: Bearer <token>" and "Authorization: Token <token>" are both
// accepted.
func Authenticate(a Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, err := a.Authenticate(c.Request.Context(), bearerToken(c.GetHeader("Authorization")))
		if err != nil {
			c.Error(err)
			c.Abort()
			return
		}
		c.Set(ctxKeyActor, actor)
		c.Next()
	}
}

// Actor returns the authenticated actor, or nil on anonymous routes.
func Actor(c *gin.Context) *model.User {
	if v, ok := c.Get(ctxKeyActor); ok {
		if u, ok := v.(*model.User); ok {
			return u
		}
	}
	return nil
}

func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok {
		return ""
	}
	if !strings.EqualFold(scheme, "Bearer") && !strings.EqualFold(scheme, "Token") {
		return ""
	}
	return strings.TrimSpace(token)
}
