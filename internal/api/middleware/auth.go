package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/timmy/memerator/internal/domain"
	"github.com/timmy/memerator/internal/logger"
)

const (
	// SessionCookieName carries the session token for browser clients.
	SessionCookieName = "memerator_token"

	currentUserKey = "current_user"
)

// Authenticator resolves a session token to a user.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*domain.User, error)
}

// OptionalAuth attaches the caller to the request when a valid token is present.
// Requests without a token, or with an invalid one, continue anonymously; operations decide what needs a login.
func OptionalAuth(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := tokenFromRequest(c)
		if token == "" {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		user, err := auth.Authenticate(ctx, token)
		if err != nil {
			logger.CtxDebug(ctx, "Ignoring session token: %v", err)
			c.Next()
			return
		}

		c.Set(currentUserKey, user)
		c.Request = c.Request.WithContext(logger.SetUserID(ctx, user.ID))
		c.Next()
	}
}

// CurrentUser returns the authenticated caller or nil.
func CurrentUser(c *gin.Context) *domain.User {
	if v, ok := c.Get(currentUserKey); ok {
		if user, ok := v.(*domain.User); ok {
			return user
		}
	}
	return nil
}

// tokenFromRequest reads a bearer token, falling back to the session cookie.
func tokenFromRequest(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); header != "" {
		scheme, token, found := strings.Cut(header, " ")
		if found && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
	}
	if cookie, err := c.Cookie(SessionCookieName); err == nil {
		return cookie
	}
	return ""
}
