package middleware

import (
	"github.com/gin-gonic/gin"

	iauth "github.com/charlesng35/notesd/internal/auth"
	"github.com/charlesng35/notesd/internal/models"
	apperrors "github.com/charlesng35/notesd/pkg/errors"
)

const (
	CtxIdentityKey  = "identity"
	CtxUserKey      = "user"
	CtxUserIDKey    = "userID"
	CtxSessionIDKey = "sessionID"
)

// SessionAuth resolves the refresh cookie to a live session and attaches the
// caller's identity. Requests without a valid session are aborted with
// ErrNotLoggedIn and ErrorHandler clears their cookies.
func SessionAuth(lifecycle *iauth.Lifecycle, jar *CookieJar) gin.HandlerFunc {
	return func(c *gin.Context) {
		outcome, err := lifecycle.Authenticate(c.Request.Context(), jar.Read(c), RequestMetadata(c))
		if err != nil {
			_ = c.Error(err)
			c.Abort()
			return
		}

		if outcome.AccessToken != "" {
			jar.SetAccess(c, outcome.AccessToken)
		}
		if outcome.RefreshToken != "" {
			jar.SetRefresh(c, outcome.RefreshToken)
		}

		c.Set(CtxIdentityKey, outcome.Identity)
		c.Set(CtxUserKey, outcome.User)
		c.Set(CtxUserIDKey, outcome.Identity.UserID)
		c.Set(CtxSessionIDKey, outcome.Identity.SessionID)
		c.Request = c.Request.WithContext(iauth.WithIdentity(c.Request.Context(), outcome.Identity))

		c.Next()
	}
}

// RequestMetadata captures the client details recorded on new sessions.
func RequestMetadata(c *gin.Context) iauth.SessionMetadata {
	return iauth.SessionMetadata{
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	}
}

// CurrentIdentity returns the identity attached by SessionAuth.
func CurrentIdentity(c *gin.Context) (iauth.Identity, error) {
	if value, ok := c.Get(CtxIdentityKey); ok {
		if id, ok := value.(iauth.Identity); ok && id.UserID != "" {
			return id, nil
		}
	}
	return iauth.Identity{}, apperrors.ErrNotLoggedIn
}

// CurrentUser returns the user row loaded by SessionAuth.
func CurrentUser(c *gin.Context) (*models.User, error) {
	if value, ok := c.Get(CtxUserKey); ok {
		if user, ok := value.(*models.User); ok && user != nil {
			return user, nil
		}
	}
	return nil, apperrors.ErrNotLoggedIn
}
