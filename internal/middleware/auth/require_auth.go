package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/ecommerce/internal/logging"
	"github.com/Skotchmaster/ecommerce/internal/models"
	"github.com/Skotchmaster/ecommerce/internal/service"
)

const (
	CookieName = "session"

	ctxUserID = "user_id"
	ctxUser   = "user"
	ctxToken  = "session_token"
)

// Authenticator resolves a session token to its user.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.User, error)
}

type Guard struct {
	Auth Authenticator
}

func NewGuard(a Authenticator) *Guard {
	return &Guard{Auth: a}
}

// RequireAuth rejects the request with 401 unless the session cookie names
// an active session of an existing user.
func (g *Guard) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		l := logging.FromContext(ctx).With("middleware", "require_auth")

		var token string
		if cookie, err := c.Cookie(CookieName); err == nil {
			token = cookie.Value
		}

		user, err := g.Auth.Authenticate(ctx, token)
		if err != nil {
			if errors.Is(err, service.ErrUnauthorized) {
				l.Warn("auth_failed", "status", 401, "reason", err.Error())
				return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
			}
			l.Error("auth_failed", "status", 500, "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "cannot check session")
		}

		c.Set(ctxUserID, user.ID)
		c.Set(ctxUser, user)
		c.Set(ctxToken, token)
		return next(c)
	}
}

func UserID(c echo.Context) (uint, bool) {
	id, ok := c.Get(ctxUserID).(uint)
	return id, ok && id != 0
}

func CurrentUser(c echo.Context) (*models.User, bool) {
	u, ok := c.Get(ctxUser).(*models.User)
	return u, ok && u != nil
}

func SessionToken(c echo.Context) string {
	s, _ := c.Get(ctxToken).(string)
	return s
}
