package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/ecommerce/internal/logging"
	authmw "github.com/Skotchmaster/ecommerce/internal/middleware/auth"
	"github.com/Skotchmaster/ecommerce/internal/service"
	"github.com/Skotchmaster/ecommerce/internal/transport"
)

type AuthHTTP struct {
	Svc          *service.AuthService
	CookieSecure bool
}

func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_login")

	var req transport.LoginRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("login_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	res, err := h.Svc.Login(ctx, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrUnauthorized) {
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid username or password")
		}
		l.Error("login_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot log in")
	}

	c.SetCookie(CreateCookie(authmw.CookieName, res.Token, "/", res.ExpiresAt, h.CookieSecure))
	l.Info("login_successful", "user_id", res.User.ID)

	return c.JSON(http.StatusOK, transport.MessageResponse{Message: "Logged in successfully"})
}

func (h *AuthHTTP) Logout(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_logout")

	if err := h.Svc.Logout(ctx, authmw.SessionToken(c)); err != nil {
		if errors.Is(err, service.ErrUnauthorized) {
			l.Warn("logout_error", "status", 401, "error", err)
			return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
		}
		l.Error("logout_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot log out")
	}

	c.SetCookie(DeleteCookie(authmw.CookieName, "/", h.CookieSecure))
	if user, ok := authmw.CurrentUser(c); ok {
		l = l.With("user_id", user.ID, "username", user.Username)
	}
	l.Info("logout_successful")

	return c.JSON(http.StatusOK, transport.MessageResponse{Message: "Logged out successfully"})
}
