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

type CartHTTP struct {
	Svc *service.CartService
}

func message(c echo.Context, code int, msg string) error {
	return c.JSON(code, transport.MessageResponse{Message: msg})
}

func (h *CartHTTP) AddToCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.add")

	userID, ok := authmw.UserID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}

	productID, ok := parseID(c.Param("productId"))
	if !ok {
		l.Warn("add_to_cart_failed", "status", 400, "reason", "product id is not a number")
		return message(c, http.StatusBadRequest, "Invalid product or user")
	}

	if _, err := h.Svc.AddToCart(ctx, userID, productID); err != nil {
		if errors.Is(err, service.ErrValidation) {
			l.Warn("add_to_cart_failed", "status", 400, "reason", err.Error())
			return message(c, http.StatusBadRequest, "Invalid product or user")
		}
		l.Error("add_to_cart_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	l.Info("item added successfully to cart", "product_id", productID)
	return message(c, http.StatusOK, "Product added to cart")
}

func (h *CartHTTP) RemoveFromCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.remove")

	userID, ok := authmw.UserID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}

	productID, ok := parseID(c.Param("productId"))
	if !ok {
		l.Warn("remove_from_cart_failed", "status", 400, "reason", "product id is not a number")
		return message(c, http.StatusBadRequest, "Product not in cart")
	}

	if err := h.Svc.RemoveFromCart(ctx, userID, productID); err != nil {
		if errors.Is(err, service.ErrValidation) {
			l.Warn("remove_from_cart_failed", "status", 400, "reason", err.Error())
			return message(c, http.StatusBadRequest, "Product not in cart")
		}
		l.Error("remove_from_cart_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	return message(c, http.StatusOK, "Product removed from cart")
}

func (h *CartHTTP) ViewCart(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := authmw.UserID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}

	lines, err := h.Svc.GetCart(ctx, userID)
	if err != nil {
		logging.FromContext(ctx).Error("view_cart_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	return c.JSON(http.StatusOK, lines)
}

func (h *CartHTTP) Checkout(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.checkout")

	userID, ok := authmw.UserID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}

	removed, err := h.Svc.Checkout(ctx, userID)
	if err != nil {
		l.Error("checkout_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	l.Info("checkout_successful", "items", removed)
	return message(c, http.StatusOK, "Checkout successful")
}
