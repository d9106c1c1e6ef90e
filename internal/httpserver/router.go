package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	authmw "github.com/Skotchmaster/ecommerce/internal/middleware/auth"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type Deps struct {
	AuthHandler    *AuthHTTP
	CatalogHandler *CatalogHTTP
	CartHandler    *CartHTTP
	Guard          *authmw.Guard
	Store          Pinger
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", d.ready)

	e.GET("/teste", func(c echo.Context) error { return c.String(http.StatusOK, "hello world") })

	e.POST("/login", d.AuthHandler.Login)
	e.POST("/logout", d.AuthHandler.Logout, d.Guard.RequireAuth)

	products := e.Group("/api/products")
	products.GET("", d.CatalogHandler.ListProducts)
	products.GET("/search", d.CatalogHandler.SearchProducts)
	products.GET("/:id", d.CatalogHandler.GetProduct)
	products.POST("/add", d.CatalogHandler.AddProduct, d.Guard.RequireAuth)
	products.PUT("/update/:id", d.CatalogHandler.UpdateProduct, d.Guard.RequireAuth)
	products.DELETE("/delete/:id", d.CatalogHandler.DeleteProduct, d.Guard.RequireAuth)

	cart := e.Group("/api/cart")
	cart.Use(d.Guard.RequireAuth)
	cart.GET("", d.CartHandler.ViewCart)
	cart.POST("/add/:productId", d.CartHandler.AddToCart)
	cart.DELETE("/remove/:productId", d.CartHandler.RemoveFromCart)
	cart.POST("/checkout", d.CartHandler.Checkout)
}

func (d *Deps) ready(c echo.Context) error {
	if d.Store == nil {
		return c.NoContent(http.StatusOK)
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()
	if err := d.Store.Ping(ctx); err != nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "store unavailable")
	}
	return c.NoContent(http.StatusOK)
}
