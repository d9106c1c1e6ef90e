package httpserver

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/ecommerce/internal/logging"
	authmw "github.com/Skotchmaster/ecommerce/internal/middleware/auth"
	"github.com/Skotchmaster/ecommerce/internal/service"
	"github.com/Skotchmaster/ecommerce/internal/transport"
)

type CatalogHTTP struct {
	Svc *service.CatalogService
}

// parseID accepts positive decimal ids only.
func parseID(s string) (uint, bool) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

func (h *CatalogHTTP) AddProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.add")
	userID, _ := authmw.UserID(c)

	var req transport.ProductRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("add_product_failed", "status", 400, "reason", "invalid body", "error", err)
		return c.String(http.StatusBadRequest, "Invalid product data")
	}

	prod, err := h.Svc.AddProduct(ctx, req, userID)
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			l.Warn("add_product_failed", "status", 400, "reason", err.Error())
			return c.String(http.StatusBadRequest, "Invalid product data")
		}
		l.Error("add_product_failed", "status", 500, "reason", "cannot add product to db", "error", err)
		return c.String(http.StatusInternalServerError, "Cannot add product")
	}

	l.Info("add_product_success", "product_id", prod.ID)
	return c.String(http.StatusOK, "Product added successfully")
}

func (h *CatalogHTTP) GetProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.get")

	id, ok := parseID(c.Param("id"))
	if !ok {
		l.Warn("get_product_failed", "status", 404, "reason", "id is not a number")
		return echo.NewHTTPError(http.StatusNotFound, "Product not found")
	}

	prod, err := h.Svc.GetProduct(ctx, id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			l.Warn("get_product_failed", "status", 404, "reason", "product with this id dont exist")
			return echo.NewHTTPError(http.StatusNotFound, "Product not found")
		}
		l.Error("get_product_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot get product")
	}

	return c.JSON(http.StatusOK, prod)
}

func (h *CatalogHTTP) UpdateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.update")
	userID, _ := authmw.UserID(c)

	id, ok := parseID(c.Param("id"))
	if !ok {
		l.Warn("update_product_failed", "status", 404, "reason", "id is not a number")
		return c.String(http.StatusNotFound, "Product not found")
	}

	var req transport.ProductRequest
	if err := c.Bind(&req); err != nil {
		// a missing product is reported before a bad body
		if _, gerr := h.Svc.GetProduct(ctx, id); errors.Is(gerr, service.ErrNotFound) {
			l.Warn("update_product_failed", "status", 404, "reason", "product not found")
			return c.String(http.StatusNotFound, "Product not found")
		}
		l.Warn("update_product_failed", "status", 400, "reason", "invalid body", "error", err)
		return c.String(http.StatusBadRequest, "Invalid product data")
	}

	if _, err := h.Svc.UpdateProduct(ctx, id, req, userID); err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			l.Warn("update_product_failed", "status", 404, "reason", "product not found")
			return c.String(http.StatusNotFound, "Product not found")
		case errors.Is(err, service.ErrValidation):
			l.Warn("update_product_failed", "status", 400, "reason", err.Error())
			return c.String(http.StatusBadRequest, "Invalid product data")
		default:
			l.Error("update_product_failed", "status", 500, "error", err)
			return c.String(http.StatusInternalServerError, "Cannot update product")
		}
	}

	l.Info("update_product_success", "product_id", id)
	return c.String(http.StatusOK, "Product updated successfully")
}

func (h *CatalogHTTP) DeleteProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.delete")
	userID, _ := authmw.UserID(c)

	id, ok := parseID(c.Param("id"))
	if !ok {
		l.Warn("delete_product_failed", "status", 404, "reason", "id is not a number")
		return c.String(http.StatusNotFound, "Product not found")
	}

	if err := h.Svc.DeleteProduct(ctx, id, userID); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			l.Warn("delete_product_failed", "status", 404, "reason", "product not found")
			return c.String(http.StatusNotFound, "Product not found")
		}
		l.Error("delete_product_failed", "status", 500, "error", err)
		return c.String(http.StatusInternalServerError, "Cannot delete product")
	}

	l.Info("delete_product_success", "product_id", id)
	return c.String(http.StatusOK, "Product deleted successfully")
}

func (h *CatalogHTTP) ListProducts(c echo.Context) error {
	ctx := c.Request().Context()

	items, err := h.Svc.ListProducts(ctx)
	if err != nil {
		logging.FromContext(ctx).Error("list_products_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot list products")
	}
	return c.JSON(http.StatusOK, items)
}

func (h *CatalogHTTP) SearchProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.search")

	items, err := h.Svc.SearchProducts(ctx, c.QueryParam("q"))
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			l.Warn("search_failed", "status", 400, "reason", "empty query")
			return echo.NewHTTPError(http.StatusBadRequest, "query parameter q is required")
		}
		l.Error("search_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "search failed")
	}
	return c.JSON(http.StatusOK, items)
}
