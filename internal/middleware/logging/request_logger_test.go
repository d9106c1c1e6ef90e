package loggingmw

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/ecommerce/internal/logging"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &m))
		out = append(out, m)
	}
	return out
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	e := echo.New()
	e.Use(middleware.RequestID())
	e.Use(RequestLogger(logging.NewWithWriter(&buf, "debug")))

	e.GET("/ok", func(c echo.Context) error {
		logging.FromContext(c.Request().Context()).Info("inside_handler")
		return c.String(http.StatusOK, "fine")
	})
	e.GET("/missing", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusNotFound, "nope")
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ok", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.JSONEq(t, `{"message":"nope"}`, rec.Body.String())

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 3)

	require.Equal(t, "inside_handler", lines[0]["msg"])
	require.NotEmpty(t, lines[0]["request_id"])
	require.Equal(t, lines[0]["request_id"], lines[1]["request_id"])

	require.Equal(t, "request_completed", lines[1]["msg"])
	require.Equal(t, "INFO", lines[1]["level"])
	require.EqualValues(t, 200, lines[1]["status"])

	require.Equal(t, "WARN", lines[2]["level"])
	require.EqualValues(t, 404, lines[2]["status"])
	require.Equal(t, "/missing", lines[2]["route"])
}
