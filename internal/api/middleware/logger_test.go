package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/99minutos/access-control/internal/core/domain"
)

func TestRequestLogger_SeesHandlerErrorsThroughMetrics(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf)

	e := echo.New()
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		_ = c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodDelete, "/api/users/ghost", nil), rec)

	h := RequestLogger(log)(Metrics()(func(echo.Context) error {
		return domain.ErrUserNotFound
	}))
	_ = h(c)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected one JSON log line, got %q: %v", buf.String(), err)
	}
	if entry["level"] != "warn" || entry["error"] != domain.ErrUserNotFound.Error() {
		t.Fatalf("expected warn entry carrying the error, got %+v", entry)
	}
	if entry["status"] != float64(http.StatusNotFound) {
		t.Fatalf("expected status 404 in log, got %v", entry["status"])
	}
}

func TestMetrics_ReturnsHandlerError(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())

	err := Metrics()(func(echo.Context) error { return domain.ErrUserExists })(c)
	if !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected handler error to propagate, got %v", err)
	}
	if !c.Response().Committed {
		t.Fatal("expected response to be rendered")
	}
}
