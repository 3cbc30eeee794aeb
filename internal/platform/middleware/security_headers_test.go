package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func invokeSecurityHeaders(t *testing.T, handler echo.HandlerFunc) (*httptest.ResponseRecorder, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/patients", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	return rec, SecurityHeaders()(handler)(c)
}

func TestSecurityHeaders_HardenedSet(t *testing.T) {
	rec, err := invokeSecurityHeaders(t, func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, hdr := range hardenedHeaders {
		if got := rec.Header().Get(hdr[0]); got != hdr[1] {
			t.Errorf("header %s: got %q, want %q", hdr[0], got, hdr[1])
		}
	}
	if csp := rec.Header().Get("Content-Security-Policy"); csp != "default-src 'none'; frame-ancestors 'none'; sandbox" {
		t.Errorf("expected deny-all policy for a JSON API, got %q", csp)
	}
	if cc := rec.Header().Get("Cache-Control"); cc != "no-store, no-cache" {
		t.Errorf("patient data must not be cacheable, got %q", cc)
	}
}

func TestSecurityHeaders_AppliedBeforeHandler(t *testing.T) {
	var seen string
	rec, err := invokeSecurityHeaders(t, func(c echo.Context) error {
		seen = c.Response().Header().Get("X-Content-Type-Options")
		return c.NoContent(http.StatusNoContent)
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if seen != "nosniff" {
		t.Errorf("handler should observe headers already set, got %q", seen)
	}
	if rec.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", rec.Code)
	}
}

func TestSecurityHeaders_KeptOnErrorResponse(t *testing.T) {
	rec, err := invokeSecurityHeaders(t, func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusNotFound, "not found")
	})
	if err == nil {
		t.Fatal("expected error from handler")
	}
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 echo.HTTPError, got %v", err)
	}
	if rec.Header().Get("X-Frame-Options") != "DENY" {
		t.Error("error responses must carry the hardened headers too")
	}
}
