// Package httperr maps workflow sentinel errors to HTTP errors so every
// domain handler reports lifecycle conflicts the same way.
package httperr

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/hms/hms/internal/platform/workflow"
)

// Map converts a service error into an echo HTTP error. Lifecycle conflicts
// become 409 so clients know to refetch and retry; unknown resources become
// 404; everything else is treated as a caller mistake.
func Map(err error) *echo.HTTPError {
	switch {
	case errors.Is(err, workflow.ErrResourceNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, workflow.ErrInvalidTransition),
		errors.Is(err, workflow.ErrAlreadyClosed),
		errors.Is(err, workflow.ErrConcurrentModification):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, workflow.ErrInvalidPriority):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	default:
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
}
