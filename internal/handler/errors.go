package handler

import (
    "errors"
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/gear-reservation/internal/booking"
)

// writeError translates an engine error into a JSON response.  Store
// failures are reported without their cause, which may contain DSNs or
// file paths.
func writeError(c echo.Context, err error) error {
    var conflict *booking.ConflictError
    switch {
    case errors.As(err, &conflict):
        return c.JSON(http.StatusConflict, echo.Map{"error": booking.ErrConflict.Error(), "conflicts": conflict.Conflicts})
    case errors.Is(err, booking.ErrValidation):
        return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
    case errors.Is(err, booking.ErrNotFound):
        return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
    case errors.Is(err, booking.ErrInvalidTransition):
        return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
    case errors.Is(err, booking.ErrStoreUnavailable):
        return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "record store unavailable, try again"})
    }
    return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}
