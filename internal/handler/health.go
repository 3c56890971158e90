package handler // declare the package name; contains HTTP handlers

import (
    "context"
    "net/http" // net/http provides status codes and response helpers
    "time"

    "github.com/labstack/echo/v4" // echo is the web framework used for this project
)

// Pinger is implemented by record stores that sit behind a network
// connection (the MySQL store).
type Pinger interface {
    PingContext(ctx context.Context) error
}

// Health returns a health-check endpoint used by load balancers and
// monitoring systems.  With a nil pinger it always answers 200 "ok";
// otherwise it answers 503 while the store is unreachable.
func Health(p Pinger) echo.HandlerFunc {
    return func(c echo.Context) error {
        if p == nil {
            return c.String(http.StatusOK, "ok")
        }
        ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
        defer cancel()
        if err := p.PingContext(ctx); err != nil {
            return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "store unavailable"})
        }
        return c.String(http.StatusOK, "ok")
    }
}
