package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"                             // import the Echo web framework to handle routing
	"github.com/prometheus/client_golang/prometheus/promhttp" // exposes the default registry

	"github.com/iliyamo/gear-reservation/internal/handler" // import the handlers that implement the API
)

// RegisterRoutes registers operational routes that do not require
// authentication: the health check and the Prometheus scrape endpoint.
// store may be nil when the record store has no connection to probe.
func RegisterRoutes(e *echo.Echo, store handler.Pinger) {
	// Load balancers and monitoring systems poll /healthz.
	e.GET("/healthz", handler.Health(store))
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}

// RegisterPublic registers the unauthenticated booking endpoints.  The
// limiter wraps the state-changing routes only; reads stay unthrottled.
func RegisterPublic(e *echo.Echo, h *handler.ReservationHandler, limiter echo.MiddlewareFunc) {
	g := e.Group("/v1")
	g.GET("/catalog", h.Catalog)
	g.GET("/availability", h.Availability)
	g.GET("/reservations/search", h.Search)

	g.POST("/reservations", h.Create, limiter)
	g.POST("/reservations/:order_id/return", h.Return, limiter)
	g.POST("/reservations/:order_id/cancel", h.Cancel, limiter)
}
