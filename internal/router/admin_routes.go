package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/gear-reservation/internal/handler"
	"github.com/iliyamo/gear-reservation/internal/middleware"
	"github.com/iliyamo/gear-reservation/internal/utils"
)

// RegisterAdmin registers the approval and export endpoints under
// /v1/admin.  Login is public but rate limited; everything else requires a
// valid JWT carrying the ADMIN role.
func RegisterAdmin(e *echo.Echo, h *handler.AdminHandler, jwtSecret string, limiter echo.MiddlewareFunc) {
	e.POST("/v1/admin/login", h.Login, limiter)

	g := e.Group(
		"/v1/admin",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(utils.RoleAdmin),
	)
	g.GET("/pending", h.Pending)
	g.POST("/reservations/:order_id/approve", h.Approve)
	g.POST("/reservations/:order_id/reject", h.Reject)
	g.GET("/reservations", h.List)
	g.GET("/stats", h.Stats)
	g.GET("/export.csv", h.ExportCSV)
	g.GET("/export.xlsx", h.ExportXLSX)
}
