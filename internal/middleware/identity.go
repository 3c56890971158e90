package middleware

// identity.go holds the context keys JWTAuth fills and the accessors the
// other middleware and the handlers read them through.

import "github.com/labstack/echo/v4"

const (
    ctxSubject = "subject"
    ctxRole    = "role"
)

// Subject returns the authenticated caller's login name, or "" for an
// anonymous request.
func Subject(c echo.Context) string {
    s, _ := c.Get(ctxSubject).(string)
    return s
}

// Role returns the authenticated caller's role, or "" for an anonymous
// request.
func Role(c echo.Context) string {
    r, _ := c.Get(ctxRole).(string)
    return r
}
