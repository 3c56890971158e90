package middleware

import (
    "time"

    "github.com/labstack/echo/v4"
    "go.uber.org/zap"
)

// RequestLogger writes one structured line per request.
func RequestLogger(log *zap.Logger) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            start := time.Now()
            err := next(c)
            if err != nil {
                // Let echo render the error so the logged status is final.
                c.Error(err)
            }
            req := c.Request()
            fields := []zap.Field{
                zap.String("method", req.Method),
                zap.String("path", c.Path()),
                zap.Int("status", c.Response().Status),
                zap.Duration("latency", time.Since(start)),
                zap.String("ip", c.RealIP()),
            }
            if s := Subject(c); s != "" {
                fields = append(fields, zap.String("subject", s))
            }
            switch {
            case c.Response().Status >= 500:
                log.Error("request", append(fields, zap.Error(err))...)
            case c.Response().Status >= 400:
                log.Warn("request", fields...)
            default:
                log.Info("request", fields...)
            }
            return nil
        }
    }
}
