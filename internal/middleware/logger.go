package middleware

import (
    "time"

    "github.com/google/uuid"
    "github.com/labstack/echo/v4"
    "github.com/sirupsen/logrus"
)

const loggerKey = "log"

// RequestLog tags each request with an id, exposes a request-scoped logrus
// entry to handlers and writes one access line when the request completes.
func RequestLog(log *logrus.Logger) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            start := time.Now()
            id := c.Request().Header.Get(echo.HeaderXRequestID)
            if id == "" {
                id = uuid.NewString()
            }
            c.Response().Header().Set(echo.HeaderXRequestID, id)
            entry := log.WithField("request_id", id)
            c.Set(loggerKey, entry)

            if err := next(c); err != nil {
                c.Error(err)
            }

            fields := logrus.Fields{
                "method":     c.Request().Method,
                "route":      c.Path(),
                "status":     c.Response().Status,
                "latency_ms": time.Since(start).Milliseconds(),
                "ip":         c.RealIP(),
            }
            if uid := userID(c); uid != "anon" {
                fields["user_id"] = uid
            }
            switch status := c.Response().Status; {
            case status >= 500:
                entry.WithFields(fields).Error("request")
            case status >= 400:
                entry.WithFields(fields).Warn("request")
            default:
                entry.WithFields(fields).Info("request")
            }
            return nil
        }
    }
}

// Logger returns the request-scoped entry set by RequestLog.
func Logger(c echo.Context) *logrus.Entry {
    if e, ok := c.Get(loggerKey).(*logrus.Entry); ok {
        return e
    }
    return logrus.NewEntry(logrus.StandardLogger())
}
