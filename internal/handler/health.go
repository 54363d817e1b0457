package handler

import (
    "context"
    "database/sql"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"
)

// Health is the liveness probe used by load balancers.
func Health(c echo.Context) error {
    return c.String(http.StatusOK, "ok")
}

// Ready reports whether MySQL and, when configured, Redis answer a ping.
// Redis is optional, so its failure degrades instead of failing.
func Ready(db *sql.DB, rdb *redis.Client) echo.HandlerFunc {
    return func(c echo.Context) error {
        ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
        defer cancel()
        out := echo.Map{"database": "ok"}
        status := http.StatusOK
        if err := db.PingContext(ctx); err != nil {
            out["database"] = "down"
            status = http.StatusServiceUnavailable
        }
        if rdb != nil {
            if err := rdb.Ping(ctx).Err(); err != nil {
                out["redis"] = "degraded"
            } else {
                out["redis"] = "ok"
            }
        }
        return c.JSON(status, out)
    }
}
