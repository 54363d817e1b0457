package middleware

import (
    "net/http"
    "strconv"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/theater-reservation/internal/auth"
    "github.com/iliyamo/theater-reservation/internal/utils"
)

const sessionKey = "session"

// JWTAuth validates the Bearer access token and stores the admin Session
// built from its claims. Handlers pass that Session into the services, which
// check it again before acting.
func JWTAuth(secret string) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            header := c.Request().Header.Get("Authorization")
            if !strings.HasPrefix(header, "Bearer ") {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
            }
            claims, err := utils.ParseAccessToken(secret, strings.TrimPrefix(header, "Bearer "))
            if err != nil {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
            }
            c.Set(sessionKey, &auth.Session{UserID: claims.UserID, Role: claims.Role, ExpiresAt: claims.ExpiresAt})
            c.Set("user_id", strconv.FormatUint(claims.UserID, 10))
            c.Set("role", claims.Role)
            return next(c)
        }
    }
}

// SessionFrom returns the Session stored by JWTAuth, or nil.
func SessionFrom(c echo.Context) *auth.Session {
    s, _ := c.Get(sessionKey).(*auth.Session)
    return s
}

// sessionValid reports whether the stored session is still usable at now.
func sessionValid(c echo.Context, now time.Time) bool {
    s := SessionFrom(c)
    return s != nil && s.Check(now) == nil
}
