package middleware

import "github.com/labstack/echo/v4"

// userID identifies the caller for rate limit keys: the session user when
// JWTAuth ran, "anon" otherwise.
func userID(c echo.Context) string {
    if v, ok := c.Get("user_id").(string); ok && v != "" {
        return v
    }
    return "anon"
}
