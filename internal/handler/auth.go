package handler

import (
    "database/sql"
    "errors"
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/theater-reservation/internal/config"
    "github.com/iliyamo/theater-reservation/internal/middleware"
    "github.com/iliyamo/theater-reservation/internal/model"
    "github.com/iliyamo/theater-reservation/internal/repository"
    "github.com/iliyamo/theater-reservation/internal/utils"
)

// AuthHandler signs dashboard users in and out.
type AuthHandler struct {
    Cfg    config.Config
    Users  *repository.UserRepo
    Tokens *repository.TokenRepo
    Now    func() time.Time
}

func NewAuthHandler(cfg config.Config, u *repository.UserRepo, t *repository.TokenRepo) *AuthHandler {
    return &AuthHandler{Cfg: cfg, Users: u, Tokens: t, Now: time.Now}
}

// ----- DTOs -----

type loginReq struct {
    Email    string `json:"email" validate:"required,email"`
    Password string `json:"password" validate:"required"`
}
type refreshReq struct {
    RefreshToken string `json:"refresh_token"`
}

type tokenPart struct {
    Token   string    `json:"token"`
    Expires time.Time `json:"expires"`
}
type userPart struct {
    ID    uint64 `json:"id"`
    Email string `json:"email"`
    Role  string `json:"role"`
}
type authResp struct {
    User    userPart  `json:"user"`
    Access  tokenPart `json:"access"`
    Refresh tokenPart `json:"refresh"`
}

var errInvalidLogin = echo.Map{"error": "invalid_credentials", "message": "E-mailadres of wachtwoord onjuist."}

// issue creates an access/refresh pair for u and stores the refresh hash.
func (h *AuthHandler) issue(c echo.Context, u model.User) (authResp, error) {
    ctx, cancel := reqCtx(c)
    defer cancel()
    access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, u.Role, h.Cfg.AccessTTLMin)
    if err != nil {
        return authResp{}, err
    }
    refresh, err := utils.NewRefreshToken(h.Cfg.RefreshTTLDays)
    if err != nil {
        return authResp{}, err
    }
    if err := h.Tokens.StoreRefresh(ctx, u.ID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
        return authResp{}, err
    }
    return authResp{
        User:    userPart{ID: u.ID, Email: u.Email, Role: u.Role},
        Access:  tokenPart{Token: access.Token, Expires: access.Exp},
        Refresh: tokenPart{Token: refresh.Raw, Expires: refresh.Exp}, // raw back to client
    }, nil
}

// Login: verify credentials and return a new pair.
func (h *AuthHandler) Login(c echo.Context) error {
    var req loginReq
    if err := decode(c, &req); err != nil {
        return fail(c, err)
    }
    ctx, cancel := reqCtx(c)
    defer cancel()

    u, err := h.Users.GetByEmail(ctx, req.Email)
    if errors.Is(err, sql.ErrNoRows) {
        return c.JSON(http.StatusUnauthorized, errInvalidLogin)
    }
    if err != nil {
        return fail(c, err)
    }
    if !u.IsActive || !utils.VerifyPassword(u.PasswordHash, req.Password) {
        middleware.Logger(c).WithField("email", u.Email).Warn("login rejected")
        return c.JSON(http.StatusUnauthorized, errInvalidLogin)
    }
    resp, err := h.issue(c, u)
    if err != nil {
        return fail(c, err)
    }
    return c.JSON(http.StatusOK, resp)
}

// refreshUser resolves the active user behind a raw refresh token.
func (h *AuthHandler) refreshUser(c echo.Context, raw string) (model.User, string, bool, error) {
    ctx, cancel := reqCtx(c)
    defer cancel()
    hash := utils.HashRefreshRaw(raw)
    userID, err := h.Tokens.ValidateRefresh(ctx, hash, h.Now().UTC())
    if err != nil {
        return model.User{}, "", false, nil
    }
    u, err := h.Users.GetByID(ctx, userID)
    if errors.Is(err, sql.ErrNoRows) {
        return model.User{}, "", false, nil
    }
    if err != nil {
        return model.User{}, "", false, err
    }
    return u, hash, u.IsActive, nil
}

func refreshToken(c echo.Context) string {
    var req refreshReq
    _ = c.Bind(&req)
    return strings.TrimSpace(req.RefreshToken)
}

// Refresh: validate by hash, revoke old, issue new.
func (h *AuthHandler) Refresh(c echo.Context) error {
    raw := refreshToken(c)
    if raw == "" {
        return fail(c, errRefreshRequired)
    }
    u, hash, ok, err := h.refreshUser(c, raw)
    if err != nil {
        return fail(c, err)
    }
    if !ok {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid_refresh"})
    }
    ctx, cancel := reqCtx(c)
    defer cancel()
    if err := h.Tokens.RevokeByHash(ctx, hash); err != nil {
        return fail(c, err)
    }
    resp, err := h.issue(c, u)
    if err != nil {
        return fail(c, err)
    }
    return c.JSON(http.StatusOK, resp)
}

// RefreshAccess returns a new access token without rotating the refresh token.
func (h *AuthHandler) RefreshAccess(c echo.Context) error {
    raw := refreshToken(c)
    if raw == "" {
        return fail(c, errRefreshRequired)
    }
    u, _, ok, err := h.refreshUser(c, raw)
    if err != nil {
        return fail(c, err)
    }
    if !ok {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid_refresh"})
    }
    access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, u.Role, h.Cfg.AccessTTLMin)
    if err != nil {
        return fail(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{
        "access": tokenPart{Token: access.Token, Expires: access.Exp},
    })
}

// Logout revokes one refresh token when the body carries it, otherwise every
// refresh token of the bearer's user.
func (h *AuthHandler) Logout(c echo.Context) error {
    raw := refreshToken(c)
    ctx, cancel := reqCtx(c)
    defer cancel()

    if raw != "" {
        hash := utils.HashRefreshRaw(raw)
        if _, err := h.Tokens.ValidateRefresh(ctx, hash, h.Now().UTC()); err != nil {
            return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid_refresh"})
        }
        if err := h.Tokens.RevokeByHash(ctx, hash); err != nil {
            return fail(c, err)
        }
        return c.NoContent(http.StatusNoContent)
    }

    header := c.Request().Header.Get("Authorization")
    if strings.HasPrefix(header, "Bearer ") {
        claims, err := utils.ParseAccessToken(h.Cfg.JWTSecret, strings.TrimPrefix(header, "Bearer "))
        if err != nil {
            return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
        }
        if err := h.Tokens.RevokeAllForUser(ctx, claims.UserID); err != nil {
            return fail(c, err)
        }
        return c.NoContent(http.StatusNoContent)
    }
    return c.JSON(http.StatusBadRequest, echo.Map{"error": "provide Authorization header or refresh_token"})
}

// Me returns the identity of the current session.
func (h *AuthHandler) Me(c echo.Context) error {
    s := middleware.SessionFrom(c)
    if s == nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    return c.JSON(http.StatusOK, echo.Map{
        "user_id":    s.UserID,
        "role":       s.Role,
        "expires_at": s.ExpiresAt,
    })
}
