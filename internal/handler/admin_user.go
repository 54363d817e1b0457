package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/theater-reservation/internal/repository"
	"github.com/iliyamo/theater-reservation/internal/service"
	"github.com/iliyamo/theater-reservation/internal/utils"
)

// AdminUserHandler lets an administrator create dashboard accounts. There is
// no public registration.
type AdminUserHandler struct {
	Users      *repository.UserRepo
	BcryptCost int
}

type createUserReq struct {
	Email    string `json:"email" validate:"required,email,max=190"`
	Password string `json:"password" validate:"required,min=10,max=72"`
	Role     string `json:"role" validate:"required,oneof=ADMIN STAFF"`
}

// Create handles POST /v1/admin/users.
func (h *AdminUserHandler) Create(c echo.Context) error {
	var req createUserReq
	if err := decode(c, &req); err != nil {
		return fail(c, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	id, err := h.Users.Create(ctx, req.Email, req.Password, req.Role, h.BcryptCost)
	if errors.Is(err, repository.ErrEmailExists) {
		return c.JSON(http.StatusConflict, echo.Map{"error": "email_exists", "message": "Er bestaat al een account met dit e-mailadres."})
	}
	if errors.Is(err, utils.ErrPasswordPolicy) {
		return fail(c, &service.ValidationError{Field: "password", Message: "moet 10 tot 72 tekens lang zijn"})
	}
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, userPart{ID: id, Email: strings.ToLower(strings.TrimSpace(req.Email)), Role: req.Role})
}
