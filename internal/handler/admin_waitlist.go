package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/theater-reservation/internal/middleware"
	"github.com/iliyamo/theater-reservation/internal/model"
	"github.com/iliyamo/theater-reservation/internal/service"
)

// AdminWaitlistHandler works the waitlist per show date.
type AdminWaitlistHandler struct {
	Waitlist *service.WaitlistService
}

type priorityReq struct {
	Priority *int `json:"priority" validate:"required,gte=0"`
}

// List handles GET /v1/admin/waitlist?date=&status=.
func (h *AdminWaitlistHandler) List(c echo.Context) error {
	status := model.WaitlistStatus(strings.ToLower(c.QueryParam("status")))
	if status != "" && !status.Valid() {
		return fail(c, &service.ValidationError{Field: "status", Message: "is onbekend"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	items, err := h.Waitlist.List(ctx, middleware.SessionFrom(c), c.QueryParam("date"), status)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// Notify handles POST /v1/admin/waitlist/:id/notify.
func (h *AdminWaitlistHandler) Notify(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return fail(c, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	e, err := h.Waitlist.Notify(ctx, middleware.SessionFrom(c), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, e)
}

// Convert handles POST /v1/admin/waitlist/:id/convert. The new reservation
// goes through the same admission decision as a fresh booking.
func (h *AdminWaitlistHandler) Convert(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return fail(c, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	conv, err := h.Waitlist.Convert(ctx, middleware.SessionFrom(c), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, conv)
}

// Remove handles DELETE /v1/admin/waitlist/:id.
func (h *AdminWaitlistHandler) Remove(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return fail(c, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Waitlist.Remove(ctx, middleware.SessionFrom(c), id); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Priority handles PUT /v1/admin/waitlist/:id/priority.
func (h *AdminWaitlistHandler) Priority(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return fail(c, err)
	}
	var req priorityReq
	if err := decode(c, &req); err != nil {
		return fail(c, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	e, err := h.Waitlist.SetPriority(ctx, middleware.SessionFrom(c), id, *req.Priority)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, e)
}
