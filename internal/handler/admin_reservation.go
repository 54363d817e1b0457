package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/theater-reservation/internal/middleware"
	"github.com/iliyamo/theater-reservation/internal/model"
	"github.com/iliyamo/theater-reservation/internal/repository"
	"github.com/iliyamo/theater-reservation/internal/service"
)

// AdminReservationHandler exposes the reservation dashboard.
type AdminReservationHandler struct {
	Bookings *service.BookingService
}

type checkInReq struct {
	CheckedIn *bool `json:"checked_in" validate:"required"`
}

// List handles GET /v1/admin/reservations?date=&status=&email=.
func (h *AdminReservationHandler) List(c echo.Context) error {
	f := repository.ReservationFilter{
		Date:   c.QueryParam("date"),
		Status: model.ReservationStatus(strings.ToLower(c.QueryParam("status"))),
		Email:  strings.ToLower(strings.TrimSpace(c.QueryParam("email"))),
	}
	if f.Status != "" && !f.Status.Valid() {
		return fail(c, &service.ValidationError{Field: "status", Message: "is onbekend"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	items, err := h.Bookings.List(ctx, middleware.SessionFrom(c), f)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// Get handles GET /v1/admin/reservations/:id.
func (h *AdminReservationHandler) Get(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return fail(c, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	res, err := h.Bookings.Get(ctx, middleware.SessionFrom(c), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

// History handles GET /v1/admin/reservations/:id/history.
func (h *AdminReservationHandler) History(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return fail(c, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	items, err := h.Bookings.History(ctx, middleware.SessionFrom(c), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// Approvals handles GET /v1/admin/approvals: provisional bookings with the
// capacity impact of approving each one.
func (h *AdminReservationHandler) Approvals(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	items, err := h.Bookings.PendingApprovals(ctx, middleware.SessionFrom(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

func (h *AdminReservationHandler) transition(c echo.Context, act func(id uint64) (model.Reservation, error)) error {
	id, err := parseID(c)
	if err != nil {
		return fail(c, err)
	}
	res, err := act(id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

// Approve handles POST /v1/admin/reservations/:id/approve.
func (h *AdminReservationHandler) Approve(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	return h.transition(c, func(id uint64) (model.Reservation, error) {
		return h.Bookings.Approve(ctx, middleware.SessionFrom(c), id)
	})
}

// Reject handles POST /v1/admin/reservations/:id/reject.
func (h *AdminReservationHandler) Reject(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	return h.transition(c, func(id uint64) (model.Reservation, error) {
		return h.Bookings.Reject(ctx, middleware.SessionFrom(c), id)
	})
}

// Cancel handles POST /v1/admin/reservations/:id/cancel.
func (h *AdminReservationHandler) Cancel(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	return h.transition(c, func(id uint64) (model.Reservation, error) {
		return h.Bookings.Cancel(ctx, middleware.SessionFrom(c), id)
	})
}

// CheckIn handles PUT /v1/admin/reservations/:id/check-in.
func (h *AdminReservationHandler) CheckIn(c echo.Context) error {
	var req checkInReq
	if err := decode(c, &req); err != nil {
		return fail(c, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	return h.transition(c, func(id uint64) (model.Reservation, error) {
		return h.Bookings.CheckIn(ctx, middleware.SessionFrom(c), id, *req.CheckedIn)
	})
}
