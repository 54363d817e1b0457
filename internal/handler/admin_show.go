package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/theater-reservation/internal/middleware"
	"github.com/iliyamo/theater-reservation/internal/service"
)

// AdminShowHandler manages show dates and their capacity.
type AdminShowHandler struct {
	Shows *service.ShowService
}

type createShowReq struct {
	Date           string `json:"date" validate:"required,date"`
	Name           string `json:"name" validate:"required,max=160"`
	ShowType       string `json:"show_type" validate:"required,max=40"`
	Capacity       *int   `json:"capacity" validate:"omitempty,gte=0"`
	ManualCapacity *int   `json:"manual_capacity" validate:"omitempty,gte=0"`
	Closed         bool   `json:"closed"`
}

type updateShowReq struct {
	Name                *string `json:"name" validate:"omitempty,max=160"`
	ShowType            *string `json:"show_type" validate:"omitempty,max=40"`
	Capacity            *int    `json:"capacity" validate:"omitempty,gte=0"`
	ManualCapacity      *int    `json:"manual_capacity" validate:"omitempty,gte=0"`
	ClearManualCapacity bool    `json:"clear_manual_capacity"`
	ExternalBookings    *int    `json:"external_bookings" validate:"omitempty,gte=0"`
}

func (h *AdminShowHandler) List(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	items, err := h.Shows.List(ctx, middleware.SessionFrom(c), c.QueryParam("from"), c.QueryParam("to"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

func (h *AdminShowHandler) Get(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return fail(c, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	v, err := h.Shows.Get(ctx, middleware.SessionFrom(c), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, v)
}

// Create handles POST /v1/admin/shows.
func (h *AdminShowHandler) Create(c echo.Context) error {
	var req createShowReq
	if err := decode(c, &req); err != nil {
		return fail(c, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	v, err := h.Shows.Create(ctx, middleware.SessionFrom(c), service.ShowInput{
		Date:           req.Date,
		Name:           req.Name,
		ShowType:       req.ShowType,
		Capacity:       req.Capacity,
		ManualCapacity: req.ManualCapacity,
		Closed:         req.Closed,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, v)
}

// Update handles PATCH /v1/admin/shows/:id. Omitted fields stay unchanged.
func (h *AdminShowHandler) Update(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return fail(c, err)
	}
	var req updateShowReq
	if err := decode(c, &req); err != nil {
		return fail(c, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	v, err := h.Shows.Update(ctx, middleware.SessionFrom(c), id, service.ShowUpdate{
		Name:                req.Name,
		ShowType:            req.ShowType,
		Capacity:            req.Capacity,
		ManualCapacity:      req.ManualCapacity,
		ClearManualCapacity: req.ClearManualCapacity,
		ExternalBookings:    req.ExternalBookings,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, v)
}

func (h *AdminShowHandler) setClosed(c echo.Context, closed bool) error {
	id, err := parseID(c)
	if err != nil {
		return fail(c, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	v, err := h.Shows.SetClosed(ctx, middleware.SessionFrom(c), id, closed)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, v)
}

// Close handles POST /v1/admin/shows/:id/close.
func (h *AdminShowHandler) Close(c echo.Context) error { return h.setClosed(c, true) }

// Open handles POST /v1/admin/shows/:id/open.
func (h *AdminShowHandler) Open(c echo.Context) error { return h.setClosed(c, false) }

// Delete handles DELETE /v1/admin/shows/:id.
func (h *AdminShowHandler) Delete(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return fail(c, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Shows.Delete(ctx, middleware.SessionFrom(c), id); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
