package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/theater-reservation/internal/middleware"
	"github.com/iliyamo/theater-reservation/internal/model"
	"github.com/iliyamo/theater-reservation/internal/service"
)

// AdminVoucherHandler issues and maintains gift vouchers.
type AdminVoucherHandler struct {
	Vouchers *service.VoucherService
}

type createVoucherReq struct {
	Kind       string `json:"kind" validate:"required,oneof=value persons"`
	ValueCents int64  `json:"value_cents" validate:"gte=0"`
	Persons    int    `json:"persons" validate:"gte=0"`
	ExpiresOn  string `json:"expires_on" validate:"omitempty,date"`
	Notes      string `json:"notes" validate:"omitempty,max=500"`
}

type extendVoucherReq struct {
	ExpiresOn string `json:"expires_on" validate:"required,date"`
}

// List handles GET /v1/admin/vouchers?status=.
func (h *AdminVoucherHandler) List(c echo.Context) error {
	status := model.VoucherStatus(strings.ToLower(c.QueryParam("status")))
	if status != "" && !status.Valid() {
		return fail(c, &service.ValidationError{Field: "status", Message: "is onbekend"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	items, err := h.Vouchers.List(ctx, middleware.SessionFrom(c), status)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

func (h *AdminVoucherHandler) Get(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return fail(c, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	v, err := h.Vouchers.Get(ctx, middleware.SessionFrom(c), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, v)
}

// Create handles POST /v1/admin/vouchers. The code is generated.
func (h *AdminVoucherHandler) Create(c echo.Context) error {
	var req createVoucherReq
	if err := decode(c, &req); err != nil {
		return fail(c, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	v, err := h.Vouchers.Create(ctx, middleware.SessionFrom(c), service.VoucherInput{
		Kind:       model.VoucherKind(req.Kind),
		ValueCents: req.ValueCents,
		Persons:    req.Persons,
		ExpiresOn:  req.ExpiresOn,
		Notes:      req.Notes,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, v)
}

// Extend handles PUT /v1/admin/vouchers/:id/expiry.
func (h *AdminVoucherHandler) Extend(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return fail(c, err)
	}
	var req extendVoucherReq
	if err := decode(c, &req); err != nil {
		return fail(c, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	v, err := h.Vouchers.Extend(ctx, middleware.SessionFrom(c), id, req.ExpiresOn)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, v)
}

// Archive handles POST /v1/admin/vouchers/:id/archive.
func (h *AdminVoucherHandler) Archive(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return fail(c, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	v, err := h.Vouchers.Archive(ctx, middleware.SessionFrom(c), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, v)
}

// Restore handles POST /v1/admin/vouchers/:id/restore.
func (h *AdminVoucherHandler) Restore(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return fail(c, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	v, err := h.Vouchers.Restore(ctx, middleware.SessionFrom(c), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, v)
}
