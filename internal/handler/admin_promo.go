package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/theater-reservation/internal/middleware"
	"github.com/iliyamo/theater-reservation/internal/model"
	"github.com/iliyamo/theater-reservation/internal/service"
)

// AdminPromoHandler maintains discount codes.
type AdminPromoHandler struct {
	Promos *service.PromoService
}

type promoReq struct {
	Code       string     `json:"code" validate:"omitempty,max=40"`
	Type       string     `json:"type" validate:"required,oneof=percentage fixed"`
	Value      int64      `json:"value" validate:"gte=0"`
	Active     *bool      `json:"active"`
	UsageLimit *int       `json:"usage_limit" validate:"omitempty,gte=0"`
	ExpiresAt  *time.Time `json:"expires_at"`
}

func (r promoReq) input() service.PromoInput {
	active := true
	if r.Active != nil {
		active = *r.Active
	}
	return service.PromoInput{
		Code:       r.Code,
		Type:       model.DiscountType(r.Type),
		Value:      r.Value,
		Active:     active,
		UsageLimit: r.UsageLimit,
		ExpiresAt:  r.ExpiresAt,
	}
}

func (h *AdminPromoHandler) List(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	items, err := h.Promos.List(ctx, middleware.SessionFrom(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// Create handles POST /v1/admin/promo-codes.
func (h *AdminPromoHandler) Create(c echo.Context) error {
	var req promoReq
	if err := decode(c, &req); err != nil {
		return fail(c, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	p, err := h.Promos.Create(ctx, middleware.SessionFrom(c), req.input())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, p)
}

// Update handles PUT /v1/admin/promo-codes/:id. The code itself is fixed.
func (h *AdminPromoHandler) Update(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return fail(c, err)
	}
	var req promoReq
	if err := decode(c, &req); err != nil {
		return fail(c, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	p, err := h.Promos.Update(ctx, middleware.SessionFrom(c), id, req.input())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

// Deactivate handles DELETE /v1/admin/promo-codes/:id. Codes are never
// removed because reservations refer to them.
func (h *AdminPromoHandler) Deactivate(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return fail(c, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Promos.Deactivate(ctx, middleware.SessionFrom(c), id); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
