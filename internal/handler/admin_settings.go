package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/theater-reservation/internal/config"
	"github.com/iliyamo/theater-reservation/internal/middleware"
	"github.com/iliyamo/theater-reservation/internal/service"
)

// AdminSettingsHandler reads and replaces the booking and pricing facets.
type AdminSettingsHandler struct {
	Settings    *service.SettingsService
	Redis       *redis.Client // optional; cached pricing responses are purged on change
	CachePrefix string
}

func (h *AdminSettingsHandler) BookingRules(c echo.Context) error {
	r, err := h.Settings.BookingRules(middleware.SessionFrom(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, r)
}

// UpdateBookingRules handles PUT /v1/admin/settings/booking. The body
// replaces the whole facet; waitlist_sweep_interval is a duration such as "30m".
func (h *AdminSettingsHandler) UpdateBookingRules(c echo.Context) error {
	var req config.BookingRules
	if err := c.Bind(&req); err != nil {
		return fail(c, &service.ValidationError{Field: "body", Message: "ongeldige aanvraag"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	r, err := h.Settings.UpdateBookingRules(ctx, middleware.SessionFrom(c), req)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, r)
}

// UpdatePricing handles PUT /v1/admin/settings/pricing.
func (h *AdminSettingsHandler) UpdatePricing(c echo.Context) error {
	var req config.PricingConfig
	if err := c.Bind(&req); err != nil {
		return fail(c, &service.ValidationError{Field: "body", Message: "ongeldige aanvraag"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	p, err := h.Settings.UpdatePricing(ctx, middleware.SessionFrom(c), req)
	if err != nil {
		return fail(c, err)
	}
	if h.Redis != nil {
		n, err := middleware.PurgeCache(ctx, h.Redis, h.CachePrefix)
		log := middleware.Logger(c).WithField("purged", n)
		if err != nil {
			log.WithError(err).Warn("purge response cache")
		} else {
			log.Debug("response cache purged")
		}
	}
	return c.JSON(http.StatusOK, p)
}
