package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/theater-reservation/internal/handler"
)

// PublicMiddleware holds the optional middlewares for guest routes. Limit
// guards the write and code-check endpoints, Cache wraps the pricing
// catalogue. Either may be nil.
type PublicMiddleware struct {
	Limit echo.MiddlewareFunc
	Cache echo.MiddlewareFunc
}

func (m PublicMiddleware) limit() []echo.MiddlewareFunc {
	if m.Limit == nil {
		return nil
	}
	return []echo.MiddlewareFunc{m.Limit}
}

func (m PublicMiddleware) cache() []echo.MiddlewareFunc {
	if m.Cache == nil {
		return nil
	}
	return []echo.MiddlewareFunc{m.Cache}
}

// RegisterPublic registers the unauthenticated booking endpoints. The
// calendar is never cached: availability must be current.
func RegisterPublic(e *echo.Echo, p *handler.PublicHandler, mw PublicMiddleware) {
	g := e.Group("/v1")
	g.GET("/calendar", p.Calendar)
	g.GET("/pricing", p.Pricing, mw.cache()...)

	g.POST("/reservations", p.Submit, mw.limit()...)
	g.POST("/reservations/:id/cancel", p.Cancel, mw.limit()...)
	g.POST("/waitlist", p.JoinWaitlist, mw.limit()...)
	g.POST("/vouchers/check", p.CheckVoucher, mw.limit()...)
	g.POST("/promo-codes/check", p.CheckPromo, mw.limit()...)
}
