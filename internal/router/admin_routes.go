package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/theater-reservation/internal/handler"
	"github.com/iliyamo/theater-reservation/internal/middleware"
	"github.com/iliyamo/theater-reservation/internal/model"
)

// AdminHandlers bundles the dashboard handlers.
type AdminHandlers struct {
	Reservations *handler.AdminReservationHandler
	Shows        *handler.AdminShowHandler
	Waitlist     *handler.AdminWaitlistHandler
	Vouchers     *handler.AdminVoucherHandler
	Promos       *handler.AdminPromoHandler
	Settings     *handler.AdminSettingsHandler
	Users        *handler.AdminUserHandler
}

// RegisterAdmin registers the dashboard under /v1/admin. Every route needs
// a staff or admin token; the services decide which actions are admin-only.
func RegisterAdmin(e *echo.Echo, h AdminHandlers, jwtSecret string) {
	g := e.Group(
		"/v1/admin",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleAdmin, model.RoleStaff),
	)

	// ---- Reservations ----
	g.GET("/reservations", h.Reservations.List)
	g.GET("/reservations/:id", h.Reservations.Get)
	g.GET("/reservations/:id/history", h.Reservations.History)
	g.POST("/reservations/:id/approve", h.Reservations.Approve)
	g.POST("/reservations/:id/reject", h.Reservations.Reject)
	g.POST("/reservations/:id/cancel", h.Reservations.Cancel)
	g.PUT("/reservations/:id/check-in", h.Reservations.CheckIn)
	g.GET("/approvals", h.Reservations.Approvals)

	// ---- Shows ----
	g.GET("/shows", h.Shows.List)
	g.POST("/shows", h.Shows.Create)
	g.GET("/shows/:id", h.Shows.Get)
	g.PATCH("/shows/:id", h.Shows.Update)
	g.POST("/shows/:id/close", h.Shows.Close)
	g.POST("/shows/:id/open", h.Shows.Open)
	g.DELETE("/shows/:id", h.Shows.Delete)

	// ---- Waitlist ----
	g.GET("/waitlist", h.Waitlist.List)
	g.POST("/waitlist/:id/notify", h.Waitlist.Notify)
	g.POST("/waitlist/:id/convert", h.Waitlist.Convert)
	g.PUT("/waitlist/:id/priority", h.Waitlist.Priority)
	g.DELETE("/waitlist/:id", h.Waitlist.Remove)

	// ---- Vouchers ----
	g.GET("/vouchers", h.Vouchers.List)
	g.POST("/vouchers", h.Vouchers.Create)
	g.GET("/vouchers/:id", h.Vouchers.Get)
	g.PUT("/vouchers/:id/expiry", h.Vouchers.Extend)
	g.POST("/vouchers/:id/archive", h.Vouchers.Archive)
	g.POST("/vouchers/:id/restore", h.Vouchers.Restore)

	// ---- Promo codes ----
	g.GET("/promo-codes", h.Promos.List)
	g.POST("/promo-codes", h.Promos.Create)
	g.PUT("/promo-codes/:id", h.Promos.Update)
	g.DELETE("/promo-codes/:id", h.Promos.Deactivate)

	// ---- Settings ----
	g.GET("/settings/booking", h.Settings.BookingRules)
	g.PUT("/settings/booking", h.Settings.UpdateBookingRules)
	g.PUT("/settings/pricing", h.Settings.UpdatePricing)

	// ---- Users ----
	g.POST("/users", h.Users.Create, middleware.RequireRole(model.RoleAdmin))
}
