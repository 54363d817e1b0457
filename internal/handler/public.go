package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/theater-reservation/internal/service"
)

// PublicHandler serves the guest-facing booking endpoints.
type PublicHandler struct {
	Bookings *service.BookingService
	Waitlist *service.WaitlistService
	Vouchers *service.VoucherService
	Promos   *service.PromoService
	Settings *service.SettingsService
}

type submitReq struct {
	Date         string         `json:"date" validate:"required,date"`
	Name         string         `json:"name" validate:"required,max=120"`
	Email        string         `json:"email" validate:"required,email,max=190"`
	Phone        string         `json:"phone" validate:"omitempty,max=40"`
	Guests       int            `json:"guests" validate:"required,min=1"`
	DrinkPackage string         `json:"drink_package" validate:"omitempty,max=40"`
	Addons       map[string]int `json:"addons" validate:"omitempty,max=20,dive,keys,required,endkeys,gte=0,lte=100"`
	PromoCode    string         `json:"promo_code" validate:"omitempty,max=40"`
	VoucherCode  string         `json:"voucher_code" validate:"omitempty,max=40"`
}

type cancelReq struct {
	Email string `json:"email" validate:"required,email"`
}

type codeCheckReq struct {
	Code       string `json:"code" validate:"required,max=40"`
	TotalCents int64  `json:"total_cents" validate:"gte=0"`
}

type waitlistReq struct {
	Date   string `json:"date" validate:"required,date"`
	Name   string `json:"name" validate:"required,max=120"`
	Email  string `json:"email" validate:"required,email,max=190"`
	Phone  string `json:"phone" validate:"omitempty,max=40"`
	Guests int    `json:"guests" validate:"required,min=1"`
}

// Calendar handles GET /v1/calendar?from=&to=. Without a range it covers
// the next 90 days from today at the venue.
func (h *PublicHandler) Calendar(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	view, err := h.Bookings.Calendar(ctx, c.QueryParam("from"), c.QueryParam("to"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, view)
}

// Pricing handles GET /v1/pricing.
func (h *PublicHandler) Pricing(c echo.Context) error {
	return c.JSON(http.StatusOK, h.Settings.Pricing())
}

// Submit handles POST /v1/reservations.
func (h *PublicHandler) Submit(c echo.Context) error {
	var req submitReq
	if err := decode(c, &req); err != nil {
		return fail(c, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	out, err := h.Bookings.Submit(ctx, service.Submission{
		Date:         req.Date,
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		Guests:       req.Guests,
		DrinkPackage: req.DrinkPackage,
		Addons:       req.Addons,
		PromoCode:    req.PromoCode,
		VoucherCode:  req.VoucherCode,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

// Cancel handles POST /v1/reservations/:id/cancel.
func (h *PublicHandler) Cancel(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return fail(c, err)
	}
	var req cancelReq
	if err := decode(c, &req); err != nil {
		return fail(c, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	res, err := h.Bookings.CancelByGuest(ctx, id, req.Email)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"reservation": res, "message": "Uw reservering is geannuleerd."})
}

// CheckVoucher handles POST /v1/vouchers/check. An unusable voucher is a
// normal answer, not an error status.
func (h *PublicHandler) CheckVoucher(c echo.Context) error {
	var req codeCheckReq
	if err := decode(c, &req); err != nil {
		return fail(c, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	check, err := h.Vouchers.Check(ctx, req.Code, req.TotalCents)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, check)
}

// CheckPromo handles POST /v1/promo-codes/check.
func (h *PublicHandler) CheckPromo(c echo.Context) error {
	var req codeCheckReq
	if err := decode(c, &req); err != nil {
		return fail(c, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	check, err := h.Promos.Check(ctx, req.Code, req.TotalCents)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, check)
}

// JoinWaitlist handles POST /v1/waitlist.
func (h *PublicHandler) JoinWaitlist(c echo.Context) error {
	var req waitlistReq
	if err := decode(c, &req); err != nil {
		return fail(c, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	e, err := h.Waitlist.Join(ctx, service.WaitlistRequest{
		Date: req.Date, Name: req.Name, Email: req.Email, Phone: req.Phone, Guests: req.Guests,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"entry":   e,
		"message": "U staat op de wachtlijst. Wij nemen contact met u op zodra er plaats vrijkomt.",
	})
}
