package handler

import (
	"net/http"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/theater-reservation/internal/service"
)

func newPublicHandler(t *testing.T) (*PublicHandler, sqlmock.Sqlmock) {
	d, mock := newTestDeps(t)
	return &PublicHandler{
		Bookings: service.NewBookingService(d),
		Waitlist: service.NewWaitlistService(d),
		Vouchers: service.NewVoucherService(d),
		Promos:   service.NewPromoService(d),
		Settings: service.NewSettingsService(d),
	}, mock
}

func TestPricingReturnsCatalogue(t *testing.T) {
	h, _ := newPublicHandler(t)
	rec := call(newEcho(), h.Pricing, http.MethodGet, "/v1/pricing", "")

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, float64(8950), body["show_types"].(map[string]any)["dinner_show"])
}

func TestSubmitRejectsInvalidBody(t *testing.T) {
	h, mock := newPublicHandler(t)
	e := newEcho()

	rec := call(e, h.Submit, http.MethodPost, "/v1/reservations",
		`{"date":"2025-03-14","name":"Jan","email":"geen-adres","guests":2}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "email", body["field"])
	assert.Equal(t, "email is geen geldig e-mailadres", body["message"])

	rec = call(e, h.Submit, http.MethodPost, "/v1/reservations", `{"date":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = call(e, h.Submit, http.MethodPost, "/v1/reservations",
		`{"date":"2025-03-14","name":"Jan","email":"jan@example.nl","guests":0}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = call(e, h.Submit, http.MethodPost, "/v1/reservations",
		`{"date":"2025-03-14","name":"Jan","email":"jan@example.nl","guests":2,"addons":{"bubbles":6148914691236518}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmitTooManyGuestsIsRuleRejection(t *testing.T) {
	h, _ := newPublicHandler(t)
	rec := call(newEcho(), h.Submit, http.MethodPost, "/v1/reservations",
		`{"date":"2025-03-14","name":"Jan","email":"jan@example.nl","guests":41}`)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "too_many_guests", decodeBody(t, rec)["error"])
}

func TestCalendarRejectsBadRange(t *testing.T) {
	h, _ := newPublicHandler(t)
	rec := call(newEcho(), h.Calendar, http.MethodGet, "/v1/calendar?from=maart", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCalendarListsAvailability(t *testing.T) {
	h, mock := newPublicHandler(t)
	date := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery("FROM show_events").
		WillReturnRows(sqlmock.NewRows([]string{"id", "show_date", "name", "show_type", "capacity", "manual_capacity",
			"is_closed", "external_bookings", "deleted_at", "created_at", "updated_at"}).
			AddRow(1, date, "Diner & Show", "dinner_show", 100, nil, false, 0, nil, date, date))
	mock.ExpectQuery("FROM reservations").
		WillReturnRows(sqlmock.NewRows([]string{"id", "show_date", "status", "guests"}).
			AddRow(5, date, "confirmed", 30).
			AddRow(6, date, "cancelled", 10))

	rec := call(newEcho(), h.Calendar, http.MethodGet, "/v1/calendar?from=2025-03-01&to=2025-03-31", "")
	require.Equal(t, http.StatusOK, rec.Code)
	days := decodeBody(t, rec)["days"].([]any)
	require.Len(t, days, 1)
	first := days[0].(map[string]any)
	assert.Equal(t, float64(30), first["booked"])
	assert.Equal(t, float64(70), first["available"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCheckPromoUnknownCodeIsNotAnError(t *testing.T) {
	h, mock := newPublicHandler(t)
	mock.ExpectQuery("FROM promo_codes WHERE code").WithArgs("ONBEKEND").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	rec := call(newEcho(), h.CheckPromo, http.MethodPost, "/v1/promo-codes/check", `{"code":"onbekend","total_cents":10000}`)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, false, body["valid"])
	assert.Equal(t, float64(10000), body["total_after_cents"])
}

func TestCheckPromoFixedDiscount(t *testing.T) {
	h, mock := newPublicHandler(t)
	now := time.Now().UTC()
	mock.ExpectQuery("FROM promo_codes WHERE code").WithArgs("WELKOM").
		WillReturnRows(sqlmock.NewRows([]string{"id", "code", "discount_type", "discount_value", "is_active",
			"usage_limit", "used_count", "expires_at", "created_at", "updated_at"}).
			AddRow(3, "WELKOM", "fixed", 1500, true, nil, 0, nil, now, now))

	rec := call(newEcho(), h.CheckPromo, http.MethodPost, "/v1/promo-codes/check", `{"code":"welkom","total_cents":10000}`)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["valid"])
	assert.Equal(t, float64(1500), body["discount_cents"])
	assert.Equal(t, float64(8500), body["total_after_cents"])
}
