package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/theater-reservation/internal/middleware"
	"github.com/iliyamo/theater-reservation/internal/model"
	"github.com/iliyamo/theater-reservation/internal/service"
	"github.com/iliyamo/theater-reservation/internal/utils"
)

const testSecret = "test-secret"

// authed runs h behind JWTAuth with a token for role.
func authed(t *testing.T, h echo.HandlerFunc, role, method, body string, id string) *httptest.ResponseRecorder {
	t.Helper()
	tok, err := utils.NewAccessToken(testSecret, 7, role, 15)
	require.NoError(t, err)

	e := newEcho()
	req := httptest.NewRequest(method, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+tok.Token)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if id != "" {
		c.SetParamNames("id")
		c.SetParamValues(id)
	}
	_ = middleware.JWTAuth(testSecret)(h)(c)
	return rec
}

func TestApproveWithoutSession(t *testing.T) {
	d, _ := newTestDeps(t)
	h := &AdminReservationHandler{Bookings: service.NewBookingService(d)}
	rec := call(newEcho(), h.Approve, http.MethodPost, "/", "", "5")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestApproveIsAdminOnly(t *testing.T) {
	d, mock := newTestDeps(t)
	h := &AdminReservationHandler{Bookings: service.NewBookingService(d)}
	rec := authed(t, h.Approve, model.RoleStaff, http.MethodPost, "", "5")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReservationListRejectsUnknownStatus(t *testing.T) {
	d, _ := newTestDeps(t)
	h := &AdminReservationHandler{Bookings: service.NewBookingService(d)}

	tok, err := utils.NewAccessToken(testSecret, 7, model.RoleAdmin, 15)
	require.NoError(t, err)
	e := newEcho()
	req := httptest.NewRequest(http.MethodGet, "/v1/admin/reservations?status=gepland", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+tok.Token)
	rec := httptest.NewRecorder()
	_ = middleware.JWTAuth(testSecret)(h.List)(e.NewContext(req, rec))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "status", decodeBody(t, rec)["field"])
}

func TestCheckInRequiresFlag(t *testing.T) {
	d, _ := newTestDeps(t)
	h := &AdminReservationHandler{Bookings: service.NewBookingService(d)}
	rec := authed(t, h.CheckIn, model.RoleStaff, http.MethodPut, `{}`, "5")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "checked_in", decodeBody(t, rec)["field"])
}

func TestCreateVoucherValidatesKind(t *testing.T) {
	d, _ := newTestDeps(t)
	h := &AdminVoucherHandler{Vouchers: service.NewVoucherService(d)}
	rec := authed(t, h.Create, model.RoleAdmin, http.MethodPost, `{"kind":"cadeau","value_cents":5000}`, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "kind", decodeBody(t, rec)["field"])
}

func TestUpdatePricingRejectsEmptyCatalogue(t *testing.T) {
	d, mock := newTestDeps(t)
	h := &AdminSettingsHandler{Settings: service.NewSettingsService(d)}
	rec := authed(t, h.UpdatePricing, model.RoleAdmin, http.MethodPut, `{"show_types":{}}`, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRulesReadableByStaff(t *testing.T) {
	d, _ := newTestDeps(t)
	h := &AdminSettingsHandler{Settings: service.NewSettingsService(d)}
	rec := authed(t, h.BookingRules, model.RoleStaff, http.MethodGet, "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(40), decodeBody(t, rec)["max_guests_per_booking"])
}

func TestUpdateBookingRulesAcceptsDurationString(t *testing.T) {
	d, mock := newTestDeps(t)
	h := &AdminSettingsHandler{Settings: service.NewSettingsService(d)}
	mock.ExpectExec("INSERT INTO settings").WillReturnResult(sqlmock.NewResult(1, 1))

	body := `{"default_capacity":100,"timezone":"UTC","max_guests_per_booking":30,` +
		`"voucher_validity_months":12,"waitlist_sweep_interval":"30m"}`
	rec := authed(t, h.UpdateBookingRules, model.RoleAdmin, http.MethodPut, body, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "30m0s", decodeBody(t, rec)["waitlist_sweep_interval"])
	assert.Equal(t, 30*time.Minute, d.Rules.Get().WaitlistSweepInterval)
	assert.NoError(t, mock.ExpectationsWereMet())

	rec = authed(t, h.UpdateBookingRules, model.RoleAdmin, http.MethodPut, `{"waitlist_sweep_interval":"straks"}`, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
