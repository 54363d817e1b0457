package handler

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/theater-reservation/internal/config"
	"github.com/iliyamo/theater-reservation/internal/service"
)

func newTestDeps(t *testing.T) (*service.Deps, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	log := logrus.New()
	log.SetOutput(io.Discard)
	rules := config.BookingRules{
		DefaultCapacity:       120,
		Timezone:              "UTC",
		MaxGuestsPerBooking:   40,
		VoucherValidityMonths: 12,
		WaitlistSweepInterval: time.Hour,
	}
	pricing := config.PricingConfig{
		ShowTypes:     map[string]int64{"dinner_show": 8950},
		DrinkPackages: map[string]int64{"basic": 1750},
		Addons:        map[string]int64{"bubbles": 1250},
	}
	return service.NewDeps(db, config.NewStore(rules), config.NewStore(pricing), nil, log), mock
}

func newEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

// call runs h against a JSON request and returns the recorder.
func call(e *echo.Echo, h echo.HandlerFunc, method, target, body string, params ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if len(params) > 0 {
		c.SetParamNames("id")
		c.SetParamValues(params...)
	}
	_ = h(c)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

