package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/theater-reservation/internal/auth"
	"github.com/iliyamo/theater-reservation/internal/middleware"
	"github.com/iliyamo/theater-reservation/internal/service"
)

const (
	requestTimeout = 5 * time.Second
	genericError   = "Er is iets misgegaan, probeer het opnieuw."
)

func reqCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), requestTimeout)
}

// decode binds the request body into dst and validates it.
func decode(c echo.Context, dst any) error {
	if err := c.Bind(dst); err != nil {
		return &service.ValidationError{Field: "body", Message: "ongeldige aanvraag"}
	}
	return c.Validate(dst)
}

func parseID(c echo.Context) (uint64, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, &service.ValidationError{Field: "id", Message: "ongeldig id"}
	}
	return id, nil
}

var rejectionStatus = map[service.RejectionKind]int{
	service.KindRule:     http.StatusUnprocessableEntity,
	service.KindNotFound: http.StatusNotFound,
	service.KindConflict: http.StatusConflict,
}

// fail writes the response for err. Expected outcomes (rejections, bad
// input, auth problems) carry their own message; anything else is logged
// and reported generically.
func fail(c echo.Context, err error) error {
	var (
		rej  *service.RejectionError
		verr *service.ValidationError
		fes  validator.ValidationErrors
	)
	switch {
	case errors.As(err, &rej):
		return c.JSON(rejectionStatus[rej.Kind], echo.Map{"error": rej.Code, "message": rej.Message})
	case errors.As(err, &verr):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid_input", "field": verr.Field, "message": verr.Field + " " + verr.Message})
	case errors.As(err, &fes) && len(fes) > 0:
		fe := fes[0]
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid_input", "field": fe.Field(), "message": fe.Field() + " " + describeField(fe)})
	case errors.Is(err, auth.ErrNoSession), errors.Is(err, auth.ErrSessionExpired):
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized", "message": "Uw sessie is verlopen. Log opnieuw in."})
	case errors.Is(err, auth.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden", "message": "U heeft geen rechten voor deze actie."})
	}
	middleware.Logger(c).WithError(err).Error("request failed")
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal", "message": genericError})
}

var errRefreshRequired = &service.ValidationError{Field: "refresh_token", Message: "is verplicht"}
