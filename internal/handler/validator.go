package handler

import (
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// RequestValidator plugs go-playground/validator into echo. Field names in
// errors follow the JSON tags.
type RequestValidator struct {
	v *validator.Validate
}

func NewValidator() *RequestValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("date", func(fl validator.FieldLevel) bool {
		_, err := time.Parse("2006-01-02", fl.Field().String())
		return err == nil
	})
	return &RequestValidator{v: v}
}

func (rv *RequestValidator) Validate(i any) error { return rv.v.Struct(i) }

var fieldMessages = map[string]string{
	"required": "is verplicht",
	"email":    "is geen geldig e-mailadres",
	"date":     "gebruik het formaat JJJJ-MM-DD",
	"min":      "is te klein",
	"max":      "is te groot of te lang",
	"oneof":    "heeft een ongeldige waarde",
	"gte":      "is te klein",
	"lte":      "is te groot",
}

func describeField(fe validator.FieldError) string {
	if msg, ok := fieldMessages[fe.Tag()]; ok {
		return msg
	}
	return "is ongeldig"
}
