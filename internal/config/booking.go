package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/spf13/viper"
)

// BookingRules is the booking facet: defaults and limits the admission flow
// and voucher administration depend on. It is loaded from defaults, an
// optional file (BOOKING_CONFIG_FILE) and BOOKING_* environment variables,
// and can be overridden at runtime from the settings table.
type BookingRules struct {
	DefaultCapacity       int           `mapstructure:"default_capacity" json:"default_capacity"`
	Timezone              string        `mapstructure:"timezone" json:"timezone"`
	MaxGuestsPerBooking   int           `mapstructure:"max_guests_per_booking" json:"max_guests_per_booking"`
	VoucherValidityMonths int           `mapstructure:"voucher_validity_months" json:"voucher_validity_months"`
	WaitlistSweepInterval time.Duration `mapstructure:"waitlist_sweep_interval" json:"waitlist_sweep_interval"`
}

// SettingsGroupBooking is the settings row that persists BookingRules.
const SettingsGroupBooking = "booking"

func bookingDefaults(v *viper.Viper) {
	v.SetDefault("default_capacity", 120)
	v.SetDefault("timezone", "Europe/Amsterdam")
	v.SetDefault("max_guests_per_booking", 40)
	v.SetDefault("voucher_validity_months", 12)
	v.SetDefault("waitlist_sweep_interval", "1h")
}

// LoadBookingRules builds the facet and validates it.
func LoadBookingRules() (BookingRules, error) {
	v := viper.New()
	bookingDefaults(v)
	v.SetEnvPrefix("BOOKING")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path := os.Getenv("BOOKING_CONFIG_FILE"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return BookingRules{}, fmt.Errorf("read booking config: %w", err)
		}
	}

	var r BookingRules
	if err := v.Unmarshal(&r); err != nil {
		return BookingRules{}, fmt.Errorf("decode booking config: %w", err)
	}
	return r, r.Validate()
}

// Validate checks the facet for values the booking flow cannot work with.
func (r BookingRules) Validate() error {
	var errs []error
	if r.DefaultCapacity < 0 {
		errs = append(errs, errors.New("default_capacity must be >= 0"))
	}
	if r.MaxGuestsPerBooking < 1 {
		errs = append(errs, errors.New("max_guests_per_booking must be >= 1"))
	}
	if r.VoucherValidityMonths < 1 {
		errs = append(errs, errors.New("voucher_validity_months must be >= 1"))
	}
	if r.WaitlistSweepInterval < time.Minute {
		errs = append(errs, errors.New("waitlist_sweep_interval must be at least 1m"))
	}
	if _, err := loadLocation(r.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("timezone %q: %w", r.Timezone, err))
	}
	return errors.Join(errs...)
}

// Location returns the venue timezone. Validate guarantees it loads; UTC is
// returned for an invalid value.
func (r BookingRules) Location() *time.Location {
	loc, err := loadLocation(r.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// locations caches loaded zones by name; time.LoadLocation reads the zone
// database on every call.
var locations sync.Map

func loadLocation(name string) (*time.Location, error) {
	if loc, ok := locations.Load(name); ok {
		return loc.(*time.Location), nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, err
	}
	locations.Store(name, loc)
	return loc, nil
}

type bookingRulesDoc BookingRules

// MarshalJSON writes the sweep interval as a duration string ("1h0m0s").
func (r BookingRules) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		bookingRulesDoc
		WaitlistSweepInterval string `json:"waitlist_sweep_interval"`
	}{bookingRulesDoc(r), r.WaitlistSweepInterval.String()})
}

// UnmarshalJSON accepts the sweep interval as a duration string ("30m") or
// as integer nanoseconds, the form older settings rows were stored in.
func (r *BookingRules) UnmarshalJSON(b []byte) error {
	doc := struct {
		*bookingRulesDoc
		WaitlistSweepInterval json.RawMessage `json:"waitlist_sweep_interval"`
	}{bookingRulesDoc: (*bookingRulesDoc)(r)}
	if err := json.Unmarshal(b, &doc); err != nil {
		return err
	}
	raw := doc.WaitlistSweepInterval
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		d, err := time.ParseDuration(text)
		if err != nil {
			return fmt.Errorf("waitlist_sweep_interval: %w", err)
		}
		r.WaitlistSweepInterval = d
		return nil
	}
	var nanos int64
	if err := json.Unmarshal(raw, &nanos); err != nil {
		return fmt.Errorf("waitlist_sweep_interval: %w", err)
	}
	r.WaitlistSweepInterval = time.Duration(nanos)
	return nil
}
