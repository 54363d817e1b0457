package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/iliyamo/theater-reservation/internal/auth"
	"github.com/iliyamo/theater-reservation/internal/config"
)

// SettingsService manages the booking and pricing facets. Each facet is
// validated on its own, persisted as one settings row and then swapped into
// the in-memory store the other services read from.
type SettingsService struct {
	d *Deps

	mu      sync.Mutex
	onRules []func(config.BookingRules)
}

func NewSettingsService(d *Deps) *SettingsService { return &SettingsService{d: d} }

// Bootstrap overlays persisted facets on the values loaded from
// defaults, file and environment. Invalid stored rows are ignored.
func (s *SettingsService) Bootstrap(ctx context.Context) error {
	var rules config.BookingRules
	ok, err := s.d.Settings.Load(ctx, config.SettingsGroupBooking, &rules)
	if err != nil {
		return fmt.Errorf("load booking settings: %w", err)
	}
	if ok {
		if verr := rules.Validate(); verr != nil {
			s.d.Log.WithError(verr).Warn("stored booking settings invalid, keeping configured values")
		} else {
			s.d.Rules.Set(rules)
		}
	}

	var pricing config.PricingConfig
	ok, err = s.d.Settings.Load(ctx, config.SettingsGroupPricing, &pricing)
	if err != nil {
		return fmt.Errorf("load pricing settings: %w", err)
	}
	if ok {
		pricing = pricing.Normalized()
		if verr := pricing.Validate(); verr != nil {
			s.d.Log.WithError(verr).Warn("stored pricing invalid, keeping configured values")
		} else {
			s.d.Pricing.Set(pricing)
		}
	}
	return nil
}

// OnBookingRulesChange registers fn to run after every successful update of
// the booking facet, e.g. to reschedule the sweeper.
func (s *SettingsService) OnBookingRulesChange(fn func(config.BookingRules)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onRules = append(s.onRules, fn)
}

func (s *SettingsService) BookingRules(sess *auth.Session) (config.BookingRules, error) {
	if err := s.d.authorize(sess, anyStaff); err != nil {
		return config.BookingRules{}, err
	}
	return s.d.Rules.Get(), nil
}

func (s *SettingsService) UpdateBookingRules(ctx context.Context, sess *auth.Session, r config.BookingRules) (config.BookingRules, error) {
	if err := s.d.authorize(sess, adminOnly); err != nil {
		return config.BookingRules{}, err
	}
	if err := r.Validate(); err != nil {
		return config.BookingRules{}, &ValidationError{Field: "booking", Message: err.Error()}
	}
	if err := s.d.Settings.Save(ctx, config.SettingsGroupBooking, r, sess.UserID); err != nil {
		return config.BookingRules{}, fmt.Errorf("save booking settings: %w", err)
	}
	s.d.Rules.Set(r)
	s.d.Log.WithField("actor", sess.UserID).Info("booking settings updated")

	s.mu.Lock()
	listeners := append([]func(config.BookingRules){}, s.onRules...)
	s.mu.Unlock()
	for _, fn := range listeners {
		fn(r)
	}
	return r, nil
}

// Pricing is public: the booking form needs the catalogue.
func (s *SettingsService) Pricing() config.PricingConfig { return s.d.Pricing.Get() }

func (s *SettingsService) UpdatePricing(ctx context.Context, sess *auth.Session, p config.PricingConfig) (config.PricingConfig, error) {
	if err := s.d.authorize(sess, adminOnly); err != nil {
		return config.PricingConfig{}, err
	}
	p = p.Normalized()
	if err := p.Validate(); err != nil {
		return config.PricingConfig{}, &ValidationError{Field: "pricing", Message: err.Error()}
	}
	if err := s.d.Settings.Save(ctx, config.SettingsGroupPricing, p, sess.UserID); err != nil {
		return config.PricingConfig{}, fmt.Errorf("save pricing: %w", err)
	}
	s.d.Pricing.Set(p)
	s.d.Log.WithField("actor", sess.UserID).Info("pricing updated")
	return p, nil
}
