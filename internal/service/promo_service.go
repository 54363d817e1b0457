package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/iliyamo/theater-reservation/internal/auth"
	"github.com/iliyamo/theater-reservation/internal/booking"
	"github.com/iliyamo/theater-reservation/internal/model"
	"github.com/iliyamo/theater-reservation/internal/repository"
)

// PromoInput carries the editable promo fields. Code is ignored on update.
type PromoInput struct {
	Code       string
	Type       model.DiscountType
	Value      int64
	Active     bool
	UsageLimit *int
	ExpiresAt  *time.Time
}

// PromoCheck answers the public "does this code work" question.
type PromoCheck struct {
	Valid           bool   `json:"valid"`
	Code            string `json:"code,omitempty"`
	DiscountCents   int64  `json:"discount_cents"`
	TotalAfterCents int64  `json:"total_after_cents"`
	Message         string `json:"message"`
}

type PromoService struct {
	d *Deps
}

func NewPromoService(d *Deps) *PromoService { return &PromoService{d: d} }

// Validate returns the promo when code is usable now and nil when it is
// unknown, inactive, expired or used up.
func (s *PromoService) Validate(ctx context.Context, code string) (*model.PromoCode, error) {
	p, err := s.d.Promos.GetByCode(ctx, s.d.DB, code)
	if errors.Is(err, repository.ErrPromoNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load promo: %w", err)
	}
	return booking.ValidatePromo(p, s.d.now()), nil
}

func (s *PromoService) Check(ctx context.Context, code string, totalCents int64) (PromoCheck, error) {
	if totalCents < 0 {
		return PromoCheck{}, &ValidationError{Field: "total_cents", Message: "mag niet negatief zijn"}
	}
	p, err := s.Validate(ctx, code)
	if err != nil {
		return PromoCheck{}, err
	}
	if p == nil {
		return PromoCheck{Valid: false, TotalAfterCents: totalCents, Message: errPromoInvalid.(*RejectionError).Message}, nil
	}
	discount := booking.PromoDiscount(p, totalCents)
	return PromoCheck{
		Valid:           true,
		Code:            p.Code,
		DiscountCents:   discount,
		TotalAfterCents: totalCents - discount,
		Message:         fmt.Sprintf("Korting van %s toegepast.", booking.FormatEuro(discount)),
	}, nil
}

func validatePromoInput(in PromoInput) error {
	switch in.Type {
	case model.DiscountPercentage:
		if in.Value <= 0 || in.Value > 100 {
			return &ValidationError{Field: "value", Message: "percentage tussen 1 en 100"}
		}
	case model.DiscountFixed:
		if in.Value <= 0 {
			return &ValidationError{Field: "value", Message: "moet groter dan 0 zijn"}
		}
	default:
		return &ValidationError{Field: "type", Message: "kies percentage of fixed"}
	}
	if in.UsageLimit != nil && *in.UsageLimit < 0 {
		return &ValidationError{Field: "usage_limit", Message: "mag niet negatief zijn"}
	}
	return nil
}

func (s *PromoService) Create(ctx context.Context, sess *auth.Session, in PromoInput) (model.PromoCode, error) {
	if err := s.d.authorize(sess, adminOnly); err != nil {
		return model.PromoCode{}, err
	}
	if strings.TrimSpace(in.Code) == "" {
		return model.PromoCode{}, &ValidationError{Field: "code", Message: "verplicht"}
	}
	if err := validatePromoInput(in); err != nil {
		return model.PromoCode{}, err
	}
	p := model.PromoCode{
		Code:       in.Code,
		Type:       in.Type,
		Value:      in.Value,
		Active:     in.Active,
		UsageLimit: in.UsageLimit,
		ExpiresAt:  in.ExpiresAt,
	}
	err := s.d.Promos.Create(ctx, &p, s.d.now())
	if errors.Is(err, repository.ErrPromoCodeTaken) {
		return model.PromoCode{}, reject(KindConflict, "promo_code_taken", "Deze kortingscode bestaat al.")
	}
	if err != nil {
		return model.PromoCode{}, fmt.Errorf("create promo: %w", err)
	}
	if err := s.d.audit(ctx, s.d.DB, sess, "create", "promo", p.ID, p.Code); err != nil {
		return model.PromoCode{}, err
	}
	return p, nil
}

func (s *PromoService) Update(ctx context.Context, sess *auth.Session, id uint64, in PromoInput) (model.PromoCode, error) {
	if err := s.d.authorize(sess, adminOnly); err != nil {
		return model.PromoCode{}, err
	}
	if err := validatePromoInput(in); err != nil {
		return model.PromoCode{}, err
	}
	p, err := s.load(ctx, id)
	if err != nil {
		return model.PromoCode{}, err
	}
	p.Type, p.Value, p.Active, p.UsageLimit, p.ExpiresAt = in.Type, in.Value, in.Active, in.UsageLimit, in.ExpiresAt
	now := s.d.now()
	if err := s.d.Promos.Update(ctx, p, now); err != nil {
		return model.PromoCode{}, fmt.Errorf("update promo: %w", err)
	}
	if err := s.d.audit(ctx, s.d.DB, sess, "update", "promo", id, p.Code); err != nil {
		return model.PromoCode{}, err
	}
	p.UpdatedAt = now
	return *p, nil
}

func (s *PromoService) Deactivate(ctx context.Context, sess *auth.Session, id uint64) error {
	if err := s.d.authorize(sess, adminOnly); err != nil {
		return err
	}
	if _, err := s.load(ctx, id); err != nil {
		return err
	}
	if err := s.d.Promos.Deactivate(ctx, id, s.d.now()); err != nil {
		return fmt.Errorf("deactivate promo: %w", err)
	}
	return s.d.audit(ctx, s.d.DB, sess, "deactivate", "promo", id, "")
}

func (s *PromoService) List(ctx context.Context, sess *auth.Session) ([]model.PromoCode, error) {
	if err := s.d.authorize(sess, anyStaff); err != nil {
		return nil, err
	}
	return s.d.Promos.List(ctx)
}

func (s *PromoService) load(ctx context.Context, id uint64) (*model.PromoCode, error) {
	p, err := s.d.Promos.GetByID(ctx, id)
	if errors.Is(err, repository.ErrPromoNotFound) {
		return nil, errPromoMissing
	}
	return p, err
}
