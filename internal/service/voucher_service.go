package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/iliyamo/theater-reservation/internal/auth"
	"github.com/iliyamo/theater-reservation/internal/booking"
	"github.com/iliyamo/theater-reservation/internal/model"
	"github.com/iliyamo/theater-reservation/internal/repository"
	"github.com/iliyamo/theater-reservation/internal/utils"
)

// VoucherInput describes a voucher to issue. ExpiresOn is optional; the
// default validity comes from the booking rules.
type VoucherInput struct {
	Kind       model.VoucherKind
	ValueCents int64
	Persons    int
	ExpiresOn  string
	Notes      string
}

// VoucherView adds the status admins see, which accounts for expiry.
type VoucherView struct {
	model.Voucher
	EffectiveStatus model.VoucherStatus `json:"effective_status"`
}

type VoucherService struct {
	d *Deps
	// NewCode generates candidate codes; swapped in tests.
	NewCode func(year int) string
}

func NewVoucherService(d *Deps) *VoucherService {
	return &VoucherService{d: d, NewCode: utils.NewVoucherCode}
}

const codeAttempts = 5

func (s *VoucherService) view(v *model.Voucher) VoucherView {
	return VoucherView{Voucher: *v, EffectiveStatus: booking.EffectiveStatus(v, s.d.Now(), s.d.Rules.Get().Location())}
}

// Check validates code against an order total without using it.
func (s *VoucherService) Check(ctx context.Context, code string, totalCents int64) (booking.VoucherCheck, error) {
	if totalCents < 0 {
		return booking.VoucherCheck{}, &ValidationError{Field: "total_cents", Message: "mag niet negatief zijn"}
	}
	v, err := s.d.Vouchers.GetByCode(ctx, normalizeVoucherCode(code))
	if err != nil && !errors.Is(err, repository.ErrVoucherNotFound) {
		return booking.VoucherCheck{}, fmt.Errorf("load voucher: %w", err)
	}
	return booking.ValidateForUse(v, totalCents, s.d.Now(), s.d.Rules.Get().Location()), nil
}

// Create issues a voucher with a generated code.
func (s *VoucherService) Create(ctx context.Context, sess *auth.Session, in VoucherInput) (VoucherView, error) {
	if err := s.d.authorize(sess, adminOnly); err != nil {
		return VoucherView{}, err
	}
	switch in.Kind {
	case model.VoucherKindValue:
		if in.ValueCents <= 0 {
			return VoucherView{}, &ValidationError{Field: "value_cents", Message: "moet groter dan 0 zijn"}
		}
		in.Persons = 0
	case model.VoucherKindPersons:
		if in.Persons <= 0 {
			return VoucherView{}, &ValidationError{Field: "persons", Message: "moet groter dan 0 zijn"}
		}
		in.ValueCents = 0
	default:
		return VoucherView{}, &ValidationError{Field: "kind", Message: "kies value of persons"}
	}

	issued := s.d.today()
	expires := issued.AddDate(0, s.d.Rules.Get().VoucherValidityMonths, 0)
	if in.ExpiresOn != "" {
		t, err := parseDate("expires_on", in.ExpiresOn)
		if err != nil {
			return VoucherView{}, err
		}
		if t.Before(issued) {
			return VoucherView{}, &ValidationError{Field: "expires_on", Message: "mag niet in het verleden liggen"}
		}
		expires = t
	}

	v := model.Voucher{
		Kind:       in.Kind,
		ValueCents: in.ValueCents,
		Persons:    in.Persons,
		IssuedOn:   issued,
		ExpiresOn:  expires,
		Status:     model.VoucherActive,
		Notes:      in.Notes,
	}
	now := s.d.now()
	var err error
	for i := 0; i < codeAttempts; i++ {
		v.Code = s.NewCode(issued.Year())
		err = s.d.Vouchers.Create(ctx, &v, now)
		if !errors.Is(err, repository.ErrVoucherCodeTaken) {
			break
		}
	}
	if err != nil {
		return VoucherView{}, fmt.Errorf("create voucher: %w", err)
	}
	if err := s.d.audit(ctx, s.d.DB, sess, "create", "voucher", v.ID, v.Code); err != nil {
		return VoucherView{}, err
	}
	s.d.Log.WithField("voucher_id", v.ID).WithField("code", v.Code).Info("voucher issued")
	return s.view(&v), nil
}

func (s *VoucherService) List(ctx context.Context, sess *auth.Session, status model.VoucherStatus) ([]VoucherView, error) {
	if err := s.d.authorize(sess, anyStaff); err != nil {
		return nil, err
	}
	vs, err := s.d.Vouchers.List(ctx, status)
	if err != nil {
		return nil, err
	}
	out := make([]VoucherView, 0, len(vs))
	for i := range vs {
		out = append(out, s.view(&vs[i]))
	}
	return out, nil
}

func (s *VoucherService) Get(ctx context.Context, sess *auth.Session, id uint64) (VoucherView, error) {
	if err := s.d.authorize(sess, anyStaff); err != nil {
		return VoucherView{}, err
	}
	v, err := s.load(ctx, id)
	if err != nil {
		return VoucherView{}, err
	}
	return s.view(v), nil
}

func (s *VoucherService) load(ctx context.Context, id uint64) (*model.Voucher, error) {
	v, err := s.d.Vouchers.GetByID(ctx, id)
	if errors.Is(err, repository.ErrVoucherNotFound) {
		return nil, errVoucherMissing
	}
	return v, err
}

// Extend moves the expiry date of an unused voucher further out.
func (s *VoucherService) Extend(ctx context.Context, sess *auth.Session, id uint64, expiresOn string) (VoucherView, error) {
	if err := s.d.authorize(sess, adminOnly); err != nil {
		return VoucherView{}, err
	}
	t, err := parseDate("expires_on", expiresOn)
	if err != nil {
		return VoucherView{}, err
	}
	v, err := s.load(ctx, id)
	if err != nil {
		return VoucherView{}, err
	}
	if v.Status == model.VoucherUsed || v.Status == model.VoucherArchived {
		return VoucherView{}, reject(KindConflict, "voucher_not_extendable", "Gebruikte of gearchiveerde vouchers kunnen niet worden verlengd.")
	}
	if !t.After(v.ExpiresOn) {
		return VoucherView{}, &ValidationError{Field: "expires_on", Message: "moet na de huidige vervaldatum liggen"}
	}
	return s.mutate(ctx, sess, id, "extend", t.Format(dateLayout), func(now time.Time) error {
		return s.d.Vouchers.Extend(ctx, id, t, now)
	})
}

func (s *VoucherService) Archive(ctx context.Context, sess *auth.Session, id uint64) (VoucherView, error) {
	if err := s.d.authorize(sess, adminOnly); err != nil {
		return VoucherView{}, err
	}
	return s.mutate(ctx, sess, id, "archive", "", func(now time.Time) error {
		return s.d.Vouchers.Archive(ctx, id, now)
	})
}

// Restore reactivates an archived or used voucher.
func (s *VoucherService) Restore(ctx context.Context, sess *auth.Session, id uint64) (VoucherView, error) {
	if err := s.d.authorize(sess, adminOnly); err != nil {
		return VoucherView{}, err
	}
	return s.mutate(ctx, sess, id, "restore", "", func(now time.Time) error {
		return s.d.Vouchers.Restore(ctx, id, now)
	})
}

func (s *VoucherService) mutate(ctx context.Context, sess *auth.Session, id uint64, action, detail string, fn func(time.Time) error) (VoucherView, error) {
	err := fn(s.d.now())
	if errors.Is(err, repository.ErrConflict) {
		if _, lerr := s.load(ctx, id); lerr != nil {
			return VoucherView{}, lerr
		}
		return VoucherView{}, reject(KindConflict, "voucher_state", "Deze actie is niet mogelijk voor de huidige status van de voucher.")
	}
	if err != nil {
		return VoucherView{}, fmt.Errorf("%s voucher: %w", action, err)
	}
	if err := s.d.audit(ctx, s.d.DB, sess, action, "voucher", id, detail); err != nil {
		return VoucherView{}, err
	}
	v, err := s.load(ctx, id)
	if err != nil {
		return VoucherView{}, err
	}
	return s.view(v), nil
}
