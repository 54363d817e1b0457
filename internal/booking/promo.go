package booking

import (
	"time"

	"github.com/iliyamo/theater-reservation/internal/model"
)

// ValidatePromo returns p when it can be used at now, nil otherwise. A
// missing, inactive, expired or exhausted code is not an error.
func ValidatePromo(p *model.PromoCode, now time.Time) *model.PromoCode {
	if p == nil || !p.Active {
		return nil
	}
	if p.ExpiresAt != nil && now.After(*p.ExpiresAt) {
		return nil
	}
	if p.UsageLimit != nil && p.UsedCount >= *p.UsageLimit {
		return nil
	}
	return p
}

// PromoDiscount computes the discount on totalCents, clamped to [0, total].
func PromoDiscount(p *model.PromoCode, totalCents int64) int64 {
	if p == nil || totalCents <= 0 {
		return 0
	}
	var d int64
	switch p.Type {
	case model.DiscountPercentage:
		d = totalCents * p.Value / 100
	case model.DiscountFixed:
		d = p.Value
	}
	if d < 0 {
		return 0
	}
	return minInt64(d, totalCents)
}
