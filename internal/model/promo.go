package model

import "time"

// PromoCode is a percentage or fixed discount. For percentage codes Value
// is a whole percent, for fixed codes it is in cents.
type PromoCode struct {
	ID         uint64       `json:"id"`          // promo_codes.id
	Code       string       `json:"code"`        // promo_codes.code
	Type       DiscountType `json:"type"`        // promo_codes.discount_type
	Value      int64        `json:"value"`       // promo_codes.discount_value
	Active     bool         `json:"active"`      // promo_codes.is_active
	UsageLimit *int         `json:"usage_limit"` // promo_codes.usage_limit (nullable)
	UsedCount  int          `json:"used_count"`  // promo_codes.used_count
	ExpiresAt  *time.Time   `json:"expires_at"`  // promo_codes.expires_at (nullable)
	CreatedAt  time.Time    `json:"created_at"`  // promo_codes.created_at
	UpdatedAt  time.Time    `json:"updated_at"`  // promo_codes.updated_at
}
