package booking

import (
	"fmt"
	"strings"

	"github.com/iliyamo/theater-reservation/internal/config"
)

// Quote is the price breakdown of a booking before promo and voucher.
type Quote struct {
	PerPersonCents int64 `json:"per_person_cents"`
	ShowCents      int64 `json:"show_cents"`
	DrinksCents    int64 `json:"drinks_cents"`
	AddonsCents    int64 `json:"addons_cents"`
	SubtotalCents  int64 `json:"subtotal_cents"`
}

// UnknownItemError reports a show type, drink package or addon that is not
// in the pricing catalogue.
type UnknownItemError struct {
	Kind string
	Key  string
}

func (e *UnknownItemError) Error() string {
	return fmt.Sprintf("unknown %s %q", e.Kind, e.Key)
}

// MaxAddonQuantity caps a single addon line on one booking.
const MaxAddonQuantity = 100

// PriceQuote prices a booking against the catalogue. An empty drink package
// means no package. Quantities above MaxAddonQuantity and totals that do not
// fit in int64 cents yield ErrAmountOutOfRange.
func PriceQuote(p config.PricingConfig, showType string, guests int, drinkPackage string, addons map[string]int) (Quote, error) {
	perPerson, ok := p.ShowTypes[strings.ToLower(showType)]
	if !ok {
		return Quote{}, &UnknownItemError{Kind: "show type", Key: showType}
	}
	var (
		q   = Quote{PerPersonCents: perPerson}
		err error
	)
	if q.ShowCents, err = mulCents(perPerson, int64(guests)); err != nil {
		return Quote{}, err
	}

	if pkg := strings.ToLower(strings.TrimSpace(drinkPackage)); pkg != "" {
		price, ok := p.DrinkPackages[pkg]
		if !ok {
			return Quote{}, &UnknownItemError{Kind: "drink package", Key: drinkPackage}
		}
		if q.DrinksCents, err = mulCents(price, int64(guests)); err != nil {
			return Quote{}, err
		}
	}
	for item, qty := range addons {
		if qty <= 0 {
			continue
		}
		price, ok := p.Addons[strings.ToLower(item)]
		if !ok {
			return Quote{}, &UnknownItemError{Kind: "addon", Key: item}
		}
		if qty > MaxAddonQuantity {
			return Quote{}, ErrAmountOutOfRange
		}
		line, err := mulCents(price, int64(qty))
		if err != nil {
			return Quote{}, err
		}
		if q.AddonsCents, err = addCents(q.AddonsCents, line); err != nil {
			return Quote{}, err
		}
	}
	if q.SubtotalCents, err = addCents(q.ShowCents, q.DrinksCents); err != nil {
		return Quote{}, err
	}
	if q.SubtotalCents, err = addCents(q.SubtotalCents, q.AddonsCents); err != nil {
		return Quote{}, err
	}
	return q, nil
}
