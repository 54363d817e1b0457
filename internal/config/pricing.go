package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// PricingConfig is the pricing facet: per-person show prices, per-person
// drink packages and per-item addons, all in cents. Keys are lower-case.
type PricingConfig struct {
	ShowTypes     map[string]int64 `mapstructure:"show_types" json:"show_types"`
	DrinkPackages map[string]int64 `mapstructure:"drink_packages" json:"drink_packages"`
	Addons        map[string]int64 `mapstructure:"addons" json:"addons"`
}

// SettingsGroupPricing is the settings row that persists PricingConfig.
const SettingsGroupPricing = "pricing"

func pricingDefaults(v *viper.Viper) {
	v.SetDefault("show_types", map[string]any{
		"dinner_show": 8950,
		"matinee":     6450,
		"gala":        12500,
	})
	v.SetDefault("drink_packages", map[string]any{
		"basic":   1750,
		"premium": 2950,
	})
	v.SetDefault("addons", map[string]any{
		"bubbles":         1250,
		"dessert_upgrade": 650,
		"program_booklet": 500,
	})
}

// LoadPricing reads the pricing facet from defaults and an optional
// PRICING_CONFIG_FILE (yaml, json or toml).
func LoadPricing() (PricingConfig, error) {
	v := viper.New()
	pricingDefaults(v)
	if path := os.Getenv("PRICING_CONFIG_FILE"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return PricingConfig{}, fmt.Errorf("read pricing config: %w", err)
		}
	}
	var p PricingConfig
	if err := v.Unmarshal(&p); err != nil {
		return PricingConfig{}, fmt.Errorf("decode pricing config: %w", err)
	}
	p = p.Normalized()
	return p, p.Validate()
}

// Normalized returns a copy with lower-cased, trimmed keys.
func (p PricingConfig) Normalized() PricingConfig {
	return PricingConfig{
		ShowTypes:     lowerKeys(p.ShowTypes),
		DrinkPackages: lowerKeys(p.DrinkPackages),
		Addons:        lowerKeys(p.Addons),
	}
}

// Validate requires at least one show type and non-negative prices.
func (p PricingConfig) Validate() error {
	var errs []error
	if len(p.ShowTypes) == 0 {
		errs = append(errs, errors.New("at least one show type price is required"))
	}
	for group, m := range map[string]map[string]int64{
		"show_types":     p.ShowTypes,
		"drink_packages": p.DrinkPackages,
		"addons":         p.Addons,
	} {
		for k, price := range m {
			if k == "" {
				errs = append(errs, fmt.Errorf("%s: empty key", group))
			}
			if price < 0 {
				errs = append(errs, fmt.Errorf("%s.%s: price must be >= 0", group, k))
			}
		}
	}
	return errors.Join(errs...)
}

func lowerKeys(in map[string]int64) map[string]int64 {
	out := make(map[string]int64, len(in))
	for k, v := range in {
		out[strings.ToLower(strings.TrimSpace(k))] = v
	}
	return out
}
