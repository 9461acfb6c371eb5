package profile

import (
	"context"
	"fmt"

	"github.com/angelmondragon/gearmart-backend/pkg/config"
)

// Profile carries the shopper details checkout stamps onto the order.
type Profile struct {
	CustomerName     string `json:"customer_name"`
	ShippingAddress  string `json:"shipping_address"`
	DiscountEligible bool   `json:"discount_eligible"`
}

// Provider resolves the active shopper profile. Checkout reads it once per
// attempt so eligibility cannot change mid-flow.
type Provider interface {
	Current(ctx context.Context) (Profile, error)
}

// ConfigProvider serves the single profile defined in configuration.
type ConfigProvider struct {
	profile Profile
}

// NewConfigProvider builds the provider from the profile section of the
// application config.
func NewConfigProvider(cfg config.ProfileConfig) (*ConfigProvider, error) {
	if cfg.CustomerName == "" {
		return nil, fmt.Errorf("customer name required")
	}
	return &ConfigProvider{
		profile: Profile{
			CustomerName:     cfg.CustomerName,
			ShippingAddress:  cfg.ShippingAddress,
			DiscountEligible: cfg.DiscountEligible,
		},
	}, nil
}

// Current returns the configured profile.
func (p *ConfigProvider) Current(ctx context.Context) (Profile, error) {
	return p.profile, nil
}
