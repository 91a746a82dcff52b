package envconfig

import (
	"errors"
	"time"

	"github.com/caarlos0/env/v11"
)

type pricingEnv struct {
	DefaultCurrency string        `env:"PRICING_DEFAULT_CURRENCY" envDefault:"EUR"`
	DefaultZone     string        `env:"PRICING_DEFAULT_ZONE" envDefault:"par"`
	Products        []string      `env:"PRICING_PRODUCTS" envDefault:"postgresql-addon,mysql-addon,redis-addon,cellar-addon,fsbucket-addon" envSeparator:","`
	SessionTTL      time.Duration `env:"PRICING_SESSION_TTL" envDefault:"30m"`
	FetchLimit      int           `env:"PRICING_FETCH_LIMIT" envDefault:"0"`
	PropsKey        string        `env:"PRICING_PROPS_KEY,unset"`
	ContactURL      string        `env:"PRICING_CONTACT_URL" envDefault:"https://www.clever-cloud.com/contact/"`
	SignupURL       string        `env:"PRICING_SIGNUP_URL" envDefault:"https://console.clever-cloud.com/users/me/sign-up"`
}

type pricing struct {
	raw pricingEnv
}

func NewPricingConfig() (*pricing, error) {
	var raw pricingEnv
	if err := env.Parse(&raw); err != nil {
		return nil, err
	}
	if raw.SessionTTL <= 0 {
		return nil, errors.New("PRICING_SESSION_TTL must be positive")
	}
	if raw.FetchLimit < 0 {
		return nil, errors.New("PRICING_FETCH_LIMIT must not be negative")
	}
	return &pricing{raw: raw}, nil
}

func (cfg *pricing) DefaultCurrency() string   { return cfg.raw.DefaultCurrency }
func (cfg *pricing) DefaultZone() string       { return cfg.raw.DefaultZone }
func (cfg *pricing) Products() []string        { return cfg.raw.Products }
func (cfg *pricing) SessionTTL() time.Duration { return cfg.raw.SessionTTL }
func (cfg *pricing) FetchLimit() int           { return cfg.raw.FetchLimit }
func (cfg *pricing) PropsKey() []byte          { return []byte(cfg.raw.PropsKey) }
func (cfg *pricing) ContactURL() string        { return cfg.raw.ContactURL }
func (cfg *pricing) SignupURL() string         { return cfg.raw.SignupURL }
