package config

import "time"

type Server interface {
	Host() string
	Port() int
	Address() string
	Router() string
	ReadTimeout() time.Duration
	ShutdownTimeout() time.Duration
}

type Logger interface {
	Level() string
	AsJSON() bool
}

type Pricing interface {
	DefaultCurrency() string
	DefaultZone() string
	Products() []string
	SessionTTL() time.Duration
	// FetchLimit bounds concurrent product fetches per session, 0 for none.
	FetchLimit() int
	PropsKey() []byte
	ContactURL() string
	SignupURL() string
}

type Catalog interface {
	Driver() string
	DSN() string
	CacheTTL() time.Duration
}
