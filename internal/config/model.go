// internal/config/model.go
//
// Typed configuration model for the event form service.
//
// Context
// -------
// These structs define the shape of the configuration tree that
// `internal/config/loader.go` builds from three overlay layers:
//
//   • optional `.env`                             – dotenv values,
//   • `conf/global.yaml`                          – primary static file,
//   • `EVENTFORM_`-prefixed environment overrides – highest precedence.
//
// String values of the form `vault:<mount>/<path>#<key>` are secret
// references.  ResolveSecrets swaps them for the stored value before the
// rest of the program reads the Config.
//
// Notes
// -----
//   • Struct tags use `koanf:"…"`, not `yaml:"…"`.
//   • Durations are written as Go duration strings ("6s", "30m").
//   • The `Paths` block is filled at runtime; YAML must not try to set it.

package config

import "time"

//
// HTTP section
//

// HTTP holds web-server tunables.
type HTTP struct {
	ListenAddr string `koanf:"listen_addr" validate:"required,hostname_port"`
	ForceHTTPS bool   `koanf:"force_https"`
}

//
// Log section
//

// Log controls the zap logger.  Dir is relative to Paths.Root when not
// absolute.
type Log struct {
	Dir   string `koanf:"dir"`
	Level string `koanf:"level" validate:"omitempty,oneof=debug info warn error"`
	Tee   bool   `koanf:"tee"`
}

//
// Session section
//

// Session bounds the in-memory form sessions.
type Session struct {
	IdleTTL       time.Duration `koanf:"idle_ttl"       validate:"gt=0"`
	MaxEntries    int           `koanf:"max_entries"    validate:"gte=0"`
	EvictInterval time.Duration `koanf:"evict_interval" validate:"gt=0"`
	CookieSecure  bool          `koanf:"cookie_secure"`
}

//
// Notification section
//

// Notification configures the transient status banner.
type Notification struct {
	DismissAfter time.Duration `koanf:"dismiss_after" validate:"gt=0"`
}

//
// Delivery section
//

// Retry bounds remote delivery attempts.
type Retry struct {
	MaxTries        uint          `koanf:"max_tries"        validate:"gte=1"`
	InitialInterval time.Duration `koanf:"initial_interval" validate:"gte=0"`
	MaxInterval     time.Duration `koanf:"max_interval"     validate:"gte=0"`
}

// Relay is the message-relay endpoint for the relay target.
type Relay struct {
	Endpoint string `koanf:"endpoint" validate:"omitempty,url"`
	Token    string `koanf:"token"`
}

// Store is the audit database for the store target.
type Store struct {
	DSN   string `koanf:"dsn"`
	Table string `koanf:"table" validate:"omitempty,sqlident"`
}

// Delivery selects and tunes delivery targets.  An empty Targets list
// means the log target only.
type Delivery struct {
	Targets []string      `koanf:"targets" validate:"dive,oneof=log relay slack store"`
	Timeout time.Duration `koanf:"timeout" validate:"gt=0"`
	Retry   Retry         `koanf:"retry"`
	Relay   Relay         `koanf:"relay"`
	Store   Store         `koanf:"store"`
}

// Has reports whether target is enabled.
func (d Delivery) Has(target string) bool {
	for _, t := range d.Targets {
		if t == target {
			return true
		}
	}
	return false
}

//
// CSRF section
//

// CSRF holds the token signing key, base64url encoded, at least 32 bytes.
// When empty an ephemeral key is generated at startup.
type CSRF struct {
	Key string `koanf:"key"`
}

//
// Paths section (runtime only)
//

// Paths is resolved at runtime, never set in YAML or env.
type Paths struct {
	Root string // EVENTFORM_ROOT or discovered parent
}

//
// Root aggregate
//

// Config is the immutable aggregate returned by Load() and passed
// explicitly to every consumer.
type Config struct {
	HTTP         HTTP         `koanf:"http"`
	Log          Log          `koanf:"log"`
	Session      Session      `koanf:"session"`
	Notification Notification `koanf:"notification"`
	Delivery     Delivery     `koanf:"delivery"`
	CSRF         CSRF         `koanf:"csrf"`
	Paths        Paths        `koanf:"-"`
}

// defaults seeds every optional value.  Load unmarshals on top of it.
func defaults() Config {
	return Config{
		HTTP: HTTP{ListenAddr: ":8080"},
		Log:  Log{Dir: "logs", Level: "info"},
		Session: Session{
			IdleTTL:       30 * time.Minute,
			MaxEntries:    10000,
			EvictInterval: time.Minute,
		},
		Notification: Notification{DismissAfter: 6 * time.Second},
		Delivery: Delivery{
			Targets: []string{"log"},
			Timeout: 10 * time.Second,
			Retry: Retry{
				MaxTries:        3,
				InitialInterval: 500 * time.Millisecond,
				MaxInterval:     5 * time.Second,
			},
			Store: Store{Table: "event_delivery"},
		},
	}
}

// Defaults returns a fresh Config holding only the built-in defaults.
// Tests and tools use it when no file or environment is wanted.
func Defaults() *Config {
	c := defaults()
	return &c
}
