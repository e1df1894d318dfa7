// internal/config/validator.go
//
// Thin wrapper around go-playground/validator.
//
// Context
// -------
// `internal/config/loader.go` calls `validateStruct` immediately after it
// unmarshals the merged Koanf tree into a `Config` instance.  Any tag
// mismatch or validation error aborts startup.
//
// Built-in rules cover most fields.  One custom rule is registered here:
// `sqlident`, a bare SQL identifier, used for the store table name because
// it is spliced into the INSERT statement.  Cross-field rules (a target
// that needs its own settings) live in `checkTargets`.

package config

import (
	"errors"
	"regexp"

	"github.com/go-playground/validator/v10"
)

//
// validator instance (package-level singleton)
//

var (
	v       = validator.New()
	identRE = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
)

func init() {
	_ = v.RegisterValidation("sqlident", func(fl validator.FieldLevel) bool {
		return ValidIdent(fl.Field().String())
	})
}

// ValidIdent reports whether s is a bare SQL identifier safe to splice
// into a statement.
func ValidIdent(s string) bool { return identRE.MatchString(s) }

//
// public API
//

// validateStruct returns the validation errors, or nil on success.
func validateStruct(c *Config) error {
	if err := v.Struct(c); err != nil {
		return err
	}
	return checkTargets(&c.Delivery)
}

// checkTargets enforces settings that only matter when a target is on.
func checkTargets(d *Delivery) error {
	if d.Has("relay") && d.Relay.Endpoint == "" {
		return errors.New("delivery.relay.endpoint is required when the relay target is enabled")
	}
	if d.Has("store") && d.Store.DSN == "" {
		return errors.New("delivery.store.dsn is required when the store target is enabled")
	}
	return nil
}
