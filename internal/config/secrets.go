package config

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// VaultPrefix marks a value as a secret reference: vault:<mount>/<path>#<key>.
const VaultPrefix = "vault:"

// SecretResolver fetches one key of a KV secret.  *vault.Client satisfies it.
type SecretResolver interface {
	GetKV(ctx context.Context, secretPath, key string, ttl time.Duration) (string, error)
}

// secretFields lists the values that may hold a secret reference.
func (c *Config) secretFields() map[string]*string {
	return map[string]*string{
		"delivery.relay.token":    &c.Delivery.Relay.Token,
		"delivery.relay.endpoint": &c.Delivery.Relay.Endpoint,
		"delivery.store.dsn":      &c.Delivery.Store.DSN,
		"csrf.key":                &c.CSRF.Key,
	}
}

// NeedsSecrets reports whether any value is a vault reference.
func (c *Config) NeedsSecrets() bool {
	for _, p := range c.secretFields() {
		if strings.HasPrefix(*p, VaultPrefix) {
			return true
		}
	}
	return false
}

// ResolveSecrets returns a copy of c with every vault reference replaced by
// its stored value, and caches the copy as the current Config.
func ResolveSecrets(ctx context.Context, c *Config, r SecretResolver) (*Config, error) {
	out := *c
	out.Delivery.Targets = append([]string(nil), c.Delivery.Targets...)

	for name, p := range out.secretFields() {
		if !strings.HasPrefix(*p, VaultPrefix) {
			continue
		}
		path, key, err := parseRef(*p)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		val, err := r.GetKV(ctx, path, key, 0)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		*p = val
	}

	return &out, nil
}

// parseRef splits "vault:secret/eventform#dsn" into ("secret/eventform", "dsn").
func parseRef(ref string) (path, key string, err error) {
	path, key, ok := strings.Cut(strings.TrimPrefix(ref, VaultPrefix), "#")
	if !ok || path == "" || key == "" {
		return "", "", fmt.Errorf("malformed secret reference %q, want vault:<path>#<key>", ref)
	}
	return path, key, nil
}
