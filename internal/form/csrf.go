// internal/form/csrf.go
//
// Forms subsystem: stateless CSRF tokens.
//
// Context
//   Every rendered form embeds a hidden `csrf_token` input, and the JSON API
//   expects the same token in the X-CSRF-Token header.  Tokens are stateless:
//
//      base64url( nonce | unixMicro | HMAC_SHA256(key, sessionID|nonce|unixMicro) )
//
//   •  nonce – 16 random bytes.
//   •  unixMicro – issue time, 8 bytes, big-endian.
//   •  HMAC – binds the token to one session id, so a token lifted from one
//      browser is useless in another.
//
//   Verification checks the signature and that the issue time lies within
//   MaxAge.  Nothing is stored server side.
//
// Workflow
//   •  NewCSRF(key)            → signer from config, or an ephemeral key.
//   •  Token(sessionID)        → token string for the renderer.
//   •  Verify(sessionID, tok)  → constant-time verify; false on any failure.
//
//------------------------------------------------------------------------------

package form

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

const (
	nonceBytes = 16
	tokenBytes = nonceBytes + 8 + sha256.Size

	// MaxAge is how long a token stays valid after issue.
	MaxAge = 2 * time.Hour

	// MinKeyBytes is the shortest accepted signing key.
	MinKeyBytes = 32
)

// ErrWeakKey rejects a configured key that is not base64url or too short.
var ErrWeakKey = errors.New("csrf key must be base64url and at least 32 bytes")

// CSRF issues and verifies tokens with one signing key.
type CSRF struct {
	key []byte
	now func() time.Time
}

// NewCSRF decodes a base64url key.  An empty key yields a random one that
// lasts for the process lifetime; tokens then break on restart.
func NewCSRF(key string) (*CSRF, error) {
	if key == "" {
		b := make([]byte, MinKeyBytes)
		if _, err := rand.Read(b); err != nil {
			return nil, fmt.Errorf("generate csrf key: %w", err)
		}
		zap.S().Warnw("csrf.key not set, using an ephemeral key")
		return &CSRF{key: b, now: time.Now}, nil
	}

	b, err := base64.RawURLEncoding.DecodeString(key)
	if err != nil || len(b) < MinKeyBytes {
		return nil, ErrWeakKey
	}
	return &CSRF{key: b, now: time.Now}, nil
}

// Token creates a new token bound to sessionID.  Call once per render.
func (c *CSRF) Token(sessionID string) (string, error) {
	buf := make([]byte, nonceBytes+8, tokenBytes)
	if _, err := rand.Read(buf[:nonceBytes]); err != nil {
		return "", err
	}
	binary.BigEndian.PutUint64(buf[nonceBytes:], uint64(c.now().UnixMicro()))
	buf = append(buf, c.sign(sessionID, buf[:nonceBytes], buf[nonceBytes:])...)
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// Verify reports whether tok was issued for sessionID and is still fresh.
func (c *CSRF) Verify(sessionID, tok string) bool {
	raw, err := base64.RawURLEncoding.DecodeString(tok)
	if err != nil || len(raw) != tokenBytes {
		return false
	}
	nonce, ts, sig := raw[:nonceBytes], raw[nonceBytes:nonceBytes+8], raw[nonceBytes+8:]

	issued := time.UnixMicro(int64(binary.BigEndian.Uint64(ts)))
	now := c.now()
	if now.Sub(issued) > MaxAge || issued.Sub(now) > time.Minute {
		// Expired, or issued in the future beyond clock skew.
		return false
	}
	return hmac.Equal(sig, c.sign(sessionID, nonce, ts))
}

func (c *CSRF) sign(sessionID string, nonce, ts []byte) []byte {
	mac := hmac.New(sha256.New, c.key)
	mac.Write([]byte(sessionID))
	mac.Write([]byte{0})
	mac.Write(nonce)
	mac.Write(ts)
	return mac.Sum(nil)
}
