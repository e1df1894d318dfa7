// internal/session/session.go
//
// Session cookie and request binding.
//
// Context
//   The cookie carries only an opaque random id; drafts stay server side in
//   the Registry.  Middleware resolves the id on every request, issues or
//   refreshes the cookie, and stores the session's controller in the request
//   context for handlers.
//
// Style
//   Two-space sentence spacing, Oxford comma, terse inline notes.
//
//------------------------------------------------------------------------------

package session

import (
	"context"
	"net/http"
	"time"

	"github.com/yanizio/eventform/internal/submission"
)

// CookieName is the session cookie.
const CookieName = "eventform_session"

type ctxKey struct{}

type binding struct {
	id  string
	ctl *submission.Controller
}

// ID returns the raw session id presented by the client, or "".
func ID(r *http.Request) string {
	c, err := r.Cookie(CookieName)
	if err != nil {
		return ""
	}
	return c.Value
}

// SetCookie issues the session cookie.  maxAge follows the idle TTL so the
// browser forgets the id about when the server does.
func SetCookie(w http.ResponseWriter, id string, secure bool, maxAge time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    id,
		Path:     "/",
		MaxAge:   int(maxAge / time.Second),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Middleware binds each request to its session controller.  The cookie is
// rewritten on every response to slide its expiry.
func (r *Registry) Middleware(secure bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			id, ctl := r.Acquire(ID(req))
			SetCookie(w, id, secure || req.TLS != nil, r.idleTTL)

			ctx := context.WithValue(req.Context(), ctxKey{}, binding{id: id, ctl: ctl})
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	}
}

// FromContext returns the controller bound by Middleware, or nil.
func FromContext(ctx context.Context) *submission.Controller {
	b, _ := ctx.Value(ctxKey{}).(binding)
	return b.ctl
}

// IDFromContext returns the session id bound by Middleware, or "".
func IDFromContext(ctx context.Context) string {
	b, _ := ctx.Value(ctxKey{}).(binding)
	return b.id
}
