//
//  internal/requestinfo/requestinfo.go
//
//  Lightweight per-request metadata: user-agent fingerprint, client IP,
//  and preferred language.  These structs are inert.  They
//  hold no handles or large buffers, so they are safe to log.
//
//  Dependencies
//  • internal/ua (github.com/avct/uasurfer)
//

package requestinfo

import (
	"context"
	"net"
	"net/http"
	"strings"

	"github.com/yanizio/eventform/internal/ua"
)

// RequestInfo is stored in the request context by Enrich.
type RequestInfo struct {
	UA   ua.Info
	IP   net.IP
	Lang string // First tag from Accept-Language ("en", "es-mx", ...)
}

type ctxKey struct{} // unexported, collision-proof

// New builds a RequestInfo for r.
func New(r *http.Request) *RequestInfo {
	return &RequestInfo{
		UA:   ua.Parse(r.UserAgent()),
		IP:   clientIP(r),
		Lang: primaryLang(r.Header.Get("Accept-Language")),
	}
}

// FromContext returns the pointer previously stored by Enrich.
// It returns nil if the middleware has not run.
func FromContext(ctx context.Context) *RequestInfo {
	v, _ := ctx.Value(ctxKey{}).(*RequestInfo)
	return v
}

// WithInfo stores info on ctx.
func WithInfo(ctx context.Context, info *RequestInfo) context.Context {
	return context.WithValue(ctx, ctxKey{}, info)
}

// primaryLang extracts the first language subtag before any ";q=" rule.
func primaryLang(al string) string {
	if al == "" {
		return ""
	}
	tag, _, _ := strings.Cut(al, ",")
	tag, _, _ = strings.Cut(tag, ";")
	return strings.ToLower(strings.TrimSpace(tag))
}

// clientIP uses r.RemoteAddr.  chi's RealIP middleware runs first and has
// already rewritten it from X-Forwarded-For or X-Real-IP when present.
func clientIP(r *http.Request) net.IP {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return net.ParseIP(host)
	}
	return net.ParseIP(r.RemoteAddr)
}
