// internal/requestinfo/middleware.go
//
// HTTP middleware that enriches each request with *RequestInfo.
//
/*
Context
--------
This handler sits high in the chain, right after chi's RequestID and
RealIP and before the access logger.  For every request it:

  1. Parses the User-Agent header and Accept-Language list.
  2. Takes the client IP from r.RemoteAddr (already rewritten by RealIP).
  3. Stores a `*RequestInfo` in the request context so the access logger
     and handlers can read it without reparsing.

Notes
-----
  • Parsing is read-only and allocation-light, so the middleware is safe
    under heavy concurrency.
  • Oxford commas, two spaces after periods.  No em dash.
*/
package requestinfo

import "net/http"

// Enrich wraps an http.Handler, attaches *RequestInfo, and forwards.
func Enrich(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(WithInfo(r.Context(), New(r))))
	})
}
