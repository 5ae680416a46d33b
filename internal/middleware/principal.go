package middleware

import (
	"context"
	"net/http"
	"strings"
)

const principalHeader = "X-User-ID"

const principalKey contextKey = "principal"

// Principal extracts the requesting principal from the X-User-ID header and
// stores it on the request context. Authentication of that identity is an
// upstream concern (reverse proxy or gateway); this service only needs a
// namespace owner for each submission.
func Principal(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal := strings.TrimSpace(r.Header.Get(principalHeader))
		if principal != "" {
			r = r.WithContext(context.WithValue(r.Context(), principalKey, principal))
		}
		next.ServeHTTP(w, r)
	})
}

// PrincipalFromContext returns the requesting principal, or "" when the
// request did not carry one.
func PrincipalFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(principalKey).(string); ok {
		return v
	}
	return ""
}
