package middleware

import (
	"net/http"
	"strings"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// ForwardedHeaders trusts the reverse proxy in front of the portal: the client
// address comes from X-Forwarded-For or X-Real-IP, and the scheme and host from
// X-Forwarded-Proto and X-Forwarded-Host. Only the first hop of each list is used.
func ForwardedHeaders(next http.Handler) http.Handler {
	forwarded := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if proto := strings.ToLower(firstHop(r.Header.Get("X-Forwarded-Proto"))); proto == "http" || proto == "https" {
			r.URL.Scheme = proto
		}
		if host := firstHop(r.Header.Get("X-Forwarded-Host")); host != "" {
			r.Host = host
		}
		next.ServeHTTP(w, r)
	})
	return chimiddleware.RealIP(forwarded)
}

// IsHTTPS reports whether the client reached the portal over TLS, directly or
// through a trusted proxy.
func IsHTTPS(r *http.Request) bool {
	return r.TLS != nil || r.URL.Scheme == "https"
}

func firstHop(v string) string {
	first, _, _ := strings.Cut(v, ",")
	return strings.TrimSpace(first)
}
