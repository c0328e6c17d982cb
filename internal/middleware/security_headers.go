package middleware

import (
	"net/http"
)

// SecurityHeadersConfig holds configuration for security headers
type SecurityHeadersConfig struct {
	TLSEnabled bool // Whether TLS is enabled (for HSTS header)
}

// SecurityHeaders adds protective headers to every response.
func SecurityHeaders(config *SecurityHeadersConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()

			// Prevent clickjacking
			h.Set("X-Frame-Options", "SAMEORIGIN")

			// Prevent MIME sniffing
			h.Set("X-Content-Type-Options", "nosniff")

			h.Set("X-XSS-Protection", "0")
			h.Set("X-DNS-Prefetch-Control", "off")
			h.Set("X-Download-Options", "noopen")
			h.Set("X-Permitted-Cross-Domain-Policies", "none")

			if config != nil && config.TLSEnabled {
				h.Set("Strict-Transport-Security", "max-age=15552000; includeSubDomains")
			}

			h.Set("Content-Security-Policy", "default-src 'self'; base-uri 'self'; font-src 'self' https: data:; frame-ancestors 'self'; img-src 'self' data:; object-src 'none'; script-src 'self'; style-src 'self' https: 'unsafe-inline'")
			h.Set("Cross-Origin-Opener-Policy", "same-origin")
			h.Set("Cross-Origin-Resource-Policy", "same-origin")
			h.Set("Referrer-Policy", "no-referrer")
			h.Set("Permissions-Policy", "geolocation=(), microphone=(), camera=()")
			h.Del("X-Powered-By")

			next.ServeHTTP(w, r)
		})
	}
}
