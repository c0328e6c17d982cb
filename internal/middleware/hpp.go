package middleware

import (
	"net/http"
	"strings"
)

// DefaultPollutionAllowList names query fields that may legitimately repeat.
var DefaultPollutionAllowList = []string{
	"duration",
	"ratingQuantity",
	"ratingAverage",
	"maxGroupSize",
	"difficulty",
	"price",
}

func baseKey(key string) string {
	if i := strings.IndexByte(key, '['); i >= 0 {
		return key[:i]
	}
	return key
}

// ParameterPollution collapses repeated query keys to their last value
// unless the key's base name is allowed to repeat.
func ParameterPollution(allow []string) func(http.Handler) http.Handler {
	allowed := make(map[string]bool, len(allow))
	for _, k := range allow {
		allowed[k] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.RawQuery == "" {
				next.ServeHTTP(w, r)
				return
			}

			q := r.URL.Query()
			changed := false
			for k, vals := range q {
				if len(vals) > 1 && !allowed[baseKey(k)] {
					q[k] = vals[len(vals)-1:]
					changed = true
				}
			}
			if changed {
				r.URL.RawQuery = q.Encode()
			}
			next.ServeHTTP(w, r)
		})
	}
}
