package middleware

import (
	"context"
	"net/http"
	"time"
)

type requestTimeKey struct{}

// StampRequestTime records when the request entered the router.
func StampRequestTime(now func() time.Time) func(http.Handler) http.Handler {
	if now == nil {
		now = time.Now
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), requestTimeKey{}, now())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequestTime returns the stamped time, or the zero time if unset.
func RequestTime(ctx context.Context) time.Time {
	t, _ := ctx.Value(requestTimeKey{}).(time.Time)
	return t
}
