package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
)

// MetricsRecorder receives one observation per request.
type MetricsRecorder interface {
	RecordHTTPRequest(method, path, status string, duration time.Duration, responseSize int)
	IncInFlight()
	DecInFlight()
}

type metricsResponseWriter struct {
	http.ResponseWriter
	status int
	size   int
}

func (w *metricsResponseWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *metricsResponseWriter) Write(b []byte) (int, error) {
	n, err := w.ResponseWriter.Write(b)
	w.size += n
	return n, err
}

func (w *metricsResponseWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

type routeKey struct{}

func withRouteCapture(ctx context.Context, dst *string) context.Context {
	return context.WithValue(ctx, routeKey{}, dst)
}

// CaptureRoute is installed with Router.Use. It reports the matched mux
// path template back to Metrics so labels stay bounded.
func CaptureRoute(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if dst, ok := r.Context().Value(routeKey{}).(*string); ok {
			if route := mux.CurrentRoute(r); route != nil {
				if tpl, err := route.GetPathTemplate(); err == nil {
					*dst = tpl
				}
			}
		}
		next.ServeHTTP(w, r)
	})
}

// Metrics records request count, latency and response size.
func Metrics(recorder MetricsRecorder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if recorder == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			recorder.IncInFlight()
			defer recorder.DecInFlight()

			mw := &metricsResponseWriter{ResponseWriter: w, status: http.StatusOK}
			var matched string
			next.ServeHTTP(mw, r.WithContext(withRouteCapture(r.Context(), &matched)))

			if matched == "" {
				matched = "unmatched"
			}
			recorder.RecordHTTPRequest(r.Method, matched, strconv.Itoa(mw.status), time.Since(start), mw.size)
		})
	}
}
