// Package middleware provides the request pipeline stages of the tours API.
//
// Files are organized by concern:
//
//   - stage.go: Stage type and the Chain runner
//   - recovery.go: panic recovery into the global error handler
//   - request_id.go: X-Request-ID propagation
//   - metrics.go: prometheus HTTP metrics
//   - security_headers.go: protective response headers
//   - logging.go: development request logging
//   - ratelimit.go: per-client fixed-window rate limiting
//   - body.go: size-capped JSON body parsing
//   - sanitize.go: NoSQL operator and script-content sanitization
//   - hpp.go: HTTP parameter pollution cleanup
//   - static.go: public directory short-circuit
//   - request_time.go: request timestamp annotation
//   - jwt_middleware.go: authentication and role guards
//
// Every stage has the shape func(http.Handler) http.Handler. Stages that
// fail a request hand the error to an ErrorResponder instead of writing a
// response themselves, so all error bodies share one format.
package middleware
