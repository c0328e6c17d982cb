// Package app assembles the request pipeline and the router.
package app

import (
	"io"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"natours-api/configs"
	"natours-api/internal/apperror"
	"natours-api/internal/handlers"
	"natours-api/internal/metrics"
	"natours-api/internal/middleware"
	"natours-api/internal/models"
	"natours-api/internal/utils"
)

// Deps are the collaborators the HTTP layer needs. Handlers and stores are
// built by the caller so tests can swap in mocks.
type Deps struct {
	Errors      *apperror.Handler
	Limiter     *middleware.RateLimiter
	Metrics     *metrics.Registry
	Tokens      *utils.TokenIssuer
	Tours       *handlers.TourHandler
	Auth        *handlers.AuthHandler
	Health      *handlers.HealthHandler
	AccessLog   io.Writer
	RequestTime func() time.Time
}

// Stages returns the pipeline in execution order. The router is the final
// handler and is not listed.
func Stages(cfg configs.Config, d Deps) []middleware.Stage {
	accessLog := d.AccessLog
	if accessLog == nil {
		accessLog = os.Stdout
	}

	var recorder middleware.MetricsRecorder
	if d.Metrics != nil {
		recorder = d.Metrics
	}

	return []middleware.Stage{
		{Name: "recovery", Wrap: middleware.Recovery(d.Errors)},
		{Name: "request-id", Wrap: middleware.RequestID},
		{Name: "metrics", Wrap: middleware.Metrics(recorder)},
		{Name: "security-headers", Wrap: middleware.SecurityHeaders(&middleware.SecurityHeadersConfig{TLSEnabled: cfg.TLSEnabled})},
		{Name: "dev-logging", Wrap: middleware.DevLogging(cfg.Development(), accessLog)},
		{Name: "rate-limit", Wrap: middleware.RateLimit(d.Limiter, d.Errors)},
		{Name: "body-parser", Wrap: middleware.BodyParser(cfg.BodyLimitBytes, d.Errors)},
		{Name: "nosql-sanitize", Wrap: middleware.NoSQLSanitize(d.Errors)},
		{Name: "xss-sanitize", Wrap: middleware.XSSSanitize(d.Errors)},
		{Name: "hpp", Wrap: middleware.ParameterPollution(middleware.DefaultPollutionAllowList)},
		{Name: "static", Wrap: middleware.Static(cfg.PublicDir)},
		{Name: "request-time", Wrap: middleware.StampRequestTime(d.RequestTime)},
	}
}

// NewRouter mounts the API. Fixed tour paths are registered before /{id}
// so they are never captured as an id.
func NewRouter(d Deps) *mux.Router {
	errs := d.Errors
	h := func(fn handlers.HandlerFunc) http.Handler { return handlers.Handle(errs, fn) }
	protect := middleware.Protect(d.Tokens, errs)
	adminOnly := middleware.RestrictTo(errs, models.RoleAdmin, models.RoleLeadGuide)

	r := mux.NewRouter()
	r.Use(middleware.CaptureRoute)

	if d.Health != nil {
		r.HandleFunc("/healthz", d.Health.Healthz).Methods(http.MethodGet)
	}
	if d.Metrics != nil {
		r.Handle("/metrics", promhttp.HandlerFor(d.Metrics.GetPrometheusRegistry(), promhttp.HandlerOpts{})).Methods(http.MethodGet)
	}

	api := r.PathPrefix("/api/v1").Subrouter()

	if d.Auth != nil {
		users := api.PathPrefix("/users").Subrouter()
		users.Handle("/login", h(d.Auth.Login)).Methods(http.MethodPost)
	}

	if d.Tours != nil {
		tours := api.PathPrefix("/tours").Subrouter()
		tours.Handle("/top-5-cheap", h(d.Tours.AliasTopTours)).Methods(http.MethodGet)
		tours.Handle("/tour-stats", h(d.Tours.GetTourStats)).Methods(http.MethodGet)
		tours.Handle("/monthly-plan/{year}", h(d.Tours.GetMonthlyPlan)).Methods(http.MethodGet)
		tours.Handle("", protect(h(d.Tours.GetAllTours))).Methods(http.MethodGet)
		tours.Handle("", h(d.Tours.CreateTour)).Methods(http.MethodPost)
		tours.Handle("/{id}", h(d.Tours.GetTour)).Methods(http.MethodGet)
		tours.Handle("/{id}", h(d.Tours.UpdateTour)).Methods(http.MethodPatch, http.MethodPut)
		tours.Handle("/{id}", protect(adminOnly(h(d.Tours.DeleteTour)))).Methods(http.MethodDelete)
	}

	notFound := http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		errs.Respond(w, req, apperror.RouteNotFound(req.URL.RequestURI()))
	})
	r.NotFoundHandler = notFound
	r.MethodNotAllowedHandler = notFound
	return r
}

// NewHandler is the complete HTTP handler: pipeline plus router.
func NewHandler(cfg configs.Config, d Deps) http.Handler {
	return middleware.Chain(NewRouter(d), Stages(cfg, d)...)
}
