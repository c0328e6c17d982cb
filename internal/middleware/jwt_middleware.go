package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"natours-api/internal/apperror"
	"natours-api/internal/models"
	"natours-api/internal/utils"
)

type contextKey string

const ContextIdentity contextKey = "identity"

// TokenParser verifies a bearer token and returns who it was issued to.
type TokenParser interface {
	ParseJWT(token string) (models.Identity, error)
}

func IdentityFrom(ctx context.Context) (models.Identity, bool) {
	id, ok := ctx.Value(ContextIdentity).(models.Identity)
	return id, ok
}

// Protect requires a valid bearer token and stores the caller's identity
// on the request context.
func Protect(tokens TokenParser, errs ErrorResponder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			tokenStr := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
			if !strings.HasPrefix(auth, "Bearer ") || tokenStr == "" {
				errs.Respond(w, r, apperror.Unauthorized("You are not logged in! Please log in to get access."))
				return
			}

			id, err := tokens.ParseJWT(tokenStr)
			if errors.Is(err, utils.ErrTokenExpired) {
				errs.Respond(w, r, apperror.Unauthorized("Your token has expired! Please log in again."))
				return
			}
			if err != nil {
				errs.Respond(w, r, apperror.Unauthorized("Invalid token. Please log in again!"))
				return
			}

			ctx := context.WithValue(r.Context(), ContextIdentity, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RestrictTo must run after Protect.
func RestrictTo(errs ErrorResponder, roles ...models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := IdentityFrom(r.Context())
			if !ok {
				errs.Respond(w, r, apperror.Unauthorized("You are not logged in! Please log in to get access."))
				return
			}
			if !models.HasRole(id, roles...) {
				errs.Respond(w, r, apperror.Forbidden("You do not have permission to perform this action"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
