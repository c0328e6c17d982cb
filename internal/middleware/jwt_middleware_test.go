package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"natours-api/internal/models"
	"natours-api/internal/utils"
)

func protected(issuer TokenParser, roles ...models.Role) http.Handler {
	errs := testResponder()
	h := http.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, _ := IdentityFrom(r.Context())
		w.Write([]byte(id.UserID))
	}))
	if len(roles) > 0 {
		h = RestrictTo(errs, roles...)(h)
	}
	return Protect(issuer, errs)(h)
}

func TestProtect_MissingToken(t *testing.T) {
	rr := httptest.NewRecorder()
	protected(utils.NewTokenIssuer("secret", time.Hour)).ServeHTTP(rr, httptest.NewRequest("GET", "/api/v1/tours", nil))

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "You are not logged in! Please log in to get access.", decodeBody(t, rr)["message"])
}

func TestProtect_InvalidToken(t *testing.T) {
	req := httptest.NewRequest("GET", "/api/v1/tours", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	rr := httptest.NewRecorder()
	protected(utils.NewTokenIssuer("secret", time.Hour)).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "Invalid token. Please log in again!", decodeBody(t, rr)["message"])
}

type stubParser struct {
	id  models.Identity
	err error
}

func (s stubParser) ParseJWT(string) (models.Identity, error) { return s.id, s.err }

func TestProtect_ExpiredToken(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer x.y.z")
	rr := httptest.NewRecorder()
	protected(stubParser{err: utils.ErrTokenExpired}).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "Your token has expired! Please log in again.", decodeBody(t, rr)["message"])
}

func TestProtect_ValidTokenSetsIdentity(t *testing.T) {
	issuer := utils.NewTokenIssuer("secret", time.Hour)
	token, err := issuer.GenerateJWT(models.Identity{UserID: "u-1", Role: models.RoleUser})
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	protected(issuer).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "u-1", rr.Body.String())
}

func TestRestrictTo(t *testing.T) {
	tests := []struct {
		name string
		role models.Role
		want int
	}{
		{"admin allowed", models.RoleAdmin, http.StatusOK},
		{"lead guide allowed", models.RoleLeadGuide, http.StatusOK},
		{"guide forbidden", models.RoleGuide, http.StatusForbidden},
		{"user forbidden", models.RoleUser, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parser := stubParser{id: models.Identity{UserID: "u", Role: tt.role}}
			req := httptest.NewRequest("DELETE", "/api/v1/tours/1", nil)
			req.Header.Set("Authorization", "Bearer t")
			rr := httptest.NewRecorder()
			protected(parser, models.RoleAdmin, models.RoleLeadGuide).ServeHTTP(rr, req)

			assert.Equal(t, tt.want, rr.Code)
			if tt.want == http.StatusForbidden {
				assert.Equal(t, "You do not have permission to perform this action", decodeBody(t, rr)["message"])
			}
		})
	}
}

func TestRestrictTo_WithoutProtect(t *testing.T) {
	rr := httptest.NewRecorder()
	RestrictTo(testResponder(), models.RoleAdmin)(okHandler).ServeHTTP(rr, httptest.NewRequest("GET", "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}
