package handlers

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"natours-api/internal/apperror"
	"natours-api/internal/models"
	"natours-api/internal/utils"
)

// OperatorCredentials is the single configured account allowed to log in.
type OperatorCredentials struct {
	UserID       string
	Email        string
	PasswordHash string
	Role         models.Role
}

type AuthHandler struct {
	Operator OperatorCredentials
	Tokens   *utils.TokenIssuer
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Status string `json:"status"`
	Token  string `json:"token"`
}

func (a *AuthHandler) Login(w http.ResponseWriter, r *http.Request) error {
	var req LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		return err
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return apperror.BadRequest("Please provide email and password!")
	}

	emailOK := subtle.ConstantTimeCompare([]byte(req.Email), []byte(strings.ToLower(a.Operator.Email))) == 1
	passErr := bcrypt.CompareHashAndPassword([]byte(a.Operator.PasswordHash), []byte(req.Password))
	if !emailOK || passErr != nil {
		return apperror.Unauthorized("Incorrect email or password")
	}

	token, err := a.Tokens.GenerateJWT(models.Identity{UserID: a.Operator.UserID, Role: a.Operator.Role})
	if err != nil {
		return apperror.Wrap(err)
	}

	utils.JSON(w, http.StatusOK, LoginResponse{Status: "success", Token: token})
	return nil
}
