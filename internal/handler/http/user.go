package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/transbarber/storefront/internal/models"
	"github.com/transbarber/storefront/internal/service"
)

type UserService interface {
	// Register creates new customer account and its profile row
	Register(ctx context.Context, email, password, companyName string) (*models.User, error)
	// Login checks credentials and returns matching user
	Login(ctx context.Context, email, password string) (*models.User, error)
}

// UserHandler represents HTTP handler for account-related requests
type UserHandler struct {
	svc   UserService
	token service.TokenService
}

// NewUserHandler creates new UserHandler instance
func NewUserHandler(svc UserService, token service.TokenService) *UserHandler {
	return &UserHandler{svc: svc, token: token}
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	CompanyName string `json:"company_name"`
}

func (uh *UserHandler) setAuthCookie(w http.ResponseWriter, user *models.User) error {
	tokenString, err := uh.token.CreateToken(user)
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "auth_token",
		Value:    tokenString,
		Path:     "/",
		HttpOnly: true,
	})

	return nil
}

// RegisterUser registers new account
// 200 — account created and authenticated;
// 400 — malformed request;
// 409 — email already registered;
// 500 — internal server error.
func (uh *UserHandler) RegisterUser() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req registerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		user, err := uh.svc.Register(r.Context(), req.Email, req.Password, req.CompanyName)
		if err != nil {
			switch {
			case errors.Is(err, models.ErrValidation):
				http.Error(w, "invalid email or password", http.StatusBadRequest)
			case errors.Is(err, models.ErrConflictData):
				http.Error(w, "email already registered", http.StatusConflict)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		if err := uh.setAuthCookie(w, user); err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		w.WriteHeader(http.StatusOK)
	}
}

// LoginUser authenticates user
// 200 — authenticated;
// 400 — malformed request;
// 401 — invalid login/password pair;
// 500 — internal server error.
func (uh *UserHandler) LoginUser() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req credentialsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		user, err := uh.svc.Login(r.Context(), req.Email, req.Password)
		if err != nil {
			switch {
			case errors.Is(err, models.ErrInvalidCredentials):
				http.Error(w, "invalid login or password", http.StatusUnauthorized)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		if err := uh.setAuthCookie(w, user); err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		w.WriteHeader(http.StatusOK)
	}
}
