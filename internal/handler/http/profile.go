package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/transbarber/storefront/internal/models"
)

type ProfileService interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error)
	UpdateProfile(ctx context.Context, profile *models.Profile) (*models.Profile, error)
}

// ProfileHandler represents HTTP handler for customer profile requests
type ProfileHandler struct {
	svc ProfileService
}

// NewProfileHandler creates new ProfileHandler instance
func NewProfileHandler(svc ProfileService) *ProfileHandler {
	return &ProfileHandler{svc: svc}
}

type profileRequest struct {
	CompanyName  string `json:"company_name"`
	CNPJ         string `json:"cnpj"`
	Phone        string `json:"phone"`
	CEP          string `json:"cep"`
	Street       string `json:"street"`
	Number       string `json:"number"`
	Neighborhood string `json:"neighborhood"`
	City         string `json:"city"`
	State        string `json:"state"`
}

type profileResponse struct {
	CompanyName  string `json:"company_name"`
	CNPJ         string `json:"cnpj"`
	Phone        string `json:"phone"`
	CEP          string `json:"cep"`
	Street       string `json:"street"`
	Number       string `json:"number"`
	Neighborhood string `json:"neighborhood"`
	City         string `json:"city"`
	State        string `json:"state"`
}

func toProfileResponse(p *models.Profile) profileResponse {
	return profileResponse{
		CompanyName:  p.CompanyName,
		CNPJ:         p.CNPJ,
		Phone:        p.Phone,
		CEP:          p.CEP,
		Street:       p.Street,
		Number:       p.Number,
		Neighborhood: p.Neighborhood,
		City:         p.City,
		State:        p.State,
	}
}

// GetProfile returns caller business profile
// 200 — profile returned;
// 401 — not authenticated;
// 404 — profile not filled yet;
// 500 — internal server error.
func (ph *ProfileHandler) GetProfile() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, ok := getAuthPayload(r.Context(), authPayloadKey)
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		profile, err := ph.svc.GetProfile(r.Context(), payload.UserID)
		if err != nil {
			switch {
			case errors.Is(err, models.ErrDataNotFound):
				http.Error(w, "profile not found", http.StatusNotFound)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)

		if err := json.NewEncoder(w).Encode(toProfileResponse(profile)); err != nil {
			return
		}
	}
}

// UpdateProfile upserts caller business profile
// 200 — profile saved;
// 400 — malformed request or invalid CNPJ/CEP;
// 401 — not authenticated;
// 500 — internal server error.
func (ph *ProfileHandler) UpdateProfile() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, ok := getAuthPayload(r.Context(), authPayloadKey)
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req profileRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		profile := &models.Profile{
			UserID:       payload.UserID,
			CompanyName:  req.CompanyName,
			CNPJ:         req.CNPJ,
			Phone:        req.Phone,
			CEP:          req.CEP,
			Street:       req.Street,
			Number:       req.Number,
			Neighborhood: req.Neighborhood,
			City:         req.City,
			State:        req.State,
		}

		saved, err := ph.svc.UpdateProfile(r.Context(), profile)
		if err != nil {
			switch {
			case errors.Is(err, models.ErrValidation):
				http.Error(w, err.Error(), http.StatusBadRequest)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)

		if err := json.NewEncoder(w).Encode(toProfileResponse(saved)); err != nil {
			return
		}
	}
}
