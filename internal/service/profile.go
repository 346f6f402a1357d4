package service

import (
	"context"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"github.com/transbarber/storefront/internal/models"
)

// ProfileRepository is interface for interacting with profile data
type ProfileRepository interface {
	// UpsertProfile creates or updates user profile
	UpsertProfile(ctx context.Context, profile *models.Profile) (*models.Profile, error)
	// GetProfileByUserID returns user profile
	GetProfileByUserID(ctx context.Context, userID uuid.UUID) (*models.Profile, error)
}

// ProfileService implements profile reads and updates
type ProfileService struct {
	repo ProfileRepository
}

// NewProfileService creates new ProfileService instance
func NewProfileService(repo ProfileRepository) *ProfileService {
	return &ProfileService{repo: repo}
}

// digitsOnly strips everything but digits, masks arrive formatted from clients
func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// GetProfile returns user profile
func (ps *ProfileService) GetProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	return ps.repo.GetProfileByUserID(ctx, userID)
}

// UpdateProfile validates and stores user profile
func (ps *ProfileService) UpdateProfile(ctx context.Context, profile *models.Profile) (*models.Profile, error) {
	profile.CNPJ = digitsOnly(profile.CNPJ)
	profile.CEP = digitsOnly(profile.CEP)

	if profile.CNPJ != "" && len(profile.CNPJ) != 14 {
		return nil, models.ErrValidation
	}
	if profile.CEP != "" && len(profile.CEP) != 8 {
		return nil, models.ErrInvalidPostalCode
	}

	return ps.repo.UpsertProfile(ctx, profile)
}
