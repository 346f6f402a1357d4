package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/transbarber/storefront/internal/models"
	"github.com/transbarber/storefront/internal/repository/postgres"
)

const (
	upsertProfileQuery = `
						INSERT INTO profiles (user_id, company_name, cnpj, phone, cep, street, number, neighborhood, city, state, updated_at)
						VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, now())
						ON CONFLICT (user_id) DO UPDATE
						SET company_name = EXCLUDED.company_name,
							cnpj = EXCLUDED.cnpj,
							phone = EXCLUDED.phone,
							cep = EXCLUDED.cep,
							street = EXCLUDED.street,
							number = EXCLUDED.number,
							neighborhood = EXCLUDED.neighborhood,
							city = EXCLUDED.city,
							state = EXCLUDED.state,
							updated_at = now()
						RETURNING user_id, company_name, cnpj, phone, cep, street, number, neighborhood, city, state, updated_at
`
	selectProfileQuery = `
						SELECT user_id, company_name, cnpj, phone, cep, street, number, neighborhood, city, state, updated_at FROM profiles
						WHERE user_id = $1
`
)

// ProfileRepository provides access to company/address profiles
type ProfileRepository struct {
	db *postgres.DB
}

// NewProfileRepository creates new ProfileRepository instance
func NewProfileRepository(db *postgres.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// UpsertProfile creates or updates user profile
func (pr *ProfileRepository) UpsertProfile(ctx context.Context, profile *models.Profile) (*models.Profile, error) {
	err := pr.db.QueryRow(ctx, upsertProfileQuery,
		profile.UserID, profile.CompanyName, profile.CNPJ, profile.Phone, profile.CEP,
		profile.Street, profile.Number, profile.Neighborhood, profile.City, profile.State).
		Scan(&profile.UserID, &profile.CompanyName, &profile.CNPJ, &profile.Phone, &profile.CEP,
			&profile.Street, &profile.Number, &profile.Neighborhood, &profile.City, &profile.State, &profile.UpdatedAt)
	if err != nil {
		return nil, err
	}

	return profile, nil
}

// GetProfileByUserID returns user profile
func (pr *ProfileRepository) GetProfileByUserID(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	profile := models.Profile{}
	err := pr.db.QueryRow(ctx, selectProfileQuery, userID).
		Scan(&profile.UserID, &profile.CompanyName, &profile.CNPJ, &profile.Phone, &profile.CEP,
			&profile.Street, &profile.Number, &profile.Neighborhood, &profile.City, &profile.State, &profile.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrDataNotFound
		}
		return nil, err
	}

	return &profile, nil
}
