package service

import (
	"context"
	"errors"
	"net/mail"

	"github.com/google/uuid"
	"github.com/transbarber/storefront/internal/logger"
	"github.com/transbarber/storefront/internal/models"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// UserRepository is interface for interacting with user accounts
type UserRepository interface {
	// CreateUser inserts new user to database
	CreateUser(ctx context.Context, user *models.User) (*models.User, error)
	// GetUserByEmail returns user by email
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	// GetUserByID returns user by id
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// UserService implements user registration and authentication
type UserService struct {
	repo     UserRepository
	profiles ProfileRepository
}

// NewUserService creates new UserService instance
func NewUserService(repo UserRepository, profiles ProfileRepository) *UserService {
	return &UserService{repo: repo, profiles: profiles}
}

// Register creates new customer account and its profile row
func (us *UserService) Register(ctx context.Context, email, password, companyName string) (*models.User, error) {
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, models.ErrValidation
	}
	if len(password) < 6 {
		return nil, models.ErrValidation
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Email:        email,
		PasswordHash: string(hash),
		Role:         models.RoleCustomer,
	}

	created, err := us.repo.CreateUser(ctx, &user)
	if err != nil {
		return nil, err
	}

	// the account is usable without it, the profile can be filled in later
	profile := models.Profile{
		UserID:      created.ID,
		CompanyName: companyName,
	}
	if _, err := us.profiles.UpsertProfile(ctx, &profile); err != nil {
		logger.Log.Warn("error creating profile on registration",
			zap.String("user_id", created.ID.String()), zap.Error(err))
	}

	return created, nil
}

// Login checks credentials and returns matching user
func (us *UserService) Login(ctx context.Context, email, password string) (*models.User, error) {
	user, err := us.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrDataNotFound) {
			return nil, models.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, models.ErrInvalidCredentials
	}

	return user, nil
}

// IsAdmin re-reads the user's role from the store. Callers gate privileged
// mutations on it instead of trusting a role cached in the token.
func (us *UserService) IsAdmin(ctx context.Context, userID uuid.UUID) (bool, error) {
	user, err := us.repo.GetUserByID(ctx, userID)
	if err != nil {
		return false, err
	}
	return user.Role == models.RoleAdmin, nil
}
