package service

import (
	"context"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/transbarber/storefront/internal/models"
	"github.com/transbarber/storefront/internal/service/mocks"
)

func TestUserService_Register(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		password string
		company  string
		setup    func(t *testing.T, repo *mocks.MockUserRepository, profiles *mocks.MockProfileRepository)
		wantErr  error
	}{
		{
			name:     "valid_registration",
			email:    "loja@barbearia.com.br",
			password: "navalha1",
			company:  "Barbearia Norte",
			setup: func(t *testing.T, repo *mocks.MockUserRepository, profiles *mocks.MockProfileRepository) {
				userID := uuid.New()
				repo.EXPECT().CreateUser(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, user *models.User) (*models.User, error) {
						assert.Equal(t, models.RoleCustomer, user.Role)
						assert.NotEqual(t, "navalha1", user.PasswordHash)
						created := *user
						created.ID = userID
						return &created, nil
					}).Times(1)
				profiles.EXPECT().UpsertProfile(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, profile *models.Profile) (*models.Profile, error) {
						assert.Equal(t, userID, profile.UserID)
						assert.Equal(t, "Barbearia Norte", profile.CompanyName)
						return profile, nil
					}).Times(1)
			},
		},
		{
			// the account must survive a failed profile insert
			name:     "profile_insert_failure_is_not_fatal",
			email:    "loja@barbearia.com.br",
			password: "navalha1",
			company:  "Barbearia Norte",
			setup: func(t *testing.T, repo *mocks.MockUserRepository, profiles *mocks.MockProfileRepository) {
				repo.EXPECT().CreateUser(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, user *models.User) (*models.User, error) {
						created := *user
						created.ID = uuid.New()
						return &created, nil
					}).Times(1)
				profiles.EXPECT().UpsertProfile(gomock.Any(), gomock.Any()).
					Return(nil, models.ErrInternalError).Times(1)
			},
		},
		{
			name:     "malformed_email",
			email:    "not-an-email",
			password: "navalha1",
			setup:    func(t *testing.T, repo *mocks.MockUserRepository, profiles *mocks.MockProfileRepository) {},
			wantErr:  models.ErrValidation,
		},
		{
			name:     "short_password",
			email:    "loja@barbearia.com.br",
			password: "123",
			setup:    func(t *testing.T, repo *mocks.MockUserRepository, profiles *mocks.MockProfileRepository) {},
			wantErr:  models.ErrValidation,
		},
		{
			name:     "duplicate_email",
			email:    "loja@barbearia.com.br",
			password: "navalha1",
			setup: func(t *testing.T, repo *mocks.MockUserRepository, profiles *mocks.MockProfileRepository) {
				repo.EXPECT().CreateUser(gomock.Any(), gomock.Any()).
					Return(nil, models.ErrConflictData).Times(1)
			},
			wantErr: models.ErrConflictData,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := mocks.NewMockUserRepository(ctrl)
			profiles := mocks.NewMockProfileRepository(ctrl)
			tt.setup(t, repo, profiles)

			svc := NewUserService(repo, profiles)
			user, err := svc.Register(context.Background(), tt.email, tt.password, tt.company)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.email, user.Email)
		})
	}
}

func TestUserService_Login(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("navalha1"), bcrypt.DefaultCost)
	require.NoError(t, err)

	stored := &models.User{
		ID:           uuid.New(),
		Email:        "loja@barbearia.com.br",
		PasswordHash: string(hash),
		Role:         models.RoleCustomer,
	}

	tests := []struct {
		name     string
		password string
		setup    func(repo *mocks.MockUserRepository)
		wantErr  error
	}{
		{
			name:     "valid_credentials",
			password: "navalha1",
			setup: func(repo *mocks.MockUserRepository) {
				repo.EXPECT().GetUserByEmail(gomock.Any(), stored.Email).Return(stored, nil).Times(1)
			},
		},
		{
			name:     "wrong_password",
			password: "wrong",
			setup: func(repo *mocks.MockUserRepository) {
				repo.EXPECT().GetUserByEmail(gomock.Any(), stored.Email).Return(stored, nil).Times(1)
			},
			wantErr: models.ErrInvalidCredentials,
		},
		{
			// unknown accounts answer the same as wrong passwords
			name:     "unknown_email",
			password: "navalha1",
			setup: func(repo *mocks.MockUserRepository) {
				repo.EXPECT().GetUserByEmail(gomock.Any(), gomock.Any()).
					Return(nil, models.ErrDataNotFound).Times(1)
			},
			wantErr: models.ErrInvalidCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := mocks.NewMockUserRepository(ctrl)
			tt.setup(repo)

			svc := NewUserService(repo, mocks.NewMockProfileRepository(ctrl))
			user, err := svc.Login(context.Background(), stored.Email, tt.password)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, stored.ID, user.ID)
		})
	}
}

func TestUserService_IsAdmin(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mocks.NewMockUserRepository(ctrl)
	svc := NewUserService(repo, mocks.NewMockProfileRepository(ctrl))

	adminID := uuid.New()
	customerID := uuid.New()

	repo.EXPECT().GetUserByID(gomock.Any(), adminID).
		Return(&models.User{ID: adminID, Role: models.RoleAdmin}, nil).Times(1)
	repo.EXPECT().GetUserByID(gomock.Any(), customerID).
		Return(&models.User{ID: customerID, Role: models.RoleCustomer}, nil).Times(1)

	admin, err := svc.IsAdmin(context.Background(), adminID)
	require.NoError(t, err)
	assert.True(t, admin)

	admin, err = svc.IsAdmin(context.Background(), customerID)
	require.NoError(t, err)
	assert.False(t, admin)
}
