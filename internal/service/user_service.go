package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/Miittkkoo/gaf-insight-engine-sub000/internal/domain"
	"github.com/Miittkkoo/gaf-insight-engine-sub000/internal/repository"
	"github.com/Miittkkoo/gaf-insight-engine-sub000/internal/secrets"
)

type UserService interface {
	Create(ctx context.Context, req *domain.CreateUserRequest) (*domain.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	// StoreCredentials seals and persists the Garmin credential blob.
	StoreCredentials(ctx context.Context, id uuid.UUID, req *domain.StoreCredentialsRequest) error
}

type userService struct {
	repo  repository.UserRepository
	codec *secrets.Codec
}

func NewUserService(repo repository.UserRepository, codec *secrets.Codec) UserService {
	return &userService{repo: repo, codec: codec}
}

func (s *userService) Create(ctx context.Context, req *domain.CreateUserRequest) (*domain.User, error) {
	user := &domain.User{
		ID:       uuid.New(),
		Timezone: req.Timezone,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

func (s *userService) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *userService) StoreCredentials(ctx context.Context, id uuid.UUID, req *domain.StoreCredentialsRequest) error {
	blob, err := s.codec.Seal(domain.GarminCredentials{
		Email:       req.Email,
		Password:    req.Password,
		DisplayName: req.DisplayName,
	})
	if err != nil {
		return err
	}
	return s.repo.StoreCredentials(ctx, id, blob)
}
