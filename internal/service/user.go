package service

import (
	"context"
	"fmt"

	"github.com/wishwell/giftsync/internal/domain"
	"github.com/wishwell/giftsync/internal/repository"
)

var (
	ErrUserNotFound = repository.ErrUserNotFound
)

type UserRepository interface {
	FindByID(ctx context.Context, id uint) (domain.User, error)
	FindRoster(ctx context.Context, ownerID uint) ([]domain.User, error)
	LinkUser(ctx context.Context, ownerID, userID uint) error
}

type UserService struct {
	repo UserRepository
}

func NewUserService(repo UserRepository) *UserService {
	return &UserService{
		repo: repo,
	}
}

func (s *UserService) GetUser(ctx context.Context, id uint) (domain.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.User{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	return user, nil
}

// GetRoster returns the users linked to ownerID, the complete set of
// people the owner can allocate gifts for.
func (s *UserService) GetRoster(ctx context.Context, ownerID uint) ([]domain.User, error) {
	roster, err := s.repo.FindRoster(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindRoster -> %w", err)
	}

	return roster, nil
}

func (s *UserService) LinkUser(ctx context.Context, ownerID, userID uint) error {
	if _, err := s.repo.FindByID(ctx, userID); err != nil {
		return fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	if err := s.repo.LinkUser(ctx, ownerID, userID); err != nil {
		return fmt.Errorf("s.repo.LinkUser -> %w", err)
	}

	return nil
}
