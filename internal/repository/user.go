package repository

import (
	"context"
	"fmt"

	"github.com/wishwell/giftsync/internal/domain"
	"github.com/wishwell/giftsync/internal/repository/dao"
)

var (
	ErrUserEmailExists = dao.ErrUserEmailExists
	ErrUserNotFound    = dao.ErrUserNotFound
)

type UserDAO interface {
	Insert(ctx context.Context, user dao.User) (dao.User, error)
	FindByID(ctx context.Context, id uint) (dao.User, error)
	FindByEmail(ctx context.Context, email string) (dao.User, error)
	FindRoster(ctx context.Context, ownerID uint) ([]dao.User, error)
	LinkUser(ctx context.Context, ownerID, userID uint) error
}

type UserRepository struct {
	dao UserDAO
}

func NewUserRepository(dao UserDAO) *UserRepository {
	return &UserRepository{
		dao: dao,
	}
}

func (r *UserRepository) Create(ctx context.Context, user domain.User) (domain.User, error) {
	created, err := r.dao.Insert(ctx, dao.User{
		Email:    user.Email,
		Password: user.Password,
		Name:     user.Name,
		ImageID:  user.ImageID,
	})
	if err != nil {
		return domain.User{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return r.daoToDomain(created), nil
}

func (r *UserRepository) FindByID(ctx context.Context, id uint) (domain.User, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.User{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return r.daoToDomain(found), nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	found, err := r.dao.FindByEmail(ctx, email)
	if err != nil {
		return domain.User{}, fmt.Errorf("r.dao.FindByEmail -> %w", err)
	}

	return r.daoToDomain(found), nil
}

func (r *UserRepository) FindRoster(ctx context.Context, ownerID uint) ([]domain.User, error) {
	found, err := r.dao.FindRoster(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindRoster -> %w", err)
	}

	roster := make([]domain.User, 0, len(found))
	for _, user := range found {
		roster = append(roster, r.daoToDomain(user))
	}

	return roster, nil
}

func (r *UserRepository) LinkUser(ctx context.Context, ownerID, userID uint) error {
	if err := r.dao.LinkUser(ctx, ownerID, userID); err != nil {
		return fmt.Errorf("r.dao.LinkUser -> %w", err)
	}

	return nil
}

func (r *UserRepository) daoToDomain(u dao.User) domain.User {
	return domain.User{
		ID:        u.ID,
		Email:     u.Email,
		Password:  u.Password,
		Name:      u.Name,
		ImageID:   u.ImageID,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
