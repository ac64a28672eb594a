package dao

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrUserEmailExists = errors.New("user already exists")
	ErrUserNotFound    = errors.New("user not found")
)

type User struct {
	ID uint `gorm:"primaryKey"`

	Email    string `gorm:"unique;not null"`
	Password string `gorm:"not null"`

	Name    string `gorm:"not null"`
	ImageID string

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// UserLink is the roster relation: the owner keeps the linked user in
// their "your users" list.
type UserLink struct {
	ID      uint `gorm:"primaryKey"`
	OwnerID uint `gorm:"not null;uniqueIndex:idx_user_links_owner_user"`
	UserID  uint `gorm:"not null;uniqueIndex:idx_user_links_owner_user"`

	CreatedAt time.Time `gorm:"not null"`
}

type UserDAO struct {
	db *gorm.DB
}

func NewUserDAO(db *gorm.DB) *UserDAO {
	return &UserDAO{
		db: db,
	}
}

func (d *UserDAO) Insert(ctx context.Context, user User) (User, error) {
	result := d.db.WithContext(ctx).Create(&user)
	if result.Error != nil {
		var err *pgconn.PgError
		if errors.As(result.Error, &err) &&
			err.Code == pgerrcode.UniqueViolation &&
			strings.Contains(err.Message, `unique constraint "uni_users_email"`) {
			return User{}, ErrUserEmailExists
		}

		return User{}, result.Error
	}

	return user, nil
}

func (d *UserDAO) FindByID(ctx context.Context, id uint) (User, error) {
	var user User
	result := d.db.WithContext(ctx).First(&user, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return User{}, ErrUserNotFound
		}

		return User{}, result.Error
	}

	return user, nil
}

func (d *UserDAO) FindByEmail(ctx context.Context, email string) (User, error) {
	var user User
	result := d.db.WithContext(ctx).Where("email = ?", email).First(&user)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return User{}, ErrUserNotFound
		}

		return User{}, result.Error
	}

	return user, nil
}

// FindRoster returns the users linked to ownerID, ordered by name.
func (d *UserDAO) FindRoster(ctx context.Context, ownerID uint) ([]User, error) {
	var users []User
	result := d.db.WithContext(ctx).
		Joins("JOIN user_links ON user_links.user_id = users.id").
		Where("user_links.owner_id = ?", ownerID).
		Order("users.name").
		Find(&users)
	if result.Error != nil {
		return nil, result.Error
	}

	return users, nil
}

// LinkUser adds user to owner's roster. Re-linking is a no-op.
func (d *UserDAO) LinkUser(ctx context.Context, ownerID, userID uint) error {
	link := UserLink{OwnerID: ownerID, UserID: userID}
	result := d.db.WithContext(ctx).
		Where("owner_id = ? AND user_id = ?", ownerID, userID).
		FirstOrCreate(&link)

	return result.Error
}
