package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

var (
	ErrItemNotFound = errors.New("item not found")
)

type Item struct {
	ID       uint `gorm:"primaryKey"`
	ListID   uint `gorm:"index"`
	GetterID uint `gorm:"not null;index"`

	Title string `gorm:"not null"`
	Price float64

	AmountWanted    int `gorm:"not null;default:1"`
	MinAmountWanted int
	MaxAmountWanted int

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

type Contribution struct {
	ID      uint `gorm:"primaryKey"`
	ItemID  uint `gorm:"not null;uniqueIndex:idx_contributions_item_giver"`
	GiverID uint `gorm:"not null;uniqueIndex:idx_contributions_item_giver"`

	NumberGetting int  `gorm:"not null;default:0"`
	Participating bool `gorm:"not null;default:false"`
	Proposal      bool `gorm:"not null;default:false"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

type ContributionDAO struct {
	db *gorm.DB
}

func NewContributionDAO(db *gorm.DB) *ContributionDAO {
	return &ContributionDAO{
		db: db,
	}
}

func (d *ContributionDAO) FindItemByID(ctx context.Context, itemID uint) (Item, error) {
	var item Item
	result := d.db.WithContext(ctx).First(&item, itemID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Item{}, ErrItemNotFound
		}

		return Item{}, result.Error
	}

	return item, nil
}

func (d *ContributionDAO) FindByItemID(ctx context.Context, itemID uint) ([]Contribution, error) {
	var contributions []Contribution
	result := d.db.WithContext(ctx).
		Where("item_id = ?", itemID).
		Order("giver_id").
		Find(&contributions)
	if result.Error != nil {
		return nil, result.Error
	}

	return contributions, nil
}

// UpsertGetting applies a batch of getting quantities in one transaction.
// Rows derived from an accepted proposal keep their pinned quantity; a
// missing row is created. Any failure rolls the whole batch back.
func (d *ContributionDAO) UpsertGetting(ctx context.Context, rows []Contribution) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, row := range rows {
			if err := upsertContribution(tx, row, func(existing *Contribution) {
				if !existing.Proposal {
					existing.NumberGetting = row.NumberGetting
				}
			}); err != nil {
				return err
			}
		}

		return nil
	})
}

// UpsertGoInOn applies a batch of joint-funding flags in one transaction.
func (d *ContributionDAO) UpsertGoInOn(ctx context.Context, rows []Contribution) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, row := range rows {
			if err := upsertContribution(tx, row, func(existing *Contribution) {
				existing.Participating = row.Participating
			}); err != nil {
				return err
			}
		}

		return nil
	})
}

func upsertContribution(tx *gorm.DB, row Contribution, apply func(existing *Contribution)) error {
	var existing Contribution
	result := tx.Where("item_id = ? AND giver_id = ?", row.ItemID, row.GiverID).First(&existing)
	if result.Error != nil {
		if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return result.Error
		}

		existing = Contribution{ItemID: row.ItemID, GiverID: row.GiverID}
	}

	apply(&existing)

	return tx.Save(&existing).Error
}
