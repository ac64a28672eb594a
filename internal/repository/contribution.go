package repository

import (
	"context"
	"fmt"

	"github.com/wishwell/giftsync/internal/domain"
	"github.com/wishwell/giftsync/internal/repository/dao"
)

var (
	ErrItemNotFound = dao.ErrItemNotFound
)

type ContributionDAO interface {
	FindItemByID(ctx context.Context, itemID uint) (dao.Item, error)
	FindByItemID(ctx context.Context, itemID uint) ([]dao.Contribution, error)
	UpsertGetting(ctx context.Context, rows []dao.Contribution) error
	UpsertGoInOn(ctx context.Context, rows []dao.Contribution) error
}

type ContributionRepository struct {
	dao ContributionDAO
}

func NewContributionRepository(dao ContributionDAO) *ContributionRepository {
	return &ContributionRepository{
		dao: dao,
	}
}

func (r *ContributionRepository) GetItem(ctx context.Context, itemID uint) (domain.Item, error) {
	item, err := r.dao.FindItemByID(ctx, itemID)
	if err != nil {
		return domain.Item{}, fmt.Errorf("r.dao.FindItemByID -> %w", err)
	}

	return r.itemDaoToDomain(item), nil
}

func (r *ContributionRepository) FindByItem(ctx context.Context, itemID uint) ([]domain.Contribution, error) {
	item, err := r.dao.FindItemByID(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindItemByID -> %w", err)
	}

	found, err := r.dao.FindByItemID(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindByItemID -> %w", err)
	}

	contributions := make([]domain.Contribution, 0, len(found))
	for _, c := range found {
		contributions = append(contributions, domain.Contribution{
			ID:            c.ID,
			ItemID:        c.ItemID,
			GiverID:       c.GiverID,
			GetterID:      item.GetterID,
			NumberGetting: c.NumberGetting,
			Participating: c.Participating,
			Proposal:      c.Proposal,
			CreatedAt:     c.CreatedAt,
			UpdatedAt:     c.UpdatedAt,
		})
	}

	return contributions, nil
}

func (r *ContributionRepository) BulkUpsertGetting(ctx context.Context, updates []domain.GettingUpdate) error {
	rows := make([]dao.Contribution, 0, len(updates))
	for _, update := range updates {
		rows = append(rows, dao.Contribution{
			ItemID:        update.ItemID,
			GiverID:       update.GiverID,
			NumberGetting: update.NumberGetting,
		})
	}

	if err := r.dao.UpsertGetting(ctx, rows); err != nil {
		return fmt.Errorf("r.dao.UpsertGetting -> %w", err)
	}

	return nil
}

func (r *ContributionRepository) BulkUpsertGoInOn(ctx context.Context, updates []domain.GoInOnUpdate) error {
	rows := make([]dao.Contribution, 0, len(updates))
	for _, update := range updates {
		rows = append(rows, dao.Contribution{
			ItemID:        update.ItemID,
			GiverID:       update.GiverID,
			Participating: update.Participating,
		})
	}

	if err := r.dao.UpsertGoInOn(ctx, rows); err != nil {
		return fmt.Errorf("r.dao.UpsertGoInOn -> %w", err)
	}

	return nil
}

func (r *ContributionRepository) itemDaoToDomain(i dao.Item) domain.Item {
	return domain.Item{
		ID:              i.ID,
		ListID:          i.ListID,
		GetterID:        i.GetterID,
		Title:           i.Title,
		Price:           i.Price,
		AmountWanted:    i.AmountWanted,
		MinAmountWanted: i.MinAmountWanted,
		MaxAmountWanted: i.MaxAmountWanted,
		CreatedAt:       i.CreatedAt,
		UpdatedAt:       i.UpdatedAt,
	}
}
