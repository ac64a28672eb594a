package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wishwell/giftsync/internal/domain"
)

type fakeContributionRepo struct {
	item          domain.Item
	itemErr       error
	contributions []domain.Contribution

	gettingBatches [][]domain.GettingUpdate
	goInOnBatches  [][]domain.GoInOnUpdate
	upsertErr      error
}

func (f *fakeContributionRepo) GetItem(_ context.Context, _ uint) (domain.Item, error) {
	return f.item, f.itemErr
}

func (f *fakeContributionRepo) FindByItem(_ context.Context, _ uint) ([]domain.Contribution, error) {
	return f.contributions, nil
}

func (f *fakeContributionRepo) BulkUpsertGetting(_ context.Context, updates []domain.GettingUpdate) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.gettingBatches = append(f.gettingBatches, updates)

	return nil
}

func (f *fakeContributionRepo) BulkUpsertGoInOn(_ context.Context, updates []domain.GoInOnUpdate) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.goInOnBatches = append(f.goInOnBatches, updates)

	return nil
}

func TestContributionService_ItemContributors(t *testing.T) {
	repo := &fakeContributionRepo{
		item: domain.Item{ID: 7, GetterID: 50, AmountWanted: 3, MaxAmountWanted: 5},
		contributions: []domain.Contribution{
			{ItemID: 7, GiverID: 2, NumberGetting: 2, Participating: true},
		},
	}
	svc := NewContributionService(repo)

	item, contributions, err := svc.ItemContributors(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, uint(7), item.ID)
	require.Len(t, contributions, 1)
	assert.Equal(t, 2, contributions[0].NumberGetting)
}

func TestContributionService_ItemContributors_NotFound(t *testing.T) {
	repo := &fakeContributionRepo{itemErr: ErrItemNotFound}
	svc := NewContributionService(repo)

	_, _, err := svc.ItemContributors(context.Background(), 99)
	assert.ErrorIs(t, err, ErrItemNotFound)
}

func TestContributionService_BulkUpdateGetting(t *testing.T) {
	repo := &fakeContributionRepo{}
	svc := NewContributionService(repo)

	updates := []domain.GettingUpdate{
		{GiverID: 1, GetterID: 50, NumberGetting: 2, ItemID: 7},
		{GiverID: 2, GetterID: 50, NumberGetting: 0, ItemID: 7},
	}

	err := svc.BulkUpdateGetting(context.Background(), updates)
	require.NoError(t, err)
	require.Len(t, repo.gettingBatches, 1)
	assert.Len(t, repo.gettingBatches[0], 2)
}

func TestContributionService_BulkUpdateGetting_RejectsWholeBatch(t *testing.T) {
	repo := &fakeContributionRepo{}
	svc := NewContributionService(repo)

	updates := []domain.GettingUpdate{
		{GiverID: 1, GetterID: 50, NumberGetting: 2, ItemID: 7},
		{GiverID: 2, GetterID: 50, NumberGetting: -1, ItemID: 7},
	}

	err := svc.BulkUpdateGetting(context.Background(), updates)
	assert.ErrorIs(t, err, ErrNegativeQuantity)
	assert.Empty(t, repo.gettingBatches, "an invalid row must reject the whole batch")
}

func TestContributionService_BulkUpdateGetting_EmptyBatch(t *testing.T) {
	svc := NewContributionService(&fakeContributionRepo{})

	err := svc.BulkUpdateGetting(context.Background(), nil)
	assert.ErrorIs(t, err, ErrEmptyBatch)
}

func TestContributionService_BulkUpdateGetting_MissingIDs(t *testing.T) {
	svc := NewContributionService(&fakeContributionRepo{})

	err := svc.BulkUpdateGetting(context.Background(), []domain.GettingUpdate{
		{GiverID: 0, NumberGetting: 1, ItemID: 7},
	})
	assert.ErrorIs(t, err, ErrMissingIDs)
}

func TestContributionService_BulkUpdateGoInOn(t *testing.T) {
	repo := &fakeContributionRepo{}
	svc := NewContributionService(repo)

	err := svc.BulkUpdateGoInOn(context.Background(), []domain.GoInOnUpdate{
		{GiverID: 1, GetterID: 50, ItemID: 7, Participating: true},
		{GiverID: 2, GetterID: 50, ItemID: 7, Participating: false},
	})
	require.NoError(t, err)
	require.Len(t, repo.goInOnBatches, 1)
}

func TestContributionService_BulkUpdateGoInOn_RepoError(t *testing.T) {
	repo := &fakeContributionRepo{upsertErr: errors.New("boom")}
	svc := NewContributionService(repo)

	err := svc.BulkUpdateGoInOn(context.Background(), []domain.GoInOnUpdate{
		{GiverID: 1, GetterID: 50, ItemID: 7},
	})
	assert.Error(t, err)
}
