package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/wishwell/giftsync/internal/domain"
	"github.com/wishwell/giftsync/internal/repository"
)

var (
	ErrItemNotFound     = repository.ErrItemNotFound
	ErrNegativeQuantity = errors.New("numberGetting must not be negative")
	ErrEmptyBatch       = errors.New("batch contains no updates")
	ErrMissingIDs       = errors.New("update rows must carry itemId and giverId")
)

type ContributionRepository interface {
	GetItem(ctx context.Context, itemID uint) (domain.Item, error)
	FindByItem(ctx context.Context, itemID uint) ([]domain.Contribution, error)
	BulkUpsertGetting(ctx context.Context, updates []domain.GettingUpdate) error
	BulkUpsertGoInOn(ctx context.Context, updates []domain.GoInOnUpdate) error
}

type ContributionService struct {
	repo ContributionRepository
}

func NewContributionService(repo ContributionRepository) *ContributionService {
	return &ContributionService{
		repo: repo,
	}
}

// ItemContributors returns the item's allocation context together with
// its sparse contribution records. Users with no record are absent; the
// client-side ledger seeds them as zero.
func (s *ContributionService) ItemContributors(ctx context.Context, itemID uint) (domain.Item, []domain.Contribution, error) {
	item, err := s.repo.GetItem(ctx, itemID)
	if err != nil {
		return domain.Item{}, nil, fmt.Errorf("s.repo.GetItem -> %w", err)
	}

	contributions, err := s.repo.FindByItem(ctx, itemID)
	if err != nil {
		return domain.Item{}, nil, fmt.Errorf("s.repo.FindByItem -> %w", err)
	}

	return item, contributions, nil
}

// BulkUpdateGetting validates and applies a batch of getting quantities.
// The batch is rejected as a whole when any row is invalid; the
// repository applies it in a single transaction, so the endpoint is
// all-or-nothing.
func (s *ContributionService) BulkUpdateGetting(ctx context.Context, updates []domain.GettingUpdate) error {
	if len(updates) == 0 {
		return ErrEmptyBatch
	}

	for _, update := range updates {
		if update.ItemID == 0 || update.GiverID == 0 {
			return ErrMissingIDs
		}
		if update.NumberGetting < 0 {
			return ErrNegativeQuantity
		}
	}

	if err := s.repo.BulkUpsertGetting(ctx, updates); err != nil {
		return fmt.Errorf("s.repo.BulkUpsertGetting -> %w", err)
	}

	return nil
}

// BulkUpdateGoInOn validates and applies a batch of joint-funding flags.
func (s *ContributionService) BulkUpdateGoInOn(ctx context.Context, updates []domain.GoInOnUpdate) error {
	if len(updates) == 0 {
		return ErrEmptyBatch
	}

	for _, update := range updates {
		if update.ItemID == 0 || update.GiverID == 0 {
			return ErrMissingIDs
		}
	}

	if err := s.repo.BulkUpsertGoInOn(ctx, updates); err != nil {
		return fmt.Errorf("s.repo.BulkUpsertGoInOn -> %w", err)
	}

	return nil
}
