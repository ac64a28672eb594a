package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/wishwell/giftsync/internal/domain"
	"github.com/wishwell/giftsync/internal/repository"
)

var (
	ErrEventNotFound     = repository.ErrEventNotFound
	ErrRecipientNotFound = repository.ErrRecipientNotFound
	ErrGiftRowNotFound   = repository.ErrGiftRowNotFound
	ErrInvalidStatus     = errors.New("unknown tracking status")
	ErrMissingRowID      = errors.New("changed rows must carry a rowId")
	ErrNotOrganizer      = errors.New("user is not the event organizer")
)

type TrackingRepository interface {
	GetEvent(ctx context.Context, eventID uint) (domain.Event, error)
	FindRecipientStates(ctx context.Context, eventID uint) ([]domain.RecipientState, error)
	BulkSave(ctx context.Context, rows []domain.RowUpdate, recipients []domain.RecipientUpdate) ([]uint, error)
}

type TrackingService struct {
	repo TrackingRepository
}

func NewTrackingService(repo TrackingRepository) *TrackingService {
	return &TrackingService{
		repo: repo,
	}
}

// IsOrganizer reports whether userID organizes the event.
func (s *TrackingService) IsOrganizer(ctx context.Context, eventID, userID uint) (bool, error) {
	event, err := s.repo.GetEvent(ctx, eventID)
	if err != nil {
		return false, fmt.Errorf("s.repo.GetEvent -> %w", err)
	}

	return event.OrganizerID == userID, nil
}

// EventTracking loads the per-recipient gift states of an event, the
// baseline the client-side tracker diffs against.
func (s *TrackingService) EventTracking(ctx context.Context, eventID uint) ([]domain.RecipientState, error) {
	if _, err := s.repo.GetEvent(ctx, eventID); err != nil {
		return nil, fmt.Errorf("s.repo.GetEvent -> %w", err)
	}

	states, err := s.repo.FindRecipientStates(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindRecipientStates -> %w", err)
	}

	return states, nil
}

// BulkSave validates and applies a tracking change-set in one atomic
// batch, returning the affected event ids for cache invalidation. An
// empty change-set is accepted and applies nothing; clients are expected
// to skip the call entirely, but a no-op save must not fail.
func (s *TrackingService) BulkSave(ctx context.Context, rows []domain.RowUpdate, recipients []domain.RecipientUpdate) ([]uint, error) {
	for _, row := range rows {
		if row.RowID == 0 {
			return nil, ErrMissingRowID
		}
		if !domain.ValidStatus(row.Status) {
			return nil, ErrInvalidStatus
		}
		if row.NumberGetting < 0 {
			return nil, ErrNegativeQuantity
		}
	}

	for _, recipient := range recipients {
		if !domain.ValidStatus(recipient.Status) {
			return nil, ErrInvalidStatus
		}
	}

	if len(rows) == 0 && len(recipients) == 0 {
		return nil, nil
	}

	eventIDs, err := s.repo.BulkSave(ctx, rows, recipients)
	if err != nil {
		return nil, fmt.Errorf("s.repo.BulkSave -> %w", err)
	}

	return eventIDs, nil
}
