package repository

import (
	"context"
	"fmt"

	"github.com/wishwell/giftsync/internal/domain"
	"github.com/wishwell/giftsync/internal/repository/dao"
)

var (
	ErrEventNotFound     = dao.ErrEventNotFound
	ErrRecipientNotFound = dao.ErrRecipientNotFound
	ErrGiftRowNotFound   = dao.ErrGiftRowNotFound
)

type TrackingDAO interface {
	FindEventByID(ctx context.Context, eventID uint) (dao.Event, error)
	FindRecipientsByEventID(ctx context.Context, eventID uint) ([]dao.EventRecipient, error)
	FindRowsByEventID(ctx context.Context, eventID uint) ([]dao.GiftRow, error)
	BulkSave(ctx context.Context, rows []dao.RowReplacement, recipients []dao.RecipientReplacement) ([]uint, error)
}

type TrackingRepository struct {
	dao     TrackingDAO
	userDAO UserDAO
}

func NewTrackingRepository(dao TrackingDAO, userDAO UserDAO) *TrackingRepository {
	return &TrackingRepository{
		dao:     dao,
		userDAO: userDAO,
	}
}

func (r *TrackingRepository) GetEvent(ctx context.Context, eventID uint) (domain.Event, error) {
	event, err := r.dao.FindEventByID(ctx, eventID)
	if err != nil {
		return domain.Event{}, fmt.Errorf("r.dao.FindEventByID -> %w", err)
	}

	return domain.Event{
		ID:          event.ID,
		Name:        event.Name,
		Date:        event.Date,
		OrganizerID: event.OrganizerID,
		CreatedAt:   event.CreatedAt,
		UpdatedAt:   event.UpdatedAt,
	}, nil
}

// FindRecipientStates loads the recipients of an event with their gift
// rows attached and their user names resolved.
func (r *TrackingRepository) FindRecipientStates(ctx context.Context, eventID uint) ([]domain.RecipientState, error) {
	recipients, err := r.dao.FindRecipientsByEventID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindRecipientsByEventID -> %w", err)
	}

	rows, err := r.dao.FindRowsByEventID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindRowsByEventID -> %w", err)
	}

	rowsByRecipient := make(map[uint][]domain.GiftRow, len(recipients))
	for _, row := range rows {
		rowsByRecipient[row.RecipientID] = append(rowsByRecipient[row.RecipientID], domain.GiftRow{
			ID:            row.ID,
			EventID:       row.EventID,
			RecipientID:   row.RecipientID,
			Title:         row.Title,
			Type:          row.Type,
			Status:        row.Status,
			NumberGetting: row.NumberGetting,
			ActualPrice:   row.ActualPrice,
			CreatedAt:     row.CreatedAt,
			UpdatedAt:     row.UpdatedAt,
		})
	}

	states := make([]domain.RecipientState, 0, len(recipients))
	for _, recipient := range recipients {
		state := domain.RecipientState{
			ID:        recipient.ID,
			EventID:   recipient.EventID,
			UserID:    recipient.UserID,
			Status:    recipient.Status,
			Note:      recipient.Note,
			Rows:      rowsByRecipient[recipient.ID],
			CreatedAt: recipient.CreatedAt,
			UpdatedAt: recipient.UpdatedAt,
		}

		if user, err := r.userDAO.FindByID(ctx, recipient.UserID); err == nil {
			state.Name = user.Name
		}

		states = append(states, state)
	}

	return states, nil
}

// BulkSave applies a change-set of whole-row and recipient replacements
// atomically, returning the affected event ids.
func (r *TrackingRepository) BulkSave(ctx context.Context, rows []domain.RowUpdate, recipients []domain.RecipientUpdate) ([]uint, error) {
	rowReplacements := make([]dao.RowReplacement, 0, len(rows))
	for _, row := range rows {
		rowReplacements = append(rowReplacements, dao.RowReplacement{
			RowID:         row.RowID,
			Status:        row.Status,
			NumberGetting: row.NumberGetting,
			ActualPrice:   row.ActualPrice,
		})
	}

	recipientReplacements := make([]dao.RecipientReplacement, 0, len(recipients))
	for _, recipient := range recipients {
		recipientReplacements = append(recipientReplacements, dao.RecipientReplacement{
			RecipientID: recipient.RecipientID,
			Status:      recipient.Status,
			Note:        recipient.Note,
		})
	}

	eventIDs, err := r.dao.BulkSave(ctx, rowReplacements, recipientReplacements)
	if err != nil {
		return nil, fmt.Errorf("r.dao.BulkSave -> %w", err)
	}

	return eventIDs, nil
}
