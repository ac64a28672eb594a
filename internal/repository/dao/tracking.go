package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

var (
	ErrEventNotFound     = errors.New("event not found")
	ErrRecipientNotFound = errors.New("event recipient not found")
	ErrGiftRowNotFound   = errors.New("gift row not found")
)

type Event struct {
	ID          uint      `gorm:"primaryKey"`
	Name        string    `gorm:"not null"`
	Date        time.Time `gorm:"not null"`
	OrganizerID uint      `gorm:"not null;index"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

type EventRecipient struct {
	ID      uint `gorm:"primaryKey"`
	EventID uint `gorm:"not null;uniqueIndex:idx_event_recipients_event_user"`
	UserID  uint `gorm:"not null;uniqueIndex:idx_event_recipients_event_user"`

	Status string `gorm:"not null;default:pending"`
	Note   string

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

type GiftRow struct {
	ID          uint `gorm:"primaryKey"`
	EventID     uint `gorm:"not null;index"`
	RecipientID uint `gorm:"not null;index"` // EventRecipient.ID

	Title         string `gorm:"not null"`
	Type          string `gorm:"not null;default:item"` // "item" or "proposal"
	Status        string `gorm:"not null;default:pending"`
	NumberGetting int    `gorm:"not null;default:0"`
	ActualPrice   float64

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

type TrackingDAO struct {
	db *gorm.DB
}

func NewTrackingDAO(db *gorm.DB) *TrackingDAO {
	return &TrackingDAO{
		db: db,
	}
}

func (d *TrackingDAO) FindEventByID(ctx context.Context, eventID uint) (Event, error) {
	var event Event
	result := d.db.WithContext(ctx).First(&event, eventID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Event{}, ErrEventNotFound
		}

		return Event{}, result.Error
	}

	return event, nil
}

func (d *TrackingDAO) FindRecipientsByEventID(ctx context.Context, eventID uint) ([]EventRecipient, error) {
	var recipients []EventRecipient
	result := d.db.WithContext(ctx).
		Where("event_id = ?", eventID).
		Order("id").
		Find(&recipients)
	if result.Error != nil {
		return nil, result.Error
	}

	return recipients, nil
}

func (d *TrackingDAO) FindRowsByEventID(ctx context.Context, eventID uint) ([]GiftRow, error) {
	var rows []GiftRow
	result := d.db.WithContext(ctx).
		Where("event_id = ?", eventID).
		Order("id").
		Find(&rows)
	if result.Error != nil {
		return nil, result.Error
	}

	return rows, nil
}

func (d *TrackingDAO) InsertEvent(ctx context.Context, event Event) (Event, error) {
	result := d.db.WithContext(ctx).Create(&event)
	if result.Error != nil {
		return Event{}, result.Error
	}

	return event, nil
}

func (d *TrackingDAO) InsertRecipient(ctx context.Context, recipient EventRecipient) (EventRecipient, error) {
	result := d.db.WithContext(ctx).Create(&recipient)
	if result.Error != nil {
		return EventRecipient{}, result.Error
	}

	return recipient, nil
}

func (d *TrackingDAO) InsertRow(ctx context.Context, row GiftRow) (GiftRow, error) {
	result := d.db.WithContext(ctx).Create(&row)
	if result.Error != nil {
		return GiftRow{}, result.Error
	}

	return row, nil
}

// RowReplacement is one whole-row update of a bulk save.
type RowReplacement struct {
	RowID         uint
	Status        string
	NumberGetting int
	ActualPrice   float64
}

// RecipientReplacement is one recipient status/note update of a bulk save.
type RecipientReplacement struct {
	RecipientID uint
	Status      string
	Note        string
}

// BulkSave applies all row and recipient replacements in one transaction
// and returns the ids of the affected events. A missing row or recipient
// fails the whole batch, so the save is all-or-nothing. Proposal rows
// keep their quantity pinned to 1.
func (d *TrackingDAO) BulkSave(ctx context.Context, rows []RowReplacement, recipients []RecipientReplacement) ([]uint, error) {
	eventIDs := make(map[uint]struct{})

	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, replacement := range rows {
			var row GiftRow
			if err := tx.First(&row, replacement.RowID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrGiftRowNotFound
				}

				return err
			}

			row.Status = replacement.Status
			row.NumberGetting = replacement.NumberGetting
			if row.Type == "proposal" {
				row.NumberGetting = 1
			}
			row.ActualPrice = replacement.ActualPrice

			if err := tx.Save(&row).Error; err != nil {
				return err
			}

			eventIDs[row.EventID] = struct{}{}
		}

		for _, replacement := range recipients {
			var recipient EventRecipient
			if err := tx.First(&recipient, replacement.RecipientID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrRecipientNotFound
				}

				return err
			}

			recipient.Status = replacement.Status
			recipient.Note = replacement.Note

			if err := tx.Save(&recipient).Error; err != nil {
				return err
			}

			eventIDs[recipient.EventID] = struct{}{}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	affected := make([]uint, 0, len(eventIDs))
	for id := range eventIDs {
		affected = append(affected, id)
	}

	return affected, nil
}
