package request

import (
	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/wishwell/giftsync/internal/domain"
)

type GettingUpdateRow struct {
	GiverID       uint `json:"giverId"`
	GetterID      uint `json:"getterId"`
	NumberGetting int  `json:"numberGetting"`
	ItemID        uint `json:"itemId"`
}

func (r GettingUpdateRow) Validate() error {
	return validation.ValidateStruct(
		&r,
		validation.Field(&r.GiverID, validation.Required, validation.Min(uint(1))),
		validation.Field(&r.ItemID, validation.Required, validation.Min(uint(1))),
		validation.Field(&r.NumberGetting, validation.Min(0)),
	)
}

type BulkUpdateGettingRequest []GettingUpdateRow

func (req BulkUpdateGettingRequest) Validate() error {
	for _, row := range req {
		if err := row.Validate(); err != nil {
			return err
		}
	}

	return nil
}

func (req BulkUpdateGettingRequest) ToDomain() []domain.GettingUpdate {
	updates := make([]domain.GettingUpdate, 0, len(req))
	for _, row := range req {
		updates = append(updates, domain.GettingUpdate{
			GiverID:       row.GiverID,
			GetterID:      row.GetterID,
			NumberGetting: row.NumberGetting,
			ItemID:        row.ItemID,
		})
	}

	return updates
}

type GoInOnUpdateRow struct {
	GiverID       uint `json:"giverId"`
	GetterID      uint `json:"getterId"`
	ItemID        uint `json:"itemId"`
	Participating bool `json:"participating"`
}

func (r GoInOnUpdateRow) Validate() error {
	return validation.ValidateStruct(
		&r,
		validation.Field(&r.GiverID, validation.Required, validation.Min(uint(1))),
		validation.Field(&r.ItemID, validation.Required, validation.Min(uint(1))),
	)
}

type BulkUpdateGoInOnRequest []GoInOnUpdateRow

func (req BulkUpdateGoInOnRequest) Validate() error {
	for _, row := range req {
		if err := row.Validate(); err != nil {
			return err
		}
	}

	return nil
}

func (req BulkUpdateGoInOnRequest) ToDomain() []domain.GoInOnUpdate {
	updates := make([]domain.GoInOnUpdate, 0, len(req))
	for _, row := range req {
		updates = append(updates, domain.GoInOnUpdate{
			GiverID:       row.GiverID,
			GetterID:      row.GetterID,
			ItemID:        row.ItemID,
			Participating: row.Participating,
		})
	}

	return updates
}

type ChangedItemRow struct {
	RowID         uint    `json:"rowId"`
	Status        string  `json:"status"`
	NumberGetting int     `json:"numberGetting"`
	ActualPrice   float64 `json:"actualPrice"`
}

func (r ChangedItemRow) Validate() error {
	return validation.ValidateStruct(
		&r,
		validation.Field(&r.RowID, validation.Required, validation.Min(uint(1))),
		validation.Field(&r.Status, validation.Required, validation.In(domain.StatusPending, domain.StatusInProgress, domain.StatusDone)),
		validation.Field(&r.NumberGetting, validation.Min(0)),
	)
}

type ChangedRecipientRow struct {
	RecipientID uint   `json:"recipientId"`
	Status      string `json:"status"`
	Note        string `json:"note"`
}

func (r ChangedRecipientRow) Validate() error {
	return validation.ValidateStruct(
		&r,
		validation.Field(&r.RecipientID, validation.Required, validation.Min(uint(1))),
		validation.Field(&r.Status, validation.Required, validation.In(domain.StatusPending, domain.StatusInProgress, domain.StatusDone)),
	)
}

// BulkSaveRequest is the tracking change-set produced client-side: the
// rows and recipients whose draft differed from the loaded baseline.
type BulkSaveRequest struct {
	ChangedItems      []ChangedItemRow      `json:"changedItems"`
	ChangedRecipients []ChangedRecipientRow `json:"changedRecipients"`
}

func (req *BulkSaveRequest) Validate() error {
	for _, row := range req.ChangedItems {
		if err := row.Validate(); err != nil {
			return err
		}
	}
	for _, recipient := range req.ChangedRecipients {
		if err := recipient.Validate(); err != nil {
			return err
		}
	}

	return nil
}

func (req *BulkSaveRequest) Rows() []domain.RowUpdate {
	rows := make([]domain.RowUpdate, 0, len(req.ChangedItems))
	for _, row := range req.ChangedItems {
		rows = append(rows, domain.RowUpdate{
			RowID:         row.RowID,
			Status:        row.Status,
			NumberGetting: row.NumberGetting,
			ActualPrice:   row.ActualPrice,
		})
	}

	return rows
}

func (req *BulkSaveRequest) Recipients() []domain.RecipientUpdate {
	recipients := make([]domain.RecipientUpdate, 0, len(req.ChangedRecipients))
	for _, recipient := range req.ChangedRecipients {
		recipients = append(recipients, domain.RecipientUpdate{
			RecipientID: recipient.RecipientID,
			Status:      recipient.Status,
			Note:        recipient.Note,
		})
	}

	return recipients
}
