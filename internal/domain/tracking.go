package domain

import "time"

// Gift tracking statuses for recipients and gift rows.
const (
	StatusPending    = "pending"
	StatusInProgress = "in-progress"
	StatusDone       = "done"
)

// ValidStatus reports whether s is a known tracking status.
func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusInProgress, StatusDone:
		return true
	}

	return false
}

// Gift row types. Proposal rows come from an accepted group-gift proposal
// and have their quantity pinned to 1.
const (
	RowTypeItem     = "item"
	RowTypeProposal = "proposal"
)

type Event struct {
	ID          uint      `json:"id"`
	Name        string    `json:"name"`
	Date        time.Time `json:"date"`
	OrganizerID uint      `json:"organizerId"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// RecipientState is an organizer's per-recipient gift status and note
// within one event, plus the gift rows tracked for that recipient.
type RecipientState struct {
	ID          uint      `json:"recipientId"`
	EventID     uint      `json:"eventId"`
	UserID      uint      `json:"userId"`
	Name        string    `json:"name"`
	Status      string    `json:"status"`
	Note        string    `json:"note"`
	Rows        []GiftRow `json:"rows"`
	CreatedAt   time.Time `json:"-"`
	UpdatedAt   time.Time `json:"-"`
}

// GiftRow is one tracked gift for a recipient within an event.
type GiftRow struct {
	ID            uint      `json:"rowId"`
	EventID       uint      `json:"eventId"`
	RecipientID   uint      `json:"recipientId"`
	Title         string    `json:"title"`
	Type          string    `json:"type"`
	Status        string    `json:"status"`
	NumberGetting int       `json:"numberGetting"`
	ActualPrice   float64   `json:"actualPrice"`
	CreatedAt     time.Time `json:"-"`
	UpdatedAt     time.Time `json:"-"`
}

// Apply replaces the row's tracked fields with a whole-row update,
// keeping proposal quantities pinned.
func (g *GiftRow) Apply(status string, numberGetting int, actualPrice float64) {
	g.Status = status
	g.NumberGetting = numberGetting
	if g.NumberGetting < 0 {
		g.NumberGetting = 0
	}
	if g.Type == RowTypeProposal {
		g.NumberGetting = 1
	}
	g.ActualPrice = actualPrice
}

// RowUpdate is one changed gift row of a bulkSave request. It carries
// full current values; the server contract is whole-row replacement.
type RowUpdate struct {
	RowID         uint    `json:"rowId"`
	Status        string  `json:"status"`
	NumberGetting int     `json:"numberGetting"`
	ActualPrice   float64 `json:"actualPrice"`
}

// RecipientUpdate is one changed recipient of a bulkSave request.
type RecipientUpdate struct {
	RecipientID uint   `json:"recipientId"`
	Status      string `json:"status"`
	Note        string `json:"note"`
}
