package engine

import (
	"context"
	"fmt"
	"sync"
)

// GiftRowBaseline is the wire shape of one gift row as loaded from the
// event tracking endpoint.
type GiftRowBaseline struct {
	RowID         uint    `json:"rowId"`
	Title         string  `json:"title"`
	Type          string  `json:"type"`
	Status        string  `json:"status"`
	NumberGetting int     `json:"numberGetting"`
	ActualPrice   float64 `json:"actualPrice"`
}

// RecipientBaseline is the wire shape of one recipient's state as loaded
// from the event tracking endpoint.
type RecipientBaseline struct {
	RecipientID uint              `json:"recipientId"`
	Name        string            `json:"name"`
	Status      string            `json:"status"`
	Note        string            `json:"note"`
	Rows        []GiftRowBaseline `json:"rows"`
}

// TrackerAPI is the slice of Client a Tracker depends on.
type TrackerAPI interface {
	EventTracking(ctx context.Context, eventID uint) ([]RecipientBaseline, error)
	BulkSave(ctx context.Context, changes ChangeSet) error
}

// Tracker holds the per-recipient gift status, notes and gift rows for
// one event, tracks draft edits against the loaded baseline, and saves
// the minimal change-set in one batch call.
type Tracker struct {
	api   TrackerAPI
	cache *Cache
	bus   *Bus

	mu         sync.Mutex
	gen        uint64
	eventID    uint
	recipients []*TrackedRecipient
	loaded     bool
}

// NewTracker returns an unloaded Tracker. cache and bus may be nil.
func NewTracker(api TrackerAPI, cache *Cache, bus *Bus) *Tracker {
	return &Tracker{
		api:   api,
		cache: cache,
		bus:   bus,
	}
}

// Load fetches the event's recipient baseline. Like Ledger.Load, a join
// resolving after a newer Load started is discarded. Loading is the only
// operation that resets changed flags; a successful Save does not.
func (t *Tracker) Load(ctx context.Context, eventID uint) error {
	t.mu.Lock()
	t.gen++
	gen := t.gen
	t.eventID = eventID
	t.loaded = false
	t.recipients = nil
	t.mu.Unlock()

	baseline, err := t.api.EventTracking(ctx, eventID)
	if err != nil {
		return fmt.Errorf("t.api.EventTracking -> %w", err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.gen != gen {
		return ErrSuperseded
	}

	t.recipients = make([]*TrackedRecipient, 0, len(baseline))
	for _, rb := range baseline {
		recipient := &TrackedRecipient{
			RecipientID:    rb.RecipientID,
			Name:           rb.Name,
			Status:         rb.Status,
			Note:           rb.Note,
			originalStatus: rb.Status,
			originalNote:   rb.Note,
		}

		for _, row := range rb.Rows {
			recipient.Rows = append(recipient.Rows, GiftRow{
				RowID:                 row.RowID,
				Title:                 row.Title,
				Status:                row.Status,
				NumberGetting:         row.NumberGetting,
				ActualPrice:           row.ActualPrice,
				Proposal:              row.Type == "proposal",
				originalStatus:        row.Status,
				originalNumberGetting: row.NumberGetting,
				originalActualPrice:   row.ActualPrice,
			})
		}

		t.recipients = append(t.recipients, recipient)
	}
	t.loaded = true

	return nil
}

// Loaded reports whether a Load has completed successfully.
func (t *Tracker) Loaded() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.loaded
}

// Recipients returns a deep snapshot of the tracked recipients.
func (t *Tracker) Recipients() []TrackedRecipient {
	t.mu.Lock()
	defer t.mu.Unlock()

	recipients := make([]TrackedRecipient, 0, len(t.recipients))
	for _, r := range t.recipients {
		copied := *r
		copied.Rows = append([]GiftRow(nil), r.Rows...)
		recipients = append(recipients, copied)
	}

	return recipients
}

// SetRecipientStatus sets the draft status of a recipient. Unknown
// statuses are ignored.
func (t *Tracker) SetRecipientStatus(recipientID uint, status string) {
	if !ValidStatus(status) {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if r := t.findRecipient(recipientID); r != nil {
		r.Status = status
	}
}

// SetRecipientNote sets the draft note of a recipient.
func (t *Tracker) SetRecipientNote(recipientID uint, note string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if r := t.findRecipient(recipientID); r != nil {
		r.Note = note
	}
}

// SetRowStatus sets the draft status of one gift row. Unknown statuses
// are ignored.
func (t *Tracker) SetRowStatus(recipientID, rowID uint, status string) {
	if !ValidStatus(status) {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if row := t.findRow(recipientID, rowID); row != nil {
		row.Status = status
	}
}

// SetRowQuantity sets the draft quantity of one gift row, clamped at
// zero. Proposal rows are pinned to 1 and not editable.
func (t *Tracker) SetRowQuantity(recipientID, rowID uint, quantity int) {
	if quantity < 0 {
		quantity = 0
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if row := t.findRow(recipientID, rowID); row != nil && !row.Proposal {
		row.NumberGetting = quantity
	}
}

// IncrementRow raises the draft quantity of one gift row by one.
func (t *Tracker) IncrementRow(recipientID, rowID uint) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if row := t.findRow(recipientID, rowID); row != nil && !row.Proposal {
		row.NumberGetting++
	}
}

// DecrementRow lowers the draft quantity of one gift row by one, clamped
// at zero. Proposal rows are excluded entirely.
func (t *Tracker) DecrementRow(recipientID, rowID uint) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if row := t.findRow(recipientID, rowID); row != nil && !row.Proposal && row.NumberGetting > 0 {
		row.NumberGetting--
	}
}

// SetRowPrice sets the draft actual price of one gift row.
func (t *Tracker) SetRowPrice(recipientID, rowID uint, price float64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if row := t.findRow(recipientID, rowID); row != nil {
		row.ActualPrice = price
	}
}

// ChangeSet computes the current minimal diff without submitting it.
func (t *Tracker) ChangeSet() ChangeSet {
	return Diff(t.Recipients())
}

// Save submits the change-set in a single bulkSave call. An empty
// change-set returns ErrNoChanges without touching the network. On
// success the event's cached baseline is invalidated and
// EventTrackingUpdated announced; changed flags reset only on reload. On
// failure the draft is preserved for retry.
func (t *Tracker) Save(ctx context.Context) (ChangeSet, error) {
	t.mu.Lock()
	if !t.loaded {
		t.mu.Unlock()

		return ChangeSet{}, ErrNotLoaded
	}
	eventID := t.eventID
	t.mu.Unlock()

	cs := t.ChangeSet()
	if cs.Empty() {
		return cs, ErrNoChanges
	}

	if err := t.api.BulkSave(ctx, cs); err != nil {
		return cs, err
	}

	if t.cache != nil {
		t.cache.Invalidate(fmt.Sprintf("%v%d*", eventTrackingCachePrefix, eventID))
	}
	if t.bus != nil {
		t.bus.Trigger(EventTrackingUpdated, eventID)
	}

	return cs, nil
}

func (t *Tracker) findRecipient(recipientID uint) *TrackedRecipient {
	if !t.loaded {
		return nil
	}

	for _, r := range t.recipients {
		if r.RecipientID == recipientID {
			return r
		}
	}

	return nil
}

func (t *Tracker) findRow(recipientID, rowID uint) *GiftRow {
	recipient := t.findRecipient(recipientID)
	if recipient == nil {
		return nil
	}

	for i := range recipient.Rows {
		if recipient.Rows[i].RowID == rowID {
			return &recipient.Rows[i]
		}
	}

	return nil
}
