package engine

// GiftRow is one tracked gift of a recipient: draft values plus the
// originally loaded baseline.
type GiftRow struct {
	RowID         uint
	Title         string
	Status        string
	NumberGetting int
	ActualPrice   float64

	// Proposal rows have their quantity pinned to 1 server-side and are
	// excluded from quantity edits.
	Proposal bool

	originalStatus        string
	originalNumberGetting int
	originalActualPrice   float64
}

// Changed reports whether any of the row's three tracked fields differs
// from its baseline.
func (r GiftRow) Changed() bool {
	return r.Status != r.originalStatus ||
		r.NumberGetting != r.originalNumberGetting ||
		r.ActualPrice != r.originalActualPrice
}

// TrackedRecipient is one recipient's allocation state within an event.
type TrackedRecipient struct {
	RecipientID uint
	Name        string
	Status      string
	Note        string
	Rows        []GiftRow

	originalStatus string
	originalNote   string
}

// Changed reports whether the recipient's own status or note differs from
// its baseline, ignoring its rows.
func (t TrackedRecipient) Changed() bool {
	return t.Status != t.originalStatus || t.Note != t.originalNote
}

// ItemChange is a whole-row replacement payload for one changed gift row.
// The server contract expects full current values, not a field patch.
type ItemChange struct {
	RowID         uint    `json:"rowId"`
	Status        string  `json:"status"`
	NumberGetting int     `json:"numberGetting"`
	ActualPrice   float64 `json:"actualPrice"`
}

// RecipientChange carries the full current status and note of one changed
// recipient.
type RecipientChange struct {
	RecipientID uint   `json:"recipientId"`
	Status      string `json:"status"`
	Note        string `json:"note"`
}

// ChangeSet is the minimal set of rows and recipients whose draft differs
// from the baseline, in the shape the bulkSave endpoint expects.
type ChangeSet struct {
	ChangedItems      []ItemChange      `json:"changedItems"`
	ChangedRecipients []RecipientChange `json:"changedRecipients"`
}

// Empty reports whether the change-set carries nothing to submit.
func (cs ChangeSet) Empty() bool {
	return len(cs.ChangedItems) == 0 && len(cs.ChangedRecipients) == 0
}

// Diff computes the change-set over recipients. A row is included when
// any of status, quantity or price differs from its original; a recipient
// when its status or note does. Rows without a stable id cannot be
// addressed server-side and are skipped. Diff is pure: diffing an
// unedited baseline yields an empty change-set.
func Diff(recipients []TrackedRecipient) ChangeSet {
	cs := ChangeSet{
		ChangedItems:      make([]ItemChange, 0),
		ChangedRecipients: make([]RecipientChange, 0),
	}

	for _, recipient := range recipients {
		for _, row := range recipient.Rows {
			if row.RowID == 0 || !row.Changed() {
				continue
			}

			cs.ChangedItems = append(cs.ChangedItems, ItemChange{
				RowID:         row.RowID,
				Status:        row.Status,
				NumberGetting: row.NumberGetting,
				ActualPrice:   row.ActualPrice,
			})
		}

		if recipient.Changed() {
			cs.ChangedRecipients = append(cs.ChangedRecipients, RecipientChange{
				RecipientID: recipient.RecipientID,
				Status:      recipient.Status,
				Note:        recipient.Note,
			})
		}
	}

	return cs
}
