package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func trackedRecipient(id uint, status, note string, rows ...GiftRow) TrackedRecipient {
	return TrackedRecipient{
		RecipientID:    id,
		Status:         status,
		Note:           note,
		Rows:           rows,
		originalStatus: status,
		originalNote:   note,
	}
}

func trackedRow(id uint, status string, quantity int, price float64) GiftRow {
	return GiftRow{
		RowID:                 id,
		Status:                status,
		NumberGetting:         quantity,
		ActualPrice:           price,
		originalStatus:        status,
		originalNumberGetting: quantity,
		originalActualPrice:   price,
	}
}

func TestDiffOfUneditedBaselineIsEmpty(t *testing.T) {
	recipients := []TrackedRecipient{
		trackedRecipient(1, StatusPending, "",
			trackedRow(10, StatusPending, 1, 0),
			trackedRow(11, StatusDone, 2, 19.99),
		),
		trackedRecipient(2, StatusDone, "wrapped"),
	}

	cs := Diff(recipients)
	assert.True(t, cs.Empty())
	assert.NotNil(t, cs.ChangedItems)
	assert.NotNil(t, cs.ChangedRecipients)
}

func TestDiffNoteChangeIncludesUnchangedStatus(t *testing.T) {
	recipient := trackedRecipient(3, StatusInProgress, "")
	recipient.Note = "buy blue one"

	cs := Diff([]TrackedRecipient{recipient})
	require.Len(t, cs.ChangedRecipients, 1)
	assert.Empty(t, cs.ChangedItems)

	change := cs.ChangedRecipients[0]
	assert.Equal(t, uint(3), change.RecipientID)
	assert.Equal(t, "buy blue one", change.Note)
	assert.Equal(t, StatusInProgress, change.Status)
}

func TestDiffRowIncludedWhenAnyFieldDiffers(t *testing.T) {
	byStatus := trackedRow(10, StatusPending, 1, 5)
	byStatus.Status = StatusDone

	byQuantity := trackedRow(11, StatusPending, 1, 5)
	byQuantity.NumberGetting = 3

	byPrice := trackedRow(12, StatusPending, 1, 5)
	byPrice.ActualPrice = 7.5

	cs := Diff([]TrackedRecipient{trackedRecipient(1, StatusPending, "", byStatus, byQuantity, byPrice)})
	require.Len(t, cs.ChangedItems, 3)

	// Whole-row replacement: every entry carries full current values.
	assert.Equal(t, ItemChange{RowID: 10, Status: StatusDone, NumberGetting: 1, ActualPrice: 5}, cs.ChangedItems[0])
	assert.Equal(t, ItemChange{RowID: 11, Status: StatusPending, NumberGetting: 3, ActualPrice: 5}, cs.ChangedItems[1])
	assert.Equal(t, ItemChange{RowID: 12, Status: StatusPending, NumberGetting: 1, ActualPrice: 7.5}, cs.ChangedItems[2])
}

func TestDiffSkipsRowsWithoutStableID(t *testing.T) {
	row := trackedRow(0, StatusPending, 1, 0)
	row.Status = StatusDone

	cs := Diff([]TrackedRecipient{trackedRecipient(1, StatusPending, "", row)})
	assert.Empty(t, cs.ChangedItems)
	assert.True(t, cs.Empty())
}

func TestDiffRevertedEditIsNotIncluded(t *testing.T) {
	recipient := trackedRecipient(4, StatusPending, "original")
	recipient.Note = "edited"
	recipient.Note = "original"

	cs := Diff([]TrackedRecipient{recipient})
	assert.True(t, cs.Empty())
}
