package engine

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLedgerAPI struct {
	mu       sync.Mutex
	roster   []RosterUser
	baseline ContributorBaseline

	rosterErr    error
	contribErr   error
	submitErr    error
	rosterCalls  int
	gettingCalls [][]GettingUpdate
	goInOnCalls  [][]GoInOnUpdate

	// rosterStarted/rosterRelease make the first roster fetch block so
	// tests can interleave a second load deterministically.
	rosterStarted chan struct{}
	rosterRelease chan struct{}
}

func (f *fakeLedgerAPI) Roster(ctx context.Context) ([]RosterUser, error) {
	f.mu.Lock()
	f.rosterCalls++
	first := f.rosterCalls == 1
	f.mu.Unlock()

	if first && f.rosterStarted != nil {
		close(f.rosterStarted)
		<-f.rosterRelease
	}

	if f.rosterErr != nil {
		return nil, f.rosterErr
	}

	return f.roster, nil
}

func (f *fakeLedgerAPI) Contributors(ctx context.Context, itemID uint) (ContributorBaseline, error) {
	if f.contribErr != nil {
		return ContributorBaseline{}, f.contribErr
	}

	baseline := f.baseline
	baseline.Item.ItemID = itemID

	return baseline, nil
}

func (f *fakeLedgerAPI) BulkUpdateGetting(ctx context.Context, updates []GettingUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.submitErr != nil {
		return f.submitErr
	}
	f.gettingCalls = append(f.gettingCalls, updates)

	return nil
}

func (f *fakeLedgerAPI) BulkUpdateGoInOn(ctx context.Context, updates []GoInOnUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.submitErr != nil {
		return f.submitErr
	}
	f.goInOnCalls = append(f.goInOnCalls, updates)

	return nil
}

func newTestAPI() *fakeLedgerAPI {
	return &fakeLedgerAPI{
		roster: []RosterUser{
			{ID: 1, Name: "Ada"},
			{ID: 2, Name: "Ben"},
			{ID: 3, Name: "Cleo"},
		},
		baseline: ContributorBaseline{
			Item: ItemContext{GetterID: 50, AmountWanted: 3, MaxAmountWanted: 5},
			Contributors: []Contributor{
				{UserID: 2, Name: "Ben", NumberGetting: 2, Participating: true},
			},
		},
	}
}

func TestLedgerLoadMergesRosterWithBaseline(t *testing.T) {
	ledger := NewLedger(ModeGetting, newTestAPI(), nil, nil)

	require.NoError(t, ledger.Load(context.Background(), 7))
	require.True(t, ledger.Loaded())
	assert.Equal(t, uint(7), ledger.Item().ItemID)

	records := ledger.Records()
	require.Len(t, records, 3)

	// Roster users without a baseline record seed as zero/false.
	ada, ok := ledger.Record(1)
	require.True(t, ok)
	assert.Equal(t, 0, ada.Quantity)
	assert.False(t, ada.Participating)
	assert.False(t, ada.Changed())

	// Matching baseline contributor seeds quantity and participation.
	ben, ok := ledger.Record(2)
	require.True(t, ok)
	assert.Equal(t, 2, ben.Quantity)
	assert.True(t, ben.Participating)
	assert.False(t, ben.Changed())
}

func TestLedgerKeepsBaselineContributorMissingFromRoster(t *testing.T) {
	api := newTestAPI()
	api.baseline.Contributors = append(api.baseline.Contributors, Contributor{
		UserID: 99, Name: "Former friend", NumberGetting: 2,
	})

	ledger := NewLedger(ModeGetting, api, nil, nil)
	require.NoError(t, ledger.Load(context.Background(), 7))

	orphan, ok := ledger.Record(99)
	require.True(t, ok)
	assert.False(t, orphan.InRoster)

	// Still counted, not editable.
	assert.Equal(t, 4, ledger.Aggregate().Total)
	ledger.SetQuantity(99, 10)
	assert.Equal(t, 4, ledger.Aggregate().Total)
}

func TestLedgerLoadFailureLeavesUnloaded(t *testing.T) {
	api := newTestAPI()
	api.contribErr = errors.New("boom")

	ledger := NewLedger(ModeGetting, api, nil, nil)
	err := ledger.Load(context.Background(), 7)

	require.Error(t, err)
	assert.False(t, ledger.Loaded())
	assert.Empty(t, ledger.Records())
}

func TestLedgerSupersededLoadIsDiscarded(t *testing.T) {
	api := newTestAPI()
	api.rosterStarted = make(chan struct{})
	api.rosterRelease = make(chan struct{})

	ledger := NewLedger(ModeGetting, api, nil, nil)

	firstDone := make(chan error, 1)
	go func() {
		firstDone <- ledger.Load(context.Background(), 1)
	}()

	<-api.rosterStarted // first load is in flight

	require.NoError(t, ledger.Load(context.Background(), 2))
	close(api.rosterRelease)

	assert.ErrorIs(t, <-firstDone, ErrSuperseded)
	assert.Equal(t, uint(2), ledger.Item().ItemID)
}

func TestLedgerQuantityMutationsClampAndRecomputeChanged(t *testing.T) {
	ledger := NewLedger(ModeGetting, newTestAPI(), nil, nil)
	require.NoError(t, ledger.Load(context.Background(), 7))

	ledger.SetQuantity(1, -5)
	ada, _ := ledger.Record(1)
	assert.Equal(t, 0, ada.Quantity)
	assert.False(t, ada.Changed())

	ledger.Increment(1)
	ledger.Increment(1)
	ledger.Decrement(1)
	ada, _ = ledger.Record(1)
	assert.Equal(t, 1, ada.Quantity)
	assert.True(t, ada.Changed())

	// Decrement never goes below zero.
	ledger.Decrement(1)
	ledger.Decrement(1)
	ada, _ = ledger.Record(1)
	assert.Equal(t, 0, ada.Quantity)
	assert.False(t, ada.Changed())
}

func TestLedgerToggleReversibilityClearsChanged(t *testing.T) {
	ledger := NewLedger(ModeGoInOn, newTestAPI(), nil, nil)
	require.NoError(t, ledger.Load(context.Background(), 7))

	ledger.ToggleParticipation(2)
	ben, _ := ledger.Record(2)
	assert.False(t, ben.Participating)
	assert.True(t, ben.Changed())

	ledger.ToggleParticipation(2)
	ben, _ = ledger.Record(2)
	assert.True(t, ben.Participating)
	assert.False(t, ben.Changed())

	// Setting the quantity back to its original clears changed too,
	// regardless of intermediate mutations.
	ledger.SetQuantity(2, 9)
	ledger.SetQuantity(2, 2)
	ben, _ = ledger.Record(2)
	assert.False(t, ben.Changed())
	assert.False(t, ledger.HasChanges())
}

func TestLedgerPinnedProposalRowIsImmutable(t *testing.T) {
	api := newTestAPI()
	api.baseline.Contributors = []Contributor{
		{UserID: 1, NumberGetting: 1, Proposal: true},
	}

	ledger := NewLedger(ModeGetting, api, nil, nil)
	require.NoError(t, ledger.Load(context.Background(), 7))

	ledger.Decrement(1)
	ledger.Increment(1)
	ledger.SetQuantity(1, 5)

	pinned, _ := ledger.Record(1)
	assert.Equal(t, 1, pinned.Quantity)
	assert.False(t, pinned.Changed())
}

func TestLedgerSaveNoChangesSkipsNetwork(t *testing.T) {
	api := newTestAPI()
	ledger := NewLedger(ModeGetting, api, nil, nil)
	require.NoError(t, ledger.Load(context.Background(), 7))

	assert.ErrorIs(t, ledger.Save(context.Background()), ErrNoChanges)
	assert.Empty(t, api.gettingCalls)
}

func TestLedgerSaveSubmitsOnlyChangedRoster(t *testing.T) {
	api := newTestAPI()
	cache := NewCache()
	cache.Set("contributors/item/7", "stale", 0)
	bus := NewBus()

	announced := 0
	bus.Listen(EventItemUpdated, func(any) { announced++ })

	ledger := NewLedger(ModeGetting, api, cache, bus)
	require.NoError(t, ledger.Load(context.Background(), 7))

	ledger.SetQuantity(1, 2)
	require.NoError(t, ledger.Save(context.Background()))

	require.Len(t, api.gettingCalls, 1)
	require.Len(t, api.gettingCalls[0], 1)
	assert.Equal(t, GettingUpdate{GiverID: 1, GetterID: 50, NumberGetting: 2, ItemID: 7}, api.gettingCalls[0][0])

	// Successful save invalidates the item baseline and announces it,
	// but changed flags reset only on reload.
	_, ok := cache.Get("contributors/item/7")
	assert.False(t, ok)
	assert.Equal(t, 1, announced)
	assert.True(t, ledger.HasChanges())
}

func TestLedgerSaveFailurePreservesDraft(t *testing.T) {
	api := newTestAPI()
	api.submitErr = errors.New("server down")

	ledger := NewLedger(ModeGetting, api, nil, nil)
	require.NoError(t, ledger.Load(context.Background(), 7))

	ledger.SetQuantity(1, 3)
	require.Error(t, ledger.Save(context.Background()))

	ada, _ := ledger.Record(1)
	assert.Equal(t, 3, ada.Quantity)
	assert.True(t, ada.Changed())
}

func TestLedgerGoInOnSave(t *testing.T) {
	api := newTestAPI()
	ledger := NewLedger(ModeGoInOn, api, nil, nil)
	require.NoError(t, ledger.Load(context.Background(), 7))

	ledger.ToggleParticipation(1)
	require.NoError(t, ledger.Save(context.Background()))

	require.Len(t, api.goInOnCalls, 1)
	require.Len(t, api.goInOnCalls[0], 1)
	assert.Equal(t, GoInOnUpdate{GiverID: 1, GetterID: 50, ItemID: 7, Participating: true}, api.goInOnCalls[0][0])
}

func TestLedgerSaveBeforeLoad(t *testing.T) {
	ledger := NewLedger(ModeGetting, newTestAPI(), nil, nil)

	assert.ErrorIs(t, ledger.Save(context.Background()), ErrNotLoaded)
}

func TestLedgerMutationsBeforeLoadAreNoOps(t *testing.T) {
	ledger := NewLedger(ModeGetting, newTestAPI(), nil, nil)

	ledger.SetQuantity(1, 5)
	ledger.Increment(1)
	ledger.ToggleParticipation(1)

	assert.Empty(t, ledger.Records())
}
