package engine

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Mode selects which batch endpoint a Ledger saves through.
type Mode int

const (
	// ModeGetting edits per-user quantities toward the wanted amount.
	ModeGetting Mode = iota
	// ModeGoInOn edits per-user joint-funding participation.
	ModeGoInOn
)

// LedgerAPI is the slice of Client a Ledger depends on.
type LedgerAPI interface {
	Roster(ctx context.Context) ([]RosterUser, error)
	Contributors(ctx context.Context, itemID uint) (ContributorBaseline, error)
	BulkUpdateGetting(ctx context.Context, updates []GettingUpdate) error
	BulkUpdateGoInOn(ctx context.Context, updates []GoInOnUpdate) error
}

// Ledger merges the roster with the sparse contribution baseline of one
// item into a complete, addressable set of per-user allocation records,
// tracks draft edits against that baseline, and saves the minimal diff.
type Ledger struct {
	api   LedgerAPI
	cache *Cache
	bus   *Bus
	mode  Mode

	mu      sync.Mutex
	gen     uint64
	itemID  uint
	item    ItemContext
	records []*Record
	loaded  bool
}

// NewLedger returns an unloaded Ledger. cache and bus may be nil; they
// are only used to invalidate and announce after a successful save.
func NewLedger(mode Mode, api LedgerAPI, cache *Cache, bus *Bus) *Ledger {
	return &Ledger{
		api:   api,
		cache: cache,
		bus:   bus,
		mode:  mode,
	}
}

// Load fetches the roster and the item's contribution baseline
// concurrently and merges them once both have resolved. Neither half is
// ever observable alone. Each call supersedes any in-flight one: a join
// that resolves after a newer Load started is discarded and reported as
// ErrSuperseded. A failed fetch leaves the Ledger unloaded.
func (l *Ledger) Load(ctx context.Context, itemID uint) error {
	l.mu.Lock()
	l.gen++
	gen := l.gen
	l.itemID = itemID
	l.loaded = false
	l.records = nil
	l.mu.Unlock()

	var (
		roster   []RosterUser
		baseline ContributorBaseline
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if roster, err = l.api.Roster(gctx); err != nil {
			return fmt.Errorf("l.api.Roster -> %w", err)
		}

		return nil
	})
	g.Go(func() error {
		var err error
		if baseline, err = l.api.Contributors(gctx, itemID); err != nil {
			return fmt.Errorf("l.api.Contributors -> %w", err)
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.gen != gen {
		return ErrSuperseded
	}

	l.item = baseline.Item
	l.records = merge(roster, baseline.Contributors)
	l.loaded = true

	return nil
}

// merge seeds one record per roster user from the matching baseline
// contributor, defaulting to zero/false when none exists. Baseline
// contributors absent from the roster are kept as non-editable records so
// the aggregate never undercounts real commitments.
func merge(roster []RosterUser, contributors []Contributor) []*Record {
	byUser := make(map[uint]Contributor, len(contributors))
	for _, c := range contributors {
		byUser[c.UserID] = c
	}

	records := make([]*Record, 0, len(roster))
	for _, user := range roster {
		record := &Record{
			UserID:   user.ID,
			Name:     user.Name,
			ImageID:  user.ImageID,
			InRoster: true,
		}

		if c, ok := byUser[user.ID]; ok {
			record.Quantity = c.NumberGetting
			record.Participating = c.Participating
			record.Pinned = c.Proposal
			record.originalQuantity = c.NumberGetting
			record.originalParticipating = c.Participating
			delete(byUser, user.ID)
		}

		records = append(records, record)
	}

	for _, c := range contributors {
		if _, orphaned := byUser[c.UserID]; !orphaned {
			continue
		}

		records = append(records, &Record{
			UserID:                c.UserID,
			Name:                  c.Name,
			ImageID:               c.ImageID,
			Quantity:              c.NumberGetting,
			Participating:         c.Participating,
			Pinned:                c.Proposal,
			originalQuantity:      c.NumberGetting,
			originalParticipating: c.Participating,
		})
	}

	return records
}

// Loaded reports whether a Load has completed successfully.
func (l *Ledger) Loaded() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.loaded
}

// Item returns the allocation context of the loaded item.
func (l *Ledger) Item() ItemContext {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.item
}

// Records returns a snapshot of all allocation records, including
// non-roster baseline contributors.
func (l *Ledger) Records() []Record {
	l.mu.Lock()
	defer l.mu.Unlock()

	records := make([]Record, 0, len(l.records))
	for _, r := range l.records {
		records = append(records, *r)
	}

	return records
}

// Record returns a snapshot of the record for userID.
func (l *Ledger) Record(userID uint) (Record, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if r := l.find(userID); r != nil {
		return *r, true
	}

	return Record{}, false
}

// SetQuantity sets the draft quantity for userID, clamped at zero.
// Pinned and non-roster records are not editable.
func (l *Ledger) SetQuantity(userID uint, quantity int) {
	if quantity < 0 {
		quantity = 0
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if r := l.find(userID); r != nil && r.InRoster && !r.Pinned {
		r.Quantity = quantity
	}
}

// Increment raises the draft quantity for userID by one.
func (l *Ledger) Increment(userID uint) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if r := l.find(userID); r != nil && r.InRoster && !r.Pinned {
		r.Quantity++
	}
}

// Decrement lowers the draft quantity for userID by one, clamped at zero.
// Pinned records are excluded entirely.
func (l *Ledger) Decrement(userID uint) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if r := l.find(userID); r != nil && r.InRoster && !r.Pinned && r.Quantity > 0 {
		r.Quantity--
	}
}

// ToggleParticipation flips the draft joint-funding flag for userID.
func (l *Ledger) ToggleParticipation(userID uint) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if r := l.find(userID); r != nil && r.InRoster {
		r.Participating = !r.Participating
	}
}

// Aggregate projects totals and progress over the current records.
func (l *Ledger) Aggregate() Totals {
	l.mu.Lock()
	defer l.mu.Unlock()

	records := make([]Record, 0, len(l.records))
	for _, r := range l.records {
		records = append(records, *r)
	}

	return Aggregate(records, l.item)
}

// HasChanges reports whether any record's draft differs from its baseline.
func (l *Ledger) HasChanges() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, r := range l.records {
		if r.Changed() {
			return true
		}
	}

	return false
}

// Save submits the changed records through the mode's batch endpoint.
// When nothing changed it returns ErrNoChanges without a network call.
// On success it invalidates the item's cached baseline and announces
// EventItemUpdated; baselines are rebased only by a fresh Load. On
// failure every draft and changed flag is left untouched for retry.
func (l *Ledger) Save(ctx context.Context) error {
	l.mu.Lock()

	if !l.loaded {
		l.mu.Unlock()

		return ErrNotLoaded
	}

	itemID := l.itemID
	getterID := l.item.GetterID

	var getting []GettingUpdate
	var goInOn []GoInOnUpdate
	for _, r := range l.records {
		if !r.Changed() || !r.InRoster {
			continue
		}

		switch l.mode {
		case ModeGetting:
			getting = append(getting, GettingUpdate{
				GiverID:       r.UserID,
				GetterID:      getterID,
				NumberGetting: r.Quantity,
				ItemID:        itemID,
			})
		case ModeGoInOn:
			goInOn = append(goInOn, GoInOnUpdate{
				GiverID:       r.UserID,
				GetterID:      getterID,
				ItemID:        itemID,
				Participating: r.Participating,
			})
		}
	}
	l.mu.Unlock()

	if len(getting) == 0 && len(goInOn) == 0 {
		return ErrNoChanges
	}

	var err error
	switch l.mode {
	case ModeGetting:
		err = l.api.BulkUpdateGetting(ctx, getting)
	case ModeGoInOn:
		err = l.api.BulkUpdateGoInOn(ctx, goInOn)
	}
	if err != nil {
		return err
	}

	if l.cache != nil {
		l.cache.Invalidate(fmt.Sprintf("%v%d*", contributorsCachePrefix, itemID))
	}
	if l.bus != nil {
		l.bus.Trigger(EventItemUpdated, itemID)
	}

	return nil
}

func (l *Ledger) find(userID uint) *Record {
	if !l.loaded {
		return nil
	}

	for _, r := range l.records {
		if r.UserID == userID {
			return r
		}
	}

	return nil
}
