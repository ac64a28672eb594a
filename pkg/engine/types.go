package engine

// RosterUser is one entry of the caller's known-users list. The roster is
// externally owned and read-only to the engine.
type RosterUser struct {
	ID      uint   `json:"id"`
	Name    string `json:"name"`
	ImageID string `json:"imageId"`
}

// Contributor is a sparse server-side contribution record for one
// (item, user) pair.
type Contributor struct {
	UserID        uint   `json:"userId"`
	Name          string `json:"name"`
	ImageID       string `json:"imageId"`
	NumberGetting int    `json:"numberGetting"`
	Participating bool   `json:"participating"`
	Proposal      bool   `json:"proposal"`
}

// ItemContext carries the allocation targets of the item a Ledger is
// reconciling against.
type ItemContext struct {
	ItemID          uint `json:"itemId"`
	GetterID        uint `json:"getterId"`
	AmountWanted    int  `json:"amountWanted"`
	MinAmountWanted int  `json:"minAmountWanted"`
	MaxAmountWanted int  `json:"maxAmountWanted"`
}

// TargetMax is the quantity a fully allocated item requires.
func (c ItemContext) TargetMax() int {
	if c.MaxAmountWanted > c.AmountWanted {
		return c.MaxAmountWanted
	}

	return c.AmountWanted
}

// ContributorBaseline is the response of the item-contributors endpoint:
// the item's allocation context plus its sparse contribution records.
type ContributorBaseline struct {
	Item         ItemContext   `json:"item"`
	Contributors []Contributor `json:"contributors"`
}

// Record is one per-user allocation row of a Ledger: the draft values plus
// the originally loaded baseline they are compared against.
type Record struct {
	UserID        uint
	Name          string
	ImageID       string
	Quantity      int
	Participating bool

	// InRoster is false for baseline contributors with no matching roster
	// entry. They still count toward the aggregate but are not editable.
	InRoster bool

	// Pinned marks records derived from an accepted proposal. Their
	// quantity is fixed at 1 and quantity mutations are no-ops.
	Pinned bool

	originalQuantity      int
	originalParticipating bool
}

// Changed reports whether the draft differs from the baseline. It is
// recomputed from the originals, so reverting an edit clears it.
func (r Record) Changed() bool {
	return r.Quantity != r.originalQuantity || r.Participating != r.originalParticipating
}

// GettingUpdate is one row of a bulkUpdateGetting submission.
type GettingUpdate struct {
	GiverID       uint `json:"giverId"`
	GetterID      uint `json:"getterId"`
	NumberGetting int  `json:"numberGetting"`
	ItemID        uint `json:"itemId"`
}

// GoInOnUpdate is one row of a bulkUpdateGoInOn submission.
type GoInOnUpdate struct {
	GiverID       uint `json:"giverId"`
	GetterID      uint `json:"getterId"`
	ItemID        uint `json:"itemId"`
	Participating bool `json:"participating"`
}
