package domain

import "time"

// Contribution is one (item, giver) allocation record: how many the giver
// committed to get and whether they want to go in on the item jointly.
type Contribution struct {
	ID            uint      `json:"-"`
	ItemID        uint      `json:"itemId"`
	GiverID       uint      `json:"userId"`
	GetterID      uint      `json:"getterId"`
	NumberGetting int       `json:"numberGetting"`
	Participating bool      `json:"participating"`
	Proposal      bool      `json:"proposal"`
	CreatedAt     time.Time `json:"-"`
	UpdatedAt     time.Time `json:"-"`
}

// Normalize enforces the record invariants: quantities never go below
// zero and proposal-derived records stay pinned at exactly one.
func (c *Contribution) Normalize() {
	if c.NumberGetting < 0 {
		c.NumberGetting = 0
	}
	if c.Proposal {
		c.NumberGetting = 1
	}
}

// GettingUpdate is one row of a bulkUpdateGetting request.
type GettingUpdate struct {
	GiverID       uint `json:"giverId"`
	GetterID      uint `json:"getterId"`
	NumberGetting int  `json:"numberGetting"`
	ItemID        uint `json:"itemId"`
}

// GoInOnUpdate is one row of a bulkUpdateGoInOn request.
type GoInOnUpdate struct {
	GiverID       uint `json:"giverId"`
	GetterID      uint `json:"getterId"`
	ItemID        uint `json:"itemId"`
	Participating bool `json:"participating"`
}
