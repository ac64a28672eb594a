package domain

import "time"

// Item is one wishlist entry with its allocation targets. GetterID is the
// user the item is wanted for.
type Item struct {
	ID              uint      `json:"itemId"`
	ListID          uint      `json:"listId"`
	GetterID        uint      `json:"getterId"`
	Title           string    `json:"title"`
	Price           float64   `json:"price"`
	AmountWanted    int       `json:"amountWanted"`
	MinAmountWanted int       `json:"minAmountWanted"`
	MaxAmountWanted int       `json:"maxAmountWanted"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// TargetMax is the quantity a fully allocated item requires.
func (i Item) TargetMax() int {
	if i.MaxAmountWanted > i.AmountWanted {
		return i.MaxAmountWanted
	}

	return i.AmountWanted
}
