package response

import "github.com/wishwell/giftsync/internal/domain"

// RosterUser is one entry of the "your users" response.
type RosterUser struct {
	ID      uint   `json:"id"`
	Name    string `json:"name"`
	ImageID string `json:"imageId"`
}

func NewRoster(users []domain.User) []RosterUser {
	roster := make([]RosterUser, 0, len(users))
	for _, user := range users {
		roster = append(roster, RosterUser{
			ID:      user.ID,
			Name:    user.Name,
			ImageID: user.ImageID,
		})
	}

	return roster
}

// ItemContext is the allocation target slice of an item that ledgers
// aggregate against.
type ItemContext struct {
	ItemID          uint `json:"itemId"`
	GetterID        uint `json:"getterId"`
	AmountWanted    int  `json:"amountWanted"`
	MinAmountWanted int  `json:"minAmountWanted"`
	MaxAmountWanted int  `json:"maxAmountWanted"`
}

// Contributor is one sparse contribution record of an item.
type Contributor struct {
	UserID        uint   `json:"userId"`
	Name          string `json:"name"`
	ImageID       string `json:"imageId"`
	NumberGetting int    `json:"numberGetting"`
	Participating bool   `json:"participating"`
	Proposal      bool   `json:"proposal"`
}

// ContributorsResponse is the item-contributors payload: allocation
// context plus sparse records, merged client-side with the roster.
type ContributorsResponse struct {
	Item         ItemContext   `json:"item"`
	Contributors []Contributor `json:"contributors"`
}

func NewContributorsResponse(item domain.Item, contributions []domain.Contribution, names map[uint]domain.User) ContributorsResponse {
	resp := ContributorsResponse{
		Item: ItemContext{
			ItemID:          item.ID,
			GetterID:        item.GetterID,
			AmountWanted:    item.AmountWanted,
			MinAmountWanted: item.MinAmountWanted,
			MaxAmountWanted: item.MaxAmountWanted,
		},
		Contributors: make([]Contributor, 0, len(contributions)),
	}

	for _, c := range contributions {
		contributor := Contributor{
			UserID:        c.GiverID,
			NumberGetting: c.NumberGetting,
			Participating: c.Participating,
			Proposal:      c.Proposal,
		}
		if user, ok := names[c.GiverID]; ok {
			contributor.Name = user.Name
			contributor.ImageID = user.ImageID
		}

		resp.Contributors = append(resp.Contributors, contributor)
	}

	return resp
}

// LoginResponse carries the bearer token alongside the user.
type LoginResponse struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}
