package request

import (
	validation "github.com/go-ozzo/ozzo-validation"
)

type LinkUserRequest struct {
	UserID uint `json:"userId"`
}

func (req *LinkUserRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.UserID, validation.Required, validation.Min(uint(1))),
	)
}
