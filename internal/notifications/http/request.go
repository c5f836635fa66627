package http

import (
	validation "github.com/go-ozzo/ozzo-validation"
)

type setTokenRequest struct {
	UserID string `json:"userId"`
	Token  string `json:"token"`
}

func (r *setTokenRequest) Validate() error {
	return validation.ValidateStruct(
		r,
		validation.Field(&r.UserID, validation.Required, validation.Length(1, 128)),
		validation.Field(&r.Token, validation.Required, validation.Length(1, 4096)),
	)
}
