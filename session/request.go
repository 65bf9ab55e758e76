package session

import (
	"encoding/json"

	"github.com/rs/zerolog"
)

type SignupRequest struct {
	Email     string `validate:"required,email" json:"email"`
	Password  string `validate:"required,min=6" json:"password"`
	FirstName string `validate:"required"       json:"firstName"`
	LastName  string `validate:"required"       json:"lastName"`
}

func (r SignupRequest) MarshalZerologObject(e *zerolog.Event) {
	e.Str("email", r.Email).Str("firstName", r.FirstName).Str("lastName", r.LastName)
}

func (r SignupRequest) MarshalJSON() ([]byte, error) {
	r.Password = "***"
	type R SignupRequest
	return json.Marshal(R(r))
}

type LoginRequest struct {
	Email    string `validate:"required,email" json:"email"`
	Password string `validate:"required"       json:"password"`
}

func (r LoginRequest) MarshalZerologObject(e *zerolog.Event) {
	e.Str("email", r.Email).Str("password", "***")
}

func (r LoginRequest) MarshalJSON() ([]byte, error) {
	r.Password = "***"
	type R LoginRequest
	return json.Marshal(R(r))
}

// ProfileUpdate carries the profile fields to merge. Empty fields are left
// untouched.
type ProfileUpdate struct {
	FirstName string `validate:"omitempty"       json:"firstName"`
	LastName  string `validate:"omitempty"       json:"lastName"`
	Phone     string `validate:"omitempty"       json:"phone"`
	Address   string `validate:"omitempty"       json:"address"`
	Email     string `validate:"omitempty,email" json:"email"`
}
