package models

import "time"

// Account is the write-model row for a user account. The record id is
// internal; authentication id is the login-facing identity key.
// Accounts are created inactive and become active exactly once, when a
// password secret is validated.
type Account struct {
	ID               string    `json:"id"`
	AuthenticationID string    `json:"authenticationId"`
	Email            string    `json:"email"`
	Active           bool      `json:"active"`
	AccessDateTime   time.Time `json:"accessDateTime"`
}

// PasswordSecret is a single-use activation or password-reset secret.
// At most one row exists per authentication id; the row is deleted on the
// first successful validation and is never updated in place.
type PasswordSecret struct {
	AuthenticationID string    `json:"authenticationId"`
	Secret           string    `json:"secret"`
	ExpireDate       time.Time `json:"expireDate"`
}
