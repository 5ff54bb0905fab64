package models

import "time"

// AccountView is the Redis read-model projection of an account, keyed by
// authentication id. It backs the active-status query.
type AccountView struct {
	AuthenticationID string    `json:"authenticationId"`
	Email            string    `json:"email"`
	Active           bool      `json:"active"`
	AccessDateTime   time.Time `json:"accessDateTime"`
}
