package cqrs

// AccountActiveQuery asks whether an account is active.
type AccountActiveQuery struct {
	AuthenticationID string
}

// ValidateSecretQuery checks a supplied secret against the stored one
// without consuming it.
type ValidateSecretQuery struct {
	AuthenticationID string
	Secret           string
}
