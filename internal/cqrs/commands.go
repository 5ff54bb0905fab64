package cqrs

// CreateAccountCommand registers a new inactive account and emails an
// activation link.
type CreateAccountCommand struct {
	AuthenticationID string
	Email            string
}

// ActivateAccountCommand consumes a password secret to activate an account.
type ActivateAccountCommand struct {
	AuthenticationID string
	Secret           string
}

// EmailActivationLinkCommand reissues the activation secret for an account
// looked up by authentication id.
type EmailActivationLinkCommand struct {
	AuthenticationID string
}

// EmailActivationLinkByEmailCommand reissues the activation secret for an
// account looked up by email.
type EmailActivationLinkByEmailCommand struct {
	Email string
}

// EmailSecretCommand issues a password-reset secret to an active account
// looked up by authentication id.
type EmailSecretCommand struct {
	AuthenticationID string
}

// EmailSecretByEmailCommand issues a password-reset link to an active
// account looked up by email.
type EmailSecretByEmailCommand struct {
	Email string
}

// SendLoginIDCommand emails an active account its authentication id.
type SendLoginIDCommand struct {
	Email string
}

// UpdatePasswordCommand sets a new password on the authentication service
// after validating the password secret.
type UpdatePasswordCommand struct {
	Email    string
	Secret   string
	Password string
}

// DeleteExpiredAccountCommand removes an inactive account whose secret has
// expired, cascading through the sibling services first.
type DeleteExpiredAccountCommand struct {
	Email string
}

// DeleteMyDataCommand removes the caller's own account. The authentication
// id comes from a verified token subject, never from the request path.
type DeleteMyDataCommand struct {
	AuthenticationID string
}
