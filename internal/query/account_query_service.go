package query

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sonamsamdupkhangsar/account-rest-service/internal/cqrs"
	"github.com/sonamsamdupkhangsar/account-rest-service/internal/models"
	"github.com/sonamsamdupkhangsar/account-rest-service/internal/repository"
	"github.com/sonamsamdupkhangsar/account-rest-service/internal/secret"
)

// ViewReader serves account views from the Redis read model.
type ViewReader interface {
	GetByAuthenticationID(ctx context.Context, authenticationID string) (*models.AccountView, error)
}

// SecretReader looks up stored password secrets.
type SecretReader interface {
	FindByAuthenticationID(authenticationID string) (*models.PasswordSecret, error)
}

// AccountQueryService answers the read-only questions: is an account
// active, and does a supplied secret match. Neither mutates any state.
type AccountQueryService struct {
	views   ViewReader
	secrets SecretReader
}

func NewAccountQueryService(views ViewReader, secrets SecretReader) *AccountQueryService {
	return &AccountQueryService{views: views, secrets: secrets}
}

// IsAccountActive reports the active flag. A missing account reads as not
// active rather than an error.
func (s *AccountQueryService) IsAccountActive(ctx context.Context, q cqrs.AccountActiveQuery) (string, error) {
	active := false
	view, err := s.views.GetByAuthenticationID(ctx, q.AuthenticationID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return "", err
	}
	if view != nil {
		active = view.Active
	}
	return fmt.Sprintf("Account active status is %t", active), nil
}

// ValidateLoginSecret checks a supplied secret without consuming it.
// Mismatch is reported before expiry.
func (s *AccountQueryService) ValidateLoginSecret(ctx context.Context, q cqrs.ValidateSecretQuery) (string, error) {
	ps, err := s.secrets.FindByAuthenticationID(q.AuthenticationID)
	if errors.Is(err, repository.ErrNotFound) {
		return "", errors.New("no passwordsecret found with authenticationId")
	}
	if err != nil {
		return "", err
	}
	if err := secret.Validate(ps, q.Secret, time.Now().UTC()); err != nil {
		return "", err
	}
	return "passwordsecret matches", nil
}
