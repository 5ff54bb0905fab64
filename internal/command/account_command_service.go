package command

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sonamsamdupkhangsar/account-rest-service/internal/config"
	"github.com/sonamsamdupkhangsar/account-rest-service/internal/cqrs"
	"github.com/sonamsamdupkhangsar/account-rest-service/internal/events"
	"github.com/sonamsamdupkhangsar/account-rest-service/internal/models"
	"github.com/sonamsamdupkhangsar/account-rest-service/internal/repository"
	"github.com/sonamsamdupkhangsar/account-rest-service/internal/secret"
)

// AccountStore is the account persistence capability used by the workflow.
type AccountStore interface {
	FindByAuthenticationID(authenticationID string) (*models.Account, error)
	FindByEmail(email string) (*models.Account, error)
	FindByEmailAndActiveTrue(email string) (*models.Account, error)
	ExistsByAuthenticationID(authenticationID string) (bool, error)
	ExistsByAuthenticationIDAndActiveTrue(authenticationID string) (bool, error)
	ExistsByEmail(email string) (bool, error)
	Save(account *models.Account) error
	DeleteByAuthenticationIDAndActiveFalse(authenticationID string) (int64, error)
	DeleteByAuthenticationID(authenticationID string) error
}

// SecretStore is the password-secret persistence capability.
type SecretStore interface {
	FindByAuthenticationID(authenticationID string) (*models.PasswordSecret, error)
	Save(ps *models.PasswordSecret) error
	DeleteByAuthenticationID(authenticationID string) error
}

// RemoteGateway issues the sibling-service calls. Each call is a single
// attempt; a returned error carries the downstream failure message.
type RemoteGateway interface {
	ActivateAuthentication(ctx context.Context, authenticationID string) (string, error)
	ActivateUser(ctx context.Context, authenticationID string) (string, error)
	DeleteAuthentication(ctx context.Context, authenticationID string) (string, error)
	DeleteUser(ctx context.Context, authenticationID string) (string, error)
	UpdatePassword(ctx context.Context, authenticationID, password string) (string, error)
	SendEmail(ctx context.Context, to, subject, body string) (string, error)
}

// EventPublisher appends lifecycle events to a stream.
type EventPublisher interface {
	Publish(ctx context.Context, stream, eventType string, data any) error
}

// ViewCache keeps the Redis account projection current.
type ViewCache interface {
	CacheAccountView(ctx context.Context, view *models.AccountView)
	InvalidateAccountView(ctx context.Context, authenticationID string)
}

// AccountCommandService orchestrates the account lifecycle: creation,
// activation, secret issuance, password update and deletion. Local state is
// always committed before remote propagation; a remote failure after a
// local commit is surfaced, never rolled back.
type AccountCommandService struct {
	cfg       *config.Config
	accounts  AccountStore
	secrets   SecretStore
	views     ViewCache
	remote    RemoteGateway
	publisher EventPublisher
}

func NewAccountCommandService(
	cfg *config.Config,
	accounts AccountStore,
	secrets SecretStore,
	views ViewCache,
	remote RemoteGateway,
	publisher EventPublisher,
) *AccountCommandService {
	return &AccountCommandService{
		cfg:       cfg,
		accounts:  accounts,
		secrets:   secrets,
		views:     views,
		remote:    remote,
		publisher: publisher,
	}
}

// CreateAccount registers a new inactive account, issues an activation
// secret and emails the activation link. An inactive leftover with the same
// authentication id is replaced; an active one blocks the signup.
func (s *AccountCommandService) CreateAccount(ctx context.Context, cmd cqrs.CreateAccountCommand) (string, error) {
	active, err := s.accounts.ExistsByAuthenticationIDAndActiveTrue(cmd.AuthenticationID)
	if err != nil {
		return "", err
	}
	if active {
		return "", errors.New("Account is already active with authenticationId")
	}

	if _, err := s.accounts.DeleteByAuthenticationIDAndActiveFalse(cmd.AuthenticationID); err != nil {
		return "", err
	}

	emailTaken, err := s.accounts.ExistsByEmail(cmd.Email)
	if err != nil {
		return "", err
	}
	if emailTaken {
		return "", errors.New("a user with this email already exists")
	}

	account := &models.Account{
		ID:               newAccountID(),
		AuthenticationID: cmd.AuthenticationID,
		Email:            cmd.Email,
		Active:           false,
		AccessDateTime:   time.Now().UTC(),
	}
	if err := s.accounts.Save(account); err != nil {
		return "", err
	}

	ps, err := s.issueSecret(cmd.AuthenticationID)
	if err != nil {
		return "", err
	}

	body := s.cfg.EmailBody + " " + s.activationLink(cmd.AuthenticationID, ps.Secret)
	if _, err := s.email(ctx, cmd.Email, "Activation link", body); err != nil {
		return "", err
	}

	s.refreshView(ctx, account)
	s.publish(ctx, events.AccountCreated, events.AccountCreatedEvent{
		AuthenticationID: account.AuthenticationID,
		Email:            account.Email,
	})

	return "Account created successfully.  Check email for activating account", nil
}

// ActivateAccount consumes the password secret and flips the account to
// active, then propagates the activation to the authentication service and
// the user service in that order. The secret is deleted before the account
// write, so a concurrent second attempt fails the pending-secret check.
func (s *AccountCommandService) ActivateAccount(ctx context.Context, cmd cqrs.ActivateAccountCommand) (string, error) {
	exists, err := s.accounts.ExistsByAuthenticationID(cmd.AuthenticationID)
	if err != nil {
		return "", err
	}
	if !exists {
		return "", errors.New("No account with authenticationId")
	}

	ps, err := s.secrets.FindByAuthenticationID(cmd.AuthenticationID)
	if errors.Is(err, repository.ErrNotFound) {
		return "", errors.New("account has already been activated or try reactivation with email")
	}
	if err != nil {
		return "", err
	}

	if err := secret.Validate(ps, cmd.Secret, time.Now().UTC()); err != nil {
		return "", err
	}

	if err := s.secrets.DeleteByAuthenticationID(cmd.AuthenticationID); err != nil {
		return "", err
	}

	account, err := s.accounts.FindByAuthenticationID(cmd.AuthenticationID)
	if errors.Is(err, repository.ErrNotFound) {
		return "", errors.New("No account with authenticationId")
	}
	if err != nil {
		return "", err
	}

	if !account.Active {
		updated := *account
		updated.Active = true
		updated.AccessDateTime = time.Now().UTC()
		account = &updated
	} else {
		log.Printf("account %s was active from before", account.AuthenticationID)
	}
	if err := s.accounts.Save(account); err != nil {
		return "", err
	}

	if _, err := s.remote.ActivateAuthentication(ctx, cmd.AuthenticationID); err != nil {
		return "", fmt.Errorf("error on authentication rest service call, error: %v", err)
	}
	if _, err := s.remote.ActivateUser(ctx, cmd.AuthenticationID); err != nil {
		return "", fmt.Errorf("error on activate user rest service call, error: %v", err)
	}

	s.refreshView(ctx, account)
	s.publish(ctx, events.AccountActivated, events.AccountActivatedEvent{
		AuthenticationID: account.AuthenticationID,
	})

	return "account activated", nil
}

// EmailActivationLink reissues the activation secret for an account looked
// up by authentication id and emails a fresh activation link.
func (s *AccountCommandService) EmailActivationLink(ctx context.Context, cmd cqrs.EmailActivationLinkCommand) (string, error) {
	account, err := s.accounts.FindByAuthenticationID(cmd.AuthenticationID)
	if errors.Is(err, repository.ErrNotFound) {
		return "", errors.New("No account with authenticationId")
	}
	if err != nil {
		return "", err
	}
	return s.sendActivationLink(ctx, account)
}

// EmailActivationLinkByEmail is the same reissue flow keyed by email.
func (s *AccountCommandService) EmailActivationLinkByEmail(ctx context.Context, cmd cqrs.EmailActivationLinkByEmailCommand) (string, error) {
	account, err := s.accounts.FindByEmail(cmd.Email)
	if errors.Is(err, repository.ErrNotFound) {
		return "", errors.New("no account with email")
	}
	if err != nil {
		return "", err
	}
	return s.sendActivationLink(ctx, account)
}

func (s *AccountCommandService) sendActivationLink(ctx context.Context, account *models.Account) (string, error) {
	ps, err := s.issueSecret(account.AuthenticationID)
	if err != nil {
		return "", err
	}
	body := s.cfg.EmailBody + " " + s.activationLink(account.AuthenticationID, ps.Secret)
	if _, err := s.email(ctx, account.Email, "Activation link", body); err != nil {
		return "", err
	}
	return "Email activation link has been sent", nil
}

// EmailMySecret issues a password-reset secret to an active account and
// emails the raw secret.
func (s *AccountCommandService) EmailMySecret(ctx context.Context, cmd cqrs.EmailSecretCommand) (string, error) {
	active, err := s.accounts.ExistsByAuthenticationIDAndActiveTrue(cmd.AuthenticationID)
	if err != nil {
		return "", err
	}
	if !active {
		return "", errors.New("Account is not active or does not exist")
	}

	account, err := s.accounts.FindByAuthenticationID(cmd.AuthenticationID)
	if err != nil {
		return "", err
	}

	ps, err := s.issueSecret(account.AuthenticationID)
	if err != nil {
		return "", err
	}
	return s.email(ctx, account.Email, "Your requested information", "Your new secret is: "+ps.Secret)
}

// EmailMySecretByEmail issues a password-reset secret to an active account
// looked up by email and mails a reset link instead of the raw secret.
func (s *AccountCommandService) EmailMySecretByEmail(ctx context.Context, cmd cqrs.EmailSecretByEmailCommand) (string, error) {
	account, err := s.accounts.FindByEmailAndActiveTrue(cmd.Email)
	if errors.Is(err, repository.ErrNotFound) {
		return "", errors.New("Account is not active or does not exist")
	}
	if err != nil {
		return "", err
	}

	ps, err := s.issueSecret(account.AuthenticationID)
	if err != nil {
		return "", err
	}

	link := strings.Replace(s.cfg.PasswordResetPath, "{email}", account.Email, 1)
	link = strings.Replace(link, "{secret}", ps.Secret, 1)
	body := "Please click on this link to initiate password change: " + link
	return s.email(ctx, account.Email, "Your requested information", body)
}

// SendLoginID emails an active account its authentication id.
func (s *AccountCommandService) SendLoginID(ctx context.Context, cmd cqrs.SendLoginIDCommand) (string, error) {
	account, err := s.accounts.FindByEmail(cmd.Email)
	if errors.Is(err, repository.ErrNotFound) {
		return "", errors.New("Account does not exist with this authenticationId")
	}
	if err != nil {
		return "", err
	}
	if !account.Active {
		return "", errors.New("Account is not active")
	}
	return s.email(ctx, account.Email, "Your requested information", "Your requested login id "+account.AuthenticationID)
}

// UpdatePassword validates the reset secret, consumes it, and relays the
// new password to the authentication service. The secret is gone even when
// the remote call fails; the caller must request a new one.
func (s *AccountCommandService) UpdatePassword(ctx context.Context, cmd cqrs.UpdatePasswordCommand) (string, error) {
	account, err := s.accounts.FindByEmail(cmd.Email)
	if errors.Is(err, repository.ErrNotFound) {
		return "", errors.New("there is no account with the given email")
	}
	if err != nil {
		return "", err
	}

	active, err := s.accounts.ExistsByAuthenticationIDAndActiveTrue(account.AuthenticationID)
	if err != nil {
		return "", err
	}
	if !active {
		return "", errors.New("account is not active or does not exist")
	}

	ps, err := s.secrets.FindByAuthenticationID(account.AuthenticationID)
	if errors.Is(err, repository.ErrNotFound) {
		return "", errors.New("no passwordsecret found with authenticationId")
	}
	if err != nil {
		return "", err
	}
	if err := secret.Validate(ps, cmd.Secret, time.Now().UTC()); err != nil {
		return "", err
	}

	if err := s.secrets.DeleteByAuthenticationID(account.AuthenticationID); err != nil {
		return "", err
	}

	message, err := s.remote.UpdatePassword(ctx, account.AuthenticationID, cmd.Password)
	if err != nil {
		return "", fmt.Errorf("Password update failed: %v", err)
	}
	return message, nil
}

// DeleteExpiredAccount removes an abandoned signup: the account must be
// inactive and its secret expired. The cascade deletes the remote user
// record, then the remote authentication record, then the local rows; any
// remote failure halts the cascade with the local rows intact.
func (s *AccountCommandService) DeleteExpiredAccount(ctx context.Context, cmd cqrs.DeleteExpiredAccountCommand) (string, error) {
	account, err := s.accounts.FindByEmail(cmd.Email)
	if errors.Is(err, repository.ErrNotFound) {
		return "", errors.New("no account with email")
	}
	if err != nil {
		return "", err
	}

	ps, err := s.secrets.FindByAuthenticationID(account.AuthenticationID)
	if errors.Is(err, repository.ErrNotFound) {
		return "", errors.New("no passwordSecret with authenticationId")
	}
	if err != nil {
		return "", err
	}
	if !time.Now().UTC().After(ps.ExpireDate) {
		return "", errors.New("password has not expired, can't delete")
	}

	active, err := s.accounts.ExistsByAuthenticationIDAndActiveTrue(account.AuthenticationID)
	if err != nil {
		return "", err
	}
	if active {
		return "", errors.New("account is active, can't delete")
	}

	if _, err := s.remote.DeleteUser(ctx, account.AuthenticationID); err != nil {
		return "", fmt.Errorf("failed to delete user, error: %v", err)
	}
	if _, err := s.remote.DeleteAuthentication(ctx, account.AuthenticationID); err != nil {
		return "", fmt.Errorf("failed to delete authentication, error: %v", err)
	}

	if _, err := s.accounts.DeleteByAuthenticationIDAndActiveFalse(account.AuthenticationID); err != nil {
		return "", err
	}
	if err := s.secrets.DeleteByAuthenticationID(account.AuthenticationID); err != nil {
		return "", err
	}

	s.views.InvalidateAccountView(ctx, account.AuthenticationID)
	s.publish(ctx, events.AccountDeleted, events.AccountDeletedEvent{
		AuthenticationID: account.AuthenticationID,
		Email:            account.Email,
	})

	return "deleted authenticationId that is active false", nil
}

// DeleteMyData removes the caller's own account unconditionally. The
// authentication id comes from a verified token subject. The remote cascade
// mirrors DeleteExpiredAccount.
func (s *AccountCommandService) DeleteMyData(ctx context.Context, cmd cqrs.DeleteMyDataCommand) (string, error) {
	account, err := s.accounts.FindByAuthenticationID(cmd.AuthenticationID)
	if errors.Is(err, repository.ErrNotFound) {
		return "", errors.New("No account with authenticationId")
	}
	if err != nil {
		return "", err
	}

	if _, err := s.remote.DeleteUser(ctx, account.AuthenticationID); err != nil {
		return "", fmt.Errorf("failed to delete user, error: %v", err)
	}
	if _, err := s.remote.DeleteAuthentication(ctx, account.AuthenticationID); err != nil {
		return "", fmt.Errorf("failed to delete authentication, error: %v", err)
	}

	if err := s.accounts.DeleteByAuthenticationID(account.AuthenticationID); err != nil {
		return "", err
	}
	if err := s.secrets.DeleteByAuthenticationID(account.AuthenticationID); err != nil {
		return "", err
	}

	s.views.InvalidateAccountView(ctx, account.AuthenticationID)
	s.publish(ctx, events.AccountDeleted, events.AccountDeletedEvent{
		AuthenticationID: account.AuthenticationID,
		Email:            account.Email,
	})

	return "account deleted with userid", nil
}

// HandleCleanupEvent reacts to cleanup requests from the internal stream by
// running the conditional delete. Guard failures (still active, secret not
// expired) are final for the message, not worth a redelivery.
func (s *AccountCommandService) HandleCleanupEvent(ctx context.Context, event events.Event) error {
	if event.Type != events.CleanupRequested {
		return nil
	}
	dataBytes, _ := json.Marshal(event.Data)
	var data events.CleanupRequestedEvent
	if err := json.Unmarshal(dataBytes, &data); err != nil {
		return fmt.Errorf("failed to unmarshal cleanup event: %w", err)
	}

	message, err := s.DeleteExpiredAccount(ctx, cqrs.DeleteExpiredAccountCommand{Email: data.Email})
	if err != nil {
		log.Printf("cleanup of %s skipped: %v", data.Email, err)
		return nil
	}
	log.Printf("cleanup of %s: %s", data.Email, message)
	return nil
}

// issueSecret replaces any prior secret for the authentication id with a
// fresh one expiring SecretExpireHours from now.
func (s *AccountCommandService) issueSecret(authenticationID string) (*models.PasswordSecret, error) {
	if err := s.secrets.DeleteByAuthenticationID(authenticationID); err != nil {
		return nil, err
	}
	ps := &models.PasswordSecret{
		AuthenticationID: authenticationID,
		Secret:           secret.Generate(secret.Length),
		ExpireDate:       time.Now().UTC().Add(time.Duration(s.cfg.SecretExpireHours) * time.Hour),
	}
	if err := s.secrets.Save(ps); err != nil {
		return nil, err
	}
	return ps, nil
}

func (s *AccountCommandService) activationLink(authenticationID, secretText string) string {
	link := strings.Replace(s.cfg.AccountActivateLink, "{authenticationId}", authenticationID, 1)
	return strings.Replace(link, "{secret}", secretText, 1)
}

// email dispatches a message through the email service, stamping the send
// time into the body.
func (s *AccountCommandService) email(ctx context.Context, to, subject, body string) (string, error) {
	body = body + "\nMessage sent at UTC time: " + time.Now().UTC().Format(time.RFC3339)
	message, err := s.remote.SendEmail(ctx, to, subject, body)
	if err != nil {
		return "", fmt.Errorf("Email failed: %v", err)
	}
	return message, nil
}

func (s *AccountCommandService) refreshView(ctx context.Context, account *models.Account) {
	s.views.CacheAccountView(ctx, &models.AccountView{
		AuthenticationID: account.AuthenticationID,
		Email:            account.Email,
		Active:           account.Active,
		AccessDateTime:   account.AccessDateTime,
	})
}

func (s *AccountCommandService) publish(ctx context.Context, eventType string, data any) {
	if err := s.publisher.Publish(ctx, events.AccountEventsStream, eventType, data); err != nil {
		log.Printf("Failed to publish %s event: %v", eventType, err)
	}
}

func newAccountID() string {
	return uuid.NewString()
}
