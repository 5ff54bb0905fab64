package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/sonamsamdupkhangsar/account-rest-service/internal/models"
)

// ErrNotFound is returned by lookup methods when no row matches. Services
// translate it into the operation-specific message.
var ErrNotFound = errors.New("record not found")

// AccountRepository handles all PostgreSQL operations on account rows.
// It is the source of truth; the Redis view in AccountReadRepository is a
// projection kept current by the command service.
type AccountRepository struct {
	db *sql.DB
}

func NewAccountRepository(db *sql.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

const accountColumns = "id, authentication_id, email, active, access_date_time"

func scanAccount(row *sql.Row) (*models.Account, error) {
	var account models.Account
	err := row.Scan(
		&account.ID, &account.AuthenticationID, &account.Email,
		&account.Active, &account.AccessDateTime,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return &account, nil
}

func (r *AccountRepository) FindByAuthenticationID(authenticationID string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE authentication_id = $1`
	return scanAccount(r.db.QueryRow(query, authenticationID))
}

func (r *AccountRepository) FindByEmail(email string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE email = $1`
	return scanAccount(r.db.QueryRow(query, email))
}

func (r *AccountRepository) FindByEmailAndActiveTrue(email string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE email = $1 AND active = true`
	return scanAccount(r.db.QueryRow(query, email))
}

func (r *AccountRepository) ExistsByAuthenticationID(authenticationID string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM accounts WHERE authentication_id = $1)`
	var exists bool
	if err := r.db.QueryRow(query, authenticationID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check account existence: %w", err)
	}
	return exists, nil
}

func (r *AccountRepository) ExistsByAuthenticationIDAndActiveTrue(authenticationID string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM accounts WHERE authentication_id = $1 AND active = true)`
	var exists bool
	if err := r.db.QueryRow(query, authenticationID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check active account existence: %w", err)
	}
	return exists, nil
}

func (r *AccountRepository) ExistsByEmail(email string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM accounts WHERE email = $1)`
	var exists bool
	if err := r.db.QueryRow(query, email).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check email existence: %w", err)
	}
	return exists, nil
}

// Save inserts the account or, when the id already exists, replaces the row
// with the supplied value. Callers mutate a copy and save; rows are never
// updated field-by-field.
func (r *AccountRepository) Save(account *models.Account) error {
	query := `
		INSERT INTO accounts (id, authentication_id, email, active, access_date_time)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE
		SET authentication_id = $2, email = $3, active = $4, access_date_time = $5
	`
	_, err := r.db.Exec(query,
		account.ID, account.AuthenticationID, account.Email,
		account.Active, account.AccessDateTime,
	)
	if err != nil {
		return fmt.Errorf("failed to save account: %w", err)
	}
	return nil
}

// DeleteByAuthenticationIDAndActiveFalse removes abandoned signups for the
// given authentication id. Active rows are never touched.
func (r *AccountRepository) DeleteByAuthenticationIDAndActiveFalse(authenticationID string) (int64, error) {
	query := `DELETE FROM accounts WHERE authentication_id = $1 AND active = false`
	result, err := r.db.Exec(query, authenticationID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete inactive account: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to check rows affected: %w", err)
	}
	return rows, nil
}

// DeleteByAuthenticationID removes the account regardless of active state.
// Used by the authenticated delete-my-data path.
func (r *AccountRepository) DeleteByAuthenticationID(authenticationID string) error {
	query := `DELETE FROM accounts WHERE authentication_id = $1`
	if _, err := r.db.Exec(query, authenticationID); err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}
	return nil
}
