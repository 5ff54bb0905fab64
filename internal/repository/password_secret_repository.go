package repository

import (
	"database/sql"
	"fmt"

	"github.com/sonamsamdupkhangsar/account-rest-service/internal/models"
)

// PasswordSecretRepository handles PostgreSQL operations on password
// secrets. The authentication id is the primary key, so at most one secret
// row exists per account.
type PasswordSecretRepository struct {
	db *sql.DB
}

func NewPasswordSecretRepository(db *sql.DB) *PasswordSecretRepository {
	return &PasswordSecretRepository{db: db}
}

func (r *PasswordSecretRepository) FindByAuthenticationID(authenticationID string) (*models.PasswordSecret, error) {
	query := `SELECT authentication_id, secret, expire_date FROM password_secrets WHERE authentication_id = $1`
	var ps models.PasswordSecret
	err := r.db.QueryRow(query, authenticationID).Scan(&ps.AuthenticationID, &ps.Secret, &ps.ExpireDate)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get password secret: %w", err)
	}
	return &ps, nil
}

// Save inserts a fresh secret row. Secrets are never updated in place;
// callers delete any prior row first.
func (r *PasswordSecretRepository) Save(ps *models.PasswordSecret) error {
	query := `INSERT INTO password_secrets (authentication_id, secret, expire_date) VALUES ($1, $2, $3)`
	if _, err := r.db.Exec(query, ps.AuthenticationID, ps.Secret, ps.ExpireDate); err != nil {
		return fmt.Errorf("failed to save password secret: %w", err)
	}
	return nil
}

// DeleteByAuthenticationID removes the secret row if present. Deleting an
// absent row is not an error.
func (r *PasswordSecretRepository) DeleteByAuthenticationID(authenticationID string) error {
	query := `DELETE FROM password_secrets WHERE authentication_id = $1`
	if _, err := r.db.Exec(query, authenticationID); err != nil {
		return fmt.Errorf("failed to delete password secret: %w", err)
	}
	return nil
}
