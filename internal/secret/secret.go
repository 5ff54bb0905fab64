// Package secret generates and validates the one-time password secrets that
// gate account activation and password reset.
package secret

import (
	"crypto/rand"
	"errors"
	"math/big"
	"time"

	"github.com/sonamsamdupkhangsar/account-rest-service/internal/models"
)

const alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Length is the number of characters in an issued secret.
const Length = 10

var (
	ErrMismatch = errors.New("secret does not match")
	ErrExpired  = errors.New("secret has expired")
)

// Generate returns n characters drawn uniformly from [A-Za-z0-9].
func Generate(n int) string {
	result := make([]byte, n)
	for i := range result {
		num, _ := rand.Int(rand.Reader, big.NewInt(int64(len(alphabet))))
		result[i] = alphabet[num.Int64()]
	}
	return string(result)
}

// Validate checks a supplied secret against the stored one. A mismatch is
// reported before expiry; a secret is valid only strictly before its
// expire date.
func Validate(stored *models.PasswordSecret, supplied string, now time.Time) error {
	if stored.Secret != supplied {
		return ErrMismatch
	}
	if !now.Before(stored.ExpireDate) {
		return ErrExpired
	}
	return nil
}
