package repository

import (
	"context"
	"database/sql"
	"fmt"

	goredis "github.com/redis/go-redis/v9"
	"github.com/sonamsamdupkhangsar/account-rest-service/internal/models"
	sharedredis "github.com/sonamsamdupkhangsar/account-rest-service/internal/redis"
)

const accountViewKeyPrefix = "account:view:"

// AccountReadRepository serves account reads from a Redis projection keyed
// by authentication id, falling back to PostgreSQL and warming the cache on
// every cold read. The command service refreshes the projection after each
// mutation.
type AccountReadRepository struct {
	db    *sql.DB
	cache *sharedredis.ViewCache[models.AccountView]
}

func NewAccountReadRepository(db *sql.DB, redisClient *goredis.Client) *AccountReadRepository {
	return &AccountReadRepository{
		db:    db,
		cache: sharedredis.NewViewCache[models.AccountView](redisClient, 0),
	}
}

// GetByAuthenticationID returns the account view, Redis first then
// PostgreSQL. Returns ErrNotFound when no account exists.
func (r *AccountReadRepository) GetByAuthenticationID(ctx context.Context, authenticationID string) (*models.AccountView, error) {
	cacheKey := accountViewKeyPrefix + authenticationID

	if view, ok := r.cache.Get(ctx, cacheKey); ok {
		return view, nil
	}

	query := `SELECT authentication_id, email, active, access_date_time FROM accounts WHERE authentication_id = $1`
	var view models.AccountView
	err := r.db.QueryRow(query, authenticationID).Scan(
		&view.AuthenticationID, &view.Email, &view.Active, &view.AccessDateTime,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account view: %w", err)
	}

	r.CacheAccountView(ctx, &view)
	return &view, nil
}

// CacheAccountView stores or refreshes the projection for an account.
func (r *AccountReadRepository) CacheAccountView(ctx context.Context, view *models.AccountView) {
	r.cache.Set(ctx, accountViewKeyPrefix+view.AuthenticationID, view)
}

// InvalidateAccountView removes the projection for a deleted account.
func (r *AccountReadRepository) InvalidateAccountView(ctx context.Context, authenticationID string) {
	r.cache.Delete(ctx, accountViewKeyPrefix+authenticationID)
}
