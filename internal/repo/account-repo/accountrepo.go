package accountrepo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/GlebRadaev/rewardsledger/internal/domain"
	"github.com/GlebRadaev/rewardsledger/internal/pg"
)

const accountColumns = `account_id, points_balance, current_tier_id, created_at, updated_at`

type Repository struct {
	db pg.Database
}

func New(db pg.Database) *Repository {
	return &Repository{
		db: db,
	}
}

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var a domain.Account
	err := row.Scan(&a.ID, &a.PointsBalance, &a.CurrentTierID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *Repository) GetAccount(ctx context.Context, accountID int) (*domain.Account, error) {
	query := `
        SELECT ` + accountColumns + `
        FROM reward_accounts
        WHERE account_id = $1
    `
	account, err := scanAccount(r.db.QueryRow(ctx, query, accountID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		zap.L().Error("failed to get rewards account", zap.Int("account_id", accountID), zap.Error(err))
		return nil, domain.StoreError("get account", err)
	}
	return account, nil
}

// GetAccountForUpdate locks the account row until the surrounding
// transaction ends.
func (r *Repository) GetAccountForUpdate(ctx context.Context, accountID int) (*domain.Account, error) {
	query := `
        SELECT ` + accountColumns + `
        FROM reward_accounts
        WHERE account_id = $1
        FOR UPDATE
    `
	account, err := scanAccount(r.db.QueryRow(ctx, query, accountID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		zap.L().Error("failed to lock rewards account", zap.Int("account_id", accountID), zap.Error(err))
		return nil, domain.StoreError("lock account", err)
	}
	return account, nil
}

// GetAccountForShare waits for writers holding the row and keeps it stable
// until the surrounding transaction ends.
func (r *Repository) GetAccountForShare(ctx context.Context, accountID int) (*domain.Account, error) {
	query := `
        SELECT ` + accountColumns + `
        FROM reward_accounts
        WHERE account_id = $1
        FOR SHARE
    `
	account, err := scanAccount(r.db.QueryRow(ctx, query, accountID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		zap.L().Error("failed to share-lock rewards account", zap.Int("account_id", accountID), zap.Error(err))
		return nil, domain.StoreError("share-lock account", err)
	}
	return account, nil
}

// CreateAccount is idempotent: an existing account is returned unchanged.
func (r *Repository) CreateAccount(ctx context.Context, accountID int, tierID string) (*domain.Account, error) {
	query := `
        INSERT INTO reward_accounts (account_id, points_balance, current_tier_id)
        VALUES ($1, 0, $2)
        ON CONFLICT (account_id) DO UPDATE SET account_id = EXCLUDED.account_id
        RETURNING ` + accountColumns
	account, err := scanAccount(r.db.QueryRow(ctx, query, accountID, tierID))
	if err != nil {
		zap.L().Error("failed to create rewards account", zap.Int("account_id", accountID), zap.Error(err))
		return nil, domain.StoreError("create account", err)
	}
	return account, nil
}

// ApplyDelta adds delta to the cached balance only if the result stays
// non-negative. The check and the write are one statement.
func (r *Repository) ApplyDelta(ctx context.Context, accountID int, delta int64) (*domain.Account, error) {
	query := `
        UPDATE reward_accounts
        SET points_balance = points_balance + $2, updated_at = now()
        WHERE account_id = $1 AND points_balance + $2 >= 0
        RETURNING ` + accountColumns
	account, err := scanAccount(r.db.QueryRow(ctx, query, accountID, delta))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrInsufficientBalance
		}
		zap.L().Error("failed to apply points delta", zap.Int("account_id", accountID), zap.Error(err))
		return nil, domain.StoreError("apply delta", err)
	}
	return account, nil
}

func (r *Repository) UpdateTier(ctx context.Context, accountID int, tierID string) error {
	query := `
        UPDATE reward_accounts
        SET current_tier_id = $2, updated_at = now()
        WHERE account_id = $1
    `
	if _, err := r.db.Exec(ctx, query, accountID, tierID); err != nil {
		zap.L().Error("failed to update account tier", zap.Int("account_id", accountID), zap.Error(err))
		return domain.StoreError("update tier", err)
	}
	return nil
}
