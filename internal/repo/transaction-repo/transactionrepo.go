package transactionrepo

import (
	"context"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/GlebRadaev/rewardsledger/internal/domain"
	"github.com/GlebRadaev/rewardsledger/internal/pg"
)

type Repository struct {
	db pg.Database
}

func New(db pg.Database) *Repository {
	return &Repository{
		db: db,
	}
}

func (r *Repository) CreateTransaction(ctx context.Context, tx *domain.Transaction) (*domain.Transaction, error) {
	query := `
		INSERT INTO reward_transactions (account_id, points_delta, description, source)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	err := r.db.QueryRow(ctx, query, tx.AccountID, tx.PointsDelta, tx.Description, tx.Source).Scan(&tx.ID, &tx.CreatedAt)
	if err != nil {
		zap.L().Error("can't save ledger transaction", zap.Int("account_id", tx.AccountID), zap.Error(err))
		return nil, domain.StoreError("create transaction", err)
	}
	return tx, nil
}

// ListTransactions returns up to limit entries newest first, starting after
// the cursor when one is given.
func (r *Repository) ListTransactions(ctx context.Context, accountID int, after *domain.Cursor, limit int) ([]domain.Transaction, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if after == nil {
		query := `
        SELECT id, account_id, points_delta, description, source, created_at
        FROM reward_transactions
        WHERE account_id = $1
        ORDER BY created_at DESC, id DESC
        LIMIT $2
    `
		rows, err = r.db.Query(ctx, query, accountID, limit)
	} else {
		query := `
        SELECT id, account_id, points_delta, description, source, created_at
        FROM reward_transactions
        WHERE account_id = $1 AND (created_at, id) < ($2, $3)
        ORDER BY created_at DESC, id DESC
        LIMIT $4
    `
		rows, err = r.db.Query(ctx, query, accountID, after.CreatedAt, after.ID, limit)
	}
	if err != nil {
		zap.L().Error("failed to fetch ledger transactions", zap.Error(err))
		return nil, domain.StoreError("list transactions", err)
	}
	defer rows.Close()

	var txs []domain.Transaction
	for rows.Next() {
		var tx domain.Transaction
		err := rows.Scan(&tx.ID, &tx.AccountID, &tx.PointsDelta, &tx.Description, &tx.Source, &tx.CreatedAt)
		if err != nil {
			zap.L().Error("failed to scan ledger transaction row", zap.Error(err))
			return nil, domain.StoreError("scan transaction", err)
		}
		txs = append(txs, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.StoreError("iterate transactions", err)
	}
	return txs, nil
}

func (r *Repository) SumDeltas(ctx context.Context, accountID int) (int64, error) {
	query := `
        SELECT COALESCE(SUM(points_delta), 0)::BIGINT
        FROM reward_transactions
        WHERE account_id = $1
    `
	var sum int64
	if err := r.db.QueryRow(ctx, query, accountID).Scan(&sum); err != nil {
		zap.L().Error("failed to sum ledger transactions", zap.Int("account_id", accountID), zap.Error(err))
		return 0, domain.StoreError("sum transactions", err)
	}
	return sum, nil
}
