package redemptionrepo

import (
	"context"
	"errors"

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

func (r *Repository) CreateRedemption(ctx context.Context, redemption *domain.Redemption) (*domain.Redemption, error) {
	query := `
		INSERT INTO redemptions (account_id, reward_item_id, reward_name, points_cost, status, idempotency_key)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`
	err := r.db.QueryRow(ctx, query,
		redemption.AccountID,
		redemption.RewardItemID,
		redemption.RewardName,
		redemption.PointsCost,
		redemption.Status,
		redemption.IdempotencyKey,
	).Scan(&redemption.ID, &redemption.CreatedAt)
	if err != nil {
		zap.L().Error("can't save redemption", zap.Int("account_id", redemption.AccountID), zap.Error(err))
		return nil, domain.StoreError("create redemption", err)
	}
	return redemption, nil
}

func (r *Repository) FindByIdempotencyKey(ctx context.Context, accountID int, key string) (*domain.Redemption, error) {
	query := `
        SELECT id, account_id, reward_item_id, reward_name, points_cost, status, idempotency_key, created_at
        FROM redemptions
        WHERE account_id = $1 AND idempotency_key = $2
    `
	var rd domain.Redemption
	err := r.db.QueryRow(ctx, query, accountID, key).Scan(
		&rd.ID, &rd.AccountID, &rd.RewardItemID, &rd.RewardName, &rd.PointsCost, &rd.Status, &rd.IdempotencyKey, &rd.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		zap.L().Error("can't find redemption by idempotency key", zap.Error(err))
		return nil, domain.StoreError("find redemption", err)
	}
	return &rd, nil
}

func (r *Repository) ListRedemptions(ctx context.Context, accountID int, limit int) ([]domain.Redemption, error) {
	query := `
        SELECT id, account_id, reward_item_id, reward_name, points_cost, status, idempotency_key, created_at
        FROM redemptions
        WHERE account_id = $1
        ORDER BY created_at DESC, id DESC
        LIMIT $2
    `
	rows, err := r.db.Query(ctx, query, accountID, limit)
	if err != nil {
		zap.L().Error("failed to fetch redemptions", zap.Error(err))
		return nil, domain.StoreError("list redemptions", err)
	}
	defer rows.Close()

	var redemptions []domain.Redemption
	for rows.Next() {
		var rd domain.Redemption
		err := rows.Scan(&rd.ID, &rd.AccountID, &rd.RewardItemID, &rd.RewardName, &rd.PointsCost, &rd.Status, &rd.IdempotencyKey, &rd.CreatedAt)
		if err != nil {
			zap.L().Error("failed to scan redemption row", zap.Error(err))
			return nil, domain.StoreError("scan redemption", err)
		}
		redemptions = append(redemptions, rd)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.StoreError("iterate redemptions", err)
	}
	return redemptions, nil
}
