package rewardrepo

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

func (r *Repository) GetReward(ctx context.Context, rewardID int) (*domain.RewardItem, error) {
	query := `
        SELECT id, name, description, points_cost, is_active
        FROM reward_items
        WHERE id = $1
    `
	var item domain.RewardItem
	err := r.db.QueryRow(ctx, query, rewardID).Scan(&item.ID, &item.Name, &item.Description, &item.PointsCost, &item.IsActive)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		zap.L().Error("can't find reward item", zap.Int("reward_id", rewardID), zap.Error(err))
		return nil, domain.StoreError("get reward", err)
	}
	return &item, nil
}

func (r *Repository) ListActiveRewards(ctx context.Context) ([]domain.RewardItem, error) {
	query := `
        SELECT id, name, description, points_cost, is_active
        FROM reward_items
        WHERE is_active
        ORDER BY points_cost ASC, id ASC
    `
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		zap.L().Error("can't get reward catalog", zap.Error(err))
		return nil, domain.StoreError("list rewards", err)
	}
	defer rows.Close()

	var items []domain.RewardItem
	for rows.Next() {
		var item domain.RewardItem
		if err := rows.Scan(&item.ID, &item.Name, &item.Description, &item.PointsCost, &item.IsActive); err != nil {
			zap.L().Error("can't scan reward item row", zap.Error(err))
			return nil, domain.StoreError("scan reward", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.StoreError("iterate rewards", err)
	}
	return items, nil
}
