package purchaserepo

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

func scanPurchases(rows pgx.Rows) ([]domain.Purchase, error) {
	defer rows.Close()

	var purchases []domain.Purchase
	for rows.Next() {
		var p domain.Purchase
		if err := rows.Scan(&p.ID, &p.AccountID, &p.OrderNumber, &p.Status, &p.Points, &p.UploadedAt); err != nil {
			zap.L().Error("can't scan purchase row", zap.Error(err))
			return nil, domain.StoreError("scan purchase", err)
		}
		purchases = append(purchases, p)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.StoreError("iterate purchases", err)
	}
	return purchases, nil
}

func (r *Repository) FindByOrderNumber(ctx context.Context, orderNumber string) (*domain.Purchase, error) {
	query := `
        SELECT id, account_id, order_number, status, points, uploaded_at
        FROM purchases
        WHERE order_number = $1
    `
	var p domain.Purchase
	err := r.db.QueryRow(ctx, query, orderNumber).Scan(&p.ID, &p.AccountID, &p.OrderNumber, &p.Status, &p.Points, &p.UploadedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		zap.L().Error("can't find purchase", zap.Error(err))
		return nil, domain.StoreError("find purchase", err)
	}
	return &p, nil
}

func (r *Repository) FindByAccountID(ctx context.Context, accountID int) ([]domain.Purchase, error) {
	query := `
        SELECT id, account_id, order_number, status, points, uploaded_at
        FROM purchases
        WHERE account_id = $1
        ORDER BY uploaded_at DESC
    `
	rows, err := r.db.Query(ctx, query, accountID)
	if err != nil {
		zap.L().Error("can't get purchases", zap.Error(err))
		return nil, domain.StoreError("list purchases", err)
	}
	return scanPurchases(rows)
}

func (r *Repository) Save(ctx context.Context, purchase *domain.Purchase) error {
	query := `
        INSERT INTO purchases (account_id, order_number, status, points, uploaded_at)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id
    `
	err := r.db.QueryRow(ctx, query, purchase.AccountID, purchase.OrderNumber, purchase.Status, purchase.Points, purchase.UploadedAt).Scan(&purchase.ID)
	if err != nil {
		zap.L().Error("can't save purchase", zap.Error(err))
		return domain.StoreError("save purchase", err)
	}
	return nil
}

// Update refuses to touch a purchase that is already PROCESSED, so points
// for one order are credited at most once.
func (r *Repository) Update(ctx context.Context, purchase *domain.Purchase) error {
	query := `
        UPDATE purchases
        SET status = $1, points = $2
        WHERE id = $3 AND status <> 'PROCESSED'
    `
	tag, err := r.db.Exec(ctx, query, purchase.Status, purchase.Points, purchase.ID)
	if err != nil {
		zap.L().Error("failed to update purchase", zap.Error(err))
		return domain.StoreError("update purchase", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrPurchaseAlreadyProcessed
	}
	return nil
}

func (r *Repository) FindForProcessing(ctx context.Context, limit uint32) ([]domain.Purchase, error) {
	query := `
        SELECT id, account_id, order_number, status, points, uploaded_at
        FROM purchases
        WHERE status = 'NEW' OR status = 'PROCESSING' OR status = 'REGISTERED'
        ORDER BY uploaded_at ASC
        LIMIT $1
    `
	rows, err := r.db.Query(ctx, query, int(limit))
	if err != nil {
		zap.L().Error("can't get purchases for processing", zap.Error(err))
		return nil, domain.StoreError("list purchases for processing", err)
	}
	return scanPurchases(rows)
}
