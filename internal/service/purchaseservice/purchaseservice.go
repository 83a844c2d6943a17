package purchaseservice

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/GlebRadaev/rewardsledger/internal/domain"
	"github.com/GlebRadaev/rewardsledger/internal/pg"
)

//go:generate mockgen -destination=mock_repo.go -package=purchaseservice . Repo,Ledger

type Repo interface {
	FindByOrderNumber(ctx context.Context, orderNumber string) (*domain.Purchase, error)
	Save(ctx context.Context, purchase *domain.Purchase) error
	FindByAccountID(ctx context.Context, accountID int) ([]domain.Purchase, error)
	FindForProcessing(ctx context.Context, limit uint32) ([]domain.Purchase, error)
	Update(ctx context.Context, purchase *domain.Purchase) error
}

type Ledger interface {
	Append(ctx context.Context, accountID int, delta int64, description string, source domain.TransactionSource) (*domain.Transaction, error)
}

type Service struct {
	repo          Repo
	ledger        Ledger
	txManager     pg.TXManager
	pointsPerUnit decimal.Decimal
}

func New(repo Repo, ledger Ledger, txManager pg.TXManager, pointsPerUnit decimal.Decimal) *Service {
	return &Service{
		repo:          repo,
		ledger:        ledger,
		txManager:     txManager,
		pointsPerUnit: pointsPerUnit,
	}
}

func (s *Service) RegisterPurchase(ctx context.Context, accountID int, orderNumber string) (*domain.Purchase, error) {
	existing, err := s.repo.FindByOrderNumber(ctx, orderNumber)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		if existing.AccountID == accountID {
			zap.L().Info("purchase already registered by account", zap.String("order_number", orderNumber))
			return nil, domain.ErrPurchaseAlreadyExistsByUser
		}
		zap.L().Info("purchase already registered", zap.String("order_number", orderNumber))
		return nil, domain.ErrPurchaseAlreadyExists
	}

	purchase := &domain.Purchase{
		AccountID:   accountID,
		OrderNumber: orderNumber,
		Status:      domain.PurchaseNew,
		UploadedAt:  time.Now(),
	}
	if err := s.repo.Save(ctx, purchase); err != nil {
		zap.L().Error("can't save purchase: ", zap.Error(err))
		return nil, err
	}
	return purchase, nil
}

func (s *Service) GetPurchases(ctx context.Context, accountID int) ([]domain.Purchase, error) {
	purchases, err := s.repo.FindByAccountID(ctx, accountID)
	if err != nil {
		zap.L().Error("failed to get purchases", zap.Error(err))
		return nil, err
	}
	if len(purchases) == 0 {
		return nil, nil
	}
	return purchases, nil
}

func (s *Service) PendingPurchases(ctx context.Context, limit uint32) ([]domain.Purchase, error) {
	return s.repo.FindForProcessing(ctx, limit)
}

// PointsFor converts a paid amount to whole points, rounding down.
func (s *Service) PointsFor(amount decimal.Decimal) int64 {
	if amount.IsNegative() {
		return 0
	}
	return amount.Mul(s.pointsPerUnit).Floor().IntPart()
}

// Settle stores the payment system's verdict for a purchase. A PROCESSED
// verdict credits the points in the same transaction that marks the
// purchase, and a purchase is credited at most once.
func (s *Service) Settle(ctx context.Context, purchase domain.Purchase, status domain.PurchaseStatus, amount decimal.Decimal) error {
	purchase.Status = status
	if status == domain.PurchaseProcessed {
		purchase.Points = s.PointsFor(amount)
	}

	return s.txManager.Begin(ctx, func(ctx context.Context) error {
		if err := s.repo.Update(ctx, &purchase); err != nil {
			return err
		}
		if status != domain.PurchaseProcessed || purchase.Points == 0 {
			return nil
		}
		_, err := s.ledger.Append(ctx, purchase.AccountID, purchase.Points, "Purchase: order "+purchase.OrderNumber, domain.SourcePurchase)
		if err != nil {
			return err
		}
		zap.L().Info("purchase points credited",
			zap.Int("account_id", purchase.AccountID),
			zap.String("order_number", purchase.OrderNumber),
			zap.Int64("points", purchase.Points),
		)
		return nil
	})
}
