package redemptionservice

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/GlebRadaev/rewardsledger/internal/domain"
	"github.com/GlebRadaev/rewardsledger/internal/pg"
	"github.com/GlebRadaev/rewardsledger/internal/service/ledgerservice"
)

const defaultWriteTimeout = 5 * time.Second

type AccountRepo interface {
	GetAccountForUpdate(ctx context.Context, accountID int) (*domain.Account, error)
}

type RewardRepo interface {
	GetReward(ctx context.Context, rewardID int) (*domain.RewardItem, error)
}

type RedemptionRepo interface {
	CreateRedemption(ctx context.Context, redemption *domain.Redemption) (*domain.Redemption, error)
	FindByIdempotencyKey(ctx context.Context, accountID int, key string) (*domain.Redemption, error)
	ListRedemptions(ctx context.Context, accountID int, limit int) ([]domain.Redemption, error)
}

type Ledger interface {
	Append(ctx context.Context, accountID int, delta int64, description string, source domain.TransactionSource) (*domain.Transaction, error)
}

type Service struct {
	accounts     AccountRepo
	rewards      RewardRepo
	redemptions  RedemptionRepo
	ledger       Ledger
	txManager    pg.TXManager
	writeTimeout time.Duration
}

func New(accounts AccountRepo, rewards RewardRepo, redemptions RedemptionRepo, ledger Ledger, txManager pg.TXManager, writeTimeout time.Duration) *Service {
	if writeTimeout <= 0 {
		writeTimeout = defaultWriteTimeout
	}
	return &Service{
		accounts:     accounts,
		rewards:      rewards,
		redemptions:  redemptions,
		ledger:       ledger,
		txManager:    txManager,
		writeTimeout: writeTimeout,
	}
}

// Redeem exchanges points for a reward item. The account row stays locked
// for the whole unit, so two claims on one account never both pass the
// balance check. A repeated idempotency key returns the first redemption
// without debiting again.
func (s *Service) Redeem(ctx context.Context, accountID, rewardItemID int, idempotencyKey string) (*domain.Redemption, error) {
	ctx, cancel := ledgerservice.Detach(ctx, s.writeTimeout)
	defer cancel()

	var result *domain.Redemption
	err := s.txManager.Begin(ctx, func(ctx context.Context) error {
		account, err := s.accounts.GetAccountForUpdate(ctx, accountID)
		if err != nil {
			return err
		}
		var balance int64
		if account != nil {
			balance = account.PointsBalance
		}

		if idempotencyKey != "" {
			existing, err := s.redemptions.FindByIdempotencyKey(ctx, accountID, idempotencyKey)
			if err != nil {
				return err
			}
			if existing != nil {
				zap.L().Info("redemption replayed", zap.Int("account_id", accountID), zap.String("idempotency_key", idempotencyKey))
				result = existing
				return nil
			}
		}

		reward, err := s.rewards.GetReward(ctx, rewardItemID)
		if err != nil {
			return err
		}
		if reward == nil || !reward.IsActive || reward.PointsCost <= 0 {
			return domain.ErrRewardNotFound
		}
		if balance < reward.PointsCost {
			return domain.ErrInsufficientPoints
		}

		_, err = s.ledger.Append(ctx, accountID, -reward.PointsCost, "Redeemed: "+reward.Name, domain.SourceRedemption)
		if errors.Is(err, domain.ErrInsufficientBalance) {
			return domain.ErrInsufficientPoints
		}
		if err != nil {
			return err
		}

		result, err = s.redemptions.CreateRedemption(ctx, &domain.Redemption{
			AccountID:      accountID,
			RewardItemID:   reward.ID,
			RewardName:     reward.Name,
			PointsCost:     reward.PointsCost,
			Status:         domain.RedemptionCompleted,
			IdempotencyKey: idempotencyKey,
		})
		return err
	})
	if err != nil {
		zap.L().Info("redemption refused",
			zap.Int("account_id", accountID),
			zap.Int("reward_id", rewardItemID),
			zap.Error(err),
		)
		return nil, err
	}

	zap.L().Info("reward redeemed",
		zap.Int("account_id", accountID),
		zap.Int("reward_id", rewardItemID),
		zap.Int64("redemption_id", result.ID),
	)
	return result, nil
}

func (s *Service) ListRedemptions(ctx context.Context, accountID, limit int) ([]domain.Redemption, error) {
	redemptions, err := s.redemptions.ListRedemptions(ctx, accountID, limit)
	if err != nil {
		zap.L().Error("failed to get redemptions", zap.Error(err))
		return nil, err
	}
	return redemptions, nil
}
