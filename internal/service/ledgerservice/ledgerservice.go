package ledgerservice

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/GlebRadaev/rewardsledger/internal/domain"
	"github.com/GlebRadaev/rewardsledger/internal/pg"
	"github.com/GlebRadaev/rewardsledger/internal/tiers"
)

const (
	DefaultHistoryLimit = 10
	MaxHistoryLimit     = 100

	defaultWriteTimeout = 5 * time.Second
)

type AccountRepo interface {
	GetAccount(ctx context.Context, accountID int) (*domain.Account, error)
	GetAccountForShare(ctx context.Context, accountID int) (*domain.Account, error)
	CreateAccount(ctx context.Context, accountID int, tierID string) (*domain.Account, error)
	ApplyDelta(ctx context.Context, accountID int, delta int64) (*domain.Account, error)
	UpdateTier(ctx context.Context, accountID int, tierID string) error
}

type TransactionRepo interface {
	CreateTransaction(ctx context.Context, tx *domain.Transaction) (*domain.Transaction, error)
	ListTransactions(ctx context.Context, accountID int, after *domain.Cursor, limit int) ([]domain.Transaction, error)
	SumDeltas(ctx context.Context, accountID int) (int64, error)
}

type Service struct {
	accounts     AccountRepo
	transactions TransactionRepo
	txManager    pg.TXManager
	catalog      *tiers.Catalog
	writeTimeout time.Duration
}

func New(accounts AccountRepo, transactions TransactionRepo, txManager pg.TXManager, catalog *tiers.Catalog, writeTimeout time.Duration) *Service {
	if writeTimeout <= 0 {
		writeTimeout = defaultWriteTimeout
	}
	return &Service{
		accounts:     accounts,
		transactions: transactions,
		txManager:    txManager,
		catalog:      catalog,
		writeTimeout: writeTimeout,
	}
}

// Detach keeps ctx values (the running transaction among them) but drops the
// caller's cancellation, so a unit of work is never abandoned half way.
func Detach(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), timeout)
}

func (s *Service) EnsureAccount(ctx context.Context, accountID int) (*domain.Account, error) {
	account, err := s.accounts.GetAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if account != nil {
		return account, nil
	}
	account, err = s.accounts.CreateAccount(ctx, accountID, s.catalog.Lowest().ID)
	if err != nil {
		zap.L().Error("failed to create rewards account", zap.Int("account_id", accountID), zap.Error(err))
		return nil, err
	}
	zap.L().Info("rewards account created", zap.Int("account_id", accountID))
	return account, nil
}

// Append records a ledger entry and moves the cached balance and tier with
// it. A debit that would take the balance below zero is rejected with
// domain.ErrInsufficientBalance and leaves no trace.
func (s *Service) Append(ctx context.Context, accountID int, delta int64, description string, source domain.TransactionSource) (*domain.Transaction, error) {
	if delta == 0 || !source.Valid() {
		return nil, domain.ErrInvalidAmount
	}

	ctx, cancel := Detach(ctx, s.writeTimeout)
	defer cancel()

	var created *domain.Transaction
	err := s.txManager.Begin(ctx, func(ctx context.Context) error {
		if _, err := s.EnsureAccount(ctx, accountID); err != nil {
			return err
		}
		account, err := s.accounts.ApplyDelta(ctx, accountID, delta)
		if err != nil {
			return err
		}
		created, err = s.transactions.CreateTransaction(ctx, &domain.Transaction{
			AccountID:   accountID,
			PointsDelta: delta,
			Description: description,
			Source:      source,
		})
		if err != nil {
			return err
		}
		tier := s.catalog.TierForPoints(account.PointsBalance)
		if tier.ID == account.CurrentTierID {
			return nil
		}
		zap.L().Info("account tier changed",
			zap.Int("account_id", accountID),
			zap.String("from", account.CurrentTierID),
			zap.String("to", tier.ID),
		)
		return s.accounts.UpdateTier(ctx, accountID, tier.ID)
	})
	if err != nil {
		zap.L().Warn("ledger append rejected", zap.Int("account_id", accountID), zap.Int64("delta", delta), zap.Error(err))
		return nil, err
	}
	return created, nil
}

func (s *Service) Balance(ctx context.Context, accountID int) (int64, error) {
	account, err := s.accounts.GetAccount(ctx, accountID)
	if err != nil {
		return 0, err
	}
	if account == nil {
		return 0, nil
	}
	return account.PointsBalance, nil
}

// History returns one page of entries, newest first. The page carries a
// cursor only when more entries exist.
func (s *Service) History(ctx context.Context, accountID int, cursor string, limit int) (*domain.TransactionPage, error) {
	after, err := domain.DecodeCursor(cursor)
	if err != nil {
		return nil, err
	}
	switch {
	case limit <= 0:
		limit = DefaultHistoryLimit
	case limit > MaxHistoryLimit:
		limit = MaxHistoryLimit
	}

	txs, err := s.transactions.ListTransactions(ctx, accountID, after, limit+1)
	if err != nil {
		return nil, err
	}
	page := &domain.TransactionPage{Transactions: txs}
	if len(txs) > limit {
		page.Transactions = txs[:limit]
		page.NextCursor = domain.CursorOf(txs[limit-1]).Encode()
	}
	if page.Transactions == nil {
		page.Transactions = []domain.Transaction{}
	}
	return page, nil
}

// Reconcile compares the cached balance with the sum of the log. The account
// row is share-locked first, so appends in flight commit before the sum is
// taken and none can start until it is done.
func (s *Service) Reconcile(ctx context.Context, accountID int) (*domain.ReconcileReport, error) {
	report := &domain.ReconcileReport{AccountID: accountID}
	err := s.txManager.Begin(ctx, func(ctx context.Context) error {
		account, err := s.accounts.GetAccountForShare(ctx, accountID)
		if err != nil {
			return err
		}
		if account != nil {
			report.Cached = account.PointsBalance
		}
		report.Computed, err = s.transactions.SumDeltas(ctx, accountID)
		return err
	})
	if err != nil {
		return nil, err
	}
	report.InSync = report.Cached == report.Computed
	if !report.InSync {
		zap.L().Error("cached balance diverged from ledger",
			zap.Int("account_id", accountID),
			zap.Int64("cached", report.Cached),
			zap.Int64("computed", report.Computed),
		)
	}
	return report, nil
}
