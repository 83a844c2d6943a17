package accrual

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/GlebRadaev/rewardsledger/internal/config"
	"github.com/GlebRadaev/rewardsledger/internal/domain"
	"github.com/GlebRadaev/rewardsledger/pkg/clients"
)

//go:generate mockgen -destination=mock_accrual.go -package=accrual . Purchases,WorkerPoolI

const (
	maxRetries    = 3
	retryInterval = time.Second * 1
	batchLimit    = 1000
)

var ErrUnexpectedStatus = errors.New("unexpected status code")

// Response is the payment system's verdict for one order.
type Response struct {
	Order  string          `json:"order"`
	Status string          `json:"status"`
	Amount decimal.Decimal `json:"amount"`
}

type Purchases interface {
	PendingPurchases(ctx context.Context, limit uint32) ([]domain.Purchase, error)
	Settle(ctx context.Context, purchase domain.Purchase, status domain.PurchaseStatus, amount decimal.Decimal) error
}

type Service struct {
	url            string
	purchases      Purchases
	client         clients.HTTPClientI
	limit          uint32
	workerPool     WorkerPoolI
	updateInterval time.Duration
	inFlight       sync.Map
	retryInterval  time.Duration
	done           chan struct{}
}

func New(cfg *config.Config, purchases Purchases, client clients.HTTPClientI) *Service {
	workers := cfg.AccrualWorkers
	if workers <= 0 {
		workers = 10
	}
	interval := cfg.AccrualInterval
	if interval <= 0 {
		interval = time.Second * 5
	}
	return &Service{
		url:            cfg.PaymentAddress,
		purchases:      purchases,
		client:         client,
		limit:          batchLimit,
		workerPool:     NewWorkerPool(workers),
		updateInterval: interval,
		retryInterval:  retryInterval,
		done:           make(chan struct{}),
	}
}

// Start runs the worker in the background.
func (s *Service) Start(ctx context.Context) {
	go s.Run(ctx)
}

// Run polls for pending purchases until ctx is canceled. It returns only
// after every dispatched settlement has finished.
func (s *Service) Run(ctx context.Context) {
	zap.L().Info("Accrual worker started", zap.String("payment_system", s.url))
	ticker := time.NewTicker(s.updateInterval)
	defer func() {
		ticker.Stop()
		s.workerPool.Close()
		if s.done != nil {
			close(s.done)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			zap.L().Info("Context canceled, stopping accrual worker")
			return
		case <-ticker.C:
			s.processPurchases(ctx)
		}
	}
}

// Done is closed when Run has returned.
func (s *Service) Done() <-chan struct{} {
	return s.done
}

func (s *Service) processPurchases(ctx context.Context) {
	purchases, err := s.purchases.PendingPurchases(ctx, s.limit)
	if err != nil {
		zap.L().Error("Failed to fetch purchases for processing", zap.Error(err))
		return
	}

	var g errgroup.Group
	for _, purchase := range purchases {
		purchase := purchase

		if _, loaded := s.inFlight.LoadOrStore(purchase.OrderNumber, struct{}{}); loaded {
			continue
		}

		g.Go(func() error {
			err := s.workerPool.AddTask(ctx, func() error {
				defer s.inFlight.Delete(purchase.OrderNumber)
				return s.handlePurchase(ctx, purchase)
			})
			if err != nil {
				s.inFlight.Delete(purchase.OrderNumber)
				return err
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		zap.L().Error("Error scheduling purchases", zap.Error(err))
	}
}

func (s *Service) handlePurchase(ctx context.Context, purchase domain.Purchase) error {
	url := s.url + "/api/orders/" + purchase.OrderNumber

	for attempt := 1; attempt <= maxRetries; attempt++ {
		statusCode, respBody, respHeaders, err := s.client.Get(ctx, url, nil)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if attempt < maxRetries {
				if err := s.sleep(ctx, s.retryInterval*time.Duration(attempt)); err != nil {
					return err
				}
				continue
			}
			return fmt.Errorf("failed to process purchase %s after %d retries: %w", purchase.OrderNumber, maxRetries, err)
		}

		switch statusCode {
		case http.StatusOK:
			return s.settle(ctx, purchase, respBody)

		case http.StatusTooManyRequests:
			if err := s.sleep(ctx, s.retryAfter(respHeaders, attempt)); err != nil {
				return err
			}

		case http.StatusNoContent:
			zap.L().Warn("Purchase unknown to payment system, retrying",
				zap.String("order_number", purchase.OrderNumber), zap.Int("attempt", attempt))
			if attempt < maxRetries {
				if err := s.sleep(ctx, s.retryInterval*time.Duration(attempt)); err != nil {
					return err
				}
			}

		default:
			zap.L().Error("Unexpected status code", zap.Int("status", statusCode), zap.String("order_number", purchase.OrderNumber))
			return ErrUnexpectedStatus
		}
	}
	return fmt.Errorf("purchase %s not settled after %d attempts", purchase.OrderNumber, maxRetries)
}

func (s *Service) settle(ctx context.Context, purchase domain.Purchase, respBody []byte) error {
	var response Response
	if err := json.Unmarshal(respBody, &response); err != nil {
		return fmt.Errorf("failed to parse response body: %w", err)
	}
	if response.Order != purchase.OrderNumber {
		return fmt.Errorf("order number mismatch: expected %s, got %s", purchase.OrderNumber, response.Order)
	}

	status := domain.PurchaseStatus(response.Status)
	switch status {
	case domain.PurchaseProcessed:
	case domain.PurchaseRegistered, domain.PurchaseProcessing:
		if status == purchase.Status {
			return nil
		}
	case domain.PurchaseInvalid:
		zap.L().Info("Purchase rejected by payment system", zap.String("order_number", purchase.OrderNumber))
	default:
		zap.L().Warn("Unrecognized status received", zap.String("order_number", purchase.OrderNumber), zap.String("status", response.Status))
		return nil
	}

	err := s.purchases.Settle(ctx, purchase, status, response.Amount)
	if errors.Is(err, domain.ErrPurchaseAlreadyProcessed) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to settle purchase %s: %w", purchase.OrderNumber, err)
	}
	return nil
}

func (s *Service) retryAfter(respHeaders http.Header, attempt int) time.Duration {
	retryAfter := s.retryInterval * time.Duration(attempt)
	if header := respHeaders.Get("Retry-After"); header != "" {
		if seconds, err := strconv.Atoi(header); err == nil {
			retryAfter = time.Duration(seconds) * time.Second
		}
	}
	zap.L().Warn("Rate limit detected, retrying", zap.Int("attempt", attempt), zap.Duration("retry_after", retryAfter))
	return retryAfter
}

func (s *Service) sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
