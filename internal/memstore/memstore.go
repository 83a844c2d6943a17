// Package memstore is an in-memory backing store with the same contracts as
// the Postgres repositories. Units of work run one at a time and a failed
// unit is rolled back to the snapshot taken when it started.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/GlebRadaev/rewardsledger/internal/domain"
	"github.com/GlebRadaev/rewardsledger/internal/pg"
)

type state struct {
	users        map[int]domain.User
	logins       map[string]int
	accounts     map[int]domain.Account
	transactions []domain.Transaction
	rewards      map[int]domain.RewardItem
	redemptions  []domain.Redemption
	purchases    map[int]domain.Purchase
	orders       map[string]int

	userSeq       int
	txSeq         int64
	redemptionSeq int64
	purchaseSeq   int
}

func newState() *state {
	return &state{
		users:     make(map[int]domain.User),
		logins:    make(map[string]int),
		accounts:  make(map[int]domain.Account),
		rewards:   make(map[int]domain.RewardItem),
		purchases: make(map[int]domain.Purchase),
		orders:    make(map[string]int),
	}
}

func (s *state) clone() *state {
	c := *s
	c.users = make(map[int]domain.User, len(s.users))
	for k, v := range s.users {
		c.users[k] = v
	}
	c.logins = make(map[string]int, len(s.logins))
	for k, v := range s.logins {
		c.logins[k] = v
	}
	c.accounts = make(map[int]domain.Account, len(s.accounts))
	for k, v := range s.accounts {
		c.accounts[k] = v
	}
	c.rewards = make(map[int]domain.RewardItem, len(s.rewards))
	for k, v := range s.rewards {
		c.rewards[k] = v
	}
	c.purchases = make(map[int]domain.Purchase, len(s.purchases))
	for k, v := range s.purchases {
		c.purchases[k] = v
	}
	c.orders = make(map[string]int, len(s.orders))
	for k, v := range s.orders {
		c.orders[k] = v
	}
	c.transactions = append([]domain.Transaction(nil), s.transactions...)
	c.redemptions = append([]domain.Redemption(nil), s.redemptions...)
	return &c
}

type Store struct {
	mu    sync.Mutex
	data  *state
	clock func() time.Time
	fail  error
}

type txKey struct{}

func New() *Store {
	return &Store{
		data:  newState(),
		clock: func() time.Time { return time.Now().UTC() },
	}
}

// SeedRewards replaces the reward catalog. Items with a non-positive cost are
// dropped, as the reward_items CHECK constraint would reject them.
func (s *Store) SeedRewards(items ...domain.RewardItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.rewards = make(map[int]domain.RewardItem, len(items))
	for _, item := range items {
		if item.PointsCost <= 0 {
			continue
		}
		s.data.rewards[item.ID] = item
	}
}

// FailWith makes every subsequent call return err wrapped as a backing store
// failure. A nil err restores normal operation.
func (s *Store) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail = err
}

func (s *Store) inTx(ctx context.Context) bool {
	owner, _ := ctx.Value(txKey{}).(*Store)
	return owner == s
}

// lock serializes a single call made outside a unit of work. Calls inside
// Begin already hold the lock.
func (s *Store) lock(ctx context.Context, op string) (func(), error) {
	unlock := func() {}
	if !s.inTx(ctx) {
		s.mu.Lock()
		unlock = s.mu.Unlock
	}
	if s.fail != nil {
		unlock()
		return nil, domain.StoreError(op, s.fail)
	}
	if err := ctx.Err(); err != nil {
		unlock()
		return nil, domain.StoreError(op, err)
	}
	return unlock, nil
}

func (s *Store) Begin(ctx context.Context, fn pg.TransactionalFn) (err error) {
	if s.inTx(ctx) {
		return fn(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail != nil {
		return fmt.Errorf("can't begin transaction: %w", domain.StoreError("begin", s.fail))
	}

	snapshot := s.data.clone()
	defer func() {
		if p := recover(); p != nil {
			s.data = snapshot
			panic(p)
		}
	}()

	if err = fn(context.WithValue(ctx, txKey{}, s)); err != nil {
		s.data = snapshot
		return err
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	unlock, err := s.lock(ctx, "ping")
	if err != nil {
		return err
	}
	unlock()
	return nil
}

func (s *Store) FindByLogin(ctx context.Context, login string) (*domain.User, error) {
	unlock, err := s.lock(ctx, "find user")
	if err != nil {
		return nil, err
	}
	defer unlock()

	id, ok := s.data.logins[login]
	if !ok {
		return nil, nil
	}
	user := s.data.users[id]
	return &user, nil
}

func (s *Store) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	unlock, err := s.lock(ctx, "create user")
	if err != nil {
		return nil, err
	}
	defer unlock()

	if _, ok := s.data.logins[user.Login]; ok {
		return nil, domain.ErrUserExists
	}
	s.data.userSeq++
	user.ID = s.data.userSeq
	user.CreatedAt = s.clock()
	s.data.users[user.ID] = *user
	s.data.logins[user.Login] = user.ID
	return user, nil
}

func (s *Store) getAccount(ctx context.Context, op string, accountID int) (*domain.Account, error) {
	unlock, err := s.lock(ctx, op)
	if err != nil {
		return nil, err
	}
	defer unlock()

	account, ok := s.data.accounts[accountID]
	if !ok {
		return nil, nil
	}
	return &account, nil
}

func (s *Store) GetAccount(ctx context.Context, accountID int) (*domain.Account, error) {
	return s.getAccount(ctx, "get account", accountID)
}

// GetAccountForUpdate needs no row lock here: units never overlap.
func (s *Store) GetAccountForUpdate(ctx context.Context, accountID int) (*domain.Account, error) {
	return s.getAccount(ctx, "lock account", accountID)
}

func (s *Store) GetAccountForShare(ctx context.Context, accountID int) (*domain.Account, error) {
	return s.getAccount(ctx, "share-lock account", accountID)
}

func (s *Store) CreateAccount(ctx context.Context, accountID int, tierID string) (*domain.Account, error) {
	unlock, err := s.lock(ctx, "create account")
	if err != nil {
		return nil, err
	}
	defer unlock()

	if account, ok := s.data.accounts[accountID]; ok {
		return &account, nil
	}
	now := s.clock()
	account := domain.Account{
		ID:            accountID,
		CurrentTierID: tierID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	s.data.accounts[accountID] = account
	return &account, nil
}

func (s *Store) ApplyDelta(ctx context.Context, accountID int, delta int64) (*domain.Account, error) {
	unlock, err := s.lock(ctx, "apply delta")
	if err != nil {
		return nil, err
	}
	defer unlock()

	account, ok := s.data.accounts[accountID]
	if !ok || account.PointsBalance+delta < 0 {
		return nil, domain.ErrInsufficientBalance
	}
	account.PointsBalance += delta
	account.UpdatedAt = s.clock()
	s.data.accounts[accountID] = account
	return &account, nil
}

func (s *Store) UpdateTier(ctx context.Context, accountID int, tierID string) error {
	unlock, err := s.lock(ctx, "update tier")
	if err != nil {
		return err
	}
	defer unlock()

	account, ok := s.data.accounts[accountID]
	if !ok {
		return nil
	}
	account.CurrentTierID = tierID
	account.UpdatedAt = s.clock()
	s.data.accounts[accountID] = account
	return nil
}

func (s *Store) CreateTransaction(ctx context.Context, tx *domain.Transaction) (*domain.Transaction, error) {
	unlock, err := s.lock(ctx, "create transaction")
	if err != nil {
		return nil, err
	}
	defer unlock()

	s.data.txSeq++
	tx.ID = s.data.txSeq
	tx.CreatedAt = s.clock()
	s.data.transactions = append(s.data.transactions, *tx)
	return tx, nil
}

func newestFirst(txs []domain.Transaction) {
	sort.SliceStable(txs, func(i, j int) bool {
		if txs[i].CreatedAt.Equal(txs[j].CreatedAt) {
			return txs[i].ID > txs[j].ID
		}
		return txs[i].CreatedAt.After(txs[j].CreatedAt)
	})
}

func (s *Store) ListTransactions(ctx context.Context, accountID int, after *domain.Cursor, limit int) ([]domain.Transaction, error) {
	unlock, err := s.lock(ctx, "list transactions")
	if err != nil {
		return nil, err
	}
	defer unlock()

	var txs []domain.Transaction
	for _, tx := range s.data.transactions {
		if tx.AccountID != accountID {
			continue
		}
		if after != nil && !after.Before(tx) {
			continue
		}
		txs = append(txs, tx)
	}
	newestFirst(txs)
	if limit > 0 && len(txs) > limit {
		txs = txs[:limit]
	}
	return txs, nil
}

func (s *Store) SumDeltas(ctx context.Context, accountID int) (int64, error) {
	unlock, err := s.lock(ctx, "sum transactions")
	if err != nil {
		return 0, err
	}
	defer unlock()

	var sum int64
	for _, tx := range s.data.transactions {
		if tx.AccountID == accountID {
			sum += tx.PointsDelta
		}
	}
	return sum, nil
}

func (s *Store) GetReward(ctx context.Context, rewardID int) (*domain.RewardItem, error) {
	unlock, err := s.lock(ctx, "get reward")
	if err != nil {
		return nil, err
	}
	defer unlock()

	item, ok := s.data.rewards[rewardID]
	if !ok {
		return nil, nil
	}
	return &item, nil
}

func (s *Store) ListActiveRewards(ctx context.Context) ([]domain.RewardItem, error) {
	unlock, err := s.lock(ctx, "list rewards")
	if err != nil {
		return nil, err
	}
	defer unlock()

	var items []domain.RewardItem
	for _, item := range s.data.rewards {
		if item.IsActive {
			items = append(items, item)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].PointsCost == items[j].PointsCost {
			return items[i].ID < items[j].ID
		}
		return items[i].PointsCost < items[j].PointsCost
	})
	return items, nil
}

func (s *Store) CreateRedemption(ctx context.Context, redemption *domain.Redemption) (*domain.Redemption, error) {
	unlock, err := s.lock(ctx, "create redemption")
	if err != nil {
		return nil, err
	}
	defer unlock()

	if redemption.IdempotencyKey != "" {
		for _, rd := range s.data.redemptions {
			if rd.AccountID == redemption.AccountID && rd.IdempotencyKey == redemption.IdempotencyKey {
				return nil, domain.StoreError("create redemption", fmt.Errorf("duplicate idempotency key %q", rd.IdempotencyKey))
			}
		}
	}
	s.data.redemptionSeq++
	redemption.ID = s.data.redemptionSeq
	redemption.CreatedAt = s.clock()
	s.data.redemptions = append(s.data.redemptions, *redemption)
	return redemption, nil
}

func (s *Store) FindByIdempotencyKey(ctx context.Context, accountID int, key string) (*domain.Redemption, error) {
	unlock, err := s.lock(ctx, "find redemption")
	if err != nil {
		return nil, err
	}
	defer unlock()

	for _, rd := range s.data.redemptions {
		if rd.AccountID == accountID && rd.IdempotencyKey == key {
			return &rd, nil
		}
	}
	return nil, nil
}

func (s *Store) ListRedemptions(ctx context.Context, accountID int, limit int) ([]domain.Redemption, error) {
	unlock, err := s.lock(ctx, "list redemptions")
	if err != nil {
		return nil, err
	}
	defer unlock()

	var list []domain.Redemption
	for i := len(s.data.redemptions) - 1; i >= 0; i-- {
		if rd := s.data.redemptions[i]; rd.AccountID == accountID {
			list = append(list, rd)
		}
	}
	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}

func (s *Store) FindByOrderNumber(ctx context.Context, orderNumber string) (*domain.Purchase, error) {
	unlock, err := s.lock(ctx, "find purchase")
	if err != nil {
		return nil, err
	}
	defer unlock()

	id, ok := s.data.orders[orderNumber]
	if !ok {
		return nil, nil
	}
	p := s.data.purchases[id]
	return &p, nil
}

func (s *Store) FindByAccountID(ctx context.Context, accountID int) ([]domain.Purchase, error) {
	unlock, err := s.lock(ctx, "list purchases")
	if err != nil {
		return nil, err
	}
	defer unlock()

	var list []domain.Purchase
	for _, p := range s.data.purchases {
		if p.AccountID == accountID {
			list = append(list, p)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].UploadedAt.Equal(list[j].UploadedAt) {
			return list[i].ID > list[j].ID
		}
		return list[i].UploadedAt.After(list[j].UploadedAt)
	})
	return list, nil
}

func (s *Store) Save(ctx context.Context, purchase *domain.Purchase) error {
	unlock, err := s.lock(ctx, "save purchase")
	if err != nil {
		return err
	}
	defer unlock()

	if _, ok := s.data.orders[purchase.OrderNumber]; ok {
		return domain.StoreError("save purchase", fmt.Errorf("duplicate order number %q", purchase.OrderNumber))
	}
	s.data.purchaseSeq++
	purchase.ID = s.data.purchaseSeq
	s.data.purchases[purchase.ID] = *purchase
	s.data.orders[purchase.OrderNumber] = purchase.ID
	return nil
}

func (s *Store) FindForProcessing(ctx context.Context, limit uint32) ([]domain.Purchase, error) {
	unlock, err := s.lock(ctx, "list purchases for processing")
	if err != nil {
		return nil, err
	}
	defer unlock()

	var list []domain.Purchase
	for _, p := range s.data.purchases {
		switch p.Status {
		case domain.PurchaseNew, domain.PurchaseRegistered, domain.PurchaseProcessing:
			list = append(list, p)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].UploadedAt.Equal(list[j].UploadedAt) {
			return list[i].ID < list[j].ID
		}
		return list[i].UploadedAt.Before(list[j].UploadedAt)
	})
	if limit > 0 && len(list) > int(limit) {
		list = list[:limit]
	}
	return list, nil
}

func (s *Store) Update(ctx context.Context, purchase *domain.Purchase) error {
	unlock, err := s.lock(ctx, "update purchase")
	if err != nil {
		return err
	}
	defer unlock()

	current, ok := s.data.purchases[purchase.ID]
	if !ok || current.Status == domain.PurchaseProcessed {
		return domain.ErrPurchaseAlreadyProcessed
	}
	current.Status = purchase.Status
	current.Points = purchase.Points
	s.data.purchases[purchase.ID] = current
	return nil
}
