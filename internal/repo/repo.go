package repo

import (
	"context"

	"github.com/GlebRadaev/rewardsledger/internal/memstore"
	"github.com/GlebRadaev/rewardsledger/internal/pg"
	accountrepo "github.com/GlebRadaev/rewardsledger/internal/repo/account-repo"
	purchaserepo "github.com/GlebRadaev/rewardsledger/internal/repo/purchase-repo"
	redemptionrepo "github.com/GlebRadaev/rewardsledger/internal/repo/redemption-repo"
	rewardrepo "github.com/GlebRadaev/rewardsledger/internal/repo/reward-repo"
	transactionrepo "github.com/GlebRadaev/rewardsledger/internal/repo/transaction-repo"
	userrepo "github.com/GlebRadaev/rewardsledger/internal/repo/user-repo"
	"github.com/GlebRadaev/rewardsledger/internal/service/authservice"
	"github.com/GlebRadaev/rewardsledger/internal/service/ledgerservice"
	"github.com/GlebRadaev/rewardsledger/internal/service/purchaseservice"
	"github.com/GlebRadaev/rewardsledger/internal/service/redemptionservice"
	"github.com/GlebRadaev/rewardsledger/internal/service/rewardsservice"
)

type AccountRepo interface {
	ledgerservice.AccountRepo
	redemptionservice.AccountRepo
}

type RewardRepo interface {
	redemptionservice.RewardRepo
	rewardsservice.RewardRepo
}

type Pinger interface {
	Ping(ctx context.Context) error
}

// Conn is a database handle that can also report its health.
type Conn interface {
	pg.Database
	Pinger
}

type Repositories struct {
	UserRepo        authservice.Repo
	AccountRepo     AccountRepo
	TransactionRepo ledgerservice.TransactionRepo
	RewardRepo      RewardRepo
	RedemptionRepo  redemptionservice.RedemptionRepo
	PurchaseRepo    purchaseservice.Repo
	TxManager       pg.TXManager
	Pinger          Pinger
}

func New(conn Conn, txManager pg.TXManager) *Repositories {
	return &Repositories{
		UserRepo:        userrepo.New(conn),
		AccountRepo:     accountrepo.New(conn),
		TransactionRepo: transactionrepo.New(conn),
		RewardRepo:      rewardrepo.New(conn),
		RedemptionRepo:  redemptionrepo.New(conn),
		PurchaseRepo:    purchaserepo.New(conn),
		TxManager:       txManager,
		Pinger:          conn,
	}
}

// NewMemory backs every repository with one in-memory store.
func NewMemory(store *memstore.Store) *Repositories {
	return &Repositories{
		UserRepo:        store,
		AccountRepo:     store,
		TransactionRepo: store,
		RewardRepo:      store,
		RedemptionRepo:  store,
		PurchaseRepo:    store,
		TxManager:       store,
		Pinger:          store,
	}
}
