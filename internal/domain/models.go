package domain

import "time"

type User struct {
	ID           int       `db:"id"`
	Login        string    `db:"login"`
	PasswordHash string    `db:"password_hash"`
	CreatedAt    time.Time `db:"created_at"`
}

// Account is the cached rewards state of a user. PointsBalance is the
// snapshot, the transaction log is the source of truth.
type Account struct {
	ID            int       `db:"account_id"`
	PointsBalance int64     `db:"points_balance"`
	CurrentTierID string    `db:"current_tier_id"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}

type TransactionSource string

const (
	SourceSystem     TransactionSource = "system"
	SourcePurchase   TransactionSource = "purchase"
	SourceRedemption TransactionSource = "redemption"
	SourcePromotion  TransactionSource = "promotion"
)

func (s TransactionSource) Valid() bool {
	switch s {
	case SourceSystem, SourcePurchase, SourceRedemption, SourcePromotion:
		return true
	}
	return false
}

// Transaction is an immutable ledger entry. Positive delta is a credit.
type Transaction struct {
	ID          int64             `db:"id"`
	AccountID   int               `db:"account_id"`
	PointsDelta int64             `db:"points_delta"`
	Description string            `db:"description"`
	Source      TransactionSource `db:"source"`
	CreatedAt   time.Time         `db:"created_at"`
}

type TransactionPage struct {
	Transactions []Transaction
	NextCursor   string
}

type Tier struct {
	ID        string   `yaml:"id"`
	Name      string   `yaml:"name"`
	MinPoints int64    `yaml:"min_points"`
	MaxPoints *int64   `yaml:"max_points"`
	Benefits  []string `yaml:"benefits"`
}

// Contains reports whether points fall into [MinPoints, MaxPoints].
func (t Tier) Contains(points int64) bool {
	if points < t.MinPoints {
		return false
	}
	return t.MaxPoints == nil || points <= *t.MaxPoints
}

type RewardItem struct {
	ID          int    `db:"id"`
	Name        string `db:"name"`
	Description string `db:"description"`
	PointsCost  int64  `db:"points_cost"`
	IsActive    bool   `db:"is_active"`
}

type RedemptionStatus string

const (
	RedemptionPending   RedemptionStatus = "pending"
	RedemptionCompleted RedemptionStatus = "completed"
	RedemptionFailed    RedemptionStatus = "failed"
)

// Redemption keeps the reward name and cost as they were at claim time.
type Redemption struct {
	ID             int64            `db:"id"`
	AccountID      int              `db:"account_id"`
	RewardItemID   int              `db:"reward_item_id"`
	RewardName     string           `db:"reward_name"`
	PointsCost     int64            `db:"points_cost"`
	Status         RedemptionStatus `db:"status"`
	IdempotencyKey string           `db:"idempotency_key"`
	CreatedAt      time.Time        `db:"created_at"`
}

type PurchaseStatus string

const (
	PurchaseNew        PurchaseStatus = "NEW"
	PurchaseRegistered PurchaseStatus = "REGISTERED"
	PurchaseProcessing PurchaseStatus = "PROCESSING"
	PurchaseInvalid    PurchaseStatus = "INVALID"
	PurchaseProcessed  PurchaseStatus = "PROCESSED"
)

// Purchase is a storefront order waiting for the payment system to confirm
// the paid amount before points are credited.
type Purchase struct {
	ID          int            `db:"id"`
	AccountID   int            `db:"account_id"`
	OrderNumber string         `db:"order_number"`
	Status      PurchaseStatus `db:"status"`
	Points      int64          `db:"points"`
	UploadedAt  time.Time      `db:"uploaded_at"`
}

type ReconcileReport struct {
	AccountID int
	Cached    int64
	Computed  int64
	InSync    bool
}
